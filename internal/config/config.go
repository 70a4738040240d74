package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	// Billing constants. The business has changed the bottle price across
	// revisions (45 -> 50 -> 80), so both come from the environment rather
	// than the source.
	PricePerBottle  decimal.Decimal
	LitersPerBottle decimal.Decimal
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=water port=5432 sslmode=disable"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		PricePerBottle:  getDecimalEnv("PRICE_PER_BOTTLE", "80"),
		LitersPerBottle: getDecimalEnv("LITERS_PER_BOTTLE", "18.9"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment variable is not set! It is required.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters long!")
	}
	if cfg.PricePerBottle.Sign() <= 0 || cfg.LitersPerBottle.Sign() <= 0 {
		log.Fatal("[FATAL] PRICE_PER_BOTTLE and LITERS_PER_BOTTLE must be positive.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=water port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres connection for production.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDecimalEnv(key, def string) decimal.Decimal {
	raw := getEnv(key, def)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatalf("[FATAL] %s is not a valid decimal: %q", key, raw)
	}
	return d
}

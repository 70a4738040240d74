package main

import (
	"log"
	"strings"

	"water-backend/internal/auth"
	"water-backend/internal/config"
	"water-backend/internal/customers"
	"water-backend/internal/database"
	"water-backend/internal/deliveries"
	"water-backend/internal/models"
	"water-backend/internal/orders"
	"water-backend/internal/payments"
	"water-backend/internal/reports"
	"water-backend/internal/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/admin/login", auth.AdminLoginHandler(cfg))
	api.Post("/auth/customer/login", auth.CustomerLoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin-only routes. The API paths are flat, so the role check is applied
	// per route instead of on a sub-group prefix.
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Customer management
	protected.Get("/customers", adminOnly, customers.ListCustomersHandler())
	protected.Post("/customers", adminOnly, customers.CreateCustomerHandler())
	protected.Delete("/customers/:id", adminOnly, customers.DeleteCustomerHandler())

	// Deliveries & payments are recorded by the office
	protected.Post("/deliveries", adminOnly, deliveries.CreateDeliveryHandler(cfg))
	protected.Post("/payments", adminOnly, payments.CreatePaymentHandler(cfg))

	// Order fulfillment & cancellation
	protected.Put("/orders/:id/delivered", adminOnly, orders.MarkDeliveredHandler(cfg))
	protected.Put("/orders/:id/cancelled", adminOnly, orders.CancelOrderHandler())

	// Reporting
	protected.Get("/reports/customers", adminOnly, reports.CustomersReportHandler(cfg))

	// Shared (role-scoped inside the handlers)
	protected.Get("/customers/:id", customers.GetCustomerHandler())
	protected.Put("/customers/:id", customers.UpdateCustomerHandler())

	protected.Get("/orders", orders.ListOrdersHandler())
	protected.Post("/orders", orders.CreateOrderHandler())

	protected.Get("/deliveries", deliveries.ListDeliveriesHandler())
	protected.Get("/payments", payments.ListPaymentsHandler())

	protected.Get("/stats", stats.GetStatsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

package auth

import (
	"strings"

	"water-backend/internal/config"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CustomerLoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// validPassword mirrors the frontend rule: at least 8 chars with a letter
// and a digit.
func validPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}

// RegisterAdminHandler bootstraps the very first admin account. Once any
// admin exists the endpoint refuses further registrations.
func RegisterAdminHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		if len(body.Username) < 3 {
			return fiber.NewError(fiber.StatusBadRequest, "Username must be at least 3 characters")
		}
		if !validPassword(body.Password) {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at least 8 characters and contain a letter and a number")
		}

		var count int64
		database.DB.Model(&models.Admin{}).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "An admin account already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		admin := models.Admin{
			Username:     body.Username,
			PasswordHash: string(hash),
		}
		if err := database.DB.Create(&admin).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create admin")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":       admin.ID,
			"username": admin.Username,
		})
	}
}

func AdminLoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdminLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		// Generic error message to prevent username enumeration.
		var admin models.Admin
		if err := database.DB.Where("username = ?", body.Username).First(&admin).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, admin.ID, models.RoleAdmin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":       admin.ID,
				"username": admin.Username,
				"role":     models.RoleAdmin,
			},
		})
	}
}

func CustomerLoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var customer models.Customer
		if err := database.DB.Where("phone = ?", body.Phone).First(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid phone or password")
		}
		// Customers without a portal password cannot log in.
		if customer.PasswordHash == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid phone or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid phone or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, customer.ID, models.RoleCustomer)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    customer.ID,
				"name":  customer.Name,
				"phone": customer.Phone,
				"role":  models.RoleCustomer,
			},
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := UserFromCtx(c)
		if err != nil {
			return err
		}

		if role == models.RoleAdmin {
			var admin models.Admin
			if err := database.DB.First(&admin, userID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Admin not found")
			}
			return c.JSON(fiber.Map{
				"user_id":  admin.ID,
				"username": admin.Username,
				"role":     role,
			})
		}

		var customer models.Customer
		if err := database.DB.First(&customer, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Customer not found")
		}
		return c.JSON(fiber.Map{
			"user_id": customer.ID,
			"name":    customer.Name,
			"phone":   customer.Phone,
			"role":    role,
		})
	}
}

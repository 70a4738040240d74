package deliveries

import (
	"errors"
	"fmt"
	"time"

	"water-backend/internal/auth"
	"water-backend/internal/billing"
	"water-backend/internal/config"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateDeliveryRequest struct {
	CustomerID uint     `json:"customerId"`
	Quantity   int      `json:"quantity"`
	Liters     *float64 `json:"liters"` // optional, defaults to quantity x liters-per-bottle
}

type DeliveryResponse struct {
	ID           uint   `json:"id"`
	CustomerID   uint   `json:"customerId"`
	CustomerName string `json:"customerName,omitempty"`
	Quantity     int    `json:"quantity"`
	Liters       string `json:"liters"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

func toResponse(d *models.Delivery, customerName string) DeliveryResponse {
	return DeliveryResponse{
		ID:           d.ID,
		CustomerID:   d.CustomerID,
		CustomerName: customerName,
		Quantity:     d.Quantity,
		Liters:       d.Liters.String(),
		Date:         d.Date.Format("2006-01-02"),
		Time:         d.Time,
	}
}

// -------------------------------------------------
// GET /api/deliveries — customers see only their own
// -------------------------------------------------
func ListDeliveriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Customer").Order("date desc, id desc")
		if role == models.RoleCustomer {
			dbq = dbq.Where("customer_id = ?", userID)
		}

		var dels []models.Delivery
		if err := dbq.Find(&dels).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list deliveries")
		}

		resp := make([]DeliveryResponse, 0, len(dels))
		for i := range dels {
			resp = append(resp, toResponse(&dels[i], dels[i].Customer.Name))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/deliveries (admin) — delivery not tied to any order
// -------------------------------------------------
func CreateDeliveryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDeliveryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CustomerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customerId is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be greater than 0")
		}

		var liters *decimal.Decimal
		if body.Liters != nil {
			d := decimal.NewFromFloat(*body.Liters)
			if d.Sign() <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Liters must be greater than 0")
			}
			liters = &d
		}

		delivery, err := Record(database.DB, body.CustomerID, body.Quantity, liters, cfg.LitersPerBottle, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, billing.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			case errors.Is(err, billing.ErrInvalidInput):
				return fiber.NewError(fiber.StatusBadRequest, "Invalid quantity or liters")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Could not record delivery")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&delivery, ""))
	}
}

// Record inserts a delivery and bumps the customer's bottle counters in one
// transaction. Used by the admin path; order fulfillment has its own flow in
// the orders package.
func Record(db *gorm.DB, customerID uint, quantity int, liters *decimal.Decimal, litersPerBottle decimal.Decimal, now time.Time) (models.Delivery, error) {
	var delivery models.Delivery

	err := db.Transaction(func(tx *gorm.DB) error {
		var cust models.Customer
		if err := database.LockForUpdate(tx).First(&cust, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer %d", billing.ErrNotFound, customerID)
			}
			return err
		}

		row, delta, err := billing.NewDelivery(customerID, quantity, liters, litersPerBottle, now)
		if err != nil {
			return err
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).
			Updates(map[string]interface{}{
				"total_bottles":       gorm.Expr("total_bottles + ?", delta.TotalBottles),
				"monthly_consumption": gorm.Expr("monthly_consumption + ?", delta.MonthlyConsumption),
			}).Error; err != nil {
			return err
		}

		delivery = row
		return nil
	})
	if err != nil {
		return models.Delivery{}, err
	}
	return delivery, nil
}

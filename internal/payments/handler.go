package payments

import (
	"errors"
	"time"

	"water-backend/internal/auth"
	"water-backend/internal/billing"
	"water-backend/internal/config"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Ceiling enforced at the boundary; the core only refuses non-positive
// amounts.
var maxPaymentAmount = decimal.NewFromInt(1_000_000)

type CreatePaymentRequest struct {
	CustomerID uint    `json:"customerId"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

type PaymentResponse struct {
	ID           uint   `json:"id"`
	CustomerID   uint   `json:"customerId"`
	CustomerName string `json:"customerName,omitempty"`
	Amount       string `json:"amount"`
	Method       string `json:"method"`
	Date         string `json:"date"`
}

func toResponse(p *models.Payment, customerName string) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		CustomerName: customerName,
		Amount:       p.Amount.String(),
		Method:       string(p.Method),
		Date:         p.Date.Format("2006-01-02"),
	}
}

func parseMethod(s string) (models.PaymentMethod, bool) {
	switch models.PaymentMethod(s) {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodBankTransfer, models.PaymentMethodOnline:
		return models.PaymentMethod(s), true
	case "":
		return models.PaymentMethodCash, true
	}
	return "", false
}

// -------------------------------------------------
// GET /api/payments — customers see only their own
// -------------------------------------------------
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Customer").Order("date desc, id desc")
		if role == models.RoleCustomer {
			dbq = dbq.Where("customer_id = ?", userID)
		}

		var pays []models.Payment
		if err := dbq.Find(&pays).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}

		resp := make([]PaymentResponse, 0, len(pays))
		for i := range pays {
			resp = append(resp, toResponse(&pays[i], pays[i].Customer.Name))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/payments (admin)
// -------------------------------------------------
func CreatePaymentHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CustomerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customerId is required")
		}

		amount := decimal.NewFromFloat(body.Amount)
		if amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than 0")
		}
		if amount.GreaterThan(maxPaymentAmount) {
			return fiber.NewError(fiber.StatusBadRequest, "Amount exceeds the allowed maximum")
		}

		method, ok := parseMethod(body.Method)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Method must be one of Cash, Card, Bank Transfer, Online")
		}

		payment, result, err := Record(database.DB, body.CustomerID, amount, method, cfg.PricePerBottle, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, billing.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			case errors.Is(err, billing.ErrInvalidInput):
				return fiber.NewError(fiber.StatusBadRequest, "Invalid payment amount")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Could not record payment")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"payment": toResponse(&payment, ""),
			"balance": result.Balance.String(),
			"isPaid":  result.Customer.IsPaid,
		})
	}
}

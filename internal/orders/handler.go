package orders

import (
	"errors"
	"time"

	"water-backend/internal/auth"
	"water-backend/internal/billing"
	"water-backend/internal/config"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxOrderQuantity = 100

type CreateOrderRequest struct {
	CustomerID uint `json:"customerId"`
	Quantity   int  `json:"quantity"`
}

type OrderResponse struct {
	ID            uint    `json:"id"`
	CustomerID    uint    `json:"customerId"`
	CustomerName  string  `json:"customerName,omitempty"`
	Quantity      int     `json:"quantity"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	DeliveredDate *string `json:"deliveredDate"`
}

func toResponse(o *models.Order, customerName string) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: customerName,
		Quantity:     o.Quantity,
		Status:       string(o.Status),
		Date:         o.Date.Format("2006-01-02"),
		Time:         o.Time,
	}
	if o.DeliveredDate != nil {
		s := o.DeliveredDate.Format("2006-01-02")
		resp.DeliveredDate = &s
	}
	return resp
}

// -------------------------------------------------
// GET /api/orders — customers see only their own
// -------------------------------------------------
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Customer").Order("date desc, id desc")
		if role == models.RoleCustomer {
			dbq = dbq.Where("customer_id = ?", userID)
		}

		var ords []models.Order
		if err := dbq.Find(&ords).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		resp := make([]OrderResponse, 0, len(ords))
		for i := range ords {
			resp = append(resp, toResponse(&ords[i], ords[i].Customer.Name))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/orders — customers may only order for themselves
// -------------------------------------------------
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.CustomerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customerId is required")
		}
		if body.Quantity <= 0 || body.Quantity > maxOrderQuantity {
			return fiber.NewError(fiber.StatusBadRequest, "Quantity must be between 1 and 100")
		}

		userID, role, err := auth.UserFromCtx(c)
		if err != nil {
			return err
		}
		if role == models.RoleCustomer && userID != body.CustomerID {
			return fiber.NewError(fiber.StatusForbidden, "You can only create orders for yourself")
		}

		var cust models.Customer
		if err := database.DB.First(&cust, body.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Customer not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load customer")
		}

		now := time.Now()
		order := models.Order{
			CustomerID: body.CustomerID,
			Quantity:   body.Quantity,
			Status:     models.OrderStatusPending,
			Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			Time:       now.Format(billing.TimeLayout),
		}
		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create order")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&order, cust.Name))
	}
}

// -------------------------------------------------
// PUT /api/orders/:id/cancelled (admin)
// -------------------------------------------------
func CancelOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
		}

		var order models.Order
		if err := database.DB.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Order not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load order")
		}

		// Only pending orders can be cancelled; the guard below closes the
		// window against a concurrent fulfillment.
		res := database.DB.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not cancel order")
		}
		if res.RowsAffected != 1 {
			return fiber.NewError(fiber.StatusConflict, "Order has already been delivered or cancelled")
		}

		order.Status = models.OrderStatusCancelled
		return c.JSON(toResponse(&order, ""))
	}
}

// -------------------------------------------------
// PUT /api/orders/:id/delivered (admin)
// -------------------------------------------------
func MarkDeliveredHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
		}

		order, delivery, err := Fulfill(database.DB, uint(id), cfg.LitersPerBottle, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, billing.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Order not found")
			case errors.Is(err, billing.ErrInvalidState):
				return fiber.NewError(fiber.StatusConflict, "Order has already been delivered or cancelled")
			case errors.Is(err, billing.ErrInvalidInput):
				return fiber.NewError(fiber.StatusBadRequest, "Order has an invalid quantity")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Could not fulfill order")
			}
		}

		return c.JSON(fiber.Map{
			"order": toResponse(&order, ""),
			"delivery": fiber.Map{
				"id":       delivery.ID,
				"quantity": delivery.Quantity,
				"liters":   delivery.Liters.String(),
				"date":     delivery.Date.Format("2006-01-02"),
				"time":     delivery.Time,
			},
		})
	}
}

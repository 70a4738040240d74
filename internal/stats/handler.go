package stats

import (
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StatsResponse struct {
	Customers     int64 `json:"customers"`
	Unpaid        int64 `json:"unpaid"`
	PendingOrders int64 `json:"pendingOrders"`
	Deliveries    int64 `json:"deliveries"`
}

// -------------------------------------------------
// GET /api/stats — dashboard counters
// -------------------------------------------------
func GetStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp StatsResponse

		if err := database.DB.Model(&models.Customer{}).Count(&resp.Customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stats")
		}
		if err := database.DB.Model(&models.Customer{}).Where("is_paid = ?", false).Count(&resp.Unpaid).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stats")
		}
		if err := database.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&resp.PendingOrders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stats")
		}
		if err := database.DB.Model(&models.Delivery{}).Count(&resp.Deliveries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute stats")
		}

		return c.JSON(resp)
	}
}

package orders

import (
	"errors"
	"fmt"
	"time"

	"water-backend/internal/billing"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fulfill marks a pending order as delivered: the status flip, the delivery
// insert and the customer counter bump commit together or not at all. Two
// concurrent calls on the same order can never both succeed: the order row is
// locked for the duration of the transaction, and the status flip is guarded
// by a conditional update on top of that.
func Fulfill(db *gorm.DB, orderID uint, litersPerBottle decimal.Decimal, now time.Time) (models.Order, models.Delivery, error) {
	var (
		updated  models.Order
		delivery models.Delivery
	)

	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := database.LockForUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", billing.ErrNotFound, orderID)
			}
			return err
		}

		f, err := billing.Fulfill(&order, litersPerBottle, now)
		if err != nil {
			return err
		}

		// Lock the customer row too; a concurrent direct delivery or payment
		// must not interleave with the counter update.
		var cust models.Customer
		if err := database.LockForUpdate(tx).First(&cust, order.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer %d", billing.ErrNotFound, order.CustomerID)
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusDelivered,
				"delivered_date": f.DeliveredDate,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: order %d is no longer pending", billing.ErrInvalidState, order.ID)
		}

		if err := tx.Create(&f.Delivery).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", order.CustomerID).
			Updates(map[string]interface{}{
				"total_bottles":       gorm.Expr("total_bottles + ?", f.Delta.TotalBottles),
				"monthly_consumption": gorm.Expr("monthly_consumption + ?", f.Delta.MonthlyConsumption),
			}).Error; err != nil {
			return err
		}

		order.Status = models.OrderStatusDelivered
		deliveredDate := f.DeliveredDate
		order.DeliveredDate = &deliveredDate
		updated = order
		delivery = f.Delivery
		return nil
	})
	if err != nil {
		return models.Order{}, models.Delivery{}, err
	}
	return updated, delivery, nil
}

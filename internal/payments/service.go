package payments

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

// Record persists a payment and reconciles the customer's billing period.
// The customer row is locked first so two concurrent payments cannot both
// read the pre-payment balance and both advance the renewal date.
func Record(db *gorm.DB, customerID uint, amount decimal.Decimal, method models.PaymentMethod, pricePerBottle decimal.Decimal, now time.Time) (models.Payment, billing.PaymentResult, error) {
	var (
		payment models.Payment
		result  billing.PaymentResult
	)

	err := db.Transaction(func(tx *gorm.DB) error {
		var cust models.Customer
		if err := database.LockForUpdate(tx).First(&cust, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer %d", billing.ErrNotFound, customerID)
			}
			return err
		}

		if amount.Sign() <= 0 {
			return fmt.Errorf("%w: payment amount %s", billing.ErrInvalidInput, amount)
		}

		row := models.Payment{
			CustomerID: customerID,
			Amount:     amount,
			Method:     method,
			Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		// Every payment since the start of the billing period, the new one
		// included.
		periodStart := billing.PeriodStart(cust.RenewalDate, now)
		var amounts []decimal.Decimal
		if err := tx.Model(&models.Payment{}).
			Where("customer_id = ? AND date >= ?", customerID, periodStart).
			Order("date asc, id asc").
			Pluck("amount", &amounts).Error; err != nil {
			return err
		}

		res, err := billing.ApplyPayment(billing.CustomerState{
			MonthlyConsumption: cust.MonthlyConsumption,
			IsPaid:             cust.IsPaid,
			RenewalDate:        cust.RenewalDate,
		}, amounts, pricePerBottle, now)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", customerID).
			Updates(map[string]interface{}{
				"is_paid":             res.Customer.IsPaid,
				"monthly_consumption": res.Customer.MonthlyConsumption,
				"renewal_date":        res.Customer.RenewalDate,
			}).Error; err != nil {
			return err
		}

		payment = row
		result = res
		return nil
	})
	if err != nil {
		return models.Payment{}, billing.PaymentResult{}, err
	}
	return payment, result, nil
}

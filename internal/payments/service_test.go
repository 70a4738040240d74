package payments

import (
	"fmt"
	"testing"
	"time"

	"water-backend/internal/billing"
	"water-backend/internal/database"
	"water-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var price = decimal.NewFromInt(50)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, consumption int, renewal time.Time) models.Customer {
	t.Helper()
	cust := models.Customer{
		Name:               "Test Customer",
		Phone:              "5550001",
		MonthlyConsumption: consumption,
		TotalBottles:       20,
		IsPaid:             false,
		RenewalDate:        &renewal,
	}
	require.NoError(t, db.Create(&cust).Error)
	return cust
}

func TestRecordPaymentClearsPeriod(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 8, renewal) // bill: 8 x 50 = 400
	now := time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC)

	payment, result, err := Record(db, cust.ID, decimal.NewFromInt(400), models.PaymentMethodCash, price, now)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", payment.Date.Format("2006-01-02"))
	assert.True(t, result.Balance.IsZero())
	assert.True(t, result.Customer.IsPaid)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.True(t, fresh.IsPaid)
	assert.Equal(t, 0, fresh.MonthlyConsumption)
	require.NotNil(t, fresh.RenewalDate)
	assert.Equal(t, "2025-04-15", fresh.RenewalDate.Format("2006-01-02"))
	// Total bottles are untouched by payments.
	assert.Equal(t, 20, fresh.TotalBottles)
}

func TestRecordPartialPaymentLeavesPeriodOpen(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 8, renewal)
	now := time.Date(2025, time.March, 10, 11, 0, 0, 0, time.UTC)

	_, result, err := Record(db, cust.ID, decimal.NewFromInt(150), models.PaymentMethodCard, price, now)
	require.NoError(t, err)

	assert.Equal(t, "250", result.Balance.String())
	assert.False(t, result.Customer.IsPaid)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.False(t, fresh.IsPaid)
	assert.Equal(t, 8, fresh.MonthlyConsumption)
	assert.Equal(t, "2025-03-15", fresh.RenewalDate.Format("2006-01-02"))
}

func TestRecordPaymentsAccumulateWithinPeriod(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 8, renewal)

	_, result, err := Record(db, cust.ID, decimal.NewFromInt(150), models.PaymentMethodCash, price,
		time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, result.Customer.IsPaid)

	// The second payment sees the first one and clears the remainder.
	_, result, err = Record(db, cust.ID, decimal.NewFromInt(250), models.PaymentMethodOnline, price,
		time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, result.Balance.IsZero())
	assert.True(t, result.Customer.IsPaid)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, 0, fresh.MonthlyConsumption)
	assert.Equal(t, "2025-04-15", fresh.RenewalDate.Format("2006-01-02"))

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("customer_id = ?", cust.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRecordPaymentIgnoresPreviousPeriod(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 8, renewal)

	// A payment from before the period start must not count toward the bill.
	old := models.Payment{
		CustomerID: cust.ID,
		Amount:     decimal.NewFromInt(400),
		Method:     models.PaymentMethodCash,
		Date:       time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&old).Error)

	_, result, err := Record(db, cust.ID, decimal.NewFromInt(150), models.PaymentMethodCash, price,
		time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "250", result.Balance.String())
	assert.False(t, result.Customer.IsPaid)
}

func TestRecordPaymentZeroConsumption(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 0, renewal)

	_, result, err := Record(db, cust.ID, decimal.NewFromInt(10), models.PaymentMethodCash, price,
		time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Zero bill: any payment pays ahead.
	assert.True(t, result.Customer.IsPaid)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, "2025-07-01", fresh.RenewalDate.Format("2006-01-02"))
}

func TestRecordPaymentUnknownCustomer(t *testing.T) {
	db := newTestDB(t)

	_, _, err := Record(db, 999, decimal.NewFromInt(50), models.PaymentMethodCash, price, time.Now())
	assert.ErrorIs(t, err, billing.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordPaymentInvalidAmountRollsBack(t *testing.T) {
	db := newTestDB(t)
	renewal := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	cust := seedCustomer(t, db, 8, renewal)

	_, _, err := Record(db, cust.ID, decimal.Zero, models.PaymentMethodCash, price, time.Now())
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	// Nothing was persisted, nothing mutated.
	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, 8, fresh.MonthlyConsumption)
	assert.False(t, fresh.IsPaid)
}

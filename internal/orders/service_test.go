package orders

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

var litersPerBottle = decimal.RequireFromString("18.9")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seed(t *testing.T, db *gorm.DB) (models.Customer, models.Order) {
	t.Helper()
	cust := models.Customer{Name: "Test Customer", Phone: "5550001", TotalBottles: 10, MonthlyConsumption: 4, IsPaid: true}
	require.NoError(t, db.Create(&cust).Error)
	order := models.Order{
		CustomerID: cust.ID,
		Quantity:   5,
		Status:     models.OrderStatusPending,
		Date:       time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		Time:       "10:00 AM",
	}
	require.NoError(t, db.Create(&order).Error)
	return cust, order
}

func TestFulfillPendingOrder(t *testing.T) {
	db := newTestDB(t)
	cust, order := seed(t, db)
	now := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

	updated, delivery, err := Fulfill(db, order.ID, litersPerBottle, now)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredDate)
	assert.Equal(t, "2025-03-10", updated.DeliveredDate.Format("2006-01-02"))

	assert.Equal(t, cust.ID, delivery.CustomerID)
	assert.Equal(t, 5, delivery.Quantity)
	assert.Equal(t, "94.5", delivery.Liters.String())

	// Exactly one delivery row was created.
	var count int64
	require.NoError(t, db.Model(&models.Delivery{}).Where("customer_id = ?", cust.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Counters both increased by the order quantity.
	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, 15, fresh.TotalBottles)
	assert.Equal(t, 9, fresh.MonthlyConsumption)

	// The order row is really delivered.
	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, freshOrder.Status)
}

func TestFulfillTwiceRejectsSecondAttempt(t *testing.T) {
	db := newTestDB(t)
	cust, order := seed(t, db)
	now := time.Now()

	_, _, err := Fulfill(db, order.ID, litersPerBottle, now)
	require.NoError(t, err)

	_, _, err = Fulfill(db, order.ID, litersPerBottle, now)
	assert.ErrorIs(t, err, billing.ErrInvalidState)

	// No second delivery, no double-credited counters.
	var count int64
	require.NoError(t, db.Model(&models.Delivery{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, 15, fresh.TotalBottles)
	assert.Equal(t, 9, fresh.MonthlyConsumption)
}

func TestFulfillCancelledOrderHasNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	cust, order := seed(t, db)
	require.NoError(t, db.Model(&order).Update("status", models.OrderStatusCancelled).Error)

	_, _, err := Fulfill(db, order.ID, litersPerBottle, time.Now())
	assert.ErrorIs(t, err, billing.ErrInvalidState)

	var count int64
	require.NoError(t, db.Model(&models.Delivery{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var fresh models.Customer
	require.NoError(t, db.First(&fresh, cust.ID).Error)
	assert.Equal(t, 10, fresh.TotalBottles)
	assert.Equal(t, 4, fresh.MonthlyConsumption)

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, freshOrder.Status)
	assert.Nil(t, freshOrder.DeliveredDate)
}

func TestFulfillMissingOrder(t *testing.T) {
	db := newTestDB(t)

	_, _, err := Fulfill(db, 999, litersPerBottle, time.Now())
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

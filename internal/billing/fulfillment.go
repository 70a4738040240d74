package billing

import (
	"fmt"
	"time"

	"water-backend/internal/models"

	"github.com/shopspring/decimal"
)

// TimeLayout is how delivery/order times are stored, e.g. "03:04 PM".
const TimeLayout = "03:04 PM"

// CustomerDelta is the counter update a delivery applies to its customer.
type CustomerDelta struct {
	TotalBottles       int
	MonthlyConsumption int
}

type Fulfillment struct {
	DeliveredDate time.Time
	Delivery      models.Delivery
	Delta         CustomerDelta
}

// Fulfill decides the pending -> delivered transition for an order. It is
// pure; the caller applies the status flip, the delivery insert and the
// counter update in one transaction. A second fulfillment of the same order
// must fail, so non-pending orders are rejected rather than treated as
// already done.
func Fulfill(order *models.Order, litersPerBottle decimal.Decimal, now time.Time) (Fulfillment, error) {
	if order == nil {
		return Fulfillment{}, fmt.Errorf("%w: order", ErrNotFound)
	}
	if order.Status != models.OrderStatusPending {
		return Fulfillment{}, fmt.Errorf("%w: order %d is %s, not pending", ErrInvalidState, order.ID, order.Status)
	}
	delivery, delta, err := NewDelivery(order.CustomerID, order.Quantity, nil, litersPerBottle, now)
	if err != nil {
		return Fulfillment{}, err
	}
	return Fulfillment{
		DeliveredDate: dateOnly(now),
		Delivery:      delivery,
		Delta:         delta,
	}, nil
}

// NewDelivery builds a delivery row and its customer counter delta. liters
// defaults to quantity x litersPerBottle when nil (the admin can override it
// when recording a delivery by hand).
func NewDelivery(customerID uint, quantity int, liters *decimal.Decimal, litersPerBottle decimal.Decimal, now time.Time) (models.Delivery, CustomerDelta, error) {
	if quantity <= 0 {
		return models.Delivery{}, CustomerDelta{}, fmt.Errorf("%w: quantity %d", ErrInvalidInput, quantity)
	}
	if litersPerBottle.Sign() <= 0 {
		return models.Delivery{}, CustomerDelta{}, fmt.Errorf("%w: liters per bottle %s", ErrInvalidInput, litersPerBottle)
	}

	vol := litersPerBottle.Mul(decimal.NewFromInt(int64(quantity)))
	if liters != nil {
		if liters.Sign() <= 0 {
			return models.Delivery{}, CustomerDelta{}, fmt.Errorf("%w: liters %s", ErrInvalidInput, liters)
		}
		vol = *liters
	}

	delivery := models.Delivery{
		CustomerID: customerID,
		Quantity:   quantity,
		Liters:     vol,
		Date:       dateOnly(now),
		Time:       now.Format(TimeLayout),
	}
	delta := CustomerDelta{TotalBottles: quantity, MonthlyConsumption: quantity}
	return delivery, delta, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

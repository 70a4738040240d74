package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerState holds the billing-relevant slice of a customer row. The
// caller reads it inside the same transaction that persists the result.
type CustomerState struct {
	MonthlyConsumption int
	IsPaid             bool
	RenewalDate        *time.Time
}

type PaymentResult struct {
	Customer CustomerState
	// Balance is the residual bill for the period after all payments,
	// negative when the customer has paid ahead.
	Balance decimal.Decimal
}

// PeriodStart returns the beginning of the current billing period: one
// calendar month before the renewal date. A customer without a renewal date
// anchors to now, matching the renewal fallback in ApplyPayment.
func PeriodStart(renewalDate *time.Time, now time.Time) time.Time {
	anchor := now
	if renewalDate != nil {
		anchor = *renewalDate
	}
	return anchor.AddDate(0, -1, 0)
}

// ApplyPayment reconciles a customer's billing period after a payment was
// recorded. periodPayments must contain every payment since PeriodStart,
// including the new one. Pure: the caller persists the payment row and the
// returned customer state in one transaction.
//
// The consumption counter resets and the renewal date advances only when the
// period balance clears. A zero-consumption customer owes nothing, so any
// payment immediately satisfies the period.
func ApplyPayment(cust CustomerState, periodPayments []decimal.Decimal, pricePerBottle decimal.Decimal, now time.Time) (PaymentResult, error) {
	if cust.MonthlyConsumption < 0 {
		return PaymentResult{}, fmt.Errorf("%w: negative monthly consumption %d", ErrInvalidInput, cust.MonthlyConsumption)
	}
	if pricePerBottle.Sign() <= 0 {
		return PaymentResult{}, fmt.Errorf("%w: price per bottle %s", ErrInvalidInput, pricePerBottle)
	}

	totalPaid := decimal.Zero
	for _, amount := range periodPayments {
		if amount.Sign() <= 0 {
			return PaymentResult{}, fmt.Errorf("%w: non-positive payment amount %s", ErrInvalidInput, amount)
		}
		totalPaid = totalPaid.Add(amount)
	}

	monthlyBill := decimal.NewFromInt(int64(cust.MonthlyConsumption)).Mul(pricePerBottle)
	balance := monthlyBill.Sub(totalPaid)

	if balance.Sign() <= 0 {
		cust.IsPaid = true
		cust.MonthlyConsumption = 0
		next := nextRenewal(cust.RenewalDate, now)
		cust.RenewalDate = &next
	} else {
		cust.IsPaid = false
	}

	return PaymentResult{Customer: cust, Balance: balance}, nil
}

// nextRenewal advances the renewal date by exactly one calendar month. A
// missing renewal date anchors to the current date instead; this is a
// documented fallback for legacy rows, not silent data loss.
func nextRenewal(renewalDate *time.Time, now time.Time) time.Time {
	anchor := now
	if renewalDate != nil {
		anchor = *renewalDate
	}
	return anchor.AddDate(0, 1, 0)
}

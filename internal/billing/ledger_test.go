package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var price = decimal.NewFromInt(50)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amounts(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(vals))
	for _, v := range vals {
		out = append(out, decimal.RequireFromString(v))
	}
	return out
}

func TestApplyPaymentClearsBalance(t *testing.T) {
	renewal := date(2025, time.March, 15)
	now := date(2025, time.March, 10)

	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 8,
		IsPaid:             false,
		RenewalDate:        &renewal,
	}, amounts("400"), price, now)
	require.NoError(t, err)

	assert.True(t, res.Balance.IsZero())
	assert.True(t, res.Customer.IsPaid)
	assert.Equal(t, 0, res.Customer.MonthlyConsumption)
	require.NotNil(t, res.Customer.RenewalDate)
	assert.Equal(t, date(2025, time.April, 15), *res.Customer.RenewalDate)
}

func TestApplyPaymentPartial(t *testing.T) {
	renewal := date(2025, time.March, 15)
	now := date(2025, time.March, 10)

	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 8,
		IsPaid:             true,
		RenewalDate:        &renewal,
	}, amounts("150"), price, now)
	require.NoError(t, err)

	assert.Equal(t, "250", res.Balance.String())
	assert.False(t, res.Customer.IsPaid)
	assert.Equal(t, 8, res.Customer.MonthlyConsumption)
	assert.Equal(t, renewal, *res.Customer.RenewalDate)
}

func TestApplyPaymentAccumulatesPeriodPayments(t *testing.T) {
	renewal := date(2025, time.March, 15)
	now := date(2025, time.March, 12)

	// 150 earlier in the period plus 250 now clears the 400 bill.
	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 8,
		RenewalDate:        &renewal,
	}, amounts("150", "250"), price, now)
	require.NoError(t, err)

	assert.True(t, res.Balance.IsZero())
	assert.True(t, res.Customer.IsPaid)
	assert.Equal(t, 0, res.Customer.MonthlyConsumption)
	assert.Equal(t, date(2025, time.April, 15), *res.Customer.RenewalDate)
}

func TestApplyPaymentOverpayment(t *testing.T) {
	renewal := date(2025, time.March, 15)

	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 3,
		RenewalDate:        &renewal,
	}, amounts("200.50"), price, date(2025, time.March, 1))
	require.NoError(t, err)

	assert.Equal(t, "-50.5", res.Balance.String())
	assert.True(t, res.Customer.IsPaid)
	assert.Equal(t, 0, res.Customer.MonthlyConsumption)
}

func TestApplyPaymentZeroConsumption(t *testing.T) {
	// A zero-consumption customer is always paid ahead: any payment clears
	// the zero bill.
	renewal := date(2025, time.June, 1)

	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 0,
		RenewalDate:        &renewal,
	}, amounts("10"), price, date(2025, time.May, 20))
	require.NoError(t, err)

	assert.True(t, res.Customer.IsPaid)
	assert.Equal(t, date(2025, time.July, 1), *res.Customer.RenewalDate)
}

func TestApplyPaymentMissingRenewalAnchorsToNow(t *testing.T) {
	now := date(2025, time.August, 3)

	res, err := ApplyPayment(CustomerState{
		MonthlyConsumption: 1,
	}, amounts("50"), price, now)
	require.NoError(t, err)

	require.NotNil(t, res.Customer.RenewalDate)
	assert.Equal(t, date(2025, time.September, 3), *res.Customer.RenewalDate)
}

func TestApplyPaymentIsPure(t *testing.T) {
	renewal := date(2025, time.March, 15)
	state := CustomerState{MonthlyConsumption: 8, RenewalDate: &renewal}
	payments := amounts("400")
	now := date(2025, time.March, 10)

	first, err := ApplyPayment(state, payments, price, now)
	require.NoError(t, err)
	second, err := ApplyPayment(state, payments, price, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The input state must not have been mutated.
	assert.Equal(t, 8, state.MonthlyConsumption)
	assert.Equal(t, renewal, *state.RenewalDate)
}

func TestApplyPaymentRejectsBadInput(t *testing.T) {
	renewal := date(2025, time.March, 15)
	now := date(2025, time.March, 10)

	_, err := ApplyPayment(CustomerState{MonthlyConsumption: -1, RenewalDate: &renewal}, amounts("50"), price, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ApplyPayment(CustomerState{MonthlyConsumption: 5, RenewalDate: &renewal}, amounts("0"), price, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ApplyPayment(CustomerState{MonthlyConsumption: 5, RenewalDate: &renewal}, amounts("-20"), price, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ApplyPayment(CustomerState{MonthlyConsumption: 5, RenewalDate: &renewal}, amounts("50"), decimal.Zero, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPeriodStart(t *testing.T) {
	renewal := date(2025, time.March, 15)
	assert.Equal(t, date(2025, time.February, 15), PeriodStart(&renewal, date(2025, time.March, 1)))

	// No renewal date: period anchors to now.
	assert.Equal(t, date(2025, time.February, 1), PeriodStart(nil, date(2025, time.March, 1)))
}

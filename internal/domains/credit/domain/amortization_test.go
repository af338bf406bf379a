package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPayment_ReferenceLoan(t *testing.T) {
	term := 12
	principal := decimal.NewNullDecimal(decimal.NewFromInt(1_000_000))
	rate := decimal.NewNullDecimal(decimal.NewFromInt(12))

	first := MonthlyPayment(principal, rate, &term)
	require.True(t, first.GreaterThan(decimal.NewFromInt(88_000)), first.String())
	require.True(t, first.LessThan(decimal.NewFromInt(90_000)), first.String())
	require.Equal(t, "88848.79", first.StringFixed(2))

	second := MonthlyPayment(principal, rate, &term)
	require.True(t, first.Equal(second))
}

func TestMonthlyPayment_AbsentInputIsZero(t *testing.T) {
	term := 12
	principal := decimal.NewNullDecimal(decimal.NewFromInt(1_000_000))
	rate := decimal.NewNullDecimal(decimal.NewFromInt(12))

	require.True(t, MonthlyPayment(decimal.NullDecimal{}, rate, &term).IsZero())
	require.True(t, MonthlyPayment(principal, decimal.NullDecimal{}, &term).IsZero())
	require.True(t, MonthlyPayment(principal, rate, nil).IsZero())

	zeroTerm := 0
	require.True(t, MonthlyPayment(principal, rate, &zeroTerm).IsZero())
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	term := 24
	got := MonthlyPayment(
		decimal.NewNullDecimal(decimal.NewFromInt(1_200_000)),
		decimal.NewNullDecimal(decimal.Zero),
		&term,
	)
	require.Equal(t, "50000.00", got.StringFixed(2))
}

func TestApplicationMonthlyPayment_UsesAssignedRate(t *testing.T) {
	app := newPending(t)
	payment := app.MonthlyPayment()
	require.True(t, payment.GreaterThan(decimal.Zero))
	require.True(t, payment.Equal(payment.Round(2)))
}

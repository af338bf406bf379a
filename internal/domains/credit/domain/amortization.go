package domain

import "github.com/shopspring/decimal"

const (
	monthlyRatePrecision = 10
	paymentPrecision     = 2
)

var monthsTimesPercent = decimal.NewFromInt(1200)

// MonthlyPayment computes the fixed installment M = P·r·(1+r)^n / ((1+r)^n − 1) with
// r = annualRatePercent / 1200. The monthly rate keeps 10 fractional digits and the
// result is rounded half-up to 2 digits.
//
// A missing principal, rate or term yields zero. That is a display default, not a
// validation signal; amount and term are validated when the application is created.
// A zero rate degenerates to principal / n.
func MonthlyPayment(principal, annualRatePercent decimal.NullDecimal, termMonths *int) decimal.Decimal {
	if !principal.Valid || !annualRatePercent.Valid || termMonths == nil || *termMonths <= 0 {
		return decimal.Zero
	}
	n := *termMonths
	if annualRatePercent.Decimal.IsZero() {
		return principal.Decimal.DivRound(decimal.NewFromInt(int64(n)), paymentPrecision)
	}
	r := annualRatePercent.Decimal.DivRound(monthsTimesPercent, monthlyRatePrecision)
	growth := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(n)))
	numerator := principal.Decimal.Mul(r).Mul(growth)
	denominator := growth.Sub(decimal.NewFromInt(1))
	if denominator.IsZero() {
		return principal.Decimal.DivRound(decimal.NewFromInt(int64(n)), paymentPrecision)
	}
	return numerator.DivRound(denominator, paymentPrecision)
}

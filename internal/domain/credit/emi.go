package credit

import (
	"github.com/shopspring/decimal"
)

const (
	// workingPlaces bounds the scale of intermediate results while compounding.
	workingPlaces = 28
	moneyPlaces   = 2
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
	one           = decimal.NewFromInt(1)
)

// MonthlyInstallment returns the fixed monthly payment that amortizes principal
// over months at annualRate percent, compounded monthly, rounded half away from
// zero to two places. Callers validate that principal and annualRate are non-negative.
func MonthlyInstallment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(months))

	monthlyRate := annualRate.DivRound(hundred, workingPlaces).DivRound(monthsPerYear, workingPlaces)
	if monthlyRate.IsZero() {
		return principal.DivRound(n, workingPlaces).Round(moneyPlaces)
	}

	factor := compound(one.Add(monthlyRate), months)
	numerator := principal.Mul(monthlyRate).Mul(factor)
	denominator := factor.Sub(one)

	return numerator.DivRound(denominator, workingPlaces).Round(moneyPlaces)
}

func compound(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(workingPlaces)
		}
		base = base.Mul(base).Round(workingPlaces)
		n >>= 1
	}
	return result
}

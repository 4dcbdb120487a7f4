package credit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyInstallment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
		expected  string
	}{
		{"standard two year loan", "500000", "10.5", 24, "23188.02"},
		{"one year at twelve percent", "100000", "12", 12, "8884.88"},
		{"one year at eight percent", "100000", "8", 12, "8698.84"},
		{"fifty year term", "400000", "9.5", 600, "3194.83"},
		{"zero rate divides evenly", "100000", "0", 3, "33333.33"},
		{"zero rate midpoint rounds away from zero", "1000.01", "0", 2, "500.01"},
		{"zero term", "100000", "10", 0, "0.00"},
		{"negative term", "100000", "10", -3, "0.00"},
		{"zero principal", "0", "10", 12, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyInstallment(decimal.RequireFromString(tt.principal), decimal.RequireFromString(tt.rate), tt.months)
			assert.Equal(t, tt.expected, got.StringFixed(2))
		})
	}
}

func TestMonthlyInstallmentZeroRateIsPrincipalOverTerm(t *testing.T) {
	principal := decimal.RequireFromString("90000")
	for months := 1; months <= 36; months++ {
		expected := principal.DivRound(decimal.NewFromInt(int64(months)), 10).Round(2)
		got := MonthlyInstallment(principal, decimal.Zero, months)
		assert.True(t, expected.Equal(got), "months=%d expected=%s got=%s", months, expected, got)
	}
}

func TestMonthlyInstallmentIsDeterministic(t *testing.T) {
	p := decimal.RequireFromString("250000")
	r := decimal.RequireFromString("20")

	first := MonthlyInstallment(p, r, 12)
	second := MonthlyInstallment(p, r, 12)

	assert.True(t, first.Equal(second))
	assert.Equal(t, "23158.63", first.StringFixed(2))
}

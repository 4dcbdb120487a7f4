package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMaxIncomeShare = "0.5"

// AffordabilityGuard caps the total monthly obligation at a share of income.
type AffordabilityGuard struct {
	MaxIncomeShare decimal.Decimal
}

func NewAffordabilityGuard(maxIncomeShare decimal.Decimal) AffordabilityGuard {
	return AffordabilityGuard{MaxIncomeShare: maxIncomeShare}
}

func (g AffordabilityGuard) Ceiling(b Borrower) decimal.Decimal {
	return b.MonthlyIncome.Mul(g.MaxIncomeShare)
}

// Allows reports whether candidate fits under the ceiling next to the
// installments of the loans current on today.
func (g AffordabilityGuard) Allows(b Borrower, history []Obligation, candidate decimal.Decimal, today time.Time) bool {
	return CurrentInstallments(history, today).Add(candidate).LessThanOrEqual(g.Ceiling(b))
}

func CurrentInstallments(history []Obligation, today time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range currentLoans(history, today) {
		sum = sum.Add(o.MonthlyInstallment)
	}
	return sum
}

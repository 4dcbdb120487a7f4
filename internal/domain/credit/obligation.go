// Package credit holds the pure decision rules: installment pricing, scoring,
// the rate slab policy and the affordability ceiling. Nothing here touches storage.
package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Obligation is the view of an existing loan that the scoring and
// affordability rules need.
type Obligation struct {
	Principal          decimal.Decimal
	Tenure             int
	EMIsPaidOnTime     int
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	EndDate            time.Time
}

// IsCurrent reports whether the loan is still running on today (end date inclusive).
func (o Obligation) IsCurrent(today time.Time) bool {
	return !DateOf(o.EndDate).Before(DateOf(today))
}

// Borrower carries the customer attributes the rules read.
type Borrower struct {
	CustomerID    int64
	MonthlyIncome decimal.Decimal
	ApprovedLimit decimal.Decimal
}

// DateOf drops the clock part of t, keeping its calendar date, and returns it at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LoanEndDate applies the 30-day month convention used for every stored loan.
func LoanEndDate(start time.Time, tenure int) time.Time {
	return DateOf(start).AddDate(0, 0, 30*tenure)
}

// LoanStartDate is the inverse of LoanEndDate.
func LoanStartDate(end time.Time, tenure int) time.Time {
	return DateOf(end).AddDate(0, 0, -30*tenure)
}

func currentLoans(history []Obligation, today time.Time) []Obligation {
	current := make([]Obligation, 0, len(history))
	for _, o := range history {
		if o.IsCurrent(today) {
			current = append(current, o)
		}
	}
	return current
}

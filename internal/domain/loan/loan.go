package loan

import (
	"credit-engine/internal/domain/credit"
	"time"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID                 int64
	CustomerID         int64
	LoanAmount         decimal.Decimal
	Tenure             int
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	EMIsPaidOnTime     int
	StartDate          time.Time
	EndDate            time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewLoan turns an approved decision into a ledger entry starting on today.
// The stored rate and installment are the corrected ones.
func NewLoan(d credit.Decision, today time.Time) *Loan {
	start := credit.DateOf(today)
	return &Loan{
		CustomerID:         d.CustomerID,
		LoanAmount:         d.LoanAmount,
		Tenure:             d.Tenure,
		InterestRate:       d.CorrectedRate,
		MonthlyInstallment: d.MonthlyInstallment,
		EMIsPaidOnTime:     0,
		StartDate:          start,
		EndDate:            credit.LoanEndDate(start, d.Tenure),
	}
}

func (l *Loan) Obligation() credit.Obligation {
	return credit.Obligation{
		Principal:          l.LoanAmount,
		Tenure:             l.Tenure,
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		MonthlyInstallment: l.MonthlyInstallment,
		StartDate:          l.StartDate,
		EndDate:            l.EndDate,
	}
}

func (l *Loan) IsCurrent(today time.Time) bool {
	return l.Obligation().IsCurrent(today)
}

func (l *Loan) RepaymentsLeft() int {
	return max(l.Tenure-l.EMIsPaidOnTime, 0)
}

func Obligations(loans []*Loan) []credit.Obligation {
	out := make([]credit.Obligation, 0, len(loans))
	for _, l := range loans {
		out = append(out, l.Obligation())
	}
	return out
}

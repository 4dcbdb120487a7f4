package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

type RejectionReason string

const (
	ReasonNone              RejectionReason = ""
	ReasonUnaffordable      RejectionReason = "affordability_exceeded"
	ReasonCreditScoreTooLow RejectionReason = "credit_score_too_low"
)

// Message is the customer-facing text for a reason.
func (r RejectionReason) Message() string {
	switch r {
	case ReasonNone:
		return "Loan approved"
	case ReasonUnaffordable:
		return "Loan not approved: total monthly installments would exceed the allowed share of monthly income."
	case ReasonCreditScoreTooLow:
		return "Loan not approved: credit score is too low."
	default:
		return "Loan not approved based on credit rules/affordability."
	}
}

// Request is a validated loan application.
type Request struct {
	CustomerID   int64
	LoanAmount   decimal.Decimal
	InterestRate decimal.Decimal
	Tenure       int
}

// Decision is the outcome of one evaluation. It is never persisted.
type Decision struct {
	CustomerID         int64
	LoanAmount         decimal.Decimal
	RequestedRate      decimal.Decimal
	CorrectedRate      decimal.Decimal
	Tenure             int
	MonthlyInstallment decimal.Decimal
	CreditScore        int
	Approved           bool
	Reason             RejectionReason
}

// Engine composes scoring, pricing, affordability and the slab policy.
type Engine struct {
	scorer Scorer
	guard  AffordabilityGuard
}

func NewEngine(noHistoryScore int, maxIncomeShare decimal.Decimal) *Engine {
	return &Engine{
		scorer: NewScorer(noHistoryScore),
		guard:  NewAffordabilityGuard(maxIncomeShare),
	}
}

func (e *Engine) Score(b Borrower, history []Obligation, today time.Time) int {
	return e.scorer.Score(b, history, today)
}

func (e *Engine) Affordable(b Borrower, history []Obligation, candidate decimal.Decimal, today time.Time) bool {
	return e.guard.Allows(b, history, candidate, today)
}

// Decide runs a single pass over one snapshot of the borrower's loans.
// Affordability is checked against the installment at the requested rate;
// the returned installment is the one at the corrected rate once the request
// clears that check.
func (e *Engine) Decide(b Borrower, history []Obligation, req Request, today time.Time) Decision {
	score := e.scorer.Score(b, history, today)
	requestedEMI := MonthlyInstallment(req.LoanAmount, req.InterestRate, req.Tenure)

	d := Decision{
		CustomerID:         req.CustomerID,
		LoanAmount:         req.LoanAmount,
		RequestedRate:      req.InterestRate,
		CorrectedRate:      req.InterestRate,
		Tenure:             req.Tenure,
		MonthlyInstallment: requestedEMI,
		CreditScore:        score,
	}

	if !e.guard.Allows(b, history, requestedEMI, today) {
		d.Reason = ReasonUnaffordable
		return d
	}

	allowed, corrected := ApplyPolicy(score, req.InterestRate)
	d.CorrectedRate = corrected
	d.MonthlyInstallment = MonthlyInstallment(req.LoanAmount, corrected, req.Tenure)
	d.Approved = allowed && score > 10
	if !d.Approved {
		d.Reason = ReasonCreditScoreTooLow
	}
	return d
}

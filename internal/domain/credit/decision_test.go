package credit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultNoHistoryScore, decimal.RequireFromString(DefaultMaxIncomeShare))
}

func request(amount, rate string, tenure int) Request {
	return Request{
		CustomerID:   1,
		LoanAmount:   decimal.RequireFromString(amount),
		InterestRate: decimal.RequireFromString(rate),
		Tenure:       tenure,
	}
}

func TestEngineDecide_FirstLoanApproved(t *testing.T) {
	d := newTestEngine().Decide(borrower(50000, 1800000), nil, request("500000", "10.5", 24), scoreDay)

	assert.True(t, d.Approved)
	assert.Equal(t, ReasonNone, d.Reason)
	assert.Equal(t, 60, d.CreditScore)
	assert.Equal(t, "10.5", d.CorrectedRate.String())
	assert.Equal(t, "23188.02", d.MonthlyInstallment.StringFixed(2))
	assert.Equal(t, 24, d.Tenure)
}

func TestEngineDecide_UnaffordableKeepsRequestedTerms(t *testing.T) {
	d := newTestEngine().Decide(borrower(20000, 700000), nil, request("500000", "10.5", 24), scoreDay)

	assert.False(t, d.Approved)
	assert.Equal(t, ReasonUnaffordable, d.Reason)
	assert.True(t, d.CorrectedRate.Equal(d.RequestedRate))
	assert.Equal(t, "23188.02", d.MonthlyInstallment.StringFixed(2))
}

func TestEngineDecide_MidScoreCorrectsRate(t *testing.T) {
	var history []Obligation
	for i := 0; i < 6; i++ {
		history = append(history, withInstallment(obligation(10000, 12, 0, day(2026, 1, 1+i), day(2026, 12, 1)), "1000"))
	}

	d := newTestEngine().Decide(borrower(100000, 1000000), history, request("100000", "10", 12), scoreDay)

	assert.True(t, d.Approved)
	assert.Equal(t, 35, d.CreditScore)
	assert.Equal(t, "12", d.CorrectedRate.String())
	assert.Equal(t, "8884.88", d.MonthlyInstallment.StringFixed(2))
}

func TestEngineDecide_LowScoreRejected(t *testing.T) {
	var history []Obligation
	for i := 0; i < 6; i++ {
		history = append(history, obligation(500000, 2, 0, day(2026, 1, 1+i), day(2026, 3, 1)))
	}

	d := newTestEngine().Decide(borrower(100000, 1000000), history, request("100000", "10", 12), scoreDay)

	assert.False(t, d.Approved)
	assert.Equal(t, 5, d.CreditScore)
	assert.Equal(t, ReasonCreditScoreTooLow, d.Reason)
	assert.Equal(t, "10", d.CorrectedRate.String())
	assert.Equal(t, "8791.59", d.MonthlyInstallment.StringFixed(2))
}

func TestEngineDecide_OverLimitRejected(t *testing.T) {
	history := []Obligation{
		withInstallment(obligation(900000, 24, 3, day(2026, 1, 1), day(2027, 12, 1)), "100"),
	}

	d := newTestEngine().Decide(borrower(100000, 800000), history, request("10000", "14", 12), scoreDay)

	assert.False(t, d.Approved)
	assert.Equal(t, 0, d.CreditScore)
	assert.Equal(t, ReasonCreditScoreTooLow, d.Reason)
}

func TestRejectionReasonMessage(t *testing.T) {
	assert.Equal(t, "Loan approved", ReasonNone.Message())
	assert.Contains(t, ReasonUnaffordable.Message(), "monthly income")
	assert.Contains(t, ReasonCreditScoreTooLow.Message(), "credit score")
}

package dto

import (
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
)

// LoanRequest is the body of both /check-eligibility and /create-loan.
// Amounts accept JSON numbers or numeric strings; an absent or null amount
// fails validation instead of reading as zero.
type LoanRequest struct {
	CustomerID   int64               `json:"customer_id" validate:"required,gt=0"`
	LoanAmount   decimal.NullDecimal `json:"loan_amount" swaggertype:"number" validate:"required"`
	InterestRate decimal.NullDecimal `json:"interest_rate" swaggertype:"number" validate:"required"`
	Tenure       int                 `json:"tenure" validate:"required,gt=0"`
}

func (r *LoanRequest) ToCredit() credit.Request {
	return credit.Request{
		CustomerID:   r.CustomerID,
		LoanAmount:   r.LoanAmount.Decimal,
		InterestRate: r.InterestRate.Decimal,
		Tenure:       r.Tenure,
	}
}

type EligibilityResponse struct {
	CustomerID            int64  `json:"customer_id"`
	Approval              bool   `json:"approval"`
	InterestRate          string `json:"interest_rate"`
	CorrectedInterestRate string `json:"corrected_interest_rate"`
	Tenure                int    `json:"tenure"`
	MonthlyInstallment    string `json:"monthly_installment"`
}

func NewEligibilityResponse(d credit.Decision) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            d.CustomerID,
		Approval:              d.Approved,
		InterestRate:          Money(d.RequestedRate),
		CorrectedInterestRate: Money(d.CorrectedRate),
		Tenure:                d.Tenure,
		MonthlyInstallment:    Money(d.MonthlyInstallment),
	}
}

type CreateLoanResponse struct {
	LoanID             *int64 `json:"loan_id"`
	CustomerID         int64  `json:"customer_id"`
	LoanApproved       bool   `json:"loan_approved"`
	Message            string `json:"message"`
	MonthlyInstallment string `json:"monthly_installment"`
}

func NewCreateLoanResponse(res *loan.CreateResult) CreateLoanResponse {
	resp := CreateLoanResponse{
		CustomerID:         res.Decision.CustomerID,
		LoanApproved:       res.Loan != nil,
		Message:            res.Decision.Reason.Message(),
		MonthlyInstallment: Money(res.Decision.MonthlyInstallment),
	}
	if res.Loan != nil {
		id := res.Loan.ID
		resp.LoanID = &id
		resp.MonthlyInstallment = Money(res.Loan.MonthlyInstallment)
	}
	return resp
}

type LoanCustomer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int    `json:"age"`
}

type LoanDetailResponse struct {
	LoanID             int64        `json:"loan_id"`
	Customer           LoanCustomer `json:"customer"`
	LoanAmount         string       `json:"loan_amount"`
	InterestRate       string       `json:"interest_rate"`
	MonthlyInstallment string       `json:"monthly_installment"`
	Tenure             int          `json:"tenure"`
}

func NewLoanDetailResponse(l *loan.Loan, c *customer.Customer) LoanDetailResponse {
	return LoanDetailResponse{
		LoanID: l.ID,
		Customer: LoanCustomer{
			ID:          c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Age:         c.Age,
		},
		LoanAmount:         Money(l.LoanAmount),
		InterestRate:       Money(l.InterestRate),
		MonthlyInstallment: Money(l.MonthlyInstallment),
		Tenure:             l.Tenure,
	}
}

type CurrentLoanResponse struct {
	LoanID             int64  `json:"loan_id"`
	LoanAmount         string `json:"loan_amount"`
	InterestRate       string `json:"interest_rate"`
	MonthlyInstallment string `json:"monthly_installment"`
	RepaymentsLeft     int    `json:"repayments_left"`
}

func NewCurrentLoansResponse(loans []*loan.Loan) []CurrentLoanResponse {
	resp := make([]CurrentLoanResponse, len(loans))
	for i, l := range loans {
		resp[i] = CurrentLoanResponse{
			LoanID:             l.ID,
			LoanAmount:         Money(l.LoanAmount),
			InterestRate:       Money(l.InterestRate),
			MonthlyInstallment: Money(l.MonthlyInstallment),
			RepaymentsLeft:     l.RepaymentsLeft(),
		}
	}
	return resp
}

package event

import (
	"context"
	"time"
)

const (
	RoutingKeyCustomerRegistered      = "customer.registered"
	RoutingKeyLoanApproved            = "loan.approved"
	RoutingKeyReconciliationCompleted = "reconciliation.completed"
)

type Publisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishLoanApproved(ctx context.Context, event LoanApprovedEvent) error
	PublishReconciliationCompleted(ctx context.Context, event ReconciliationCompletedEvent) error
}

type CustomerRegisteredEvent struct {
	CustomerID    int64     `json:"customer_id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	MonthlyIncome int64     `json:"monthly_income"`
	ApprovedLimit int64     `json:"approved_limit"`
	PhoneNumber   string    `json:"phone_number"`
	Timestamp     time.Time `json:"timestamp"`
}

type LoanApprovedEvent struct {
	LoanID             int64     `json:"loan_id"`
	CustomerID         int64     `json:"customer_id"`
	LoanAmount         string    `json:"loan_amount"`
	InterestRate       string    `json:"interest_rate"`
	Tenure             int       `json:"tenure"`
	MonthlyInstallment string    `json:"monthly_installment"`
	CreditScore        int       `json:"credit_score"`
	StartDate          string    `json:"start_date"`
	EndDate            string    `json:"end_date"`
	Timestamp          time.Time `json:"timestamp"`
}

type ReconciliationCompletedEvent struct {
	RunID            string    `json:"run_id"`
	Status           string    `json:"status"`
	CustomersCreated int       `json:"customers_created"`
	CustomersUpdated int       `json:"customers_updated"`
	LoansCreated     int       `json:"loans_created"`
	LoansUpdated     int       `json:"loans_updated"`
	Errors           int       `json:"errors"`
	Timestamp        time.Time `json:"timestamp"`
}

// NoopPublisher drops every event. It stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCustomerRegistered(context.Context, CustomerRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoanApproved(context.Context, LoanApprovedEvent) error {
	return nil
}

func (NoopPublisher) PublishReconciliationCompleted(context.Context, ReconciliationCompletedEvent) error {
	return nil
}

var _ Publisher = NoopPublisher{}

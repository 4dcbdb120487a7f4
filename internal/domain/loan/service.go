package loan

import (
	"context"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	MaxTenureMonths = 600
	maxMoneyPlaces  = 2

	operationCheck  = "check_eligibility"
	operationCreate = "create_loan"
)

// CreateResult carries the decision and, when approved, the stored loan.
type CreateResult struct {
	Decision credit.Decision
	Loan     *Loan
}

// Details is a stored loan with its owning customer.
type Details struct {
	Loan     *Loan
	Customer *customer.Customer
}

type Service interface {
	CheckEligibility(ctx context.Context, req credit.Request) (credit.Decision, error)

	CreateLoan(ctx context.Context, req credit.Request) (*CreateResult, error)

	GetLoan(ctx context.Context, loanID int64) (*Details, error)

	ListCurrentLoans(ctx context.Context, customerID int64) ([]*Loan, error)
}

var _ Service = (*loanService)(nil)

type loanService struct {
	repo      Repository
	customers customer.Service
	engine    *credit.Engine
	pub       event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewLoanService(repo Repository, customers customer.Service, engine *credit.Engine, publisher event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &loanService{
		repo:      repo,
		customers: customers,
		engine:    engine,
		pub:       publisher,
		logger:    logger.With(slog.String("component", "loanService")),
		now:       time.Now,
	}
}

func ValidateRequest(req credit.Request) error {
	switch {
	case req.CustomerID <= 0:
		return apperrors.NewValidationError("customer_id", "must be positive")
	case !req.LoanAmount.IsPositive():
		return apperrors.NewValidationError("loan_amount", "must be greater than zero")
	case !req.LoanAmount.Equal(req.LoanAmount.Round(maxMoneyPlaces)):
		return apperrors.NewValidationError("loan_amount", "must have at most 2 decimal places")
	case req.InterestRate.IsNegative():
		return apperrors.NewValidationError("interest_rate", "cannot be negative")
	case !req.InterestRate.Equal(req.InterestRate.Round(maxMoneyPlaces)):
		return apperrors.NewValidationError("interest_rate", "must have at most 2 decimal places")
	case req.Tenure < 1:
		return apperrors.NewValidationError("tenure", "must be at least 1 month")
	case req.Tenure > MaxTenureMonths:
		return apperrors.NewValidationError("tenure", fmt.Sprintf("must be at most %d months", MaxTenureMonths))
	}
	return nil
}

func (s *loanService) CheckEligibility(ctx context.Context, req credit.Request) (decision credit.Decision, err error) {
	if err := ValidateRequest(req); err != nil {
		return credit.Decision{}, err
	}

	tx, err := s.repo.BeginSnapshotTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin snapshot transaction", slog.Any("error", err))
		return credit.Decision{}, fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}
	defer func() {
		_ = s.repo.RollbackTx(ctx, tx)
	}()

	cust, loans, err := s.loadSnapshot(ctx, tx, req.CustomerID, false)
	if err != nil {
		return credit.Decision{}, err
	}

	decision = s.engine.Decide(cust.Borrower(), Obligations(loans), req, credit.DateOf(s.now()))
	monitoring.RecordDecision(operationCheck, outcome(decision))
	s.logger.InfoContext(ctx, "Eligibility checked",
		slog.Int64("customerID", req.CustomerID),
		slog.Int("creditScore", decision.CreditScore),
		slog.Bool("approved", decision.Approved),
		slog.String("reason", string(decision.Reason)),
	)
	return decision, nil
}

func (s *loanService) CreateLoan(ctx context.Context, req credit.Request) (result *CreateResult, err error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %w", apperrors.ErrInternalServer, err)
	}

	committed := false
	defer func() {
		if p := recover(); p != nil {
			s.logger.ErrorContext(ctx, "Panic occurred during loan creation", slog.Int64("customerID", req.CustomerID), slog.Any("error", p))
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		}
		if !committed {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	cust, loans, err := s.loadSnapshot(ctx, tx, req.CustomerID, true)
	if err != nil {
		return nil, err
	}
	lockedAt := time.Now()

	today := credit.DateOf(s.now())
	borrower := cust.Borrower()
	history := Obligations(loans)

	decision := s.engine.Decide(borrower, history, req, today)
	if decision.Approved && !s.engine.Affordable(borrower, history, decision.MonthlyInstallment, today) {
		// The corrected rate raised the installment past the income ceiling.
		decision.Approved = false
		decision.Reason = credit.ReasonUnaffordable
	}
	monitoring.RecordDecision(operationCreate, outcome(decision))

	if !decision.Approved {
		s.logger.InfoContext(ctx, "Loan not approved",
			slog.Int64("customerID", req.CustomerID),
			slog.Int("creditScore", decision.CreditScore),
			slog.String("reason", string(decision.Reason)),
		)
		return &CreateResult{Decision: decision}, nil
	}

	newLoan := NewLoan(decision, today)
	if err := s.repo.InsertLoanInTx(ctx, tx, newLoan); err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert loan", slog.Int64("customerID", req.CustomerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save loan: %w", apperrors.ErrInternalServer, err)
	}

	if err := s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit loan", slog.Int64("customerID", req.CustomerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to commit loan: %w", apperrors.ErrInternalServer, err)
	}
	committed = true
	monitoring.RecordLoanCommitted(time.Since(lockedAt))

	s.logger.InfoContext(ctx, "Loan created",
		slog.Int64("loanID", newLoan.ID),
		slog.Int64("customerID", newLoan.CustomerID),
		slog.String("interestRate", newLoan.InterestRate.String()),
		slog.String("monthlyInstallment", newLoan.MonthlyInstallment.StringFixed(2)),
	)
	s.publishApproved(ctx, newLoan, decision.CreditScore)

	return &CreateResult{Decision: decision, Loan: newLoan}, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID int64) (*Details, error) {
	if loanID <= 0 {
		return nil, apperrors.NewValidationError("loan_id", "must be positive")
	}

	l, cust, err := s.repo.GetLoanWithCustomer(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to load loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to load loan %d: %w", apperrors.ErrInternalServer, loanID, err)
	}
	return &Details{Loan: l, Customer: cust}, nil
}

func (s *loanService) ListCurrentLoans(ctx context.Context, customerID int64) ([]*Loan, error) {
	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.repo.FindCurrentLoansByCustomer(ctx, customerID, credit.DateOf(s.now()))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to list loans for customer %d: %w", apperrors.ErrInternalServer, customerID, err)
	}
	return loans, nil
}

// loadSnapshot reads the customer and all of their loans inside tx. With lock
// set the customer row stays locked until tx ends.
func (s *loanService) loadSnapshot(ctx context.Context, tx pgx.Tx, customerID int64, lock bool) (*customer.Customer, []*Loan, error) {
	var (
		cust *customer.Customer
		err  error
	)
	if lock {
		cust, err = s.repo.LockCustomerInTx(ctx, tx, customerID)
	} else {
		cust, err = s.repo.FindCustomerInTx(ctx, tx, customerID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			s.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, nil, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to load customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: failed to load customer %d: %w", apperrors.ErrInternalServer, customerID, err)
	}

	loans, err := s.repo.FindLoansByCustomerInTx(ctx, tx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loan history", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: failed to load loans for customer %d: %w", apperrors.ErrInternalServer, customerID, err)
	}
	return cust, loans, nil
}

func (s *loanService) publishApproved(ctx context.Context, l *Loan, score int) {
	evt := event.LoanApprovedEvent{
		LoanID:             l.ID,
		CustomerID:         l.CustomerID,
		LoanAmount:         l.LoanAmount.StringFixed(2),
		InterestRate:       l.InterestRate.StringFixed(2),
		Tenure:             l.Tenure,
		MonthlyInstallment: l.MonthlyInstallment.StringFixed(2),
		CreditScore:        score,
		StartDate:          l.StartDate.Format(time.DateOnly),
		EndDate:            l.EndDate.Format(time.DateOnly),
		Timestamp:          time.Now().UTC(),
	}
	if err := s.pub.PublishLoanApproved(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan approved event", slog.Int64("loanID", l.ID), slog.Any("error", err))
	}
}

func outcome(d credit.Decision) string {
	if d.Approved {
		return "approved"
	}
	return string(d.Reason)
}

package customer

import (
	"context"
	"credit-engine/internal/event"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type RegisterInput struct {
	FirstName     string
	LastName      string
	Age           int
	MonthlyIncome int64
	PhoneNumber   string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

func NewCustomerService(repo Repository, publisher event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (input RegisterInput) Validate() error {
	switch {
	case strings.TrimSpace(input.FirstName) == "":
		return apperrors.NewValidationError("first_name", "cannot be empty")
	case len(input.FirstName) > MaxNameLength:
		return apperrors.NewValidationError("first_name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	case strings.TrimSpace(input.LastName) == "":
		return apperrors.NewValidationError("last_name", "cannot be empty")
	case len(input.LastName) > MaxNameLength:
		return apperrors.NewValidationError("last_name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	case input.Age < MinAge:
		return apperrors.NewValidationError("age", fmt.Sprintf("must be at least %d", MinAge))
	case input.MonthlyIncome < 0:
		return apperrors.NewValidationError("monthly_income", "cannot be negative")
	case strings.TrimSpace(input.PhoneNumber) == "":
		return apperrors.NewValidationError("phone_number", "cannot be empty")
	case len(input.PhoneNumber) > MaxPhoneLength:
		return apperrors.NewValidationError("phone_number", fmt.Sprintf("must be at most %d characters", MaxPhoneLength))
	}
	return nil
}

func (s *customerService) Register(ctx context.Context, input RegisterInput) (*Customer, error) {
	if err := input.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Registration input rejected", slog.Any("error", err))
		return nil, err
	}

	cust := NewCustomer(input.FirstName, input.LastName, input.Age, input.MonthlyIncome, input.PhoneNumber)
	if err := s.repo.Create(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Phone number already registered")
			return nil, fmt.Errorf("%w: phone number %s is already registered", apperrors.ErrConflict, cust.PhoneNumber)
		}
		s.logger.ErrorContext(ctx, "Failed to persist customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Customer registered",
		slog.Int64("customerID", cust.ID),
		slog.Int64("approvedLimit", cust.ApprovedLimit),
	)
	s.publishRegistered(ctx, cust)
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	if customerID <= 0 {
		return nil, apperrors.NewValidationError("customer_id", "must be positive")
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to load customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, err
	}
	return cust, nil
}

func (s *customerService) publishRegistered(ctx context.Context, cust *Customer) {
	evt := event.CustomerRegisteredEvent{
		CustomerID:    cust.ID,
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit,
		PhoneNumber:   cust.PhoneNumber,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.pub.PublishCustomerRegistered(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish customer registered event", slog.Int64("customerID", cust.ID), slog.Any("error", err))
	}
}

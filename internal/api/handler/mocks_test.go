package handler

import (
	"bytes"
	"context"
	"credit-engine/internal/batch"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
)

var testLogger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Register(ctx context.Context, input customer.RegisterInput) (*customer.Customer, error) {
	args := m.Called(ctx, input)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CheckEligibility(ctx context.Context, req credit.Request) (credit.Decision, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(credit.Decision), args.Error(1)
}

func (m *MockLoanService) CreateLoan(ctx context.Context, req credit.Request) (*loan.CreateResult, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(*loan.CreateResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Details, error) {
	args := m.Called(ctx, loanID)
	if d, ok := args.Get(0).(*loan.Details); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListCurrentLoans(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Start(ctx context.Context, trigger string) (*batch.Run, error) {
	args := m.Called(ctx, trigger)
	if run, ok := args.Get(0).(*batch.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRunner) Get(ctx context.Context, runID string) (*batch.Run, error) {
	args := m.Called(ctx, runID)
	if run, ok := args.Get(0).(*batch.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ customer.Service     = (*MockCustomerService)(nil)
	_ loan.Service         = (*MockLoanService)(nil)
	_ ReconciliationRunner = (*MockRunner)(nil)
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

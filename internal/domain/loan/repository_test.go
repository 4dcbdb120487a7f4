package loan

import (
	"context"
	"credit-engine/internal/domain/customer"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

type TxMock struct {
	pgx.Tx
}

var tx pgx.Tx = &TxMock{}

func (m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if t, ok := args.Get(0).(pgx.Tx); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) BeginSnapshotTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if t, ok := args.Get(0).(pgx.Tx); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockRepository) LockCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, tx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, tx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) FindLoansByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) ([]*Loan, error) {
	args := m.Called(ctx, tx, customerID)
	if l, ok := args.Get(0).([]*Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) InsertLoanInTx(ctx context.Context, tx pgx.Tx, loan *Loan) error {
	return m.Called(ctx, tx, loan).Error(0)
}

func (m *MockRepository) GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	args := m.Called(ctx, loanID)
	l, _ := args.Get(0).(*Loan)
	c, _ := args.Get(1).(*customer.Customer)
	return l, c, args.Error(2)
}

func (m *MockRepository) FindCurrentLoansByCustomer(ctx context.Context, customerID int64, today time.Time) ([]*Loan, error) {
	args := m.Called(ctx, customerID, today)
	if l, ok := args.Get(0).([]*Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpsertByID(ctx context.Context, loan *Loan) (bool, error) {
	args := m.Called(ctx, loan)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpsertByNaturalKey(ctx context.Context, loan *Loan) (bool, error) {
	args := m.Called(ctx, loan)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SyncIDSequence(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ Repository = (*MockRepository)(nil)

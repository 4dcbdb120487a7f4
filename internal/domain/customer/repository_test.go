package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerRepository) UpsertByID(ctx context.Context, customer *Customer) (bool, error) {
	args := m.Called(ctx, customer)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) UpsertByPhone(ctx context.Context, customer *Customer) (bool, error) {
	args := m.Called(ctx, customer)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) SyncIDSequence(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ Repository = (*MockCustomerRepository)(nil)

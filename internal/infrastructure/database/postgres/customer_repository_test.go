package postgres

import (
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerRowColumns = []string{"id", "first_name", "last_name", "age", "monthly_income", "phone_number", "approved_limit", "current_debt", "created_at", "updated_at"}

func newCustomerFixture() *customer.Customer {
	return &customer.Customer{
		ID:            1,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Age:           36,
		MonthlyIncome: 50000,
		PhoneNumber:   "9876543210",
		ApprovedLimit: 1800000,
		CurrentDebt:   decimal.Zero,
	}
}

func TestCustomerRepository_Create(t *testing.T) {
	query := `INSERT INTO customers (first_name, last_name, age, monthly_income, phone_number, approved_limit, current_debt, created_at, updated_at)`

	t.Run("Success", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)
		cust := newCustomerFixture()
		cust.ID = 0
		now := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs("Ada", "Lovelace", 36, int64(50000), "9876543210", int64(1800000), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

		require.NoError(t, repo.Create(ctx, cust))
		assert.Equal(t, int64(7), cust.ID)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("Duplicate phone", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_customers_phone_number"})

		err := repo.Create(ctx, newCustomerFixture())

		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("Nil customer", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		assert.ErrorIs(t, repo.Create(ctx, nil), apperrors.ErrInvalidArgument)
	})
}

func TestCustomerRepository_FindByID(t *testing.T) {
	query := `FROM customers WHERE id = $1`

	t.Run("Found", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)
		now := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(customerRowColumns).
				AddRow(int64(1), "Ada", "Lovelace", 36, int64(50000), "9876543210", int64(1800000), decimal.RequireFromString("1200.50"), now, now))

		cust, err := repo.FindByID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "Lovelace", cust.LastName)
		assert.Equal(t, int64(1800000), cust.ApprovedLimit)
		assert.Equal(t, "1200.5", cust.CurrentDebt.String())
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("Not found", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, 2)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Database failure", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(int64(3)).WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(ctx, 3)

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "DB_ERROR", appErr.Code)
	})
}

func TestCustomerRepository_UpsertByID(t *testing.T) {
	query := `ON CONFLICT (id) DO UPDATE SET`

	t.Run("Inserted", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(1), "Ada", "Lovelace", 36, int64(50000), "9876543210", int64(1800000), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(true))

		created, err := repo.UpsertByID(ctx, newCustomerFixture())

		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("Updated", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnRows(pgxmock.NewRows([]string{"inserted"}).AddRow(false))

		created, err := repo.UpsertByID(ctx, newCustomerFixture())

		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("Phone owned by another customer", func(t *testing.T) {
		ctx, mockPool := newMockPool(t)
		repo := NewCustomerRepository(mockPool, logger)

		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_customers_phone_number"})

		_, err := repo.UpsertByID(ctx, newCustomerFixture())

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestCustomerRepository_UpsertByPhone(t *testing.T) {
	ctx, mockPool := newMockPool(t)
	repo := NewCustomerRepository(mockPool, logger)
	cust := newCustomerFixture()
	cust.ID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (phone_number) DO UPDATE SET`)).
		WithArgs("Ada", "Lovelace", 36, int64(50000), "9876543210", int64(1800000), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "inserted"}).AddRow(int64(42), false))

	created, err := repo.UpsertByPhone(ctx, cust)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(42), cust.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCustomerRepository_SyncIDSequence(t *testing.T) {
	ctx, mockPool := newMockPool(t)
	repo := NewCustomerRepository(mockPool, logger)

	mockPool.ExpectExec(regexp.QuoteMeta(`SELECT setval(pg_get_serial_sequence('customers', 'id')`)).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, repo.SyncIDSequence(ctx))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

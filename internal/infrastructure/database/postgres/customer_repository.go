package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, first_name, last_name, age, monthly_income, phone_number, approved_limit, current_debt, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Age,
		&c.MonthlyIncome,
		&c.PhoneNumber,
		&c.ApprovedLimit,
		&c.CurrentDebt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("phone", cust.PhoneNumber))

	query := `
        INSERT INTO customers (first_name, last_name, age, monthly_income, phone_number, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.MonthlyIncome,
		cust.PhoneNumber,
		cust.ApprovedLimit,
		cust.CurrentDebt,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	recordQuery("CreateCustomer", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.String("phone", cust.PhoneNumber))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to insert customer")
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	start := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	recordQuery("FindCustomerByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}
	return cust, nil
}

func (r *CustomerRepository) UpsertByID(ctx context.Context, cust *customer.Customer) (bool, error) {
	query := `
        INSERT INTO customers (id, first_name, last_name, age, monthly_income, phone_number, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            age = EXCLUDED.age,
            monthly_income = EXCLUDED.monthly_income,
            phone_number = EXCLUDED.phone_number,
            approved_limit = EXCLUDED.approved_limit,
            current_debt = EXCLUDED.current_debt,
            updated_at = NOW()
        RETURNING (xmax = 0) AS inserted`

	var created bool
	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.ID,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.MonthlyIncome,
		cust.PhoneNumber,
		cust.ApprovedLimit,
		cust.CurrentDebt,
	).Scan(&created)
	recordQuery("UpsertCustomerByID", start, err)

	if err != nil {
		return false, r.upsertError(ctx, cust, err)
	}
	return created, nil
}

func (r *CustomerRepository) UpsertByPhone(ctx context.Context, cust *customer.Customer) (bool, error) {
	query := `
        INSERT INTO customers (first_name, last_name, age, monthly_income, phone_number, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (phone_number) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            age = EXCLUDED.age,
            monthly_income = EXCLUDED.monthly_income,
            approved_limit = EXCLUDED.approved_limit,
            current_debt = EXCLUDED.current_debt,
            updated_at = NOW()
        RETURNING id, (xmax = 0) AS inserted`

	var created bool
	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.MonthlyIncome,
		cust.PhoneNumber,
		cust.ApprovedLimit,
		cust.CurrentDebt,
	).Scan(&cust.ID, &created)
	recordQuery("UpsertCustomerByPhone", start, err)

	if err != nil {
		return false, r.upsertError(ctx, cust, err)
	}
	return created, nil
}

func (r *CustomerRepository) SyncIDSequence(ctx context.Context) error {
	return syncIDSequence(ctx, r.db, "customers", r.logger)
}

func (r *CustomerRepository) upsertError(ctx context.Context, cust *customer.Customer, err error) error {
	translatedErr := translateDBError(err, r.logger)
	if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
		return fmt.Errorf("%w: phone number %s belongs to another customer", apperrors.ErrConflict, cust.PhoneNumber)
	}
	r.logger.ErrorContext(ctx, "Failed to upsert customer", slog.Int64("customerID", cust.ID), slog.Any("error", err))
	return translatedErr
}

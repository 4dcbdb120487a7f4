package postgres

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const loanColumns = `id, customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, created_at, updated_at`

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func loanScanTargets(l *loan.Loan) []any {
	return []any{
		&l.ID, &l.CustomerID, &l.LoanAmount, &l.Tenure, &l.InterestRate,
		&l.MonthlyInstallment, &l.EMIsPaidOnTime, &l.StartDate, &l.EndDate,
		&l.CreatedAt, &l.UpdatedAt,
	}
}

func collectLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(loanScanTargets(&l)...); err != nil {
			return nil, err
		}
		loans = append(loans, &l)
	}
	return loans, rows.Err()
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to begin transaction")
	}
	return tx, nil
}

func (r *LoanRepository) BeginSnapshotTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin snapshot transaction", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to begin snapshot transaction")
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return apperrors.WrapDatabaseError(err, "failed to commit transaction")
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return rollback(ctx, tx, r.logger)
}

func (r *LoanRepository) LockCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1 FOR UPDATE`
	return r.findCustomer(ctx, tx, "LockCustomer", query, customerID)
}

func (r *LoanRepository) FindCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.findCustomer(ctx, tx, "FindCustomer", query, customerID)
}

func (r *LoanRepository) findCustomer(ctx context.Context, tx pgx.Tx, name, query string, customerID int64) (*customer.Customer, error) {
	start := time.Now()
	cust, err := scanCustomer(tx.QueryRow(ctx, query, customerID))
	recordQuery(name, start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to load customer", "customer_id", customerID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to load customer")
	}
	return cust, nil
}

func (r *LoanRepository) FindLoansByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY id`

	start := time.Now()
	rows, err := tx.Query(ctx, query, customerID)
	var loans []*loan.Loan
	if err == nil {
		loans, err = collectLoans(rows)
	}
	recordQuery("FindLoansByCustomer", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to load loans for customer", "customer_id", customerID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to load loans for customer")
	}
	return loans, nil
}

func (r *LoanRepository) InsertLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	query := `
        INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query,
		l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate,
		l.MonthlyInstallment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	recordQuery("InsertLoan", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "customer_id", l.CustomerID, "error", err)
		return translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan inserted", "loan_id", l.ID, "customer_id", l.CustomerID)
	return nil
}

func (r *LoanRepository) GetLoanWithCustomer(ctx context.Context, loanID int64) (*loan.Loan, *customer.Customer, error) {
	query := `
        SELECT l.id, l.customer_id, l.loan_amount, l.tenure, l.interest_rate, l.monthly_installment,
               l.emis_paid_on_time, l.start_date, l.end_date, l.created_at, l.updated_at,
               c.id, c.first_name, c.last_name, c.age, c.monthly_income, c.phone_number,
               c.approved_limit, c.current_debt, c.created_at, c.updated_at
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        WHERE l.id = $1`

	var (
		l loan.Loan
		c customer.Customer
	)
	targets := append(loanScanTargets(&l),
		&c.ID, &c.FirstName, &c.LastName, &c.Age, &c.MonthlyIncome, &c.PhoneNumber,
		&c.ApprovedLimit, &c.CurrentDebt, &c.CreatedAt, &c.UpdatedAt,
	)

	start := time.Now()
	err := r.db.QueryRow(ctx, query, loanID).Scan(targets...)
	recordQuery("GetLoanWithCustomer", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, nil, apperrors.WrapDatabaseError(err, "failed to get loan by ID")
	}
	return &l, &c, nil
}

func (r *LoanRepository) FindCurrentLoansByCustomer(ctx context.Context, customerID int64, today time.Time) ([]*loan.Loan, error) {
	query := `
        SELECT ` + loanColumns + `
        FROM loans
        WHERE customer_id = $1 AND end_date >= $2
        ORDER BY created_at DESC, id DESC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID, today)
	var loans []*loan.Loan
	if err == nil {
		loans, err = collectLoans(rows)
	}
	recordQuery("FindCurrentLoansByCustomer", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list current loans", "customer_id", customerID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to list current loans")
	}
	return loans, nil
}

func (r *LoanRepository) UpsertByID(ctx context.Context, l *loan.Loan) (bool, error) {
	query := `
        INSERT INTO loans (id, customer_id, loan_amount, tenure, interest_rate, monthly_installment, emis_paid_on_time, start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE SET
            customer_id = EXCLUDED.customer_id,
            loan_amount = EXCLUDED.loan_amount,
            tenure = EXCLUDED.tenure,
            interest_rate = EXCLUDED.interest_rate,
            monthly_installment = EXCLUDED.monthly_installment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date,
            updated_at = NOW()
        RETURNING (xmax = 0) AS inserted`

	var created bool
	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		l.ID, l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate,
		l.MonthlyInstallment, l.EMIsPaidOnTime, l.StartDate, l.EndDate,
	).Scan(&created)
	recordQuery("UpsertLoanByID", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert loan by id", "loan_id", l.ID, "error", err)
		return false, translateDBError(err, r.logger)
	}
	return created, nil
}

// UpsertByNaturalKey locks the owning customer first so it serializes with
// ledger inserts for the same customer.
func (r *LoanRepository) UpsertByNaturalKey(ctx context.Context, l *loan.Loan) (created bool, err error) {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = r.RollbackTx(ctx, tx)
		}
	}()

	start := time.Now()
	var lockedID int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, l.CustomerID).Scan(&lockedID)
	recordQuery("LockCustomer", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, l.CustomerID)
		}
		return false, translateDBError(err, r.logger)
	}

	findSQL := `
        SELECT id FROM loans
        WHERE customer_id = $1 AND loan_amount = $2 AND tenure = $3 AND interest_rate = $4
          AND start_date = $5 AND end_date = $6
        ORDER BY id
        LIMIT 1`

	start = time.Now()
	var existingID int64
	err = tx.QueryRow(ctx, findSQL,
		l.CustomerID, l.LoanAmount, l.Tenure, l.InterestRate, l.StartDate, l.EndDate,
	).Scan(&existingID)
	recordQuery("FindLoanByNaturalKey", start, err)

	switch {
	case err == nil:
		updateSQL := `
            UPDATE loans
            SET monthly_installment = $2, emis_paid_on_time = $3, updated_at = NOW()
            WHERE id = $1`
		start = time.Now()
		_, err = tx.Exec(ctx, updateSQL, existingID, l.MonthlyInstallment, l.EMIsPaidOnTime)
		recordQuery("UpdateLoan", start, err)
		if err != nil {
			return false, translateDBError(err, r.logger)
		}
		l.ID = existingID
	case errors.Is(err, pgx.ErrNoRows):
		if err = r.InsertLoanInTx(ctx, tx, l); err != nil {
			return false, err
		}
		created = true
	default:
		r.logger.ErrorContext(ctx, "Failed to look up loan by natural key", "customer_id", l.CustomerID, "error", err)
		return false, translateDBError(err, r.logger)
	}

	if err = r.CommitTx(ctx, tx); err != nil {
		return false, err
	}
	return created, nil
}

func (r *LoanRepository) SyncIDSequence(ctx context.Context) error {
	return syncIDSequence(ctx, r.db, "loans", r.logger)
}

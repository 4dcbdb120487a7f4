package loan

import (
	"context"
	"credit-engine/internal/domain/customer"
	"time"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// BeginTx opens a read-write transaction for the create-loan path.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// BeginSnapshotTx opens a read-only repeatable-read transaction so every
	// read inside it sees one snapshot.
	BeginSnapshotTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// LockCustomerInTx loads the customer with SELECT ... FOR UPDATE, holding
	// the row lock until tx ends.
	LockCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error)

	FindCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error)

	FindLoansByCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) ([]*Loan, error)

	InsertLoanInTx(ctx context.Context, tx pgx.Tx, loan *Loan) error

	GetLoanWithCustomer(ctx context.Context, loanID int64) (*Loan, *customer.Customer, error)

	// FindCurrentLoansByCustomer returns loans with end date on or after today, newest first.
	FindCurrentLoansByCustomer(ctx context.Context, customerID int64, today time.Time) ([]*Loan, error)

	UpsertByID(ctx context.Context, loan *Loan) (created bool, err error)

	// UpsertByNaturalKey matches on customer, amount, tenure, rate and dates.
	UpsertByNaturalKey(ctx context.Context, loan *Loan) (created bool, err error)

	SyncIDSequence(ctx context.Context) error
}

package batch

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/event"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var errNotUsed = errors.New("not used by reconciliation")

// fakeCustomers stores customers by id with a phone index, the same keys the
// Postgres upserts use.
type fakeCustomers struct {
	mu       sync.Mutex
	rows     map[int64]customer.Customer
	nextID   int64
	syncs    int
	failWith map[string]error
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: make(map[int64]customer.Customer), nextID: 1}
}

func (f *fakeCustomers) Create(context.Context, *customer.Customer) error { return errNotUsed }

func (f *fakeCustomers) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCustomers) UpsertByID(_ context.Context, c *customer.Customer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failWith[c.PhoneNumber]; err != nil {
		return false, err
	}
	_, exists := f.rows[c.ID]
	f.rows[c.ID] = *c
	return !exists, nil
}

func (f *fakeCustomers) UpsertByPhone(_ context.Context, c *customer.Customer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failWith[c.PhoneNumber]; err != nil {
		return false, err
	}
	for id, existing := range f.rows {
		if existing.PhoneNumber == c.PhoneNumber {
			c.ID = id
			f.rows[id] = *c
			return false, nil
		}
	}
	for {
		if _, taken := f.rows[f.nextID]; !taken {
			break
		}
		f.nextID++
	}
	c.ID = f.nextID
	f.rows[c.ID] = *c
	return true, nil
}

func (f *fakeCustomers) SyncIDSequence(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

// fakeLoans keeps loans in insertion order and enforces the customer
// reference like the foreign key does.
type fakeLoans struct {
	mu        sync.Mutex
	customers *fakeCustomers
	rows      []loan.Loan
	syncs     int
}

func newFakeLoans(customers *fakeCustomers) *fakeLoans {
	return &fakeLoans{customers: customers}
}

func (f *fakeLoans) BeginTx(context.Context) (pgx.Tx, error) { return nil, errNotUsed }
func (f *fakeLoans) BeginSnapshotTx(context.Context) (pgx.Tx, error) { return nil, errNotUsed }
func (f *fakeLoans) CommitTx(context.Context, pgx.Tx) error { return errNotUsed }
func (f *fakeLoans) RollbackTx(context.Context, pgx.Tx) error { return errNotUsed }

func (f *fakeLoans) LockCustomerInTx(context.Context, pgx.Tx, int64) (*customer.Customer, error) {
	return nil, errNotUsed
}

func (f *fakeLoans) FindCustomerInTx(context.Context, pgx.Tx, int64) (*customer.Customer, error) {
	return nil, errNotUsed
}

func (f *fakeLoans) FindLoansByCustomerInTx(context.Context, pgx.Tx, int64) ([]*loan.Loan, error) {
	return nil, errNotUsed
}

func (f *fakeLoans) InsertLoanInTx(context.Context, pgx.Tx, *loan.Loan) error { return errNotUsed }

func (f *fakeLoans) GetLoanWithCustomer(context.Context, int64) (*loan.Loan, *customer.Customer, error) {
	return nil, nil, errNotUsed
}

func (f *fakeLoans) FindCurrentLoansByCustomer(context.Context, int64, time.Time) ([]*loan.Loan, error) {
	return nil, errNotUsed
}

func (f *fakeLoans) checkCustomer(ctx context.Context, id int64) error {
	if _, err := f.customers.FindByID(ctx, id); err != nil {
		return fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (f *fakeLoans) UpsertByID(ctx context.Context, l *loan.Loan) (bool, error) {
	if err := f.checkCustomer(ctx, l.CustomerID); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == l.ID {
			f.rows[i] = *l
			return false, nil
		}
	}
	f.rows = append(f.rows, *l)
	return true, nil
}

func (f *fakeLoans) UpsertByNaturalKey(ctx context.Context, l *loan.Loan) (bool, error) {
	if err := f.checkCustomer(ctx, l.CustomerID); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.rows {
		if existing.CustomerID == l.CustomerID &&
			existing.LoanAmount.Equal(l.LoanAmount) &&
			existing.Tenure == l.Tenure &&
			existing.InterestRate.Equal(l.InterestRate) &&
			existing.StartDate.Equal(l.StartDate) &&
			existing.EndDate.Equal(l.EndDate) {
			f.rows[i].MonthlyInstallment = l.MonthlyInstallment
			f.rows[i].EMIsPaidOnTime = l.EMIsPaidOnTime
			l.ID = existing.ID
			return false, nil
		}
	}
	var maxID int64
	for _, existing := range f.rows {
		maxID = max(maxID, existing.ID)
	}
	l.ID = maxID + 1
	f.rows = append(f.rows, *l)
	return true, nil
}

func (f *fakeLoans) SyncIDSequence(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return nil
}

func (f *fakeLoans) snapshot() []loan.Loan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]loan.Loan(nil), f.rows...)
}

type recordingPublisher struct {
	event.NoopPublisher
	mu     sync.Mutex
	events []event.ReconciliationCompletedEvent
}

func (p *recordingPublisher) PublishReconciliationCompleted(_ context.Context, e event.ReconciliationCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) published() []event.ReconciliationCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.ReconciliationCompletedEvent(nil), p.events...)
}

var (
	_ customer.Repository = (*fakeCustomers)(nil)
	_ loan.Repository     = (*fakeLoans)(nil)
	_ event.Publisher     = (*recordingPublisher)(nil)
)

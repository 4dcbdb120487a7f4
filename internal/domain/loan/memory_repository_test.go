package loan

import (
	"cmp"
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// memoryTx buffers inserts until commit and holds at most one customer row lock.
type memoryTx struct {
	pgx.Tx
	pending  []*Loan
	locked   *sync.Mutex
	finished bool
}

// memoryRepository mimics the row-locking behaviour of the Postgres repository.
type memoryRepository struct {
	mu        sync.Mutex
	customers map[int64]*customer.Customer
	rowLocks  map[int64]*sync.Mutex
	loans     []*Loan
	nextID    int64
	insertErr error
}

func newMemoryRepository(customers ...*customer.Customer) *memoryRepository {
	r := &memoryRepository{
		customers: map[int64]*customer.Customer{},
		rowLocks:  map[int64]*sync.Mutex{},
	}
	for _, c := range customers {
		r.customers[c.ID] = c
		r.rowLocks[c.ID] = &sync.Mutex{}
	}
	return r
}

func (r *memoryRepository) BeginTx(context.Context) (pgx.Tx, error) {
	return &memoryTx{}, nil
}

func (r *memoryRepository) BeginSnapshotTx(context.Context) (pgx.Tx, error) {
	return &memoryTx{}, nil
}

func (r *memoryRepository) CommitTx(_ context.Context, tx pgx.Tx) error {
	mtx := tx.(*memoryTx)
	r.mu.Lock()
	for _, l := range mtx.pending {
		r.nextID++
		l.ID = r.nextID
		l.CreatedAt = time.Now()
		r.loans = append(r.loans, l)
	}
	r.mu.Unlock()
	r.finish(mtx)
	return nil
}

func (r *memoryRepository) RollbackTx(_ context.Context, tx pgx.Tx) error {
	r.finish(tx.(*memoryTx))
	return nil
}

func (r *memoryRepository) finish(mtx *memoryTx) {
	if mtx.finished {
		return
	}
	mtx.finished = true
	mtx.pending = nil
	if mtx.locked != nil {
		mtx.locked.Unlock()
	}
}

func (r *memoryRepository) LockCustomerInTx(ctx context.Context, tx pgx.Tx, customerID int64) (*customer.Customer, error) {
	r.mu.Lock()
	lock, ok := r.rowLocks[customerID]
	r.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	lock.Lock()
	tx.(*memoryTx).locked = lock
	return r.FindCustomerInTx(ctx, tx, customerID)
}

func (r *memoryRepository) FindCustomerInTx(_ context.Context, _ pgx.Tx, customerID int64) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryRepository) FindLoansByCustomerInTx(_ context.Context, _ pgx.Tx, customerID int64) ([]*Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Loan
	for _, l := range r.loans {
		if l.CustomerID == customerID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryRepository) InsertLoanInTx(_ context.Context, tx pgx.Tx, l *Loan) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	mtx := tx.(*memoryTx)
	mtx.pending = append(mtx.pending, l)
	return nil
}

func (r *memoryRepository) GetLoanWithCustomer(_ context.Context, loanID int64) (*Loan, *customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.ID == loanID {
			return l, r.customers[l.CustomerID], nil
		}
	}
	return nil, nil, apperrors.ErrNotFound
}

func (r *memoryRepository) FindCurrentLoansByCustomer(_ context.Context, customerID int64, today time.Time) ([]*Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Loan
	for _, l := range r.loans {
		if l.CustomerID == customerID && l.IsCurrent(today) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b *Loan) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (r *memoryRepository) UpsertByID(context.Context, *Loan) (bool, error) {
	return false, nil
}

func (r *memoryRepository) UpsertByNaturalKey(context.Context, *Loan) (bool, error) {
	return false, nil
}

func (r *memoryRepository) SyncIDSequence(context.Context) error {
	return nil
}

func (r *memoryRepository) add(l *Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	r.loans = append(r.loans, l)
}

// memoryCustomers serves customer lookups from the same store.
type memoryCustomers struct {
	repo *memoryRepository
}

func (m memoryCustomers) Register(context.Context, customer.RegisterInput) (*customer.Customer, error) {
	return nil, apperrors.ErrInternalServer
}

func (m memoryCustomers) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	return m.repo.FindCustomerInTx(ctx, nil, customerID)
}

var (
	_ Repository       = (*memoryRepository)(nil)
	_ customer.Service = memoryCustomers{}
)

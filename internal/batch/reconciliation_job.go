// Package batch backfills customers and loans from tabular source files.
package batch

import (
	"context"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/infrastructure/spreadsheet"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	sourceCustomers = "customers"
	sourceLoans     = "loans"

	resultCreated = "created"
	resultUpdated = "updated"
	resultSkipped = "skipped"
	resultError   = "error"
)

type EntityCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Report is the outcome of one reconciliation. Errors holds one line per
// skipped or failed row, and per unreadable file.
type Report struct {
	Customers EntityCounts `json:"customers"`
	Loans     EntityCounts `json:"loans"`
	Errors    []string     `json:"errors"`
}

func newReport() *Report {
	return &Report{Errors: []string{}}
}

func (r *Report) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

type ReconciliationJob struct {
	customers customer.Repository
	loans     loan.Repository
	readTable func(path string) (*spreadsheet.Table, error)
	logger    *slog.Logger
}

func NewReconciliationJob(customers customer.Repository, loans loan.Repository, logger *slog.Logger) *ReconciliationJob {
	if customers == nil || loans == nil || logger == nil {
		panic("ReconciliationJob dependencies cannot be nil")
	}
	return &ReconciliationJob{
		customers: customers,
		loans:     loans,
		readTable: spreadsheet.ReadFile,
		logger:    logger.With("job", "Reconciliation"),
	}
}

// RunFiles reads both files and reconciles whatever could be read. Customers
// go first so loan rows can reference them.
func (j *ReconciliationJob) RunFiles(ctx context.Context, customerFile, loanFile string) *Report {
	customers, custErr := j.read(ctx, sourceCustomers, customerFile)
	loans, loanErr := j.read(ctx, sourceLoans, loanFile)

	report := j.Reconcile(ctx, customers, loans)

	var readErrors []string
	for _, err := range []error{custErr, loanErr} {
		if err != nil {
			readErrors = append(readErrors, err.Error())
		}
	}
	report.Errors = append(readErrors, report.Errors...)
	return report
}

func (j *ReconciliationJob) read(ctx context.Context, source, path string) (*spreadsheet.Table, error) {
	table, err := j.readTable(path)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to read source file", slog.String("source", source), slog.String("path", path), slog.Any("error", err))
		return nil, &apperrors.RowError{Source: source, Reason: "failed to read file: " + err.Error()}
	}
	j.logger.InfoContext(ctx, "Read source file", slog.String("source", source), slog.String("path", path), slog.Int("rows", len(table.Rows)))
	return table, nil
}

// Reconcile upserts every row of both tables. A nil table is ignored. No row
// failure stops the batch; cancellation of ctx does.
func (j *ReconciliationJob) Reconcile(ctx context.Context, customers, loans *spreadsheet.Table) *Report {
	startTime := time.Now()
	report := newReport()

	if customers != nil {
		j.reconcileCustomers(ctx, customers, report)
	}
	if loans != nil {
		j.reconcileLoans(ctx, loans, report)
	}

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("customers_created", report.Customers.Created),
		slog.Int("customers_updated", report.Customers.Updated),
		slog.Int("loans_created", report.Loans.Created),
		slog.Int("loans_updated", report.Loans.Updated),
		slog.Int("errors", len(report.Errors)),
	)
	if len(report.Errors) > 0 {
		summaryLog.WarnContext(ctx, "Reconciliation finished with errors.")
	} else {
		summaryLog.InfoContext(ctx, "Reconciliation finished successfully.")
	}
	return report
}

func (j *ReconciliationJob) reconcileCustomers(ctx context.Context, table *spreadsheet.Table, report *Report) {
	cols := resolveColumns(table.Header, customerAliases)
	explicitIDs := false

	for i, cells := range table.Rows {
		if err := ctx.Err(); err != nil {
			report.addError(&apperrors.RowError{Source: sourceCustomers, Reason: "interrupted: " + err.Error()})
			break
		}
		row := i + 1

		cust, hasID, err := customerFromRecord(record{cells: cells, cols: cols})
		if err != nil {
			j.rowFailed(ctx, report, sourceCustomers, row, err)
			continue
		}

		var created bool
		if hasID {
			explicitIDs = true
			created, err = j.customers.UpsertByID(ctx, cust)
		} else {
			created, err = j.customers.UpsertByPhone(ctx, cust)
		}
		if err != nil {
			j.rowFailed(ctx, report, sourceCustomers, row, err)
			continue
		}
		countRow(&report.Customers, sourceCustomers, created)
	}

	if explicitIDs {
		if err := j.customers.SyncIDSequence(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Failed to advance customer id sequence", slog.Any("error", err))
			report.addError(&apperrors.RowError{Source: sourceCustomers, Reason: "failed to advance id sequence: " + err.Error()})
		}
	}
}

func (j *ReconciliationJob) reconcileLoans(ctx context.Context, table *spreadsheet.Table, report *Report) {
	cols := resolveColumns(table.Header, loanAliases)
	explicitIDs := false

	for i, cells := range table.Rows {
		if err := ctx.Err(); err != nil {
			report.addError(&apperrors.RowError{Source: sourceLoans, Reason: "interrupted: " + err.Error()})
			break
		}
		row := i + 1

		l, hasID, err := loanFromRecord(record{cells: cells, cols: cols})
		if err != nil {
			j.rowFailed(ctx, report, sourceLoans, row, err)
			continue
		}

		var created bool
		if hasID {
			explicitIDs = true
			created, err = j.loans.UpsertByID(ctx, l)
		} else {
			created, err = j.loans.UpsertByNaturalKey(ctx, l)
		}
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				err = fmt.Errorf("customer %d does not exist", l.CustomerID)
			}
			j.rowFailed(ctx, report, sourceLoans, row, err)
			continue
		}
		countRow(&report.Loans, sourceLoans, created)
	}

	if explicitIDs {
		if err := j.loans.SyncIDSequence(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Failed to advance loan id sequence", slog.Any("error", err))
			report.addError(&apperrors.RowError{Source: sourceLoans, Reason: "failed to advance id sequence: " + err.Error()})
		}
	}
}

func (j *ReconciliationJob) rowFailed(ctx context.Context, report *Report, source string, row int, err error) {
	result := resultError
	if errors.Is(err, errSkipped) {
		result = resultSkipped
	}
	monitoring.RecordReconciliationRow(source, result)
	j.logger.WarnContext(ctx, "Reconciliation row not applied", slog.String("source", source), slog.Int("row", row), slog.String("result", result), slog.Any("error", err))
	report.addError(&apperrors.RowError{Source: source, Row: row, Reason: err.Error()})
}

func countRow(counts *EntityCounts, source string, created bool) {
	if created {
		counts.Created++
		monitoring.RecordReconciliationRow(source, resultCreated)
		return
	}
	counts.Updated++
	monitoring.RecordReconciliationRow(source, resultUpdated)
}

package batch

import (
	"context"
	"credit-engine/internal/config"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStarted             RunStatus = "started"
	RunCompleted           RunStatus = "completed"
	RunCompletedWithErrors RunStatus = "completed_with_errors"
	RunFailed              RunStatus = "failed"
)

const (
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

type Run struct {
	ID           string     `json:"run_id"`
	Status       RunStatus  `json:"status"`
	Trigger      string     `json:"trigger"`
	CustomerFile string     `json:"customer_file"`
	LoanFile     string     `json:"loan_file"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Report       *Report    `json:"report,omitempty"`
}

// RunStore keeps run state for status queries. Get returns
// apperrors.ErrNotFound for unknown or expired runs.
type RunStore interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, runID string) (*Run, error)
}

// MemoryRunStore is the RunStore used when Redis is not configured. Runs
// are kept for the lifetime of the process.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]Run)}
}

func (s *MemoryRunStore) Save(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *MemoryRunStore) Get(_ context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation run %s", apperrors.ErrNotFound, runID)
	}
	return &run, nil
}

// Runner executes reconciliation runs over the configured files, recording
// their state in a RunStore and announcing completion.
type Runner struct {
	job          *ReconciliationJob
	store        RunStore
	publisher    event.Publisher
	customerFile string
	loanFile     string
	timeout      time.Duration
	logger       *slog.Logger
	newID        func() string
	now          func() time.Time
	wg           sync.WaitGroup
}

func NewRunner(job *ReconciliationJob, store RunStore, publisher event.Publisher, cfg config.ReconciliationConfig, logger *slog.Logger) *Runner {
	if job == nil || store == nil || publisher == nil || logger == nil {
		panic("Runner dependencies cannot be nil")
	}
	return &Runner{
		job:          job,
		store:        store,
		publisher:    publisher,
		customerFile: cfg.CustomerFile,
		loanFile:     cfg.LoanFile,
		timeout:      cfg.Timeout,
		logger:       logger.With("component", "ReconciliationRunner"),
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// Start records a new run and executes it in the background. The run
// outlives ctx cancellation but is bounded by the configured timeout.
func (r *Runner) Start(ctx context.Context, trigger string) (*Run, error) {
	run := r.newRun(trigger)
	if err := r.store.Save(ctx, run); err != nil {
		r.logger.ErrorContext(ctx, "Failed to record reconciliation run", slog.String("runID", run.ID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to record reconciliation run: %w", err)
	}

	started := *run
	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(runCtx, run)
	}()
	return &started, nil
}

// RunSync executes a run on the calling goroutine and returns its final state.
func (r *Runner) RunSync(ctx context.Context, trigger string) (*Run, error) {
	run := r.newRun(trigger)
	if err := r.store.Save(ctx, run); err != nil {
		r.logger.WarnContext(ctx, "Failed to record reconciliation run, continuing", slog.String("runID", run.ID), slog.Any("error", err))
	}
	r.execute(ctx, run)
	if run.Status == RunFailed {
		return run, fmt.Errorf("reconciliation run %s failed", run.ID)
	}
	return run, nil
}

func (r *Runner) Get(ctx context.Context, runID string) (*Run, error) {
	return r.store.Get(ctx, runID)
}

// Wait blocks until every background run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) newRun(trigger string) *Run {
	return &Run{
		ID:           r.newID(),
		Status:       RunStarted,
		Trigger:      trigger,
		CustomerFile: r.customerFile,
		LoanFile:     r.loanFile,
		StartedAt:    r.now().UTC(),
	}
}

func (r *Runner) execute(ctx context.Context, run *Run) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	logCtx := r.logger.With(slog.String("runID", run.ID), slog.String("trigger", run.Trigger))
	logCtx.InfoContext(ctx, "Reconciliation run started.")

	report := r.job.RunFiles(ctx, run.CustomerFile, run.LoanFile)

	finished := r.now().UTC()
	run.FinishedAt = &finished
	run.Report = report
	switch {
	case ctx.Err() != nil:
		run.Status = RunFailed
	case len(report.Errors) > 0:
		run.Status = RunCompletedWithErrors
	default:
		run.Status = RunCompleted
	}
	monitoring.RecordReconciliationRun(string(run.Status), finished.Sub(run.StartedAt))

	// ctx may be past its deadline here; the final state is still recorded.
	saveCtx := context.WithoutCancel(ctx)
	if err := r.store.Save(saveCtx, run); err != nil {
		logCtx.ErrorContext(saveCtx, "Failed to record reconciliation result", slog.Any("error", err))
	}

	completed := event.ReconciliationCompletedEvent{
		RunID:            run.ID,
		Status:           string(run.Status),
		CustomersCreated: report.Customers.Created,
		CustomersUpdated: report.Customers.Updated,
		LoansCreated:     report.Loans.Created,
		LoansUpdated:     report.Loans.Updated,
		Errors:           len(report.Errors),
		Timestamp:        finished,
	}
	if err := r.publisher.PublishReconciliationCompleted(saveCtx, completed); err != nil {
		logCtx.WarnContext(saveCtx, "Failed to publish reconciliation completed event", slog.Any("error", err))
	}

	logCtx.InfoContext(saveCtx, "Reconciliation run finished.", slog.String("status", string(run.Status)), slog.Int("errors", len(report.Errors)))
}

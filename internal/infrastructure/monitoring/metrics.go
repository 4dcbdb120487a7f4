package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CreditMetrics struct {
	DecisionsTotal     *prometheus.CounterVec
	LoansCommitted     prometheus.Counter
	LedgerLockDuration prometheus.Histogram
}

type ReconciliationMetrics struct {
	RowsTotal   *prometheus.CounterVec
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Credit = CreditMetrics{
		DecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_decisions_total",
				Help: "Eligibility decisions by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		LoansCommitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_committed_total",
				Help: "Loans written to the ledger.",
			},
		),
		LedgerLockDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_ledger_transaction_seconds",
				Help:    "Time a create-loan transaction holds the customer lock.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
	}

	Reconciliation = ReconciliationMetrics{
		RowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_reconciliation_rows_total",
				Help: "Reconciliation rows by entity and result.",
			},
			[]string{"entity", "result"},
		),
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_reconciliation_runs_total",
				Help: "Reconciliation runs by final status.",
			},
			[]string{"status"},
		),
		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_reconciliation_run_seconds",
				Help:    "Wall time of a reconciliation run.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordDecision(operation, outcome string) {
	Credit.DecisionsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordLoanCommitted(held time.Duration) {
	Credit.LoansCommitted.Inc()
	Credit.LedgerLockDuration.Observe(held.Seconds())
}

func RecordReconciliationRow(entity, result string) {
	Reconciliation.RowsTotal.WithLabelValues(entity, result).Inc()
}

func RecordReconciliationRun(status string, duration time.Duration) {
	Reconciliation.RunsTotal.WithLabelValues(status).Inc()
	Reconciliation.RunDuration.Observe(duration.Seconds())
}

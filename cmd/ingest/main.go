package main

import (
	"context"
	"credit-engine/internal/batch"
	"credit-engine/internal/config"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/database/postgres"
	"credit-engine/internal/infrastructure/logging"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configDir    string
	customerFile string
	loanFile     string
	migrate      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Reconcile customers and loans from spreadsheet files into the ledger",
		Long: `Reads a customer file and a loan file (.xlsx or .csv), upserts every row
and prints the reconciliation report as JSON. Files default to the
reconciliation section of config.yml.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing config.yml")
	cmd.Flags().StringVar(&opts.customerFile, "customers", "", "Customer file, overrides reconciliation.customerFile")
	cmd.Flags().StringVar(&opts.loanFile, "loans", "", "Loan file, overrides reconciliation.loanFile")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Create missing tables before ingesting")

	return cmd
}

// applyOverrides puts the command line files over the configured ones.
func applyOverrides(cfg config.ReconciliationConfig, opts *options) config.ReconciliationConfig {
	if opts.customerFile != "" {
		cfg.CustomerFile = opts.customerFile
	}
	if opts.loanFile != "" {
		cfg.LoanFile = opts.loanFile
	}
	return cfg
}

func runIngest(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.NewLogger(cfg.Logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if opts.migrate || cfg.Database.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
			return err
		}
	}

	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	job := batch.NewReconciliationJob(customerRepo, loanRepo, logger)
	runner := batch.NewRunner(job, batch.NewMemoryRunStore(), event.NoopPublisher{}, applyOverrides(cfg.Reconciliation, opts), logger)

	run, runErr := runner.RunSync(ctx, batch.TriggerCLI)
	if err := writeRun(out, run); err != nil {
		return err
	}
	return runErr
}

func writeRun(out io.Writer, run *batch.Run) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
        id             BIGSERIAL PRIMARY KEY,
        first_name     VARCHAR(60)   NOT NULL,
        last_name      VARCHAR(60)   NOT NULL,
        age            INTEGER       NOT NULL,
        monthly_income BIGINT        NOT NULL CHECK (monthly_income >= 0),
        phone_number   VARCHAR(15)   NOT NULL,
        approved_limit BIGINT        NOT NULL,
        current_debt   NUMERIC(12,2) NOT NULL DEFAULT 0,
        created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
        updated_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW()
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_phone_number ON customers (phone_number)`,
	`CREATE TABLE IF NOT EXISTS loans (
        id                  BIGSERIAL PRIMARY KEY,
        customer_id         BIGINT        NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
        loan_amount         NUMERIC(12,2) NOT NULL,
        tenure              INTEGER       NOT NULL CHECK (tenure > 0),
        interest_rate       NUMERIC(5,2)  NOT NULL,
        monthly_installment NUMERIC(12,2) NOT NULL,
        emis_paid_on_time   INTEGER       NOT NULL DEFAULT 0,
        start_date          DATE          NOT NULL,
        end_date            DATE          NOT NULL,
        created_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
        updated_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_loans_customer_end_date ON loans (customer_id, end_date)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_natural_key ON loans (customer_id, loan_amount, tenure, interest_rate, start_date, end_date)`,
}

// EnsureSchema creates the tables and indexes when they do not exist yet.
func EnsureSchema(ctx context.Context, db DBPool, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Ensuring database schema")
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			logger.ErrorContext(ctx, "Failed to apply schema statement", "index", i, "error", err)
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}

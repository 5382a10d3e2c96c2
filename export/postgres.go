package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/meenmo/bondpricer/config"
	"github.com/meenmo/bondpricer/logger"
	"github.com/meenmo/bondpricer/sweep"
)

var rowColumns = []string{
	"run_id",
	"face_amount",
	"interest_rate",
	"payment_periods_per_year",
	"maturity_years",
	"market_rate_pct",
	"price",
}

// PostgresSink appends sweep rows to a PostgreSQL table with COPY.
type PostgresSink struct {
	db    *sql.DB
	table string
}

func NewPostgresSink(ctx context.Context, dsn, table string) (*PostgresSink, error) {
	if !config.IsValidTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresSink{db: db, table: table}
	if err := s.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id UUID NOT NULL,
	face_amount DOUBLE PRECISION NOT NULL,
	interest_rate DOUBLE PRECISION NOT NULL,
	payment_periods_per_year INTEGER NOT NULL,
	maturity_years INTEGER NOT NULL,
	market_rate_pct INTEGER NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, maturity_years, market_rate_pct)
)`, pq.QuoteIdentifier(table))
}

// EnsureTable creates the sweep table when it does not exist.
func (s *PostgresSink) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Write copies all rows of report in one transaction.
func (s *PostgresSink) Write(ctx context.Context, report *sweep.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, rowColumns...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}

	for _, r := range Rows(report) {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.FaceAmount, r.InterestRate,
			r.PaymentPeriodsPerYear, r.MaturityYears, r.MarketRatePct, r.Price,
		); err != nil {
			stmt.Close()
			return fmt.Errorf("copy row: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.GetLogger().WithComponent("export").WithFields(logger.Fields{
		"sink":   "postgres",
		"table":  s.table,
		"run_id": report.RunID,
		"rows":   len(report.Points),
	}).Info("wrote sweep rows")
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

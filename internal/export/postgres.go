package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id UUID PRIMARY KEY,
		finished_at TIMESTAMPTZ NOT NULL,
		accounts INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS account_snapshots (
		run_id UUID NOT NULL REFERENCES runs(run_id),
		client INTEGER NOT NULL,
		available NUMERIC NOT NULL,
		held NUMERIC NOT NULL,
		total NUMERIC NOT NULL,
		locked BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, client)
	)`,
}

// PostgresSink writes reports to a shared PostgreSQL database. Amounts
// are stored as NUMERIC so downstream reporting can aggregate without
// losing precision.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the report database at dsn and ensures the
// schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to report database: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure report schema: %w", err)
		}
	}

	return &PostgresSink{pool: pool}, nil
}

// Write stores the report in a single transaction. A run id that was
// already written is rejected by the primary key.
func (p *PostgresSink) Write(ctx context.Context, report Report) error {
	runID, err := uuid.Parse(report.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", report.RunID, err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := p.pool.Begin(queryCtx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(queryCtx)

	if _, err := tx.Exec(queryCtx,
		"INSERT INTO runs (run_id, finished_at, accounts) VALUES ($1, $2, $3)",
		runID, report.FinishedAt.UTC(), len(report.Snapshots)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, snap := range report.Snapshots {
		batch.Queue(`
			INSERT INTO account_snapshots (run_id, client, available, held, total, locked)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, runID, int32(snap.Client), snap.Available, snap.Held, snap.Total, snap.Locked)
	}

	results := tx.SendBatch(queryCtx, batch)
	for range report.Snapshots {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot batch: %w", err)
	}

	if err := tx.Commit(queryCtx); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (p *PostgresSink) Close() {
	p.pool.Close()
}

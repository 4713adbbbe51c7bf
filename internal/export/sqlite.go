package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/reckon/internal/money"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	finished_at TIMESTAMP NOT NULL,
	accounts INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS account_snapshots (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	client INTEGER NOT NULL,
	available TEXT NOT NULL,
	held TEXT NOT NULL,
	total TEXT NOT NULL,
	locked BOOLEAN NOT NULL,
	PRIMARY KEY (run_id, client)
);
`

// SQLiteSink writes reports to a local SQLite file. Amounts are stored
// as text to keep them exact.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens the report database at path, creating the file and
// the schema as needed.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure report schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Write stores the report in a single transaction. A run id that was
// already written is rejected by the primary key.
func (s *SQLiteSink) Write(ctx context.Context, report Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, finished_at, accounts) VALUES (?, ?, ?)",
		report.RunID, report.FinishedAt.UTC(), len(report.Snapshots)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO account_snapshots (run_id, client, available, held, total, locked) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range report.Snapshots {
		if _, err := stmt.ExecContext(ctx, report.RunID, snap.Client,
			money.Format(snap.Available), money.Format(snap.Held),
			money.Format(snap.Total), snap.Locked); err != nil {
			return fmt.Errorf("failed to insert snapshot for client %d: %w", snap.Client, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

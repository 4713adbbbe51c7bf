package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/reckon/internal/record"
)

func testReport() Report {
	return Report{
		RunID:      "run-1",
		FinishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Snapshots: []record.Snapshot{
			{
				Client:    1,
				Available: decimal.RequireFromString("1.5"),
				Held:      decimal.Zero,
				Total:     decimal.RequireFromString("1.5"),
			},
			{
				Client:    2,
				Available: decimal.RequireFromString("-75"),
				Held:      decimal.Zero,
				Total:     decimal.RequireFromString("-75"),
				Locked:    true,
			},
		},
	}
}

func TestSQLiteSink_Write(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(context.Background(), testReport()))

	var accounts int
	err = sink.db.QueryRow("SELECT accounts FROM runs WHERE run_id = ?", "run-1").Scan(&accounts)
	require.NoError(t, err)
	assert.Equal(t, 2, accounts)

	rows, err := sink.db.Query(
		"SELECT client, available, held, total, locked FROM account_snapshots WHERE run_id = ? ORDER BY client", "run-1")
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		client                 int
		available, held, total string
		locked                 bool
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.client, &r.available, &r.held, &r.total, &r.locked))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())

	want := []row{
		{client: 1, available: "1.5", held: "0", total: "1.5", locked: false},
		{client: 2, available: "-75", held: "0", total: "-75", locked: true},
	}
	assert.Equal(t, want, got)
}

func TestSQLiteSink_DuplicateRunRejected(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(context.Background(), testReport()))
	assert.Error(t, sink.Write(context.Background(), testReport()))
}

func TestSQLiteSink_EmptyReport(t *testing.T) {
	sink, err := OpenSQLite(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	defer sink.Close()

	report := Report{RunID: "run-empty", FinishedAt: time.Now().UTC()}
	require.NoError(t, sink.Write(context.Background(), report))

	var accounts int
	err = sink.db.QueryRow("SELECT accounts FROM runs WHERE run_id = ?", "run-empty").Scan(&accounts)
	require.NoError(t, err)
	assert.Zero(t, accounts)
}

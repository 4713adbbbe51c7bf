// Package export persists the final account snapshots of a run to
// reporting stores. Sinks are write-only: settled state is never read
// back into the engine, so each report is a standalone artifact keyed by
// its run id.
package export

import (
	"context"
	"time"

	"github.com/example/reckon/internal/record"
)

// Report is one run's output destined for a reporting store.
type Report struct {
	RunID      string
	FinishedAt time.Time
	Snapshots  []record.Snapshot
}

// Sink is anything that can persist one run's report.
type Sink interface {
	Write(ctx context.Context, report Report) error
}

// Package pipeline connects the CSV decoder to the settlement engine as
// a producer and consumer joined by a bounded channel. Decoding overlaps
// with settlement while the engine itself stays single-writer: exactly
// one goroutine ever touches the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/reckon/internal/engine"
	"github.com/example/reckon/internal/export"
	"github.com/example/reckon/internal/ledger"
	"github.com/example/reckon/internal/money"
	"github.com/example/reckon/internal/record"
	"github.com/example/reckon/pkg/audit"
)

// DefaultQueueSize bounds the channel between the decoder and the
// engine. A full queue blocks the decoder rather than dropping records.
const DefaultQueueSize = 1024

// Options tune a single run. The zero value is usable.
type Options struct {
	// QueueSize overrides DefaultQueueSize when positive.
	QueueSize int

	// Logger receives per-rejection debug lines and a run summary.
	Logger *zap.Logger

	// Audit, when set, records every transaction outcome in a
	// hash-chained journal. A journal write failure is fatal to the run.
	Audit *audit.Journal

	// Sinks receive the final report before any CSV output is written.
	// A sink failure is fatal to the run.
	Sinks []export.Sink
}

// Stats summarizes a completed run.
type Stats struct {
	Processed int
	Rejected  int
	Accounts  int
	ByReason  map[string]int
}

// Run decodes transactions from in, applies them in arrival order, and
// writes the final account snapshots to out sorted by client id.
//
// A malformed input row is fatal: already-queued records drain through
// the engine, then Run returns the *record.ParseError and writes no
// output. Business rule rejections are counted and the run continues.
// Cancelling ctx stops the decoder between records and fails the run.
func Run(ctx context.Context, in io.Reader, out io.Writer, opts Options) (Stats, error) {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	start := time.Now()
	records := make(chan record.Transaction, queueSize)
	readErr := make(chan error, 1)

	go func() {
		defer close(records)
		readErr <- produce(ctx, record.NewReader(in), records)
	}()

	eng := engine.New()
	stats := Stats{ByReason: make(map[string]int)}

	var auditErr error

	for tx := range records {
		if auditErr != nil {
			// Keep draining so the producer can finish.
			continue
		}

		err := eng.Process(tx)
		if err != nil {
			stats.Rejected++
			reason := ledger.Reason(err)
			stats.ByReason[reason]++
			log.Debug("transaction rejected",
				zap.String("type", string(tx.Type)),
				zap.Uint16("client", tx.Client),
				zap.Uint32("tx", tx.Tx),
				zap.String("reason", reason))
		} else {
			stats.Processed++
		}

		if opts.Audit != nil {
			auditErr = appendOutcome(opts.Audit, tx, err)
		}
	}

	if err := <-readErr; err != nil {
		log.Error("input stream failed", zap.Error(err))

		return stats, err
	}

	if auditErr != nil {
		log.Error("audit journal failed", zap.Error(auditErr))

		return stats, auditErr
	}

	snapshots := eng.SortedSnapshots()
	stats.Accounts = len(snapshots)

	if len(opts.Sinks) > 0 {
		report := export.Report{
			RunID:      runID,
			FinishedAt: time.Now().UTC(),
			Snapshots:  snapshots,
		}
		for _, sink := range opts.Sinks {
			if err := sink.Write(ctx, report); err != nil {
				log.Error("report sink failed", zap.Error(err))

				return stats, fmt.Errorf("writing report: %w", err)
			}
		}
	}

	if err := record.NewWriter(out).WriteAll(snapshots); err != nil {
		return stats, fmt.Errorf("writing account snapshots: %w", err)
	}

	log.Info("run complete",
		zap.Int("processed", stats.Processed),
		zap.Int("rejected", stats.Rejected),
		zap.Int("accounts", stats.Accounts),
		zap.Duration("elapsed", time.Since(start)))

	return stats, nil
}

func produce(ctx context.Context, r *record.Reader, records chan<- record.Transaction) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tx, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		select {
		case records <- tx:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func appendOutcome(j *audit.Journal, tx record.Transaction, err error) error {
	p := audit.Payload{
		Type:    string(tx.Type),
		Client:  tx.Client,
		Tx:      tx.Tx,
		Outcome: audit.OutcomeApplied,
	}

	if tx.Amount != nil {
		p.Amount = money.Format(*tx.Amount)
	}

	if err != nil {
		p.Outcome = ledger.Reason(err)
	}

	return j.Append(p)
}

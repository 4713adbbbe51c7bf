// Package api exposes the settlement engine over HTTP: transactions in,
// account snapshots out. The engine keeps its single-writer discipline
// behind one mutex; handlers never touch the stores directly.
package api

import (
	"fmt"
	"sync"

	"github.com/example/reckon/internal/engine"
	"github.com/example/reckon/internal/ledger"
	"github.com/example/reckon/internal/money"
	"github.com/example/reckon/internal/record"
	"github.com/example/reckon/pkg/audit"
)

// Settler owns one settlement engine and serializes access to it. The
// engine and its stores have no locking of their own.
type Settler struct {
	mu      sync.Mutex
	eng     *engine.Engine
	journal *audit.Journal
}

// NewSettler returns a Settler over a fresh engine. journal may be nil
// to run without an audit trail.
func NewSettler(journal *audit.Journal) *Settler {
	return &Settler{eng: engine.New(), journal: journal}
}

// Apply runs one transaction through the engine. A business rejection
// comes back as a ledger sentinel error; a journal write failure comes
// back wrapped and takes precedence over any rejection.
func (s *Settler) Apply(tx record.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.eng.Process(tx)

	if s.journal != nil {
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

		if jerr := s.journal.Append(p); jerr != nil {
			return fmt.Errorf("failed to append audit entry: %w", jerr)
		}
	}

	return err
}

// Snapshots returns the current account states sorted by client id.
func (s *Settler) Snapshots() []record.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eng.SortedSnapshots()
}

// Snapshot returns the current state of one account.
func (s *Settler) Snapshot(client uint16) (record.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eng.Snapshot(client)
}

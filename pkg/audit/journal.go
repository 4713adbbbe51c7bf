// Package audit provides a tamper-evident journal of transaction
// outcomes using hash chaining. Each entry commits to the one before it,
// so any edit, removal, or reordering breaks verification from that
// point on.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OutcomeApplied marks an entry for a transaction the engine accepted.
// Rejected transactions carry their rejection code instead.
const OutcomeApplied = "applied"

// Payload is the journaled fact: one transaction and what became of it.
type Payload struct {
	Type    string `json:"type"`
	Client  uint16 `json:"client"`
	Tx      uint32 `json:"tx"`
	Amount  string `json:"amount,omitempty"`
	Outcome string `json:"outcome"`
}

// Entry is a single line of the journal.
type Entry struct {
	ID        string  `json:"id"`
	Seq       uint64  `json:"seq"`
	Timestamp string  `json:"timestamp"`
	PrevHash  string  `json:"previous_hash"`
	Payload   Payload `json:"payload"`
	Hash      string  `json:"hash"`
}

// Journal appends hash-chained entries to a writer as JSON lines. The
// chain starts from a zero hash; sequence numbers start at 1.
type Journal struct {
	mu       sync.Mutex
	enc      *json.Encoder
	prevHash string
	seq      uint64
}

// NewJournal creates a journal writing to w.
func NewJournal(w io.Writer) *Journal {
	return &Journal{
		enc:      json.NewEncoder(w),
		prevHash: strings.Repeat("0", 64),
	}
}

// Append records one outcome and writes the entry immediately. A write
// failure leaves a gap in the journal, so callers should treat it as
// fatal to the run.
func (j *Journal) Append(p Payload) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := Entry{
		ID:        uuid.NewString(),
		Seq:       j.seq + 1,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		PrevHash:  j.prevHash,
		Payload:   p,
	}

	hash, err := entryHash(entry)
	if err != nil {
		return err
	}
	entry.Hash = hash

	if err := j.enc.Encode(entry); err != nil {
		return fmt.Errorf("writing audit entry %d: %w", entry.Seq, err)
	}

	j.seq = entry.Seq
	j.prevHash = entry.Hash
	return nil
}

// Len returns the number of entries appended so far.
func (j *Journal) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

func entryHash(e Entry) (string, error) {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return "", fmt.Errorf("encoding audit payload: %w", err)
	}

	input := fmt.Sprintf("%s|%d|%s|%s", e.PrevHash, e.Seq, e.Timestamp, body)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]), nil
}

// ReadJournal decodes a journal previously written by Journal.
func ReadJournal(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	var entries []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("decoding audit entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}

// VerifyChain checks that entries form an unbroken hash chain with
// contiguous sequence numbers. The first entry's previous hash is taken
// as given, so a tail segment of a longer journal verifies too.
func VerifyChain(entries []Entry) error {
	for i, e := range entries {
		if i > 0 {
			if e.Seq != entries[i-1].Seq+1 {
				return fmt.Errorf("entry %d: sequence gap after entry %d", e.Seq, entries[i-1].Seq)
			}
			if e.PrevHash != entries[i-1].Hash {
				return fmt.Errorf("entry %d: previous hash does not link to entry %d", e.Seq, entries[i-1].Seq)
			}
		}

		hash, err := entryHash(e)
		if err != nil {
			return err
		}
		if hash != e.Hash {
			return fmt.Errorf("entry %d: hash mismatch", e.Seq)
		}
	}
	return nil
}

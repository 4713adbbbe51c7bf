package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/reckon/internal/money"
)

// ParseError reports a malformed input row. Ingress failures are fatal to
// the whole run, unlike the engine's per-transaction rejections.
type ParseError struct {
	Record int // 1-based data record number, header excluded
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader streams transactions from CSV input. The first row must be a
// header naming at least the type, client, and tx columns; fields are
// matched by header name and whitespace-trimmed before parsing.
type Reader struct {
	csv    *csv.Reader
	cols   columns
	ready  bool
	record int
}

type columns struct {
	typ    int
	client int
	tx     int
	amount int // -1 when the input has no amount column
}

// NewReader wraps r for streaming decode.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

func (r *Reader) readHeader() error {
	row, err := r.csv.Read()
	if err != nil {
		// Empty input is a valid empty stream, not a malformed one.
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return &ParseError{Record: 0, Err: err}
	}

	r.cols = columns{typ: -1, client: -1, tx: -1, amount: -1}

	for i, name := range row {
		switch strings.TrimSpace(name) {
		case "type":
			r.cols.typ = i
		case "client":
			r.cols.client = i
		case "tx":
			r.cols.tx = i
		case "amount":
			r.cols.amount = i
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{"type", r.cols.typ},
		{"client", r.cols.client},
		{"tx", r.cols.tx},
	}

	for _, c := range required {
		if c.idx < 0 {
			return &ParseError{Record: 0, Err: fmt.Errorf("header is missing the %q column", c.name)}
		}
	}

	r.ready = true

	return nil
}

// Read returns the next transaction, io.EOF at end of input, or a
// *ParseError for a malformed row. Empty input yields io.EOF straight
// away; a present header must name the type, client, and tx columns.
func (r *Reader) Read() (Transaction, error) {
	if !r.ready {
		if err := r.readHeader(); err != nil {
			return Transaction{}, err
		}
	}

	row, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Transaction{}, io.EOF
	}

	r.record++

	if err != nil {
		return Transaction{}, &ParseError{Record: r.record, Err: err}
	}

	tx, err := r.decode(row)
	if err != nil {
		return Transaction{}, &ParseError{Record: r.record, Err: err}
	}

	return tx, nil
}

func (r *Reader) decode(row []string) (Transaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[i])
	}

	typ, err := ParseType(field(r.cols.typ))
	if err != nil {
		return Transaction{}, err
	}

	client, err := strconv.ParseUint(field(r.cols.client), 10, 16)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid client id %q", field(r.cols.client))
	}

	id, err := strconv.ParseUint(field(r.cols.tx), 10, 32)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid transaction id %q", field(r.cols.tx))
	}

	tx := Transaction{
		Type:   typ,
		Client: uint16(client),
		Tx:     uint32(id),
	}

	if raw := field(r.cols.amount); raw != "" {
		amount, err := money.Parse(raw)
		if err != nil {
			return Transaction{}, err
		}

		tx.Amount = &amount
	}

	return tx, nil
}

// ReadAll drains the reader. Intended for tests and small inputs; the
// pipeline streams row by row instead.
func (r *Reader) ReadAll() ([]Transaction, error) {
	var out []Transaction

	for {
		tx, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		out = append(out, tx)
	}
}

var snapshotHeader = []string{"client", "available", "held", "total", "locked"}

// Writer emits account snapshots as CSV. The header row is written before
// the first snapshot, or on Flush for an empty result set.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w for snapshot output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

func (w *Writer) header() error {
	if w.wroteHeader {
		return nil
	}

	w.wroteHeader = true

	return w.csv.Write(snapshotHeader)
}

// Write appends one snapshot row. Decimal fields go through the same
// four-digit truncation applied at ingress.
func (w *Writer) Write(s Snapshot) error {
	if err := w.header(); err != nil {
		return err
	}

	return w.csv.Write([]string{
		strconv.FormatUint(uint64(s.Client), 10),
		money.Format(s.Available),
		money.Format(s.Held),
		money.Format(s.Total),
		strconv.FormatBool(s.Locked),
	})
}

// Flush writes any buffered output, emitting the bare header first when no
// snapshot was ever written.
func (w *Writer) Flush() error {
	if err := w.header(); err != nil {
		return err
	}

	w.csv.Flush()

	return w.csv.Error()
}

// WriteAll writes every snapshot and flushes.
func (w *Writer) WriteAll(snapshots []Snapshot) error {
	for _, s := range snapshots {
		if err := w.Write(s); err != nil {
			return err
		}
	}

	return w.Flush()
}

package ledger

import "github.com/shopspring/decimal"

// Deposit is a successfully applied deposit retained for the dispute
// lifecycle. Withdrawals are never stored; only deposits can be disputed.
type Deposit struct {
	Client   uint16
	Amount   decimal.Decimal
	Disputed bool
}

// DepositStore tracks applied deposits together with the set of processed
// transaction ids. Deposits and withdrawals draw from one shared id
// namespace: a withdrawal reusing a deposit's id is a duplicate, and the
// other way around.
type DepositStore struct {
	deposits  map[uint32]*Deposit
	processed map[uint32]struct{}
}

func NewDepositStore() *DepositStore {
	return &DepositStore{
		deposits:  make(map[uint32]*Deposit),
		processed: make(map[uint32]struct{}),
	}
}

// IsProcessed reports whether tx was already applied as a deposit or a
// withdrawal.
func (s *DepositStore) IsProcessed(tx uint32) bool {
	_, ok := s.processed[tx]

	return ok
}

// MarkProcessed records tx in the shared id namespace.
func (s *DepositStore) MarkProcessed(tx uint32) {
	s.processed[tx] = struct{}{}
}

// RecordNew stores a fresh deposit for later dispute handling. A tx id
// that already has a stored deposit is rejected with
// ErrDuplicateTransaction regardless of which client sent it.
func (s *DepositStore) RecordNew(tx uint32, client uint16, amount decimal.Decimal) error {
	if _, ok := s.deposits[tx]; ok {
		return ErrDuplicateTransaction
	}

	s.deposits[tx] = &Deposit{Client: client, Amount: amount}

	return nil
}

// Get returns the stored deposit for tx after checking that it belongs to
// client. A missing deposit is ErrTransactionNotFound; a deposit owned by
// another client is ErrTransactionClientMismatch.
func (s *DepositStore) Get(client uint16, tx uint32) (*Deposit, error) {
	d, ok := s.deposits[tx]
	if !ok {
		return nil, ErrTransactionNotFound
	}

	if d.Client != client {
		return nil, ErrTransactionClientMismatch
	}

	return d, nil
}

// Package ledger holds the in-memory account and deposit state for one
// settlement run. Both stores are owned by a single writer and do no
// locking of their own; callers that share them across goroutines must
// serialize access themselves.
package ledger

import "github.com/shopspring/decimal"

// Account is the per-client balance state. Total funds are derived from
// available plus held and never stored.
type Account struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// Total returns available plus held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// AccountStore keeps every account touched during the current run,
// created on first use.
type AccountStore struct {
	accounts map[uint16]*Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[uint16]*Account)}
}

// CheckNotLocked fails with ErrAccountLocked when the client's account is
// frozen. A client with no account yet passes; there is nothing to lock.
func (s *AccountStore) CheckNotLocked(client uint16) error {
	if a, ok := s.accounts[client]; ok && a.Locked {
		return ErrAccountLocked
	}

	return nil
}

// GetOrCreate returns the client's account, creating a zero-balance
// unlocked one on first touch.
func (s *AccountStore) GetOrCreate(client uint16) *Account {
	a, ok := s.accounts[client]
	if !ok {
		a = &Account{Client: client}
		s.accounts[client] = a
	}

	return a
}

// Get returns the client's account, or ErrAccountNotFound if the client
// has never been seen.
func (s *AccountStore) Get(client uint16) (*Account, error) {
	a, ok := s.accounts[client]
	if !ok {
		return nil, ErrAccountNotFound
	}

	return a, nil
}

// All returns every account in no particular order.
func (s *AccountStore) All() []*Account {
	out := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}

	return out
}

// Len returns the number of accounts in the store.
func (s *AccountStore) Len() int {
	return len(s.accounts)
}

// Package engine applies the settlement transaction stream to the ledger,
// enforcing the business rules for each transaction kind. Validation
// always completes before any balance changes, so a rejected transaction
// leaves every account exactly as it was.
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/reckon/internal/ledger"
	"github.com/example/reckon/internal/record"
)

// Engine owns the account and deposit stores and applies transactions one
// at a time. It is not safe for concurrent use; run it from a single
// goroutine or serialize access externally.
type Engine struct {
	accounts *ledger.AccountStore
	deposits *ledger.DepositStore
}

func New() *Engine {
	return &Engine{
		accounts: ledger.NewAccountStore(),
		deposits: ledger.NewDepositStore(),
	}
}

// Process applies one transaction. A returned business rule rejection
// (ledger.IsRejection) means the transaction was refused and no state
// changed; the caller decides whether to log it or drop it silently.
// Locked accounts refuse every transaction kind.
func (e *Engine) Process(tx record.Transaction) error {
	if err := e.accounts.CheckNotLocked(tx.Client); err != nil {
		return err
	}

	switch tx.Type {
	case record.TypeDeposit:
		return e.deposit(tx.Client, tx.Tx, tx.Amount)
	case record.TypeWithdrawal:
		return e.withdraw(tx.Client, tx.Tx, tx.Amount)
	case record.TypeDispute:
		return e.dispute(tx.Client, tx.Tx)
	case record.TypeResolve:
		return e.resolve(tx.Client, tx.Tx)
	case record.TypeChargeback:
		return e.chargeback(tx.Client, tx.Tx)
	default:
		return ledger.ErrInvalidTransaction
	}
}

func (e *Engine) deposit(client uint16, tx uint32, amount *decimal.Decimal) error {
	if amount == nil {
		return ledger.ErrInvalidTransaction
	}

	if !amount.IsPositive() {
		return ledger.ErrAmountMustBePositive
	}

	if e.deposits.IsProcessed(tx) {
		return ledger.ErrDuplicateTransaction
	}

	if err := e.deposits.RecordNew(tx, client, *amount); err != nil {
		return err
	}

	account := e.accounts.GetOrCreate(client)
	account.Available = account.Available.Add(*amount)
	e.deposits.MarkProcessed(tx)

	return nil
}

func (e *Engine) withdraw(client uint16, tx uint32, amount *decimal.Decimal) error {
	if amount == nil {
		return ledger.ErrInvalidTransaction
	}

	if !amount.IsPositive() {
		return ledger.ErrAmountMustBePositive
	}

	if e.deposits.IsProcessed(tx) {
		return ledger.ErrDuplicateTransaction
	}

	account, err := e.accounts.Get(client)
	if err != nil {
		return err
	}

	if account.Available.LessThan(*amount) {
		return ledger.ErrInsufficientFunds
	}

	account.Available = account.Available.Sub(*amount)
	e.deposits.MarkProcessed(tx)

	return nil
}

func (e *Engine) dispute(client uint16, tx uint32) error {
	deposit, err := e.deposits.Get(client, tx)
	if err != nil {
		return err
	}

	if deposit.Disputed {
		return ledger.ErrTransactionAlreadyDisputed
	}

	deposit.Disputed = true

	// The account exists: the deposit could only have been stored by a
	// successful deposit for this client.
	account := e.accounts.GetOrCreate(client)
	account.Held = account.Held.Add(deposit.Amount)
	account.Available = account.Available.Sub(deposit.Amount)

	return nil
}

func (e *Engine) resolve(client uint16, tx uint32) error {
	deposit, err := e.deposits.Get(client, tx)
	if err != nil {
		return err
	}

	if !deposit.Disputed {
		return ledger.ErrTransactionNotDisputed
	}

	deposit.Disputed = false

	account := e.accounts.GetOrCreate(client)
	account.Held = account.Held.Sub(deposit.Amount)
	account.Available = account.Available.Add(deposit.Amount)

	return nil
}

func (e *Engine) chargeback(client uint16, tx uint32) error {
	deposit, err := e.deposits.Get(client, tx)
	if err != nil {
		return err
	}

	if !deposit.Disputed {
		return ledger.ErrTransactionNotDisputed
	}

	deposit.Disputed = false

	// Held funds are forfeited, not returned to available. The lock is
	// permanent for the rest of the run.
	account := e.accounts.GetOrCreate(client)
	account.Held = account.Held.Sub(deposit.Amount)
	account.Locked = true

	return nil
}

// Snapshot returns the state of one account.
func (e *Engine) Snapshot(client uint16) (record.Snapshot, error) {
	account, err := e.accounts.Get(client)
	if err != nil {
		return record.Snapshot{}, err
	}

	return snapshot(account), nil
}

// Snapshots returns the state of every account in no particular order.
func (e *Engine) Snapshots() []record.Snapshot {
	accounts := e.accounts.All()

	out := make([]record.Snapshot, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, snapshot(a))
	}

	return out
}

// SortedSnapshots returns every account ordered by client id ascending,
// for deterministic output.
func (e *Engine) SortedSnapshots() []record.Snapshot {
	out := e.Snapshots()
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })

	return out
}

func snapshot(a *ledger.Account) record.Snapshot {
	return record.Snapshot{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

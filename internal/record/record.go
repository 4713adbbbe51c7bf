// Package record defines the wire representation of the settlement stream:
// the transaction rows read from input and the account snapshot rows written
// as output, together with their CSV codec.
package record

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Type identifies one of the five transaction kinds. The set is closed;
// dispatch on it is exhaustive with unknown values rejected at ingress.
type Type string

const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeDispute    Type = "dispute"
	TypeResolve    Type = "resolve"
	TypeChargeback Type = "chargeback"
)

// ParseType validates a transaction type tag.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeDeposit, TypeWithdrawal, TypeDispute, TypeResolve, TypeChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one parsed input row. Amount is nil for the transaction
// kinds that do not carry one (dispute, resolve, chargeback); when present
// it has already been truncated to the ingress scale.
type Transaction struct {
	Type   Type
	Client uint16
	Tx     uint32
	Amount *decimal.Decimal
}

// Snapshot is one output row describing the final state of an account.
// Total is always Available + Held, computed when the snapshot is taken.
type Snapshot struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

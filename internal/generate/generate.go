// Package generate produces synthetic settlement workloads whose final
// ledger state is known in closed form, for benchmarks and end-to-end
// verification.
package generate

import (
	"bufio"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/example/reckon/internal/record"
)

// Workload shape per client i: deposits of 10·i, withdrawals of 20·i,
// five disputes, four resolves, then a chargeback for even clients or
// one extra withdrawal for odd ones.
const (
	numDeposits    = 70
	numWithdrawals = 20
	numDisputes    = 5
	numResolves    = 4

	baseDeposit    = 10
	baseWithdrawal = 20

	// TransactionsPerClient is the number of rows Workload emits for
	// each client.
	TransactionsPerClient = numDeposits + numWithdrawals + numDisputes + numResolves + 1
)

// Workload writes a CSV transaction stream for clients 1..n. Rows are
// emitted round-robin across clients, so streams interleave while every
// client still sees its own transactions in order. Deposit and
// withdrawal ids come from one global counter; dispute rounds reference
// earlier deposit ids arithmetically.
func Workload(w io.Writer, n uint16) error {
	if n == 0 {
		return fmt.Errorf("need at least one client")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "type,client,tx,amount")

	txID := uint32(1)

	for round := 0; round < TransactionsPerClient; round++ {
		for c := 1; c <= int(n); c++ {
			switch {
			case round < numDeposits:
				fmt.Fprintf(bw, "deposit,%d,%d,%d\n", c, txID, baseDeposit*c)
				txID++
			case round < numDeposits+numWithdrawals:
				fmt.Fprintf(bw, "withdrawal,%d,%d,%d\n", c, txID, baseWithdrawal*c)
				txID++
			case round < numDeposits+numWithdrawals+numDisputes:
				idx := round - numDeposits - numWithdrawals
				fmt.Fprintf(bw, "dispute,%d,%d,\n", c, depositID(idx, n, c))
			case round < TransactionsPerClient-1:
				idx := round - numDeposits - numWithdrawals - numDisputes
				fmt.Fprintf(bw, "resolve,%d,%d,\n", c, depositID(idx, n, c))
			case c%2 == 0:
				// The fifth dispute is still open; charge it back.
				fmt.Fprintf(bw, "chargeback,%d,%d,\n", c, depositID(numResolves, n, c))
			default:
				fmt.Fprintf(bw, "withdrawal,%d,%d,%d\n", c, txID, baseWithdrawal*c)
				txID++
			}
		}
	}

	return bw.Flush()
}

// depositID returns the global id of the deposit emitted for client c in
// deposit round idx. Deposit rounds run round-robin from a counter
// starting at 1, so the id is idx·n + c.
func depositID(idx int, n uint16, c int) uint32 {
	return uint32(idx)*uint32(n) + uint32(c)
}

// FinalState returns the closed-form final snapshot for client i after a
// Workload stream settles. Odd clients keep one open dispute and end
// unlocked with available 270·i and held 10·i; even clients are charged
// back and locked with available 290·i and nothing held.
func FinalState(client uint16) record.Snapshot {
	i := int64(client)

	if client%2 == 1 {
		return record.Snapshot{
			Client:    client,
			Available: decimal.NewFromInt(270 * i),
			Held:      decimal.NewFromInt(10 * i),
			Total:     decimal.NewFromInt(280 * i),
			Locked:    false,
		}
	}

	return record.Snapshot{
		Client:    client,
		Available: decimal.NewFromInt(290 * i),
		Held:      decimal.Zero,
		Total:     decimal.NewFromInt(290 * i),
		Locked:    true,
	}
}

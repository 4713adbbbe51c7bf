package generate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/reckon/internal/engine"
	"github.com/example/reckon/internal/record"
)

func TestWorkload_SettlesToClosedForm(t *testing.T) {
	const clients = 10

	var buf bytes.Buffer
	require.NoError(t, Workload(&buf, clients))

	txs, err := record.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, txs, clients*TransactionsPerClient)

	e := engine.New()
	for _, tx := range txs {
		// The generated stream is fully valid; nothing may be rejected.
		require.NoError(t, e.Process(tx), "type=%s client=%d tx=%d", tx.Type, tx.Client, tx.Tx)
	}

	snaps := e.SortedSnapshots()
	require.Len(t, snaps, clients)

	for i, got := range snaps {
		want := FinalState(uint16(i + 1))
		assert.Equal(t, want.Client, got.Client)
		assert.True(t, got.Available.Equal(want.Available),
			"client %d available = %s, want %s", got.Client, got.Available, want.Available)
		assert.True(t, got.Held.Equal(want.Held),
			"client %d held = %s, want %s", got.Client, got.Held, want.Held)
		assert.True(t, got.Total.Equal(want.Total),
			"client %d total = %s, want %s", got.Client, got.Total, want.Total)
		assert.Equal(t, want.Locked, got.Locked, "client %d locked", got.Client)
	}
}

func TestWorkload_RowShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workload(&buf, 3))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1+3*TransactionsPerClient)
	assert.Equal(t, "type,client,tx,amount", lines[0])

	// Round-robin: the first rows are each client's first deposit.
	assert.Equal(t, "deposit,1,1,10", lines[1])
	assert.Equal(t, "deposit,2,2,20", lines[2])
	assert.Equal(t, "deposit,3,3,30", lines[3])
}

func TestWorkload_ZeroClients(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, Workload(&buf, 0))
}

func TestFinalState(t *testing.T) {
	odd := FinalState(1)
	assert.Equal(t, "270", odd.Available.String())
	assert.Equal(t, "10", odd.Held.String())
	assert.Equal(t, "280", odd.Total.String())
	assert.False(t, odd.Locked)

	even := FinalState(2)
	assert.Equal(t, "580", even.Available.String())
	assert.Equal(t, "0", even.Held.String())
	assert.Equal(t, "580", even.Total.String())
	assert.True(t, even.Locked)
}

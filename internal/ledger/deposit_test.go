package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositStore_NewStoreIsEmpty(t *testing.T) {
	s := NewDepositStore()

	assert.False(t, s.IsProcessed(1))

	_, err := s.Get(1, 1)
	assert.Error(t, err)
}

func TestDepositStore_MarkAndCheckProcessed(t *testing.T) {
	s := NewDepositStore()

	assert.False(t, s.IsProcessed(1))

	s.MarkProcessed(1)
	assert.True(t, s.IsProcessed(1))
	assert.False(t, s.IsProcessed(2))
}

func TestDepositStore_RecordAndGet(t *testing.T) {
	s := NewDepositStore()
	amount := decimal.RequireFromString("100.50")

	require.NoError(t, s.RecordNew(1, 1, amount))

	d, err := s.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), d.Client)
	assert.True(t, d.Amount.Equal(amount))
	assert.False(t, d.Disputed)
}

func TestDepositStore_GetMissing(t *testing.T) {
	s := NewDepositStore()

	_, err := s.Get(1, 1)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestDepositStore_GetWrongClient(t *testing.T) {
	s := NewDepositStore()
	require.NoError(t, s.RecordNew(1, 1, decimal.NewFromInt(100)))

	_, err := s.Get(2, 1)
	assert.ErrorIs(t, err, ErrTransactionClientMismatch)
}

func TestDepositStore_DuplicateAcrossClients(t *testing.T) {
	s := NewDepositStore()
	require.NoError(t, s.RecordNew(1, 1, decimal.NewFromInt(100)))

	err := s.RecordNew(1, 2, decimal.NewFromInt(200))
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	// The original deposit is untouched.
	d, err := s.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), d.Client)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(100)))
}

func TestDepositStore_DisputeFlagPersists(t *testing.T) {
	s := NewDepositStore()
	require.NoError(t, s.RecordNew(1, 1, decimal.NewFromInt(100)))

	d, err := s.Get(1, 1)
	require.NoError(t, err)
	d.Disputed = true

	d, err = s.Get(1, 1)
	require.NoError(t, err)
	assert.True(t, d.Disputed)
}

func TestDepositStore_OverwriteRejected(t *testing.T) {
	s := NewDepositStore()
	require.NoError(t, s.RecordNew(1, 1, decimal.NewFromInt(100)))

	err := s.RecordNew(1, 1, decimal.NewFromInt(200))
	assert.ErrorIs(t, err, ErrDuplicateTransaction)

	d, err := s.Get(1, 1)
	require.NoError(t, err)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(100)))
}

func TestDepositStore_MultipleDepositsSameClient(t *testing.T) {
	s := NewDepositStore()
	require.NoError(t, s.RecordNew(1, 1, decimal.NewFromInt(100)))
	require.NoError(t, s.RecordNew(2, 1, decimal.NewFromInt(200)))

	d1, err := s.Get(1, 1)
	require.NoError(t, err)
	assert.True(t, d1.Amount.Equal(decimal.NewFromInt(100)))

	d2, err := s.Get(1, 2)
	require.NoError(t, err)
	assert.True(t, d2.Amount.Equal(decimal.NewFromInt(200)))
}

func TestDepositStore_ProcessedAndStoredAreIndependent(t *testing.T) {
	s := NewDepositStore()

	// Marked processed without a stored deposit: a withdrawal id.
	s.MarkProcessed(1)
	assert.True(t, s.IsProcessed(1))

	_, err := s.Get(1, 1)
	assert.Error(t, err)

	// Stored without being marked processed.
	require.NoError(t, s.RecordNew(2, 1, decimal.NewFromInt(100)))
	assert.False(t, s.IsProcessed(2))

	_, err = s.Get(1, 2)
	assert.NoError(t, err)
}

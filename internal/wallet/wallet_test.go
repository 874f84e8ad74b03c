package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndBalance(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	// Unknown addresses read as zero.
	b, err := l.Balance("0xnobody")
	require.NoError(t, err)
	assert.Zero(t, b)

	require.NoError(t, l.Deposit("0xalice", 100))
	require.NoError(t, l.Deposit("0xalice", 50))
	b, err = l.Balance("0xalice")
	require.NoError(t, err)
	assert.Equal(t, uint64(150), b)

	require.ErrorIs(t, l.Deposit("0xalice", 0), ErrInvalidAmount)
}

func TestDebit(t *testing.T) {
	l := NewLedger(NewMemoryStore())
	require.NoError(t, l.Deposit("0xalice", 100))

	require.ErrorIs(t, l.Debit("0xalice", 0), ErrInvalidAmount)
	require.ErrorIs(t, l.Debit("0xalice", 101), ErrInsufficientFunds)

	require.NoError(t, l.Debit("0xalice", 100))
	b, err := l.Balance("0xalice")
	require.NoError(t, err)
	assert.Zero(t, b)

	// A drained account cannot go negative.
	require.ErrorIs(t, l.Debit("0xalice", 1), ErrInsufficientFunds)
}

func TestCreditCreatesAccount(t *testing.T) {
	l := NewLedger(NewMemoryStore())

	require.NoError(t, l.Credit("0xbob", 42))
	b, err := l.Balance("0xbob")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), b)
}

func TestTransfer(t *testing.T) {
	l := NewLedger(NewMemoryStore())
	require.NoError(t, l.Deposit("0xalice", 100))

	require.ErrorIs(t, l.Transfer("0xalice", "0xbob", 0), ErrInvalidAmount)
	require.ErrorIs(t, l.Transfer("0xalice", "0xbob", 101), ErrInsufficientFunds)

	// A failed transfer leaves both sides untouched.
	a, err := l.Balance("0xalice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), a)
	b, err := l.Balance("0xbob")
	require.NoError(t, err)
	assert.Zero(t, b)

	require.NoError(t, l.Transfer("0xalice", "0xbob", 60))
	a, err = l.Balance("0xalice")
	require.NoError(t, err)
	assert.Equal(t, uint64(40), a)
	b, err = l.Balance("0xbob")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), b)
}

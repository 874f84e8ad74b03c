package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/nft-exchange/internal/queue"
)

const (
	authority = "0xauthority"
	alice     = "0xalice"
	bob       = "0xbob"
	carol     = "0xcarol"
)

// recordingSink captures mint notifications for assertions.
type recordingSink struct {
	minted []queue.TokenMintedEvent
}

func (s *recordingSink) TokenMinted(ev queue.TokenMintedEvent) {
	s.minted = append(s.minted, ev)
}

func newTestRegistry() (*Registry, *recordingSink) {
	sink := &recordingSink{}
	r := New(NewMemoryStore(), authority, sink).
		WithClock(func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) })
	return r, sink
}

func TestMintAssignsSequentialIDs(t *testing.T) {
	r, _ := newTestRegistry()

	for want := uint64(0); want < 3; want++ {
		id, err := r.MintTo(authority, alice, "ipfs://meta")
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	owner, err := r.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	uri, err := r.MetadataOf(2)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://meta", uri)
}

func TestMintRequiresAuthority(t *testing.T) {
	r, sink := newTestRegistry()

	_, err := r.MintTo(alice, alice, "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, sink.minted)

	// A rejected mint must not consume an identifier.
	id, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)
}

func TestMintRejectsEmptyRecipient(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.MintTo(authority, "", "ipfs://meta")
	require.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestMintEmitsEvent(t *testing.T) {
	r, sink := newTestRegistry()

	id, err := r.MintTo(authority, bob, "ipfs://one")
	require.NoError(t, err)

	require.Len(t, sink.minted, 1)
	ev := sink.minted[0]
	assert.Equal(t, id, ev.TokenID)
	assert.Equal(t, bob, ev.Recipient)
	assert.Equal(t, "ipfs://one", ev.URI)
	assert.Equal(t, "2026-08-30T12:00:00Z", ev.MintedAt)
}

func TestBatchMint(t *testing.T) {
	r, sink := newTestRegistry()

	_, err := r.BatchMintTo(authority, []string{alice, bob}, []string{"a"})
	require.ErrorIs(t, err, ErrLengthMismatch)
	assert.Empty(t, sink.minted)

	ids, err := r.BatchMintTo(authority, []string{alice, bob, carol}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2}, ids)

	owner, err := r.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)

	uri, err := r.MetadataOf(2)
	require.NoError(t, err)
	assert.Equal(t, "c", uri)
	assert.Len(t, sink.minted, 3)
}

func TestMintMultiple(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.MintMultipleTo(authority, alice, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	ids, err := r.MintMultipleTo(authority, alice, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2}, ids)

	for _, id := range ids {
		owner, err := r.OwnerOf(id)
		require.NoError(t, err)
		assert.Equal(t, alice, owner)
		uri, err := r.MetadataOf(id)
		require.NoError(t, err)
		assert.Empty(t, uri)
	}
}

func TestOwnerOfUnknownToken(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.OwnerOf(42)
	assert.ErrorIs(t, err, ErrUnknownToken)

	_, err = r.MetadataOf(42)
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestApprove(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)

	require.ErrorIs(t, r.Approve(bob, 0, carol), ErrNotAuthorized)
	require.ErrorIs(t, r.Approve(alice, 99, carol), ErrUnknownToken)

	require.NoError(t, r.Approve(alice, 0, bob))
	ok, err := r.IsApprovedOrOwner(bob, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// Clearing with an empty spender revokes the delegation.
	require.NoError(t, r.Approve(alice, 0, ""))
	ok, err = r.IsApprovedOrOwner(bob, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferFromBySpender(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)
	require.NoError(t, r.Approve(alice, 0, bob))

	require.NoError(t, r.TransferFrom(bob, alice, carol, 0))
	owner, err := r.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, carol, owner)

	// The per-token approval is cleared by the transfer; the old
	// spender cannot move the token again.
	require.ErrorIs(t, r.TransferFrom(bob, carol, bob, 0), ErrNotAuthorized)
}

func TestTransferFromByOperator(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)

	require.NoError(t, r.SetApprovalForAll(alice, bob, true))
	require.NoError(t, r.TransferFrom(bob, alice, carol, 0))

	owner, err := r.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, carol, owner)

	// Disabling the blanket delegation takes effect immediately.
	_, err = r.MintTo(authority, alice, "")
	require.NoError(t, err)
	require.NoError(t, r.SetApprovalForAll(alice, bob, false))
	require.ErrorIs(t, r.TransferFrom(bob, alice, carol, 1), ErrNotAuthorized)
}

func TestTransferFromValidation(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)

	require.ErrorIs(t, r.TransferFrom(alice, alice, bob, 99), ErrUnknownToken)
	require.ErrorIs(t, r.TransferFrom(alice, alice, "", 0), ErrInvalidRecipient)
	// from must be the current owner even when the caller is authorized.
	require.ErrorIs(t, r.TransferFrom(alice, bob, carol, 0), ErrNotAuthorized)
	// An uninvolved caller cannot move the token.
	require.ErrorIs(t, r.TransferFrom(carol, alice, bob, 0), ErrNotAuthorized)

	// Failed attempts leave ownership untouched.
	owner, err := r.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestTransferUpdatesTimestamp(t *testing.T) {
	minted := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	moved := minted.Add(time.Hour)
	now := minted

	r := New(NewMemoryStore(), authority, nil).WithClock(func() time.Time { return now })
	_, err := r.MintTo(authority, alice, "")
	require.NoError(t, err)

	now = moved
	require.NoError(t, r.TransferFrom(alice, alice, bob, 0))

	tok, err := r.Token(0)
	require.NoError(t, err)
	assert.Equal(t, minted, tok.MintedAt)
	assert.Equal(t, moved, tok.UpdatedAt)
}

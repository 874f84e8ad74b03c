package market

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/nft-exchange/internal/model"
	"github.com/iliyamo/nft-exchange/internal/queue"
	"github.com/iliyamo/nft-exchange/internal/registry"
	"github.com/iliyamo/nft-exchange/internal/wallet"
)

const (
	authority = "0xauthority"
	exchange  = "0xexchange"
	seller    = "0xseller"
	buyer     = "0xbuyer"
	other     = "0xother"

	defaultRef = "default"
	price      = uint64(2500)
)

var testTime = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// recordingSink captures listing notifications for assertions.
type recordingSink struct {
	created   []queue.ListingEvent
	purchased []queue.ListingEvent
	cancelled []queue.ListingEvent
}

func (s *recordingSink) ListingCreated(ev queue.ListingEvent)   { s.created = append(s.created, ev) }
func (s *recordingSink) ListingPurchased(ev queue.ListingEvent) { s.purchased = append(s.purchased, ev) }
func (s *recordingSink) ListingCancelled(ev queue.ListingEvent) { s.cancelled = append(s.cancelled, ev) }

type exchangeFixture struct {
	ledger *Ledger
	reg    *registry.Registry
	pay    *wallet.Ledger
	sink   *recordingSink
}

func newExchange(t *testing.T) *exchangeFixture {
	t.Helper()
	sink := &recordingSink{}
	f := &exchangeFixture{
		reg:  registry.New(registry.NewMemoryStore(), authority, nil),
		pay:  wallet.NewLedger(wallet.NewMemoryStore()),
		sink: sink,
	}
	f.ledger = NewLedger(
		NewMemoryListingStore(),
		StaticResolver{defaultRef: f.reg},
		f.pay,
		sink,
		exchange,
	).WithClock(func() time.Time { return testTime })
	return f
}

// mintApproved mints a token to owner and grants the exchange a
// per-token transfer approval, the normal preparation for listing.
func (f *exchangeFixture) mintApproved(t *testing.T, owner string) uint64 {
	t.Helper()
	id, err := f.reg.MintTo(authority, owner, "")
	require.NoError(t, err)
	require.NoError(t, f.reg.Approve(owner, id, exchange))
	return id
}

func (f *exchangeFixture) balance(t *testing.T, addr string) uint64 {
	t.Helper()
	b, err := f.pay.Balance(addr)
	require.NoError(t, err)
	return b
}

func TestCreateListing(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)

	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), l.ID)
	assert.Equal(t, defaultRef, l.RegistryRef)
	assert.Equal(t, tokenID, l.TokenID)
	assert.Equal(t, price, l.Price)
	assert.Equal(t, model.ListingOnSale, l.Status)
	assert.Equal(t, seller, l.Seller)
	assert.Empty(t, l.Buyer)
	assert.Equal(t, testTime, l.CreatedAt)

	// The token stays with the seller; nothing is escrowed.
	owner, err := f.reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)

	require.Len(t, f.sink.created, 1)
	ev := f.sink.created[0]
	assert.Equal(t, "listing.created", ev.Event)
	assert.Equal(t, uint64(1), ev.ListingID)
	assert.Equal(t, price, ev.Price)
	assert.Equal(t, "ON_SALE", ev.Status)
	assert.Equal(t, seller, ev.Actor)
}

func TestCreateListingRequiresOwnership(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)

	_, err := f.ledger.CreateListing(buyer, defaultRef, tokenID, price)
	require.ErrorIs(t, err, ErrNotOwner)

	// A rejected create must not consume a listing identifier.
	n, err := f.ledger.CurrentListingCount()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.sink.created)
}

func TestCreateListingRequiresApproval(t *testing.T) {
	f := newExchange(t)
	id, err := f.reg.MintTo(authority, seller, "")
	require.NoError(t, err)

	_, err = f.ledger.CreateListing(seller, defaultRef, id, price)
	require.ErrorIs(t, err, ErrNotApproved)
}

func TestCreateListingViaOperatorApproval(t *testing.T) {
	f := newExchange(t)
	id, err := f.reg.MintTo(authority, seller, "")
	require.NoError(t, err)
	require.NoError(t, f.reg.SetApprovalForAll(seller, exchange, true))

	l, err := f.ledger.CreateListing(seller, defaultRef, id, price)
	require.NoError(t, err)
	assert.Equal(t, model.ListingOnSale, l.Status)
}

func TestCreateListingRejectsZeroPrice(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)

	_, err := f.ledger.CreateListing(seller, defaultRef, tokenID, 0)
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateListingUnknownRegistry(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)

	_, err := f.ledger.CreateListing(seller, "nowhere", tokenID, price)
	require.ErrorIs(t, err, ErrUnknownRegistry)
}

func TestCreateListingUnknownToken(t *testing.T) {
	f := newExchange(t)

	_, err := f.ledger.CreateListing(seller, defaultRef, 99, price)
	require.ErrorIs(t, err, registry.ErrUnknownToken)
}

func TestPurchase(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, f.pay.Deposit(buyer, price))

	got, err := f.ledger.PurchaseListing(buyer, l.ID, price)
	require.NoError(t, err)

	assert.Equal(t, model.ListingSold, got.Status)
	assert.Equal(t, buyer, got.Buyer)
	assert.Equal(t, testTime, got.PurchasedAt)

	// Ownership moved to the buyer.
	owner, err := f.reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, buyer, owner)

	// The attached payment moved in full from buyer to seller.
	assert.Zero(t, f.balance(t, buyer))
	assert.Equal(t, price, f.balance(t, seller))

	require.Len(t, f.sink.purchased, 1)
	ev := f.sink.purchased[0]
	assert.Equal(t, "listing.purchased", ev.Event)
	assert.Equal(t, "SOLD", ev.Status)
	assert.Equal(t, buyer, ev.Buyer)
	assert.Equal(t, buyer, ev.Actor)
}

func TestPurchaseRequiresExactPayment(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, f.pay.Deposit(buyer, 2*price))

	// Both under- and overpayment are rejected before any funds move.
	_, err = f.ledger.PurchaseListing(buyer, l.ID, price-1)
	require.ErrorIs(t, err, ErrWrongPayment)
	_, err = f.ledger.PurchaseListing(buyer, l.ID, price+1)
	require.ErrorIs(t, err, ErrWrongPayment)

	assert.Equal(t, 2*price, f.balance(t, buyer))
	owner, err := f.reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)
	assert.Empty(t, f.sink.purchased)
}

func TestPurchaseRejectsSelf(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, f.pay.Deposit(seller, price))

	_, err = f.ledger.PurchaseListing(seller, l.ID, price)
	require.ErrorIs(t, err, ErrSelfPurchase)
}

func TestPurchaseUnknownListing(t *testing.T) {
	f := newExchange(t)

	_, err := f.ledger.PurchaseListing(buyer, 7, price)
	require.ErrorIs(t, err, ErrUnknownListing)
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, f.pay.Deposit(buyer, price-1))

	_, err = f.ledger.PurchaseListing(buyer, l.ID, price)
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	// Listing and token are untouched.
	got, err := f.ledger.GetListing(l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingOnSale, got.Status)
	owner, err := f.reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)
}

func TestPurchaseStaleListingRefundsBuyer(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)

	// The seller moves the token away after listing it; the standing
	// approval dies with the transfer.
	require.NoError(t, f.reg.TransferFrom(seller, seller, other, tokenID))
	require.NoError(t, f.pay.Deposit(buyer, price))

	_, err = f.ledger.PurchaseListing(buyer, l.ID, price)
	require.ErrorIs(t, err, registry.ErrNotAuthorized)

	// The buyer got every unit back and the listing is still ON_SALE;
	// the seller received nothing.
	assert.Equal(t, price, f.balance(t, buyer))
	assert.Zero(t, f.balance(t, seller))
	got, err := f.ledger.GetListing(l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingOnSale, got.Status)
	assert.Empty(t, f.sink.purchased)
}

func TestPurchaseTerminalStates(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, f.pay.Deposit(buyer, price))
	require.NoError(t, f.pay.Deposit(other, price))

	_, err = f.ledger.PurchaseListing(buyer, l.ID, price)
	require.NoError(t, err)

	// SOLD is terminal for both purchase and cancel.
	_, err = f.ledger.PurchaseListing(other, l.ID, price)
	require.ErrorIs(t, err, ErrNotOnSale)
	_, err = f.ledger.CancelListing(seller, l.ID)
	require.ErrorIs(t, err, ErrNotOnSale)

	// The loser's funds never moved.
	assert.Equal(t, price, f.balance(t, other))
	require.Len(t, f.sink.purchased, 1)
}

func TestCancelListing(t *testing.T) {
	f := newExchange(t)
	tokenID := f.mintApproved(t, seller)
	l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)

	_, err = f.ledger.CancelListing(other, l.ID)
	require.ErrorIs(t, err, ErrNotSeller)
	_, err = f.ledger.CancelListing(seller, 42)
	require.ErrorIs(t, err, ErrUnknownListing)

	got, err := f.ledger.CancelListing(seller, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingCancelled, got.Status)
	assert.Equal(t, testTime, got.CancelledAt)

	// CANCELLED is terminal: no second cancel, no purchase.
	_, err = f.ledger.CancelListing(seller, l.ID)
	require.ErrorIs(t, err, ErrNotOnSale)
	require.NoError(t, f.pay.Deposit(buyer, price))
	_, err = f.ledger.PurchaseListing(buyer, l.ID, price)
	require.ErrorIs(t, err, ErrNotOnSale)

	// The seller keeps the token.
	owner, err := f.reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)

	require.Len(t, f.sink.cancelled, 1)
	assert.Equal(t, "listing.cancelled", f.sink.cancelled[0].Event)
	assert.Equal(t, "CANCELLED", f.sink.cancelled[0].Status)
}

func TestListingIdentifiersAreSequential(t *testing.T) {
	f := newExchange(t)

	for want := uint64(1); want <= 3; want++ {
		tokenID := f.mintApproved(t, seller)
		l, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
		require.NoError(t, err)
		assert.Equal(t, want, l.ID)
	}

	n, err := f.ledger.CurrentListingCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestListingsNewestFirst(t *testing.T) {
	f := newExchange(t)
	for i := 0; i < 3; i++ {
		tokenID := f.mintApproved(t, seller)
		_, err := f.ledger.CreateListing(seller, defaultRef, tokenID, price)
		require.NoError(t, err)
	}

	all, err := f.ledger.Listings(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].ID)
	assert.Equal(t, uint64(1), all[2].ID)

	page, err := f.ledger.Listings(2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].ID)
}

// flakyListingStore fails Update on demand to exercise persistence
// failures after the economic side of a purchase has completed.
type flakyListingStore struct {
	*MemoryListingStore
	failUpdate error
}

func (s *flakyListingStore) Update(l model.Listing) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	return s.MemoryListingStore.Update(l)
}

func TestPurchaseRecordUpdateFailureLeavesSafeState(t *testing.T) {
	store := &flakyListingStore{MemoryListingStore: NewMemoryListingStore()}
	reg := registry.New(registry.NewMemoryStore(), authority, nil)
	pay := wallet.NewLedger(wallet.NewMemoryStore())
	sink := &recordingSink{}
	led := NewLedger(store, StaticResolver{defaultRef: reg}, pay, sink, exchange).
		WithClock(func() time.Time { return testTime })

	tokenID, err := reg.MintTo(authority, seller, "")
	require.NoError(t, err)
	require.NoError(t, reg.Approve(seller, tokenID, exchange))
	l, err := led.CreateListing(seller, defaultRef, tokenID, price)
	require.NoError(t, err)
	require.NoError(t, pay.Deposit(buyer, price))

	boom := errors.New("update failed")
	store.failUpdate = boom
	_, err = led.PurchaseListing(buyer, l.ID, price)
	require.ErrorIs(t, err, boom)

	// The sale itself stands: the token and the payment both moved,
	// and no purchased event fired for the failed call.
	owner, err := reg.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, buyer, owner)
	b, err := pay.Balance(seller)
	require.NoError(t, err)
	assert.Equal(t, price, b)
	assert.Empty(t, sink.purchased)

	// The record stayed ON_SALE, which is the stale-listing case the
	// purchase path tolerates: a later attempt is debited and then
	// refunded in full when the registry refuses the transfer.
	got, err := led.GetListing(l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingOnSale, got.Status)

	store.failUpdate = nil
	require.NoError(t, pay.Deposit(other, price))
	_, err = led.PurchaseListing(other, l.ID, price)
	require.ErrorIs(t, err, registry.ErrNotAuthorized)
	b, err = pay.Balance(other)
	require.NoError(t, err)
	assert.Equal(t, price, b)
}

func TestEventsFireExactlyOncePerTransition(t *testing.T) {
	f := newExchange(t)

	sold := f.mintApproved(t, seller)
	l1, err := f.ledger.CreateListing(seller, defaultRef, sold, price)
	require.NoError(t, err)
	withdrawn := f.mintApproved(t, seller)
	l2, err := f.ledger.CreateListing(seller, defaultRef, withdrawn, price)
	require.NoError(t, err)

	require.NoError(t, f.pay.Deposit(buyer, 3*price))
	_, err = f.ledger.PurchaseListing(buyer, l1.ID, price)
	require.NoError(t, err)
	_, err = f.ledger.CancelListing(seller, l2.ID)
	require.NoError(t, err)

	// A stream of failed calls must add nothing.
	_, _ = f.ledger.PurchaseListing(buyer, l1.ID, price)
	_, _ = f.ledger.PurchaseListing(buyer, l2.ID, price)
	_, _ = f.ledger.CancelListing(seller, l1.ID)
	_, _ = f.ledger.CreateListing(buyer, defaultRef, sold, 0)

	assert.Len(t, f.sink.created, 2)
	assert.Len(t, f.sink.purchased, 1)
	assert.Len(t, f.sink.cancelled, 1)
}

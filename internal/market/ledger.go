package market

import (
	"log"
	"sync"
	"time"

	"github.com/iliyamo/nft-exchange/internal/model"
	"github.com/iliyamo/nft-exchange/internal/queue"
)

// Registry is the slice of a token registry the ledger consumes: an
// ownership query, an approval check and a transfer capability.
// Failures from these methods are fatal to the enclosing ledger
// operation and are propagated to the caller verbatim.
type Registry interface {
	OwnerOf(tokenID uint64) (string, error)
	IsApprovedOrOwner(caller string, tokenID uint64) (bool, error)
	TransferFrom(caller, from, to string, tokenID uint64) error
}

// RegistryResolver maps the opaque registry reference stored on a
// listing to a live registry instance, so tokens from more than one
// registry can be listed on the same ledger.
type RegistryResolver interface {
	Resolve(ref string) (Registry, error)
}

// StaticResolver is a fixed reference→registry table.
type StaticResolver map[string]Registry

// Resolve returns the registry for ref or ErrUnknownRegistry.
func (r StaticResolver) Resolve(ref string) (Registry, error) {
	reg, ok := r[ref]
	if !ok {
		return nil, ErrUnknownRegistry
	}
	return reg, nil
}

// PaymentRail moves funds between wallet addresses.  Debit fails when
// the account cannot cover the amount; Credit to any address always
// succeeds, which is what lets a failed purchase be unwound with a
// simple refund instead of a reverse token transfer.
type PaymentRail interface {
	Debit(addr string, amount uint64) error
	Credit(addr string, amount uint64) error
}

// EventSink receives one notification per successful state-changing
// operation, carrying the complete resulting listing record.  A nil
// sink disables notifications.  Sinks are never invoked for failed
// calls.
type EventSink interface {
	ListingCreated(ev queue.ListingEvent)
	ListingPurchased(ev queue.ListingEvent)
	ListingCancelled(ev queue.ListingEvent)
}

// Ledger owns the listing table and its state machine.  Listings move
// ON_SALE → SOLD or ON_SALE → CANCELLED exactly once; no transition
// leaves a terminal state.  The ledger never takes custody of tokens:
// it relies on a standing approval from the seller and performs the
// transfer at purchase time, so a seller keeps the asset (and may
// cancel freely) until someone buys.
//
// One mutex serializes createListing/purchaseListing/cancelListing so
// that each call is indivisible relative to every other call touching
// the same listing or token, which is the only concurrency control
// the state machine needs.  All preconditions are checked before any
// mutation; a failed call leaves no side effect.
type Ledger struct {
	mu         sync.Mutex
	store      ListingStore
	registries RegistryResolver
	rail       PaymentRail
	events     EventSink
	address    string
	clock      func() time.Time
}

// NewLedger constructs a Ledger.  address is the ledger's own wallet
// address, i.e. the spender sellers must approve in their registry
// before listing.  sink may be nil.
func NewLedger(store ListingStore, registries RegistryResolver, rail PaymentRail, sink EventSink, address string) *Ledger {
	if store == nil || registries == nil || rail == nil {
		panic("nil dependency passed to market.NewLedger")
	}
	return &Ledger{
		store:      store,
		registries: registries,
		rail:       rail,
		events:     sink,
		address:    address,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.  Intended for tests.
func (l *Ledger) WithClock(fn func() time.Time) *Ledger {
	l.clock = fn
	return l
}

// Address returns the ledger's wallet address, the spender sellers
// must approve before creating a listing.
func (l *Ledger) Address() string { return l.address }

// CreateListing opens a fixed-price listing for a token the caller
// owns.  Preconditions, in order: the caller must own the token, the
// ledger must hold a transfer authorization for it, and the price
// must be positive.  The token is not moved; it stays with the seller
// until purchase.  Returns the new listing, its identifier assigned
// sequentially from 1.
func (l *Ledger) CreateListing(caller, registryRef string, tokenID, price uint64) (model.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, err := l.registries.Resolve(registryRef)
	if err != nil {
		return model.Listing{}, err
	}
	owner, err := reg.OwnerOf(tokenID)
	if err != nil {
		return model.Listing{}, err
	}
	if owner != caller {
		return model.Listing{}, ErrNotOwner
	}
	approved, err := reg.IsApprovedOrOwner(l.address, tokenID)
	if err != nil {
		return model.Listing{}, err
	}
	if !approved {
		return model.Listing{}, ErrNotApproved
	}
	if price == 0 {
		return model.Listing{}, ErrInvalidPrice
	}

	listing, err := l.store.Create(model.Listing{
		RegistryRef: registryRef,
		TokenID:     tokenID,
		Price:       price,
		Status:      model.ListingOnSale,
		Seller:      caller,
		CreatedAt:   l.clock(),
	})
	if err != nil {
		return model.Listing{}, err
	}
	l.emit("listing.created", listing, caller, listing.CreatedAt)
	return listing, nil
}

// PurchaseListing buys an on-sale listing.  attachedPayment must
// equal the listed price exactly; over- and underpayment are both
// rejected before any funds move.  On success the buyer is debited,
// the token is transferred seller→buyer through the listing's
// registry, the seller is credited, and the listing becomes SOLD.
// If the registry refuses the transfer (for example the seller no
// longer owns the token or has revoked the ledger's approval), the
// buyer is refunded in full, the registry's error is propagated
// verbatim, and the listing is left untouched.
func (l *Ledger) PurchaseListing(caller string, listingID, attachedPayment uint64) (model.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok, err := l.store.Get(listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if !ok {
		return model.Listing{}, ErrUnknownListing
	}
	if listing.Status != model.ListingOnSale {
		return model.Listing{}, ErrNotOnSale
	}
	if attachedPayment != listing.Price {
		return model.Listing{}, ErrWrongPayment
	}
	if caller == listing.Seller {
		return model.Listing{}, ErrSelfPurchase
	}
	reg, err := l.registries.Resolve(listing.RegistryRef)
	if err != nil {
		return model.Listing{}, err
	}

	// Take the attached payment first, then move the token.  A
	// registry failure unwinds with a refund; credits cannot fail, so
	// no reverse token transfer is ever needed.
	if err := l.rail.Debit(caller, attachedPayment); err != nil {
		return model.Listing{}, err
	}
	if err := reg.TransferFrom(l.address, listing.Seller, caller, listing.TokenID); err != nil {
		if refundErr := l.rail.Credit(caller, attachedPayment); refundErr != nil {
			return model.Listing{}, refundErr
		}
		return model.Listing{}, err
	}
	if err := l.rail.Credit(listing.Seller, attachedPayment); err != nil {
		return model.Listing{}, err
	}

	listing.Status = model.ListingSold
	listing.Buyer = caller
	listing.PurchasedAt = l.clock()
	if err := l.store.Update(listing); err != nil {
		// The sale already went through in the registry and on the
		// payment rail; only the listing record failed to persist.
		// The record stays ON_SALE, which is the stale-listing case
		// the purchase path already tolerates: any later attempt is
		// debited and then fully refunded when the registry refuses
		// the transfer, because the seller no longer owns the token.
		log.Printf("market: listing %d sold (token %d, %s -> %s) but record update failed: %v",
			listing.ID, listing.TokenID, listing.Seller, caller, err)
		return model.Listing{}, err
	}
	l.emit("listing.purchased", listing, caller, listing.PurchasedAt)
	return listing, nil
}

// CancelListing withdraws an on-sale listing.  Only the seller may
// cancel, and only while the listing is still ON_SALE.  No asset or
// payment moves; nothing was ever escrowed.
func (l *Ledger) CancelListing(caller string, listingID uint64) (model.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	listing, ok, err := l.store.Get(listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if !ok {
		return model.Listing{}, ErrUnknownListing
	}
	if caller != listing.Seller {
		return model.Listing{}, ErrNotSeller
	}
	if listing.Status != model.ListingOnSale {
		return model.Listing{}, ErrNotOnSale
	}

	listing.Status = model.ListingCancelled
	listing.CancelledAt = l.clock()
	if err := l.store.Update(listing); err != nil {
		return model.Listing{}, err
	}
	l.emit("listing.cancelled", listing, caller, listing.CancelledAt)
	return listing, nil
}

// GetListing returns the stored record for a listing.  It reflects
// exactly the last successful mutation.
func (l *Ledger) GetListing(listingID uint64) (model.Listing, error) {
	listing, ok, err := l.store.Get(listingID)
	if err != nil {
		return model.Listing{}, err
	}
	if !ok {
		return model.Listing{}, ErrUnknownListing
	}
	return listing, nil
}

// CurrentListingCount returns the identifier of the newest listing,
// or 0 when none have been created.
func (l *Ledger) CurrentListingCount() (uint64, error) {
	return l.store.Count()
}

// Listings returns up to limit listings, newest first, for browse
// endpoints.
func (l *Ledger) Listings(limit int) ([]model.Listing, error) {
	return l.store.List(limit)
}

func (l *Ledger) emit(event string, listing model.Listing, actor string, at time.Time) {
	if l.events == nil {
		return
	}
	ev := queue.ListingEvent{
		Event:       event,
		ListingID:   listing.ID,
		RegistryRef: listing.RegistryRef,
		TokenID:     listing.TokenID,
		Price:       listing.Price,
		Status:      listing.Status.String(),
		Seller:      listing.Seller,
		Buyer:       listing.Buyer,
		Actor:       actor,
		Timestamp:   at.Format(time.RFC3339),
	}
	switch event {
	case "listing.created":
		l.events.ListingCreated(ev)
	case "listing.purchased":
		l.events.ListingPurchased(ev)
	case "listing.cancelled":
		l.events.ListingCancelled(ev)
	}
}

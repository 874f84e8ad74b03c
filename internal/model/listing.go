package model

import "time"

// ListingStatus enumerates the lifecycle states of a listing.  A
// listing starts ON_SALE and moves exactly once to SOLD or CANCELLED;
// both are terminal.
type ListingStatus uint8

const (
	ListingOnSale    ListingStatus = 0 // open for purchase
	ListingSold      ListingStatus = 1 // purchased, terminal
	ListingCancelled ListingStatus = 2 // withdrawn by the seller, terminal
)

// String returns the canonical name of the status for logs and events.
func (s ListingStatus) String() string {
	switch s {
	case ListingOnSale:
		return "ON_SALE"
	case ListingSold:
		return "SOLD"
	case ListingCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transition may leave the status.
func (s ListingStatus) Terminal() bool {
	return s == ListingSold || s == ListingCancelled
}

// Listing is a standing offer to sell one specific token at a fixed
// price.  Identifiers are assigned sequentially starting at 1; 0 is
// reserved as the "no listing" sentinel.  The asset stays with the
// seller until purchase; the ledger never takes custody.
//
// Fields:
//  ID          – sequential listing identifier.
//  RegistryRef – reference to the registry instance holding the token.
//  TokenID     – the token offered for sale.
//  Price       – asking price in the smallest payment unit, immutable.
//  Status      – lifecycle state (ON_SALE, SOLD, CANCELLED).
//  Seller      – address that created the listing, immutable.
//  Buyer       – purchaser address, empty until sold, then immutable.
//  CreatedAt   – set on creation.
//  PurchasedAt – zero until sold, then immutable.
//  CancelledAt – zero until cancelled, then immutable.
type Listing struct {
	ID          uint64        `json:"id"`                     // listings.id
	RegistryRef string        `json:"registry"`               // listings.registry_ref
	TokenID     uint64        `json:"token_id"`               // listings.token_id
	Price       uint64        `json:"price"`                  // listings.price
	Status      ListingStatus `json:"status"`                 // listings.status
	Seller      string        `json:"seller"`                 // listings.seller
	Buyer       string        `json:"buyer,omitempty"`        // listings.buyer (nullable)
	CreatedAt   time.Time     `json:"created_at"`             // listings.created_at
	PurchasedAt time.Time     `json:"purchased_at,omitzero"`  // listings.purchased_at (nullable)
	CancelledAt time.Time     `json:"cancelled_at,omitzero"`  // listings.cancelled_at (nullable)
}

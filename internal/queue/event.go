package queue

// ListingEvent is published on every successful listing transition
// (created, purchased, cancelled).  It carries the complete resulting
// listing record plus the acting party so downstream consumers
// (indexers, notification services) never need to query the primary
// database.  Exactly one event is published per successful operation
// and none for failed ones.
type ListingEvent struct {
	Event       string `json:"event"` // listing.created | listing.purchased | listing.cancelled
	ListingID   uint64 `json:"listing_id"`
	RegistryRef string `json:"registry"`
	TokenID     uint64 `json:"token_id"`
	Price       uint64 `json:"price"`
	Status      string `json:"status"`
	Seller      string `json:"seller"`
	Buyer       string `json:"buyer,omitempty"`
	Actor       string `json:"actor"`
	Timestamp   string `json:"timestamp"`
}

// TokenMintedEvent is published when the registry mints a new token.
type TokenMintedEvent struct {
	TokenID   uint64 `json:"token_id"`
	Recipient string `json:"recipient"`
	URI       string `json:"uri,omitempty"`
	MintedAt  string `json:"minted_at"`
}

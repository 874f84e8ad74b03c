// Package market implements the listing ledger: the create/purchase/
// cancel state machine that atomically couples an ownership transfer
// in a token registry with a payment transfer between wallets.  Each
// sentinel below corresponds to exactly one precondition, so callers
// always receive a distinguishable reason for a failure.
package market

import "errors"

// ErrUnknownRegistry is returned when a listing names a registry
// reference the ledger was not configured with.
var ErrUnknownRegistry = errors.New("unknown registry reference")

// ErrNotOwner is returned when the creator of a listing does not own
// the token being listed.
var ErrNotOwner = errors.New("caller does not own this token")

// ErrNotApproved is returned when the ledger holds no transfer
// authorization (per-token or blanket) for the token being listed.
var ErrNotApproved = errors.New("exchange not approved to transfer token")

// ErrInvalidPrice is returned when a listing is created with a zero
// price.
var ErrInvalidPrice = errors.New("price must be greater than zero")

// ErrUnknownListing is returned when an operation references a
// listing identifier that was never allocated.
var ErrUnknownListing = errors.New("listing does not exist")

// ErrNotOnSale is returned when a purchase or cancellation targets a
// listing that already reached a terminal state.  It deliberately
// covers both "already sold" and "already cancelled".
var ErrNotOnSale = errors.New("listing is no longer on sale")

// ErrWrongPayment is returned when the attached payment differs from
// the listed price in either direction; overpayment is rejected, not
// refunded partially.
var ErrWrongPayment = errors.New("payment must equal the listed price")

// ErrSelfPurchase is returned when a seller attempts to buy their own
// listing.
var ErrSelfPurchase = errors.New("seller cannot purchase own listing")

// ErrNotSeller is returned when anyone other than the seller attempts
// to cancel a listing.
var ErrNotSeller = errors.New("only the seller can cancel a listing")

// Package registry implements the token registry: minting, ownership
// queries, approvals and ownership transfer for unique tokens.  These
// sentinel values let handlers and the listing ledger distinguish
// between the distinct failure modes of every registry operation.
package registry

import "errors"

// ErrUnauthorized is returned when a caller other than the minting
// authority attempts to mint.
var ErrUnauthorized = errors.New("caller is not the minting authority")

// ErrInvalidRecipient is returned when a mint or transfer names an
// empty recipient address.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// ErrInvalidQuantity is returned when a bulk mint requests zero tokens.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// ErrLengthMismatch is returned when a batch mint is given recipient
// and metadata sequences of different lengths.
var ErrLengthMismatch = errors.New("recipients and metadata length mismatch")

// ErrUnknownToken is returned when an operation references a token
// identifier that was never minted.
var ErrUnknownToken = errors.New("unknown token")

// ErrNotAuthorized is returned when the caller of a transfer or
// approval is neither the token's owner nor an approved spender.
var ErrNotAuthorized = errors.New("caller is not owner nor approved")

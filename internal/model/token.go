package model

import "time"

// Token represents a unique asset tracked by a token registry.
// Identifiers are assigned sequentially starting at 0 and are never
// reused or destroyed; ownership changes only through transfer
// operations.
//
// Fields:
//  ID        – sequential token identifier (tokens.id).
//  Owner     – wallet address of the current owner.
//  URI       – metadata locator, immutable once set, may be empty.
//  MintedAt  – timestamp when the token was minted.
//  UpdatedAt – timestamp of the last ownership change.
type Token struct {
	ID        uint64    `json:"id"`         // tokens.id
	Owner     string    `json:"owner"`      // tokens.owner
	URI       string    `json:"uri"`        // tokens.uri
	MintedAt  time.Time `json:"minted_at"`  // tokens.minted_at
	UpdatedAt time.Time `json:"updated_at"` // tokens.updated_at
}

package registry

import (
	"sync"
	"time"

	"github.com/iliyamo/nft-exchange/internal/model"
	"github.com/iliyamo/nft-exchange/internal/queue"
)

// EventSink receives a notification for every successful mint.  A nil
// sink disables notifications.  Sinks are invoked after the state
// change has been persisted, never for failed operations.
type EventSink interface {
	TokenMinted(ev queue.TokenMintedEvent)
}

// Registry tracks ownership and metadata of unique tokens.  Minting
// is restricted to a single authority address; transfers require the
// caller to be the current owner or an approved spender.  All mutable
// state lives in the injected Store; the Registry itself holds no
// global state, so multiple independent registry instances can
// coexist in one process.
//
// A single mutex serializes every mutating operation.  Together with
// the precondition-before-mutation discipline below this gives each
// call all-or-nothing semantics relative to concurrent callers.
type Registry struct {
	mu        sync.Mutex
	store     Store
	authority string
	clock     func() time.Time
	events    EventSink
}

// New constructs a Registry.  authority is the only address allowed
// to mint.  sink may be nil.
func New(store Store, authority string, sink EventSink) *Registry {
	if store == nil {
		panic("nil store passed to registry.New")
	}
	return &Registry{
		store:     store,
		authority: authority,
		clock:     func() time.Time { return time.Now().UTC() },
		events:    sink,
	}
}

// WithClock replaces the time source.  Intended for tests.
func (r *Registry) WithClock(fn func() time.Time) *Registry {
	r.clock = fn
	return r
}

// MintTo mints the next sequential token to recipient with the given
// metadata locator (possibly empty).  Only the minting authority may
// call it.  Returns the new token identifier, starting at 0.
func (r *Registry) MintTo(caller, recipient, uri string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mintLocked(caller, recipient, uri)
}

// mintLocked performs a single mint with the registry lock held.  The
// identifier is allocated only after every precondition has passed.
func (r *Registry) mintLocked(caller, recipient, uri string) (uint64, error) {
	if caller != r.authority {
		return 0, ErrUnauthorized
	}
	if recipient == "" {
		return 0, ErrInvalidRecipient
	}
	now := r.clock()
	t, err := r.store.CreateToken(model.Token{
		Owner:     recipient,
		URI:       uri,
		MintedAt:  now,
		UpdatedAt: now,
	})
	if err != nil {
		return 0, err
	}
	if r.events != nil {
		r.events.TokenMinted(queue.TokenMintedEvent{
			TokenID:   t.ID,
			Recipient: recipient,
			URI:       uri,
			MintedAt:  now.Format(time.RFC3339),
		})
	}
	return t.ID, nil
}

// BatchMintTo mints one token per (recipient, uri) pair, in order.
// The two sequences must have equal length.  Returns the identifiers
// of the minted tokens.
func (r *Registry) BatchMintTo(caller string, recipients, uris []string) ([]uint64, error) {
	if len(recipients) != len(uris) {
		return nil, ErrLengthMismatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint64, 0, len(recipients))
	for i := range recipients {
		id, err := r.mintLocked(caller, recipients[i], uris[i])
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MintMultipleTo mints quantity sequential tokens to a single
// recipient, each with empty metadata.
func (r *Registry) MintMultipleTo(caller, recipient string, quantity uint64) ([]uint64, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint64, 0, quantity)
	for i := uint64(0); i < quantity; i++ {
		id, err := r.mintLocked(caller, recipient, "")
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// OwnerOf returns the current owner of a token.
func (r *Registry) OwnerOf(tokenID uint64) (string, error) {
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUnknownToken
	}
	return t.Owner, nil
}

// MetadataOf returns the stored metadata locator, possibly "".
func (r *Registry) MetadataOf(tokenID uint64) (string, error) {
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrUnknownToken
	}
	return t.URI, nil
}

// Token returns the full token record.
func (r *Registry) Token(tokenID uint64) (model.Token, error) {
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return model.Token{}, err
	}
	if !ok {
		return model.Token{}, ErrUnknownToken
	}
	return t, nil
}

// Approve records spender as the single address allowed to transfer
// the token on the owner's behalf.  Only the current owner may call
// it.  An empty spender clears the delegation.
func (r *Registry) Approve(caller string, tokenID uint64, spender string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownToken
	}
	if t.Owner != caller {
		return ErrNotAuthorized
	}
	return r.store.SetApproval(tokenID, spender)
}

// SetApprovalForAll records or clears a blanket delegation from the
// caller to operator covering all of the caller's tokens.
func (r *Registry) SetApprovalForAll(caller, operator string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.SetOperator(caller, operator, enabled)
}

// IsApprovedOrOwner reports whether caller may move the token: it is
// the owner, the token's approved spender, or a blanket operator for
// the owner.
func (r *Registry) IsApprovedOrOwner(caller string, tokenID uint64) (bool, error) {
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrUnknownToken
	}
	return r.isApprovedOrOwner(caller, t)
}

func (r *Registry) isApprovedOrOwner(caller string, t model.Token) (bool, error) {
	if caller == t.Owner {
		return true, nil
	}
	spender, err := r.store.ApprovedSpender(t.ID)
	if err != nil {
		return false, err
	}
	if spender != "" && spender == caller {
		return true, nil
	}
	return r.store.IsOperator(t.Owner, caller)
}

// TransferFrom reassigns ownership of a token from `from` to `to`.
// The caller must be authorized (owner, approved spender or blanket
// operator) and `from` must be the current owner.  The token-specific
// approval is cleared on success so a stale spender cannot move the
// token again after it changes hands.
func (r *Registry) TransferFrom(caller, from, to string, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok, err := r.store.GetToken(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownToken
	}
	if to == "" {
		return ErrInvalidRecipient
	}
	if t.Owner != from {
		return ErrNotAuthorized
	}
	authorized, err := r.isApprovedOrOwner(caller, t)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrNotAuthorized
	}
	t.Owner = to
	t.UpdatedAt = r.clock()
	if err := r.store.UpdateToken(t); err != nil {
		return err
	}
	return r.store.SetApproval(tokenID, "")
}

package registry

import (
	"sync"

	"github.com/iliyamo/nft-exchange/internal/model"
)

// Store abstracts persistence for tokens and approvals.  The registry
// owns all invariant checks; implementations only need to read and
// write records.  CreateToken assigns the next sequential identifier
// starting at 0 and is only called after every precondition has
// passed, so a failed mint never consumes an identifier.
type Store interface {
	// CreateToken persists a new token and returns it with the next
	// sequential identifier filled in.
	CreateToken(t model.Token) (model.Token, error)
	// GetToken returns the token and whether it exists.
	GetToken(id uint64) (model.Token, bool, error)
	// UpdateToken overwrites an existing token record.
	UpdateToken(t model.Token) error
	// SetApproval records the single approved spender for a token.
	// An empty spender clears the approval.
	SetApproval(tokenID uint64, spender string) error
	// ApprovedSpender returns the approved spender for a token, or ""
	// when none is set.
	ApprovedSpender(tokenID uint64) (string, error)
	// SetOperator records or clears a blanket delegation from owner
	// to operator.
	SetOperator(owner, operator string, enabled bool) error
	// IsOperator reports whether operator holds a blanket delegation
	// from owner.
	IsOperator(owner, operator string) (bool, error)
}

// MemoryStore is an in-process Store used by tests and by
// deployments that do not need durability.  All methods are safe for
// concurrent use, though the registry already serializes mutations.
type MemoryStore struct {
	mu        sync.RWMutex
	tokens    map[uint64]model.Token
	next      uint64
	approvals map[uint64]string
	operators map[string]map[string]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:    make(map[uint64]model.Token),
		approvals: make(map[uint64]string),
		operators: make(map[string]map[string]bool),
	}
}

func (s *MemoryStore) CreateToken(t model.Token) (model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.next
	s.next++
	s.tokens[t.ID] = t
	return t, nil
}

func (s *MemoryStore) GetToken(id uint64) (model.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	return t, ok, nil
}

func (s *MemoryStore) UpdateToken(t model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.ID] = t
	return nil
}

func (s *MemoryStore) SetApproval(tokenID uint64, spender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spender == "" {
		delete(s.approvals, tokenID)
		return nil
	}
	s.approvals[tokenID] = spender
	return nil
}

func (s *MemoryStore) ApprovedSpender(tokenID uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvals[tokenID], nil
}

func (s *MemoryStore) SetOperator(owner, operator string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.operators[owner]
	if m == nil {
		if !enabled {
			return nil
		}
		m = make(map[string]bool)
		s.operators[owner] = m
	}
	if enabled {
		m[operator] = true
	} else {
		delete(m, operator)
	}
	return nil
}

func (s *MemoryStore) IsOperator(owner, operator string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operators[owner][operator], nil
}

package market

import (
	"sort"
	"sync"

	"github.com/iliyamo/nft-exchange/internal/model"
)

// ListingStore abstracts persistence for listing records and the
// listing counter.  Create assigns sequential identifiers starting at
// 1 (0 is the "no listing" sentinel) and is only called once every
// precondition has passed, so a failed create never consumes an
// identifier.  The ledger owns all state-machine checks;
// implementations only read and write records.
type ListingStore interface {
	// Create persists a new listing and returns it with the next
	// sequential identifier filled in.
	Create(l model.Listing) (model.Listing, error)
	// Update overwrites an existing listing record.
	Update(l model.Listing) error
	// Get returns the listing and whether it exists.
	Get(id uint64) (model.Listing, bool, error)
	// Count returns the identifier of the most recently created
	// listing, or 0 when none exist.
	Count() (uint64, error)
	// List returns up to limit listings, newest first.
	List(limit int) ([]model.Listing, error)
}

// MemoryListingStore is an in-process ListingStore used by tests and
// non-durable deployments.
type MemoryListingStore struct {
	mu       sync.RWMutex
	listings map[uint64]model.Listing
	counter  uint64
}

// NewMemoryListingStore returns an empty MemoryListingStore.
func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{listings: make(map[uint64]model.Listing)}
}

func (s *MemoryListingStore) Create(l model.Listing) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	l.ID = s.counter
	s.listings[l.ID] = l
	return l, nil
}

func (s *MemoryListingStore) Update(l model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
	return nil
}

func (s *MemoryListingStore) Get(id uint64) (model.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	return l, ok, nil
}

func (s *MemoryListingStore) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counter, nil
}

func (s *MemoryListingStore) List(limit int) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Package wallet implements the payment rail: a balances ledger keyed
// by wallet address, in the smallest payment unit.  The market ledger
// consumes it through its Debit/Credit interface; accounts are
// implicit (an address with no row has balance 0, and a credit
// creates it).
package wallet

import (
	"errors"
	"sync"
)

// ErrInvalidAmount is returned when an operation names a zero amount.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrInsufficientFunds is returned when a debit or transfer exceeds
// the payer's balance.  No funds move.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Store abstracts balance persistence.  Balance reports whether the
// address has ever held funds; SetBalance upserts.
type Store interface {
	Balance(addr string) (uint64, bool, error)
	SetBalance(addr string, amount uint64) error
}

// MemoryStore is an in-process Store used by tests and non-durable
// deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]uint64)}
}

func (s *MemoryStore) Balance(addr string) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[addr]
	return b, ok, nil
}

func (s *MemoryStore) SetBalance(addr string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = amount
	return nil
}

// Ledger is the balances engine.  A single mutex serializes every
// operation so a debit-then-credit pair observed by callers is never
// interleaved with another operation on the same address.
type Ledger struct {
	mu    sync.Mutex
	store Store
}

// NewLedger constructs a Ledger over the given store.
func NewLedger(store Store) *Ledger {
	if store == nil {
		panic("nil store passed to wallet.NewLedger")
	}
	return &Ledger{store: store}
}

// Balance returns the current balance of an address (0 for unknown
// addresses).
func (l *Ledger) Balance(addr string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, _, err := l.store.Balance(addr)
	return b, err
}

// Deposit credits freshly issued funds to an address.  It is the
// faucet used to fund buyers; amount must be positive.
func (l *Ledger) Deposit(addr string, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return l.Credit(addr, amount)
}

// Debit removes amount from an address, failing with
// ErrInsufficientFunds when the balance cannot cover it.
func (l *Ledger) Debit(addr string, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, _, err := l.store.Balance(addr)
	if err != nil {
		return err
	}
	if b < amount {
		return ErrInsufficientFunds
	}
	return l.store.SetBalance(addr, b-amount)
}

// Credit adds amount to an address, creating the account if needed.
// Credits never fail for balance reasons.
func (l *Ledger) Credit(addr string, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, _, err := l.store.Balance(addr)
	if err != nil {
		return err
	}
	return l.store.SetBalance(addr, b+amount)
}

// Transfer atomically moves amount between two addresses.
func (l *Ledger) Transfer(from, to string, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fb, _, err := l.store.Balance(from)
	if err != nil {
		return err
	}
	if fb < amount {
		return ErrInsufficientFunds
	}
	tb, _, err := l.store.Balance(to)
	if err != nil {
		return err
	}
	if err := l.store.SetBalance(from, fb-amount); err != nil {
		return err
	}
	return l.store.SetBalance(to, tb+amount)
}

package repository

import (
	"database/sql"
	"errors"
)

// WalletStore persists wallet balances in MySQL.  One row per
// address; an address with no row has balance 0.
type WalletStore struct {
	db *sql.DB
}

// NewWalletStore constructs a WalletStore with the provided DB handle.
func NewWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{db: db}
}

// Balance returns the stored balance for an address and whether a row
// exists.
func (s *WalletStore) Balance(addr string) (uint64, bool, error) {
	var b uint64
	err := s.db.QueryRow(
		"SELECT balance FROM wallet_balances WHERE address=? LIMIT 1",
		addr).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

// SetBalance upserts the balance row for an address.
func (s *WalletStore) SetBalance(addr string, amount uint64) error {
	_, err := s.db.Exec(
		"INSERT INTO wallet_balances (address, balance) VALUES (?,?) ON DUPLICATE KEY UPDATE balance=VALUES(balance)",
		addr, amount)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/nft-exchange/internal/model"
)

// TokenStore persists tokens and their approvals in MySQL.  It backs
// the registry engine; all invariant checks live in the engine, this
// type only reads and writes rows.  Token identifiers start at 0, so
// the id column is assigned here with MAX(id)+1 instead of relying on
// AUTO_INCREMENT (which starts at 1).
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore constructs a TokenStore with the provided DB handle.
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// CreateToken inserts a new token row with the next sequential id and
// returns the stored record.  The id is computed and inserted inside
// one transaction so two concurrent mints cannot collide.
func (s *TokenStore) CreateToken(t model.Token) (model.Token, error) {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Token{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var next uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id)+1, 0) FROM tokens FOR UPDATE").Scan(&next); err != nil {
		return model.Token{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tokens (id, owner, uri, minted_at, updated_at) VALUES (?,?,?,?,?)",
		next, t.Owner, t.URI, t.MintedAt, t.UpdatedAt); err != nil {
		return model.Token{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Token{}, err
	}
	t.ID = next
	return t, nil
}

// GetToken fetches a token by id.  A missing row is reported through
// the bool, not as an error.
func (s *TokenStore) GetToken(id uint64) (model.Token, bool, error) {
	var t model.Token
	err := s.db.QueryRow(
		"SELECT id, owner, uri, minted_at, updated_at FROM tokens WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Owner, &t.URI, &t.MintedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Token{}, false, nil
	}
	if err != nil {
		return model.Token{}, false, err
	}
	return t, true, nil
}

// UpdateToken overwrites the mutable columns of an existing token.
func (s *TokenStore) UpdateToken(t model.Token) error {
	_, err := s.db.Exec(
		"UPDATE tokens SET owner=?, updated_at=? WHERE id=?",
		t.Owner, t.UpdatedAt, t.ID)
	return err
}

// SetApproval upserts the single approved spender for a token.  An
// empty spender deletes the row.
func (s *TokenStore) SetApproval(tokenID uint64, spender string) error {
	if spender == "" {
		_, err := s.db.Exec("DELETE FROM token_approvals WHERE token_id=?", tokenID)
		return err
	}
	_, err := s.db.Exec(
		"INSERT INTO token_approvals (token_id, spender) VALUES (?,?) ON DUPLICATE KEY UPDATE spender=VALUES(spender)",
		tokenID, spender)
	return err
}

// ApprovedSpender returns the approved spender for a token, or ""
// when none is recorded.
func (s *TokenStore) ApprovedSpender(tokenID uint64) (string, error) {
	var spender string
	err := s.db.QueryRow(
		"SELECT spender FROM token_approvals WHERE token_id=? LIMIT 1",
		tokenID).Scan(&spender)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return spender, nil
}

// SetOperator records or clears a blanket owner→operator delegation.
func (s *TokenStore) SetOperator(owner, operator string, enabled bool) error {
	if !enabled {
		_, err := s.db.Exec(
			"DELETE FROM operator_approvals WHERE owner=? AND operator=?",
			owner, operator)
		return err
	}
	_, err := s.db.Exec(
		"INSERT IGNORE INTO operator_approvals (owner, operator) VALUES (?,?)",
		owner, operator)
	return err
}

// IsOperator reports whether operator holds a blanket delegation from
// owner.
func (s *TokenStore) IsOperator(owner, operator string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM operator_approvals WHERE owner=? AND operator=? LIMIT 1",
		owner, operator).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

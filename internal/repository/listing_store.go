package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/nft-exchange/internal/model"
)

// ListingStore persists listing records in MySQL.  The listings table
// uses AUTO_INCREMENT, which hands out identifiers starting at 1; 0
// stays free as the "no listing" sentinel.  The state machine lives
// in the market engine, this type only reads and writes rows.
type ListingStore struct {
	db *sql.DB
}

// NewListingStore constructs a ListingStore with the provided DB handle.
func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// nullTime maps a zero time.Time to SQL NULL so the purchased_at and
// cancelled_at columns stay NULL until the listing actually reaches
// that state.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Create inserts a new listing row and returns it with the generated
// identifier filled in.
func (s *ListingStore) Create(l model.Listing) (model.Listing, error) {
	res, err := s.db.Exec(
		"INSERT INTO listings (registry_ref, token_id, price, status, seller, created_at) VALUES (?,?,?,?,?,?)",
		l.RegistryRef, l.TokenID, l.Price, l.Status, l.Seller, l.CreatedAt)
	if err != nil {
		return model.Listing{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Listing{}, err
	}
	l.ID = uint64(id)
	return l, nil
}

// Update overwrites the mutable columns of an existing listing.
func (s *ListingStore) Update(l model.Listing) error {
	_, err := s.db.Exec(
		"UPDATE listings SET status=?, buyer=?, purchased_at=?, cancelled_at=? WHERE id=?",
		l.Status, l.Buyer, nullTime(l.PurchasedAt), nullTime(l.CancelledAt), l.ID)
	return err
}

// Get fetches a listing by id.  A missing row is reported through the
// bool, not as an error.
func (s *ListingStore) Get(id uint64) (model.Listing, bool, error) {
	var (
		l           model.Listing
		purchasedAt sql.NullTime
		cancelledAt sql.NullTime
	)
	err := s.db.QueryRow(
		"SELECT id, registry_ref, token_id, price, status, seller, buyer, created_at, purchased_at, cancelled_at FROM listings WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.RegistryRef, &l.TokenID, &l.Price, &l.Status, &l.Seller, &l.Buyer, &l.CreatedAt, &purchasedAt, &cancelledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, false, nil
	}
	if err != nil {
		return model.Listing{}, false, err
	}
	if purchasedAt.Valid {
		l.PurchasedAt = purchasedAt.Time
	}
	if cancelledAt.Valid {
		l.CancelledAt = cancelledAt.Time
	}
	return l, true, nil
}

// Count returns the identifier of the newest listing, or 0 when the
// table is empty.
func (s *ListingStore) Count() (uint64, error) {
	var n uint64
	err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM listings").Scan(&n)
	return n, err
}

// List returns up to limit listings, newest first.  A non-positive
// limit returns every listing.
func (s *ListingStore) List(limit int) ([]model.Listing, error) {
	q := "SELECT id, registry_ref, token_id, price, status, seller, buyer, created_at, purchased_at, cancelled_at FROM listings ORDER BY id DESC"
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		var (
			l           model.Listing
			purchasedAt sql.NullTime
			cancelledAt sql.NullTime
		)
		if err := rows.Scan(&l.ID, &l.RegistryRef, &l.TokenID, &l.Price, &l.Status, &l.Seller, &l.Buyer, &l.CreatedAt, &purchasedAt, &cancelledAt); err != nil {
			return nil, err
		}
		if purchasedAt.Valid {
			l.PurchasedAt = purchasedAt.Time
		}
		if cancelledAt.Valid {
			l.CancelledAt = cancelledAt.Time
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

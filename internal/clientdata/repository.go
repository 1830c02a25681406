// Package clientdata provides persistent caching for external API client
// responses. Rows are JSON blobs with expiration timestamps: fresh rows
// serve cache-first reads, stale rows serve as a fallback when the API is
// down (stale data > no data).
package clientdata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository provides cache operations over the fund_quotes table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Store saves data for a symbol with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert.
func (r *Repository) Store(symbol string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO fund_quotes (symbol, data, expires_at) VALUES (?, ?, ?)",
		symbol, string(jsonData), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store quote for %s: %w", symbol, err)
	}
	return nil
}

// GetIfFresh returns data only if expires_at > now, nil otherwise.
// Returns nil, nil when the symbol is unknown or the row is expired; use
// Get to retrieve stale data as a fallback when API calls fail.
func (r *Repository) GetIfFresh(symbol string) (json.RawMessage, error) {
	var data string
	err := r.db.QueryRow(
		"SELECT data FROM fund_quotes WHERE symbol = ? AND expires_at > ?",
		symbol, time.Now().Unix(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fresh quote for %s: %w", symbol, err)
	}
	return json.RawMessage(data), nil
}

// Get returns data regardless of expiration. Returns nil, nil when the
// symbol is unknown.
func (r *Repository) Get(symbol string) (json.RawMessage, error) {
	var data string
	err := r.db.QueryRow(
		"SELECT data FROM fund_quotes WHERE symbol = ?",
		symbol,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote for %s: %w", symbol, err)
	}
	return json.RawMessage(data), nil
}

// PurgeOlderThan deletes rows whose expiration is further in the past than
// the given grace period, keeping recently-stale rows around as fallback
// data. Returns the number of rows removed.
func (r *Repository) PurgeOlderThan(grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace).Unix()
	res, err := r.db.Exec("DELETE FROM fund_quotes WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired quotes: %w", err)
	}
	return res.RowsAffected()
}

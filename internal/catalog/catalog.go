// Package catalog mirrors provider library/content trees into SQLite rows
// and answers listings from the cache, refreshing from the provider only
// when asked to or when nothing is cached yet. Local rows are the cache of
// record; provider state is untrusted and slow.
package catalog

import (
	"database/sql"
	"errors"

	"github.com/vmunix/binge/internal/provider"
)

// Sentinel errors for the catalog package.
var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found in catalog")

	// ErrInconsistent is returned when a cached payload fails to decode.
	// Callers treat it as a cache miss and refresh.
	ErrInconsistent = errors.New("cached payload is inconsistent")
)

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// Store provides access to connection, library, and content rows.
type Store struct {
	db *sql.DB
}

// NewStore creates a catalog store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CachedItem is the uniform wrapper a listing returns, whether it came
// from the cache or straight after a refresh.
type CachedItem struct {
	Item     provider.Item
	ParentID *string
	SortKey  int64
	Status   *string // download status; content rows only
}

// Name returns the wrapped item's display name.
func (c CachedItem) Name() string {
	switch {
	case c.Item.Library != nil:
		return c.Item.Library.Name
	case c.Item.Content != nil:
		return c.Item.Content.Name
	}
	return ""
}

// mapSQLiteError converts driver errors to catalog sentinels.
func mapSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

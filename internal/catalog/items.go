package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmunix/binge/internal/provider"
)

// UpsertLibraries bulk inserts-or-updates library rows keyed by
// (connection_id, library_id). On conflict the cached payload and parent
// are overwritten. trueParentID overrides each item's self-reported parent
// when the caller already knows the structural parent.
func (s *Store) UpsertLibraries(connectionID int64, libraries []provider.Library, trueParentID *string) error {
	if len(libraries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, lib := range libraries {
		data, err := json.Marshal(lib)
		if err != nil {
			return fmt.Errorf("encode library %s: %w", lib.ID, err)
		}
		parent := trueParentID
		if parent == nil {
			parent = lib.ParentID
		}
		_, err = tx.Exec(`
			INSERT INTO libraries (connection_id, library_id, parent_id, cached_data, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(connection_id, library_id) DO UPDATE SET
				parent_id = excluded.parent_id,
				cached_data = excluded.cached_data,
				updated_at = excluded.updated_at`,
			connectionID, lib.ID, nullableString(parent), string(data), now,
		)
		if err != nil {
			return fmt.Errorf("upsert library %s: %w", lib.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertContents bulk inserts-or-updates content rows keyed by
// (connection_id, content_id), recomputing the sort key. On conflict the
// payload, sort key, and parent are overwritten; the download status
// column is left alone.
func (s *Store) UpsertContents(connectionID int64, contents []provider.Content, trueParentID *string) error {
	if len(contents) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, content := range contents {
		data, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("encode content %s: %w", content.ID, err)
		}
		parent := trueParentID
		if parent == nil {
			parent = content.ParentID
		}
		_, err = tx.Exec(`
			INSERT INTO contents (connection_id, content_id, parent_id, sort_key, cached_data, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(connection_id, content_id) DO UPDATE SET
				parent_id = excluded.parent_id,
				sort_key = excluded.sort_key,
				cached_data = excluded.cached_data,
				updated_at = excluded.updated_at`,
			connectionID, content.ID, nullableString(parent), content.SortKey(), string(data), now,
		)
		if err != nil {
			return fmt.Errorf("upsert content %s: %w", content.ID, err)
		}
	}
	return tx.Commit()
}

// ListByParent returns the cached children of a directory: libraries
// first, then contents ordered by ascending sort key.
func (s *Store) ListByParent(connectionID int64, parentID *string) ([]CachedItem, error) {
	var out []CachedItem

	rows, err := s.db.Query(`
		SELECT parent_id, cached_data FROM libraries
		WHERE connection_id = ? AND parent_id IS ?
		ORDER BY library_id`,
		connectionID, nullableString(parentID),
	)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := s.db.Query(`
		SELECT parent_id, sort_key, status, cached_data FROM contents
		WHERE connection_id = ? AND parent_id IS ?
		ORDER BY sort_key ASC`,
		connectionID, nullableString(parentID),
	)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		item, err := scanContent(crows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, crows.Err()
}

// GetContent retrieves one cached content row.
func (s *Store) GetContent(connectionID int64, contentID string) (CachedItem, error) {
	row := s.db.QueryRow(`
		SELECT parent_id, sort_key, status, cached_data FROM contents
		WHERE connection_id = ? AND content_id = ?`,
		connectionID, contentID,
	)
	return scanContent(row)
}

// GetLibrary retrieves one cached library row.
func (s *Store) GetLibrary(connectionID int64, libraryID string) (CachedItem, error) {
	row := s.db.QueryRow(`
		SELECT parent_id, cached_data FROM libraries
		WHERE connection_id = ? AND library_id = ?`,
		connectionID, libraryID,
	)
	return scanLibrary(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLibrary(row rowScanner) (CachedItem, error) {
	var parent sql.NullString
	var data string
	if err := row.Scan(&parent, &data); err != nil {
		return CachedItem{}, mapSQLiteError(err)
	}
	var lib provider.Library
	if err := json.Unmarshal([]byte(data), &lib); err != nil {
		return CachedItem{}, fmt.Errorf("%w: library: %v", ErrInconsistent, err)
	}
	return CachedItem{Item: provider.Item{Library: &lib}, ParentID: fromNull(parent)}, nil
}

func scanContent(row rowScanner) (CachedItem, error) {
	var parent, status sql.NullString
	var sortKey int64
	var data string
	if err := row.Scan(&parent, &sortKey, &status, &data); err != nil {
		return CachedItem{}, mapSQLiteError(err)
	}
	var content provider.Content
	if err := json.Unmarshal([]byte(data), &content); err != nil {
		return CachedItem{}, fmt.Errorf("%w: content: %v", ErrInconsistent, err)
	}
	return CachedItem{
		Item:     provider.Item{Content: &content},
		ParentID: fromNull(parent),
		SortKey:  sortKey,
		Status:   fromNull(status),
	}, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

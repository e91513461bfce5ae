package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Connection is one user-established link to a configured provider. The
// identity column holds the opaque credential blob; root_cache holds the
// provider's root listing as a single JSON array, since the root has no
// stable parent key to upsert child rows under.
type Connection struct {
	ID               int64
	ProviderID       string
	Identity         json.RawMessage
	PreferredProfile *string
	RootCache        json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AddConnection inserts a connection with its credential blob.
func (s *Store) AddConnection(providerID string, identity json.RawMessage) (*Connection, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO connections (provider_id, identity, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		providerID, nullableJSON(identity), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert connection: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return &Connection{
		ID:         id,
		ProviderID: providerID,
		Identity:   identity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetConnection retrieves a connection by id.
// Returns ErrNotFound if the connection does not exist.
func (s *Store) GetConnection(id int64) (*Connection, error) {
	c := &Connection{}
	var identity, profile, rootCache sql.NullString
	err := s.db.QueryRow(`
		SELECT id, provider_id, identity, preferred_profile, root_cache, created_at, updated_at
		FROM connections WHERE id = ?`, id,
	).Scan(&c.ID, &c.ProviderID, &identity, &profile, &rootCache, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get connection %d: %w", id, mapSQLiteError(err))
	}
	if identity.Valid {
		c.Identity = json.RawMessage(identity.String)
	}
	if profile.Valid {
		c.PreferredProfile = &profile.String
	}
	if rootCache.Valid {
		c.RootCache = json.RawMessage(rootCache.String)
	}
	return c, nil
}

// ListConnections returns all connections.
func (s *Store) ListConnections() ([]*Connection, error) {
	rows, err := s.db.Query(`
		SELECT id, provider_id, identity, preferred_profile, root_cache, created_at, updated_at
		FROM connections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var out []*Connection
	for rows.Next() {
		c := &Connection{}
		var identity, profile, rootCache sql.NullString
		if err := rows.Scan(&c.ID, &c.ProviderID, &identity, &profile, &rootCache, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		if identity.Valid {
			c.Identity = json.RawMessage(identity.String)
		}
		if profile.Valid {
			c.PreferredProfile = &profile.String
		}
		if rootCache.Valid {
			c.RootCache = json.RawMessage(rootCache.String)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateIdentity replaces the connection's credential blob.
func (s *Store) UpdateIdentity(id int64, identity json.RawMessage) error {
	_, err := s.db.Exec(`
		UPDATE connections SET identity = ?, updated_at = ? WHERE id = ?`,
		nullableJSON(identity), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return nil
}

// SetPreferredProfile stores the connection's default transcode profile.
func (s *Store) SetPreferredProfile(id int64, profile *string) error {
	_, err := s.db.Exec(`
		UPDATE connections SET preferred_profile = ?, updated_at = ? WHERE id = ?`,
		nullableString(profile), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set preferred profile: %w", err)
	}
	return nil
}

// SetRootCache stores the root listing JSON array on the connection row.
func (s *Store) SetRootCache(id int64, listing json.RawMessage) error {
	_, err := s.db.Exec(`
		UPDATE connections SET root_cache = ?, updated_at = ? WHERE id = ?`,
		nullableJSON(listing), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set root cache: %w", err)
	}
	return nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

package download

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tracks download job state.
type Status string

const (
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
	StatusFailed      Status = "failed"
)

// ErrNotFound is returned when a download record does not exist.
var ErrNotFound = errors.New("download not found")

// Download is one acquisition job for a content item.
type Download struct {
	ID           string
	ConnectionID int64
	ContentID    string
	Status       Status
	StatusInfo   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists download records.
type Store struct {
	db *sql.DB
}

// NewStore creates a download store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a download row and flips the content's download status
// in one transaction, so a listing never shows a downloading item
// without a job or vice versa.
func (s *Store) Create(connectionID int64, contentID string) (*Download, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	d := &Download{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		ContentID:    contentID,
		Status:       StatusDownloading,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = tx.Exec(`
		INSERT INTO downloads (id, connection_id, content_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.ConnectionID, d.ContentID, d.Status, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert download: %w", err)
	}
	_, err = tx.Exec(`
		UPDATE contents SET status = ?, status_updated_at = ?
		WHERE connection_id = ? AND content_id = ?`,
		StatusDownloading, now, connectionID, contentID,
	)
	if err != nil {
		return nil, fmt.Errorf("update content status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return d, nil
}

// SetStatus moves a download to a terminal state, mirroring it onto the
// content row in the same transaction.
func (s *Store) SetStatus(id string, status Status, info *string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	result, err := tx.Exec(`
		UPDATE downloads SET status = ?, status_info = ?, updated_at = ?
		WHERE id = ?`,
		status, nullable(info), now, id,
	)
	if err != nil {
		return fmt.Errorf("update download %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update download %s: %w", id, ErrNotFound)
	}
	_, err = tx.Exec(`
		UPDATE contents SET status = ?, status_updated_at = ?
		WHERE (connection_id, content_id) IN
			(SELECT connection_id, content_id FROM downloads WHERE id = ?)`,
		status, now, id,
	)
	if err != nil {
		return fmt.Errorf("update content status: %w", err)
	}
	return tx.Commit()
}

// Get retrieves a download by id.
func (s *Store) Get(id string) (*Download, error) {
	d := &Download{}
	var info sql.NullString
	err := s.db.QueryRow(`
		SELECT id, connection_id, content_id, status, status_info, created_at, updated_at
		FROM downloads WHERE id = ?`, id,
	).Scan(&d.ID, &d.ConnectionID, &d.ContentID, &d.Status, &info, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get download %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get download %s: %w", id, err)
	}
	if info.Valid {
		d.StatusInfo = &info.String
	}
	return d, nil
}

// ListByConnection returns a connection's downloads, newest first.
func (s *Store) ListByConnection(connectionID int64) ([]*Download, error) {
	rows, err := s.db.Query(`
		SELECT id, connection_id, content_id, status, status_info, created_at, updated_at
		FROM downloads WHERE connection_id = ?
		ORDER BY created_at DESC`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	var out []*Download
	for rows.Next() {
		d := &Download{}
		var info sql.NullString
		if err := rows.Scan(&d.ID, &d.ConnectionID, &d.ContentID, &d.Status, &info, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		if info.Valid {
			d.StatusInfo = &info.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

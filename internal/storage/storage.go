// Package storage abstracts the blob store holding downloaded playlists
// and segments. Keys are slash-separated relative paths.
package storage

import (
	"context"
	"errors"
)

// Sentinel errors for the storage package.
var (
	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidKey is returned when a key escapes the store root.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Blob is a flat key/value store for playlist and segment payloads.
type Blob interface {
	// Upload writes data under key, overwriting any existing blob.
	Upload(ctx context.Context, key string, data []byte) error

	// Download reads the blob stored under key.
	// Returns ErrNotFound if no blob exists.
	Download(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/binge/internal/provider"
)

// Resolver implements the sync algorithm: serve listings from the cache,
// fall back to the provider, persist what came back, then re-read the
// cache so the caller sees exactly what is now persisted. A cache hit and
// a refreshed miss are indistinguishable in shape.
type Resolver struct {
	store *Store
	log   *slog.Logger
}

// NewResolver creates a resolver over the store.
func NewResolver(store *Store, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, log: log.With("component", "resolver")}
}

// Resolve lists the children of parentID (the provider root when nil) for
// a connection. Unless force is set, a cached non-empty listing wins and
// the provider is never called. Concurrent resolves of the same subtree
// may both refresh; upserts are idempotent so last writer wins.
func (r *Resolver) Resolve(ctx context.Context, conn *Connection, backend provider.MediaProvider,
	cred provider.Credential, parentID *string, force bool) ([]CachedItem, error) {

	if parentID == nil {
		return r.resolveRoot(ctx, conn, backend, cred, force)
	}

	if !force {
		cached, err := r.store.ListByParent(conn.ID, parentID)
		switch {
		case errors.Is(err, ErrInconsistent):
			r.log.Warn("cached listing undecodable, refreshing", "connection_id", conn.ID, "parent_id", *parentID)
		case err != nil:
			return nil, err
		case len(cached) > 0:
			return cached, nil
		}
	}

	parent := provider.LibraryRef(*parentID)
	items, err := backend.Items(ctx, cred, &parent)
	if err != nil {
		return nil, err
	}

	var libraries []provider.Library
	var contents []provider.Content
	for _, item := range items {
		switch {
		case item.Library != nil:
			libraries = append(libraries, *item.Library)
		case item.Content != nil:
			contents = append(contents, *item.Content)
		}
	}
	if err := r.store.UpsertLibraries(conn.ID, libraries, parentID); err != nil {
		return nil, err
	}
	if err := r.store.UpsertContents(conn.ID, contents, parentID); err != nil {
		return nil, err
	}

	r.log.Debug("subtree refreshed",
		"connection_id", conn.ID, "parent_id", *parentID,
		"libraries", len(libraries), "contents", len(contents))

	return r.store.ListByParent(conn.ID, parentID)
}

// resolveRoot serves the provider root. The listing is cached as one JSON
// array on the connection row rather than as child rows, since the root
// has no stable parent key to upsert under.
func (r *Resolver) resolveRoot(ctx context.Context, conn *Connection, backend provider.MediaProvider,
	cred provider.Credential, force bool) ([]CachedItem, error) {

	if !force && len(conn.RootCache) > 0 {
		var items []provider.Item
		if err := json.Unmarshal(conn.RootCache, &items); err != nil {
			r.log.Warn("root cache undecodable, refreshing", "connection_id", conn.ID, "error", err)
		} else if len(items) > 0 {
			return wrapItems(items), nil
		}
	}

	items, err := backend.Items(ctx, cred, nil)
	if err != nil {
		return nil, err
	}
	listing, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode root listing: %w", err)
	}
	if err := r.store.SetRootCache(conn.ID, listing); err != nil {
		return nil, err
	}
	conn.RootCache = listing

	r.log.Debug("root refreshed", "connection_id", conn.ID, "items", len(items))
	return wrapItems(items), nil
}

// ResolveItem serves a single item, refreshing from the provider when the
// cache has nothing usable or force is set. The refreshed row keeps the
// item's self-reported parent.
func (r *Resolver) ResolveItem(ctx context.Context, conn *Connection, backend provider.MediaProvider,
	cred provider.Credential, id string, force bool) (CachedItem, error) {

	if !force {
		cached, err := r.store.GetContent(conn.ID, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInconsistent) {
			return CachedItem{}, err
		}
		cached, err = r.store.GetLibrary(conn.ID, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInconsistent) {
			return CachedItem{}, err
		}
	}

	item, err := backend.Item(ctx, cred, id)
	if err != nil {
		return CachedItem{}, err
	}
	switch {
	case item.Library != nil:
		if err := r.store.UpsertLibraries(conn.ID, []provider.Library{*item.Library}, nil); err != nil {
			return CachedItem{}, err
		}
		return r.store.GetLibrary(conn.ID, id)
	case item.Content != nil:
		if err := r.store.UpsertContents(conn.ID, []provider.Content{*item.Content}, nil); err != nil {
			return CachedItem{}, err
		}
		return r.store.GetContent(conn.ID, id)
	}
	return CachedItem{}, fmt.Errorf("provider returned empty item for %s", id)
}

func wrapItems(items []provider.Item) []CachedItem {
	out := make([]CachedItem, len(items))
	for i, item := range items {
		out[i] = CachedItem{Item: item}
		if item.Content != nil {
			out[i].SortKey = item.Content.SortKey()
		}
	}
	return out
}

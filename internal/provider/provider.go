package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grafov/m3u8"
)

// Manifest is a transcoded stream: the master playlist plus each variant's
// media playlist keyed by variant name ("720p", "unknown"). It is sourced
// from the provider and mutated locally before persistence.
type Manifest struct {
	Master *m3u8.MasterPlaylist
	Media  map[string]*m3u8.MediaPlaylist
}

// MediaProvider is the capability interface a media server backend
// implements. Every call takes the credential explicitly; there is no
// implicit session state.
type MediaProvider interface {
	// Setup advances the handshake state machine by one step. A nil prev
	// starts a fresh handshake.
	Setup(ctx context.Context, prev *Credential) (Credential, error)

	// Test performs a cheap authenticated call proving the credential is
	// still valid, with no side effects.
	Test(ctx context.Context, cred Credential) error

	// Items lists the children of parent, or the root libraries when
	// parent is nil. Ordering is delegated to the provider.
	Items(ctx context.Context, cred Credential, parent *Library) ([]Item, error)

	// Item fetches a single item by id.
	Item(ctx context.Context, cred Credential, id string) (Item, error)

	// Transcode requests an adaptive-bitrate transcode of content with the
	// given playback profile and preferred streams, and returns the
	// locally rewritten manifest. No segments are downloaded.
	Transcode(ctx context.Context, cred Credential, content *Content, profile json.RawMessage, preferred []MediaStream) (*Manifest, error)
}

// Profile is a named provider-specific playback settings blob.
type Profile struct {
	Name             string
	Description      string
	PlaybackSettings json.RawMessage
}

// Descriptor is the static configuration of one provider instance.
type Descriptor struct {
	ID                string
	Name              string
	URL               string
	Type              string
	Profiles          []Profile
	ExcludeLibraryIDs []string
}

// SelectProfile resolves the playback settings to use: the explicitly
// requested profile wins, then the connection's preferred profile, then
// the first configured one.
func (d Descriptor) SelectProfile(requested, preferred *string) (json.RawMessage, error) {
	if len(d.Profiles) == 0 {
		return nil, fmt.Errorf("provider %s has no profiles configured", d.ID)
	}
	name := d.Profiles[0].Name
	if preferred != nil && *preferred != "" {
		name = *preferred
	}
	if requested != nil && *requested != "" {
		name = *requested
	}
	for _, p := range d.Profiles {
		if p.Name == name {
			return p.PlaybackSettings, nil
		}
	}
	return nil, fmt.Errorf("unknown profile %q for provider %s", name, d.ID)
}

// Entry pairs a descriptor with its live backend.
type Entry struct {
	Descriptor
	Provider MediaProvider
}

// Factory constructs a backend for a descriptor, dispatching on
// Descriptor.Type.
type Factory func(Descriptor) (MediaProvider, error)

// Registry holds the configured provider instances. It is built once at
// startup and injected; there are no process-wide singletons.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry builds a registry from descriptors, rejecting duplicate ids.
func NewRegistry(descriptors []Descriptor, factory Factory) (*Registry, error) {
	entries := make(map[string]*Entry, len(descriptors))
	for _, d := range descriptors {
		if _, ok := entries[d.ID]; ok {
			return nil, fmt.Errorf("duplicate media provider id: %s", d.ID)
		}
		backend, err := factory(d)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", d.ID, err)
		}
		entries[d.ID] = &Entry{Descriptor: d, Provider: backend}
	}
	return &Registry{entries: entries}, nil
}

// Get returns the entry for id, or nil.
func (r *Registry) Get(id string) *Entry {
	return r.entries[id]
}

// List returns all entries.
func (r *Registry) List() []*Entry {
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Package provider defines the provider-neutral media model and the
// capability interface each media server backend implements.
package provider

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Library kinds. The wire tag matches the cached JSON payloads.
const (
	LibraryCollection = "Collection"
	LibraryFolder     = "Folder"
	LibraryShow       = "Show"
	LibrarySeason     = "Season"
	LibraryOther      = "Other"
)

// Content kinds.
const (
	ContentMovie   = "Movie"
	ContentEpisode = "Episode"
	ContentOther   = "Other"
)

// Media stream kinds.
const (
	StreamVideo    = "Video"
	StreamAudio    = "Audio"
	StreamSubtitle = "Subtitle"
)

// LibraryKind is a tagged variant: Season carries a season number,
// Other carries the provider's own type name.
type LibraryKind struct {
	Type   string  `json:"type"`
	Season int     `json:"season,omitempty"`
	Name   *string `json:"name,omitempty"`
}

// ContentKind is a tagged variant: Episode carries season/episode numbers,
// Other carries the provider's own type name.
type ContentKind struct {
	Type    string  `json:"type"`
	Season  *int    `json:"season,omitempty"`
	Episode int     `json:"episode,omitempty"`
	Name    *string `json:"name,omitempty"`
}

// Library is a browsable container in the provider's tree. Libraries are
// created by mirroring and never authored locally.
type Library struct {
	ID          string      `json:"id"`
	ParentID    *string     `json:"parent_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	IconURL     *string     `json:"icon_url"`
	Kind        LibraryKind `json:"kind"`
}

// LibraryRef builds a minimal Library carrying only an id, for listing the
// children of a directory known by id alone.
func LibraryRef(id string) Library {
	return Library{ID: id, Name: "From Path", Kind: LibraryKind{Type: LibraryCollection}}
}

// MediaStream describes one stream of a content item. Index is the
// provider's stream index and is passed back verbatim when transcoding.
type MediaStream struct {
	Type     string  `json:"type"`
	Index    int     `json:"index"`
	Codec    string  `json:"codec"`
	Language *string `json:"language,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// LanguageName renders the stream's language tag as an English display name
// ("ger" -> "German"). Falls back to the raw tag when it cannot be parsed.
func (s MediaStream) LanguageName() string {
	if s.Language == nil || *s.Language == "" {
		return ""
	}
	tag, err := language.Parse(*s.Language)
	if err != nil {
		return *s.Language
	}
	return display.English.Languages().Name(tag)
}

// Content is a playable item.
type Content struct {
	ID           string        `json:"id"`
	ParentID     *string       `json:"parent_id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	IconURL      *string       `json:"icon_url"`
	MediaStreams []MediaStream `json:"media_streams"`
	Kind         ContentKind   `json:"kind"`
}

// SortKey derives the ordering integer used for mirrored listings.
// Episodes sort by air order (season*10000 + episode, absent season counts
// as 0). Everything else gets a stable FNV-1a hash of (parent_id, name):
// not human-meaningful, but deterministic across processes so re-syncs
// are idempotent.
func (c Content) SortKey() int64 {
	if c.Kind.Type == ContentEpisode {
		season := 0
		if c.Kind.Season != nil {
			season = *c.Kind.Season
		}
		return int64(season)*10000 + int64(c.Kind.Episode)
	}
	h := fnv.New64a()
	if c.ParentID != nil {
		_, _ = h.Write([]byte(*c.ParentID))
	}
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(c.Name))
	return int64(h.Sum64())
}

// PreferredStreams scans the content's streams for the first audio and
// subtitle streams matching the requested indices. A nil index skips that
// stream type.
func (c Content) PreferredStreams(audio, subtitle *int) []MediaStream {
	var out []MediaStream
	for _, s := range c.MediaStreams {
		switch {
		case s.Type == StreamAudio && audio != nil && s.Index == *audio:
			out = append(out, s)
		case s.Type == StreamSubtitle && subtitle != nil && s.Index == *subtitle:
			out = append(out, s)
		}
	}
	return out
}

// Item is the polymorphic result of a directory listing: either a Library
// or a Content. Exactly one of the two fields is set.
type Item struct {
	Library *Library
	Content *Content
}

// ID returns the wrapped item's id.
func (i Item) ID() string {
	if i.Library != nil {
		return i.Library.ID
	}
	if i.Content != nil {
		return i.Content.ID
	}
	return ""
}

// itemTag mirrors the "type" discriminator used on the wire.
type itemTag struct {
	Type string `json:"type"`
}

// MarshalJSON emits the item internally tagged, with the wrapped struct's
// fields inlined next to "type".
func (i Item) MarshalJSON() ([]byte, error) {
	switch {
	case i.Library != nil:
		return marshalTagged("Library", i.Library)
	case i.Content != nil:
		return marshalTagged("Content", i.Content)
	}
	return nil, fmt.Errorf("item has no value")
}

// UnmarshalJSON dispatches on the "type" discriminator.
func (i *Item) UnmarshalJSON(data []byte) error {
	var tag itemTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case "Library":
		i.Library = &Library{}
		return json.Unmarshal(data, i.Library)
	case "Content":
		i.Content = &Content{}
		return json.Unmarshal(data, i.Content)
	}
	return fmt.Errorf("unknown item type %q", tag.Type)
}

func marshalTagged(tag string, v any) ([]byte, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(inner, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(tag)
	return json.Marshal(fields)
}

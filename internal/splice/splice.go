// Package splice joins previously downloaded items into one continuous
// playlist per variant, referencing the stored segments in place.
package splice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/grafov/m3u8"

	"github.com/vmunix/binge/internal/hls"
	"github.com/vmunix/binge/internal/storage"
)

// Sentinel errors for the splice package.
var (
	// ErrItemNotDownloaded is returned when a referenced item has no
	// stored master playlist.
	ErrItemNotDownloaded = errors.New("item not downloaded")

	// ErrVariantMismatch is returned when referenced items do not share
	// the same variant set.
	ErrVariantMismatch = errors.New("variant sets do not match")
)

// Ref identifies one downloaded item to splice.
type Ref struct {
	ConnectionID int64  `json:"connection_id"`
	ContentID    string `json:"content_id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%d/%s", r.ConnectionID, r.ContentID)
}

// Splicer assembles spliced playlists from stored single-item output.
type Splicer struct {
	blobs storage.Blob
	log   *slog.Logger
}

// NewSplicer creates a splicer over the blob store.
func NewSplicer(blobs storage.Blob, log *slog.Logger) *Splicer {
	if log == nil {
		log = slog.Default()
	}
	return &Splicer{blobs: blobs, log: log.With("component", "splice")}
}

// item is one ref's loaded playlists.
type item struct {
	ref      Ref
	master   *m3u8.MasterPlaylist
	variants map[string]*m3u8.MediaPlaylist
}

// Splice joins the refs, in order, into playlist/<name>/. All refs must
// be fully downloaded and share one variant set; everything is validated
// and assembled in memory before the first write, so a failed splice
// leaves no partial output.
func (s *Splicer) Splice(ctx context.Context, name string, refs []Ref) error {
	if len(refs) == 0 {
		return fmt.Errorf("no items to splice")
	}

	items := make([]item, 0, len(refs))
	for _, ref := range refs {
		it, err := s.load(ctx, ref)
		if err != nil {
			return err
		}
		items = append(items, it)
	}

	names := variantNames(items[0])
	for _, it := range items[1:] {
		if !sameVariants(names, variantNames(it)) {
			return fmt.Errorf("%w: %s has %v, %s has %v",
				ErrVariantMismatch, items[0].ref, names, it.ref, variantNames(it))
		}
	}

	joined := make(map[string]*m3u8.MediaPlaylist, len(names))
	for _, variant := range names {
		media, err := joinVariant(variant, items)
		if err != nil {
			return err
		}
		joined[variant] = media
	}

	prefix := "playlist/" + name + "/"
	if err := s.blobs.Upload(ctx, prefix+"main.m3u8", items[0].master.Encode().Bytes()); err != nil {
		return fmt.Errorf("persist spliced master: %w", err)
	}
	for _, variant := range names {
		if err := s.blobs.Upload(ctx, prefix+variant+".m3u8", joined[variant].Encode().Bytes()); err != nil {
			return fmt.Errorf("persist spliced variant %s: %w", variant, err)
		}
	}

	s.log.Info("playlist spliced", "name", name, "items", len(items), "variants", len(names))
	return nil
}

// load fetches and decodes one ref's master and media playlists.
func (s *Splicer) load(ctx context.Context, ref Ref) (item, error) {
	prefix := fmt.Sprintf("single/%d/%s/", ref.ConnectionID, ref.ContentID)

	raw, err := s.blobs.Download(ctx, prefix+"main.m3u8")
	if errors.Is(err, storage.ErrNotFound) {
		return item{}, fmt.Errorf("%w: %s", ErrItemNotDownloaded, ref)
	}
	if err != nil {
		return item{}, fmt.Errorf("load master for %s: %w", ref, err)
	}
	master, err := hls.DecodeMaster(raw)
	if err != nil {
		return item{}, fmt.Errorf("master for %s: %w", ref, err)
	}

	it := item{ref: ref, master: master, variants: make(map[string]*m3u8.MediaPlaylist)}
	for _, variant := range master.Variants {
		vname := hls.VariantName(variant)
		raw, err := s.blobs.Download(ctx, prefix+vname+".m3u8")
		if errors.Is(err, storage.ErrNotFound) {
			return item{}, fmt.Errorf("%w: %s missing variant %s", ErrItemNotDownloaded, ref, vname)
		}
		if err != nil {
			return item{}, fmt.Errorf("load variant %s for %s: %w", vname, ref, err)
		}
		media, err := hls.DecodeMedia(raw)
		if err != nil {
			return item{}, fmt.Errorf("variant %s for %s: %w", vname, ref, err)
		}
		it.variants[vname] = media
	}
	return it, nil
}

// joinVariant concatenates one variant across the items. Segment URIs
// are rewritten relative to the spliced output directory; the first
// segment of every item after the first is marked discontinuous.
func joinVariant(variant string, items []item) (*m3u8.MediaPlaylist, error) {
	var segments []*m3u8.MediaSegment
	for i, it := range items {
		media := it.variants[variant]
		prefix := fmt.Sprintf("../../single/%d/%s/", it.ref.ConnectionID, it.ref.ContentID)
		for k, src := range hls.Segments(media) {
			seg := *src
			seg.URI = prefix + src.URI
			seg.Discontinuity = i > 0 && k == 0
			segments = append(segments, &seg)
		}
	}
	media, err := hls.BuildMedia(segments)
	if err != nil {
		return nil, fmt.Errorf("join variant %s: %w", variant, err)
	}
	return media, nil
}

func variantNames(it item) []string {
	names := make([]string, 0, len(it.variants))
	for name := range it.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sameVariants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

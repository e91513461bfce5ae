// Package hls wraps playlist parsing and the naming conventions shared by
// the provider client, the downloader, and the splicer.
package hls

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/grafov/m3u8"
)

// Sentinel errors for playlist handling.
var (
	// ErrNotMaster is returned when a master playlist was expected.
	ErrNotMaster = errors.New("not a master playlist")

	// ErrNotMedia is returned when a media playlist was expected.
	ErrNotMedia = errors.New("not a media playlist")
)

// DecodeMaster parses a master playlist.
func DecodeMaster(data []byte) (*m3u8.MasterPlaylist, error) {
	p, kind, err := m3u8.DecodeFrom(bytes.NewReader(data), true)
	if err != nil {
		return nil, fmt.Errorf("parse master playlist: %w", err)
	}
	if kind != m3u8.MASTER {
		return nil, ErrNotMaster
	}
	return p.(*m3u8.MasterPlaylist), nil
}

// DecodeMedia parses a media playlist.
func DecodeMedia(data []byte) (*m3u8.MediaPlaylist, error) {
	p, kind, err := m3u8.DecodeFrom(bytes.NewReader(data), true)
	if err != nil {
		return nil, fmt.Errorf("parse media playlist: %w", err)
	}
	if kind != m3u8.MEDIA {
		return nil, ErrNotMedia
	}
	return p.(*m3u8.MediaPlaylist), nil
}

// VariantName derives the local name of a variant from its reported
// resolution: "1920x1080" becomes "1080p". Variants without a resolution
// are named "unknown".
func VariantName(v *m3u8.Variant) string {
	res := v.Resolution
	if res == "" {
		return "unknown"
	}
	if _, h, ok := strings.Cut(res, "x"); ok && h != "" {
		return h + "p"
	}
	return res + "p"
}

// SegmentFileName extracts the original file name from a segment URI,
// dropping any query string.
func SegmentFileName(uri string) string {
	if u, err := url.Parse(uri); err == nil {
		return path.Base(u.Path)
	}
	return path.Base(uri)
}

// Segments returns the populated segment slots of a media playlist.
func Segments(p *m3u8.MediaPlaylist) []*m3u8.MediaSegment {
	out := make([]*m3u8.MediaSegment, 0, p.Count())
	for _, s := range p.Segments {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// BuildMedia assembles a closed media playlist from segments.
func BuildMedia(segments []*m3u8.MediaSegment) (*m3u8.MediaPlaylist, error) {
	p, err := m3u8.NewMediaPlaylist(0, uint(len(segments)))
	if err != nil {
		return nil, fmt.Errorf("new media playlist: %w", err)
	}
	var target float64
	for _, s := range segments {
		if err := p.AppendSegment(s); err != nil {
			return nil, fmt.Errorf("append segment: %w", err)
		}
		if s.Duration > target {
			target = s.Duration
		}
	}
	p.TargetDuration = target
	p.Close()
	return p, nil
}

// ContentType negotiates the response content type for a blob path.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".m3u8"):
		return "application/vnd.apple.mpegurl"
	case strings.HasSuffix(name, ".ts"):
		return "video/mp2t"
	default:
		return "application/octet-stream"
	}
}

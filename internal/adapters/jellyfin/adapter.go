// Package jellyfin adapts the Jellyfin API client to the MediaProvider
// capability interface.
package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/grafov/m3u8"

	"github.com/vmunix/binge/internal/hls"
	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/pkg/jellyfin"
)

// Adapter implements provider.MediaProvider on top of a Jellyfin server.
type Adapter struct {
	client  *jellyfin.Client
	exclude map[string]struct{}
	log     *slog.Logger
}

// New creates an adapter. Libraries in excludeIDs are dropped from root
// listings.
func New(client *jellyfin.Client, excludeIDs []string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	exclude := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = struct{}{}
	}
	return &Adapter{
		client:  client,
		exclude: exclude,
		log:     log.With("component", "jellyfin-adapter"),
	}
}

// Setup advances the handshake one step.
//
//	nil      -> qc_poll (a fresh secret/code pair)
//	qc_poll  -> qc_poll (approval pending), auth (approved), or
//	            failed("Code Expired") on a 4xx poll
//	auth     -> auth (resumed as-is, no network call)
//	failed   -> failed (absorbing)
func (a *Adapter) Setup(ctx context.Context, prev *provider.Credential) (provider.Credential, error) {
	if prev == nil {
		qc, err := a.client.QuickConnectInitiate(ctx)
		if err != nil {
			return provider.Credential{}, unavailable(err)
		}
		return provider.QcPoll(qc.Secret, qc.Code), nil
	}

	switch prev.Type {
	case provider.StateFailed, provider.StateAuth:
		return *prev, nil
	case provider.StateQcPoll:
		approved, err := a.client.QuickConnectPoll(ctx, prev.Secret)
		if err != nil {
			if jellyfin.IsClientError(err) {
				return provider.Failed("Code Expired"), nil
			}
			return provider.Credential{}, err
		}
		if !approved {
			return *prev, nil
		}
		session, err := a.client.QuickConnectAuthenticate(ctx, prev.Secret)
		if err != nil {
			return provider.Credential{}, err
		}
		return provider.Auth(session.UserID, session.Token), nil
	}
	return provider.Credential{}, fmt.Errorf("unknown credential state %q", prev.Type)
}

// Test proves the credential is still valid without side effects.
func (a *Adapter) Test(ctx context.Context, cred provider.Credential) error {
	session, err := session(cred)
	if err != nil {
		return err
	}
	_, err = a.client.WhoAmI(ctx, session)
	return err
}

// Items lists the children of parent, or the filtered root libraries when
// parent is nil.
func (a *Adapter) Items(ctx context.Context, cred provider.Credential, parent *provider.Library) ([]provider.Item, error) {
	session, err := session(cred)
	if err != nil {
		return nil, err
	}

	var dtos []jellyfin.Item
	if parent == nil {
		dtos, err = a.client.Views(ctx, session)
	} else {
		dtos, err = a.client.Items(ctx, session, parent.ID)
	}
	if err != nil {
		return nil, err
	}

	items := make([]provider.Item, 0, len(dtos))
	for _, dto := range dtos {
		item := toItem(dto, parent == nil)
		if item.Library != nil {
			if _, skip := a.exclude[item.Library.ID]; skip {
				continue
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Item fetches a single item by id.
func (a *Adapter) Item(ctx context.Context, cred provider.Credential, id string) (provider.Item, error) {
	session, err := session(cred)
	if err != nil {
		return provider.Item{}, err
	}
	dto, err := a.client.Item(ctx, session, id)
	if err != nil {
		return provider.Item{}, err
	}
	return toItem(*dto, false), nil
}

// Transcode requests playback info, fetches the master playlist and every
// variant's media playlist, renames variants to "<height>p.m3u8", and
// rewrites segment URIs to absolute server URLs. Segments themselves are
// not downloaded here.
func (a *Adapter) Transcode(ctx context.Context, cred provider.Credential, content *provider.Content,
	profile json.RawMessage, preferred []provider.MediaStream) (*provider.Manifest, error) {

	session, err := session(cred)
	if err != nil {
		return nil, err
	}

	var audioIndex, subtitleIndex *int
	for _, s := range preferred {
		switch s.Type {
		case provider.StreamAudio:
			if audioIndex == nil {
				idx := s.Index
				audioIndex = &idx
			}
		case provider.StreamSubtitle:
			if subtitleIndex == nil {
				idx := s.Index
				subtitleIndex = &idx
			}
		}
	}

	manifestURL, err := a.client.PlaybackInfo(ctx, session, content.ID, profile, audioIndex, subtitleIndex)
	if err != nil {
		if errors.Is(err, jellyfin.ErrNoTranscodingURL) {
			return nil, provider.ErrManifestIncomplete
		}
		return nil, err
	}

	raw, err := a.client.Fetch(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch master playlist: %w", err)
	}
	master, err := hls.DecodeMaster(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrManifestCorrupt, err)
	}

	manifest := &provider.Manifest{Master: master, Media: make(map[string]*m3u8.MediaPlaylist)}
	for _, variant := range master.Variants {
		if variant == nil {
			continue
		}
		raw, err := a.client.Fetch(ctx, a.client.VideoURL(content.ID, variant.URI))
		if err != nil {
			return nil, fmt.Errorf("fetch media playlist %s: %w", variant.URI, err)
		}
		playlist, err := hls.DecodeMedia(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provider.ErrManifestCorrupt, err)
		}

		name := hls.VariantName(variant)
		variant.URI = name + ".m3u8"
		for _, segment := range hls.Segments(playlist) {
			segment.URI = a.client.VideoURL(content.ID, segment.URI)
		}
		manifest.Media[name] = playlist
	}

	a.log.Info("transcode manifest acquired",
		"content_id", content.ID, "variants", len(manifest.Media))
	return manifest, nil
}

func session(cred provider.Credential) (jellyfin.Session, error) {
	id, token, err := cred.Session()
	if err != nil {
		return jellyfin.Session{}, err
	}
	return jellyfin.Session{UserID: id, Token: token}, nil
}

// unavailable tags transport-level failures; server responses pass through.
func unavailable(err error) error {
	var apiErr *jellyfin.APIError
	if errors.Is(err, jellyfin.ErrUnauthorized) || errors.As(err, &apiErr) {
		return err
	}
	return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
}

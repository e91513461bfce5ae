package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/pkg/jellyfin"
)

func TestAdapter_Setup_Initiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/QuickConnect/Initiate", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"Secret": "s3cret", "Code": "ABC123"})
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	cred, err := adapter.Setup(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, provider.StateQcPoll, cred.Type)
	assert.Equal(t, "s3cret", cred.Secret)
	assert.Equal(t, "ABC123", cred.Code)
}

func TestAdapter_Setup_PollPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/QuickConnect/Connect", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"Authenticated": false})
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	prev := provider.QcPoll("s3cret", "ABC123")
	cred, err := adapter.Setup(context.Background(), &prev)
	require.NoError(t, err)
	assert.Equal(t, prev, cred)
}

func TestAdapter_Setup_PollApproved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/QuickConnect/Connect":
			_ = json.NewEncoder(w).Encode(map[string]any{"Authenticated": true})
		case "/Users/AuthenticateWithQuickConnect":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"User":        map[string]any{"Id": "u1", "Name": "alice"},
				"AccessToken": "tok",
			})
		case "/Sessions/Capabilities/Full":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	prev := provider.QcPoll("s3cret", "ABC123")
	cred, err := adapter.Setup(context.Background(), &prev)
	require.NoError(t, err)
	assert.Equal(t, provider.StateAuth, cred.Type)
	assert.Equal(t, "u1", cred.ID)
	assert.Equal(t, "tok", cred.Token)
}

func TestAdapter_Setup_CodeExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	prev := provider.QcPoll("stale", "OLD123")
	cred, err := adapter.Setup(context.Background(), &prev)
	require.NoError(t, err)
	assert.Equal(t, provider.StateFailed, cred.Type)
	assert.Equal(t, "Code Expired", cred.Cause)
}

func TestAdapter_Setup_TerminalStatesPassThrough(t *testing.T) {
	// No server: terminal states must not touch the network.
	adapter := New(jellyfin.New("http://127.0.0.1:0"), nil, nil)

	auth := provider.Auth("u1", "tok")
	cred, err := adapter.Setup(context.Background(), &auth)
	require.NoError(t, err)
	assert.Equal(t, auth, cred)

	failed := provider.Failed("Code Expired")
	cred, err = adapter.Setup(context.Background(), &failed)
	require.NoError(t, err)
	assert.Equal(t, failed, cred)
}

func TestAdapter_Setup_UnknownState(t *testing.T) {
	adapter := New(jellyfin.New("http://127.0.0.1:0"), nil, nil)
	bogus := provider.Credential{Type: "mystery"}
	_, err := adapter.Setup(context.Background(), &bogus)
	assert.Error(t, err)
}

func TestAdapter_Test_RequiresAuth(t *testing.T) {
	adapter := New(jellyfin.New("http://127.0.0.1:0"), nil, nil)
	err := adapter.Test(context.Background(), provider.QcPoll("s", "C"))
	assert.ErrorIs(t, err, provider.ErrNotAuthenticated)
}

func TestAdapter_Items_FiltersExcluded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Users/u1/Views", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{
				{"Id": "lib1", "Name": "Movies", "Type": "CollectionFolder"},
				{"Id": "lib2", "Name": "Home Videos", "Type": "CollectionFolder"},
			},
		})
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), []string{"lib2"}, nil)
	items, err := adapter.Items(context.Background(), provider.Auth("u1", "tok"), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Library)
	assert.Equal(t, "lib1", items[0].Library.ID)
}

func TestAdapter_Items_RootIsAlwaysLibraries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// IsFolder omitted; root views are containers regardless.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{{"Id": "lib1", "Name": "Movies", "Type": "CollectionFolder"}},
		})
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	items, err := adapter.Items(context.Background(), provider.Auth("u1", "tok"), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].Library)
}

const testMaster = `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=2000000,RESOLUTION=1280x720
hls1/main.m3u8
`

const testMedia = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:6.000,
seg0.ts?api_key=k
#EXTINF:4.500,
seg1.ts?api_key=k
#EXT-X-ENDLIST
`

func TestAdapter_Transcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Items/m1/PlaybackInfo":
			assert.Equal(t, "2", r.URL.Query().Get("AudioStreamIndex"))
			assert.Equal(t, "5", r.URL.Query().Get("SubtitleStreamIndex"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"MediaSources": []map[string]any{{"TranscodingUrl": "/videos/m1/master.m3u8?api_key=k"}},
			})
		case "/videos/m1/master.m3u8":
			fmt.Fprint(w, testMaster)
		case "/videos/m1/hls1/main.m3u8":
			fmt.Fprint(w, testMedia)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	content := &provider.Content{ID: "m1", Name: "Heat", Kind: provider.ContentKind{Type: provider.ContentMovie}}
	streams := []provider.MediaStream{
		{Type: provider.StreamVideo, Index: 0, Codec: "h264"},
		{Type: provider.StreamAudio, Index: 2, Codec: "aac"},
		{Type: provider.StreamSubtitle, Index: 5, Codec: "srt"},
	}

	manifest, err := adapter.Transcode(context.Background(), provider.Auth("u1", "tok"), content,
		json.RawMessage(`{"DeviceProfile":{}}`), streams)
	require.NoError(t, err)

	// The variant is renamed after its resolution and its media playlist is
	// keyed under the same name.
	require.Len(t, manifest.Master.Variants, 1)
	assert.Equal(t, "720p.m3u8", manifest.Master.Variants[0].URI)
	media, ok := manifest.Media["720p"]
	require.True(t, ok)

	// Segment URIs point back at the origin server.
	var uris []string
	for _, seg := range media.Segments {
		if seg != nil {
			uris = append(uris, seg.URI)
		}
	}
	require.Len(t, uris, 2)
	assert.Equal(t, srv.URL+"/videos/m1/seg0.ts?api_key=k", uris[0])
	assert.Equal(t, srv.URL+"/videos/m1/seg1.ts?api_key=k", uris[1])
}

func TestAdapter_Transcode_NoTranscodingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"MediaSources": []map[string]any{{"Id": "direct"}},
		})
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	content := &provider.Content{ID: "m1", Kind: provider.ContentKind{Type: provider.ContentMovie}}
	_, err := adapter.Transcode(context.Background(), provider.Auth("u1", "tok"), content, nil, nil)
	assert.ErrorIs(t, err, provider.ErrManifestIncomplete)
}

func TestAdapter_Transcode_CorruptMaster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Items/m1/PlaybackInfo":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"MediaSources": []map[string]any{{"TranscodingUrl": "/videos/m1/master.m3u8"}},
			})
		default:
			fmt.Fprint(w, testMedia) // a media playlist where a master is expected
		}
	}))
	defer srv.Close()

	adapter := New(jellyfin.New(srv.URL), nil, nil)
	content := &provider.Content{ID: "m1", Kind: provider.ContentKind{Type: provider.ContentMovie}}
	_, err := adapter.Transcode(context.Background(), provider.Auth("u1", "tok"), content, nil, nil)
	assert.ErrorIs(t, err, provider.ErrManifestCorrupt)
}

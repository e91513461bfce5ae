package jellyfin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Authorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Emby-Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, WithDevice("testclient", "testbox", "1.2.3"))
	require.NoError(t, client.Ping(context.Background()))
	assert.Contains(t, gotAuth, `Client="testclient"`)
	assert.Contains(t, gotAuth, `Device="testbox"`)
	assert.Contains(t, gotAuth, `Version="1.2.3"`)
	assert.NotContains(t, gotAuth, "Token=")

	// Authenticated calls carry the token.
	_, err := client.WhoAmI(context.Background(), Session{UserID: "u1", Token: "tok"})
	require.Error(t, err) // empty body, decode fails; the header is what matters
	assert.Contains(t, gotAuth, `Token="tok"`)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)

	_, err := client.Fetch(context.Background(), srv.URL+"/unauthorized")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsClientError(err))

	_, err = client.Fetch(context.Background(), srv.URL+"/missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.True(t, IsClientError(err))

	_, err = client.Fetch(context.Background(), srv.URL+"/broken")
	assert.False(t, IsClientError(err))
}

func TestClient_QuickConnectFlow(t *testing.T) {
	approved := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/QuickConnect/Initiate":
			_ = json.NewEncoder(w).Encode(map[string]any{"Secret": "s3cret", "Code": "ABC123"})
		case "/QuickConnect/Connect":
			assert.Equal(t, "s3cret", r.URL.Query().Get("Secret"))
			_ = json.NewEncoder(w).Encode(map[string]any{"Authenticated": approved})
		case "/Users/AuthenticateWithQuickConnect":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "s3cret", body["Secret"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"User":        map[string]any{"Id": "u1", "Name": "alice"},
				"AccessToken": "tok",
			})
		case "/Sessions/Capabilities/Full":
			assert.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)
	ctx := context.Background()

	qc, err := client.QuickConnectInitiate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", qc.Code)

	ok, err := client.QuickConnectPoll(ctx, qc.Secret)
	require.NoError(t, err)
	assert.False(t, ok)

	approved = true
	ok, err = client.QuickConnectPoll(ctx, qc.Secret)
	require.NoError(t, err)
	assert.True(t, ok)

	session, err := client.QuickConnectAuthenticate(ctx, qc.Secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "tok", session.Token)
}

func TestClient_Items(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Users/u1/Views":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"Items": []map[string]any{{"Id": "lib1", "Name": "Movies", "Type": "CollectionFolder", "IsFolder": true}},
			})
		case "/Users/u1/Items":
			assert.Equal(t, "IsFolder,SortName,ProductionYear", r.URL.Query().Get("SortBy"))
			assert.Equal(t, "lib1", r.URL.Query().Get("ParentId"))
			assert.Equal(t, "false", r.URL.Query().Get("IsMissing"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"Items": []map[string]any{{"Id": "m1", "Name": "Heat", "Type": "Movie"}},
			})
		case "/Users/u1/Items/m1":
			_ = json.NewEncoder(w).Encode(map[string]any{"Id": "m1", "Name": "Heat", "Type": "Movie"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)
	session := Session{UserID: "u1", Token: "tok"}
	ctx := context.Background()

	views, err := client.Views(ctx, session)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "lib1", views[0].ID)
	assert.True(t, views[0].IsFolder)

	items, err := client.Items(ctx, session, "lib1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Heat", items[0].Name)

	item, err := client.Item(ctx, session, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", item.ID)
}

func TestClient_PlaybackInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Items/m1/PlaybackInfo", r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("UserId"))
		assert.Equal(t, "true", r.URL.Query().Get("IsPlayback"))
		assert.Equal(t, "2", r.URL.Query().Get("AudioStreamIndex"))
		assert.Empty(t, r.URL.Query().Get("SubtitleStreamIndex"))

		var profile map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&profile))
		assert.Contains(t, profile, "DeviceProfile")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"MediaSources": []map[string]any{
				{"TranscodingUrl": "/videos/m1/main.m3u8?api_key=k"},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	audio := 2
	u, err := client.PlaybackInfo(context.Background(), Session{UserID: "u1", Token: "tok"}, "m1",
		json.RawMessage(`{"DeviceProfile":{}}`), &audio, nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/videos/m1/main.m3u8?api_key=k", u)
}

func TestClient_PlaybackInfo_NoTranscodingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"MediaSources": []map[string]any{{"Id": "src1"}},
		})
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.PlaybackInfo(context.Background(), Session{UserID: "u1"}, "m1", nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoTranscodingURL)
}

func TestClient_VideoURL(t *testing.T) {
	client := New("http://host")
	assert.Equal(t, "http://host/videos/m1/hls1/main.m3u8", client.VideoURL("m1", "hls1/main.m3u8"))
}

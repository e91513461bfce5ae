package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryClient_FirstTry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("segment bytes"))
	}))
	defer srv.Close()

	client := NewRetryClient(nil)
	data, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("segment bytes"), data)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryClient_RetriesNon200(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRetryClient(nil)
	data, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryClient_CancelStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let the first attempt fail, then cancel during backoff.
		cancel()
	}()

	client := NewRetryClient(nil)
	_, err := client.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}

func TestRetryClient_BadURL(t *testing.T) {
	client := NewRetryClient(nil)
	_, err := client.Fetch(context.Background(), "://not-a-url")
	assert.Error(t, err)
}

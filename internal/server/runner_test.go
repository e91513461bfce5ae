package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/binge/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, LogLevel: "error"},
		Database: config.DatabaseConfig{
			Path: filepath.Join(dir, "binge.db"),
		},
		Storage: config.StorageConfig{
			Root: filepath.Join(dir, "blobs"),
		},
		Download: config.DownloadConfig{Workers: 1, QueueDepth: 4},
		Providers: []config.ProviderConfig{{
			ID:   "jf",
			Name: "Home",
			Type: "jellyfin",
			URL:  "http://127.0.0.1:0",
		}},
	}
}

func TestRunner_StartsAndStops(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	// Give the HTTP server time to start.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}
}

func TestRunner_UnsupportedProviderType(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers[0].Type = "mystery"

	runner := NewRunner(cfg, nil)
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}

func TestNewRunner_DefaultLogger(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	require.NotNil(t, runner)
	require.NotNil(t, runner.log)
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_RoundTrip(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "single/1/m1/720p/seg0.ts"
	require.NoError(t, dir.Upload(ctx, key, []byte("payload")))

	data, err := dir.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	ok, err := dir.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.Exists(ctx, "single/1/m1/missing.ts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDir_Overwrite(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, dir.Upload(ctx, "a.m3u8", []byte("old")))
	require.NoError(t, dir.Upload(ctx, "a.m3u8", []byte("new")))

	data, err := dir.Download(ctx, "a.m3u8")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestDir_NotFound(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = dir.Download(context.Background(), "nope/missing.ts")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDir_RejectsEscapingKeys(t *testing.T) {
	root := t.TempDir()
	dir, err := NewDir(root)
	require.NoError(t, err)
	ctx := context.Background()

	// Plant a file outside the root that a traversal would reach.
	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	for _, key := range []string{
		"",
		"/etc/passwd",
		"../secret.txt",
		"a/../../secret.txt",
	} {
		_, err := dir.Download(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)

		err = dir.Upload(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestMemory(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.Upload(ctx, "k1", []byte("v1")))

	data, err := mem.Download(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	// Mutating the returned slice must not corrupt the store.
	data[0] = 'X'
	again, err := mem.Download(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), again)

	_, err = mem.Download(ctx, "k2")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := mem.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"k1"}, mem.Keys())
}

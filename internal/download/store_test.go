package download

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/binge/internal/catalog"
	"github.com/vmunix/binge/internal/provider"
)

func seedContent(t *testing.T, cat *catalog.Store, connID int64, contentID string) {
	t.Helper()
	require.NoError(t, cat.UpsertContents(connID, []provider.Content{
		{ID: contentID, Name: "Heat", Kind: provider.ContentKind{Type: provider.ContentMovie}},
	}, nil))
}

func TestStore_Create(t *testing.T) {
	db := setupTestDB(t)
	cat := catalog.NewStore(db)
	conn, err := cat.AddConnection("jf", nil)
	require.NoError(t, err)
	seedContent(t, cat, conn.ID, "m1")

	store := NewStore(db)
	d, err := store.Create(conn.ID, "m1")
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, StatusDownloading, d.Status)

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "m1", got.ContentID)
	assert.Nil(t, got.StatusInfo)

	// The content row flips in the same transaction.
	item, err := cat.GetContent(conn.ID, "m1")
	require.NoError(t, err)
	require.NotNil(t, item.Status)
	assert.Equal(t, string(StatusDownloading), *item.Status)
}

func TestStore_SetStatus_MirrorsContent(t *testing.T) {
	db := setupTestDB(t)
	cat := catalog.NewStore(db)
	conn, err := cat.AddConnection("jf", nil)
	require.NoError(t, err)
	seedContent(t, cat, conn.ID, "m1")

	store := NewStore(db)
	d, err := store.Create(conn.ID, "m1")
	require.NoError(t, err)

	info := "all segments failed"
	require.NoError(t, store.SetStatus(d.ID, StatusFailed, &info))

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.StatusInfo)
	assert.Equal(t, info, *got.StatusInfo)

	item, err := cat.GetContent(conn.ID, "m1")
	require.NoError(t, err)
	require.NotNil(t, item.Status)
	assert.Equal(t, string(StatusFailed), *item.Status)
}

func TestStore_SetStatus_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))
	err := store.SetStatus("no-such-id", StatusFinished, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := NewStore(setupTestDB(t))
	_, err := store.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListByConnection(t *testing.T) {
	db := setupTestDB(t)
	cat := catalog.NewStore(db)
	conn, err := cat.AddConnection("jf", nil)
	require.NoError(t, err)
	seedContent(t, cat, conn.ID, "m1")
	seedContent(t, cat, conn.ID, "m2")

	store := NewStore(db)
	first, err := store.Create(conn.ID, "m1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.Create(conn.ID, "m2")
	require.NoError(t, err)

	list, err := store.ListByConnection(conn.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	other, err := cat.AddConnection("jf2", nil)
	require.NoError(t, err)
	list, err = store.ListByConnection(other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

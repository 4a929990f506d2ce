package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tinydb/blobstore"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutOpen(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Open(ctx, "db/test.bin")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "db/test.bin", []byte("first")))
	require.NoError(t, store.Put(ctx, "db/test.bin", []byte("second")))

	blob, err := store.Open(ctx, "db/test.bin")
	require.NoError(t, err)
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestStore_PutEmpty(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, int64(0), blob.Size())
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Put(ctx, "a", []byte("x")))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, name := range []string{"db/b", "db/a", "other", "db_x"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	names, err := store.List(ctx, "db/")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/a", "db/b"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/a", "db/b", "db_x", "other"}, all)
}

func TestStore_ListMultibytePrefix(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, name := range []string{"café/menü", "café/öl", "cafe/x", "caféx"} {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
	}

	names, err := store.List(ctx, "café/")
	require.NoError(t, err)
	assert.Equal(t, []string{"café/menü", "café/öl"}, names)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	blob, err := store.Open(ctx, "k")
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
}

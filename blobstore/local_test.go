package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tinydb/internal/fs"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	// 1. Put a blob into a directory that does not exist yet.
	name := "db/test.bin"
	data := []byte("hello world, this is a test blob for tinydb")
	require.NoError(t, store.Put(ctx, name, data))

	_, err := os.Stat(filepath.Join(tmpDir, "db", "test.bin"))
	require.NoError(t, err)

	// 2. Open and read it back.
	blob, err := store.Open(ctx, name)
	require.NoError(t, err)

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, data, all)
	require.NoError(t, blob.Close())

	// 3. Replace it.
	require.NoError(t, store.Put(ctx, name, []byte("v2")))
	blob, err = store.Open(ctx, name)
	require.NoError(t, err)
	all, err = ReadAll(ctx, blob)
	require.NoError(t, err)
	require.Equal(t, "v2", string(all))
	require.NoError(t, blob.Close())

	// 4. List
	require.NoError(t, store.Put(ctx, "other.bin", []byte("x")))
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"db/test.bin", "other.bin"}, names)

	names, err = store.List(ctx, "db/")
	require.NoError(t, err)
	require.Equal(t, []string{"db/test.bin"}, names)

	// 5. Delete
	require.NoError(t, store.Delete(ctx, name))
	require.NoError(t, store.Delete(ctx, name), "deleting a missing blob is not an error")

	_, err = store.Open(ctx, name)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_EmptyRootUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	store := NewLocalStore("")
	require.NoError(t, store.Put(context.Background(), "tasks.tinydb", []byte("abc")))

	got, err := os.ReadFile(filepath.Join(dir, "tasks.tinydb"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, "tasks.tinydb", store.Path("tasks.tinydb"))
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())
	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "x", []byte("x")), context.Canceled)
	_, err := store.Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteFileAtomic_FailureKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is cleaned up")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "no", "such", "dir", "f"), func(w io.Writer) error {
		return nil
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStore_PutFaultsKeepOldBlob(t *testing.T) {
	faults := map[string]fs.Fault{
		"Write":  {FailAfterBytes: 3},
		"Sync":   {FailAfterBytes: -1, FailOnSync: true},
		"Close":  {FailAfterBytes: -1, FailOnClose: true},
		"Rename": {FailAfterBytes: -1, FailOnRename: true},
	}

	for name, fault := range faults {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			require.NoError(t, NewLocalStore(dir).Put(ctx, "snap.bin", []byte("old")))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule("snap.bin", fault)
			store := NewLocalStore(dir, WithFileSystem(ffs))

			err := store.Put(ctx, "snap.bin", []byte("new contents"))
			require.ErrorIs(t, err, fs.ErrInjected)

			got, err := os.ReadFile(filepath.Join(dir, "snap.bin"))
			require.NoError(t, err)
			assert.Equal(t, "old", string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file is cleaned up")
		})
	}
}

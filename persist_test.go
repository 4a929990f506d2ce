package tinydb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/codec"
	tfs "github.com/hupe1980/tinydb/internal/fs"
	"github.com/hupe1980/tinydb/persistence"
)

// recordingStore counts every call that reaches the wrapped store.
type recordingStore struct {
	blobstore.BlobStore
	calls   int
	failPut error
}

func (s *recordingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	s.calls++
	return s.BlobStore.Open(ctx, name)
}

func (s *recordingStore) Put(ctx context.Context, name string, data []byte) error {
	s.calls++
	if s.failPut != nil {
		return s.failPut
	}
	return s.BlobStore.Put(ctx, name, data)
}

func (s *recordingStore) Delete(ctx context.Context, name string) error {
	s.calls++
	return s.BlobStore.Delete(ctx, name)
}

func (s *recordingStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.calls++
	return s.BlobStore.List(ctx, prefix)
}

func TestScenario_StrictTableRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	ctx := context.Background()

	tbl := New[person]("people", WithStrictDupes(true))
	john := person{Name: "John", Age: 16}

	require.NoError(t, tbl.Add(john))
	require.ErrorIs(t, tbl.Add(john), ErrDupeFound)
	assert.Equal(t, 1, tbl.Len())

	tbl.SetSavePath("db/test.bin")
	require.NoError(t, tbl.Dump(ctx))

	info, err := os.Stat(filepath.Join("db", "test.bin"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	fresh := New[person]("people", WithSavePath("db/test.bin"))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []person{john}, fresh.Records())
}

func TestPathResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("NoPath", func(t *testing.T) {
		store := &recordingStore{BlobStore: blobstore.NewMemoryStore()}
		tbl := New[person]("people", WithBlobStore(store))
		require.NoError(t, tbl.Add(person{"John", 16}))

		require.ErrorIs(t, tbl.Dump(ctx), ErrSavePathRequired)
		require.ErrorIs(t, tbl.Load(ctx), ErrSavePathRequired)
		assert.Zero(t, store.calls)
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("DerivedFromLabel", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		tbl := New[person]("people", WithBlobStore(store), WithDerivedPath(true))

		path, err := tbl.Path()
		require.NoError(t, err)
		assert.Equal(t, "people.tinydb", path)

		require.NoError(t, tbl.Dump(ctx))
		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"people.tinydb"}, names)
	})

	t.Run("DerivedNeedsLabel", func(t *testing.T) {
		store := &recordingStore{BlobStore: blobstore.NewMemoryStore()}
		tbl := New[person]("", WithBlobStore(store), WithDerivedPath(true))

		require.ErrorIs(t, tbl.Dump(ctx), ErrSavePathRequired)
		assert.Zero(t, store.calls)
	})

	t.Run("ExplicitWins", func(t *testing.T) {
		tbl := New[person]("people", WithDerivedPath(true), WithSavePath("x.bin"))
		path, err := tbl.Path()
		require.NoError(t, err)
		assert.Equal(t, "x.bin", path)

		tbl.SetLabel("staff")
		tbl.SetSavePath("")
		path, err = tbl.Path()
		require.NoError(t, err)
		assert.Equal(t, "staff.tinydb", path)
	})
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	codecs := []codec.Codec{codec.JSON{}, codec.GoJSON{}}
	compressions := []persistence.Compression{
		persistence.CompressionNone,
		persistence.CompressionLZ4,
		persistence.CompressionZSTD,
	}

	for _, c := range codecs {
		for _, comp := range compressions {
			for _, n := range []int{0, 1, 3000} {
				t.Run(fmt.Sprintf("%s/%s/%d", c.Name(), comp, n), func(t *testing.T) {
					store := blobstore.NewMemoryStore()
					src := New[person]("people",
						WithBlobStore(store),
						WithSavePath("people.tinydb"),
						WithCodec(c),
						WithCompression(comp),
					)
					for i := range n {
						require.NoError(t, src.Add(person{Name: fmt.Sprintf("p%d", i), Age: i % 90}))
					}
					require.NoError(t, src.Dump(ctx))

					dst := New[person]("people", WithBlobStore(store), WithSavePath("people.tinydb"))
					require.NoError(t, dst.Load(ctx))
					assert.Equal(t, src.Len(), dst.Len())
					assert.Equal(t, sorted(src.Records()), sorted(dst.Records()))
				})
			}
		}
	}
}

func TestRoundTrip_LocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)

	src := New[contact]("contacts", WithBlobStore(store), WithSavePath("nested/dir/contacts.tinydb"), WithCompression(persistence.CompressionZSTD))
	require.NoError(t, src.Add(contact{Email: "a@x", Name: "Ann"}))
	require.NoError(t, src.Add(contact{Email: "b@x", Name: "Bob"}))
	require.NoError(t, src.Dump(ctx))

	// A second dump replaces the file in place.
	require.NoError(t, src.Remove(contact{Email: "a@x"}))
	require.NoError(t, src.Dump(ctx))

	dst := New[contact]("contacts", WithBlobStore(store), WithSavePath("nested/dir/contacts.tinydb"))
	require.NoError(t, dst.Load(ctx))
	assert.Equal(t, []contact{{Email: "b@x", Name: "Bob"}}, dst.Records())

	entries, err := os.ReadDir(filepath.Join(dir, "nested", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoad_Atomicity(t *testing.T) {
	ctx := context.Background()
	existing := []person{{"Ann", 30}, {"Bob", 41}}

	setup := func(t *testing.T, store blobstore.BlobStore) *Table[person] {
		t.Helper()
		tbl := New[person]("people", WithBlobStore(store), WithSavePath("people.tinydb"))
		for _, p := range existing {
			require.NoError(t, tbl.Add(p))
		}
		return tbl
	}

	t.Run("Missing", func(t *testing.T) {
		tbl := setup(t, blobstore.NewLocalStore(t.TempDir()))

		err := tbl.Load(ctx)
		require.ErrorIs(t, err, ErrIO)
		require.ErrorIs(t, err, fs.ErrNotExist)
		assert.NotErrorIs(t, err, ErrDecode)

		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "load", ioErr.Op)
		assert.Equal(t, "people.tinydb", ioErr.Path)

		assert.Equal(t, existing, sorted(tbl.Records()))
	})

	corrupt := map[string]func(valid []byte) []byte{
		"Garbage":   func([]byte) []byte { return []byte("definitely not a snapshot") },
		"Empty":     func([]byte) []byte { return nil },
		"Truncated": func(valid []byte) []byte { return valid[:len(valid)-3] },
		"Trailing":  func(valid []byte) []byte { return append(bytes.Clone(valid), 0xFF) },
		"FlippedPayloadByte": func(valid []byte) []byte {
			out := bytes.Clone(valid)
			out[len(out)-2] ^= 0xFF
			return out
		},
	}

	for name, mutate := range corrupt {
		t.Run(name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()

			other := New[person]("people", WithBlobStore(store), WithSavePath("people.tinydb"))
			require.NoError(t, other.Add(person{"Zed", 99}))
			require.NoError(t, other.Add(person{"Yan", 98}))
			require.NoError(t, other.Dump(ctx))

			blob, err := store.Open(ctx, "people.tinydb")
			require.NoError(t, err)
			valid, err := blobstore.ReadAll(ctx, blob)
			require.NoError(t, err)
			require.NoError(t, store.Put(ctx, "people.tinydb", mutate(valid)))

			tbl := setup(t, store)
			err = tbl.Load(ctx)
			require.ErrorIs(t, err, ErrDecode)
			assert.NotErrorIs(t, err, ErrIO)

			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, "people.tinydb", decErr.Path)

			assert.Equal(t, existing, sorted(tbl.Records()))
		})
	}

	t.Run("WrongRecordType", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		var buf bytes.Buffer
		_, err := persistence.Write(&buf, []any{[]int{1, 2}}, persistence.WriteOptions{})
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "people.tinydb", buf.Bytes()))

		tbl := setup(t, store)
		require.ErrorIs(t, tbl.Load(ctx), ErrDecode)
		assert.Equal(t, existing, sorted(tbl.Records()))
	})

	t.Run("DuplicateRecordsInSnapshot", func(t *testing.T) {
		store := blobstore.NewMemoryStore()

		var buf bytes.Buffer
		_, err := persistence.Write(&buf, []person{{"Zed", 1}, {"Zed", 1}}, persistence.WriteOptions{})
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "people.tinydb", buf.Bytes()))

		tbl := setup(t, store)
		err = tbl.Load(ctx)
		require.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, errSnapshotDupes)
		assert.Equal(t, existing, sorted(tbl.Records()))
	})
}

func TestDump_FailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{BlobStore: blobstore.NewMemoryStore()}

	tbl := New[person]("people", WithBlobStore(store), WithSavePath("people.tinydb"))
	require.NoError(t, tbl.Add(person{"Ann", 30}))
	require.NoError(t, tbl.Dump(ctx))

	boom := errors.New("disk full")
	store.failPut = boom
	require.NoError(t, tbl.Add(person{"Bob", 41}))

	err := tbl.Dump(ctx)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, boom)

	store.failPut = nil
	fresh := New[person]("people", WithBlobStore(store), WithSavePath("people.tinydb"))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []person{{"Ann", 30}}, fresh.Records())
}

func TestDump_LocalStoreFaultKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tbl := New[person]("people", WithBlobStore(blobstore.NewLocalStore(dir)), WithSavePath("people.tinydb"))
	require.NoError(t, tbl.Add(person{"Ann", 30}))
	require.NoError(t, tbl.Dump(ctx))

	ffs := tfs.NewFaultyFS(nil)
	ffs.AddRule("people.tinydb", tfs.Fault{FailAfterBytes: 16})
	tbl = New[person]("people", WithBlobStore(blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))), WithSavePath("people.tinydb"))
	require.NoError(t, tbl.Add(person{"Bob", 41}))

	err := tbl.Dump(ctx)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, tfs.ErrInjected)

	fresh := New[person]("people", WithBlobStore(blobstore.NewLocalStore(dir)), WithSavePath("people.tinydb"))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []person{{"Ann", 30}}, fresh.Records())
}

func TestDump_LocalStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	tbl := New[person]("people", WithBlobStore(blobstore.NewLocalStore(dir)), WithSavePath("people.tinydb"))

	err := tbl.Dump(ctx)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "people.tinydb"))
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestDump_MarshalError(t *testing.T) {
	store := &recordingStore{BlobStore: blobstore.NewMemoryStore()}
	tbl := New[badRecord]("bad", WithBlobStore(store), WithSavePath("bad.tinydb"))
	require.NoError(t, tbl.Add(badRecord{ID: 1, C: make(chan int)}))

	err := tbl.Dump(context.Background())
	require.ErrorIs(t, err, ErrEncode)
	assert.NotErrorIs(t, err, ErrIO)
	assert.Zero(t, store.calls)

	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "bad.tinydb", encErr.Path)
}

func TestDump_UnsupportedFloat(t *testing.T) {
	store := &recordingStore{BlobStore: blobstore.NewMemoryStore()}
	tbl := New[reading]("readings", WithBlobStore(store), WithSavePath("r"))
	require.NoError(t, tbl.Add(reading{Sensor: "a", Value: math.Inf(1)}))

	err := tbl.Dump(context.Background())
	require.ErrorIs(t, err, ErrEncode)
	assert.Zero(t, store.calls)
}

func TestDump_UnexportedFields(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			require.NoError(t, store.Put(ctx, "s", []byte("previous")))

			tbl := New[secret]("secrets", WithBlobStore(store), WithSavePath("s"), WithCodec(c))
			require.NoError(t, tbl.Add(secret{id: "john", value: 16}))

			err := tbl.Dump(ctx)
			require.ErrorIs(t, err, ErrEncode)
			require.ErrorIs(t, err, errLossyRecord)

			blob, err := store.Open(ctx, "s")
			require.NoError(t, err)
			defer blob.Close()
			data, err := blobstore.ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, "previous", string(data))
		})
	}
}

type reading struct {
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
}

func (r reading) Hash() uint64             { return HashOf(r.Sensor) }
func (r reading) Equal(other reading) bool { return r == other }

type secret struct {
	id    string
	value int
}

func (s secret) Hash() uint64            { return HashOf(s.id) }
func (s secret) Equal(other secret) bool { return s == other }

type badRecord struct {
	ID int
	C  chan int
}

func (b badRecord) Hash() uint64               { return HashOf(b.ID) }
func (b badRecord) Equal(other badRecord) bool { return b.ID == other.ID }

func TestLoad_ThrottledStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewThrottledStore(blobstore.NewLocalStore(t.TempDir()), 1<<20)

	src := New[person]("people", WithBlobStore(store), WithDerivedPath(true))
	require.NoError(t, src.Add(person{"Ann", 30}))
	require.NoError(t, src.Dump(ctx))

	dst := New[person]("people", WithBlobStore(store), WithDerivedPath(true))
	require.NoError(t, dst.Load(ctx))
	assert.Equal(t, src.Records(), dst.Records())
}

func TestLoad_CustomCodec(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	src := New[person]("people", WithBlobStore(store), WithSavePath("p"), WithCodec(codec.JSON{}))
	require.NoError(t, src.Add(person{"Ann", 30}))
	require.NoError(t, src.Dump(ctx))

	// Snapshot codec is taken from the header, not from the loading table.
	dst := New[person]("people", WithBlobStore(store), WithSavePath("p"), WithCodec(codec.GoJSON{}))
	require.NoError(t, dst.Load(ctx))
	assert.Equal(t, src.Records(), dst.Records())
}

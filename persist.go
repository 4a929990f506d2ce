package tinydb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/persistence"
)

var (
	errSnapshotDupes = errors.New("snapshot contains equal records")
	errLossyRecord   = errors.New("record does not survive encoding")
)

// Path returns the snapshot path Dump and Load use: the explicit save path,
// else "<label>.tinydb" when path derivation is enabled.
func (t *Table[T]) Path() (string, error) {
	if t.savePath != "" {
		return t.savePath, nil
	}
	if t.derivePath && t.label != "" {
		return t.label + Extension, nil
	}
	return "", ErrSavePathRequired
}

// Dump writes every record as one snapshot, atomically replacing any
// previous snapshot at the resolved path. If Dump fails, the previous
// snapshot is left intact.
//
// Records that the codec rejects or cannot restore to an equal value fail with
// ErrEncode before the store is touched. Storage failures match ErrIO.
func (t *Table[T]) Dump(ctx context.Context) error {
	start := time.Now()
	path, size, err := t.dump(ctx)
	records := t.count
	t.metrics.RecordDump(records, size, time.Since(start), err)
	t.logger.LogDump(ctx, t.label, path, records, size, err)
	return err
}

func (t *Table[T]) dump(ctx context.Context) (string, int, error) {
	path, err := t.Path()
	if err != nil {
		return "", 0, err
	}

	records := t.Records()
	frames, err := persistence.EncodeFrames(t.codec, records)
	if err != nil {
		return path, 0, &EncodeError{Path: path, cause: err}
	}
	if err := verifyFrames(t.codec, records, frames); err != nil {
		return path, 0, &EncodeError{Path: path, cause: err}
	}

	var buf bytes.Buffer
	if _, err := persistence.WriteRaw(&buf, frames, t.codec.Name(), t.compression); err != nil {
		return path, 0, &EncodeError{Path: path, cause: err}
	}

	if err := t.store.Put(ctx, path, buf.Bytes()); err != nil {
		return path, 0, &IOError{Op: "dump", Path: path, cause: err}
	}
	return path, buf.Len(), nil
}

// verifyFrames decodes every frame and checks it against the record it was
// encoded from. Codecs that drop state (unexported struct fields with JSON)
// would otherwise produce snapshots that load as different records.
func verifyFrames[T Record[T]](c codec.Codec, records []T, frames [][]byte) error {
	decoded, err := persistence.DecodeFrames[T](c, frames)
	if err != nil {
		return err
	}
	for i, r := range records {
		if !r.Equal(decoded[i]) {
			return fmt.Errorf("%w: record %d with %s", errLossyRecord, i, c.Name())
		}
	}
	return nil
}

// Load replaces all records with the snapshot at the resolved path.
//
// Load is all-or-nothing: on any error the records are left unchanged.
// Storage failures match ErrIO, malformed snapshots match ErrDecode.
func (t *Table[T]) Load(ctx context.Context) error {
	start := time.Now()
	path, size, err := t.load(ctx)
	records := 0
	if err == nil {
		records = t.count
	}
	t.metrics.RecordLoad(records, size, time.Since(start), err)
	t.logger.LogLoad(ctx, t.label, path, records, size, err)
	return err
}

func (t *Table[T]) load(ctx context.Context) (string, int, error) {
	path, err := t.Path()
	if err != nil {
		return "", 0, err
	}

	blob, err := t.store.Open(ctx, path)
	if err != nil {
		return path, 0, &IOError{Op: "load", Path: path, cause: err}
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return path, 0, &IOError{Op: "load", Path: path, cause: err}
	}

	_, records, err := persistence.Read[T](data, t.codec)
	if err != nil {
		return path, len(data), &DecodeError{Path: path, cause: err}
	}

	buckets := make(map[uint64][]T, len(records))
	for _, r := range records {
		h := r.Hash()
		if indexOf(buckets[h], r) >= 0 {
			return path, len(data), &DecodeError{Path: path, cause: errSnapshotDupes}
		}
		buckets[h] = append(buckets[h], r)
	}

	t.buckets = buckets
	t.count = len(records)
	return path, len(data), nil
}

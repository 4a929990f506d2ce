package tinydb

import (
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/persistence"
)

// Table is an in-memory set of records, unique under Record.Equal, with
// explicit snapshot persistence through a BlobStore.
//
// A Table is not safe for concurrent use. Hosts that share one across
// goroutines must guard it with their own mutex.
type Table[T Record[T]] struct {
	label      string
	savePath   string
	strict     bool
	lenient    DupePolicy
	derivePath bool

	codec       codec.Codec
	compression persistence.Compression
	store       blobstore.BlobStore
	metrics     MetricsCollector
	logger      *Logger

	buckets map[uint64][]T
	count   int
}

// New creates an empty table.
//
// Example:
//
//	t := tinydb.New[Person]("people",
//	    tinydb.WithStrictDupes(true),
//	    tinydb.WithSavePath("db/people.tinydb"),
//	)
func New[T Record[T]](label string, optFns ...Option) *Table[T] {
	o := applyOptions(optFns)
	return &Table[T]{
		label:       label,
		savePath:    o.savePath,
		strict:      o.strict,
		lenient:     o.lenient,
		derivePath:  o.derivePath,
		codec:       o.codec,
		compression: o.compression,
		store:       o.store,
		metrics:     o.metricsCollector,
		logger:      o.logger,
		buckets:     make(map[uint64][]T),
	}
}

// Label returns the table label.
func (t *Table[T]) Label() string { return t.label }

// SetLabel changes the label. Stored records are not affected.
func (t *Table[T]) SetLabel(label string) { t.label = label }

// SavePath returns the explicit snapshot path, or "" if none is set.
func (t *Table[T]) SavePath() string { return t.savePath }

// SetSavePath sets the explicit snapshot path. "" clears it.
func (t *Table[T]) SetSavePath(path string) { t.savePath = path }

// StrictDupes reports whether Add rejects duplicates.
func (t *Table[T]) StrictDupes() bool { return t.strict }

// SetStrictDupes switches between DupeReject and the configured non-strict
// policy.
func (t *Table[T]) SetStrictDupes(strict bool) { t.strict = strict }

// DupePolicy returns the policy Add currently applies.
func (t *Table[T]) DupePolicy() DupePolicy {
	if t.strict {
		return DupeReject
	}
	return t.lenient
}

// SetDupePolicy changes the duplicate policy.
func (t *Table[T]) SetDupePolicy(p DupePolicy) {
	if p == DupeReject {
		t.strict = true
		return
	}
	t.strict = false
	t.lenient = p
}

// Len returns the number of stored records.
func (t *Table[T]) Len() int { return t.count }

func indexOf[T Record[T]](bucket []T, record T) int {
	return slices.IndexFunc(bucket, func(stored T) bool {
		return record.Equal(stored)
	})
}

// Add inserts record. If an equal record is stored, the duplicate policy
// decides: DupeReject returns ErrDupeFound, DupeKeep leaves the stored record,
// DupeReplace overwrites it.
func (t *Table[T]) Add(record T) error {
	start := time.Now()
	err := t.add(record)
	t.metrics.RecordAdd(time.Since(start), err)
	t.logger.LogAdd(t.label, t.count, err)
	return err
}

func (t *Table[T]) add(record T) error {
	h := record.Hash()
	bucket := t.buckets[h]
	if i := indexOf(bucket, record); i >= 0 {
		switch t.DupePolicy() {
		case DupeReject:
			return ErrDupeFound
		case DupeReplace:
			bucket[i] = record
		}
		return nil
	}
	t.buckets[h] = append(bucket, record)
	t.count++
	return nil
}

// Remove deletes the stored record equal to record.
func (t *Table[T]) Remove(record T) error {
	start := time.Now()
	err := t.remove(record)
	t.metrics.RecordRemove(time.Since(start), err)
	t.logger.LogRemove(t.label, t.count, err)
	return err
}

func (t *Table[T]) remove(record T) error {
	h := record.Hash()
	bucket := t.buckets[h]
	i := indexOf(bucket, record)
	if i < 0 {
		return ErrItemNotFound
	}
	if len(bucket) == 1 {
		delete(t.buckets, h)
	} else {
		t.buckets[h] = slices.Delete(bucket, i, i+1)
	}
	t.count--
	return nil
}

// Query returns the stored record equal to record. Its non-key fields may
// differ from the argument's.
func (t *Table[T]) Query(record T) (T, bool) {
	start := time.Now()
	bucket := t.buckets[record.Hash()]
	i := indexOf(bucket, record)
	t.metrics.RecordQuery(time.Since(start), i >= 0)
	if i < 0 {
		var zero T
		return zero, false
	}
	return bucket[i], true
}

// Contains reports whether a record equal to record is stored.
func (t *Table[T]) Contains(record T) bool {
	return indexOf(t.buckets[record.Hash()], record) >= 0
}

// Update replaces the stored record equal to record, regardless of the
// duplicate policy.
func (t *Table[T]) Update(record T) error {
	bucket := t.buckets[record.Hash()]
	i := indexOf(bucket, record)
	if i < 0 {
		return ErrItemNotFound
	}
	bucket[i] = record
	return nil
}

// All iterates over every stored record in unspecified order.
// The table must not be modified during iteration.
func (t *Table[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, bucket := range t.buckets {
			for _, r := range bucket {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// Records returns a copy of all stored records in unspecified order.
func (t *Table[T]) Records() []T {
	out := make([]T, 0, t.count)
	for _, bucket := range t.buckets {
		out = append(out, bucket...)
	}
	return out
}

// Clear removes all records.
func (t *Table[T]) Clear() {
	clear(t.buckets)
	t.count = 0
}

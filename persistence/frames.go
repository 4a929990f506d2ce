package persistence

import (
	"encoding/binary"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tinydb/codec"
)

// parallelThreshold is the record count below which frames are encoded and
// decoded on the calling goroutine.
const parallelThreshold = 2048

// forEachChunk calls fn over [lo, hi) chunks of n items, in parallel when n
// is large enough. The first error wins.
func forEachChunk(n int, fn func(lo, hi int) error) error {
	if n < parallelThreshold {
		return fn(0, n)
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

// EncodeFrames marshals every record with c.
func EncodeFrames[T any](c codec.Codec, records []T) ([][]byte, error) {
	frames := make([][]byte, len(records))
	err := forEachChunk(len(records), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			b, err := c.Marshal(records[i])
			if err != nil {
				return fmt.Errorf("encode record %d with %s: %w", i, c.Name(), err)
			}
			frames[i] = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// DecodeFrames unmarshals every frame into a T with c.
func DecodeFrames[T any](c codec.Codec, frames [][]byte) ([]T, error) {
	records := make([]T, len(frames))
	err := forEachChunk(len(frames), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := c.Unmarshal(frames[i], &records[i]); err != nil {
				return fmt.Errorf("%w: record %d with %s: %w", ErrCorruptFrame, i, c.Name(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func appendFrames(dst []byte, frames [][]byte) []byte {
	for _, f := range frames {
		dst = binary.AppendUvarint(dst, uint64(len(f)))
		dst = append(dst, f...)
	}
	return dst
}

func rawSize(frames [][]byte) int {
	n := 0
	for _, f := range frames {
		n += uvarintLen(uint64(len(f))) + len(f)
	}
	return n
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// splitFrames cuts the raw payload into exactly count frames. The returned
// slices alias raw.
func splitFrames(raw []byte, count uint64) ([][]byte, error) {
	frames := make([][]byte, 0, count)
	pos := 0
	for i := uint64(0); i < count; i++ {
		n, w := binary.Uvarint(raw[pos:])
		if w <= 0 {
			return nil, fmt.Errorf("%w: bad length prefix for record %d", ErrCorruptFrame, i)
		}
		pos += w
		if n > uint64(len(raw)-pos) {
			return nil, fmt.Errorf("%w: record %d needs %d bytes, %d left", ErrTruncated, i, n, len(raw)-pos)
		}
		end := pos + int(n)
		frames = append(frames, raw[pos:end:end])
		pos = end
	}
	if pos != len(raw) {
		return nil, fmt.Errorf("%w: %d bytes after %d records", ErrTrailingData, len(raw)-pos, count)
	}
	return frames, nil
}

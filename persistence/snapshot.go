package persistence

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/internal/hash"
)

// WriteOptions configures snapshot encoding.
type WriteOptions struct {
	// Codec encodes records. Defaults to codec.Default.
	Codec codec.Codec
	// Compression of the payload. Incompressible payloads are stored as-is.
	Compression Compression
}

// Write encodes records as a complete snapshot to w.
func Write[T any](w io.Writer, records []T, opts WriteOptions) (Header, error) {
	c := opts.Codec
	if c == nil {
		c = codec.Default
	}
	frames, err := EncodeFrames(c, records)
	if err != nil {
		return Header{}, err
	}
	return WriteRaw(w, frames, c.Name(), opts.Compression)
}

// WriteRaw writes already-encoded record frames as a snapshot to w.
func WriteRaw(w io.Writer, frames [][]byte, codecName string, compression Compression) (Header, error) {
	if !compression.valid() {
		return Header{}, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(compression))
	}

	raw := appendFrames(make([]byte, 0, rawSize(frames)), frames)
	if uint64(len(raw)) > MaxRawSize {
		return Header{}, fmt.Errorf("%w: payload of %d bytes exceeds limit", ErrInvalidHeader, len(raw))
	}

	stored, used, err := compress(raw, compression)
	if err != nil {
		return Header{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Header{}, fmt.Errorf("snapshot id: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: used,
		Codec:       codecName,
		SnapshotID:  id,
		CreatedAt:   time.Unix(0, time.Now().UnixNano()),
		Count:       uint64(len(frames)),
		RawSize:     uint64(len(raw)),
		StoredSize:  uint64(len(stored)),
		Checksum:    hash.CRC32C(raw),
	}

	buf, err := h.appendTo(make([]byte, 0, FileHeaderSize+SectionHeaderSize))
	if err != nil {
		return Header{}, err
	}
	if _, err := w.Write(buf); err != nil {
		return Header{}, err
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadRaw validates a complete snapshot and returns its header and the
// encoded record frames. The frames may alias data.
func ReadRaw(data []byte) (Header, [][]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return h, nil, err
	}

	payload := data[FileHeaderSize+SectionHeaderSize:]
	if uint64(len(payload)) < h.StoredSize {
		return h, nil, fmt.Errorf("%w: payload has %d of %d bytes", ErrTruncated, len(payload), h.StoredSize)
	}
	if uint64(len(payload)) > h.StoredSize {
		return h, nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, uint64(len(payload))-h.StoredSize)
	}

	raw, err := decompress(payload, h.Compression, h.RawSize)
	if err != nil {
		return h, nil, err
	}
	if sum := hash.CRC32C(raw); sum != h.Checksum {
		return h, nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	frames, err := splitFrames(raw, h.Count)
	if err != nil {
		return h, nil, err
	}
	return h, frames, nil
}

// Read decodes a complete snapshot into records of type T.
//
// The codec named in the header is used. preferred is consulted first so
// custom codecs that are not built in can still be resolved by name.
func Read[T any](data []byte, preferred codec.Codec) (Header, []T, error) {
	h, frames, err := ReadRaw(data)
	if err != nil {
		return h, nil, err
	}

	c, err := ResolveCodec(h.Codec, preferred)
	if err != nil {
		return h, nil, err
	}

	records, err := DecodeFrames[T](c, frames)
	if err != nil {
		return h, nil, err
	}
	return h, records, nil
}

// ResolveCodec returns preferred if its name matches, otherwise the built-in
// codec with that name.
func ResolveCodec(name string, preferred codec.Codec) (codec.Codec, error) {
	if preferred != nil && preferred.Name() == name {
		return preferred, nil
	}
	if c, ok := codec.ByName(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

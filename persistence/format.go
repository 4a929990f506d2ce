package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/tinydb/codec"
)

const (
	// MagicNumber identifies tinydb snapshot files (ASCII: "TDB1").
	MagicNumber = 0x54444231
	// Version is the current snapshot format version.
	Version = 1

	// FileHeaderSize is the size of the fixed file header.
	FileHeaderSize = 64
	// SectionHeaderSize is the size of the record section header.
	SectionHeaderSize = 28

	// MaxRawSize bounds the uncompressed payload a snapshot may declare.
	MaxRawSize = 1 << 32
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrTruncated          = errors.New("snapshot truncated")
	ErrTrailingData       = errors.New("trailing data after payload")
	ErrCorruptFrame       = errors.New("corrupt record frame")
	ErrInvalidHeader      = errors.New("invalid header")
)

// Header describes a snapshot.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	SnapshotID  uuid.UUID
	CreatedAt   time.Time

	// Count is the number of records in the payload.
	Count uint64
	// RawSize is the uncompressed payload size.
	RawSize uint64
	// StoredSize is the payload size as written to the file.
	StoredSize uint64
	// Checksum is the CRC32C of the raw payload.
	Checksum uint32
}

// Size returns the total size of the snapshot file in bytes.
func (h Header) Size() uint64 {
	return FileHeaderSize + SectionHeaderSize + h.StoredSize
}

func (h Header) appendTo(dst []byte) ([]byte, error) {
	if len(h.Codec) == 0 || len(h.Codec) > codec.MaxNameLen {
		return nil, fmt.Errorf("%w: codec name %q must be 1..%d bytes", ErrInvalidHeader, h.Codec, codec.MaxNameLen)
	}

	dst = binary.LittleEndian.AppendUint32(dst, MagicNumber)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = append(dst, byte(h.Compression), byte(len(h.Codec)))

	var name [codec.MaxNameLen]byte
	copy(name[:], h.Codec)
	dst = append(dst, name[:]...)
	dst = append(dst, h.SnapshotID[:]...)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(h.CreatedAt.UnixNano()))

	dst = binary.LittleEndian.AppendUint64(dst, h.Count)
	dst = binary.LittleEndian.AppendUint64(dst, h.RawSize)
	dst = binary.LittleEndian.AppendUint64(dst, h.StoredSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)
	return dst, nil
}

// ReadHeader parses and validates the file and section headers at the start
// of data. It does not touch the payload.
func ReadHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < FileHeaderSize+SectionHeaderSize {
		return h, fmt.Errorf("%w: %d bytes is shorter than the headers", ErrTruncated, len(data))
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicNumber {
		return h, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != Version {
		return h, fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}

	h.Compression = Compression(data[6])
	if !h.Compression.valid() {
		return h, fmt.Errorf("%w: %d", ErrUnknownCompression, data[6])
	}

	nameLen := int(data[7])
	if nameLen == 0 || nameLen > codec.MaxNameLen {
		return h, fmt.Errorf("%w: codec name length %d", ErrInvalidHeader, nameLen)
	}
	h.Codec = string(data[8 : 8+nameLen])

	copy(h.SnapshotID[:], data[40:56])
	h.CreatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(data[56:64])))

	sec := data[FileHeaderSize:]
	h.Count = binary.LittleEndian.Uint64(sec[0:8])
	h.RawSize = binary.LittleEndian.Uint64(sec[8:16])
	h.StoredSize = binary.LittleEndian.Uint64(sec[16:24])
	h.Checksum = binary.LittleEndian.Uint32(sec[24:28])

	if h.RawSize > MaxRawSize {
		return h, fmt.Errorf("%w: raw size %d exceeds limit", ErrInvalidHeader, h.RawSize)
	}
	// Every frame carries at least its one-byte length prefix.
	if h.Count > h.RawSize {
		return h, fmt.Errorf("%w: %d records cannot fit in %d bytes", ErrInvalidHeader, h.Count, h.RawSize)
	}
	if h.Compression == CompressionLZ4 && h.RawSize/maxLZ4Ratio > h.StoredSize {
		return h, fmt.Errorf("%w: raw size %d is out of reach of %d lz4 bytes", ErrInvalidHeader, h.RawSize, h.StoredSize)
	}
	if h.Compression == CompressionNone && h.StoredSize != h.RawSize {
		return h, fmt.Errorf("%w: stored size %d != raw size %d", ErrInvalidHeader, h.StoredSize, h.RawSize)
	}
	return h, nil
}

// Package persistence implements the tinydb snapshot format.
//
// A snapshot is a self-contained image of a table: a fixed header naming the
// format version, record codec and payload compression, followed by a section
// header and a payload of length-prefixed records.
//
//	+------------------------------+
//	| file header (64 bytes)       |  magic, version, compression, codec,
//	|                              |  snapshot id, created-at
//	+------------------------------+
//	| section header (28 bytes)    |  count, raw size, stored size, CRC32C
//	+------------------------------+
//	| payload (stored size bytes)  |  lz4/zstd/none of:
//	|   uvarint(len) record bytes  |    count frames
//	|   ...                        |
//	+------------------------------+
//
// All integers are little-endian. Record bytes come from a codec.Codec and
// never depend on the in-memory layout of the record type. The checksum covers
// the raw (uncompressed) payload, so it catches corruption in the stored bytes
// and in the decompressor alike.
package persistence

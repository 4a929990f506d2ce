// Package hash provides checksum helpers for snapshot integrity.
//
// All checksums in tinydb use CRC32-Castagnoli (CRC32C). Go's crc32 package
// uses hardware instructions for it on x86 (SSE4.2) and ARM64, and it is the
// same polynomial S3 accepts for upload integrity checks.
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(payload)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash

// Package blobstore provides the storage abstraction tinydb snapshots are
// written to and read from.
//
// A snapshot is addressed by name. For LocalStore the name is a filesystem
// path (relative names resolve against the store root, or the process working
// directory when the root is empty); for object stores it is a key below the
// store prefix.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, atomic temp+rename writes, mmap reads
//   - MemoryStore: in-process map, for tests
//   - ThrottledStore: bandwidth limit around any other store
//   - s3.Store, minio.Store, dynamodb.Store, sqlite.Store: remote and embedded backends
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)        // Open for reading
//	    Put(ctx, name, data) error           // Atomic replace
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Put must be atomic: readers observe either the previous blob or the new one,
// never a partial write.
package blobstore

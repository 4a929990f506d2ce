// Package fs provides the filesystem operations behind atomic snapshot writes,
// with a fault-injecting implementation for tests.
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]). Tests can inject
// [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("people.tinydb", fs.Fault{FailAfterBytes: 100})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// This package does not take context.Context parameters. Local file
// operations are not interruptible at the syscall level.
package fs

// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("editor/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	table := tinydb.New[Task]("tasks",
//	    tinydb.WithBlobStore(store),
//	    tinydb.WithSavePath("tasks.tinydb"),
//	)
//
// # Features
//
//   - Single PutObject with a CRC32C checksum for small snapshots
//   - Multipart uploads through the s3 manager for large snapshots
//   - Range reads, automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// S3 PUTs are atomic: readers see the previous object or the new one.
package s3

// Package tinydb provides a small embedded record store for Go.
//
// A Table holds records that are unique under their own equality and can be
// dumped to, and loaded from, a single binary snapshot. It is meant to live
// inside another program (an editor, a CLI, a game) that needs a
// duplicate-free table without a database engine.
//
// # Quick Start
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	func (p Person) Hash() uint64        { return tinydb.HashOf(p) }
//	func (p Person) Equal(o Person) bool { return p == o }
//
//	t := tinydb.New[Person]("people",
//	    tinydb.WithStrictDupes(true),
//	    tinydb.WithSavePath("db/people.tinydb"),
//	)
//	_ = t.Add(Person{Name: "John", Age: 16})
//	err := t.Add(Person{Name: "John", Age: 16}) // errors.Is(err, tinydb.ErrDupeFound)
//	_ = t.Dump(ctx)
//
// # Duplicates
//
// Equality is whatever Record.Equal says. When it compares only a key, the
// stored value can carry other fields; Query returns the stored value and
// Update replaces it. What Add does with an equal record depends on the
// DupePolicy: DupeKeep (default), DupeReplace, or DupeReject (strict).
//
// # Persistence
//
// Persistence is explicit. Dump writes a complete snapshot and atomically
// replaces the previous one; Load decodes a snapshot fully before swapping it
// in, so a failed Load leaves the table unchanged. Without an explicit save
// path, both fail with ErrSavePathRequired unless WithDerivedPath(true) lets
// them use "<label>.tinydb".
//
// Snapshots go to a blobstore.BlobStore. The default is the local filesystem;
// S3, MinIO, DynamoDB and SQLite backends live in the blobstore subpackages.
//
// # Errors
//
//	errors.Is(err, tinydb.ErrItemNotFound)     // Remove/Update of a missing record
//	errors.Is(err, tinydb.ErrDupeFound)        // strict Add of an existing record
//	errors.Is(err, tinydb.ErrSavePathRequired) // Dump/Load without a path
//	errors.Is(err, tinydb.ErrIO)               // storage failure (*IOError)
//	errors.Is(err, tinydb.ErrEncode)           // record not encodable (*EncodeError)
//	errors.Is(err, tinydb.ErrDecode)           // corrupt snapshot (*DecodeError)
//
// # Concurrency
//
// A Table is not safe for concurrent use. Guard shared tables with a mutex.
package tinydb

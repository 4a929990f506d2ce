// Package sqlite provides a BlobStore backed by a single SQLite database
// file, using the pure-Go modernc.org/sqlite driver.
//
// Every blob is one row in the "blobs" table. Put is an upsert inside
// SQLite's own transaction, so readers see either the old or the new blob.
//
//	store, err := sqlite.Open("snapshots.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	table := tinydb.New[Task]("tasks", tinydb.WithBlobStore(store), tinydb.WithDerivedPath(true))
package sqlite

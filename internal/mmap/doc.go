// Package mmap provides read-only memory-mapped access to local snapshot files.
//
//	m, err := mmap.Open("tasks.tinydb")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // valid until Close
//
// Unix platforms use mmap(2); Windows uses CreateFileMapping/MapViewOfFile.
// Empty files are not mapped: Bytes returns nil and Close is a no-op.
package mmap

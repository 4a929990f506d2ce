package blobstore

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/hupe1980/tinydb/internal/fs"
)

const tempMarker = ".tmp-"

func isTempName(base string) bool {
	return strings.Contains(base, tempMarker)
}

// WriteFileAtomic writes filename through writeFunc so that readers observe
// either the old file or the complete new one.
//
// Data goes to a temporary file in the same directory, which is synced,
// closed and renamed over filename. On any error the temporary file is
// removed and filename is left untouched.
func WriteFileAtomic(filename string, writeFunc func(io.Writer) error) error {
	return writeFileAtomic(fs.Default, filename, writeFunc)
}

func writeFileAtomic(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := fsys.CreateTemp(dir, base+tempMarker+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	_ = fsys.SyncDir(dir)

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

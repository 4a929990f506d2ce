// Command tinydb inspects, verifies and exports tinydb snapshot files.
//
// Usage:
//
//	tinydb [-v] inspect <file>   print header fields
//	tinydb [-v] verify <file>    decode every record and check the checksum
//	tinydb [-v] export <file>    write every record as one JSON line
//	tinydb [-v] list <dir>       print the blob names below a directory
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/persistence"
)

var errUsage = errors.New("usage: tinydb [-v] inspect|verify|export|list <path>")

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "tinydb: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), errUsage)
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	ll := &slog.LevelVar{}
	ll.Set(slog.LevelWarn)
	if *verbose {
		ll.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))

	return run(ctx, flag.Args(), os.Stdout)
}

func run(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	cmd, path := args[0], args[1]

	switch cmd {
	case "inspect":
		return inspect(ctx, path, w)
	case "verify":
		return verify(ctx, path, w)
	case "export":
		return export(ctx, path, w)
	case "list":
		return list(ctx, path, w)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// readSnapshot reads a whole snapshot file and hands its bytes to fn while the
// file is still mapped.
func readSnapshot(ctx context.Context, path string, fn func(data []byte) error) error {
	store := blobstore.NewLocalStore("")
	blob, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "snapshot opened", "path", path, "bytes", len(data))
	return fn(data)
}

func inspect(ctx context.Context, path string, w io.Writer) error {
	return readSnapshot(ctx, path, func(data []byte) error {
		h, err := persistence.ReadHeader(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "version:      %d\n", h.Version)
		fmt.Fprintf(w, "codec:        %s\n", h.Codec)
		fmt.Fprintf(w, "compression:  %s\n", h.Compression)
		fmt.Fprintf(w, "snapshot id:  %s\n", h.SnapshotID)
		fmt.Fprintf(w, "created:      %s\n", h.CreatedAt.UTC().Format(time.RFC3339Nano))
		fmt.Fprintf(w, "records:      %d\n", h.Count)
		fmt.Fprintf(w, "raw bytes:    %d\n", h.RawSize)
		fmt.Fprintf(w, "stored bytes: %d\n", h.StoredSize)
		fmt.Fprintf(w, "checksum:     %08x\n", h.Checksum)
		return nil
	})
}

// decodeAll validates the snapshot and decodes every record into a generic value.
func decodeAll(data []byte) (persistence.Header, []any, error) {
	h, frames, err := persistence.ReadRaw(data)
	if err != nil {
		return h, nil, err
	}
	c, err := persistence.ResolveCodec(h.Codec, nil)
	if err != nil {
		return h, nil, err
	}
	records, err := persistence.DecodeFrames[any](c, frames)
	if err != nil {
		return h, nil, err
	}
	return h, records, nil
}

func verify(ctx context.Context, path string, w io.Writer) error {
	return readSnapshot(ctx, path, func(data []byte) error {
		h, records, err := decodeAll(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(w, "%s: ok, %d records (%s, %s)\n", path, len(records), h.Codec, h.Compression)
		return nil
	})
}

func export(ctx context.Context, path string, w io.Writer) error {
	return readSnapshot(ctx, path, func(data []byte) error {
		_, records, err := decodeAll(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		enc := gojson.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	})
}

func list(ctx context.Context, dir string, w io.Writer) error {
	names, err := blobstore.NewLocalStore(dir).List(ctx, "")
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

package tinydb

import (
	"log/slog"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/persistence"
)

// Extension is appended to the label when the snapshot path is derived.
const Extension = ".tinydb"

type options struct {
	savePath         string
	strict           bool
	lenient          DupePolicy // applied when strict is false
	derivePath       bool
	codec            codec.Codec
	compression      persistence.Compression
	store            blobstore.BlobStore
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Table.
type Option func(*options)

// WithSavePath sets the explicit snapshot path.
func WithSavePath(path string) Option {
	return func(o *options) {
		o.savePath = path
	}
}

// WithStrictDupes makes Add fail with ErrDupeFound on duplicates.
func WithStrictDupes(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithDupePolicy sets the duplicate policy. DupeReject is the same as
// WithStrictDupes(true); DupeKeep and DupeReplace select the non-strict
// behavior and turn strict mode off.
func WithDupePolicy(p DupePolicy) Option {
	return func(o *options) {
		if p == DupeReject {
			o.strict = true
			return
		}
		o.strict = false
		o.lenient = p
	}
}

// WithDerivedPath lets Dump and Load fall back to "<label>.tinydb" when no
// explicit save path is set.
func WithDerivedPath(derive bool) Option {
	return func(o *options) {
		o.derivePath = derive
	}
}

// WithCodec configures the codec used to encode records in snapshots.
//
// If nil is passed, codec.Default is used. Snapshots written with another
// built-in codec still load.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures snapshot payload compression.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlobStore configures where snapshots are stored.
// The default is a LocalStore rooted at the working directory.
//
// Example with S3:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("tables/"))
//	t := tinydb.New[Person]("people", tinydb.WithBlobStore(store), tinydb.WithSavePath("people.tinydb"))
func WithBlobStore(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &tinydb.BasicMetricsCollector{}
//	t := tinydb.New[Person]("people", tinydb.WithMetricsCollector(metrics))
//	// ... use t ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Dumps: %d\n", stats.AddCount, stats.DumpCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tinydb.NewJSONLogger(slog.LevelInfo)
//	t := tinydb.New[Person]("people", tinydb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		lenient:          DupeKeep,
		codec:            codec.Default,
		compression:      persistence.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.store == nil {
		o.store = blobstore.NewLocalStore("")
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

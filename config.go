package tinydb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/tinydb/blobstore"
	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/persistence"
)

// Config is the file form of the table options.
//
//	label: tasks
//	save_path: db/tasks.tinydb
//	strict_dupes: true
//	codec: go-json
//	compression: zstd
//	log_level: debug
type Config struct {
	Label       string `yaml:"label"`
	SavePath    string `yaml:"save_path,omitempty"`
	DerivePath  bool   `yaml:"derive_path,omitempty"`
	StrictDupes bool   `yaml:"strict_dupes,omitempty"`
	// DupePolicy is "keep", "replace" or "reject". strict_dupes: true wins.
	DupePolicy  string `yaml:"dupe_policy,omitempty"`
	Codec       string `yaml:"codec,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`

	// StoreRoot roots the local blob store. Empty means the working directory.
	StoreRoot string `yaml:"store_root,omitempty"`
	// ThrottleBytesPerSec limits snapshot I/O bandwidth. 0 disables it.
	ThrottleBytesPerSec int `yaml:"throttle_bytes_per_sec,omitempty"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(bytes.NewReader(data))
}

// ParseConfig parses a YAML config. Unknown fields are rejected.
func ParseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every named codec, compression, policy and level is known.
func (c *Config) Validate() error {
	if c.Codec != "" {
		if _, ok := codec.ByName(c.Codec); !ok {
			return fmt.Errorf("unknown codec %q (known: %v)", c.Codec, codec.Names())
		}
	}
	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, err := ParseDupePolicy(c.DupePolicy); err != nil {
		return err
	}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}
	if c.ThrottleBytesPerSec < 0 {
		return fmt.Errorf("throttle_bytes_per_sec must not be negative: %d", c.ThrottleBytesPerSec)
	}
	return nil
}

// Options converts the config into table options. Options passed to New
// after these override them.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	policy, _ := ParseDupePolicy(c.DupePolicy)
	compression, _ := persistence.ParseCompression(c.Compression)

	opts := []Option{
		WithSavePath(c.SavePath),
		WithDerivedPath(c.DerivePath),
		WithDupePolicy(policy),
		WithCompression(compression),
	}
	if c.StrictDupes {
		opts = append(opts, WithStrictDupes(true))
	}
	if c.Codec != "" {
		cd, _ := codec.ByName(c.Codec)
		opts = append(opts, WithCodec(cd))
	}
	if c.LogLevel != "" {
		var level slog.Level
		_ = level.UnmarshalText([]byte(c.LogLevel))
		opts = append(opts, WithLogLevel(level))
	}
	if c.StoreRoot != "" || c.ThrottleBytesPerSec > 0 {
		var store blobstore.BlobStore = blobstore.NewLocalStore(c.StoreRoot)
		if c.ThrottleBytesPerSec > 0 {
			store = blobstore.NewThrottledStore(store, c.ThrottleBytesPerSec)
		}
		opts = append(opts, WithBlobStore(store))
	}
	return opts, nil
}

// NewFromConfig creates a table from cfg. Extra options are applied after the
// config's own.
func NewFromConfig[T Record[T]](cfg *Config, optFns ...Option) (*Table[T], error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New[T](cfg.Label, append(opts, optFns...)...), nil
}

package tinydb

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tinydb/codec"
	"github.com/hupe1980/tinydb/persistence"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
label: tasks
save_path: db/tasks.tinydb
strict_dupes: true
codec: json
compression: zstd
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "tasks", cfg.Label)
	assert.Equal(t, "db/tasks.tinydb", cfg.SavePath)
	assert.True(t, cfg.StrictDupes)

	tbl, err := NewFromConfig[person](cfg)
	require.NoError(t, err)
	assert.Equal(t, "tasks", tbl.Label())
	assert.Equal(t, "db/tasks.tinydb", tbl.SavePath())
	assert.Equal(t, DupeReject, tbl.DupePolicy())
	assert.Equal(t, codec.JSON{}, tbl.codec)
	assert.Equal(t, persistence.CompressionZSTD, tbl.compression)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)

	tbl, err := NewFromConfig[person](cfg)
	require.NoError(t, err)
	assert.Equal(t, DupeKeep, tbl.DupePolicy())
	assert.Equal(t, codec.Default, tbl.codec)
	assert.Equal(t, persistence.CompressionNone, tbl.compression)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"UnknownField":       "label: x\nsave_pth: y\n",
		"UnknownCodec":       "codec: msgpack\n",
		"UnknownCompression": "compression: brotli\n",
		"UnknownPolicy":      "dupe_policy: merge\n",
		"BadLogLevel":        "log_level: loud\n",
		"NegativeThrottle":   "throttle_bytes_per_sec: -1\n",
		"NotYAML":            "label: [unclosed\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestConfig_DupePolicyAndOverrides(t *testing.T) {
	cfg := &Config{Label: "contacts", DupePolicy: "replace"}

	tbl, err := NewFromConfig[contact](cfg)
	require.NoError(t, err)
	assert.Equal(t, DupeReplace, tbl.DupePolicy())

	tbl, err = NewFromConfig[contact](cfg, WithStrictDupes(true))
	require.NoError(t, err)
	assert.Equal(t, DupeReject, tbl.DupePolicy())

	tbl.SetStrictDupes(false)
	assert.Equal(t, DupeReplace, tbl.DupePolicy())
}

func TestConfig_Options_Invalid(t *testing.T) {
	_, err := (&Config{Compression: "brotli"}).Options()
	require.ErrorIs(t, err, persistence.ErrUnknownCompression)

	_, err = NewFromConfig[person](&Config{Codec: "gob"})
	assert.Error(t, err)
}

func TestLoadConfig_StoreRoot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	root := filepath.Join(dir, "data")

	path := filepath.Join(dir, "tinydb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
label: people
derive_path: true
store_root: `+root+`
throttle_bytes_per_sec: 1048576
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	tbl, err := NewFromConfig[person](cfg)
	require.NoError(t, err)
	require.NoError(t, tbl.Add(person{"Ann", 30}))
	require.NoError(t, tbl.Dump(ctx))

	_, err = os.Stat(filepath.Join(root, "people.tinydb"))
	require.NoError(t, err)

	fresh, err := NewFromConfig[person](cfg)
	require.NoError(t, err)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, tbl.Records(), fresh.Records())
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Notes:
//   - Only exported struct fields are persisted; tag them to keep names stable.
//   - Funcs, channels and complex numbers are not supported.
//
// If you need custom encoding (e.g. protobuf/msgpack), implement Codec and set
// it on the table with tinydb.WithCodec.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used by tables that do not configure one.
//
// NOTE: This only affects newly written snapshots. Existing snapshots are
// self-describing and are opened with the codec named in their header.
var Default Codec = GoJSON{}

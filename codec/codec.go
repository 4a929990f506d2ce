// Package codec centralizes record encoding for snapshots.
//
// Snapshots store the codec name in their header, so a file written with one
// codec can always be opened by selecting the codec by name. Changing the codec
// of a table does not break existing snapshots as long as the old codec is
// still registered.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// MaxNameLen is the longest codec name a snapshot header can hold.
const MaxNameLen = 32

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names returns the names of the built-in codecs.
func Names() []string {
	return []string{"json", "go-json"}
}

package tinydb

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when Remove or Update references a record
	// that is not stored.
	ErrItemNotFound = errors.New("item not found")

	// ErrDupeFound is returned by Add when duplicates are rejected and an
	// equal record is already stored.
	ErrDupeFound = errors.New("duplicate record")

	// ErrSavePathRequired is returned by Dump and Load when no snapshot path
	// can be resolved.
	ErrSavePathRequired = errors.New("save path required")

	// ErrEncode matches every *EncodeError.
	ErrEncode = errors.New("encode snapshot")

	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("decode snapshot")

	// ErrIO matches every *IOError.
	ErrIO = errors.New("snapshot i/o")
)

// IOError indicates that the blob store failed while reading or writing a
// snapshot.
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// EncodeError indicates that the records could not be encoded into a
// snapshot, either because the codec rejected a record or because a record
// does not decode back to an equal value. Nothing is written to the store.
//
// The original underlying error can be accessed via errors.Unwrap.
type EncodeError struct {
	Path  string
	cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.cause)
}

func (e *EncodeError) Unwrap() error { return e.cause }

// Is reports whether target is ErrEncode.
func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// DecodeError indicates that a snapshot was read but its bytes do not form a
// valid record set for the table's record type.
//
// The original underlying error can be accessed via errors.Unwrap.
type DecodeError struct {
	Path  string
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

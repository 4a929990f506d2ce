package tinydb

import (
	"fmt"
	"hash/maphash"
	"strings"
)

// Record is the capability a type needs to be stored in a Table.
//
// Equal defines uniqueness. Hash must agree with it: a.Equal(b) implies
// a.Hash() == b.Hash(). Hashes are only used in memory and never persisted.
//
// Snapshots hold whatever the table's codec encodes. With the JSON codecs only
// exported struct fields are written, so every field Equal compares must be
// exported. Dump fails with ErrEncode for records that do not decode back to
// an equal value.
type Record[T any] interface {
	Hash() uint64
	Equal(other T) bool
}

var seed = maphash.MakeSeed()

// HashOf hashes a comparable key with a process-wide seed.
//
// It lets record types implement Hash in one line:
//
//	func (p Person) Hash() uint64 { return tinydb.HashOf(p.Name) }
func HashOf[K comparable](k K) uint64 {
	return maphash.Comparable(seed, k)
}

// DupePolicy decides what Add does with a record equal to a stored one.
type DupePolicy uint8

const (
	// DupeKeep keeps the stored record and ignores the new one.
	DupeKeep DupePolicy = iota
	// DupeReplace overwrites the stored record with the new one.
	DupeReplace
	// DupeReject fails with ErrDupeFound.
	DupeReject
)

func (p DupePolicy) String() string {
	switch p {
	case DupeKeep:
		return "keep"
	case DupeReplace:
		return "replace"
	case DupeReject:
		return "reject"
	default:
		return fmt.Sprintf("DupePolicy(%d)", uint8(p))
	}
}

// ParseDupePolicy parses "keep", "replace" or "reject".
func ParseDupePolicy(s string) (DupePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return DupeKeep, nil
	case "replace":
		return DupeReplace, nil
	case "reject", "strict":
		return DupeReject, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

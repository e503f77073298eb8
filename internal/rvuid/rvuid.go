// Package rvuid implements content-addressed target identifiers.
//
// An Identifier is a UUIDv5 computed over a file's raw bytes, rendered in a
// base32 alphabet that survives being written down by hand:
//
//	R-HZMH-0W6C-PDCY142E5BEYNC5GGW   full, 128 bits
//	R-HZMH-0W6C                      partial, top 40 bits only
//
// Partial identifiers come from people abbreviating what they copied. They
// compare equal to any identifier sharing their 40-bit prefix, which makes
// equality non-transitive; see Equal.
package rvuid

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
)

const (
	// Marker prefixes every identifier's display form.
	Marker = "R-"

	// PrefixBits is the number of leading bits a partial identifier carries.
	PrefixBits = 40

	prefixBytes = PrefixBits / 8
)

// Namespace seeds the name-based hash: "RV" followed by zero bytes.
var Namespace = uuid.UUID{'R', 'V'}

var (
	// ErrFormat reports malformed identifier text.
	ErrFormat = errors.New("format error")

	// ErrInvariant reports an operation that must never be attempted, such as
	// hashing a partial identifier.
	ErrInvariant = errors.New("invariant violation")
)

// Identifier is immutable once created. The zero value is not a valid
// identifier; use IsZero to detect it.
type Identifier struct {
	value   uuid.UUID
	partial bool
	prefix  uint64
	text    string
}

func newIdentifier(value uuid.UUID, partial bool) Identifier {
	if partial {
		for i := prefixBytes; i < len(value); i++ {
			value[i] = 0
		}
	}
	return Identifier{
		value:   value,
		partial: partial,
		prefix:  prefix40(value),
		text:    encode(value, partial),
	}
}

func prefix40(v uuid.UUID) uint64 {
	return uint64(v[0])<<32 | uint64(v[1])<<24 | uint64(v[2])<<16 | uint64(v[3])<<8 | uint64(v[4])
}

// Derive computes the full identifier of data.
func Derive(data []byte) Identifier {
	return newIdentifier(uuid.NewSHA1(Namespace, data), false)
}

// FromFile reads the whole file at path and derives its identifier.
func FromFile(path string) (Identifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Identifier{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Derive(data), nil
}

// String returns the canonical display form.
func (id Identifier) String() string { return id.text }

// IsZero reports whether id is the zero Identifier.
func (id Identifier) IsZero() bool { return id.text == "" }

// Partial reports whether only the top 40 bits of id are meaningful.
func (id Identifier) Partial() bool { return id.partial }

// Prefix40 returns the top 40 bits.
func (id Identifier) Prefix40() uint64 { return id.prefix }

// UUID returns the underlying 128-bit value. For a partial identifier the
// trailing 88 bits are zero and carry no information.
func (id Identifier) UUID() uuid.UUID { return id.value }

// Truncate returns the partial form of id.
func (id Identifier) Truncate() Identifier {
	if id.partial {
		return id
	}
	return newIdentifier(id.value, true)
}

// Equal compares by 40-bit prefix when either side is partial and by the full
// value otherwise.
//
// The relation is reflexive and symmetric but not transitive: a full A and
// its truncation P are equal, P may equal an unrelated full B that happens to
// share the prefix, and A and B still differ.
func (id Identifier) Equal(other Identifier) bool {
	if id.partial || other.partial {
		return id.prefix == other.prefix
	}
	return id.value == other.value
}

// Key returns the value to use when id is stored in a hashed container.
// A partial identifier has no trustworthy key: hashing its prefix alone would
// silently collide with every identifier sharing that prefix.
func (id Identifier) Key() ([16]byte, error) {
	if id.partial {
		return [16]byte{}, fmt.Errorf("%w: cannot hash partial identifier %s", ErrInvariant, id.text)
	}
	return id.value, nil
}

// MustKey is like Key but panics on a partial identifier.
func (id Identifier) MustKey() [16]byte {
	k, err := id.Key()
	if err != nil {
		panic(err)
	}
	return k
}

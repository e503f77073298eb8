package rvuid

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Alphabet is Crockford-like: digits and capitals without I, L, O and U.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var b32 = base32.NewEncoding(Alphabet).WithPadding(base32.NoPadding)

// encode renders R-XXXX-YYYY-ZZZZZZZZZZZZZZZZZZ for a full value and
// R-XXXX-YYYY for a partial one. Eight symbols hold exactly 40 bits, so the
// partial form is a literal prefix of the full one.
func encode(value uuid.UUID, partial bool) string {
	enc := b32.EncodeToString(value[:])
	if partial {
		return Marker + enc[:4] + "-" + enc[4:8]
	}
	return Marker + enc[:4] + "-" + enc[4:8] + "-" + enc[8:]
}

// Parse decodes a display string. Hyphens after the marker are ignored, so
// regrouped transcriptions still parse. The payload must decode to 16 bytes
// (full) or 5 bytes (partial) and must be the canonical encoding of those
// bytes: unused trailing bits are zero and no other characters appear.
func Parse(s string) (Identifier, error) {
	if !strings.HasPrefix(s, Marker) {
		return Identifier{}, fmt.Errorf("%w: identifier %q must start with %q", ErrFormat, s, Marker)
	}
	raw := strings.ReplaceAll(strings.TrimPrefix(s, Marker), "-", "")
	b, err := b32.DecodeString(raw)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: identifier %q: %v", ErrFormat, s, err)
	}
	if b32.EncodeToString(b) != raw {
		return Identifier{}, fmt.Errorf("%w: identifier %q is not canonically encoded", ErrFormat, s)
	}

	var v uuid.UUID
	switch len(b) {
	case len(v):
		copy(v[:], b)
		return newIdentifier(v, false), nil
	case prefixBytes:
		copy(v[:prefixBytes], b)
		return newIdentifier(v, true), nil
	default:
		return Identifier{}, fmt.Errorf("%w: identifier %q decodes to %d bytes, expected 16 or %d", ErrFormat, s, len(b), prefixBytes)
	}
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.text), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalYAML writes the display string.
func (id Identifier) MarshalYAML() (any, error) {
	return id.text, nil
}

// UnmarshalYAML parses a scalar display string.
func (id *Identifier) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: identifier at line %d must be a string", ErrFormat, node.Line)
	}
	return id.UnmarshalText([]byte(node.Value))
}

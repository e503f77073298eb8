package rvuid

// Set answers "does any member Equal this identifier?" without ever hashing a
// partial identifier. Full members are indexed by Key; every member's prefix
// is indexed separately so partial probes and partial members match by prefix
// only.
//
// A nil *Set is empty.
type Set struct {
	full     map[[16]byte]struct{}
	prefixes map[uint64]struct{}
	partials map[uint64]struct{}
	members  []Identifier
}

// NewSet returns a set holding ids.
func NewSet(ids ...Identifier) *Set {
	s := &Set{
		full:     make(map[[16]byte]struct{}),
		prefixes: make(map[uint64]struct{}),
		partials: make(map[uint64]struct{}),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. Zero identifiers are ignored.
func (s *Set) Add(id Identifier) {
	if id.IsZero() {
		return
	}
	s.members = append(s.members, id)
	s.prefixes[id.prefix] = struct{}{}
	if id.partial {
		s.partials[id.prefix] = struct{}{}
		return
	}
	s.full[id.MustKey()] = struct{}{}
}

// Contains reports whether some member m satisfies m.Equal(id).
func (s *Set) Contains(id Identifier) bool {
	if s == nil || id.IsZero() {
		return false
	}
	if id.partial {
		_, ok := s.prefixes[id.prefix]
		return ok
	}
	if _, ok := s.partials[id.prefix]; ok {
		return true
	}
	_, ok := s.full[id.MustKey()]
	return ok
}

// Len returns the number of members added.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns the members in insertion order.
func (s *Set) Members() []Identifier {
	if s == nil {
		return nil
	}
	out := make([]Identifier, len(s.members))
	copy(out, s.members)
	return out
}

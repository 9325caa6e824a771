package tags

import (
	"math/bits"
	"strconv"
	"strings"
)

// Set is a bitmask over tag indices. Bit i is set when the tag with index i
// is carried. Indices outside [0, MaxTags) are ignored by every method.
type Set uint64

// SetOf builds a set from indices.
func SetOf(indices ...int) Set {
	var s Set
	for _, i := range indices {
		s = s.With(i)
	}
	return s
}

func valid(i int) bool {
	return i >= 0 && i < MaxTags
}

// With returns s with bit i set.
func (s Set) With(i int) Set {
	if !valid(i) {
		return s
	}
	return s | 1<<uint(i)
}

// Without returns s with bit i cleared.
func (s Set) Without(i int) Set {
	if !valid(i) {
		return s
	}
	return s &^ (1 << uint(i))
}

// Toggle returns s with bit i flipped.
func (s Set) Toggle(i int) Set {
	if !valid(i) {
		return s
	}
	return s ^ 1<<uint(i)
}

// Has reports whether bit i is set.
func (s Set) Has(i int) bool {
	return valid(i) && s&(1<<uint(i)) != 0
}

// HasAll reports whether every bit of other is set in s.
func (s Set) HasAll(other Set) bool {
	return s&other == other
}

// HasAny reports whether s and other share a bit.
func (s Set) HasAny(other Set) bool {
	return s&other != 0
}

// HasNone reports whether s and other share no bit.
func (s Set) HasNone(other Set) bool {
	return s&other == 0
}

// Equal reports exact equality.
func (s Set) Equal(other Set) bool {
	return s == other
}

// IsSupersetOf reports whether s carries every tag of other.
func (s Set) IsSupersetOf(other Set) bool {
	return s.HasAll(other)
}

func (s Set) Union(other Set) Set      { return s | other }
func (s Set) Intersect(other Set) Set  { return s & other }
func (s Set) Difference(other Set) Set { return s &^ other }

// Count returns the number of set bits.
func (s Set) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Empty reports whether no bit is set.
func (s Set) Empty() bool {
	return s == 0
}

// Indices returns the set bits in ascending order.
func (s Set) Indices() []int {
	out := make([]int, 0, s.Count())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

func (s Set) String() string {
	idx := s.Indices()
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

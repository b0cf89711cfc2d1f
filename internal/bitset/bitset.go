// Package bitset provides a small growable bitset used for agent/owner
// membership sets (the "bitset of agents that use this value" in a
// Variable's values, and an Operator's owner bitset).
package bitset

import "math/bits"

// Set is a growable bitset of small non-negative integers.
// The zero value is an empty set ready to use.
type Set struct {
	words []uint64
}

// New returns a Set with enough backing storage for bits [0, n).
func New(n int) Set {
	if n <= 0 {
		return Set{}
	}
	return Set{words: make([]uint64, (n+63)/64)}
}

// Set marks bit i as present, growing the backing storage if needed.
func (s *Set) Set(i int) {
	w := i / 64
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= 1 << uint(i%64)
}

// Clear unmarks bit i. A no-op if i is out of the current backing range.
func (s *Set) Clear(i int) {
	w := i / 64
	if w >= len(s.words) {
		return
	}
	s.words[w] &^= 1 << uint(i%64)
}

// Test reports whether bit i is present.
func (s Set) Test(i int) bool {
	w := i / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<uint(i%64)) != 0
}

// Count returns the number of set bits.
func (s Set) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Union returns a new Set containing the union of s and other.
func (s Set) Union(other Set) Set {
	n := len(s.words)
	if len(other.words) > n {
		n = len(other.words)
	}
	out := Set{words: make([]uint64, n)}
	for i := range out.words {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		out.words[i] = a | b
	}
	return out
}

// Intersects reports whether s and other share any set bit.
func (s Set) Intersects(other Set) bool {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Each calls f once per set bit, in ascending order.
func (s Set) Each(f func(i int)) {
	for w, word := range s.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			f(w*64 + b)
			word &= word - 1
		}
	}
}

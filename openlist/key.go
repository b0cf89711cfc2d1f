// Package openlist implements the PriorityQueue (bucket-array-then-heap
// promotion) and the lazy open list, parameterized by a choice of backing
// container (FIFO, bucket, pairing heap, red-black tree, splay tree),
// following spec.md §4.4.
package openlist

// Key is a priority-queue key: a primary integer (the common case — a
// small non-negative f/g/h value) plus an optional tuple of tie-break
// integers, compared lexicographically after Primary. This is the "variant
// [that] supports lexicographic comparison over a fixed-arity key tuple"
// from spec.md §4.4.
type Key struct {
	Primary int64
	Tie     []int64
}

// SimpleKey builds a Key with no tie-break tuple.
func SimpleKey(primary int64) Key { return Key{Primary: primary} }

// Less reports whether a sorts before b: smaller Primary first, then
// lexicographically smaller Tie.
func Less(a, b Key) bool {
	if a.Primary != b.Primary {
		return a.Primary < b.Primary
	}
	n := len(a.Tie)
	if len(b.Tie) < n {
		n = len(b.Tie)
	}
	for i := 0; i < n; i++ {
		if a.Tie[i] != b.Tie[i] {
			return a.Tie[i] < b.Tie[i]
		}
	}
	return len(a.Tie) < len(b.Tie)
}

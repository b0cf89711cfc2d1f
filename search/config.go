// Package search implements the single-agent search kernels: Enforced
// Hill Climbing, Lazy Best-First, and A*, driven through a LazyList, a
// StateSpace map, and a Heuristic (spec.md §4.7).
package search

import "github.com/coregx/planit/openlist"

// PreferredOpsPolicy controls how a kernel uses a heuristic's reported
// preferred operators (spec.md §4.7: "Preferred-operators policy ... None
// | Prefer | Only").
type PreferredOpsPolicy int

const (
	// PreferredOff ignores preferred operators entirely.
	PreferredOff PreferredOpsPolicy = iota
	// PreferredPrefer pushes preferred operators with a lower open-list key.
	PreferredPrefer
	// PreferredOnly discards non-preferred operators during expansion.
	PreferredOnly
)

// Config configures a kernel run: the open-list backing, pathmax
// activation (A* only), and the preferred-operators policy.
type Config struct {
	ListBacking openlist.BackingKind

	// Pathmax enables A*'s pathmax propagation: spec.md §4.7, "when
	// expanding parent p with successor s via op, set
	// h(s) <- max(h(s), h(p) - cost(op))".
	Pathmax bool

	PreferredOps PreferredOpsPolicy

	// PreferredKeyBonus is subtracted from a preferred operator's open-list
	// key by the Lazy kernel when PreferredOps is Prefer, giving it priority
	// over equal-value non-preferred successors (it never changes g or h,
	// only expansion order). AStar does not use it: it keeps the f-value
	// key and breaks ties in favour of preferred successors.
	PreferredKeyBonus int64
}

// DefaultConfig returns the conventional configuration: a bucket-backed
// open list, pathmax off, preferred operators off.
func DefaultConfig() Config {
	return Config{
		ListBacking:       openlist.BucketBackingKind,
		Pathmax:           false,
		PreferredOps:      PreferredOff,
		PreferredKeyBonus: 1,
	}
}

package openlist

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/pool"
)

// Entry is one lazy open-list entry: the parent StateID and the operator
// that, applied to the parent, produces the successor — without the
// successor itself having been computed or inserted into the StatePool yet
// (spec.md §4.4, "Lazy").
type Entry struct {
	Parent pool.StateID
	Op     planit.OpID
}

// BackingKind selects a LazyList's underlying container.
type BackingKind int

const (
	FIFOBackingKind BackingKind = iota
	BucketBackingKind
	HeapBackingKind
	RBTreeBackingKind
	SplayBackingKind
)

// LazyList is the lazy open list: it stores (key, parent, op) triples
// without materializing the successor state at push time, letting the
// search kernel defer StatePool insertion for pruned successors (spec.md
// §4.4, §9).
type LazyList struct {
	backing Backing[Entry]
}

// NewLazyList constructs a LazyList over the chosen backing container.
func NewLazyList(kind BackingKind) *LazyList {
	var b Backing[Entry]
	switch kind {
	case BucketBackingKind:
		b = NewBucketBacking[Entry]()
	case HeapBackingKind:
		b = NewHeapBacking[Entry]()
	case RBTreeBackingKind:
		b = NewRBTreeBacking[Entry]()
	case SplayBackingKind:
		b = NewSplayBacking[Entry]()
	default:
		b = NewFIFOBacking[Entry]()
	}
	return &LazyList{backing: b}
}

// Push enqueues (parent, op) under key.
func (l *LazyList) Push(key Key, parent pool.StateID, op planit.OpID) {
	l.backing.Push(key, Entry{Parent: parent, Op: op})
}

// Pop dequeues the minimum-key entry (or, for the FIFO backing, the
// oldest entry regardless of key).
func (l *LazyList) Pop() (Key, Entry, bool) {
	return l.backing.Pop()
}

// Len returns the number of queued entries.
func (l *LazyList) Len() int { return l.backing.Len() }

// Clear empties the list.
func (l *LazyList) Clear() { l.backing.Clear() }

package pool

// InitFunc initializes a newly-touched attribute element for StateID id.
// It is called at most once per id, the first time that id's element is
// accessed via Attribute.Data (spec.md §4.2, "lazy per-element
// initialization").
type InitFunc[T any] func(el *T, id StateID)

// Attribute is a parallel, grow-on-demand array addressed by StateID, with
// lazy per-element initialization. Pool.State attributes (the StateSpace
// map, applicable-ops caches, heuristic value caches, ...) are all
// Attributes over a shared Pool.
type Attribute[T any] struct {
	data    *SegmentedArray[T]
	touched *SegmentedArray[bool]
	initFn  InitFunc[T]
}

// NewAttribute allocates a new Attribute backed by its own segmented arrays, whose elements are
// lazily initialized with initFn on first access.
func NewAttribute[T any](initFn InitFunc[T]) *Attribute[T] {
	return &Attribute[T]{
		data:    NewSegmentedArray[T](),
		touched: NewSegmentedArray[bool](),
		initFn:  initFn,
	}
}

// Data returns a pointer to the element for id, initializing it first if
// this is the first access. The returned pointer remains valid across
// further growth of the attribute (SegmentedArray never relocates existing
// segments).
func (a *Attribute[T]) Data(id StateID) *T {
	idx := int(id)
	a.data.EnsureLen(idx + 1)
	a.touched.EnsureLen(idx + 1)
	done := a.touched.Get(idx)
	if !*done {
		a.initFn(a.data.Get(idx), id)
		*done = true
	}
	return a.data.Get(idx)
}

// Reset clears all elements and touched-bits, so every Data call
// re-initializes. Used between independent searches that reuse a Pool.
func (a *Attribute[T]) Reset() {
	a.data = NewSegmentedArray[T]()
	a.touched = NewSegmentedArray[bool]()
}

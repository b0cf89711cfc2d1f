package planit

import "sort"

// Fact is a (variable, value) pair: one assignment inside a PartialState.
type Fact struct {
	Var Var
	Val Value
}

// PartialState is a mapping from a subset of variables to values, used for
// operator preconditions, effects, and goals. It is stored as a sorted
// sequence of Facts (var-major) for iteration; pack.Packer.PackPartial
// produces the parallel packed value/mask buffers used by the search
// substrate.
//
// Invariant: Facts is sorted by Var ascending and contains at most one Fact
// per Var (enforced by the constructors in this file).
type PartialState struct {
	Facts []Fact
}

// NewPartialState builds a PartialState from the given facts, sorting them
// by Var and rejecting duplicate-Var assignments with conflicting values.
func NewPartialState(facts ...Fact) (PartialState, error) {
	cp := make([]Fact, len(facts))
	copy(cp, facts)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Var < cp[j].Var })
	for i := 1; i < len(cp); i++ {
		if cp[i].Var == cp[i-1].Var && cp[i].Val != cp[i-1].Val {
			return PartialState{}, &ConflictError{Var: cp[i].Var, A: cp[i-1].Val, B: cp[i].Val}
		}
	}
	cp = dedupSorted(cp)
	return PartialState{Facts: cp}, nil
}

func dedupSorted(facts []Fact) []Fact {
	if len(facts) == 0 {
		return facts
	}
	out := facts[:1]
	for _, f := range facts[1:] {
		if f.Var == out[len(out)-1].Var {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Get returns the value assigned to v and whether v is present.
func (p PartialState) Get(v Var) (Value, bool) {
	i := sort.Search(len(p.Facts), func(i int) bool { return p.Facts[i].Var >= v })
	if i < len(p.Facts) && p.Facts[i].Var == v {
		return p.Facts[i].Val, true
	}
	return 0, false
}

// Len returns the number of assigned variables.
func (p PartialState) Len() int { return len(p.Facts) }

// IsSubsetOfAssignment reports whether every fact in p matches the
// assignment function get: state[v] == x for all (v, x) in p. This is the
// generic form of spec.md §8 invariant 3 ("partial-state subset"), usable
// against either an unpacked assignment or pack.Packer.Contains.
func (p PartialState) IsSubsetOfAssignment(get func(Var) Value) bool {
	for _, f := range p.Facts {
		if get(f.Var) != f.Val {
			return false
		}
	}
	return true
}

// ConflictError reports that a PartialState (or a merge of conditional
// effects, per SPEC_FULL.md §8.1) assigns two different values to the same
// variable.
type ConflictError struct {
	Var  Var
	A, B Value
}

func (e *ConflictError) Error() string {
	return "planit: conflicting assignment to variable"
}

// Package planit implements the search substrate of a factored-representation
// classical and multi-agent automated planner: a bit-packed state pool, a
// successor generator, a family of heuristic evaluators, single-agent search
// kernels (EHC, lazy best-first, A*), and a multi-agent extension that
// replicates the single-agent kernel across cooperating processes.
//
// planit does not parse PDDL, ground lifted operators, or synthesize
// SAS+ invariants — those are the responsibility of an upstream loader
// that produces the Problem this package searches over.
package planit

import "github.com/coregx/planit/internal/bitset"

// Value is a single finite-domain value index within a Variable's range.
type Value uint16

// Var is a finite-domain variable identifier, an index into a Problem's
// Variables slice.
type Var uint16

// NoVar is the sentinel for "no variable" (e.g. an unused ma-privacy slot).
const NoVar Var = 0xFFFF

// ValueInfo describes one value in a Variable's domain.
type ValueInfo struct {
	// Name is an optional human-readable label (e.g. "handempty"). May be empty.
	Name string

	// Private marks this specific value as private (not observable by agents
	// outside UsedBy), independent of the variable's own Private flag.
	Private bool

	// UsedBy is the set of agent IDs whose operators reference this value.
	UsedBy bitset.Set
}

// Variable is a finite-domain variable with range [0, Range) and, for each
// value in that range, a name, a privacy flag, and the set of agents that
// use it.
type Variable struct {
	// Name is the variable's human-readable identifier (e.g. "at-truck1").
	Name string

	// Values holds one ValueInfo per value in [0, Range).
	Values []ValueInfo

	// Private marks the variable itself as private in multi-agent mode.
	// A variable is public iff more than one agent's operators mention it.
	Private bool

	// MAPrivacy marks this as the distinguished ma-privacy variable, which
	// reserves a whole packed machine word to identify the private
	// sub-state of other agents. At most one Variable in a Problem may set
	// this.
	MAPrivacy bool
}

// Range returns the size of the variable's domain, i.e. the number of
// legal values in [0, Range).
func (v *Variable) Range() int {
	return len(v.Values)
}

// ValueName returns the name of value val, or "" if val is out of range or
// unnamed.
func (v *Variable) ValueName(val Value) string {
	if int(val) >= len(v.Values) {
		return ""
	}
	return v.Values[val].Name
}

// BitsNeeded returns the number of bits required to represent this
// variable's domain: ceil(log2(max(2, Range))).
func (v *Variable) BitsNeeded() int {
	return bitsForRange(v.Range())
}

// bitsForRange computes ceil(log2(max(2, r))), the packer's per-variable
// bit-width formula from spec.md §4.1.
func bitsForRange(r int) int {
	if r < 2 {
		r = 2
	}
	bits := 0
	n := 1
	for n < r {
		n <<= 1
		bits++
	}
	return bits
}

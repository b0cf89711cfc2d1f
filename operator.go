package planit

import "github.com/coregx/planit/internal/bitset"

// OpID is a globally unique operator identifier, an index into a Problem's
// Operators slice.
type OpID uint32

// NoOwner marks an operator as having no single distinguished owner (used
// in single-agent mode, or for operators with more than one owner).
const NoOwner = -1

// CondEffect is a conditional effect: Effect applies only when Cond holds
// in the state the operator is being applied to.
type CondEffect struct {
	Cond   PartialState
	Effect PartialState
}

// Operator is a grounded action: name, preconditions, unconditional and
// conditional effects, cost, and (for multi-agent problems) an owning
// agent, an owner bitset, and a privacy flag.
//
// Operators are packed against a pack.Packer before search and never
// mutated afterward (spec.md §3, "Operator lifecycle").
type Operator struct {
	// Name is the operator's human-readable identifier, used verbatim as
	// the plan-file line "(<Name>)" (spec.md §6).
	Name string

	// ID is this operator's globally unique identifier.
	ID OpID

	Precond PartialState
	Effect  PartialState // unconditional effects

	CondEffects []CondEffect

	// Cost is the non-negative action cost added to g when this operator
	// is applied.
	Cost uint32

	// Owner is the agent ID that owns this operator, or NoOwner.
	Owner int

	// Owners is the bitset of all agents that may apply this operator.
	Owners bitset.Set

	// Private marks the operator as private: an operator is public iff it
	// touches any public fact (spec.md GLOSSARY).
	Private bool

	// SendAgents is the set of peer agent IDs that should receive a
	// public_state message when this operator is the one that generated
	// the successor (spec.md §4.8).
	SendAgents bitset.Set
}

// NewOperator validates and returns an Operator, rejecting conditional
// effects that conflict with each other or with the unconditional effect
// under an identical condition (SPEC_FULL.md §8.1, resolving the Open
// Question in spec.md §9: "implementations should reject conflicting
// merged effects").
func NewOperator(name string, id OpID, precond, effect PartialState, condEffects []CondEffect, cost uint32) (*Operator, error) {
	if err := checkCondEffectConflicts(effect, condEffects); err != nil {
		return nil, err
	}
	return &Operator{
		Name:        name,
		ID:          id,
		Precond:     precond,
		Effect:      effect,
		CondEffects: condEffects,
		Cost:        cost,
		Owner:       NoOwner,
	}, nil
}

// checkCondEffectConflicts groups conditional effects by identical Cond
// (the case spec.md §9 calls out: "multiple conditional effects with
// identical conditions" that some implementations silently union) and
// rejects any group of two or more whose effects disagree on a variable's
// value, or disagree with the unconditional Effect. A conditional effect
// whose Cond is shared with no other is not checked against Effect.
func checkCondEffectConflicts(effect PartialState, condEffects []CondEffect) error {
	type key struct{ idx int }
	groups := map[string][]int{}
	for i, ce := range condEffects {
		k := condKey(ce.Cond)
		groups[k] = append(groups[k], i)
	}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		merged := map[Var]Value{}
		for _, f := range effect.Facts {
			merged[f.Var] = f.Val
		}
		for _, i := range idxs {
			for _, f := range condEffects[i].Effect.Facts {
				if prev, ok := merged[f.Var]; ok && prev != f.Val {
					return &ConflictError{Var: f.Var, A: prev, B: f.Val}
				}
				merged[f.Var] = f.Val
			}
		}
	}
	return nil
}

func condKey(p PartialState) string {
	// Cond is already sorted/deduped by NewPartialState; a simple
	// fixed-width encoding is enough to distinguish condition sets used as
	// a map key here (not a wire format).
	b := make([]byte, 0, len(p.Facts)*4)
	for _, f := range p.Facts {
		b = append(b, byte(f.Var), byte(f.Var>>8), byte(f.Val), byte(f.Val>>8))
	}
	return string(b)
}

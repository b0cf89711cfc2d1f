package heuristic

import "github.com/coregx/planit"

// factID is a flat index over every (Var, Value) pair in a Problem,
// assigned by cumulative offset per variable. The delete-relaxation
// heuristics and LM-Cut work over this flattened fact space rather than
// the packed-word representation, since the relaxed planning graph treats
// every (var, val) as an independent boolean proposition regardless of
// what a packed state can simultaneously represent.
type factID int

// factTable flattens a Problem's (Var, Value) space into dense factIDs and
// precomputes, for every operator, the relaxed "actions" that achieve
// facts: one action per operator's unconditional effect, plus one action
// per conditional effect (spec.md §4.6's relaxation family operates on
// "a delete-relaxed task").
//
// Conditional effects are modeled as separate zero-cost actions whose
// precondition is the operator's precondition unioned with the effect's
// condition; cost lives on the unconditional-effect action only, so an
// operator's cost is never counted twice across its conditional branches.
// This is a standard simplification of delete-relaxation with conditional
// effects (see DESIGN.md).
type factTable struct {
	offsets []int // offsets[v] is the first factID for variable v
	numFacts int

	actions []relaxAction

	// preToActions[f] lists the indices into actions that have f as a
	// precondition fact.
	preToActions [][]int
}

type relaxAction struct {
	pre  []factID
	add  []factID
	cost int64
	op   planit.OpID
}

func (t *factTable) fact(v planit.Var, val planit.Value) factID {
	return factID(t.offsets[v] + int(val))
}

func (t *factTable) factsOf(ps planit.PartialState) []factID {
	out := make([]factID, len(ps.Facts))
	for i, f := range ps.Facts {
		out[i] = t.fact(f.Var, f.Val)
	}
	return out
}

// buildFactTable enumerates the problem's fact space and relaxed actions.
func buildFactTable(problem *planit.Problem) *factTable {
	t := &factTable{offsets: make([]int, len(problem.Variables))}
	total := 0
	for i, v := range problem.Variables {
		t.offsets[i] = total
		total += v.Range()
	}
	t.numFacts = total

	for _, op := range problem.Operators {
		pre := t.factsOf(op.Precond)
		if len(op.Effect.Facts) > 0 {
			t.actions = append(t.actions, relaxAction{
				pre:  pre,
				add:  t.factsOf(op.Effect),
				cost: int64(op.Cost),
				op:   op.ID,
			})
		}
		for _, ce := range op.CondEffects {
			combined := append(append([]planit.Fact(nil), op.Precond.Facts...), ce.Cond.Facts...)
			combinedPS, err := planit.NewPartialState(combined...)
			if err != nil {
				// Precond and Cond assign the same variable two different
				// values: an action whose precondition can never be
				// satisfied. Skip it rather than building a malformed
				// entry; it simply never contributes to the relaxed graph.
				continue
			}
			t.actions = append(t.actions, relaxAction{
				pre:  t.factsOf(combinedPS),
				add:  t.factsOf(ce.Effect),
				cost: 0,
				op:   op.ID,
			})
		}
	}

	t.preToActions = make([][]int, t.numFacts)
	for ai, a := range t.actions {
		for _, f := range a.pre {
			t.preToActions[f] = append(t.preToActions[f], ai)
		}
	}
	return t
}

// stateFacts returns the factIDs true under get, one per variable.
func (t *factTable) stateFacts(problem *planit.Problem, get func(planit.Var) planit.Value) []factID {
	out := make([]factID, len(problem.Variables))
	for v := range problem.Variables {
		out[v] = t.fact(planit.Var(v), get(planit.Var(v)))
	}
	return out
}

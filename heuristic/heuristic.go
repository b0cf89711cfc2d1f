// Package heuristic implements the heuristic-evaluator family: goal-count,
// delete-relaxation (additive, max, FF), LM-Cut landmarks, network-flow LP,
// and potential-function LP, all operating on packed states borrowed from a
// pool.Pool (spec.md §4.6).
package heuristic

import (
	"math"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// DeadEnd is the sentinel heuristic value for "no path to the goal exists"
// (spec.md §3, "h ... nonneg integer or DEAD_END=inf"; §4.6 numeric
// semantics, "DEAD_END = INT_MAX on any infeasibility or unreachable
// goal"). It matches statespace.DeadEnd by value without importing
// statespace, keeping heuristic free of a dependency on the search layer.
const DeadEnd int64 = math.MaxInt64

// Result is the evaluate() contract shared by every heuristic: a value,
// an optional set of preferred operators, and an optional landmark-set
// ID (spec.md §4.6: "evaluate(state) -> (h, [preferred_ops],
// [landmark_set_id])").
type Result struct {
	H int64

	// PreferredOps is non-nil only for heuristics that compute a relaxed
	// plan (FF) or landmark cuts (LM-Cut); nil otherwise.
	PreferredOps []planit.OpID

	// LandmarkSetID is set by LM-Cut to the number of landmark cuts found
	// for the state; zero for every other heuristic. No cache is keyed by it.
	LandmarkSetID int64
}

// Heuristic evaluates packed states drawn from a pool.Pool against a fixed
// Problem and Packer, established once at construction time.
type Heuristic interface {
	Evaluate(id pool.StateID) Result
}

// context bundles the read-only inputs every heuristic implementation
// closes over: the problem being solved, the packer that built its
// StatePool, and the pool itself (for Unpack).
type context struct {
	problem *planit.Problem
	packer  *pack.Packer
	pool    *pool.Pool
}

func newContext(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) context {
	return context{problem: problem, packer: packer, pool: p}
}

// assignment returns a getter closure over id's unpacked values, suitable
// for PartialState.IsSubsetOfAssignment and Problem.IsGoal.
func (c context) assignment(id pool.StateID) func(planit.Var) planit.Value {
	vals := c.pool.Unpack(id)
	return func(v planit.Var) planit.Value { return vals[v] }
}

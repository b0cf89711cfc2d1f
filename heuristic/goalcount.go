package heuristic

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// GoalCount counts unsatisfied goal facts: the simplest, cheapest, and
// least informed heuristic in the family (spec.md §4.6, "Goal-count:
// number of unsatisfied goal atoms"). It is not admissible in general.
type GoalCount struct {
	ctx  context
	goal planit.PartialState
}

// NewGoalCount builds a GoalCount heuristic over problem, packed with packer
// and evaluated against states drawn from p.
func NewGoalCount(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) *GoalCount {
	return &GoalCount{ctx: newContext(problem, packer, p), goal: problem.Goal}
}

// Evaluate returns the number of goal facts not satisfied by id's state.
func (g *GoalCount) Evaluate(id pool.StateID) Result {
	get := g.ctx.assignment(id)
	var unsat int64
	for _, f := range g.goal.Facts {
		if get(f.Var) != f.Val {
			unsat++
		}
	}
	return Result{H: unsat}
}

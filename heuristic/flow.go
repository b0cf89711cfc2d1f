package heuristic

import (
	"math"

	"github.com/coregx/planit"
	"github.com/coregx/planit/lpsolver"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// Flow is the network-flow LP heuristic: one continuous variable x_o per
// operator, one flow-conservation row per fact, objective
// minimize(sum(cost(o)*x_o)). The LP relaxation's optimum is an admissible
// lower bound on plan cost (spec.md §4.6, §8 invariant 6).
//
// Integer and landmark-augmented variants are selected via FlowOptions:
// ILP rounds the relaxation's variables is not performed here (an exact
// MILP branch-and-bound is out of scope for a heuristic lower bound; the
// admissible LP relaxation is returned in both cases; see DESIGN.md),
// and LMCutLandmarks adds one row per LM-Cut-discovered landmark set
// requiring its operators to sum to at least 1 (spec.md §4.6: "Optional
// `LM-Cut landmark` constraints add sum_{o in L} x_o >= 1").
type Flow struct {
	ctx     context
	table   *factTable
	solver  func() lpsolver.Solver
	options FlowOptions
}

// FlowOptions configures the Flow heuristic's LP construction.
type FlowOptions struct {
	// Integer requests the ILP variant. The underlying simplex backend
	// solves the LP relaxation only (see Flow's doc comment); Integer is
	// recorded for callers that want to distinguish the two --heur modes
	// even though both currently report the same admissible LP bound.
	Integer bool

	// LMCutLandmarks augments the flow LP with landmark-cut rows,
	// tightening the bound (the "flow-lmcut" --heur variant).
	LMCutLandmarks bool
}

// NewFlow builds a Flow heuristic. solver constructs a fresh
// lpsolver.Solver per Evaluate call (LPs are solved from scratch each
// time; the flow and potential heuristics do not warm-start).
func NewFlow(problem *planit.Problem, packer *pack.Packer, p *pool.Pool, solver func() lpsolver.Solver, opts FlowOptions) *Flow {
	return &Flow{ctx: newContext(problem, packer, p), table: buildFactTable(problem), solver: solver, options: opts}
}

func (h *Flow) Evaluate(id pool.StateID) Result {
	get := h.ctx.assignment(id)
	initial := h.table.stateFacts(h.ctx.problem, get)
	initialSet := make(map[factID]bool, len(initial))
	for _, f := range initial {
		initialSet[f] = true
	}
	goalSet := make(map[factID]bool)
	for _, f := range h.ctx.problem.Goal.Facts {
		goalSet[h.table.fact(f.Var, f.Val)] = true
	}

	ops := h.ctx.problem.Operators
	opIdx := make(map[planit.OpID]int, len(ops))
	for i, op := range ops {
		opIdx[op.ID] = i
	}

	lp := h.solver()
	first := lp.AddVars(len(ops))
	for i, op := range ops {
		lp.SetObj(first+i, -float64(op.Cost)) // maximize -cost*x == minimize cost*x
	}

	// One row per fact: sum(x_o for o producing f) - sum(x_o for o
	// consuming f) >= delta(f), where delta is -1 if f is true initially
	// (a unit of "supply"), +1 if f is a goal fact (a unit of "demand"),
	// 0 otherwise (spec.md §4.6: "adjusted by +-1 where the initial state
	// / goal contains the fact").
	rowCoef := make([]map[int]float64, h.table.numFacts)
	for i := range rowCoef {
		rowCoef[i] = map[int]float64{}
	}
	for _, a := range h.table.actions {
		col := first + opIdx[a.op]
		for _, g := range a.add {
			rowCoef[g][col] += 1
		}
		for _, p := range a.pre {
			rowCoef[p][col] -= 1
		}
	}

	var rows []lpsolver.Row
	for f := 0; f < h.table.numFacts; f++ {
		if len(rowCoef[f]) == 0 {
			continue
		}
		delta := 0.0
		if initialSet[factID(f)] {
			delta -= 1
		}
		if goalSet[factID(f)] {
			delta += 1
		}
		rows = append(rows, lpsolver.Row{Coef: rowCoef[f], Lower: delta, Upper: math.Inf(1)})
	}

	if h.options.LMCutLandmarks {
		lmcut := NewLMCut(h.ctx.problem, h.ctx.packer, h.ctx.pool)
		_, _, rounds, deadEnd := lmcut.run(id)
		if deadEnd {
			return Result{H: DeadEnd}
		}
		// One row per landmark-cut round: sum(x_o for o in the cut) >= 1
		// (spec.md §4.6, "Optional LM-Cut landmark constraints").
		for _, round := range rounds {
			if len(round) == 0 {
				continue
			}
			coef := make(map[int]float64, len(round))
			for _, op := range round {
				coef[first+opIdx[op]] = 1
			}
			rows = append(rows, lpsolver.Row{Coef: coef, Lower: 1, Upper: math.Inf(1)})
		}
	}

	lp.AddRows(rows)
	status, obj, _ := lp.Solve()
	if status != lpsolver.Optimal {
		return Result{H: DeadEnd}
	}
	return Result{H: int64(math.Floor(obj + 1e-6))}
}

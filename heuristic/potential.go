package heuristic

import (
	"math"

	"github.com/coregx/planit"
	"github.com/coregx/planit/lpsolver"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// Potential is the potential-function LP heuristic: a one-shot offline LP
// assigns each fact a weight P(var,val) maximizing sum(P(f)) subject to,
// for every operator, sum(P(pre)) - sum(P(post)) <= cost(o); at query
// time h(s) = sum_v P(v, s[v]) (spec.md §4.6).
//
// AllSyntacticStates controls which states the offline LP is built to be
// valid over: false restricts the LP's objective to the initial state's
// facts only (the "potential heuristic, initial-state-only" variant),
// true keeps every syntactic fact in the objective (the
// "all-syntactic-states" variant, giving a potential function valid at
// every reachable state, not just along paths from the initial state).
type Potential struct {
	ctx    context
	table  *factTable
	potent []float64 // per-factID weight, solved once at construction
	dead   bool
}

// PotentialOptions selects the offline LP's objective scope.
type PotentialOptions struct {
	AllSyntacticStates bool
}

// NewPotential solves the offline potential LP once against problem's
// initial state (the goal is not used), then returns a Potential heuristic that
// evaluates in O(|Variables|) per query.
func NewPotential(problem *planit.Problem, packer *pack.Packer, p *pool.Pool, solver lpsolver.Solver, opts PotentialOptions) *Potential {
	table := buildFactTable(problem)
	h := &Potential{ctx: newContext(problem, packer, p), table: table}

	first := solver.AddVars(table.numFacts)
	for f := 0; f < table.numFacts; f++ {
		solver.SetBounds(first+f, math.Inf(-1), math.Inf(1))
	}

	if opts.AllSyntacticStates {
		for f := 0; f < table.numFacts; f++ {
			solver.SetObj(first+f, 1)
		}
	} else {
		for _, f := range table.stateFacts(problem, func(v planit.Var) planit.Value {
			val, _ := problem.Initial.Get(v)
			return val
		}) {
			solver.SetObj(first+int(f), 1)
		}
	}

	var rows []lpsolver.Row
	for _, op := range problem.Operators {
		coef := map[int]float64{}
		for _, fact := range op.Precond.Facts {
			coef[first+int(table.fact(fact.Var, fact.Val))] += 1
		}
		for _, fact := range op.Effect.Facts {
			coef[first+int(table.fact(fact.Var, fact.Val))] -= 1
		}
		if len(coef) == 0 {
			continue
		}
		rows = append(rows, lpsolver.Row{Coef: coef, Lower: math.Inf(-1), Upper: float64(op.Cost)})
	}
	solver.AddRows(rows)

	status, _, x := solver.Solve()
	if status != lpsolver.Optimal {
		h.dead = true
		return h
	}
	h.potent = make([]float64, table.numFacts)
	copy(h.potent, x[first:first+table.numFacts])
	return h
}

func (h *Potential) Evaluate(id pool.StateID) Result {
	if h.dead {
		return Result{H: DeadEnd}
	}
	get := h.ctx.assignment(id)
	var sum float64
	for v := range h.ctx.problem.Variables {
		sum += h.potent[h.table.fact(planit.Var(v), get(planit.Var(v)))]
	}
	if sum < 0 {
		sum = 0
	}
	return Result{H: int64(math.Floor(sum + 1e-6))}
}

package heuristic

import (
	"container/heap"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// aggMode selects how a relaxed action's preconditions combine into its
// own value: sum (additive heuristic) or max (max heuristic), per
// spec.md §4.6: "AGG is sum (add), max (max), or the FF-specific
// relaxed-plan-extract".
type aggMode int

const (
	aggAdd aggMode = iota
	aggMax
)

// relaxedFixpoint runs the shared Dijkstra-style fixed point used by the
// add, max, and FF heuristics: it settles facts in non-decreasing value
// order, firing each relaxed action the moment its last precondition
// settles. Returns the settled per-fact value array and, for every
// action, the fact that triggered it (needed by FF's backward relaxed
// plan extraction) and the final action value.
func relaxedFixpoint(t *factTable, initial []factID, mode aggMode) (factVal []int64, actionVal []int64, trigger []factID) {
	factVal = make([]int64, t.numFacts)
	for i := range factVal {
		factVal[i] = DeadEnd
	}
	actionVal = make([]int64, len(t.actions))
	trigger = make([]factID, len(t.actions))
	remaining := make([]int, len(t.actions))
	acc := make([]int64, len(t.actions))
	for i, a := range t.actions {
		remaining[i] = len(a.pre)
	}

	pq := &factPQ{}
	heap.Init(pq)
	settled := make([]bool, t.numFacts)

	relaxFact := func(f factID, val int64) {
		if val < factVal[f] {
			factVal[f] = val
			heap.Push(pq, pqItem{val: val, fact: f})
		}
	}

	for _, f := range initial {
		relaxFact(f, 0)
	}

	// Actions with no preconditions fire unconditionally at their cost.
	for ai, a := range t.actions {
		if remaining[ai] == 0 {
			actionVal[ai] = a.cost
			for _, g := range a.add {
				relaxFact(g, a.cost)
			}
		}
	}

	for pq.Len() > 0 {
		it := heap.Pop(pq).(pqItem)
		if settled[it.fact] || it.val > factVal[it.fact] {
			continue
		}
		settled[it.fact] = true
		for _, ai := range t.preToActions[it.fact] {
			if remaining[ai] == 0 {
				continue // already fired (can happen via duplicate pre entries)
			}
			switch mode {
			case aggAdd:
				acc[ai] += it.val
			case aggMax:
				if it.val > acc[ai] {
					acc[ai] = it.val
				}
			}
			trigger[ai] = it.fact
			remaining[ai]--
			if remaining[ai] == 0 {
				a := t.actions[ai]
				val := acc[ai] + a.cost
				actionVal[ai] = val
				for _, g := range a.add {
					relaxFact(g, val)
				}
			}
		}
	}
	return factVal, actionVal, trigger
}

type pqItem struct {
	val  int64
	fact factID
}

type factPQ []pqItem

func (q factPQ) Len() int            { return len(q) }
func (q factPQ) Less(i, j int) bool  { return q[i].val < q[j].val }
func (q factPQ) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *factPQ) Push(x interface{}) { *q = append(*q, x.(pqItem)) }
func (q *factPQ) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// goalValue aggregates factVal over the problem's goal facts under mode.
func goalValue(t *factTable, goal planit.PartialState, factVal []int64, mode aggMode) int64 {
	var h int64
	first := true
	for _, f := range goal.Facts {
		v := factVal[t.fact(f.Var, f.Val)]
		if v == DeadEnd {
			return DeadEnd
		}
		switch mode {
		case aggAdd:
			h += v
		case aggMax:
			if first || v > h {
				h = v
			}
			first = false
		}
	}
	return h
}

// Additive is the h_add delete-relaxation heuristic: not admissible, but
// cheap and informative (spec.md §4.6).
type Additive struct {
	ctx   context
	table *factTable
}

// NewAdditive builds an Additive heuristic over problem.
func NewAdditive(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) *Additive {
	return &Additive{ctx: newContext(problem, packer, p), table: buildFactTable(problem)}
}

func (a *Additive) Evaluate(id pool.StateID) Result {
	get := a.ctx.assignment(id)
	initial := a.table.stateFacts(a.ctx.problem, get)
	factVal, _, _ := relaxedFixpoint(a.table, initial, aggAdd)
	return Result{H: goalValue(a.table, a.ctx.problem.Goal, factVal, aggAdd)}
}

// Max is the h_max delete-relaxation heuristic: admissible (spec.md §4.6,
// §8 invariant 6).
type Max struct {
	ctx   context
	table *factTable
}

// NewMax builds a Max heuristic over problem.
func NewMax(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) *Max {
	return &Max{ctx: newContext(problem, packer, p), table: buildFactTable(problem)}
}

func (m *Max) Evaluate(id pool.StateID) Result {
	get := m.ctx.assignment(id)
	initial := m.table.stateFacts(m.ctx.problem, get)
	factVal, _, _ := relaxedFixpoint(m.table, initial, aggMax)
	return Result{H: goalValue(m.table, m.ctx.problem.Goal, factVal, aggMax)}
}

// FF is the FF heuristic: an h_add-style fixed point followed by backward
// relaxed-plan extraction, counting the unique operators used as h and
// reporting them as preferred operators when their precondition holds in
// the current state (spec.md §4.6).
type FF struct {
	ctx   context
	table *factTable
}

// NewFF builds an FF heuristic over problem.
func NewFF(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) *FF {
	return &FF{ctx: newContext(problem, packer, p), table: buildFactTable(problem)}
}

func (f *FF) Evaluate(id pool.StateID) Result {
	get := f.ctx.assignment(id)
	initial := f.table.stateFacts(f.ctx.problem, get)
	factVal, actionVal, trigger := relaxedFixpoint(f.table, initial, aggAdd)

	initialSet := make(map[factID]bool, len(initial))
	for _, fid := range initial {
		initialSet[fid] = true
	}

	// bestSupporter maps each fact fid to, among the actions achieving it,
	// the cheapest one that actually fired (actionVal recorded), breaking
	// ties by lowest action index for determinism.
	bestSupporter := make(map[factID]int, f.table.numFacts)
	for ai, a := range f.table.actions {
		fired := true
		for _, pre := range a.pre {
			if factVal[pre] == DeadEnd {
				fired = false
				break
			}
		}
		if !fired {
			continue
		}
		for _, g := range a.add {
			if initialSet[g] {
				continue
			}
			cur, ok := bestSupporter[g]
			if !ok || actionVal[ai] < actionVal[cur] {
				bestSupporter[g] = ai
			}
		}
	}

	usedOps := make(map[planit.OpID]bool)
	opSeen := make(map[int]bool)
	var extract func(fid factID)
	extract = func(fid factID) {
		if initialSet[fid] {
			return
		}
		ai, ok := bestSupporter[fid]
		if !ok || opSeen[ai] {
			return
		}
		opSeen[ai] = true
		usedOps[f.table.actions[ai].op] = true
		for _, pre := range f.table.actions[ai].pre {
			extract(pre)
		}
		_ = trigger // trigger retained for potential tie-breaking refinements
	}

	dead := false
	for _, gf := range f.ctx.problem.Goal.Facts {
		fid := f.table.fact(gf.Var, gf.Val)
		if factVal[fid] == DeadEnd {
			dead = true
			break
		}
		extract(fid)
	}
	if dead {
		return Result{H: DeadEnd}
	}

	var preferred []planit.OpID
	for _, op := range f.ctx.problem.Operators {
		if usedOps[op.ID] && op.Precond.IsSubsetOfAssignment(get) {
			preferred = append(preferred, op.ID)
		}
	}
	return Result{H: int64(len(usedOps)), PreferredOps: preferred}
}

package heuristic

import (
	"container/heap"
	"math"
	"strings"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// noLMCutOp marks a synthetic init/goal action as not corresponding to any
// real operator, so it can never end up in a reported landmark set.
const noLMCutOp = planit.OpID(math.MaxUint32)

// lmcutAction is a working copy of a relaxAction with a mutable cost, used
// across LM-Cut's iterative cost-reduction rounds without disturbing the
// shared factTable.
type lmcutAction struct {
	pre  []factID
	add  []factID
	cost int64
	op   planit.OpID
}

// LMCut computes admissible landmarks by iteratively extracting zero-cost
// justification-graph cuts from the delete-relaxed task's h_max labeling,
// following spec.md §4.6: "While h_max > 0: build the justification graph
// using each fact's best supporter under h_max; the cut is the set of
// operators on the frontier of 0-cost reachable states from the goal;
// subtract min cost in the cut from every operator in the cut, add it to
// h."
type LMCut struct {
	ctx      context
	table    *factTable
	goalFact factID
}

// NewLMCut builds an LM-Cut heuristic over problem.
func NewLMCut(problem *planit.Problem, packer *pack.Packer, p *pool.Pool) *LMCut {
	t := buildFactTable(problem)
	return &LMCut{ctx: newContext(problem, packer, p), table: t, goalFact: factID(t.numFacts)}
}

// Evaluate computes the LM-Cut bound at id, reporting the real operators
// encountered across every round's cut as PreferredOps (spec.md §4.6:
// "operators in the relaxed plan... are reported as preferred operators";
// for LM-Cut, every landmark-cut operator is preferred since each cut must
// be crossed by any plan).
func (l *LMCut) Evaluate(id pool.StateID) Result {
	h, landmarkSets, rounds, deadEnd := l.run(id)
	if deadEnd {
		return Result{H: DeadEnd}
	}
	var preferred []planit.OpID
	seen := make(map[planit.OpID]bool)
	for _, round := range rounds {
		for _, op := range round {
			if !seen[op] {
				seen[op] = true
				preferred = append(preferred, op)
			}
		}
	}
	return Result{H: h, LandmarkSetID: landmarkSets, PreferredOps: preferred}
}

// Explain returns a human-readable description of the landmark cuts
// discovered while evaluating id, one clause per 0-cost-cut round naming
// the real operators in that round's cut (spec.md §4.6, "the cut is the
// set of operators on the frontier of 0-cost reachable states"). It is a
// diagnostic aid for cmd/planit's -explain-landmarks flag, not used by search itself:
// LandmarkIndex.Describe cross-references this prose against the
// problem's real operator names.
func (l *LMCut) Explain(id pool.StateID) string {
	_, _, rounds, deadEnd := l.run(id)
	if deadEnd {
		return "dead end: no landmark cut reaches the goal"
	}
	if len(rounds) == 0 {
		return "no landmarks: goal already satisfied"
	}
	var b strings.Builder
	b.WriteString("plan must include, for each landmark: ")
	for i, round := range rounds {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString("at least one of ")
		names := make([]string, len(round))
		for j, op := range round {
			names[j] = l.ctx.problem.Operators[op].Name
		}
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

// run computes the iterative LM-Cut fixpoint over id, returning the
// admissible bound, the number of landmark sets found, and, per round,
// the real (non-synthetic) operators in that round's cut.
func (l *LMCut) run(id pool.StateID) (h int64, landmarkSets int64, rounds [][]planit.OpID, deadEnd bool) {
	get := l.ctx.assignment(id)
	initial := l.table.stateFacts(l.ctx.problem, get)
	initialSet := make(map[factID]bool, len(initial))
	for _, f := range initial {
		initialSet[f] = true
	}

	numFacts := l.table.numFacts + 1 // + synthetic goal fact
	actions := make([]lmcutAction, 0, len(l.table.actions)+len(initial)+1)
	for _, a := range l.table.actions {
		actions = append(actions, lmcutAction{pre: a.pre, add: a.add, cost: a.cost, op: a.op})
	}
	for _, f := range initial {
		actions = append(actions, lmcutAction{pre: nil, add: []factID{f}, cost: 0, op: noLMCutOp})
	}
	goalPre := l.table.factsOf(l.ctx.problem.Goal)
	actions = append(actions, lmcutAction{pre: goalPre, add: []factID{l.goalFact}, cost: 0, op: noLMCutOp})

	preToActions := make([][]int, numFacts)
	for ai, a := range actions {
		for _, f := range a.pre {
			preToActions[f] = append(preToActions[f], ai)
		}
	}

	for iter := 0; ; iter++ {
		factVal, supporter := lmMaxFixpoint(numFacts, actions, preToActions)
		if factVal[l.goalFact] == DeadEnd {
			return 0, 0, nil, true
		}
		if factVal[l.goalFact] == 0 {
			break
		}

		goalZone := make(map[factID]bool)
		stack := []factID{l.goalFact}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if goalZone[f] {
				continue
			}
			goalZone[f] = true
			sa := supporter[f]
			if sa < 0 {
				continue
			}
			if actions[sa].cost == 0 {
				stack = append(stack, actions[sa].pre...)
			}
		}

		n0 := make(map[factID]bool)
		var queue []factID
		for f := 0; f < numFacts; f++ {
			if factVal[f] == 0 && !goalZone[factID(f)] {
				queue = append(queue, factID(f))
			}
		}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			if n0[f] || goalZone[f] {
				continue
			}
			n0[f] = true
			for _, ai := range preToActions[f] {
				crossesZone := false
				for _, p := range actions[ai].pre {
					if goalZone[p] {
						crossesZone = true
						break
					}
				}
				if crossesZone {
					continue
				}
				for _, g := range actions[ai].add {
					if !n0[g] && !goalZone[g] {
						queue = append(queue, g)
					}
				}
			}
		}

		var cut []int
		minCost := int64(DeadEnd)
		for ai, a := range actions {
			inN0 := len(a.pre) == 0 // fires unconditionally, treated as sourced from N0
			for _, p := range a.pre {
				if n0[p] {
					inN0 = true
					break
				}
			}
			if !inN0 {
				continue
			}
			inGoalZone := false
			for _, g := range a.add {
				if goalZone[g] {
					inGoalZone = true
					break
				}
			}
			if !inGoalZone {
				continue
			}
			cut = append(cut, ai)
			if a.cost < minCost {
				minCost = a.cost
			}
		}
		if len(cut) == 0 || minCost == 0 {
			// Numerical/structural degeneracy guard: without a strictly
			// positive cut we cannot make progress, so stop rather than
			// loop forever. Correct inputs never reach this branch.
			break
		}
		h += minCost
		landmarkSets++
		var round []planit.OpID
		for _, ai := range cut {
			actions[ai].cost -= minCost
			if op := actions[ai].op; op != noLMCutOp {
				round = append(round, op)
			}
		}
		rounds = append(rounds, round)
	}

	return h, landmarkSets, rounds, false
}

// lmMaxFixpoint runs the h_max fixed point over actions/preToActions from
// scratch (costs may have changed between LM-Cut rounds, so this is not
// shared with relaxedFixpoint's factTable-bound version) and additionally
// records, for each fact, the action whose firing first set its final
// value — the "best supporter" the justification graph is built from.
func lmMaxFixpoint(numFacts int, actions []lmcutAction, preToActions [][]int) (factVal []int64, supporter []int) {
	factVal = make([]int64, numFacts)
	supporter = make([]int, numFacts)
	for i := range factVal {
		factVal[i] = DeadEnd
		supporter[i] = -1
	}
	remaining := make([]int, len(actions))
	for i, a := range actions {
		remaining[i] = len(a.pre)
	}

	pq := &factPQ{}
	heap.Init(pq)
	settled := make([]bool, numFacts)

	relax := func(f factID, val int64, via int) {
		if val < factVal[f] {
			factVal[f] = val
			supporter[f] = via
			heap.Push(pq, pqItem{val: val, fact: f})
		}
	}

	for ai, a := range actions {
		if remaining[ai] == 0 {
			for _, g := range a.add {
				relax(g, a.cost, ai)
			}
		}
	}

	acc := make([]int64, len(actions))
	for pq.Len() > 0 {
		it := heap.Pop(pq).(pqItem)
		if settled[it.fact] || it.val > factVal[it.fact] {
			continue
		}
		settled[it.fact] = true
		for _, ai := range preToActions[it.fact] {
			if remaining[ai] == 0 {
				continue
			}
			if it.val > acc[ai] {
				acc[ai] = it.val
			}
			remaining[ai]--
			if remaining[ai] == 0 {
				val := acc[ai] + actions[ai].cost
				for _, g := range actions[ai].add {
					relax(g, val, ai)
				}
			}
		}
	}
	return factVal, supporter
}

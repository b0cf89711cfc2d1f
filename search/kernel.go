package search

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
	"github.com/coregx/planit/successor"
)

// Outcome is the result of one Step call (spec.md §4.7: "step(out_change)
// -> {Continue, Found, NotFound, Abort}").
type Outcome int

const (
	Continue Outcome = iota
	Found
	NotFound
	Abort
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "Continue"
	case Found:
		return "Found"
	case NotFound:
		return "NotFound"
	case Abort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// ExitCode maps an Outcome to the process exit code a driver should
// return, per spec.md §6: "exit code 0 on found solution, nonzero
// (distinct codes for not-found, aborted, max-time, max-memory)
// otherwise."
func (o Outcome) ExitCode() int {
	switch o {
	case Found:
		return 0
	case NotFound:
		return 1
	case Abort:
		return 2
	default:
		return 3
	}
}

// Callbacks are the kernel's four hook points: the three of spec.md §4.7
// ("callbacks (on_expand, on_reach_goal, post_step)") plus OnGenerate.
type Callbacks struct {
	// OnExpand is invoked with the StateID popped for expansion, before
	// its successors are generated.
	OnExpand func(id pool.StateID)

	// OnReachGoal is invoked once, the first time a goal state is found.
	OnReachGoal func(id pool.StateID)

	// OnGenerate is invoked once per successor produced during expansion,
	// before the successor is evaluated or inserted into the open list:
	// (parent, generating operator, successor). The multi-agent layer
	// uses this to emit public_state messages to the operator's
	// SendAgents peers (spec.md §4.8: "On every expansion, the kernel
	// emits messages of public-state type to peers listed in the
	// expanded operator's send_agents set"). nil for single-agent search.
	OnGenerate func(parent pool.StateID, op *planit.Operator, succ pool.StateID)

	// PostStep runs after every Step call and may force early termination
	// by returning Abort (spec.md: "Timeouts and memory limits are
	// implemented in post_step.").
	PostStep func(stats *Stats) Outcome
}

// Kernel is the state shared by every search kernel implementation: the
// problem, the heuristic, the shared StatePool/StateSpace, the successor
// generator, a reusable applicable-ops buffer, running stats, and
// callbacks (spec.md §4.7, "Common state").
type Kernel struct {
	Problem *planit.Problem
	Packer  *pack.Packer
	Pool    *pool.Pool
	Space   *statespace.StateSpace
	Gen     *successor.Generator
	Heur    heuristic.Heuristic

	Config    Config
	Callbacks Callbacks
	Stats     Stats

	// opsBuf is the applicable-operators buffer reused across Step calls to
	// avoid reallocating per expansion; each expand overwrites it, so it
	// holds only the most recently expanded state's applicable operators.
	opsBuf []planit.OpID

	// Goal, once found, for Path reconstruction.
	GoalState pool.StateID
	found     bool
}

// Step interface every kernel satisfies.
type Step interface {
	Step() Outcome
}

// assignment returns a getter closure over id's unpacked values.
func (k *Kernel) assignment(id pool.StateID) func(planit.Var) planit.Value {
	vals := k.Pool.Unpack(id)
	return func(v planit.Var) planit.Value { return vals[v] }
}

// expand returns the applicable operators at id, reusing opsBuf.
func (k *Kernel) expand(id pool.StateID) []planit.OpID {
	get := k.assignment(id)
	k.opsBuf = k.Gen.AppendApplicable(get, k.opsBuf[:0])
	k.Stats.Expansions++
	if k.Callbacks.OnExpand != nil {
		k.Callbacks.OnExpand(id)
	}
	return k.opsBuf
}

// applyOp applies op to id's state and returns the resulting StateID plus
// op's cost.
func (k *Kernel) applyOp(id pool.StateID, op *planit.Operator) (pool.StateID, int64) {
	val, mask := k.Packer.PackPartial(op.Effect)
	next := k.Pool.ApplyPartial(id, val, mask)
	if len(op.CondEffects) > 0 {
		get := k.assignment(id)
		var vals, masks [][]pack.Word
		for _, ce := range op.CondEffects {
			if ce.Cond.IsSubsetOfAssignment(get) {
				v, m := k.Packer.PackPartial(ce.Effect)
				vals = append(vals, v)
				masks = append(masks, m)
			}
		}
		if len(vals) > 0 {
			next = k.Pool.ApplyPartials(next, vals, masks)
		}
	}
	k.Stats.Generated++
	if k.Callbacks.OnGenerate != nil {
		k.Callbacks.OnGenerate(id, op, next)
	}
	return next, int64(op.Cost)
}

// evaluate scores id with the kernel's heuristic and counts evaluations
// and dead ends (a DeadEnd h value, spec.md §4.6, "DEAD_END = INT_MAX") in
// Stats. It does not touch the StateSpace; the kernels skip dead-end
// successors without opening them.
func (k *Kernel) evaluate(id pool.StateID) heuristic.Result {
	res := k.Heur.Evaluate(id)
	k.Stats.Evaluations++
	if res.H == heuristic.DeadEnd {
		k.Stats.DeadEnds++
	}
	return res
}

// isGoal reports whether id satisfies the problem's goal.
func (k *Kernel) isGoal(id pool.StateID) bool {
	return k.Problem.IsGoal(k.assignment(id))
}

// reachGoal records id as the found goal state and fires OnReachGoal once.
func (k *Kernel) reachGoal(id pool.StateID) {
	if k.found {
		return
	}
	k.found = true
	k.GoalState = id
	if k.Callbacks.OnReachGoal != nil {
		k.Callbacks.OnReachGoal(id)
	}
}

// postStep runs the PostStep callback, if any, folding its result into
// the caller's own terminal/continue decision: Abort always wins.
func (k *Kernel) postStep(result Outcome) Outcome {
	if n := k.Pool.Len(); n > k.Stats.PeakPoolStates {
		k.Stats.PeakPoolStates = n
	}
	if k.Callbacks.PostStep != nil {
		if cb := k.Callbacks.PostStep(&k.Stats); cb == Abort {
			return Abort
		}
	}
	return result
}

// Path reconstructs the operator sequence from the problem's initial
// state to id by walking StateSpace parent pointers (spec.md §3, "Path").
func Path(space *statespace.StateSpace, id pool.StateID) []planit.OpID {
	var rev []planit.OpID
	for {
		node := space.Get(id)
		if node.Op == statespace.NoOp {
			break
		}
		rev = append(rev, node.Op)
		id = node.Parent
	}
	out := make([]planit.OpID, len(rev))
	for i, op := range rev {
		out[len(rev)-1-i] = op
	}
	return out
}

package search

import (
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/internal/sparse"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
)

// initialVisitedCapacity seeds the EHC visited set before any StateID is
// known; sparse.SparseSet.Grow expands it geometrically as larger StateIDs
// are observed.
const initialVisitedCapacity = 64

// EHC implements Enforced Hill Climbing: from the current state, expand
// successors in breadth-first order; jump to the first successor with
// h strictly less than best_h, updating best_h and dropping the rest of
// the current BFS layer; fail NotFound if BFS exhausts the reachable
// states without finding an improvement (spec.md §4.7).
type EHC struct {
	k *Kernel

	bestH     int64
	frontier  []pool.StateID
	nextLayer []pool.StateID
	visited   *sparse.SparseSet

	done bool
}

// NewEHC creates an EHC kernel rooted at initial, already inserted into
// k.Pool by the caller (spec.md §4.2: "a StatePool is opened over that
// packer and receives the initial state").
func NewEHC(k *Kernel, initial pool.StateID) *EHC {
	h := k.evaluate(initial).H
	_ = k.Space.Open(initial, pool.NoState, statespace.NoOp, 0, h)
	e := &EHC{
		k:        k,
		bestH:    h,
		frontier: []pool.StateID{initial},
		visited:  sparse.NewSparseSet(initialVisitedCapacity),
	}
	e.markVisited(initial)
	return e
}

// markVisited records id as seen within the current hill-climbing attempt,
// growing the backing sparse set if id falls outside its current capacity.
func (e *EHC) markVisited(id pool.StateID) {
	e.visited.Grow(uint32(id) + 1)
	e.visited.Insert(uint32(id))
}

// wasVisited reports whether id has already been seen within the current
// hill-climbing attempt. An id never grown into the set's capacity is
// necessarily absent.
func (e *EHC) wasVisited(id pool.StateID) bool {
	return e.visited.Contains(uint32(id))
}

func (e *EHC) Step() Outcome {
	if e.done || len(e.frontier) == 0 {
		e.done = true
		return e.k.postStep(NotFound)
	}

	id := e.frontier[0]
	e.frontier = e.frontier[1:]

	if e.k.isGoal(id) {
		e.k.reachGoal(id)
		e.done = true
		return e.k.postStep(Found)
	}

	ops := e.k.expand(id)
	parentG := e.k.Space.Get(id).G
	for _, opID := range ops {
		op := &e.k.Problem.Operators[opID]
		succ, cost := e.k.applyOp(id, op)
		if e.wasVisited(succ) {
			continue
		}
		e.markVisited(succ)
		res := e.k.evaluate(succ)
		if res.H == heuristic.DeadEnd {
			continue
		}
		_ = e.k.Space.Open(succ, id, opID, parentG+cost, res.H)

		if res.H < e.bestH {
			e.bestH = res.H
			e.frontier = []pool.StateID{succ}
			e.nextLayer = nil
			e.visited.Clear()
			e.markVisited(succ)
			if e.k.isGoal(succ) {
				e.k.reachGoal(succ)
				e.done = true
				return e.k.postStep(Found)
			}
			return e.k.postStep(Continue)
		}
		e.nextLayer = append(e.nextLayer, succ)
	}

	if len(e.frontier) == 0 {
		e.frontier, e.nextLayer = e.nextLayer, nil
	}
	return e.k.postStep(Continue)
}

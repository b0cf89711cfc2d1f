package search

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/openlist"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
)

// AStar implements A* with optional pathmax and reopening of closed nodes
// when a strictly shorter g is discovered (spec.md §4.7): "supports
// pathmax: when expanding parent p with successor s via op, set
// h(s) <- max(h(s), h(p) - cost(op)). Re-opens closed nodes when a
// shorter g is discovered."
type AStar struct {
	k     *Kernel
	queue *openlist.PriorityQueue[pool.StateID]
	done  bool
}

// NewAStar creates an A* kernel rooted at initial.
func NewAStar(k *Kernel, initial pool.StateID) *AStar {
	h := k.evaluate(initial).H
	_ = k.Space.Open(initial, pool.NoState, statespace.NoOp, 0, h)
	a := &AStar{k: k, queue: openlist.NewPriorityQueue[pool.StateID]()}
	a.queue.Push(openlist.SimpleKey(h), initial)
	return a
}

// PushOpen re-enqueues id using its already-recorded StateSpace g+h key,
// without re-evaluating or re-opening it. Used by the multi-agent layer
// to resume stepping after a state.Space.Open call driven by a received
// public_state message (spec.md §4.8): the node is placed in Open
// directly by the message handler, and this method is how it actually
// becomes reachable again from Step's pop loop.
func (a *AStar) PushOpen(id pool.StateID) {
	node := a.k.Space.Get(id)
	a.queue.Push(openlist.SimpleKey(node.G+node.H), id)
	a.done = false
}

// TopKey reports the f-value (g+h) of the queue's current minimum entry,
// without popping it, or ok=false if the queue is empty. Used by the
// multi-agent snapshot protocol to compute the "lowest observed cost"
// bound over an agent's own open list (spec.md §4.8, "Solution
// verification").
func (a *AStar) TopKey() (f int64, ok bool) {
	key, _, ok := a.queue.Peek()
	if !ok {
		return 0, false
	}
	return key.Primary, true
}

func (a *AStar) Step() Outcome {
	if a.done {
		return a.k.postStep(NotFound)
	}
	for a.queue.Len() > 0 {
		key, id, ok := a.queue.Pop()
		if !ok {
			break
		}
		node := a.k.Space.Get(id)
		if node.Status == statespace.Closed {
			continue // superseded by a cheaper reopen already processed
		}
		f := node.G + node.H
		if key.Primary != f {
			continue // stale entry from before a decrease-key update
		}

		if a.k.isGoal(id) {
			a.k.reachGoal(id)
			a.done = true
			if err := a.k.Space.Close(id); err != nil {
				return a.k.postStep(Abort)
			}
			return a.k.postStep(Found)
		}
		if err := a.k.Space.Close(id); err != nil {
			continue
		}

		ops := a.k.expand(id)
		var preferred map[planit.OpID]bool
		if a.k.Config.PreferredOps != PreferredOff {
			res := a.k.Heur.Evaluate(id)
			if len(res.PreferredOps) > 0 {
				preferred = make(map[planit.OpID]bool, len(res.PreferredOps))
				for _, op := range res.PreferredOps {
					preferred[op] = true
				}
			}
		}

		for _, opID := range ops {
			if a.k.Config.PreferredOps == PreferredOnly && preferred != nil && !preferred[opID] {
				continue
			}
			op := &a.k.Problem.Operators[opID]
			succ, cost := a.k.applyOp(id, op)
			newG := node.G + cost

			succNode := a.k.Space.Get(succ)
			if succNode.Status != statespace.New && succNode.G <= newG {
				continue
			}

			res := a.k.evaluate(succ)
			if res.H == heuristic.DeadEnd {
				continue
			}
			h := res.H
			if a.k.Config.Pathmax {
				if pm := node.H - cost; pm > h {
					h = pm
				}
			}

			if err := a.k.Space.Open(succ, id, opID, newG, h); err != nil {
				continue
			}
			if succNode.Status == statespace.Closed {
				a.k.Stats.Reopenings++
			}

			// Primary is always the true f value so the staleness check
			// above (key.Primary != f) stays valid; a preferred operator
			// only breaks ties among equal-f entries via Tie, never
			// changes which f-bucket an entry sorts into.
			tie := int64(1)
			if a.k.Config.PreferredOps == PreferredPrefer && preferred[opID] {
				tie = 0
			}
			a.queue.Push(openlist.Key{Primary: newG + h, Tie: []int64{tie}}, succ)
		}
		return a.k.postStep(Continue)
	}
	a.done = true
	return a.k.postStep(NotFound)
}

package search

import (
	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/openlist"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
)

// Lazy implements Lazy Best-First search: the open list stores
// (parent, op) pairs; a successor is only packed/inserted/evaluated when
// it is actually popped (spec.md §4.7: "pop (parent, op) from the lazy
// list; if the resulting state is new, apply op, insert, evaluate h,
// push successors lazily.").
type Lazy struct {
	k    *Kernel
	list *openlist.LazyList
	done bool
}

// NewLazy creates a Lazy Best-First kernel rooted at initial.
func NewLazy(k *Kernel, initial pool.StateID) *Lazy {
	h := k.evaluate(initial).H
	_ = k.Space.Open(initial, pool.NoState, statespace.NoOp, 0, h)
	l := &Lazy{k: k, list: openlist.NewLazyList(k.Config.ListBacking)}
	l.pushSuccessorsOf(initial, h, 0)
	return l
}

// pushSuccessorsOf expands id (already evaluated with value h at path
// cost g) and pushes (id, op) for every applicable operator, applying the
// preferred-operators policy to the open-list key.
func (l *Lazy) pushSuccessorsOf(id pool.StateID, h, g int64) {
	ops := l.k.expand(id)
	var preferred map[planit.OpID]bool
	if l.k.Config.PreferredOps != PreferredOff {
		res := l.k.Heur.Evaluate(id)
		if len(res.PreferredOps) > 0 {
			preferred = make(map[planit.OpID]bool, len(res.PreferredOps))
			for _, op := range res.PreferredOps {
				preferred[op] = true
			}
		}
	}
	for _, opID := range ops {
		if l.k.Config.PreferredOps == PreferredOnly && preferred != nil && !preferred[opID] {
			continue
		}
		key := openlist.SimpleKey(h)
		if l.k.Config.PreferredOps == PreferredPrefer && preferred[opID] {
			key = openlist.Key{Primary: h - l.k.Config.PreferredKeyBonus}
		}
		l.list.Push(key, id, opID)
	}
}

func (l *Lazy) Step() Outcome {
	if l.done {
		return l.k.postStep(NotFound)
	}
	for l.list.Len() > 0 {
		_, entry, ok := l.list.Pop()
		if !ok {
			break
		}
		node := l.k.Space.Get(entry.Parent)
		if node.Status != statespace.Open && node.Status != statespace.Closed {
			continue
		}
		op := &l.k.Problem.Operators[entry.Op]
		succ, cost := l.k.applyOp(entry.Parent, op)

		succNode := l.k.Space.Get(succ)
		newG := node.G + cost
		if succNode.Status != statespace.New && succNode.G <= newG {
			continue // already reached at least as cheaply
		}

		res := l.k.evaluate(succ)
		if res.H == heuristic.DeadEnd {
			continue
		}
		if err := l.k.Space.Open(succ, entry.Parent, entry.Op, newG, res.H); err != nil {
			continue
		}

		if l.k.isGoal(succ) {
			l.k.reachGoal(succ)
			l.done = true
			return l.k.postStep(Found)
		}

		l.pushSuccessorsOf(succ, res.H, newG)
		return l.k.postStep(Continue)
	}
	l.done = true
	return l.k.postStep(NotFound)
}

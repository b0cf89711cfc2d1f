// Package successor implements the SuccessorGenerator: a static decision
// tree over operator preconditions that enumerates the operators
// applicable in a given state in time proportional to the answer, not to
// the number of operators in the problem (spec.md §4.3).
package successor

import (
	"sort"

	"github.com/coregx/planit"
)

// node is one decision-tree node. here holds operators whose precondition
// is already fully consumed by the root-to-node path (they match
// regardless of any variable tested further down); if hasTest, the tree
// branches on testVar's value via children, with def as the subtree for
// operators that place no precondition on testVar at all.
type node struct {
	here     []planit.OpID
	hasTest  bool
	testVar  planit.Var
	children map[planit.Value]*node
	def      *node
}

// Generator is a compiled SuccessorGenerator over a fixed operator set.
type Generator struct {
	root *node
}

type opRef struct {
	id        planit.OpID
	remaining []planit.Fact // this operator's precondition facts not yet consumed along the current path, var-ascending
}

// Build compiles a Generator from operators. Operators are grouped by
// their precondition sequences and recursively split on the
// lowest-numbered variable that any operator in the group still has a
// precondition on (even if all of them test the same value there);
// operators with no precondition on that variable fall into the node's
// default subtree
// (spec.md §4.3, "Build").
func Build(operators []planit.Operator) *Generator {
	refs := make([]opRef, len(operators))
	for i, op := range operators {
		refs[i] = opRef{id: op.ID, remaining: op.Precond.Facts}
	}
	return &Generator{root: build(refs)}
}

func build(ops []opRef) *node {
	n := &node{}
	var pending []opRef
	for _, o := range ops {
		if len(o.remaining) == 0 {
			n.here = append(n.here, o.id)
		} else {
			pending = append(pending, o)
		}
	}
	if len(pending) == 0 {
		return n
	}

	pivot := pending[0].remaining[0].Var
	for _, o := range pending[1:] {
		if o.remaining[0].Var < pivot {
			pivot = o.remaining[0].Var
		}
	}

	var withVar, withoutVar []opRef
	for _, o := range pending {
		if o.remaining[0].Var == pivot {
			withVar = append(withVar, o)
		} else {
			withoutVar = append(withoutVar, o)
		}
	}

	n.hasTest = true
	n.testVar = pivot
	n.children = make(map[planit.Value]*node)

	byValue := map[planit.Value][]opRef{}
	var values []planit.Value
	for _, o := range withVar {
		val := o.remaining[0].Val
		if _, seen := byValue[val]; !seen {
			values = append(values, val)
		}
		byValue[val] = append(byValue[val], opRef{id: o.id, remaining: o.remaining[1:]})
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for _, v := range values {
		n.children[v] = build(byValue[v])
	}

	if len(withoutVar) > 0 {
		n.def = build(withoutVar)
	}
	return n
}

// Find descends the tree for the assignment function get, appending every
// applicable operator ID to out[:0:cap(out)] up to cap(out) elements, and
// returns the total number of applicable operators (spec.md §4.3, "Query").
// Truncation at cap(out) lets the caller size a buffer from the returned
// count and retry.
func (g *Generator) Find(get func(planit.Var) planit.Value, out []planit.OpID) (int, []planit.OpID) {
	out = out[:0]
	count := 0
	collect(g.root, get, func(id planit.OpID) {
		count++
		if len(out) < cap(out) {
			out = append(out, id)
		}
	})
	return count, out
}

// AppendApplicable is the allocation-simple counterpart to Find: it appends
// every applicable operator ID to out and returns the grown slice. Search
// kernels that don't need the spec's truncate-and-retry contract (i.e. all
// of them, since Go slices grow transparently) use this form.
func (g *Generator) AppendApplicable(get func(planit.Var) planit.Value, out []planit.OpID) []planit.OpID {
	collect(g.root, get, func(id planit.OpID) {
		out = append(out, id)
	})
	return out
}

func collect(n *node, get func(planit.Var) planit.Value, emit func(planit.OpID)) {
	for _, id := range n.here {
		emit(id)
	}
	if !n.hasTest {
		return
	}
	val := get(n.testVar)
	if child, ok := n.children[val]; ok {
		collect(child, get, emit)
	}
	if n.def != nil {
		collect(n.def, get, emit)
	}
}

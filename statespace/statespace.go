// Package statespace implements the StateSpace map: one node per StateID
// recording search status, parent pointer, generating operator, path cost
// g, and heuristic value h (spec.md §4.5).
package statespace

import (
	"errors"
	"math"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pool"
)

// Status is a node's place in the New -> Open -> Closed state machine.
type Status uint8

const (
	New Status = iota
	Open
	Closed
)

func (s Status) String() string {
	switch s {
	case New:
		return "New"
	case Open:
		return "Open"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// NoOp is the sentinel "no generating operator" value, used for the
// initial state's node.
const NoOp planit.OpID = math.MaxUint32

// DeadEnd is the heuristic value recorded for a state proven to have no
// path to the goal (spec.md §3, "h ... nonneg integer or DEAD_END=inf").
const DeadEnd = math.MaxInt64

// Node is one StateSpace entry. The lazy Attribute initializer installed
// by NewStateSpace starts every entry New, with parent=NoState, op=NoOp,
// g=h=-1 (spec.md §3).
type Node struct {
	Status Status
	Parent pool.StateID
	Op     planit.OpID
	G      int64
	H      int64
}

// ErrWrongState is returned when an Open/Close/Reopen transition is
// attempted from a state the transition doesn't apply to. It never
// corrupts the node: the node is left untouched (spec.md §4.5, §7).
var ErrWrongState = errors.New("statespace: invalid state transition")

// StateSpace is a StatePool attribute array of Nodes, one per StateID
// (spec.md §4.5: "Maintained as a StatePool attribute array").
type StateSpace struct {
	attr *pool.Attribute[Node]
}

// NewStateSpace creates an empty StateSpace. Every StateID starts New with
// parent=NoState, op=NoOp, g=h=-1 on first access.
func NewStateSpace() *StateSpace {
	return &StateSpace{attr: pool.NewAttribute[Node](func(n *Node, _ pool.StateID) {
		n.Status = New
		n.Parent = pool.NoState
		n.Op = NoOp
		n.G = -1
		n.H = -1
	})}
}

// Get returns a copy of id's current node.
func (ss *StateSpace) Get(id pool.StateID) Node {
	return *ss.attr.Data(id)
}

// Open transitions id New->Open (storing the initial parent/op/g/h), or
// Closed->Open ("reopen", only if g is strictly smaller than the recorded
// g), or updates an already-Open node in place if g is strictly smaller
// (the decrease-key operation A* needs when it finds a cheaper path to a
// state still in the open list). Any other attempt returns ErrWrongState
// and leaves the node untouched.
func (ss *StateSpace) Open(id pool.StateID, parent pool.StateID, op planit.OpID, g, h int64) error {
	n := ss.attr.Data(id)
	switch n.Status {
	case New:
		n.Parent, n.Op, n.G, n.H, n.Status = parent, op, g, h, Open
		return nil
	case Closed, Open:
		if g < n.G {
			n.Parent, n.Op, n.G, n.H = parent, op, g, h
			n.Status = Open
			return nil
		}
		return ErrWrongState
	default:
		return ErrWrongState
	}
}

// Close transitions id Open->Closed. Any other starting status returns
// ErrWrongState and leaves the node untouched.
func (ss *StateSpace) Close(id pool.StateID) error {
	n := ss.attr.Data(id)
	if n.Status != Open {
		return ErrWrongState
	}
	n.Status = Closed
	return nil
}

// Reset discards all recorded nodes, as if StateSpace were freshly
// created. Used between independent searches that reuse a Pool.
func (ss *StateSpace) Reset() {
	ss.attr.Reset()
}

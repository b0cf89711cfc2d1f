package statespace

import (
	"testing"

	"github.com/coregx/planit/pool"
)

func TestInitialNodeIsNew(t *testing.T) {
	ss := NewStateSpace()
	n := ss.Get(0)
	if n.Status != New || n.Parent != pool.NoState || n.Op != NoOp || n.G != -1 || n.H != -1 {
		t.Fatalf("initial node = %+v, want New/NoState/NoOp/-1/-1", n)
	}
}

func TestOpenCloseReopen(t *testing.T) {
	ss := NewStateSpace()

	if err := ss.Open(1, pool.NoState, NoOp, 0, 5); err != nil {
		t.Fatalf("Open from New: %v", err)
	}
	if n := ss.Get(1); n.Status != Open || n.G != 0 || n.H != 5 {
		t.Fatalf("after Open: %+v", n)
	}

	if err := ss.Close(1); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := ss.Get(1); n.Status != Closed {
		t.Fatalf("after Close: %+v", n)
	}

	// Reopen with a worse g must fail and leave the node untouched.
	if err := ss.Open(1, 2, 7, 10, 5); err != ErrWrongState {
		t.Fatalf("reopen with worse g: err=%v, want ErrWrongState", err)
	}
	if n := ss.Get(1); n.Status != Closed || n.G != 0 {
		t.Fatalf("node mutated by failed reopen: %+v", n)
	}

	// Reopen with a strictly better g must succeed.
	if err := ss.Open(1, 2, 7, -1, 5); err != nil {
		t.Fatalf("reopen with better g: %v", err)
	}
	if n := ss.Get(1); n.Status != Open || n.G != -1 || n.Parent != 2 {
		t.Fatalf("after valid reopen: %+v", n)
	}
}

func TestCloseFromNewIsWrongState(t *testing.T) {
	ss := NewStateSpace()
	if err := ss.Close(3); err != ErrWrongState {
		t.Fatalf("Close from New: err=%v, want ErrWrongState", err)
	}
	if n := ss.Get(3); n.Status != New {
		t.Fatalf("node mutated by failed close: %+v", n)
	}
}

func TestOpenTwiceWithoutImprovementFails(t *testing.T) {
	ss := NewStateSpace()
	if err := ss.Open(4, pool.NoState, NoOp, 5, 1); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := ss.Open(4, pool.NoState, NoOp, 5, 1); err != ErrWrongState {
		t.Fatalf("second Open with equal g: err=%v, want ErrWrongState", err)
	}
}

package pool

import (
	"testing"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
)

func buildPacker(t *testing.T, ranges ...int) *pack.Packer {
	t.Helper()
	vars := make([]planit.Variable, len(ranges))
	for i, r := range ranges {
		vals := make([]planit.ValueInfo, r)
		vars[i] = planit.Variable{Values: vals}
	}
	p, err := pack.Build(vars)
	if err != nil {
		t.Fatalf("pack.Build: %v", err)
	}
	return p
}

func TestPoolUniqueness(t *testing.T) {
	packer := buildPacker(t, 4, 4, 4)
	p := New(packer)

	s1 := packer.Pack([]planit.Value{1, 2, 3})
	id1 := p.Insert(s1)
	id1Again := p.Insert(s1)
	if id1 != id1Again {
		t.Fatalf("inserting the same state twice gave different IDs: %d vs %d", id1, id1Again)
	}
	if found := p.Find(s1); found != id1 {
		t.Fatalf("Find after Insert = %d, want %d", found, id1)
	}

	s2 := packer.Pack([]planit.Value{3, 2, 1})
	if found := p.Find(s2); found != NoState {
		t.Fatalf("Find of never-inserted state = %d, want NoState", found)
	}
	id2 := p.Insert(s2)
	if id2 == id1 {
		t.Fatalf("distinct states got the same ID")
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestApplyPartialCorrectness(t *testing.T) {
	packer := buildPacker(t, 4, 4, 4)
	p := New(packer)

	buf := packer.Pack([]planit.Value{1, 2, 3})
	id := p.Insert(buf)

	ps, err := planit.NewPartialState(planit.Fact{Var: 1, Val: 0}, planit.Fact{Var: 2, Val: 3})
	if err != nil {
		t.Fatalf("NewPartialState: %v", err)
	}
	val, mask := packer.PackPartial(ps)
	nextID := p.ApplyPartial(id, val, mask)

	got := p.Unpack(nextID)
	want := []planit.Value{1, 0, 3}
	for i := range want {
		if planit.Value(got[i]) != want[i] {
			t.Errorf("var %d: got %d, want %d", i, got[i], want[i])
		}
	}
	// Original state must be unaffected.
	orig := p.Unpack(id)
	for i, want := range []planit.Value{1, 2, 3} {
		if planit.Value(orig[i]) != want {
			t.Errorf("original state mutated at var %d: got %d, want %d", i, orig[i], want)
		}
	}
}

func TestAttributeLazyInit(t *testing.T) {
	calls := 0
	attr := NewAttribute[int](func(el *int, id StateID) {
		calls++
		*el = int(id) * 10
	})

	if got := *attr.Data(5); got != 50 {
		t.Fatalf("Data(5) = %d, want 50", got)
	}
	if calls != 1 {
		t.Fatalf("init called %d times, want 1", calls)
	}
	*attr.Data(5) = 999
	if got := *attr.Data(5); got != 999 {
		t.Fatalf("Data(5) after mutation = %d, want 999 (should not re-init)", got)
	}
	if calls != 1 {
		t.Fatalf("init called %d times after re-access, want still 1", calls)
	}

	// A far-out index should grow segments without disturbing id 5's value.
	_ = attr.Data(1000)
	if got := *attr.Data(5); got != 999 {
		t.Fatalf("Data(5) after growth = %d, want 999", got)
	}
}

func TestSegmentedArrayPointerStability(t *testing.T) {
	sa := NewSegmentedArray[int]()
	idx := sa.Append(42)
	p1 := sa.Get(idx)
	for i := 0; i < 10000; i++ {
		sa.Append(i)
	}
	p2 := sa.Get(idx)
	if p1 != p2 {
		t.Fatalf("pointer to element %d changed after growth", idx)
	}
	if *p2 != 42 {
		t.Fatalf("element %d value changed after growth: got %d", idx, *p2)
	}
}

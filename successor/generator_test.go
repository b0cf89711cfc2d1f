package successor

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/coregx/planit"
)

func fact(v planit.Var, val planit.Value) planit.Fact { return planit.Fact{Var: v, Val: val} }

func mustPS(t *testing.T, facts ...planit.Fact) planit.PartialState {
	t.Helper()
	ps, err := planit.NewPartialState(facts...)
	if err != nil {
		t.Fatalf("NewPartialState: %v", err)
	}
	return ps
}

func linearScan(ops []planit.Operator, get func(planit.Var) planit.Value) []planit.OpID {
	var out []planit.OpID
	for _, op := range ops {
		if op.Precond.IsSubsetOfAssignment(get) {
			out = append(out, op.ID)
		}
	}
	return out
}

func sorted(ids []planit.OpID) []planit.OpID {
	cp := append([]planit.OpID(nil), ids...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	return cp
}

// Invariant 5: successor generator completeness against a linear scan,
// fuzzed over random states.
func TestCompletenessAgainstLinearScan(t *testing.T) {
	ops := []planit.Operator{
		{ID: 0, Precond: mustPS(t, fact(0, 0), fact(1, 1))},
		{ID: 1, Precond: mustPS(t, fact(0, 0))},
		{ID: 2, Precond: mustPS(t, fact(1, 1), fact(2, 2))},
		{ID: 3, Precond: mustPS(t)}, // no preconditions: always applicable
		{ID: 4, Precond: mustPS(t, fact(2, 1))},
		{ID: 5, Precond: mustPS(t, fact(0, 1), fact(2, 1))},
	}
	gen := Build(ops)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		state := []planit.Value{planit.Value(rng.Intn(2)), planit.Value(rng.Intn(2)), planit.Value(rng.Intn(3))}
		get := func(v planit.Var) planit.Value { return state[v] }

		want := sorted(linearScan(ops, get))
		got := sorted(gen.AppendApplicable(get, nil))
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("state=%v: generator=%v, linear=%v", state, got, want)
		}
	}
}

func TestFindTruncationReportsTotalCount(t *testing.T) {
	ops := []planit.Operator{
		{ID: 0, Precond: mustPS(t)},
		{ID: 1, Precond: mustPS(t)},
		{ID: 2, Precond: mustPS(t)},
	}
	gen := Build(ops)
	get := func(planit.Var) planit.Value { return 0 }

	small := make([]planit.OpID, 0, 1)
	count, got := gen.Find(get, small)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if len(got) != 1 {
		t.Fatalf("truncated result len = %d, want 1", len(got))
	}

	big := make([]planit.OpID, 0, 8)
	count, got = gen.Find(get, big)
	if count != 3 || len(got) != 3 {
		t.Fatalf("count=%d len=%d, want 3/3", count, len(got))
	}
}

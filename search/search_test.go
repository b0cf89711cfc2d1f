package search

import (
	"testing"

	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
	"github.com/coregx/planit/successor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildChain builds a five-step unit-cost chain: X in {0..5}, op_i moves
// X from i to i+1, goal X=5. Optimal cost is 5.
func buildChain(t *testing.T, n int) (*planit.Problem, *pack.Packer, *pool.Pool) {
	t.Helper()
	values := make([]planit.ValueInfo, n+1)
	variables := []planit.Variable{{Name: "x", Values: values}}

	var ops []planit.Operator
	for i := 0; i < n; i++ {
		pre, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(i)})
		eff, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(i + 1)})
		op, err := planit.NewOperator("step", planit.OpID(i), pre, eff, nil, 1)
		require.NoError(t, err)
		ops = append(ops, *op)
	}
	initial, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: 0})
	goal, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(n)})
	problem := &planit.Problem{Variables: variables, Operators: ops, Initial: initial, Goal: goal, MAPrivacyVar: planit.NoVar}

	packer, err := pack.Build(variables)
	require.NoError(t, err)
	return problem, packer, pool.New(packer)
}

func newKernel(t *testing.T, n int) (*Kernel, pool.StateID) {
	t.Helper()
	problem, packer, p := buildChain(t, n)
	initial := p.Insert(packer.Pack([]planit.Value{0}))
	k := &Kernel{
		Problem: problem,
		Packer:  packer,
		Pool:    p,
		Space:   statespace.NewStateSpace(),
		Gen:     successor.Build(problem.Operators),
		Heur:    heuristic.NewMax(problem, packer, p),
		Config:  DefaultConfig(),
	}
	return k, initial
}

func runToTerminal(step func() Outcome) Outcome {
	for i := 0; i < 10000; i++ {
		o := step()
		if o != Continue {
			return o
		}
	}
	return Abort
}

// TestAStarFindsOptimalChainPlan checks spec.md §8 invariant 8 (A*
// optimality): with the admissible h_max heuristic, A* returns a plan
// whose length and g-cost both equal the known optimum of 5.
func TestAStarFindsOptimalChainPlan(t *testing.T) {
	k, initial := newKernel(t, 5)
	a := NewAStar(k, initial)
	outcome := runToTerminal(a.Step)
	require.Equal(t, Found, outcome)
	plan := Path(k.Space, k.GoalState)
	assert.Len(t, plan, 5)
	assert.EqualValues(t, 5, k.Space.Get(k.GoalState).G, "optimal cost")
}

func TestLazyFindsChainPlan(t *testing.T) {
	k, initial := newKernel(t, 5)
	l := NewLazy(k, initial)
	outcome := runToTerminal(l.Step)
	require.Equal(t, Found, outcome)
	plan := Path(k.Space, k.GoalState)
	assert.Len(t, plan, 5)
}

func TestEHCFindsChainPlan(t *testing.T) {
	k, initial := newKernel(t, 5)
	e := NewEHC(k, initial)
	outcome := runToTerminal(e.Step)
	assert.Equal(t, Found, outcome)
}

func TestPathIsEmptyAtInitialState(t *testing.T) {
	k, initial := newKernel(t, 5)
	NewAStar(k, initial)
	assert.Empty(t, Path(k.Space, initial))
}

func TestOutcomeExitCodes(t *testing.T) {
	cases := map[Outcome]int{Found: 0, NotFound: 1, Abort: 2, Continue: 3}
	for o, want := range cases {
		assert.Equal(t, want, o.ExitCode(), "%v.ExitCode()", o)
	}
}

package heuristic

import (
	"testing"

	"github.com/coregx/planit"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildChain constructs a trivial three-step chain problem: var X ranges
// over {0,1,2,3}; op_i moves X from i to i+1 at cost 1; goal is X=3.
func buildChain(t *testing.T) (*planit.Problem, *pack.Packer, *pool.Pool, pool.StateID) {
	t.Helper()
	values := make([]planit.ValueInfo, 4)
	variables := []planit.Variable{{Name: "x", Values: values}}

	var ops []planit.Operator
	for i := 0; i < 3; i++ {
		pre, err := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(i)})
		require.NoError(t, err)
		eff, err := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(i + 1)})
		require.NoError(t, err)
		op, err := planit.NewOperator("step", planit.OpID(i), pre, eff, nil, 1)
		require.NoError(t, err)
		ops = append(ops, *op)
	}

	initial, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: 0})
	goal, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: 3})
	problem := &planit.Problem{Variables: variables, Operators: ops, Initial: initial, Goal: goal, MAPrivacyVar: planit.NoVar}

	packer, err := pack.Build(variables)
	require.NoError(t, err)
	p := pool.New(packer)
	buf := packer.Pack([]planit.Value{0})
	id := p.Insert(buf)
	return problem, packer, p, id
}

// TestGoalCountOnInitialState checks invariant 6's degenerate case: a
// goal-count heuristic reports exactly the number of unsatisfied goal
// facts, which for this chain's single-variable goal is 1.
func TestGoalCountOnInitialState(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	res := NewGoalCount(problem, packer, p).Evaluate(id)
	assert.EqualValues(t, 1, res.H, "one unsatisfied goal fact")
}

// TestMaxAdmissibleOnChain checks spec.md §8 invariant 6 (h_max <=
// h*) tightly: on a serial unit-cost chain, h_max equals h* exactly.
func TestMaxAdmissibleOnChain(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	res := NewMax(problem, packer, p).Evaluate(id)
	assert.EqualValues(t, 3, res.H, "chain requires exactly 3 unit-cost steps")
}

// TestAdditiveAtLeastMax checks the documented ordering between the two
// delete-relaxation aggregators (spec.md §4.6: add uses sum, max uses
// max, so h_add never underestimates h_max on the same relaxed task).
func TestAdditiveAtLeastMax(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	add := NewAdditive(problem, packer, p).Evaluate(id)
	max := NewMax(problem, packer, p).Evaluate(id)
	assert.GreaterOrEqual(t, add.H, max.H, "h_add must be >= h_max")
}

// TestFFReportsThreeOperators checks FF's relaxed-plan extraction reports
// both the correct length and a non-empty preferred-operator set (spec.md
// §4.6, "FF additionally reconstructs a relaxed plan... reported as
// preferred operators").
func TestFFReportsThreeOperators(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	res := NewFF(problem, packer, p).Evaluate(id)
	assert.EqualValues(t, 3, res.H)
	assert.NotEmpty(t, res.PreferredOps, "expected at least one preferred operator from the initial state")
}

// TestLMCutAdmissibleOnChain checks spec.md §8 invariant 6: on this serial
// chain, LM-Cut's admissible bound equals h* exactly (one landmark cut per
// step).
func TestLMCutAdmissibleOnChain(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	res := NewLMCut(problem, packer, p).Evaluate(id)
	assert.EqualValues(t, 3, res.H, "LM-Cut exactly matches h* on this serial chain")
	assert.Len(t, res.PreferredOps, 3, "one real operator per landmark-cut round")
}

// TestLMCutDeadEnd checks spec.md §8 invariant 9 (dead-end safety): with
// no operator able to ever set x=1, LM-Cut must report DeadEnd.
func TestLMCutDeadEnd(t *testing.T) {
	values := make([]planit.ValueInfo, 2)
	variables := []planit.Variable{{Name: "x", Values: values}}
	initial, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: 0})
	goal, _ := planit.NewPartialState(planit.Fact{Var: 0, Val: 1})
	problem := &planit.Problem{Variables: variables, Operators: nil, Initial: initial, Goal: goal, MAPrivacyVar: planit.NoVar}
	packer, err := pack.Build(variables)
	require.NoError(t, err)
	p := pool.New(packer)
	id := p.Insert(packer.Pack([]planit.Value{0}))

	res := NewLMCut(problem, packer, p).Evaluate(id)
	assert.EqualValues(t, DeadEnd, res.H, "no operator can ever set x=1")
}

// TestLMCutExplainNamesRealOperators checks that Explain's prose, when
// cross-referenced through a LandmarkIndex, recovers exactly the real
// operator names LM-Cut reported as preferred (this is what
// cmd/planit's -explain-landmarks flag relies on).
func TestLMCutExplainNamesRealOperators(t *testing.T) {
	problem, packer, p, id := buildChain(t)
	lmcut := NewLMCut(problem, packer, p)
	res := lmcut.Evaluate(id)
	require.NotEmpty(t, res.PreferredOps)

	idx, err := NewLandmarkIndex(problem)
	require.NoError(t, err)
	require.NotNil(t, idx)

	found := idx.Describe([]byte(lmcut.Explain(id)))
	require.NotEmpty(t, found, "Explain's prose must mention at least one real operator name")
	validNames := make(map[string]bool, len(problem.Operators))
	for _, op := range problem.Operators {
		validNames[op.Name] = true
	}
	for _, name := range found {
		assert.True(t, validNames[name], "Describe must only surface real operator names, got %q", name)
	}
}

package agent

import (
	"testing"
	"time"

	"github.com/coregx/planit"
	"github.com/coregx/planit/internal/bitset"
	"github.com/coregx/planit/ma/comm"
	"github.com/coregx/planit/ma/project"
	"github.com/coregx/planit/ma/wire"
	"github.com/coregx/planit/search"
	"github.com/coregx/planit/statespace"
	. "github.com/smartystreets/goconvey/convey"
)

// buildFactoredChainProblem builds a two-agent factored version of a
// four-step unit-cost chain over a single public variable X (range
// [0,5), goal X=4): agent 0 privately owns the first two steps
// (X: 0->1->2), agent 1 privately owns the last two (X: 2->3->4), and the
// handoff operator (X: 1->2) is marked to send its successor to agent 1
// (spec.md §4.8, "send_agents"). A dedicated MAPrivacy variable is
// required for any public_state traffic to flow at all (pack.Packer.
// HasMAPrivacyVar gates onGenerate).
func buildFactoredChainProblem(t *testing.T) *planit.Problem {
	t.Helper()
	variables := []planit.Variable{
		{Name: "x", Values: make([]planit.ValueInfo, 5)},
		{Name: "ma-privacy", Values: []planit.ValueInfo{{}}, MAPrivacy: true},
	}

	step := func(id int, from, to, owner int, sendTo int, hasSend bool) planit.Operator {
		pre, err := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(from)})
		if err != nil {
			t.Fatal(err)
		}
		eff, err := planit.NewPartialState(planit.Fact{Var: 0, Val: planit.Value(to)})
		if err != nil {
			t.Fatal(err)
		}
		op, err := planit.NewOperator("step", planit.OpID(id), pre, eff, nil, 1)
		if err != nil {
			t.Fatal(err)
		}
		op.Owner = owner
		op.Private = true
		if hasSend {
			send := bitset.New(2)
			send.Set(sendTo)
			op.SendAgents = send
		}
		return *op
	}

	ops := []planit.Operator{
		step(0, 0, 1, 0, 0, false),
		step(1, 1, 2, 0, 1, true), // handoff: agent 0 -> agent 1
		step(2, 2, 3, 1, 0, false),
		step(3, 3, 4, 1, 0, false),
	}

	initial, err := planit.NewPartialState(
		planit.Fact{Var: 0, Val: 0},
		planit.Fact{Var: 1, Val: 0},
	)
	if err != nil {
		t.Fatal(err)
	}
	goal, err := planit.NewPartialState(planit.Fact{Var: 0, Val: 4})
	if err != nil {
		t.Fatal(err)
	}

	return &planit.Problem{
		Variables:    variables,
		Operators:    ops,
		Initial:      initial,
		Goal:         goal,
		MAPrivacyVar: 1,
	}
}

// TestMultiAgentAgreesOnJointOptimalPlan checks spec.md §8 invariant 10
// (MA agreement): two agents, each owning half of a serial chain, must
// converge on the same globally confirmed plan, whose cost matches the
// four-step serial optimum a single agent would find given every
// operator.
func TestMultiAgentAgreesOnJointOptimalPlan(t *testing.T) {
	Convey("Two agents cooperatively search a factored chain problem", t, func() {
		global := buildFactoredChainProblem(t)
		hub := comm.NewHub(2, 8)
		cfg := Config{Heuristic: "goalcount", Scope: project.ScopeProjected}

		a0, err := New(0, []int{0, 1}, global, hub.Endpoint(0), cfg)
		So(err, ShouldBeNil)
		a1, err := New(1, []int{0, 1}, global, hub.Endpoint(1), cfg)
		So(err, ShouldBeNil)

		results := make(chan Result, 2)
		go func() { results <- a0.Run() }()
		go func() { results <- a1.Run() }()

		var got []Result
		for i := 0; i < 2; i++ {
			select {
			case r := <-results:
				got = append(got, r)
			case <-time.After(5 * time.Second):
				t.Fatal("agents did not terminate within the deadline")
			}
		}

		Convey("both agents report the plan was found", func() {
			So(got[0].Outcome, ShouldEqual, search.Found)
			So(got[1].Outcome, ShouldEqual, search.Found)
		})

		Convey("both agents agree on the identical globally confirmed plan", func() {
			So(got[0].Plan, ShouldResemble, got[1].Plan)
			So(len(got[0].Plan), ShouldEqual, 4)
		})
	})
}

// TestSnapshotRejectsCheaperOpenBound checks spec.md §8 invariant 11
// (snapshot soundness): a peer's Mark is acked only if this agent's own
// open list holds no state with f strictly less than the candidate cost;
// otherwise this agent must reject it so a cheaper plan isn't missed.
func TestSnapshotRejectsCheaperOpenBound(t *testing.T) {
	Convey("An agent with an open state cheaper than a peer's snapshot candidate", t, func() {
		global := buildFactoredChainProblem(t)
		hub := comm.NewHub(2, 8)
		cfg := Config{Heuristic: "goalcount", Scope: project.ScopeProjected}

		a0, err := New(0, []int{0, 1}, global, hub.Endpoint(0), cfg)
		So(err, ShouldBeNil)
		peer := hub.Endpoint(1)

		f, ok := a0.astar.TopKey()
		So(ok, ShouldBeTrue)

		Convey("rejects a candidate costlier than its own bound", func() {
			mark := &wire.Snapshot{Kind: wire.SnapshotMark, Token: 42, HasCost: true, Cost: f + 1}
			a0.handleSnapshot(mark, 1)

			msg, from, ok := peer.Recv()
			So(ok, ShouldBeTrue)
			So(from, ShouldEqual, 0)
			env, err := wire.DecodeEnvelope(msg)
			So(err, ShouldBeNil)
			So(env.Snapshot.Kind, ShouldEqual, wire.SnapshotResponse)
			So(env.Snapshot.Ack, ShouldBeFalse)
		})

		Convey("accepts a candidate no costlier than its own bound", func() {
			mark := &wire.Snapshot{Kind: wire.SnapshotMark, Token: 42, HasCost: true, Cost: f}
			a0.handleSnapshot(mark, 1)

			msg, from, ok := peer.Recv()
			So(ok, ShouldBeTrue)
			So(from, ShouldEqual, 0)
			env, err := wire.DecodeEnvelope(msg)
			So(err, ShouldBeNil)
			So(env.Snapshot.Kind, ShouldEqual, wire.SnapshotResponse)
			So(env.Snapshot.Ack, ShouldBeTrue)
		})
	})
}

// TestSnapshotPendingDrainsToTrace checks that once every peer in the
// ring has acked a candidate, the snapshot round clears and path tracing
// begins immediately (statespace.NoOp marks the local root so
// walkBack's terminal check, exercised indirectly here, has a real
// boundary to stop at).
func TestSnapshotPendingDrainsToTrace(t *testing.T) {
	Convey("A single-agent ring has nothing to verify against", t, func() {
		global := buildFactoredChainProblem(t)
		hub := comm.NewHub(1, 1)
		cfg := Config{Heuristic: "goalcount", Scope: project.ScopeProjected}

		a0, err := New(0, []int{0}, global, hub.Endpoint(0), cfg)
		So(err, ShouldBeNil)

		root := a0.kernel.Space.Get(0)
		So(root.Op, ShouldEqual, statespace.NoOp)

		a0.onReachGoal(0)
		So(a0.snap, ShouldBeNil)
		So(a0.sawFinalize, ShouldBeTrue)
	})
}

package agent

import (
	"github.com/coregx/planit/internal/sparse"
	"github.com/coregx/planit/ma/wire"
	"github.com/coregx/planit/pool"
)

// snapshotState tracks one in-flight solution-verification round, started
// by this agent after reaching a local goal (spec.md §4.8, "Solution
// verification").
//
// This is a deliberately simplified rendition of the protocol: only one
// candidate is tracked at a time (a later onReachGoal while a snapshot is
// outstanding is ignored), and a single negative Ack drops the candidate
// outright rather than resuming search with the responder's tighter bound
// folded in and retrying (see DESIGN.md).
type snapshotState struct {
	token     int64
	localGoal int64 // local StateID of the goal this snapshot verifies
	cost      int64
	pending   *sparse.SparseSet // agent IDs not yet responded, sized to the ring
}

// onReachGoal is the search.Kernel OnReachGoal callback: it starts a
// snapshot round to verify the local goal's cost is globally minimal
// before beginning path tracing.
func (a *Agent) onReachGoal(id pool.StateID) {
	if a.snap != nil {
		return
	}
	node := a.space.Get(id)
	cost := node.G
	pub := a.packer.ExtractPublic(a.pool.GetPacked(id))

	maxPeer := 0
	for _, peer := range a.ring {
		if peer > maxPeer {
			maxPeer = peer
		}
	}
	pending := sparse.NewSparseSet(uint32(maxPeer) + 1)
	count := 0
	for _, peer := range a.ring {
		if peer != a.id {
			pending.Insert(uint32(peer))
			count++
		}
	}
	if count == 0 {
		// single-agent-ring degenerate case: nothing to verify against.
		a.beginTrace(int64(id))
		return
	}

	a.snap = &snapshotState{token: cost, localGoal: int64(id), cost: cost, pending: pending}
	msg := &wire.Snapshot{
		Kind:    wire.SnapshotMark,
		Token:   cost,
		HasCost: true,
		Cost:    cost,
		StateBuf: pub,
		HasBuf:  true,
	}
	if err := a.comm.SendToAll(msg.Encode()); err != nil {
		a.log.WithError(err).Warn("snapshot broadcast failed")
	}
}

// handleSnapshot implements both roles of the protocol: responding to a
// peer's Mark with an Ack/Nack, and collecting this agent's own
// outstanding round's responses.
func (a *Agent) handleSnapshot(s *wire.Snapshot, from int) {
	if s == nil {
		return
	}
	switch s.Kind {
	case wire.SnapshotMark:
		ack := true
		if f, ok := a.astar.TopKey(); ok && s.HasCost && f < s.Cost {
			// this agent's own open list still has an unexplored bound
			// cheaper than the candidate: refuse, per spec.md §4.8
			// ("Solution verification" rejects a premature claim).
			ack = false
		}
		resp := &wire.Snapshot{Kind: wire.SnapshotResponse, Token: s.Token, Ack: ack, HasAck: true}
		if err := a.comm.SendTo(from, resp.Encode()); err != nil {
			a.log.WithError(err).WithField("peer", from).Warn("snapshot response failed")
		}
	case wire.SnapshotResponse:
		if a.snap == nil || s.Token != a.snap.token {
			return
		}
		if s.HasAck && !s.Ack {
			a.log.WithField("peer", from).Info("snapshot candidate rejected, resuming search")
			a.snap = nil
			return
		}
		a.snap.pending.Remove(uint32(from))
		if a.snap.pending.IsEmpty() {
			goal := a.snap.localGoal
			a.snap = nil
			a.beginTrace(goal)
		}
	case wire.SnapshotFinal:
		// Reserved for a full ring-consensus variant; this simplified
		// protocol reaches agreement from SnapshotResponse alone.
	}
}

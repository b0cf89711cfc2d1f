package agent

import (
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/ma/wire"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
)

// handleMessage decodes and dispatches one inbound wire record (spec.md
// §6, "Recognized message types: public_state, trace_path, snapshot,
// terminate").
func (a *Agent) handleMessage(buf []byte, from int) {
	env, err := wire.DecodeEnvelope(buf)
	if err != nil {
		a.log.WithError(err).WithField("from", from).Warn("dropping malformed message")
		return
	}
	switch env.Type {
	case wire.TypePublicState:
		a.handlePublicState(env.PublicState, from)
	case wire.TypeSnapshot:
		a.handleSnapshot(env.Snapshot, from)
	case wire.TypeTracePath:
		a.handleTracePathMsg(env.TracePath, from)
	case wire.TypeTerminate:
		a.handleTerminate(env.Terminate, from)
	}
}

// handlePublicState folds a peer's expansion into this agent's own search
// (spec.md §4.8): the public substate is combined with a local MA-privacy
// placeholder encoding (sender, sender's local StateID), so that distinct
// foreign private states projecting to the same public substate still
// hash-cons to distinct local StateIDs (spec.md §4.1, "MAPrivacy ...
// reserves a whole packed machine word to identify the private sub-state
// of other agents").
//
// The local heuristic is always recomputed against the receiving agent's
// own projected Problem; PublicState's optional Heur field is accepted on
// the wire but not merged in (a received h value is not admissible for a
// different agent's heuristic instance, see DESIGN.md).
func (a *Agent) handlePublicState(msg *wire.PublicState, from int) {
	if msg == nil || !a.packer.HasMAPrivacyVar() {
		return
	}
	buf := make([]pack.Word, a.packer.NumWords())
	a.packer.SetPublic(buf, msg.StateBuf)
	placeholder := pack.Word(uint32(from)<<16) | pack.Word(uint32(msg.StateID)&0xFFFF)
	if err := a.packer.SetMAPrivacy(buf, placeholder); err != nil {
		a.log.WithError(err).Warn("failed to tag foreign private state")
		return
	}
	id := a.pool.Insert(buf)

	g := int64(0)
	if msg.HasCost {
		g = msg.Cost
	}
	h := a.heur.Evaluate(id).H
	if h == heuristic.DeadEnd {
		return
	}

	a.origin[id] = extOrigin{sender: from, remoteID: msg.StateID}
	if err := a.space.Open(id, pool.NoState, statespace.NoOp, g, h); err == nil {
		a.astar.PushOpen(id)
	}
}

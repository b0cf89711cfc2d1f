package agent

import (
	"github.com/coregx/planit/ma/wire"
	"github.com/coregx/planit/pool"
	"github.com/coregx/planit/statespace"
)

// walkBack follows id's StateSpace parent chain, collecting operator
// names in goal-to-root order, until it either reaches a state this agent
// generated itself with no predecessor (a true root: terminal=true), or a
// state that entered this agent's pool from a peer's public_state message
// (terminal=false, sender/remoteID identify where to continue).
//
// origin is checked before node.Op == statespace.NoOp: both a genuine
// local initial state and an externally-received state are recorded with
// Op==NoOp, Parent==NoState, and only the origin map distinguishes them
// (spec.md §4.8, "Path tracing").
func (a *Agent) walkBack(id pool.StateID) (names []string, terminal bool, sender int, remoteID int64) {
	for {
		if o, ok := a.origin[id]; ok {
			return names, false, o.sender, o.remoteID
		}
		node := a.space.Get(id)
		if node.Op == statespace.NoOp {
			return names, true, 0, 0
		}
		names = append(names, a.proj.Operators[node.Op].Name)
		id = node.Parent
	}
}

// beginTrace starts distributed path reconstruction from this agent's
// verified local goal (spec.md §4.8, "Path tracing").
func (a *Agent) beginTrace(localGoal int64) {
	names, terminal, sender, remoteID := a.walkBack(pool.StateID(localGoal))
	if terminal {
		a.finalizePlan(names)
		return
	}
	t := &wire.TracePath{OpNames: names, StateID: remoteID, InitAgent: int64(a.id)}
	if err := a.comm.SendTo(sender, t.Encode()); err != nil {
		a.log.WithError(err).WithField("peer", sender).Warn("trace_path forward failed")
	}
}

// handleTracePathMsg continues a trace forwarded by a peer, or records the
// final broadcast solution.
func (a *Agent) handleTracePathMsg(t *wire.TracePath, from int) {
	if t == nil {
		return
	}
	if t.Final {
		a.finalPlan = t.OpNames
		a.sawFinalize = true
		return
	}
	more, terminal, sender, remoteID := a.walkBack(pool.StateID(t.StateID))
	all := make([]string, 0, len(t.OpNames)+len(more))
	all = append(all, t.OpNames...)
	all = append(all, more...)
	if terminal {
		a.finalizePlan(all)
		return
	}
	fwd := &wire.TracePath{OpNames: all, StateID: remoteID, InitAgent: t.InitAgent}
	if err := a.comm.SendTo(sender, fwd.Encode()); err != nil {
		a.log.WithError(err).WithField("peer", sender).Warn("trace_path forward failed")
	}
}

// finalizePlan reverses the goal-to-root operator-name trail into
// execution order and broadcasts it as the confirmed solution.
func (a *Agent) finalizePlan(names []string) {
	plan := make([]string, len(names))
	for i, n := range names {
		plan[len(names)-1-i] = n
	}
	a.finalPlan = plan
	a.sawFinalize = true
	final := &wire.TracePath{OpNames: plan, Final: true, InitAgent: int64(a.id)}
	if err := a.comm.SendToAll(final.Encode()); err != nil {
		a.log.WithError(err).Warn("final plan broadcast failed")
	}
}

package agent

import "github.com/coregx/planit/ma/wire"

// onIdle is called once each time Step reports NotFound: this agent's own
// open list is momentarily empty. If no solution attempt is outstanding,
// it starts a termination token around the ring (spec.md §4.8,
// "Termination").
//
// This is a single-round simplification of the classic token-ring idle
// detection: an agent that receives a TerminateRequest while it is not
// itself currently idle simply drops the token rather than marking itself
// "dirty" for a colored retry (see DESIGN.md). A busy ring retries
// naturally because every subsequent NotFound re-issues a fresh token.
func (a *Agent) onIdle() {
	a.idle = true
	if a.snap != nil || a.terminated {
		return
	}
	req := &wire.Terminate{Kind: wire.TerminateRequest, Agent: int64(a.id)}
	if err := a.comm.SendInRing(req.Encode()); err != nil {
		a.log.WithError(err).Warn("terminate request failed")
	}
}

func (a *Agent) handleTerminate(t *wire.Terminate, from int) {
	if t == nil {
		return
	}
	switch t.Kind {
	case wire.TerminateRequest:
		if int(t.Agent) == a.id {
			// the token survived a full ring pass: every agent was idle.
			final := &wire.Terminate{Kind: wire.TerminateFinal, Agent: t.Agent}
			if err := a.comm.SendToAll(final.Encode()); err != nil {
				a.log.WithError(err).Warn("terminate final broadcast failed")
			}
			a.terminated = true
			return
		}
		if !a.idle || a.snap != nil {
			return // busy: drop the token, a fresh one is issued on our next idle NotFound
		}
		if err := a.comm.SendInRing(t.Encode()); err != nil {
			a.log.WithError(err).Warn("terminate forward failed")
		}
	case wire.TerminateFinal:
		a.terminated = true
	}
}

package agent

import "github.com/coregx/planit/search"

// Run drives the folded search/message loop until a globally confirmed
// plan is broadcast, this agent observes termination, or the search
// aborts (spec.md §4.8: "the loop folds message processing in between
// search steps").
func (a *Agent) Run() Result {
	for {
		for {
			msg, from, ok := a.comm.Recv()
			if !ok {
				break
			}
			a.idle = false
			a.handleMessage(msg, from)
		}

		if a.sawFinalize {
			return Result{Outcome: search.Found, Plan: a.finalPlan, Stats: a.kernel.Stats}
		}
		if a.terminated {
			return Result{Outcome: search.NotFound, Stats: a.kernel.Stats}
		}

		switch outcome := a.astar.Step(); outcome {
		case search.Abort:
			return Result{Outcome: search.Abort, Stats: a.kernel.Stats}
		case search.Continue:
			a.idle = false
		case search.NotFound:
			a.onIdle()
		case search.Found:
			a.idle = false
			// onReachGoal already ran via the kernel callback; keep
			// stepping (harmlessly idempotent) while the snapshot round
			// resolves in the background message loop.
		}
	}
}

// ID returns this agent's ID.
func (a *Agent) ID() int { return a.id }

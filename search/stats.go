package search

import "time"

// Stats accumulates counters over a kernel run, in the style of the
// teacher's meta.Stats (per-mode search counters plus cumulative
// counts) (spec.md §4.7, "stat (timer, counters, peak memory)").
type Stats struct {
	// Expansions counts states popped from the open list and expanded.
	Expansions uint64

	// Generated counts successor states produced (whether or not they
	// were new to the pool).
	Generated uint64

	// Evaluations counts heuristic evaluations performed.
	Evaluations uint64

	// Reopenings counts StateSpace Closed->Open transitions (A* only).
	Reopenings uint64

	// DeadEnds counts states the heuristic proved have no path to the goal.
	DeadEnds uint64

	// Started is the run's start time; the kernels never set it, the
	// driver does (cmd/planit sets it before the first Step call).
	Started time.Time

	// PeakPoolStates records the largest StatePool size observed.
	PeakPoolStates int
}

// Elapsed returns the wall-clock duration since Started, or zero if
// Started has not been set.
func (s *Stats) Elapsed() time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	return time.Since(s.Started)
}

// Package nolp is the "no LP library" build of the lpsolver.Solver
// interface: every method is a cheap no-op and Solve always reports
// lpsolver.Infeasible with a zero objective and a nil solution.
package nolp

import "github.com/coregx/planit/lpsolver"

// Solver satisfies lpsolver.Solver without solving anything. Construct it
// in builds that intentionally omit the simplex backend (e.g. to keep a
// minimal dependency footprint); flow and potential heuristics built over
// it always report Infeasible.
type Solver struct {
	numVars int
}

// New returns a Solver that accepts problem construction calls but never
// actually solves.
func New() *Solver { return &Solver{} }

func (s *Solver) AddVars(n int) int {
	first := s.numVars
	s.numVars += n
	return first
}

func (s *Solver) AddRows(rows []lpsolver.Row) {}

func (s *Solver) SetObj(j int, coef float64) {}

func (s *Solver) SetBounds(j int, lower, upper float64) {}

// Solve always reports Infeasible. Nothing in this module maps that to
// lpsolver.ErrNoLPBackend; the drivers always use the simplex backend.
func (s *Solver) Solve() (lpsolver.Status, float64, []float64) {
	return lpsolver.Infeasible, 0, nil
}

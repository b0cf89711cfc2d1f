// Package simplex is a minimal pure-Go dense-simplex lpsolver.Solver, used
// when the module is built without an external LP library (spec.md §9:
// "Two builds -- with and without an LP library -- are expected").
package simplex

import (
	"math"

	"github.com/coregx/planit/lpsolver"
)

// Solver is a dense two-phase simplex tableau. It is sized for the small,
// dense LPs the flow and potential heuristics pose per query (tens to low
// hundreds of variables/rows), not for large-scale optimization.
type Solver struct {
	numVars int
	obj     []float64
	lower   []float64
	upper   []float64
	rows    []lpsolver.Row
}

// New returns an empty Solver.
func New() *Solver { return &Solver{} }

func (s *Solver) AddVars(n int) int {
	first := s.numVars
	for i := 0; i < n; i++ {
		s.obj = append(s.obj, 0)
		s.lower = append(s.lower, 0)
		s.upper = append(s.upper, math.Inf(1))
	}
	s.numVars += n
	return first
}

func (s *Solver) AddRows(rows []lpsolver.Row) { s.rows = append(s.rows, rows...) }

func (s *Solver) SetObj(j int, coef float64) { s.obj[j] = coef }

func (s *Solver) SetBounds(j int, lower, upper float64) {
	s.lower[j] = lower
	s.upper[j] = upper
}

type constraint struct {
	coef map[int]float64
	op   byte // '<', '>', '='
	rhs  float64
}

// Solve runs a two-phase primal simplex: phase one minimizes the sum of
// artificial variables to find a basic feasible solution (or prove
// infeasibility), phase two optimizes the real objective from there
// (spec.md §9's LPSolver collaborator, "solve -> (status, objective, x)").
//
// Every variable is first shifted so its effective lower bound is 0
// (x_j = shift_j + y_j, y_j >= 0); a finite upper bound becomes an extra
// <= row on y_j.
func (s *Solver) Solve() (lpsolver.Status, float64, []float64) {
	n := s.numVars
	if n == 0 {
		return lpsolver.Optimal, 0, nil
	}

	shift := make([]float64, n)
	for j := 0; j < n; j++ {
		if !math.IsInf(s.lower[j], -1) {
			shift[j] = s.lower[j]
		}
	}

	var cons []constraint
	for _, r := range s.rows {
		adj := 0.0
		for j, c := range r.Coef {
			adj += c * shift[j]
		}
		switch {
		case r.Lower == r.Upper:
			cons = append(cons, constraint{coef: r.Coef, op: '=', rhs: r.Lower - adj})
		default:
			if !math.IsInf(r.Upper, 1) {
				cons = append(cons, constraint{coef: r.Coef, op: '<', rhs: r.Upper - adj})
			}
			if !math.IsInf(r.Lower, -1) {
				cons = append(cons, constraint{coef: r.Coef, op: '>', rhs: r.Lower - adj})
			}
		}
	}
	for j := 0; j < n; j++ {
		if !math.IsInf(s.upper[j], 1) {
			cons = append(cons, constraint{coef: map[int]float64{j: 1}, op: '<', rhs: s.upper[j] - shift[j]})
		}
	}

	status, y := solveTwoPhase(cons, s.obj, n)
	if status != lpsolver.Optimal {
		return status, 0, nil
	}
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = y[j] + shift[j]
	}
	objVal := 0.0
	for j := 0; j < n; j++ {
		objVal += s.obj[j] * out[j]
	}
	return lpsolver.Optimal, objVal, out
}

// solveTwoPhase builds the slack/surplus/artificial tableau for cons and
// runs phase one then phase two over it.
func solveTwoPhase(cons []constraint, realObj []float64, n int) (lpsolver.Status, []float64) {
	m := len(cons)
	// Column layout: [0,n) structural, [n,n+m) slack/surplus, [n+m, n+m+A)
	// artificial, then RHS. Every row gets exactly one slack/surplus
	// column; rows needing an artificial (>=, =, or a negative-RHS <=)
	// also get one.
	needsArt := make([]bool, m)
	for i, c := range cons {
		if c.op != '<' || c.rhs < 0 {
			needsArt[i] = true
		}
	}
	numArt := 0
	artCol := make([]int, m)
	for i := range cons {
		artCol[i] = -1
		if needsArt[i] {
			artCol[i] = numArt
			numArt++
		}
	}

	cols := n + m + numArt + 1
	rhsCol := cols - 1
	tab := make([][]float64, m)
	basis := make([]int, m)
	for i, c := range cons {
		row := make([]float64, cols)
		for j, coef := range c.coef {
			row[j] = coef
		}
		row[rhsCol] = c.rhs
		switch c.op {
		case '<':
			row[n+i] = 1
		case '>':
			row[n+i] = -1
		case '=':
			// no slack column contribution
		}
		if row[rhsCol] < 0 {
			for k := 0; k < cols; k++ {
				row[k] = -row[k]
			}
			if c.op == '<' {
				row[n+i] = -1 // flipped <= becomes a >=-shaped surplus row
			}
		}
		if needsArt[i] {
			row[n+m+artCol[i]] = 1
			basis[i] = n + m + artCol[i]
		} else {
			basis[i] = n + i
		}
		tab[i] = row
	}

	if numArt > 0 {
		phase1 := make([]float64, cols)
		for i := range cons {
			if needsArt[i] {
				for j := 0; j < cols; j++ {
					phase1[j] -= tab[i][j]
				}
			}
		}
		runTableau(tab, phase1, basis, cols)
		if -phase1[rhsCol] > 1e-7 {
			return lpsolver.Infeasible, nil
		}
		// Drive any artificial still basic (at value 0) out of the basis,
		// then drop the artificial columns entirely.
		for i := range basis {
			if basis[i] >= n+m {
				replaced := false
				for j := 0; j < n+m; j++ {
					if math.Abs(tab[i][j]) > 1e-9 {
						pivot(tab, phase1, i, j, cols)
						basis[i] = j
						replaced = true
						break
					}
				}
				if !replaced {
					// Row is a redundant all-zero constraint; leave as is.
				}
			}
		}
	}

	obj2 := make([]float64, cols)
	for j := 0; j < n; j++ {
		obj2[j] = -realObj[j]
	}
	status, x := runSimplexFull(tab, obj2, basis, n, cols)
	if status != lpsolver.Optimal {
		return status, nil
	}
	return lpsolver.Optimal, x
}

func runTableau(tab [][]float64, objRow []float64, basis []int, cols int) {
	runSimplexFull(tab, objRow, basis, cols-1, cols)
}

// runSimplexFull executes standard tableau pivoting (Bland's rule) until
// no column has a negative reduced cost, then extracts the first n
// structural values from the basis.
func runSimplexFull(tab [][]float64, objRow []float64, basis []int, n, cols int) (lpsolver.Status, []float64) {
	m := len(tab)
	const maxIters = 20000
	for iter := 0; iter < maxIters; iter++ {
		pivotCol := -1
		for j := 0; j < cols-1; j++ {
			if objRow[j] < -1e-9 {
				pivotCol = j
				break
			}
		}
		if pivotCol == -1 {
			break
		}
		pivotRow := -1
		best := math.Inf(1)
		for i := 0; i < m; i++ {
			if tab[i][pivotCol] > 1e-9 {
				ratio := tab[i][cols-1] / tab[i][pivotCol]
				if ratio < best-1e-12 || (ratio < best+1e-12 && (pivotRow == -1 || basis[i] < basis[pivotRow])) {
					best = ratio
					pivotRow = i
				}
			}
		}
		if pivotRow == -1 {
			return lpsolver.Unbounded, nil
		}
		pivot(tab, objRow, pivotRow, pivotCol, cols)
		basis[pivotRow] = pivotCol
	}

	x := make([]float64, n)
	for i, b := range basis {
		if b < n {
			x[b] = tab[i][cols-1]
		}
	}
	return lpsolver.Optimal, x
}

func pivot(tab [][]float64, objRow []float64, row, col, cols int) {
	pv := tab[row][col]
	for j := 0; j < cols; j++ {
		tab[row][j] /= pv
	}
	for i := range tab {
		if i == row {
			continue
		}
		factor := tab[i][col]
		if factor == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			tab[i][j] -= factor * tab[row][j]
		}
	}
	if factor := objRow[col]; factor != 0 {
		for j := 0; j < cols; j++ {
			objRow[j] -= factor * tab[row][j]
		}
	}
}

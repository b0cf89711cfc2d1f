// Package heurselect maps the CLI surface's --heur name (spec.md §6:
// "--heur {goalcount|add|max|ff|lmcut|flow|flow-ilp|flow-lmcut|pot|pot-all}")
// to a constructed heuristic.Heuristic, shared by cmd/planit and
// ma/agent so both drivers accept the same set of names.
package heurselect

import (
	"fmt"

	"github.com/coregx/planit"
	"github.com/coregx/planit/heuristic"
	"github.com/coregx/planit/lpsolver"
	"github.com/coregx/planit/lpsolver/simplex"
	"github.com/coregx/planit/pack"
	"github.com/coregx/planit/pool"
)

// Build constructs the named heuristic against problem/packer/p. The LP
// heuristics (flow*, pot*) always use the pure-Go simplex backend: no LP
// library exists anywhere in the retrieved examples pack, so simplex is
// the project's own supplement (SPEC_FULL.md §8.1), not a third-party
// substitution.
func Build(name string, problem *planit.Problem, packer *pack.Packer, p *pool.Pool) (heuristic.Heuristic, error) {
	switch name {
	case "", "goalcount":
		return heuristic.NewGoalCount(problem, packer, p), nil
	case "add":
		return heuristic.NewAdditive(problem, packer, p), nil
	case "max":
		return heuristic.NewMax(problem, packer, p), nil
	case "ff":
		return heuristic.NewFF(problem, packer, p), nil
	case "lmcut":
		return heuristic.NewLMCut(problem, packer, p), nil
	case "flow":
		return heuristic.NewFlow(problem, packer, p, newSimplex, heuristic.FlowOptions{}), nil
	case "flow-ilp":
		return heuristic.NewFlow(problem, packer, p, newSimplex, heuristic.FlowOptions{Integer: true}), nil
	case "flow-lmcut":
		return heuristic.NewFlow(problem, packer, p, newSimplex, heuristic.FlowOptions{LMCutLandmarks: true}), nil
	case "pot":
		return heuristic.NewPotential(problem, packer, p, newSimplex(), heuristic.PotentialOptions{}), nil
	case "pot-all":
		return heuristic.NewPotential(problem, packer, p, newSimplex(), heuristic.PotentialOptions{AllSyntacticStates: true}), nil
	default:
		return nil, fmt.Errorf("heurselect: unknown heuristic %q", name)
	}
}

func newSimplex() lpsolver.Solver { return simplex.New() }

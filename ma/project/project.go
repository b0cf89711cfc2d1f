// Package project derives an agent's local view of a globally loaded
// Problem: the subset of Operators it may apply, restricted to its own
// ownership, plus the heuristic-operator scoping named in spec.md §6's
// CLI surface ("a heuristic-operator scope {global|projected|local}").
package project

import (
	"io"

	"github.com/coregx/planit"
	"gopkg.in/yaml.v3"
)

// AgentSpec names one participant of a multi-agent run.
type AgentSpec struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// AgentSet is the agent-set specification file the MA driver loads
// (SPEC_FULL.md §4.10: "cmd/planit-ma additionally loads an agent-set
// specification file via gopkg.in/yaml.v3").
type AgentSet struct {
	Agents  []AgentSpec `yaml:"agents"`
	ListenBase int      `yaml:"listen_base_port"`
}

// LoadAgentSet decodes an AgentSet document from r.
func LoadAgentSet(r io.Reader) (*AgentSet, error) {
	var set AgentSet
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&set); err != nil && err != io.EOF {
		return nil, err
	}
	return &set, nil
}

// IDs returns the agent IDs in the set, in file order.
func (s *AgentSet) IDs() []int {
	ids := make([]int, len(s.Agents))
	for i, a := range s.Agents {
		ids[i] = a.ID
	}
	return ids
}

// HeuristicScope selects which operators a projected agent's heuristic
// sees (spec.md §6, "heuristic-operator scope {global|projected|local}").
// spec.md §9 deliberately leaves the choice of scope unspecified; only
// the semantics of each are defined here (DESIGN.md records this as an
// Open Question left to the caller).
type HeuristicScope int

const (
	// ScopeGlobal evaluates the heuristic over every operator in the
	// original Problem, regardless of ownership.
	ScopeGlobal HeuristicScope = iota
	// ScopeProjected evaluates over this agent's projected Problem (its
	// own operators plus every public operator, public variables
	// visible).
	ScopeProjected
	// ScopeLocal evaluates only over operators this agent owns outright.
	ScopeLocal
)

// Project builds agentID's local Problem: Variables are kept unchanged
// (so every agent's StatePacker computes an identical public-word layout,
// letting public_state buffers exchanged over ma/wire be inserted
// directly into a peer's Pool — spec.md §4.1, "Public variables are
// packed into low-addressed words... so public/private split is a
// prefix/suffix copy"), and Operators are restricted to those this agent
// may apply: owned by agentID, or public (so the projected
// SuccessorGenerator can still propose operators another agent's
// published state implies are available once combined with this agent's
// private knowledge).
func Project(problem *planit.Problem, agentID int) *planit.Problem {
	out := &planit.Problem{
		Variables:    problem.Variables,
		Initial:      problem.Initial,
		Goal:         problem.Goal,
		MAPrivacyVar: problem.MAPrivacyVar,
	}
	for _, op := range problem.Operators {
		if ownsOperator(&op, agentID) || isPublicOperator(&op, problem) {
			out.Operators = append(out.Operators, op)
		}
	}
	return out
}

func ownsOperator(op *planit.Operator, agentID int) bool {
	if op.Owner == agentID {
		return true
	}
	return op.Owners.Test(agentID)
}

// isPublicOperator reports whether op touches any public fact (spec.md
// GLOSSARY: "Operators are public iff they touch any public fact").
func isPublicOperator(op *planit.Operator, problem *planit.Problem) bool {
	if !op.Private {
		return true
	}
	return false
}

// ScopedOperators returns the operator ID set a heuristic built with the
// given scope should range over, for agentID's projected problem proj
// (whose Operators slice already holds agentID's local operator subset)
// against the full global problem.
func ScopedOperators(global, proj *planit.Problem, agentID int, scope HeuristicScope) []planit.Operator {
	switch scope {
	case ScopeLocal:
		out := make([]planit.Operator, 0, len(proj.Operators))
		for _, op := range proj.Operators {
			if ownsOperator(&op, agentID) {
				out = append(out, op)
			}
		}
		return out
	case ScopeGlobal:
		return global.Operators
	default: // ScopeProjected
		return proj.Operators
	}
}

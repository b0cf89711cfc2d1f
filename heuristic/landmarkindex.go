package heuristic

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/planit"
)

// LandmarkIndex multi-pattern-matches operator names inside free-text
// landmark descriptions, the way the teacher's meta.Engine falls back to
// an Aho-Corasick automaton for large literal alternations (SPEC_FULL.md
// §4.12): here the "literals" are a problem's operator names rather than
// regex alternatives, and the haystack is a human-written diagnostic
// string rather than search input, but the matching primitive is the
// same multi-pattern automaton.
type LandmarkIndex struct {
	auto *ahocorasick.Automaton
}

// NewLandmarkIndex builds an index over every operator name in problem,
// for cmd/planit's -explain-landmarks human-readable landmark dump (cross-referencing a
// synthesized cut description against real operator names). Returns nil
// if problem has no operators to index.
func NewLandmarkIndex(problem *planit.Problem) (*LandmarkIndex, error) {
	if len(problem.Operators) == 0 {
		return nil, nil
	}
	builder := ahocorasick.NewBuilder()
	for _, op := range problem.Operators {
		builder.AddPattern([]byte(op.Name))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &LandmarkIndex{auto: auto}, nil
}

// Describe scans text and returns every operator name found embedded in
// it, in left-to-right order, deduplicated.
func (idx *LandmarkIndex) Describe(text []byte) []string {
	if idx == nil || idx.auto == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	at := 0
	for at < len(text) {
		m := idx.auto.Find(text, at)
		if m == nil {
			break
		}
		name := string(text[m.Start:m.End])
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		if m.End <= at {
			break
		}
		at = m.End
	}
	return out
}

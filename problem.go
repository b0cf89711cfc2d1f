package planit

// Problem is the fully loaded, factored-representation planning task: the
// variable set, the operator set, the initial state, and the goal
// partial-state. It is produced by an upstream loader (spec.md §6) and is
// immutable for the duration of a search.
type Problem struct {
	Variables []Variable
	Operators []Operator

	// Initial is a full assignment: every Variable must be present.
	Initial PartialState

	// Goal is a partial state: only the constrained variables are present.
	Goal PartialState

	// MAPrivacyVar is the index of the distinguished ma-privacy variable in
	// Variables, or NoVar if the problem was not loaded for multi-agent use.
	MAPrivacyVar Var
}

// Validate checks the structural invariants NewOperator cannot check in
// isolation: that Initial assigns every variable exactly once and within
// range, and that Goal only references variables within range and within
// their domain.
func (p *Problem) Validate() error {
	if len(p.Initial.Facts) != len(p.Variables) {
		return &LoadError{Reason: "initial state does not assign every variable"}
	}
	for i, v := range p.Variables {
		val, ok := p.Initial.Get(Var(i))
		if !ok {
			return &LoadError{Reason: "initial state missing variable " + v.Name}
		}
		if int(val) >= v.Range() {
			return &LoadError{Reason: "initial state value out of range for variable " + v.Name}
		}
	}
	for _, f := range p.Goal.Facts {
		if int(f.Var) >= len(p.Variables) {
			return &LoadError{Reason: "goal references unknown variable"}
		}
		if int(f.Val) >= p.Variables[f.Var].Range() {
			return &LoadError{Reason: "goal value out of range"}
		}
	}
	return nil
}

// IsGoal reports whether get (an assignment function, e.g. a packed
// state's Packer.Get) satisfies p.Goal.
func (p *Problem) IsGoal(get func(Var) Value) bool {
	return p.Goal.IsSubsetOfAssignment(get)
}

// InitialAssignment returns Initial as a dense []Value indexed by Var,
// suitable for pack.Packer.Pack. Validate must hold (every variable
// assigned exactly once) or the result is incomplete.
func (p *Problem) InitialAssignment() []Value {
	out := make([]Value, len(p.Variables))
	for _, f := range p.Initial.Facts {
		out[f.Var] = f.Val
	}
	return out
}

package planit

import (
	"io"

	"github.com/coregx/planit/internal/bitset"
	"github.com/coregx/planit/ma/wire"
)

// LoadProblem decodes the binary problem format (spec.md §6, "Problem
// input"): a Variables list, an initial assignment, a Goal partial state,
// and an Operators list, built on the same typed-record-with-bit-header
// wire primitives the multi-agent message codec uses (spec.md §6.1,
// ma/wire). The upstream PDDL/SAS+ grounding producing this format is out
// of scope for this package (SPEC_FULL.md §6.1).
func LoadProblem(r io.Reader) (*Problem, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Reason: "read", Err: err}
	}
	if len(raw) < 1 {
		return nil, &LoadError{Reason: "empty problem file"}
	}
	header := raw[0]
	rd := wire.NewReader(raw[1:], wire.DecodeHeaderEndian(header))

	vars, err := decodeVariables(rd)
	if err != nil {
		return nil, &LoadError{Reason: "decoding variables", Err: err}
	}
	initVals, err := rd.Uint32Array()
	if err != nil {
		return nil, &LoadError{Reason: "decoding initial state", Err: err}
	}
	initial, err := assignmentToPartialState(initVals)
	if err != nil {
		return nil, &LoadError{Reason: "initial state", Err: err}
	}
	goal, err := decodeFacts(rd)
	if err != nil {
		return nil, &LoadError{Reason: "decoding goal", Err: err}
	}
	ops, err := decodeOperators(rd)
	if err != nil {
		return nil, &LoadError{Reason: "decoding operators", Err: err}
	}
	maVarRaw, err := rd.Int64()
	if err != nil {
		return nil, &LoadError{Reason: "decoding ma-privacy variable", Err: err}
	}
	maVar := Var(NoVar)
	if maVarRaw >= 0 {
		maVar = Var(maVarRaw)
	}

	p := &Problem{Variables: vars, Operators: ops, Initial: initial, Goal: goal, MAPrivacyVar: maVar}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteProblem encodes problem in LoadProblem's format. Not named in
// spec.md (only the loader direction is required), but kept alongside it
// so the format has a single source of truth and is round-trip testable.
func WriteProblem(w io.Writer, problem *Problem) error {
	body := wire.NewWriter()
	encodeVariables(body, problem.Variables)
	body.Uint32Array(partialStateToAssignment(problem.Initial, len(problem.Variables)))
	encodeFacts(body, problem.Goal)
	encodeOperators(body, problem.Operators)
	maVar := int64(-1)
	if problem.MAPrivacyVar != NoVar {
		maVar = int64(problem.MAPrivacyVar)
	}
	body.Int64(maVar)

	header := byte(0)
	if wire.SenderIsBigEndian() {
		header |= byte(wire.BitBigEndian)
	}
	if _, err := w.Write([]byte{header}); err != nil {
		return err
	}
	_, err := body.WriteTo(w)
	return err
}

func decodeVariables(rd *wire.Reader) ([]Variable, error) {
	n, err := rd.Uint32()
	if err != nil {
		return nil, err
	}
	out := make([]Variable, n)
	for i := range out {
		name, err := rd.String()
		if err != nil {
			return nil, err
		}
		private, err := rd.Byte()
		if err != nil {
			return nil, err
		}
		maPrivacy, err := rd.Byte()
		if err != nil {
			return nil, err
		}
		numValues, err := rd.Uint32()
		if err != nil {
			return nil, err
		}
		values := make([]ValueInfo, numValues)
		for j := range values {
			vname, err := rd.String()
			if err != nil {
				return nil, err
			}
			vprivate, err := rd.Byte()
			if err != nil {
				return nil, err
			}
			usedBy, err := rd.Uint32Array()
			if err != nil {
				return nil, err
			}
			values[j] = ValueInfo{Name: vname, Private: vprivate != 0, UsedBy: agentsToSet(usedBy)}
		}
		out[i] = Variable{Name: name, Private: private != 0, MAPrivacy: maPrivacy != 0, Values: values}
	}
	return out, nil
}

func encodeVariables(w *wire.Writer, vars []Variable) {
	w.Uint32(uint32(len(vars)))
	for _, v := range vars {
		w.String(v.Name)
		w.Byte(boolByte(v.Private))
		w.Byte(boolByte(v.MAPrivacy))
		w.Uint32(uint32(len(v.Values)))
		for _, val := range v.Values {
			w.String(val.Name)
			w.Byte(boolByte(val.Private))
			w.Uint32Array(setToAgents(val.UsedBy))
		}
	}
}

func decodeFacts(rd *wire.Reader) (PartialState, error) {
	n, err := rd.Uint32()
	if err != nil {
		return PartialState{}, err
	}
	facts := make([]Fact, n)
	for i := range facts {
		v, err := rd.Uint32()
		if err != nil {
			return PartialState{}, err
		}
		val, err := rd.Uint32()
		if err != nil {
			return PartialState{}, err
		}
		facts[i] = Fact{Var: Var(v), Val: Value(val)}
	}
	return NewPartialState(facts...)
}

func encodeFacts(w *wire.Writer, ps PartialState) {
	w.Uint32(uint32(len(ps.Facts)))
	for _, f := range ps.Facts {
		w.Uint32(uint32(f.Var))
		w.Uint32(uint32(f.Val))
	}
}

func assignmentToPartialState(vals []uint32) (PartialState, error) {
	facts := make([]Fact, len(vals))
	for i, v := range vals {
		facts[i] = Fact{Var: Var(i), Val: Value(v)}
	}
	return NewPartialState(facts...)
}

func partialStateToAssignment(ps PartialState, numVars int) []uint32 {
	out := make([]uint32, numVars)
	for _, f := range ps.Facts {
		out[f.Var] = uint32(f.Val)
	}
	return out
}

func decodeOperators(rd *wire.Reader) ([]Operator, error) {
	n, err := rd.Uint32()
	if err != nil {
		return nil, err
	}
	out := make([]Operator, n)
	for i := range out {
		name, err := rd.String()
		if err != nil {
			return nil, err
		}
		precond, err := decodeFacts(rd)
		if err != nil {
			return nil, err
		}
		effect, err := decodeFacts(rd)
		if err != nil {
			return nil, err
		}
		numCond, err := rd.Uint32()
		if err != nil {
			return nil, err
		}
		condEffects := make([]CondEffect, numCond)
		for j := range condEffects {
			cond, err := decodeFacts(rd)
			if err != nil {
				return nil, err
			}
			ceff, err := decodeFacts(rd)
			if err != nil {
				return nil, err
			}
			condEffects[j] = CondEffect{Cond: cond, Effect: ceff}
		}
		cost, err := rd.Uint32()
		if err != nil {
			return nil, err
		}
		owner, err := rd.Int64()
		if err != nil {
			return nil, err
		}
		owners, err := rd.Uint32Array()
		if err != nil {
			return nil, err
		}
		private, err := rd.Byte()
		if err != nil {
			return nil, err
		}
		sendAgents, err := rd.Uint32Array()
		if err != nil {
			return nil, err
		}
		op, err := NewOperator(name, OpID(i), precond, effect, condEffects, cost)
		if err != nil {
			return nil, err
		}
		op.Owner = int(owner)
		op.Owners = agentsToSet(owners)
		op.Private = private != 0
		op.SendAgents = agentsToSet(sendAgents)
		out[i] = *op
	}
	return out, nil
}

func encodeOperators(w *wire.Writer, ops []Operator) {
	w.Uint32(uint32(len(ops)))
	for _, op := range ops {
		w.String(op.Name)
		encodeFacts(w, op.Precond)
		encodeFacts(w, op.Effect)
		w.Uint32(uint32(len(op.CondEffects)))
		for _, ce := range op.CondEffects {
			encodeFacts(w, ce.Cond)
			encodeFacts(w, ce.Effect)
		}
		w.Uint32(op.Cost)
		w.Int64(int64(op.Owner))
		w.Uint32Array(setToAgents(op.Owners))
		w.Byte(boolByte(op.Private))
		w.Uint32Array(setToAgents(op.SendAgents))
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func agentsToSet(ids []uint32) bitset.Set {
	s := bitset.Set{}
	for _, id := range ids {
		s.Set(int(id))
	}
	return s
}

func setToAgents(s bitset.Set) []uint32 {
	var out []uint32
	s.Each(func(i int) { out = append(out, uint32(i)) })
	return out
}

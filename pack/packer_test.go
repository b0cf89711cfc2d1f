package pack

import (
	"testing"

	"github.com/coregx/planit"
)

func rangeVar(name string, n int) planit.Variable {
	vals := make([]planit.ValueInfo, n)
	for i := range vals {
		vals[i] = planit.ValueInfo{}
	}
	return planit.Variable{Name: name, Values: vals}
}

// T6: a variable of range 6 needs 3 bits; four such variables fit into one
// 32-bit word with 20 spare bits.
func TestScenarioT6(t *testing.T) {
	v := rangeVar("x", 6)
	if got := v.BitsNeeded(); got != 3 {
		t.Fatalf("BitsNeeded(range 6) = %d, want 3", got)
	}

	vars := []planit.Variable{rangeVar("a", 6), rangeVar("b", 6), rangeVar("c", 6), rangeVar("d", 6)}
	p, err := Build(vars)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.NumWords() != 1 {
		t.Fatalf("NumWords = %d, want 1", p.NumWords())
	}
	used := 0
	for i := range vars {
		used += p.layouts[i].bits
	}
	if spare := WordBits - used; spare != 20 {
		t.Fatalf("spare bits = %d, want 20", spare)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	vars := []planit.Variable{rangeVar("a", 3), rangeVar("b", 200), rangeVar("c", 2)}
	p, err := Build(vars)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	assignment := []planit.Value{2, 150, 1}
	buf := p.Pack(assignment)
	got := p.Unpack(buf)
	for i, want := range assignment {
		if got[i] != want {
			t.Errorf("var %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestLayoutErrorOnOversizedVariable(t *testing.T) {
	huge := rangeVar("huge", 1<<33) // needs 33 bits, one more than WordBits
	if _, err := Build([]planit.Variable{huge}); err == nil {
		t.Fatal("expected LayoutError for oversized variable")
	}
}

func TestApplyPartialCorrectness(t *testing.T) {
	vars := []planit.Variable{rangeVar("a", 4), rangeVar("b", 4), rangeVar("c", 4)}
	p, err := Build(vars)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	old := p.Pack([]planit.Value{1, 2, 3})

	ps, err := planit.NewPartialState(planit.Fact{Var: 1, Val: 0})
	if err != nil {
		t.Fatalf("NewPartialState: %v", err)
	}
	val, mask := p.PackPartial(ps)
	next := Apply(old, val, mask)

	got := p.Unpack(next)
	want := []planit.Value{1, 0, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("var %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPublicPrivateSplit(t *testing.T) {
	pub := rangeVar("pub", 4)
	priv := rangeVar("priv", 4)
	priv.Private = true
	pub2 := rangeVar("pub2", 4)

	p, err := Build([]planit.Variable{pub, priv, pub2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	buf := p.Pack([]planit.Value{1, 2, 3})
	pubBuf := p.ExtractPublic(buf)
	privBuf := p.ExtractPrivate(buf)

	if got := p.Get(pubBuf, 0); got != 1 {
		t.Errorf("public var 0 lost in ExtractPublic: got %d", got)
	}
	if got := p.Get(pubBuf, 1); got != 0 {
		t.Errorf("private var leaked into ExtractPublic: got %d", got)
	}
	if got := p.Get(privBuf, 1); got != 2 {
		t.Errorf("private var lost in ExtractPrivate: got %d", got)
	}

	// Round trip through set.
	fresh := p.NewBuffer()
	p.SetPublic(fresh, pubBuf)
	p.SetPrivate(fresh, privBuf)
	for v := 0; v < 3; v++ {
		if got, want := p.Get(fresh, planit.Var(v)), p.Get(buf, planit.Var(v)); got != want {
			t.Errorf("var %d after SetPublic+SetPrivate: got %d, want %d", v, got, want)
		}
	}
}

func TestMAPrivacyWord(t *testing.T) {
	normal := rangeVar("a", 4)
	ma := planit.Variable{Name: "ma-privacy", Values: make([]planit.ValueInfo, 2), MAPrivacy: true}

	p, err := Build([]planit.Variable{normal, ma})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf := p.NewBuffer()
	if err := p.SetMAPrivacy(buf, 0xDEADBEEF); err != nil {
		t.Fatalf("SetMAPrivacy: %v", err)
	}
	got, err := p.GetMAPrivacy(buf)
	if err != nil {
		t.Fatalf("GetMAPrivacy: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("GetMAPrivacy = %x, want %x", got, 0xDEADBEEF)
	}
}

func TestMultipleMAPrivacyRejected(t *testing.T) {
	ma1 := planit.Variable{Name: "ma1", Values: make([]planit.ValueInfo, 2), MAPrivacy: true}
	ma2 := planit.Variable{Name: "ma2", Values: make([]planit.ValueInfo, 2), MAPrivacy: true}
	if _, err := Build([]planit.Variable{ma1, ma2}); err == nil {
		t.Fatal("expected error for two MAPrivacy variables")
	}
}

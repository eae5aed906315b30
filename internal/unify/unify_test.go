package unify

import (
	"testing"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

func TestUnifyPrimEqual(t *testing.T) {
	s, err := Unify(syntax.TInt, syntax.TInt, New())
	if err != nil {
		t.Fatalf("unify(int, int) failed: %v", err)
	}
	if len(s.Types) != 0 {
		t.Fatalf("unifying two identical prims should not bind anything, got %v", s.Types)
	}
}

func TestUnifyPrimMismatch(t *testing.T) {
	_, err := Unify(syntax.TInt, syntax.TString, New())
	if err == nil {
		t.Fatal("expected CannotUnify for int vs string")
	}
}

func TestUnifyVarBindsAndApplies(t *testing.T) {
	s, err := Unify(syntax.TVar{N: 1}, syntax.TInt, New())
	if err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	got := Apply(s, syntax.TVar{N: 1})
	if got.String() != syntax.TInt.String() {
		t.Fatalf("Apply after bind = %v, want int", got)
	}
}

func TestUnifySoundness(t *testing.T) {
	// Testable Property 5: if unify(t1, t2) = Ok(sigma) then
	// apply(sigma, t1) = apply(sigma, t2).
	t1 := syntax.TVar{N: 1}
	t2 := syntax.TTuple{Elems: []syntax.Type{syntax.TInt, syntax.TVar{N: 2}}}
	s, err := Unify(t1, t2, New())
	if err != nil {
		t.Fatalf("unify failed: %v", err)
	}
	a1 := Apply(s, t1)
	a2 := Apply(s, t2)
	if a1.String() != a2.String() {
		t.Fatalf("unification unsound: apply(s,t1)=%v apply(s,t2)=%v", a1, a2)
	}
}

func TestOccursCheckFails(t *testing.T) {
	// Testable Property 6: unify(Var(a), F(a)) fails for any F.
	v := syntax.TVar{N: 1}
	f := syntax.TList{Elem: v}
	_, err := Unify(v, f, New())
	if err == nil {
		t.Fatal("expected occurs check failure")
	}
	var oc *OccursCheck
	if _, ok := err.(*OccursCheck); !ok {
		_ = oc
		t.Fatalf("expected *OccursCheck, got %T: %v", err, err)
	}
}

func TestUnifyEffectIdenticalRows(t *testing.T) {
	left := effect.Extend(effect.Label("exn"), effect.Empty())
	right := effect.Extend(effect.Label("exn"), effect.Empty())
	s, err := UnifyEffect(left, right, New())
	if err != nil {
		t.Fatalf("unify identical rows failed: %v", err)
	}
	_ = s
}

func TestUnifyEffectUnknownAbsorbs(t *testing.T) {
	_, err := UnifyEffect(effect.Unknown(), effect.Exn([]string{"ArgumentError"}), New())
	if err != nil {
		t.Fatalf("Unknown should unify with anything, got %v", err)
	}
}

func TestComposeAppliesSecondToFirstsRange(t *testing.T) {
	s1 := New()
	s1.Types[1] = syntax.TVar{N: 2}
	s2 := New()
	s2.Types[2] = syntax.TInt

	composed := Compose(s1, s2)
	got := Apply(composed, syntax.TVar{N: 1})
	if got.String() != syntax.TInt.String() {
		t.Fatalf("Compose did not chain substitutions, got %v", got)
	}
}

func TestMakeIdempotent(t *testing.T) {
	s := New()
	s.Types[1] = syntax.TVar{N: 2}
	s.Types[2] = syntax.TInt

	idem := MakeIdempotent(s)
	got := Apply(idem, syntax.TVar{N: 1})
	if got.String() != syntax.TInt.String() {
		t.Fatalf("MakeIdempotent did not fully resolve chain, got %v", got)
	}
}

package infer

import (
	"testing"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
)

func newLookup(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	r.DefineModule("IO", registry.ModuleDescription{
		Whitelist: registry.ExactMap{Entries: map[string][]registry.ArityEffect{
			"puts": {{Arity: 1, Effect: effect.CompactEffect{Tag: effect.PuritySide, MFAs: []string{"IO.puts/1"}}}},
		}},
		NonTerminating: map[registry.NameArity]bool{},
	})
	r.DefineModule("Kernel", registry.ModuleDescription{
		Whitelist:      registry.AllExcept{Excluded: map[registry.NameArity]bool{}},
		NonTerminating: map[registry.NameArity]bool{},
	})
	return r
}

func TestLiteralIsPure(t *testing.T) {
	clause := syntax.FuncClause{
		Name:  "f",
		Arity: 0,
		Body:  syntax.Lit{Kind: "int", Value: 1},
	}
	res := InferClause("Example", clause, newLookup(t))
	if effect.Compact(res.Effect).Tag != effect.PurityPure {
		t.Fatalf("literal body should be pure, got %v", res.Effect)
	}
}

func TestRemoteCallSide(t *testing.T) {
	// f(x) = IO.puts(x)
	clause := syntax.FuncClause{
		Name:   "f",
		Arity:  1,
		Params: []syntax.Pattern{syntax.PVar{Name: "x"}},
		Body: syntax.RemoteCall{
			Target: syntax.MFA{Module: "IO", Name: "puts", Arity: 1},
			Args:   []syntax.Node{syntax.VarRef{Name: "x"}},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	compact := effect.Compact(res.Effect)
	if compact.Tag != effect.PuritySide {
		t.Fatalf("expected side effect, got %v (errors=%v)", compact, res.Errors)
	}
	if len(compact.MFAs) != 1 || compact.MFAs[0] != "IO.puts/1" {
		t.Fatalf("expected MFA payload [IO.puts/1], got %v", compact.MFAs)
	}
}

func TestRaiseModuleLiteral(t *testing.T) {
	clause := syntax.FuncClause{
		Name:  "f",
		Arity: 0,
		Body: syntax.Raise{
			Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	compact := effect.Compact(res.Effect)
	if compact.Tag != effect.PurityException {
		t.Fatalf("expected exception effect, got %v", compact)
	}
	if len(compact.Tags) != 1 || compact.Tags[0] != "ArgumentError" {
		t.Fatalf("expected tag ArgumentError, got %v", compact.Tags)
	}
}

func TestRaiseVariableIsDynamic(t *testing.T) {
	clause := syntax.FuncClause{
		Name:   "f",
		Arity:  1,
		Params: []syntax.Pattern{syntax.PVar{Name: "e"}},
		Body: syntax.Raise{
			Arg: syntax.VarRef{Name: "e"},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	compact := effect.Compact(res.Effect)
	if compact.Tag != effect.PurityException || len(compact.Tags) != 1 || compact.Tags[0] != effect.DynamicTag {
		t.Fatalf("expected dynamic exception tag, got %v", compact)
	}
}

func TestUndefinedVariableRecordsError(t *testing.T) {
	clause := syntax.FuncClause{
		Name:  "f",
		Arity: 0,
		Body:  syntax.VarRef{Name: "nope"},
	}
	res := InferClause("Example", clause, newLookup(t))
	if len(res.Errors) != 1 || res.Errors[0].Kind != ErrUndefinedVariable {
		t.Fatalf("expected one undefined_variable error, got %v", res.Errors)
	}
}

func TestLambdaDependentClassification(t *testing.T) {
	// apply_all(f, x) = f.(x) — f is a higher-order param, body effect
	// is entirely a function of calling it, so this should classify
	// as lambda-dependent when the callee's own effect is unresolved.
	clause := syntax.FuncClause{
		Name:   "apply_all",
		Arity:  2,
		Params: []syntax.Pattern{syntax.PVar{Name: "f"}, syntax.PVar{Name: "x"}},
		Body: syntax.DynamicCall{
			Head: syntax.VarRef{Name: "f"},
			Args: []syntax.Node{syntax.VarRef{Name: "x"}},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	compact := effect.Compact(res.Effect)
	if compact.Tag != effect.PurityLambda {
		t.Fatalf("expected lambda-dependent classification, got %v", compact)
	}
}

func TestIfCombinesBothBranches(t *testing.T) {
	clause := syntax.FuncClause{
		Name:  "f",
		Arity: 0,
		Body: syntax.If{
			Cond: syntax.Lit{Kind: "bool", Value: true},
			Then: syntax.RemoteCall{Target: syntax.MFA{Module: "IO", Name: "puts", Arity: 1}, Args: []syntax.Node{syntax.Lit{Kind: "string", Value: "x"}}},
			Else: syntax.Lit{Kind: "int", Value: 0},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	if effect.Compact(res.Effect).Tag != effect.PuritySide {
		t.Fatalf("expected side effect from the then-branch, got %v", res.Effect)
	}
}

func TestBlockThreadsMatchBindings(t *testing.T) {
	// f() = (y = 1; IO.puts(y))
	clause := syntax.FuncClause{
		Name:  "f",
		Arity: 0,
		Body: syntax.Block{
			Exprs: []syntax.Node{
				syntax.Match{Pattern: syntax.PVar{Name: "y"}, Value: syntax.Lit{Kind: "int", Value: 1}},
				syntax.RemoteCall{Target: syntax.MFA{Module: "IO", Name: "puts", Arity: 1}, Args: []syntax.Node{syntax.VarRef{Name: "y"}}},
			},
		},
	}
	res := InferClause("Example", clause, newLookup(t))
	if len(res.Errors) != 0 {
		t.Fatalf("match binding should be visible to later block expressions, got errors %v", res.Errors)
	}
	if effect.Compact(res.Effect).Tag != effect.PuritySide {
		t.Fatalf("expected side effect, got %v", res.Effect)
	}
}

package trycatch

import (
	"testing"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

type fakeLookup struct {
	info map[syntax.MFA]effect.ExceptionInfo
}

func (f fakeLookup) ExceptionInfo(mfa syntax.MFA) (effect.ExceptionInfo, bool) {
	info, ok := f.info[mfa]
	return info, ok
}

func TestRaiseModuleLiteralRecorded(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectLow)
	if !info.Errors.Contains("ArgumentError") {
		t.Fatalf("expected ArgumentError recorded, got %v", info)
	}
}

func TestTryCatchExactTagSubtracts(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.Try{
			Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}},
			Catches: []syntax.CatchClause{
				{Class: syntax.ClassError, Tag: syntax.PStruct{Module: "ArgumentError"}, Body: syntax.Lit{Kind: "int", Value: 0}},
			},
		},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectLow)
	if info.Errors.Contains("ArgumentError") {
		t.Fatalf("expected ArgumentError to be caught and subtracted, got %v", info)
	}
}

func TestTryCatchWildcardCannotProveWhatItCaught(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.Try{
			Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}},
			Catches: []syntax.CatchClause{
				{Class: syntax.ClassError, Tag: syntax.PVar{Name: "e"}, Body: syntax.Lit{Kind: "int", Value: 0}},
			},
		},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectLow)
	if !info.Errors.Contains("ArgumentError") {
		t.Fatalf("expected a variable catch to leave the concrete raised tag in place (set - Dynamic = set), got %v", info)
	}
}

func TestTryCatchMismatchedTagSurvives(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.Try{
			Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}},
			Catches: []syntax.CatchClause{
				{Class: syntax.ClassError, Tag: syntax.PStruct{Module: "RuntimeError"}, Body: syntax.Lit{Kind: "int", Value: 0}},
			},
		},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectLow)
	if !info.Errors.Contains("ArgumentError") {
		t.Fatalf("expected unmatched tag to survive the catch, got %v", info)
	}
}

func TestDialectHighIsConservative(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.Try{
			Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}},
			Catches: []syntax.CatchClause{
				{Class: syntax.ClassError, Tag: syntax.PStruct{Module: "ArgumentError"}, Body: syntax.Lit{Kind: "int", Value: 0}},
			},
		},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectHigh)
	if !info.Errors.Contains("ArgumentError") {
		t.Fatalf("expected DialectHigh to skip subtraction conservatively, got %v", info)
	}
}

func TestCalleeExceptionPropagates(t *testing.T) {
	lookup := fakeLookup{info: map[syntax.MFA]effect.ExceptionInfo{
		{Module: "Other", Name: "boom", Arity: 0}: {Errors: effect.NewExceptionSet([]string{"RuntimeError"})},
	}}
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.RemoteCall{Target: syntax.MFA{Module: "Other", Name: "boom", Arity: 0}},
	}
	info := AnalyzeClause("Example", clause, lookup, syntax.DialectLow)
	if !info.Errors.Contains("RuntimeError") {
		t.Fatalf("expected callee's exception to propagate, got %v", info)
	}
}

func TestUnknownCalleeIsDynamic(t *testing.T) {
	clause := syntax.FuncClause{
		Name: "f", Arity: 0,
		Body: syntax.RemoteCall{Target: syntax.MFA{Module: "Unseen", Name: "f", Arity: 0}},
	}
	info := AnalyzeClause("Example", clause, fakeLookup{}, syntax.DialectLow)
	if !info.Errors.Dynamic {
		t.Fatalf("expected unresolved callee to be treated as dynamic, got %v", info)
	}
}

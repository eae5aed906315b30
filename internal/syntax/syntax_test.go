package syntax

import "testing"

func TestMFAString(t *testing.T) {
	tests := []struct {
		name string
		mfa  MFA
		want string
	}{
		{"simple", MFA{Module: "IO", Name: "puts", Arity: 1}, "IO.puts/1"},
		{"zero arity", MFA{Module: "Kernel", Name: "self", Arity: 0}, "Kernel.self/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mfa.String(); got != tt.want {
				t.Errorf("MFA.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModuleFunctions(t *testing.T) {
	m := Module{
		Name: "Example",
		Clauses: []FuncClause{
			{Name: "f", Arity: 1},
			{Name: "f", Arity: 1}, // second clause, same MFA
			{Name: "g", Arity: 2},
		},
	}
	got := m.Functions()
	if len(got) != 2 {
		t.Fatalf("Functions() returned %d entries, want 2 (deduped by MFA): %v", len(got), got)
	}
}

func TestModuleClausesFor(t *testing.T) {
	m := Module{
		Name: "Example",
		Clauses: []FuncClause{
			{Name: "f", Arity: 1, Body: Lit{Kind: "int", Value: 1}},
			{Name: "f", Arity: 1, Body: Lit{Kind: "int", Value: 2}},
			{Name: "f", Arity: 2, Body: Lit{Kind: "int", Value: 3}},
		},
	}
	got := m.ClausesFor("f", 1)
	if len(got) != 2 {
		t.Fatalf("ClausesFor(f, 1) returned %d clauses, want 2", len(got))
	}
}

func TestDialectString(t *testing.T) {
	if DialectHigh.String() != "high" || DialectLow.String() != "low" {
		t.Errorf("unexpected Dialect.String() values: high=%q low=%q", DialectHigh.String(), DialectLow.String())
	}
}

func TestPosString(t *testing.T) {
	p := Pos{Module: "Foo", Line: 12}
	if p.String() != "Foo:12" {
		t.Errorf("Pos.String() = %q, want %q", p.String(), "Foo:12")
	}
	p2 := Pos{Module: "Foo"}
	if p2.String() != "Foo" {
		t.Errorf("Pos.String() with no line = %q, want %q", p2.String(), "Foo")
	}
}

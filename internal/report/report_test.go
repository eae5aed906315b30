package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/orchestrator"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
)

func sampleProjectResult() orchestrator.ProjectResult {
	mods := []syntax.Module{
		{Name: "Example", Clauses: []syntax.FuncClause{
			{Name: "pure_fn", Arity: 0, Body: syntax.Lit{Kind: "int", Value: 1}},
			{Name: "writer", Arity: 0, Body: syntax.RemoteCall{
				Target: syntax.MFA{Module: "IO", Name: "puts", Arity: 1},
				Args:   []syntax.Node{syntax.Lit{Kind: "string", Value: "x"}},
			}},
			{Name: "raiser", Arity: 0, Body: syntax.Raise{Arg: syntax.Lit{Kind: "atom", Value: "ArgumentError"}}},
		}},
	}
	r := registry.New()
	r.DefineModule("IO", registry.ModuleDescription{
		Whitelist: registry.ExactMap{Entries: map[string][]registry.ArityEffect{
			"puts": {{Arity: 1, Effect: effect.CompactEffect{Tag: effect.PuritySide, MFAs: []string{"IO.puts/1"}}}},
		}},
	})
	return orchestrator.AnalyzeProject(mods, r, orchestrator.Options{})
}

func TestWriteTextIncludesFunctionsAndTags(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleProjectResult()); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Example") {
		t.Errorf("expected module name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Example.pure_fn/0") {
		t.Errorf("expected pure_fn MFA in output, got:\n%s", out)
	}
}

func TestWriteJSONValidAgainstSchema(t *testing.T) {
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		t.Fatalf("failed to parse schema JSON: %v", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", sch); err != nil {
		t.Fatalf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleProjectResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if err := compiled.Validate(inst); err != nil {
		t.Errorf("JSON output does not conform to schema:\n%v", err)
	}
}

func TestBuildModuleReportsListsExceptionTag(t *testing.T) {
	reports := BuildModuleReports(sampleProjectResult())
	if len(reports) != 1 {
		t.Fatalf("expected one module report, got %d", len(reports))
	}
	found := false
	for _, fn := range reports[0].Functions {
		if fn.MFA == "Example.raiser/0" {
			found = true
			if len(fn.Exceptions) != 1 || fn.Exceptions[0] != "ArgumentError" {
				t.Errorf("expected ArgumentError exception tag, got %v", fn.Exceptions)
			}
		}
	}
	if !found {
		t.Fatalf("expected raiser/0 in function reports")
	}
}

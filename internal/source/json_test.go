package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/unbound-force/scry/internal/syntax"
)

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "module.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestJSONFileLoadDecodesSimpleFunction(t *testing.T) {
	path := writeFixture(t, `{
		"name": "Example",
		"dialect": "low",
		"clauses": [
			{
				"name": "add",
				"arity": 2,
				"params": [{"kind": "var", "name": "a"}, {"kind": "var", "name": "b"}],
				"body": {"kind": "remote_call", "module": "Kernel", "fn": "+", "arity": 2,
					"args": [{"kind": "var", "name": "a"}, {"kind": "var", "name": "b"}]}
			}
		]
	}`)

	var src JSONFile
	mod, err := src.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if mod.Name != "Example" {
		t.Errorf("module name = %q, want Example", mod.Name)
	}
	if len(mod.Clauses) != 1 {
		t.Fatalf("expected one clause, got %d", len(mod.Clauses))
	}
	clause := mod.Clauses[0]
	if clause.Name != "add" || clause.Arity != 2 {
		t.Errorf("clause = %+v, want add/2", clause)
	}
	call, ok := clause.Body.(syntax.RemoteCall)
	if !ok {
		t.Fatalf("expected RemoteCall body, got %T", clause.Body)
	}
	if call.Target.Module != "Kernel" || call.Target.Name != "+" || call.Target.Arity != 2 {
		t.Errorf("unexpected call target: %+v", call.Target)
	}
}

func TestJSONFileLoadMissingFileErrors(t *testing.T) {
	var src JSONFile
	if _, err := src.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestJSONFileLoadRejectsUnknownNodeKind(t *testing.T) {
	path := writeFixture(t, `{
		"name": "Bad",
		"clauses": [{"name": "f", "arity": 0, "body": {"kind": "bogus"}}]
	}`)
	var src JSONFile
	if _, err := src.Load(path); err == nil {
		t.Fatal("expected an error for an unknown node kind")
	}
}

func TestJSONFileLoadDecodesTryCatch(t *testing.T) {
	path := writeFixture(t, `{
		"name": "Example",
		"dialect": "low",
		"clauses": [{
			"name": "safe_div",
			"arity": 2,
			"body": {
				"kind": "try",
				"body": {"kind": "lit", "lit_kind": "int", "value": 1},
				"catches": [{
					"class": "error",
					"tag": {"kind": "struct", "module": "ArithmeticError"},
					"body": {"kind": "lit", "lit_kind": "atom", "value": "error"}
				}]
			}
		}]
	}`)
	var src JSONFile
	mod, err := src.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tr, ok := mod.Clauses[0].Body.(syntax.Try)
	if !ok {
		t.Fatalf("expected Try body, got %T", mod.Clauses[0].Body)
	}
	if len(tr.Catches) != 1 || tr.Catches[0].Class != syntax.ClassError {
		t.Fatalf("expected one error catch clause, got %+v", tr.Catches)
	}
	if _, ok := tr.Catches[0].Tag.(syntax.PStruct); !ok {
		t.Fatalf("expected PStruct tag, got %T", tr.Catches[0].Tag)
	}
}

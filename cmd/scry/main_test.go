package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeModuleFixture(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "module.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

const examplePureModule = `{
	"name": "Example",
	"dialect": "low",
	"clauses": [
		{"name": "answer", "arity": 0, "body": {"kind": "lit", "lit_kind": "int", "value": 42}}
	]
}`

func TestRunAnalyzeInvalidFormat(t *testing.T) {
	path := writeModuleFixture(t, examplePureModule)
	err := runAnalyze(analyzeParams{
		modulePaths: []string{path},
		format:      "yaml",
	}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
	if !strings.Contains(err.Error(), `invalid format "yaml"`) {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestRunAnalyzeRequiresModulePath(t *testing.T) {
	err := runAnalyze(analyzeParams{format: "text"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error when no module paths are given")
	}
}

func TestRunAnalyzeTextFormat(t *testing.T) {
	path := writeModuleFixture(t, examplePureModule)
	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{
		modulePaths: []string{path},
		format:      "text",
	}, &stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "Example") {
		t.Errorf("expected output to contain module name, got:\n%s", out)
	}
	if !strings.Contains(out, "Example.answer/0") {
		t.Errorf("expected output to contain the function MFA, got:\n%s", out)
	}
}

func TestRunAnalyzeJSONFormat(t *testing.T) {
	path := writeModuleFixture(t, examplePureModule)
	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{
		modulePaths: []string{path},
		format:      "json",
	}, &stdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput:\n%s", err, stdout.String())
	}
	if _, ok := parsed["modules"]; !ok {
		t.Errorf("JSON output missing 'modules' key")
	}
}

func TestRunAnalyzeMissingModuleFile(t *testing.T) {
	err := runAnalyze(analyzeParams{
		modulePaths: []string{filepath.Join(t.TempDir(), "missing.json")},
		format:      "text",
	}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for a missing module file")
	}
}

func TestRunAnalyzeUnknownRegistryPathIsEmptyRegistry(t *testing.T) {
	path := writeModuleFixture(t, examplePureModule)
	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{
		modulePaths: []string{path},
		format:      "text",
		registryFl:  filepath.Join(t.TempDir(), "does-not-exist.yaml"),
	}, &stdout)
	if err != nil {
		t.Fatalf("unexpected error loading a missing registry: %v", err)
	}
}

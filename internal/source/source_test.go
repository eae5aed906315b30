package source

import (
	"testing"

	"github.com/unbound-force/scry/internal/syntax"
)

func TestMemLoadReturnsRegisteredModule(t *testing.T) {
	mod := syntax.Module{Name: "A"}
	src := NewMem(map[string]syntax.Module{"a.beam": mod})

	got, err := src.Load("a.beam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "A" {
		t.Fatalf("expected module A, got %v", got)
	}
}

func TestMemLoadMissingPathErrors(t *testing.T) {
	src := NewMem(nil)
	if _, err := src.Load("missing.beam"); err == nil {
		t.Fatalf("expected an error for an unregistered path")
	}
}

func TestMemLoadIsIsolatedFromCallerMap(t *testing.T) {
	backing := map[string]syntax.Module{"a.beam": {Name: "A"}}
	src := NewMem(backing)
	backing["a.beam"] = syntax.Module{Name: "Mutated"}

	got, err := src.Load("a.beam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "A" {
		t.Fatalf("expected Mem to defensively copy its backing map, got %v", got)
	}
}

package cache

import (
	"testing"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
)

func TestMergePreservesUntouchedEntries(t *testing.T) {
	base := New()
	f := syntax.MFA{Module: "App", Name: "f", Arity: 0}
	g := syntax.MFA{Module: "App", Name: "g", Arity: 0}
	base.Set(f, effect.Pure())

	update := New()
	update.Set(g, effect.CompactEffect{Tag: effect.PuritySide, MFAs: []string{"IO.puts/1"}})

	base.Merge(update)

	if ce, ok := base.Get(f); !ok || ce.Tag != effect.PurityPure {
		t.Fatalf("f should survive the merge untouched, got %v ok=%v", ce, ok)
	}
	if ce, ok := base.Get(g); !ok || ce.Tag != effect.PuritySide {
		t.Fatalf("g should be added by the merge, got %v ok=%v", ce, ok)
	}
}

func TestViewFallsBackToRegistry(t *testing.T) {
	r := registry.New()
	mfa := syntax.MFA{Module: "IO", Name: "puts", Arity: 1}
	r.DefineModule("IO", registry.ModuleDescription{
		Whitelist: registry.ExactMap{Entries: map[string][]registry.ArityEffect{
			"puts": {{Arity: 1, Effect: effect.CompactEffect{Tag: effect.PuritySide, MFAs: []string{"IO.puts/1"}}}},
		}},
		NonTerminating: map[registry.NameArity]bool{},
	})
	c := New()
	v := NewView(c, r)

	ce, ok := v.Effect(mfa)
	if !ok || ce.Tag != effect.PuritySide {
		t.Fatalf("View should fall back to the registry on a cache miss, got %v ok=%v", ce, ok)
	}
}

func TestViewCacheTakesPrecedenceOverRegistry(t *testing.T) {
	r := registry.New()
	mfa := syntax.MFA{Module: "App", Name: "f", Arity: 0}
	c := New()
	c.Set(mfa, effect.Pure())
	v := NewView(c, r)

	ce, ok := v.Effect(mfa)
	if !ok || ce.Tag != effect.PurityPure {
		t.Fatalf("cache entry should win, got %v ok=%v", ce, ok)
	}
}

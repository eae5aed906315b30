// Package registry implements the curated stdlib whitelist (§4.2,
// §6.2, §6.4): per-module descriptions of which (name, arity) pairs
// are known, their compact effect, optional exception info,
// termination flag, and wrapper-to-leaves resolution — plus the
// mutable runtime cache hooks the registry's own contract exposes.
package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

// NameArity identifies a function within a module by name and arity
// only, the key shape §4.2's AllExcept/ExactMap whitelists use.
type NameArity struct {
	Name  string
	Arity int
}

// ArityEffect pairs an arity with its known compact effect, the
// ExactMap whitelist's per-entry payload.
type ArityEffect struct {
	Arity         int
	Effect        effect.CompactEffect
	Exception     effect.ExceptionInfo
	ResolveLeaves []syntax.MFA
}

// Whitelist is one module's whitelist shape: All, AllExcept, or
// ExactMap (§4.2). Only ExactMap carries per-function effect data;
// the other two shapes describe coverage, not classification, and are
// consulted only by the lookup precedence rule below.
type Whitelist interface {
	whitelistKind()
}

// All marks every (name, arity) in the module as known and effectless
// unless overridden elsewhere; the permissive default.
type All struct{}

func (All) whitelistKind() {}

// AllExcept marks every (name, arity) as known except the given set,
// which is treated as unknown. An empty Excluded set is the
// permissive default §4.2 calls out explicitly.
type AllExcept struct {
	Excluded map[NameArity]bool
}

func (AllExcept) whitelistKind() {}

// ExactMap only knows the specific (name, arity) entries listed.
type ExactMap struct {
	Entries map[string][]ArityEffect
}

func (ExactMap) whitelistKind() {}

// ModuleDescription is one module's entry in the registry description
// file: its whitelist shape plus the non-termination list (§4.2
// terminates).
type ModuleDescription struct {
	Whitelist      Whitelist
	NonTerminating map[NameArity]bool
}

// Registry is the process-wide, immutable-for-a-run stdlib whitelist
// (§3.5), with a mutable runtime cache layered on top for
// `add_to_runtime_cache`/`set_runtime_cache` (§4.2, §5).
type Registry struct {
	modules map[syntax.Symbol]ModuleDescription
	runtime map[syntax.MFA]effect.CompactEffect
}

// New returns an empty registry: every query misses, which callers
// interpret as "unknown — treat conservatively" (§4.2).
func New() *Registry {
	return &Registry{
		modules: make(map[syntax.Symbol]ModuleDescription),
		runtime: make(map[syntax.MFA]effect.CompactEffect),
	}
}

// Load reads a YAML registry description from path. A missing file
// yields an empty registry, not an error (§6.4).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading registry %q: %w", path, err)
	}

	var doc registryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing registry %q: %w", path, err)
	}
	return doc.toRegistry(), nil
}

// entry lookup precedence (§4.2): ExactMap hit by (name, arity) >
// AllExcept decision > All.
func (r *Registry) lookupEntry(mfa syntax.MFA) (ArityEffect, bool) {
	mod, ok := r.modules[mfa.Module]
	if !ok {
		return ArityEffect{}, false
	}
	switch wl := mod.Whitelist.(type) {
	case ExactMap:
		for _, ae := range wl.Entries[string(mfa.Name)] {
			if ae.Arity == mfa.Arity {
				return ae, true
			}
		}
		return ArityEffect{}, false
	case AllExcept:
		if wl.Excluded[NameArity{Name: string(mfa.Name), Arity: mfa.Arity}] {
			return ArityEffect{}, false
		}
		return ArityEffect{Arity: mfa.Arity, Effect: effect.Pure()}, true
	case All:
		return ArityEffect{Arity: mfa.Arity, Effect: effect.Pure()}, true
	default:
		return ArityEffect{}, false
	}
}

// Effect implements effect.Resolver: a direct lookup only, checking
// the runtime cache first (it may have been seeded with a more
// specific result than the static description, §4.2 add_to_runtime_cache).
func (r *Registry) Effect(mfa syntax.MFA) (effect.CompactEffect, bool) {
	if ce, ok := r.runtime[mfa]; ok {
		return ce, true
	}
	ae, ok := r.lookupEntry(mfa)
	if !ok {
		return effect.CompactEffect{}, false
	}
	return ae.Effect, true
}

// ExceptionInfo returns the direct exception-info entry, or false if
// not found.
func (r *Registry) ExceptionInfo(mfa syntax.MFA) (effect.ExceptionInfo, bool) {
	ae, ok := r.lookupEntry(mfa)
	if !ok {
		return effect.ExceptionInfo{}, false
	}
	return ae.Exception, true
}

// Terminates reports true unless mfa is explicitly in its module's
// non-termination list (§4.2).
func (r *Registry) Terminates(mfa syntax.MFA) bool {
	mod, ok := r.modules[mfa.Module]
	if !ok {
		return true
	}
	return !mod.NonTerminating[NameArity{Name: string(mfa.Name), Arity: mfa.Arity}]
}

// ResolveToLeaves implements effect.Resolver: returns the documented
// leaf callees for a wrapper function, or false if the entry carries
// none.
func (r *Registry) ResolveToLeaves(mfa syntax.MFA) ([]syntax.MFA, bool) {
	ae, ok := r.lookupEntry(mfa)
	if !ok || len(ae.ResolveLeaves) == 0 {
		return nil, false
	}
	return ae.ResolveLeaves, true
}

// AddToRuntimeCache records a single resolved effect into the
// process-wide runtime cache (§4.2, §5 sole-writer convention — the
// orchestrator is the only caller).
func (r *Registry) AddToRuntimeCache(mfa syntax.MFA, ce effect.CompactEffect) {
	r.runtime[mfa] = ce
}

// SetRuntimeCache replaces the entire runtime cache, used when the
// orchestrator seeds a baseline layer from a prior pass (§3.5).
func (r *Registry) SetRuntimeCache(m map[syntax.MFA]effect.CompactEffect) {
	cp := make(map[syntax.MFA]effect.CompactEffect, len(m))
	for k, v := range m {
		cp[k] = v
	}
	r.runtime = cp
}

// DefineModule installs a module's description directly, used by
// tests and by Load's YAML decoding.
func (r *Registry) DefineModule(name syntax.Symbol, desc ModuleDescription) {
	r.modules[name] = desc
}

// HasModule reports whether name has a description in this registry —
// the signal callgraph.Build uses to categorize a missing module as
// library (known stdlib, just not part of the analyzed project) versus
// application (genuinely absent, §4.6).
func (r *Registry) HasModule(name syntax.Symbol) bool {
	_, ok := r.modules[name]
	return ok
}

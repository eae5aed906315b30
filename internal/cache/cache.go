// Package cache implements the two-tier process-wide cache (§3.5,
// §4.9): MFA -> CompactEffect and MFA -> ExceptionInfo, with
// merge-preserving updates and a read-only View for inference to
// consult, keeping the orchestrator the sole writer (§5).
package cache

import (
	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
)

// Cache is the mutable two-tier mapping. It is not safe for
// concurrent writers; the orchestrator is the sole writer per §5, and
// concurrent reads are safe once a pass has finished writing.
type Cache struct {
	effects    map[syntax.MFA]effect.CompactEffect
	exceptions map[syntax.MFA]effect.ExceptionInfo
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		effects:    make(map[syntax.MFA]effect.CompactEffect),
		exceptions: make(map[syntax.MFA]effect.ExceptionInfo),
	}
}

// NewFromBaseline clones an existing cache as the starting layer for
// a new pass (§3.5's "layered" cache: prior module analyses may be
// preserved and merged, new entries override).
func NewFromBaseline(baseline *Cache) *Cache {
	c := New()
	if baseline == nil {
		return c
	}
	for k, v := range baseline.effects {
		c.effects[k] = v
	}
	for k, v := range baseline.exceptions {
		c.exceptions[k] = v
	}
	return c
}

// Get returns the cached compact effect for mfa, if any.
func (c *Cache) Get(mfa syntax.MFA) (effect.CompactEffect, bool) {
	ce, ok := c.effects[mfa]
	return ce, ok
}

// GetException returns the cached exception info for mfa, if any.
func (c *Cache) GetException(mfa syntax.MFA) (effect.ExceptionInfo, bool) {
	info, ok := c.exceptions[mfa]
	return info, ok
}

// Set records mfa's compact effect, overwriting any prior entry.
func (c *Cache) Set(mfa syntax.MFA, ce effect.CompactEffect) {
	c.effects[mfa] = ce
}

// SetException records mfa's exception info, overwriting any prior entry.
func (c *Cache) SetException(mfa syntax.MFA, info effect.ExceptionInfo) {
	c.exceptions[mfa] = info
}

// Merge folds other into c: entries in other are written, existing
// entries for MFAs other does not mention survive untouched (§4.9).
func (c *Cache) Merge(other *Cache) {
	if other == nil {
		return
	}
	for k, v := range other.effects {
		c.effects[k] = v
	}
	for k, v := range other.exceptions {
		c.exceptions[k] = v
	}
}

// Snapshot returns a defensive copy of the current effect map, for
// fixed-point convergence comparisons (§4.7) that must not alias the
// live cache being mutated by the next iteration.
func (c *Cache) Snapshot() map[syntax.MFA]effect.CompactEffect {
	out := make(map[syntax.MFA]effect.CompactEffect, len(c.effects))
	for k, v := range c.effects {
		out[k] = v
	}
	return out
}

// View is a read-only, registry-falling-back window into the cache,
// handed to inference so it never holds a writable *Cache (§5
// sole-writer convention). It satisfies effect.Resolver.
type View struct {
	cache    *Cache
	registry *registry.Registry
}

// NewView builds a View over cache, falling back to registry on miss.
func NewView(c *Cache, r *registry.Registry) View {
	return View{cache: c, registry: r}
}

// Effect implements effect.Resolver: cache first, then registry
// (§4.4 Application rule 2: "Look up the callee's effect via Cache
// then Registry").
func (v View) Effect(mfa syntax.MFA) (effect.CompactEffect, bool) {
	if ce, ok := v.cache.Get(mfa); ok {
		return ce, ok
	}
	if v.registry == nil {
		return effect.CompactEffect{}, false
	}
	return v.registry.Effect(mfa)
}

// ResolveToLeaves delegates to the registry; the cache never stores
// wrapper-to-leaves relationships, only resolved effects.
func (v View) ResolveToLeaves(mfa syntax.MFA) ([]syntax.MFA, bool) {
	if v.registry == nil {
		return nil, false
	}
	return v.registry.ResolveToLeaves(mfa)
}

// ExceptionInfo returns mfa's exception info, cache first then registry.
func (v View) ExceptionInfo(mfa syntax.MFA) (effect.ExceptionInfo, bool) {
	if info, ok := v.cache.GetException(mfa); ok {
		return info, ok
	}
	if v.registry == nil {
		return effect.ExceptionInfo{}, false
	}
	return v.registry.ExceptionInfo(mfa)
}

// Terminates delegates to the registry (the cache does not track
// termination, only effects and exceptions).
func (v View) Terminates(mfa syntax.MFA) bool {
	if v.registry == nil {
		return true
	}
	return v.registry.Terminates(mfa)
}

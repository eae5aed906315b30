// Package orchestrator is the analyzer's public API (§6.3): it drives
// pre-expand -> extract calls -> build dependency graph -> propagate
// -> assemble results, and exposes the Pure/Terminates/CanRaise query
// helpers over the assembled results. internal/report and cmd/scry
// consume only this package's exported types, never reaching into
// internal/infer, internal/cache, or internal/callgraph directly.
package orchestrator

import (
	"errors"
	"fmt"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/propagate"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
)

// Error taxonomy (§7). Unification failures, occurs checks, and
// undefined variables are per-function and never surface here — they
// land in ModuleResult.Errors instead.
var (
	ErrModuleNotFound = errors.New("orchestrator: module not found")
)

// Options configures a run.
type Options struct {
	// MaxIterations bounds fixed-point iteration for cyclic SCCs. Zero
	// means propagate.DefaultMaxIterations.
	MaxIterations int

	// Permissive, when true, suppresses reporting of missing
	// application modules as project-level errors — they still
	// resolve to Unknown effects, just silently (§6.3 "permissive
	// graph" option).
	Permissive bool
}

// ModuleResult is one module's worth of assembled analysis output.
type ModuleResult struct {
	Module       syntax.Symbol
	Effects      map[syntax.MFA]effect.CompactEffect
	Exceptions   map[syntax.MFA]effect.ExceptionInfo
	Terminations map[syntax.MFA]bool
	Errors       []propagate.ClauseError
}

// ProjectResult is the outcome of analyzing an entire set of modules.
// Its unexported termination and cache-lookup fields back the Pure/Terminates/
// CanRaise query helpers without re-deriving them from the Modules map
// on every call.
type ProjectResult struct {
	Modules map[syntax.Symbol]ModuleResult
	Errors  []string

	terminations map[syntax.MFA]bool
	cacheEffects func(syntax.MFA) (effect.CompactEffect, bool)
	cacheExcepts func(syntax.MFA) (effect.ExceptionInfo, bool)
}

// AnalyzeProject runs the full pipeline over modules and assembles a
// ProjectResult (§6.3 analyze_project). It never returns an error
// itself — a malformed registry description is a caller-side concern
// (registry.Load already reports that before AnalyzeProject is ever
// called); everything discovered during analysis becomes part of the
// result instead of aborting the run (§7).
func AnalyzeProject(modules []syntax.Module, reg *registry.Registry, opts Options) ProjectResult {
	expanded := preExpand(modules)

	popts := propagate.Options{MaxIterations: opts.MaxIterations}
	pr := propagate.Run(expanded, reg, nil, popts)

	result := ProjectResult{
		Modules:      make(map[syntax.Symbol]ModuleResult, len(expanded)),
		terminations: pr.Terminations,
		cacheEffects: pr.Cache.Get,
		cacheExcepts: pr.Cache.GetException,
	}

	errsByMFA := make(map[syntax.MFA][]propagate.ClauseError)
	for _, ce := range pr.ClauseErrors {
		errsByMFA[ce.MFA] = append(errsByMFA[ce.MFA], ce)
	}

	for _, m := range expanded {
		mr := ModuleResult{
			Module:       m.Name,
			Effects:      make(map[syntax.MFA]effect.CompactEffect),
			Exceptions:   make(map[syntax.MFA]effect.ExceptionInfo),
			Terminations: make(map[syntax.MFA]bool),
		}
		for _, mfa := range m.Functions() {
			if ce, ok := pr.Cache.Get(mfa); ok {
				mr.Effects[mfa] = ce
			}
			if info, ok := pr.Cache.GetException(mfa); ok {
				mr.Exceptions[mfa] = info
			}
			if t, ok := pr.Terminations[mfa]; ok {
				mr.Terminations[mfa] = t
			}
			mr.Errors = append(mr.Errors, errsByMFA[mfa]...)
		}
		result.Modules[m.Name] = mr
	}

	if !opts.Permissive {
		for _, me := range pr.ModuleErrors {
			result.Errors = append(result.Errors, fmt.Sprintf("module %s: %s", me.Module, me.Reason))
		}
	}

	return result
}

// AnalyzeModule runs the same pipeline as AnalyzeProject but scopes
// its returned result to a single target module, since that module's
// true effects still depend on whatever it calls elsewhere in the
// project (§6.3 analyze_module).
func AnalyzeModule(target syntax.Symbol, modules []syntax.Module, reg *registry.Registry, opts Options) (ModuleResult, error) {
	found := false
	for _, m := range modules {
		if m.Name == target {
			found = true
			break
		}
	}
	if !found {
		return ModuleResult{}, ErrModuleNotFound
	}

	proj := AnalyzeProject(modules, reg, opts)
	mr, ok := proj.Modules[target]
	if !ok {
		return ModuleResult{}, ErrModuleNotFound
	}
	return mr, nil
}

// preExpand copies modules and marks them pre-expanded. Macro/pipe
// expansion itself is the reader's PreExpand hook (§4.5, §6.1) and is
// out of scope for the core; callers are expected to hand the
// orchestrator already-expanded trees. This step only upholds call
// extraction's precondition (internal/syntax.Module.PreExpanded) when
// a caller forgot to set it.
func preExpand(modules []syntax.Module) []syntax.Module {
	out := make([]syntax.Module, len(modules))
	for i, m := range modules {
		m.PreExpanded = true
		out[i] = m
	}
	return out
}

// Pure reports whether mfa's compact effect is exactly `p` (§6.3 pure).
func Pure(pr ProjectResult, mfa syntax.MFA) bool {
	ce, ok := pr.cacheEffects(mfa)
	return ok && ce.Tag == effect.PurityPure
}

// Terminates reports whether mfa is known to terminate; absent
// evidence defaults to true (§6.3 terminates).
func Terminates(pr ProjectResult, mfa syntax.MFA) bool {
	if t, ok := pr.terminations[mfa]; ok {
		return t
	}
	return true
}

// CanRaise reports whether mfa might raise tag; Dynamic treats any tag
// as possible (§6.3 can_raise).
func CanRaise(pr ProjectResult, mfa syntax.MFA, tag string) bool {
	info, ok := pr.cacheExcepts(mfa)
	if !ok {
		return false
	}
	return info.Errors.Contains(tag)
}

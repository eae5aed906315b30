// Package propagate is the analysis driver (§4.7): it walks a call
// graph's strongly connected components in topological order, running
// a bounded iteration over one module's clauses for an acyclic
// component and over all member modules' clauses for a cyclic one,
// until the component's compact effects settle, accumulating results
// into a shared internal/cache.Cache.
package propagate

import (
	"github.com/unbound-force/scry/internal/cache"
	"github.com/unbound-force/scry/internal/callgraph"
	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/infer"
	"github.com/unbound-force/scry/internal/registry"
	"github.com/unbound-force/scry/internal/syntax"
	"github.com/unbound-force/scry/internal/trycatch"
)

// DefaultMaxIterations is §4.7's bound on fixed-point iteration over a
// cyclic SCC.
const DefaultMaxIterations = 10

// Options configures one propagation run.
type Options struct {
	// MaxIterations bounds fixed-point iteration for cyclic SCCs. Zero
	// means DefaultMaxIterations.
	MaxIterations int
}

// ModuleError records a module-level failure that did not abort the
// run: callers fall back to Unknown for anything that module would
// have defined (§7).
type ModuleError struct {
	Module syntax.Symbol
	Reason string
}

// ClauseError is one function clause's inference error, surfaced
// alongside the cache so callers can report per-function diagnostics
// without aborting the run (§4.4 failure taxonomy, §7).
type ClauseError struct {
	MFA   syntax.MFA
	Kind  infer.ErrorKind
	Error string
}

// Result is the output of a full propagation run.
type Result struct {
	Cache        *cache.Cache
	ModuleErrors []ModuleError
	ClauseErrors []ClauseError

	// Terminations records, per analyzed MFA, whether every callee
	// reachable from it is known to terminate. An MFA absent from this
	// map simply has no termination evidence either way and should be
	// treated as terminating by default (§6.3 terminates).
	Terminations map[syntax.MFA]bool
}

// Run analyzes every module in modules, in dependency order, returning
// the populated cache plus any non-fatal module or per-function
// errors encountered (§4.7, §7). baseline may be nil.
func Run(modules []syntax.Module, reg *registry.Registry, baseline *cache.Cache, opts Options) Result {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	byName := make(map[syntax.Symbol]syntax.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}

	isLibrary := func(s syntax.Symbol) bool {
		return reg != nil && reg.HasModule(s)
	}
	graph := callgraph.Build(modules, isLibrary)

	c := cache.NewFromBaseline(baseline)
	result := Result{Cache: c, Terminations: make(map[syntax.MFA]bool)}

	for missingModule, kind := range graph.Missing() {
		if kind == callgraph.MissingApplication {
			result.ModuleErrors = append(result.ModuleErrors, ModuleError{
				Module: missingModule,
				Reason: "referenced but not present in the analyzed project",
			})
		}
	}

	order, _ := graph.TopologicalSort()
	for _, scc := range order {
		if len(scc) == 1 {
			runAcyclic(byName[scc[0]], c, reg, maxIter, &result)
			continue
		}
		runFixedPoint(scc, byName, c, reg, maxIter, &result)
	}

	return result
}

// runAcyclic analyzes a single module that is its own component. Its
// functions may call one another in any clause order, so each function
// not yet cached is seeded as pure and the module's clauses are
// re-analyzed until their compact effects stop changing, or maxIter
// passes have run. Clause errors are kept from the last pass only.
func runAcyclic(m syntax.Module, c *cache.Cache, reg *registry.Registry, maxIter int, result *Result) {
	mfas := m.Functions()
	for _, mfa := range mfas {
		if _, ok := c.Get(mfa); !ok {
			c.Set(mfa, effect.Pure())
		}
	}
	view := cache.NewView(c, reg)
	errStart := len(result.ClauseErrors)
	for iter := 0; iter < maxIter; iter++ {
		result.ClauseErrors = result.ClauseErrors[:errStart]
		before := snapshotFor(c, mfas)
		for _, clause := range m.Clauses {
			analyzeClause(m, clause, view, c, result)
		}
		if converged(before, c, mfas) {
			return
		}
	}
}

// runFixedPoint analyzes a cyclic SCC by repeatedly running inference
// over all its modules' clauses until the cache's compact effects for
// every MFA in the component stop changing, or MaxIterations is
// reached (§4.7). Severity never regresses between iterations since
// each pass only ever combines newly discovered effects onto what is
// already cached.
func runFixedPoint(scc []syntax.Symbol, byName map[syntax.Symbol]syntax.Module, c *cache.Cache, reg *registry.Registry, maxIter int, result *Result) {
	mfas := make([]syntax.MFA, 0)
	for _, name := range scc {
		for _, mfa := range byName[name].Functions() {
			mfas = append(mfas, mfa)
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		before := snapshotFor(c, mfas)

		view := cache.NewView(c, reg)
		for _, name := range scc {
			m := byName[name]
			for _, clause := range m.Clauses {
				analyzeClause(m, clause, view, c, result)
			}
		}

		if converged(before, c, mfas) {
			return
		}
	}
}

func snapshotFor(c *cache.Cache, mfas []syntax.MFA) map[syntax.MFA]effect.CompactEffect {
	snap := make(map[syntax.MFA]effect.CompactEffect, len(mfas))
	for _, mfa := range mfas {
		if ce, ok := c.Get(mfa); ok {
			snap[mfa] = ce
		}
	}
	return snap
}

func converged(before map[syntax.MFA]effect.CompactEffect, c *cache.Cache, mfas []syntax.MFA) bool {
	for _, mfa := range mfas {
		after, ok := c.Get(mfa)
		if !ok {
			return false
		}
		prior, had := before[mfa]
		if !had || !prior.Equal(after) {
			return false
		}
	}
	return true
}

// analyzeClause runs inference and the try/catch exception-info pass
// for one clause, combining this clause's effect with anything
// already cached for the same MFA (multi-clause functions, and
// repeated fixed-point passes, both accumulate rather than overwrite).
func analyzeClause(m syntax.Module, clause syntax.FuncClause, view cache.View, c *cache.Cache, result *Result) {
	mfa := clause.MFA(m.Name)

	infRes := infer.InferClause(m.Name, clause, view)
	newCompact := effect.Compact(infRes.Effect)
	if existing, ok := c.Get(mfa); ok {
		// CombineAllSeverity keeps only the winning element's payload
		// (its Side/Dependent detail), discarding the other clause's —
		// severity stays correct (§4.1) but cross-clause payload detail
		// is not preserved. Acceptable: nothing downstream needs more
		// than the per-MFA worst-case severity.
		newCompact = effect.CombineAllSeverity([]effect.CompactEffect{existing, newCompact})
	}
	c.Set(mfa, newCompact)

	excInfo := trycatch.AnalyzeClause(m.Name, clause, view, m.Dialect)
	if existing, ok := c.GetException(mfa); ok {
		excInfo = effect.Merge(existing, excInfo)
	}
	c.SetException(mfa, excInfo)

	terminates := true
	for _, callee := range callgraph.ExtractCalls(m.Name, clause.Body) {
		if t, ok := result.Terminations[callee]; ok {
			terminates = terminates && t
			continue
		}
		terminates = terminates && view.Terminates(callee)
	}
	if existing, ok := result.Terminations[mfa]; ok {
		terminates = terminates && existing
	}
	result.Terminations[mfa] = terminates

	for _, e := range infRes.Errors {
		result.ClauseErrors = append(result.ClauseErrors, ClauseError{MFA: mfa, Kind: e.Kind, Error: e.Message})
	}
}

// Package callgraph implements the call extractor and the module
// dependency graph with Tarjan SCC and topological ordering (§4.5,
// §4.6).
package callgraph

import "github.com/unbound-force/scry/internal/syntax"

// ExtractCalls returns the deduplicated, order-preserving list of
// MFAs referenced anywhere in node, applying the five extraction
// rules of §4.5. module is the ambient module, used to resolve local
// calls and operator captures. Pipes and user macros are assumed
// already pre-expanded by the reader; the orchestrator only marks
// modules PreExpanded and does not expand them itself.
func ExtractCalls(module syntax.Symbol, node syntax.Node) []syntax.MFA {
	seen := make(map[syntax.MFA]bool)
	var out []syntax.MFA
	emit := func(mfa syntax.MFA) {
		if !seen[mfa] {
			seen[mfa] = true
			out = append(out, mfa)
		}
	}
	walk(module, node, emit)
	return out
}

func walk(module syntax.Symbol, node syntax.Node, emit func(syntax.MFA)) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case syntax.Lit, syntax.VarRef:
		// no MFA.

	case syntax.RemoteCall:
		emit(n.Target)
		for _, a := range n.Args {
			walk(module, a, emit)
		}

	case syntax.LocalCall:
		emit(syntax.MFA{Module: module, Name: n.Name, Arity: len(n.Args)})
		for _, a := range n.Args {
			walk(module, a, emit)
		}

	case syntax.DynamicCall:
		// Dynamic head -> no MFA (§4.5 rule 5), but nested calls in
		// the head expression or arguments are still extracted.
		walk(module, n.Head, emit)
		for _, a := range n.Args {
			walk(module, a, emit)
		}

	case syntax.FuncCapture:
		emit(n.Target)

	case syntax.OpCapture:
		emit(syntax.MFA{Module: "Kernel", Name: n.Op, Arity: n.Arity})

	case syntax.Lambda:
		walk(module, n.Body, emit)

	case syntax.Case:
		walk(module, n.Scrutinee, emit)
		for _, cl := range n.Clauses {
			for _, g := range cl.Guards {
				walk(module, g, emit)
			}
			walk(module, cl.Body, emit)
		}

	case syntax.If:
		walk(module, n.Cond, emit)
		walk(module, n.Then, emit)
		walk(module, n.Else, emit)

	case syntax.Try:
		walk(module, n.Body, emit)
		for _, cc := range n.Catches {
			walk(module, cc.Body, emit)
		}

	case syntax.Raise:
		walk(module, n.Arg, emit)

	case syntax.Block:
		for _, e := range n.Exprs {
			walk(module, e, emit)
		}

	case syntax.Match:
		walk(module, n.Value, emit)

	case syntax.StructLit:
		for _, f := range n.Fields {
			walk(module, f, emit)
		}
	}
}

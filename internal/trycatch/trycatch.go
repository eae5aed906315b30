// Package trycatch computes the per-function exception-info delta
// (§4.8): what a clause raises once whatever its try/catch blocks
// actually handle is subtracted back out. Inference (internal/infer)
// only ever computes the raw, over-approximate combined effect of a
// Try node's body and catch arms; this package is the separate,
// precise pass over ExceptionInfo that §4.8 calls for.
package trycatch

import (
	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

// Lookup is what the analyzer needs to account for exceptions raised
// by calls it cannot see the body of — cache.View satisfies this.
type Lookup interface {
	ExceptionInfo(mfa syntax.MFA) (effect.ExceptionInfo, bool)
}

// AnalyzeClause computes clause's net ExceptionInfo: everything it (or
// a callee) might raise, minus whatever its own try/catch blocks
// definitely catch. On a DialectHigh module this degrades to the
// conservative over-approximation (no subtraction), since macro
// expansion can hide the true shape of a try/receive (§9 Open
// Questions, §4.8).
func AnalyzeClause(module syntax.Symbol, clause syntax.FuncClause, lookup Lookup, dialect syntax.Dialect) effect.ExceptionInfo {
	a := &analyzer{module: module, lookup: lookup, precise: dialect == syntax.DialectLow}
	return a.walk(clause.Body)
}

type analyzer struct {
	module  syntax.Symbol
	lookup  Lookup
	precise bool
}

func (a *analyzer) walk(node syntax.Node) effect.ExceptionInfo {
	if node == nil {
		return effect.PureExceptionInfo()
	}
	switch n := node.(type) {
	case syntax.Lit, syntax.VarRef, syntax.FuncCapture, syntax.OpCapture, syntax.Lambda:
		return effect.PureExceptionInfo()

	case syntax.RemoteCall:
		info := a.calleeInfo(n.Target)
		for _, arg := range n.Args {
			info = effect.Merge(info, a.walk(arg))
		}
		return info

	case syntax.LocalCall:
		mfa := syntax.MFA{Module: a.module, Name: n.Name, Arity: len(n.Args)}
		info := a.calleeInfo(mfa)
		for _, arg := range n.Args {
			info = effect.Merge(info, a.walk(arg))
		}
		return info

	case syntax.DynamicCall:
		info := effect.ExceptionInfo{Errors: effect.DynamicExceptionSet(), NonErrors: true}
		info = effect.Merge(info, a.walk(n.Head))
		for _, arg := range n.Args {
			info = effect.Merge(info, a.walk(arg))
		}
		return info

	case syntax.Case:
		info := a.walk(n.Scrutinee)
		for _, cl := range n.Clauses {
			info = effect.Merge(info, a.walk(cl.Body))
		}
		return info

	case syntax.If:
		info := a.walk(n.Cond)
		info = effect.Merge(info, a.walk(n.Then))
		if n.Else != nil {
			info = effect.Merge(info, a.walk(n.Else))
		}
		return info

	case syntax.Try:
		return a.walkTry(n)

	case syntax.Raise:
		tag, dynamic := extractTag(n.Arg)
		if dynamic {
			return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet()}
		}
		return effect.ExceptionInfo{Errors: effect.NewExceptionSet([]string{tag})}

	case syntax.Block:
		info := effect.PureExceptionInfo()
		for _, e := range n.Exprs {
			info = effect.Merge(info, a.walk(e))
		}
		return info

	case syntax.Match:
		return a.walk(n.Value)

	case syntax.StructLit:
		info := effect.PureExceptionInfo()
		for _, f := range n.Fields {
			info = effect.Merge(info, a.walk(f))
		}
		return info

	default:
		return effect.PureExceptionInfo()
	}
}

func (a *analyzer) calleeInfo(mfa syntax.MFA) effect.ExceptionInfo {
	if a.lookup == nil {
		return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet()}
	}
	info, ok := a.lookup.ExceptionInfo(mfa)
	if !ok {
		return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet()}
	}
	return info
}

// walkTry combines the body's raised info with each catch body's own
// raised info (a triggered handler can itself raise), then — on a
// DialectLow tree only — subtracts what each catch clause's class and
// tag actually catch from the body's contribution.
func (a *analyzer) walkTry(n syntax.Try) effect.ExceptionInfo {
	bodyInfo := a.walk(n.Body)

	if a.precise {
		for _, cc := range n.Catches {
			bodyInfo = subtractCaught(bodyInfo, cc)
		}
	}

	result := bodyInfo
	for _, cc := range n.Catches {
		result = effect.Merge(result, a.walk(cc.Body))
	}
	return result
}

// subtractCaught removes what one catch clause definitely catches from
// raised. It builds the clause's caught ExceptionInfo per §4.8's table
// (error+tag, error+variable, throw/exit, all+variable) and subtracts
// it with effect.SubtractInfo, which already encodes set - Dynamic = set:
// a variable (Dynamic) tag never proves which concrete error it caught,
// so it must not remove any of raised's known tags (§3.4's deliberate
// over-approximation — false positives over false negatives).
func subtractCaught(raised effect.ExceptionInfo, cc syntax.CatchClause) effect.ExceptionInfo {
	return effect.SubtractInfo(raised, caughtByClause(cc))
}

// caughtByClause is §4.8's per-clause caught-set table.
func caughtByClause(cc syntax.CatchClause) effect.ExceptionInfo {
	catchesAll := true
	var tag string
	if lit, ok := cc.Tag.(syntax.PStruct); ok {
		catchesAll = false
		tag = string(lit.Module)
	} else if lit, ok := cc.Tag.(syntax.PLit); ok {
		if s, ok2 := lit.Value.(string); ok2 {
			catchesAll = false
			tag = s
		}
	}

	switch cc.Class {
	case syntax.ClassError:
		if catchesAll {
			return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet()}
		}
		return effect.ExceptionInfo{Errors: effect.NewExceptionSet([]string{tag})}
	case syntax.ClassThrow, syntax.ClassExit:
		return effect.ExceptionInfo{NonErrors: true}
	case syntax.ClassAll:
		if catchesAll {
			return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet(), NonErrors: true}
		}
		return effect.ExceptionInfo{Errors: effect.NewExceptionSet([]string{tag})}
	default:
		return effect.PureExceptionInfo()
	}
}

// extractTag mirrors internal/infer's four-way raise tag extraction
// (§4.4); trycatch needs its own copy since it walks ExceptionInfo,
// not Effect, and must not import internal/infer.
func extractTag(arg syntax.Node) (tag string, isDynamic bool) {
	switch a := arg.(type) {
	case syntax.Lit:
		if a.Kind == "atom" {
			if s, ok := a.Value.(string); ok {
				return s, false
			}
		}
		if a.Kind == "string" {
			return "RuntimeError", false
		}
	case syntax.StructLit:
		return string(a.Module), false
	}
	return effect.DynamicTag, true
}

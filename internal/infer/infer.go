package infer

import (
	"fmt"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
	"github.com/unbound-force/scry/internal/unify"
)

// ClauseResult is the outcome of inferring one function clause:
// its inferred function type, its classified effect, and any
// non-aborting errors recorded along the way (§4.4 failure taxonomy,
// §7).
type ClauseResult struct {
	MFA    syntax.MFA
	Type   syntax.Type
	Effect effect.Effect
	Errors []FuncError
}

// InferClause synthesizes the type and effect of one function clause
// (§4.4 "Function definition").
func InferClause(module syntax.Symbol, clause syntax.FuncClause, lookup Lookup) ClauseResult {
	ctx := NewContext(module, lookup)

	paramTypes := make([]syntax.Type, len(clause.Params))
	for i, p := range clause.Params {
		paramTypes[i] = bindPattern(ctx, p, nil)
	}

	bodyEffect := effect.Empty()
	for _, g := range clause.Guards {
		bodyEffect = effect.Combine(bodyEffect, inferGuardEffect(ctx, g))
	}

	bodyType, be, _ := infer(ctx, clause.Body)
	bodyEffect = effect.Combine(bodyEffect, be)

	finalEffect := classifyFunctionEffect(paramTypes, bodyEffect)

	return ClauseResult{
		MFA:    clause.MFA(module),
		Type:   buildFuncType(paramTypes, finalEffect, bodyType),
		Effect: finalEffect,
		Errors: append([]FuncError{}, *ctx.errors...),
	}
}

// classifyFunctionEffect implements §4.4 Function definition rule 3:
// when any parameter is function-shaped (or a fresh type variable)
// and the body's effect is composed solely of effect variables, the
// effect is relabeled Lambda — the function's impurity is entirely
// conditional on its higher-order arguments.
func classifyFunctionEffect(paramTypes []syntax.Type, bodyEffect effect.Effect) effect.Effect {
	hasHigherOrder := false
	for _, pt := range paramTypes {
		if isHigherOrderParam(pt) {
			hasHigherOrder = true
			break
		}
	}
	if hasHigherOrder && effect.OnlyVariables(bodyEffect) {
		return effect.Label("lambda")
	}
	return bodyEffect
}

func isHigherOrderParam(t syntax.Type) bool {
	switch t.(type) {
	case syntax.TFunc, syntax.TClosure, syntax.TVar:
		return true
	default:
		return false
	}
}

// infer is the recursive engine dispatched by node kind. It never
// returns an error: inference failures are recorded on ctx and a safe
// fallback (TAny / Unknown) is returned so the caller's combination
// continues (§4.4, §7 "module continues").
func infer(ctx *Context, node syntax.Node) (syntax.Type, effect.Effect, unify.Subst) {
	switch n := node.(type) {
	case syntax.Lit:
		return primTypeForKind(n.Kind), effect.Empty(), unify.New()

	case syntax.VarRef:
		t, ok := ctx.Env[n.Name]
		if !ok {
			ctx.recordError(ErrUndefinedVariable, fmt.Sprintf("undefined variable %q at %s", n.Name, n.At()))
			return syntax.TAny, effect.Unknown(), unify.New()
		}
		return t, effect.Empty(), unify.New()

	case syntax.RemoteCall:
		return ctx.inferApplication(n.Target, n.Args)

	case syntax.LocalCall:
		mfa := syntax.MFA{Module: ctx.Module, Name: n.Name, Arity: len(n.Args)}
		return ctx.inferApplication(mfa, n.Args)

	case syntax.DynamicCall:
		return ctx.inferDynamicCall(n)

	case syntax.FuncCapture:
		eff := effect.FromMFA(n.Target, ctx.Lookup)
		return syntax.TFunc{Arg: syntax.TAny, Effect: eff, Ret: syntax.TAny}, effect.Empty(), unify.New()

	case syntax.OpCapture:
		mfa := syntax.MFA{Module: "Kernel", Name: n.Op, Arity: n.Arity}
		eff := effect.FromMFA(mfa, ctx.Lookup)
		return syntax.TFunc{Arg: syntax.TAny, Effect: eff, Ret: syntax.TAny}, effect.Empty(), unify.New()

	case syntax.Lambda:
		return ctx.inferLambda(n)

	case syntax.Case:
		return ctx.inferCase(n)

	case syntax.If:
		return ctx.inferIf(n)

	case syntax.Try:
		return ctx.inferTry(n)

	case syntax.Raise:
		tag, _ := extractRaiseTag(n.Arg)
		return syntax.TAny, effect.Exn([]string{tag}), unify.New()

	case syntax.Block:
		return ctx.inferBlock(n)

	case syntax.Match:
		return ctx.inferMatch(n)

	case syntax.StructLit:
		return syntax.TPrim{Name: string(n.Module)}, effect.Empty(), unify.New()

	default:
		return syntax.TAny, effect.Unknown(), unify.New()
	}
}

// inferApplication implements §4.4's statically-resolvable
// application rule: synthesize arguments, combine their effects, look
// up the callee's effect via the Cache-then-Registry Lookup, combine,
// and return the callee's return type (TAny if unknown).
func (ctx *Context) inferApplication(mfa syntax.MFA, args []syntax.Node) (syntax.Type, effect.Effect, unify.Subst) {
	combined := effect.Empty()
	for _, a := range args {
		_, argEffect, _ := infer(ctx, a)
		combined = effect.Combine(combined, argEffect)
	}
	calleeEffect := effect.FromMFA(mfa, ctx.Lookup)
	combined = effect.Combine(combined, calleeEffect)
	return ctx.typeEnvReturn(mfa), combined, unify.New()
}

// inferDynamicCall implements §4.4's dynamic-head application rule:
// synthesize the head, and if it unifies with a function type, use
// its encoded effect; otherwise conservatively emit Unknown.
func (ctx *Context) inferDynamicCall(n syntax.DynamicCall) (syntax.Type, effect.Effect, unify.Subst) {
	headType, headEffect, s := infer(ctx, n.Head)
	combined := headEffect
	for _, a := range n.Args {
		_, argEffect, _ := infer(ctx, a)
		combined = effect.Combine(combined, argEffect)
	}

	shape := syntax.TFunc{Arg: ctx.freshType(), Effect: ctx.freshEffect(), Ret: ctx.freshType()}
	s2, err := unify.Unify(headType, shape, s)
	if err != nil {
		ctx.recordError(kindForUnifyError(err), err.Error())
		return syntax.TAny, effect.Combine(combined, effect.Unknown()), s
	}

	resolved := unify.Apply(s2, shape)
	tf, ok := resolved.(syntax.TFunc)
	if !ok {
		return syntax.TAny, effect.Combine(combined, effect.Unknown()), s2
	}
	callEffect, ok := tf.Effect.(effect.Effect)
	if !ok {
		callEffect = effect.Unknown()
	}
	return tf.Ret, effect.Combine(combined, callEffect), s2
}

// inferLambda implements §4.4's Lambda expression rule: synthesize
// the body under the extended context, producing
// Function(arg, body_effect, body_type). Constructing the lambda
// itself is effectless; the body's effect materializes on
// invocation, carried in the returned Function's Effect field.
func (ctx *Context) inferLambda(n syntax.Lambda) (syntax.Type, effect.Effect, unify.Subst) {
	bodyCtx := ctx.child()
	paramTypes := make([]syntax.Type, len(n.Params))
	for i, p := range n.Params {
		paramTypes[i] = bindPattern(bodyCtx, p, nil)
	}
	bodyType, bodyEffect, s := infer(bodyCtx, n.Body)
	fnEffect := classifyFunctionEffect(paramTypes, bodyEffect)
	return buildFuncType(paramTypes, fnEffect, bodyType), effect.Empty(), s
}

// inferCase implements §4.4: combine the scrutinee's effect with the
// union of clause-body effects; the type is the join of clause-body
// types.
func (ctx *Context) inferCase(n syntax.Case) (syntax.Type, effect.Effect, unify.Subst) {
	scrutType, scrutEffect, s := infer(ctx, n.Scrutinee)
	combined := scrutEffect
	types := make([]syntax.Type, 0, len(n.Clauses))

	for _, cl := range n.Clauses {
		clauseCtx := ctx.child()
		bindPattern(clauseCtx, cl.Pattern, scrutType)
		for _, g := range cl.Guards {
			combined = effect.Combine(combined, inferGuardEffect(clauseCtx, g))
		}
		bodyType, bodyEffect, _ := infer(clauseCtx, cl.Body)
		combined = effect.Combine(combined, bodyEffect)
		types = append(types, bodyType)
	}
	return joinTypes(types), combined, s
}

// inferIf implements §4.4: combine both branch effects.
func (ctx *Context) inferIf(n syntax.If) (syntax.Type, effect.Effect, unify.Subst) {
	_, condEffect, s := infer(ctx, n.Cond)
	thenType, thenEffect, _ := infer(ctx, n.Then)
	combined := effect.Combine(condEffect, thenEffect)

	types := []syntax.Type{thenType}
	if n.Else != nil {
		elseType, elseEffect, _ := infer(ctx, n.Else)
		combined = effect.Combine(combined, elseEffect)
		types = append(types, elseType)
	}
	return joinTypes(types), combined, s
}

// inferTry implements §4.4's try/catch inference step: the block's
// raw effect is the body's effect combined with each catch body's
// effect (over-approximation, since either may run). §4.8 computes
// the caught exception-info set and subtracts it as a post-process
// over exception info, not over this raw effect value.
func (ctx *Context) inferTry(n syntax.Try) (syntax.Type, effect.Effect, unify.Subst) {
	bodyType, bodyEffect, s := infer(ctx, n.Body)
	combined := bodyEffect
	types := []syntax.Type{bodyType}

	for _, cc := range n.Catches {
		catchCtx := ctx.child()
		if cc.Tag != nil {
			bindPattern(catchCtx, cc.Tag, nil)
		}
		ct, ce, _ := infer(catchCtx, cc.Body)
		combined = effect.Combine(combined, ce)
		types = append(types, ct)
	}
	return joinTypes(types), combined, s
}

// extractRaiseTag implements §4.4's four-way tag-extraction rule.
func extractRaiseTag(arg syntax.Node) (tag string, isDynamic bool) {
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

// inferBlock sequences expressions under the same context (so a
// Match's bindings are visible to later expressions), combining
// effects and yielding the last expression's type.
func (ctx *Context) inferBlock(n syntax.Block) (syntax.Type, effect.Effect, unify.Subst) {
	combined := effect.Empty()
	var last syntax.Type = syntax.TAny
	for _, e := range n.Exprs {
		t, eff, _ := infer(ctx, e)
		combined = effect.Combine(combined, eff)
		last = t
	}
	return last, combined, unify.New()
}

// inferMatch binds Pattern against Value's type directly into ctx
// (the enclosing Block's shared context), giving pattern = value
// let-binding semantics.
func (ctx *Context) inferMatch(n syntax.Match) (syntax.Type, effect.Effect, unify.Subst) {
	valType, valEffect, s := infer(ctx, n.Value)
	bindPattern(ctx, n.Pattern, valType)
	return valType, valEffect, s
}

// inferGuardEffect implements §4.4 "Pattern matching": guard
// expressions are assumed pure; guard calls to the built-in
// type-predicate set are pure; any other call in a guard is treated
// as unknown severity.
func inferGuardEffect(ctx *Context, g syntax.Node) effect.Effect {
	switch n := g.(type) {
	case syntax.RemoteCall:
		if isTypePredicate(n.Target) {
			return effect.Empty()
		}
		return effect.Unknown()
	case syntax.LocalCall:
		return effect.Unknown()
	default:
		_, e, _ := infer(ctx, g)
		return e
	}
}

// typePredicates is the built-in guard-safe type-predicate set.
var typePredicates = map[string]bool{
	"Kernel.is_atom/1":    true,
	"Kernel.is_binary/1":  true,
	"Kernel.is_boolean/1": true,
	"Kernel.is_float/1":   true,
	"Kernel.is_integer/1": true,
	"Kernel.is_list/1":    true,
	"Kernel.is_map/1":     true,
	"Kernel.is_number/1":  true,
	"Kernel.is_pid/1":     true,
	"Kernel.is_tuple/1":   true,
	"Kernel.is_nil/1":     true,
}

func isTypePredicate(mfa syntax.MFA) bool {
	return typePredicates[mfa.String()]
}

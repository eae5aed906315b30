// Package infer implements bidirectional type-and-effect inference
// over internal/syntax trees (§4.4).
package infer

import (
	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

// Lookup is what inference needs from the propagation engine's
// cache-then-registry view (§4.4 Application rule 2). cache.View
// satisfies this.
type Lookup interface {
	effect.Resolver
	ExceptionInfo(mfa syntax.MFA) (effect.ExceptionInfo, bool)
}

// Context carries the typing environment, the ambient module (for
// LocalCall resolution), and the per-run fresh-variable counter
// (§3.5). Env is mutated in place for sequential let-like bindings
// (Match inside a Block); child scopes that must not leak bindings
// back out (lambda bodies, case/catch arms) get a copied Env via
// child().
type Context struct {
	Module  syntax.Symbol
	Env     map[syntax.Symbol]syntax.Type
	TypeEnv map[syntax.MFA]syntax.Type
	Lookup  Lookup

	counter *int
	errors  *[]FuncError
}

// NewContext starts a fresh inference context for one function clause.
func NewContext(module syntax.Symbol, lookup Lookup) *Context {
	counter := 0
	errs := []FuncError{}
	return &Context{
		Module:  module,
		Env:     make(map[syntax.Symbol]syntax.Type),
		Lookup:  lookup,
		counter: &counter,
		errors:  &errs,
	}
}

// child returns a context with an independent copy of Env, sharing
// the fresh-variable counter, TypeEnv, lookup, and error sink.
func (c *Context) child() *Context {
	env := make(map[syntax.Symbol]syntax.Type, len(c.Env))
	for k, v := range c.Env {
		env[k] = v
	}
	return &Context{
		Module:  c.Module,
		Env:     env,
		TypeEnv: c.TypeEnv,
		Lookup:  c.Lookup,
		counter: c.counter,
		errors:  c.errors,
	}
}

func (c *Context) fresh() int {
	*c.counter++
	return *c.counter
}

func (c *Context) freshType() syntax.Type { return syntax.TVar{N: c.fresh()} }
func (c *Context) freshEffect() effect.Effect { return effect.Var(c.fresh()) }

func (c *Context) recordError(kind ErrorKind, message string) {
	*c.errors = append(*c.errors, FuncError{Kind: kind, Message: message})
}

// typeEnvReturn looks up a statically-known return type for mfa from
// the optional module-local TypeEnv (nil unless a caller sets it;
// NewContext and the propagation engine leave it nil), defaulting
// to TAny — the core tracks effects precisely across modules, not
// full cross-module types (§3.3 "kept minimal").
func (c *Context) typeEnvReturn(mfa syntax.MFA) syntax.Type {
	if c.TypeEnv == nil {
		return syntax.TAny
	}
	if t, ok := c.TypeEnv[mfa]; ok {
		if tf, ok2 := t.(syntax.TFunc); ok2 {
			return tf.Ret
		}
	}
	return syntax.TAny
}

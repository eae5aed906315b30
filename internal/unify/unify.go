// Package unify implements Robinson unification over the type
// lattice, extended with row-polymorphic unification over effects
// with duplicate-label semantics (§4.3).
package unify

import (
	"fmt"

	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

// Subst is a substitution: type variables bound to types, effect
// variables bound to effects. The two numbering spaces are kept
// separate so a type variable and an effect variable sharing the same
// integer never collide.
type Subst struct {
	Types   map[int]syntax.Type
	Effects map[int]effect.Effect
}

// New returns an empty substitution.
func New() Subst {
	return Subst{Types: make(map[int]syntax.Type), Effects: make(map[int]effect.Effect)}
}

// CannotUnify is returned when two types cannot be unified (§4.4
// failure taxonomy).
type CannotUnify struct {
	T1, T2 syntax.Type
}

func (e *CannotUnify) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", typeStr(e.T1), typeStr(e.T2))
}

// CannotUnifyEffects is returned when two effects cannot be unified.
type CannotUnifyEffects struct {
	E1, E2 effect.Effect
}

func (e *CannotUnifyEffects) Error() string {
	return fmt.Sprintf("cannot unify effect %s with %s", e.E1.String(), e.E2.String())
}

// OccursCheck is returned when a variable would unify with a type
// that structurally contains it.
type OccursCheck struct {
	Var  int
	Type syntax.Type
}

func (e *OccursCheck) Error() string {
	return fmt.Sprintf("occurs check failed: t%d occurs in %s", e.Var, typeStr(e.Type))
}

func typeStr(t syntax.Type) string {
	if t == nil {
		return "_"
	}
	return t.String()
}

// Unify performs Robinson unification of two types under an existing
// substitution, returning the extended substitution.
func Unify(t1, t2 syntax.Type, s Subst) (Subst, error) {
	t1 = Apply(s, t1)
	t2 = Apply(s, t2)

	if v1, ok := t1.(syntax.TVar); ok {
		if v2, ok2 := t2.(syntax.TVar); ok2 && v1.N == v2.N {
			return s, nil
		}
		return bindType(v1.N, t2, s)
	}
	if v2, ok := t2.(syntax.TVar); ok {
		return bindType(v2.N, t1, s)
	}

	switch a := t1.(type) {
	case syntax.TPrim:
		b, ok := t2.(syntax.TPrim)
		if !ok || a.Name != b.Name {
			return s, &CannotUnify{t1, t2}
		}
		return s, nil
	case syntax.TFunc:
		b, ok := t2.(syntax.TFunc)
		if !ok {
			return s, &CannotUnify{t1, t2}
		}
		var err error
		s, err = Unify(a.Arg, b.Arg, s)
		if err != nil {
			return s, err
		}
		ae, aok := a.Effect.(effect.Effect)
		be, bok := b.Effect.(effect.Effect)
		if aok && bok {
			s, err = UnifyEffect(ae, be, s)
			if err != nil {
				return s, err
			}
		}
		return Unify(a.Ret, b.Ret, s)
	case syntax.TClosure:
		b, ok := t2.(syntax.TClosure)
		if !ok {
			return s, &CannotUnify{t1, t2}
		}
		var err error
		s, err = Unify(a.Arg, b.Arg, s)
		if err != nil {
			return s, err
		}
		return Unify(a.Ret, b.Ret, s)
	case syntax.TTuple:
		b, ok := t2.(syntax.TTuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return s, &CannotUnify{t1, t2}
		}
		var err error
		for i := range a.Elems {
			s, err = Unify(a.Elems[i], b.Elems[i], s)
			if err != nil {
				return s, err
			}
		}
		return s, nil
	case syntax.TList:
		b, ok := t2.(syntax.TList)
		if !ok {
			return s, &CannotUnify{t1, t2}
		}
		return Unify(a.Elem, b.Elem, s)
	case syntax.TUnion:
		b, ok := t2.(syntax.TUnion)
		if !ok || len(a.Alts) != len(b.Alts) {
			return s, &CannotUnify{t1, t2}
		}
		var err error
		for i := range a.Alts {
			s, err = Unify(a.Alts[i], b.Alts[i], s)
			if err != nil {
				return s, err
			}
		}
		return s, nil
	case syntax.TForall:
		return Unify(a.Body, t2, s)
	default:
		return s, &CannotUnify{t1, t2}
	}
}

func bindType(n int, t syntax.Type, s Subst) (Subst, error) {
	if v, ok := t.(syntax.TVar); ok && v.N == n {
		return s, nil
	}
	if occursInType(n, t) {
		return s, &OccursCheck{Var: n, Type: t}
	}
	next := cloneSubst(s)
	next.Types[n] = t
	return next, nil
}

func occursInType(n int, t syntax.Type) bool {
	switch v := t.(type) {
	case syntax.TVar:
		return v.N == n
	case syntax.TFunc:
		return occursInType(n, v.Arg) || occursInType(n, v.Ret)
	case syntax.TClosure:
		return occursInType(n, v.Arg) || occursInType(n, v.Ret)
	case syntax.TTuple:
		for _, e := range v.Elems {
			if occursInType(n, e) {
				return true
			}
		}
		return false
	case syntax.TList:
		return occursInType(n, v.Elem)
	case syntax.TMap:
		for _, kv := range v.Pairs {
			if occursInType(n, kv.Key) || occursInType(n, kv.Value) {
				return true
			}
		}
		return false
	case syntax.TUnion:
		for _, a := range v.Alts {
			if occursInType(n, a) {
				return true
			}
		}
		return false
	case syntax.TForall:
		return occursInType(n, v.Body)
	default:
		return false
	}
}

// UnifyEffect performs row-polymorphic unification of two effects
// with duplicate-label semantics (§4.3).
func UnifyEffect(e1, e2 effect.Effect, s Subst) (Subst, error) {
	e1 = ApplyEffect(s, e1)
	e2 = ApplyEffect(s, e2)

	if _, ok := e1.(effect.UnknownEffect); ok {
		return s, nil
	}
	if _, ok := e2.(effect.UnknownEffect); ok {
		return s, nil
	}

	if v1, ok := e1.(effect.VarEffect); ok {
		if v2, ok2 := e2.(effect.VarEffect); ok2 && v1.N == v2.N {
			return s, nil
		}
		return bindEffect(v1.N, e2, s)
	}
	if v2, ok := e2.(effect.VarEffect); ok {
		return bindEffect(v2.N, e1, s)
	}

	if _, ok := e1.(effect.EmptyEffect); ok {
		if _, ok2 := e2.(effect.EmptyEffect); ok2 {
			return s, nil
		}
		return s, &CannotUnifyEffects{e1, e2}
	}

	r1, isRow1 := e1.(effect.RowEffect)
	r2, isRow2 := e2.(effect.RowEffect)

	if !isRow1 && !isRow2 {
		if effectsEqual(e1, e2) {
			return s, nil
		}
		return s, &CannotUnifyEffects{e1, e2}
	}

	if isRow1 && isRow2 && effectsEqual(r1.Head, r2.Head) {
		return UnifyEffect(r1.Tail, r2.Tail, s)
	}

	// Row-Row (or Row-atom) with mismatched heads: locate and remove
	// the left row's head label from the right side; unify the left
	// tail with the residual. If the right tail is a variable, bind
	// it to extend the row with the missing label (§4.3).
	if isRow1 {
		residual, found := effect.Subtract(r1.Head, e2)
		if found {
			return UnifyEffect(r1.Tail, residual, s)
		}
		if tailVar, ok := tailVariable(e2); ok {
			// Bind the open tail to extend with the missing label.
			// A fully principal unifier would extend with a fresh
			// variable for the remainder; the inference context (the
			// only place effect variables are minted, §3.5) is
			// responsible for further specializing this tail if more
			// labels are discovered later.
			return bindEffect(tailVar, effect.Extend(r1.Head, effect.Empty()), s)
		}
		return s, &CannotUnifyEffects{e1, e2}
	}
	if isRow2 {
		residual, found := effect.Subtract(r2.Head, e1)
		if found {
			return UnifyEffect(residual, r2.Tail, s)
		}
		return s, &CannotUnifyEffects{e1, e2}
	}

	return s, &CannotUnifyEffects{e1, e2}
}

// tailVariable reports the effect variable at the tail of a row
// chain, if the chain terminates in one.
func tailVariable(e effect.Effect) (int, bool) {
	switch v := e.(type) {
	case effect.VarEffect:
		return v.N, true
	case effect.RowEffect:
		return tailVariable(v.Tail)
	default:
		return 0, false
	}
}

func effectsEqual(a, b effect.Effect) bool {
	return a.String() == b.String()
}

func bindEffect(n int, e effect.Effect, s Subst) (Subst, error) {
	if v, ok := e.(effect.VarEffect); ok && v.N == n {
		return s, nil
	}
	if occursInEffect(n, e) {
		return s, &CannotUnifyEffects{effect.Var(n), e}
	}
	next := cloneSubst(s)
	next.Effects[n] = e
	return next, nil
}

func occursInEffect(n int, e effect.Effect) bool {
	switch v := e.(type) {
	case effect.VarEffect:
		return v.N == n
	case effect.RowEffect:
		return occursInEffect(n, v.Head) || occursInEffect(n, v.Tail)
	default:
		return false
	}
}

// Apply substitutes bound type variables transitively.
func Apply(s Subst, t syntax.Type) syntax.Type {
	switch v := t.(type) {
	case syntax.TVar:
		if bound, ok := s.Types[v.N]; ok {
			return Apply(s, bound)
		}
		return v
	case syntax.TFunc:
		var eff syntax.Effecter = v.Effect
		if e, ok := v.Effect.(effect.Effect); ok {
			eff = ApplyEffect(s, e)
		}
		return syntax.TFunc{Arg: Apply(s, v.Arg), Effect: eff, Ret: Apply(s, v.Ret)}
	case syntax.TClosure:
		return syntax.TClosure{
			Arg:            Apply(s, v.Arg),
			CapturedEffect: v.CapturedEffect,
			CallEffect:     v.CallEffect,
			Ret:            Apply(s, v.Ret),
		}
	case syntax.TTuple:
		elems := make([]syntax.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Apply(s, e)
		}
		return syntax.TTuple{Elems: elems}
	case syntax.TList:
		return syntax.TList{Elem: Apply(s, v.Elem)}
	case syntax.TMap:
		pairs := make([]syntax.KV, len(v.Pairs))
		for i, kv := range v.Pairs {
			pairs[i] = syntax.KV{Key: Apply(s, kv.Key), Value: Apply(s, kv.Value)}
		}
		return syntax.TMap{Pairs: pairs}
	case syntax.TUnion:
		alts := make([]syntax.Type, len(v.Alts))
		for i, a := range v.Alts {
			alts[i] = Apply(s, a)
		}
		return syntax.TUnion{Alts: alts}
	case syntax.TForall:
		return syntax.TForall{Vars: v.Vars, Body: Apply(s, v.Body)}
	default:
		return t
	}
}

// ApplyEffect substitutes bound effect variables transitively.
func ApplyEffect(s Subst, e effect.Effect) effect.Effect {
	switch v := e.(type) {
	case effect.VarEffect:
		if bound, ok := s.Effects[v.N]; ok {
			return ApplyEffect(s, bound)
		}
		return v
	case effect.RowEffect:
		return effect.Extend(ApplyEffect(s, v.Head), ApplyEffect(s, v.Tail))
	default:
		return e
	}
}

// Compose applies s2 to the range of s1, then unions the two maps;
// s2's bindings take precedence on key collision (§4.3).
func Compose(s1, s2 Subst) Subst {
	out := New()
	for k, t := range s1.Types {
		out.Types[k] = Apply(s2, t)
	}
	for k, t := range s2.Types {
		out.Types[k] = t
	}
	for k, e := range s1.Effects {
		out.Effects[k] = ApplyEffect(s2, e)
	}
	for k, e := range s2.Effects {
		out.Effects[k] = e
	}
	return out
}

// MakeIdempotent iterates application over the substitution's own
// range until it reaches a fixed point, guarding against chains left
// by repeated Compose calls.
func MakeIdempotent(s Subst) Subst {
	for {
		next := New()
		changed := false
		for k, t := range s.Types {
			applied := Apply(s, t)
			next.Types[k] = applied
			if applied.String() != t.String() {
				changed = true
			}
		}
		for k, e := range s.Effects {
			applied := ApplyEffect(s, e)
			next.Effects[k] = applied
			if applied.String() != e.String() {
				changed = true
			}
		}
		s = next
		if !changed {
			return s
		}
	}
}

func cloneSubst(s Subst) Subst {
	out := Subst{
		Types:   make(map[int]syntax.Type, len(s.Types)+1),
		Effects: make(map[int]effect.Effect, len(s.Effects)+1),
	}
	for k, v := range s.Types {
		out.Types[k] = v
	}
	for k, v := range s.Effects {
		out.Effects[k] = v
	}
	return out
}

// Package effect implements the effect lattice (§3.2), exception info
// (§3.4), and compaction (§3.2 rules 1-9) the rest of the analyzer is
// built on.
package effect

import (
	"sort"
	"strconv"
)

// Effect is the closed sum type of §3.2: Empty, Label, Row, Var, Side,
// Dependent, Exn, Unknown. Represented as an interface with concrete
// structs, dispatched by type switch, the same shape internal/syntax
// uses for its own Type and Node sums.
type Effect interface {
	effectNode()
	String() string
}

// EmptyEffect is the pure effect.
type EmptyEffect struct{}

func (EmptyEffect) effectNode()     {}
func (EmptyEffect) String() string  { return "empty" }

// LabelEffect is a single atomic label: exn, lambda, nif, dependent,
// unknown, or nil.
type LabelEffect struct {
	Name string
}

func (LabelEffect) effectNode()       {}
func (l LabelEffect) String() string  { return l.Name }

// RowEffect is an ordered sequence; duplicate heads are permitted and
// meaningful (one per nested handler scope).
type RowEffect struct {
	Head Effect
	Tail Effect
}

func (RowEffect) effectNode() {}
func (r RowEffect) String() string {
	return r.Head.String() + " :: " + r.Tail.String()
}

// VarEffect is an effect variable introduced during inference.
type VarEffect struct {
	N int
}

func (VarEffect) effectNode() {}
func (v VarEffect) String() string {
	return "e" + strconv.Itoa(v.N)
}

// SideEffect carries the concrete, sorted, deduplicated set of
// side-effecting callees observed.
type SideEffect struct {
	MFAs []string
}

func (SideEffect) effectNode() {}
func (s SideEffect) String() string {
	return "side" + joinParen(s.MFAs)
}

// DependentEffect carries the sorted, deduplicated set of
// environment-reading callees observed.
type DependentEffect struct {
	MFAs []string
}

func (DependentEffect) effectNode() {}
func (d DependentEffect) String() string {
	return "dependent" + joinParen(d.MFAs)
}

// ExnEffect carries the sorted, deduplicated list of structural
// exception identifiers, each a known module tag or "dynamic".
type ExnEffect struct {
	Tags []string
}

func (ExnEffect) effectNode() {}
func (e ExnEffect) String() string {
	return "exn" + joinParen(e.Tags)
}

// UnknownEffect is the gradual, unanalyzable effect.
type UnknownEffect struct{}

func (UnknownEffect) effectNode()      {}
func (UnknownEffect) String() string   { return "unknown" }

// Empty constructs the pure effect.
func Empty() Effect { return EmptyEffect{} }

// Label constructs a single atomic label.
func Label(name string) Effect { return LabelEffect{Name: name} }

// Extend builds a Row with the given head and tail, preserving
// duplicate-label semantics.
func Extend(head, tail Effect) Effect { return RowEffect{Head: head, Tail: tail} }

// Var constructs an effect variable.
func Var(n int) Effect { return VarEffect{N: n} }

// Side constructs a specialized side-effect carrier, sorting and
// deduplicating the payload.
func Side(mfas []string) Effect { return SideEffect{MFAs: sortUnique(mfas)} }

// Dependent constructs a specialized dependent-effect carrier.
func Dependent(mfas []string) Effect { return DependentEffect{MFAs: sortUnique(mfas)} }

// Exn constructs a specialized exception carrier.
func Exn(tags []string) Effect { return ExnEffect{Tags: sortUnique(tags)} }

// Unknown constructs the gradual effect.
func Unknown() Effect { return UnknownEffect{} }

func isEmpty(e Effect) bool {
	_, ok := e.(EmptyEffect)
	return ok
}

// Combine implements §3.2's structural algebra: Empty is absorbed,
// same-kind specialized payloads merge, and anything else becomes a
// Row with the left effect's head preserved — recursing through any
// Row structure already present in a so nested handlers keep their
// order.
func Combine(a, b Effect) Effect {
	switch av := a.(type) {
	case EmptyEffect:
		return b
	case RowEffect:
		return RowEffect{Head: av.Head, Tail: Combine(av.Tail, b)}
	}
	if isEmpty(b) {
		return a
	}
	if as, ok := a.(SideEffect); ok {
		if bs, ok2 := b.(SideEffect); ok2 {
			return Side(append(append([]string{}, as.MFAs...), bs.MFAs...))
		}
	}
	if ad, ok := a.(DependentEffect); ok {
		if bd, ok2 := b.(DependentEffect); ok2 {
			return Dependent(append(append([]string{}, ad.MFAs...), bd.MFAs...))
		}
	}
	if ae, ok := a.(ExnEffect); ok {
		if be, ok2 := b.(ExnEffect); ok2 {
			return Exn(append(append([]string{}, ae.Tags...), be.Tags...))
		}
	}
	return RowEffect{Head: a, Tail: b}
}

// equalAtomic compares two non-Row effects structurally, ignoring
// payload order (payloads are always stored sorted by the
// constructors above, so this reduces to slice equality).
func equalAtomic(a, b Effect) bool {
	switch av := a.(type) {
	case EmptyEffect:
		_, ok := b.(EmptyEffect)
		return ok
	case LabelEffect:
		bv, ok := b.(LabelEffect)
		return ok && av.Name == bv.Name
	case VarEffect:
		bv, ok := b.(VarEffect)
		return ok && av.N == bv.N
	case SideEffect:
		bv, ok := b.(SideEffect)
		return ok && stringsEqual(av.MFAs, bv.MFAs)
	case DependentEffect:
		bv, ok := b.(DependentEffect)
		return ok && stringsEqual(av.MFAs, bv.MFAs)
	case ExnEffect:
		bv, ok := b.(ExnEffect)
		return ok && stringsEqual(av.Tags, bv.Tags)
	case UnknownEffect:
		_, ok := b.(UnknownEffect)
		return ok
	default:
		return false
	}
}

// Subtract removes the first occurrence of label from the row,
// returning the residual and whether it was found (§3.2, §4.8,
// Testable Property 3).
func Subtract(label, e Effect) (Effect, bool) {
	switch ev := e.(type) {
	case RowEffect:
		if equalAtomic(ev.Head, label) {
			return ev.Tail, true
		}
		residualTail, found := Subtract(label, ev.Tail)
		return RowEffect{Head: ev.Head, Tail: residualTail}, found
	default:
		if equalAtomic(e, label) {
			return Empty(), true
		}
		return e, false
	}
}

// HasLabel reports whether label occurs anywhere in e. The second
// return is false when the answer is unknown (e contains a Var or is
// itself Unknown), per §4.1.
func HasLabel(label, e Effect) (present bool, known bool) {
	switch ev := e.(type) {
	case RowEffect:
		if equalAtomic(ev.Head, label) {
			return true, true
		}
		if _, ok := ev.Head.(VarEffect); ok {
			return false, false
		}
		if _, ok := ev.Head.(UnknownEffect); ok {
			return false, false
		}
		return HasLabel(label, ev.Tail)
	case VarEffect:
		return false, false
	case UnknownEffect:
		return false, false
	default:
		return equalAtomic(e, label), true
	}
}

// Subeffect reports whether a is weaker than (or equal to) b. Empty is
// weaker than anything; specialized payloads compare by subset;
// otherwise rows check label presence recursing with the first
// occurrence removed. Unknown propagates as "unknown" per §4.1.
func Subeffect(a, b Effect) (weaker bool, known bool) {
	if isEmpty(a) {
		return true, true
	}
	if containsVarOrUnknown(a) || containsVarOrUnknown(b) {
		return false, false
	}
	switch av := a.(type) {
	case SideEffect:
		bv, ok := b.(SideEffect)
		if !ok {
			return false, true
		}
		return subsetOf(av.MFAs, bv.MFAs), true
	case DependentEffect:
		bv, ok := b.(DependentEffect)
		if !ok {
			return false, true
		}
		return subsetOf(av.MFAs, bv.MFAs), true
	case ExnEffect:
		bv, ok := b.(ExnEffect)
		if !ok {
			return false, true
		}
		return subsetOf(av.Tags, bv.Tags), true
	case RowEffect:
		present, known := HasLabel(av.Head, b)
		if !known {
			return false, false
		}
		if !present {
			return false, true
		}
		residual, _ := Subtract(av.Head, b)
		return Subeffect(av.Tail, residual)
	default:
		return equalAtomic(a, b), true
	}
}

// OnlyVariables reports whether e is composed solely of effect
// variables (possibly chained in a Row) — the signal §4.4's function
// definition rule 3 uses to decide whether a function's impurity is
// entirely conditional on a higher-order argument.
func OnlyVariables(e Effect) bool {
	switch ev := e.(type) {
	case VarEffect:
		return true
	case RowEffect:
		return OnlyVariables(ev.Head) && OnlyVariables(ev.Tail)
	default:
		return false
	}
}

func containsVarOrUnknown(e Effect) bool {
	switch ev := e.(type) {
	case VarEffect:
		return true
	case UnknownEffect:
		return true
	case RowEffect:
		return containsVarOrUnknown(ev.Head) || containsVarOrUnknown(ev.Tail)
	default:
		return false
	}
}

func subsetOf(a, b []string) bool {
	set := toSet(b)
	for _, v := range a {
		if !set[v] {
			return false
		}
	}
	return true
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func sortUnique(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	set := toSet(xs)
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinParen(xs []string) string {
	if len(xs) == 0 {
		return "()"
	}
	s := "("
	for i, x := range xs {
		if i > 0 {
			s += ","
		}
		s += x
	}
	return s + ")"
}


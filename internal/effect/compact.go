package effect

import "github.com/unbound-force/scry/internal/syntax"

// Tag is the public compact classification (§3.2, GLOSSARY): p, d, l,
// e, s, n, u. Its declaration order is its severity order (low to
// high), exactly §3.2's precedence: Empty < Lambda < Exn < Dependent <
// Side < Nif < Unknown.
type Tag int

const (
	PurityPure Tag = iota
	PurityLambda
	PurityException
	PurityDependent
	PuritySide
	PurityNif
	PurityUnknown
)

func (t Tag) String() string {
	switch t {
	case PurityPure:
		return "p"
	case PurityLambda:
		return "l"
	case PurityException:
		return "e"
	case PurityDependent:
		return "d"
	case PuritySide:
		return "s"
	case PurityNif:
		return "n"
	case PurityUnknown:
		return "u"
	default:
		return "?"
	}
}

// CompactEffect is the registry/public-API summary tag: a Tag plus
// whichever payload it carries.
type CompactEffect struct {
	Tag  Tag
	MFAs []string // Side, Dependent
	Tags []string // Exception
}

func (c CompactEffect) String() string {
	switch c.Tag {
	case PuritySide, PurityDependent:
		return c.Tag.String() + joinParen(c.MFAs)
	case PurityException:
		return c.Tag.String() + joinParen(c.Tags)
	default:
		return c.Tag.String()
	}
}

// Equal compares two compact effects structurally; both payloads are
// sorted and deduplicated before comparison, so payload order does not
// matter (Testable Property 2: commutativity of specialized payloads).
func (c CompactEffect) Equal(o CompactEffect) bool {
	if c.Tag != o.Tag {
		return false
	}
	return stringsEqual(sortUnique(c.MFAs), sortUnique(o.MFAs)) &&
		stringsEqual(sortUnique(c.Tags), sortUnique(o.Tags))
}

// Pure is the canonical pure compact effect.
func Pure() CompactEffect { return CompactEffect{Tag: PurityPure} }

// flatten unrolls a Row chain into its ordered sequence of atomic
// effects (Label, Side, Dependent, Exn, Var, Unknown, Empty). Row
// heads that are themselves Rows (possible from direct construction
// rather than Combine) are flattened too.
func flatten(e Effect) []Effect {
	switch ev := e.(type) {
	case EmptyEffect:
		return nil
	case RowEffect:
		return append(flatten(ev.Head), flatten(ev.Tail)...)
	default:
		return []Effect{ev}
	}
}

// Compact reduces any Effect to its CompactEffect tag, applying the
// nine ordered rules of §3.2.
func Compact(e Effect) CompactEffect {
	atoms := flatten(e)

	// 1. No labels -> pure.
	if len(atoms) == 0 {
		return Pure()
	}

	hasNif := false
	hasUnknown := false
	hasLambda := false
	hasDependentAtom := false
	hasExnAtom := false
	var sideMFAs, depMFAs, exnTags []string

	for _, a := range atoms {
		switch av := a.(type) {
		case LabelEffect:
			switch av.Name {
			case "nif":
				hasNif = true
			case "unknown":
				hasUnknown = true
			case "lambda":
				hasLambda = true
			case "dependent":
				hasDependentAtom = true
			case "exn":
				hasExnAtom = true
			}
		case SideEffect:
			sideMFAs = append(sideMFAs, av.MFAs...)
		case DependentEffect:
			depMFAs = append(depMFAs, av.MFAs...)
		case ExnEffect:
			exnTags = append(exnTags, av.Tags...)
		case UnknownEffect:
			hasUnknown = true
		case VarEffect:
			// An unresolved variable is treated as the weakest
			// possible residual; it contributes nothing on its own
			// and is resolved by the unifier before compaction in
			// practice.
		}
	}

	// 2. Contains nif -> n.
	if hasNif {
		return CompactEffect{Tag: PurityNif}
	}
	// 3. Any Side present -> s, union of payloads.
	if len(sideMFAs) > 0 {
		return CompactEffect{Tag: PuritySide, MFAs: sortUnique(sideMFAs)}
	}
	// 4. Any Dependent present -> d, union of payloads.
	if len(depMFAs) > 0 {
		return CompactEffect{Tag: PurityDependent, MFAs: sortUnique(depMFAs)}
	}
	// 5. Contains unknown -> u.
	if hasUnknown {
		return CompactEffect{Tag: PurityUnknown}
	}
	// 6. Contains lambda and no harder labels -> l.
	if hasLambda {
		return CompactEffect{Tag: PurityLambda}
	}
	// 7. Contains dependent atom -> d.
	if hasDependentAtom {
		return CompactEffect{Tag: PurityDependent}
	}
	// 8. Contains exn or Exn(..) labels -> e, union of tags.
	if hasExnAtom || len(exnTags) > 0 {
		return CompactEffect{Tag: PurityException, Tags: sortUnique(exnTags)}
	}
	// 9. Fallback -> s.
	return CompactEffect{Tag: PuritySide}
}

// CombineAllSeverity selects the max-severity element under the §3.2
// precedence order, discarding a nil list entirely (returns Pure for
// an empty input, the neutral base of the lattice).
func CombineAllSeverity(effects []CompactEffect) CompactEffect {
	best := Pure()
	seenAny := false
	for _, e := range effects {
		if !seenAny || e.Tag > best.Tag {
			best = e
			seenAny = true
		}
	}
	return best
}

// Resolver is the narrow contract from_mfa needs from a registry:
// direct effect lookup and wrapper-to-leaves resolution. Kept in this
// package (rather than depending on internal/registry) to avoid an
// import cycle, since the registry's own entries are built out of
// CompactEffect values.
type Resolver interface {
	Effect(mfa syntax.MFA) (CompactEffect, bool)
	ResolveToLeaves(mfa syntax.MFA) ([]syntax.MFA, bool)
}

// FromMFA constructs an Effect from a registry lookup (§4.1): a direct
// entry short-circuits (Testable Property 9); otherwise wrapper
// resolution to leaf callees is attempted and their effects combined,
// excluding effectless leaves (p, l, n, u) from the MFA set carried in
// the resulting Side/Dependent. Absent both, the result is Unknown.
func FromMFA(mfa syntax.MFA, r Resolver) Effect {
	return fromMFA(mfa, r, make(map[syntax.MFA]bool))
}

func fromMFA(mfa syntax.MFA, r Resolver, visiting map[syntax.MFA]bool) Effect {
	if ce, ok := r.Effect(mfa); ok {
		return FromCompact(ce, mfa)
	}
	if visiting[mfa] {
		// Cyclic wrapper resolution; §5 depth-bound guard: treat the
		// current MFA as a leaf rather than recurse forever.
		return Unknown()
	}
	leaves, ok := r.ResolveToLeaves(mfa)
	if !ok {
		return Unknown()
	}
	visiting[mfa] = true
	defer delete(visiting, mfa)

	combined := Empty()
	for _, leaf := range leaves {
		leafEffect := fromMFA(leaf, r, visiting)
		leafCompact := Compact(leafEffect)
		switch leafCompact.Tag {
		case PurityPure, PurityLambda:
			// Effectless leaves are excluded from the carried MFA set.
		case PuritySide:
			combined = Combine(combined, Side([]string{leaf.String()}))
		case PurityDependent:
			combined = Combine(combined, Dependent([]string{leaf.String()}))
		case PurityException:
			combined = Combine(combined, Exn(leafCompact.Tags))
		case PurityNif:
			combined = Combine(combined, Label("nif"))
		case PurityUnknown:
			combined = Combine(combined, Unknown())
		}
	}
	return combined
}

// FromCompact lifts a CompactEffect back into the raw Effect lattice,
// used when a direct registry hit needs to participate in further
// combination during inference.
func FromCompact(c CompactEffect, mfa syntax.MFA) Effect {
	switch c.Tag {
	case PurityPure:
		return Empty()
	case PurityLambda:
		return Label("lambda")
	case PurityException:
		tags := c.Tags
		if len(tags) == 0 {
			tags = []string{DynamicTag}
		}
		return Exn(tags)
	case PurityDependent:
		mfas := c.MFAs
		if len(mfas) == 0 {
			mfas = []string{mfa.String()}
		}
		return Dependent(mfas)
	case PuritySide:
		mfas := c.MFAs
		if len(mfas) == 0 {
			mfas = []string{mfa.String()}
		}
		return Side(mfas)
	case PurityNif:
		return Label("nif")
	default:
		return Unknown()
	}
}

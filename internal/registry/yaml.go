package registry

import (
	"github.com/unbound-force/scry/internal/effect"
	"github.com/unbound-force/scry/internal/syntax"
)

// registryDoc is the on-disk YAML shape for a registry description
// file (§6.4), mirroring internal/config's flat-struct load-then-
// convert idiom.
type registryDoc struct {
	Modules map[string]moduleDoc `yaml:"modules"`
}

type moduleDoc struct {
	Whitelist      string         `yaml:"whitelist"` // "all", "all_except", "exact_map"
	Excluded       []nameArityDoc `yaml:"excluded,omitempty"`
	NonTerminating []nameArityDoc `yaml:"non_terminating,omitempty"`
	Entries        map[string][]arityEffectDoc `yaml:"entries,omitempty"`
}

type nameArityDoc struct {
	Name  string `yaml:"name"`
	Arity int    `yaml:"arity"`
}

type arityEffectDoc struct {
	Arity     int          `yaml:"arity"`
	Effect    compactDoc   `yaml:"effect"`
	Exception exceptionDoc `yaml:"exception,omitempty"`
	Resolves  []mfaDoc     `yaml:"resolves,omitempty"`
}

type compactDoc struct {
	Tag  string   `yaml:"tag"` // p, d, l, e, s, n, u
	MFAs []string `yaml:"mfas,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

type exceptionDoc struct {
	Tags      []string `yaml:"tags,omitempty"`
	Dynamic   bool     `yaml:"dynamic,omitempty"`
	NonErrors bool     `yaml:"non_errors,omitempty"`
}

type mfaDoc struct {
	Module string `yaml:"module"`
	Name   string `yaml:"name"`
	Arity  int    `yaml:"arity"`
}

func (d mfaDoc) toMFA() syntax.MFA {
	return syntax.MFA{Module: syntax.Symbol(d.Module), Name: syntax.Symbol(d.Name), Arity: d.Arity}
}

func (d compactDoc) toCompact() effect.CompactEffect {
	var tag effect.Tag
	switch d.Tag {
	case "p":
		tag = effect.PurityPure
	case "l":
		tag = effect.PurityLambda
	case "e":
		tag = effect.PurityException
	case "d":
		tag = effect.PurityDependent
	case "s":
		tag = effect.PuritySide
	case "n":
		tag = effect.PurityNif
	default:
		tag = effect.PurityUnknown
	}
	return effect.CompactEffect{Tag: tag, MFAs: d.MFAs, Tags: d.Tags}
}

func (d exceptionDoc) toExceptionInfo() effect.ExceptionInfo {
	if d.Dynamic {
		return effect.ExceptionInfo{Errors: effect.DynamicExceptionSet(), NonErrors: d.NonErrors}
	}
	return effect.ExceptionInfo{Errors: effect.NewExceptionSet(d.Tags), NonErrors: d.NonErrors}
}

func (doc registryDoc) toRegistry() *Registry {
	r := New()
	for modName, m := range doc.Modules {
		desc := ModuleDescription{
			NonTerminating: make(map[NameArity]bool),
		}
		for _, na := range m.NonTerminating {
			desc.NonTerminating[NameArity{Name: na.Name, Arity: na.Arity}] = true
		}

		switch m.Whitelist {
		case "exact_map":
			entries := make(map[string][]ArityEffect, len(m.Entries))
			for fname, arities := range m.Entries {
				list := make([]ArityEffect, 0, len(arities))
				for _, a := range arities {
					leaves := make([]syntax.MFA, 0, len(a.Resolves))
					for _, l := range a.Resolves {
						leaves = append(leaves, l.toMFA())
					}
					list = append(list, ArityEffect{
						Arity:         a.Arity,
						Effect:        a.Effect.toCompact(),
						Exception:     a.Exception.toExceptionInfo(),
						ResolveLeaves: leaves,
					})
				}
				entries[fname] = list
			}
			desc.Whitelist = ExactMap{Entries: entries}
		case "all_except":
			excluded := make(map[NameArity]bool, len(m.Excluded))
			for _, na := range m.Excluded {
				excluded[NameArity{Name: na.Name, Arity: na.Arity}] = true
			}
			desc.Whitelist = AllExcept{Excluded: excluded}
		default:
			desc.Whitelist = All{}
		}

		r.DefineModule(syntax.Symbol(modName), desc)
	}
	return r
}

// Package syntax defines the abstract syntax scry's analysis core
// consumes: function identities (MFAs), the type lattice, and the
// expression/pattern tree shapes produced by an external bytecode or
// debug-info reader. The reader itself is out of scope for the core;
// this package only defines the narrow interface its trees satisfy.
package syntax

import "fmt"

// Symbol is an interned-by-convention identifier: module and function
// names. Programs in the analyzed language rarely exceed a few
// thousand distinct symbols, so a plain comparable string is used in
// place of a runtime interning table.
type Symbol string

// MFA identifies a function by module, name, and arity. MFAs are the
// stable keys used throughout the system: as cache keys, registry
// keys, and dependency graph nodes.
type MFA struct {
	Module Symbol
	Name   Symbol
	Arity  int
}

// String renders the MFA in its display form "Mod.name/arity".
// This form is for display only; MFA equality is structural.
func (m MFA) String() string {
	return fmt.Sprintf("%s.%s/%d", m.Module, m.Name, m.Arity)
}

// Pos is a source position within a module, preserved from the
// reader's line-number metadata (§6.1: "preserves line numbers").
type Pos struct {
	Module Symbol
	Line   int
}

func (p Pos) String() string {
	if p.Line <= 0 {
		return string(p.Module)
	}
	return fmt.Sprintf("%s:%d", p.Module, p.Line)
}

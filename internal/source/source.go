// Package source defines the boundary between the analyzer core and
// whatever actually reads compiled bytecode/debug-info off disk (§6.1).
// The real reader is out of scope for this module; only the interface
// is part of the core's contract.
package source

import (
	"fmt"

	"github.com/unbound-force/scry/internal/syntax"
)

// Source loads one module's parsed tree from an artifact path.
type Source interface {
	Load(path string) (syntax.Module, error)
}

// Mem is a map-backed, in-memory Source for use as a test double in
// place of a real bytecode reader.
type Mem struct {
	modules map[string]syntax.Module
}

// NewMem builds a Mem source from a path-to-module map.
func NewMem(modules map[string]syntax.Module) *Mem {
	cp := make(map[string]syntax.Module, len(modules))
	for k, v := range modules {
		cp[k] = v
	}
	return &Mem{modules: cp}
}

// Load returns the module registered at path, or an error if none was.
func (m *Mem) Load(path string) (syntax.Module, error) {
	mod, ok := m.modules[path]
	if !ok {
		return syntax.Module{}, fmt.Errorf("source: no module registered at %q", path)
	}
	return mod, nil
}

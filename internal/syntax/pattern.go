package syntax

// Pattern is implemented by every pattern shape a function clause head
// or case arm can destructure against (§4.4 "Pattern matching").
type Pattern interface {
	patternNode()
}

// PVar binds the scrutinee (or substructure) to a fresh name.
type PVar struct {
	Name Symbol
}

func (PVar) patternNode() {}

// PLit matches a literal value exactly.
type PLit struct {
	Kind  string
	Value any
}

func (PLit) patternNode() {}

// PTuple destructures a fixed-arity tuple.
type PTuple struct {
	Elems []Pattern
}

func (PTuple) patternNode() {}

// PList destructures a list into a head prefix and an optional tail
// binding (nil Tail means a closed list of exactly len(Elems)).
type PList struct {
	Elems []Pattern
	Tail  Pattern
}

func (PList) patternNode() {}

// PStruct matches a module-tagged structural literal, e.g. %ArgumentError{}.
// Module is the struct's tag — this is how Raise/catch tag extraction
// recognizes a concrete exception shape (§4.4, §4.8).
type PStruct struct {
	Module Symbol
	Fields map[Symbol]Pattern
}

func (PStruct) patternNode() {}

// PWildcard matches anything and binds nothing.
type PWildcard struct{}

func (PWildcard) patternNode() {}

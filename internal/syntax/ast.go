package syntax

// Node is implemented by every expression shape the reader can
// produce (§6.1). Analysis packages dispatch on concrete type via a
// type switch; Pos lets every node report where it came from for
// error messages.
type Node interface {
	exprNode()
	At() Pos
}

// base carries the position common to every node; embedded so
// concrete node types get At() for free.
type base struct {
	Pos Pos
}

func (b base) At() Pos { return b.Pos }

// Lit is a literal value: numbers, strings, atoms, booleans.
type Lit struct {
	base
	Kind  string // "int", "float", "string", "atom", "bool", "nil"
	Value any
}

func (Lit) exprNode() {}

// VarRef is a reference to a bound variable.
type VarRef struct {
	base
	Name Symbol
}

func (VarRef) exprNode() {}

// RemoteCall is a call with a statically-known module and function,
// e.g. Module.fn(args) — the common case extraction rule 1 of §4.5.
type RemoteCall struct {
	base
	Target MFA
	Args   []Node
}

func (RemoteCall) exprNode() {}

// LocalCall is a call to a function of the enclosing module without
// qualification — rule 4 of §4.5. Module resolves to the ambient
// module at extraction time.
type LocalCall struct {
	base
	Name Symbol
	Args []Node
}

func (LocalCall) exprNode() {}

// DynamicCall is a call through a head expression that is not a
// literal module/function reference — rule 5 of §4.5, no MFA extracted.
type DynamicCall struct {
	base
	Head Node
	Args []Node
}

func (DynamicCall) exprNode() {}

// FuncCapture is a captured function reference, &Module.fn/arity —
// rule 2 of §4.5.
type FuncCapture struct {
	base
	Target MFA
}

func (FuncCapture) exprNode() {}

// OpCapture is a captured operator, &+/2 — rule 3 of §4.5, resolved to
// the ambient Kernel module at extraction time.
type OpCapture struct {
	base
	Op    Symbol
	Arity int
}

func (OpCapture) exprNode() {}

// Lambda is an anonymous function literal.
type Lambda struct {
	base
	Params []Pattern
	Body   Node
}

func (Lambda) exprNode() {}

// CaseClause is one arm of a Case expression.
type CaseClause struct {
	Pattern Pattern
	Guards  []Node
	Body    Node
}

// Case is a pattern-matching case/match expression over a scrutinee.
type Case struct {
	base
	Scrutinee Node
	Clauses   []CaseClause
}

func (Case) exprNode() {}

// If is a condition/then/else expression.
type If struct {
	base
	Cond Node
	Then Node
	Else Node
}

func (If) exprNode() {}

// Try is a try/catch block; Catches is only meaningful on
// DialectLow trees (§4.8, §9 Open Questions).
type Try struct {
	base
	Body    Node
	Catches []CatchClause
}

func (Try) exprNode() {}

// Raise is an exception-raising call, e.g. raise ArgumentError, "msg".
// Arg is preserved for diagnostics but is deliberately not synthesized
// for effect by inference (§4.4 "Raise / error-constructing call").
type Raise struct {
	base
	Arg Node
}

func (Raise) exprNode() {}

// StructLit is a module-tagged structural literal expression, e.g.
// %ArgumentError{message: "x"}. This is the expression-position
// counterpart to PStruct and is how Raise's tag-extraction rule (b)
// recognizes a concrete exception shape being constructed.
type StructLit struct {
	base
	Module Symbol
	Fields map[Symbol]Node
}

func (StructLit) exprNode() {}

// Block is a sequence of expressions evaluated for effect, the value
// of the last one returned.
type Block struct {
	base
	Exprs []Node
}

func (Block) exprNode() {}

// Match is a single pattern-binding expression (pattern = value), as
// opposed to the multi-clause Case.
type Match struct {
	base
	Pattern Pattern
	Value   Node
}

func (Match) exprNode() {}

package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/unbound-force/scry/internal/syntax"
)

// JSONFile is a concrete Source backed by a JSON encoding of a
// module's tree. It stands in for the real bytecode/debug-info reader
// (§6.1), which is external to this module; JSON is a convenient,
// line-preserving wire format a reader could plausibly emit.
type JSONFile struct{}

// Load reads and decodes one module from the JSON file at path.
func (JSONFile) Load(path string) (syntax.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return syntax.Module{}, fmt.Errorf("source: reading %q: %w", path, err)
	}
	var wire wireModule
	if err := json.Unmarshal(data, &wire); err != nil {
		return syntax.Module{}, fmt.Errorf("source: parsing %q: %w", path, err)
	}
	return wire.decode()
}

type wireModule struct {
	Name    string        `json:"name"`
	Dialect string        `json:"dialect"`
	Clauses []wireClause  `json:"clauses"`
}

type wireClause struct {
	Name   string          `json:"name"`
	Arity  int             `json:"arity"`
	Params []wirePattern   `json:"params"`
	Guards []wireNode      `json:"guards"`
	Body   wireNode        `json:"body"`
	Line   int             `json:"line"`
}

type wireNode struct {
	Kind   string              `json:"kind"`
	Line   int                 `json:"line"`
	// Lit
	LitKind string             `json:"lit_kind,omitempty"`
	Value   any                `json:"value,omitempty"`
	// VarRef
	Name string               `json:"name,omitempty"`
	// RemoteCall / FuncCapture
	Module string              `json:"module,omitempty"`
	Fn     string              `json:"fn,omitempty"`
	Arity  int                 `json:"arity,omitempty"`
	Args   []wireNode          `json:"args,omitempty"`
	// LocalCall reuses Name+Args
	// DynamicCall
	Head *wireNode            `json:"head,omitempty"`
	// OpCapture reuses Name+Arity
	// Lambda
	Params []wirePattern       `json:"params,omitempty"`
	Body   *wireNode           `json:"body,omitempty"`
	// Case
	Scrutinee *wireNode        `json:"scrutinee,omitempty"`
	Clauses   []wireCaseClause `json:"clauses,omitempty"`
	// If
	Cond *wireNode            `json:"cond,omitempty"`
	Then *wireNode            `json:"then,omitempty"`
	Else *wireNode            `json:"else,omitempty"`
	// Try
	Catches []wireCatchClause  `json:"catches,omitempty"`
	// StructLit
	Fields map[string]wireNode `json:"fields,omitempty"`
	// Block
	Exprs []wireNode          `json:"exprs,omitempty"`
	// Match
	Pattern *wirePattern      `json:"pattern,omitempty"`
}

type wireCaseClause struct {
	Pattern wirePattern `json:"pattern"`
	Guards  []wireNode  `json:"guards"`
	Body    wireNode    `json:"body"`
}

type wireCatchClause struct {
	Class string       `json:"class"`
	Tag   *wirePattern `json:"tag"`
	Body  wireNode     `json:"body"`
}

type wirePattern struct {
	Kind   string                 `json:"kind"`
	Name   string                 `json:"name,omitempty"`
	LitKind string                `json:"lit_kind,omitempty"`
	Value  any                    `json:"value,omitempty"`
	Elems  []wirePattern          `json:"elems,omitempty"`
	Tail   *wirePattern           `json:"tail,omitempty"`
	Module string                 `json:"module,omitempty"`
	Fields map[string]wirePattern `json:"fields,omitempty"`
}

func (wm wireModule) decode() (syntax.Module, error) {
	dialect := syntax.DialectLow
	if wm.Dialect == "high" {
		dialect = syntax.DialectHigh
	}
	mod := syntax.Module{
		Name:    syntax.Symbol(wm.Name),
		Dialect: dialect,
	}
	for _, wc := range wm.Clauses {
		params := make([]syntax.Pattern, 0, len(wc.Params))
		for _, p := range wc.Params {
			dp, err := p.decode()
			if err != nil {
				return syntax.Module{}, err
			}
			params = append(params, dp)
		}
		guards, err := decodeNodes(wc.Guards, wm.Name)
		if err != nil {
			return syntax.Module{}, err
		}
		body, err := wc.Body.decode(wm.Name)
		if err != nil {
			return syntax.Module{}, err
		}
		mod.Clauses = append(mod.Clauses, syntax.FuncClause{
			Name:   syntax.Symbol(wc.Name),
			Arity:  wc.Arity,
			Params: params,
			Guards: guards,
			Body:   body,
			Pos:    syntax.Pos{Module: syntax.Symbol(wm.Name), Line: wc.Line},
		})
	}
	return mod, nil
}

func decodeNodes(ws []wireNode, module string) ([]syntax.Node, error) {
	out := make([]syntax.Node, 0, len(ws))
	for _, w := range ws {
		n, err := w.decode(module)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func pos(module string, line int) syntax.Pos {
	return syntax.Pos{Module: syntax.Symbol(module), Line: line}
}

// Position assignment below relies on Go's promotion of the embedded
// (unexported) base struct's exported Pos field: a value of a type
// embedding base can have its Pos field set directly even though base
// itself is unexported outside this package's sibling, syntax.

func (w wireNode) decode(module string) (syntax.Node, error) {
	p := pos(module, w.Line)
	switch w.Kind {
	case "lit":
		n := syntax.Lit{Kind: w.LitKind, Value: w.Value}
		n.Pos = p
		return n, nil
	case "var":
		n := syntax.VarRef{Name: syntax.Symbol(w.Name)}
		n.Pos = p
		return n, nil
	case "remote_call":
		args, err := decodeNodes(w.Args, module)
		if err != nil {
			return nil, err
		}
		n := syntax.RemoteCall{
			Target: syntax.MFA{Module: syntax.Symbol(w.Module), Name: syntax.Symbol(w.Fn), Arity: w.Arity},
			Args:   args,
		}
		n.Pos = p
		return n, nil
	case "local_call":
		args, err := decodeNodes(w.Args, module)
		if err != nil {
			return nil, err
		}
		n := syntax.LocalCall{Name: syntax.Symbol(w.Name), Args: args}
		n.Pos = p
		return n, nil
	case "dynamic_call":
		if w.Head == nil {
			return nil, fmt.Errorf("source: dynamic_call node missing head")
		}
		head, err := w.Head.decode(module)
		if err != nil {
			return nil, err
		}
		args, err := decodeNodes(w.Args, module)
		if err != nil {
			return nil, err
		}
		n := syntax.DynamicCall{Head: head, Args: args}
		n.Pos = p
		return n, nil
	case "func_capture":
		n := syntax.FuncCapture{
			Target: syntax.MFA{Module: syntax.Symbol(w.Module), Name: syntax.Symbol(w.Fn), Arity: w.Arity},
		}
		n.Pos = p
		return n, nil
	case "op_capture":
		n := syntax.OpCapture{Op: syntax.Symbol(w.Name), Arity: w.Arity}
		n.Pos = p
		return n, nil
	case "lambda":
		params := make([]syntax.Pattern, 0, len(w.Params))
		for _, pp := range w.Params {
			dp, err := pp.decode()
			if err != nil {
				return nil, err
			}
			params = append(params, dp)
		}
		if w.Body == nil {
			return nil, fmt.Errorf("source: lambda node missing body")
		}
		body, err := w.Body.decode(module)
		if err != nil {
			return nil, err
		}
		n := syntax.Lambda{Params: params, Body: body}
		n.Pos = p
		return n, nil
	case "case":
		if w.Scrutinee == nil {
			return nil, fmt.Errorf("source: case node missing scrutinee")
		}
		scrut, err := w.Scrutinee.decode(module)
		if err != nil {
			return nil, err
		}
		clauses := make([]syntax.CaseClause, 0, len(w.Clauses))
		for _, cc := range w.Clauses {
			pat, err := cc.Pattern.decode()
			if err != nil {
				return nil, err
			}
			guards, err := decodeNodes(cc.Guards, module)
			if err != nil {
				return nil, err
			}
			body, err := cc.Body.decode(module)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, syntax.CaseClause{Pattern: pat, Guards: guards, Body: body})
		}
		n := syntax.Case{Scrutinee: scrut, Clauses: clauses}
		n.Pos = p
		return n, nil
	case "if":
		if w.Cond == nil || w.Then == nil || w.Else == nil {
			return nil, fmt.Errorf("source: if node missing cond/then/else")
		}
		cond, err := w.Cond.decode(module)
		if err != nil {
			return nil, err
		}
		then, err := w.Then.decode(module)
		if err != nil {
			return nil, err
		}
		els, err := w.Else.decode(module)
		if err != nil {
			return nil, err
		}
		n := syntax.If{Cond: cond, Then: then, Else: els}
		n.Pos = p
		return n, nil
	case "try":
		if w.Body == nil {
			return nil, fmt.Errorf("source: try node missing body")
		}
		body, err := w.Body.decode(module)
		if err != nil {
			return nil, err
		}
		catches := make([]syntax.CatchClause, 0, len(w.Catches))
		for _, cc := range w.Catches {
			var tag syntax.Pattern
			if cc.Tag != nil {
				t, err := cc.Tag.decode()
				if err != nil {
					return nil, err
				}
				tag = t
			}
			cbody, err := cc.Body.decode(module)
			if err != nil {
				return nil, err
			}
			catches = append(catches, syntax.CatchClause{Class: catchClassOf(cc.Class), Tag: tag, Body: cbody})
		}
		n := syntax.Try{Body: body, Catches: catches}
		n.Pos = p
		return n, nil
	case "raise":
		var arg syntax.Node
		if w.Head != nil {
			a, err := w.Head.decode(module)
			if err != nil {
				return nil, err
			}
			arg = a
		}
		n := syntax.Raise{Arg: arg}
		n.Pos = p
		return n, nil
	case "struct_lit":
		fields := make(map[syntax.Symbol]syntax.Node, len(w.Fields))
		for k, v := range w.Fields {
			dv, err := v.decode(module)
			if err != nil {
				return nil, err
			}
			fields[syntax.Symbol(k)] = dv
		}
		n := syntax.StructLit{Module: syntax.Symbol(w.Module), Fields: fields}
		n.Pos = p
		return n, nil
	case "block":
		exprs, err := decodeNodes(w.Exprs, module)
		if err != nil {
			return nil, err
		}
		n := syntax.Block{Exprs: exprs}
		n.Pos = p
		return n, nil
	case "match":
		if w.Pattern == nil || w.Head == nil {
			return nil, fmt.Errorf("source: match node missing pattern/value")
		}
		pat, err := w.Pattern.decode()
		if err != nil {
			return nil, err
		}
		val, err := w.Head.decode(module)
		if err != nil {
			return nil, err
		}
		n := syntax.Match{Pattern: pat, Value: val}
		n.Pos = p
		return n, nil
	default:
		return nil, fmt.Errorf("source: unknown node kind %q", w.Kind)
	}
}

func (wp wirePattern) decode() (syntax.Pattern, error) {
	switch wp.Kind {
	case "var":
		return syntax.PVar{Name: syntax.Symbol(wp.Name)}, nil
	case "lit":
		return syntax.PLit{Kind: wp.LitKind, Value: wp.Value}, nil
	case "tuple":
		elems := make([]syntax.Pattern, 0, len(wp.Elems))
		for _, e := range wp.Elems {
			d, err := e.decode()
			if err != nil {
				return nil, err
			}
			elems = append(elems, d)
		}
		return syntax.PTuple{Elems: elems}, nil
	case "list":
		elems := make([]syntax.Pattern, 0, len(wp.Elems))
		for _, e := range wp.Elems {
			d, err := e.decode()
			if err != nil {
				return nil, err
			}
			elems = append(elems, d)
		}
		var tail syntax.Pattern
		if wp.Tail != nil {
			t, err := wp.Tail.decode()
			if err != nil {
				return nil, err
			}
			tail = t
		}
		return syntax.PList{Elems: elems, Tail: tail}, nil
	case "struct":
		fields := make(map[syntax.Symbol]syntax.Pattern, len(wp.Fields))
		for k, v := range wp.Fields {
			d, err := v.decode()
			if err != nil {
				return nil, err
			}
			fields[syntax.Symbol(k)] = d
		}
		return syntax.PStruct{Module: syntax.Symbol(wp.Module), Fields: fields}, nil
	case "wildcard", "":
		return syntax.PWildcard{}, nil
	default:
		return nil, fmt.Errorf("source: unknown pattern kind %q", wp.Kind)
	}
}

func catchClassOf(s string) syntax.CatchClass {
	switch s {
	case "throw":
		return syntax.ClassThrow
	case "exit":
		return syntax.ClassExit
	case "all":
		return syntax.ClassAll
	default:
		return syntax.ClassError
	}
}

package infer

import "github.com/unbound-force/scry/internal/syntax"

// bindPattern binds a pattern's variables into ctx.Env, using the
// scrutinee type to extract precise structural types where possible
// (tuples, lists, structs) and fresh variables otherwise (§4.4
// "Pattern matching"). scrutinee may be nil when no scrutinee type is
// known (function clause parameters).
func bindPattern(ctx *Context, p syntax.Pattern, scrutinee syntax.Type) syntax.Type {
	switch pv := p.(type) {
	case syntax.PVar:
		t := scrutinee
		if t == nil {
			t = ctx.freshType()
		}
		ctx.Env[pv.Name] = t
		return t
	case syntax.PWildcard:
		if scrutinee != nil {
			return scrutinee
		}
		return ctx.freshType()
	case syntax.PLit:
		return primTypeForKind(pv.Kind)
	case syntax.PTuple:
		var elemScrutinees []syntax.Type
		if st, ok := scrutinee.(syntax.TTuple); ok && len(st.Elems) == len(pv.Elems) {
			elemScrutinees = st.Elems
		}
		elems := make([]syntax.Type, len(pv.Elems))
		for i, e := range pv.Elems {
			var es syntax.Type
			if elemScrutinees != nil {
				es = elemScrutinees[i]
			}
			elems[i] = bindPattern(ctx, e, es)
		}
		return syntax.TTuple{Elems: elems}
	case syntax.PList:
		var elemType syntax.Type
		if lt, ok := scrutinee.(syntax.TList); ok {
			elemType = lt.Elem
		}
		last := ctx.freshType()
		for _, e := range pv.Elems {
			last = bindPattern(ctx, e, elemType)
		}
		if pv.Tail != nil {
			bindPattern(ctx, pv.Tail, syntax.TList{Elem: last})
		}
		return syntax.TList{Elem: last}
	case syntax.PStruct:
		for _, f := range pv.Fields {
			bindPattern(ctx, f, nil)
		}
		return syntax.TPrim{Name: string(pv.Module)}
	default:
		return ctx.freshType()
	}
}

func primTypeForKind(kind string) syntax.Type {
	switch kind {
	case "int":
		return syntax.TInt
	case "float":
		return syntax.TFloat
	case "string":
		return syntax.TString
	case "bool":
		return syntax.TBool
	case "atom":
		return syntax.TAtom
	case "pid":
		return syntax.TPid
	case "ref":
		return syntax.TRef
	default:
		return syntax.TAny
	}
}

// joinTypes is the type-lattice join used by Case/If: a single
// alternative collapses to itself, several become a TUnion (§4.4
// "the type is the join (Union) of clause-body types").
func joinTypes(types []syntax.Type) syntax.Type {
	if len(types) == 0 {
		return syntax.TAny
	}
	if len(types) == 1 {
		return types[0]
	}
	return syntax.TUnion{Alts: types}
}

func buildFuncType(paramTypes []syntax.Type, eff syntax.Effecter, ret syntax.Type) syntax.Type {
	var arg syntax.Type
	switch len(paramTypes) {
	case 0:
		arg = syntax.TTuple{}
	case 1:
		arg = paramTypes[0]
	default:
		arg = syntax.TTuple{Elems: paramTypes}
	}
	return syntax.TFunc{Arg: arg, Effect: eff, Ret: ret}
}

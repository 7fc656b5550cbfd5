package sema

import (
	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/types"
)

var scalarKinds = map[string]types.Kind{
	"bool": types.Bool, "char": types.Char, "address": types.Address,
	"field": types.Field, "group": types.Group,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
}

// resolveType converts an as-written ast.Type (already alias-expanded by
// internal/canon) into the resolved types.Type representation. A nil input
// (an omitted function return type) resolves to the zero Type, which sema
// treats as "unit". sc resolves const-expression array dimensions that name
// a local; it may be nil wherever only top-level consts are in scope (every
// Pass A call site).
func (a *Analyzer) resolveType(t ast.Type, sc *scope) types.Type {
	switch t := t.(type) {
	case nil:
		return types.Type{}
	case *ast.ScalarType:
		if k, ok := scalarKinds[t.Name]; ok {
			return types.Scalar(k)
		}
		return types.Type{}
	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = a.resolveType(e, sc)
		}
		return types.Type{Kind: types.Tuple, Elems: elems}
	case *ast.ArrayType:
		return a.resolveArrayType(t, sc)
	case *ast.NamedType:
		if def, ok := a.circuitTypes[t.Name]; ok {
			return types.Type{Kind: types.Circuit, CircuitDef: def}
		}
		a.bag.Errorf(source.CodeUnresolvedName, t.Sp, "unresolved type name %q", t.Name)
		return types.Type{}
	case *ast.SelfType:
		// internal/canon rewrites every SelfType before sema runs; reaching
		// this case means a SelfType escaped a non-circuit context.
		a.bag.Errorf(source.CodeUseOfSelfOutsideCircuit, t.Sp, "Self type used outside a circuit")
		return types.Type{}
	default:
		return types.Type{}
	}
}

// inferredArrayLen marks a "_" dimension not yet resolved against an
// initializer. buildLet replaces it from the initializer (see
// inferArrayLen); Pass A reports UnresolvedArraySize where it appears in a
// parameter, return, global const, or circuit member type.
const inferredArrayLen = -1

// resolveArrayType resolves the element type and, for each dimension,
// either takes the parsed literal length, const-evaluates the dimension
// expression recorded by the parser, or (for "_") leaves it to be inferred
// by the caller from an initializer. Multi-dimensional array syntax
// "[T; (d0, d1)]" desugars to nested Array types, outermost dimension
// first.
func (a *Analyzer) resolveArrayType(t *ast.ArrayType, sc *scope) types.Type {
	elem := a.resolveType(t.Elem, sc)
	for i := len(t.Dims) - 1; i >= 0; i-- {
		dim := t.Dims[i]
		var length int
		switch {
		case dim.Known:
			length = dim.Value
		case dim.Placeholder:
			length = inferredArrayLen
		default:
			v, ok := a.evalConst(dim.Expr, sc)
			if !ok || v.Kind != asg.ValInt {
				a.bag.Errorf(source.CodeUnresolvedArraySize, dim.Sp, "array dimension is not a constant expression")
				length = 0
			} else {
				length = int(v.Int.Int64())
			}
		}
		e := elem
		elem = types.Type{Kind: types.Array, Elem: &e, Len: length}
	}
	return elem
}

// inferArrayLen fills every inferredArrayLen placeholder in declared with
// the corresponding dimension of actual, letting "let x: [u8; _] = ..."
// take its length from the initializer. declared is returned unchanged
// wherever its shape doesn't line up with actual; the caller's normal
// type-equality check then reports the mismatch.
func inferArrayLen(declared, actual types.Type) types.Type {
	if declared.Kind != types.Array || actual.Kind != types.Array {
		return declared
	}
	elem := inferArrayLen(*declared.Elem, *actual.Elem)
	length := declared.Len
	if length == inferredArrayLen {
		length = actual.Len
	}
	return types.Type{Kind: types.Array, Elem: &elem, Len: length}
}

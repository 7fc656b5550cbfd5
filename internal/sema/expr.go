package sema

import (
	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/types"
)

// buildExpr resolves e, checks its type, and appends the corresponding node
// to the arena, returning its id and resolved type. Non-fatal type errors
// (operand mismatches) are reported and the expression's type degrades to
// the best-effort result so that surrounding context can keep checking.
func (a *Analyzer) buildExpr(e ast.Expr, sc *scope) (asg.ExprID, types.Type) {
	switch e := e.(type) {
	case *ast.Literal:
		return a.buildLiteral(e, sc)
	case *ast.Ident:
		return a.buildIdent(e, sc)
	case *ast.SelfExpr:
		return a.buildSelf(e, sc)
	case *ast.InputExpr:
		id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprRef, Span: e.Sp})
		return id, types.Type{}
	case *ast.BinaryExpr:
		return a.buildBinary(e, sc)
	case *ast.UnaryExpr:
		return a.buildUnary(e, sc)
	case *ast.TernaryExpr:
		return a.buildTernary(e, sc)
	case *ast.CastExpr:
		return a.buildCast(e, sc)
	case *ast.ArrayInlineExpr:
		return a.buildArrayInline(e, sc)
	case *ast.ArrayRepeatExpr:
		return a.buildArrayRepeat(e, sc)
	case *ast.IndexExpr:
		return a.buildIndex(e, sc)
	case *ast.RangeExpr:
		return a.buildRange(e, sc)
	case *ast.TupleExpr:
		return a.buildTuple(e, sc)
	case *ast.TupleAccessExpr:
		return a.buildTupleAccess(e, sc)
	case *ast.CircuitInitExpr:
		return a.buildCircuitInit(e, sc)
	case *ast.MemberAccessExpr:
		return a.buildMemberAccess(e, sc)
	case *ast.CallExpr:
		return a.buildCall(e, sc)
	case *ast.ParenExpr:
		return a.buildExpr(e.X, sc)
	default:
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Span()}), types.Type{}
	}
}

func (a *Analyzer) buildLiteral(lit *ast.Literal, sc *scope) (asg.ExprID, types.Type) {
	v, _ := literalValue(lit)
	t := literalType(lit)
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Type: t, Span: lit.Sp, Const: v, IsConstExpr: true})
	return id, t
}

func literalType(lit *ast.Literal) types.Type {
	switch lit.Kind {
	case ast.LitBoolean:
		return types.Scalar(types.Bool)
	case ast.LitAddress:
		return types.Scalar(types.Address)
	case ast.LitChar:
		return types.Scalar(types.Char)
	case ast.LitField:
		return types.Scalar(types.Field)
	case ast.LitGroup, ast.LitAffineGroup:
		return types.Scalar(types.Group)
	case ast.LitUnsigned:
		return types.Scalar(suffixKind(lit.Suffix))
	case ast.LitSigned:
		return types.Scalar(suffixKind(lit.Suffix))
	default:
		// Untyped integer literal: always typed u32. It is not unified
		// against context (a cast, a let annotation, or a parameter type).
		return types.Scalar(types.U32)
	}
}

func suffixKind(suffix string) types.Kind {
	switch suffix {
	case "u8":
		return types.U8
	case "u16":
		return types.U16
	case "u32":
		return types.U32
	case "u64":
		return types.U64
	case "u128":
		return types.U128
	case "i8":
		return types.I8
	case "i16":
		return types.I16
	case "i32":
		return types.I32
	case "i64":
		return types.I64
	case "i128":
		return types.I128
	}
	return types.U32
}

func (a *Analyzer) buildIdent(id *ast.Ident, sc *scope) (asg.ExprID, types.Type) {
	defID, ok := sc.lookup(id.Name)
	if !ok {
		defID, ok = a.topLevel[id.Name]
	}
	if !ok {
		a.bag.Errorf(source.CodeUnresolvedName, id.Sp, "unresolved name %q", id.Name)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: id.Sp}), types.Type{}
	}
	def := a.prg.Definition(defID)
	eid := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprRef, Type: def.Type, Span: id.Sp, Ref: defID,
		IsConstExpr: def.IsConst || def.Kind == asg.DefGlobalConst,
	})
	return eid, def.Type
}

func (a *Analyzer) buildSelf(e *ast.SelfExpr, sc *scope) (asg.ExprID, types.Type) {
	defID, ok := sc.lookup("self")
	if !ok {
		a.bag.Errorf(source.CodeUseOfSelfOutsideCircuit, e.Sp, "self used outside a circuit member function")
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	def := a.prg.Definition(defID)
	eid := a.prg.AddExpr(asg.Expression{Kind: asg.ExprRef, Type: def.Type, Span: e.Sp, Ref: defID})
	return eid, def.Type
}

func (a *Analyzer) buildBinary(e *ast.BinaryExpr, sc *scope) (asg.ExprID, types.Type) {
	lid, lt := a.buildExpr(e.Left, sc)
	rid, rt := a.buildExpr(e.Right, sc)
	resultType := a.checkBinaryOperandTypes(e, lt, rt)
	isConst := a.prg.Expr(lid).IsConstExpr && a.prg.Expr(rid).IsConstExpr
	id := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprBinary, Type: resultType, Span: e.Sp,
		Op: e.Op.String(), Left: lid, Right: rid, IsConstExpr: isConst,
	})
	return id, resultType
}

func (a *Analyzer) checkBinaryOperandTypes(e *ast.BinaryExpr, lt, rt types.Type) types.Type {
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		a.expectType(lt, types.Scalar(types.Bool), e.Sp)
		a.expectType(rt, types.Scalar(types.Bool), e.Sp)
		return types.Scalar(types.Bool)
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !types.Equal(lt, rt) {
			a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "operand types differ: %s vs %s", lt, rt)
		}
		return types.Scalar(types.Bool)
	default:
		if !types.Equal(lt, rt) {
			a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "operand types differ: %s vs %s", lt, rt)
			return lt
		}
		return lt
	}
}

func (a *Analyzer) expectType(got, want types.Type, sp source.Span) {
	if !types.Equal(got, want) {
		a.bag.Errorf(source.CodeTypeMismatch, sp, "expected %s, found %s", want, got)
	}
}

func (a *Analyzer) buildUnary(e *ast.UnaryExpr, sc *scope) (asg.ExprID, types.Type) {
	xid, xt := a.buildExpr(e.Operand, sc)
	op := "-"
	if e.Op == ast.UnaryNot {
		op = "!"
		a.expectType(xt, types.Scalar(types.Bool), e.Sp)
	}
	id := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprUnary, Type: xt, Span: e.Sp, Op: op, Left: xid,
		IsConstExpr: a.prg.Expr(xid).IsConstExpr,
	})
	return id, xt
}

func (a *Analyzer) buildTernary(e *ast.TernaryExpr, sc *scope) (asg.ExprID, types.Type) {
	cid, ct := a.buildExpr(e.Cond, sc)
	a.expectType(ct, types.Scalar(types.Bool), e.Sp)
	tid, tt := a.buildExpr(e.Then, sc)
	eid, et := a.buildExpr(e.Else, sc)
	if !types.Equal(tt, et) {
		a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "ternary branches have different types: %s vs %s", tt, et)
	}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprTernary, Type: tt, Span: e.Sp, Cond: cid, Then: tid, Else: eid})
	return id, tt
}

func (a *Analyzer) buildCast(e *ast.CastExpr, sc *scope) (asg.ExprID, types.Type) {
	xid, _ := a.buildExpr(e.X, sc)
	target := a.resolveType(e.Type, sc)
	id := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprCast, Type: target, Span: e.Sp, X: xid,
		IsConstExpr: a.prg.Expr(xid).IsConstExpr,
	})
	return id, target
}

func (a *Analyzer) buildArrayInline(e *ast.ArrayInlineExpr, sc *scope) (asg.ExprID, types.Type) {
	var elemIDs []asg.ExprID
	var elemType types.Type
	allConst := true
	for i, el := range e.Elems {
		eid, et := a.buildExpr(el, sc)
		if i == 0 {
			elemType = et
		} else if !types.Equal(elemType, et) {
			a.bag.Errorf(source.CodeTypeMismatch, el.Span(), "array elements have mixed types: %s vs %s", elemType, et)
		}
		if !a.prg.Expr(eid).IsConstExpr {
			allConst = false
		}
		elemIDs = append(elemIDs, eid)
	}
	arrType := types.Type{Kind: types.Array, Elem: &elemType, Len: len(elemIDs)}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprArrayInline, Type: arrType, Span: e.Sp, Elems: elemIDs, IsConstExpr: allConst})
	return id, arrType
}

func (a *Analyzer) buildArrayRepeat(e *ast.ArrayRepeatExpr, sc *scope) (asg.ExprID, types.Type) {
	elemID, elemType := a.buildExpr(e.Elem, sc)
	count, ok := a.evalConst(e.Count, sc)
	n := 0
	if ok && count.Kind == asg.ValInt {
		n = int(count.Int.Int64())
	} else {
		a.bag.Errorf(source.CodeUnresolvedArraySize, e.Sp, "array-repeat count is not a constant expression")
	}
	arrType := types.Type{Kind: types.Array, Elem: &elemType, Len: n}
	id := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprArrayRepeat, Type: arrType, Span: e.Sp, X: elemID,
		IsConstExpr: a.prg.Expr(elemID).IsConstExpr,
	})
	return id, arrType
}

func (a *Analyzer) buildIndex(e *ast.IndexExpr, sc *scope) (asg.ExprID, types.Type) {
	arrID, arrType := a.buildExpr(e.Array, sc)
	idxID, idxType := a.buildExpr(e.Index, sc)
	if !types.IsInteger(idxType.Kind) {
		a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "array index must be an integer, found %s", idxType)
	}
	var elemType types.Type
	if arrType.Kind == types.Array {
		elemType = *arrType.Elem
	} else {
		a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "cannot index non-array type %s", arrType)
	}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprIndex, Type: elemType, Span: e.Sp, Array: arrID, Index: idxID})
	return id, elemType
}

func (a *Analyzer) buildRange(e *ast.RangeExpr, sc *scope) (asg.ExprID, types.Type) {
	arrID, arrType := a.buildExpr(e.Array, sc)
	expr := asg.Expression{Kind: asg.ExprRange, Type: arrType, Span: e.Sp, Array: arrID}
	if e.Lo != nil {
		expr.Lo, _ = a.buildExpr(e.Lo, sc)
		expr.HasLo = true
	}
	if e.Hi != nil {
		expr.Hi, _ = a.buildExpr(e.Hi, sc)
		expr.HasHi = true
	}
	id := a.prg.AddExpr(expr)
	return id, arrType
}

func (a *Analyzer) buildTuple(e *ast.TupleExpr, sc *scope) (asg.ExprID, types.Type) {
	var ids []asg.ExprID
	var elemTypes []types.Type
	allConst := true
	for _, el := range e.Elems {
		eid, et := a.buildExpr(el, sc)
		ids = append(ids, eid)
		elemTypes = append(elemTypes, et)
		if !a.prg.Expr(eid).IsConstExpr {
			allConst = false
		}
	}
	t := types.Type{Kind: types.Tuple, Elems: elemTypes}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprTuple, Type: t, Span: e.Sp, Elems: ids, IsConstExpr: allConst})
	return id, t
}

func (a *Analyzer) buildTupleAccess(e *ast.TupleAccessExpr, sc *scope) (asg.ExprID, types.Type) {
	xid, xt := a.buildExpr(e.X, sc)
	var elemType types.Type
	if xt.Kind == types.Tuple && e.Index < len(xt.Elems) {
		elemType = xt.Elems[e.Index]
	} else {
		a.bag.Errorf(source.CodeTypeMismatch, e.Sp, "tuple index %d out of range for type %s", e.Index, xt)
	}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprTupleAccess, Type: elemType, Span: e.Sp, X: xid, TupleIndex: e.Index})
	return id, elemType
}

func (a *Analyzer) buildCircuitInit(e *ast.CircuitInitExpr, sc *scope) (asg.ExprID, types.Type) {
	def, ok := a.circuitTypes[e.Name]
	if !ok {
		a.bag.Errorf(source.CodeUnresolvedName, e.Sp, "unresolved circuit name %q", e.Name)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	memberType := func(name string) (types.Type, bool) {
		for _, m := range def.Members {
			if m.Name == name {
				return m.Type, true
			}
		}
		return types.Type{}, false
	}
	var ids []asg.ExprID
	var names []string
	seen := map[string]bool{}
	for _, f := range e.Fields {
		want, ok := memberType(f.Name)
		if !ok {
			a.bag.Errorf(source.CodeUnknownCircuitMember, f.Sp, "circuit %q has no member %q", e.Name, f.Name)
		}
		eid, got := a.buildExpr(f.Value, sc)
		if ok && !types.Equal(want, got) {
			a.bag.Errorf(source.CodeTypeMismatch, f.Sp, "member %q: expected %s, found %s", f.Name, want, got)
		}
		ids = append(ids, eid)
		names = append(names, f.Name)
		seen[f.Name] = true
	}
	for _, m := range def.Members {
		if !seen[m.Name] {
			a.bag.Errorf(source.CodeMissingCircuitMember, e.Sp, "circuit %q: missing member %q", e.Name, m.Name)
		}
	}
	t := types.Type{Kind: types.Circuit, CircuitDef: def}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprCircuitInit, Type: t, Span: e.Sp, Elems: ids, FieldNames: names})
	return id, t
}

func (a *Analyzer) buildMemberAccess(e *ast.MemberAccessExpr, sc *scope) (asg.ExprID, types.Type) {
	xid, xt := a.buildExpr(e.X, sc)
	var memberType types.Type
	if xt.Kind == types.Circuit && xt.CircuitDef != nil {
		found := false
		for _, m := range xt.CircuitDef.Members {
			if m.Name == e.Member {
				memberType = m.Type
				found = true
				break
			}
		}
		if !found {
			a.bag.Errorf(source.CodeUnknownCircuitMember, e.Sp, "circuit %q has no member %q", xt.CircuitDef.Name, e.Member)
		}
	} else {
		a.bag.Errorf(source.CodeUnknownCircuitMember, e.Sp, "cannot access member %q of non-circuit type %s", e.Member, xt)
	}
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprMember, Type: memberType, Span: e.Sp, X: xid, Member: e.Member})
	return id, memberType
}

func (a *Analyzer) buildCall(e *ast.CallExpr, sc *scope) (asg.ExprID, types.Type) {
	switch e.Kind {
	case ast.CallInstance:
		return a.buildInstanceCall(e, sc)
	case ast.CallStatic:
		return a.buildStaticCall(e, sc)
	default:
		return a.buildFreeCall(e, sc)
	}
}

func (a *Analyzer) buildFreeCall(e *ast.CallExpr, sc *scope) (asg.ExprID, types.Type) {
	calleeID, ok := a.topLevel[e.Name]
	if !ok {
		a.bag.Errorf(source.CodeUnresolvedName, e.Sp, "call to unresolved function %q", e.Name)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	def := a.prg.Definition(calleeID)
	argIDs := a.checkCallArgs(e, def, sc)
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprCall, Type: def.ReturnType, Span: e.Sp, Callee: calleeID, Elems: argIDs})
	return id, def.ReturnType
}

func (a *Analyzer) buildInstanceCall(e *ast.CallExpr, sc *scope) (asg.ExprID, types.Type) {
	recvID, recvType := a.buildExpr(e.Receiver, sc)
	if recvType.Kind != types.Circuit || recvType.CircuitDef == nil {
		a.bag.Errorf(source.CodeNotCallable, e.Sp, "cannot call method %q on non-circuit type %s", e.Name, recvType)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	calleeID, ok := a.findMemberFunction(recvType.CircuitDef.Name, e.Name)
	if !ok {
		a.bag.Errorf(source.CodeUnresolvedName, e.Sp, "circuit %q has no function %q", recvType.CircuitDef.Name, e.Name)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	def := a.prg.Definition(calleeID)
	argIDs := a.checkCallArgs(e, def, sc)
	id := a.prg.AddExpr(asg.Expression{
		Kind: asg.ExprCall, Type: def.ReturnType, Span: e.Sp,
		Callee: calleeID, Elems: argIDs, Receiver: recvID, HasRecv: true,
	})
	return id, def.ReturnType
}

func (a *Analyzer) buildStaticCall(e *ast.CallExpr, sc *scope) (asg.ExprID, types.Type) {
	calleeID, ok := a.findMemberFunction(e.TypeName, e.Name)
	if !ok {
		a.bag.Errorf(source.CodeUnresolvedName, e.Sp, "circuit %q has no function %q", e.TypeName, e.Name)
		return a.prg.AddExpr(asg.Expression{Kind: asg.ExprLiteral, Span: e.Sp}), types.Type{}
	}
	def := a.prg.Definition(calleeID)
	argIDs := a.checkCallArgs(e, def, sc)
	id := a.prg.AddExpr(asg.Expression{Kind: asg.ExprCall, Type: def.ReturnType, Span: e.Sp, Callee: calleeID, Elems: argIDs})
	return id, def.ReturnType
}

func (a *Analyzer) findMemberFunction(circuitName, fnName string) (asg.DefinitionID, bool) {
	circuitID, ok := a.topLevel[circuitName]
	if !ok {
		return 0, false
	}
	def := a.prg.Definition(circuitID)
	for _, fid := range def.Functions {
		if a.prg.Definition(fid).Name == fnName {
			return fid, true
		}
	}
	return 0, false
}

func (a *Analyzer) checkCallArgs(e *ast.CallExpr, def *asg.Definition, sc *scope) []asg.ExprID {
	params := def.Params
	if len(params) > 0 && a.prg.Definition(params[0]).SelfKind != "" {
		params = params[1:]
	}
	if len(e.Args) != len(params) {
		a.bag.Errorf(source.CodeArityMismatch, e.Sp, "call to %q: expected %d arguments, found %d", e.Name, len(params), len(e.Args))
	}
	var ids []asg.ExprID
	for i, arg := range e.Args {
		aid, at := a.buildExpr(arg, sc)
		if i < len(params) {
			want := a.prg.Definition(params[i]).Type
			if !types.Equal(want, at) {
				a.bag.Errorf(source.CodeTypeMismatch, arg.Span(), "argument %d: expected %s, found %s", i, want, at)
			}
			if a.prg.Definition(params[i]).IsConst && !a.prg.Expr(aid).IsConstExpr {
				a.bag.Errorf(source.CodeNonConstInConstCtx, arg.Span(), "argument %d must be a constant expression", i)
			}
		}
		ids = append(ids, aid)
	}
	return ids
}

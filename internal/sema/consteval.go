package sema

import (
	"math/big"

	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
)

// evalConst evaluates e as a constant expression: array sizes, for-loop
// bounds, const-parameter arguments, and global const initializers must all
// be computable without any circuit-input dependent value. Results are
// memoized in a.constMemo, keyed by AST node identity, so
// re-evaluating the same global const from multiple use sites costs O(1)
// after the first. No global mutable evaluation order is required: each
// call resolves whatever it needs on demand.
func (a *Analyzer) evalConst(e ast.Expr, sc *scope) (asg.Value, bool) {
	if v, ok := a.constMemo[e]; ok {
		return v, true
	}
	v, ok := a.evalConstUncached(e, sc)
	if ok {
		a.constMemo[e] = v
	}
	return v, ok
}

func (a *Analyzer) evalConstUncached(e ast.Expr, sc *scope) (asg.Value, bool) {
	switch e := e.(type) {
	case *ast.Literal:
		return literalValue(e)
	case *ast.Ident:
		return a.evalConstIdent(e, sc)
	case *ast.UnaryExpr:
		return a.evalConstUnary(e, sc)
	case *ast.BinaryExpr:
		return a.evalConstBinary(e, sc)
	case *ast.TernaryExpr:
		cond, ok := a.evalConst(e.Cond, sc)
		if !ok || cond.Kind != asg.ValBool {
			return asg.Value{}, false
		}
		if cond.Bool {
			return a.evalConst(e.Then, sc)
		}
		return a.evalConst(e.Else, sc)
	case *ast.CastExpr:
		return a.evalConstCast(e, sc)
	case *ast.ParenExpr:
		return a.evalConst(e.X, sc)
	case *ast.ArrayInlineExpr:
		elems := make([]asg.Value, len(e.Elems))
		for i, el := range e.Elems {
			v, ok := a.evalConst(el, sc)
			if !ok {
				return asg.Value{}, false
			}
			elems[i] = v
		}
		return asg.Value{Kind: asg.ValArray, Elems: elems}, true
	case *ast.ArrayRepeatExpr:
		elem, ok := a.evalConst(e.Elem, sc)
		if !ok {
			return asg.Value{}, false
		}
		n, ok := a.evalConst(e.Count, sc)
		if !ok || n.Kind != asg.ValInt {
			return asg.Value{}, false
		}
		count := int(n.Int.Int64())
		elems := make([]asg.Value, count)
		for i := range elems {
			elems[i] = elem
		}
		return asg.Value{Kind: asg.ValArray, Elems: elems}, true
	case *ast.TupleExpr:
		elems := make([]asg.Value, len(e.Elems))
		for i, el := range e.Elems {
			v, ok := a.evalConst(el, sc)
			if !ok {
				return asg.Value{}, false
			}
			elems[i] = v
		}
		return asg.Value{Kind: asg.ValTuple, Elems: elems}, true
	default:
		return asg.Value{}, false
	}
}

func literalValue(lit *ast.Literal) (asg.Value, bool) {
	switch lit.Kind {
	case ast.LitInteger, ast.LitUnsigned, ast.LitSigned, ast.LitField:
		n := new(big.Int)
		n.SetString(lit.Text, 10)
		return asg.Value{Kind: asg.ValInt, Int: n}, true
	case ast.LitBoolean:
		return asg.Value{Kind: asg.ValBool, Bool: lit.Bool}, true
	case ast.LitAddress:
		return asg.Value{Kind: asg.ValAddress, Addr: lit.Text}, true
	case ast.LitChar:
		return asg.Value{Kind: asg.ValChar, Char: lit.Rune}, true
	case ast.LitGroup:
		n := new(big.Int)
		n.SetString(lit.Text, 10)
		return asg.Value{Kind: asg.ValInt, Int: n}, true
	case ast.LitAffineGroup:
		return affineGroupValue(lit), true
	default:
		return asg.Value{}, false
	}
}

func affineGroupValue(lit *ast.Literal) asg.Value {
	v := asg.Value{Kind: asg.ValAffineGroup}
	if lit.X.Kind == "int" {
		v.GX = new(big.Int)
		v.GX.SetString(lit.X.Value, 10)
	}
	if lit.Y.Kind == "int" {
		v.GY = new(big.Int)
		v.GY.SetString(lit.Y.Value, 10)
	}
	return v
}

func (a *Analyzer) evalConstIdent(e *ast.Ident, sc *scope) (asg.Value, bool) {
	if sc != nil {
		if id, ok := sc.lookup(e.Name); ok {
			def := a.prg.Definition(id)
			if def.IsConst || def.Kind == asg.DefGlobalConst {
				return def.ConstValue, def.ConstValue.Kind != asg.ValInvalid
			}
			return asg.Value{}, false
		}
	}
	if id, ok := a.topLevel[e.Name]; ok {
		def := a.prg.Definition(id)
		if def.Kind == asg.DefGlobalConst {
			return def.ConstValue, def.ConstValue.Kind != asg.ValInvalid
		}
	}
	return asg.Value{}, false
}

func (a *Analyzer) evalConstUnary(e *ast.UnaryExpr, sc *scope) (asg.Value, bool) {
	v, ok := a.evalConst(e.Operand, sc)
	if !ok {
		return asg.Value{}, false
	}
	switch e.Op {
	case ast.UnaryNeg:
		if v.Kind != asg.ValInt {
			return asg.Value{}, false
		}
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Neg(v.Int)}, true
	case ast.UnaryNot:
		if v.Kind != asg.ValBool {
			return asg.Value{}, false
		}
		return asg.Value{Kind: asg.ValBool, Bool: !v.Bool}, true
	default:
		return asg.Value{}, false
	}
}

func (a *Analyzer) evalConstBinary(e *ast.BinaryExpr, sc *scope) (asg.Value, bool) {
	l, ok := a.evalConst(e.Left, sc)
	if !ok {
		return asg.Value{}, false
	}
	r, ok := a.evalConst(e.Right, sc)
	if !ok {
		return asg.Value{}, false
	}

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		if l.Kind != asg.ValBool || r.Kind != asg.ValBool {
			return asg.Value{}, false
		}
		if e.Op == ast.OpAnd {
			return asg.Value{Kind: asg.ValBool, Bool: l.Bool && r.Bool}, true
		}
		return asg.Value{Kind: asg.ValBool, Bool: l.Bool || r.Bool}, true
	case ast.OpEq, ast.OpNe:
		eq := asg.Equal(l, r)
		if e.Op == ast.OpNe {
			eq = !eq
		}
		return asg.Value{Kind: asg.ValBool, Bool: eq}, true
	}

	if l.Kind != asg.ValInt || r.Kind != asg.ValInt {
		return asg.Value{}, false
	}
	switch e.Op {
	case ast.OpAdd:
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Add(l.Int, r.Int)}, true
	case ast.OpSub:
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Sub(l.Int, r.Int)}, true
	case ast.OpMul:
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Mul(l.Int, r.Int)}, true
	case ast.OpDiv:
		if r.Int.Sign() == 0 {
			a.bag.Errorf(source.CodeDivideByZero, e.Sp, "division by zero in constant expression")
			return asg.Value{}, false
		}
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Quo(l.Int, r.Int)}, true
	case ast.OpMod:
		if r.Int.Sign() == 0 {
			a.bag.Errorf(source.CodeDivideByZero, e.Sp, "modulo by zero in constant expression")
			return asg.Value{}, false
		}
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Rem(l.Int, r.Int)}, true
	case ast.OpPow:
		if r.Int.Sign() < 0 {
			return asg.Value{}, false
		}
		return asg.Value{Kind: asg.ValInt, Int: new(big.Int).Exp(l.Int, r.Int, nil)}, true
	case ast.OpLt:
		return asg.Value{Kind: asg.ValBool, Bool: l.Int.Cmp(r.Int) < 0}, true
	case ast.OpLe:
		return asg.Value{Kind: asg.ValBool, Bool: l.Int.Cmp(r.Int) <= 0}, true
	case ast.OpGt:
		return asg.Value{Kind: asg.ValBool, Bool: l.Int.Cmp(r.Int) > 0}, true
	case ast.OpGe:
		return asg.Value{Kind: asg.ValBool, Bool: l.Int.Cmp(r.Int) >= 0}, true
	default:
		return asg.Value{}, false
	}
}

func (a *Analyzer) evalConstCast(e *ast.CastExpr, sc *scope) (asg.Value, bool) {
	v, ok := a.evalConst(e.X, sc)
	if !ok || v.Kind != asg.ValInt {
		return v, ok
	}
	st, ok := e.Type.(*ast.ScalarType)
	if !ok {
		return v, true
	}
	width, signed := scalarIntWidth(st.Name)
	if width == 0 {
		return v, true
	}
	min, max := scalarIntRange(width, signed)
	if v.Int.Cmp(min) < 0 || v.Int.Cmp(max) > 0 {
		a.bag.Errorf(source.CodeCastOutOfRange, e.Sp, "value %s does not fit in %s", v.Int.String(), st.Name)
		return asg.Value{}, false
	}
	return asg.Value{Kind: asg.ValInt, Int: v.Int}, true
}

// scalarIntRange returns the inclusive [min, max] representable by a scalar
// integer type of the given width and signedness.
func scalarIntRange(width int, signed bool) (min, max *big.Int) {
	bound := new(big.Int).Lsh(big.NewInt(1), uint(width))
	if !signed {
		return big.NewInt(0), new(big.Int).Sub(bound, big.NewInt(1))
	}
	half := new(big.Int).Rsh(bound, 1)
	return new(big.Int).Neg(half), new(big.Int).Sub(half, big.NewInt(1))
}

func scalarIntWidth(name string) (width int, signed bool) {
	switch name {
	case "u8":
		return 8, false
	case "u16":
		return 16, false
	case "u32":
		return 32, false
	case "u64":
		return 64, false
	case "u128":
		return 128, false
	case "i8":
		return 8, true
	case "i16":
		return 16, true
	case "i32":
		return 32, true
	case "i64":
		return 64, true
	case "i128":
		return 128, true
	}
	return 0, false
}

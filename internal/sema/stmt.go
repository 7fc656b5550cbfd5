package sema

import (
	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/types"
)

// buildBlock resolves every statement of b in a fresh child scope of sc and
// returns the arena ids together with the resolved type of every return
// statement reachable directly within it (used by the enclosing function to
// check its declared return type).
func (a *Analyzer) buildBlock(b *ast.Block, sc *scope) ([]asg.StmtID, []types.Type) {
	inner := newScope(sc)
	var ids []asg.StmtID
	var returns []types.Type
	for _, s := range b.Stmts {
		id, rets := a.buildStmt(s, inner)
		ids = append(ids, id)
		returns = append(returns, rets...)
	}
	return ids, returns
}

func (a *Analyzer) buildStmt(s ast.Stmt, sc *scope) (asg.StmtID, []types.Type) {
	switch s := s.(type) {
	case *ast.Block:
		inner, returns := a.buildBlock(s, sc)
		id := a.prg.AddStmt(asg.Statement{Kind: asg.StmtBlock, Span: s.Sp, Body: inner})
		return id, returns
	case *ast.LetStmt:
		return a.buildLet(s, sc), nil
	case *ast.ReturnStmt:
		return a.buildReturn(s, sc)
	case *ast.IfStmt:
		return a.buildIf(s, sc)
	case *ast.ForStmt:
		return a.buildFor(s, sc)
	case *ast.AssignStmt:
		return a.buildAssign(s, sc), nil
	case *ast.ExprStmt:
		xid, _ := a.buildExpr(s.X, sc)
		id := a.prg.AddStmt(asg.Statement{Kind: asg.StmtExpr, Span: s.Sp, X: xid})
		return id, nil
	case *ast.ConsoleStmt:
		return a.buildConsole(s, sc), nil
	default:
		return a.prg.AddStmt(asg.Statement{Span: s.Span()}), nil
	}
}

func (a *Analyzer) buildLet(s *ast.LetStmt, sc *scope) asg.StmtID {
	initID, initType := a.buildExpr(s.Init, sc)
	var declType types.Type
	if s.Type != nil {
		declType = a.resolveType(s.Type, sc)
		declType = inferArrayLen(declType, initType)
		if len(s.Target.Names) == 1 && !types.Equal(declType, initType) {
			a.bag.Errorf(source.CodeTypeMismatch, s.Sp, "let %q: declared type %s does not match initializer type %s", s.Target.Names[0], declType, initType)
		}
	} else {
		declType = initType
	}

	var targets []asg.DefinitionID
	if len(s.Target.Names) == 1 {
		id := a.prg.AddDefinition(asg.Definition{
			Kind: asg.DefLocal, Name: s.Target.Names[0], Type: declType,
			IsConst: s.IsConst, Span: s.Sp,
		})
		sc.define(s.Target.Names[0], id)
		targets = append(targets, id)
	} else {
		for i, name := range s.Target.Names {
			var t types.Type
			if initType.Kind == types.Tuple && i < len(initType.Elems) {
				t = initType.Elems[i]
			}
			id := a.prg.AddDefinition(asg.Definition{
				Kind: asg.DefLocal, Name: name, Type: t, IsConst: s.IsConst, Span: s.Sp,
			})
			sc.define(name, id)
			targets = append(targets, id)
		}
		if initType.Kind != types.Tuple || len(initType.Elems) != len(s.Target.Names) {
			a.bag.Errorf(source.CodeTypeMismatch, s.Sp, "destructuring let expects a %d-tuple, found %s", len(s.Target.Names), initType)
		}
	}

	return a.prg.AddStmt(asg.Statement{Kind: asg.StmtLet, Span: s.Sp, Target: targets, Init: initID})
}

func (a *Analyzer) buildReturn(s *ast.ReturnStmt, sc *scope) (asg.StmtID, []types.Type) {
	st := asg.Statement{Kind: asg.StmtReturn, Span: s.Sp}
	var rets []types.Type
	if s.Value != nil {
		vid, vt := a.buildExpr(s.Value, sc)
		st.Value = vid
		st.HasVal = true
		rets = append(rets, vt)
	} else {
		rets = append(rets, types.Type{})
	}
	return a.prg.AddStmt(st), rets
}

func (a *Analyzer) buildIf(s *ast.IfStmt, sc *scope) (asg.StmtID, []types.Type) {
	condID, condType := a.buildExpr(s.Cond, sc)
	a.expectType(condType, types.Scalar(types.Bool), s.Sp)
	thenIDs, thenRets := a.buildBlock(s.Then, sc)
	st := asg.Statement{Kind: asg.StmtIf, Span: s.Sp, Cond: condID, Then: thenIDs}
	var allRets []types.Type
	allRets = append(allRets, thenRets...)
	if s.Else != nil {
		st.HasElse = true
		if s.Else.ElseIf != nil {
			elseID, elseRets := a.buildIf(s.Else.ElseIf, sc)
			st.Else = []asg.StmtID{elseID}
			allRets = append(allRets, elseRets...)
		} else {
			elseIDs, elseRets := a.buildBlock(s.Else.Block, sc)
			st.Else = elseIDs
			allRets = append(allRets, elseRets...)
		}
	}
	return a.prg.AddStmt(st), allRets
}

func (a *Analyzer) buildFor(s *ast.ForStmt, sc *scope) (asg.StmtID, []types.Type) {
	startID, startType := a.buildExpr(s.Start, sc)
	endID, _ := a.buildExpr(s.End, sc)
	if !types.IsInteger(startType.Kind) {
		a.bag.Errorf(source.CodeTypeMismatch, s.Sp, "for-loop bounds must be integers, found %s", startType)
	}
	if _, ok := a.evalConst(s.Start, sc); !ok {
		a.bag.Errorf(source.CodeLoopBoundsNotConst, s.Sp, "for-loop start bound is not a constant expression")
	}
	if _, ok := a.evalConst(s.End, sc); !ok {
		a.bag.Errorf(source.CodeLoopBoundsNotConst, s.Sp, "for-loop end bound is not a constant expression")
	}

	inner := newScope(sc)
	loopVar := a.prg.AddDefinition(asg.Definition{Kind: asg.DefLocal, Name: s.Var, Type: startType, IsConst: true, Span: s.Sp})
	inner.define(s.Var, loopVar)
	bodyIDs, rets := a.buildBlockIn(s.Body, inner)

	st := asg.Statement{Kind: asg.StmtFor, Span: s.Sp, Loop: loopVar, Start: startID, End: endID, Body: bodyIDs}
	return a.prg.AddStmt(st), rets
}

// buildBlockIn resolves b's statements directly in sc (already a fresh
// child scope, as built by buildFor) rather than creating another nested
// scope, since the loop variable must be visible to the block's statements.
func (a *Analyzer) buildBlockIn(b *ast.Block, sc *scope) ([]asg.StmtID, []types.Type) {
	var ids []asg.StmtID
	var returns []types.Type
	for _, s := range b.Stmts {
		id, rets := a.buildStmt(s, sc)
		ids = append(ids, id)
		returns = append(returns, rets...)
	}
	return ids, returns
}

func (a *Analyzer) buildAssign(s *ast.AssignStmt, sc *scope) asg.StmtID {
	lhsID, lhsType := a.buildExpr(s.LHS, sc)
	rhsID, rhsType := a.buildExpr(s.RHS, sc)
	if !types.Equal(lhsType, rhsType) {
		a.bag.Errorf(source.CodeTypeMismatch, s.Sp, "assignment type mismatch: %s vs %s", lhsType, rhsType)
	}
	if id, isIdent := s.LHS.(*ast.Ident); isIdent {
		if defID, ok := sc.lookup(id.Name); ok && a.prg.Definition(defID).IsConst {
			a.bag.Errorf(source.CodeAssignToConst, s.Sp, "cannot assign to const binding %q", id.Name)
		}
	}
	return a.prg.AddStmt(asg.Statement{Kind: asg.StmtAssign, Span: s.Sp, LHS: lhsID, RHS: rhsID})
}

func (a *Analyzer) buildConsole(s *ast.ConsoleStmt, sc *scope) asg.StmtID {
	st := asg.Statement{Kind: asg.StmtConsole, Span: s.Sp, ConsoleKind: int(s.Kind), Format: s.Format}
	if s.Cond != nil {
		condID, condType := a.buildExpr(s.Cond, sc)
		a.expectType(condType, types.Scalar(types.Bool), s.Sp)
		st.Args = []asg.ExprID{condID}
	} else {
		for _, arg := range s.Args {
			aid, _ := a.buildExpr(arg, sc)
			st.Args = append(st.Args, aid)
		}
	}
	return a.prg.AddStmt(st)
}

// Package canon implements C4: a set of syntax-preserving-semantics
// rewrites over an ast.File that let internal/sema work with a smaller,
// more uniform AST. Canonicalization runs per-file for local rewrites, then
// once across a whole program for type-alias expansion (which needs every
// file's aliases visible to detect cross-file cycles).
package canon

import (
	"sort"

	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
)

// File rewrites a single file in place:
//   - compound assignment ("x += e") desugars to "x = x + e"
//   - inclusive for-loop ranges ("a..=b") normalize to exclusive ("a..b+1")
//   - circuit-init shorthand ("P { x }") expands to "P { x: x }"
//   - string literals expand to "[char; N]" array-inline expressions
//
// Self-type and Self-expression rewriting happens per-circuit in RewriteSelf
// and selfifyBlock, since both need the enclosing circuit's name, which File
// does not track once it descends into a function body.
func File(f *ast.File) {
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.Function:
			rewriteBlock(d.Body)
		case *ast.Circuit:
			RewriteSelf(d)
			for _, c := range d.Consts {
				c.Init = rewriteExpr(c.Init)
			}
			for _, fn := range d.Functions {
				rewriteBlock(fn.Body)
				selfifyBlock(fn.Body, d.Name)
			}
		case *ast.GlobalConst:
			d.Init = rewriteExpr(d.Init)
		}
	}
}

// RewriteSelf replaces every ast.SelfType within c's own member functions
// with an ast.NamedType naming c, so that later stages never special-case
// "Self".
func RewriteSelf(c *ast.Circuit) {
	self := &ast.NamedType{Name: c.Name}
	for _, fn := range c.Functions {
		for i, p := range fn.Params {
			fn.Params[i].Type = substituteSelfType(p.Type, c.Name, self)
		}
		fn.ReturnType = substituteSelfType(fn.ReturnType, c.Name, self)
	}
}

func substituteSelfType(t ast.Type, circuitName string, self *ast.NamedType) ast.Type {
	switch t := t.(type) {
	case nil:
		return nil
	case *ast.SelfType:
		return &ast.NamedType{Name: circuitName, Sp: t.Sp}
	case *ast.ArrayType:
		t.Elem = substituteSelfType(t.Elem, circuitName, self)
		return t
	case *ast.TupleType:
		for i, e := range t.Elems {
			t.Elems[i] = substituteSelfType(e, circuitName, self)
		}
		return t
	default:
		return t
	}
}

// selfifyBlock renames every CircuitInitExpr{Name: "Self"} within b to
// circuitName, the expression-position counterpart to substituteSelfType.
func selfifyBlock(b *ast.Block, circuitName string) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		selfifyStmt(s, circuitName)
	}
}

func selfifyStmt(s ast.Stmt, circuitName string) {
	switch s := s.(type) {
	case *ast.Block:
		selfifyBlock(s, circuitName)
	case *ast.LetStmt:
		selfifyExpr(s.Init, circuitName)
	case *ast.ReturnStmt:
		selfifyExpr(s.Value, circuitName)
	case *ast.IfStmt:
		selfifyExpr(s.Cond, circuitName)
		selfifyBlock(s.Then, circuitName)
		if s.Else != nil {
			if s.Else.ElseIf != nil {
				selfifyStmt(s.Else.ElseIf, circuitName)
			} else {
				selfifyBlock(s.Else.Block, circuitName)
			}
		}
	case *ast.ForStmt:
		selfifyExpr(s.Start, circuitName)
		selfifyExpr(s.End, circuitName)
		selfifyBlock(s.Body, circuitName)
	case *ast.AssignStmt:
		selfifyExpr(s.LHS, circuitName)
		selfifyExpr(s.RHS, circuitName)
	case *ast.ExprStmt:
		selfifyExpr(s.X, circuitName)
	case *ast.ConsoleStmt:
		selfifyExpr(s.Cond, circuitName)
		for _, a := range s.Args {
			selfifyExpr(a, circuitName)
		}
	}
}

func selfifyExpr(e ast.Expr, circuitName string) {
	switch e := e.(type) {
	case nil:
	case *ast.BinaryExpr:
		selfifyExpr(e.Left, circuitName)
		selfifyExpr(e.Right, circuitName)
	case *ast.UnaryExpr:
		selfifyExpr(e.Operand, circuitName)
	case *ast.TernaryExpr:
		selfifyExpr(e.Cond, circuitName)
		selfifyExpr(e.Then, circuitName)
		selfifyExpr(e.Else, circuitName)
	case *ast.CastExpr:
		selfifyExpr(e.X, circuitName)
	case *ast.ArrayInlineExpr:
		for _, el := range e.Elems {
			selfifyExpr(el, circuitName)
		}
	case *ast.ArrayRepeatExpr:
		selfifyExpr(e.Elem, circuitName)
		selfifyExpr(e.Count, circuitName)
	case *ast.IndexExpr:
		selfifyExpr(e.Array, circuitName)
		selfifyExpr(e.Index, circuitName)
	case *ast.RangeExpr:
		selfifyExpr(e.Array, circuitName)
		selfifyExpr(e.Lo, circuitName)
		selfifyExpr(e.Hi, circuitName)
	case *ast.TupleExpr:
		for _, el := range e.Elems {
			selfifyExpr(el, circuitName)
		}
	case *ast.TupleAccessExpr:
		selfifyExpr(e.X, circuitName)
	case *ast.CircuitInitExpr:
		if e.Name == "Self" {
			e.Name = circuitName
		}
		for _, f := range e.Fields {
			selfifyExpr(f.Value, circuitName)
		}
	case *ast.MemberAccessExpr:
		selfifyExpr(e.X, circuitName)
	case *ast.CallExpr:
		selfifyExpr(e.Receiver, circuitName)
		for _, a := range e.Args {
			selfifyExpr(a, circuitName)
		}
	case *ast.ParenExpr:
		selfifyExpr(e.X, circuitName)
	}
}

func rewriteBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for i, s := range b.Stmts {
		b.Stmts[i] = rewriteStmt(s)
	}
}

func rewriteStmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.Block:
		rewriteBlock(s)
		return s
	case *ast.LetStmt:
		s.Init = rewriteExpr(s.Init)
		return s
	case *ast.ReturnStmt:
		if s.Value != nil {
			s.Value = rewriteExpr(s.Value)
		}
		return s
	case *ast.IfStmt:
		s.Cond = rewriteExpr(s.Cond)
		rewriteBlock(s.Then)
		if s.Else != nil {
			if s.Else.ElseIf != nil {
				s.Else.ElseIf = rewriteStmt(s.Else.ElseIf).(*ast.IfStmt)
			} else {
				rewriteBlock(s.Else.Block)
			}
		}
		return s
	case *ast.ForStmt:
		s.Start = rewriteExpr(s.Start)
		s.End = rewriteExpr(s.End)
		if s.Inclusive {
			s.End = &ast.BinaryExpr{
				Op:    ast.OpAdd,
				Left:  s.End,
				Right: &ast.Literal{Kind: ast.LitInteger, Text: "1", Sp: s.End.Span()},
				Sp:    s.End.Span(),
			}
			s.Inclusive = false
		}
		rewriteBlock(s.Body)
		return s
	case *ast.AssignStmt:
		return rewriteAssign(s)
	case *ast.ExprStmt:
		s.X = rewriteExpr(s.X)
		return s
	case *ast.ConsoleStmt:
		if s.Cond != nil {
			s.Cond = rewriteExpr(s.Cond)
		}
		for i, a := range s.Args {
			s.Args[i] = rewriteExpr(a)
		}
		return s
	default:
		return s
	}
}

var compoundOpToBinary = map[ast.AssignOp]ast.BinaryOp{
	ast.AssignAdd: ast.OpAdd, ast.AssignSub: ast.OpSub,
	ast.AssignMul: ast.OpMul, ast.AssignDiv: ast.OpDiv, ast.AssignPow: ast.OpPow,
}

// rewriteAssign desugars "lhs op= rhs" into "lhs = lhs op rhs". The LHS
// expression is woven in twice; since Leo's LHS is always a simple place
// expression (identifier, index, or member access) with no side effects,
// sema's re-evaluation-free form remains sound.
func rewriteAssign(s *ast.AssignStmt) ast.Stmt {
	s.LHS = rewriteExpr(s.LHS)
	s.RHS = rewriteExpr(s.RHS)
	if binOp, ok := compoundOpToBinary[s.Op]; ok {
		s.RHS = &ast.BinaryExpr{Op: binOp, Left: s.LHS, Right: s.RHS, Sp: s.Sp}
		s.Op = ast.AssignSimple
	}
	return s
}

func rewriteExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Literal:
		if e.Kind == ast.LitString {
			return stringToArray(e)
		}
		return e
	case *ast.BinaryExpr:
		e.Left = rewriteExpr(e.Left)
		e.Right = rewriteExpr(e.Right)
		return e
	case *ast.UnaryExpr:
		e.Operand = rewriteExpr(e.Operand)
		return e
	case *ast.TernaryExpr:
		e.Cond = rewriteExpr(e.Cond)
		e.Then = rewriteExpr(e.Then)
		e.Else = rewriteExpr(e.Else)
		return e
	case *ast.CastExpr:
		e.X = rewriteExpr(e.X)
		return e
	case *ast.ArrayInlineExpr:
		for i, el := range e.Elems {
			e.Elems[i] = rewriteExpr(el)
		}
		return e
	case *ast.ArrayRepeatExpr:
		e.Elem = rewriteExpr(e.Elem)
		e.Count = rewriteExpr(e.Count)
		return e
	case *ast.IndexExpr:
		e.Array = rewriteExpr(e.Array)
		e.Index = rewriteExpr(e.Index)
		return e
	case *ast.RangeExpr:
		e.Array = rewriteExpr(e.Array)
		if e.Lo != nil {
			e.Lo = rewriteExpr(e.Lo)
		}
		if e.Hi != nil {
			e.Hi = rewriteExpr(e.Hi)
		}
		return e
	case *ast.TupleExpr:
		for i, el := range e.Elems {
			e.Elems[i] = rewriteExpr(el)
		}
		return e
	case *ast.TupleAccessExpr:
		e.X = rewriteExpr(e.X)
		return e
	case *ast.CircuitInitExpr:
		for i, f := range e.Fields {
			if f.Shorthand {
				e.Fields[i].Value = &ast.Ident{Name: f.Name, Sp: f.Sp}
				e.Fields[i].Shorthand = false
			} else {
				e.Fields[i].Value = rewriteExpr(f.Value)
			}
		}
		return e
	case *ast.MemberAccessExpr:
		e.X = rewriteExpr(e.X)
		return e
	case *ast.CallExpr:
		if e.Receiver != nil {
			e.Receiver = rewriteExpr(e.Receiver)
		}
		for i, a := range e.Args {
			e.Args[i] = rewriteExpr(a)
		}
		return e
	case *ast.ParenExpr:
		return rewriteExpr(e.X)
	default:
		return e
	}
}

// stringToArray expands a string literal into an inline array expression of
// char literals: "string" is sugar over "[char; N]".
func stringToArray(lit *ast.Literal) ast.Expr {
	elems := make([]ast.Expr, len(lit.Runes))
	for i, r := range lit.Runes {
		elems[i] = &ast.Literal{Kind: ast.LitChar, Rune: r, Sp: lit.Sp}
	}
	return &ast.ArrayInlineExpr{Elems: elems, Spreads: make([]bool, len(elems)), Sp: lit.Sp}
}

// ============================================================
// Type-alias expansion
// ============================================================

// ExpandAliases resolves every internal/ast.NamedType that names a type
// alias (as opposed to a circuit) in every file of the program to its
// fully-expanded underlying ast.Type, detecting cycles via Tarjan's SCC
// algorithm so a chain like "type A = B; type B = A;" is reported once
// instead of recursing forever.
func ExpandAliases(files []*ast.File, bag *source.Bag) {
	aliases := map[string]*ast.TypeAlias{}
	circuits := map[string]bool{}
	var order []string
	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.TypeAlias:
				if _, dup := aliases[d.Name]; !dup {
					order = append(order, d.Name)
				}
				aliases[d.Name] = d
			case *ast.Circuit:
				circuits[d.Name] = true
			}
		}
	}
	sort.Strings(order)

	g := &tarjan{aliases: aliases, index: map[string]int{}, onStack: map[string]bool{}}
	for _, name := range order {
		if _, seen := g.index[name]; !seen {
			g.strongconnect(name)
		}
	}
	for _, scc := range g.cycles {
		bag.Errorf(source.CodeTypeAliasCycle, aliases[scc[0]].Sp,
			"type alias cycle: %v", scc)
	}
	cyclic := map[string]bool{}
	for _, scc := range g.cycles {
		for _, n := range scc {
			cyclic[n] = true
		}
	}

	expanded := map[string]ast.Type{}
	var expand func(t ast.Type, seen map[string]bool) ast.Type
	expand = func(t ast.Type, seen map[string]bool) ast.Type {
		switch t := t.(type) {
		case nil:
			return nil
		case *ast.NamedType:
			if circuits[t.Name] {
				return t
			}
			alias, isAlias := aliases[t.Name]
			if !isAlias {
				return t // unresolved name; sema reports it
			}
			if cyclic[t.Name] {
				return t // already reported; avoid infinite expansion
			}
			if done, ok := expanded[t.Name]; ok {
				return done
			}
			if seen[t.Name] {
				return t // defensive; Tarjan already caught real cycles
			}
			seen[t.Name] = true
			result := expand(alias.Type, seen)
			expanded[t.Name] = result
			return result
		case *ast.ArrayType:
			t.Elem = expand(t.Elem, seen)
			return t
		case *ast.TupleType:
			for i, e := range t.Elems {
				t.Elems[i] = expand(e, seen)
			}
			return t
		default:
			return t
		}
	}

	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.Function:
				for i, p := range d.Params {
					d.Params[i].Type = expand(p.Type, map[string]bool{})
				}
				d.ReturnType = expand(d.ReturnType, map[string]bool{})
				walkBlockTypes(d.Body, func(t ast.Type) ast.Type { return expand(t, map[string]bool{}) })
			case *ast.Circuit:
				for i, m := range d.Members {
					d.Members[i].Type = expand(m.Type, map[string]bool{})
				}
				for i, c := range d.Consts {
					d.Consts[i].Type = expand(c.Type, map[string]bool{})
				}
				for _, fn := range d.Functions {
					for i, p := range fn.Params {
						fn.Params[i].Type = expand(p.Type, map[string]bool{})
					}
					fn.ReturnType = expand(fn.ReturnType, map[string]bool{})
					walkBlockTypes(fn.Body, func(t ast.Type) ast.Type { return expand(t, map[string]bool{}) })
				}
			case *ast.GlobalConst:
				d.Type = expand(d.Type, map[string]bool{})
			}
		}
	}
}

// walkBlockTypes visits every type annotation reachable from a block (only
// LetStmt and CastExpr carry one) and replaces it via f.
func walkBlockTypes(b *ast.Block, f func(ast.Type) ast.Type) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkStmtTypes(s, f)
	}
}

func walkStmtTypes(s ast.Stmt, f func(ast.Type) ast.Type) {
	switch s := s.(type) {
	case *ast.Block:
		walkBlockTypes(s, f)
	case *ast.LetStmt:
		if s.Type != nil {
			s.Type = f(s.Type)
		}
		walkExprTypes(s.Init, f)
	case *ast.ReturnStmt:
		walkExprTypes(s.Value, f)
	case *ast.IfStmt:
		walkExprTypes(s.Cond, f)
		walkBlockTypes(s.Then, f)
		if s.Else != nil {
			if s.Else.ElseIf != nil {
				walkStmtTypes(s.Else.ElseIf, f)
			} else {
				walkBlockTypes(s.Else.Block, f)
			}
		}
	case *ast.ForStmt:
		walkExprTypes(s.Start, f)
		walkExprTypes(s.End, f)
		walkBlockTypes(s.Body, f)
	case *ast.AssignStmt:
		walkExprTypes(s.LHS, f)
		walkExprTypes(s.RHS, f)
	case *ast.ExprStmt:
		walkExprTypes(s.X, f)
	case *ast.ConsoleStmt:
		walkExprTypes(s.Cond, f)
		for _, a := range s.Args {
			walkExprTypes(a, f)
		}
	}
}

func walkExprTypes(e ast.Expr, f func(ast.Type) ast.Type) {
	switch e := e.(type) {
	case nil:
		return
	case *ast.CastExpr:
		e.Type = f(e.Type)
		walkExprTypes(e.X, f)
	case *ast.BinaryExpr:
		walkExprTypes(e.Left, f)
		walkExprTypes(e.Right, f)
	case *ast.UnaryExpr:
		walkExprTypes(e.Operand, f)
	case *ast.TernaryExpr:
		walkExprTypes(e.Cond, f)
		walkExprTypes(e.Then, f)
		walkExprTypes(e.Else, f)
	case *ast.ArrayInlineExpr:
		for _, el := range e.Elems {
			walkExprTypes(el, f)
		}
	case *ast.ArrayRepeatExpr:
		walkExprTypes(e.Elem, f)
		walkExprTypes(e.Count, f)
	case *ast.IndexExpr:
		walkExprTypes(e.Array, f)
		walkExprTypes(e.Index, f)
	case *ast.RangeExpr:
		walkExprTypes(e.Array, f)
		walkExprTypes(e.Lo, f)
		walkExprTypes(e.Hi, f)
	case *ast.TupleExpr:
		for _, el := range e.Elems {
			walkExprTypes(el, f)
		}
	case *ast.TupleAccessExpr:
		walkExprTypes(e.X, f)
	case *ast.CircuitInitExpr:
		for _, field := range e.Fields {
			walkExprTypes(field.Value, f)
		}
	case *ast.MemberAccessExpr:
		walkExprTypes(e.X, f)
	case *ast.CallExpr:
		walkExprTypes(e.Receiver, f)
		for _, a := range e.Args {
			walkExprTypes(a, f)
		}
	case *ast.ParenExpr:
		walkExprTypes(e.X, f)
	}
}

// tarjan finds strongly connected components among type-alias reference
// edges, so a cycle is reported exactly once regardless of its length.
type tarjan struct {
	aliases map[string]*ast.TypeAlias
	index   map[string]int
	low     map[string]int
	counter int
	stack   []string
	onStack map[string]bool
	cycles  [][]string
}

func (g *tarjan) referencedAliases(t ast.Type) []string {
	switch t := t.(type) {
	case *ast.NamedType:
		if _, ok := g.aliases[t.Name]; ok {
			return []string{t.Name}
		}
		return nil
	case *ast.ArrayType:
		return g.referencedAliases(t.Elem)
	case *ast.TupleType:
		var out []string
		for _, e := range t.Elems {
			out = append(out, g.referencedAliases(e)...)
		}
		return out
	default:
		return nil
	}
}

func (g *tarjan) strongconnect(name string) {
	if g.low == nil {
		g.low = map[string]int{}
	}
	g.index[name] = g.counter
	g.low[name] = g.counter
	g.counter++
	g.stack = append(g.stack, name)
	g.onStack[name] = true

	for _, dep := range g.referencedAliases(g.aliases[name].Type) {
		if _, seen := g.index[dep]; !seen {
			g.strongconnect(dep)
			if g.low[dep] < g.low[name] {
				g.low[name] = g.low[dep]
			}
		} else if g.onStack[dep] {
			if g.index[dep] < g.low[name] {
				g.low[name] = g.index[dep]
			}
		}
	}

	if g.low[name] == g.index[name] {
		var scc []string
		for {
			n := len(g.stack) - 1
			top := g.stack[n]
			g.stack = g.stack[:n]
			g.onStack[top] = false
			scc = append(scc, top)
			if top == name {
				break
			}
		}
		if len(scc) > 1 || (len(scc) == 1 && selfReferences(g, scc[0])) {
			g.cycles = append(g.cycles, scc)
		}
	}
}

func selfReferences(g *tarjan, name string) bool {
	for _, dep := range g.referencedAliases(g.aliases[name].Type) {
		if dep == name {
			return true
		}
	}
	return false
}

// Package parser implements a recursive-descent, precedence-climbing parser
// over the token stream produced by internal/lexer. On a
// syntax error the parser reports a diagnostic, skips forward to the next
// synchronization point, and keeps going so that one error never suppresses
// the rest of the file's diagnostics; ast.File.Incomplete is set whenever
// recovery occurred.
package parser

import (
	"strconv"

	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/token"
)

// Parser consumes a finished token slice (as produced by lexer.Tokenize) and
// produces an ast.File.
type Parser struct {
	toks       []token.Token
	pos        int
	file       source.FileID
	bag        *source.Bag
	incomplete bool
}

// New returns a Parser over toks, which must end with a token.EOF sentinel.
func New(file source.FileID, toks []token.Token, bag *source.Bag) *Parser {
	return &Parser{toks: toks, file: file, bag: bag}
}

// ParseFile parses a complete compilation unit.
func ParseFile(file source.FileID, path string, toks []token.Token, bag *source.Bag) *ast.File {
	p := New(file, toks, bag)
	return p.parseFile(path)
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(kind token.Kind) bool { return p.cur().Kind == kind }

func (p *Parser) atKeyword(kw string) bool { return p.cur().IsKeyword(kw) }
func (p *Parser) atSymbol(sym string) bool { return p.cur().IsSymbol(sym) }

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) span(start source.Span) source.Span {
	end := p.toks[p.pos-1].Span
	if p.pos == 0 {
		end = start
	}
	return source.Span{File: p.file, Start: start.Start, End: end.End}
}

func (p *Parser) errorf(code, format string, args ...interface{}) {
	p.bag.Errorf(code, p.cur().Span, format, args...)
	p.incomplete = true
}

func (p *Parser) expectSymbol(sym string) (source.Span, bool) {
	if p.atSymbol(sym) {
		return p.advance().Span, true
	}
	p.errorf(source.CodeUnexpectedToken, "expected %q, found %s", sym, p.cur())
	return p.cur().Span, false
}

func (p *Parser) expectKeyword(kw string) (source.Span, bool) {
	if p.atKeyword(kw) {
		return p.advance().Span, true
	}
	p.errorf(source.CodeUnexpectedToken, "expected %q, found %s", kw, p.cur())
	return p.cur().Span, false
}

func (p *Parser) expectIdent() (string, source.Span, bool) {
	if p.at(token.Identifier) {
		tok := p.advance()
		return tok.Text, tok.Span, true
	}
	p.errorf(source.CodeUnexpectedToken, "expected identifier, found %s", p.cur())
	return "", p.cur().Span, false
}

// syncToDecl skips tokens until one that can start a top-level declaration,
// or EOF. Used for panic-mode recovery between declarations.
func (p *Parser) syncToDecl() {
	for !p.at(token.EOF) {
		if p.atKeyword("function") || p.atKeyword("circuit") || p.atKeyword("const") ||
			p.atKeyword("import") || p.atKeyword("type") {
			return
		}
		p.advance()
	}
}

// syncStmt skips tokens until ';', '}', or EOF, for recovery within a
// statement list.
func (p *Parser) syncStmt() {
	for !p.at(token.EOF) && !p.atSymbol("}") {
		if p.atSymbol(";") {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseFile(path string) *ast.File {
	f := &ast.File{Path: path}
	start := p.cur().Span
	for !p.at(token.EOF) {
		d := p.parseDecl()
		if d == nil {
			p.incomplete = true
			p.syncToDecl()
			continue
		}
		f.Decls = append(f.Decls, d)
	}
	f.Sp = source.Span{File: p.file, Start: start.Start, End: p.cur().Span.End}
	f.Incomplete = p.incomplete
	return f
}

func (p *Parser) parseDecl() ast.Decl {
	switch {
	case p.atKeyword("import"):
		return p.parseImport()
	case p.atKeyword("function"):
		return p.parseFunction(nil)
	case p.atKeyword("circuit"):
		return p.parseCircuit()
	case p.atKeyword("const"):
		return p.parseGlobalConst()
	case p.atKeyword("type"):
		return p.parseTypeAlias()
	case p.atSymbol("@"):
		annots := p.parseAnnotations()
		if !p.atKeyword("function") {
			p.errorf(source.CodeExpectedDeclaration, "expected function declaration after annotations, found %s", p.cur())
			return nil
		}
		return p.parseFunction(annots)
	default:
		p.errorf(source.CodeExpectedDeclaration, "expected a declaration, found %s", p.cur())
		return nil
	}
}

// ============================================================
// Import
// ============================================================

func (p *Parser) parseImport() ast.Decl {
	start := p.advance().Span // 'import'
	path := p.parseImportPath()
	p.expectSymbol(";")
	return &ast.Import{Path: path, Sp: p.span(start)}
}

func (p *Parser) parseImportPath() ast.ImportPath {
	start := p.cur().Span
	var segs []string
	for {
		name, _, ok := p.expectIdent()
		if !ok {
			break
		}
		segs = append(segs, name)
		if !p.atSymbol(".") {
			break
		}
		p.advance()
		if p.atSymbol("*") {
			p.advance()
			return ast.ImportPath{Segments: segs, Wildcard: true, Sp: p.span(start)}
		}
		if p.atSymbol("(") {
			items := p.parseImportItems()
			return ast.ImportPath{Segments: segs, Items: items, Sp: p.span(start)}
		}
	}
	return ast.ImportPath{Segments: segs, Sp: p.span(start)}
}

func (p *Parser) parseImportItems() []ast.ImportItem {
	p.advance() // '('
	var items []ast.ImportItem
	for !p.atSymbol(")") && !p.at(token.EOF) {
		itemStart := p.cur().Span
		name, _, ok := p.expectIdent()
		if !ok {
			break
		}
		alias := ""
		if p.atKeyword("as") {
			p.advance()
			alias, _, _ = p.expectIdent()
		}
		items = append(items, ast.ImportItem{Name: name, Alias: alias, Sp: p.span(itemStart)})
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol(")")
	return items
}

// ============================================================
// Annotations
// ============================================================

func (p *Parser) parseAnnotations() []ast.Annotation {
	var annots []ast.Annotation
	for p.atSymbol("@") {
		start := p.advance().Span
		name, _, _ := p.expectIdent()
		var args []ast.AnnotationArg
		if p.atSymbol("(") {
			p.advance()
			for !p.atSymbol(")") && !p.at(token.EOF) {
				argStart := p.cur().Span
				var arg ast.AnnotationArg
				if p.at(token.Identifier) {
					save := p.pos
					id, _, _ := p.expectIdent()
					if p.atSymbol("=") {
						p.advance()
						arg = ast.AnnotationArg{Name: id, Value: p.parseExpr(), Sp: p.span(argStart)}
					} else {
						p.pos = save
						arg = ast.AnnotationArg{Value: p.parseExpr(), Sp: p.span(argStart)}
					}
				} else {
					arg = ast.AnnotationArg{Value: p.parseExpr(), Sp: p.span(argStart)}
				}
				args = append(args, arg)
				if p.atSymbol(",") {
					p.advance()
					continue
				}
				break
			}
			p.expectSymbol(")")
		}
		annots = append(annots, ast.Annotation{Name: name, Args: args, Sp: p.span(start)})
	}
	return annots
}

// ============================================================
// Function
// ============================================================

func (p *Parser) parseFunction(annots []ast.Annotation) ast.Decl {
	start := p.advance().Span // 'function'
	name, _, _ := p.expectIdent()
	p.expectSymbol("(")
	params := p.parseParams()
	p.expectSymbol(")")
	var ret ast.Type
	if p.atSymbol("->") {
		p.advance()
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.Function{Name: name, Annotations: annots, Params: params, ReturnType: ret, Body: body, Sp: p.span(start)}
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	for !p.atSymbol(")") && !p.at(token.EOF) {
		params = append(params, p.parseParam())
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	return params
}

func (p *Parser) parseParam() ast.Param {
	start := p.cur().Span

	selfKind := ""
	isConst := false
	if p.atKeyword("const") {
		save := p.pos
		p.advance()
		if p.atKeyword("self") {
			p.advance()
			return ast.Param{SelfKind: "const self", Sp: p.span(start)}
		}
		p.pos = save
	}
	if p.atSymbol("&") {
		p.advance()
		p.expectKeyword("self")
		return ast.Param{SelfKind: "&self", Sp: p.span(start)}
	}
	if p.atKeyword("self") {
		p.advance()
		return ast.Param{SelfKind: "self", Sp: p.span(start)}
	}
	if p.atKeyword("const") {
		p.advance()
		isConst = true
	}
	name, _, _ := p.expectIdent()
	p.expectSymbol(":")
	typ := p.parseType()
	return ast.Param{Name: name, Type: typ, IsConst: isConst, Sp: p.span(start)}
}

// ============================================================
// Circuit
// ============================================================

func (p *Parser) parseCircuit() ast.Decl {
	start := p.advance().Span // 'circuit'
	name, _, _ := p.expectIdent()
	p.expectSymbol("{")
	c := &ast.Circuit{Name: name}
	for !p.atSymbol("}") && !p.at(token.EOF) {
		switch {
		case p.atKeyword("const"):
			c.Consts = append(c.Consts, p.parseCircuitConst())
		case p.atKeyword("function") || p.atSymbol("@"):
			var annots []ast.Annotation
			if p.atSymbol("@") {
				annots = p.parseAnnotations()
			}
			if fn, ok := p.parseFunction(annots).(*ast.Function); ok {
				c.Functions = append(c.Functions, fn)
			}
		case p.at(token.Identifier):
			c.Members = append(c.Members, p.parseCircuitMember())
		default:
			p.errorf(source.CodeUnexpectedToken, "expected circuit member, found %s", p.cur())
			p.advance()
		}
	}
	p.expectSymbol("}")
	c.Sp = p.span(start)
	return c
}

func (p *Parser) parseCircuitConst() ast.CircuitConst {
	start := p.advance().Span // 'const'
	name, _, _ := p.expectIdent()
	var typ ast.Type
	if p.atSymbol(":") {
		p.advance()
		typ = p.parseType()
	}
	p.expectSymbol("=")
	init := p.parseExpr()
	p.expectSymbol(";")
	return ast.CircuitConst{Name: name, Type: typ, Init: init, Sp: p.span(start)}
}

// parseCircuitMember accepts a trailing "," (deprecated) or ";" between
// members; either, or neither before the closing brace, is fine.
func (p *Parser) parseCircuitMember() ast.CircuitMember {
	start := p.cur().Span
	name, _, _ := p.expectIdent()
	p.expectSymbol(":")
	typ := p.parseType()
	if p.atSymbol(",") || p.atSymbol(";") {
		p.advance()
	}
	return ast.CircuitMember{Name: name, Type: typ, Sp: p.span(start)}
}

// ============================================================
// Global const / type alias
// ============================================================

func (p *Parser) parseGlobalConst() ast.Decl {
	start := p.advance().Span // 'const'
	name, _, _ := p.expectIdent()
	var typ ast.Type
	if p.atSymbol(":") {
		p.advance()
		typ = p.parseType()
	}
	p.expectSymbol("=")
	init := p.parseExpr()
	p.expectSymbol(";")
	return &ast.GlobalConst{Name: name, Type: typ, Init: init, Sp: p.span(start)}
}

func (p *Parser) parseTypeAlias() ast.Decl {
	start := p.advance().Span // 'type'
	name, _, _ := p.expectIdent()
	p.expectSymbol("=")
	typ := p.parseType()
	p.expectSymbol(";")
	return &ast.TypeAlias{Name: name, Type: typ, Sp: p.span(start)}
}

// ============================================================
// Types
// ============================================================

func (p *Parser) parseType() ast.Type {
	start := p.cur().Span
	switch {
	case p.atKeyword("Self"):
		p.advance()
		return &ast.SelfType{Sp: p.span(start)}
	case p.atSymbol("["):
		return p.parseArrayType()
	case p.atSymbol("("):
		return p.parseTupleType()
	case p.at(token.Keyword) && token.IsPrimitiveType(p.cur().Text):
		name := p.advance().Text
		return &ast.ScalarType{Name: name, Sp: p.span(start)}
	case p.at(token.Identifier):
		name, _, _ := p.expectIdent()
		return &ast.NamedType{Name: name, Sp: p.span(start)}
	default:
		p.errorf(source.CodeUnexpectedToken, "expected a type, found %s", p.cur())
		p.advance()
		return &ast.ScalarType{Name: "bool", Sp: p.span(start)}
	}
}

func (p *Parser) parseArrayType() ast.Type {
	start := p.advance().Span // '['
	elem := p.parseType()
	p.expectSymbol(";")
	dims := p.parseArrayDims()
	p.expectSymbol("]")
	return &ast.ArrayType{Elem: elem, Dims: dims, Sp: p.span(start)}
}

func (p *Parser) parseArrayDims() []ast.ArrayDim {
	if p.atSymbol("(") {
		p.advance()
		var dims []ast.ArrayDim
		for !p.atSymbol(")") && !p.at(token.EOF) {
			dims = append(dims, p.parseArrayDim())
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectSymbol(")")
		return dims
	}
	return []ast.ArrayDim{p.parseArrayDim()}
}

func (p *Parser) parseArrayDim() ast.ArrayDim {
	start := p.cur().Span
	if p.at(token.Identifier) && p.cur().Text == "_" {
		p.advance()
		return ast.ArrayDim{Placeholder: true, Sp: p.span(start)}
	}
	if p.at(token.IntegerLiteral) {
		tok := p.advance()
		n, _ := strconv.Atoi(tok.Text)
		return ast.ArrayDim{Known: true, Value: n, Sp: p.span(start)}
	}
	// A const identifier or other const expression used as a dimension;
	// internal/sema resolves it via const eval.
	e := p.parseExpr()
	return ast.ArrayDim{Expr: e, Sp: p.span(start)}
}

func (p *Parser) parseTupleType() ast.Type {
	start := p.advance().Span // '('
	var elems []ast.Type
	for !p.atSymbol(")") && !p.at(token.EOF) {
		elems = append(elems, p.parseType())
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol(")")
	return &ast.TupleType{Elems: elems, Sp: p.span(start)}
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseBlock() *ast.Block {
	start, _ := p.expectSymbol("{")
	b := &ast.Block{}
	for !p.atSymbol("}") && !p.at(token.EOF) {
		s := p.parseStmt()
		if s == nil {
			p.syncStmt()
			continue
		}
		b.Stmts = append(b.Stmts, s)
	}
	p.expectSymbol("}")
	b.Sp = p.span(start)
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.atSymbol("{"):
		return p.parseBlock()
	case p.atKeyword("let") || p.atKeyword("const"):
		return p.parseLetStmt()
	case p.atKeyword("return"):
		return p.parseReturnStmt()
	case p.atKeyword("if"):
		return p.parseIfStmt()
	case p.atKeyword("for"):
		return p.parseForStmt()
	case p.atKeyword("console"):
		return p.parseConsoleStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.cur().Span
	isConst := p.atKeyword("const")
	p.advance() // 'let' or 'const'
	target := p.parseBindingTarget()
	var typ ast.Type
	if p.atSymbol(":") {
		p.advance()
		typ = p.parseType()
	}
	p.expectSymbol("=")
	init := p.parseExpr()
	p.expectSymbol(";")
	return &ast.LetStmt{IsConst: isConst, Target: target, Type: typ, Init: init, Sp: p.span(start)}
}

func (p *Parser) parseBindingTarget() ast.BindingTarget {
	start := p.cur().Span
	if p.atSymbol("(") {
		p.advance()
		var names []string
		for !p.atSymbol(")") && !p.at(token.EOF) {
			name, _, _ := p.expectIdent()
			names = append(names, name)
			if p.atSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		p.expectSymbol(")")
		return ast.BindingTarget{Names: names, Sp: p.span(start)}
	}
	name, _, _ := p.expectIdent()
	return ast.BindingTarget{Names: []string{name}, Sp: p.span(start)}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance().Span // 'return'
	var val ast.Expr
	if !p.atSymbol(";") {
		val = p.parseExpr()
	}
	p.expectSymbol(";")
	return &ast.ReturnStmt{Value: val, Sp: p.span(start)}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance().Span // 'if'
	p.expectSymbol("(")
	cond := p.parseExpr()
	p.expectSymbol(")")
	then := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	if p.atKeyword("else") {
		p.advance()
		clause := &ast.ElseClause{}
		if p.atKeyword("if") {
			clause.ElseIf = p.parseIfStmt()
		} else {
			clause.Block = p.parseBlock()
		}
		stmt.Else = clause
	}
	stmt.Sp = p.span(start)
	return stmt
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance().Span // 'for'
	name, _, _ := p.expectIdent()
	p.expectKeyword("in")
	lo := p.parseExpr()
	inclusive := false
	if p.atSymbol("..=") {
		inclusive = true
		p.advance()
	} else {
		p.expectSymbol("..")
	}
	hi := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForStmt{Var: name, Start: lo, End: hi, Inclusive: inclusive, Body: body, Sp: p.span(start)}
}

var compoundAssignOps = map[string]ast.AssignOp{
	"=": ast.AssignSimple, "+=": ast.AssignAdd, "-=": ast.AssignSub,
	"*=": ast.AssignMul, "/=": ast.AssignDiv, "**=": ast.AssignPow,
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur().Span
	x := p.parseExpr()
	for sym, op := range compoundAssignOps {
		if p.atSymbol(sym) {
			p.advance()
			rhs := p.parseExpr()
			p.expectSymbol(";")
			return &ast.AssignStmt{Op: op, LHS: x, RHS: rhs, Sp: p.span(start)}
		}
	}
	p.expectSymbol(";")
	return &ast.ExprStmt{X: x, Sp: p.span(start)}
}

var consoleKinds = map[string]ast.ConsoleKind{
	"assert": ast.ConsoleAssert, "debug": ast.ConsoleDebug,
	"error": ast.ConsoleError, "log": ast.ConsoleLog,
}

func (p *Parser) parseConsoleStmt() ast.Stmt {
	start := p.advance().Span // 'console'
	p.expectSymbol(".")
	name, _, _ := p.expectIdent()
	kind, known := consoleKinds[name]
	if !known {
		p.errorf(source.CodeUnexpectedToken, "unknown console operation %q", name)
		kind = ast.ConsoleLog
	}
	p.expectSymbol("(")
	stmt := &ast.ConsoleStmt{Kind: kind}
	if kind == ast.ConsoleAssert {
		stmt.Cond = p.parseExpr()
	} else {
		if p.at(token.StringLiteral) {
			tok := p.advance()
			stmt.Format = string(tok.Runes)
		} else {
			p.errorf(source.CodeUnexpectedToken, "expected format string, found %s", p.cur())
		}
		for p.atSymbol(",") {
			p.advance()
			stmt.Args = append(stmt.Args, p.parseExpr())
		}
	}
	p.expectSymbol(")")
	p.expectSymbol(";")
	stmt.Sp = p.span(start)
	return stmt
}

// ============================================================
// Expressions: precedence climbing, 12 levels
// ============================================================

func (p *Parser) parseExpr() ast.Expr { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expr {
	start := p.cur().Span
	cond := p.parseLogicalOr()
	if p.atSymbol("?") {
		p.advance()
		then := p.parseExpr()
		p.expectSymbol(":")
		els := p.parseExpr()
		return &ast.TernaryExpr{Cond: cond, Then: then, Else: els, Sp: p.span(start)}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	start := p.cur().Span
	x := p.parseLogicalAnd()
	for p.atSymbol("||") {
		p.advance()
		rhs := p.parseLogicalAnd()
		x = &ast.BinaryExpr{Op: ast.OpOr, Left: x, Right: rhs, Sp: p.span(start)}
	}
	return x
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	start := p.cur().Span
	x := p.parseEquality()
	for p.atSymbol("&&") {
		p.advance()
		rhs := p.parseEquality()
		x = &ast.BinaryExpr{Op: ast.OpAnd, Left: x, Right: rhs, Sp: p.span(start)}
	}
	return x
}

func (p *Parser) parseEquality() ast.Expr {
	start := p.cur().Span
	x := p.parseComparison()
	for p.atSymbol("==") || p.atSymbol("!=") {
		op := ast.OpEq
		if p.atSymbol("!=") {
			op = ast.OpNe
		}
		p.advance()
		rhs := p.parseComparison()
		x = &ast.BinaryExpr{Op: op, Left: x, Right: rhs, Sp: p.span(start)}
	}
	return x
}

// parseComparison handles the 4 relational operators as non-chaining: at
// most one is consumed, so "a < b < c" is a syntax error rather than a
// chained comparison.
func (p *Parser) parseComparison() ast.Expr {
	start := p.cur().Span
	x := p.parseAdditive()
	ops := map[string]ast.BinaryOp{"<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe}
	for sym, op := range ops {
		if p.atSymbol(sym) {
			p.advance()
			rhs := p.parseAdditive()
			x = &ast.BinaryExpr{Op: op, Left: x, Right: rhs, Sp: p.span(start)}
			if p.atSymbol("<") || p.atSymbol("<=") || p.atSymbol(">") || p.atSymbol(">=") {
				p.errorf(source.CodeChainedComparison, "comparison operators cannot be chained")
			}
			return x
		}
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expr {
	start := p.cur().Span
	x := p.parseMultiplicative()
	for p.atSymbol("+") || p.atSymbol("-") {
		op := ast.OpAdd
		if p.atSymbol("-") {
			op = ast.OpSub
		}
		p.advance()
		rhs := p.parseMultiplicative()
		x = &ast.BinaryExpr{Op: op, Left: x, Right: rhs, Sp: p.span(start)}
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expr {
	start := p.cur().Span
	x := p.parsePow()
	ops := map[string]ast.BinaryOp{"*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod}
	for {
		matched := false
		for sym, op := range ops {
			if p.atSymbol(sym) {
				p.advance()
				rhs := p.parsePow()
				x = &ast.BinaryExpr{Op: op, Left: x, Right: rhs, Sp: p.span(start)}
				matched = true
				break
			}
		}
		if !matched {
			return x
		}
	}
}

// parsePow is right-associative: "a ** b ** c" parses as "a ** (b ** c)".
func (p *Parser) parsePow() ast.Expr {
	start := p.cur().Span
	x := p.parseCast()
	if p.atSymbol("**") {
		p.advance()
		rhs := p.parsePow()
		return &ast.BinaryExpr{Op: ast.OpPow, Left: x, Right: rhs, Sp: p.span(start)}
	}
	return x
}

func (p *Parser) parseCast() ast.Expr {
	start := p.cur().Span
	x := p.parseUnary()
	for p.atKeyword("as") {
		p.advance()
		typ := p.parseType()
		x = &ast.CastExpr{X: x, Type: typ, Sp: p.span(start)}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Span
	switch {
	case p.atSymbol("-"):
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryNeg, Operand: p.parseUnary(), Sp: p.span(start)}
	case p.atSymbol("!"):
		p.advance()
		return &ast.UnaryExpr{Op: ast.UnaryNot, Operand: p.parseUnary(), Sp: p.span(start)}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.cur().Span
	x := p.parsePrimary()
	for {
		switch {
		case p.atSymbol("["):
			x = p.parseIndexOrRange(x, start)
		case p.atSymbol("."):
			x = p.parseMemberOrTupleAccess(x, start)
		case p.atSymbol("::"):
			x = p.parseStaticCall(x, start)
		case p.atSymbol("("):
			x = p.parseCallArgs(x, start)
		default:
			return x
		}
	}
}

func (p *Parser) parseIndexOrRange(x ast.Expr, start source.Span) ast.Expr {
	p.advance() // '['
	var lo ast.Expr
	if !p.atSymbol("..") {
		lo = p.parseExpr()
	}
	if p.atSymbol("..") {
		p.advance()
		var hi ast.Expr
		if !p.atSymbol("]") {
			hi = p.parseExpr()
		}
		p.expectSymbol("]")
		return &ast.RangeExpr{Array: x, Lo: lo, Hi: hi, Sp: p.span(start)}
	}
	p.expectSymbol("]")
	return &ast.IndexExpr{Array: x, Index: lo, Sp: p.span(start)}
}

func (p *Parser) parseMemberOrTupleAccess(x ast.Expr, start source.Span) ast.Expr {
	p.advance() // '.'
	if p.at(token.IntegerLiteral) {
		tok := p.advance()
		n, _ := strconv.Atoi(tok.Text)
		return &ast.TupleAccessExpr{X: x, Index: n, Sp: p.span(start)}
	}
	name, _, _ := p.expectIdent()
	if p.atSymbol("(") {
		call := p.parseCallArgs(nil, start).(*ast.CallExpr)
		call.Kind = ast.CallInstance
		call.Name = name
		call.Receiver = x
		return call
	}
	return &ast.MemberAccessExpr{X: x, Member: name, Sp: p.span(start)}
}

func (p *Parser) parseStaticCall(x ast.Expr, start source.Span) ast.Expr {
	p.advance() // '::'
	typeName := ""
	if id, ok := x.(*ast.Ident); ok {
		typeName = id.Name
	}
	name, _, _ := p.expectIdent()
	call := p.parseCallArgs(nil, start).(*ast.CallExpr)
	call.Kind = ast.CallStatic
	call.Name = name
	call.TypeName = typeName
	return call
}

func (p *Parser) parseCallArgs(callee ast.Expr, start source.Span) ast.Expr {
	p.advance() // '('
	var args []ast.Expr
	for !p.atSymbol(")") && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol(")")
	if callee == nil {
		return &ast.CallExpr{Args: args, Sp: p.span(start)}
	}
	name := ""
	if id, ok := callee.(*ast.Ident); ok {
		name = id.Name
	}
	return &ast.CallExpr{Kind: ast.CallFree, Name: name, Args: args, Sp: p.span(start)}
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch {
	case p.at(token.IntegerLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitInteger, Text: tok.Text, Sp: p.span(start)}
	case p.at(token.UnsignedLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitUnsigned, Text: tok.Text, Suffix: tok.Suffix, Sp: p.span(start)}
	case p.at(token.SignedLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitSigned, Text: tok.Text, Suffix: tok.Suffix, Sp: p.span(start)}
	case p.at(token.FieldLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitField, Text: tok.Text, Sp: p.span(start)}
	case p.at(token.GroupLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitGroup, Text: tok.Text, Sp: p.span(start)}
	case p.at(token.BooleanLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitBoolean, Bool: tok.BoolValue, Sp: p.span(start)}
	case p.at(token.AddressLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitAddress, Text: tok.Text, Sp: p.span(start)}
	case p.at(token.CharLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitChar, Rune: tok.Rune(), Sp: p.span(start)}
	case p.at(token.StringLiteral):
		tok := p.advance()
		return &ast.Literal{Kind: ast.LitString, Runes: tok.Runes, Sp: p.span(start)}
	case p.atKeyword("self"):
		p.advance()
		return &ast.SelfExpr{Sp: p.span(start)}
	case p.atKeyword("input"):
		p.advance()
		return &ast.InputExpr{Sp: p.span(start)}
	case p.atKeyword("Self"):
		tok := p.advance()
		if p.atSymbol("{") && looksLikeCircuitInit(p) {
			return p.parseCircuitInitFields(tok.Text, start)
		}
		p.errorf(source.CodeExpectedExpression, "Self is only valid as a circuit initializer: Self { ... }")
		return &ast.Literal{Kind: ast.LitBoolean, Bool: false, Sp: p.span(start)}
	case p.atSymbol("["):
		return p.parseArrayExpr()
	case p.atSymbol("("):
		return p.parseParenOrTuple()
	case p.at(token.Identifier):
		return p.parseIdentOrCircuitInit()
	default:
		p.errorf(source.CodeExpectedExpression, "expected expression, found %s", p.cur())
		p.advance()
		return &ast.Literal{Kind: ast.LitBoolean, Bool: false, Sp: p.span(start)}
	}
}

func (p *Parser) parseIdentOrCircuitInit() ast.Expr {
	start := p.cur().Span
	name, _, _ := p.expectIdent()
	if p.atSymbol("{") && looksLikeCircuitInit(p) {
		return p.parseCircuitInitFields(name, start)
	}
	return &ast.Ident{Name: name, Sp: p.span(start)}
}

// looksLikeCircuitInit disambiguates "Name { ... }" expression syntax from a
// following block (e.g. the condition of an if-statement), by requiring
// either an immediate "}" or an identifier followed by ':' or ',' or '}'.
func looksLikeCircuitInit(p *Parser) bool {
	if p.toks[p.pos+1].Kind == token.Symbol && p.toks[p.pos+1].Text == "}" {
		return true
	}
	if p.toks[p.pos+1].Kind != token.Identifier {
		return false
	}
	next := p.toks[p.pos+2]
	return next.Kind == token.Symbol && (next.Text == ":" || next.Text == "," || next.Text == "}")
}

func (p *Parser) parseCircuitInitFields(name string, start source.Span) ast.Expr {
	p.advance() // '{'
	var fields []ast.CircuitInitField
	for !p.atSymbol("}") && !p.at(token.EOF) {
		fStart := p.cur().Span
		fname, _, _ := p.expectIdent()
		if p.atSymbol(":") {
			p.advance()
			val := p.parseExpr()
			fields = append(fields, ast.CircuitInitField{Name: fname, Value: val, Sp: p.span(fStart)})
		} else {
			fields = append(fields, ast.CircuitInitField{Name: fname, Shorthand: true, Sp: p.span(fStart)})
		}
		if p.atSymbol(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectSymbol("}")
	return &ast.CircuitInitExpr{Name: name, Fields: fields, Sp: p.span(start)}
}

func (p *Parser) parseArrayExpr() ast.Expr {
	start := p.advance().Span // '['
	if p.atSymbol("]") {
		p.advance()
		return &ast.ArrayInlineExpr{Sp: p.span(start)}
	}
	spread := false
	if p.atSymbol("...") {
		p.advance()
		spread = true
	}
	first := p.parseExpr()
	if p.atSymbol(";") && !spread {
		p.advance()
		count := p.parseExpr()
		p.expectSymbol("]")
		return &ast.ArrayRepeatExpr{Elem: first, Count: count, Sp: p.span(start)}
	}
	elems := []ast.Expr{first}
	spreads := []bool{spread}
	for p.atSymbol(",") {
		p.advance()
		if p.atSymbol("]") {
			break
		}
		sp := false
		if p.atSymbol("...") {
			p.advance()
			sp = true
		}
		elems = append(elems, p.parseExpr())
		spreads = append(spreads, sp)
	}
	p.expectSymbol("]")
	return &ast.ArrayInlineExpr{Elems: elems, Spreads: spreads, Sp: p.span(start)}
}

func (p *Parser) parseParenOrTuple() ast.Expr {
	start := p.cur().Span
	if lit, ok := p.tryParseAffineGroup(start); ok {
		return lit
	}
	p.advance() // '('
	if p.atSymbol(")") {
		p.advance()
		return &ast.TupleExpr{Sp: p.span(start)}
	}
	first := p.parseExpr()
	if p.atSymbol(",") {
		elems := []ast.Expr{first}
		for p.atSymbol(",") {
			p.advance()
			if p.atSymbol(")") {
				break
			}
			elems = append(elems, p.parseExpr())
		}
		p.expectSymbol(")")
		return &ast.TupleExpr{Elems: elems, Sp: p.span(start)}
	}
	p.expectSymbol(")")
	return &ast.ParenExpr{X: first, Sp: p.span(start)}
}

// tryParseAffineCoord consumes one affine-group coordinate (a signed integer,
// a bare sign, or "_") without reporting a diagnostic on failure, so the
// caller can backtrack cleanly.
func (p *Parser) tryParseAffineCoord() (ast.AffineCoord, bool) {
	switch {
	case p.atSymbol("+"):
		p.advance()
		return ast.AffineCoord{Kind: "+"}, true
	case p.atSymbol("-"):
		p.advance()
		if p.at(token.IntegerLiteral) {
			tok := p.advance()
			return ast.AffineCoord{Kind: "int", Value: "-" + tok.Text}, true
		}
		return ast.AffineCoord{Kind: "-"}, true
	case p.at(token.IntegerLiteral):
		tok := p.advance()
		return ast.AffineCoord{Kind: "int", Value: tok.Text}, true
	case p.at(token.Identifier) && p.cur().Text == "_":
		p.advance()
		return ast.AffineCoord{Kind: "_"}, true
	default:
		return ast.AffineCoord{}, false
	}
}

// tryParseAffineGroup speculatively parses "(" coord "," coord ")group",
// restoring parser position and emitting no diagnostics if the shape does
// not match, so that the caller falls through to ordinary tuple/paren
// parsing.
func (p *Parser) tryParseAffineGroup(start source.Span) (ast.Expr, bool) {
	save := p.pos
	p.advance() // '('
	x, ok := p.tryParseAffineCoord()
	if !ok || !p.atSymbol(",") {
		p.pos = save
		return nil, false
	}
	p.advance() // ','
	y, ok := p.tryParseAffineCoord()
	if !ok || !p.atSymbol(")group") {
		p.pos = save
		return nil, false
	}
	p.advance() // ')group'
	return &ast.Literal{Kind: ast.LitAffineGroup, X: x, Y: y, Sp: p.span(start)}, true
}

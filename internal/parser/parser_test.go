package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/lexer"
	"github.com/ProvableHQ/leo/internal/source"
)

// parseReturnExpr parses a single function body consisting of one return
// statement and returns the parsed return expression, for precedence and
// grammar-shape assertions that don't need a whole file.
func parseReturnExpr(t *testing.T, exprSrc string) ast.Expr {
	t.Helper()
	src := "function f() { return " + exprSrc + "; }"
	mgr := source.NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte(src))
	require.NoError(t, err)
	bag := source.NewBag()
	toks := lexer.New(mgr, id, bag).Tokenize()
	f := ParseFile(id, "t.leo", toks, bag)
	require.False(t, bag.HadErrors(), "parse errors: %+v", bag.All())
	require.Len(t, f.Decls, 1)
	fn := f.Decls[0].(*ast.Function)
	require.Len(t, fn.Body.Stmts, 1)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	return ret.Value
}

func TestPrecedenceMulBeforeAdd(t *testing.T) {
	e := parseReturnExpr(t, "1 + 2 * 3")
	bin := e.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, bin.Op)
	require.IsType(t, &ast.Literal{}, bin.Left)
	rhs := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, ast.OpMul, rhs.Op)
}

func TestPowerIsRightAssociative(t *testing.T) {
	e := parseReturnExpr(t, "2 ** 3 ** 2")
	bin := e.(*ast.BinaryExpr)
	require.Equal(t, ast.OpPow, bin.Op)
	require.IsType(t, &ast.Literal{}, bin.Left) // 2
	rhs := bin.Right.(*ast.BinaryExpr)
	require.Equal(t, ast.OpPow, rhs.Op) // 3 ** 2, not (2**3) ** 2
}

func TestComparisonDoesNotChain(t *testing.T) {
	// "1 < 2 < 3" is a syntax error: comparison operators don't chain.
	src := "function f() { return 1 < 2 < 3; }"
	mgr := source.NewManager()
	id, _ := mgr.LoadBytes("t.leo", []byte(src))
	bag := source.NewBag()
	toks := lexer.New(mgr, id, bag).Tokenize()
	ParseFile(id, "t.leo", toks, bag)
	require.True(t, bag.HadErrors())
}

func TestTernaryExpr(t *testing.T) {
	e := parseReturnExpr(t, "true ? 1 : 2")
	require.IsType(t, &ast.TernaryExpr{}, e)
}

func TestAffineGroupLiteral(t *testing.T) {
	e := parseReturnExpr(t, "(1, 2)group")
	lit := e.(*ast.Literal)
	require.Equal(t, ast.LitAffineGroup, lit.Kind)
	require.Equal(t, "int", lit.X.Kind)
	require.Equal(t, "1", lit.X.Value)
	require.Equal(t, "int", lit.Y.Kind)
	require.Equal(t, "2", lit.Y.Value)
}

func TestAffineGroupWithSignsAndWildcard(t *testing.T) {
	e := parseReturnExpr(t, "(+, _)group")
	lit := e.(*ast.Literal)
	require.Equal(t, ast.LitAffineGroup, lit.Kind)
	require.Equal(t, "+", lit.X.Kind)
	require.Equal(t, "_", lit.Y.Kind)
}

func TestOrdinaryParenExprIsNotAffineGroup(t *testing.T) {
	e := parseReturnExpr(t, "(1 + 2)")
	paren, ok := e.(*ast.ParenExpr)
	require.True(t, ok, "expected a parenthesized expression, got %T", e)
	bin, ok := paren.X.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, bin.Op)
}

func TestTupleExprIsNotAffineGroup(t *testing.T) {
	e := parseReturnExpr(t, "(1, 2, 3)")
	require.IsType(t, &ast.TupleExpr{}, e)
}

func TestCircuitMembersAcceptSemicolonSeparator(t *testing.T) {
	src := "circuit P { x: u32; y: u32; function origin() -> u32 { return 0u32; } }"
	mgr := source.NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte(src))
	require.NoError(t, err)
	bag := source.NewBag()
	toks := lexer.New(mgr, id, bag).Tokenize()
	f := ParseFile(id, "t.leo", toks, bag)
	require.False(t, bag.HadErrors(), "parse errors: %+v", bag.All())
	c := f.Decls[0].(*ast.Circuit)
	require.Len(t, c.Members, 2)
	require.Equal(t, "x", c.Members[0].Name)
	require.Equal(t, "y", c.Members[1].Name)
	require.Len(t, c.Functions, 1)
}

func TestCastBindsTighterThanAdd(t *testing.T) {
	e := parseReturnExpr(t, "1 as u8 + 2")
	bin := e.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, bin.Op)
	require.IsType(t, &ast.CastExpr{}, bin.Left)
}

// TestScenarioS2OperatorPrecedence follows the precedence table, where "as"
// binds tighter than "**": "1 + 2 * 3 ** 2 as u32" parses as
// Add(1, Mul(2, Pow(3, Cast(2, u32)))), with the cast applying to the
// innermost power operand rather than wrapping the whole expression. See
// the Open Questions in DESIGN.md for why this is the chosen resolution.
func TestScenarioS2OperatorPrecedence(t *testing.T) {
	e := parseReturnExpr(t, "1 + 2 * 3 ** 2 as u32")

	add := e.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, add.Op)
	require.IsType(t, &ast.Literal{}, add.Left) // 1

	mul := add.Right.(*ast.BinaryExpr)
	require.Equal(t, ast.OpMul, mul.Op)
	require.IsType(t, &ast.Literal{}, mul.Left) // 2

	pow := mul.Right.(*ast.BinaryExpr)
	require.Equal(t, ast.OpPow, pow.Op)
	require.IsType(t, &ast.Literal{}, pow.Left) // 3

	cast := pow.Right.(*ast.CastExpr)
	require.IsType(t, &ast.Literal{}, cast.X) // 2
}

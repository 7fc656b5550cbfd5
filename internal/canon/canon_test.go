package canon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/lexer"
	"github.com/ProvableHQ/leo/internal/parser"
	"github.com/ProvableHQ/leo/internal/source"
)

func parseOne(t *testing.T, src string) (*ast.File, *source.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte(src))
	require.NoError(t, err)
	bag := source.NewBag()
	toks := lexer.New(mgr, id, bag).Tokenize()
	f := parser.ParseFile(id, "t.leo", toks, bag)
	return f, bag
}

func TestCompoundAssignDesugars(t *testing.T) {
	f, bag := parseOne(t, "function f() { let x: u8 = 1u8; x += 2u8; }")
	require.False(t, bag.HadErrors())
	File(f)

	fn := f.Decls[0].(*ast.Function)
	assign := fn.Body.Stmts[1].(*ast.AssignStmt)
	require.Equal(t, ast.AssignSimple, assign.Op)
	rhs := assign.RHS.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, rhs.Op)
}

func TestInclusiveRangeNormalizes(t *testing.T) {
	f, bag := parseOne(t, "function f() { for i in 0..=3 { } }")
	require.False(t, bag.HadErrors())
	File(f)

	fn := f.Decls[0].(*ast.Function)
	loop := fn.Body.Stmts[0].(*ast.ForStmt)
	require.False(t, loop.Inclusive)
	end := loop.End.(*ast.BinaryExpr)
	require.Equal(t, ast.OpAdd, end.Op)
}

func TestStringLiteralExpandsToCharArray(t *testing.T) {
	f, bag := parseOne(t, `function f() { let x: [char; 2] = "ab"; }`)
	require.False(t, bag.HadErrors())
	File(f)

	fn := f.Decls[0].(*ast.Function)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	arr := let.Init.(*ast.ArrayInlineExpr)
	require.Len(t, arr.Elems, 2)
	first := arr.Elems[0].(*ast.Literal)
	require.Equal(t, ast.LitChar, first.Kind)
	require.Equal(t, 'a', first.Rune)
}

func TestExpandAliasesResolvesNamedType(t *testing.T) {
	f, bag := parseOne(t, `
type Weight = u64;
function f(w: Weight) -> Weight { return w; }
`)
	require.False(t, bag.HadErrors())
	ExpandAliases([]*ast.File{f}, bag)
	require.False(t, bag.HadErrors())

	fn := f.Decls[1].(*ast.Function)
	require.IsType(t, &ast.ScalarType{}, fn.Params[0].Type)
}

func TestExpandAliasesDetectsSelfCycle(t *testing.T) {
	f, bag := parseOne(t, `type A = A;`)
	require.False(t, bag.HadErrors())
	ExpandAliases([]*ast.File{f}, bag)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeTypeAliasCycle {
			found = true
		}
	}
	require.True(t, found)
}

func TestExpandAliasesDetectsMutualCycle(t *testing.T) {
	f, bag := parseOne(t, `
type A = B;
type B = A;
`)
	require.False(t, bag.HadErrors())
	ExpandAliases([]*ast.File{f}, bag)

	count := 0
	for _, d := range bag.All() {
		if d.Code == source.CodeTypeAliasCycle {
			count++
		}
	}
	require.Equal(t, 1, count, "a mutual cycle must be reported exactly once")
}

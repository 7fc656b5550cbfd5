package asg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo/internal/types"
)

func TestArenaAssignsSequentialIDs(t *testing.T) {
	p := NewProgram()
	a := p.AddDefinition(Definition{Kind: DefFunction, Name: "a"})
	b := p.AddDefinition(Definition{Kind: DefFunction, Name: "b"})
	require.Equal(t, DefinitionID(0), a)
	require.Equal(t, DefinitionID(1), b)
	require.Equal(t, "a", p.Definition(a).Name)
	require.Equal(t, "b", p.Definition(b).Name)
}

func TestFunctionByName(t *testing.T) {
	p := NewProgram()
	id := p.AddDefinition(Definition{Kind: DefFunction, Name: "main"})
	got, ok := p.FunctionByName("main")
	require.True(t, ok)
	require.Equal(t, id, got)

	_, ok = p.FunctionByName("nope")
	require.False(t, ok)
}

func TestCircuitByNameIgnoresFunctions(t *testing.T) {
	p := NewProgram()
	p.AddDefinition(Definition{Kind: DefFunction, Name: "Point"})
	cid := p.AddDefinition(Definition{Kind: DefCircuit, Name: "Point"})
	got, ok := p.CircuitByName("Point")
	require.True(t, ok)
	require.Equal(t, cid, got)
}

func TestExprAndStmtArenas(t *testing.T) {
	p := NewProgram()
	e := p.AddExpr(Expression{Kind: ExprLiteral, Type: types.Scalar(types.U8)})
	require.Equal(t, types.U8, p.Expr(e).Type.Kind)

	s := p.AddStmt(Statement{Kind: StmtExpr, X: e})
	require.Equal(t, e, p.Stmt(s).X)
}

func TestDefinitionsReturnsArenaOrder(t *testing.T) {
	p := NewProgram()
	p.AddDefinition(Definition{Name: "a"})
	p.AddDefinition(Definition{Name: "b"})
	defs := p.Definitions()
	require.Len(t, defs, 2)
	require.Equal(t, "a", defs[0].Name)
	require.Equal(t, "b", defs[1].Name)
}

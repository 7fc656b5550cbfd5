package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/canon"
	"github.com/ProvableHQ/leo/internal/lexer"
	"github.com/ProvableHQ/leo/internal/parser"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/types"
)

// build runs the full C2-C5 pipeline over a single-file program and returns
// the resulting ASG alongside whatever diagnostics accumulated.
func build(t *testing.T, src string) (*asg.Program, *source.Bag) {
	t.Helper()
	mgr := source.NewManager()
	id, err := mgr.LoadBytes("t.leo", []byte(src))
	require.NoError(t, err)
	bag := source.NewBag()
	toks := lexer.New(mgr, id, bag).Tokenize()
	f := parser.ParseFile(id, "t.leo", toks, bag)
	require.False(t, bag.HadErrors(), "parse errors: %+v", bag.All())

	canon.File(f)
	canon.ExpandAliases([]*ast.File{f}, bag)

	prg := Build([]*ast.File{f}, nil, nil, bag)
	return prg, bag
}

func TestEntryPointViaAnnotation(t *testing.T) {
	prg, bag := build(t, `
@entry
function main(a: u32, b: u32) -> u32 {
    return a + b;
}
`)
	require.False(t, bag.HadErrors())
	require.Len(t, prg.EntryPoints, 1)
	def := prg.Definition(prg.EntryPoints[0])
	require.Equal(t, "main", def.Name)
	require.Equal(t, asg.EntryPoint, def.Category)
}

func TestNoEntryPointIsAnError(t *testing.T) {
	_, bag := build(t, `
function helper(a: u32) -> u32 {
    return a;
}
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeNoEntryPoint {
			found = true
		}
	}
	require.True(t, found)
}

func TestMultipleEntryPointsIsAnError(t *testing.T) {
	_, bag := build(t, `
@entry
function a() -> u8 { return 1u8; }
@entry
function b() -> u8 { return 2u8; }
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeMultipleEntryPoints {
			found = true
		}
	}
	require.True(t, found)
}

func TestCallArgumentResolvesLocalScope(t *testing.T) {
	prg, bag := build(t, `
function add(a: u32, b: u32) -> u32 {
    return a + b;
}
@entry
function main(x: u32) -> u32 {
    let y: u32 = 1u32;
    return add(x, y);
}
`)
	require.False(t, bag.HadErrors(), "diagnostics: %+v", bag.All())
	mainID, ok := prg.FunctionByName("main")
	require.True(t, ok)
	def := prg.Definition(mainID)
	require.NotEmpty(t, def.Body)
}

func TestReturnTypeMismatchIsAnError(t *testing.T) {
	_, bag := build(t, `
@entry
function main() -> u8 {
    return true;
}
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeReturnTypeMismatch {
			found = true
		}
	}
	require.True(t, found)
}

func TestArityMismatchIsAnError(t *testing.T) {
	_, bag := build(t, `
function add(a: u32, b: u32) -> u32 { return a + b; }
@entry
function main() -> u32 {
    return add(1u32);
}
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeArityMismatch {
			found = true
		}
	}
	require.True(t, found)
}

func TestConstArraySizeFromGlobalConst(t *testing.T) {
	prg, bag := build(t, `
const N: u32 = 3u32;
@entry
function main() -> [u32; 3] {
    return [0u32; N];
}
`)
	require.False(t, bag.HadErrors(), "diagnostics: %+v", bag.All())
	mainID, ok := prg.FunctionByName("main")
	require.True(t, ok)
	def := prg.Definition(mainID)
	require.Equal(t, types.Array, def.ReturnType.Kind)
	require.Equal(t, 3, def.ReturnType.Len)
}

func TestArraySizePlaceholderInfersFromInitializer(t *testing.T) {
	prg, bag := build(t, `
@entry
function f() -> u8 {
    let x: [u8; _] = [1u8, 2u8, 3u8];
    return x[2u32];
}
`)
	require.False(t, bag.HadErrors(), "diagnostics: %+v", bag.All())
	fID, ok := prg.FunctionByName("f")
	require.True(t, ok)
	def := prg.Definition(fID)
	require.NotEmpty(t, def.Body)
	letStmt := prg.Stmt(def.Body[0])
	require.Len(t, letStmt.Target, 1)
	xDef := prg.Definition(letStmt.Target[0])
	require.Equal(t, types.Array, xDef.Type.Kind)
	require.Equal(t, 3, xDef.Type.Len)
}

func TestConstCastOutOfRangeIsAnError(t *testing.T) {
	_, bag := build(t, `
const N: u8 = 256u16 as u8;
@entry
function main() -> [u32; 1] {
    return [0u32; N];
}
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeCastOutOfRange {
			found = true
		}
	}
	require.True(t, found)
}

func TestCircuitCompositionCycleIsAnError(t *testing.T) {
	_, bag := build(t, `
circuit A { b: B }
circuit B { a: A }
@entry
function main() -> u8 { return 0u8; }
`)
	require.True(t, bag.HadErrors())
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeCircularCircuit {
			found = true
		}
	}
	require.True(t, found)
}

func TestUnknownAnnotationWarns(t *testing.T) {
	_, bag := build(t, `
@bogus
@entry
function main() -> u8 { return 0u8; }
`)
	found := false
	for _, d := range bag.All() {
		if d.Code == source.CodeUnknownAnnotation {
			found = true
		}
	}
	require.True(t, found)
}

// Package sema implements C5: two-pass name resolution, type checking, and
// ASG construction over a canonicalized AST. Pass A registers every
// top-level name (so forward references across declarations and files
// resolve); Pass B walks function and circuit bodies, resolving names,
// checking types, and building the internal/asg arena.
package sema

import (
	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
	"github.com/ProvableHQ/leo/internal/types"
)

// Analyzer holds all state threaded through the two passes.
type Analyzer struct {
	bag *source.Bag
	prg *asg.Program

	// topLevel maps every top-level name to its arena definition, populated
	// by Pass A before Pass B resolves any body.
	topLevel map[string]asg.DefinitionID

	// circuitTypes maps a circuit name to its resolved types.CircuitDef,
	// populated alongside topLevel so member/type resolution never blocks on
	// declaration order.
	circuitTypes map[string]*types.CircuitDef

	// constMemo memoizes evalConst results, keyed by AST expression node.
	constMemo map[ast.Expr]asg.Value

	// extraAnnotations names annotations a project config recognizes beyond
	// the built-in set, so checkAnnotations does not warn on them.
	extraAnnotations map[string]bool

	scope *scope
}

// scope is a singly-linked lexical scope frame over local bindings.
type scope struct {
	parent *scope
	names  map[string]asg.DefinitionID
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]asg.DefinitionID{}}
}

func (s *scope) lookup(name string) (asg.DefinitionID, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if id, ok := sc.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (s *scope) define(name string, id asg.DefinitionID) {
	s.names[name] = id
}

// New returns an Analyzer ready to run Build.
func New(bag *source.Bag) *Analyzer {
	return &Analyzer{
		bag:              bag,
		prg:              asg.NewProgram(),
		topLevel:         map[string]asg.DefinitionID{},
		circuitTypes:     map[string]*types.CircuitDef{},
		constMemo:        map[ast.Expr]asg.Value{},
		extraAnnotations: map[string]bool{},
	}
}

// EntryPoints converts a manifest's list of entry-point function names into
// the set form Build takes.
func (a *Analyzer) EntryPoints(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Build runs both passes over files (already canonicalized by internal/canon
// with cross-file alias expansion already applied) and returns the
// completed arena. entryPoints names the functions a manifest designates as
// program entry points; if empty, every function annotated @program or
// @entry, and the function named main, becomes an entry point.
// checkEntryPoints then requires there be exactly one. recognizedAnnotations extends the built-in
// annotation set (program, entry, test, inline) with project-config-defined
// names, per compiler.Options.RecognizedAnnotations.
func Build(files []*ast.File, entryPoints map[string]bool, recognizedAnnotations []string, bag *source.Bag) *asg.Program {
	a := New(bag)
	for _, name := range recognizedAnnotations {
		a.extraAnnotations[name] = true
	}
	a.passA(files)
	a.passB(files, entryPoints)
	a.checkCircuitCycles(files)
	a.checkEntryPoints(entryPoints)
	return a.prg
}

// passA registers every top-level declaration's name and resolved signature
// type, without descending into bodies, so Pass B can resolve any
// order-independent forward reference (a function calling one declared
// later in the same file, or a circuit referencing another defined in a
// different file of the unit).
func (a *Analyzer) passA(files []*ast.File) {
	// Register circuit names and member shapes first: function signatures in
	// the same pass may reference them as parameter/return types.
	for _, f := range files {
		for _, d := range f.Decls {
			if c, ok := d.(*ast.Circuit); ok {
				a.registerCircuitShape(c)
			}
		}
	}
	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.Function:
				a.registerFunction(d, nil)
			case *ast.Circuit:
				a.registerCircuitFunctions(d)
			case *ast.GlobalConst:
				a.registerGlobalConst(d)
			}
		}
	}
}

func (a *Analyzer) registerCircuitShape(c *ast.Circuit) {
	if _, dup := a.circuitTypes[c.Name]; dup {
		a.bag.Errorf(source.CodeDuplicateDefinition, c.Sp, "duplicate definition of circuit %q", c.Name)
		return
	}
	def := &types.CircuitDef{Name: c.Name}
	a.circuitTypes[c.Name] = def
}

func (a *Analyzer) registerCircuitFunctions(c *ast.Circuit) {
	def := a.circuitTypes[c.Name]
	if def == nil {
		return
	}
	for _, m := range c.Members {
		mt := a.resolveType(m.Type, nil)
		if !types.IsConstSized(mt) {
			a.bag.Errorf(source.CodeUnresolvedArraySize, m.Sp, "circuit member %q: array size cannot be inferred here", m.Name)
		}
		def.Members = append(def.Members, types.Member{Name: m.Name, Type: mt})
	}

	circuitType := types.Type{Kind: types.Circuit, CircuitDef: def}
	id := a.prg.AddDefinition(asg.Definition{
		Kind: asg.DefCircuit, Name: c.Name, Type: circuitType,
		CircuitDef: def, Span: c.Sp,
	})
	if _, dup := a.topLevel[c.Name]; dup {
		// Already reported by registerCircuitShape.
	} else {
		a.topLevel[c.Name] = id
	}

	var fnIDs []asg.DefinitionID
	for _, fn := range c.Functions {
		fnID := a.registerFunction(fn, def)
		fnIDs = append(fnIDs, fnID)
	}
	a.prg.Definition(id).Functions = fnIDs
}

func (a *Analyzer) registerFunction(fn *ast.Function, owner *types.CircuitDef) asg.DefinitionID {
	var params []asg.DefinitionID
	for _, p := range fn.Params {
		t := a.selfAwareParamType(p, owner)
		if !types.IsConstSized(t) {
			a.bag.Errorf(source.CodeUnresolvedArraySize, p.Sp, "parameter %q: array size cannot be inferred here", paramName(p))
		}
		pid := a.prg.AddDefinition(asg.Definition{
			Kind: asg.DefParam, Name: paramName(p), Type: t, IsConst: p.IsConst,
			SelfKind: p.SelfKind, Span: p.Sp,
		})
		params = append(params, pid)
	}
	retType := a.resolveType(fn.ReturnType, nil)
	if !types.IsConstSized(retType) {
		a.bag.Errorf(source.CodeUnresolvedArraySize, fn.Sp, "function %q: return type array size cannot be inferred here", fn.Name)
	}
	id := a.prg.AddDefinition(asg.Definition{
		Kind: asg.DefFunction, Name: fn.Name, Type: retType,
		Params: params, ReturnType: retType, Span: fn.Sp,
	})
	if owner == nil {
		if _, dup := a.topLevel[fn.Name]; dup {
			a.bag.Errorf(source.CodeDuplicateDefinition, fn.Sp, "duplicate definition of %q", fn.Name)
		} else {
			a.topLevel[fn.Name] = id
		}
	}
	return id
}

func paramName(p ast.Param) string {
	if p.SelfKind != "" {
		return "self"
	}
	return p.Name
}

func (a *Analyzer) selfAwareParamType(p ast.Param, owner *types.CircuitDef) types.Type {
	if p.SelfKind != "" && owner != nil {
		return types.Type{Kind: types.Circuit, CircuitDef: owner}
	}
	return a.resolveType(p.Type, nil)
}

func (a *Analyzer) registerGlobalConst(d *ast.GlobalConst) {
	t := a.resolveType(d.Type, nil)
	if !types.IsConstSized(t) {
		a.bag.Errorf(source.CodeUnresolvedArraySize, d.Sp, "global const %q: array size cannot be inferred here", d.Name)
	}
	id := a.prg.AddDefinition(asg.Definition{
		Kind: asg.DefGlobalConst, Name: d.Name, Type: t, IsConst: true, Span: d.Sp,
	})
	if _, dup := a.topLevel[d.Name]; dup {
		a.bag.Errorf(source.CodeDuplicateDefinition, d.Sp, "duplicate definition of %q", d.Name)
	} else {
		a.topLevel[d.Name] = id
	}
}

// passB resolves every function body (free functions and circuit member
// functions) and every global const initializer.
func (a *Analyzer) passB(files []*ast.File, entryPoints map[string]bool) {
	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.Function:
				a.buildFunctionBody(d, a.topLevel[d.Name], nil, entryPoints)
			case *ast.Circuit:
				a.buildCircuitBodies(d, entryPoints)
			case *ast.GlobalConst:
				a.buildGlobalConst(d)
			}
		}
	}
}

func (a *Analyzer) buildCircuitBodies(c *ast.Circuit, entryPoints map[string]bool) {
	owner := a.circuitTypes[c.Name]
	circuitID, ok := a.topLevel[c.Name]
	if !ok {
		return
	}
	circuitDef := a.prg.Definition(circuitID)
	for i, fn := range c.Functions {
		if i < len(circuitDef.Functions) {
			a.buildFunctionBody(fn, circuitDef.Functions[i], owner, entryPoints)
		}
	}
	for _, cc := range c.Consts {
		val, ok := a.evalConst(cc.Init, newScope(nil))
		if !ok {
			a.bag.Errorf(source.CodeNonConstInConstCtx, cc.Sp, "circuit const %q initializer is not a constant expression", cc.Name)
			continue
		}
		_ = val // circuit consts are accessible via the owning circuit's type only
	}
}

func (a *Analyzer) buildGlobalConst(d *ast.GlobalConst) {
	id, ok := a.topLevel[d.Name]
	if !ok {
		return
	}
	val, ok := a.evalConst(d.Init, newScope(nil))
	if !ok {
		a.bag.Errorf(source.CodeNonConstInConstCtx, d.Sp, "global const %q initializer is not a constant expression", d.Name)
		return
	}
	def := a.prg.Definition(id)
	def.ConstValue = val
	if def.Type.Kind == types.Invalid {
		def.Type = valueType(val)
	}
}

func (a *Analyzer) buildFunctionBody(fn *ast.Function, id asg.DefinitionID, owner *types.CircuitDef, entryPoints map[string]bool) {
	def := a.prg.Definition(id)
	def.Category = asg.Regular
	switch {
	case entryPoints[fn.Name]:
		def.Category = asg.EntryPoint
	case len(entryPoints) == 0 && hasEntryAnnotation(fn):
		def.Category = asg.EntryPoint
	case len(entryPoints) == 0 && fn.Name == "main":
		def.Category = asg.EntryPoint
	}
	if hasAnnotation(fn, "test") {
		def.Category = asg.Test
	}

	fscope := newScope(nil)
	a.scope = fscope
	for _, pid := range def.Params {
		p := a.prg.Definition(pid)
		fscope.define(p.Name, pid)
	}
	a.checkAnnotations(fn.Annotations)

	bodyIDs, returns := a.buildBlock(fn.Body, fscope)
	def.Body = bodyIDs
	a.checkReturnType(fn, def, returns)
}

func hasEntryAnnotation(fn *ast.Function) bool {
	for _, a := range fn.Annotations {
		if a.Name == "program" || a.Name == "entry" {
			return true
		}
	}
	return false
}

func hasAnnotation(fn *ast.Function, name string) bool {
	for _, a := range fn.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (a *Analyzer) checkAnnotations(annots []ast.Annotation) {
	for _, an := range annots {
		switch an.Name {
		case "program", "entry", "test", "inline":
			// recognized
		default:
			if a.extraAnnotations[an.Name] {
				continue
			}
			a.bag.Warnf(source.CodeUnknownAnnotation, an.Sp, "unknown annotation %q", an.Name)
		}
	}
}

func (a *Analyzer) checkReturnType(fn *ast.Function, def *asg.Definition, returns []types.Type) {
	want := def.ReturnType
	if fn.ReturnType != nil && want.Kind == types.Invalid {
		// The declared return type itself failed to resolve (unresolved
		// name, Self outside a circuit, type-alias cycle); that's already
		// reported at the declaration site, so don't cascade a mismatch
		// for every return statement too.
		return
	}
	for i, got := range returns {
		if want.Kind == types.Invalid && got.Kind == types.Invalid {
			continue
		}
		if !types.Equal(want, got) {
			a.bag.Errorf(source.CodeReturnTypeMismatch, fn.Sp,
				"function %q: return %d has type %s, expected %s", fn.Name, i, got, want)
		}
	}
}

func valueType(v asg.Value) types.Type {
	switch v.Kind {
	case asg.ValBool:
		return types.Scalar(types.Bool)
	case asg.ValAddress:
		return types.Scalar(types.Address)
	case asg.ValChar:
		return types.Scalar(types.Char)
	default:
		return types.Type{}
	}
}

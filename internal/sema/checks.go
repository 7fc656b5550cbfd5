package sema

import (
	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/source"
)

// checkCircuitCycles rejects a circuit composition graph with a cycle (a
// circuit that contains itself as a member, directly or transitively),
// which would otherwise make the type have no finite size.
func (a *Analyzer) checkCircuitCycles(files []*ast.File) {
	graph := map[string][]string{}
	spans := map[string]source.Span{}
	for _, f := range files {
		for _, d := range f.Decls {
			c, ok := d.(*ast.Circuit)
			if !ok {
				continue
			}
			spans[c.Name] = c.Sp
			for _, m := range c.Members {
				graph[c.Name] = append(graph[c.Name], memberCircuitRefs(m.Type)...)
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string
	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return false
		case gray:
			return true
		}
		color[name] = gray
		path = append(path, name)
		for _, dep := range graph[name] {
			if visit(dep) {
				return true
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		return false
	}
	for name := range graph {
		if color[name] == white {
			path = nil
			if visit(name) {
				a.bag.Errorf(source.CodeCircularCircuit, spans[name], "circular circuit composition: %v", path)
			}
		}
	}
}

func memberCircuitRefs(t ast.Type) []string {
	switch t := t.(type) {
	case *ast.NamedType:
		return []string{t.Name}
	case *ast.ArrayType:
		return memberCircuitRefs(t.Elem)
	case *ast.TupleType:
		var out []string
		for _, e := range t.Elems {
			out = append(out, memberCircuitRefs(e)...)
		}
		return out
	default:
		return nil
	}
}

// checkEntryPoints enforces that a compiled program have exactly one entry
// point. Pass B already categorized each function (by the manifest's list,
// or else by @program/@entry annotation or the name main); this collects
// every function categorized asg.EntryPoint into Program.EntryPoints and
// reports zero or more than one.
func (a *Analyzer) checkEntryPoints(entryPoints map[string]bool) {
	var found []asg.DefinitionID
	for _, d := range a.prg.Definitions() {
		if d.Kind == asg.DefFunction && d.Category == asg.EntryPoint {
			found = append(found, d.ID)
		}
	}
	a.prg.EntryPoints = found
	switch {
	case len(found) == 0:
		a.bag.Errorf(source.CodeNoEntryPoint, source.Span{}, "program has no entry point function")
	case len(found) > 1:
		a.bag.Errorf(source.CodeMultipleEntryPoints, a.prg.Definition(found[1]).Span, "program has multiple entry point functions")
	}
}

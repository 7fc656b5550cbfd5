// Package compiler orchestrates C1–C5 end to end for one compilation unit:
// load source, lex, parse, canonicalize, and run semantic analysis, folding
// every stage's diagnostics into a single source.Bag. It owns the external
// collaborator interfaces (PackageLoader, ImportResolver) that stand in for
// the out-of-scope package-fetch and bytecode-lowering surface, and the
// Options type that parameterizes analysis.
package compiler

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/ast"
	"github.com/ProvableHQ/leo/internal/canon"
	"github.com/ProvableHQ/leo/internal/lexer"
	"github.com/ProvableHQ/leo/internal/parser"
	"github.com/ProvableHQ/leo/internal/sema"
	"github.com/ProvableHQ/leo/internal/source"
)

// Options parameterizes one compilation.
type Options struct {
	// EntryPoints names the functions to treat as program entry points. A
	// nil/empty slice falls back to annotation-driven detection
	// (@program/@entry) in internal/sema; the function named main is then
	// an entry point too.
	EntryPoints []string

	// RecognizedAnnotations extends the built-in set sema.checkAnnotations
	// accepts without a warning.
	RecognizedAnnotations []string

	// InlineDepthLimit bounds recursive-call inlining depth for a later
	// inlining pass; inlining itself is out of scope here, and nothing in
	// this module reads or validates the value.
	InlineDepthLimit int

	// Verbose gates internal stage-tracing logs (file loads, parsed files,
	// completion of semantic analysis) through logrus at Debug level; never
	// mixed into the diagnostic stream a Leo programmer sees.
	Verbose bool
}

// DefaultOptions returns the hardcoded defaults used when no leo.yaml
// project config is present.
func DefaultOptions() Options {
	return Options{
		RecognizedAnnotations: []string{"test", "entrypoint"},
		InlineDepthLimit:      32,
	}
}

// ImportResult is what an ImportResolver returns for one import path: the
// files of the resolved package, already loaded as bytes. Actual network or
// filesystem package-fetch behavior is out of scope here; compiler.Unit
// only needs the resolved bytes to keep compiling.
type ImportResult struct {
	Files map[string][]byte // file path -> UTF-8 source bytes
}

// PackageLoader loads a local package's files by filesystem path.
// Implementations live outside this module (this is the compiler core's
// external-collaborator seam).
type PackageLoader interface {
	Load(path string) (map[string][]byte, error)
}

// ImportResolver resolves a dotted Leo import path (e.g. "foo.bar") to the
// package files backing it. Network fetch, registry lookups, and caching
// are all out of scope for this package; implementations are expected to
// live in cmd/leo or a separate package-manager module.
type ImportResolver interface {
	Resolve(importPath []string) (ImportResult, error)
}

// Unit is the single owner of every source file, AST, and ASG node for one
// compiled program. Nothing outside Unit holds a mutable alias into that
// storage, so a Unit is safe to pass around by pointer without locking.
type Unit struct {
	opts    Options
	mgr     *source.Manager
	bag     *source.Bag
	log     *logrus.Logger
	files   []*ast.File
	program *asg.Program
}

// New returns a Unit ready to compile.
func New(opts Options) *Unit {
	log := logrus.New()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return &Unit{
		opts: opts,
		mgr:  source.NewManager(),
		bag:  source.NewBag(),
		log:  log,
	}
}

// Manager exposes the unit's source.Manager, for callers rendering
// diagnostics.
func (u *Unit) Manager() *source.Manager { return u.mgr }

// Diagnostics returns every diagnostic collected so far without clearing
// the bag.
func (u *Unit) Diagnostics() []source.Diagnostic { return u.bag.All() }

// Program returns the completed ASG, valid only after Compile has returned
// with no fatal error.
func (u *Unit) Program() *asg.Program { return u.program }

// AddFile loads one source file into the unit by path, returning its id for
// diagnostics. Fatal-only errors (I/O, invalid UTF-8) are returned; every
// other problem becomes a bag diagnostic.
func (u *Unit) AddFile(path string, data []byte) (source.FileID, error) {
	id, err := u.mgr.LoadBytes(path, data)
	if err != nil {
		return id, fmt.Errorf("compiler: load %s: %w", path, err)
	}
	u.log.WithField("path", path).Debug("loaded source file")
	return id, nil
}

// Compile runs the full pipeline over every file added via AddFile, plus
// whatever resolver resolves for their import declarations, and returns the
// resulting ASG. Compile always returns a non-nil *asg.Program even when
// u.bag.HadErrors() is true, so a caller can still inspect what did
// resolve; callers must check HadErrors before trusting the result for
// downstream lowering. resolver may be nil; every import declaration then
// becomes an unresolved-import diagnostic.
func (u *Unit) Compile(resolver ImportResolver) (*asg.Program, error) {
	ids := u.mgr.FileIDs()
	sort.Slice(ids, func(i, j int) bool { return u.mgr.Path(ids[i]) < u.mgr.Path(ids[j]) })

	for _, id := range ids {
		f := u.parseOne(id)
		u.files = append(u.files, f)
	}

	if err := u.resolveImports(resolver); err != nil {
		return nil, err
	}

	for _, f := range u.files {
		canon.File(f)
	}
	canon.ExpandAliases(u.files, u.bag)

	entryPoints := make(map[string]bool, len(u.opts.EntryPoints))
	for _, n := range u.opts.EntryPoints {
		entryPoints[n] = true
	}
	u.program = sema.Build(u.files, entryPoints, u.opts.RecognizedAnnotations, u.bag)
	u.log.WithField("definitions", len(u.program.Definitions())).Debug("semantic analysis complete")
	return u.program, nil
}

func (u *Unit) parseOne(id source.FileID) *ast.File {
	toks := lexer.New(u.mgr, id, u.bag).Tokenize()
	f := parser.ParseFile(id, u.mgr.Path(id), toks, u.bag)
	u.log.WithFields(logrus.Fields{"path": u.mgr.Path(id), "decls": len(f.Decls)}).Debug("parsed file")
	return f
}

// resolveImports walks every already-parsed file's import declarations and,
// via resolver, loads and parses the packages they name. Newly resolved
// files are appended to u.files in resolution order, so diagnostics and
// definitions stay deterministic (sorted path, then import-resolution
// order) across runs.
func (u *Unit) resolveImports(resolver ImportResolver) error {
	seen := map[string]bool{}
	for _, f := range u.files {
		for _, d := range f.Decls {
			imp, ok := d.(*ast.Import)
			if !ok {
				continue
			}
			key := fmt.Sprint(imp.Path.Segments)
			if seen[key] {
				continue
			}
			seen[key] = true
			if resolver == nil {
				u.bag.Errorf(source.CodeUnresolvedImport, imp.Sp, "import %v: no import resolver configured", imp.Path.Segments)
				continue
			}
			result, err := resolver.Resolve(imp.Path.Segments)
			if err != nil {
				u.bag.Errorf(source.CodeUnresolvedImport, imp.Sp, "import %v: %v", imp.Path.Segments, err)
				continue
			}
			var paths []string
			for path := range result.Files {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				id, err := u.AddFile(path, result.Files[path])
				if err != nil {
					return err
				}
				u.files = append(u.files, u.parseOne(id))
			}
		}
	}
	return nil
}

// FileSymbols returns the resolved top-level definitions declared directly
// in the file at path, for a language-server-style collaborator. Returns nil
// if path was never added to the unit.
func (u *Unit) FileSymbols(path string) []asg.Definition {
	var fileID source.FileID
	found := false
	for _, id := range u.mgr.FileIDs() {
		if u.mgr.Path(id) == path {
			fileID = id
			found = true
			break
		}
	}
	if !found || u.program == nil {
		return nil
	}
	var out []asg.Definition
	for _, d := range u.program.Definitions() {
		if d.Span.File == fileID {
			out = append(out, d)
		}
	}
	return out
}

package load

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// DefaultSuffix is the file name suffix of generated files.
const DefaultSuffix = "_veneer.go"

// Config controls how packages are loaded and scanned.
type Config struct {
	// Prefix is the directive prefix. Defaults to DefaultPrefix.
	Prefix string
	// Suffix marks generated files to skip. Defaults to DefaultSuffix.
	Suffix string
	// Dir is the working directory for pattern resolution.
	Dir string
	// BuildFlags are passed to the build system, e.g. -tags.
	BuildFlags []string
	// Importer resolves imports for ParseSource. Nil leaves imported
	// packages unresolved.
	Importer types.Importer
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo

// Load loads the packages matching patterns. Type errors are tolerated, since
// stale generated files commonly break type checking of the package being
// regenerated; syntax and listing errors are not.
func Load(ctx context.Context, cfg Config, patterns ...string) ([]*Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pcfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
	}
	pkgs, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("veneer/load: loading %s: %w", strings.Join(patterns, " "), err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("veneer/load: no packages found for %s", strings.Join(patterns, " "))
	}
	var (
		out  []*Package
		errs []error
	)
	for _, p := range pkgs {
		if err := fatal(p); err != nil {
			errs = append(errs, err)
			continue
		}
		r := NewTypesResolver(p.Fset, p.Types, p.TypesInfo, p.Syntax)
		out = append(out, NewPackage(cfg, p.Fset, p.Name, p.PkgPath, p.Syntax, p.CompiledGoFiles, r))
	}
	if len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}

func fatal(p *packages.Package) error {
	var errs []error
	for _, e := range p.Errors {
		if e.Kind == packages.TypeError {
			continue
		}
		errs = append(errs, e)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("veneer/load: package %s: %w", p.PkgPath, errors.Join(errs...))
}

// ParseSource builds a Package from in-memory sources keyed by file name.
// The sources are type checked on a best-effort basis with cfg.Importer.
func ParseSource(cfg Config, path string, sources map[string]string) (*Package, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	fset := token.NewFileSet()
	files := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, sources[name], parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("veneer/load: %w", err)
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("veneer/load: no sources for %s", path)
	}
	name := files[0].Name.Name
	for i, f := range files {
		if f.Name.Name != name {
			return nil, fmt.Errorf("veneer/load: %s: package %s, expected %s", names[i], f.Name.Name, name)
		}
	}
	pkg, info := Check(fset, path, files, cfg.Importer)
	if cfg.Dir != "" {
		for i, n := range names {
			if !filepath.IsAbs(n) {
				names[i] = filepath.Join(cfg.Dir, n)
			}
		}
	}
	return NewPackage(cfg, fset, name, path, files, names, NewTypesResolver(fset, pkg, info, files)), nil
}

// Check type checks files, ignoring errors. Imports fail when imp is nil,
// which leaves their uses untyped.
func Check(fset *token.FileSet, path string, files []*ast.File, imp types.Importer) (*types.Package, *types.Info) {
	if imp == nil {
		imp = noImports{}
	}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{
		Importer: imp,
		Error:    func(error) {},
	}
	pkg, _ := conf.Check(path, fset, files, info)
	return pkg, info
}

type noImports struct{}

func (noImports) Import(path string) (*types.Package, error) {
	return nil, fmt.Errorf("veneer/load: import %q not available", path)
}

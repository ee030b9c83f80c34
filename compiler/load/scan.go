package load

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/syssam/veneer/schema/marker"
)

func (c Config) prefix() string {
	if c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix
}

func (c Config) suffix() string {
	if c.Suffix == "" {
		return DefaultSuffix
	}
	return c.Suffix
}

// Skip reports whether a file is generated output that must not be scanned.
func (c Config) Skip(filename string, f *ast.File) bool {
	return strings.HasSuffix(filename, c.suffix()) || (f != nil && ast.IsGenerated(f))
}

// scanner builds the declaration model of one package.
type scanner struct {
	cfg    Config
	pkg    *Package
	byName map[string]*TypeDecl
	order  []*TypeDecl
}

// NewPackage builds a Package from parsed files. Generated files are dropped.
func NewPackage(cfg Config, fset *token.FileSet, name, path string, files []*ast.File, filenames []string, r Resolver) *Package {
	pkg := &Package{
		Name:     name,
		Path:     path,
		Fset:     fset,
		Resolver: r,
		Prefix:   cfg.prefix(),
	}
	for i, f := range files {
		fn := ""
		if i < len(filenames) {
			fn = filenames[i]
		}
		if cfg.Skip(fn, f) {
			continue
		}
		pkg.Files = append(pkg.Files, f)
		pkg.Filenames = append(pkg.Filenames, fn)
		if pkg.Dir == "" && fn != "" {
			pkg.Dir = filepath.Dir(fn)
		}
	}
	if pkg.Resolver == nil {
		pkg.Resolver = NewSyntaxResolver(pkg.Files)
	}
	s := &scanner{cfg: cfg, pkg: pkg, byName: make(map[string]*TypeDecl)}
	s.scan()
	return pkg
}

func (s *scanner) scan() {
	for _, f := range s.pkg.Files {
		imports := Imports(f)
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok == token.TYPE {
					s.typeDecls(d, imports, false)
				}
			case *ast.FuncDecl:
				if d.Body != nil {
					s.localTypes(d.Body, imports)
				}
			}
		}
	}
	for _, f := range s.pkg.Files {
		imports := Imports(f)
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				s.method(d, imports)
			case *ast.GenDecl:
				if d.Tok == token.VAR {
					s.statics(d, imports)
				}
			}
		}
	}
	s.nest()
}

func (s *scanner) typeDecls(gd *ast.GenDecl, imports map[string]string, local bool) {
	for _, spec := range gd.Specs {
		ts := spec.(*ast.TypeSpec)
		doc := ts.Doc
		if doc == nil && len(gd.Specs) == 1 {
			doc = gd.Doc
		}
		annotations := ParseDirectives(s.pkg.Prefix, doc, ts.Comment)
		if len(lookup(annotations, string(marker.Generate))) == 0 {
			continue
		}
		t := &TypeDecl{
			Name:        ts.Name.Name,
			Alias:       ts.Assign.IsValid(),
			FileLocal:   local,
			Annotations: annotations,
			Imports:     imports,
			Spec:        ts,
			Pos:         ts.Pos(),
		}
		if ts.TypeParams != nil {
			for _, field := range ts.TypeParams.List {
				for _, n := range field.Names {
					t.TypeParams = append(t.TypeParams, TypeParam{Name: n.Name, Constraint: field.Type})
				}
			}
		}
		if st, ok := ts.Type.(*ast.StructType); ok && !t.Alias {
			t.Members = s.fields(st, imports)
		}
		s.order = append(s.order, t)
		if !local {
			s.byName[t.Name] = t
		}
	}
}

// localTypes collects generated types declared inside function bodies so the
// pipeline can reject them.
func (s *scanner) localTypes(body *ast.BlockStmt, imports map[string]string) {
	ast.Inspect(body, func(n ast.Node) bool {
		ds, ok := n.(*ast.DeclStmt)
		if !ok {
			return true
		}
		if gd, ok := ds.Decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
			s.typeDecls(gd, imports, true)
		}
		return true
	})
}

func (s *scanner) fields(st *ast.StructType, imports map[string]string) []*Member {
	var members []*Member
	for _, field := range st.Fields.List {
		m := &Member{
			Kind:        FieldMember,
			Type:        field.Type,
			Annotations: ParseDirectives(s.pkg.Prefix, field.Doc, field.Comment),
			Imports:     imports,
			Node:        field,
			Pos:         field.Pos(),
		}
		if len(field.Names) == 0 {
			m.Embedded = true
			m.Names = []string{embeddedName(field.Type)}
		}
		for _, n := range field.Names {
			m.Names = append(m.Names, n.Name)
		}
		members = append(members, m)
	}
	return members
}

func (s *scanner) method(fd *ast.FuncDecl, imports map[string]string) {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return
	}
	t, ok := s.byName[receiverName(fd.Recv.List[0].Type)]
	if !ok {
		return
	}
	m := &Member{
		Names:       []string{fd.Name.Name},
		Kind:        MethodMember,
		Annotations: ParseDirectives(s.pkg.Prefix, fd.Doc),
		Imports:     imports,
		Node:        fd,
		Pos:         fd.Pos(),
		Params:      fd.Type.Params.NumFields(),
		Results:     fd.Type.Results.NumFields(),
	}
	if fd.Type.Results != nil && len(fd.Type.Results.List) > 0 {
		m.Type = fd.Type.Results.List[0].Type
	}
	t.Members = append(t.Members, m)
}

// statics attaches package vars bearing Static(of = Owner) to Owner.
func (s *scanner) statics(gd *ast.GenDecl, imports map[string]string) {
	for _, spec := range gd.Specs {
		vs := spec.(*ast.ValueSpec)
		doc := vs.Doc
		if doc == nil && len(gd.Specs) == 1 {
			doc = gd.Doc
		}
		annotations := ParseDirectives(s.pkg.Prefix, doc, vs.Comment)
		owners := lookup(annotations, string(marker.Static))
		if len(owners) == 0 {
			continue
		}
		m, err := owners[0].Restore(s.pkg.Resolver)
		if err != nil {
			continue
		}
		t, ok := s.byName[m.(marker.StaticMember).Of]
		if !ok {
			continue
		}
		member := &Member{
			Kind:        FieldMember,
			Type:        vs.Type,
			Static:      true,
			Annotations: annotations,
			Imports:     imports,
			Node:        vs,
			Pos:         vs.Pos(),
		}
		for _, n := range vs.Names {
			member.Names = append(member.Names, n.Name)
		}
		t.Members = append(t.Members, member)
	}
}

// nest links types declared with Generate(in = Outer) under Outer. Types
// whose parent is unknown, not generated or would form a cycle stay at top
// level with ParentName set.
func (s *scanner) nest() {
	for _, t := range s.order {
		if t.FileLocal {
			continue
		}
		g := t.Lookup(string(marker.Generate))
		m, err := g[0].Restore(s.pkg.Resolver)
		if err != nil {
			continue
		}
		t.ParentName = m.(marker.GenerateType).In
	}
	for _, t := range s.order {
		if t.ParentName == "" || t.FileLocal {
			continue
		}
		parent, ok := s.byName[t.ParentName]
		if !ok || parent == t || ancestorOf(t, parent) {
			continue
		}
		t.Parent = parent
		parent.Nested = append(parent.Nested, t)
	}
	for _, t := range s.order {
		if t.Parent == nil {
			s.pkg.Types = append(s.pkg.Types, t)
		}
	}
}

// ancestorOf reports whether a is p or one of p's ancestors.
func ancestorOf(a, p *TypeDecl) bool {
	for ; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// Imports maps the local names of a file's imports to their paths.
func Imports(f *ast.File) map[string]string {
	imports := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		} else {
			name = importName(path)
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// importName guesses the package name of an import path: the last element,
// skipping major version suffixes and gopkg.in style version tags.
func importName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && len(name) > 1 && name[0] == 'v' && isDigits(name[1:]) {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "")
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.ParenExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}

// embeddedName returns the implicit field name of an embedded field.
func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}

package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/syssam/veneer/compiler/load"
)

// ErrNoOutput is returned by Unit.Render when the unit holds no members.
var ErrNoOutput = errors.New("veneer: no output")

// Fragment holds the generated members of one type and the fragments of the
// generated types nested under it.
type Fragment struct {
	Type    string
	Members []*Member
	Nested  []*Fragment
}

// Len returns the number of members of f and its nested fragments.
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	n := len(f.Members)
	for _, c := range f.Nested {
		n += c.Len()
	}
	return n
}

// Walk calls fn for f and its nested fragments, depth first.
func (f *Fragment) Walk(fn func(*Fragment)) {
	fn(f)
	for _, c := range f.Nested {
		c.Walk(fn)
	}
}

// Unit is the generated file of one top-level type.
type Unit struct {
	Package     *load.Package
	Decl        *load.TypeDecl
	Config      *Config
	Compilation []*Member
	Fragment    *Fragment
	Namespace   []*Member
}

// Filename returns the name of the generated file, relative to the package
// directory.
func (u *Unit) Filename() string {
	return strings.ToLower(u.Decl.Name) + u.Config.FileSuffix()
}

// Path returns the path of the generated file.
func (u *Unit) Path() string {
	return filepath.Join(u.Package.Dir, u.Filename())
}

// Len returns the number of generated members.
func (u *Unit) Len() int {
	return len(u.Compilation) + u.Fragment.Len() + len(u.Namespace)
}

// Members returns all members in render order.
func (u *Unit) Members() []*Member {
	ms := append([]*Member(nil), u.Compilation...)
	if u.Fragment != nil {
		u.Fragment.Walk(func(f *Fragment) { ms = append(ms, f.Members...) })
	}
	return append(ms, u.Namespace...)
}

// File renders the unit into a jen file: compilation members first, then
// each fragment's members followed by its nested fragments, then namespace
// members.
func (u *Unit) File() *jen.File {
	f := jen.NewFilePathName(u.Package.Path, u.Package.Name)
	f.HeaderComment(u.Config.HeaderComment())
	for _, m := range u.Members() {
		if m.Doc != "" {
			f.Comment(m.Doc)
		}
		f.Add(m.Code)
		f.Line()
	}
	return f
}

// Source returns the unformatted source of the unit, or ErrNoOutput.
func (u *Unit) Source() ([]byte, error) {
	if u.Len() == 0 {
		return nil, ErrNoOutput
	}
	var buf bytes.Buffer
	if err := u.File().Render(&buf); err != nil {
		return nil, NewGenerationError("render", u.Decl.Name, "", "rendering jen file", err)
	}
	return u.addImports(buf.Bytes())
}

// Render returns the formatted source of the unit, or ErrNoOutput.
func (u *Unit) Render() ([]byte, error) {
	src, err := u.Source()
	if err != nil {
		return nil, err
	}
	out, err := imports.Process(u.Path(), src, nil)
	if err != nil {
		return nil, NewGenerationError("format", u.Decl.Name, "", u.Filename(), err)
	}
	return out, nil
}

// addImports adds the imports of members emitted as text, which the jen
// renderer does not know about.
func (u *Unit) addImports(src []byte) ([]byte, error) {
	paths := map[string]string{}
	for _, m := range u.Members() {
		for path, name := range m.Imports {
			paths[path] = name
		}
	}
	if len(paths) == 0 {
		return src, nil
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, u.Filename(), src, parser.ParseComments)
	if err != nil {
		return nil, NewGenerationError("render", u.Decl.Name, "", "parsing rendered file", err)
	}
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		name := paths[path]
		if name == defaultImportName(path) {
			name = ""
		}
		astutil.AddNamedImport(fset, file, name, path)
	}
	var out bytes.Buffer
	if err := format.Node(&out, fset, file); err != nil {
		return nil, NewGenerationError("render", u.Decl.Name, "", "printing imports", err)
	}
	return out.Bytes(), nil
}

func defaultImportName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// String returns the rendered source, or the error text when rendering fails.
func (u *Unit) String() string {
	b, err := u.Render()
	if err != nil {
		return fmt.Sprintf("// %v", err)
	}
	return string(b)
}

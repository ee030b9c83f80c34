package gen

import (
	"fmt"

	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/schema/marker"
)

// validate checks that decl can receive generated members and records a
// diagnostic when it cannot.
func validate(pkg *load.Package, decl *load.TypeDecl, report *Report) error {
	var code, msg string
	switch {
	case pkg.Name == "":
		code, msg = CodeMissingPackage, "type is not declared in a named package"
	case decl.Alias:
		code, msg = CodeNotPartial, "alias types cannot declare methods"
	case decl.FileLocal:
		code, msg = CodeFileLocal, "type is declared inside a function body"
	case decl.ParentName != "" && decl.Parent == nil:
		code, msg = CodeNestedTopLevel, fmt.Sprintf("type asks to be nested in %q, which is not a generated type of the package or forms a cycle", decl.ParentName)
	default:
		return nil
	}
	d := Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Type:     decl.Name,
		Message:  msg,
	}
	if pkg.Fset != nil && decl.Pos.IsValid() {
		d.Pos = pkg.Fset.Position(decl.Pos)
	}
	report.diagnose(d)
	return NewDeclarationError(decl.Name, "", msg, nil)
}

// place moves the parent-scope members of a top-level type to the package
// scope. Parent-scope members of nested types are folded by their parent.
func place(tc *TypeContext, out *Output) {
	if tc.Parent != nil {
		return
	}
	for _, m := range out.Parent {
		out.Add(marker.PlaceNamespace, m)
	}
	out.Parent = nil
}

// fold merges the output of a nested type into the output of its parent:
// members placed one level up land in the parent's type scope.
func fold(parent, child *Output) {
	parent.Type = append(parent.Type, child.Parent...)
	parent.Namespace = append(parent.Namespace, child.Namespace...)
	parent.Compilation = append(parent.Compilation, child.Compilation...)
}

// fragment builds the fragment of tc from its type-scope members. Members
// named like a declared field or method, or like an earlier member, are
// dropped with a warning.
func fragment(tc *TypeContext, ms []*Member) *Fragment {
	f := &Fragment{Type: tc.Decl.Name}
	seen := map[string]string{}
	for _, fact := range tc.Facts {
		if !fact.Static && !fact.Synthesized {
			seen[fact.Name] = "declared member"
		}
	}
	for _, m := range ms {
		if m.Name == "" {
			f.Members = append(f.Members, m)
			continue
		}
		if by, ok := seen[m.Name]; ok {
			duplicate(tc, m, by)
			continue
		}
		seen[m.Name] = "member generated by " + m.Origin
		f.Members = append(f.Members, m)
	}
	return f
}

// dedupe drops package-scope members named like an earlier one.
func dedupe(tc *TypeContext, seen map[string]string, ms []*Member) []*Member {
	var out []*Member
	for _, m := range ms {
		if m.Name == "" || m.Name == "_" {
			out = append(out, m)
			continue
		}
		if by, ok := seen[m.Name]; ok {
			duplicate(tc, m, by)
			continue
		}
		seen[m.Name] = "member generated by " + m.Origin
		out = append(out, m)
	}
	return out
}

func duplicate(tc *TypeContext, m *Member, by string) {
	tc.Report.diagnose(Diagnostic{
		Code:     CodeDuplicateMember,
		Severity: SeverityWarning,
		Type:     tc.Decl.Name,
		Message:  fmt.Sprintf("%s generated by %s collides with a %s", m.Name, m.Origin, by),
		Pos:      tc.Position(m.Pos),
	})
}

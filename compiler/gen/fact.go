package gen

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"

	"go.uber.org/zap"

	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/internal/logger"
	"github.com/syssam/veneer/schema/marker"
)

// Fact is one member of a type as seen by the components: a field name, a
// static package var or a method. A declaration naming several fields
// yields one fact per name.
type Fact struct {
	Name string
	// Expr is the declared type; the first result type for methods.
	Expr     ast.Expr
	Static   bool
	Embedded bool
	Method   bool
	// Params and Results count method parameters and results.
	Params  int
	Results int
	// Synthesized marks facts of members produced by earlier components.
	Synthesized bool
	Annotations []load.Annotation
	Imports     map[string]string
	Decl        *load.TypeDecl
	Member      *load.Member
	Pos         token.Pos
}

// Lookup returns the annotations of f with the given kind in source order.
func (f *Fact) Lookup(kind marker.Kind) []load.Annotation {
	var found []load.Annotation
	for _, a := range f.Annotations {
		if a.Name == string(kind) {
			found = append(found, a)
		}
	}
	return found
}

// Has reports whether f carries an annotation of the given kind.
func (f *Fact) Has(kind marker.Kind) bool {
	return len(f.Lookup(kind)) > 0
}

// Field reports whether f is an instance field.
func (f *Fact) Field() bool {
	return !f.Method && !f.Static
}

// Extract returns the facts of decl in source order. A member that cannot be
// extracted is logged and skipped.
func Extract(ctx context.Context, decl *load.TypeDecl, log *zap.Logger) ([]*Fact, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var facts []*Fact
	for _, m := range decl.Members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := extract(decl, m)
		if err != nil {
			log.Warn("skipping member",
				zap.String(logger.FieldType, decl.Name),
				zap.Strings(logger.FieldMember, m.Names),
				zap.Error(err),
			)
			continue
		}
		facts = append(facts, fs...)
	}
	return facts, nil
}

func extract(decl *load.TypeDecl, m *load.Member) (facts []*Fact, err error) {
	defer func() {
		if r := recover(); r != nil {
			facts, err = nil, fmt.Errorf("extract: %v", r)
		}
	}()
	if len(m.Names) == 0 {
		return nil, fmt.Errorf("member at %d has no name", m.Pos)
	}
	for _, name := range m.Names {
		if name == "" || name == "_" {
			continue
		}
		facts = append(facts, &Fact{
			Name:        name,
			Expr:        m.Type,
			Static:      m.Static,
			Embedded:    m.Embedded,
			Method:      m.Kind == load.MethodMember,
			Params:      m.Params,
			Results:     m.Results,
			Annotations: m.Annotations,
			Imports:     m.Imports,
			Decl:        decl,
			Member:      m,
			Pos:         m.Pos,
		})
	}
	return facts, nil
}

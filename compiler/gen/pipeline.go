package gen

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/veneer/compiler/load"
	"github.com/syssam/veneer/internal/logger"
	"github.com/syssam/veneer/schema/marker"
)

// Generator runs the registered components over the generated types of a
// package.
type Generator struct {
	cfg      *Config
	registry *Registry
}

// NewGenerator returns a generator running the components of r.
func NewGenerator(cfg *Config, r *Registry) *Generator {
	if cfg == nil {
		cfg = &Config{}
	}
	if r == nil {
		r = &Registry{}
	}
	return &Generator{cfg: cfg, registry: r}
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *Config {
	return g.cfg
}

// PackageResult is the outcome of generating one package.
type PackageResult struct {
	Package *load.Package
	// Units holds one unit per top-level type that produced output, in
	// source order.
	Units  []*Unit
	Report *Report
}

// RunPackage generates every top-level type of pkg. Independent types run
// concurrently; a type that fails validation is reported and skipped
// without affecting its siblings. The returned error is non-nil only when
// ctx is cancelled.
func (g *Generator) RunPackage(ctx context.Context, pkg *load.Package) (*PackageResult, error) {
	units := make([]*Unit, len(pkg.Types))
	reports := make([]*Report, len(pkg.Types))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency())
	for i, decl := range pkg.Types {
		eg.Go(func() error {
			u, r, err := g.Run(ctx, pkg, decl)
			reports[i] = r
			if err != nil && !IsDeclarationError(err) {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	res := &PackageResult{Package: pkg, Report: &Report{}}
	seen := map[string]string{}
	for i, u := range units {
		res.Report.Merge(reports[i])
		if u == nil {
			continue
		}
		// Namespace and compilation members share the package scope.
		tc := &TypeContext{Package: pkg, Decl: u.Decl, Config: g.cfg, Report: res.Report}
		u.Compilation = dedupe(tc, seen, u.Compilation)
		u.Namespace = dedupe(tc, seen, u.Namespace)
		if u.Len() > 0 {
			res.Units = append(res.Units, u)
		}
	}
	return res, nil
}

// Run generates one top-level type. It returns a DeclarationError when the
// type cannot receive generated members, and ctx.Err() when the run was
// cancelled. The unit is empty when nothing was generated.
func (g *Generator) Run(ctx context.Context, pkg *load.Package, decl *load.TypeDecl) (*Unit, *Report, error) {
	tc := NewTypeContext(ctx, pkg, decl, g.cfg, nil)
	if err := validate(pkg, decl, tc.Report); err != nil {
		return nil, tc.Report, err
	}
	start := time.Now()
	frag, out, err := g.process(tc)
	if err != nil {
		return nil, tc.Report, err
	}
	tc.Log.Debug("type generated",
		zap.Int("members", frag.Len()+out.Len()),
		zap.Int64(logger.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	u := &Unit{
		Package:     pkg,
		Decl:        decl,
		Config:      g.cfg,
		Compilation: out.Compilation,
		Fragment:    frag,
		Namespace:   out.Namespace,
	}
	return u, tc.Report, nil
}

// process runs both phases over the type of tc and its nested types. The
// returned output holds the members placed outside the type.
func (g *Generator) process(tc *TypeContext) (*Fragment, *Output, error) {
	ctx := tc.Context()
	facts, err := Extract(ctx, tc.Decl, tc.Log)
	if err != nil {
		return nil, nil, err
	}
	tc.Facts = facts

	out := &Output{}
	if err := g.phase1(tc, out); err != nil {
		return nil, nil, err
	}

	var nested []*Fragment
	children := append(append([]*load.TypeDecl(nil), tc.Decl.Nested...), out.Nested...)
	out.Nested = nil
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		ctc := NewTypeContext(ctx, tc.Package, child, tc.Config, tc)
		if child.Alias || child.FileLocal {
			_ = validate(tc.Package, child, tc.Report)
			continue
		}
		frag, cout, err := g.process(ctc)
		if err != nil {
			return nil, nil, err
		}
		nested = append(nested, frag)
		fold(out, cout)
	}

	// Members of earlier components are visible to the aggregators.
	for _, m := range out.Type {
		if m.Fact != nil {
			m.Fact.Synthesized = true
			if m.Fact.Decl == nil {
				m.Fact.Decl = tc.Decl
			}
			tc.Facts = append(tc.Facts, m.Fact)
		}
	}
	if err := g.phase2(tc, out); err != nil {
		return nil, nil, err
	}

	frag := fragment(tc, out.Type)
	frag.Nested = nested
	out.Type = nil
	place(tc, out)
	return frag, out, nil
}

// phase1 runs the type components, then every member component for every
// marker occurrence on every fact.
func (g *Generator) phase1(tc *TypeContext, out *Output) error {
	ctx := tc.Context()
	for _, c := range g.registry.TypeComponents(tc.Config) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, a := range tc.Decl.Lookup(string(c.Kind())) {
			e := Entry{Type: tc.Decl.Name, Marker: a.Name, Component: c.Name()}
			o := g.invoke(tc, e, a.Pos, func() (*Output, error) {
				m, err := a.Restore(tc.Package.Resolver)
				if err != nil {
					return nil, err
				}
				return c.GenerateType(tc, m)
			})
			out.Merge(o)
		}
	}
	members := g.registry.MemberComponents(tc.Config)
	for _, f := range tc.Facts {
		if err := ctx.Err(); err != nil {
			return err
		}
		fc := FieldContext{TypeContext: tc, Fact: f}
		for _, c := range members {
			for _, a := range f.Lookup(c.Kind()) {
				e := Entry{Type: tc.Decl.Name, Member: f.Name, Marker: a.Name, Component: c.Name()}
				o := g.invoke(tc, e, a.Pos, func() (*Output, error) {
					mc, err := newMemberContext(fc, a)
					if err != nil {
						return nil, err
					}
					return c.Generate(mc)
				})
				out.Merge(o)
			}
		}
	}
	return nil
}

func newMemberContext(fc FieldContext, a load.Annotation) (*MemberContext, error) {
	m, err := a.Restore(fc.Package.Resolver)
	if err != nil {
		return nil, err
	}
	mc := &MemberContext{FieldContext: fc, Marker: m, Type: fc.Describe(), Annotation: a}
	if acc, ok := m.(marker.Accessor); ok && acc.Type != "" {
		t := mc.Override(acc.Type)
		if t == nil {
			return nil, fmt.Errorf("%w: type override %q", ErrUnresolvedType, acc.Type)
		}
		mc.Type = t
	}
	return mc, nil
}

// phase2 runs every aggregator once over the declared and synthesized facts.
func (g *Generator) phase2(tc *TypeContext, out *Output) error {
	for _, a := range g.registry.Aggregators(tc.Config) {
		if err := tc.Context().Err(); err != nil {
			return err
		}
		e := Entry{Type: tc.Decl.Name, Marker: string(a.ClassKind()), Component: a.Name()}
		ac, err := g.aggregateContext(tc, a)
		if err != nil {
			out.Merge(g.invoke(tc, e, tc.Decl.Pos, func() (*Output, error) { return nil, err }))
			continue
		}
		if len(ac.Class) == 0 {
			if len(ac.Fields) == 0 {
				continue
			}
			if a.Enforce() {
				e.Outcome, e.Reason = Skipped, fmt.Sprintf("field markers without a %s marker on the type", a.ClassKind())
				tc.Report.add(e)
				continue
			}
		}
		out.Merge(g.invoke(tc, e, tc.Decl.Pos, func() (*Output, error) { return a.Aggregate(ac) }))
	}
	return nil
}

func (g *Generator) aggregateContext(tc *TypeContext, a Aggregator) (*AggregateContext, error) {
	ac := &AggregateContext{TypeContext: tc}
	ms, err := tc.Markers(a.ClassKind())
	if err != nil {
		return nil, err
	}
	for _, m := range ms {
		if c, ok := m.(marker.Aggregate); ok {
			ac.Class = append(ac.Class, c)
		}
	}
	if a.OnlyOne() && len(ac.Class) > 1 {
		ac.Class = ac.Class[:1]
	}
	for _, f := range tc.Facts {
		as := f.Lookup(a.FieldKind())
		if len(as) == 0 {
			continue
		}
		if f.Method && (f.Params > 0 || f.Results != 1) {
			tc.Report.add(Entry{
				Type: tc.Decl.Name, Member: f.Name, Marker: as[0].Name, Component: a.Name(),
				Outcome: Skipped, Reason: "method must take no arguments and return one value",
			})
			continue
		}
		m, err := as[0].Restore(tc.Package.Resolver)
		if err != nil {
			return nil, err
		}
		fm, _ := m.(marker.AggregateField)
		ac.Fields = append(ac.Fields, AggregateField{
			Fact:   f,
			Marker: fm,
			Type:   tc.Describer(f.Imports).Describe(f.Expr),
		})
	}
	return ac, nil
}

// invoke runs fn in isolation: a panic or an error is recorded against the
// entry and yields no output.
func (g *Generator) invoke(tc *TypeContext, e Entry, pos token.Pos, fn func() (*Output, error)) *Output {
	out, err := safe(fn)
	var pe *panicError
	if errors.As(err, &pe) {
		tc.Log.Error("component panicked", zap.String(logger.FieldComponent, e.Component), zap.ByteString("stack", pe.stack))
	}
	log := tc.Log.With(
		zap.String(logger.FieldMember, e.Member),
		zap.String(logger.FieldMarker, e.Marker),
		zap.String(logger.FieldComponent, e.Component),
	)
	switch {
	case err == nil:
		e.Outcome = Generated
		if out == nil {
			out = &Output{}
		}
		for _, ms := range [][]*Member{out.Type, out.Parent, out.Namespace, out.Compilation} {
			for _, m := range ms {
				if m.Origin == "" {
					m.Origin = e.Component
				}
			}
		}
	case IsSkip(err):
		e.Outcome, e.Reason = Skipped, err.Error()
		log.Debug("skipped", zap.Error(err))
		out = nil
	default:
		e.Outcome, e.Reason = Failed, err.Error()
		log.Warn("component failed", zap.Error(err))
		code := CodeComponentFailure
		if errors.Is(err, ErrTemplate) {
			code = CodeTemplateParse
		}
		tc.Report.diagnose(Diagnostic{
			Code:     code,
			Severity: SeverityWarning,
			Type:     e.Type,
			Message:  NewGenerationError(e.Component, e.Type, e.Member, "", err).Error(),
			Pos:      tc.Position(pos),
		})
		out = nil
	}
	tc.Report.add(e)
	return out
}

func safe(fn func() (*Output, error)) (out *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return fn()
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Package gen turns annotated type declarations into generated members.
//
// # Architecture
//
// The pipeline follows this flow for every top-level generated type:
//
//	load.TypeDecl (declaration model)
//	        ↓
//	   Extract (one Fact per field, method and attached package var)
//	        ↓
//	   Phase 1: TypeComponent per type marker, MemberComponent per
//	            fact × marker occurrence
//	        ↓
//	   nested generated types (whole pipeline, parent context)
//	        ↓
//	   Phase 2: Aggregator once per type over declared and synthesized facts
//	        ↓
//	   Fragment + Output buffers → Unit → <type>_veneer.go
//
// # Key Types
//
//   - Config: generation settings built with functional options
//   - Registry: the ordered list of components, phase 1 before phase 2
//   - TypeContext, FieldContext, MemberContext: what a component sees
//   - Output: generated members by scope (type, parent, namespace,
//     compilation)
//   - Unit: the generated file of one top-level type
//   - Report: per-invocation outcomes and diagnostics
//
// # Error Handling
//
// Structural problems with a type (alias, declared in a function body,
// unresolvable nesting) yield a DeclarationError and an error diagnostic;
// sibling types are unaffected. A failing component invocation is recorded
// as a warning diagnostic and yields no output, leaving the other
// invocations intact. Components return ErrUnresolvedType or Skip(reason)
// to mark an occurrence as skipped:
//
//	res, err := gen.NewGenerator(cfg, registry).RunPackage(ctx, pkg)
//	if err != nil {
//	    return err // cancelled
//	}
//	for _, e := range res.Report.Filter(gen.Skipped) {
//	    log.Printf("%s.%s: %s", e.Type, e.Member, e.Reason)
//	}
//
// # Configuration
//
//	cfg, err := gen.NewConfig(
//	    gen.WithPrefix("veneer"),
//	    gen.WithWorkers(4),
//	    gen.WithDisabled("tostring"),
//	)
//
// The concrete components live in the synth package.
package gen

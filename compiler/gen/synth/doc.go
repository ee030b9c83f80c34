// Package synth holds the synthesis components of the default registry:
// accessors, list and map helpers, freeze scaffolding, templates and the
// ToString, Hash and Equals aggregators.
//
//	registry, err := synth.Registry()
//	if err != nil {
//	    return err
//	}
//	res, err := gen.NewGenerator(cfg, registry).RunPackage(ctx, pkg)
//
// Every generated method has a pointer receiver. A marker's freezeTag makes
// ValidateNonFrozen(tag) the first statement, requireNonNull rejects nil
// arguments of nillable types and chain makes mutators return the receiver.
package synth

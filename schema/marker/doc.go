// Package marker defines the vocabulary of veneer directives.
//
// A marker is a comment directive attached to a type or one of its members:
//
//	//veneer:Generate
//	type Order struct {
//		//veneer:Get
//		//veneer:Set(chain = true, freezeTag = "lines")
//		id int
//
//		//veneer:Add(requireNonNull = true)
//		//veneer:For(useIteratorProtocol = true)
//		lines []*Line
//	}
//
// The loader turns the directive arguments into a [Bag] and [Restore] builds
// the statically typed marker for the directive name. Every kind has its own
// configuration struct; the set of kinds is closed but new kinds can be added
// to the registration table with [Register].
//
// Markers are pure data. Restore never validates: a List marker whose element
// type cannot be determined is discovered later by the component consuming it.
package marker

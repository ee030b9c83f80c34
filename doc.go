// Package veneer is the runtime support imported by generated code.
//
// Generated members raise the errors of this package by panicking so their
// signatures stay fluent:
//
//	d.Frozen("a")
//	d.SetName("x") // panics with *veneer.FrozenError
//
// Use Recover to turn such a panic back into an error. FrozenTags backs the
// generated freeze scaffolding; Hash, HashOrZero and JoinFields are the
// building blocks of generated HashCode and String members.
//
// The generator itself lives in the compiler packages and is driven by the
// veneer command.
package veneer

package veneer

import (
	"errors"
	"fmt"
)

// Standard sentinel errors raised by generated members.
var (
	// ErrFrozen is raised when a guarded member is invoked after its freeze
	// tag was frozen.
	ErrFrozen = errors.New("veneer: non-frozen validation failed")

	// ErrNilArgument is raised when a member generated with requireNonNull
	// receives a nil argument.
	ErrNilArgument = errors.New("veneer: nil argument")
)

// FrozenError represents a mutation attempted after a tag was frozen.
type FrozenError struct {
	typ string
	tag string
}

// Error returns the error string.
func (e *FrozenError) Error() string {
	if e.typ == "" {
		return fmt.Sprintf("veneer: non-frozen validation failed for tag %q", e.tag)
	}
	return fmt.Sprintf("veneer: non-frozen validation failed for tag %q of %s", e.tag, e.typ)
}

// Is reports whether the target error matches FrozenError.
// This allows errors.Is(frozenErr, ErrFrozen) to return true.
func (e *FrozenError) Is(err error) bool {
	return err == ErrFrozen
}

// Type returns the name of the frozen type.
func (e *FrozenError) Type() string {
	return e.typ
}

// Tag returns the frozen tag.
func (e *FrozenError) Tag() string {
	return e.tag
}

// NewFrozenError returns a new FrozenError for the given type and tag.
func NewFrozenError(typ, tag string) *FrozenError {
	return &FrozenError{typ: typ, tag: tag}
}

// IsFrozen returns true if the error is a FrozenError.
func IsFrozen(err error) bool {
	if err == nil {
		return false
	}
	var e *FrozenError
	return errors.As(err, &e) || errors.Is(err, ErrFrozen)
}

// NilArgumentError represents a nil argument passed to a generated member.
type NilArgumentError struct {
	member string
	param  string
}

// Error returns the error string.
func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("veneer: %s: argument %q must not be nil", e.member, e.param)
}

// Is reports whether the target error matches NilArgumentError.
func (e *NilArgumentError) Is(err error) bool {
	return err == ErrNilArgument
}

// Member returns the qualified name of the member, e.g. "Demo.SetName".
func (e *NilArgumentError) Member() string {
	return e.member
}

// Param returns the name of the nil parameter.
func (e *NilArgumentError) Param() string {
	return e.param
}

// NewNilArgumentError returns a new NilArgumentError.
func NewNilArgumentError(member, param string) *NilArgumentError {
	return &NilArgumentError{member: member, param: param}
}

// IsNilArgument returns true if the error is a NilArgumentError.
func IsNilArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *NilArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrNilArgument)
}

// Recover converts a panic raised by a generated member into an error.
// Panics that do not carry a veneer error are re-raised.
//
//	func set(d *Demo, v *Item) (err error) {
//	    defer veneer.Recover(&err)
//	    d.SetItem(v)
//	    return nil
//	}
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && (IsFrozen(e) || IsNilArgument(e)) {
		*err = e
		return
	}
	panic(r)
}

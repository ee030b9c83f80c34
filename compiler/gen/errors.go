package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidDeclaration indicates a type that cannot receive generated members.
	ErrInvalidDeclaration = errors.New("veneer: invalid declaration")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("veneer: missing configuration")
	// ErrGenerationFailed indicates a component failure.
	ErrGenerationFailed = errors.New("veneer: code generation failed")
	// ErrTemplate indicates a template that failed to execute or parse.
	ErrTemplate = errors.New("veneer: template error")
	// ErrUnresolvedType indicates that a component could not determine a
	// type it needs. Components return it to mark an occurrence as skipped.
	ErrUnresolvedType = errors.New("veneer: unresolved type")
	// ErrSkip marks an occurrence a component chose not to generate.
	ErrSkip = errors.New("veneer: skipped")
)

// Skip returns an error that records the occurrence as skipped with reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkip, reason)
}

// IsSkip reports whether err marks a skipped occurrence rather than a
// failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrSkip) || errors.Is(err, ErrUnresolvedType)
}

// DeclarationError represents a structural problem with an annotated type.
type DeclarationError struct {
	Type    string
	Member  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	var b strings.Builder
	b.WriteString("veneer: declaration error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Member != "" {
		b.WriteString(" member ")
		b.WriteString(e.Member)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for DeclarationError.
func (e *DeclarationError) Is(target error) bool {
	return target == ErrInvalidDeclaration
}

// NewDeclarationError creates a new DeclarationError.
func NewDeclarationError(typeName, member, message string, cause error) *DeclarationError {
	return &DeclarationError{
		Type:    typeName,
		Member:  member,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("veneer: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("veneer: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a failed component invocation.
type GenerationError struct {
	Component string
	Type      string
	Member    string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("veneer: generation error")
	if e.Component != "" {
		b.WriteString(" in component ")
		b.WriteString(e.Component)
	}
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Member != "" {
		b.WriteString(" member ")
		b.WriteString(e.Member)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(component, typeName, member, message string, cause error) *GenerationError {
	return &GenerationError{
		Component: component,
		Type:      typeName,
		Member:    member,
		Message:   message,
		Cause:     cause,
	}
}

// TemplateError represents a template that could not be expanded or whose
// expansion is not valid Go.
type TemplateError struct {
	Name    string
	Scope   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	var b strings.Builder
	b.WriteString("veneer: template error")
	if e.Name != "" {
		fmt.Fprintf(&b, " in %q", e.Name)
	}
	if e.Scope != "" {
		b.WriteString(" (scope: ")
		b.WriteString(e.Scope)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for TemplateError.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(name, scope, message string, cause error) *TemplateError {
	return &TemplateError{
		Name:    name,
		Scope:   scope,
		Message: message,
		Cause:   cause,
	}
}

// IsDeclarationError reports whether the error is a DeclarationError.
func IsDeclarationError(err error) bool {
	var declErr *DeclarationError
	return errors.As(err, &declErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsTemplateError reports whether the error is a TemplateError.
func IsTemplateError(err error) bool {
	var tmplErr *TemplateError
	return errors.As(err, &tmplErr)
}

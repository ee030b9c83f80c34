package gen

import (
	"fmt"
	"go/token"
	"sync"
)

// Severity of a diagnostic.
type Severity int

// Severities.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic codes.
const (
	// CodeNotPartial: the type is an alias and cannot receive methods.
	CodeNotPartial = "VN001"
	// CodeFileLocal: the type is declared inside a function body.
	CodeFileLocal = "VN002"
	// CodeNestedTopLevel: the type asks to be nested in a type that is not
	// generated, is itself, or would form a cycle.
	CodeNestedTopLevel = "VN003"
	// CodeMissingPackage: the package has no name.
	CodeMissingPackage = "VN004"
	// CodeDuplicateMember: a generated member collides with another member.
	CodeDuplicateMember = "VN010"
	// CodeTemplateParse: a template expansion is not valid Go.
	CodeTemplateParse = "VN011"
	// CodeComponentFailure: a component invocation failed.
	CodeComponentFailure = "VN020"
)

// Diagnostic is a problem found while generating a package.
type Diagnostic struct {
	Code     string
	Severity Severity
	Type     string
	Message  string
	Pos      token.Position
}

// String formats d as "file:line:col: severity VNnnn: message".
func (d Diagnostic) String() string {
	pos := d.Pos.String()
	if pos == "-" {
		pos = d.Type
	}
	return fmt.Sprintf("%s: %s %s: %s", pos, d.Severity, d.Code, d.Message)
}

// Outcome of one component invocation.
type Outcome int

// Outcomes.
const (
	Generated Outcome = iota
	Skipped
	Failed
)

// String returns the name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Generated:
		return "generated"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Entry records one component invocation.
type Entry struct {
	Type      string
	Member    string
	Marker    string
	Component string
	Outcome   Outcome
	Reason    string
}

// Report collects the entries and diagnostics of a run. It is safe for
// concurrent use.
type Report struct {
	mu          sync.Mutex
	entries     []Entry
	diagnostics []Diagnostic
}

func (r *Report) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *Report) diagnose(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Merge appends the entries and diagnostics of o.
func (r *Report) Merge(o *Report) {
	if o == nil || o == r {
		return
	}
	entries, diagnostics := o.Entries(), o.Diagnostics()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	r.diagnostics = append(r.diagnostics, diagnostics...)
}

// Entries returns a copy of the recorded entries.
func (r *Report) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Diagnostics returns a copy of the recorded diagnostics.
func (r *Report) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Filter returns the entries with the given outcome.
func (r *Report) Filter(o Outcome) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Outcome == o {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether an error diagnostic was recorded.
func (r *Report) HasErrors() bool {
	for _, d := range r.Diagnostics() {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

package gen

import (
	"go/token"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport(t *testing.T) {
	r := &Report{}
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := Generated
			if i%2 == 0 {
				o = Skipped
			}
			r.add(Entry{Type: "T", Outcome: o})
		}()
	}
	wg.Wait()
	assert.Len(t, r.Entries(), 10)
	assert.Len(t, r.Filter(Skipped), 5)
	assert.Empty(t, r.Filter(Failed))
	assert.False(t, r.HasErrors())

	r.diagnose(Diagnostic{Code: CodeDuplicateMember, Severity: SeverityWarning})
	assert.False(t, r.HasErrors())

	other := &Report{}
	other.diagnose(Diagnostic{Code: CodeNotPartial, Severity: SeverityError})
	other.add(Entry{Outcome: Failed})
	r.Merge(other)
	r.Merge(r)
	r.Merge(nil)
	assert.True(t, r.HasErrors())
	assert.Len(t, r.Diagnostics(), 2)
	assert.Len(t, r.Filter(Failed), 1)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code:     CodeFileLocal,
		Severity: SeverityError,
		Type:     "local",
		Message:  "type is declared inside a function body",
		Pos:      token.Position{Filename: "demo.go", Line: 3, Column: 2},
	}
	assert.Equal(t, "demo.go:3:2: error VN002: type is declared inside a function body", d.String())

	d.Pos = token.Position{}
	d.Severity = SeverityWarning
	assert.Equal(t, "local: warning VN002: type is declared inside a function body", d.String())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "generated", Generated.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "info", SeverityInfo.String())
}

package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPascal(t *testing.T) {
	tests := map[string]string{
		"aField":  "AField",
		"_aField": "AField",
		"__x":     "X",
		"AInt":    "AInt",
		"map":     "Map",
		"été":     "Été",
		"_":       "",
		"":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Pascal(in), in)
	}
	assert.Equal(t, Pascal("_aField"), Pascal("aField"))
}

func TestReceiverName(t *testing.T) {
	tests := map[string]string{
		"Demo1":   "d",
		"Item":    "recv",
		"Order":   "recv",
		"Value":   "recv",
		"_Hidden": "recv",
		"_Zip":    "z",
		"Zed":     "z",
		"":        "recv",
	}
	for in, want := range tests {
		assert.Equal(t, want, ReceiverName(in), in)
	}
}

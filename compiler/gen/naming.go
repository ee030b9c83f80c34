package gen

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pascal returns the exported spelling of a member name: leading
// underscores are stripped and the first rune is title-cased, the rest is
// kept as written. Both "_aField" and "aField" become "AField".
func Pascal(name string) string {
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(name)
	return cases.Title(language.Und, cases.NoLower).String(string(r)) + name[size:]
}

// LocalNames are the parameter and local variable names used in generated
// method bodies. The receiver name never collides with them.
var LocalNames = []string{
	"action", "h", "i", "k", "key", "o", "other", "tag", "v", "value", "yield",
}

// ReceiverName returns the receiver name for a type: its lowercased first
// letter, or "recv" when that would collide with a local name.
func ReceiverName(typeName string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimLeft(typeName, "_"))
	name := string(unicode.ToLower(r))
	if r == utf8.RuneError || !unicode.IsLetter(r) || slices.Contains(LocalNames, name) {
		return "recv"
	}
	return name
}

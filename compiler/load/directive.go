package load

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// ParseDirectives extracts the directives with the given prefix from the
// comment groups, in order. A directive whose argument list is not closed on
// its own line continues on the following comment lines, which allows
// multi-line raw strings:
//
//	//veneer:Template(place = "namespace", text = `
//	//func New{{.Type}}() *{{.Type}} { return new({{.Type}}) }
//	//`)
func ParseDirectives(prefix string, groups ...*ast.CommentGroup) []Annotation {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	lead := prefix + ":"
	var out []Annotation
	for _, g := range groups {
		if g == nil {
			continue
		}
		list := g.List
		for i := 0; i < len(list); i++ {
			text, ok := strings.CutPrefix(list[i].Text, "//")
			if !ok {
				continue
			}
			// gofmt may insert a space after the slashes of doc comments.
			text, ok = strings.CutPrefix(strings.TrimLeft(text, " \t"), lead)
			if !ok {
				continue
			}
			pos := list[i].Slash
			body := strings.TrimSpace(text)
			for !balanced(body) && i+1 < len(list) && strings.HasPrefix(list[i+1].Text, "//") {
				i++
				line := strings.TrimPrefix(list[i].Text, "//")
				body += "\n" + strings.TrimPrefix(line, " ")
			}
			if a, ok := parseDirective(body); ok {
				a.Pos = pos
				out = append(out, a)
			}
		}
	}
	return out
}

// parseDirective parses "Name" or "Name(args)".
func parseDirective(body string) (Annotation, bool) {
	a := Annotation{Text: body}
	open := strings.IndexByte(body, '(')
	if open < 0 {
		a.Name = strings.TrimSpace(body)
		return a, isIdent(a.Name)
	}
	a.Name = strings.TrimSpace(body[:open])
	if !isIdent(a.Name) {
		return a, false
	}
	rest := strings.TrimSpace(body[open+1:])
	if !strings.HasSuffix(rest, ")") {
		return a, false
	}
	rest = rest[:len(rest)-1]
	for i, part := range splitTop(rest, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		arg := Arg{}
		if eq := indexTop(part, '='); eq > 0 && isKey(strings.TrimSpace(part[:eq])) &&
			(eq+1 >= len(part) || part[eq+1] != '=') {
			arg.Key = strings.TrimSpace(part[:eq])
			arg.Text = strings.TrimSpace(part[eq+1:])
		} else {
			arg.Key = positional(i)
			arg.Text = part
		}
		if expr, err := parser.ParseExpr(arg.Text); err == nil {
			arg.Expr = expr
		}
		a.Args = append(a.Args, arg)
	}
	return a, true
}

// positional returns the bag key of an argument written without a key.
func positional(i int) string {
	return "arg" + strconv.Itoa(i)
}

func isIdent(s string) bool {
	return s != "" && token.IsIdentifier(s)
}

// isKey reports whether s can name an argument. Keywords such as type are
// allowed.
func isKey(s string) bool {
	return isIdent(s) || token.Lookup(s).IsKeyword()
}

// splitTop splits s on sep outside of brackets and string literals.
func splitTop(s string, sep byte) []string {
	var (
		parts []string
		start int
	)
	scan(s, func(i int, depth int) {
		if depth == 0 && s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	})
	return append(parts, s[start:])
}

// indexTop returns the index of the first c outside of brackets and string
// literals, or -1.
func indexTop(s string, c byte) int {
	idx := -1
	scan(s, func(i int, depth int) {
		if idx < 0 && depth == 0 && s[i] == c {
			idx = i
		}
	})
	return idx
}

// balanced reports whether all brackets and literals in s are closed.
func balanced(s string) bool {
	return scan(s, func(int, int) {})
}

// scan walks s calling fn for every byte outside of a string literal with the
// current bracket depth. It reports whether s ends balanced.
func scan(s string, fn func(i int, depth int)) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
			continue
		case '(', '[', '{':
			fn(i, depth)
			depth++
			continue
		case ')', ']', '}':
			depth--
		}
		fn(i, depth)
	}
	return depth <= 0 && quote == 0
}

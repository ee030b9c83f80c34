package load

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/syssam/veneer/schema/marker"
)

// Bag evaluates the arguments of a into a marker bag. Each argument is one
// of: a bool, string or numeric literal; nameof(X), which yields the bare
// name of X; or a constant/enum member reference resolved through r.
// Anything else yields the trailing identifier segment of its text.
func (a Annotation) Bag(r Resolver) marker.Bag {
	b := make(marker.Bag, len(a.Args))
	for _, arg := range a.Args {
		b[arg.Key] = evalArg(arg, r, a.Pos)
	}
	return b
}

// Restore evaluates a and restores its typed marker.
func (a Annotation) Restore(r Resolver) (marker.Marker, error) {
	return marker.Restore(marker.Kind(a.Name), a.Bag(r))
}

func evalArg(arg Arg, r Resolver, pos token.Pos) any {
	if arg.Expr == nil {
		return trailing(arg.Text)
	}
	if v, ok := evalExpr(arg.Expr, r, pos); ok {
		return v
	}
	return trailing(types.ExprString(arg.Expr))
}

func evalExpr(expr ast.Expr, r Resolver, pos token.Pos) (any, bool) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return evalExpr(e.X, r, pos)
	case *ast.BasicLit:
		return literal(e)
	case *ast.UnaryExpr:
		if e.Op == token.SUB {
			if v, ok := evalExpr(e.X, r, pos); ok {
				switch n := v.(type) {
				case int64:
					return -n, true
				case float64:
					return -n, true
				}
			}
		}
	case *ast.CallExpr:
		if fn, ok := e.Fun.(*ast.Ident); ok && fn.Name == "nameof" && len(e.Args) == 1 {
			return nameOf(e.Args[0]), true
		}
	case *ast.Ident:
		switch e.Name {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	if r != nil {
		if c, ok := r.Constant(expr, pos); ok {
			return c.Value, true
		}
	}
	return nil, false
}

// nameOf returns the bare name of the referenced symbol.
func nameOf(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.StarExpr:
		return nameOf(e.X)
	case *ast.ParenExpr:
		return nameOf(e.X)
	case *ast.IndexExpr:
		return nameOf(e.X)
	case *ast.IndexListExpr:
		return nameOf(e.X)
	default:
		return trailing(types.ExprString(expr))
	}
}

func literal(lit *ast.BasicLit) (any, bool) {
	switch lit.Kind {
	case token.STRING, token.CHAR:
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, false
		}
		return s, true
	case token.INT:
		n, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case token.FLOAT:
		f, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

// parseTypeExpr parses a type written as text.
func parseTypeExpr(text string) (ast.Expr, error) {
	return parser.ParseExpr(strings.TrimSpace(text))
}

// ParseTypeExpr parses a directive type override such as "map[string]int".
func ParseTypeExpr(text string) (ast.Expr, error) {
	return parseTypeExpr(text)
}

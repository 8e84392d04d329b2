package testkit

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// CheckProgram runs a minimal set of invariants on generated source:
// 1) it parses as a script
// 2) it declares exactly wantFunctions functions
// 3) braces and parentheses balance
// 4) no identifier is read before the var declaration it resolves to
func CheckProgram(src string, wantFunctions int) error {
	prog, err := parser.ParseFile(nil, "generated.js", src, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if prog == nil {
		return fmt.Errorf("parse returned no program")
	}

	if got := countFunctions(prog.Body); got != wantFunctions {
		return fmt.Errorf("declared functions: got %d, want %d", got, wantFunctions)
	}

	if depth := balance(src, '{', '}'); depth != 0 {
		return fmt.Errorf("unbalanced braces: depth %d at end", depth)
	}
	if depth := balance(src, '(', ')'); depth != 0 {
		return fmt.Errorf("unbalanced parentheses: depth %d at end", depth)
	}
	return CheckVarHoisting(src)
}

// countFunctions walks statement lists; generated functions are only ever
// declarations, never expressions.
func countFunctions(stmts []ast.Statement) int {
	n := 0
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			n++
			if s.Function != nil && s.Function.Body != nil {
				n += countFunctions(s.Function.Body.List)
			}
		case *ast.BlockStatement:
			n += countFunctions(s.List)
		case *ast.IfStatement:
			n += countFunctions([]ast.Statement{s.Consequent})
			if s.Alternate != nil {
				n += countFunctions([]ast.Statement{s.Alternate})
			}
		case *ast.ForStatement:
			n += countFunctions([]ast.Statement{s.Body})
		}
	}
	return n
}

func balance(src string, open, closeCh byte) int {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' && (i == 0 || src[i-1] != '\\'):
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closeCh:
			depth--
		}
	}
	return depth
}

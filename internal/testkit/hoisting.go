package testkit

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// funcScope is the set of names one function (or the script) binds.
// Parameters and function declarations are bound on entry; a var name only
// reads as intended after its first declaration in source order, because
// hoisting makes earlier uses see the local, still undefined, binding.
type funcScope struct {
	parent *funcScope
	params map[string]bool
	vars   map[string]file.Idx
}

func (s *funcScope) resolve(name string) *funcScope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.params[name] {
			return sc
		}
		if _, ok := sc.vars[name]; ok {
			return sc
		}
	}
	return nil
}

// CheckVarHoisting reports the first identifier used before the var
// declaration it resolves to.
func CheckVarHoisting(src string) error {
	prog, err := parser.ParseFile(nil, "generated.js", src, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	h := &hoistChecker{file: prog.File}
	root := h.enter(nil, nil, prog.Body)
	h.stmts(root, prog.Body)
	return h.err
}

type hoistChecker struct {
	file *file.File
	err  error
}

func (h *hoistChecker) enter(parent *funcScope, params *ast.ParameterList, body []ast.Statement) *funcScope {
	sc := &funcScope{parent: parent, params: map[string]bool{}, vars: map[string]file.Idx{}}
	if params != nil {
		for _, b := range params.List {
			if id, ok := b.Target.(*ast.Identifier); ok {
				sc.params[id.Name.String()] = true
			}
		}
	}
	collectDecls(sc, body)
	return sc
}

// collectDecls records var bindings and function declarations in body,
// without descending into nested functions.
func collectDecls(sc *funcScope, stmts []ast.Statement) {
	addVars := func(list []*ast.Binding) {
		for _, b := range list {
			id, ok := b.Target.(*ast.Identifier)
			if !ok {
				continue
			}
			name := id.Name.String()
			if _, seen := sc.vars[name]; !seen {
				sc.vars[name] = id.Idx
			}
		}
	}
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableStatement:
			addVars(s.List)
		case *ast.FunctionDeclaration:
			if s.Function != nil && s.Function.Name != nil {
				sc.params[s.Function.Name.Name.String()] = true
			}
		case *ast.BlockStatement:
			collectDecls(sc, s.List)
		case *ast.IfStatement:
			collectDecls(sc, []ast.Statement{s.Consequent})
			if s.Alternate != nil {
				collectDecls(sc, []ast.Statement{s.Alternate})
			}
		case *ast.ForStatement:
			if init, ok := s.Initializer.(*ast.ForLoopInitializerVarDeclList); ok {
				addVars(init.List)
			}
			collectDecls(sc, []ast.Statement{s.Body})
		}
	}
}

func (h *hoistChecker) stmts(sc *funcScope, stmts []ast.Statement) {
	for _, stmt := range stmts {
		h.stmt(sc, stmt)
	}
}

func (h *hoistChecker) stmt(sc *funcScope, stmt ast.Statement) {
	if h.err != nil || stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		h.bindings(sc, s.List)
	case *ast.ExpressionStatement:
		h.expr(sc, s.Expression)
	case *ast.ReturnStatement:
		h.expr(sc, s.Argument)
	case *ast.BlockStatement:
		h.stmts(sc, s.List)
	case *ast.IfStatement:
		h.expr(sc, s.Test)
		h.stmt(sc, s.Consequent)
		h.stmt(sc, s.Alternate)
	case *ast.ForStatement:
		switch init := s.Initializer.(type) {
		case *ast.ForLoopInitializerVarDeclList:
			h.bindings(sc, init.List)
		case *ast.ForLoopInitializerExpression:
			h.expr(sc, init.Expression)
		}
		h.expr(sc, s.Test)
		h.expr(sc, s.Update)
		h.stmt(sc, s.Body)
	case *ast.FunctionDeclaration:
		h.function(sc, s.Function)
	}
}

func (h *hoistChecker) bindings(sc *funcScope, list []*ast.Binding) {
	for _, b := range list {
		h.expr(sc, b.Initializer)
	}
}

func (h *hoistChecker) function(sc *funcScope, fn *ast.FunctionLiteral) {
	if fn == nil || fn.Body == nil {
		return
	}
	inner := h.enter(sc, fn.ParameterList, fn.Body.List)
	h.stmts(inner, fn.Body.List)
}

func (h *hoistChecker) expr(sc *funcScope, e ast.Expression) {
	if h.err != nil || e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Identifier:
		h.use(sc, x)
	case *ast.AssignExpression:
		h.expr(sc, x.Left)
		h.expr(sc, x.Right)
	case *ast.BinaryExpression:
		h.expr(sc, x.Left)
		h.expr(sc, x.Right)
	case *ast.UnaryExpression:
		h.expr(sc, x.Operand)
	case *ast.CallExpression:
		h.expr(sc, x.Callee)
		for _, arg := range x.ArgumentList {
			h.expr(sc, arg)
		}
	case *ast.FunctionLiteral:
		h.function(sc, x)
	}
}

func (h *hoistChecker) use(sc *funcScope, id *ast.Identifier) {
	name := id.Name.String()
	owner := sc.resolve(name)
	if owner == nil || owner.params[name] {
		return
	}
	if decl := owner.vars[name]; id.Idx < decl {
		h.err = fmt.Errorf("%s: %q is used before its var declaration at %s",
			h.position(id.Idx), name, h.position(decl))
	}
}

func (h *hoistChecker) position(idx file.Idx) file.Position {
	return h.file.Position(int(idx) - h.file.Base())
}

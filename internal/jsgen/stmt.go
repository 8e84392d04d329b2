package jsgen

import (
	"strings"

	"jsfuzz/internal/rng"
)

type stmtKind uint8

const (
	stmtVar stmtKind = iota
	stmtAssign
	stmtExpr
	stmtIf
	stmtFor
	stmtFunc
	stmtReturn
)

// block emits 1..MaxStatements statements, stopping early after a return.
func (g *generator) block() {
	n := 1 + g.src.IntN(g.opts.MaxStatements)
	for range n {
		if g.err != nil {
			return
		}
		if err := g.ctx.Err(); err != nil {
			g.err = err
			return
		}
		if g.statement() == stmtReturn {
			return
		}
	}
}

// statementPool lists the statement kinds legal at this point with their weights.
func (g *generator) statementPool() ([]stmtKind, []int) {
	kinds := []stmtKind{stmtVar, stmtAssign, stmtExpr}
	weights := []int{4, 3, 2}
	if g.nest < g.opts.MaxDepth {
		kinds = append(kinds, stmtIf, stmtFor)
		weights = append(weights, 2, 1)
	}
	// Function declarations stay at function-body level.
	if g.nest == 0 && g.table.ScopeCount()-1 < g.opts.MaxDepth {
		kinds = append(kinds, stmtFunc)
		weights = append(weights, 3)
	}
	if g.table.ScopeCount() > 1 {
		kinds = append(kinds, stmtReturn)
		weights = append(weights, 1)
	}
	return kinds, weights
}

func (g *generator) statement() stmtKind {
	kinds, weights := g.statementPool()
	kind, err := rng.Choose(g.src, kinds, weights)
	if err != nil {
		g.err = err
		return kind
	}
	g.stats.Statements++

	switch kind {
	case stmtVar:
		g.varDecl()
	case stmtAssign:
		g.assign()
	case stmtExpr:
		g.line("%s;", g.expr(0))
	case stmtIf:
		g.ifStmt()
	case stmtFor:
		g.forStmt()
	case stmtFunc:
		g.funcDecl()
	case stmtReturn:
		g.returnStmt()
	}
	return kind
}

func (g *generator) varDecl() {
	// The name is fresh, so the initializer cannot mention it.
	init := g.expr(0)
	name := g.freshName("v")
	g.table.AddSymbol(name)
	g.stats.Declarations++
	g.line("var %s = %s;", name, init)
}

func (g *generator) assign() {
	target, ok := g.table.PickRandomSymbol(false)
	if !ok || g.fixed[target] {
		g.stats.Fallbacks++
		g.varDecl()
		return
	}
	g.stats.References++
	g.line("%s = %s;", target, g.expr(0))
}

func (g *generator) ifStmt() {
	g.line("if (%s) {", g.expr(0))
	g.nest++
	g.indent++
	g.block()
	g.indent--
	if rng.Percent(g.src, 50) {
		g.line("} else {")
		g.indent++
		g.block()
		g.indent--
	}
	g.nest--
	g.line("}")
}

func (g *generator) forStmt() {
	v := g.freshName("i")
	g.table.AddSymbol(v)
	g.fixed[v] = true
	g.stats.Declarations++
	bound := 1 + g.src.IntN(5)
	g.line("for (var %s = 0; %s < %d; %s++) {", v, v, bound, v)
	g.nest++
	g.indent++
	g.block()
	g.indent--
	g.nest--
	g.line("}")
}

func (g *generator) funcDecl() {
	name := g.freshName("f")
	g.table.AddSymbol(name)
	g.stats.Functions++
	g.stats.Declarations++

	g.enterScope()
	params := make([]string, g.src.IntN(3))
	for i := range params {
		params[i] = g.paramName("p")
		g.table.AddSymbol(params[i])
		g.stats.Declarations++
	}
	g.line("function %s(%s) {", name, strings.Join(params, ", "))

	savedNest := g.nest
	g.nest = 0
	g.indent++
	g.block()
	g.indent--
	g.nest = savedNest

	g.line("}")
	g.leaveScope()
}

func (g *generator) returnStmt() {
	if rng.Percent(g.src, 20) {
		g.line("return;")
		return
	}
	g.line("return %s;", g.expr(0))
}

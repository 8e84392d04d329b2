package jsgen

import (
	"fmt"
	"strconv"
	"strings"

	"jsfuzz/internal/rng"
)

type exprKind uint8

const (
	exprLiteral exprKind = iota
	exprRef
	exprBinary
	exprUnary
	exprCall
)

var (
	exprKinds   = []exprKind{exprLiteral, exprRef, exprBinary, exprUnary, exprCall}
	exprWeights = []int{3, 4, 3, 1, 2}

	binaryOps = []string{"+", "-", "*", "/", "%", "<", ">", "===", "!==", "&&", "||"}
	unaryOps  = []string{"!", "-", "typeof "}
)

func (g *generator) expr(depth int) string {
	if depth >= g.opts.MaxExprDepth {
		return g.leaf()
	}
	kind, err := rng.Choose(g.src, exprKinds, exprWeights)
	if err != nil {
		g.err = err
		return "0"
	}
	switch kind {
	case exprRef:
		return g.refOrLiteral()
	case exprBinary:
		op := binaryOps[g.src.IntN(len(binaryOps))]
		left := g.expr(depth + 1)
		right := g.expr(depth + 1)
		return "(" + left + " " + op + " " + right + ")"
	case exprUnary:
		op := unaryOps[g.src.IntN(len(unaryOps))]
		return "(" + op + g.expr(depth+1) + ")"
	case exprCall:
		return g.call(depth)
	default:
		return g.literal()
	}
}

func (g *generator) leaf() string {
	if rng.Percent(g.src, 60) {
		return g.refOrLiteral()
	}
	return g.literal()
}

// refOrLiteral falls back to a literal when the pick hits a shadowed name.
func (g *generator) refOrLiteral() string {
	if name, ok := g.reference(); ok {
		return name
	}
	g.stats.Fallbacks++
	return g.literal()
}

func (g *generator) call(depth int) string {
	callee, ok := g.reference()
	if !ok {
		g.stats.Fallbacks++
		return g.literal()
	}
	args := make([]string, g.src.IntN(3))
	for i := range args {
		args[i] = g.expr(depth + 1)
	}
	return callee + "(" + strings.Join(args, ", ") + ")"
}

func (g *generator) literal() string {
	switch g.src.IntN(4) {
	case 0:
		return strconv.Itoa(g.src.IntN(100))
	case 1:
		return fmt.Sprintf("%q", "s"+strconv.Itoa(g.src.IntN(10)))
	case 2:
		return strconv.FormatBool(rng.Percent(g.src, 50))
	default:
		return "null"
	}
}

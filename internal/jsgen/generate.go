// Package jsgen synthesizes random, syntactically valid JavaScript programs.
//
// Every identifier reference is drawn from a symtab.ScopeStack, so programs
// reuse names that are actually visible at that point, and every random
// decision comes from one rng.Source seeded per program: the same seed and
// options always give the same source text.
package jsgen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"jsfuzz/internal/rng"
	"jsfuzz/internal/symtab"
	"jsfuzz/internal/trace"
)

type generator struct {
	ctx    context.Context
	src    rng.Source
	opts   Options
	table  *symtab.ScopeStack
	out    strings.Builder
	indent int
	nest   int // if/for nesting inside the current function
	fresh  int
	stats  Stats
	// fixed names are never assignment targets: globals the program did not
	// declare and loop counters.
	fixed map[string]bool
	err    error

	tracer trace.Tracer
	span   uint64
}

// Generate builds one program from seed.
func Generate(ctx context.Context, seed uint64, opts Options) (*Program, error) {
	opts = opts.withDefaults()
	// Global scope plus one scope per nesting level.
	scopes, err := safecast.Conv[uint](opts.MaxDepth + 1)
	if err != nil {
		return nil, fmt.Errorf("generate seed %d: max depth %d: %w", seed, opts.MaxDepth, err)
	}
	src := rng.New(seed)
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.LayerCase, "generate", 0).WithField("seed", strconv.FormatUint(seed, 10))

	g := &generator{
		ctx:  ctx,
		src:  src,
		opts: opts,
		table: symtab.New(src, symtab.Options{
			ExtraGlobals: opts.ExtraGlobals,
			Hints:        symtab.Hints{Scopes: scopes},
		}),
		fixed:  make(map[string]bool),
		tracer: tracer,
		span:   span.ID(),
	}
	for _, name := range symtab.BuiltinGlobals() {
		g.fixed[name] = true
	}
	for _, name := range opts.ExtraGlobals {
		g.fixed[name] = true
	}
	g.stats.MaxScopes = g.table.ScopeCount()
	g.block()

	if g.err != nil {
		span.End("aborted")
		return nil, fmt.Errorf("generate seed %d: %w", seed, g.err)
	}
	if g.table.ScopeCount() != 1 {
		span.End("unbalanced")
		return nil, fmt.Errorf("generate seed %d: %d scopes left open", seed, g.table.ScopeCount()-1)
	}
	if err := g.table.Validate(); err != nil {
		span.End("invalid")
		return nil, fmt.Errorf("generate seed %d: symbol table: %w", seed, err)
	}

	span.WithField("statements", strconv.Itoa(g.stats.Statements)).
		WithField("shadowed", strconv.Itoa(g.stats.Shadowed)).
		End("")
	return &Program{Seed: seed, Source: g.out.String(), Stats: g.stats}, nil
}

func (g *generator) line(format string, args ...any) {
	g.out.WriteString(strings.Repeat("  ", g.indent))
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

func (g *generator) freshName(prefix string) string {
	name := prefix + strconv.Itoa(g.fresh)
	g.fresh++
	return name
}

// enterScope and leaveScope bracket a function body.
func (g *generator) enterScope() {
	g.table.AddScope()
	if n := g.table.ScopeCount(); n > g.stats.MaxScopes {
		g.stats.MaxScopes = n
	}
	trace.Point(g.tracer, trace.LayerScope, "push", "", g.span, map[string]string{
		"depth": strconv.Itoa(g.table.ScopeCount()),
		"size":  strconv.Itoa(g.table.Size()),
	})
}

func (g *generator) leaveScope() {
	g.table.RemoveScope()
	trace.Point(g.tracer, trace.LayerScope, "pop", "", g.span, map[string]string{
		"depth": strconv.Itoa(g.table.ScopeCount()),
		"size":  strconv.Itoa(g.table.Size()),
	})
}

// reference picks a visible name. Outer-only picks are requested with
// NonLocalPercent probability whenever an outer symbol exists.
func (g *generator) reference() (string, bool) {
	excludeLocal := g.table.ScopeCount() > 1 &&
		g.table.HasNonLocalSymbols() &&
		rng.Percent(g.src, g.opts.NonLocalPercent)
	name, ok := g.table.PickRandomSymbol(excludeLocal)
	if !ok {
		g.stats.Shadowed++
		trace.Point(g.tracer, trace.LayerPick, "shadowed", "", g.span, nil)
		return "", false
	}
	g.stats.References++
	trace.Point(g.tracer, trace.LayerPick, "pick", name, g.span, map[string]string{
		"outer": strconv.FormatBool(excludeLocal),
	})
	return name, true
}

// paramName returns a parameter name: usually fresh, but with ShadowPercent
// probability an outer name the current scope does not hold yet. Only
// parameters may reuse outer names: they are bound on function entry, while a
// var is hoisted and would capture references emitted before it.
func (g *generator) paramName(prefix string) string {
	if g.table.ScopeCount() > 1 && g.table.HasNonLocalSymbols() && rng.Percent(g.src, g.opts.ShadowPercent) {
		if name, ok := g.table.PickRandomSymbol(true); ok && name != "arguments" {
			trace.Point(g.tracer, trace.LayerPick, "shadow", name, g.span, nil)
			return name
		}
	}
	return g.freshName(prefix)
}

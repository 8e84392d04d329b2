package jsgen

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"jsfuzz/internal/symtab"
	"jsfuzz/internal/testkit"
)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	for seed := uint64(0); seed < 20; seed++ {
		a, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		b, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if a.Source != b.Source {
			t.Fatalf("seed %d produced different programs:\n%s\n---\n%s", seed, a.Source, b.Source)
		}
		if a.Stats != b.Stats {
			t.Fatalf("seed %d produced different stats: %+v vs %+v", seed, a.Stats, b.Stats)
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	seen := make(map[string]struct{})
	for seed := uint64(1); seed <= 30; seed++ {
		p, err := Generate(context.Background(), seed, DefaultOptions())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		seen[p.Source] = struct{}{}
	}
	if len(seen) < 25 {
		t.Fatalf("only %d distinct programs out of 30 seeds", len(seen))
	}
}

func TestGeneratedProgramsHoldInvariants(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 4
	opts.ShadowPercent = 50
	opts.NonLocalPercent = 70
	for seed := uint64(1); seed <= 200; seed++ {
		p, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if err := testkit.CheckProgram(p.Source, p.Stats.Functions); err != nil {
			t.Fatalf("seed %d: %v\n%s", seed, err, p.Source)
		}
		if p.Stats.MaxScopes-1 > opts.MaxDepth {
			t.Fatalf("seed %d: nesting %d exceeds MaxDepth %d", seed, p.Stats.MaxScopes-1, opts.MaxDepth)
		}
	}
}

func TestMaxDepthZeroEmitsNoFunctions(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 0
	for seed := uint64(1); seed <= 50; seed++ {
		p, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if p.Stats.Functions != 0 || strings.Contains(p.Source, "function ") {
			t.Fatalf("seed %d: unexpected function:\n%s", seed, p.Source)
		}
		if strings.Contains(p.Source, "return") {
			t.Fatalf("seed %d: return outside a function:\n%s", seed, p.Source)
		}
	}
}

func TestShadowingProducesRejectedPicks(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepth = 3
	opts.ShadowPercent = 100
	opts.NonLocalPercent = 100
	shadowed, fallbacks := 0, 0
	for seed := uint64(1); seed <= 100; seed++ {
		p, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		shadowed += p.Stats.Shadowed
		fallbacks += p.Stats.Fallbacks
	}
	if shadowed == 0 {
		t.Fatalf("expected shadowed picks with aggressive shadowing")
	}
	if fallbacks < shadowed {
		t.Fatalf("every rejected reference should fall back: shadowed %d, fallbacks %d", shadowed, fallbacks)
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, 1, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtraGlobalsAreReferenced(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraGlobals = []string{"print"}
	found := false
	for seed := uint64(1); seed <= 100 && !found; seed++ {
		p, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		found = strings.Contains(p.Source, "print")
	}
	if !found {
		t.Fatalf("extra global never referenced in 100 programs")
	}
}

func TestVarsNeverCaptureEarlierReferences(t *testing.T) {
	for _, opts := range []Options{
		DefaultOptions(),
		{MaxDepth: 4, MaxStatements: 8, MaxExprDepth: 3, NonLocalPercent: 80, ShadowPercent: 100},
	} {
		for seed := uint64(1); seed <= 500; seed++ {
			p, err := Generate(context.Background(), seed, opts)
			if err != nil {
				t.Fatalf("seed %d: %v", seed, err)
			}
			if err := testkit.CheckVarHoisting(p.Source); err != nil {
				t.Fatalf("seed %d (shadow %d%%): %v\n%s", seed, opts.ShadowPercent, err, p.Source)
			}
		}
	}
}

var assignment = regexp.MustCompile(`(?m)^\s*([A-Za-z_$][\w$]*) = `)
var loopCounter = regexp.MustCompile(`^i\d+$`)

func TestAssignmentsSkipLoopCountersAndGlobals(t *testing.T) {
	opts := DefaultOptions()
	opts.ExtraGlobals = []string{"print"}
	fixed := map[string]bool{"print": true}
	for _, name := range symtab.BuiltinGlobals() {
		fixed[name] = true
	}
	assignments := 0
	for seed := uint64(1); seed <= 500; seed++ {
		p, err := Generate(context.Background(), seed, opts)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, m := range assignment.FindAllStringSubmatch(p.Source, -1) {
			assignments++
			if name := m[1]; fixed[name] || loopCounter.MatchString(name) {
				t.Fatalf("seed %d assigns to %q:\n%s", seed, name, p.Source)
			}
		}
	}
	if assignments == 0 {
		t.Fatalf("no assignments in 500 programs")
	}
}

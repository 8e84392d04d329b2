package symtab

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"jsfuzz/internal/rng"
)

// scriptedSource replays fixed draws, reduced modulo n.
type scriptedSource struct {
	draws []int
	pos   int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.draws[s.pos%len(s.draws)] % n
	s.pos++
	return v
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic %v does not wrap %v", err, target)
		}
	}()
	fn()
}

func TestNewSeedsGlobalScope(t *testing.T) {
	s := New(rng.New(1), Options{})
	if s.ScopeCount() != 1 {
		t.Fatalf("ScopeCount = %d, want 1", s.ScopeCount())
	}
	if s.Size() != len(builtinGlobals()) {
		t.Fatalf("Size = %d, want %d", s.Size(), len(builtinGlobals()))
	}
	if diff := cmp.Diff(builtinGlobals(), s.Global().Names()); diff != "" {
		t.Fatalf("global seed mismatch (-want +got):\n%s", diff)
	}
	if s.Current() != s.Global() {
		t.Fatalf("expected the global scope to be current")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestScopeHints(t *testing.T) {
	s := New(rng.New(1), Options{Hints: Hints{Scopes: 5}})
	if got := cap(s.scopes); got != 5 {
		t.Fatalf("cap(scopes) = %d, want 5", got)
	}
	if got := cap(New(rng.New(1), Options{}).scopes); got != 8 {
		t.Fatalf("default cap(scopes) = %d, want 8", got)
	}
	expectPanic(t, ErrInvalidArgument, func() {
		New(rng.New(1), Options{Hints: Hints{Scopes: math.MaxUint}})
	})
}

func TestBuiltinGlobalsReturnsCopy(t *testing.T) {
	a := BuiltinGlobals()
	a[0] = "mutated"
	if diff := cmp.Diff(builtinGlobals(), BuiltinGlobals()); diff != "" {
		t.Fatalf("BuiltinGlobals shares storage (-want +got):\n%s", diff)
	}
}

func TestExtraGlobalsAppendToSeed(t *testing.T) {
	s := New(rng.New(1), Options{ExtraGlobals: []string{"print", "console"}})
	if s.Size() != len(builtinGlobals())+2 {
		t.Fatalf("Size = %d, want %d", s.Size(), len(builtinGlobals())+2)
	}
	if !s.Global().Contains("console") || !s.Global().Contains("Math") {
		t.Fatalf("global scope missing seeded names: %v", s.Global().Names())
	}
}

func TestAddScopeSeedsArguments(t *testing.T) {
	s := New(rng.New(1), Options{})
	before := s.Size()
	s.AddScope()
	if s.ScopeCount() != 2 {
		t.Fatalf("ScopeCount = %d, want 2", s.ScopeCount())
	}
	if s.Size() != before+1 {
		t.Fatalf("Size = %d, want %d", s.Size(), before+1)
	}
	if diff := cmp.Diff([]string{"arguments"}, s.Current().Names()); diff != "" {
		t.Fatalf("function seed mismatch (-want +got):\n%s", diff)
	}
	if s.Current().Kind() != ScopeFunction {
		t.Fatalf("Kind = %s, want function", s.Current().Kind())
	}
}

func TestPushPopRestoresShape(t *testing.T) {
	s := New(rng.New(1), Options{})
	s.AddSymbol("g")
	size, count := s.Size(), s.ScopeCount()
	s.AddScope()
	s.RemoveScope()
	if s.Size() != size || s.ScopeCount() != count {
		t.Fatalf("push+pop changed shape: size %d->%d, scopes %d->%d", size, s.Size(), count, s.ScopeCount())
	}
}

func TestRemoveScopeDropsSymbols(t *testing.T) {
	s := New(rng.New(1), Options{})
	s.AddScope()
	s.AddSymbol("a")
	s.AddSymbol("b")
	s.AddScope()
	s.AddSymbol("c")
	if s.Size() != 12+3+2 {
		t.Fatalf("Size = %d, want 17", s.Size())
	}
	s.RemoveScope()
	if s.Size() != 12+3 {
		t.Fatalf("Size after pop = %d, want 15", s.Size())
	}
	if s.Current().Contains("c") {
		t.Fatalf("popped symbol still visible")
	}
	if !s.Current().Contains("a") {
		t.Fatalf("enclosing symbol lost")
	}
}

func TestRemoveGlobalScopePanics(t *testing.T) {
	s := New(rng.New(1), Options{})
	expectPanic(t, ErrScopeUnderflow, s.RemoveScope)
	if s.ScopeCount() != 1 {
		t.Fatalf("global scope removed despite panic")
	}
}

func TestSizeInvariantUnderRandomOps(t *testing.T) {
	driver := rng.New(99)
	s := New(rng.New(5), Options{})
	prevCount := s.ScopeCount()
	for step := range 2000 {
		switch op := driver.IntN(4); {
		case op == 0:
			s.AddScope()
			if s.ScopeCount() != prevCount+1 {
				t.Fatalf("step %d: AddScope moved count %d -> %d", step, prevCount, s.ScopeCount())
			}
		case op == 1 && s.ScopeCount() > 1:
			s.RemoveScope()
			if s.ScopeCount() != prevCount-1 {
				t.Fatalf("step %d: RemoveScope moved count %d -> %d", step, prevCount, s.ScopeCount())
			}
		default:
			s.AddSymbol(fmt.Sprintf("v%d", driver.IntN(20)))
		}
		prevCount = s.ScopeCount()
		if s.Size() != s.derivedSize() {
			t.Fatalf("step %d: Size %d, derived %d", step, s.Size(), s.derivedSize())
		}
		if err := s.Validate(); err != nil {
			t.Fatalf("step %d: validate: %v", step, err)
		}
	}
}

func TestHasNonLocalSymbols(t *testing.T) {
	s := New(rng.New(1), Options{})
	if s.HasNonLocalSymbols() {
		t.Fatalf("global-only stack cannot have non-locals")
	}
	s.AddScope()
	if !s.HasNonLocalSymbols() {
		t.Fatalf("builtins should count as non-local inside a function")
	}
}

func TestValidateReportsDrift(t *testing.T) {
	s := New(rng.New(1), Options{})
	s.AddScope()
	s.size += 3
	if err := s.Validate(); err == nil {
		t.Fatalf("expected drift to be reported")
	}
}

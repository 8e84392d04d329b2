// Package symtab tracks the identifiers visible while a program is being
// generated and picks existing ones to reuse.
//
// A ScopeStack holds the global scope at the bottom and one function scope per
// open function above it. Picks are weighted by scope population, so crowded
// scopes are sampled more often, and a pick from an outer scope whose name is
// redeclared locally is rejected rather than returned.
//
// A ScopeStack is not safe for concurrent use; parallel generators own one each.
package symtab

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"jsfuzz/internal/rng"
)

var (
	// ErrInvalidArgument is wrapped by panics raised for pick precondition violations.
	ErrInvalidArgument = errors.New("symtab: invalid argument")
	// ErrScopeUnderflow is wrapped by the panic raised when popping the global scope.
	ErrScopeUnderflow = errors.New("symtab: scope underflow")
)

// Hints provide optional capacity suggestions for the stack. Scopes is the
// deepest stack the caller expects, global scope included.
type Hints struct{ Scopes uint }

// Options configure a new ScopeStack.
type Options struct {
	// ExtraGlobals are appended to the builtin global seed.
	ExtraGlobals []string
	Hints        Hints
}

// ScopeStack is a stack of scopes plus a running symbol count.
type ScopeStack struct {
	scopes []*Scope
	size   int
	src    rng.Source
}

// New builds a stack holding only the seeded global scope.
func New(src rng.Source, opts Options) *ScopeStack {
	if src == nil {
		panic(fmt.Errorf("%w: nil random source", ErrInvalidArgument))
	}
	capacity, err := safecast.Conv[int](opts.Hints.Scopes)
	if err != nil {
		panic(fmt.Errorf("%w: scope capacity hint %d: %w", ErrInvalidArgument, opts.Hints.Scopes, err))
	}
	if capacity == 0 {
		capacity = 8
	}
	global := newScope(ScopeGlobal, mergePrelude(opts.ExtraGlobals))
	s := &ScopeStack{
		scopes: make([]*Scope, 0, capacity),
		src:    src,
	}
	s.scopes = append(s.scopes, global)
	s.size = global.Len()
	s.checkSize()
	return s
}

// AddScope pushes a function scope holding only "arguments".
func (s *ScopeStack) AddScope() {
	s.scopes = append(s.scopes, newScope(ScopeFunction, []string{argumentsName}))
	s.size++
	s.checkSize()
}

// RemoveScope pops the current scope together with its symbols.
// Popping the global scope is a caller bug and panics with ErrScopeUnderflow.
func (s *ScopeStack) RemoveScope() {
	if len(s.scopes) <= 1 {
		panic(fmt.Errorf("%w: cannot remove the global scope", ErrScopeUnderflow))
	}
	top := s.scopes[len(s.scopes)-1]
	s.size -= top.Len()
	s.scopes[len(s.scopes)-1] = nil
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.checkSize()
}

// AddSymbol declares name in the current scope. Duplicates are not rejected.
func (s *ScopeStack) AddSymbol(name string) {
	s.Current().add(name)
	s.size++
	s.checkSize()
}

// Size reports the number of symbols across all scopes.
func (s *ScopeStack) Size() int { return s.size }

// ScopeCount reports how many scopes are on the stack.
func (s *ScopeStack) ScopeCount() int { return len(s.scopes) }

// HasNonLocalSymbols reports whether any symbol lives outside the current scope.
func (s *ScopeStack) HasNonLocalSymbols() bool {
	return s.size > s.Current().Len()
}

// Current returns the innermost scope.
func (s *ScopeStack) Current() *Scope { return s.scopes[len(s.scopes)-1] }

// Global returns the bottom scope.
func (s *ScopeStack) Global() *Scope { return s.scopes[0] }

// Scope returns the scope at depth i, 0 being global.
func (s *ScopeStack) Scope(i int) *Scope { return s.scopes[i] }

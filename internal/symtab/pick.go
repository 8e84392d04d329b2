package symtab

import (
	"errors"
	"fmt"

	"jsfuzz/internal/rng"
)

// PickRandomSymbol returns an existing name, choosing the scope with
// probability proportional to its size and the name uniformly within it.
//
// With excludeLocal the current scope is never a source, and a name that the
// current scope redeclares is reported as ("", false): the outer binding is
// shadowed and unreachable from here. ("", false) is also returned when every
// eligible scope is empty.
//
// excludeLocal requires at least two scopes; violating that panics with an
// error wrapping ErrInvalidArgument.
func (s *ScopeStack) PickRandomSymbol(excludeLocal bool) (string, bool) {
	if excludeLocal {
		if len(s.scopes) <= 1 {
			panic(fmt.Errorf("%w: excluding the local scope needs an enclosing scope, have %d", ErrInvalidArgument, len(s.scopes)))
		}
	} else if len(s.scopes) == 0 {
		panic(fmt.Errorf("%w: empty scope stack", ErrInvalidArgument))
	}

	idx, err := s.chooseScope(excludeLocal)
	if err != nil {
		return "", false
	}
	scope := s.scopes[idx]
	name := scope.At(s.src.IntN(scope.Len()))
	if excludeLocal && s.Current().Contains(name) {
		return "", false
	}
	return name, true
}

// chooseScope returns the stack index of a randomly weighted scope.
func (s *ScopeStack) chooseScope(excludeLocal bool) (int, error) {
	items, weights := candidates(s.scopes, excludeLocal)
	idx, err := rng.Choose(s.src, items, weights)
	if err != nil {
		if errors.Is(err, rng.ErrNoWeight) {
			return 0, err
		}
		panic(fmt.Errorf("scope selection: %w", err))
	}
	return idx, nil
}

// candidates lists selectable scope indices bottom to top with their sizes as
// weights. The current scope is left out of both lists when excludeLocal is set.
func candidates(scopes []*Scope, excludeLocal bool) (items, weights []int) {
	n := len(scopes)
	if excludeLocal {
		n--
	}
	items = make([]int, 0, n)
	weights = make([]int, 0, n)
	for i := range n {
		items = append(items, i)
		weights = append(weights, scopes[i].Len())
	}
	return items, weights
}

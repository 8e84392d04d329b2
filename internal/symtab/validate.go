package symtab

import (
	"errors"
	"fmt"
)

// Validate re-derives the bookkeeping from the scopes and reports every
// inconsistency it finds, or nil.
func (s *ScopeStack) Validate() error {
	var errs []error

	if len(s.scopes) == 0 {
		return errors.New("scope stack is empty")
	}
	if s.scopes[0].Kind() != ScopeGlobal {
		errs = append(errs, fmt.Errorf("bottom scope has kind %s, want global", s.scopes[0].Kind()))
	}

	sum := 0
	for depth, scope := range s.scopes {
		if scope == nil {
			errs = append(errs, fmt.Errorf("scope %d is nil", depth))
			continue
		}
		sum += scope.Len()
		if depth == 0 {
			continue
		}
		if scope.Kind() != ScopeFunction {
			errs = append(errs, fmt.Errorf("scope %d has kind %s, want function", depth, scope.Kind()))
		}
		if scope.Len() == 0 || scope.At(0) != argumentsName {
			errs = append(errs, fmt.Errorf("scope %d does not start with %q", depth, argumentsName))
		}
		if err := scope.validateIndex(); err != nil {
			errs = append(errs, fmt.Errorf("scope %d: %w", depth, err))
		}
	}
	if err := s.scopes[0].validateIndex(); err != nil {
		errs = append(errs, fmt.Errorf("scope 0: %w", err))
	}
	if sum != s.size {
		errs = append(errs, fmt.Errorf("size counter %d does not match symbol total %d", s.size, sum))
	}

	return errors.Join(errs...)
}

// derivedSize sums scope lengths; used by debug builds to catch drift.
func (s *ScopeStack) derivedSize() int {
	sum := 0
	for _, scope := range s.scopes {
		sum += scope.Len()
	}
	return sum
}

func (s *Scope) validateIndex() error {
	seen := make(map[string]int, len(s.counts))
	for _, name := range s.symbols {
		seen[name]++
	}
	if len(seen) != len(s.counts) {
		return fmt.Errorf("name index holds %d names, symbols hold %d", len(s.counts), len(seen))
	}
	for name, n := range seen {
		if s.counts[name] != n {
			return fmt.Errorf("name %q counted %d times, declared %d times", name, s.counts[name], n)
		}
	}
	return nil
}

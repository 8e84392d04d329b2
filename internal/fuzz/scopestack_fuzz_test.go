package fuzztests

import (
	"fmt"
	"testing"

	"jsfuzz/internal/rng"
	"jsfuzz/internal/symtab"
)

func FuzzScopeStackOps(f *testing.F) {
	addOpSeeds(f)
	f.Fuzz(func(t *testing.T, seed uint64, ops []byte) {
		s := symtab.New(rng.New(seed), symtab.Options{})
		for i, b := range clamp(ops) {
			switch b & 0x3 {
			case opPush:
				s.AddScope()
			case opPop:
				if s.ScopeCount() > 1 {
					s.RemoveScope()
				}
			case opAdd:
				s.AddSymbol(fmt.Sprintf("n%d", (b>>2)&0x7))
			case opPick:
				excludeLocal := b&0x80 != 0 && s.ScopeCount() > 1
				name, ok := s.PickRandomSymbol(excludeLocal)
				if ok && excludeLocal && s.Current().Contains(name) {
					t.Fatalf("op %d: picked %q which the local scope shadows", i, name)
				}
				if ok && !visible(s, name, excludeLocal) {
					t.Fatalf("op %d: picked %q from no eligible scope", i, name)
				}
			}
			if err := s.Validate(); err != nil {
				t.Fatalf("op %d (%#x): %v", i, b, err)
			}
		}
	})
}

func visible(s *symtab.ScopeStack, name string, excludeLocal bool) bool {
	last := s.ScopeCount()
	if excludeLocal {
		last--
	}
	for i := range last {
		if s.Scope(i).Contains(name) {
			return true
		}
	}
	return false
}

//go:build jsfuzz_debug

package symtab

import "fmt"

func (s *ScopeStack) checkSize() {
	if derived := s.derivedSize(); derived != s.size {
		panic(fmt.Sprintf("scope stack size drift: counter %d, derived %d", s.size, derived))
	}
}

package symtab

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // bottom of the stack, seeded with builtins
	ScopeFunction           // pushed by AddScope, seeded with "arguments"
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	default:
		return "invalid"
	}
}

// argumentsName is the pseudo-symbol every function scope starts with.
const argumentsName = "arguments"

// Scope is an insertion-ordered list of visible names.
// Duplicate names are allowed; membership is tracked by count.
type Scope struct {
	kind    ScopeKind
	symbols []string
	counts  map[string]int
}

func newScope(kind ScopeKind, seed []string) *Scope {
	s := &Scope{
		kind:    kind,
		symbols: make([]string, 0, len(seed)+4),
		counts:  make(map[string]int, len(seed)+4),
	}
	for _, name := range seed {
		s.add(name)
	}
	return s
}

func (s *Scope) add(name string) {
	s.symbols = append(s.symbols, name)
	s.counts[name]++
}

// Kind reports the scope category.
func (s *Scope) Kind() ScopeKind { return s.kind }

// Len reports the number of symbols, duplicates included.
func (s *Scope) Len() int { return len(s.symbols) }

// Contains reports whether name was declared in this scope.
func (s *Scope) Contains(name string) bool { return s.counts[name] > 0 }

// At returns the i-th declared name.
func (s *Scope) At(i int) string { return s.symbols[i] }

// Names returns a copy of the declared names in insertion order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

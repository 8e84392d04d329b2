package jsgen

// Options shape generated programs.
type Options struct {
	// MaxDepth bounds both function nesting and if/for nesting inside a function.
	MaxDepth int
	// MaxStatements bounds the statements emitted per block (at least one is emitted).
	MaxStatements int
	// MaxExprDepth bounds expression nesting.
	MaxExprDepth int
	// NonLocalPercent is the chance that a reference must come from an enclosing scope.
	NonLocalPercent int
	// ShadowPercent is the chance that a declaration reuses an outer name.
	ShadowPercent int
	// ExtraGlobals are added to the builtin global names.
	ExtraGlobals []string
}

// DefaultOptions returns moderate settings that produce programs of a few dozen lines.
func DefaultOptions() Options {
	return Options{
		MaxDepth:        3,
		MaxStatements:   6,
		MaxExprDepth:    3,
		NonLocalPercent: 40,
		ShadowPercent:   15,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.MaxStatements <= 0 {
		o.MaxStatements = def.MaxStatements
	}
	if o.MaxExprDepth <= 0 {
		o.MaxExprDepth = def.MaxExprDepth
	}
	return o
}

// Stats summarize how a program was built.
type Stats struct {
	Statements   int `json:"statements"`
	Functions    int `json:"functions"`
	Declarations int `json:"declarations"`
	References   int `json:"references"`
	Shadowed     int `json:"shadowed"`
	Fallbacks    int `json:"fallbacks"`
	MaxScopes    int `json:"max_scopes"`
}

// Program is one generated source file.
type Program struct {
	Seed   uint64
	Source string
	Stats  Stats
}

// Package rng holds the random collaborators used during program generation:
// a seedable integer source and a weighted choice over matched item/weight lists.
//
// Every decision made while generating a program flows through one Source, so a
// whole run is reproducible from a single seed.
package rng

import "math/rand/v2"

// Source supplies uniformly distributed integers in [0, n). n must be > 0.
type Source interface {
	IntN(n int) int
}

// streamSalt separates the PCG stream from the seed word.
const streamSalt = 0x9e3779b97f4a7c15

// New returns a deterministic source for seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^streamSalt))
}

// Percent reports true with probability pct/100. Values outside [0,100] clamp.
func Percent(src Source, pct int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	return src.IntN(100) < pct
}

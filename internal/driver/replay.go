package driver

import (
	"context"
	"errors"
	"time"

	"jsfuzz/internal/corpus"
	"jsfuzz/internal/jscheck"
	"jsfuzz/internal/jsgen"
)

// ErrNoCase is returned by Replay for a nil case.
var ErrNoCase = errors.New("driver: no case to replay")

// ReplayResult compares a stored case with a fresh generation from its seed.
type ReplayResult struct {
	Program *jsgen.Program
	Check   jscheck.Result
	// Identical is false when the generator no longer reproduces the stored source.
	Identical bool
	// StoredVerdict is the verdict recorded when the case was found.
	StoredVerdict string
}

// Generate produces and checks a single program.
func Generate(ctx context.Context, seed uint64, gen jsgen.Options, check jscheck.Options) (*jsgen.Program, jscheck.Result, error) {
	start := time.Now()
	prog, err := jsgen.Generate(ctx, seed, gen)
	if err != nil {
		return nil, jscheck.Result{}, err
	}
	recordGeneration(prog, time.Since(start))
	res := jscheck.Check(ctx, caseName(seed), prog.Source, check)
	recordCheck(res)
	return prog, res, nil
}

// Replay regenerates c from its seed and options and checks the result.
func Replay(ctx context.Context, c *corpus.Case, check jscheck.Options) (ReplayResult, error) {
	if c == nil {
		return ReplayResult{}, ErrNoCase
	}
	prog, res, err := Generate(ctx, c.Seed, c.Options, check)
	if err != nil {
		return ReplayResult{}, err
	}
	return ReplayResult{
		Program:       prog,
		Check:         res,
		Identical:     prog.Source == c.Source,
		StoredVerdict: c.Verdict,
	}, nil
}

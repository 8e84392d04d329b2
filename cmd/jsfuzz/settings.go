package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsfuzz/internal/config"
	"jsfuzz/internal/jscheck"
	"jsfuzz/internal/jsgen"
)

// loadConfig resolves --config or the nearest jsfuzz.toml.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, _, err := config.Resolve(explicit, cwd)
	return cfg, err
}

func generatorOptions(cfg config.Config) jsgen.Options {
	g := cfg.Generator
	return jsgen.Options{
		MaxDepth:        g.MaxDepth,
		MaxStatements:   g.MaxStatements,
		MaxExprDepth:    g.MaxExprDepth,
		NonLocalPercent: g.NonLocalPercent,
		ShadowPercent:   g.ShadowPercent,
		ExtraGlobals:    append([]string(nil), g.ExtraGlobals...),
	}
}

func checkOptions(cfg config.Config) (jscheck.Options, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return jscheck.Options{}, err
	}
	return jscheck.Options{Execute: cfg.Run.Execute, Timeout: timeout}, nil
}

// runFlags are the [run] keys that can be overridden on the command line.
type runFlags struct {
	seed    uint64
	count   int
	jobs    int
	execute bool
	timeout string
	corpus  string
}

func (f *runFlags) register(cmd *cobra.Command, withBatch bool) {
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "seed of the (first) program")
	cmd.Flags().BoolVar(&f.execute, "execute", false, "run programs in the embedded engine, not just parse them")
	cmd.Flags().StringVar(&f.timeout, "timeout", "2s", "execution time budget per program")
	if withBatch {
		cmd.Flags().IntVar(&f.count, "count", 100, "number of programs")
		cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "max parallel cases (0=auto)")
		cmd.Flags().StringVar(&f.corpus, "corpus", "", "directory for stored findings")
	}
}

// apply copies every flag the user set over cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Run.Seed = f.seed
	}
	if flags.Changed("execute") {
		cfg.Run.Execute = f.execute
	}
	if flags.Changed("timeout") {
		cfg.Run.Timeout = f.timeout
	}
	if flags.Lookup("count") != nil && flags.Changed("count") {
		cfg.Run.Count = f.count
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		cfg.Run.Jobs = f.jobs
	}
	if flags.Lookup("corpus") != nil && flags.Changed("corpus") {
		cfg.Run.Corpus = f.corpus
	}
}

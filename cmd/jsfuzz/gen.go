package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jsfuzz/internal/driver"
	"jsfuzz/internal/jscheck"
	"jsfuzz/internal/jsgen"
	"jsfuzz/internal/observ"
)

func newGenCmd() *cobra.Command {
	var (
		flags runFlags
		check bool
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate one program and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// gen only executes on request, whatever the manifest says.
			cfg.Run.Execute = false
			flags.apply(cmd, &cfg)
			checkOpts, err := checkOptions(cfg)
			if err != nil {
				return err
			}

			timer := observ.NewTimer()
			var (
				prog *jsgen.Program
				res  jscheck.Result
			)
			if check || checkOpts.Execute {
				idx := timer.Begin("generate+check")
				prog, res, err = driver.Generate(cmd.Context(), cfg.Run.Seed, generatorOptions(cfg), checkOpts)
				timer.End(idx, res.Verdict.String())
			} else {
				idx := timer.Begin("generate")
				prog, err = jsgen.Generate(cmd.Context(), cfg.Run.Seed, generatorOptions(cfg))
				timer.End(idx, "")
			}
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			fmt.Fprint(out, prog.Source)
			if stats {
				enc := json.NewEncoder(errOut)
				enc.SetIndent("", "  ")
				if err := enc.Encode(prog.Stats); err != nil {
					return err
				}
			}
			if check || checkOpts.Execute {
				if !quiet(cmd) || res.Verdict.Finding() {
					printVerdict(errOut, res)
				}
			}
			if showTimings(cmd) {
				fmt.Fprint(errOut, timer.Summary())
			}
			if res.Verdict.Finding() {
				return errFindings
			}
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().BoolVar(&check, "check", false, "parse the program and report a verdict")
	cmd.Flags().BoolVar(&stats, "stats", false, "print generation statistics as JSON to stderr")
	return cmd
}

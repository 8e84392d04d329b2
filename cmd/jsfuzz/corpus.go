package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"jsfuzz/internal/corpus"
	"jsfuzz/internal/driver"
)

func newCorpusCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect and replay stored findings",
	}
	cmd.PersistentFlags().StringVar(&dir, "corpus", "", "corpus directory (default: [run].corpus)")

	open := func(cmd *cobra.Command) (*corpus.Store, error) {
		if dir != "" {
			return corpus.Open(dir)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		return corpus.Open(cfg.Run.Corpus)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			cases, listErr := store.List()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tVERDICT\tMESSAGE")
			for _, c := range cases {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					c.ID, c.Created.Local().Format(time.DateTime), c.Seed, c.Verdict,
					runewidth.Truncate(firstLine(c.Message), 60, "..."))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return listErr
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Print a stored program with its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			c, err := store.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "// id: %s\n// seed: %d\n// verdict: %s\n", c.ID, c.Seed, c.Verdict)
			if c.Message != "" {
				fmt.Fprintf(out, "// message: %s\n", firstLine(c.Message))
			}
			fmt.Fprintf(out, "// created: %s\n", c.Created.Format(time.RFC3339))
			fmt.Fprint(out, c.Source)
			return nil
		},
	})

	var execute bool
	replay := &cobra.Command{
		Use:   "replay ID",
		Short: "Regenerate a finding from its seed and check it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			c, err := store.Get(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			checkOpts, err := checkOptions(cfg)
			if err != nil {
				return err
			}
			checkOpts.Execute = execute
			res, err := driver.Replay(cmd.Context(), c, checkOpts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Identical {
				fmt.Fprintf(out, "seed %d reproduces the stored source\n", c.Seed)
			} else {
				fmt.Fprintf(out, "%s seed %d no longer reproduces the stored source\n", findingColor.Sprint("diverged:"), c.Seed)
			}
			fmt.Fprintf(out, "stored verdict: %s\n", res.StoredVerdict)
			printVerdict(out, res.Check)
			if !res.Identical {
				return fmt.Errorf("replay of %s diverged", c.ID)
			}
			if res.Check.Verdict.Finding() {
				return errFindings
			}
			return nil
		},
	}
	replay.Flags().BoolVar(&execute, "execute", false, "execute the regenerated program")
	cmd.AddCommand(replay)
	return cmd
}

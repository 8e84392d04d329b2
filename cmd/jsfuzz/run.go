package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"jsfuzz/internal/corpus"
	"jsfuzz/internal/driver"
	"jsfuzz/internal/jscheck"
)

func newRunCmd() *cobra.Command {
	var (
		flags       runFlags
		uiFlag      string
		metricsAddr string
		noStore     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and check a batch of programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)
			checkOpts, err := checkOptions(cfg)
			if err != nil {
				return err
			}

			req := driver.BatchRequest{
				Seed:      cfg.Run.Seed,
				Count:     cfg.Run.Count,
				Jobs:      cfg.Run.Jobs,
				Generator: generatorOptions(cfg),
				Check:     checkOpts,
			}
			if !noStore && cfg.Run.Corpus != "" {
				store, err := corpus.Open(cfg.Run.Corpus)
				if err != nil {
					return err
				}
				req.Store = store
			}

			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer stop()
			}

			last, err := driver.CaseSeed(req.Seed, max(req.Count-1, 0))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var res driver.BatchResult
			if shouldUseTUI(mode, out) && !quiet(cmd) {
				title := fmt.Sprintf("jsfuzz run: seeds %d..%d", req.Seed, last)
				res, err = runBatchWithUI(cmd.Context(), out, title, req)
			} else {
				res, err = driver.RunBatch(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			findings := res.Findings()
			for _, f := range findings {
				printFinding(out, f)
			}
			if !quiet(cmd) {
				printSummary(out, res)
			}
			if showTimings(cmd) {
				fmt.Fprint(cmd.ErrOrStderr(), res.Timing.String())
			}
			if len(findings) > 0 {
				return errFindings
			}
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not write findings to the corpus")
	return cmd
}

// serveMetrics starts /metrics on addr and returns a function that shuts it down.
func serveMetrics(addr string, logOut io.Writer) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(logOut, "metrics: %v\n", err)
		}
	}()
	fmt.Fprintf(logOut, "metrics: serving http://%s/metrics\n", ln.Addr())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func printFinding(out io.Writer, c driver.CaseResult) {
	fmt.Fprintf(out, "%s seed %d", verdictColor(c.Check.Verdict).Sprintf("%-12s", c.Check.Verdict), c.Seed)
	if c.StoreID != "" {
		fmt.Fprintf(out, " %s", dimColor.Sprint(c.StoreID))
	}
	if c.Check.Message != "" {
		fmt.Fprintf(out, ": %s", firstLine(c.Check.Message))
	}
	fmt.Fprintln(out)
}

func printSummary(out io.Writer, res driver.BatchResult) {
	verdicts := make([]jscheck.Verdict, 0, len(res.Counts))
	for v := range res.Counts {
		verdicts = append(verdicts, v)
	}
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i] < verdicts[j] })
	parts := make([]string, 0, len(verdicts))
	for _, v := range verdicts {
		parts = append(parts, verdictColor(v).Sprintf("%s %d", v, res.Counts[v]))
	}
	fmt.Fprintf(out, "%d programs in %s: %s\n", len(res.Cases), res.Elapsed.Round(time.Millisecond), strings.Join(parts, ", "))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

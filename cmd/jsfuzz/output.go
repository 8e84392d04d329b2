package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"jsfuzz/internal/jscheck"
)

var (
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	findingColor = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.Faint)
)

func verdictColor(v jscheck.Verdict) *color.Color {
	switch {
	case v.Finding():
		return findingColor
	case v == jscheck.VerdictOK:
		return okColor
	default:
		return warnColor
	}
}

func printVerdict(out io.Writer, res jscheck.Result) {
	fmt.Fprintf(out, "verdict: %s %s", verdictColor(res.Verdict).Sprint(res.Verdict), dimColor.Sprintf("(%.2f ms)", toMillis(res.Elapsed)))
	if res.Message != "" {
		fmt.Fprintf(out, "\n  %s", res.Message)
	}
	fmt.Fprintln(out)
	for _, line := range res.Output {
		fmt.Fprintf(out, "  print: %s\n", line)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Package version holds build metadata for the jsfuzz CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	metaColor    = color.New(color.Faint)
)

// String renders the version line printed by `jsfuzz version`.
// Colors follow color.NoColor.
func String() string {
	var b strings.Builder
	b.WriteString(nameColor.Sprint("jsfuzz"))
	b.WriteString(" ")
	b.WriteString(versionColor.Sprint(Version))

	var meta []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		meta = append(meta, "commit "+commit)
	}
	if BuildDate != "" {
		meta = append(meta, "built "+BuildDate)
	}
	meta = append(meta, fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH))
	b.WriteString(" ")
	b.WriteString(metaColor.Sprint("(" + strings.Join(meta, ", ") + ")"))
	return b.String()
}

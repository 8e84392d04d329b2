package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jsfuzz/internal/corpus"
	"jsfuzz/internal/jsgen"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), append([]string{"--color", "off"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsfuzz.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestGenIsDeterministic(t *testing.T) {
	cfg := writeConfig(t, "[generator]\nmax_depth = 2\n")
	code, first, stderr := run(t, "--config", cfg, "gen", "--seed", "5")
	if code != 0 {
		t.Fatalf("gen exited %d: %s", code, stderr)
	}
	_, second, _ := run(t, "--config", cfg, "gen", "--seed", "5")
	if first == "" || first != second {
		t.Fatalf("gen output not reproducible:\n%s\n---\n%s", first, second)
	}

	opts := jsgen.DefaultOptions()
	opts.MaxDepth = 2
	want, err := jsgen.Generate(context.Background(), 5, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first != want.Source {
		t.Fatalf("gen does not apply the manifest:\n%s\n---\n%s", first, want.Source)
	}
}

func TestGenCheckAndStats(t *testing.T) {
	cfg := writeConfig(t, "")
	code, _, stderr := run(t, "--config", cfg, "gen", "--seed", "3", "--check", "--stats")
	if code != 0 {
		t.Fatalf("gen exited %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "verdict: ok") {
		t.Fatalf("missing verdict in stderr:\n%s", stderr)
	}
	if !strings.Contains(stderr, `"max_scopes"`) {
		t.Fatalf("missing stats in stderr:\n%s", stderr)
	}
}

func TestGenTraceToStderr(t *testing.T) {
	cfg := writeConfig(t, "")
	code, _, stderr := run(t, "--config", cfg, "--trace", "-", "--trace-level", "scope", "gen", "--seed", "8")
	if code != 0 {
		t.Fatalf("gen exited %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "generate") {
		t.Fatalf("trace output missing generate span:\n%s", stderr)
	}
}

func TestRunWithoutFindings(t *testing.T) {
	cfg := writeConfig(t, "[run]\nexecute = false\n")
	dir := t.TempDir()
	code, stdout, stderr := run(t, "--config", cfg, "run", "--count", "6", "--jobs", "2", "--ui", "off", "--corpus", dir)
	if code != 0 {
		t.Fatalf("run exited %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "6 programs in") || !strings.Contains(stdout, "ok 6") {
		t.Fatalf("unexpected summary:\n%s", stdout)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("clean run stored %d files", len(entries))
	}
}

func TestCorpusShowAndReplay(t *testing.T) {
	cfg := writeConfig(t, "")
	dir := t.TempDir()
	store, err := corpus.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	opts := jsgen.DefaultOptions()
	prog, err := jsgen.Generate(context.Background(), 9, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c := &corpus.Case{Seed: 9, Options: opts, Source: prog.Source, Stats: prog.Stats, Verdict: "crash", Message: "boom"}
	if err := store.Put(c); err != nil {
		t.Fatalf("Put: %v", err)
	}

	code, stdout, stderr := run(t, "--config", cfg, "corpus", "list", "--corpus", dir)
	if code != 0 || !strings.Contains(stdout, c.ID) {
		t.Fatalf("list exited %d:\n%s%s", code, stdout, stderr)
	}

	code, stdout, stderr = run(t, "--config", cfg, "corpus", "show", c.ID, "--corpus", dir)
	if code != 0 {
		t.Fatalf("show exited %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "// seed: 9") || !strings.HasSuffix(stdout, prog.Source) {
		t.Fatalf("unexpected show output:\n%s", stdout)
	}

	code, stdout, stderr = run(t, "--config", cfg, "corpus", "replay", c.ID, "--corpus", dir)
	if code != 0 {
		t.Fatalf("replay exited %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "reproduces") || !strings.Contains(stdout, "stored verdict: crash") {
		t.Fatalf("unexpected replay output:\n%s", stdout)
	}

	code, _, stderr = run(t, "--config", cfg, "corpus", "show", "5f0c8c4e-6c59-4a43-9a0e-3f7c1b2f9d11", "--corpus", dir)
	if code != 1 || !strings.Contains(stderr, "not found") {
		t.Fatalf("show of unknown id: code %d, stderr %q", code, stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	code, stdout, stderr := run(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("version exited %d: %s", code, stderr)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if payload.Tool != "jsfuzz" || payload.Version == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestInvalidFlagsFail(t *testing.T) {
	tests := [][]string{
		{"--color", "sometimes", "version"},
		{"--trace-level", "loud", "version"},
		{"run", "--ui", "maybe"},
		{"version", "--format", "xml"},
		{"run", "--seed", "18446744073709551615", "--count", "2", "--no-store", "--ui", "off"},
	}
	for _, args := range tests {
		var out, errOut bytes.Buffer
		if code := execute(context.Background(), args, &out, &errOut); code != 1 {
			t.Fatalf("%v: exit %d, want 1", args, code)
		}
		if !strings.Contains(errOut.String(), "error:") {
			t.Fatalf("%v: no error printed: %q", args, errOut.String())
		}
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{in: "", want: uiModeAuto},
		{in: "AUTO", want: uiModeAuto},
		{in: " on ", want: uiModeOn},
		{in: "off", want: uiModeOff},
		{in: "yes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("readUIMode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if shouldUseTUI(uiModeAuto, &bytes.Buffer{}) {
		t.Fatalf("a buffer is not a terminal")
	}
}

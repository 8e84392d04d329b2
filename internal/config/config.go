// Package config loads jsfuzz.toml.
//
//	[generator]
//	max_depth = 3
//	max_statements = 6
//	max_expr_depth = 3
//	non_local_percent = 40
//	shadow_percent = 15
//	extra_globals = ["print"]
//
//	[run]
//	seed = 1
//	count = 100
//	jobs = 0
//	execute = true
//	timeout = "2s"
//	corpus = ".jsfuzz/corpus"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "jsfuzz.toml"

// Config is the decoded manifest.
type Config struct {
	Generator GeneratorConfig `toml:"generator"`
	Run       RunConfig       `toml:"run"`
}

// GeneratorConfig shapes generated programs.
type GeneratorConfig struct {
	MaxDepth        int      `toml:"max_depth"`
	MaxStatements   int      `toml:"max_statements"`
	MaxExprDepth    int      `toml:"max_expr_depth"`
	NonLocalPercent int      `toml:"non_local_percent"`
	ShadowPercent   int      `toml:"shadow_percent"`
	ExtraGlobals    []string `toml:"extra_globals"`
}

// RunConfig controls batch runs.
type RunConfig struct {
	Seed    uint64 `toml:"seed"`
	Count   int    `toml:"count"`
	Jobs    int    `toml:"jobs"`
	Execute bool   `toml:"execute"`
	Timeout string `toml:"timeout"`
	Corpus  string `toml:"corpus"`
}

// Default returns the settings used when no manifest exists.
func Default() Config {
	return Config{
		Generator: GeneratorConfig{
			MaxDepth:        3,
			MaxStatements:   6,
			MaxExprDepth:    3,
			NonLocalPercent: 40,
			ShadowPercent:   15,
		},
		Run: RunConfig{
			Seed:    1,
			Count:   100,
			Execute: true,
			Timeout: "2s",
			Corpus:  filepath.Join(".jsfuzz", "corpus"),
		},
	}
}

// TimeoutDuration parses Run.Timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Run.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Run.Timeout)
	if err != nil {
		return 0, fmt.Errorf("[run].timeout: %w", err)
	}
	return d, nil
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest manifest above
// startDir, otherwise the defaults. The returned path is empty for defaults.
func Resolve(explicit, startDir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func (c *Config) normalize() error {
	var errs []error
	g := &c.Generator
	if g.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("[generator].max_depth must be >= 0, got %d", g.MaxDepth))
	}
	if g.MaxStatements < 1 {
		errs = append(errs, fmt.Errorf("[generator].max_statements must be >= 1, got %d", g.MaxStatements))
	}
	if g.MaxExprDepth < 1 {
		errs = append(errs, fmt.Errorf("[generator].max_expr_depth must be >= 1, got %d", g.MaxExprDepth))
	}
	if g.NonLocalPercent < 0 || g.NonLocalPercent > 100 {
		errs = append(errs, fmt.Errorf("[generator].non_local_percent must be in [0,100], got %d", g.NonLocalPercent))
	}
	if g.ShadowPercent < 0 || g.ShadowPercent > 100 {
		errs = append(errs, fmt.Errorf("[generator].shadow_percent must be in [0,100], got %d", g.ShadowPercent))
	}
	for i, name := range g.ExtraGlobals {
		normalized := norm.NFC.String(strings.TrimSpace(name))
		if !IsIdentifier(normalized) {
			errs = append(errs, fmt.Errorf("[generator].extra_globals[%d]: %q is not an identifier", i, name))
			continue
		}
		g.ExtraGlobals[i] = normalized
	}
	if c.Run.Count < 0 {
		errs = append(errs, fmt.Errorf("[run].count must be >= 0, got %d", c.Run.Count))
	}
	if c.Run.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[run].jobs must be >= 0, got %d", c.Run.Jobs))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var reservedWords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"let": {}, "static": {}, "yield": {}, "await": {},
}

// IsIdentifier reports whether name is a plain JavaScript identifier that is
// not a reserved word.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if _, reserved := reservedWords[name]; reserved {
		return false
	}
	for i, r := range name {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

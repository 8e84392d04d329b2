package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelDriver              // commands and batches
	LevelCase                // plus per-program spans
	LevelScope               // plus scope pushes and pops
	LevelDebug               // everything, including every pick
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelDriver:
		return "driver"
	case LevelCase:
		return "case"
	case LevelScope:
		return "scope"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff, nil
	case "driver":
		return LevelDriver, nil
	case "case":
		return LevelCase, nil
	case "scope":
		return LevelScope, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|driver|case|scope|debug)", s)
	}
}

// ShouldEmit reports whether events of the given layer pass this level.
func (l Level) ShouldEmit(layer Layer) bool {
	if l == LevelOff {
		return false
	}
	return uint8(layer) <= uint8(l)
}

package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"off", LevelOff},
		{"", LevelOff},
		{"driver", LevelDriver},
		{"CASE", LevelCase},
		{"scope", LevelScope},
		{"debug", LevelDebug},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelFiltersLayers(t *testing.T) {
	if LevelCase.ShouldEmit(LayerScope) {
		t.Fatalf("case level must drop scope events")
	}
	if !LevelCase.ShouldEmit(LayerDriver) || !LevelCase.ShouldEmit(LayerCase) {
		t.Fatalf("case level must keep driver and case events")
	}
	if !LevelDebug.ShouldEmit(LayerPick) {
		t.Fatalf("debug level must keep pick events")
	}
	if LevelOff.ShouldEmit(LayerDriver) {
		t.Fatalf("off level must drop everything")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelScope, FormatText)
	span := Begin(tr, LayerCase, "case", 0)
	Point(tr, LayerScope, "push", "depth 2", span.ID(), map[string]string{"b": "2", "a": "1"})
	Point(tr, LayerPick, "pick", "", span.ID(), nil)
	span.WithField("verdict", "ok").End("done")

	out := buf.String()
	if strings.Count(out, "\n") != 3 {
		t.Fatalf("expected 3 lines (pick filtered), got:\n%s", out)
	}
	if !strings.Contains(out, "→ case") || !strings.Contains(out, "← case (done) {verdict=ok}") {
		t.Fatalf("missing span lines:\n%s", out)
	}
	if !strings.Contains(out, "push (depth 2) {a=1, b=2}") {
		t.Fatalf("fields not sorted or missing:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, LayerPick, "shadowed", "x", 0, nil)

	var decoded map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if decoded["layer"] != "pick" || decoded["name"] != "shadowed" || decoded["kind"] != "point" {
		t.Fatalf("unexpected event: %v", decoded)
	}
}

func TestRingTracerKeepsNewest(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, LayerCase, name, "", 0, nil)
	}
	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("snap[%d] = %q, want %q", i, snap[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump wrote %q", buf.String())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelCase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, LayerCase, "x", "", 0, nil)
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("ModeBoth returned %T", tr)
	}
	if got := len(multi.Ring().Snapshot()); got != 1 {
		t.Fatalf("ring holds %d events, want 1", got)
	}
	if !strings.Contains(buf.String(), "• x") {
		t.Fatalf("stream missing event: %q", buf.String())
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelDriver)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(FromContext(context.Background()), LayerDriver, "noop", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatalf("nop span should be inert")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer reports enabled")
	}
}

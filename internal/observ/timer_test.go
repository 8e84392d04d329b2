package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	gen := timer.Begin("generate")
	time.Sleep(time.Millisecond)
	timer.End(gen, "12 stmts")
	chk := timer.Begin("check")
	timer.End(chk, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "generate" || report.Phases[0].Note != "12 stmts" {
		t.Fatalf("unexpected first phase: %+v", report.Phases[0])
	}
	if report.Phases[0].DurationMS <= 0 {
		t.Fatalf("generate phase has no duration")
	}
	if !strings.Contains(timer.Summary(), "// 12 stmts") {
		t.Fatalf("summary missing note:\n%s", timer.Summary())
	}
}

func TestMergeSumsByName(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "generate", DurationMS: 1}, {Name: "check", DurationMS: 2}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "check", DurationMS: 3}, {Name: "store", DurationMS: 1}}}
	m := Merge(a, b)
	if m.TotalMS != 7 {
		t.Fatalf("TotalMS = %v, want 7", m.TotalMS)
	}
	want := []PhaseReport{{Name: "generate", DurationMS: 1}, {Name: "check", DurationMS: 5}, {Name: "store", DurationMS: 1}}
	if len(m.Phases) != len(want) {
		t.Fatalf("phases = %+v", m.Phases)
	}
	for i := range want {
		if m.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, m.Phases[i], want[i])
		}
	}
}

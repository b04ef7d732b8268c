package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	load := tm.Begin("load")
	tm.End(load, "")
	boom := errors.New("boom")
	if err := tm.Time("collect main", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Time should pass the error through, got %v", err)
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 2 {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.Phases[1].Note != "failed" {
		t.Fatalf("failed phase should be noted, got %q", r.Phases[1].Note)
	}
	if s := tm.Summary(); !strings.Contains(s, "collect main") || !strings.Contains(s, "// failed") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty timer should report nothing, got %+v", r)
	}
}

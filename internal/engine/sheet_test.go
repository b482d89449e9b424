package engine

import (
	"testing"

	"github.com/arjunmenon/termsheet/internal/status"
)

// fakeSleeper never blocks; it just records the seconds it was asked to
// sleep for, so propagation tests run instantly.
type fakeSleeper struct {
	calls []int32
}

func (f *fakeSleeper) Sleep(seconds int32) { f.calls = append(f.calls, seconds) }

func newTestSheet(t *testing.T) *Sheet {
	t.Helper()
	sh, err := New(10, 10)
	if err != nil {
		t.Fatalf("New(10,10) failed: %v", err)
	}
	sh.SetSleeper(&fakeSleeper{})
	return sh
}

func mustOK(t *testing.T, sh *Sheet, cmd string) {
	t.Helper()
	if st := sh.Submit(cmd); st != status.Ok {
		t.Fatalf("Submit(%q) = %v, want Ok", cmd, st)
	}
}

func TestBasicPropagation(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	mustOK(t, sh, "B1=A1+10")
	if v := sh.Value(0, 0); v.N != 5 {
		t.Fatalf("A1 = %+v, want 5", v)
	}
	if v := sh.Value(0, 1); v.N != 15 {
		t.Fatalf("B1 = %+v, want 15", v)
	}
	mustOK(t, sh, "A1=7")
	if v := sh.Value(0, 0); v.N != 7 {
		t.Fatalf("A1 = %+v, want 7", v)
	}
	if v := sh.Value(0, 1); v.N != 17 {
		t.Fatalf("B1 = %+v, want 17", v)
	}
}

func TestRangeAggregate(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=1")
	mustOK(t, sh, "A2=2")
	mustOK(t, sh, "A3=3")
	mustOK(t, sh, "B1=SUM(A1:A3)")
	if v := sh.Value(0, 1); v.N != 6 {
		t.Fatalf("B1 = %+v, want 6", v)
	}
	mustOK(t, sh, "A2=20")
	if v := sh.Value(0, 1); v.N != 24 {
		t.Fatalf("B1 = %+v, want 24", v)
	}
}

func TestCycleRejection(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	mustOK(t, sh, "B1=A1+10")
	mustOK(t, sh, "A1=7")

	if st := sh.Submit("A1=B1+1"); st != status.CircularRef {
		t.Fatalf("Submit(A1=B1+1) = %v, want CircularRef", st)
	}
	if v := sh.Value(0, 0); v.N != 7 {
		t.Fatalf("A1 after rollback = %+v, want 7", v)
	}
	if v := sh.Value(0, 1); v.N != 17 {
		t.Fatalf("B1 after rollback = %+v, want 17", v)
	}
}

func TestSelfReferenceIsCircular(t *testing.T) {
	sh := newTestSheet(t)
	if st := sh.Submit("A1=A1"); st != status.CircularRef {
		t.Fatalf("Submit(A1=A1) = %v, want CircularRef", st)
	}
	if v := sh.Value(0, 0); v.N != 0 {
		t.Fatalf("A1 after rejected self-reference = %+v, want 0", v)
	}
}

func TestErrorPropagation(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	mustOK(t, sh, "A2=0")
	mustOK(t, sh, "B1=A1/A2")
	if v := sh.Value(0, 1); !v.Err {
		t.Fatalf("B1 = %+v, want Error", v)
	}
	mustOK(t, sh, "C1=B1+3")
	if v := sh.Value(0, 2); !v.Err {
		t.Fatalf("C1 = %+v, want Error", v)
	}
	mustOK(t, sh, "A2=1")
	if v := sh.Value(0, 1); v.Err || v.N != 5 {
		t.Fatalf("B1 = %+v, want 5", v)
	}
	if v := sh.Value(0, 2); v.Err || v.N != 8 {
		t.Fatalf("C1 = %+v, want 8", v)
	}
}

func TestAvgTruncation(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=1")
	mustOK(t, sh, "A2=2")
	mustOK(t, sh, "A3=2")
	mustOK(t, sh, "B1=AVG(A1:A3)")
	if v := sh.Value(0, 1); v.N != 1 {
		t.Fatalf("B1 = %+v, want 1 (truncated 5/3)", v)
	}
}

func TestReplacementClearsOldEdges(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=1")
	mustOK(t, sh, "A2=2")
	mustOK(t, sh, "B1=A1+A2")
	mustOK(t, sh, "B1=99")

	mustOK(t, sh, "A1=1000")
	mustOK(t, sh, "A2=2000")
	if v := sh.Value(0, 1); v.N != 99 {
		t.Fatalf("B1 after replacement = %+v, want 99 (unaffected by A1/A2)", v)
	}
}

func TestStdevOfSingleCellIsZero(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=42")
	mustOK(t, sh, "B1=STDEV(A1:A1)")
	if v := sh.Value(0, 1); v.N != 0 {
		t.Fatalf("STDEV(A1:A1) = %+v, want 0", v)
	}
}

func TestDivideByZeroYieldsError(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	mustOK(t, sh, "A2=0")
	mustOK(t, sh, "B1=A1/A2")
	if v := sh.Value(0, 1); !v.Err {
		t.Fatalf("A1/A2 = %+v, want Error", v)
	}
}

func TestSleepOverReferenceRunsOncePerPropagationPass(t *testing.T) {
	sh := newTestSheet(t)
	sl := &fakeSleeper{}
	sh.SetSleeper(sl)

	mustOK(t, sh, "A1=3")
	mustOK(t, sh, "B1=SLEEP(A1)")
	if v := sh.Value(0, 1); v.N != 3 {
		t.Fatalf("B1 = %+v, want 3", v)
	}
	if len(sl.calls) != 1 || sl.calls[0] != 3 {
		t.Fatalf("sleep calls = %v, want exactly one call for 3 seconds", sl.calls)
	}

	mustOK(t, sh, "C1=B1+1")
	mustOK(t, sh, "A1=5")
	if v := sh.Value(0, 2); v.N != 6 {
		t.Fatalf("C1 = %+v, want 6", v)
	}
	if len(sl.calls) != 2 {
		t.Fatalf("sleep calls after one propagation pass = %v, want exactly 2 total", sl.calls)
	}
}

func TestIdempotentReassignment(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	mustOK(t, sh, "B1=A1+10")
	mustOK(t, sh, "B1=A1+10")
	if v := sh.Value(0, 1); v.N != 15 {
		t.Fatalf("B1 after idempotent reassignment = %+v, want 15", v)
	}
}

func TestInvalidCellReference(t *testing.T) {
	sh := newTestSheet(t)
	if st := sh.Submit("Z99=5"); st != status.InvalidCell {
		t.Fatalf("Submit(Z99=5) = %v, want InvalidCell", st)
	}
}

func TestInvalidRange(t *testing.T) {
	sh := newTestSheet(t)
	if st := sh.Submit("B1=SUM(A3:A1)"); st != status.InvalidRange {
		t.Fatalf("Submit(B1=SUM(A3:A1)) = %v, want InvalidRange", st)
	}
	if v := sh.Value(0, 1); v.N != 0 {
		t.Fatalf("B1 after rejected range = %+v, want untouched 0", v)
	}
}

func TestUnrecognizedCommandLeavesStateUntouched(t *testing.T) {
	sh := newTestSheet(t)
	mustOK(t, sh, "A1=5")
	if st := sh.Submit("A1=+"); st != status.Unrecognized {
		t.Fatalf("Submit(A1=+) = %v, want Unrecognized", st)
	}
	if v := sh.Value(0, 0); v.N != 5 {
		t.Fatalf("A1 after rejected parse = %+v, want untouched 5", v)
	}
}

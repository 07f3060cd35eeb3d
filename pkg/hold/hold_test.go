package hold

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestHoldThroughThreshold(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	if got := tr.Begin("a"); got != Holding {
		t.Fatalf("begin = %v, want holding", got)
	}
	fc.Advance(4 * time.Second)
	if ids := tr.Poll(); len(ids) != 0 {
		t.Fatalf("confirmed before threshold: %v", ids)
	}
	fc.Advance(time.Second)
	ids := tr.Poll()
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected [a] confirmed, got %v", ids)
	}
	if got := tr.Status("a"); got != Confirmed {
		t.Fatalf("status = %v, want confirmed", got)
	}
}

func TestReleaseBeforeThresholdCancels(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	fc.Advance(2 * time.Second)
	if got := tr.Release("a"); got != Cancelled {
		t.Fatalf("release = %v, want cancelled", got)
	}
	// A cancelled gesture must not confirm later.
	fc.Advance(10 * time.Second)
	if ids := tr.Poll(); len(ids) != 0 {
		t.Fatalf("cancelled gesture confirmed: %v", ids)
	}
}

func TestReleaseAfterThresholdConfirms(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	fc.Advance(6 * time.Second)
	if got := tr.Release("a"); got != Confirmed {
		t.Fatalf("release = %v, want confirmed", got)
	}
}

func TestGesturesAreIndependent(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	fc.Advance(3 * time.Second)
	tr.Begin("b")
	fc.Advance(2 * time.Second)

	ids := tr.Poll()
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("only a crossed its threshold, got %v", ids)
	}
	if got := tr.Status("b"); got != Holding {
		t.Fatalf("b = %v, want holding", got)
	}
	if got := tr.Release("b"); got != Cancelled {
		t.Fatalf("release b = %v, want cancelled", got)
	}
	if got := tr.Status("a"); got != Confirmed {
		t.Fatalf("cancelling b touched a: %v", got)
	}
}

func TestProgress(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	if got := tr.Progress("a"); got != 0 {
		t.Fatalf("idle progress = %v", got)
	}
	tr.Begin("a")
	fc.Advance(2500 * time.Millisecond)
	if got := tr.Progress("a"); got != 0.5 {
		t.Fatalf("progress = %v, want 0.5", got)
	}
	fc.Advance(10 * time.Second)
	if got := tr.Progress("a"); got != 1 {
		t.Fatalf("progress = %v, want clamped 1", got)
	}
}

func TestDeleteRunsOnce(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	fc.Advance(5 * time.Second)
	tr.Poll()

	if !tr.StartDelete("a") {
		t.Fatal("confirmed gesture must start deleting")
	}
	if tr.StartDelete("a") {
		t.Fatal("second start must be refused")
	}
	// A press during the delete must not reset it.
	if got := tr.Begin("a"); got != Deleting {
		t.Fatalf("begin during delete = %v, want deleting", got)
	}
	if got := tr.FinishDelete("a", nil); got != Deleted {
		t.Fatalf("finish = %v, want deleted", got)
	}
}

func TestDeleteFailureReturnsToIdle(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	fc.Advance(5 * time.Second)
	tr.Poll()
	tr.StartDelete("a")

	if got := tr.FinishDelete("a", errors.New("connection refused")); got != Idle {
		t.Fatalf("failed finish = %v, want idle", got)
	}
	// The user can try the whole gesture again.
	if got := tr.Begin("a"); got != Holding {
		t.Fatalf("retry begin = %v, want holding", got)
	}
}

func TestStartDeleteRequiresConfirmation(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	if tr.StartDelete("a") {
		t.Fatal("idle id must not delete")
	}
	tr.Begin("a")
	fc.Advance(time.Second)
	if tr.StartDelete("a") {
		t.Fatal("holding id must not delete before the threshold")
	}
}

func TestForget(t *testing.T) {
	fc := newFakeClock()
	tr := NewTracker(fc)

	tr.Begin("a")
	tr.Forget("a")
	if got := tr.Status("a"); got != Idle {
		t.Fatalf("status after forget = %v, want idle", got)
	}
}

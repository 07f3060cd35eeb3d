// Package hold implements the press-and-hold delete confirmation state
// machine. A delete only fires after the user holds the gesture for the full
// threshold; releasing earlier cancels it. The tracker knows nothing about
// rendering or the remote store, it just advances states against an injected
// clock so any frontend can drive it.
package hold

import (
	"time"

	"github.com/kako-rgb/djnoday/pkg/clock"
)

// Threshold is how long a hold must last before the delete is confirmed.
const Threshold = 5 * time.Second

// Status is the lifecycle of one hold gesture.
type Status int

const (
	// Idle means no gesture is active for the id.
	Idle Status = iota
	// Holding means the gesture started and the threshold clock is running.
	Holding
	// Confirmed means the threshold elapsed; the delete may now execute.
	Confirmed
	// Deleting means the delete is executing against the stores.
	Deleting
	// Deleted is terminal: the delete completed.
	Deleted
	// Cancelled is terminal: the gesture was released early.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Confirmed:
		return "confirmed"
	case Deleting:
		return "deleting"
	case Deleted:
		return "deleted"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

type gesture struct {
	status  Status
	started time.Time
}

// Tracker holds one independent gesture per request id. It is not safe for
// concurrent use; callers drive it from a single loop.
type Tracker struct {
	clock     clock.Clock
	threshold time.Duration
	holds     map[string]*gesture
}

// NewTracker returns a tracker using the default threshold.
func NewTracker(c clock.Clock) *Tracker {
	return NewTrackerThreshold(c, Threshold)
}

// NewTrackerThreshold returns a tracker with an explicit threshold.
func NewTrackerThreshold(c clock.Clock, threshold time.Duration) *Tracker {
	if c == nil {
		c = clock.System()
	}
	if threshold <= 0 {
		threshold = Threshold
	}
	return &Tracker{clock: c, threshold: threshold, holds: map[string]*gesture{}}
}

// Status reports the current state for an id. Unknown ids are Idle.
func (t *Tracker) Status(id string) Status {
	g, ok := t.holds[id]
	if !ok {
		return Idle
	}
	return g.status
}

// Begin starts (or restarts) a hold gesture. Gestures already past Holding
// are left alone so a stray press cannot reset a running delete.
func (t *Tracker) Begin(id string) Status {
	g, ok := t.holds[id]
	if ok && (g.status == Confirmed || g.status == Deleting) {
		return g.status
	}
	t.holds[id] = &gesture{status: Holding, started: t.clock.Now()}
	return Holding
}

// Release ends the gesture. Released before the threshold it cancels;
// released after, the confirmation stands.
func (t *Tracker) Release(id string) Status {
	g, ok := t.holds[id]
	if !ok {
		return Idle
	}
	if g.status != Holding {
		return g.status
	}
	if t.clock.Now().Sub(g.started) >= t.threshold {
		g.status = Confirmed
	} else {
		g.status = Cancelled
	}
	return g.status
}

// Poll advances every held gesture whose threshold has elapsed to Confirmed
// and returns those ids. Frontends call this from their tick loop.
func (t *Tracker) Poll() []string {
	now := t.clock.Now()
	var confirmed []string
	for id, g := range t.holds {
		if g.status == Holding && now.Sub(g.started) >= t.threshold {
			g.status = Confirmed
			confirmed = append(confirmed, id)
		}
	}
	return confirmed
}

// Progress reports how far along the hold is, clamped to [0, 1]. Only
// Holding and Confirmed gestures report progress.
func (t *Tracker) Progress(id string) float64 {
	g, ok := t.holds[id]
	if !ok {
		return 0
	}
	switch g.status {
	case Confirmed, Deleting, Deleted:
		return 1
	case Holding:
		p := float64(t.clock.Now().Sub(g.started)) / float64(t.threshold)
		if p > 1 {
			return 1
		}
		if p < 0 {
			return 0
		}
		return p
	}
	return 0
}

// StartDelete moves a confirmed gesture into Deleting. It reports false when
// the gesture is not confirmed, so a delete can never run twice.
func (t *Tracker) StartDelete(id string) bool {
	g, ok := t.holds[id]
	if !ok || g.status != Confirmed {
		return false
	}
	g.status = Deleting
	return true
}

// FinishDelete resolves a Deleting gesture. Success is terminal; failure
// returns the id to Idle so the user can try again.
func (t *Tracker) FinishDelete(id string, err error) Status {
	g, ok := t.holds[id]
	if !ok || g.status != Deleting {
		return t.Status(id)
	}
	if err != nil {
		delete(t.holds, id)
		return Idle
	}
	g.status = Deleted
	return Deleted
}

// Forget drops all tracking for an id, for items that left the view.
func (t *Tracker) Forget(id string) {
	delete(t.holds, id)
}

// Package filter rejects physically implausible pose jumps. Tracking
// glitches show up as a single-frame teleport; anything moving farther
// than the threshold between two consecutive ticks is treated as sensor
// noise and skipped.
package filter

import (
	"time"

	"github.com/teleopkit/go-vive/pkg/pose"
)

// DefaultThreshold is the displacement in meters above which a sample
// is rejected.
const DefaultThreshold = 0.05

// Result reports one evaluation. Velocity is diagnostic only and never
// gates acceptance.
type Result struct {
	Accepted     bool
	Displacement float64 // meters from the previous accepted position
	Velocity     float64 // meters/second; zero when dt is not positive
}

// JumpFilter compares each candidate position against the last accepted
// one. It holds no locks: the producer loop is its only caller.
type JumpFilter struct {
	threshold float64
	prev      [3]float64
	primed    bool
}

// New returns a filter with the given rejection threshold. A threshold
// of zero or below falls back to DefaultThreshold.
func New(threshold float64) *JumpFilter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &JumpFilter{threshold: threshold}
}

// Evaluate decides whether to accept a candidate position sampled dt
// after the previous one. The first candidate after construction or
// Reset is always accepted, so a stale baseline from before a tracking
// gap can never cause a false rejection. A rejected candidate leaves
// the baseline untouched. The displacement gate applies regardless of
// dt; a non-positive dt only suppresses the velocity diagnostic.
func (f *JumpFilter) Evaluate(p [3]float64, dt time.Duration) Result {
	if !f.primed {
		f.primed = true
		f.prev = p
		return Result{Accepted: true}
	}

	d := pose.Displacement(p, f.prev)
	res := Result{Displacement: d}
	if dt > 0 {
		res.Velocity = d / dt.Seconds()
	}

	if d > f.threshold {
		return res
	}

	res.Accepted = true
	f.prev = p
	return res
}

// Reset clears the baseline; the next candidate is auto-accepted.
// Called when the producer loses the tracker.
func (f *JumpFilter) Reset() {
	f.primed = false
}

// Package producer drives device polling. Each tick it polls the
// tracking runtime, filters the pose of every qualifying device, and
// hands accepted samples to the mailbox. It never touches the network.
package producer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/filter"
	"github.com/teleopkit/go-vive/pkg/mailbox"
	"github.com/teleopkit/go-vive/pkg/pose"
	"github.com/teleopkit/go-vive/pkg/tracker"
)

// State of the polling loop.
type State int

const (
	// StateNoTracker means the last poll found no qualifying device.
	// The loop slows its cadence and resets the filter baseline.
	StateNoTracker State = iota
	// StateActive means samples are flowing.
	StateActive
)

// Stats is a snapshot of the loop's counters.
type Stats struct {
	Accepted   uint64
	Rejected   uint64
	EmptyTicks uint64
}

// Options configure a Loop.
type Options struct {
	// ActiveInterval is the tick period while a tracker is detected
	// (~200 Hz by default); IdleInterval applies while searching
	// (~20 Hz). Both are scheduling hints, not correctness knobs.
	ActiveInterval time.Duration
	IdleInterval   time.Duration
}

func (o *Options) fill() {
	if o.ActiveInterval <= 0 {
		o.ActiveInterval = 5 * time.Millisecond
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = 50 * time.Millisecond
	}
}

// Loop owns the poll-filter-put cycle. One writer: no field other than
// the counters is touched outside Run.
type Loop struct {
	rt   tracker.Runtime
	jf   *filter.JumpFilter
	box  *mailbox.Mailbox
	opts Options

	state      State
	lastAccept time.Time
	lastIdle   time.Time

	accepted   atomic.Uint64
	rejected   atomic.Uint64
	emptyTicks atomic.Uint64
}

// New wires a loop to its collaborators. The caller has already run
// rt.Init; an init failure is fatal and handled there.
func New(rt tracker.Runtime, jf *filter.JumpFilter, box *mailbox.Mailbox, opts Options) *Loop {
	opts.fill()
	return &Loop{rt: rt, jf: jf, box: box, opts: opts}
}

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (l *Loop) Stats() Stats {
	return Stats{
		Accepted:   l.accepted.Load(),
		Rejected:   l.rejected.Load(),
		EmptyTicks: l.emptyTicks.Load(),
	}
}

// Run polls until ctx is canceled. Returns nil on cancellation; a poll
// error is logged and treated as a no-tracker tick, never returned.
func (l *Loop) Run(ctx context.Context) error {
	log.Info("producer loop starting",
		"active_interval", l.opts.ActiveInterval,
		"idle_interval", l.opts.IdleInterval,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("producer loop stopping")
			return nil
		case <-timer.C:
		}

		detected := l.tick()

		interval := l.opts.IdleInterval
		if detected {
			interval = l.opts.ActiveInterval
		}
		timer.Reset(interval)
	}
}

// tick performs one poll and reports whether a tracker was seen.
func (l *Loop) tick() bool {
	devices, err := l.rt.Poll()
	if err != nil {
		log.Warn("device poll failed", "error", err)
		l.noTracker()
		return false
	}

	detected := false
	now := time.Now()
	for _, d := range devices {
		if !d.Connected || !d.PoseValid || !d.TrackingOK {
			continue
		}
		if d.Class != tracker.ClassGenericTracker {
			continue
		}
		detected = true
		l.handleDevice(d, now)
	}

	if !detected {
		l.noTracker()
		return false
	}
	l.state = StateActive
	return true
}

func (l *Loop) handleDevice(d tracker.DeviceState, now time.Time) {
	position := d.Matrix.Position()

	var dt time.Duration
	if !l.lastAccept.IsZero() {
		dt = now.Sub(l.lastAccept)
	}

	res := l.jf.Evaluate(position, dt)
	if !res.Accepted {
		// Silent to the pipeline: the mailbox keeps its previous value.
		l.rejected.Add(1)
		log.Warn("implausible pose delta, skipping sample",
			"displacement_m", res.Displacement,
			"velocity_mps", res.Velocity,
		)
		return
	}
	l.lastAccept = now

	l.box.Put(pose.Sample{
		Time:        pose.Now(),
		Role:        d.Role,
		Position:    position,
		Orientation: d.Matrix.Quaternion(),
		Buttons:     d.Buttons,
		TrackpadX:   d.TrackpadX,
		TrackpadY:   d.TrackpadY,
		Trigger:     d.Trigger,
	})
	l.accepted.Add(1)
}

// noTracker transitions into StateNoTracker, resetting the filter so
// the next reacquired sample is auto-accepted.
func (l *Loop) noTracker() {
	l.emptyTicks.Add(1)
	if l.state != StateNoTracker {
		l.state = StateNoTracker
		l.jf.Reset()
		l.lastAccept = time.Time{}
	}
	// Throttle the idle log to once a second.
	if now := time.Now(); now.Sub(l.lastIdle) >= time.Second {
		l.lastIdle = now
		log.Info("no tracker detected")
	}
}

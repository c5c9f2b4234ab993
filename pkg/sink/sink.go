// Package sink delivers the pipeline's outputs to the downstream
// consumer: two named transform frames per sample plus one telemetry
// message carrying everything.
package sink

import (
	"time"

	"github.com/teleopkit/go-vive/pkg/pose"
	"github.com/teleopkit/go-vive/pkg/relpose"
)

// Frame names published downstream.
const (
	FrameAbsolute = "vive_pose_abs"
	FrameRelative = "vive_pose_rel"
)

// Telemetry is the full per-sample message: every input field and both
// transforms, already remapped to the sink's axis convention.
type Telemetry struct {
	Sample   pose.Sample
	Absolute relpose.Transform
	Relative *relpose.Transform // nil while the trigger is up
}

// Sink accepts named transforms and telemetry. Implementations must be
// safe to call from the client's sequential delivery goroutine.
type Sink interface {
	PublishTransform(frame string, t relpose.Transform, stamp time.Time) error
	PublishTelemetry(tel Telemetry) error
	Close() error
}

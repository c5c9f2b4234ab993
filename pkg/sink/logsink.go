package sink

import (
	"time"

	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/relpose"
)

// LogSink writes transforms to the structured log. Useful when no
// broker is configured and for development.
type LogSink struct{}

// NewLog returns a sink that logs at debug level.
func NewLog() *LogSink { return &LogSink{} }

func (*LogSink) PublishTransform(frame string, t relpose.Transform, stamp time.Time) error {
	log.Debug("transform",
		"frame", frame,
		"x", t.Position[0], "y", t.Position[1], "z", t.Position[2],
		"qw", t.Orientation.W,
	)
	return nil
}

func (*LogSink) PublishTelemetry(tel Telemetry) error {
	log.Debug("telemetry",
		"role", tel.Sample.Role,
		"time", tel.Sample.Time,
		"trigger", tel.Sample.Trigger,
		"latched", tel.Relative != nil,
	)
	return nil
}

func (*LogSink) Close() error { return nil }

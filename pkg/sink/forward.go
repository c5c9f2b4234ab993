package sink

import (
	"time"

	"github.com/teleopkit/go-vive/internal/log"
	"github.com/teleopkit/go-vive/pkg/relpose"
	"github.com/teleopkit/go-vive/pkg/wire"
)

// Forwarder glues the stream client to the engine and the sink: each
// decoded message is processed, remapped to the sink convention and
// published. Publish failures are logged, never propagated — one lost
// message must not stall the stream.
type Forwarder struct {
	engine *relpose.Engine
	sink   Sink
}

// NewForwarder builds the glue around a fresh engine.
func NewForwarder(s Sink) *Forwarder {
	return &Forwarder{engine: relpose.NewEngine(), sink: s}
}

// Handle is a client.Handler.
func (f *Forwarder) Handle(msg wire.Message) {
	sample := msg.Sample()
	abs, rel := f.engine.Process(sample)

	now := time.Now()
	absOut := relpose.ToSinkFrame(abs)
	if err := f.sink.PublishTransform(FrameAbsolute, absOut, now); err != nil {
		log.Warn("publish absolute transform", "error", err)
	}

	tel := Telemetry{Sample: sample, Absolute: absOut}
	if rel != nil {
		relOut := relpose.ToSinkFrame(*rel)
		if err := f.sink.PublishTransform(FrameRelative, relOut, now); err != nil {
			log.Warn("publish relative transform", "error", err)
		}
		tel.Relative = &relOut
	}

	if err := f.sink.PublishTelemetry(tel); err != nil {
		log.Warn("publish telemetry", "error", err)
	}
}

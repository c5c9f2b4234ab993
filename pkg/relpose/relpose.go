// Package relpose turns decoded samples into absolute and
// trigger-latched relative transforms. The engine is strictly
// sequential: the client feeds it one sample at a time, so no locking
// guards the reference frame.
package relpose

import "github.com/teleopkit/go-vive/pkg/pose"

// Transform is a position plus orientation in some frame.
type Transform struct {
	Position    [3]float64
	Orientation pose.Quaternion
}

// Engine tracks the latched reference frame. Zero value is not ready;
// use NewEngine. State is session-local: a fresh engine per connection.
type Engine struct {
	ref     Transform
	latched bool
}

// NewEngine returns an engine with no reference latched.
func NewEngine() *Engine {
	return &Engine{}
}

// Latched reports whether a reference frame is currently held.
func (e *Engine) Latched() bool {
	return e.latched
}

// Reset drops any latched reference, as when a session ends.
func (e *Engine) Reset() {
	e.latched = false
	e.ref = Transform{}
}

// Process consumes one sample and returns its absolute transform plus,
// while the trigger is held, the transform relative to the latched
// reference. The reference latches on the trigger's false→true edge and
// re-latches on any sample with the menu button down.
func (e *Engine) Process(s pose.Sample) (Transform, *Transform) {
	cur := Transform{Position: s.Position, Orientation: s.Orientation}

	if s.Buttons.Trigger && !e.latched {
		e.ref = cur
		e.latched = true
	} else if !s.Buttons.Trigger && e.latched {
		e.latched = false
	}

	var rel *Transform
	if e.latched {
		r := relative(e.ref, cur)
		rel = &r
	}

	// Menu resets the reference for the next tick; the transform already
	// computed this tick still used the old one.
	if s.Buttons.Menu {
		e.ref = cur
	}

	return cur, rel
}

// relative expresses cur in the reference frame: the orientation as
// inverse(q_ref) ∘ q_cur, the position delta rotated into the
// reference basis by the quaternion sandwich inverse(q_ref) ∘ Δp ∘ q_ref.
func relative(ref, cur Transform) Transform {
	invRef := ref.Orientation.Conjugate()
	dp := [3]float64{
		cur.Position[0] - ref.Position[0],
		cur.Position[1] - ref.Position[1],
		cur.Position[2] - ref.Position[2],
	}
	return Transform{
		Position:    invRef.Rotate(dp),
		Orientation: invRef.Mul(cur.Orientation),
	}
}

// ToSinkFrame remaps a transform into the downstream sink's axis
// convention. The mapping is fixed:
//
//	out.x = -in.z    out.qx = -in.qz
//	out.y = -in.x    out.qy = -in.qx
//	out.z =  in.y    out.qz =  in.qy
//	                 out.qw =  in.qw
//
// Applied after the absolute/relative computation; never part of the
// engine's math.
func ToSinkFrame(t Transform) Transform {
	return Transform{
		Position: [3]float64{
			-t.Position[2],
			-t.Position[0],
			t.Position[1],
		},
		Orientation: pose.Quaternion{
			X: -t.Orientation.Z,
			Y: -t.Orientation.X,
			Z: t.Orientation.Y,
			W: t.Orientation.W,
		},
	}
}

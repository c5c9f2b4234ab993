package relpose

import (
	"math"
	"testing"

	"github.com/teleopkit/go-vive/pkg/pose"
)

func sampleAt(p [3]float64, q pose.Quaternion, trigger, menu bool) pose.Sample {
	return pose.Sample{
		Position:    p,
		Orientation: q,
		Buttons:     pose.Buttons{Trigger: trigger, Menu: menu},
	}
}

func vecNear(a, b [3]float64, eps float64) bool {
	return math.Abs(a[0]-b[0]) < eps &&
		math.Abs(a[1]-b[1]) < eps &&
		math.Abs(a[2]-b[2]) < eps
}

func quatNear(a, b pose.Quaternion, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Z-b.Z) < eps && math.Abs(a.W-b.W) < eps
}

func TestIdenticalSampleYieldsIdentityRelative(t *testing.T) {
	e := NewEngine()

	e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, true, false))
	_, rel := e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, true, false))

	if rel == nil {
		t.Fatal("no relative transform while trigger held")
	}
	if !vecNear(rel.Position, [3]float64{0, 0, 0}, 1e-12) {
		t.Errorf("relative position = %v, want zero", rel.Position)
	}
	if !quatNear(rel.Orientation, pose.Identity, 1e-12) {
		t.Errorf("relative orientation = %+v, want identity", rel.Orientation)
	}
}

func TestPureTranslation(t *testing.T) {
	e := NewEngine()

	e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, true, false))
	_, rel := e.Process(sampleAt([3]float64{1, 0, 0}, pose.Identity, true, false))

	if rel == nil {
		t.Fatal("no relative transform while trigger held")
	}
	if !vecNear(rel.Position, [3]float64{1, 0, 0}, 1e-12) {
		t.Errorf("relative position = %v, want (1,0,0)", rel.Position)
	}
}

func TestTranslationExpressedInRotatedReference(t *testing.T) {
	// Reference rotated 90° about z: a world-frame move along +x reads
	// as (0,-1,0) in the reference basis.
	qz90 := pose.Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}

	e := NewEngine()
	e.Process(sampleAt([3]float64{0, 0, 0}, qz90, true, false))
	_, rel := e.Process(sampleAt([3]float64{1, 0, 0}, qz90, true, false))

	if rel == nil {
		t.Fatal("no relative transform while trigger held")
	}
	if !vecNear(rel.Position, [3]float64{0, -1, 0}, 1e-9) {
		t.Errorf("relative position = %v, want (0,-1,0)", rel.Position)
	}
	if !quatNear(rel.Orientation, pose.Identity, 1e-9) {
		t.Errorf("relative orientation = %+v, want identity", rel.Orientation)
	}
}

func TestRelativeOrientation(t *testing.T) {
	qz90 := pose.Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}

	e := NewEngine()
	e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, true, false))
	_, rel := e.Process(sampleAt([3]float64{0, 0, 0}, qz90, true, false))

	if rel == nil {
		t.Fatal("no relative transform while trigger held")
	}
	// inverse(identity) ∘ qz90 = qz90.
	if !quatNear(rel.Orientation, qz90, 1e-12) {
		t.Errorf("relative orientation = %+v, want %+v", rel.Orientation, qz90)
	}
}

func TestTriggerEdgeLatchesOnce(t *testing.T) {
	e := NewEngine()

	// false, true, true, false: one latch, relative output on the two
	// true ticks only.
	if _, rel := e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, false, false)); rel != nil {
		t.Error("relative transform with trigger up")
	}

	_, rel1 := e.Process(sampleAt([3]float64{1, 0, 0}, pose.Identity, true, false))
	if rel1 == nil {
		t.Fatal("no relative transform on trigger edge")
	}
	// Latch snapshots the edge sample itself, so the first relative is zero.
	if !vecNear(rel1.Position, [3]float64{0, 0, 0}, 1e-12) {
		t.Errorf("edge-tick relative position = %v, want zero", rel1.Position)
	}

	_, rel2 := e.Process(sampleAt([3]float64{1.5, 0, 0}, pose.Identity, true, false))
	if rel2 == nil {
		t.Fatal("no relative transform while trigger held")
	}
	// Still measured against the edge sample: the latch did not move.
	if !vecNear(rel2.Position, [3]float64{0.5, 0, 0}, 1e-12) {
		t.Errorf("held-tick relative position = %v, want (0.5,0,0)", rel2.Position)
	}

	if _, rel := e.Process(sampleAt([3]float64{2, 0, 0}, pose.Identity, false, false)); rel != nil {
		t.Error("relative transform after trigger release")
	}
	if e.Latched() {
		t.Error("still latched after release")
	}
}

func TestMenuRelatchesWhileHeld(t *testing.T) {
	e := NewEngine()

	e.Process(sampleAt([3]float64{0, 0, 0}, pose.Identity, true, false))
	e.Process(sampleAt([3]float64{1, 0, 0}, pose.Identity, true, true)) // menu resets here

	// After the menu reset the reference is at (1,0,0).
	_, rel := e.Process(sampleAt([3]float64{1.25, 0, 0}, pose.Identity, true, false))
	if rel == nil {
		t.Fatal("no relative transform while trigger held")
	}
	if !vecNear(rel.Position, [3]float64{0.25, 0, 0}, 1e-12) {
		t.Errorf("relative position = %v, want (0.25,0,0)", rel.Position)
	}
}

func TestAbsoluteAlwaysEmitted(t *testing.T) {
	e := NewEngine()
	p := [3]float64{0.5, 1.25, -2}

	abs, rel := e.Process(sampleAt(p, pose.Identity, false, false))
	if rel != nil {
		t.Error("relative transform with trigger up")
	}
	if !vecNear(abs.Position, p, 1e-12) {
		t.Errorf("absolute position = %v, want %v", abs.Position, p)
	}
}

func TestToSinkFrame(t *testing.T) {
	in := Transform{
		Position:    [3]float64{1, 2, 3},
		Orientation: pose.Quaternion{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9},
	}
	out := ToSinkFrame(in)

	if !vecNear(out.Position, [3]float64{-3, -1, 2}, 1e-12) {
		t.Errorf("position = %v, want (-3,-1,2)", out.Position)
	}
	want := pose.Quaternion{X: -0.3, Y: -0.1, Z: 0.2, W: 0.9}
	if !quatNear(out.Orientation, want, 1e-12) {
		t.Errorf("orientation = %+v, want %+v", out.Orientation, want)
	}
}

package tracker

import (
	"testing"
	"time"

	"github.com/teleopkit/go-vive/pkg/pose"
)

func TestMockProducesQualifyingDevice(t *testing.T) {
	m := NewMock()
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer m.Close()

	devices, err := m.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}

	d := devices[0]
	if !d.Connected || !d.PoseValid || !d.TrackingOK {
		t.Errorf("device flags = %+v", d)
	}
	if d.Class != ClassGenericTracker {
		t.Errorf("Class = %v, want ClassGenericTracker", d.Class)
	}
	if q := d.Matrix.Quaternion(); q.Norm() < 0.999 || q.Norm() > 1.001 {
		t.Errorf("|q| = %v, want 1", q.Norm())
	}
}

func TestMockMotionStaysUnderRejectThreshold(t *testing.T) {
	m := NewMock()
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer m.Close()

	// At the active cadence consecutive polls must move less than the
	// filter threshold, or the mock would reject its own samples.
	first, _ := m.Poll()
	time.Sleep(5 * time.Millisecond)
	second, _ := m.Poll()

	d := pose.Displacement(first[0].Matrix.Position(), second[0].Matrix.Position())
	if d >= 0.05 {
		t.Errorf("displacement per tick = %v m, want < 0.05", d)
	}
}

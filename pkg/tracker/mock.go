package tracker

import (
	"math"
	"time"

	"github.com/teleopkit/go-vive/pkg/pose"
)

// Mock is a hardware-free Runtime that moves one generic tracker along
// a horizontal circle, facing the direction of travel. The trigger is
// squeezed and released on a slow cycle so the latch logic downstream
// gets exercised end to end.
type Mock struct {
	start  time.Time
	radius float64 // meters
	omega  float64 // radians/second around the circle
}

// NewMock returns a mock tracker runtime.
func NewMock() *Mock {
	return &Mock{
		radius: 0.2,
		omega:  math.Pi, // half a revolution per second
	}
}

// Init records the session start. Never fails.
func (m *Mock) Init() error {
	m.start = time.Now()
	return nil
}

// Poll synthesizes the single tracked device for the current instant.
func (m *Mock) Poll() ([]DeviceState, error) {
	t := time.Since(m.start).Seconds()
	angle := m.omega * t

	c, s := math.Cos(angle), math.Sin(angle)
	matrix := pose.Matrix34{
		{c, 0, s, m.radius * c},
		{0, 1, 0, 1.0}, // tracker held at 1m height
		{-s, 0, c, m.radius * s},
	}

	// Squeeze for two seconds out of every five.
	trigger := 0.0
	if math.Mod(t, 5) < 2 {
		trigger = 1.0
	}

	return []DeviceState{{
		Connected:  true,
		PoseValid:  true,
		TrackingOK: true,
		Class:      ClassGenericTracker,
		Role:       RoleRightHand,
		Matrix:     matrix,
		Buttons: pose.Buttons{
			Trigger: trigger > 0.5,
		},
		Trigger: trigger,
	}}, nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// Package tracker defines the seam to the device-tracking runtime.
// Exactly one runtime session exists per process: acquired at startup,
// polled by the producer loop, released on every exit path.
package tracker

import "github.com/teleopkit/go-vive/pkg/pose"

// Class identifies what kind of tracked device a slot holds.
type Class int

const (
	ClassInvalid Class = iota
	ClassHMD
	ClassController
	ClassGenericTracker
)

// Device roles as reported by the runtime. Stable for the lifetime of
// a device connection.
const (
	RoleInvalid   = 0
	RoleLeftHand  = 1
	RoleRightHand = 2
)

// DeviceState is one device slot from a single poll. A slot only
// qualifies for the pipeline when Connected, PoseValid and TrackingOK
// all hold and the class is ClassGenericTracker.
type DeviceState struct {
	Connected  bool
	PoseValid  bool
	TrackingOK bool
	Class      Class
	Role       int
	Matrix     pose.Matrix34

	// Inputs reported alongside the pose.
	Buttons   pose.Buttons
	TrackpadX float64
	TrackpadY float64
	Trigger   float64
}

// Runtime is the device-tracking collaborator. Init failure is fatal to
// the process; Poll failures mid-run are not.
type Runtime interface {
	Init() error
	Poll() ([]DeviceState, error)
	Close() error
}

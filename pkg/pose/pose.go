// Package pose defines the pose sample value type shared by the whole
// pipeline, plus the quaternion and tracking-matrix math it needs.
package pose

import (
	"math"
	"time"
)

// TimeLayout is the wall-clock format carried in every sample,
// millisecond resolution.
const TimeLayout = "2006-01-02 15:04:05.000"

// Now returns the current wall clock in TimeLayout.
func Now() string {
	return time.Now().Format(TimeLayout)
}

// Buttons holds the digital inputs of a tracked device.
type Buttons struct {
	Grip           bool
	Trigger        bool
	TrackpadButton bool
	TrackpadTouch  bool
	Menu           bool
}

// Sample is one timestamped pose + input reading. It is a value type:
// created once per accepted tick, never mutated, superseded by the next
// sample.
type Sample struct {
	Time        string
	Role        int
	Position    [3]float64
	Orientation Quaternion
	Buttons     Buttons
	TrackpadX   float64 // [-1, 1]
	TrackpadY   float64 // [-1, 1]
	Trigger     float64 // [0, 1]
}

// Matrix34 is a row-major 3x4 device-to-absolute tracking matrix: a 3x3
// rotation with the translation in the fourth column.
type Matrix34 [3][4]float64

// Position extracts the translation column.
func (m Matrix34) Position() [3]float64 {
	return [3]float64{m[0][3], m[1][3], m[2][3]}
}

// Quaternion converts the rotation part to a unit quaternion using the
// copysign form, which stays stable for all proper rotations.
func (m Matrix34) Quaternion() Quaternion {
	q := Quaternion{
		W: math.Sqrt(math.Max(0, 1+m[0][0]+m[1][1]+m[2][2])) / 2,
		X: math.Sqrt(math.Max(0, 1+m[0][0]-m[1][1]-m[2][2])) / 2,
		Y: math.Sqrt(math.Max(0, 1-m[0][0]+m[1][1]-m[2][2])) / 2,
		Z: math.Sqrt(math.Max(0, 1-m[0][0]-m[1][1]+m[2][2])) / 2,
	}
	q.X = math.Copysign(q.X, m[2][1]-m[1][2])
	q.Y = math.Copysign(q.Y, m[0][2]-m[2][0])
	q.Z = math.Copysign(q.Z, m[1][0]-m[0][1])
	return q.Normalized()
}

// Displacement returns the Euclidean distance between two positions.
func Displacement(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

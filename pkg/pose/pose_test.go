package pose

import (
	"math"
	"testing"
)

const tol = 1e-9

func quatEqual(a, b Quaternion, eps float64) bool {
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Z-b.Z) < eps &&
		math.Abs(a.W-b.W) < eps
}

func vecEqual(a, b [3]float64, eps float64) bool {
	return math.Abs(a[0]-b[0]) < eps &&
		math.Abs(a[1]-b[1]) < eps &&
		math.Abs(a[2]-b[2]) < eps
}

func TestQuaternionMulIdentity(t *testing.T) {
	q := Quaternion{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9}.Normalized()

	if got := q.Mul(Identity); !quatEqual(got, q, tol) {
		t.Errorf("q*identity = %+v, want %+v", got, q)
	}
	if got := Identity.Mul(q); !quatEqual(got, q, tol) {
		t.Errorf("identity*q = %+v, want %+v", got, q)
	}
}

func TestQuaternionConjugateIsInverse(t *testing.T) {
	q := Quaternion{X: 0.3, Y: -0.4, Z: 0.2, W: 0.8}.Normalized()

	got := q.Mul(q.Conjugate())
	if !quatEqual(got, Identity, tol) {
		t.Errorf("q*conj(q) = %+v, want identity", got)
	}
}

func TestQuaternionRotate(t *testing.T) {
	tests := []struct {
		name string
		q    Quaternion
		v    [3]float64
		want [3]float64
	}{
		{
			name: "identity leaves vector alone",
			q:    Identity,
			v:    [3]float64{1, 2, 3},
			want: [3]float64{1, 2, 3},
		},
		{
			name: "90deg about z maps x to y",
			q:    Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)},
			v:    [3]float64{1, 0, 0},
			want: [3]float64{0, 1, 0},
		},
		{
			name: "180deg about y negates x and z",
			q:    Quaternion{Y: 1},
			v:    [3]float64{1, 0, 2},
			want: [3]float64{-1, 0, -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Rotate(tt.v); !vecEqual(got, tt.want, 1e-12) {
				t.Errorf("Rotate(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestNormalizedZeroQuaternion(t *testing.T) {
	if got := (Quaternion{}).Normalized(); !quatEqual(got, Identity, tol) {
		t.Errorf("zero quaternion normalized to %+v, want identity", got)
	}
}

func yawMatrix(angle, x, y, z float64) Matrix34 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix34{
		{c, 0, s, x},
		{0, 1, 0, y},
		{-s, 0, c, z},
	}
}

func TestMatrixPosition(t *testing.T) {
	m := yawMatrix(0, 1.5, -2.0, 0.25)
	if got := m.Position(); !vecEqual(got, [3]float64{1.5, -2.0, 0.25}, tol) {
		t.Errorf("Position() = %v", got)
	}
}

func TestMatrixQuaternionRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, 0.3, math.Pi / 2, 2.5, -1.1} {
		m := yawMatrix(angle, 0, 0, 0)
		q := m.Quaternion()

		if n := q.Norm(); math.Abs(n-1) > tol {
			t.Fatalf("angle %v: |q| = %v, want 1", angle, n)
		}

		// Rotating the x axis by the quaternion must match the matrix.
		want := [3]float64{math.Cos(angle), 0, -math.Sin(angle)}
		if got := q.Rotate([3]float64{1, 0, 0}); !vecEqual(got, want, 1e-9) {
			t.Errorf("angle %v: rotated x = %v, want %v", angle, got, want)
		}
	}
}

func TestDisplacement(t *testing.T) {
	a := [3]float64{0, 0, 0}
	b := [3]float64{3, 4, 0}
	if got := Displacement(a, b); math.Abs(got-5) > tol {
		t.Errorf("Displacement = %v, want 5", got)
	}
}

package pose

import "math"

// Quaternion is a rotation in x, y, z, w component order.
type Quaternion struct {
	X, Y, Z, W float64
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}

// Mul returns the Hamilton product q ∘ r. Applying the result rotates
// first by r, then by q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Conjugate returns the conjugate of q. For a unit quaternion this is
// its inverse.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Norm returns the quaternion magnitude.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns q scaled to unit length. A zero quaternion
// normalizes to identity rather than NaN.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Rotate applies the rotation to a vector using the sandwich product
// q ∘ v ∘ q*, with v treated as a pure quaternion.
func (q Quaternion) Rotate(v [3]float64) [3]float64 {
	p := Quaternion{X: v[0], Y: v[1], Z: v[2]}
	r := q.Mul(p).Mul(q.Conjugate())
	return [3]float64{r.X, r.Y, r.Z}
}

package physics

import "math"

// degenerateSq is the squared length below which a vector is treated as zero.
const degenerateSq = 1e-6

// Vec3 is a position or direction in world space.
// Gameplay happens in the XY plane; Z is carried so rotations can use an arbitrary axis.
type Vec3 struct {
	X, Y, Z float64
}

// Common directions.
var (
	Right   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// LengthSquared returns the squared magnitude (no sqrt).
func (v Vec3) LengthSquared() float64 {
	return v.Dot(v)
}

// Length returns the magnitude of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// IsDegenerate reports whether v is too short to define a direction.
func (v Vec3) IsDegenerate() bool {
	return v.LengthSquared() < degenerateSq
}

// Normalized returns v scaled to unit length, or the zero vector if v is degenerate.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between v (t=0) and o (t=1).
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// RotateAroundAxis rotates v by angleDeg degrees around axis (right-hand rule).
// The axis does not need to be normalized; a degenerate axis leaves v unchanged.
func (v Vec3) RotateAroundAxis(axis Vec3, angleDeg float64) Vec3 {
	if axis.IsDegenerate() {
		return v
	}
	k := axis.Normalized()
	theta := angleDeg * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	// Rodrigues: v*cos + (k x v)*sin + k*(k.v)*(1-cos)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// PlaneBasis returns two unit vectors spanning the plane perpendicular to normal.
// For the default forward normal this is (Right, Up).
func PlaneBasis(normal Vec3) (u, w Vec3) {
	n := normal.Normalized()
	if n.IsDegenerate() {
		n = Forward
	}
	ref := Right
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = Up
	}
	u = ref.Sub(n.Scale(n.Dot(ref))).Normalized()
	w = n.Cross(u)
	return u, w
}

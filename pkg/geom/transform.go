package geom

import "math"

// Transform3 is a 4x4 affine transform in row-major order. The zero
// value is degenerate; start from Identity.
type Transform3 struct {
	m [16]float64
}

// Identity returns the identity transform.
func Identity() Transform3 {
	return Transform3{m: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// FromTranslation returns a transform that translates by v.
func FromTranslation(v Vector3) Transform3 {
	return Transform3{m: [16]float64{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}}
}

// FromScale returns a transform that scales each axis independently
// about the origin.
func FromScale(sx, sy, sz float64) Transform3 {
	return Transform3{m: [16]float64{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	}}
}

// FromRotationX returns a rotation of angle radians about the X axis.
func FromRotationX(angle float64) Transform3 {
	s, c := math.Sincos(angle)
	return Transform3{m: [16]float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}}
}

// FromRotationY returns a rotation of angle radians about the Y axis.
func FromRotationY(angle float64) Transform3 {
	s, c := math.Sincos(angle)
	return Transform3{m: [16]float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}}
}

// FromRotationZ returns a rotation of angle radians about the Z axis.
func FromRotationZ(angle float64) Transform3 {
	s, c := math.Sincos(angle)
	return Transform3{m: [16]float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// FromAxisAngle returns a rotation of angle radians about an arbitrary
// axis through the origin. Returns false if the axis is degenerate.
func FromAxisAngle(axis Vector3, angle float64) (Transform3, bool) {
	a, ok := axis.Normalize()
	if !ok {
		return Transform3{}, false
	}
	s, c := math.Sincos(angle)
	t := 1 - c
	x, y, z := a.X, a.Y, a.Z
	return Transform3{m: [16]float64{
		t*x*x + c, t*x*y - s*z, t*x*z + s*y, 0,
		t*x*y + s*z, t*y*y + c, t*y*z - s*x, 0,
		t*x*z - s*y, t*y*z + s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}}, true
}

// Then composes transforms so that t is applied first and next second.
func (t Transform3) Then(next Transform3) Transform3 {
	return next.mul(t)
}

// mul returns t * other as raw matrix multiplication.
func (t Transform3) mul(other Transform3) Transform3 {
	var out Transform3
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += t.m[row*4+k] * other.m[k*4+col]
			}
			out.m[row*4+col] = sum
		}
	}
	return out
}

// ApplyPoint transforms a point, including translation.
func (t Transform3) ApplyPoint(p Point3) Point3 {
	return Pt(
		t.m[0]*p.X+t.m[1]*p.Y+t.m[2]*p.Z+t.m[3],
		t.m[4]*p.X+t.m[5]*p.Y+t.m[6]*p.Z+t.m[7],
		t.m[8]*p.X+t.m[9]*p.Y+t.m[10]*p.Z+t.m[11],
	)
}

// ApplyVector transforms a direction, ignoring translation.
func (t Transform3) ApplyVector(v Vector3) Vector3 {
	return Vec(
		t.m[0]*v.X+t.m[1]*v.Y+t.m[2]*v.Z,
		t.m[4]*v.X+t.m[5]*v.Y+t.m[6]*v.Z,
		t.m[8]*v.X+t.m[9]*v.Y+t.m[10]*v.Z,
	)
}

// Inverse returns the inverse transform. The second return is false
// when the matrix is singular.
func (t Transform3) Inverse() (Transform3, bool) {
	// Affine inverse: invert the 3x3 linear part, then the translation.
	a := [9]float64{
		t.m[0], t.m[1], t.m[2],
		t.m[4], t.m[5], t.m[6],
		t.m[8], t.m[9], t.m[10],
	}
	det := a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
	if math.Abs(det) < Tolerance {
		return Transform3{}, false
	}
	inv := 1 / det
	r := [9]float64{
		(a[4]*a[8] - a[5]*a[7]) * inv,
		(a[2]*a[7] - a[1]*a[8]) * inv,
		(a[1]*a[5] - a[2]*a[4]) * inv,
		(a[5]*a[6] - a[3]*a[8]) * inv,
		(a[0]*a[8] - a[2]*a[6]) * inv,
		(a[2]*a[3] - a[0]*a[5]) * inv,
		(a[3]*a[7] - a[4]*a[6]) * inv,
		(a[1]*a[6] - a[0]*a[7]) * inv,
		(a[0]*a[4] - a[1]*a[3]) * inv,
	}
	tx, ty, tz := t.m[3], t.m[7], t.m[11]
	return Transform3{m: [16]float64{
		r[0], r[1], r[2], -(r[0]*tx + r[1]*ty + r[2]*tz),
		r[3], r[4], r[5], -(r[3]*tx + r[4]*ty + r[5]*tz),
		r[6], r[7], r[8], -(r[6]*tx + r[7]*ty + r[8]*tz),
		0, 0, 0, 1,
	}}, true
}

// Package geom provides the geometric value types underlying the B-Rep
// kernel: points, vectors, planes, lines, rays, segments, bounding boxes
// and affine transforms. All comparisons go through Tolerance; degenerate
// but legal input (zero-length directions, coincident points) produces a
// well-defined default or a false second return, never a panic.
package geom

import "math"

// Tolerance is the kernel-wide tolerance for geometric comparisons.
// Coordinates accumulate floating point error through transforms, so
// equality, coincidence and degeneracy checks all compare against this
// rather than exact zero.
const Tolerance = 1e-9

// Point3 is a location in 3D space.
type Point3 struct {
	X, Y, Z float64
}

// Origin is the zero point.
var Origin = Point3{}

// Pt returns the point (x, y, z).
func Pt(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// Sub returns the vector from q to p.
func (p Point3) Sub(q Point3) Vector3 {
	return Vector3{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Add returns the point offset by v.
func (p Point3) Add(v Vector3) Point3 {
	return Point3{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Distance returns the distance between two points.
func (p Point3) Distance(q Point3) float64 {
	return p.Sub(q).Length()
}

// DistanceSquared returns the squared distance (no sqrt).
func (p Point3) DistanceSquared(q Point3) float64 {
	return p.Sub(q).LengthSquared()
}

// ApproxEq reports whether two points coincide within tol.
func (p Point3) ApproxEq(q Point3, tol float64) bool {
	return p.DistanceSquared(q) < tol*tol
}

// Lerp linearly interpolates between p and q.
func (p Point3) Lerp(q Point3, t float64) Point3 {
	return Point3{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// Midpoint returns the point halfway between p and q.
func (p Point3) Midpoint(q Point3) Point3 {
	return p.Lerp(q, 0.5)
}

// Vec returns p as a vector from the origin.
func (p Point3) Vec() Vector3 {
	return Vector3(p)
}

// Vector3 is a direction or displacement in 3D space.
type Vector3 struct {
	X, Y, Z float64
}

// Axis vectors.
var (
	ZeroVec = Vector3{}
	UnitX   = Vector3{X: 1}
	UnitY   = Vector3{Y: 1}
	UnitZ   = Vector3{Z: 1}
)

// Vec returns the vector (x, y, z).
func Vec(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Point returns v interpreted as a point.
func (v Vector3) Point() Point3 {
	return Point3(v)
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns -v.
func (v Vector3) Neg() Vector3 {
	return Vector3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product v · w.
func (v Vector3) Dot(w Vector3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v × w.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns |v|.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns |v|² (no sqrt).
func (v Vector3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns the unit vector in the direction of v.
// The second return is false if v is shorter than Tolerance.
func (v Vector3) Normalize() (Vector3, bool) {
	l := v.Length()
	if l < Tolerance {
		return Vector3{}, false
	}
	return Vector3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}, true
}

// NormalizeOrZ normalizes v, falling back to the unit Z axis for
// degenerate input so callers never propagate NaN.
func (v Vector3) NormalizeOrZ() Vector3 {
	n, ok := v.Normalize()
	if !ok {
		return UnitZ
	}
	return n
}

// Angle returns the angle between v and w in radians, or 0 if either
// vector is degenerate.
func (v Vector3) Angle(w Vector3) float64 {
	lp := v.Length() * w.Length()
	if lp < Tolerance {
		return 0
	}
	c := v.Dot(w) / lp
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// ProjectOnto returns the component of v along w, or the zero vector if
// w is degenerate.
func (v Vector3) ProjectOnto(w Vector3) Vector3 {
	ls := w.LengthSquared()
	if ls < Tolerance {
		return Vector3{}
	}
	return w.Scale(v.Dot(w) / ls)
}

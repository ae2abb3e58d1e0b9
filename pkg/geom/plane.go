package geom

import "math"

// Plane is an infinite plane defined by a point and a unit normal.
type Plane struct {
	Origin Point3
	Normal Vector3
}

// Principal planes through the origin.
var (
	PlaneXY = Plane{Origin: Origin, Normal: UnitZ}
	PlaneXZ = Plane{Origin: Origin, Normal: UnitY}
	PlaneYZ = Plane{Origin: Origin, Normal: UnitX}
)

// NewPlane builds a plane from a point and a normal direction.
// Returns false if the normal is degenerate.
func NewPlane(origin Point3, normal Vector3) (Plane, bool) {
	n, ok := normal.Normalize()
	if !ok {
		return Plane{}, false
	}
	return Plane{Origin: origin, Normal: n}, true
}

// PlaneFromPoints builds the plane through three non-collinear points.
// Returns false if the points are collinear within tolerance.
func PlaneFromPoints(p1, p2, p3 Point3) (Plane, bool) {
	n, ok := p2.Sub(p1).Cross(p3.Sub(p1)).Normalize()
	if !ok {
		return Plane{}, false
	}
	return Plane{Origin: p1, Normal: n}, true
}

// SignedDistance returns the distance from p to the plane, positive on
// the side the normal points toward.
func (pl Plane) SignedDistance(p Point3) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}

// Project returns the closest point on the plane to p.
func (pl Plane) Project(p Point3) Point3 {
	return p.Add(pl.Normal.Scale(-pl.SignedDistance(p)))
}

// Line is an infinite line through Origin along the unit Direction.
type Line struct {
	Origin    Point3
	Direction Vector3
}

// NewLine builds a line from a point and a direction.
// Returns false if the direction is degenerate.
func NewLine(origin Point3, direction Vector3) (Line, bool) {
	d, ok := direction.Normalize()
	if !ok {
		return Line{}, false
	}
	return Line{Origin: origin, Direction: d}, true
}

// LineFromPoints builds the line through two distinct points.
func LineFromPoints(p1, p2 Point3) (Line, bool) {
	return NewLine(p1, p2.Sub(p1))
}

// At returns the point at parameter t along the line.
func (l Line) At(t float64) Point3 {
	return l.Origin.Add(l.Direction.Scale(t))
}

// ProjectParam returns the parameter of the closest point on the line to p.
func (l Line) ProjectParam(p Point3) float64 {
	return p.Sub(l.Origin).Dot(l.Direction)
}

// Project returns the closest point on the line to p.
func (l Line) Project(p Point3) Point3 {
	return l.At(l.ProjectParam(p))
}

// DistanceToPoint returns the perpendicular distance from p to the line.
func (l Line) DistanceToPoint(p Point3) float64 {
	return p.Distance(l.Project(p))
}

// Ray is a half-infinite line from Origin along the unit Direction.
type Ray struct {
	Origin    Point3
	Direction Vector3
}

// NewRay builds a ray from a point and a direction.
// Returns false if the direction is degenerate.
func NewRay(origin Point3, direction Vector3) (Ray, bool) {
	d, ok := direction.Normalize()
	if !ok {
		return Ray{}, false
	}
	return Ray{Origin: origin, Direction: d}, true
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Point3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane returns the ray parameter where the ray crosses the
// plane. The second return is false if the ray is parallel to the plane
// or the crossing lies behind the origin.
func (r Ray) IntersectPlane(pl Plane) (float64, bool) {
	denom := r.Direction.Dot(pl.Normal)
	if math.Abs(denom) < Tolerance {
		return 0, false
	}
	t := pl.Origin.Sub(r.Origin).Dot(pl.Normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Segment is a bounded line between two endpoints.
type Segment struct {
	Start, End Point3
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

// Midpoint returns the segment midpoint.
func (s Segment) Midpoint() Point3 {
	return s.Start.Midpoint(s.End)
}

// Direction returns the unnormalized direction from Start to End.
func (s Segment) Direction() Vector3 {
	return s.End.Sub(s.Start)
}

// At returns the point at parameter t, where 0 is Start and 1 is End.
func (s Segment) At(t float64) Point3 {
	return s.Start.Lerp(s.End, t)
}

// Line extends the segment to an infinite line.
func (s Segment) Line() (Line, bool) {
	return LineFromPoints(s.Start, s.End)
}

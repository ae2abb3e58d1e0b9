// Package intersect answers the geometric queries the boolean engine
// is built on: curve/surface intersections, ray casting, and
// point-in-solid classification.
package intersect

import (
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
)

// Classification places a point relative to a closed solid.
type Classification int

const (
	Outside Classification = iota
	Inside
	OnBoundary
)

func (c Classification) String() string {
	switch c {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case OnBoundary:
		return "on-boundary"
	default:
		return "unknown"
	}
}

// PlanePlane intersects two planes. The second return is false when
// the planes are parallel (coincident or disjoint).
func PlanePlane(a, b geom.Plane) (geom.Line, bool) {
	dir := a.Normal.Cross(b.Normal)
	lenSq := dir.LengthSquared()
	if lenSq < geom.Tolerance*geom.Tolerance {
		return geom.Line{}, false
	}
	// A point on both planes, from the plane constants d = n.o.
	da := a.Normal.Dot(a.Origin.Vec())
	db := b.Normal.Dot(b.Origin.Vec())
	p := b.Normal.Cross(dir).Scale(da).
		Add(dir.Cross(a.Normal).Scale(db)).
		Scale(1 / lenSq)
	l, _ := geom.NewLine(p.Point(), dir)
	return l, true
}

// RaySphere returns the ray parameters where the ray enters and exits
// a sphere, in increasing order. Parameters behind the ray origin are
// dropped; a miss returns an empty slice.
func RaySphere(r geom.Ray, center geom.Point3, radius float64) []float64 {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.LengthSquared() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return keepForward(-b-sq, -b+sq)
}

// RayCylinder returns the ray parameters where the ray crosses an
// infinite cylinder about axis, in increasing order. A ray parallel
// to the axis never crosses the wall.
func RayCylinder(r geom.Ray, axis geom.Line, radius float64) []float64 {
	// Work in the plane perpendicular to the axis.
	d := r.Direction.Sub(r.Direction.ProjectOnto(axis.Direction))
	oc := r.Origin.Sub(axis.Origin)
	oc = oc.Sub(oc.ProjectOnto(axis.Direction))

	a := d.LengthSquared()
	if a < geom.Tolerance*geom.Tolerance {
		return nil
	}
	b := oc.Dot(d)
	c := oc.LengthSquared() - radius*radius
	disc := b*b - a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return keepForward((-b-sq)/a, (-b+sq)/a)
}

func keepForward(t0, t1 float64) []float64 {
	var out []float64
	if t0 >= 0 {
		out = append(out, t0)
	}
	if t1 >= 0 && t1 != t0 {
		out = append(out, t1)
	}
	return out
}

// RayTriangle intersects a ray with a triangle using the
// Moller-Trumbore test. Returns the ray parameter and whether the
// triangle was hit in front of the origin.
func RayTriangle(r geom.Ray, a, b, c geom.Point3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < geom.Tolerance {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < -geom.Tolerance || u > 1+geom.Tolerance {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < -geom.Tolerance || u+v > 1+geom.Tolerance {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < geom.Tolerance {
		return 0, false
	}
	return t, true
}

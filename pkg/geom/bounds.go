package geom

import "math"

// Bounds3 is an axis-aligned bounding box. The zero value is not
// meaningful; use EmptyBounds or BoundsFromPoints.
type Bounds3 struct {
	Min, Max Point3
}

// EmptyBounds returns an inverted box that expands to fit the first
// point added to it.
func EmptyBounds() Bounds3 {
	return Bounds3{
		Min: Pt(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: Pt(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// BoundsFromPoints returns the smallest box containing all points.
// Returns an empty box when the slice is empty.
func BoundsFromPoints(points []Point3) Bounds3 {
	b := EmptyBounds()
	for _, p := range points {
		b = b.ExpandByPoint(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Bounds3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// ExpandByPoint grows the box to include p.
func (b Bounds3) ExpandByPoint(p Point3) Bounds3 {
	return Bounds3{
		Min: Pt(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)),
		Max: Pt(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)),
	}
}

// Union returns the smallest box containing both boxes.
func (b Bounds3) Union(other Bounds3) Bounds3 {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(other.Min).ExpandByPoint(other.Max)
}

// Contains reports whether p lies inside or on the box.
func (b Bounds3) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether the two boxes overlap or touch.
func (b Bounds3) Intersects(other Bounds3) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Expand returns the box grown by margin on every side.
func (b Bounds3) Expand(margin float64) Bounds3 {
	return Bounds3{
		Min: Pt(b.Min.X-margin, b.Min.Y-margin, b.Min.Z-margin),
		Max: Pt(b.Max.X+margin, b.Max.Y+margin, b.Max.Z+margin),
	}
}

// Center returns the box center.
func (b Bounds3) Center() Point3 {
	return b.Min.Midpoint(b.Max)
}

// Size returns the box extent along each axis.
func (b Bounds3) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b Bounds3) Diagonal() float64 {
	return b.Min.Distance(b.Max)
}

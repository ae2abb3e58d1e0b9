// Package primitive generates watertight solids for the basic shapes.
// All generators share the same conventions: round shapes are
// centered on the z axis, extruded shapes sit with their base at z=0,
// the sphere is centered at the origin, and every face winds
// counter-clockwise seen from outside.
package primitive

import (
	"errors"
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/topo"
)

// ErrInvalidDimension reports a non-positive size parameter.
var ErrInvalidDimension = errors.New("non-positive dimension")

// ErrTooFewSegments reports an angular resolution below 3.
var ErrTooFewSegments = errors.New("fewer than 3 segments")

// Box returns an axis-aligned box with its minimum corner at the
// origin, extending to (width, depth, height).
func Box(width, depth, height float64) (*topo.Solid, error) {
	if width < geom.Tolerance || depth < geom.Tolerance || height < geom.Tolerance {
		return nil, fmt.Errorf("primitive: box %gx%gx%g: %w", width, depth, height, ErrInvalidDimension)
	}

	b := topo.NewBuilder()
	c := [8]topo.VertexID{
		b.Vertex(geom.Pt(0, 0, 0)),
		b.Vertex(geom.Pt(width, 0, 0)),
		b.Vertex(geom.Pt(width, depth, 0)),
		b.Vertex(geom.Pt(0, depth, 0)),
		b.Vertex(geom.Pt(0, 0, height)),
		b.Vertex(geom.Pt(width, 0, height)),
		b.Vertex(geom.Pt(width, depth, height)),
		b.Vertex(geom.Pt(0, depth, height)),
	}

	faces := []struct {
		ids    [4]topo.VertexID
		origin geom.Point3
		normal geom.Vector3
	}{
		{[4]topo.VertexID{c[0], c[3], c[2], c[1]}, geom.Origin, geom.Vec(0, 0, -1)},
		{[4]topo.VertexID{c[4], c[5], c[6], c[7]}, geom.Pt(0, 0, height), geom.UnitZ},
		{[4]topo.VertexID{c[0], c[1], c[5], c[4]}, geom.Origin, geom.Vec(0, -1, 0)},
		{[4]topo.VertexID{c[2], c[3], c[7], c[6]}, geom.Pt(0, depth, 0), geom.UnitY},
		{[4]topo.VertexID{c[1], c[2], c[6], c[5]}, geom.Pt(width, 0, 0), geom.UnitX},
		{[4]topo.VertexID{c[3], c[0], c[4], c[7]}, geom.Origin, geom.Vec(-1, 0, 0)},
	}
	for _, f := range faces {
		pl, _ := geom.NewPlane(f.origin, f.normal)
		if _, err := b.PolygonFace(topo.PlanarSurface(pl), f.ids[:]); err != nil {
			return nil, fmt.Errorf("primitive: box face: %w", err)
		}
	}
	return b.Solid(), nil
}

// Cylinder returns a right circular cylinder of the given radius and
// height, approximated by segments flat side faces.
func Cylinder(radius, height float64, segments int) (*topo.Solid, error) {
	if radius < geom.Tolerance || height < geom.Tolerance {
		return nil, fmt.Errorf("primitive: cylinder r=%g h=%g: %w", radius, height, ErrInvalidDimension)
	}
	if segments < 3 {
		return nil, fmt.Errorf("primitive: cylinder %d segments: %w", segments, ErrTooFewSegments)
	}

	b := topo.NewBuilder()
	bottom := make([]topo.VertexID, segments)
	top := make([]topo.VertexID, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		x, y := radius*math.Cos(theta), radius*math.Sin(theta)
		bottom[i] = b.Vertex(geom.Pt(x, y, 0))
		top[i] = b.Vertex(geom.Pt(x, y, height))
	}

	axis, _ := geom.NewLine(geom.Origin, geom.UnitZ)
	side := topo.CylindricalSurface(axis, radius)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		if _, err := b.PolygonFace(side, []topo.VertexID{bottom[i], bottom[j], top[j], top[i]}); err != nil {
			return nil, fmt.Errorf("primitive: cylinder side: %w", err)
		}
	}

	if err := addCaps(b, bottom, top, height); err != nil {
		return nil, fmt.Errorf("primitive: cylinder cap: %w", err)
	}

	// Rim segments approximate circular arcs.
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b.SetCurve(bottom[i], bottom[j], topo.ArcCurve(geom.Origin, radius))
		b.SetCurve(top[i], top[j], topo.ArcCurve(geom.Pt(0, 0, height), radius))
	}
	return b.Solid(), nil
}

// addCaps closes a prism with a -z face over bottom and a +z face
// over top.
func addCaps(b *topo.Builder, bottom, top []topo.VertexID, height float64) error {
	n := len(bottom)
	reversed := make([]topo.VertexID, n)
	for i, id := range bottom {
		reversed[n-1-i] = id
	}
	botPlane, _ := geom.NewPlane(geom.Origin, geom.Vec(0, 0, -1))
	if _, err := b.PolygonFace(topo.PlanarSurface(botPlane), reversed); err != nil {
		return err
	}
	topPlane, _ := geom.NewPlane(geom.Pt(0, 0, height), geom.UnitZ)
	_, err := b.PolygonFace(topo.PlanarSurface(topPlane), top)
	return err
}

// Sphere returns a sphere of the given radius centered at the origin,
// tessellated into segments slices around the axis and rings stacks
// from pole to pole.
func Sphere(radius float64, segments, rings int) (*topo.Solid, error) {
	if radius < geom.Tolerance {
		return nil, fmt.Errorf("primitive: sphere r=%g: %w", radius, ErrInvalidDimension)
	}
	if segments < 3 {
		return nil, fmt.Errorf("primitive: sphere %d segments: %w", segments, ErrTooFewSegments)
	}
	if rings < 2 {
		return nil, fmt.Errorf("primitive: sphere %d rings: %w", rings, ErrTooFewSegments)
	}

	b := topo.NewBuilder()
	north := b.Vertex(geom.Pt(0, 0, radius))
	south := b.Vertex(geom.Pt(0, 0, -radius))

	// ring[k][i] is the vertex at stack k+1, slice i.
	ring := make([][]topo.VertexID, rings-1)
	for k := range ring {
		phi := math.Pi * float64(k+1) / float64(rings)
		z := radius * math.Cos(phi)
		r := radius * math.Sin(phi)
		ring[k] = make([]topo.VertexID, segments)
		for i := 0; i < segments; i++ {
			theta := 2 * math.Pi * float64(i) / float64(segments)
			ring[k][i] = b.Vertex(geom.Pt(r*math.Cos(theta), r*math.Sin(theta), z))
		}
	}

	surf := topo.SphericalSurface(geom.Origin, radius)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		if _, err := b.PolygonFace(surf, []topo.VertexID{north, ring[0][i], ring[0][j]}); err != nil {
			return nil, fmt.Errorf("primitive: sphere cap: %w", err)
		}
	}
	for k := 0; k+1 < len(ring); k++ {
		for i := 0; i < segments; i++ {
			j := (i + 1) % segments
			quad := []topo.VertexID{ring[k][i], ring[k+1][i], ring[k+1][j], ring[k][j]}
			if _, err := b.PolygonFace(surf, quad); err != nil {
				return nil, fmt.Errorf("primitive: sphere band: %w", err)
			}
		}
	}
	last := ring[len(ring)-1]
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		if _, err := b.PolygonFace(surf, []topo.VertexID{south, last[j], last[i]}); err != nil {
			return nil, fmt.Errorf("primitive: sphere cap: %w", err)
		}
	}

	return b.Solid(), nil
}

// Cone returns a right circular cone with its base on z=0 and apex at
// (0, 0, height).
func Cone(radius, height float64, segments int) (*topo.Solid, error) {
	if radius < geom.Tolerance || height < geom.Tolerance {
		return nil, fmt.Errorf("primitive: cone r=%g h=%g: %w", radius, height, ErrInvalidDimension)
	}
	if segments < 3 {
		return nil, fmt.Errorf("primitive: cone %d segments: %w", segments, ErrTooFewSegments)
	}

	b := topo.NewBuilder()
	base := make([]topo.VertexID, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		base[i] = b.Vertex(geom.Pt(radius*math.Cos(theta), radius*math.Sin(theta), 0))
	}
	apex := b.Vertex(geom.Pt(0, 0, height))

	axis, _ := geom.NewLine(geom.Origin, geom.UnitZ)
	side := topo.ConicalSurface(axis, math.Atan2(radius, height))
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		if _, err := b.PolygonFace(side, []topo.VertexID{base[i], base[j], apex}); err != nil {
			return nil, fmt.Errorf("primitive: cone side: %w", err)
		}
	}

	reversed := make([]topo.VertexID, segments)
	for i, id := range base {
		reversed[segments-1-i] = id
	}
	basePlane, _ := geom.NewPlane(geom.Origin, geom.Vec(0, 0, -1))
	if _, err := b.PolygonFace(topo.PlanarSurface(basePlane), reversed); err != nil {
		return nil, fmt.Errorf("primitive: cone base: %w", err)
	}

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b.SetCurve(base[i], base[j], topo.ArcCurve(geom.Origin, radius))
	}
	return b.Solid(), nil
}

// Package brep implements the kernel.Kernel interface on the native
// boundary-representation packages (primitive, boolean, mesh).
package brep

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/boolean"
	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/kernel"
	"github.com/chamfer/chamfer/pkg/mesh"
	"github.com/chamfer/chamfer/pkg/primitive"
	"github.com/chamfer/chamfer/pkg/topo"
)

// Compile-time interface check.
var _ kernel.Kernel = (*BrepKernel)(nil)

// defaultSegments is the curve resolution used when a caller passes a
// non-positive segment count.
const defaultSegments = 32

// brepSolid wraps a *topo.Solid to implement kernel.Solid.
type brepSolid struct {
	s *topo.Solid
}

// BoundingBox returns the axis-aligned bounding box.
func (s *brepSolid) BoundingBox() (min, max [3]float64) {
	b := s.s.Bounds()
	min = [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	max = [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	return min, max
}

// BrepKernel implements kernel.Kernel on the B-Rep packages.
type BrepKernel struct{}

// New returns a new BrepKernel.
func New() *BrepKernel {
	return &BrepKernel{}
}

// unwrap extracts the underlying *topo.Solid from a kernel.Solid.
func unwrap(s kernel.Solid) *topo.Solid {
	return s.(*brepSolid).s
}

// wrap creates a kernel.Solid from a *topo.Solid.
func wrap(s *topo.Solid) kernel.Solid {
	return &brepSolid{s: s}
}

func clampSegments(n int) int {
	if n < 3 {
		return defaultSegments
	}
	return n
}

// Box creates a box with its minimum corner at the origin.
func (k *BrepKernel) Box(x, y, z float64) kernel.Solid {
	s, err := primitive.Box(x, y, z)
	if err != nil {
		panic(fmt.Sprintf("brep.Box: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder with its base circle on the z=0 plane,
// approximated by the given number of segments.
func (k *BrepKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := primitive.Cylinder(radius, height, clampSegments(segments))
	if err != nil {
		panic(fmt.Sprintf("brep.Cylinder: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centered at the origin. The ring count is
// derived from the segment count.
func (k *BrepKernel) Sphere(radius float64, segments int) kernel.Solid {
	segments = clampSegments(segments)
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}
	s, err := primitive.Sphere(radius, segments, rings)
	if err != nil {
		panic(fmt.Sprintf("brep.Sphere: %v", err))
	}
	return wrap(s)
}

// Cone creates a cone with its base circle on the z=0 plane and apex
// at z=height.
func (k *BrepKernel) Cone(height, radius float64, segments int) kernel.Solid {
	s, err := primitive.Cone(radius, height, clampSegments(segments))
	if err != nil {
		panic(fmt.Sprintf("brep.Cone: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two solids.
func (k *BrepKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	out, err := boolean.Union(unwrap(a), unwrap(b))
	if err != nil {
		return nil, fmt.Errorf("brep.Union: %w", err)
	}
	return wrap(out), nil
}

// Difference returns the difference a - b.
func (k *BrepKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	out, err := boolean.Difference(unwrap(a), unwrap(b))
	if err != nil {
		return nil, fmt.Errorf("brep.Difference: %w", err)
	}
	return wrap(out), nil
}

// Intersection returns the intersection of two solids.
func (k *BrepKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	out, err := boolean.Intersection(unwrap(a), unwrap(b))
	if err != nil {
		return nil, fmt.Errorf("brep.Intersection: %w", err)
	}
	return wrap(out), nil
}

// Translate moves a solid by (x, y, z). The input solid is left unchanged.
func (k *BrepKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	out := unwrap(s).Clone()
	out.ApplyTransform(geom.FromTranslation(geom.Vec(x, y, z)))
	return wrap(out)
}

// Rotate rotates a solid by Euler angles (degrees) around the X, Y, Z
// axes, applied in that order. The input solid is left unchanged.
func (k *BrepKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	const degToRad = math.Pi / 180.0
	tr := geom.FromRotationX(x * degToRad).
		Then(geom.FromRotationY(y * degToRad)).
		Then(geom.FromRotationZ(z * degToRad))
	out := unwrap(s).Clone()
	out.ApplyTransform(tr)
	return wrap(out)
}

// ToMesh converts a solid to a flat-shaded triangle mesh.
func (k *BrepKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tm, err := mesh.FromSolid(unwrap(s), mesh.Options{})
	if err != nil {
		return nil, fmt.Errorf("brep.ToMesh: %w", err)
	}

	vertices := make([]float32, 0, len(tm.Vertices)*3)
	normals := make([]float32, 0, len(tm.Normals)*3)
	indices := make([]uint32, 0, len(tm.Triangles)*3)

	for _, v := range tm.Vertices {
		vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for _, n := range tm.Normals {
		normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, tri := range tm.Triangles {
		indices = append(indices, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

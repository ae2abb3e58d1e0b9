// Package mesh converts boundary-representation solids into indexed
// triangle meshes for display and measurement.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/topo"
)

// ErrDegenerateFace reports a face whose loop cannot be triangulated.
var ErrDegenerateFace = errors.New("degenerate face")

// TriangleMesh is an indexed triangle soup with per-vertex normals.
type TriangleMesh struct {
	Vertices  []geom.Point3
	Normals   []geom.Vector3
	Triangles [][3]int
}

// Options controls mesh generation.
type Options struct {
	// SmoothNormals averages normals across shared vertices instead
	// of duplicating vertices per face for flat shading.
	SmoothNormals bool
}

// FromSolid triangulates every face of a solid. Zero-area faces are
// skipped; a face whose loop cannot be triangulated is an error.
func FromSolid(s *topo.Solid, opts Options) (*TriangleMesh, error) {
	m := &TriangleMesh{}
	var shared map[[3]int64]int
	if opts.SmoothNormals {
		shared = make(map[[3]int64]int)
	}

	for fi := range s.Faces {
		f := &s.Faces[fi]
		outer := s.LoopPoints(f.Outer)
		normal, ok := topo.NewellNormal(outer)
		if !ok {
			// Zero-area face contributes nothing.
			continue
		}
		holes := make([][]geom.Point3, 0, len(f.Inner))
		for _, l := range f.Inner {
			holes = append(holes, s.LoopPoints(l))
		}

		tris, pts, err := triangulate(outer, holes, normal)
		if err != nil {
			return nil, fmt.Errorf("mesh: face %d: %w", fi, err)
		}
		m.emit(tris, pts, normal, shared)
	}

	if opts.SmoothNormals {
		for i, n := range m.Normals {
			m.Normals[i] = n.NormalizeOrZ()
		}
	}
	return m, nil
}

// emit appends a batch of triangles for one face. Smooth shading shares
// vertices across the whole mesh; flat shading still shares within the
// face batch (the normal is uniform there) and duplicates only across
// faces, keeping the mesh indexed in both modes.
func (m *TriangleMesh) emit(tris [][3]int, pts []geom.Point3, normal geom.Vector3, shared map[[3]int64]int) {
	lookup := shared
	if lookup == nil {
		lookup = make(map[[3]int64]int)
	}
	index := func(p geom.Point3) int {
		key := quantize(p)
		if i, ok := lookup[key]; ok {
			if shared != nil {
				m.Normals[i] = m.Normals[i].Add(normal)
			}
			return i
		}
		m.Vertices = append(m.Vertices, p)
		m.Normals = append(m.Normals, normal)
		i := len(m.Vertices) - 1
		lookup[key] = i
		return i
	}
	for _, t := range tris {
		m.Triangles = append(m.Triangles, [3]int{
			index(pts[t[0]]), index(pts[t[1]]), index(pts[t[2]]),
		})
	}
}

func quantize(p geom.Point3) [3]int64 {
	const inv = 1 / (10 * geom.Tolerance)
	return [3]int64{
		int64(math.Round(p.X * inv)),
		int64(math.Round(p.Y * inv)),
		int64(math.Round(p.Z * inv)),
	}
}

// Volume integrates the enclosed volume. Meaningful only for closed
// meshes with outward winding.
func (m *TriangleMesh) Volume() float64 {
	var vol float64
	for _, t := range m.Triangles {
		a := m.Vertices[t[0]].Vec()
		b := m.Vertices[t[1]].Vec()
		c := m.Vertices[t[2]].Vec()
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}

// SurfaceArea sums all triangle areas.
func (m *TriangleMesh) SurfaceArea() float64 {
	var area float64
	for _, t := range m.Triangles {
		ab := m.Vertices[t[1]].Sub(m.Vertices[t[0]])
		ac := m.Vertices[t[2]].Sub(m.Vertices[t[0]])
		area += ab.Cross(ac).Length() / 2
	}
	return area
}

// Bounds returns the mesh bounding box.
func (m *TriangleMesh) Bounds() geom.Bounds3 {
	return geom.BoundsFromPoints(m.Vertices)
}

package topo

import (
	"github.com/chamfer/chamfer/pkg/geom"
)

// LoopPoints returns the loop's vertex positions in walk order: the
// entry vertex of each edge, honoring the direction flags.
func (s *Solid) LoopPoints(l Loop) []geom.Point3 {
	pts := make([]geom.Point3, 0, len(l.Edges))
	for i, id := range l.Edges {
		e, ok := s.Edge(id)
		if !ok {
			return nil
		}
		entry := e.Start
		if !l.Forward[i] {
			entry = e.End
		}
		p, ok := s.Point(entry)
		if !ok {
			return nil
		}
		pts = append(pts, p)
	}
	return pts
}

// FaceNormal returns the unit normal of a face's outer loop using
// Newell's method, which tolerates slightly non-planar loops. Returns
// false for degenerate loops.
func (s *Solid) FaceNormal(id FaceID) (geom.Vector3, bool) {
	f, ok := s.Face(id)
	if !ok {
		return geom.Vector3{}, false
	}
	return NewellNormal(s.LoopPoints(f.Outer))
}

// NewellNormal computes the area-weighted normal of a polygon.
func NewellNormal(pts []geom.Point3) (geom.Vector3, bool) {
	if len(pts) < 3 {
		return geom.Vector3{}, false
	}
	var n geom.Vector3
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n.Normalize()
}

// IsWatertight reports whether every edge is used by exactly two face
// loop traversals. A closed 2-manifold shell satisfies this; open or
// dangling geometry does not.
func (s *Solid) IsWatertight() bool {
	if len(s.Faces) == 0 {
		return false
	}
	uses := make([]int, len(s.Edges))
	count := func(l Loop) {
		for _, id := range l.Edges {
			if int(id) < len(uses) {
				uses[id]++
			}
		}
	}
	for _, f := range s.Faces {
		count(f.Outer)
		for _, l := range f.Inner {
			count(l)
		}
	}
	for _, n := range uses {
		if n != 2 {
			return false
		}
	}
	return true
}

// faceTriangles fans each face loop into triangles for integration.
// Inner loops are ignored here; the measured quantities treat faces
// with holes as their outer boundary.
func (s *Solid) faceTriangles() [][3]geom.Point3 {
	var tris [][3]geom.Point3
	for _, f := range s.Faces {
		pts := s.LoopPoints(f.Outer)
		for i := 1; i+1 < len(pts); i++ {
			tris = append(tris, [3]geom.Point3{pts[0], pts[i], pts[i+1]})
		}
	}
	return tris
}

// Volume integrates the enclosed volume by the divergence theorem.
// The result is only meaningful for watertight solids with outward
// face normals.
func (s *Solid) Volume() float64 {
	var vol float64
	for _, tri := range s.faceTriangles() {
		a, b, c := tri[0].Vec(), tri[1].Vec(), tri[2].Vec()
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}

// SurfaceArea sums the area of every face.
func (s *Solid) SurfaceArea() float64 {
	var area float64
	for _, tri := range s.faceTriangles() {
		ab := tri[1].Sub(tri[0])
		ac := tri[2].Sub(tri[0])
		area += ab.Cross(ac).Length() / 2
	}
	return area
}

// Centroid returns the volume centroid. Like Volume, it assumes a
// watertight solid; it falls back to the bounds center when the
// volume is numerically zero.
func (s *Solid) Centroid() geom.Point3 {
	var vol float64
	var cx, cy, cz float64
	for _, tri := range s.faceTriangles() {
		a, b, c := tri[0].Vec(), tri[1].Vec(), tri[2].Vec()
		v := a.Dot(b.Cross(c)) / 6
		vol += v
		cx += v * (a.X + b.X + c.X) / 4
		cy += v * (a.Y + b.Y + c.Y) / 4
		cz += v * (a.Z + b.Z + c.Z) / 4
	}
	if vol < geom.Tolerance && vol > -geom.Tolerance {
		return s.Bounds().Center()
	}
	return geom.Pt(cx/vol, cy/vol, cz/vol)
}

package topo

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
)

// Builder assembles a solid from planar polygon faces, sharing
// vertices and edges between adjacent faces. Two faces that name the
// same two corner points get the same edge, so a closed set of
// polygons comes out watertight.
type Builder struct {
	solid *Solid
	verts map[[3]int64]VertexID
	edges map[[2]VertexID]EdgeID
	faces []FaceID
}

// NewBuilder returns a builder over a fresh solid.
func NewBuilder() *Builder {
	return &Builder{
		solid: NewSolid(),
		verts: make(map[[3]int64]VertexID),
		edges: make(map[[2]VertexID]EdgeID),
	}
}

// quantize keys a point for vertex dedup. Points closer than the
// tolerance may still land in different buckets; callers that need
// exact sharing should reuse vertex ids instead.
func quantize(p geom.Point3) [3]int64 {
	const inv = 1 / (10 * geom.Tolerance)
	return [3]int64{
		int64(math.Round(p.X * inv)),
		int64(math.Round(p.Y * inv)),
		int64(math.Round(p.Z * inv)),
	}
}

// Vertex returns the id for a point, creating it on first use.
func (b *Builder) Vertex(p geom.Point3) VertexID {
	key := quantize(p)
	if id, ok := b.verts[key]; ok {
		return id
	}
	id := b.solid.AddVertex(p)
	b.verts[key] = id
	return id
}

// edge returns a directed traversal of the edge between a and b,
// creating the edge on first use.
func (b *Builder) edge(a, c VertexID) (EdgeID, bool) {
	if id, ok := b.edges[[2]VertexID{a, c}]; ok {
		return id, true
	}
	if id, ok := b.edges[[2]VertexID{c, a}]; ok {
		return id, false
	}
	id := b.solid.AddEdge(a, c, LinearCurve())
	b.edges[[2]VertexID{a, c}] = id
	return id, true
}

// SetCurve overrides the curve of the edge between a and c, if that
// edge exists. Used by generators that build circular rims out of
// polygon faces.
func (b *Builder) SetCurve(a, c VertexID, curve Curve) {
	if id, ok := b.edges[[2]VertexID{a, c}]; ok {
		b.solid.Edges[id].Curve = curve
		return
	}
	if id, ok := b.edges[[2]VertexID{c, a}]; ok {
		b.solid.Edges[id].Curve = curve
	}
}

// loop builds a loop walking the given vertex cycle.
func (b *Builder) loop(ids []VertexID) Loop {
	l := Loop{
		Edges:   make([]EdgeID, 0, len(ids)),
		Forward: make([]bool, 0, len(ids)),
	}
	for i, a := range ids {
		c := ids[(i+1)%len(ids)]
		e, fwd := b.edge(a, c)
		l.Edges = append(l.Edges, e)
		l.Forward = append(l.Forward, fwd)
	}
	return l
}

// PolygonFace adds a face over the given vertex cycle, wound
// counter-clockwise as seen from outside. The surface is attached as
// given; pass PlanarSurface for flat faces.
func (b *Builder) PolygonFace(surface Surface, ids []VertexID) (FaceID, error) {
	if len(ids) < 3 {
		return 0, fmt.Errorf("topo: polygon face needs at least 3 vertices, got %d", len(ids))
	}
	for i, a := range ids {
		if a == ids[(i+1)%len(ids)] {
			return 0, fmt.Errorf("topo: polygon face repeats vertex %d", a)
		}
	}
	id := b.solid.AddFace(Face{Surface: surface, Outer: b.loop(ids)})
	b.faces = append(b.faces, id)
	return id, nil
}

// PolygonFaceWithHoles adds a face whose outer boundary is outer and
// whose holes are the inner cycles, each wound opposite to outer.
func (b *Builder) PolygonFaceWithHoles(surface Surface, outer []VertexID, inner [][]VertexID) (FaceID, error) {
	if len(outer) < 3 {
		return 0, fmt.Errorf("topo: polygon face needs at least 3 vertices, got %d", len(outer))
	}
	f := Face{Surface: surface, Outer: b.loop(outer)}
	for _, hole := range inner {
		if len(hole) < 3 {
			return 0, fmt.Errorf("topo: hole loop needs at least 3 vertices, got %d", len(hole))
		}
		f.Inner = append(f.Inner, b.loop(hole))
	}
	id := b.solid.AddFace(f)
	b.faces = append(b.faces, id)
	return id, nil
}

// PlanarPolygon adds a flat face from raw points, deriving the
// surface plane from the points themselves.
func (b *Builder) PlanarPolygon(pts []geom.Point3) (FaceID, error) {
	n, ok := NewellNormal(pts)
	if !ok {
		return 0, fmt.Errorf("topo: degenerate polygon")
	}
	pl, _ := geom.NewPlane(pts[0], n)
	ids := make([]VertexID, len(pts))
	for i, p := range pts {
		ids[i] = b.Vertex(p)
	}
	return b.PolygonFace(PlanarSurface(pl), ids)
}

// Solid closes all faces added so far into one shell and returns the
// finished solid.
func (b *Builder) Solid() *Solid {
	b.solid.AddShell(append([]FaceID(nil), b.faces...))
	return b.solid
}

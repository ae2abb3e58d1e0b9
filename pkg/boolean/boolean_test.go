package boolean

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/primitive"
	"github.com/chamfer/chamfer/pkg/topo"
)

func box(t *testing.T, w, d, h float64) *topo.Solid {
	t.Helper()
	s, err := primitive.Box(w, d, h)
	require.NoError(t, err)
	return s
}

func translated(s *topo.Solid, v geom.Vector3) *topo.Solid {
	out := s.Clone()
	out.ApplyTransform(geom.FromTranslation(v))
	return out
}

func TestUnionDisjoint(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(a, geom.Vec(10, 0, 0))

	out, err := Union(a, b)
	require.NoError(t, err)
	require.True(t, out.IsWatertight())
	require.InDelta(t, 16, out.Volume(), 1e-9)
}

func TestDifferenceDisjointLeavesLeft(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(a, geom.Vec(10, 0, 0))

	out, err := Difference(a, b)
	require.NoError(t, err)
	require.InDelta(t, 8, out.Volume(), 1e-9)
	require.Len(t, out.Faces, 6)
}

func TestIntersectionDisjointFails(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(a, geom.Vec(10, 0, 0))

	_, err := Intersection(a, b)
	require.ErrorIs(t, err, ErrNoIntersection)
}

func TestOverlappingBoxes(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(box(t, 2, 2, 2), geom.Vec(1, 1, 1))

	union, err := Union(a, b)
	require.NoError(t, err)
	require.True(t, union.IsWatertight())
	require.InDelta(t, 15, union.Volume(), 1e-6)

	diff, err := Difference(a, b)
	require.NoError(t, err)
	require.True(t, diff.IsWatertight())
	require.InDelta(t, 7, diff.Volume(), 1e-6)

	inter, err := Intersection(a, b)
	require.NoError(t, err)
	require.True(t, inter.IsWatertight())
	require.InDelta(t, 1, inter.Volume(), 1e-6)

	// The intersection is the overlap cube.
	bounds := inter.Bounds()
	require.True(t, bounds.Min.ApproxEq(geom.Pt(1, 1, 1), 1e-6))
	require.True(t, bounds.Max.ApproxEq(geom.Pt(2, 2, 2), 1e-6))
}

func TestOperandsUnchanged(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(box(t, 2, 2, 2), geom.Vec(1, 1, 1))

	_, err := Union(a, b)
	require.NoError(t, err)
	require.InDelta(t, 8, a.Volume(), 1e-9)
	require.InDelta(t, 8, b.Volume(), 1e-9)
	require.Len(t, a.Faces, 6)
	require.Len(t, b.Faces, 6)
}

func TestIdenticalSolids(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := box(t, 2, 2, 2)

	union, err := Union(a, b)
	require.NoError(t, err)
	require.InDelta(t, 8, union.Volume(), 1e-6)

	inter, err := Intersection(a, b)
	require.NoError(t, err)
	require.InDelta(t, 8, inter.Volume(), 1e-6)

	diff, err := Difference(a, b)
	require.NoError(t, err)
	require.Empty(t, diff.Faces)
	require.InDelta(t, 0, diff.Volume(), 1e-9)
}

func TestTouchingBoxesUnion(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(box(t, 2, 2, 2), geom.Vec(2, 0, 0))

	out, err := Union(a, b)
	require.NoError(t, err)
	require.True(t, out.IsWatertight())
	require.InDelta(t, 16, out.Volume(), 1e-6)
}

func TestTouchingBoxesDifference(t *testing.T) {
	a := box(t, 2, 2, 2)
	b := translated(box(t, 2, 2, 2), geom.Vec(2, 0, 0))

	out, err := Difference(a, b)
	require.NoError(t, err)
	require.InDelta(t, 8, out.Volume(), 1e-6)
}

func TestThroughHole(t *testing.T) {
	// A post punched all the way through a slab.
	slab := box(t, 4, 4, 1)
	post := translated(box(t, 1, 1, 3), geom.Vec(1.5, 1.5, -1))

	out, err := Difference(slab, post)
	require.NoError(t, err)
	require.True(t, out.IsWatertight())
	require.InDelta(t, 15, out.Volume(), 1e-6)
}

func TestDegenerateOperands(t *testing.T) {
	a := box(t, 2, 2, 2)

	_, err := Union(a, topo.NewSolid())
	require.ErrorIs(t, err, ErrDegenerateInput)

	_, err = Union(nil, a)
	require.ErrorIs(t, err, ErrDegenerateInput)

	// An open sheet is not a valid operand.
	open := topo.NewBuilder()
	_, err = open.PlanarPolygon([]geom.Point3{
		geom.Pt(0, 0, 0), geom.Pt(1, 0, 0), geom.Pt(0, 1, 0),
	})
	require.NoError(t, err)
	_, err = Difference(a, open.Solid())
	require.ErrorIs(t, err, ErrDegenerateInput)
}

func TestApplyNamesOps(t *testing.T) {
	require.Equal(t, "union", OpUnion.String())
	require.Equal(t, "difference", OpDifference.String())
	require.Equal(t, "intersection", OpIntersection.String())

	a := box(t, 1, 1, 1)
	b := translated(box(t, 1, 1, 1), geom.Vec(0.5, 0, 0))
	out, err := Apply(OpIntersection, a, b)
	require.NoError(t, err)
	require.InDelta(t, 0.5, out.Volume(), 1e-6)
}

func TestFacePolygonsExcludeHoleMaterial(t *testing.T) {
	s := topo.NewSolid()
	v := func(x, y float64) topo.VertexID { return s.AddVertex(geom.Pt(x, y, 0)) }
	e := func(a, b topo.VertexID) topo.EdgeID { return s.AddEdge(a, b, topo.LinearCurve()) }

	o0, o1, o2, o3 := v(0, 0), v(4, 0), v(4, 4), v(0, 4)
	h0, h1, h2, h3 := v(1, 1), v(3, 1), v(3, 3), v(1, 3)
	s.AddFace(topo.Face{
		Outer: topo.Loop{
			Edges:   []topo.EdgeID{e(o0, o1), e(o1, o2), e(o2, o3), e(o3, o0)},
			Forward: []bool{true, true, true, true},
		},
		Inner: []topo.Loop{{
			Edges:   []topo.EdgeID{e(h0, h3), e(h3, h2), e(h2, h1), e(h1, h0)},
			Forward: []bool{true, true, true, true},
		}},
	})

	polys, err := facePolygons(s)
	require.NoError(t, err)

	// 4x4 outer minus 2x2 hole: the fragments must carry exactly the
	// annulus area, with nothing spanning the hole.
	var area float64
	for _, p := range polys {
		area += p.area()
	}
	require.InDelta(t, 12, area, 1e-9)

	holeCenter := geom.Pt(2, 2, 0)
	for _, p := range polys {
		require.Greater(t, p.centroid().Sub(holeCenter).Length(), 0.1)
	}
}

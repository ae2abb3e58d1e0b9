package boolean

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/mesh"
	"github.com/chamfer/chamfer/pkg/topo"
)

// polygon is a planar face fragment carried through the clipping
// pipeline.
type polygon struct {
	pts    []geom.Point3
	normal geom.Vector3
}

// facePolygons flattens a solid's faces into polygons. Faces with
// holes are triangulated so every fragment is simple and the hole
// interiors carry no material.
func facePolygons(s *topo.Solid) ([]polygon, error) {
	var polys []polygon
	for i := range s.Faces {
		f := &s.Faces[i]
		pts := s.LoopPoints(f.Outer)
		n, ok := topo.NewellNormal(pts)
		if !ok {
			continue
		}
		if len(f.Inner) == 0 {
			polys = append(polys, polygon{pts: pts, normal: n})
			continue
		}
		holes := make([][]geom.Point3, 0, len(f.Inner))
		for _, l := range f.Inner {
			holes = append(holes, s.LoopPoints(l))
		}
		tris, tpts, err := mesh.TriangulateFace(pts, holes, n)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		for _, t := range tris {
			polys = append(polys, polygon{
				pts:    []geom.Point3{tpts[t[0]], tpts[t[1]], tpts[t[2]]},
				normal: n,
			})
		}
	}
	return polys, nil
}

// flip reverses the polygon's orientation.
func (p polygon) flip() polygon {
	rev := make([]geom.Point3, len(p.pts))
	for i, q := range p.pts {
		rev[len(p.pts)-1-i] = q
	}
	return polygon{pts: rev, normal: p.normal.Neg()}
}

// centroid is the area-weighted center of the polygon.
func (p polygon) centroid() geom.Point3 {
	var areaSum float64
	var acc geom.Vector3
	a := p.pts[0]
	for i := 1; i+1 < len(p.pts); i++ {
		b, c := p.pts[i], p.pts[i+1]
		area := b.Sub(a).Cross(c.Sub(a)).Length() / 2
		center := a.Vec().Add(b.Vec()).Add(c.Vec()).Scale(1.0 / 3)
		acc = acc.Add(center.Scale(area))
		areaSum += area
	}
	if areaSum < geom.Tolerance*geom.Tolerance {
		return a
	}
	return acc.Scale(1 / areaSum).Point()
}

func (p polygon) area() float64 {
	var areaSum float64
	a := p.pts[0]
	for i := 1; i+1 < len(p.pts); i++ {
		areaSum += p.pts[i].Sub(a).Cross(p.pts[i+1].Sub(a)).Length() / 2
	}
	return areaSum
}

// splitTol is the clip-side tolerance: vertices closer than this to a
// cutting plane sit on it and do not force a split.
const splitTol = 100 * geom.Tolerance

// splitByPlane cuts p by pl when the plane properly crosses it.
// Returns the fragments (possibly just p itself) and whether a cut
// happened.
func splitByPlane(p polygon, pl geom.Plane) ([]polygon, bool) {
	hasFront, hasBack := false, false
	dists := make([]float64, len(p.pts))
	for i, q := range p.pts {
		d := pl.SignedDistance(q)
		dists[i] = d
		if d > splitTol {
			hasFront = true
		} else if d < -splitTol {
			hasBack = true
		}
	}
	if !hasFront || !hasBack {
		return []polygon{p}, false
	}

	var front, back []geom.Point3
	n := len(p.pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := p.pts[i], p.pts[j]
		da, db := dists[i], dists[j]

		if da >= -splitTol {
			front = append(front, a)
		}
		if da <= splitTol {
			back = append(back, a)
		}
		// Edge crosses the plane strictly: add the crossing point to
		// both sides.
		if (da > splitTol && db < -splitTol) || (da < -splitTol && db > splitTol) {
			t := da / (da - db)
			x := a.Lerp(b, t)
			front = append(front, x)
			back = append(back, x)
		}
	}

	out := make([]polygon, 0, 2)
	if len(front) >= 3 {
		out = append(out, polygon{pts: front, normal: p.normal})
	}
	if len(back) >= 3 {
		out = append(out, polygon{pts: back, normal: p.normal})
	}
	if len(out) == 0 {
		return []polygon{p}, false
	}
	return out, true
}

// fragment splits every polygon of subject by every face plane of
// cutter that crosses it, until no fragment straddles the cutter's
// boundary surface.
func fragment(subject []polygon, cutter *topo.Solid) []polygon {
	planes := cutterPlanes(cutter)
	out := subject
	for _, pl := range planes {
		next := make([]polygon, 0, len(out))
		for _, p := range out {
			parts, _ := splitByPlane(p, pl)
			next = append(next, parts...)
		}
		out = next
	}
	// Slivers left by near-tangent cuts carry no area.
	kept := out[:0]
	for _, p := range out {
		if p.area() > splitTol*splitTol {
			kept = append(kept, p)
		}
	}
	return kept
}

// cutterPlanes collects the distinct face planes of a solid.
func cutterPlanes(s *topo.Solid) []geom.Plane {
	var planes []geom.Plane
	for i := range s.Faces {
		pts := s.LoopPoints(s.Faces[i].Outer)
		n, ok := topo.NewellNormal(pts)
		if !ok {
			continue
		}
		pl, _ := geom.NewPlane(pts[0], n)
		dup := false
		for _, q := range planes {
			if math.Abs(q.Normal.Dot(pl.Normal)) > 1-geom.Tolerance &&
				math.Abs(q.SignedDistance(pl.Origin)) < splitTol {
				dup = true
				break
			}
		}
		if !dup {
			planes = append(planes, pl)
		}
	}
	return planes
}

// healTJunctions inserts, into each polygon edge, every vertex of the
// whole fragment set that lies on that edge's interior. Fragments cut
// from the two operands subdivide their shared seams differently;
// inserting the union of seam vertices makes both sides describe the
// seam with identical edges.
func healTJunctions(polys []polygon) []polygon {
	var verts []geom.Point3
	for _, p := range polys {
		verts = append(verts, p.pts...)
	}

	out := make([]polygon, len(polys))
	for pi, p := range polys {
		var pts []geom.Point3
		n := len(p.pts)
		for i := 0; i < n; i++ {
			a, b := p.pts[i], p.pts[(i+1)%n]
			pts = append(pts, a)
			pts = append(pts, pointsOnSegment(verts, a, b)...)
		}
		out[pi] = polygon{pts: pts, normal: p.normal}
	}
	return out
}

// pointsOnSegment returns the vertices strictly inside segment ab,
// ordered from a to b.
func pointsOnSegment(verts []geom.Point3, a, b geom.Point3) []geom.Point3 {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq < splitTol*splitTol {
		return nil
	}
	type hit struct {
		t float64
		p geom.Point3
	}
	var hits []hit
	for _, v := range verts {
		t := v.Sub(a).Dot(ab) / lenSq
		if t <= splitTol || t >= 1-splitTol {
			continue
		}
		if v.Distance(a.Add(ab.Scale(t))) > splitTol {
			continue
		}
		dup := false
		for _, h := range hits {
			if h.p.ApproxEq(v, splitTol) {
				dup = true
				break
			}
		}
		if !dup {
			hits = append(hits, hit{t: t, p: v})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].t < hits[j-1].t; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]geom.Point3, len(hits))
	for i, h := range hits {
		out[i] = h.p
	}
	return out
}

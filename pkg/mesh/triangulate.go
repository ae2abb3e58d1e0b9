package mesh

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
)

// TriangulateFace turns a planar polygon with optional hole loops into
// simple triangles wound counter-clockwise about the normal. Returns
// triangle index triples and the flattened point list they index into.
func TriangulateFace(outer []geom.Point3, holes [][]geom.Point3, normal geom.Vector3) ([][3]int, []geom.Point3, error) {
	return triangulate(outer, holes, normal)
}

// triangulate turns a planar polygon with optional holes into
// triangles. Returns triangle index triples and the flattened point
// list they index into.
func triangulate(outer []geom.Point3, holes [][]geom.Point3, normal geom.Vector3) ([][3]int, []geom.Point3, error) {
	if len(outer) < 3 {
		return nil, nil, fmt.Errorf("%w: %d boundary points", ErrDegenerateFace, len(outer))
	}

	u, v := planeBasis(normal)
	flat := project2(outer, u, v)

	// The outer loop must be counter-clockwise in the projection.
	if signedArea(flat) < 0 {
		reverse(outer)
		reverse2(flat)
	}

	pts := append([]geom.Point3(nil), outer...)
	flatAll := flat
	for _, hole := range holes {
		if len(hole) < 3 {
			continue
		}
		h := append([]geom.Point3(nil), hole...)
		hf := project2(h, u, v)
		// Holes wind opposite to the outer boundary.
		if signedArea(hf) > 0 {
			reverse(h)
			reverse2(hf)
		}
		pts, flatAll = bridgeHole(pts, flatAll, h, hf)
	}

	tris := earClip(flatAll)
	if len(tris) == 0 {
		return nil, nil, fmt.Errorf("%w: ear clipping produced no triangles", ErrDegenerateFace)
	}
	return tris, pts, nil
}

// planeBasis returns two unit vectors spanning the plane with the
// given normal, right-handed so that counter-clockwise about the
// normal is positive area.
func planeBasis(n geom.Vector3) (geom.Vector3, geom.Vector3) {
	ref := geom.UnitX
	if math.Abs(n.X) > 0.9 {
		ref = geom.UnitY
	}
	u := n.Cross(ref).NormalizeOrZ()
	v := n.Cross(u).NormalizeOrZ()
	return u, v
}

type pt2 struct{ x, y float64 }

func project2(pts []geom.Point3, u, v geom.Vector3) []pt2 {
	out := make([]pt2, len(pts))
	for i, p := range pts {
		w := p.Vec()
		out[i] = pt2{w.Dot(u), w.Dot(v)}
	}
	return out
}

func reverse(pts []geom.Point3) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func reverse2(pts []pt2) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func signedArea(pts []pt2) float64 {
	var a float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func cross2(o, a, b pt2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

// bridgeHole splices a clockwise hole into a counter-clockwise outer
// polygon via a zero-width bridge between mutually visible vertices.
func bridgeHole(pts []geom.Point3, flat []pt2, hole []geom.Point3, hf []pt2) ([]geom.Point3, []pt2) {
	// Bridge from the rightmost hole vertex: it can always see some
	// boundary vertex to its right.
	hi := 0
	for i := range hf {
		if hf[i].x > hf[hi].x {
			hi = i
		}
	}
	// Pick the nearest outer vertex with a crossing-free bridge.
	oi := -1
	best := math.Inf(1)
	for i := range flat {
		d := dist2(flat[i], hf[hi])
		if d < best && bridgeClear(flat, hf, i, hi) {
			best = d
			oi = i
		}
	}
	if oi < 0 {
		// Fall back to the nearest vertex outright.
		for i := range flat {
			if d := dist2(flat[i], hf[hi]); d < best {
				best = d
				oi = i
			}
		}
	}

	// outer[0..=oi], hole[hi..], hole[..=hi], outer[oi..].
	n := len(pts) + len(hole) + 2
	newPts := make([]geom.Point3, 0, n)
	newFlat := make([]pt2, 0, n)
	appendBoth := func(p geom.Point3, f pt2) {
		newPts = append(newPts, p)
		newFlat = append(newFlat, f)
	}
	for i := 0; i <= oi; i++ {
		appendBoth(pts[i], flat[i])
	}
	for k := 0; k <= len(hole); k++ {
		i := (hi + k) % len(hole)
		appendBoth(hole[i], hf[i])
	}
	for i := oi; i < len(pts); i++ {
		appendBoth(pts[i], flat[i])
	}
	return newPts, newFlat
}

func dist2(a, b pt2) float64 {
	dx, dy := a.x-b.x, a.y-b.y
	return dx*dx + dy*dy
}

// bridgeClear reports whether the segment outer[oi]..hf[hi] crosses
// no edge of either loop.
func bridgeClear(flat, hf []pt2, oi, hi int) bool {
	a, b := flat[oi], hf[hi]
	check := func(loop []pt2, skipAt int, skipIdx int) bool {
		for i := range loop {
			j := (i + 1) % len(loop)
			if skipAt >= 0 && (i == skipIdx || j == skipIdx) {
				continue
			}
			if segmentsCross(a, b, loop[i], loop[j]) {
				return false
			}
		}
		return true
	}
	return check(flat, 0, oi) && check(hf, 0, hi)
}

// segmentsCross reports proper intersection of two open segments.
func segmentsCross(a, b, c, d pt2) bool {
	d1 := cross2(c, d, a)
	d2 := cross2(c, d, b)
	d3 := cross2(a, b, c)
	d4 := cross2(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// earClip triangulates a simple counter-clockwise polygon. Falls back
// to fanning when numerical trouble leaves no ear.
func earClip(flat []pt2) [][3]int {
	n := len(flat)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris [][3]int
	for len(idx) > 3 {
		clipped := false
		for k := 0; k < len(idx); k++ {
			prev := idx[(k-1+len(idx))%len(idx)]
			cur := idx[k]
			next := idx[(k+1)%len(idx)]
			if !isEar(flat, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// No clippable ear. Fanning is only safe when the remainder
			// has no real area (collinear slivers); fanning a remainder
			// with area would cover holes.
			rem := make([]pt2, len(idx))
			for i, id := range idx {
				rem[i] = flat[id]
			}
			if math.Abs(signedArea(rem)) > geom.Tolerance {
				return nil
			}
			for k := 1; k+1 < len(idx); k++ {
				tris = append(tris, [3]int{idx[0], idx[k], idx[k+1]})
			}
			return tris
		}
	}
	tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	return tris
}

func isEar(flat []pt2, idx []int, prev, cur, next int) bool {
	a, b, c := flat[prev], flat[cur], flat[next]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for _, i := range idx {
		if i == prev || i == cur || i == next {
			continue
		}
		p := flat[i]
		// Hole bridging duplicates the bridge endpoints under distinct
		// indices; a copy of the ear's own corner is not a blocker.
		if samePt2(p, a) || samePt2(p, b) || samePt2(p, c) {
			continue
		}
		if pointInTri(p, a, b, c) {
			return false
		}
	}
	return true
}

func samePt2(a, b pt2) bool {
	return math.Abs(a.x-b.x) <= geom.Tolerance && math.Abs(a.y-b.y) <= geom.Tolerance
}

func pointInTri(p, a, b, c pt2) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

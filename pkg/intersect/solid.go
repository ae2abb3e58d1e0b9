package intersect

import (
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/topo"
)

// castDirection is a fixed non-axis-aligned direction for parity ray
// casts, chosen so that rays from mesh-aligned points almost never
// graze an edge or vertex of an axis-aligned model.
var castDirection = geom.Vec(0.5394782317, 0.6927481933, 0.4792811973).NormalizeOrZ()

// PointInSolid classifies p against a watertight solid. Points within
// tolerance of a face are OnBoundary; otherwise an odd number of ray
// crossings means Inside.
func PointInSolid(s *topo.Solid, p geom.Point3) Classification {
	if !s.Bounds().Expand(geom.Tolerance).Contains(p) {
		return Outside
	}
	if onAnyFace(s, p) {
		return OnBoundary
	}

	ray := geom.Ray{Origin: p, Direction: castDirection}
	crossings := 0
	for i := range s.Faces {
		for _, tri := range faceFan(s, &s.Faces[i]) {
			if _, hit := RayTriangle(ray, tri[0], tri[1], tri[2]); hit {
				crossings++
			}
		}
	}
	if crossings%2 == 1 {
		return Inside
	}
	return Outside
}

// onAnyFace reports whether p lies within tolerance of some face.
func onAnyFace(s *topo.Solid, p geom.Point3) bool {
	for i := range s.Faces {
		pts := s.LoopPoints(s.Faces[i].Outer)
		n, ok := topo.NewellNormal(pts)
		if !ok {
			continue
		}
		pl, _ := geom.NewPlane(pts[0], n)
		if math.Abs(pl.SignedDistance(p)) > 10*geom.Tolerance {
			continue
		}
		if PointInPolygon(pl.Project(p), pts, n) {
			return true
		}
	}
	return false
}

// PointInPolygon tests a coplanar point against a polygon with the
// given normal, by crossing count in the polygon's dominant plane.
func PointInPolygon(p geom.Point3, poly []geom.Point3, normal geom.Vector3) bool {
	u, v := dominantAxes(normal)
	px, py := pick(p, u), pick(p, v)
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		xi, yi := pick(poly[i], u), pick(poly[i], v)
		xj, yj := pick(poly[j], u), pick(poly[j], v)
		if (yi > py) != (yj > py) &&
			px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	if inside {
		return true
	}
	// Points on the polygon edge count as in.
	for i := 0; i < len(poly); i++ {
		if pointOnSegment(p, poly[i], poly[(i+1)%len(poly)]) {
			return true
		}
	}
	return false
}

func pointOnSegment(p, a, b geom.Point3) bool {
	ab := b.Sub(a)
	lenSq := ab.LengthSquared()
	if lenSq < geom.Tolerance*geom.Tolerance {
		return p.Distance(a) < 10*geom.Tolerance
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 || t > 1 {
		return false
	}
	return p.Distance(a.Add(ab.Scale(t))) < 10*geom.Tolerance
}

// dominantAxes picks the two coordinate axes spanning the plane most
// perpendicular to the normal.
func dominantAxes(n geom.Vector3) (int, int) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return 0, 1
	case ay >= ax:
		return 0, 2
	default:
		return 1, 2
	}
}

func pick(p geom.Point3, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// faceFan triangulates a face's outer loop by fanning from its first
// vertex. Good enough for the convex faces produced by the generators
// and by plane clipping.
func faceFan(s *topo.Solid, f *topo.Face) [][3]geom.Point3 {
	pts := s.LoopPoints(f.Outer)
	out := make([][3]geom.Point3, 0, len(pts)-2)
	for i := 1; i+1 < len(pts); i++ {
		out = append(out, [3]geom.Point3{pts[0], pts[i], pts[i+1]})
	}
	return out
}

// FaceHit is a ray/face intersection.
type FaceHit struct {
	Face  topo.FaceID
	T     float64
	Point geom.Point3
}

// PickFace returns the closest face hit by the ray, for selection.
// The second return is false when the ray misses the solid.
func PickFace(s *topo.Solid, ray geom.Ray) (FaceHit, bool) {
	best := FaceHit{T: math.Inf(1)}
	found := false
	for i := range s.Faces {
		for _, tri := range faceFan(s, &s.Faces[i]) {
			t, hit := RayTriangle(ray, tri[0], tri[1], tri[2])
			if hit && t < best.T {
				best = FaceHit{Face: topo.FaceID(i), T: t, Point: ray.At(t)}
				found = true
			}
		}
	}
	return best, found
}

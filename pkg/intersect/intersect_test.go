package intersect

import (
	"math"
	"testing"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/primitive"
)

func TestPlanePlane(t *testing.T) {
	line, ok := PlanePlane(geom.PlaneXY, geom.PlaneXZ)
	if !ok {
		t.Fatal("perpendicular planes should intersect")
	}
	// XY meets XZ along the x axis.
	if line.DistanceToPoint(geom.Pt(5, 0, 0)) > 1e-9 {
		t.Errorf("intersection misses x axis: %+v", line)
	}
	if math.Abs(math.Abs(line.Direction.Dot(geom.UnitX))-1) > 1e-9 {
		t.Errorf("direction = %v, want +-x", line.Direction)
	}

	shifted, _ := geom.NewPlane(geom.Pt(0, 0, 7), geom.UnitZ)
	if _, ok := PlanePlane(geom.PlaneXY, shifted); ok {
		t.Error("parallel planes should not intersect")
	}
}

func TestRaySphere(t *testing.T) {
	r, _ := geom.NewRay(geom.Pt(-5, 0, 0), geom.UnitX)
	ts := RaySphere(r, geom.Origin, 1)
	if len(ts) != 2 {
		t.Fatalf("hits = %v, want 2", ts)
	}
	if math.Abs(ts[0]-4) > 1e-9 || math.Abs(ts[1]-6) > 1e-9 {
		t.Errorf("ts = %v, want [4 6]", ts)
	}

	miss, _ := geom.NewRay(geom.Pt(-5, 2, 0), geom.UnitX)
	if ts := RaySphere(miss, geom.Origin, 1); len(ts) != 0 {
		t.Errorf("miss returned %v", ts)
	}

	// Origin inside: only the exit is forward.
	inside, _ := geom.NewRay(geom.Origin, geom.UnitX)
	if ts := RaySphere(inside, geom.Origin, 1); len(ts) != 1 || math.Abs(ts[0]-1) > 1e-9 {
		t.Errorf("inside ts = %v, want [1]", ts)
	}
}

func TestRayCylinder(t *testing.T) {
	axis, _ := geom.NewLine(geom.Origin, geom.UnitZ)
	r, _ := geom.NewRay(geom.Pt(-5, 0, 3), geom.UnitX)
	ts := RayCylinder(r, axis, 2)
	if len(ts) != 2 {
		t.Fatalf("hits = %v, want 2", ts)
	}
	if math.Abs(ts[0]-3) > 1e-9 || math.Abs(ts[1]-7) > 1e-9 {
		t.Errorf("ts = %v, want [3 7]", ts)
	}

	parallel, _ := geom.NewRay(geom.Pt(0.5, 0, 0), geom.UnitZ)
	if ts := RayCylinder(parallel, axis, 2); len(ts) != 0 {
		t.Errorf("axis-parallel ray returned %v", ts)
	}
}

func TestRayTriangle(t *testing.T) {
	a, b, c := geom.Pt(0, 0, 0), geom.Pt(2, 0, 0), geom.Pt(0, 2, 0)
	r, _ := geom.NewRay(geom.Pt(0.5, 0.5, 5), geom.Vec(0, 0, -1))
	tHit, ok := RayTriangle(r, a, b, c)
	if !ok {
		t.Fatal("ray through triangle interior should hit")
	}
	if math.Abs(tHit-5) > 1e-9 {
		t.Errorf("t = %v, want 5", tHit)
	}

	out, _ := geom.NewRay(geom.Pt(3, 3, 5), geom.Vec(0, 0, -1))
	if _, ok := RayTriangle(out, a, b, c); ok {
		t.Error("ray outside triangle should miss")
	}

	away, _ := geom.NewRay(geom.Pt(0.5, 0.5, 5), geom.UnitZ)
	if _, ok := RayTriangle(away, a, b, c); ok {
		t.Error("triangle behind ray should miss")
	}

	grazing, _ := geom.NewRay(geom.Pt(-5, 0.5, 0), geom.UnitX)
	if _, ok := RayTriangle(grazing, a, b, c); ok {
		t.Error("coplanar ray should miss")
	}
}

func TestPointInSolid(t *testing.T) {
	box, err := primitive.Box(2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		p    geom.Point3
		want Classification
	}{
		{geom.Pt(1, 1, 1), Inside},
		{geom.Pt(0.1, 0.1, 0.1), Inside},
		{geom.Pt(3, 1, 1), Outside},
		{geom.Pt(-0.5, 1, 1), Outside},
		{geom.Pt(1, 1, 2), OnBoundary},
		{geom.Pt(2, 1, 1), OnBoundary},
		{geom.Pt(0, 0, 0), OnBoundary},
	}
	for _, tc := range cases {
		if got := PointInSolid(box, tc.p); got != tc.want {
			t.Errorf("PointInSolid(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPointInSphereSolid(t *testing.T) {
	sph, err := primitive.Sphere(1, 16, 8)
	if err != nil {
		t.Fatal(err)
	}
	if got := PointInSolid(sph, geom.Origin); got != Inside {
		t.Errorf("center = %v, want inside", got)
	}
	if got := PointInSolid(sph, geom.Pt(2, 0, 0)); got != Outside {
		t.Errorf("outside point = %v, want outside", got)
	}
}

func TestPickFace(t *testing.T) {
	box, err := primitive.Box(2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := geom.NewRay(geom.Pt(1, 1, 10), geom.Vec(0, 0, -1))
	hit, ok := PickFace(box, r)
	if !ok {
		t.Fatal("ray at box should hit")
	}
	if math.Abs(hit.T-8) > 1e-9 {
		t.Errorf("t = %v, want 8", hit.T)
	}
	if !hit.Point.ApproxEq(geom.Pt(1, 1, 2), 1e-9) {
		t.Errorf("point = %v, want top face", hit.Point)
	}
	n, ok := box.FaceNormal(hit.Face)
	if !ok || n.Sub(geom.UnitZ).Length() > 1e-9 {
		t.Errorf("picked face normal = %v, want +z", n)
	}

	miss, _ := geom.NewRay(geom.Pt(10, 10, 10), geom.UnitZ)
	if _, ok := PickFace(box, miss); ok {
		t.Error("ray away from box should miss")
	}
}

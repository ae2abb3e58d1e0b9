package sketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chamfer/chamfer/pkg/geom"
)

func TestPlaneRoundTrip(t *testing.T) {
	for _, pl := range []Plane{PlaneXY(), PlaneYZ(), PlaneXZ()} {
		p2 := Pt2(3, -2)
		back := pl.From3D(pl.To3D(p2))
		require.InDelta(t, p2.X, back.X, 1e-9)
		require.InDelta(t, p2.Y, back.Y, 1e-9)
	}
}

func TestPlaneNormals(t *testing.T) {
	require.InDelta(t, 1, PlaneXY().Normal().Dot(geom.UnitZ), 1e-9)
	require.InDelta(t, 1, PlaneYZ().Normal().Dot(geom.UnitX), 1e-9)
	// XZ with U=x, V=z faces -y.
	require.InDelta(t, -1, PlaneXZ().Normal().Dot(geom.UnitY), 1e-9)
}

func TestPlaneOnArbitrary(t *testing.T) {
	base, _ := geom.NewPlane(geom.Pt(1, 2, 3), geom.Vec(1, 1, 1))
	pl := PlaneOn(base)
	require.InDelta(t, 0, pl.U.Dot(pl.V), 1e-9)
	require.InDelta(t, 1, pl.Normal().Dot(base.Normal), 1e-9)
	lifted := pl.To3D(Pt2(2, 5))
	require.InDelta(t, 0, base.SignedDistance(lifted), 1e-9)
}

func TestOrient2D(t *testing.T) {
	require.Positive(t, Orient2D(Pt2(0, 0), Pt2(1, 0), Pt2(0, 1)))
	require.Negative(t, Orient2D(Pt2(0, 0), Pt2(0, 1), Pt2(1, 0)))
	require.InDelta(t, 0, Orient2D(Pt2(0, 0), Pt2(1, 1), Pt2(2, 2)), 1e-12)
}

func TestCircumcenter(t *testing.T) {
	c, ok := Circumcenter(Pt2(1, 0), Pt2(0, 1), Pt2(-1, 0))
	require.True(t, ok)
	require.InDelta(t, 0, c.X, 1e-9)
	require.InDelta(t, 0, c.Y, 1e-9)

	_, ok = Circumcenter(Pt2(0, 0), Pt2(1, 1), Pt2(2, 2))
	require.False(t, ok)
}

func TestEntityReferencesChecked(t *testing.T) {
	s := New(PlaneXY())
	p0 := s.AddPoint(Pt2(0, 0))

	_, err := s.AddLine(p0, PointID(42))
	require.ErrorIs(t, err, ErrBadReference)

	_, err = s.AddCircle(p0, -1)
	require.ErrorIs(t, err, ErrBadReference)

	id, err := s.AddCircle(p0, 2)
	require.NoError(t, err)
	e, ok := s.Entity(id)
	require.True(t, ok)
	require.Equal(t, EntityCircle, e.Kind)
	require.Equal(t, 2.0, e.Radius)
}

func TestConstraintValidation(t *testing.T) {
	s := New(PlaneXY())
	p0 := s.AddPoint(Pt2(0, 0))
	p1 := s.AddPoint(Pt2(1, 0))
	line, err := s.AddLine(p0, p1)
	require.NoError(t, err)

	require.NoError(t, s.AddConstraint(Horizontal{Line: line}))
	require.ErrorIs(t, s.AddConstraint(Horizontal{Line: EntityID(9)}), ErrBadReference)
	require.ErrorIs(t, s.AddConstraint(Coincident{A: p0, B: PointID(7)}), ErrBadReference)
	// A line is not a circle.
	require.ErrorIs(t, s.AddConstraint(Radius{Entity: line, Value: 1}), ErrBadReference)
}

func TestRadiusOnCircleAppliesDirectly(t *testing.T) {
	s := New(PlaneXY())
	c := s.AddPoint(Pt2(0, 0))
	circle, err := s.AddCircle(c, 1)
	require.NoError(t, err)

	require.NoError(t, s.AddConstraint(Radius{Entity: circle, Value: 3}))
	e, _ := s.Entity(circle)
	require.Equal(t, 3.0, e.Radius)

	// Diameter works the same way.
	require.NoError(t, s.AddConstraint(Diameter{Entity: circle, Value: 5}))
	e, _ = s.Entity(circle)
	require.Equal(t, 2.5, e.Radius)

	// Neither adds solver equations.
	a := s.Analyze()
	require.Equal(t, 0, a.Equations)
}

func residuals(t *testing.T, s *Sketch, c Constraint) []float64 {
	t.Helper()
	out := make([]float64, c.Arity(s))
	c.Residuals(s, out)
	return out
}

func TestResidualValues(t *testing.T) {
	s := New(PlaneXY())
	p0 := s.AddPoint(Pt2(0, 0))
	p1 := s.AddPoint(Pt2(3, 4))
	p2 := s.AddPoint(Pt2(0, 4))
	l01, _ := s.AddLine(p0, p1)
	l02, _ := s.AddLine(p0, p2)

	require.InDelta(t, 0, residuals(t, s, Distance{A: p0, B: p1, Value: 5})[0], 1e-9)
	require.InDelta(t, 2, residuals(t, s, Distance{A: p0, B: p1, Value: 3})[0], 1e-9)
	require.InDelta(t, 3, residuals(t, s, HorizontalDistance{A: p0, B: p1, Value: 0})[0], 1e-9)
	require.InDelta(t, 4, residuals(t, s, VerticalDistance{A: p0, B: p1, Value: 0})[0], 1e-9)

	r := residuals(t, s, Coincident{A: p0, B: p1})
	require.InDelta(t, -3, r[0], 1e-9)
	require.InDelta(t, -4, r[1], 1e-9)

	require.InDelta(t, 4, residuals(t, s, Horizontal{Line: l01})[0], 1e-9)
	require.InDelta(t, 0, residuals(t, s, Vertical{Line: l02})[0], 1e-9)

	// Directions u=(3,4), v=(0,4): cross 12, dot 16.
	want := math.Atan2(12, 16)
	require.InDelta(t, want, residuals(t, s, Angle{A: l01, B: l02, Value: 0})[0], 1e-9)
}

func TestTangentResidual(t *testing.T) {
	s := New(PlaneXY())
	a := s.AddPoint(Pt2(-5, 2))
	b := s.AddPoint(Pt2(5, 2))
	line, _ := s.AddLine(a, b)
	c := s.AddPoint(Pt2(0, 0))
	circle, _ := s.AddCircle(c, 2)

	// Horizontal line at y=2 is tangent to a radius-2 circle at origin.
	require.InDelta(t, 0, residuals(t, s, Tangent{Line: line, Circle: circle})[0], 1e-9)

	circle2, _ := s.AddCircle(c, 1)
	require.InDelta(t, 1, residuals(t, s, Tangent{Line: line, Circle: circle2})[0], 1e-9)
}

// numericJacobian builds the Jacobian by finite differences for
// comparison with the analytic one.
func numericJacobian(s *Sketch, c Constraint) map[[3]int]float64 {
	const h = 1e-7
	out := map[[3]int]float64{}
	m := c.Arity(s)
	base := make([]float64, m)
	bumped := make([]float64, m)
	c.Residuals(s, base)
	for pi := range s.Points {
		for axis := 0; axis < 2; axis++ {
			orig := s.Points[pi].Pos
			if axis == 0 {
				s.Points[pi].Pos.X += h
			} else {
				s.Points[pi].Pos.Y += h
			}
			c.Residuals(s, bumped)
			s.Points[pi].Pos = orig
			for eq := 0; eq < m; eq++ {
				d := (bumped[eq] - base[eq]) / h
				if math.Abs(d) > 1e-6 {
					out[[3]int{eq, pi, axis}] = d
				}
			}
		}
	}
	return out
}

func TestAnalyticJacobianMatchesNumeric(t *testing.T) {
	s := New(PlaneXY())
	p0 := s.AddPoint(Pt2(0.3, -0.2))
	p1 := s.AddPoint(Pt2(3.1, 4.2))
	p2 := s.AddPoint(Pt2(-1.5, 2.8))
	p3 := s.AddPoint(Pt2(2.2, -0.7))
	l1, _ := s.AddLine(p0, p1)
	l2, _ := s.AddLine(p2, p3)
	cc := s.AddPoint(Pt2(0.5, 0.9))
	circle, _ := s.AddCircle(cc, 1.3)
	arcS := s.AddPoint(Pt2(2, 1))
	arcE := s.AddPoint(Pt2(1, 2))
	arc, _ := s.AddArc(arcS, arcE, cc)

	constraints := []Constraint{
		Coincident{A: p0, B: p2},
		Horizontal{Line: l1},
		Vertical{Line: l1},
		Parallel{A: l1, B: l2},
		Perpendicular{A: l1, B: l2},
		Distance{A: p0, B: p1, Value: 2},
		HorizontalDistance{A: p0, B: p1, Value: 1},
		VerticalDistance{A: p0, B: p1, Value: 1},
		Angle{A: l1, B: l2, Value: 0.3},
		Tangent{Line: l1, Circle: circle},
		Radius{Entity: arc, Value: 1},
	}
	for _, c := range constraints {
		got := map[[3]int]float64{}
		c.Jacobian(s, func(eq int, p PointID, axis int, d float64) {
			got[[3]int{eq, int(p), axis}] += d
		})
		want := numericJacobian(s, c)
		for key, w := range want {
			require.InDeltaf(t, w, got[key], 1e-5,
				"%s: d(eq %d)/d(point %d axis %d)", c.Kind(), key[0], key[1], key[2])
		}
		for key, g := range got {
			if math.Abs(g) > 1e-6 {
				require.InDeltaf(t, want[key], g, 1e-5,
					"%s: spurious term at %v", c.Kind(), key)
			}
		}
	}
}

func TestAnalyze(t *testing.T) {
	s := New(PlaneXY())
	p0 := s.AddFixedPoint(Pt2(0, 0))
	p1 := s.AddPoint(Pt2(1, 0))

	a := s.Analyze()
	require.Equal(t, 2, a.Variables)
	require.Equal(t, 2, a.DOF)
	require.Equal(t, UnderConstrained, a.Status)

	require.NoError(t, s.AddConstraint(Distance{A: p0, B: p1, Value: 5}))
	require.NoError(t, s.AddConstraint(HorizontalDistance{A: p0, B: p1, Value: 5}))
	a = s.Analyze()
	require.Equal(t, 0, a.DOF)
	require.Equal(t, FullyConstrained, a.Status)

	require.NoError(t, s.AddConstraint(VerticalDistance{A: p0, B: p1, Value: 0}))
	a = s.Analyze()
	require.Equal(t, OverConstrained, a.Status)
}

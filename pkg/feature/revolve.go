package feature

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/sketch"
	"github.com/chamfer/chamfer/pkg/topo"
)

// RevolveAxis selects which sketch axis the profile spins about.
type RevolveAxis int

const (
	// AxisU revolves about the sketch plane's U direction; the
	// profile must keep v >= 0.
	AxisU RevolveAxis = iota
	// AxisV revolves about the V direction; the profile must keep
	// u >= 0.
	AxisV
)

func (a RevolveAxis) String() string {
	if a == AxisU {
		return "u"
	}
	return "v"
}

// RevolveParams controls a revolution about a sketch axis through the
// sketch origin.
type RevolveParams struct {
	AngleDegrees float64
	Axis         RevolveAxis
	Segments     int
}

// Revolve sweeps the sketch's closed profile about the chosen axis.
// A full 360 degrees closes seamlessly; smaller angles are capped
// with the start and end profiles.
func Revolve(sk *sketch.Sketch, params RevolveParams) (*topo.Solid, error) {
	if params.AngleDegrees < geom.Tolerance || params.AngleDegrees > 360+geom.Tolerance {
		return nil, fmt.Errorf("feature: revolve angle %g: %w", params.AngleDegrees, ErrInvalidGeometry)
	}
	if params.Segments < 3 {
		return nil, fmt.Errorf("feature: revolve with %d segments: %w", params.Segments, ErrInvalidGeometry)
	}
	poly, err := profilePolygon(sk)
	if err != nil {
		return nil, err
	}

	// The profile must stay on one side of the axis.
	for _, p := range poly {
		off := p.X
		if params.Axis == AxisU {
			off = p.Y
		}
		if off < -geom.Tolerance {
			return nil, fmt.Errorf("feature: profile crosses revolve axis: %w", ErrInvalidGeometry)
		}
	}

	full := math.Abs(params.AngleDegrees-360) < geom.Tolerance
	axisDir := sk.Plane.V
	// Revolving about U sweeps the profile the opposite way around,
	// so faces built with the V ordering must be flipped.
	flip := params.Axis == AxisU
	if flip {
		axisDir = sk.Plane.U
	}

	rings := params.Segments
	if !full {
		rings = params.Segments + 1
	}
	angle := params.AngleDegrees * math.Pi / 180

	// ring[k][i] is profile point i rotated by k steps.
	ring := make([][]geom.Point3, rings)
	base := lift(sk, poly, geom.ZeroVec)
	for k := 0; k < rings; k++ {
		theta := angle * float64(k) / float64(params.Segments)
		tf := rotationAbout(sk.Plane.Origin, axisDir, theta)
		ring[k] = make([]geom.Point3, len(base))
		for i, p := range base {
			ring[k][i] = tf.ApplyPoint(p)
		}
	}

	bld := topo.NewBuilder()
	addFace := func(pts []geom.Point3) error {
		pts = dedupeRing(pts)
		if len(pts) < 3 {
			return nil
		}
		if flip {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		_, err := bld.PlanarPolygon(pts)
		return err
	}

	for k := 0; k < rings; k++ {
		next := (k + 1) % rings
		if !full && next == 0 {
			break
		}
		for i := range poly {
			j := (i + 1) % len(poly)
			quad := []geom.Point3{ring[k][i], ring[next][i], ring[next][j], ring[k][j]}
			if err := addFace(quad); err != nil {
				return nil, fmt.Errorf("feature: revolve wall: %w", err)
			}
		}
	}

	if !full {
		if err := addFace(append([]geom.Point3(nil), ring[0]...)); err != nil {
			return nil, fmt.Errorf("feature: revolve start cap: %w", err)
		}
		end := make([]geom.Point3, len(poly))
		last := ring[rings-1]
		for i := range poly {
			end[len(poly)-1-i] = last[i]
		}
		if err := addFace(end); err != nil {
			return nil, fmt.Errorf("feature: revolve end cap: %w", err)
		}
	}

	out := bld.Solid()
	if !out.IsWatertight() {
		return nil, fmt.Errorf("feature: revolution not watertight: %w", ErrInvalidGeometry)
	}
	return out, nil
}

// rotationAbout builds a rotation of theta radians about an axis
// through a point.
func rotationAbout(origin geom.Point3, dir geom.Vector3, theta float64) geom.Transform3 {
	rot, _ := geom.FromAxisAngle(dir, theta)
	return geom.FromTranslation(origin.Vec().Neg()).
		Then(rot).
		Then(geom.FromTranslation(origin.Vec()))
}

// dedupeRing drops consecutive duplicate points, which appear when a
// profile vertex sits exactly on the revolve axis.
func dedupeRing(pts []geom.Point3) []geom.Point3 {
	out := pts[:0]
	for _, p := range pts {
		if len(out) == 0 || !out[len(out)-1].ApproxEq(p, 10*geom.Tolerance) {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[0].ApproxEq(out[len(out)-1], 10*geom.Tolerance) {
		out = out[:len(out)-1]
	}
	return out
}

// Package feature turns sketches into solids: extrusion, revolution,
// and pattern replication.
package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/sketch"
)

var (
	// ErrNoClosedProfile reports a sketch whose entities do not chain
	// into a single closed loop.
	ErrNoClosedProfile = errors.New("no closed profile")
	// ErrSelfIntersecting reports a profile that crosses itself.
	ErrSelfIntersecting = errors.New("self-intersecting profile")
	// ErrInvalidGeometry reports parameters or profile geometry the
	// feature cannot use.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// circleSegments is the polygon resolution used when a profile is a
// full circle.
const circleSegments = 32

// profilePolygon extracts the sketch's closed profile as a
// counter-clockwise polygon. The profile is either a single circle or
// a single loop of chained lines; construction geometry is ignored.
func profilePolygon(sk *sketch.Sketch) ([]sketch.Point2, error) {
	var lines []sketch.Entity
	var circles []sketch.Entity
	for _, e := range sk.Entities {
		if e.Construction {
			continue
		}
		switch e.Kind {
		case sketch.EntityLine:
			lines = append(lines, e)
		case sketch.EntityCircle:
			circles = append(circles, e)
		}
	}

	if len(lines) == 0 && len(circles) == 1 {
		return circlePolygon(sk, circles[0]), nil
	}
	if len(circles) != 0 {
		return nil, fmt.Errorf("feature: mixed circle and line profile: %w", ErrNoClosedProfile)
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("feature: %d profile lines: %w", len(lines), ErrNoClosedProfile)
	}

	loop, err := chainLines(lines)
	if err != nil {
		return nil, err
	}
	poly := make([]sketch.Point2, len(loop))
	for i, id := range loop {
		poly[i] = sk.Pos(id)
	}
	if err := checkSimple(poly); err != nil {
		return nil, err
	}
	if signedArea2(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return poly, nil
}

func circlePolygon(sk *sketch.Sketch, e sketch.Entity) []sketch.Point2 {
	c := sk.Pos(e.Center)
	poly := make([]sketch.Point2, circleSegments)
	for i := range poly {
		theta := 2 * math.Pi * float64(i) / circleSegments
		poly[i] = sketch.Pt2(c.X+e.Radius*math.Cos(theta), c.Y+e.Radius*math.Sin(theta))
	}
	return poly
}

// chainLines orders line entities tip to tail into one closed loop of
// point ids.
func chainLines(lines []sketch.Entity) ([]sketch.PointID, error) {
	// Every endpoint must join exactly two lines.
	degree := map[sketch.PointID]int{}
	for _, l := range lines {
		degree[l.Start]++
		degree[l.End]++
	}
	for id, d := range degree {
		if d != 2 {
			return nil, fmt.Errorf("feature: point %d joins %d lines: %w", id, d, ErrNoClosedProfile)
		}
	}

	used := make([]bool, len(lines))
	loop := []sketch.PointID{lines[0].Start, lines[0].End}
	used[0] = true
	for range lines[1:] {
		tip := loop[len(loop)-1]
		found := false
		for i, l := range lines {
			if used[i] {
				continue
			}
			switch tip {
			case l.Start:
				loop = append(loop, l.End)
			case l.End:
				loop = append(loop, l.Start)
			default:
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("feature: disconnected profile: %w", ErrNoClosedProfile)
		}
	}
	if loop[len(loop)-1] != loop[0] {
		return nil, fmt.Errorf("feature: open profile chain: %w", ErrNoClosedProfile)
	}
	return loop[:len(loop)-1], nil
}

// checkSimple rejects polygons whose non-adjacent edges cross.
func checkSimple(poly []sketch.Point2) error {
	n := len(poly)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges, including the wrap-around pair.
			if j == i || j == (i+1)%n || (j+1)%n == i {
				continue
			}
			if segsCross2(poly[i], poly[(i+1)%n], poly[j], poly[(j+1)%n]) {
				return fmt.Errorf("feature: edges %d and %d cross: %w", i, j, ErrSelfIntersecting)
			}
		}
	}
	return nil
}

func segsCross2(a, b, c, d sketch.Point2) bool {
	d1 := sketch.Orient2D(c, d, a)
	d2 := sketch.Orient2D(c, d, b)
	d3 := sketch.Orient2D(a, b, c)
	d4 := sketch.Orient2D(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func signedArea2(poly []sketch.Point2) float64 {
	var a float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// lift maps the 2D polygon onto the sketch plane, offset along the
// plane normal.
func lift(sk *sketch.Sketch, poly []sketch.Point2, offset geom.Vector3) []geom.Point3 {
	out := make([]geom.Point3, len(poly))
	for i, p := range poly {
		out[i] = sk.Plane.To3D(p).Add(offset)
	}
	return out
}

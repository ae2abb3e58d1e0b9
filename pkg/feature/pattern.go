package feature

import (
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/topo"
)

// LinearPattern replicates a solid count times along a direction,
// spacing units apart. The first element is an unmoved copy of the
// source; a count below 1 still produces that one copy. A degenerate
// direction falls back to z.
func LinearPattern(s *topo.Solid, dir geom.Vector3, count int, spacing float64) []*topo.Solid {
	if count < 1 {
		count = 1
	}
	d := dir.NormalizeOrZ()
	out := make([]*topo.Solid, count)
	for i := range out {
		c := s.Clone()
		if i > 0 {
			c.ApplyTransform(geom.FromTranslation(d.Scale(spacing * float64(i))))
		}
		out[i] = c
	}
	return out
}

// CircularPattern replicates a solid count times about an axis,
// stepping stepDegrees between copies. The first element is an
// unmoved copy of the source.
func CircularPattern(s *topo.Solid, axis geom.Line, count int, stepDegrees float64) []*topo.Solid {
	if count < 1 {
		count = 1
	}
	out := make([]*topo.Solid, count)
	for i := range out {
		c := s.Clone()
		if i > 0 {
			theta := stepDegrees * math.Pi / 180 * float64(i)
			c.ApplyTransform(rotationAbout(axis.Origin, axis.Direction, theta))
		}
		out[i] = c
	}
	return out
}

// MergePattern folds pattern copies into one compound solid.
func MergePattern(parts []*topo.Solid) *topo.Solid {
	if len(parts) == 0 {
		return topo.NewSolid()
	}
	out := parts[0].Clone()
	for _, p := range parts[1:] {
		out.Merge(p)
	}
	return out
}

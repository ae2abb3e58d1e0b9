// Package boolean combines watertight solids by union, difference,
// and intersection. Faces of each operand are fragmented along the
// other operand's face planes, fragments are kept or dropped by
// where they sit relative to the other solid, and the survivors are
// stitched back into a watertight result.
package boolean

import (
	"errors"
	"fmt"

	"github.com/chamfer/chamfer/pkg/intersect"
	"github.com/chamfer/chamfer/pkg/topo"
)

// Op selects the boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

var (
	// ErrDegenerateInput reports an operand that is nil, empty, or
	// not watertight.
	ErrDegenerateInput = errors.New("degenerate input solid")
	// ErrNonManifold reports that the stitched result failed the
	// watertightness check.
	ErrNonManifold = errors.New("result is not manifold")
	// ErrCoplanarAmbiguity reports coincident faces whose relative
	// orientation could not be resolved.
	ErrCoplanarAmbiguity = errors.New("ambiguous coplanar faces")
	// ErrNoIntersection reports an intersection of solids that share
	// no volume.
	ErrNoIntersection = errors.New("solids do not intersect")
)

// Union returns the solid covering the volume of either operand.
func Union(a, b *topo.Solid) (*topo.Solid, error) {
	return Apply(OpUnion, a, b)
}

// Difference returns a with b's volume removed.
func Difference(a, b *topo.Solid) (*topo.Solid, error) {
	return Apply(OpDifference, a, b)
}

// Intersection returns the volume common to both operands.
func Intersection(a, b *topo.Solid) (*topo.Solid, error) {
	return Apply(OpIntersection, a, b)
}

// Apply runs one boolean operation. The operands are not modified.
func Apply(op Op, a, b *topo.Solid) (*topo.Solid, error) {
	if err := checkOperand("left", a); err != nil {
		return nil, err
	}
	if err := checkOperand("right", b); err != nil {
		return nil, err
	}

	if !a.Bounds().Expand(splitTol).Intersects(b.Bounds()) {
		switch op {
		case OpUnion:
			out := a.Clone()
			out.Merge(b.Clone())
			return out, nil
		case OpDifference:
			return a.Clone(), nil
		default:
			return nil, fmt.Errorf("boolean: %s of disjoint solids: %w", op, ErrNoIntersection)
		}
	}

	aPolys, err := facePolygons(a)
	if err != nil {
		return nil, fmt.Errorf("boolean: %s: left operand: %w", op, err)
	}
	bPolys, err := facePolygons(b)
	if err != nil {
		return nil, fmt.Errorf("boolean: %s: right operand: %w", op, err)
	}
	aFrags := fragment(aPolys, b)
	bFrags := fragment(bPolys, a)

	var kept []polygon
	for _, p := range aFrags {
		keep, flipped, err := keepRule(op, p, b, true)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, maybeFlip(p, flipped))
		}
	}
	for _, p := range bFrags {
		keep, flipped, err := keepRule(op, p, a, false)
		if err != nil {
			return nil, err
		}
		if keep {
			kept = append(kept, maybeFlip(p, flipped))
		}
	}

	if len(kept) == 0 {
		switch op {
		case OpIntersection:
			return nil, fmt.Errorf("boolean: %s: %w", op, ErrNoIntersection)
		case OpDifference:
			// Subtracting everything leaves the empty solid.
			return topo.NewSolid(), nil
		default:
			return nil, fmt.Errorf("boolean: %s produced no faces: %w", op, ErrNonManifold)
		}
	}

	return stitch(op, healTJunctions(kept))
}

func maybeFlip(p polygon, flipped bool) polygon {
	if flipped {
		return p.flip()
	}
	return p
}

func checkOperand(side string, s *topo.Solid) error {
	if s == nil || len(s.Faces) == 0 {
		return fmt.Errorf("boolean: %s operand empty: %w", side, ErrDegenerateInput)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("boolean: %s operand: %v: %w", side, err, ErrDegenerateInput)
	}
	if !s.IsWatertight() {
		return fmt.Errorf("boolean: %s operand not watertight: %w", side, ErrDegenerateInput)
	}
	return nil
}

// fragment classification against the other operand.
type fragClass int

const (
	fragOutside fragClass = iota
	fragInside
	fragSame    // coincident with the other boundary, normals agree
	fragOpposed // coincident, normals oppose
	fragTangent // on the other boundary with no material either side
)

// classify places a fragment relative to the other solid. Coincident
// fragments are resolved by probing a little off each side of the
// fragment plane.
func classify(p polygon, other *topo.Solid) (fragClass, error) {
	c := p.centroid()
	switch intersect.PointInSolid(other, c) {
	case intersect.Outside:
		return fragOutside, nil
	case intersect.Inside:
		return fragInside, nil
	}

	delta := probeDelta(other)
	front := intersect.PointInSolid(other, c.Add(p.normal.Scale(delta)))
	back := intersect.PointInSolid(other, c.Add(p.normal.Scale(-delta)))
	switch {
	case back == intersect.Inside && front != intersect.Inside:
		return fragSame, nil
	case front == intersect.Inside && back != intersect.Inside:
		return fragOpposed, nil
	case front == intersect.Outside && back == intersect.Outside:
		return fragTangent, nil
	default:
		return 0, fmt.Errorf("boolean: fragment at %v: %w", c, ErrCoplanarAmbiguity)
	}
}

func probeDelta(s *topo.Solid) float64 {
	d := s.Bounds().Diagonal() * 1e-6
	if d < 100*splitTol {
		d = 100 * splitTol
	}
	return d
}

// keepRule decides whether a fragment survives the operation and
// whether it must be flipped. fromA marks fragments of the left
// operand.
func keepRule(op Op, p polygon, other *topo.Solid, fromA bool) (keep, flip bool, err error) {
	cls, err := classify(p, other)
	if err != nil {
		return false, false, err
	}

	switch op {
	case OpUnion:
		switch cls {
		case fragOutside, fragTangent:
			return true, false, nil
		case fragSame:
			// Coincident region survives once, from the left operand.
			return fromA, false, nil
		default:
			return false, false, nil
		}
	case OpIntersection:
		switch cls {
		case fragInside:
			return true, false, nil
		case fragSame:
			return fromA, false, nil
		default:
			return false, false, nil
		}
	default: // OpDifference
		if fromA {
			switch cls {
			case fragOutside, fragOpposed, fragTangent:
				return true, false, nil
			default:
				return false, false, nil
			}
		}
		// Right-operand fragments inside the left close the cavity,
		// facing the other way.
		if cls == fragInside {
			return true, true, nil
		}
		return false, false, nil
	}
}

// stitch rebuilds a solid from the kept fragments and verifies it is
// watertight.
func stitch(op Op, polys []polygon) (*topo.Solid, error) {
	bld := topo.NewBuilder()
	for _, p := range polys {
		if _, err := bld.PlanarPolygon(p.pts); err != nil {
			return nil, fmt.Errorf("boolean: %s: stitching fragment: %v: %w", op, err, ErrNonManifold)
		}
	}
	out := bld.Solid()
	if !out.IsWatertight() {
		return nil, fmt.Errorf("boolean: %s: %w", op, ErrNonManifold)
	}
	return out, nil
}

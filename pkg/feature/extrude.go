package feature

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/sketch"
	"github.com/chamfer/chamfer/pkg/topo"
)

// ExtrudeParams controls a linear extrusion along the sketch plane
// normal.
type ExtrudeParams struct {
	Distance float64
	// Symmetric extrudes half the distance to each side of the
	// sketch plane.
	Symmetric bool
}

// Extrude sweeps the sketch's closed profile along the plane normal
// into a watertight prism.
func Extrude(sk *sketch.Sketch, params ExtrudeParams) (*topo.Solid, error) {
	if math.Abs(params.Distance) < geom.Tolerance {
		return nil, fmt.Errorf("feature: extrude distance %g: %w", params.Distance, ErrInvalidGeometry)
	}
	poly, err := profilePolygon(sk)
	if err != nil {
		return nil, err
	}

	n := sk.Plane.Normal()
	offset := n.Scale(params.Distance)
	base := geom.ZeroVec
	if params.Symmetric {
		base = n.Scale(-params.Distance / 2)
		offset = n.Scale(params.Distance / 2)
	}
	// A negative distance extrudes the other way; swap ends so the
	// winding still faces out.
	if params.Distance < 0 && !params.Symmetric {
		base, offset = offset, base
	}

	bottom := lift(sk, poly, base)
	top := lift(sk, poly, offset)

	bld := topo.NewBuilder()
	bIDs := make([]topo.VertexID, len(bottom))
	tIDs := make([]topo.VertexID, len(top))
	for i := range poly {
		bIDs[i] = bld.Vertex(bottom[i])
		tIDs[i] = bld.Vertex(top[i])
	}

	// Bottom faces against the extrusion, top along it.
	rev := make([]topo.VertexID, len(bIDs))
	for i, id := range bIDs {
		rev[len(bIDs)-1-i] = id
	}
	botPlane, _ := geom.NewPlane(bottom[0], n.Neg())
	if _, err := bld.PolygonFace(topo.PlanarSurface(botPlane), rev); err != nil {
		return nil, fmt.Errorf("feature: extrude base: %w", err)
	}
	topPlane, _ := geom.NewPlane(top[0], n)
	if _, err := bld.PolygonFace(topo.PlanarSurface(topPlane), tIDs); err != nil {
		return nil, fmt.Errorf("feature: extrude cap: %w", err)
	}
	for i := range poly {
		j := (i + 1) % len(poly)
		quad := []geom.Point3{bottom[i], bottom[j], top[j], top[i]}
		sideN, ok := topo.NewellNormal(quad)
		if !ok {
			// Zero-length profile edge.
			continue
		}
		pl, _ := geom.NewPlane(bottom[i], sideN)
		ids := []topo.VertexID{bIDs[i], bIDs[j], tIDs[j], tIDs[i]}
		if _, err := bld.PolygonFace(topo.PlanarSurface(pl), ids); err != nil {
			return nil, fmt.Errorf("feature: extrude side %d: %w", i, err)
		}
	}

	out := bld.Solid()
	if !out.IsWatertight() {
		return nil, fmt.Errorf("feature: extrusion not watertight: %w", ErrInvalidGeometry)
	}
	return out, nil
}

// Package topo holds the boundary-representation topology model: a
// solid is an arena of vertices, edges, faces, and shells referenced
// by stable integer ids. Geometry lives on the entities (points on
// vertices, surfaces on faces); adjacency lives in the loops.
package topo

import (
	"github.com/chamfer/chamfer/pkg/geom"
)

// Ids index into a Solid's arenas. Ids are stable for the life of the
// solid: entities are never removed, only added.
type (
	VertexID int
	EdgeID   int
	FaceID   int
	ShellID  int
)

// CurveKind tags the geometry carried by an edge.
type CurveKind int

const (
	CurveLinear CurveKind = iota
	CurveArc
	CurveNurbs
)

func (k CurveKind) String() string {
	switch k {
	case CurveLinear:
		return "linear"
	case CurveArc:
		return "arc"
	case CurveNurbs:
		return "nurbs"
	default:
		return "unknown"
	}
}

// Curve is the geometric support of an edge. Only the fields for the
// active Kind are meaningful.
type Curve struct {
	Kind   CurveKind
	Center geom.Point3 // arc
	Radius float64     // arc
}

// LinearCurve returns the curve of a straight edge.
func LinearCurve() Curve {
	return Curve{Kind: CurveLinear}
}

// ArcCurve returns the curve of a circular arc edge.
func ArcCurve(center geom.Point3, radius float64) Curve {
	return Curve{Kind: CurveArc, Center: center, Radius: radius}
}

// SurfaceKind tags the geometry carried by a face.
type SurfaceKind int

const (
	SurfacePlanar SurfaceKind = iota
	SurfaceCylindrical
	SurfaceSpherical
	SurfaceConical
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlanar:
		return "planar"
	case SurfaceCylindrical:
		return "cylindrical"
	case SurfaceSpherical:
		return "spherical"
	case SurfaceConical:
		return "conical"
	default:
		return "unknown"
	}
}

// Surface is the geometric support of a face. Only the fields for the
// active Kind are meaningful.
type Surface struct {
	Kind      SurfaceKind
	Plane     geom.Plane  // planar
	Axis      geom.Line   // cylindrical, conical
	Center    geom.Point3 // spherical
	Radius    float64     // cylindrical, spherical
	HalfAngle float64     // conical, radians
}

// PlanarSurface returns the surface of a flat face.
func PlanarSurface(pl geom.Plane) Surface {
	return Surface{Kind: SurfacePlanar, Plane: pl}
}

// CylindricalSurface returns a surface of fixed radius about an axis.
func CylindricalSurface(axis geom.Line, radius float64) Surface {
	return Surface{Kind: SurfaceCylindrical, Axis: axis, Radius: radius}
}

// SphericalSurface returns a surface of fixed radius about a center.
func SphericalSurface(center geom.Point3, radius float64) Surface {
	return Surface{Kind: SurfaceSpherical, Center: center, Radius: radius}
}

// ConicalSurface returns a surface sweeping halfAngle radians off an axis.
func ConicalSurface(axis geom.Line, halfAngle float64) Surface {
	return Surface{Kind: SurfaceConical, Axis: axis, HalfAngle: halfAngle}
}

// Vertex is a point in space.
type Vertex struct {
	Point geom.Point3
}

// Edge joins two vertices along a curve.
type Edge struct {
	Start, End VertexID
	Curve      Curve
}

// Loop is an ordered cycle of edges bounding a face. Forward[i]
// records whether Edges[i] is traversed start-to-end; the loop walks
// tip to tail, so each edge's exit vertex is the next edge's entry.
type Loop struct {
	Edges   []EdgeID
	Forward []bool
}

// Face is a bounded patch of a surface. Outer winds counter-clockwise
// seen from outside the solid; Inner loops are holes and wind the
// other way.
type Face struct {
	Surface Surface
	Outer   Loop
	Inner   []Loop
}

// Shell is a connected set of faces enclosing a region.
type Shell struct {
	Faces []FaceID
}

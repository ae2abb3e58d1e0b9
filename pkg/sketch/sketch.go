// Package sketch models 2D sketches: points and entities on a plane
// in space, plus the constraints that the solver drives to zero.
package sketch

import (
	"errors"
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
)

// ErrBadReference reports an id that does not resolve, or resolves to
// the wrong entity kind.
var ErrBadReference = errors.New("bad sketch reference")

// Point2 is a point in sketch coordinates.
type Point2 struct {
	X, Y float64
}

// Pt2 is shorthand for Point2{x, y}.
func Pt2(x, y float64) Point2 {
	return Point2{X: x, Y: y}
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	return Pt2(p.X-q.X, p.Y-q.Y)
}

// Add returns p + q.
func (p Point2) Add(q Point2) Point2 {
	return Pt2(p.X+q.X, p.Y+q.Y)
}

// Distance returns the distance between p and q.
func (p Point2) Distance(q Point2) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Orient2D returns twice the signed area of triangle abc: positive
// when the points turn counter-clockwise.
func Orient2D(a, b, c Point2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Circumcenter returns the center of the circle through three
// points, or false when they are collinear.
func Circumcenter(a, b, c Point2) (Point2, bool) {
	d := 2 * Orient2D(a, b, c)
	if math.Abs(d) < geom.Tolerance {
		return Point2{}, false
	}
	aa := a.X*a.X + a.Y*a.Y
	bb := b.X*b.X + b.Y*b.Y
	cc := c.X*c.X + c.Y*c.Y
	return Pt2(
		(aa*(b.Y-c.Y)+bb*(c.Y-a.Y)+cc*(a.Y-b.Y))/d,
		(aa*(c.X-b.X)+bb*(a.X-c.X)+cc*(b.X-a.X))/d,
	), true
}

// Plane is the embedding of a sketch in space: an origin and two
// orthonormal in-plane directions.
type Plane struct {
	Origin geom.Point3
	U, V   geom.Vector3
}

// The three principal sketch planes.
func PlaneXY() Plane {
	return Plane{Origin: geom.Origin, U: geom.UnitX, V: geom.UnitY}
}

func PlaneYZ() Plane {
	return Plane{Origin: geom.Origin, U: geom.UnitY, V: geom.UnitZ}
}

func PlaneXZ() Plane {
	return Plane{Origin: geom.Origin, U: geom.UnitX, V: geom.UnitZ}
}

// PlaneOn builds a sketch plane on an arbitrary spatial plane.
func PlaneOn(pl geom.Plane) Plane {
	ref := geom.UnitX
	if math.Abs(pl.Normal.X) > 0.9 {
		ref = geom.UnitY
	}
	u := pl.Normal.Cross(ref).NormalizeOrZ()
	return Plane{Origin: pl.Origin, U: u, V: pl.Normal.Cross(u).NormalizeOrZ()}
}

// Normal returns the plane normal, U x V.
func (p Plane) Normal() geom.Vector3 {
	return p.U.Cross(p.V).NormalizeOrZ()
}

// To3D lifts a sketch point into space.
func (p Plane) To3D(q Point2) geom.Point3 {
	return p.Origin.Add(p.U.Scale(q.X)).Add(p.V.Scale(q.Y))
}

// From3D projects a spatial point into sketch coordinates, dropping
// the out-of-plane component.
func (p Plane) From3D(q geom.Point3) Point2 {
	w := q.Sub(p.Origin)
	return Pt2(w.Dot(p.U), w.Dot(p.V))
}

// Ids into a sketch's arenas.
type (
	PointID  int
	EntityID int
)

// Point is a sketch point. Construction points guide the sketch but
// do not contribute profile geometry. Fixed points are excluded from
// the solver's variables.
type Point struct {
	Pos          Point2
	Construction bool
	Fixed        bool
}

// EntityKind tags a sketch entity.
type EntityKind int

const (
	EntityLine EntityKind = iota
	EntityArc
	EntityCircle
	EntityPoint
)

func (k EntityKind) String() string {
	switch k {
	case EntityLine:
		return "line"
	case EntityArc:
		return "arc"
	case EntityCircle:
		return "circle"
	case EntityPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Entity is one sketch element. Only the fields of the active Kind
// are meaningful: lines use Start/End, arcs add Center, circles use
// Center and Radius, free points use Start.
type Entity struct {
	Kind         EntityKind
	Start, End   PointID
	Center       PointID
	Radius       float64
	Construction bool
}

// Sketch is an arena of points, entities, and constraints on a plane.
type Sketch struct {
	Plane       Plane
	Points      []Point
	Entities    []Entity
	Constraints []Constraint
}

// New returns an empty sketch on the given plane.
func New(plane Plane) *Sketch {
	return &Sketch{Plane: plane}
}

// AddPoint adds a point and returns its id.
func (s *Sketch) AddPoint(p Point2) PointID {
	s.Points = append(s.Points, Point{Pos: p})
	return PointID(len(s.Points) - 1)
}

// AddFixedPoint adds an anchored point the solver will not move.
func (s *Sketch) AddFixedPoint(p Point2) PointID {
	id := s.AddPoint(p)
	s.Points[id].Fixed = true
	return id
}

// Point returns a point by id.
func (s *Sketch) Point(id PointID) (Point, bool) {
	if id < 0 || int(id) >= len(s.Points) {
		return Point{}, false
	}
	return s.Points[id], true
}

// Pos returns a point's position; out-of-range ids return the origin.
func (s *Sketch) Pos(id PointID) Point2 {
	if id < 0 || int(id) >= len(s.Points) {
		return Point2{}
	}
	return s.Points[id].Pos
}

// AddLine adds a line between two existing points.
func (s *Sketch) AddLine(start, end PointID) (EntityID, error) {
	if err := s.checkPoints(start, end); err != nil {
		return 0, err
	}
	s.Entities = append(s.Entities, Entity{Kind: EntityLine, Start: start, End: end})
	return EntityID(len(s.Entities) - 1), nil
}

// AddArc adds a circular arc from start to end about center.
func (s *Sketch) AddArc(start, end, center PointID) (EntityID, error) {
	if err := s.checkPoints(start, end, center); err != nil {
		return 0, err
	}
	s.Entities = append(s.Entities, Entity{Kind: EntityArc, Start: start, End: end, Center: center})
	return EntityID(len(s.Entities) - 1), nil
}

// AddCircle adds a full circle about center.
func (s *Sketch) AddCircle(center PointID, radius float64) (EntityID, error) {
	if err := s.checkPoints(center); err != nil {
		return 0, err
	}
	if radius < geom.Tolerance {
		return 0, fmt.Errorf("sketch: circle radius %g: %w", radius, ErrBadReference)
	}
	s.Entities = append(s.Entities, Entity{Kind: EntityCircle, Center: center, Radius: radius})
	return EntityID(len(s.Entities) - 1), nil
}

// AddPointEntity wraps a point as a standalone entity.
func (s *Sketch) AddPointEntity(p PointID) (EntityID, error) {
	if err := s.checkPoints(p); err != nil {
		return 0, err
	}
	s.Entities = append(s.Entities, Entity{Kind: EntityPoint, Start: p})
	return EntityID(len(s.Entities) - 1), nil
}

// Entity returns an entity by id.
func (s *Sketch) Entity(id EntityID) (Entity, bool) {
	if id < 0 || int(id) >= len(s.Entities) {
		return Entity{}, false
	}
	return s.Entities[id], true
}

func (s *Sketch) checkPoints(ids ...PointID) error {
	for _, id := range ids {
		if _, ok := s.Point(id); !ok {
			return fmt.Errorf("sketch: point %d: %w", id, ErrBadReference)
		}
	}
	return nil
}

// line returns the endpoints of a line entity.
func (s *Sketch) line(id EntityID) (Entity, error) {
	e, ok := s.Entity(id)
	if !ok || e.Kind != EntityLine {
		return Entity{}, fmt.Errorf("sketch: entity %d is not a line: %w", id, ErrBadReference)
	}
	return e, nil
}

// ArcRadius returns the radius of an arc, measured center to start.
func (s *Sketch) ArcRadius(id EntityID) (float64, error) {
	e, ok := s.Entity(id)
	if !ok || e.Kind != EntityArc {
		return 0, fmt.Errorf("sketch: entity %d is not an arc: %w", id, ErrBadReference)
	}
	return s.Pos(e.Center).Distance(s.Pos(e.Start)), nil
}

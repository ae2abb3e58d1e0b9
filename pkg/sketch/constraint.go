package sketch

import (
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/geom"
)

// Constraint is one relation among sketch points, expressed as
// residual equations the solver drives to zero. Jacobian reports the
// analytic partial derivatives of each residual with respect to the
// point coordinates it touches (axis 0 is x, axis 1 is y).
type Constraint interface {
	Kind() string
	Arity(s *Sketch) int
	Residuals(s *Sketch, out []float64)
	Jacobian(s *Sketch, add func(eq int, p PointID, axis int, d float64))
}

// AddConstraint validates and records a constraint. Radius and
// diameter on full circles are applied immediately: the radius is a
// parameter of the entity, not a solved coordinate.
func (s *Sketch) AddConstraint(c Constraint) error {
	if v, ok := c.(interface{ validate(*Sketch) error }); ok {
		if err := v.validate(s); err != nil {
			return err
		}
	}
	if r, ok := c.(interface{ applyDirect(*Sketch) }); ok {
		r.applyDirect(s)
	}
	s.Constraints = append(s.Constraints, c)
	return nil
}

// Coincident pins two points together.
type Coincident struct {
	A, B PointID
}

func (Coincident) Kind() string { return "coincident" }
func (Coincident) Arity(*Sketch) int { return 2 }

func (c Coincident) validate(s *Sketch) error { return s.checkPoints(c.A, c.B) }

func (c Coincident) Residuals(s *Sketch, out []float64) {
	a, b := s.Pos(c.A), s.Pos(c.B)
	out[0] = a.X - b.X
	out[1] = a.Y - b.Y
}

func (c Coincident) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	add(0, c.A, 0, 1)
	add(0, c.B, 0, -1)
	add(1, c.A, 1, 1)
	add(1, c.B, 1, -1)
}

// Horizontal levels a line.
type Horizontal struct {
	Line EntityID
}

func (Horizontal) Kind() string { return "horizontal" }
func (Horizontal) Arity(*Sketch) int { return 1 }

func (c Horizontal) validate(s *Sketch) error {
	_, err := s.line(c.Line)
	return err
}

func (c Horizontal) Residuals(s *Sketch, out []float64) {
	e, _ := s.Entity(c.Line)
	out[0] = s.Pos(e.End).Y - s.Pos(e.Start).Y
}

func (c Horizontal) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e, _ := s.Entity(c.Line)
	add(0, e.End, 1, 1)
	add(0, e.Start, 1, -1)
}

// Vertical plumbs a line.
type Vertical struct {
	Line EntityID
}

func (Vertical) Kind() string { return "vertical" }
func (Vertical) Arity(*Sketch) int { return 1 }

func (c Vertical) validate(s *Sketch) error {
	_, err := s.line(c.Line)
	return err
}

func (c Vertical) Residuals(s *Sketch, out []float64) {
	e, _ := s.Entity(c.Line)
	out[0] = s.Pos(e.End).X - s.Pos(e.Start).X
}

func (c Vertical) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e, _ := s.Entity(c.Line)
	add(0, e.End, 0, 1)
	add(0, e.Start, 0, -1)
}

// lineDirs fetches the direction vectors of two lines.
func lineDirs(s *Sketch, a, b EntityID) (e1, e2 Entity, u, v Point2) {
	e1, _ = s.Entity(a)
	e2, _ = s.Entity(b)
	u = s.Pos(e1.End).Sub(s.Pos(e1.Start))
	v = s.Pos(e2.End).Sub(s.Pos(e2.Start))
	return
}

// Parallel aligns two line directions.
type Parallel struct {
	A, B EntityID
}

func (Parallel) Kind() string { return "parallel" }
func (Parallel) Arity(*Sketch) int { return 1 }

func (c Parallel) validate(s *Sketch) error {
	if _, err := s.line(c.A); err != nil {
		return err
	}
	_, err := s.line(c.B)
	return err
}

func (c Parallel) Residuals(s *Sketch, out []float64) {
	_, _, u, v := lineDirs(s, c.A, c.B)
	out[0] = u.X*v.Y - u.Y*v.X
}

func (c Parallel) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e1, e2, u, v := lineDirs(s, c.A, c.B)
	// d(cross)/du = (v.Y, -v.X), d(cross)/dv = (-u.Y, u.X).
	add(0, e1.End, 0, v.Y)
	add(0, e1.End, 1, -v.X)
	add(0, e1.Start, 0, -v.Y)
	add(0, e1.Start, 1, v.X)
	add(0, e2.End, 0, -u.Y)
	add(0, e2.End, 1, u.X)
	add(0, e2.Start, 0, u.Y)
	add(0, e2.Start, 1, -u.X)
}

// Perpendicular makes two lines meet at a right angle.
type Perpendicular struct {
	A, B EntityID
}

func (Perpendicular) Kind() string { return "perpendicular" }
func (Perpendicular) Arity(*Sketch) int { return 1 }

func (c Perpendicular) validate(s *Sketch) error {
	if _, err := s.line(c.A); err != nil {
		return err
	}
	_, err := s.line(c.B)
	return err
}

func (c Perpendicular) Residuals(s *Sketch, out []float64) {
	_, _, u, v := lineDirs(s, c.A, c.B)
	out[0] = u.X*v.X + u.Y*v.Y
}

func (c Perpendicular) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e1, e2, u, v := lineDirs(s, c.A, c.B)
	add(0, e1.End, 0, v.X)
	add(0, e1.End, 1, v.Y)
	add(0, e1.Start, 0, -v.X)
	add(0, e1.Start, 1, -v.Y)
	add(0, e2.End, 0, u.X)
	add(0, e2.End, 1, u.Y)
	add(0, e2.Start, 0, -u.X)
	add(0, e2.Start, 1, -u.Y)
}

// Concentric pins the centers of two circles or arcs together.
type Concentric struct {
	A, B EntityID
}

func (Concentric) Kind() string { return "concentric" }
func (Concentric) Arity(*Sketch) int { return 2 }

func (c Concentric) validate(s *Sketch) error {
	for _, id := range []EntityID{c.A, c.B} {
		e, ok := s.Entity(id)
		if !ok || (e.Kind != EntityCircle && e.Kind != EntityArc) {
			return fmt.Errorf("sketch: entity %d is not a circle or arc: %w", id, ErrBadReference)
		}
	}
	return nil
}

func (c Concentric) Residuals(s *Sketch, out []float64) {
	ea, _ := s.Entity(c.A)
	eb, _ := s.Entity(c.B)
	ca, cb := s.Pos(ea.Center), s.Pos(eb.Center)
	out[0] = ca.X - cb.X
	out[1] = ca.Y - cb.Y
}

func (c Concentric) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	ea, _ := s.Entity(c.A)
	eb, _ := s.Entity(c.B)
	add(0, ea.Center, 0, 1)
	add(0, eb.Center, 0, -1)
	add(1, ea.Center, 1, 1)
	add(1, eb.Center, 1, -1)
}

// Tangent holds a line at radius distance from a circle's center.
type Tangent struct {
	Line, Circle EntityID
}

func (Tangent) Kind() string { return "tangent" }
func (Tangent) Arity(*Sketch) int { return 1 }

func (c Tangent) validate(s *Sketch) error {
	if _, err := s.line(c.Line); err != nil {
		return err
	}
	e, ok := s.Entity(c.Circle)
	if !ok || e.Kind != EntityCircle {
		return fmt.Errorf("sketch: entity %d is not a circle: %w", c.Circle, ErrBadReference)
	}
	return nil
}

// tangentParts returns the pieces of the signed line-center distance
// f = cross(d, w) / |d|.
func (c Tangent) tangentParts(s *Sketch) (line, circle Entity, d, w Point2, cr, length float64) {
	line, _ = s.Entity(c.Line)
	circle, _ = s.Entity(c.Circle)
	st, en := s.Pos(line.Start), s.Pos(line.End)
	ct := s.Pos(circle.Center)
	d = en.Sub(st)
	w = ct.Sub(st)
	cr = d.X*w.Y - d.Y*w.X
	length = math.Hypot(d.X, d.Y)
	return
}

func (c Tangent) Residuals(s *Sketch, out []float64) {
	circle, _ := s.Entity(c.Circle)
	_, _, _, _, cr, length := c.tangentParts(s)
	if length < geom.Tolerance {
		out[0] = -circle.Radius
		return
	}
	out[0] = math.Abs(cr)/length - circle.Radius
}

func (c Tangent) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	line, _, d, w, cr, length := c.tangentParts(s)
	if length < geom.Tolerance {
		return
	}
	sign := 1.0
	if cr < 0 {
		sign = -1
	}
	l2 := length * length
	// f = cr/length; df = (dcr*length - cr*dlength) / length^2.
	term := func(p PointID, axis int, dcr, dlen float64) {
		add(0, p, axis, sign*(dcr*length-cr*dlen)/l2)
	}
	term(line.End, 0, w.Y, d.X/length)
	term(line.End, 1, -w.X, d.Y/length)
	term(line.Start, 0, d.Y-w.Y, -d.X/length)
	term(line.Start, 1, w.X-d.X, -d.Y/length)
	circle, _ := s.Entity(c.Circle)
	term(circle.Center, 0, -d.Y, 0)
	term(circle.Center, 1, d.X, 0)
}

// Distance fixes the separation of two points.
type Distance struct {
	A, B  PointID
	Value float64
}

func (Distance) Kind() string { return "distance" }
func (Distance) Arity(*Sketch) int { return 1 }

func (c Distance) validate(s *Sketch) error { return s.checkPoints(c.A, c.B) }

func (c Distance) Residuals(s *Sketch, out []float64) {
	out[0] = s.Pos(c.A).Distance(s.Pos(c.B)) - c.Value
}

func (c Distance) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	a, b := s.Pos(c.A), s.Pos(c.B)
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length < geom.Tolerance {
		// Coincident points: any direction descends; pick x.
		add(0, c.B, 0, 1)
		add(0, c.A, 0, -1)
		return
	}
	ux, uy := d.X/length, d.Y/length
	add(0, c.B, 0, ux)
	add(0, c.B, 1, uy)
	add(0, c.A, 0, -ux)
	add(0, c.A, 1, -uy)
}

// HorizontalDistance fixes the x separation of two points.
type HorizontalDistance struct {
	A, B  PointID
	Value float64
}

func (HorizontalDistance) Kind() string { return "horizontal-distance" }
func (HorizontalDistance) Arity(*Sketch) int { return 1 }

func (c HorizontalDistance) validate(s *Sketch) error { return s.checkPoints(c.A, c.B) }

func (c HorizontalDistance) Residuals(s *Sketch, out []float64) {
	out[0] = math.Abs(s.Pos(c.B).X-s.Pos(c.A).X) - c.Value
}

func (c HorizontalDistance) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	sign := 1.0
	if s.Pos(c.B).X < s.Pos(c.A).X {
		sign = -1
	}
	add(0, c.B, 0, sign)
	add(0, c.A, 0, -sign)
}

// VerticalDistance fixes the y separation of two points.
type VerticalDistance struct {
	A, B  PointID
	Value float64
}

func (VerticalDistance) Kind() string { return "vertical-distance" }
func (VerticalDistance) Arity(*Sketch) int { return 1 }

func (c VerticalDistance) validate(s *Sketch) error { return s.checkPoints(c.A, c.B) }

func (c VerticalDistance) Residuals(s *Sketch, out []float64) {
	out[0] = math.Abs(s.Pos(c.B).Y-s.Pos(c.A).Y) - c.Value
}

func (c VerticalDistance) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	sign := 1.0
	if s.Pos(c.B).Y < s.Pos(c.A).Y {
		sign = -1
	}
	add(0, c.B, 1, sign)
	add(0, c.A, 1, -sign)
}

// Angle fixes the counter-clockwise angle from line A to line B, in
// radians.
type Angle struct {
	A, B  EntityID
	Value float64
}

func (Angle) Kind() string { return "angle" }
func (Angle) Arity(*Sketch) int { return 1 }

func (c Angle) validate(s *Sketch) error {
	if _, err := s.line(c.A); err != nil {
		return err
	}
	_, err := s.line(c.B)
	return err
}

func (c Angle) Residuals(s *Sketch, out []float64) {
	_, _, u, v := lineDirs(s, c.A, c.B)
	out[0] = math.Atan2(u.X*v.Y-u.Y*v.X, u.X*v.X+u.Y*v.Y) - c.Value
}

func (c Angle) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e1, e2, u, v := lineDirs(s, c.A, c.B)
	cr := u.X*v.Y - u.Y*v.X
	dot := u.X*v.X + u.Y*v.Y
	denom := cr*cr + dot*dot
	if denom < geom.Tolerance {
		return
	}
	// theta = atan2(cr, dot); dtheta = (dot*dcr - cr*ddot)/denom.
	term := func(p PointID, axis int, dcr, ddot, sgn float64) {
		add(0, p, axis, sgn*(dot*dcr-cr*ddot)/denom)
	}
	term(e1.End, 0, v.Y, v.X, 1)
	term(e1.End, 1, -v.X, v.Y, 1)
	term(e1.Start, 0, v.Y, v.X, -1)
	term(e1.Start, 1, -v.X, v.Y, -1)
	term(e2.End, 0, -u.Y, u.X, 1)
	term(e2.End, 1, u.X, u.Y, 1)
	term(e2.Start, 0, -u.Y, u.X, -1)
	term(e2.Start, 1, u.X, u.Y, -1)
}

// Radius fixes the radius of a circle or arc. On a full circle the
// radius is a plain parameter and is set directly; on an arc the
// solver moves the start point to the right distance from the center.
type Radius struct {
	Entity EntityID
	Value  float64
}

func (Radius) Kind() string { return "radius" }

func (c Radius) validate(s *Sketch) error {
	e, ok := s.Entity(c.Entity)
	if !ok || (e.Kind != EntityCircle && e.Kind != EntityArc) {
		return fmt.Errorf("sketch: entity %d is not a circle or arc: %w", c.Entity, ErrBadReference)
	}
	if c.Value < geom.Tolerance {
		return fmt.Errorf("sketch: radius %g: %w", c.Value, ErrBadReference)
	}
	return nil
}

func (c Radius) applyDirect(s *Sketch) {
	if e, ok := s.Entity(c.Entity); ok && e.Kind == EntityCircle {
		s.Entities[c.Entity].Radius = c.Value
	}
}

// Arity is zero on circles: their radius was set when the constraint
// was added, so the solver has nothing to do.
func (c Radius) Arity(s *Sketch) int {
	if e, ok := s.Entity(c.Entity); ok && e.Kind == EntityCircle {
		return 0
	}
	return 1
}

func (c Radius) Residuals(s *Sketch, out []float64) {
	e, _ := s.Entity(c.Entity)
	if e.Kind == EntityCircle {
		return
	}
	out[0] = s.Pos(e.Center).Distance(s.Pos(e.Start)) - c.Value
}

func (c Radius) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	e, _ := s.Entity(c.Entity)
	if e.Kind == EntityCircle {
		return
	}
	ct, st := s.Pos(e.Center), s.Pos(e.Start)
	d := st.Sub(ct)
	length := math.Hypot(d.X, d.Y)
	if length < geom.Tolerance {
		return
	}
	ux, uy := d.X/length, d.Y/length
	add(0, e.Start, 0, ux)
	add(0, e.Start, 1, uy)
	add(0, e.Center, 0, -ux)
	add(0, e.Center, 1, -uy)
}

// Diameter fixes the diameter of a circle or arc.
type Diameter struct {
	Entity EntityID
	Value  float64
}

func (Diameter) Kind() string { return "diameter" }
func (c Diameter) asRadius() Radius {
	return Radius{Entity: c.Entity, Value: c.Value / 2}
}
func (c Diameter) validate(s *Sketch) error { return c.asRadius().validate(s) }
func (c Diameter) applyDirect(s *Sketch)    { c.asRadius().applyDirect(s) }
func (c Diameter) Arity(s *Sketch) int      { return c.asRadius().Arity(s) }
func (c Diameter) Residuals(s *Sketch, out []float64) {
	c.asRadius().Residuals(s, out)
}
func (c Diameter) Jacobian(s *Sketch, add func(int, PointID, int, float64)) {
	c.asRadius().Jacobian(s, add)
}

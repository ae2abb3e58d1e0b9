package topo

import (
	"fmt"

	"github.com/chamfer/chamfer/pkg/geom"
)

// Solid owns the topology arenas. Build it with the Add methods; ids
// handed out are indices into the arenas and never move.
type Solid struct {
	Vertices []Vertex
	Edges    []Edge
	Faces    []Face
	Shells   []Shell

	bounds      geom.Bounds3
	boundsValid bool
}

// NewSolid returns an empty solid.
func NewSolid() *Solid {
	return &Solid{}
}

// AddVertex appends a vertex at p and returns its id.
func (s *Solid) AddVertex(p geom.Point3) VertexID {
	s.Vertices = append(s.Vertices, Vertex{Point: p})
	s.boundsValid = false
	return VertexID(len(s.Vertices) - 1)
}

// AddEdge appends an edge between two existing vertices.
func (s *Solid) AddEdge(start, end VertexID, curve Curve) EdgeID {
	s.Edges = append(s.Edges, Edge{Start: start, End: end, Curve: curve})
	return EdgeID(len(s.Edges) - 1)
}

// AddFace appends a face and returns its id.
func (s *Solid) AddFace(f Face) FaceID {
	s.Faces = append(s.Faces, f)
	return FaceID(len(s.Faces) - 1)
}

// AddShell appends a shell over existing faces.
func (s *Solid) AddShell(faces []FaceID) ShellID {
	s.Shells = append(s.Shells, Shell{Faces: faces})
	return ShellID(len(s.Shells) - 1)
}

// Vertex returns the vertex for id, or false if the id is out of range.
func (s *Solid) Vertex(id VertexID) (Vertex, bool) {
	if id < 0 || int(id) >= len(s.Vertices) {
		return Vertex{}, false
	}
	return s.Vertices[id], true
}

// Edge returns the edge for id, or false if the id is out of range.
func (s *Solid) Edge(id EdgeID) (Edge, bool) {
	if id < 0 || int(id) >= len(s.Edges) {
		return Edge{}, false
	}
	return s.Edges[id], true
}

// Face returns the face for id, or false if the id is out of range.
func (s *Solid) Face(id FaceID) (Face, bool) {
	if id < 0 || int(id) >= len(s.Faces) {
		return Face{}, false
	}
	return s.Faces[id], true
}

// Shell returns the shell for id, or false if the id is out of range.
func (s *Solid) Shell(id ShellID) (Shell, bool) {
	if id < 0 || int(id) >= len(s.Shells) {
		return Shell{}, false
	}
	return s.Shells[id], true
}

// Point returns the position of a vertex, or false for a bad id.
func (s *Solid) Point(id VertexID) (geom.Point3, bool) {
	v, ok := s.Vertex(id)
	return v.Point, ok
}

// Clone returns a deep copy that shares nothing with the receiver.
func (s *Solid) Clone() *Solid {
	out := &Solid{
		Vertices: append([]Vertex(nil), s.Vertices...),
		Edges:    append([]Edge(nil), s.Edges...),
		Faces:    make([]Face, len(s.Faces)),
		Shells:   make([]Shell, len(s.Shells)),
	}
	for i, f := range s.Faces {
		out.Faces[i] = Face{
			Surface: f.Surface,
			Outer:   cloneLoop(f.Outer),
			Inner:   make([]Loop, len(f.Inner)),
		}
		for j, l := range f.Inner {
			out.Faces[i].Inner[j] = cloneLoop(l)
		}
	}
	for i, sh := range s.Shells {
		out.Shells[i] = Shell{Faces: append([]FaceID(nil), sh.Faces...)}
	}
	return out
}

func cloneLoop(l Loop) Loop {
	return Loop{
		Edges:   append([]EdgeID(nil), l.Edges...),
		Forward: append([]bool(nil), l.Forward...),
	}
}

// ApplyTransform maps every vertex and face surface through t in place.
func (s *Solid) ApplyTransform(t geom.Transform3) {
	for i := range s.Vertices {
		s.Vertices[i].Point = t.ApplyPoint(s.Vertices[i].Point)
	}
	for i := range s.Edges {
		c := &s.Edges[i].Curve
		if c.Kind == CurveArc {
			c.Center = t.ApplyPoint(c.Center)
		}
	}
	for i := range s.Faces {
		sf := &s.Faces[i].Surface
		switch sf.Kind {
		case SurfacePlanar:
			sf.Plane.Origin = t.ApplyPoint(sf.Plane.Origin)
			sf.Plane.Normal = t.ApplyVector(sf.Plane.Normal).NormalizeOrZ()
		case SurfaceCylindrical, SurfaceConical:
			sf.Axis.Origin = t.ApplyPoint(sf.Axis.Origin)
			sf.Axis.Direction = t.ApplyVector(sf.Axis.Direction).NormalizeOrZ()
		case SurfaceSpherical:
			sf.Center = t.ApplyPoint(sf.Center)
		}
	}
	s.boundsValid = false
}

// Bounds returns the axis-aligned box of all vertices. The result is
// cached until the solid mutates.
func (s *Solid) Bounds() geom.Bounds3 {
	if !s.boundsValid {
		b := geom.EmptyBounds()
		for _, v := range s.Vertices {
			b = b.ExpandByPoint(v.Point)
		}
		s.bounds = b
		s.boundsValid = true
	}
	return s.bounds
}

// Merge appends other's entities to s, offsetting every id. Shells are
// kept separate; the result is a compound of both inputs.
func (s *Solid) Merge(other *Solid) {
	vOff := VertexID(len(s.Vertices))
	eOff := EdgeID(len(s.Edges))
	fOff := FaceID(len(s.Faces))

	s.Vertices = append(s.Vertices, other.Vertices...)
	for _, e := range other.Edges {
		s.Edges = append(s.Edges, Edge{Start: e.Start + vOff, End: e.End + vOff, Curve: e.Curve})
	}
	for _, f := range other.Faces {
		nf := Face{Surface: f.Surface, Outer: offsetLoop(f.Outer, eOff)}
		for _, l := range f.Inner {
			nf.Inner = append(nf.Inner, offsetLoop(l, eOff))
		}
		s.Faces = append(s.Faces, nf)
	}
	for _, sh := range other.Shells {
		faces := make([]FaceID, len(sh.Faces))
		for i, id := range sh.Faces {
			faces[i] = id + fOff
		}
		s.Shells = append(s.Shells, Shell{Faces: faces})
	}
	s.boundsValid = false
}

func offsetLoop(l Loop, off EdgeID) Loop {
	out := Loop{
		Edges:   make([]EdgeID, len(l.Edges)),
		Forward: append([]bool(nil), l.Forward...),
	}
	for i, id := range l.Edges {
		out.Edges[i] = id + off
	}
	return out
}

// Validate checks referential integrity: every id in range, loop
// shapes consistent, and loop edges chained tip to tail.
func (s *Solid) Validate() error {
	for i, e := range s.Edges {
		if _, ok := s.Vertex(e.Start); !ok {
			return fmt.Errorf("topo: edge %d start vertex %d out of range", i, e.Start)
		}
		if _, ok := s.Vertex(e.End); !ok {
			return fmt.Errorf("topo: edge %d end vertex %d out of range", i, e.End)
		}
	}
	for i, f := range s.Faces {
		if err := s.validateLoop(f.Outer); err != nil {
			return fmt.Errorf("topo: face %d outer loop: %w", i, err)
		}
		for j, l := range f.Inner {
			if err := s.validateLoop(l); err != nil {
				return fmt.Errorf("topo: face %d inner loop %d: %w", i, j, err)
			}
		}
	}
	for i, sh := range s.Shells {
		for _, id := range sh.Faces {
			if _, ok := s.Face(id); !ok {
				return fmt.Errorf("topo: shell %d face %d out of range", i, id)
			}
		}
	}
	return nil
}

func (s *Solid) validateLoop(l Loop) error {
	if len(l.Edges) == 0 {
		return fmt.Errorf("empty loop")
	}
	if len(l.Edges) != len(l.Forward) {
		return fmt.Errorf("loop has %d edges but %d directions", len(l.Edges), len(l.Forward))
	}
	for i, id := range l.Edges {
		e, ok := s.Edge(id)
		if !ok {
			return fmt.Errorf("edge %d out of range", id)
		}
		next, ok := s.Edge(l.Edges[(i+1)%len(l.Edges)])
		if !ok {
			return fmt.Errorf("edge %d out of range", l.Edges[(i+1)%len(l.Edges)])
		}
		exit := e.End
		if !l.Forward[i] {
			exit = e.Start
		}
		entry := next.Start
		if !l.Forward[(i+1)%len(l.Edges)] {
			entry = next.End
		}
		if exit != entry {
			return fmt.Errorf("loop breaks between edges %d and %d", id, l.Edges[(i+1)%len(l.Edges)])
		}
	}
	return nil
}

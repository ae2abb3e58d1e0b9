package mesh

import (
	"fmt"

	"github.com/chamfer/chamfer/pkg/geom"
	"github.com/chamfer/chamfer/pkg/topo"
)

// PickableMesh is a triangle mesh that remembers which topology face
// each triangle came from, plus the edge wireframe, so hits on the
// rendered mesh can be mapped back to the model.
type PickableMesh struct {
	TriangleMesh
	// TriangleFace is parallel to Triangles.
	TriangleFace []topo.FaceID
	EdgeSegments []geom.Segment
}

// Pickable triangulates a solid keeping the triangle-to-face mapping.
// Pickable meshes are always flat shaded.
func Pickable(s *topo.Solid) (*PickableMesh, error) {
	pm := &PickableMesh{}
	for fi := range s.Faces {
		f := &s.Faces[fi]
		outer := s.LoopPoints(f.Outer)
		normal, ok := topo.NewellNormal(outer)
		if !ok {
			continue
		}
		holes := make([][]geom.Point3, 0, len(f.Inner))
		for _, l := range f.Inner {
			holes = append(holes, s.LoopPoints(l))
		}
		tris, pts, err := triangulate(outer, holes, normal)
		if err != nil {
			return nil, fmt.Errorf("mesh: face %d: %w", fi, err)
		}
		before := len(pm.Triangles)
		pm.emit(tris, pts, normal, nil)
		for range pm.Triangles[before:] {
			pm.TriangleFace = append(pm.TriangleFace, topo.FaceID(fi))
		}
	}

	for _, e := range s.Edges {
		start, ok1 := s.Point(e.Start)
		end, ok2 := s.Point(e.End)
		if ok1 && ok2 {
			pm.EdgeSegments = append(pm.EdgeSegments, geom.Segment{Start: start, End: end})
		}
	}
	return pm, nil
}

// FaceOf returns the topology face behind a triangle index.
func (pm *PickableMesh) FaceOf(tri int) (topo.FaceID, bool) {
	if tri < 0 || tri >= len(pm.TriangleFace) {
		return 0, false
	}
	return pm.TriangleFace[tri], true
}

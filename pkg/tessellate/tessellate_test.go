package tessellate_test

import (
	"errors"
	"testing"

	"github.com/chamfer/chamfer/pkg/boolean"
	"github.com/chamfer/chamfer/pkg/csg"
	"github.com/chamfer/chamfer/pkg/kernel"
	"github.com/chamfer/chamfer/pkg/kernel/brep"
	"github.com/chamfer/chamfer/pkg/tessellate"
)

// newKernel returns a fresh B-Rep kernel for testing.
func newKernel() kernel.Kernel {
	return brep.New()
}

// makeBox creates a box primitive node with the given name and dimensions.
func makeBox(name string, x, y, z float64) *csg.Node {
	return &csg.Node{
		ID:   csg.NewNodeID(name),
		Kind: csg.NodePrimitive,
		Name: name,
		Data: csg.BoxData{Dimensions: csg.Vec3{X: x, Y: y, Z: z}},
	}
}

// makePlace creates a transform node with a translation.
func makePlace(name string, tx, ty, tz float64, child csg.NodeID) *csg.Node {
	t := csg.Vec3{X: tx, Y: ty, Z: tz}
	return &csg.Node{
		ID:       csg.NewNodeID(name),
		Kind:     csg.NodeTransform,
		Name:     name,
		Children: []csg.NodeID{child},
		Data:     csg.TransformData{Translation: &t},
	}
}

// makeBoolean creates a boolean node over two children.
func makeBoolean(name string, op csg.BoolOp, a, b csg.NodeID) *csg.Node {
	return &csg.Node{
		ID:       csg.NewNodeID(name),
		Kind:     csg.NodeBoolean,
		Name:     name,
		Children: []csg.NodeID{a, b},
		Data:     csg.BooleanData{Op: op},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...csg.NodeID) *csg.Node {
	return &csg.Node{
		ID:       csg.NewNodeID(name),
		Kind:     csg.NodeGroup,
		Name:     name,
		Children: children,
		Data:     csg.GroupData{Description: name},
	}
}

func TestSingleBox(t *testing.T) {
	k := newKernel()
	g := csg.New()

	box := makeBox("plate", 60, 30, 10)
	g.AddNode(box)
	g.AddRoot(box.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "plate" {
		t.Errorf("expected PartName %q, got %q", "plate", m.PartName)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("box mesh has %d triangles, want 12", m.TriangleCount())
	}
}

func TestTwoParts(t *testing.T) {
	k := newKernel()
	g := csg.New()

	side := makeBox("side-panel", 40, 30, 2)
	top := makeBox("top-panel", 60, 30, 2)
	g.AddNode(side)
	g.AddNode(top)
	g.AddRoot(side.ID)
	g.AddRoot(top.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Error("mesh should not be empty")
		}
		names[m.PartName] = true
	}

	if !names["side-panel"] {
		t.Error("missing mesh for side-panel")
	}
	if !names["top-panel"] {
		t.Error("missing mesh for top-panel")
	}
}

func TestPartWithTransform(t *testing.T) {
	k := newKernel()
	g := csg.New()

	box := makeBox("shelf", 100, 50, 10)
	g.AddNode(box)

	place := makePlace("place-shelf", 200, 100, 50, box.ID)
	g.AddNode(place)
	g.AddRoot(place.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	// The mesh keeps the transform node's name since that is the part root.
	if m.PartName != "place-shelf" {
		t.Errorf("expected PartName %q, got %q", "place-shelf", m.PartName)
	}

	// A 100x50x10 box placed at (200,100,50) spans (200,100,50)-(300,150,60),
	// so the vertex centroid lands on (250, 125, 55) exactly.
	var cx, cy, cz float64
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		cx += float64(m.Vertices[i*3])
		cy += float64(m.Vertices[i*3+1])
		cz += float64(m.Vertices[i*3+2])
	}
	cx /= float64(n)
	cy /= float64(n)
	cz /= float64(n)

	const tol = 1e-3
	if abs(cx-250) > tol {
		t.Errorf("centroid X = %.3f, expected 250", cx)
	}
	if abs(cy-125) > tol {
		t.Errorf("centroid Y = %.3f, expected 125", cy)
	}
	if abs(cz-55) > tol {
		t.Errorf("centroid Z = %.3f, expected 55", cz)
	}
}

func TestUnnamedTransformKeepsPartName(t *testing.T) {
	k := newKernel()
	g := csg.New()

	box := makeBox("plate", 60, 30, 10)
	g.AddNode(box)

	// Placement nodes created implicitly carry no name of their own; the
	// mesh should surface the wrapped part's name, not a hash id.
	tr := csg.Vec3{X: 10, Y: 0, Z: 0}
	place := &csg.Node{
		ID:       csg.NewNodeID("place/plate"),
		Kind:     csg.NodeTransform,
		Children: []csg.NodeID{box.ID},
		Data:     csg.TransformData{Translation: &tr},
	}
	g.AddNode(place)
	g.AddRoot(place.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].PartName != "plate" {
		t.Errorf("expected PartName %q, got %q", "plate", meshes[0].PartName)
	}
}

func TestAssembly(t *testing.T) {
	k := newKernel()
	g := csg.New()

	left := makeBox("left-side", 40, 30, 2)
	right := makeBox("right-side", 40, 30, 2)
	top := makeBox("top", 60, 30, 2)
	g.AddNode(left)
	g.AddNode(right)
	g.AddNode(top)

	placeLeft := makePlace("place-left", 0, 0, 0, left.ID)
	placeRight := makePlace("place-right", 58, 0, 0, right.ID)
	placeTop := makePlace("place-top", 30, 40, 0, top.ID)
	g.AddNode(placeLeft)
	g.AddNode(placeRight)
	g.AddNode(placeTop)

	assembly := makeGroup("bookshelf", placeLeft.ID, placeRight.ID, placeTop.ID)
	g.AddNode(assembly)
	g.AddRoot(assembly.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}

	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %q should not be empty", m.PartName)
		}
		names[m.PartName] = true
	}

	for _, want := range []string{"place-left", "place-right", "place-top"} {
		if !names[want] {
			t.Errorf("missing mesh for %q", want)
		}
	}
}

func TestEmptyGraph(t *testing.T) {
	k := newKernel()
	g := csg.New()

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestBooleanDifference(t *testing.T) {
	k := newKernel()
	g := csg.New()

	slab := makeBox("slab", 4, 4, 1)
	hole := makeBox("hole", 1, 1, 3)
	g.AddNode(slab)
	g.AddNode(hole)

	placeHole := makePlace("place-hole", 1.5, 1.5, -1, hole.ID)
	g.AddNode(placeHole)

	diff := makeBoolean("slab-with-hole", csg.BoolDifference, slab.ID, placeHole.ID)
	g.AddNode(diff)
	g.AddRoot(diff.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.PartName != "slab-with-hole" {
		t.Errorf("PartName = %q, want %q", m.PartName, "slab-with-hole")
	}
	// The through-hole adds interior walls, so the mesh out-counts a
	// plain box.
	if m.TriangleCount() <= 12 {
		t.Errorf("holed slab has %d triangles, want more than 12", m.TriangleCount())
	}
}

func TestDisjointIntersectionError(t *testing.T) {
	k := newKernel()
	g := csg.New()

	a := makeBox("a", 1, 1, 1)
	b := makeBox("b", 1, 1, 1)
	g.AddNode(a)
	g.AddNode(b)

	placeB := makePlace("place-b", 10, 0, 0, b.ID)
	g.AddNode(placeB)

	inter := makeBoolean("never", csg.BoolIntersection, a.ID, placeB.ID)
	g.AddNode(inter)
	g.AddRoot(inter.ID)

	_, err := tessellate.Tessellate(g, k)
	if !errors.Is(err, boolean.ErrNoIntersection) {
		t.Fatalf("error = %v, want ErrNoIntersection", err)
	}
}

func TestLinearPattern(t *testing.T) {
	k := newKernel()
	g := csg.New()

	peg := makeBox("peg", 1, 1, 2)
	g.AddNode(peg)

	pattern := &csg.Node{
		ID:       csg.NewNodeID("pattern/pegs"),
		Kind:     csg.NodePattern,
		Name:     "pegs",
		Children: []csg.NodeID{peg.ID},
		Data: csg.PatternData{
			Kind:      csg.PatternLinear,
			Count:     4,
			Direction: csg.Vec3{X: 1},
			Spacing:   3,
		},
	}
	g.AddNode(pattern)
	g.AddRoot(pattern.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	// Four disjoint boxes merge into one mesh of 4 x 12 triangles.
	if m.TriangleCount() != 48 {
		t.Errorf("pattern mesh has %d triangles, want 48", m.TriangleCount())
	}

	// The copies march along x: last box spans [9, 10].
	var maxX float64
	for i := 0; i < m.VertexCount(); i++ {
		if x := float64(m.Vertices[i*3]); x > maxX {
			maxX = x
		}
	}
	if abs(maxX-10) > 1e-6 {
		t.Errorf("pattern max x = %.3f, want 10", maxX)
	}
}

func TestCircularPatternNonAxisAligned(t *testing.T) {
	k := newKernel()
	g := csg.New()

	peg := makeBox("peg", 1, 1, 2)
	g.AddNode(peg)

	pattern := &csg.Node{
		ID:       csg.NewNodeID("pattern/ring"),
		Kind:     csg.NodePattern,
		Children: []csg.NodeID{peg.ID},
		Data: csg.PatternData{
			Kind:        csg.PatternCircular,
			Count:       4,
			AxisDir:     csg.Vec3{X: 1, Y: 1},
			StepDegrees: 90,
		},
	}
	g.AddNode(pattern)
	g.AddRoot(pattern.ID)

	_, err := tessellate.Tessellate(g, k)
	if !errors.Is(err, tessellate.ErrNonAxisAligned) {
		t.Fatalf("error = %v, want ErrNonAxisAligned", err)
	}
}

func TestCircularPattern(t *testing.T) {
	k := newKernel()
	g := csg.New()

	peg := makeBox("peg", 1, 1, 2)
	g.AddNode(peg)

	// Move the peg off-axis, then ring it around z.
	place := makePlace("place-peg", 5, 0, 0, peg.ID)
	g.AddNode(place)

	pattern := &csg.Node{
		ID:       csg.NewNodeID("pattern/ring"),
		Kind:     csg.NodePattern,
		Name:     "ring",
		Children: []csg.NodeID{place.ID},
		Data: csg.PatternData{
			Kind:        csg.PatternCircular,
			Count:       4,
			AxisDir:     csg.Vec3{Z: 1},
			StepDegrees: 90,
		},
	}
	g.AddNode(pattern)
	g.AddRoot(pattern.ID)

	meshes, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].TriangleCount() != 48 {
		t.Errorf("ring mesh has %d triangles, want 48", meshes[0].TriangleCount())
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

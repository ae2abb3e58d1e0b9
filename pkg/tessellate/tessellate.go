// Package tessellate walks a CSG design graph and produces triangle
// meshes using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chamfer/chamfer/pkg/csg"
	"github.com/chamfer/chamfer/pkg/kernel"
)

// ErrNonAxisAligned is returned when a circular pattern's axis is not
// parallel to one of the coordinate axes. The kernel interface only
// exposes Euler rotations, so arbitrary axes cannot be expressed.
var ErrNonAxisAligned = errors.New("tessellate: circular pattern axis must be axis-aligned")

// Tessellate walks the design graph and produces one triangle mesh per
// part using the provided geometry kernel. A part is a subtree hanging
// off a group node (or a root that is not a group). The tessellator is
// read-only and never mutates the graph.
func Tessellate(g *csg.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := walkNode(g, k, root)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		meshes = append(meshes, collected...)
	}

	return meshes, nil
}

// walkNode collects meshes for a node. Groups recurse transparently so
// each child becomes its own part; every other kind evaluates to a
// single solid and meshes as one part.
func walkNode(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) ([]*kernel.Mesh, error) {
	if n.Kind == csg.NodeGroup {
		var meshes []*kernel.Mesh
		for _, child := range g.Children(n) {
			collected, err := walkNode(g, k, child)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, collected...)
		}
		return meshes, nil
	}

	solid, err := evalSolid(g, k, n)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	mesh.PartName = partName(g, n)

	return []*kernel.Mesh{mesh}, nil
}

// partName picks the display name for a part mesh: the node's own name,
// else the name of the part it wraps (descending through unnamed
// single-child transforms and patterns), else the short id.
func partName(g *csg.DesignGraph, n *csg.Node) string {
	cur := n
	for cur != nil {
		if cur.Name != "" {
			return cur.Name
		}
		if (cur.Kind == csg.NodeTransform || cur.Kind == csg.NodePattern) && len(cur.Children) == 1 {
			cur = g.Get(cur.Children[0])
			continue
		}
		break
	}
	return n.ID.Short()
}

// evalSolid evaluates a node subtree bottom-up into a single kernel solid.
func evalSolid(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	switch n.Kind {
	case csg.NodePrimitive:
		return evalPrimitive(k, n)

	case csg.NodeTransform:
		return evalTransform(g, k, n)

	case csg.NodeBoolean:
		return evalBoolean(g, k, n)

	case csg.NodePattern:
		return evalPattern(g, k, n)

	case csg.NodeGroup:
		// A group nested below a boolean or pattern folds into the
		// union of its children.
		return evalGroupUnion(g, k, n)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// evalPrimitive creates geometry for a primitive node.
func evalPrimitive(k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case csg.BoxData:
		return k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z), nil
	case csg.CylinderData:
		return k.Cylinder(data.Height, data.Radius, data.Segments), nil
	case csg.SphereData:
		return k.Sphere(data.Radius, data.Segments), nil
	case csg.ConeData:
		return k.Cone(data.Height, data.Radius, data.Segments), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// evalTransform evaluates the single child, then applies rotation
// followed by translation.
func evalTransform(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	td, ok := n.Data.(csg.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, wants 1", n.ID.Short(), len(children))
	}

	solid, err := evalSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}

	if td.Rotation != nil && !td.Rotation.IsZero() {
		solid = k.Rotate(solid, td.Rotation.X, td.Rotation.Y, td.Rotation.Z)
	}
	if td.Translation != nil && !td.Translation.IsZero() {
		solid = k.Translate(solid, td.Translation.X, td.Translation.Y, td.Translation.Z)
	}

	return solid, nil
}

// evalBoolean evaluates both children and combines them.
func evalBoolean(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(csg.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 2 {
		return nil, fmt.Errorf("boolean node %s has %d children, wants 2", n.ID.Short(), len(children))
	}

	a, err := evalSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}
	b, err := evalSolid(g, k, children[1])
	if err != nil {
		return nil, err
	}

	var out kernel.Solid
	switch bd.Op {
	case csg.BoolUnion:
		out, err = k.Union(a, b)
	case csg.BoolDifference:
		out, err = k.Difference(a, b)
	case csg.BoolIntersection:
		out, err = k.Intersection(a, b)
	default:
		return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed at node %s: %w", bd.Op, n.ID.Short(), err)
	}
	return out, nil
}

// evalPattern repeats the single child and unions the copies.
func evalPattern(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	pd, ok := n.Data.(csg.PatternData)
	if !ok {
		return nil, fmt.Errorf("pattern node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("pattern node %s has %d children, wants 1", n.ID.Short(), len(children))
	}

	base, err := evalSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}

	count := pd.Count
	if count < 1 {
		count = 1
	}

	result := base
	for i := 1; i < count; i++ {
		var copySolid kernel.Solid
		switch pd.Kind {
		case csg.PatternLinear:
			step := pd.Direction.Scale(pd.Spacing * float64(i))
			copySolid = k.Translate(base, step.X, step.Y, step.Z)
		case csg.PatternCircular:
			copySolid, err = rotateAboutAxis(k, base, pd, pd.StepDegrees*float64(i))
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("pattern node %s has unknown kind %v", n.ID.Short(), pd.Kind)
		}

		result, err = k.Union(result, copySolid)
		if err != nil {
			return nil, fmt.Errorf("union of pattern copy %d failed at node %s: %w", i, n.ID.Short(), err)
		}
	}

	return result, nil
}

// rotateAboutAxis rotates a solid about the pattern's axis by moving the
// axis to the origin, applying the matching Euler rotation, and moving
// it back.
func rotateAboutAxis(k kernel.Kernel, s kernel.Solid, pd csg.PatternData, degrees float64) (kernel.Solid, error) {
	var euler csg.Vec3
	d := pd.AxisDir
	switch {
	case d.X != 0 && d.Y == 0 && d.Z == 0:
		euler = csg.Vec3{X: degrees * math.Copysign(1, d.X)}
	case d.Y != 0 && d.X == 0 && d.Z == 0:
		euler = csg.Vec3{Y: degrees * math.Copysign(1, d.Y)}
	case d.Z != 0 && d.X == 0 && d.Y == 0:
		euler = csg.Vec3{Z: degrees * math.Copysign(1, d.Z)}
	default:
		return nil, ErrNonAxisAligned
	}

	o := pd.AxisOrigin
	out := k.Translate(s, -o.X, -o.Y, -o.Z)
	out = k.Rotate(out, euler.X, euler.Y, euler.Z)
	out = k.Translate(out, o.X, o.Y, o.Z)
	return out, nil
}

// evalGroupUnion folds a nested group into the union of its children.
func evalGroupUnion(g *csg.DesignGraph, k kernel.Kernel, n *csg.Node) (kernel.Solid, error) {
	children := g.Children(n)
	if len(children) == 0 {
		return nil, fmt.Errorf("group node %s has no children", n.ID.Short())
	}

	result, err := evalSolid(g, k, children[0])
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		next, err := evalSolid(g, k, child)
		if err != nil {
			return nil, err
		}
		result, err = k.Union(result, next)
		if err != nil {
			return nil, fmt.Errorf("union of group child failed at node %s: %w", n.ID.Short(), err)
		}
	}
	return result, nil
}

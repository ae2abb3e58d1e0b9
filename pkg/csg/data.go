package csg

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox PrimitiveKind = iota
	PrimCylinder
	PrimSphere
	PrimCone
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimSphere:
		return "sphere"
	case PrimCone:
		return "cone"
	default:
		return "unknown"
	}
}

// BoxData represents an axis-aligned box with its minimum corner at the
// origin of its local frame.
type BoxData struct {
	Dimensions Vec3 `json:"dimensions"` // width x depth x height
}

func (BoxData) nodeData() {}

// CylinderData represents a cylinder with its base circle on the local
// z=0 plane.
type CylinderData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"` // 0 = kernel default
}

func (CylinderData) nodeData() {}

// SphereData represents a sphere centered at the local origin.
type SphereData struct {
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"` // 0 = kernel default
}

func (SphereData) nodeData() {}

// ConeData represents a cone with its base on the local z=0 plane and
// apex at z=height.
type ConeData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"` // 0 = kernel default
}

func (ConeData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a single
// child node. Created by the (place ...) Lisp form. Rotation is applied
// before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BoolOp enumerates boolean operations between two child solids.
type BoolOp int

const (
	BoolUnion BoolOp = iota
	BoolDifference
	BoolIntersection
)

func (op BoolOp) String() string {
	switch op {
	case BoolUnion:
		return "union"
	case BoolDifference:
		return "difference"
	case BoolIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's two children with a boolean operation.
// Children[0] is the left operand, Children[1] the right.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ---------------------------------------------------------------------------
// Pattern
// ---------------------------------------------------------------------------

// PatternKind distinguishes repetition styles.
type PatternKind int

const (
	PatternLinear PatternKind = iota
	PatternCircular
)

func (k PatternKind) String() string {
	switch k {
	case PatternLinear:
		return "linear"
	case PatternCircular:
		return "circular"
	default:
		return "unknown"
	}
}

// PatternData repeats the node's single child. Linear patterns step
// along Direction by Spacing; circular patterns rotate about the axis
// through AxisOrigin along AxisDir by StepDegrees per copy.
type PatternData struct {
	Kind        PatternKind `json:"kind"`
	Count       int         `json:"count"`
	Direction   Vec3        `json:"direction,omitempty"`    // linear
	Spacing     float64     `json:"spacing,omitempty"`      // linear
	AxisOrigin  Vec3        `json:"axis_origin,omitempty"`  // circular
	AxisDir     Vec3        `json:"axis_dir,omitempty"`     // circular
	StepDegrees float64     `json:"step_degrees,omitempty"` // circular
}

func (PatternData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

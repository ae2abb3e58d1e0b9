package csg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID is a content-addressed identifier for graph nodes, derived by
// hashing the node's construction path. Equal paths produce equal ids,
// so re-evaluating the same source yields a structurally identical graph.
type NodeID string

// NewNodeID derives a NodeID from a construction path such as
// "defpart/bracket" or "union/3".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// String returns the full hex form of the id.
func (id NodeID) String() string {
	return string(id)
}

// Short returns the first 6 bytes (12 hex characters) of the id for
// log and error messages.
func (id NodeID) Short() string {
	if len(id) < 12 {
		return string(id)
	}
	return string(id[:12])
}

// IsZero reports whether the id is the zero value.
func (id NodeID) IsZero() bool {
	return id == ""
}

// Vec3 is a 3D vector used for node parameters (dimensions,
// translations, axes). Kept separate from pkg/geom so the graph layer
// stays a plain data model.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns the vector scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

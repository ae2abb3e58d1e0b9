// Package csg defines the CSG design graph types for Chamfer.
// The design graph is an immutable DAG of primitives, transforms,
// booleans, patterns, and groups that represents a solid model.
package csg

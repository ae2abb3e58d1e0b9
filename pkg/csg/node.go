package csg

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // geometric primitive (box, cylinder, sphere, cone)
	NodeTransform                 // spatial transformation (place)
	NodeBoolean                   // boolean operation (union, difference, intersect)
	NodePattern                   // repetition (linear-pattern, circular-pattern)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeBoolean:
		return "boolean"
	case NodePattern:
		return "pattern"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// SourceRef records the DSL expression a node came from.
type SourceRef struct {
	Expr string `json:"expr,omitempty"` // the originating Lisp form
	Line int    `json:"line,omitempty"` // 1-based source line, 0 if unknown
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Source   SourceRef `json:"source"`
	Children []NodeID  `json:"children,omitempty"`
	Data     NodeData  `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

package main

// Point is a position in logical canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShapeKind selects the fixed geometry of a node. Sizes are looked up from
// the shape table, never stored per instance.
type ShapeKind string

const (
	ShapeRectangle     ShapeKind = "rectangle"
	ShapeDiamond       ShapeKind = "diamond"
	ShapeEllipse       ShapeKind = "ellipse"
	ShapeParallelogram ShapeKind = "parallelogram"
	ShapeHexagon       ShapeKind = "hexagon"
	ShapeStorage       ShapeKind = "storage"
)

// Anchor is one of the four attachment sides on a node's boundary.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
)

// Opposite returns the facing anchor.
func (a Anchor) Opposite() Anchor {
	switch a {
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	}
	panic("unknown anchor: " + string(a))
}

// Node is a placed shape. X,Y is the top-left of its bounding box in
// logical canvas space.
type Node struct {
	ID    string    `json:"id"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Label string    `json:"label"`
	Type  ShapeKind `json:"type"`
}

// Origin returns the node's top-left corner.
func (n Node) Origin() Point {
	return Point{X: n.X, Y: n.Y}
}

// Edge connects an anchor on one node to an anchor on another.
type Edge struct {
	ID           string `json:"id"`
	SourceID     string `json:"sourceId"`
	TargetID     string `json:"targetId"`
	SourceAnchor Anchor `json:"sourcePosition"`
	TargetAnchor Anchor `json:"targetPosition"`
}

// Document is the authoritative diagram model. Node order is z-order:
// later nodes draw on top.
type Document struct {
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
	NodeCounter int    `json:"nodeCounter"`
}

// NewDocument returns an empty document with the label counter seeded.
func NewDocument() Document {
	return Document{Nodes: []Node{}, Edges: []Edge{}, NodeCounter: 1}
}

// Clone deep-copies the document so history entries stay immutable.
func (d Document) Clone() Document {
	c := Document{
		Nodes:       make([]Node, len(d.Nodes)),
		Edges:       make([]Edge, len(d.Edges)),
		NodeCounter: d.NodeCounter,
	}
	copy(c.Nodes, d.Nodes)
	copy(c.Edges, d.Edges)
	return c
}

// FindNode returns the node with the given id, or nil.
func (d *Document) FindNode(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (d *Document) HasNode(id string) bool {
	return d.FindNode(id) != nil
}

package main

import "math"

type shapeSpec struct {
	Width, Height float64
	// Horizontal inset applied to left/right anchors so the point lands on
	// the visible outline instead of the bounding box. Only the ellipse
	// needs it; the fraction was tuned by eye.
	AnchorInsetX float64
	Anchors      []Anchor
}

var allAnchors = []Anchor{AnchorTop, AnchorBottom, AnchorLeft, AnchorRight}
var verticalAnchors = []Anchor{AnchorTop, AnchorBottom}

// Diamond and hexagon taper to points on the sides, so they only expose
// top/bottom attachment.
var shapeTable = map[ShapeKind]shapeSpec{
	ShapeRectangle:     {Width: 120, Height: 64, Anchors: allAnchors},
	ShapeDiamond:       {Width: 140, Height: 96, Anchors: verticalAnchors},
	ShapeEllipse:       {Width: 140, Height: 80, AnchorInsetX: 0.12, Anchors: allAnchors},
	ShapeParallelogram: {Width: 150, Height: 64, Anchors: allAnchors},
	ShapeHexagon:       {Width: 150, Height: 80, Anchors: verticalAnchors},
	ShapeStorage:       {Width: 120, Height: 96, Anchors: allAnchors},
}

// shapeOf looks up the spec for a kind. An unknown kind is a programming
// error, not user input, so it panics.
func shapeOf(kind ShapeKind) shapeSpec {
	spec, ok := shapeTable[kind]
	if !ok {
		panic("unknown shape kind: " + string(kind))
	}
	return spec
}

// boundingBox returns the fixed width and height for a shape kind.
func boundingBox(kind ShapeKind) (w, h float64) {
	spec := shapeOf(kind)
	return spec.Width, spec.Height
}

// validAnchors returns the anchors edges may attach to for a kind.
func validAnchors(kind ShapeKind) []Anchor {
	return shapeOf(kind).Anchors
}

// anchorPoint returns the logical position of an anchor on a node. When
// override is non-nil it is used as the node origin instead of the committed
// position, which lets edges follow a node mid-drag without touching the
// document.
func anchorPoint(n Node, a Anchor, override *Point) Point {
	spec := shapeOf(n.Type)
	origin := n.Origin()
	if override != nil {
		origin = *override
	}
	cx := origin.X + spec.Width/2
	cy := origin.Y + spec.Height/2
	inset := spec.AnchorInsetX * spec.Width

	switch a {
	case AnchorTop:
		return Point{X: cx, Y: origin.Y}
	case AnchorBottom:
		return Point{X: cx, Y: origin.Y + spec.Height}
	case AnchorLeft:
		return Point{X: origin.X + inset, Y: cy}
	case AnchorRight:
		return Point{X: origin.X + spec.Width - inset, Y: cy}
	}
	panic("unknown anchor: " + string(a))
}

// hitTest returns the id of the first node in z-order (insertion order)
// whose bounding box, padded outward by hitTestPadding, contains p. Earlier
// nodes win overlaps; that keeps the result stable while dragging stacks
// around. excludeID is skipped entirely.
func hitTest(p Point, nodes []Node, excludeID string) (string, bool) {
	for _, n := range nodes {
		if n.ID == excludeID {
			continue
		}
		w, h := boundingBox(n.Type)
		if p.X >= n.X-hitTestPadding && p.X <= n.X+w+hitTestPadding &&
			p.Y >= n.Y-hitTestPadding && p.Y <= n.Y+h+hitTestPadding {
			return n.ID, true
		}
	}
	return "", false
}

// closestAnchor picks the valid anchor on n nearest to p. Ties go to the
// earlier entry in the shape's anchor list, which is ordered
// top, bottom, left, right.
func closestAnchor(p Point, n Node) Anchor {
	anchors := validAnchors(n.Type)
	best := anchors[0]
	bestDist := math.Inf(1)
	for _, a := range anchors {
		ap := anchorPoint(n, a, nil)
		d := math.Hypot(ap.X-p.X, ap.Y-p.Y)
		if d < bestDist {
			bestDist = d
			best = a
		}
	}
	return best
}

// anchorAt finds a node anchor within anchorHitRadius of p, checking nodes
// in z-order. Used to decide whether a pointer-down starts an edge draw.
func anchorAt(p Point, nodes []Node) (string, Anchor, bool) {
	for _, n := range nodes {
		for _, a := range validAnchors(n.Type) {
			ap := anchorPoint(n, a, nil)
			if math.Hypot(ap.X-p.X, ap.Y-p.Y) <= anchorHitRadius {
				return n.ID, a, true
			}
		}
	}
	return "", "", false
}

// contentBounds returns the box enclosing every node's bounding box.
// ok is false when there are no nodes.
func contentBounds(nodes []Node) (minX, minY, maxX, maxY float64, ok bool) {
	if len(nodes) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		w, h := boundingBox(n.Type)
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X+w)
		maxY = math.Max(maxY, n.Y+h)
	}
	return minX, minY, maxX, maxY, true
}

package main

import "math"

// exitDirection is the unit vector an edge leaves a node along for a given
// anchor. Curves depart perpendicular to the side they attach to, which
// reads better than shortest-path routing even when the other endpoint is
// behind the node.
func exitDirection(a Anchor) (dx, dy float64) {
	switch a {
	case AnchorTop:
		return 0, -1
	case AnchorBottom:
		return 0, 1
	case AnchorLeft:
		return -1, 0
	case AnchorRight:
		return 1, 0
	}
	panic("unknown anchor: " + string(a))
}

// controlPoints derives the two cubic Bézier control points for an edge.
// Each control point is pushed out from its endpoint along that endpoint's
// exit direction, by half the endpoint distance capped at curveControlCap.
func controlPoints(start, end Point, sourceAnchor, targetAnchor Anchor) (c1, c2 Point) {
	dist := math.Hypot(end.X-start.X, end.Y-start.Y)
	offset := math.Min(dist*curveControlRatio, curveControlCap)

	sx, sy := exitDirection(sourceAnchor)
	tx, ty := exitDirection(targetAnchor)
	c1 = Point{X: start.X + sx*offset, Y: start.Y + sy*offset}
	c2 = Point{X: end.X + tx*offset, Y: end.Y + ty*offset}
	return c1, c2
}

// route samples the edge curve into curveSegments straight segments. The
// first point is exactly start and the last exactly end, so endpoints stay
// glued to their anchors regardless of float error in between.
func route(start, end Point, sourceAnchor, targetAnchor Anchor) []Point {
	c1, c2 := controlPoints(start, end, sourceAnchor, targetAnchor)

	points := make([]Point, 0, curveSegments+1)
	points = append(points, start)
	for i := 1; i < curveSegments; i++ {
		t := float64(i) / float64(curveSegments)
		points = append(points, bezierAt(start, c1, c2, end, t))
	}
	points = append(points, end)
	return points
}

// bezierAt evaluates the cubic Bézier defined by p0..p3 at parameter t.
func bezierAt(p0, c1, c2, p1 Point, t float64) Point {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*p0.X + b1*c1.X + b2*c2.X + b3*p1.X,
		Y: b0*p0.Y + b1*c1.Y + b2*c2.Y + b3*p1.Y,
	}
}

// routeEdge routes a committed edge, resolving anchor positions from the
// document with optional live drag overrides. ok is false when either
// endpoint node is missing; callers skip such edges rather than erroring.
func routeEdge(doc *Document, e Edge, overrides map[string]Point) ([]Point, bool) {
	src := doc.FindNode(e.SourceID)
	dst := doc.FindNode(e.TargetID)
	if src == nil || dst == nil {
		return nil, false
	}
	start := anchorPoint(*src, e.SourceAnchor, overrideFor(overrides, e.SourceID))
	end := anchorPoint(*dst, e.TargetAnchor, overrideFor(overrides, e.TargetID))
	return route(start, end, e.SourceAnchor, e.TargetAnchor), true
}

func overrideFor(overrides map[string]Point, id string) *Point {
	if overrides == nil {
		return nil
	}
	if p, ok := overrides[id]; ok {
		return &p
	}
	return nil
}

package main

import (
	"math"
	"time"
)

// GestureIntents is what the router tells the rest of the app. The model
// implements it by forwarding to the store and viewport.
type GestureIntents interface {
	PanBy(dxScreen, dyScreen float64)
	CommitMove(nodeID string, x, y float64)
	Connect(fromID string, fromAnchor Anchor, toID string, toAnchor Anchor)
	Extend(fromID string, anchor Anchor)
	TapNode(nodeID string)
	TapCanvas()
}

// GestureContext is the per-frame view of the world the router classifies
// against: a read-only node snapshot, the current transform, and fresh
// intent bindings. The router is one long-lived instance reconfigured via
// Update rather than recreated, so handlers never see stale state.
type GestureContext struct {
	Nodes    []Node
	Viewport *Viewport
	Intents  GestureIntents
}

type gestureState int

const (
	gestureIdle gestureState = iota
	gesturePanning
	gestureDraggingNode
	gestureDrawingEdge
)

// RubberBand is the live edge-draw preview, in logical space.
type RubberBand struct {
	From Point
	To   Point
}

// Overlay is the uncommitted visual state a render pass needs: the in-flight
// position of a dragged node and the edge-draw preview line. Neither exists
// in the document until the gesture commits.
type Overlay struct {
	DragNodeID string
	DragPos    Point
	Band       *RubberBand
}

// GestureRouter classifies pointer sequences into pan / drag-node /
// draw-edge / tap / double-activate. Exactly one gesture is active at a
// time; any abnormal end lands back in idle with the overlay cleared.
type GestureRouter struct {
	ctx   GestureContext
	state gestureState

	lastScreen Point
	panMoved   bool

	// Node drag.
	dragNodeID  string
	dragStart   Point // node origin at press, logical
	dragScreen0 Point // pointer at press, screen
	dragPos     Point
	dragMoved   bool

	// Edge draw.
	fromNodeID string
	fromAnchor Anchor
	bandFrom   Point
	bandTo     Point

	// Double-activate bookkeeping. A second press on the same top/bottom
	// anchor inside the window becomes an extend instead of a new edge draw.
	lastAnchorID   string
	lastAnchorSide Anchor
	lastAnchorAt   time.Time

	now func() time.Time
}

// NewGestureRouter returns an idle router. The clock is injectable so the
// double-activate window is testable without sleeping.
func NewGestureRouter() *GestureRouter {
	return &GestureRouter{now: time.Now}
}

// Update reconfigures the router with a fresh context. Called before every
// pointer event is dispatched.
func (g *GestureRouter) Update(ctx GestureContext) {
	g.ctx = ctx
}

// Overlay exposes the live drag/rubber-band state for rendering.
func (g *GestureRouter) Overlay() Overlay {
	var o Overlay
	if g.state == gestureDraggingNode && g.dragMoved {
		o.DragNodeID = g.dragNodeID
		o.DragPos = g.dragPos
	}
	if g.state == gestureDrawingEdge {
		o.Band = &RubberBand{From: g.bandFrom, To: g.bandTo}
	}
	return o
}

// PointerDown starts a gesture. Anchor regions win over node bodies, node
// bodies over empty canvas.
func (g *GestureRouter) PointerDown(sx, sy float64) {
	if g.state != gestureIdle {
		// A second press mid-gesture means the sequence went sideways.
		g.Cancel()
	}
	screen := Point{X: sx, Y: sy}
	logical := g.ctx.Viewport.ToLogical(screen)
	g.lastScreen = screen

	if nodeID, anchor, ok := anchorAt(logical, g.ctx.Nodes); ok {
		if g.isDoubleActivate(nodeID, anchor) {
			g.lastAnchorID = ""
			g.ctx.Intents.Extend(nodeID, anchor)
			return
		}
		g.rememberAnchorPress(nodeID, anchor)
		g.state = gestureDrawingEdge
		g.fromNodeID = nodeID
		g.fromAnchor = anchor
		if n := findNode(g.ctx.Nodes, nodeID); n != nil {
			g.bandFrom = anchorPoint(*n, anchor, nil)
		} else {
			g.bandFrom = logical
		}
		g.bandTo = logical
		return
	}

	if nodeID, ok := hitTest(logical, g.ctx.Nodes, ""); ok {
		n := findNode(g.ctx.Nodes, nodeID)
		g.state = gestureDraggingNode
		g.dragNodeID = nodeID
		g.dragStart = n.Origin()
		g.dragScreen0 = screen
		g.dragPos = g.dragStart
		g.dragMoved = false
		return
	}

	g.state = gesturePanning
}

// PointerMove advances the active gesture.
func (g *GestureRouter) PointerMove(sx, sy float64) {
	screen := Point{X: sx, Y: sy}
	dx := screen.X - g.lastScreen.X
	dy := screen.Y - g.lastScreen.Y
	g.lastScreen = screen

	switch g.state {
	case gesturePanning:
		if dx != 0 || dy != 0 {
			g.panMoved = true
			g.ctx.Intents.PanBy(dx, dy)
		}

	case gestureDraggingNode:
		scale := g.ctx.Viewport.Scale
		lx := (screen.X - g.dragScreen0.X) / scale
		ly := (screen.Y - g.dragScreen0.Y) / scale
		if !g.dragMoved && math.Hypot(lx, ly) <= dragThreshold {
			return
		}
		g.dragMoved = true
		g.dragPos = Point{X: g.dragStart.X + lx, Y: g.dragStart.Y + ly}

	case gestureDrawingEdge:
		g.bandTo = g.ctx.Viewport.ToLogical(screen)
	}
}

// PointerUp finishes the active gesture and always returns to idle.
func (g *GestureRouter) PointerUp(sx, sy float64) {
	screen := Point{X: sx, Y: sy}

	switch g.state {
	case gesturePanning:
		// The final offset is already applied; nothing to commit and no
		// history entry, viewport state is not undoable.
		if !g.panMoved {
			g.ctx.Intents.TapCanvas()
		}

	case gestureDraggingNode:
		if g.dragMoved {
			g.ctx.Intents.CommitMove(g.dragNodeID, g.dragPos.X, g.dragPos.Y)
		} else {
			g.ctx.Intents.TapNode(g.dragNodeID)
		}

	case gestureDrawingEdge:
		drop := g.ctx.Viewport.ToLogical(screen)
		if targetID, ok := hitTest(drop, g.ctx.Nodes, g.fromNodeID); ok {
			if n := findNode(g.ctx.Nodes, targetID); n != nil {
				g.ctx.Intents.Connect(g.fromNodeID, g.fromAnchor, targetID, closestAnchor(drop, *n))
			}
		}
		// Dropping on empty canvas is a defined cancel, not an error.
	}

	g.reset()
}

// Cancel aborts whatever is in progress and clears the overlay. Safe to call
// in any state.
func (g *GestureRouter) Cancel() {
	g.reset()
}

func (g *GestureRouter) reset() {
	g.state = gestureIdle
	g.panMoved = false
	g.dragNodeID = ""
	g.dragMoved = false
	g.fromNodeID = ""
}

// isDoubleActivate reports whether this press is the second on the same
// anchor inside the window. Only top and bottom anchors extend; side
// anchors always start an edge draw.
func (g *GestureRouter) isDoubleActivate(nodeID string, anchor Anchor) bool {
	if anchor != AnchorTop && anchor != AnchorBottom {
		return false
	}
	return nodeID == g.lastAnchorID &&
		anchor == g.lastAnchorSide &&
		g.now().Sub(g.lastAnchorAt) <= doubleActivateWin*time.Millisecond
}

func (g *GestureRouter) rememberAnchorPress(nodeID string, anchor Anchor) {
	g.lastAnchorID = nodeID
	g.lastAnchorSide = anchor
	g.lastAnchorAt = g.now()
}

func findNode(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

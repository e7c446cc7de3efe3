package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedIntents captures everything the router emits.
type recordedIntents struct {
	pans      []Point
	moves     []struct {
		id   string
		x, y float64
	}
	connects []struct {
		fromID, toID           string
		fromAnchor, toAnchor   Anchor
	}
	extends []struct {
		fromID string
		anchor Anchor
	}
	nodeTaps   []string
	canvasTaps int
}

func (r *recordedIntents) PanBy(dx, dy float64) {
	r.pans = append(r.pans, Point{X: dx, Y: dy})
}

func (r *recordedIntents) CommitMove(nodeID string, x, y float64) {
	r.moves = append(r.moves, struct {
		id   string
		x, y float64
	}{nodeID, x, y})
}

func (r *recordedIntents) Connect(fromID string, fromAnchor Anchor, toID string, toAnchor Anchor) {
	r.connects = append(r.connects, struct {
		fromID, toID         string
		fromAnchor, toAnchor Anchor
	}{fromID, toID, fromAnchor, toAnchor})
}

func (r *recordedIntents) Extend(fromID string, anchor Anchor) {
	r.extends = append(r.extends, struct {
		fromID string
		anchor Anchor
	}{fromID, anchor})
}

func (r *recordedIntents) TapNode(nodeID string) { r.nodeTaps = append(r.nodeTaps, nodeID) }
func (r *recordedIntents) TapCanvas()            { r.canvasTaps++ }

type gestureFixture struct {
	router  *GestureRouter
	intents *recordedIntents
	vp      *Viewport
	nodes   []Node
	clock   time.Time
}

func newGestureFixture(nodes []Node) *gestureFixture {
	f := &gestureFixture{
		router:  NewGestureRouter(),
		intents: &recordedIntents{},
		vp:      &Viewport{Scale: 1, Width: 800, Height: 600},
		nodes:   nodes,
		clock:   time.Unix(1000, 0),
	}
	f.router.now = func() time.Time { return f.clock }
	f.refresh()
	return f
}

func (f *gestureFixture) refresh() {
	f.router.Update(GestureContext{Nodes: f.nodes, Viewport: f.vp, Intents: f.intents})
}

func (f *gestureFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func bodyPoint(n Node) Point {
	w, h := boundingBox(n.Type)
	return Point{X: n.X + w/2, Y: n.Y + h/2 + 10}
}

func TestPanGestureOnEmptyCanvas(t *testing.T) {
	f := newGestureFixture(nil)

	f.router.PointerDown(400, 300)
	f.router.PointerMove(410, 305)
	f.router.PointerMove(420, 290)
	f.router.PointerUp(420, 290)

	require.Len(t, f.intents.pans, 2)
	assert.Equal(t, Point{X: 10, Y: 5}, f.intents.pans[0])
	assert.Equal(t, Point{X: 10, Y: -15}, f.intents.pans[1])
	// A moved pan is not a tap.
	assert.Zero(t, f.intents.canvasTaps)
	assert.Empty(t, f.intents.moves)
}

func TestTapOnEmptyCanvasDeselects(t *testing.T) {
	f := newGestureFixture(nil)
	f.router.PointerDown(100, 100)
	f.router.PointerUp(100, 100)
	assert.Equal(t, 1, f.intents.canvasTaps)
}

func TestTapOnNodeSelectsWithoutMove(t *testing.T) {
	n := Node{ID: "a", X: 100, Y: 100, Type: ShapeRectangle}
	f := newGestureFixture([]Node{n})
	p := bodyPoint(n)

	f.router.PointerDown(p.X, p.Y)
	// Wiggle below the threshold.
	f.router.PointerMove(p.X+2, p.Y+1)
	f.router.PointerUp(p.X+2, p.Y+1)

	assert.Equal(t, []string{"a"}, f.intents.nodeTaps)
	assert.Empty(t, f.intents.moves)
}

func TestDragNodeCommitsExactlyOnce(t *testing.T) {
	n := Node{ID: "a", X: 10, Y: 10, Type: ShapeRectangle}
	f := newGestureFixture([]Node{n})
	p := bodyPoint(n)

	f.router.PointerDown(p.X, p.Y)
	// A hundred intermediate move events must not produce a hundred
	// commits.
	for i := 1; i <= 100; i++ {
		f.router.PointerMove(p.X+float64(i)*0.4, p.Y+float64(i)*0.2)
	}
	f.router.PointerUp(p.X+40, p.Y+20)

	require.Len(t, f.intents.moves, 1)
	assert.Equal(t, "a", f.intents.moves[0].id)
	assert.Equal(t, 50.0, f.intents.moves[0].x)
	assert.Equal(t, 30.0, f.intents.moves[0].y)
}

func TestDragNodeCompensatesZoom(t *testing.T) {
	n := Node{ID: "a", X: 100, Y: 100, Type: ShapeRectangle}
	f := newGestureFixture([]Node{n})
	f.vp.Scale = 2.0
	f.refresh()

	p := f.vp.ToScreen(bodyPoint(n))
	f.router.PointerDown(p.X, p.Y)
	f.router.PointerMove(p.X+40, p.Y+20)
	f.router.PointerUp(p.X+40, p.Y+20)

	// 40 screen px at scale 2 is 20 logical units.
	require.Len(t, f.intents.moves, 1)
	assert.Equal(t, 120.0, f.intents.moves[0].x)
	assert.Equal(t, 110.0, f.intents.moves[0].y)
}

func TestDragOverlayShowsLivePosition(t *testing.T) {
	n := Node{ID: "a", X: 10, Y: 10, Type: ShapeRectangle}
	f := newGestureFixture([]Node{n})
	p := bodyPoint(n)

	f.router.PointerDown(p.X, p.Y)
	assert.Empty(t, f.router.Overlay().DragNodeID, "no overlay before threshold")

	f.router.PointerMove(p.X+30, p.Y+15)
	o := f.router.Overlay()
	assert.Equal(t, "a", o.DragNodeID)
	assert.Equal(t, Point{X: 40, Y: 25}, o.DragPos)

	f.router.PointerUp(p.X+30, p.Y+15)
	assert.Empty(t, f.router.Overlay().DragNodeID, "overlay cleared after release")
}

func TestDrawEdgeConnectsToDropTarget(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	b := Node{ID: "b", X: 0, Y: 400, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a, b})

	start := anchorPoint(a, AnchorBottom, nil)
	drop := bodyPoint(b)

	f.router.PointerDown(start.X, start.Y)
	f.router.PointerMove(start.X, start.Y+200)
	f.router.PointerUp(drop.X, drop.Y)

	require.Len(t, f.intents.connects, 1)
	c := f.intents.connects[0]
	assert.Equal(t, "a", c.fromID)
	assert.Equal(t, "b", c.toID)
	assert.Equal(t, AnchorBottom, c.fromAnchor)
	assert.Equal(t, closestAnchor(drop, b), c.toAnchor)
}

func TestDrawEdgeOverEmptySpaceCancels(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})

	start := anchorPoint(a, AnchorBottom, nil)
	f.router.PointerDown(start.X, start.Y)
	f.router.PointerMove(600, 500)
	f.router.PointerUp(600, 500)

	assert.Empty(t, f.intents.connects)
	assert.Nil(t, f.router.Overlay().Band)
}

func TestDrawEdgeNeverConnectsToSelf(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})

	start := anchorPoint(a, AnchorBottom, nil)
	// Drop right back on the source node's body.
	f.router.PointerDown(start.X, start.Y)
	f.router.PointerUp(start.X, start.Y-20)

	assert.Empty(t, f.intents.connects)
}

func TestRubberBandTracksPointer(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})

	start := anchorPoint(a, AnchorBottom, nil)
	f.router.PointerDown(start.X, start.Y)
	f.router.PointerMove(start.X+50, start.Y+80)

	band := f.router.Overlay().Band
	require.NotNil(t, band)
	assert.Equal(t, start, band.From)
	assert.Equal(t, Point{X: start.X + 50, Y: start.Y + 80}, band.To)
}

func TestRubberBandCompensatesZoom(t *testing.T) {
	a := Node{ID: "a", X: 100, Y: 100, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})
	f.vp.Scale = 2.0
	f.refresh()

	logical := anchorPoint(a, AnchorBottom, nil)
	screen := f.vp.ToScreen(logical)
	f.router.PointerDown(screen.X, screen.Y)
	f.router.PointerMove(screen.X, screen.Y+100)

	band := f.router.Overlay().Band
	require.NotNil(t, band)
	assert.InDelta(t, logical.Y+50, band.To.Y, 1e-9)
}

func TestDoubleActivateOnVerticalAnchor(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})
	p := anchorPoint(a, AnchorBottom, nil)

	f.router.PointerDown(p.X, p.Y)
	f.router.PointerUp(p.X, p.Y)
	f.advance(200 * time.Millisecond)
	f.router.PointerDown(p.X, p.Y)

	require.Len(t, f.intents.extends, 1)
	assert.Equal(t, "a", f.intents.extends[0].fromID)
	assert.Equal(t, AnchorBottom, f.intents.extends[0].anchor)
	// The second press is consumed; no edge draw is in progress.
	assert.Nil(t, f.router.Overlay().Band)
}

func TestDoubleActivateWindowExpires(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})
	p := anchorPoint(a, AnchorBottom, nil)

	f.router.PointerDown(p.X, p.Y)
	f.router.PointerUp(p.X, p.Y)
	f.advance(doubleActivateWin*time.Millisecond + time.Millisecond)
	f.router.PointerDown(p.X, p.Y)

	assert.Empty(t, f.intents.extends)
	assert.NotNil(t, f.router.Overlay().Band, "late second press starts an edge draw")
}

func TestDoubleActivateIgnoresSideAnchors(t *testing.T) {
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})
	p := anchorPoint(a, AnchorRight, nil)

	f.router.PointerDown(p.X, p.Y)
	f.router.PointerUp(p.X, p.Y)
	f.advance(100 * time.Millisecond)
	f.router.PointerDown(p.X, p.Y)

	assert.Empty(t, f.intents.extends)
	assert.NotNil(t, f.router.Overlay().Band)
}

func TestCancelAlwaysReturnsToIdle(t *testing.T) {
	n := Node{ID: "a", X: 10, Y: 10, Type: ShapeRectangle}
	f := newGestureFixture([]Node{n})
	p := bodyPoint(n)

	f.router.PointerDown(p.X, p.Y)
	f.router.PointerMove(p.X+50, p.Y+50)
	f.router.Cancel()

	o := f.router.Overlay()
	assert.Empty(t, o.DragNodeID)
	assert.Nil(t, o.Band)
	assert.Empty(t, f.intents.moves, "cancelled drag commits nothing")

	// The router is usable again immediately.
	f.router.PointerDown(400, 500)
	f.router.PointerMove(410, 500)
	assert.NotEmpty(t, f.intents.pans)
}

func TestAnchorPressBeatsBodyHit(t *testing.T) {
	// The bottom anchor sits inside the padded body region; pressing it
	// must start an edge draw, not a node drag.
	a := Node{ID: "a", X: 0, Y: 0, Type: ShapeRectangle}
	f := newGestureFixture([]Node{a})
	p := anchorPoint(a, AnchorBottom, nil)

	f.router.PointerDown(p.X, p.Y)
	f.router.PointerMove(p.X, p.Y+40)

	o := f.router.Overlay()
	require.NotNil(t, o.Band)
	assert.Empty(t, o.DragNodeID)
}

package main

import (
	"math"
	"strings"
)

// cellGrid is the terminal raster the diagram is projected onto.
type cellGrid struct {
	w, h  int
	cells [][]rune
}

func newCellGrid(w, h int) *cellGrid {
	cells := make([][]rune, h)
	for y := range cells {
		row := make([]rune, w)
		for x := range row {
			row[x] = ' '
		}
		cells[y] = row
	}
	return &cellGrid{w: w, h: h, cells: cells}
}

func (g *cellGrid) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = r
}

func (g *cellGrid) lines() []string {
	out := make([]string, g.h)
	for y, row := range g.cells {
		out[y] = string(row)
	}
	return out
}

// cellOf quantizes a screen-pixel point to a terminal cell.
func cellOf(p Point) (int, int) {
	return int(math.Round(p.X / cellWidth)), int(math.Round(p.Y / cellHeight))
}

// renderCanvas draws the committed document through the viewport, with the
// gesture overlay applied on top: dragged nodes render at their live
// position and the rubber band shows the in-progress edge.
func renderCanvas(doc *Document, vp *Viewport, overlay Overlay, selected string, editingID, editText string, w, h int) []string {
	grid := newCellGrid(w, h)

	var overrides map[string]Point
	if overlay.DragNodeID != "" {
		overrides = map[string]Point{overlay.DragNodeID: overlay.DragPos}
	}

	// Edges first so nodes draw over them. An edge whose endpoint vanished
	// is skipped, never an error.
	var routed [][]Point
	for _, e := range doc.Edges {
		points, ok := routeEdge(doc, e, overrides)
		if !ok {
			continue
		}
		drawPolyline(grid, vp, points, false)
		routed = append(routed, points)
	}

	if overlay.Band != nil {
		band := []Point{overlay.Band.From, overlay.Band.To}
		drawPolyline(grid, vp, band, true)
	}

	for _, n := range doc.Nodes {
		origin := n.Origin()
		if p, ok := overrides[n.ID]; ok {
			origin = p
		}
		label := n.Label
		editing := n.ID == editingID
		if editing {
			label = editText + "▌"
		}
		drawNode(grid, vp, n, origin, label)
		if n.ID == selected && !editing {
			drawAnchors(grid, vp, n, origin)
		}
	}

	// Arrowheads go on top of node borders so the direction stays visible.
	for _, points := range routed {
		drawArrowhead(grid, vp, points)
	}

	return grid.lines()
}

// drawPolyline rasterizes consecutive segments. Dashed mode skips alternate
// cells and is used for the rubber band.
func drawPolyline(grid *cellGrid, vp *Viewport, points []Point, dashed bool) {
	for i := 0; i < len(points)-1; i++ {
		x1, y1 := cellOf(vp.ToScreen(points[i]))
		x2, y2 := cellOf(vp.ToScreen(points[i+1]))
		drawCellLine(grid, x1, y1, x2, y2, dashed)
	}
}

// drawCellLine is an integer line walk with a slope-picked glyph.
func drawCellLine(grid *cellGrid, x1, y1, x2, y2 int, dashed bool) {
	dx := x2 - x1
	dy := y2 - y1
	steps := maxInt(absInt(dx), absInt(dy))
	glyph := lineGlyph(dx, dy)
	if steps == 0 {
		grid.set(x1, y1, glyph)
		return
	}
	for i := 0; i <= steps; i++ {
		if dashed && i%2 == 1 {
			continue
		}
		x := x1 + dx*i/steps
		y := y1 + dy*i/steps
		grid.set(x, y, glyph)
	}
}

func lineGlyph(dx, dy int) rune {
	adx, ady := absInt(dx), absInt(dy)
	switch {
	case ady*2 <= adx:
		return '─'
	case adx*2 <= ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// drawArrowhead marks the target end of an edge with a direction glyph
// derived from the final segment.
func drawArrowhead(grid *cellGrid, vp *Viewport, points []Point) {
	if len(points) < 2 {
		return
	}
	prev := points[len(points)-2]
	last := points[len(points)-1]
	x, y := cellOf(vp.ToScreen(last))

	dx := last.X - prev.X
	dy := last.Y - prev.Y
	var glyph rune
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			glyph = '▶'
		} else {
			glyph = '◀'
		}
	} else {
		if dy > 0 {
			glyph = '▼'
		} else {
			glyph = '▲'
		}
	}
	grid.set(x, y, glyph)
}

// drawNode renders one node at origin (committed or live) with its label.
func drawNode(grid *cellGrid, vp *Viewport, n Node, origin Point, label string) {
	w, h := boundingBox(n.Type)
	x1, y1 := cellOf(vp.ToScreen(origin))
	x2, y2 := cellOf(vp.ToScreen(Point{X: origin.X + w, Y: origin.Y + h}))
	if x2 <= x1 {
		x2 = x1 + 1
	}
	if y2 <= y1 {
		y2 = y1 + 1
	}

	// Blank the interior so edges routed underneath stay hidden.
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			grid.set(x, y, ' ')
		}
	}

	switch n.Type {
	case ShapeDiamond:
		drawDiamondOutline(grid, x1, y1, x2, y2)
	case ShapeParallelogram:
		drawParallelogramOutline(grid, x1, y1, x2, y2)
	case ShapeHexagon:
		drawHexagonOutline(grid, x1, y1, x2, y2)
	case ShapeStorage:
		drawStorageOutline(grid, x1, y1, x2, y2)
	case ShapeEllipse:
		drawBoxOutline(grid, x1, y1, x2, y2, '╭', '╮', '╰', '╯')
	default:
		drawBoxOutline(grid, x1, y1, x2, y2, '┌', '┐', '└', '┘')
	}

	drawLabel(grid, x1, y1, x2, y2, label)
}

func drawBoxOutline(grid *cellGrid, x1, y1, x2, y2 int, tl, tr, bl, br rune) {
	for x := x1 + 1; x < x2; x++ {
		grid.set(x, y1, '─')
		grid.set(x, y2, '─')
	}
	for y := y1 + 1; y < y2; y++ {
		grid.set(x1, y, '│')
		grid.set(x2, y, '│')
	}
	grid.set(x1, y1, tl)
	grid.set(x2, y1, tr)
	grid.set(x1, y2, bl)
	grid.set(x2, y2, br)
}

func drawDiamondOutline(grid *cellGrid, x1, y1, x2, y2 int) {
	cx := (x1 + x2) / 2
	cy := (y1 + y2) / 2
	drawCellLine(grid, cx, y1, x2, cy, false)
	drawCellLine(grid, x2, cy, cx, y2, false)
	drawCellLine(grid, cx, y2, x1, cy, false)
	drawCellLine(grid, x1, cy, cx, y1, false)
}

func drawParallelogramOutline(grid *cellGrid, x1, y1, x2, y2 int) {
	skew := maxInt(2, (x2-x1)/6)
	for x := x1 + skew; x <= x2; x++ {
		grid.set(x, y1, '─')
	}
	for x := x1; x <= x2-skew; x++ {
		grid.set(x, y2, '─')
	}
	drawCellLine(grid, x1, y2, x1+skew, y1, false)
	drawCellLine(grid, x2-skew, y2, x2, y1, false)
}

func drawHexagonOutline(grid *cellGrid, x1, y1, x2, y2 int) {
	inset := maxInt(2, (x2-x1)/5)
	cy := (y1 + y2) / 2
	for x := x1 + inset; x <= x2-inset; x++ {
		grid.set(x, y1, '─')
		grid.set(x, y2, '─')
	}
	drawCellLine(grid, x1, cy, x1+inset, y1, false)
	drawCellLine(grid, x1, cy, x1+inset, y2, false)
	drawCellLine(grid, x2, cy, x2-inset, y1, false)
	drawCellLine(grid, x2, cy, x2-inset, y2, false)
}

func drawStorageOutline(grid *cellGrid, x1, y1, x2, y2 int) {
	drawBoxOutline(grid, x1, y1, x2, y2, '╭', '╮', '╰', '╯')
	// Cylinder lid.
	if y1+1 < y2 {
		for x := x1 + 1; x < x2; x++ {
			grid.set(x, y1+1, '─')
		}
		grid.set(x1, y1+1, '│')
		grid.set(x2, y1+1, '│')
	}
}

func drawLabel(grid *cellGrid, x1, y1, x2, y2 int, label string) {
	label = strings.ReplaceAll(label, "\n", " ")
	maxLen := x2 - x1 - 3
	if maxLen < 1 {
		return
	}
	runes := []rune(label)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	cy := (y1 + y2) / 2
	start := (x1+x2)/2 - len(runes)/2
	for i, r := range runes {
		grid.set(start+i, cy, r)
	}
}

// drawAnchors marks the selected node's valid anchors so the user can see
// where edges start.
func drawAnchors(grid *cellGrid, vp *Viewport, n Node, origin Point) {
	for _, a := range validAnchors(n.Type) {
		p := anchorPoint(n, a, &origin)
		x, y := cellOf(vp.ToScreen(p))
		grid.set(x, y, '●')
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

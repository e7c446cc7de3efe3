package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// exportPNG renders the committed document to a PNG at logical resolution.
// One logical unit maps to one pixel.
func exportPNG(doc *Document, filename string) error {
	minX, minY, maxX, maxY, ok := contentBounds(doc.Nodes)
	if !ok {
		return fmt.Errorf("nothing to export")
	}

	padding := 40.0
	minX -= padding
	minY -= padding
	maxX += padding
	maxY += padding

	dc := gg.NewContext(int(math.Ceil(maxX-minX)), int(math.Ceil(maxY-minY)))
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Edges behind nodes, same z-order as the terminal render; arrowheads
	// last so node fills cannot swallow them.
	dc.SetColor(color.Black)
	dc.SetLineWidth(1.5)
	for _, e := range doc.Edges {
		drawEdgePNG(dc, doc, e, minX, minY)
	}
	for _, n := range doc.Nodes {
		drawNodePNG(dc, n, minX, minY)
	}
	dc.SetColor(color.Black)
	for _, e := range doc.Edges {
		drawEdgeArrowPNG(dc, doc, e, minX, minY)
	}

	return dc.SavePNG(filename)
}

// drawEdgePNG strokes the true cubic curve rather than the sampled
// polyline; gg has a native Bézier primitive, so use it.
func drawEdgePNG(dc *gg.Context, doc *Document, e Edge, minX, minY float64) {
	src := doc.FindNode(e.SourceID)
	dst := doc.FindNode(e.TargetID)
	if src == nil || dst == nil {
		return
	}
	start := anchorPoint(*src, e.SourceAnchor, nil)
	end := anchorPoint(*dst, e.TargetAnchor, nil)
	c1, c2 := controlPoints(start, end, e.SourceAnchor, e.TargetAnchor)

	dc.MoveTo(start.X-minX, start.Y-minY)
	dc.CubicTo(c1.X-minX, c1.Y-minY, c2.X-minX, c2.Y-minY, end.X-minX, end.Y-minY)
	dc.Stroke()
}

func drawEdgeArrowPNG(dc *gg.Context, doc *Document, e Edge, minX, minY float64) {
	src := doc.FindNode(e.SourceID)
	dst := doc.FindNode(e.TargetID)
	if src == nil || dst == nil {
		return
	}
	start := anchorPoint(*src, e.SourceAnchor, nil)
	end := anchorPoint(*dst, e.TargetAnchor, nil)
	_, c2 := controlPoints(start, end, e.SourceAnchor, e.TargetAnchor)
	drawArrowheadPNG(dc, c2, end, minX, minY)
}

func drawArrowheadPNG(dc *gg.Context, from, to Point, minX, minY float64) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	arrowSize := 10.0
	arrowAngle := 0.5

	tx := to.X - minX
	ty := to.Y - minY
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-arrowSize*dx+arrowSize*dy*arrowAngle, ty-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(tx-arrowSize*dx-arrowSize*dy*arrowAngle, ty-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n Node, minX, minY float64) {
	w, h := boundingBox(n.Type)
	x := n.X - minX
	y := n.Y - minY

	dc.SetColor(color.White)
	traceShapePath(dc, n.Type, x, y, w, h)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.SetLineWidth(1.5)
	dc.Stroke()

	dc.DrawStringAnchored(n.Label, x+w/2, y+h/2, 0.5, 0.35)
}

func traceShapePath(dc *gg.Context, kind ShapeKind, x, y, w, h float64) {
	switch kind {
	case ShapeDiamond:
		dc.MoveTo(x+w/2, y)
		dc.LineTo(x+w, y+h/2)
		dc.LineTo(x+w/2, y+h)
		dc.LineTo(x, y+h/2)
		dc.ClosePath()
	case ShapeEllipse:
		dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
	case ShapeParallelogram:
		skew := w / 6
		dc.MoveTo(x+skew, y)
		dc.LineTo(x+w, y)
		dc.LineTo(x+w-skew, y+h)
		dc.LineTo(x, y+h)
		dc.ClosePath()
	case ShapeHexagon:
		inset := w / 5
		dc.MoveTo(x+inset, y)
		dc.LineTo(x+w-inset, y)
		dc.LineTo(x+w, y+h/2)
		dc.LineTo(x+w-inset, y+h)
		dc.LineTo(x+inset, y+h)
		dc.LineTo(x, y+h/2)
		dc.ClosePath()
	case ShapeStorage:
		lid := h / 6
		dc.MoveTo(x, y+lid)
		dc.LineTo(x, y+h-lid)
		dc.QuadraticTo(x, y+h, x+w/2, y+h)
		dc.QuadraticTo(x+w, y+h, x+w, y+h-lid)
		dc.LineTo(x+w, y+lid)
		dc.QuadraticTo(x+w, y, x+w/2, y)
		dc.QuadraticTo(x, y, x, y+lid)
		dc.ClosePath()
	default:
		dc.DrawRectangle(x, y, w, h)
	}
}

package main

import "math"

// Viewport owns the pan offset and zoom scale and converts between screen
// space (pixels, as fed by the input layer) and logical canvas space.
// screen = logical*scale + pan. It is ephemeral per-session state and never
// persisted.
type Viewport struct {
	PanX, PanY float64
	Scale      float64

	// Available screen area in pixels, updated on resize.
	Width, Height float64
}

// NewViewport returns a viewport at scale 1 centered on the canvas.
func NewViewport(width, height float64) *Viewport {
	v := &Viewport{Width: width, Height: height}
	v.ResetView()
	return v
}

// SetSize records the available screen area and keeps the current view.
func (v *Viewport) SetSize(width, height float64) {
	v.Width = width
	v.Height = height
}

// ToScreen maps a logical point to screen pixels.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{X: p.X*v.Scale + v.PanX, Y: p.Y*v.Scale + v.PanY}
}

// ToLogical maps screen pixels to logical canvas space.
func (v *Viewport) ToLogical(p Point) Point {
	return Point{X: (p.X - v.PanX) / v.Scale, Y: (p.Y - v.PanY) / v.Scale}
}

// Pan shifts the view by a raw screen-space delta. Pan is 1:1 with the
// pointer, deliberately not compensated by zoom.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomIn steps the scale up by the fixed zoom factor.
func (v *Viewport) ZoomIn() {
	v.Scale = clampScale(v.Scale * zoomFactor)
}

// ZoomOut steps the scale down by the fixed zoom factor.
func (v *Viewport) ZoomOut() {
	v.Scale = clampScale(v.Scale / zoomFactor)
}

// ResetView restores scale 1 with the canvas center in the middle of the
// available area.
func (v *Viewport) ResetView() {
	v.Scale = 1
	v.PanX = v.Width/2 - canvasWidth/2
	v.PanY = v.Height/2 - canvasHeight/2
}

// FitAll zooms and pans so every node is visible with a little breathing
// room. With no nodes it is the same as ResetView.
func (v *Viewport) FitAll(nodes []Node) {
	minX, minY, maxX, maxY, ok := contentBounds(nodes)
	if !ok {
		v.ResetView()
		return
	}

	contentW := maxX - minX
	contentH := maxY - minY
	scale := math.Min(v.Width/contentW, v.Height/contentH) * fitPadding
	v.Scale = clampScale(scale)

	centerX := (minX + maxX) / 2
	centerY := (minY + maxY) / 2
	v.PanX = v.Width/2 - centerX*v.Scale
	v.PanY = v.Height/2 - centerY*v.Scale
}

func clampScale(s float64) float64 {
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

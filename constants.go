package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditLabel
	ModeConfirm
	ModeHelp
)

type ConfirmAction int

const (
	ConfirmClearChart ConfirmAction = iota
	ConfirmDeleteNode
	ConfirmQuit
)

// Logical canvas extent. Nodes live anywhere, this only anchors the
// default placement and the reset-view centering.
const (
	canvasWidth  = 4000.0
	canvasHeight = 3000.0
)

// Viewport limits.
const (
	minScale   = 0.25
	maxScale   = 4.0
	zoomFactor = 1.2
	fitPadding = 0.9
)

// Gesture tuning, all in logical units unless noted.
const (
	dragThreshold     = 5.0
	hitTestPadding    = 20.0
	anchorHitRadius   = 14.0
	extendGap         = 100.0
	doubleActivateWin = 300 // milliseconds
)

// Curve sampling.
const (
	curveSegments     = 20
	curveControlCap   = 80.0
	curveControlRatio = 0.5
)

const historyCap = 50

// Terminal cells are not square. Pointer cells are converted to pixel-ish
// screen coordinates with these metrics so the transform math stays uniform.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

const saveDebounceMillis = 500

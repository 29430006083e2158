// Package canvas holds the view transform and pointer gesture state for the
// crop surface. It is deliberately independent of any UI toolkit so the
// draft/commit logic can be exercised without a window.
package canvas

import "image"

// MinRegionSize is the exclusive lower bound, in image units, for both
// dimensions of a committable region. Smaller drafts are dropped on release.
const MinRegionSize = 20

// Zoom step factors applied per wheel notch. Roughly reciprocal so repeated
// opposite gestures approximately cancel.
const (
	ZoomInFactor  = 1.15
	ZoomOutFactor = 0.87
)

const minZoom = 0.05

// Region is one committed crop selection, an axis-aligned rectangle in image
// coordinates. Regions are plain values; rendering them is the UI's job.
type Region struct {
	Rect image.Rectangle
}

// DraftState enumerates the gesture machine states.
type DraftState int

const (
	// StateIdle means no draft is in progress.
	StateIdle DraftState = iota
	// StateDrawing means a press anchored a draft that follows the pointer.
	StateDrawing
)

// View is the pannable, zoomable mapping between image coordinates and the
// viewport, plus the in-progress draft rectangle.
type View struct {
	Zoom   float64
	Offset image.Point // viewport position of the image origin, in pixels

	imageW, imageH int
	viewW, viewH   int

	state  DraftState
	anchor image.Point
	draft  image.Rectangle

	moveIdx   int
	moveStart image.Point
	moveOrig  image.Rectangle
}

// NewView returns a View with nothing loaded.
func NewView(viewW, viewH int) *View {
	return &View{Zoom: 1, viewW: viewW, viewH: viewH, moveIdx: -1}
}

// SetImage resets the draft and fits the whole w by h image into the
// viewport, preserving aspect ratio.
func (v *View) SetImage(w, h int) {
	v.imageW, v.imageH = w, h
	v.state = StateIdle
	v.draft = image.Rectangle{}
	v.moveIdx = -1
	v.Fit()
}

// Resize updates the viewport dimensions without altering the transform.
func (v *View) Resize(w, h int) {
	v.viewW, v.viewH = w, h
}

// Fit chooses the largest zoom that shows the whole image and centers it.
func (v *View) Fit() {
	if v.imageW == 0 || v.imageH == 0 || v.viewW == 0 || v.viewH == 0 {
		v.Zoom = 1
		v.Offset = image.Point{}
		return
	}
	zx := float64(v.viewW) / float64(v.imageW)
	zy := float64(v.viewH) / float64(v.imageH)
	if zx < zy {
		v.Zoom = zx
	} else {
		v.Zoom = zy
	}
	v.Offset = image.Pt(
		(v.viewW-int(float64(v.imageW)*v.Zoom))/2,
		(v.viewH-int(float64(v.imageH)*v.Zoom))/2,
	)
}

// ViewToImage converts a viewport point to image coordinates.
func (v *View) ViewToImage(p image.Point) image.Point {
	return image.Pt(
		int(float64(p.X-v.Offset.X)/v.Zoom),
		int(float64(p.Y-v.Offset.Y)/v.Zoom),
	)
}

// ImageToView converts an image-space rectangle to viewport pixels.
func (v *View) ImageToView(r image.Rectangle) image.Rectangle {
	return image.Rect(
		v.Offset.X+int(float64(r.Min.X)*v.Zoom),
		v.Offset.Y+int(float64(r.Min.Y)*v.Zoom),
		v.Offset.X+int(float64(r.Max.X)*v.Zoom),
		v.Offset.Y+int(float64(r.Max.Y)*v.Zoom),
	)
}

// ZoomStep scales the view by the fixed in/out factor, keeping the image
// point under anchor (a viewport position) stationary.
func (v *View) ZoomStep(in bool, anchor image.Point) {
	factor := ZoomOutFactor
	if in {
		factor = ZoomInFactor
	}
	next := v.Zoom * factor
	if next < minZoom {
		next = minZoom
	}
	// anchor = imagePt*zoom + offset before and after the step
	ix := float64(anchor.X-v.Offset.X) / v.Zoom
	iy := float64(anchor.Y-v.Offset.Y) / v.Zoom
	v.Zoom = next
	v.Offset = image.Pt(
		anchor.X-int(ix*v.Zoom),
		anchor.Y-int(iy*v.Zoom),
	)
}

// ScrollBy pans the view by the given viewport-pixel delta.
func (v *View) ScrollBy(dx, dy int) {
	v.Offset = v.Offset.Add(image.Pt(dx, dy))
}

// State reports the current draft machine state.
func (v *View) State() DraftState { return v.state }

// Draft returns the in-progress rectangle; meaningful only while drawing.
func (v *View) Draft() image.Rectangle { return v.draft }

// BeginDraft anchors a new draft at p (image coordinates). It reports whether
// a draft actually started; a press while one is active is ignored, which
// makes Idle -> Drawing the only entry into the gesture.
func (v *View) BeginDraft(p image.Point) bool {
	if v.state != StateIdle {
		return false
	}
	v.state = StateDrawing
	v.anchor = p
	v.draft = image.Rectangle{Min: p, Max: p}
	return true
}

// UpdateDraft spans the draft from the anchor to p. image.Rect normalizes,
// so dragging in any direction yields a well-formed rectangle.
func (v *View) UpdateDraft(p image.Point) {
	if v.state != StateDrawing {
		return
	}
	v.draft = image.Rect(v.anchor.X, v.anchor.Y, p.X, p.Y)
}

// CommitDraft ends the gesture. Drafts larger than MinRegionSize in both
// dimensions become a Region; anything else is dropped without error.
func (v *View) CommitDraft() (Region, bool) {
	if v.state != StateDrawing {
		return Region{}, false
	}
	r := v.draft
	v.state = StateIdle
	v.draft = image.Rectangle{}
	if r.Dx() <= MinRegionSize || r.Dy() <= MinRegionSize {
		return Region{}, false
	}
	return Region{Rect: r}, true
}

// CancelDraft abandons the in-progress draft, if any.
func (v *View) CancelDraft() {
	v.state = StateIdle
	v.draft = image.Rectangle{}
}

// RegionAt returns the index of the topmost (most recently drawn) region
// containing the image point p, or -1.
func RegionAt(regions []Region, p image.Point) int {
	for i := len(regions) - 1; i >= 0; i-- {
		if p.In(regions[i].Rect) {
			return i
		}
	}
	return -1
}

// BeginMove starts dragging regions[idx] from image point p.
func (v *View) BeginMove(regions []Region, idx int, p image.Point) {
	if idx < 0 || idx >= len(regions) {
		return
	}
	v.moveIdx = idx
	v.moveStart = p
	v.moveOrig = regions[idx].Rect
}

// UpdateMove translates the dragged region to follow the pointer. The
// rectangle's size never changes during a move.
func (v *View) UpdateMove(regions []Region, p image.Point) {
	if v.moveIdx < 0 || v.moveIdx >= len(regions) {
		return
	}
	regions[v.moveIdx].Rect = v.moveOrig.Add(p.Sub(v.moveStart))
}

// EndMove finishes a region drag.
func (v *View) EndMove() { v.moveIdx = -1 }

// Moving reports the index of the region being dragged, or -1.
func (v *View) Moving() int { return v.moveIdx }

package main

import "math"

// Viewport maps between screen space (terminal cells, including the header
// row) and world space (diagram coordinates, invariant under pan/zoom).
// All hit-testing, drag deltas and box-selection math happen in world
// space; only drawing and raw pointer events live in screen space.
type Viewport struct {
	PanX float64
	PanY float64
	Zoom float64
}

func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ToWorld converts a screen point to world coordinates. The header row is
// chrome consumed before the canvas begins, so it is subtracted from Y
// first.
func (v Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.PanX) / v.Zoom, (sy - headerRows - v.PanY) / v.Zoom
}

// ToScreen is the inverse affine transform of ToWorld.
func (v Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Zoom + v.PanX, wy*v.Zoom + v.PanY + headerRows
}

// Cell maps a world point to the terminal cell it lands in.
func (v Viewport) Cell(wx, wy float64) (int, int) {
	sx, sy := v.ToScreen(wx, wy)
	return int(math.Round(sx)), int(math.Round(sy))
}

// ZoomBy adjusts the zoom factor, clamped to the supported band. Pan is a
// free-form offset and is never clamped.
func (v *Viewport) ZoomBy(delta float64) {
	v.Zoom = clampZoom(v.Zoom + delta)
}

func (v *Viewport) Reset() {
	v.PanX, v.PanY, v.Zoom = 0, 0, 1
}

func clampZoom(z float64) float64 {
	if z < zoomMin {
		return zoomMin
	}
	if z > zoomMax {
		return zoomMax
	}
	return z
}

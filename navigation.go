package main

// Keyboard panning complements the secondary-button drag: arrows and hjkl
// shift the viewport, shifted variants move faster. Pan is a screen-space
// offset, so the step is constant regardless of zoom.
func (m *model) handlePan(key string, speed float64) {
	view := m.eng.View()
	switch key {
	case "h", "left", "H", "shift+left":
		view.PanX += speed
	case "l", "right", "L", "shift+right":
		view.PanX -= speed
	case "k", "up", "K", "shift+up":
		view.PanY += speed
	case "j", "down", "J", "shift+down":
		view.PanY -= speed
	}
}

func panSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 2
	}
}

func (m *model) handleZoomKey(key string) {
	view := m.eng.View()
	switch key {
	case "+", "=":
		view.ZoomBy(zoomStep)
	case "-":
		view.ZoomBy(-zoomStep)
	case "0":
		view.Reset()
	}
}

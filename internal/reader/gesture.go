package reader

// Gesture translation: pointer drags past a distance threshold become
// spread navigation, pinch distance ratios become zoom relative to the
// gesture's start scale, and modifier+wheel becomes a zoom step.
// Unmodified wheel input never turns pages.

// DragThreshold is the horizontal distance a drag must cover before it
// counts as a page turn.
const DragThreshold = 50.0

// Intent is the navigation outcome of a completed gesture.
type Intent int

const (
	IntentNone Intent = iota
	IntentPrevSpread
	IntentNextSpread
)

// Gesture tracks one in-flight pointer or pinch interaction.
type Gesture struct {
	active     bool
	startX     float64
	pinching   bool
	pinchStart float64
	startScale float64
}

// PointerDown begins a drag at the given x coordinate.
func (g *Gesture) PointerDown(x float64) {
	g.active = true
	g.startX = x
}

// PointerUp ends a drag and returns the navigation intent. A rightward
// drag past the threshold goes to the previous spread, leftward to the
// next; anything shorter is ignored.
func (g *Gesture) PointerUp(x float64) Intent {
	if !g.active {
		return IntentNone
	}
	g.active = false

	dx := x - g.startX
	switch {
	case dx > DragThreshold:
		return IntentPrevSpread
	case dx < -DragThreshold:
		return IntentNextSpread
	default:
		return IntentNone
	}
}

// PinchStart begins a two-finger pinch with the initial finger distance
// and the zoom scale at gesture start.
func (g *Gesture) PinchStart(distance, scale float64) {
	if distance <= 0 {
		return
	}
	g.pinching = true
	g.pinchStart = distance
	g.startScale = scale
}

// PinchMove returns the new zoom scale for the current finger distance,
// relative to the scale captured at gesture start. The boolean is false
// when no pinch is active.
func (g *Gesture) PinchMove(distance float64) (float64, bool) {
	if !g.pinching || distance <= 0 {
		return 0, false
	}
	return clampZoom(g.startScale * distance / g.pinchStart), true
}

// PinchEnd finishes the pinch gesture.
func (g *Gesture) PinchEnd() {
	g.pinching = false
}

// WheelZoom maps a wheel event to a zoom step. The modifier key is
// required; without it scrolling must not zoom or page-turn.
func WheelZoom(deltaY float64, modifier bool, current float64) (float64, bool) {
	if !modifier || deltaY == 0 {
		return current, false
	}
	if deltaY < 0 {
		return clampZoom(current + ZoomStep), true
	}
	return clampZoom(current - ZoomStep), true
}

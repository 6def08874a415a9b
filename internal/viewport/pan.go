package viewport

import (
	"scratch-view/pkg/geometry"
)

// PanController rewrites the active zoom rect while a pan gesture is in
// progress. It tracks the viewport's visible scene origin; each move
// translates the top-of-stack rect so the image follows the pointer, then
// re-records the origin so successive deltas compose without drifting.
type PanController struct {
	stack  *ZoomStack
	origin geometry.Point2D
	active bool
}

// NewPanController creates a pan controller operating on the given stack.
func NewPanController(stack *ZoomStack) *PanController {
	return &PanController{stack: stack}
}

// Begin starts a pan gesture from the given viewport scene origin.
func (p *PanController) Begin(origin geometry.Point2D) {
	p.origin = origin
	p.active = true
}

// Move handles one pointer-move during an active pan. The view rect shifts
// opposite to the origin displacement (dragging the content moves the window
// over the scene the other way) and is clipped to the scene bounds. A no-op
// when no gesture is active or the stack is empty: panning the fully
// zoomed-out view has nothing to reveal. Reports whether the view changed.
func (p *PanController) Move(newOrigin geometry.Point2D) bool {
	if !p.active {
		return false
	}
	delta := p.origin.Sub(newOrigin)
	p.origin = newOrigin
	return p.stack.translateTop(delta)
}

// End finishes the gesture. The last Move already applied the final rect
// update, so this only clears session state.
func (p *PanController) End() {
	p.active = false
	p.origin = geometry.Point2D{}
}

// Active reports whether a pan gesture is in progress.
func (p *PanController) Active() bool {
	return p.active
}

// Origin returns the most recently recorded viewport scene origin.
func (p *PanController) Origin() geometry.Point2D {
	return p.origin
}

package viewport

import (
	"scratch-view/pkg/geometry"
)

// boundsEps is the tolerance used when deciding whether a zoomed-out rect has
// reached the full scene extent again.
const boundsEps = 1e-6

// ZoomStack owns the scene bounds and the stack of nested zoom rectangles,
// outermost first. An empty stack is the canonical "fully zoomed out" state;
// the top of the stack is the currently visible rect.
//
// Every mutator maintains the invariant that each entry is contained in the
// scene bounds.
type ZoomStack struct {
	bounds geometry.Rect
	stack  []geometry.Rect
}

// NewZoomStack creates a zoom stack for the given scene bounds (the full
// image extent).
func NewZoomStack(bounds geometry.Rect) *ZoomStack {
	return &ZoomStack{bounds: bounds}
}

// SetSceneBounds replaces the scene bounds (a new image was loaded) and
// resets the stack to fully zoomed out.
func (z *ZoomStack) SetSceneBounds(bounds geometry.Rect) {
	z.bounds = bounds
	z.stack = z.stack[:0]
}

// SceneBounds returns the full scene extent.
func (z *ZoomStack) SceneBounds() geometry.Rect {
	return z.bounds
}

// Depth returns the number of stacked zoom rectangles.
func (z *ZoomStack) Depth() int {
	return len(z.stack)
}

// CurrentView returns the visible rect: the top of the stack, or the scene
// bounds when fully zoomed out.
func (z *ZoomStack) CurrentView() geometry.Rect {
	if len(z.stack) == 0 {
		return z.bounds
	}
	return z.stack[len(z.stack)-1]
}

// PushInitialZoom seeds the stack with a copy of the scene bounds if it is
// empty, so that a subsequent relative zoom has a live rect to work on.
func (z *ZoomStack) PushInitialZoom() {
	if len(z.stack) == 0 {
		z.stack = append(z.stack, z.bounds)
	}
}

// collapseToTop discards all entries but the most recent zoom level. Wheel
// zooming works on a single live rect rather than growing the history.
func (z *ZoomStack) collapseToTop() {
	if len(z.stack) > 1 {
		z.stack[0] = z.stack[len(z.stack)-1]
		z.stack = z.stack[:1]
	}
}

// ZoomIn shrinks the current view by factor, anchored on the view center,
// and clips it to the scene bounds. A factor <= 1 disables wheel zoom and
// makes this a no-op. Reports whether the view changed.
func (z *ZoomStack) ZoomIn(factor float64) bool {
	if factor <= 1 || z.bounds.IsEmpty() {
		return false
	}
	z.PushInitialZoom()
	z.collapseToTop()

	rect := z.stack[len(z.stack)-1]
	center := rect.Center()
	rect.Width /= factor
	rect.Height /= factor
	z.stack[len(z.stack)-1] = rect.CenteredAt(center).Intersect(z.bounds)
	return true
}

// ZoomOut grows the current view by factor about its center. When the result
// covers the full scene again the stack is cleared, restoring the canonical
// fully-zoomed-out state. Reports whether the view changed.
func (z *ZoomStack) ZoomOut(factor float64) bool {
	if factor <= 1 {
		return false
	}
	if len(z.stack) == 0 {
		// Already fully zoomed out.
		return false
	}
	z.collapseToTop()

	rect := z.stack[len(z.stack)-1]
	center := rect.Center()
	rect.Width *= factor
	rect.Height *= factor
	rect = rect.CenteredAt(center).Intersect(z.bounds)
	if rect.ApproxEq(z.bounds, boundsEps) {
		z.stack = z.stack[:0]
		return true
	}
	z.stack[len(z.stack)-1] = rect
	return true
}

// PushRegionZoom clips rect to the scene bounds and pushes it as the new
// view. Degenerate rects and rects equal to the full scene are rejected;
// the caller then treats the gesture as a plain click. Reports whether the
// rect was pushed.
func (z *ZoomStack) PushRegionZoom(rect geometry.Rect) bool {
	clipped := rect.Intersect(z.bounds)
	if clipped.IsEmpty() || clipped == z.bounds {
		return false
	}
	z.stack = append(z.stack, clipped)
	return true
}

// PopZoom removes the top zoom rect, returning to the previous level.
// Reports whether anything was popped.
func (z *ZoomStack) PopZoom() bool {
	if len(z.stack) == 0 {
		return false
	}
	z.stack = z.stack[:len(z.stack)-1]
	return true
}

// Clear empties the stack, showing the full image. Reports whether the view
// changed.
func (z *ZoomStack) Clear() bool {
	if len(z.stack) == 0 {
		return false
	}
	z.stack = z.stack[:0]
	return true
}

// translateTop shifts the top rect by delta, clipped to the scene bounds.
// Used by the pan controller; a no-op when fully zoomed out.
func (z *ZoomStack) translateTop(delta geometry.Point2D) bool {
	if len(z.stack) == 0 {
		return false
	}
	z.stack[len(z.stack)-1] = z.stack[len(z.stack)-1].Translate(delta).Intersect(z.bounds)
	return true
}

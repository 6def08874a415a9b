// Package viewport implements the toolkit-independent view controller for the
// image viewer: coordinate mapping between screen pixels, scene units and
// image pixel indices, the zoom-rectangle stack, panning, and the mouse
// interaction state machine that drives them.
package viewport

import (
	"math"

	"scratch-view/pkg/geometry"
)

// AspectPolicy selects how a scene rectangle is fitted into the viewport.
type AspectPolicy int

const (
	// KeepAspectRatio scales uniformly so the whole rect fits, letterboxing
	// the shorter axis.
	KeepAspectRatio AspectPolicy = iota
	// IgnoreAspectRatio stretches each axis independently to fill the viewport.
	IgnoreAspectRatio
	// KeepAspectRatioByExpanding scales uniformly so the viewport is filled,
	// cropping the overflowing axis symmetrically.
	KeepAspectRatioByExpanding
)

// ViewTransform is the linear mapping that places a visible scene rect into a
// viewport under an aspect policy: screen = (scene - visible.origin)*scale + offset.
type ViewTransform struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

// FitTransform computes the transform that fits visible into a viewport of the
// given pixel size. Degenerate inputs yield the identity transform.
func FitTransform(viewport geometry.Size, visible geometry.Rect, policy AspectPolicy) ViewTransform {
	if viewport.IsZero() || visible.IsEmpty() {
		return ViewTransform{ScaleX: 1, ScaleY: 1}
	}

	sx := viewport.Width / visible.Width
	sy := viewport.Height / visible.Height

	switch policy {
	case KeepAspectRatio:
		s := math.Min(sx, sy)
		sx, sy = s, s
	case KeepAspectRatioByExpanding:
		s := math.Max(sx, sy)
		sx, sy = s, s
	case IgnoreAspectRatio:
		// Per-axis scale, no letterboxing.
	}

	return ViewTransform{
		ScaleX:  sx,
		ScaleY:  sy,
		OffsetX: (viewport.Width - visible.Width*sx) / 2,
		OffsetY: (viewport.Height - visible.Height*sy) / 2,
	}
}

// ScreenToScene converts a viewport pixel position to scene coordinates given
// the currently visible scene rect and aspect policy.
func ScreenToScene(pixel geometry.Point2D, viewport geometry.Size, visible geometry.Rect, policy AspectPolicy) geometry.Point2D {
	t := FitTransform(viewport, visible, policy)
	return geometry.Point2D{
		X: visible.X + (pixel.X-t.OffsetX)/t.ScaleX,
		Y: visible.Y + (pixel.Y-t.OffsetY)/t.ScaleY,
	}
}

// SceneToScreen converts a scene point to viewport pixel coordinates; the
// inverse of ScreenToScene.
func SceneToScreen(scene geometry.Point2D, viewport geometry.Size, visible geometry.Rect, policy AspectPolicy) geometry.Point2D {
	t := FitTransform(viewport, visible, policy)
	return geometry.Point2D{
		X: (scene.X-visible.X)*t.ScaleX + t.OffsetX,
		Y: (scene.Y-visible.Y)*t.ScaleY + t.OffsetY,
	}
}

// VisibleSceneRect returns the scene-space rectangle covered by the whole
// viewport, including any letterboxed margin outside the visible rect.
func VisibleSceneRect(viewport geometry.Size, visible geometry.Rect, policy AspectPolicy) geometry.Rect {
	tl := ScreenToScene(geometry.Point2D{}, viewport, visible, policy)
	br := ScreenToScene(geometry.Point2D{X: viewport.Width, Y: viewport.Height}, viewport, visible, policy)
	return geometry.NewRectFromPoints(tl, br)
}

// SceneToImageIndex converts a scene point to a discrete image pixel index
// using pixel-center rounding: scene x in [c, c+1) maps to column c. Points
// outside bounds yield geometry.InvalidIndex.
func SceneToImageIndex(scene geometry.Point2D, bounds geometry.Rect) geometry.PointInt {
	if !bounds.Contains(scene) {
		return geometry.InvalidIndex
	}
	idx := geometry.PointInt{
		X: int(math.Round(scene.X - 0.5)),
		Y: int(math.Round(scene.Y - 0.5)),
	}
	// The far edges are inside the bounds but belong to the last pixel.
	if max := int(bounds.X+bounds.Width) - 1; idx.X > max {
		idx.X = max
	}
	if max := int(bounds.Y+bounds.Height) - 1; idx.Y > max {
		idx.Y = max
	}
	return idx
}

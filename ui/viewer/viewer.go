// Package viewer provides the micrograph display widget: the loaded image
// rendered through the zoom stack, with rubber-band region zoom, panning,
// region-of-interest overlays and the zero-point marker.
package viewer

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"scratch-view/internal/imagefile"
	"scratch-view/internal/roi"
	"scratch-view/internal/viewport"
	"scratch-view/pkg/geometry"
)

var backgroundColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// ZeroMarkerRadius is the zero-point ellipse radius in scene units.
const ZeroMarkerRadius = 25.0

// Viewer displays a micrograph with interactive zoom and pan.
type Viewer struct {
	widget.BaseWidget

	doc   *imagefile.Document
	stack *viewport.ZoomStack
	disp  *viewport.Dispatcher

	rois     *roi.List
	zero     *geometry.Point2D
	selected int

	// Rubber band, in widget coordinates.
	banding    bool
	bandAnchor geometry.Point2D
	bandcur    geometry.Point2D

	panCursor bool

	raster *fynecanvas.Raster

	// OnClick fires for presses the viewport interactions did not consume.
	OnClick func(btn viewport.MouseButton, scene geometry.Point2D)
	// OnPosition reports the hovered image pixel, or an invalid index when
	// the cursor is off the image.
	OnPosition func(idx geometry.PointInt)
	// OnViewChanged fires after any zoom or pan.
	OnViewChanged func()
}

var (
	_ desktop.Mouseable   = (*Viewer)(nil)
	_ desktop.Hoverable   = (*Viewer)(nil)
	_ desktop.Cursorable  = (*Viewer)(nil)
	_ fyne.Scrollable     = (*Viewer)(nil)
	_ fyne.DoubleTappable = (*Viewer)(nil)
)

// New creates an empty viewer.
func New() *Viewer {
	v := &Viewer{
		stack:    viewport.NewZoomStack(geometry.Rect{}),
		selected: -1,
	}
	v.disp = viewport.NewDispatcher(v, v.stack, viewport.DefaultConfig())
	v.disp.SetCallbacks(viewport.Callbacks{
		ButtonPressed: func(btn viewport.MouseButton, scene geometry.Point2D) {
			if v.OnClick != nil {
				v.OnClick(btn, scene)
			}
		},
		MousePosition: func(idx geometry.PointInt) {
			if v.OnPosition != nil {
				v.OnPosition(idx)
			}
		},
		ViewChanged: func() {
			v.Refresh()
			if v.OnViewChanged != nil {
				v.OnViewChanged()
			}
		},
		DoubleClicked: func(btn viewport.MouseButton, scene geometry.Point2D) {
			// The primary double click resets the view.
			if btn == viewport.ButtonLeft && v.stack.Clear() {
				v.Refresh()
				if v.OnViewChanged != nil {
					v.OnViewChanged()
				}
			}
		},
	})

	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.SetMinSize(fyne.NewSize(400, 300))
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *Viewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// SetDocument replaces the displayed image and resets the view.
func (v *Viewer) SetDocument(doc *imagefile.Document) {
	v.doc = doc
	v.zero = nil
	v.selected = -1
	if doc != nil {
		v.stack.SetSceneBounds(doc.SceneRect())
	} else {
		v.stack.SetSceneBounds(geometry.Rect{})
	}
	v.Refresh()
}

// SetROIs attaches the region list drawn over the image.
func (v *Viewer) SetROIs(list *roi.List) {
	v.rois = list
}

// SetSelected highlights one region, -1 for none.
func (v *Viewer) SetSelected(index int) {
	v.selected = index
	v.Refresh()
}

// SetZeroMarker places or removes (nil) the zero-point marker, in image
// pixel coordinates.
func (v *Viewer) SetZeroMarker(p *geometry.Point2D) {
	v.zero = p
	v.Refresh()
}

// Dispatcher exposes the interaction configuration.
func (v *Viewer) Dispatcher() *viewport.Dispatcher {
	return v.disp
}

// Stack exposes the zoom stack, e.g. for menu-driven zoom actions.
func (v *Viewer) Stack() *viewport.ZoomStack {
	return v.stack
}

// ResetView zooms all the way out.
func (v *Viewer) ResetView() {
	if v.stack.Clear() {
		v.Refresh()
		if v.OnViewChanged != nil {
			v.OnViewChanged()
		}
	}
}

// Host interface for the dispatcher.

// ViewportSize returns the widget size in fyne units.
func (v *Viewer) ViewportSize() geometry.Size {
	s := v.Size()
	return geometry.NewSize(float64(s.Width), float64(s.Height))
}

// BeginRubberBand starts the selection box at a widget position.
func (v *Viewer) BeginRubberBand(at geometry.Point2D) {
	v.banding = true
	v.bandAnchor = at
	v.bandcur = at
	v.Refresh()
}

// MoveRubberBand extends the selection box.
func (v *Viewer) MoveRubberBand(to geometry.Point2D) {
	v.bandcur = to
	v.Refresh()
}

// EndRubberBand hides the box and returns it.
func (v *Viewer) EndRubberBand() geometry.Rect {
	v.banding = false
	v.Refresh()
	return geometry.NewRectFromPoints(v.bandAnchor, v.bandcur)
}

// SetPanCursor toggles the grab cursor while panning.
func (v *Viewer) SetPanCursor(active bool) {
	v.panCursor = active
}

// Cursor implements desktop.Cursorable.
func (v *Viewer) Cursor() desktop.Cursor {
	if v.panCursor {
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

// Mouse event plumbing.

func mapButton(b desktop.MouseButton) viewport.MouseButton {
	switch b {
	case desktop.MouseButtonPrimary:
		return viewport.ButtonLeft
	case desktop.MouseButtonSecondary:
		return viewport.ButtonRight
	case desktop.MouseButtonTertiary:
		return viewport.ButtonMiddle
	}
	return viewport.ButtonNone
}

func eventPoint(ev *desktop.MouseEvent) geometry.Point2D {
	return geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
}

// MouseDown implements desktop.Mouseable.
func (v *Viewer) MouseDown(ev *desktop.MouseEvent) {
	if v.doc == nil {
		return
	}
	v.disp.MousePressed(mapButton(ev.Button), eventPoint(ev))
}

// MouseUp implements desktop.Mouseable.
func (v *Viewer) MouseUp(ev *desktop.MouseEvent) {
	if v.doc == nil {
		return
	}
	v.disp.MouseReleased(mapButton(ev.Button), eventPoint(ev))
}

// MouseIn implements desktop.Hoverable.
func (v *Viewer) MouseIn(ev *desktop.MouseEvent) {
	v.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (v *Viewer) MouseMoved(ev *desktop.MouseEvent) {
	if v.doc == nil {
		return
	}
	v.disp.MouseMoved(eventPoint(ev))
}

// MouseOut implements desktop.Hoverable.
func (v *Viewer) MouseOut() {
	if v.OnPosition != nil {
		v.OnPosition(geometry.InvalidIndex)
	}
}

// DoubleTapped implements fyne.DoubleTappable.
func (v *Viewer) DoubleTapped(ev *fyne.PointEvent) {
	if v.doc == nil {
		return
	}
	p := geometry.Point2D{X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	v.disp.MouseDoubleClicked(viewport.ButtonLeft, p)
}

// Scrolled implements fyne.Scrollable; the wheel zooms about the view
// center.
func (v *Viewer) Scrolled(ev *fyne.ScrollEvent) {
	if v.doc == nil {
		return
	}
	v.disp.Wheel(float64(ev.Scrolled.DY))
}

// draw renders the visible part of the scene into a w x h pixel image.
func (v *Viewer) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(out, out.Bounds(), backgroundColor)
	if v.doc == nil || w == 0 || h == 0 {
		return out
	}

	size := geometry.NewSize(float64(w), float64(h))
	view := v.stack.CurrentView()
	policy := v.disp.Config().AspectPolicy

	src := view.Intersect(v.doc.SceneRect())
	if src.IsEmpty() {
		return out
	}
	dstTL := viewport.SceneToScreen(src.TopLeft(), size, view, policy)
	dstBR := viewport.SceneToScreen(src.BottomRight(), size, view, policy)
	dstRect := image.Rect(
		int(math.Round(dstTL.X)), int(math.Round(dstTL.Y)),
		int(math.Round(dstBR.X)), int(math.Round(dstBR.Y)),
	)
	srcRect := image.Rect(
		int(math.Floor(src.X)), int(math.Floor(src.Y)),
		int(math.Ceil(src.X+src.Width)), int(math.Ceil(src.Y+src.Height)),
	)
	xdraw.ApproxBiLinear.Scale(out, dstRect, v.doc.Image, srcRect, xdraw.Src, nil)

	v.drawOverlays(out, size, view, policy)
	if v.banding {
		// The band lives in widget units; scale to raster pixels.
		sx := float64(w) / v.ViewportSize().Width
		sy := float64(h) / v.ViewportSize().Height
		band := geometry.NewRectFromPoints(
			geometry.Point2D{X: v.bandAnchor.X * sx, Y: v.bandAnchor.Y * sy},
			geometry.Point2D{X: v.bandcur.X * sx, Y: v.bandcur.Y * sy},
		)
		drawRectOutline(out, band, color.RGBA{R: 255, G: 213, B: 0, A: 255})
	}
	return out
}

func (v *Viewer) drawOverlays(out *image.RGBA, size geometry.Size, view geometry.Rect, policy viewport.AspectPolicy) {
	// Raster pixels and widget units differ on hidpi displays; overlays are
	// mapped with the raster-sized transform so they land on the image.
	toScreen := func(p geometry.Point2D) geometry.Point2D {
		return viewport.SceneToScreen(p, size, view, policy)
	}

	if v.rois != nil {
		for i, r := range v.rois.All() {
			col := color.RGBA{R: 25, G: 118, B: 210, A: 255}
			if i == v.selected {
				col = color.RGBA{R: 255, G: 152, B: 0, A: 255}
			}
			drawROI(out, r, toScreen, col)
		}
	}

	if v.zero != nil {
		tl := toScreen(geometry.Point2D{X: v.zero.X - ZeroMarkerRadius, Y: v.zero.Y - ZeroMarkerRadius})
		br := toScreen(geometry.Point2D{X: v.zero.X + ZeroMarkerRadius, Y: v.zero.Y + ZeroMarkerRadius})
		drawEllipseOutline(out, geometry.NewRectFromPoints(tl, br), color.RGBA{R: 244, G: 67, B: 54, A: 255})
	}
}

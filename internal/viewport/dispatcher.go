package viewport

import (
	"math"

	"scratch-view/pkg/geometry"
)

// MouseButton identifies a physical mouse button in a binding. ButtonNone
// disables the interaction bound to it.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// String returns a short button name for logging.
func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// regionZoomMinPixels is the minimum drag box edge, in screen pixels, for a
// region zoom. Smaller drags degrade to a plain click.
const regionZoomMinPixels = 3.0

// Config holds the user-configurable mouse bindings. Each button is
// independently disableable by setting it to ButtonNone; wheel zoom is
// disabled by a factor <= 1.
type Config struct {
	RegionZoomButton MouseButton
	ZoomOutButton    MouseButton
	PanButton        MouseButton
	AddROIButton     MouseButton
	WheelZoomFactor  float64
	AspectPolicy     AspectPolicy
}

// DefaultConfig mirrors the conventional bindings: left drags a zoom box,
// right pops the zoom stack (double click resets), middle pans. Presses on
// the AddROIButton are not consumed by the dispatcher; they reach the host
// through ButtonPressed, so the button must not collide with the zoom and
// pan bindings.
func DefaultConfig() Config {
	return Config{
		RegionZoomButton: ButtonLeft,
		ZoomOutButton:    ButtonRight,
		PanButton:        ButtonMiddle,
		AddROIButton:     ButtonNone,
		WheelZoomFactor:  1.25,
		AspectPolicy:     KeepAspectRatio,
	}
}

// State is the dispatcher's gesture state.
type State int

const (
	StateIdle State = iota
	StateRegionZooming
	StatePanning
)

// Host is the canvas-side surface the dispatcher drives. The host owns
// rubber-band rendering and cursor affordances; the dispatcher owns all
// geometry decisions.
type Host interface {
	// ViewportSize returns the widget's current pixel size.
	ViewportSize() geometry.Size
	// BeginRubberBand starts rendering a selection box anchored at the given
	// viewport pixel position.
	BeginRubberBand(at geometry.Point2D)
	// MoveRubberBand extends the selection box to the given pixel position.
	MoveRubberBand(to geometry.Point2D)
	// EndRubberBand stops rendering and returns the final selection box in
	// screen pixels.
	EndRubberBand() geometry.Rect
	// SetPanCursor toggles the closed-hand cursor while panning.
	SetPanCursor(active bool)
}

// Callbacks receive the dispatcher's notifications. Nil entries are skipped.
// Scene coordinates may fall outside the image when letterboxing leaves
// margin around it.
type Callbacks struct {
	ButtonPressed  func(btn MouseButton, scene geometry.Point2D)
	ButtonReleased func(btn MouseButton, scene geometry.Point2D)
	DoubleClicked  func(btn MouseButton, scene geometry.Point2D)
	// MousePosition reports the image pixel under the cursor, or
	// geometry.InvalidIndex outside the image.
	MousePosition func(idx geometry.PointInt)
	// ViewChanged fires after any zoom or pan mutation, with no payload.
	ViewChanged func()
}

// Dispatcher classifies the mouse event stream into zoom, pan and click
// interactions according to the configured bindings, and drives the zoom
// stack and pan controller. All methods are meant to be called from the UI
// event loop; the dispatcher is not safe for concurrent use.
type Dispatcher struct {
	cfg   Config
	host  Host
	stack *ZoomStack
	pan   *PanController
	cb    Callbacks

	state      State
	pressPixel geometry.Point2D
	lastPixel  geometry.Point2D
}

// NewDispatcher creates a dispatcher operating on the given stack.
func NewDispatcher(host Host, stack *ZoomStack, cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg:   cfg,
		host:  host,
		stack: stack,
		pan:   NewPanController(stack),
	}
}

// SetCallbacks replaces the notification callbacks.
func (d *Dispatcher) SetCallbacks(cb Callbacks) {
	d.cb = cb
}

// Config returns the current bindings.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// SetConfig replaces the bindings. Takes effect for the next gesture; the
// active gesture, if any, finishes under the old bindings.
func (d *Dispatcher) SetConfig(cfg Config) {
	d.cfg = cfg
}

// State returns the current gesture state.
func (d *Dispatcher) State() State {
	return d.state
}

// sceneAt maps a viewport pixel to scene coordinates for the current view.
func (d *Dispatcher) sceneAt(pixel geometry.Point2D) geometry.Point2D {
	return ScreenToScene(pixel, d.host.ViewportSize(), d.stack.CurrentView(), d.cfg.AspectPolicy)
}

// viewportSceneOrigin returns the scene-space top-left of the viewport,
// clipped to the scene bounds.
func (d *Dispatcher) viewportSceneOrigin() geometry.Point2D {
	visible := VisibleSceneRect(d.host.ViewportSize(), d.stack.CurrentView(), d.cfg.AspectPolicy)
	return visible.Intersect(d.stack.SceneBounds()).TopLeft()
}

func (d *Dispatcher) emitViewChanged() {
	if d.cb.ViewChanged != nil {
		d.cb.ViewChanged()
	}
}

// MousePressed handles a button press at the given viewport pixel position.
func (d *Dispatcher) MousePressed(btn MouseButton, pixel geometry.Point2D) {
	if d.state != StateIdle {
		// Consumed by the active interaction.
		return
	}

	if d.cfg.RegionZoomButton != ButtonNone && btn == d.cfg.RegionZoomButton {
		d.state = StateRegionZooming
		d.pressPixel = pixel
		d.host.BeginRubberBand(pixel)
		return
	}

	if d.cfg.ZoomOutButton != ButtonNone && btn == d.cfg.ZoomOutButton {
		if d.stack.PopZoom() {
			d.emitViewChanged()
		}
		return
	}

	if d.cfg.PanButton != ButtonNone && btn == d.cfg.PanButton {
		d.state = StatePanning
		d.pressPixel = pixel
		d.lastPixel = pixel
		d.host.SetPanCursor(true)
		d.pan.Begin(d.viewportSceneOrigin())
		return
	}

	if d.cb.ButtonPressed != nil {
		d.cb.ButtonPressed(btn, d.sceneAt(pixel))
	}
}

// MouseReleased handles a button release at the given viewport pixel
// position.
func (d *Dispatcher) MouseReleased(btn MouseButton, pixel geometry.Point2D) {
	if d.state == StateRegionZooming && btn == d.cfg.RegionZoomButton {
		band := d.host.EndRubberBand()
		d.state = StateIdle

		// Threshold is measured in screen pixels, before any scene clipping.
		boxW := math.Abs(pixel.X - d.pressPixel.X)
		boxH := math.Abs(pixel.Y - d.pressPixel.Y)
		if boxW >= regionZoomMinPixels && boxH >= regionZoomMinPixels {
			sceneRect := geometry.NewRectFromPoints(
				d.sceneAt(band.TopLeft()),
				d.sceneAt(band.BottomRight()),
			)
			if d.stack.PushRegionZoom(sceneRect) {
				d.emitViewChanged()
				return
			}
		}
		// Sub-threshold or invalid box: degrade to a plain click release.
		if d.cb.ButtonReleased != nil {
			d.cb.ButtonReleased(btn, d.sceneAt(pixel))
		}
		return
	}

	if d.state == StatePanning && btn == d.cfg.PanButton {
		d.panTo(pixel)
		d.pan.End()
		d.host.SetPanCursor(false)
		d.state = StateIdle
		if d.stack.Depth() > 0 {
			d.emitViewChanged()
		}
		return
	}

	if d.state == StateIdle && d.cb.ButtonReleased != nil {
		d.cb.ButtonReleased(btn, d.sceneAt(pixel))
	}
}

// MouseMoved handles pointer motion at the given viewport pixel position.
func (d *Dispatcher) MouseMoved(pixel geometry.Point2D) {
	switch d.state {
	case StatePanning:
		if d.panTo(pixel) {
			d.emitViewChanged()
		}
		return
	case StateRegionZooming:
		d.host.MoveRubberBand(pixel)
	}

	if d.cb.MousePosition != nil {
		idx := SceneToImageIndex(d.sceneAt(pixel), d.stack.SceneBounds())
		d.cb.MousePosition(idx)
	}
}

// panTo converts the pixel displacement since the last pan event to scene
// units and feeds the resulting viewport origin to the pan controller.
func (d *Dispatcher) panTo(pixel geometry.Point2D) bool {
	t := FitTransform(d.host.ViewportSize(), d.stack.CurrentView(), d.cfg.AspectPolicy)
	origin := d.pan.Origin().Add(geometry.Point2D{
		X: (pixel.X - d.lastPixel.X) / t.ScaleX,
		Y: (pixel.Y - d.lastPixel.Y) / t.ScaleY,
	})
	d.lastPixel = pixel
	return d.pan.Move(origin)
}

// MouseDoubleClicked handles a double click. The zoom-out button resets to
// the full image; any other button is reported to the host application.
func (d *Dispatcher) MouseDoubleClicked(btn MouseButton, pixel geometry.Point2D) {
	if d.cfg.ZoomOutButton != ButtonNone && btn == d.cfg.ZoomOutButton {
		if d.stack.Clear() {
			d.emitViewChanged()
		}
		return
	}
	if d.cb.DoubleClicked != nil {
		d.cb.DoubleClicked(btn, d.sceneAt(pixel))
	}
}

// Wheel handles a scroll wheel step; positive deltas zoom in. Wheel events
// are only honored while idle so they cannot fight an active drag.
func (d *Dispatcher) Wheel(deltaY float64) {
	if d.state != StateIdle {
		return
	}
	factor := d.cfg.WheelZoomFactor
	if factor <= 1 {
		return
	}

	var changed bool
	if deltaY > 0 {
		changed = d.stack.ZoomIn(factor)
	} else if deltaY < 0 {
		changed = d.stack.ZoomOut(factor)
	}
	if changed {
		d.emitViewChanged()
	}
}

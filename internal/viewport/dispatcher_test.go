package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratch-view/pkg/geometry"
)

// fakeHost implements Host with a simple rubber-band model: the band spans
// from its anchor to the last reported position, in screen pixels.
type fakeHost struct {
	size       geometry.Size
	anchor     geometry.Point2D
	band       geometry.Rect
	banding    bool
	panCursor  bool
	bandBegins int
}

func newFakeHost() *fakeHost {
	// Viewport matches the scene bounds used by the tests, so screen pixels
	// and scene units coincide under KeepAspectRatio.
	return &fakeHost{size: geometry.NewSize(1000, 500)}
}

func (h *fakeHost) ViewportSize() geometry.Size { return h.size }

func (h *fakeHost) BeginRubberBand(at geometry.Point2D) {
	h.anchor = at
	h.band = geometry.NewRectFromPoints(at, at)
	h.banding = true
	h.bandBegins++
}

func (h *fakeHost) MoveRubberBand(to geometry.Point2D) {
	h.band = geometry.NewRectFromPoints(h.anchor, to)
}

func (h *fakeHost) EndRubberBand() geometry.Rect {
	h.banding = false
	return h.band
}

func (h *fakeHost) SetPanCursor(active bool) { h.panCursor = active }

// recorder collects dispatcher notifications.
type recorder struct {
	pressed     []geometry.Point2D
	released    []geometry.Point2D
	doubles     []geometry.Point2D
	positions   []geometry.PointInt
	viewChanges int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		ButtonPressed:  func(_ MouseButton, p geometry.Point2D) { r.pressed = append(r.pressed, p) },
		ButtonReleased: func(_ MouseButton, p geometry.Point2D) { r.released = append(r.released, p) },
		DoubleClicked:  func(_ MouseButton, p geometry.Point2D) { r.doubles = append(r.doubles, p) },
		MousePosition:  func(idx geometry.PointInt) { r.positions = append(r.positions, idx) },
		ViewChanged:    func() { r.viewChanges++ },
	}
}

func newTestDispatcher() (*Dispatcher, *ZoomStack, *fakeHost, *recorder) {
	host := newFakeHost()
	stack := NewZoomStack(testBounds())
	d := NewDispatcher(host, stack, DefaultConfig())
	rec := &recorder{}
	d.SetCallbacks(rec.callbacks())
	return d, stack, host, rec
}

func TestRegionZoomDrag(t *testing.T) {
	d, stack, host, rec := newTestDispatcher()

	d.MousePressed(ButtonLeft, geometry.NewPoint2D(100, 100))
	assert.Equal(t, StateRegionZooming, d.State())
	assert.True(t, host.banding)

	d.MouseMoved(geometry.NewPoint2D(300, 200))
	d.MouseReleased(ButtonLeft, geometry.NewPoint2D(300, 200))

	assert.Equal(t, StateIdle, d.State())
	assert.False(t, host.banding)
	assert.Equal(t, 1, stack.Depth())
	assert.True(t, stack.CurrentView().ApproxEq(geometry.NewRect(100, 100, 200, 100), 1e-9))
	assert.Equal(t, 1, rec.viewChanges)
	assert.Empty(t, rec.released)
}

func TestRegionZoomBelowThresholdDegradesToClick(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()

	// 2x1 screen pixels: below the 3x3 threshold.
	d.MousePressed(ButtonLeft, geometry.NewPoint2D(10, 10))
	d.MouseMoved(geometry.NewPoint2D(12, 11))
	d.MouseReleased(ButtonLeft, geometry.NewPoint2D(12, 11))

	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, 0, rec.viewChanges)
	require.Len(t, rec.released, 1)
	assert.InDelta(t, 12, rec.released[0].X, 1e-9)
	assert.InDelta(t, 11, rec.released[0].Y, 1e-9)
}

func TestRegionZoomCoveringSceneDegradesToClick(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()

	// A drag over the whole viewport selects the full scene, which is not a
	// zoom; the release degrades to a click.
	d.MousePressed(ButtonLeft, geometry.NewPoint2D(0, 0))
	d.MouseMoved(geometry.NewPoint2D(1000, 500))
	d.MouseReleased(ButtonLeft, geometry.NewPoint2D(1000, 500))

	assert.Equal(t, 0, stack.Depth())
	assert.Len(t, rec.released, 1)
}

func TestZoomOutClickPopsStack(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()
	require.True(t, stack.PushRegionZoom(geometry.NewRect(100, 100, 200, 100)))

	d.MousePressed(ButtonRight, geometry.NewPoint2D(50, 50))
	d.MouseReleased(ButtonRight, geometry.NewPoint2D(50, 50))

	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, 1, rec.viewChanges)
	// Consumed by the zoom-out interaction: no press notification.
	assert.Empty(t, rec.pressed)
}

func TestZoomOutClickWhenFullyOutEmitsNothing(t *testing.T) {
	d, _, _, rec := newTestDispatcher()

	d.MousePressed(ButtonRight, geometry.NewPoint2D(50, 50))
	assert.Equal(t, 0, rec.viewChanges)
}

func TestZoomOutDoubleClickClearsStack(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()
	require.True(t, stack.PushRegionZoom(geometry.NewRect(100, 100, 400, 200)))
	require.True(t, stack.PushRegionZoom(geometry.NewRect(150, 120, 200, 100)))

	d.MouseDoubleClicked(ButtonRight, geometry.NewPoint2D(50, 50))

	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, testBounds(), stack.CurrentView())
	assert.Equal(t, 1, rec.viewChanges)
	assert.Empty(t, rec.doubles)
}

func TestDoubleClickOtherButtonNotifies(t *testing.T) {
	d, _, _, rec := newTestDispatcher()

	d.MouseDoubleClicked(ButtonLeft, geometry.NewPoint2D(40, 30))
	require.Len(t, rec.doubles, 1)
	assert.InDelta(t, 40, rec.doubles[0].X, 1e-9)
}

func TestPanGesture(t *testing.T) {
	d, stack, host, rec := newTestDispatcher()
	require.True(t, stack.PushRegionZoom(geometry.NewRect(0, 0, 500, 250)))

	d.MousePressed(ButtonMiddle, geometry.NewPoint2D(400, 400))
	assert.Equal(t, StatePanning, d.State())
	assert.True(t, host.panCursor)

	// The 500x250 view fills the 1000x500 viewport at scale 2: a 20x10 pixel
	// drag is a 10x5 scene-unit displacement, and the view rect moves the
	// opposite way so the image follows the pointer.
	d.MouseMoved(geometry.NewPoint2D(380, 390))
	assert.True(t, stack.CurrentView().ApproxEq(geometry.NewRect(10, 5, 500, 250), 1e-9))
	assert.Equal(t, 1, rec.viewChanges)

	d.MouseReleased(ButtonMiddle, geometry.NewPoint2D(380, 390))
	assert.Equal(t, StateIdle, d.State())
	assert.False(t, host.panCursor)
	assert.Equal(t, 2, rec.viewChanges)
}

func TestPanWhenFullyZoomedOutChangesNothing(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()

	d.MousePressed(ButtonMiddle, geometry.NewPoint2D(400, 400))
	d.MouseMoved(geometry.NewPoint2D(300, 300))
	d.MouseReleased(ButtonMiddle, geometry.NewPoint2D(300, 300))

	assert.Equal(t, testBounds(), stack.CurrentView())
	assert.Equal(t, 0, rec.viewChanges)
}

func TestWheelZoomsOnlyWhenIdle(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()

	d.Wheel(1)
	assert.Equal(t, 1, stack.Depth())
	assert.True(t, stack.CurrentView().ApproxEq(geometry.NewRect(100, 50, 800, 400), 1e-9))
	assert.Equal(t, 1, rec.viewChanges)

	d.Wheel(-1)
	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, 2, rec.viewChanges)

	// Ignored mid-gesture.
	d.MousePressed(ButtonLeft, geometry.NewPoint2D(10, 10))
	d.Wheel(1)
	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, 2, rec.viewChanges)
}

func TestWheelDisabledByFactor(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()
	cfg := d.Config()
	cfg.WheelZoomFactor = 1
	d.SetConfig(cfg)

	d.Wheel(1)
	assert.Equal(t, 0, stack.Depth())
	assert.Equal(t, 0, rec.viewChanges)
}

func TestDisabledBindingFallsThroughToClick(t *testing.T) {
	d, stack, _, rec := newTestDispatcher()
	cfg := d.Config()
	cfg.RegionZoomButton = ButtonNone
	d.SetConfig(cfg)

	d.MousePressed(ButtonLeft, geometry.NewPoint2D(100, 100))
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 0, stack.Depth())
	require.Len(t, rec.pressed, 1)
	assert.InDelta(t, 100, rec.pressed[0].X, 1e-9)
}

func TestIdleMoveReportsPixelIndex(t *testing.T) {
	d, _, _, rec := newTestDispatcher()

	d.MouseMoved(geometry.NewPoint2D(250.5, 125.5))
	require.Len(t, rec.positions, 1)
	assert.Equal(t, geometry.PointInt{X: 250, Y: 125}, rec.positions[0])
}

func TestMoveDuringRegionZoomStillReportsPosition(t *testing.T) {
	d, _, host, rec := newTestDispatcher()

	d.MousePressed(ButtonLeft, geometry.NewPoint2D(100, 100))
	d.MouseMoved(geometry.NewPoint2D(140.5, 160.5))

	assert.True(t, host.band.ApproxEq(geometry.NewRect(100, 100, 40.5, 60.5), 1e-9))
	require.Len(t, rec.positions, 1)
	assert.Equal(t, geometry.PointInt{X: 140, Y: 160}, rec.positions[0])
}

func TestPressDuringGestureIsConsumed(t *testing.T) {
	d, _, _, rec := newTestDispatcher()

	d.MousePressed(ButtonLeft, geometry.NewPoint2D(100, 100))
	d.MousePressed(ButtonMiddle, geometry.NewPoint2D(120, 120))

	assert.Equal(t, StateRegionZooming, d.State())
	assert.Empty(t, rec.pressed)
}

package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratch-view/pkg/geometry"
)

func TestPanTranslatesTopRect(t *testing.T) {
	z := NewZoomStack(testBounds())
	require.True(t, z.PushRegionZoom(geometry.NewRect(0, 0, 500, 250)))
	p := NewPanController(z)

	p.Begin(geometry.NewPoint2D(0, 0))
	assert.True(t, p.Move(geometry.NewPoint2D(-20, -10)))
	assert.Equal(t, geometry.NewRect(20, 10, 500, 250), z.CurrentView())
	p.End()
	assert.False(t, p.Active())
}

func TestPanComposesSuccessiveMoves(t *testing.T) {
	z := NewZoomStack(testBounds())
	require.True(t, z.PushRegionZoom(geometry.NewRect(0, 0, 500, 250)))
	p := NewPanController(z)

	p.Begin(geometry.NewPoint2D(0, 0))
	require.True(t, p.Move(geometry.NewPoint2D(-20, -10)))
	require.True(t, p.Move(geometry.NewPoint2D(-40, -20)))
	// Deltas compose relative to the re-recorded origin, not the start.
	assert.Equal(t, geometry.NewRect(40, 20, 500, 250), z.CurrentView())
}

func TestPanClampsToSceneBounds(t *testing.T) {
	z := NewZoomStack(testBounds())
	require.True(t, z.PushRegionZoom(geometry.NewRect(0, 0, 500, 250)))
	p := NewPanController(z)

	p.Begin(geometry.NewPoint2D(0, 0))
	require.True(t, p.Move(geometry.NewPoint2D(-600, -300)))
	assert.Equal(t, geometry.NewRect(600, 300, 400, 200), z.CurrentView())
}

func TestPanNoOpWhenFullyZoomedOut(t *testing.T) {
	z := NewZoomStack(testBounds())
	p := NewPanController(z)

	p.Begin(geometry.NewPoint2D(0, 0))
	assert.False(t, p.Move(geometry.NewPoint2D(-20, -10)))
	assert.Equal(t, testBounds(), z.CurrentView())
}

func TestPanMoveWithoutBeginIsIgnored(t *testing.T) {
	z := NewZoomStack(testBounds())
	require.True(t, z.PushRegionZoom(geometry.NewRect(0, 0, 500, 250)))
	p := NewPanController(z)

	assert.False(t, p.Move(geometry.NewPoint2D(-20, -10)))
	assert.Equal(t, geometry.NewRect(0, 0, 500, 250), z.CurrentView())
}

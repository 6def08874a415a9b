package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratch-view/pkg/geometry"
)

func TestNewHasDefaultScale(t *testing.T) {
	c := New()
	name, v := c.Current()
	assert.Equal(t, DefaultScaleName, name)
	assert.InDelta(t, DefaultScaleUmPerPixel, v, 1e-9)
}

func TestSetAndSelectScale(t *testing.T) {
	c := New()
	require.NoError(t, c.SetScale("zeiss-10x", 0.9))
	require.NoError(t, c.Select("zeiss-10x"))

	name, v := c.Current()
	assert.Equal(t, "zeiss-10x", name)
	assert.InDelta(t, 0.9, v, 1e-9)
	assert.Equal(t, []string{"olympus", "zeiss-10x"}, c.Names())
}

func TestSetScaleRejectsBadValues(t *testing.T) {
	c := New()
	assert.Error(t, c.SetScale("", 0.5))
	assert.Error(t, c.SetScale("bad", 0))
	assert.Error(t, c.SetScale("bad", -1))
}

func TestRemoveScale(t *testing.T) {
	c := New()
	require.NoError(t, c.SetScale("other", 1.5))
	require.NoError(t, c.Select("other"))

	// Removing the current scale falls back to a remaining one.
	require.NoError(t, c.RemoveScale("other"))
	name, _ := c.Current()
	assert.Equal(t, "olympus", name)

	assert.Error(t, c.RemoveScale("olympus"), "last scale must stay")
	assert.Error(t, c.RemoveScale("missing"))
}

func TestRestore(t *testing.T) {
	c := New()
	require.NoError(t, c.Restore(map[string]float64{"a": 0.5, "b": 2}, "b"))
	name, v := c.Current()
	assert.Equal(t, "b", name)
	assert.InDelta(t, 2, v, 1e-9)

	assert.Error(t, c.Restore(nil, "a"))
	assert.Error(t, c.Restore(map[string]float64{"a": 0.5}, "missing"))
	assert.Error(t, c.Restore(map[string]float64{"a": -0.5}, "a"))
}

func TestToMicronsWithZeroPoint(t *testing.T) {
	c := New()
	require.NoError(t, c.SetScale("unit", 0.5))
	require.NoError(t, c.Select("unit"))

	// Without a zero point, positions are relative to the image origin.
	um := c.ToMicrons(geometry.Point2D{X: 100, Y: 40})
	assert.InDelta(t, 50, um.X, 1e-9)
	assert.InDelta(t, 20, um.Y, 1e-9)

	c.SetZero(geometry.Point2D{X: 60, Y: 40})
	um = c.ToMicrons(geometry.Point2D{X: 100, Y: 40})
	assert.InDelta(t, 20, um.X, 1e-9)
	assert.InDelta(t, 0, um.Y, 1e-9)

	_, ok := c.Zero()
	assert.True(t, ok)
	c.ClearZero()
	_, ok = c.Zero()
	assert.False(t, ok)
}

func TestToMicronsRounds(t *testing.T) {
	c := New()
	um := c.ToMicrons(geometry.Point2D{X: 3, Y: 7})
	// 3 * 0.44 = 1.32, 7 * 0.44 = 3.08, already two decimals.
	assert.Equal(t, 1.32, um.X)
	assert.Equal(t, 3.08, um.Y)
}

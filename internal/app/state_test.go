package app

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratch-view/pkg/geometry"
)

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())
	return path
}

func TestOpenPathsDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeTestImage(t, dir, "scan.png")
	csvPath := filepath.Join(dir, "scan.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x,fIn\n0,100\n25.6,200\n"), 0o644))

	s := NewState()
	var imageEvents, curveEvents int
	s.On(EventImageLoaded, func(interface{}) { imageEvents++ })
	s.On(EventCurveLoaded, func(interface{}) { curveEvents++ })

	require.NoError(t, s.OpenPaths([]string{imgPath, csvPath}))
	assert.Equal(t, 1, imageEvents)
	assert.Equal(t, 1, curveEvents)
	assert.NotNil(t, s.Document())
	assert.NotNil(t, s.ForceCurve())
	assert.Equal(t, dir, s.LastDir())
}

func TestOpenPathsReportsUnknownExtension(t *testing.T) {
	s := NewState()
	var errs int
	s.On(EventError, func(interface{}) { errs++ })

	err := s.OpenPaths([]string{"notes.txt"})
	assert.Error(t, err)
	assert.Equal(t, 1, errs)
}

func TestLoadImageResetsZeroAndROIs(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "a.png")

	s := NewState()
	s.SetZero(geometry.Point2D{X: 5, Y: 5})
	require.NoError(t, s.LoadImage(path))

	_, ok := s.Calibration.Zero()
	assert.False(t, ok)
	assert.Zero(t, s.ROIs.Len())
}

func TestToggleMark(t *testing.T) {
	s := NewState()
	var last []float64
	s.On(EventMarksChanged, func(data interface{}) { last = data.([]float64) })

	s.ToggleMark(100)
	s.ToggleMark(300)
	assert.Equal(t, []float64{100, 300}, s.Marks())

	// Toggling within the proximity removes the nearest mark.
	s.ToggleMark(110)
	assert.Equal(t, []float64{300}, s.Marks())
	assert.Equal(t, []float64{300}, last)

	// Outside the proximity a new mark is added instead.
	s.ToggleMark(321)
	assert.Equal(t, []float64{300, 321}, s.Marks())

	s.ClearMarks()
	assert.Empty(t, s.Marks())
}

func TestPositionAt(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Calibration.SetScale("unit", 1))
	require.NoError(t, s.Calibration.Select("unit"))
	s.SetZero(geometry.Point2D{X: 10, Y: 0})

	pos := s.PositionAt(geometry.PointInt{X: 12, Y: 3})
	assert.Equal(t, geometry.PointInt{X: 12, Y: 3}, pos.Pixel)
	assert.InDelta(t, 2, pos.Um.X, 1e-9)
	assert.InDelta(t, 3, pos.Um.Y, 1e-9)
	assert.Zero(t, pos.ForceN, "no curve loaded")
}

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRectNormalizesNegativeExtents(t *testing.T) {
	r := NewRect(10, 20, -4, -6)
	assert.Equal(t, Rect{X: 6, Y: 14, Width: 4, Height: 6}, r)
}

func TestNewRectFromPoints(t *testing.T) {
	r := NewRectFromPoints(Point2D{X: 5, Y: 9}, Point2D{X: 1, Y: 3})
	assert.Equal(t, Rect{X: 1, Y: 3, Width: 4, Height: 6}, r)
}

func TestRectIntersect(t *testing.T) {
	bounds := NewRect(0, 0, 1000, 500)

	inside := NewRect(100, 100, 200, 100)
	assert.Equal(t, inside, inside.Intersect(bounds))

	overhang := NewRect(900, 400, 300, 300)
	assert.Equal(t, Rect{X: 900, Y: 400, Width: 100, Height: 100}, overhang.Intersect(bounds))

	outside := NewRect(2000, 2000, 10, 10)
	assert.True(t, outside.Intersect(bounds).IsEmpty())
}

func TestRectCenteredAt(t *testing.T) {
	r := NewRect(0, 0, 800, 400).CenteredAt(Point2D{X: 500, Y: 250})
	assert.Equal(t, Rect{X: 100, Y: 50, Width: 800, Height: 400}, r)
	assert.Equal(t, Point2D{X: 500, Y: 250}, r.Center())
}

func TestRectTranslate(t *testing.T) {
	r := NewRect(0, 0, 500, 250).Translate(Point2D{X: 20, Y: 10})
	assert.Equal(t, Rect{X: 20, Y: 10, Width: 500, Height: 250}, r)
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.True(t, PointInPolygon(Point2D{X: 5, Y: 5}, square))
	assert.False(t, PointInPolygon(Point2D{X: 15, Y: 5}, square))
	assert.False(t, PointInPolygon(Point2D{X: 5, Y: 5}, square[:2]))
}

func TestDistanceToSegment(t *testing.T) {
	a, b := Point2D{X: 0, Y: 0}, Point2D{X: 10, Y: 0}
	assert.InDelta(t, 3.0, DistanceToSegment(Point2D{X: 5, Y: 3}, a, b), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Point2D{X: -3, Y: 4}, a, b), 1e-9)
	assert.InDelta(t, 2.0, DistanceToSegment(Point2D{X: 2, Y: 2}, a, a), 1e-9)
}

package roi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratch-view/pkg/geometry"
)

func TestEllipseContains(t *testing.T) {
	e := NewEllipse(geometry.NewPoint2D(100, 50), 20, 10)

	assert.True(t, e.Contains(geometry.NewPoint2D(100, 50)))
	assert.True(t, e.Contains(geometry.NewPoint2D(119, 50)))
	assert.False(t, e.Contains(geometry.NewPoint2D(119, 59)))
	assert.False(t, e.Contains(geometry.NewPoint2D(121, 50)))
}

func TestSpotBounds(t *testing.T) {
	s := NewSpot(geometry.NewPoint2D(40, 40), 25)
	assert.Equal(t, geometry.NewRect(15, 15, 50, 50), s.Bounds)
}

func TestVerticalLineHit(t *testing.T) {
	l := NewVerticalLine(200, 500)

	assert.True(t, l.Contains(geometry.NewPoint2D(200, 250)))
	assert.True(t, l.Contains(geometry.NewPoint2D(203, 0)))
	assert.False(t, l.Contains(geometry.NewPoint2D(210, 250)))
	assert.False(t, l.Contains(geometry.NewPoint2D(200, 501)))
}

func TestPolygonContains(t *testing.T) {
	p := NewPolygon([]geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}})
	require.NotNil(t, p)

	assert.True(t, p.Contains(geometry.NewPoint2D(50, 50)))
	assert.False(t, p.Contains(geometry.NewPoint2D(150, 50)))
	assert.Equal(t, geometry.NewRect(0, 0, 100, 100), p.Bounds)

	assert.Nil(t, NewPolygon([]geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}

func TestTranslateRespectsMovable(t *testing.T) {
	r := NewRect(geometry.NewRect(10, 10, 20, 20))

	r.Translate(geometry.NewPoint2D(5, 5))
	assert.Equal(t, geometry.NewRect(10, 10, 20, 20), r.Bounds)

	r.Movable = true
	r.Translate(geometry.NewPoint2D(5, 5))
	assert.Equal(t, geometry.NewRect(15, 15, 20, 20), r.Bounds)
}

func TestListHitTestTopmostWins(t *testing.T) {
	l := NewList()
	l.Add(
		NewRect(geometry.NewRect(0, 0, 100, 100)),
		NewRect(geometry.NewRect(50, 50, 100, 100)),
	)

	var selected []int
	l.OnSelected = func(i int) { selected = append(selected, i) }

	// Overlap region: the later (topmost) ROI wins.
	assert.Equal(t, 1, l.HitTest(geometry.NewPoint2D(75, 75)))
	assert.Equal(t, 0, l.HitTest(geometry.NewPoint2D(10, 10)))
	assert.Equal(t, -1, l.HitTest(geometry.NewPoint2D(300, 300)))
	assert.Equal(t, []int{1, 0}, selected)
}

func TestListRemoveAndClear(t *testing.T) {
	l := NewList()
	a := NewVerticalLine(10, 100)
	b := NewVerticalLine(20, 100)
	c := NewVerticalLine(30, 100)
	l.Add(a, b, c)

	l.Remove(1)
	require.Equal(t, 2, l.Len())
	assert.Same(t, a, l.At(0))
	assert.Same(t, c, l.At(1))

	l.Remove(17) // ignored
	assert.Equal(t, 2, l.Len())

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.At(0))
}

func TestSetMovable(t *testing.T) {
	l := NewList()
	l.Add(NewSpot(geometry.NewPoint2D(0, 0), 5), NewRect(geometry.NewRect(0, 0, 1, 1)))

	l.SetMovable(true)
	for _, r := range l.All() {
		assert.True(t, r.Movable)
	}
}

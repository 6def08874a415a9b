// Package roi manages user-placed regions of interest anchored to image
// scene coordinates: ellipses, rectangles, vertical marker lines and
// polygons. The viewer draws them; this package owns shape state, hit
// testing and selection.
package roi

import (
	"math"

	"scratch-view/pkg/geometry"
)

// Kind identifies the shape of an ROI.
type Kind int

const (
	KindEllipse Kind = iota
	KindRect
	KindLine
	KindPolygon
)

// String returns the shape name.
func (k Kind) String() string {
	switch k {
	case KindEllipse:
		return "ellipse"
	case KindRect:
		return "rect"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// ROI is a user-placed overlay shape in scene coordinates.
type ROI struct {
	Kind Kind

	// Bounds is the shape's bounding box: the full extent for ellipses and
	// rects, degenerate (zero width) for vertical lines.
	Bounds geometry.Rect

	// Vertices holds polygon corners; unused for other kinds.
	Vertices []geometry.Point2D

	Movable bool
}

// NewEllipse creates an elliptical ROI centered at c with the given radii.
func NewEllipse(c geometry.Point2D, rx, ry float64) *ROI {
	return &ROI{
		Kind:   KindEllipse,
		Bounds: geometry.NewRect(c.X-rx, c.Y-ry, 2*rx, 2*ry),
	}
}

// NewSpot creates a circular ROI of the given radius, the marker used for
// zero points and detected feature positions.
func NewSpot(c geometry.Point2D, radius float64) *ROI {
	return NewEllipse(c, radius, radius)
}

// NewRect creates a rectangular ROI.
func NewRect(r geometry.Rect) *ROI {
	return &ROI{Kind: KindRect, Bounds: r}
}

// NewVerticalLine creates a full-height vertical line ROI at scene x,
// spanning the given scene height.
func NewVerticalLine(x, height float64) *ROI {
	return &ROI{Kind: KindLine, Bounds: geometry.NewRect(x, 0, 0, height)}
}

// NewPolygon creates a polygon ROI from at least three vertices.
// Returns nil for fewer.
func NewPolygon(vertices []geometry.Point2D) *ROI {
	if len(vertices) < 3 {
		return nil
	}
	vs := make([]geometry.Point2D, len(vertices))
	copy(vs, vertices)
	return &ROI{
		Kind:     KindPolygon,
		Bounds:   geometry.BoundingBox(vs),
		Vertices: vs,
	}
}

// lineHitSlop is the distance, in scene units, within which a click counts
// as hitting a line ROI.
const lineHitSlop = 4.0

// Contains reports whether the scene point hits the shape.
func (r *ROI) Contains(p geometry.Point2D) bool {
	switch r.Kind {
	case KindEllipse:
		c := r.Bounds.Center()
		rx := r.Bounds.Width / 2
		ry := r.Bounds.Height / 2
		if rx <= 0 || ry <= 0 {
			return false
		}
		dx := (p.X - c.X) / rx
		dy := (p.Y - c.Y) / ry
		return dx*dx+dy*dy <= 1
	case KindRect:
		return r.Bounds.Contains(p)
	case KindLine:
		return math.Abs(p.X-r.Bounds.X) <= lineHitSlop &&
			p.Y >= r.Bounds.Y && p.Y <= r.Bounds.Y+r.Bounds.Height
	case KindPolygon:
		return geometry.PointInPolygon(p, r.Vertices)
	default:
		return false
	}
}

// Translate moves the shape by delta. Only movable ROIs are affected.
func (r *ROI) Translate(delta geometry.Point2D) {
	if !r.Movable {
		return
	}
	r.Bounds = r.Bounds.Translate(delta)
	for i := range r.Vertices {
		r.Vertices[i] = r.Vertices[i].Add(delta)
	}
}

// List is the ordered collection of ROIs on one image.
type List struct {
	rois []*ROI

	// OnSelected is called with the index of an ROI hit by HitTest.
	OnSelected func(index int)
}

// NewList creates an empty ROI list.
func NewList() *List {
	return &List{}
}

// Add appends ROIs to the list; nil entries are skipped.
func (l *List) Add(rois ...*ROI) {
	for _, r := range rois {
		if r != nil {
			l.rois = append(l.rois, r)
		}
	}
}

// Remove deletes the ROI at the given index; out-of-range indices are
// ignored.
func (l *List) Remove(index int) {
	if index < 0 || index >= len(l.rois) {
		return
	}
	l.rois = append(l.rois[:index], l.rois[index+1:]...)
}

// Clear removes all ROIs.
func (l *List) Clear() {
	l.rois = nil
}

// Len returns the number of ROIs.
func (l *List) Len() int {
	return len(l.rois)
}

// At returns the ROI at the given index, or nil if out of range.
func (l *List) At(index int) *ROI {
	if index < 0 || index >= len(l.rois) {
		return nil
	}
	return l.rois[index]
}

// All returns the ROIs in draw order. The slice is shared; callers must not
// mutate it.
func (l *List) All() []*ROI {
	return l.rois
}

// SetMovable toggles mouse-dragging for every ROI in the list.
func (l *List) SetMovable(movable bool) {
	for _, r := range l.rois {
		r.Movable = movable
	}
}

// HitTest finds the topmost ROI containing the scene point. It returns the
// index and fires OnSelected, or returns -1 when nothing is hit.
func (l *List) HitTest(p geometry.Point2D) int {
	for i := len(l.rois) - 1; i >= 0; i-- {
		if l.rois[i].Contains(p) {
			if l.OnSelected != nil {
				l.OnSelected(i)
			}
			return i
		}
	}
	return -1
}

// Package plot renders the force-vs-displacement curve alongside the
// micrograph: measured force as a solid line, the setpoint dashed, with a
// hover cursor tied to the image position and user-marked displacements.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"scratch-view/internal/curve"
)

const (
	marginLeft   = 48
	marginRight  = 12
	marginTop    = 12
	marginBottom = 28
)

var (
	backColor    = color.RGBA{R: 28, G: 28, B: 28, A: 255}
	frameColor   = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	forceColor   = color.RGBA{R: 66, G: 165, B: 245, A: 255}
	setColor     = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	cursorColor  = color.RGBA{R: 244, G: 67, B: 54, A: 255}
	markColor    = color.RGBA{R: 255, G: 152, B: 0, A: 255}
)

// Plot displays a loaded force curve.
type Plot struct {
	widget.BaseWidget

	curve  *curve.Curve
	cursor *float64 // hovered displacement, micrometers
	marks  []float64

	raster *fynecanvas.Raster

	// OnHover reports the displacement and force under the pointer.
	OnHover func(um, forceN float64)
	// OnMark fires when the user right-clicks a displacement on the plot;
	// marking near an existing line removes it instead.
	OnMark func(um float64)
}

var (
	_ desktop.Hoverable      = (*Plot)(nil)
	_ fyne.SecondaryTappable = (*Plot)(nil)
)

// New creates an empty plot.
func New() *Plot {
	p := &Plot{}
	p.raster = fynecanvas.NewRaster(p.draw)
	p.raster.SetMinSize(fyne.NewSize(400, 160))
	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget.
func (p *Plot) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

// SetCurve replaces the displayed measurement.
func (p *Plot) SetCurve(c *curve.Curve) {
	p.curve = c
	p.cursor = nil
	p.Refresh()
}

// SetCursor moves the displacement cursor, nil to hide it.
func (p *Plot) SetCursor(um *float64) {
	p.cursor = um
	p.Refresh()
}

// SetMarks replaces the marked displacements.
func (p *Plot) SetMarks(marks []float64) {
	p.marks = append(p.marks[:0:0], marks...)
	p.Refresh()
}

// axes describes the data-to-pixel mapping of the current frame.
type axes struct {
	x0, y0, x1, y1 int // plot frame, pixels
	umMin, umMax   float64
	fMin, fMax     float64
}

func (p *Plot) makeAxes(w, h int) (axes, bool) {
	a := axes{
		x0: marginLeft, y0: marginTop,
		x1: w - marginRight, y1: h - marginBottom,
	}
	if p.curve == nil || p.curve.Len() < 2 || a.x1 <= a.x0 || a.y1 <= a.y0 {
		return a, false
	}
	a.umMin, a.umMax = p.curve.UmRange()
	a.fMin, a.fMax = p.curve.ForceRange()
	if a.umMax <= a.umMin {
		return a, false
	}
	if a.fMax <= a.fMin {
		a.fMax = a.fMin + 1
	}
	return a, true
}

func (a axes) xAt(um float64) int {
	t := (um - a.umMin) / (a.umMax - a.umMin)
	return a.x0 + int(math.Round(t*float64(a.x1-a.x0)))
}

func (a axes) yAt(f float64) int {
	t := (f - a.fMin) / (a.fMax - a.fMin)
	return a.y1 - int(math.Round(t*float64(a.y1-a.y0)))
}

// umAt inverts xAt for pointer positions, clamped to the data range.
func (a axes) umAt(x int) float64 {
	if a.x1 <= a.x0 {
		return a.umMin
	}
	t := float64(x-a.x0) / float64(a.x1-a.x0)
	um := a.umMin + t*(a.umMax-a.umMin)
	return math.Min(math.Max(um, a.umMin), a.umMax)
}

func (p *Plot) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, backColor)
		}
	}

	a, ok := p.makeAxes(w, h)
	drawFrame(out, a)
	if !ok {
		return out
	}

	if p.curve.FSet != nil {
		drawSeries(out, a, p.curve.Um, p.curve.FSet, setColor, true)
	}
	drawSeries(out, a, p.curve.Um, p.curve.FIn, forceColor, false)

	for _, m := range p.marks {
		if m >= a.umMin && m <= a.umMax {
			drawVLine(out, a.xAt(m), a.y0, a.y1, markColor)
		}
	}
	if p.cursor != nil && *p.cursor >= a.umMin && *p.cursor <= a.umMax {
		drawVLine(out, a.xAt(*p.cursor), a.y0, a.y1, cursorColor)
	}
	return out
}

func drawFrame(out *image.RGBA, a axes) {
	drawHSeg(out, a.x0, a.x1, a.y1, frameColor)
	drawVLine(out, a.x0, a.y0, a.y1, frameColor)
}

func drawVLine(out *image.RGBA, x, y0, y1 int, col color.RGBA) {
	b := out.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := y0; y <= y1; y++ {
		if y >= b.Min.Y && y < b.Max.Y {
			out.SetRGBA(x, y, col)
		}
	}
}

func drawHSeg(out *image.RGBA, x0, x1, y int, col color.RGBA) {
	b := out.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := x0; x <= x1; x++ {
		if x >= b.Min.X && x < b.Max.X {
			out.SetRGBA(x, y, col)
		}
	}
}

// drawSeries draws a polyline through the samples, optionally dashed.
func drawSeries(out *image.RGBA, a axes, xs, ys []float64, col color.RGBA, dashed bool) {
	px, py := a.xAt(xs[0]), a.yAt(ys[0])
	step := 0
	for i := 1; i < len(xs); i++ {
		x, y := a.xAt(xs[i]), a.yAt(ys[i])
		if !dashed || step%8 < 5 {
			drawSeg(out, px, py, x, y, col)
		}
		step++
		px, py = x, y
	}
}

func drawSeg(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	b := out.Bounds()
	dx, dy := x2-x1, y2-y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		if x1 >= b.Min.X && x1 < b.Max.X && y1 >= b.Min.Y && y1 < b.Max.Y {
			out.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// pointerUm maps a pointer position to a displacement, using the widget
// size the events are delivered in.
func (p *Plot) pointerUm(pos fyne.Position) (float64, bool) {
	s := p.Size()
	a, ok := p.makeAxes(int(s.Width), int(s.Height))
	if !ok {
		return 0, false
	}
	x := int(pos.X)
	if x < a.x0 || x > a.x1 {
		return 0, false
	}
	return a.umAt(x), true
}

// MouseIn implements desktop.Hoverable.
func (p *Plot) MouseIn(ev *desktop.MouseEvent) {
	p.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (p *Plot) MouseMoved(ev *desktop.MouseEvent) {
	um, ok := p.pointerUm(ev.Position)
	if !ok {
		return
	}
	if p.OnHover != nil {
		p.OnHover(um, p.curve.ForceAt(um))
	}
	p.SetCursor(&um)
}

// MouseOut implements desktop.Hoverable.
func (p *Plot) MouseOut() {
	p.SetCursor(nil)
}

// TappedSecondary implements fyne.SecondaryTappable.
func (p *Plot) TappedSecondary(ev *fyne.PointEvent) {
	if p.OnMark == nil {
		return
	}
	if um, ok := p.pointerUm(ev.Position); ok {
		p.OnMark(um)
	}
}

// FormatReadout renders the status line for a displacement and force.
func FormatReadout(um, forceN float64) string {
	return fmt.Sprintf("x=%.2f µm  F=%.3f N", um, forceN)
}

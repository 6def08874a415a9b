package viewer

import (
	"image"
	"image/color"
	"math"

	"scratch-view/internal/roi"
	"scratch-view/pkg/geometry"
)

func fillRect(out *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(out.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetRGBA(x, y, col)
		}
	}
}

// drawLine draws a Bresenham line clipped to the output bounds.
func drawLine(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := out.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		if x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			out.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			break
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

func drawRectOutline(out *image.RGBA, r geometry.Rect, col color.RGBA) {
	x1, y1 := int(math.Round(r.X)), int(math.Round(r.Y))
	x2, y2 := int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height))
	drawLine(out, x1, y1, x2, y1, col)
	drawLine(out, x2, y1, x2, y2, col)
	drawLine(out, x2, y2, x1, y2, col)
	drawLine(out, x1, y2, x1, y1, col)
}

// drawEllipseOutline draws the ellipse inscribed in r as a polyline.
func drawEllipseOutline(out *image.RGBA, r geometry.Rect, col color.RGBA) {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	rx, ry := r.Width/2, r.Height/2
	if rx <= 0 || ry <= 0 {
		return
	}

	const segments = 64
	px := cx + rx
	py := cy
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := cx + rx*math.Cos(a)
		y := cy + ry*math.Sin(a)
		drawLine(out, int(math.Round(px)), int(math.Round(py)), int(math.Round(x)), int(math.Round(y)), col)
		px, py = x, y
	}
}

// drawROI renders one region with the given scene-to-raster mapping.
func drawROI(out *image.RGBA, r *roi.ROI, toScreen func(geometry.Point2D) geometry.Point2D, col color.RGBA) {
	switch r.Kind {
	case roi.KindEllipse:
		tl := toScreen(r.Bounds.TopLeft())
		br := toScreen(r.Bounds.BottomRight())
		drawEllipseOutline(out, geometry.NewRectFromPoints(tl, br), col)
	case roi.KindRect:
		tl := toScreen(r.Bounds.TopLeft())
		br := toScreen(r.Bounds.BottomRight())
		drawRectOutline(out, geometry.NewRectFromPoints(tl, br), col)
	case roi.KindLine:
		top := toScreen(r.Bounds.TopLeft())
		bottom := toScreen(r.Bounds.BottomRight())
		drawLine(out,
			int(math.Round(top.X)), int(math.Round(top.Y)),
			int(math.Round(bottom.X)), int(math.Round(bottom.Y)), col)
	case roi.KindPolygon:
		n := len(r.Vertices)
		for i := 0; i < n; i++ {
			a := toScreen(r.Vertices[i])
			b := toScreen(r.Vertices[(i+1)%n])
			drawLine(out,
				int(math.Round(a.X)), int(math.Round(a.Y)),
				int(math.Round(b.X)), int(math.Round(b.Y)), col)
		}
	}
}

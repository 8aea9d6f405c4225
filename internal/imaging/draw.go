package imaging

import (
	"image"
	"image/color"
	"image/draw"

	dimaging "github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CloneNRGBA returns an independent 8-bit NRGBA copy of img anchored at the
// origin. All pixel-writing operations work on such a copy so the caller's
// raster is never modified.
func CloneNRGBA(img image.Image) *image.NRGBA {
	return dimaging.Clone(img)
}

// LinePoints returns the pixels of the segment (x0,y0)-(x1,y1) using
// Bresenham's algorithm. Both endpoints are included.
func LinePoints(x0, y0, x1, y1 int) []image.Point {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := -(y1 - y0)
	if dy > 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	pts := make([]image.Point, 0, max(dx, -dy)+1)
	e := dx + dy
	for {
		pts = append(pts, image.Pt(x0, y0))
		if x0 == x1 && y0 == y1 {
			return pts
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawPolyline strokes the polyline through pts onto dst with a square
// brush of the given width. When closed is true the last point connects
// back to the first. Pixels outside dst are clipped.
func DrawPolyline(dst draw.Image, pts []image.Point, closed bool, c color.Color, width int) {
	if len(pts) == 0 {
		return
	}
	if width < 1 {
		width = 1
	}
	bounds := dst.Bounds()
	lo := -(width - 1) / 2
	hi := width / 2

	stamp := func(p image.Point) {
		for dy := lo; dy <= hi; dy++ {
			for dx := lo; dx <= hi; dx++ {
				q := image.Pt(p.X+dx, p.Y+dy)
				if q.In(bounds) {
					dst.Set(q.X, q.Y, c)
				}
			}
		}
	}

	if len(pts) == 1 {
		stamp(pts[0])
		return
	}

	n := len(pts)
	segments := n - 1
	if closed {
		segments = n
	}
	for i := 0; i < segments; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		for _, p := range LinePoints(a.X, a.Y, b.X, b.Y) {
			stamp(p)
		}
	}
}

// DrawLabel draws text with its baseline-left origin at (x, y) using the
// 7x13 bitmap face from golang.org/x/image. Glyph pixels outside dst are
// clipped by the drawer.
func DrawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// LabelWidth returns the advance width in pixels of text in the label face.
func LabelWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// FillRect paints r (clipped to dst) with a flat color.
func FillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// ExtendRight returns a copy of img widened by extra pixels on the right and,
// if it is shorter than minHeight, grown downwards to minHeight. The new area
// is painted bg. The original pixels keep their coordinates.
func ExtendRight(img image.Image, extra, minHeight int, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := dimaging.New(b.Dx()+extra, max(b.Dy(), minHeight), bg)
	return dimaging.Paste(canvas, img, image.Pt(0, 0))
}

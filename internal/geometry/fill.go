package geometry

import (
	"math"
	"sort"

	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// FillContour rasterizes the polygon c into a width × height mask.
//
// A pixel is foreground when its center lies inside the polygon (even-odd
// rule) or on its outline, so filling a traced outer contour reproduces the
// component together with any holes it encloses. Pixels outside the grid
// are clipped.
func FillContour(c Contour, width, height int) *imaging.BinaryMask {
	m := imaging.NewBinaryMask(width, height)
	n := len(c)
	if n == 0 {
		return m
	}

	for i := 0; i < n; i++ {
		a := c[i]
		b := c[(i+1)%n]
		for _, p := range imaging.LinePoints(a.X, a.Y, b.X, b.Y) {
			m.Set(p.X, p.Y, true)
		}
	}
	if n < 3 {
		return m
	}

	box := ContourBoundingBox(c)
	y0 := max(box.Y, 0)
	y1 := min(box.Y+box.Height, height)
	xs := make([]float64, 0, 8)

	for y := y0; y < y1; y++ {
		xs = xs[:0]
		fy := float64(y)
		for i := 0; i < n; i++ {
			a := c[i]
			b := c[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			// Half-open in y so shared vertices count once.
			if (a.Y <= y && y < b.Y) || (b.Y <= y && y < a.Y) {
				t := (fy - float64(a.Y)) / float64(b.Y-a.Y)
				xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			from := max(int(math.Ceil(xs[k])), 0)
			to := min(int(math.Floor(xs[k+1])), width-1)
			for x := from; x <= to; x++ {
				m.Pix[y*width+x] = true
			}
		}
	}
	return m
}

package geometry

import (
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is a closed polyline through the centers of the boundary pixels of
// one connected foreground component. The last point implicitly connects
// back to the first.
type Contour []Point

// neighbors lists the 8-neighborhood clockwise on screen (y down), starting east.
var neighbors = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const dirWest = 4

func dirIndex(dx, dy int) int {
	for i, n := range neighbors {
		if n.X == dx && n.Y == dy {
			return i
		}
	}
	return -1
}

// ExtractOuterContours traces the external boundary of every outermost
// connected foreground component of mask.
//
// Foreground is 8-connected and background 4-connected. A component lying
// inside a hole of another component is not outermost and yields no contour,
// and hole boundaries are never reported. Contours are returned in discovery
// order of a row-major scan: each component is found at its topmost, then
// leftmost pixel. Runs of collinear boundary steps (horizontal, vertical or
// diagonal) are compressed to their end points.
//
// A mask with no foreground yields an empty (nil) slice.
func ExtractOuterContours(mask *imaging.BinaryMask) []Contour {
	w, h := mask.Width, mask.Height
	if w == 0 || h == 0 {
		return nil
	}

	outside := outsideBackground(mask)
	labels := make([]int32, w*h)
	var contours []Contour
	next := int32(0)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !mask.Pix[i] || labels[i] != 0 {
				continue
			}
			next++
			outermost := labelComponent(mask, outside, labels, x, y, next)
			if !outermost {
				continue
			}
			contours = append(contours, simplify(traceBorder(mask, Point{x, y})))
		}
	}

	return contours
}

// outsideBackground marks background pixels 4-connected to the image frame.
// Pixels beyond the frame count as background, so every background pixel on
// the frame seeds the fill.
func outsideBackground(mask *imaging.BinaryMask) []bool {
	w, h := mask.Width, mask.Height
	outside := make([]bool, w*h)
	stack := make([]Point, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if mask.Pix[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, Point{x, y})
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return outside
}

// labelComponent flood-fills the 8-connected component containing (sx, sy)
// with label and reports whether it is outermost: touching the frame or
// 4-adjacent to background that reaches the frame.
func labelComponent(mask *imaging.BinaryMask, outside []bool, labels []int32, sx, sy int, label int32) bool {
	w, h := mask.Width, mask.Height
	stack := []Point{{X: sx, Y: sy}}
	labels[sy*w+sx] = label
	outermost := false

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X == 0 || p.Y == 0 || p.X == w-1 || p.Y == h-1 {
			outermost = true
		}

		for _, n := range neighbors {
			nx, ny := p.X+n.X, p.Y+n.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if !mask.Pix[j] {
				// 4-neighbors only: diagonal background does not separate.
				if (n.X == 0 || n.Y == 0) && outside[j] {
					outermost = true
				}
				continue
			}
			if labels[j] == 0 {
				labels[j] = label
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}
	return outermost
}

// traceBorder follows the outer border starting at s, whose west neighbor is
// background. It returns every boundary pixel visited, in order, without
// closing the loop.
func traceBorder(mask *imaging.BinaryMask, s Point) Contour {
	fg := func(p Point) bool { return mask.At(p.X, p.Y) }

	// Search clockwise from the west for the pixel that closes the loop.
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirWest + k) % 8
		if fg(Point{s.X + neighbors[d].X, s.Y + neighbors[d].Y}) {
			first = d
			break
		}
	}
	if first < 0 {
		return Contour{s}
	}

	p1 := Point{s.X + neighbors[first].X, s.Y + neighbors[first].Y}
	prev, cur := p1, s
	var border Contour

	for {
		d := dirIndex(prev.X-cur.X, prev.Y-cur.Y)
		var nextPt Point
		for k := 1; k <= 8; k++ {
			dd := (d - k + 8) % 8
			q := Point{cur.X + neighbors[dd].X, cur.Y + neighbors[dd].Y}
			if fg(q) {
				nextPt = q
				break
			}
		}

		border = append(border, cur)
		if nextPt == s && cur == p1 {
			return border
		}
		prev, cur = cur, nextPt
	}
}

// simplify drops points whose incoming and outgoing unit steps are equal,
// keeping only the corners of each straight run.
func simplify(c Contour) Contour {
	n := len(c)
	if n < 3 {
		return c
	}
	out := make(Contour, 0, n/2+1)
	for i := 0; i < n; i++ {
		prev := c[(i-1+n)%n]
		cur := c[i]
		next := c[(i+1)%n]
		inX, inY := cur.X-prev.X, cur.Y-prev.Y
		outX, outY := next.X-cur.X, next.Y-cur.Y
		if inX == outX && inY == outY {
			continue
		}
		out = append(out, cur)
	}
	if len(out) == 0 {
		// A closed loop with no corners cannot occur on a pixel grid, but
		// never return an empty contour for a non-empty component.
		return c[:1]
	}
	return out
}

package geometry

import (
	"image"
	"math"
)

// Centroid is an area-weighted center in pixel space.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the axis-aligned box enclosing a contour. The box covers
// pixel columns X..X+Width-1 and rows Y..Y+Height-1.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image.Rectangle (Max exclusive).
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// signedArea2 returns twice the signed shoelace area of c.
func signedArea2(c Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		sum += float64(p.X*q.Y - q.X*p.Y)
	}
	return sum
}

// ContourArea returns the polygon area enclosed by c (shoelace magnitude).
// Contours with fewer than three points have zero area.
func ContourArea(c Contour) float64 {
	return math.Abs(signedArea2(c)) / 2
}

// ContourPerimeter returns the length of the closed polyline c.
func ContourPerimeter(c Contour) float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		sum += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return sum
}

// ContourCentroid returns the area-weighted centroid of c computed from the
// polygon's first moments. Degenerate contours (zero area) yield (0,0).
func ContourCentroid(c Contour) Centroid {
	a2 := signedArea2(c)
	if a2 == 0 {
		return Centroid{}
	}
	n := len(c)
	var mx, my float64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		mx += float64(p.X+q.X) * cross
		my += float64(p.Y+q.Y) * cross
	}
	// m00 = a2/2, m10 = mx/6, so m10/m00 = mx/(3*a2).
	return Centroid{X: mx / (3 * a2), Y: my / (3 * a2)}
}

// ContourBoundingBox returns the smallest box covering every point of c.
func ContourBoundingBox(c Contour) BoundingBox {
	if len(c) == 0 {
		return BoundingBox{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := minX, minY
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// LargestContour returns the index of the contour with the greatest area,
// or -1 when contours is empty. Ties keep the earliest contour.
func LargestContour(contours []Contour) int {
	best := -1
	bestArea := -1.0
	for i, c := range contours {
		if a := ContourArea(c); a > bestArea {
			best = i
			bestArea = a
		}
	}
	return best
}

// EquivalentDiameter returns the diameter of the circle with the given area.
func EquivalentDiameter(area float64) float64 {
	if area <= 0 {
		return 0
	}
	return math.Sqrt(4 * area / math.Pi)
}

// ImagePoints converts c to image.Point for drawing helpers.
func (c Contour) ImagePoints() []image.Point {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = image.Pt(p.X, p.Y)
	}
	return pts
}

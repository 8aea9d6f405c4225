package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ErrDimensionMismatch is returned when two masks (or a mask and an image)
// that must share a pixel grid have different sizes.
var ErrDimensionMismatch = errors.New("mask dimensions do not match")

// BinaryMask is a width × height grid of foreground flags stored row-major.
//
// Coordinates are 0-based with (0,0) at the top-left, regardless of the
// bounds of the image the mask was derived from.
type BinaryMask struct {
	Width  int
	Height int
	Pix    []bool
}

// NewBinaryMask allocates an all-background mask.
func NewBinaryMask(width, height int) *BinaryMask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &BinaryMask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// MaskFromImage thresholds an image into a BinaryMask.
//
// A pixel is foreground when any of its color channels is nonzero, so dim
// colored pixels such as (1,0,0) count even though their luma rounds to 0.
// Masks written as single-channel PNGs round-trip exactly.
func MaskFromImage(img image.Image) *BinaryMask {
	bounds := img.Bounds()
	m := NewBinaryMask(bounds.Dx(), bounds.Dy())

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < m.Height; y++ {
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := gray.Pix[off : off+m.Width]
			for x, v := range row {
				m.Pix[y*m.Width+x] = v != 0
			}
		}
		return m
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			m.Pix[y*m.Width+x] = r|g|b != 0
		}
	}
	return m
}

// Bounds returns the mask rectangle anchored at the origin.
func (m *BinaryMask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// In reports whether (x, y) lies inside the mask grid.
func (m *BinaryMask) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// At reports whether (x, y) is foreground. Out-of-grid coordinates are background.
func (m *BinaryMask) At(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks (x, y) as foreground or background. Out-of-grid writes are ignored.
func (m *BinaryMask) Set(x, y int, v bool) {
	if !m.In(x, y) {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// SameSize reports whether two masks share a pixel grid.
func (m *BinaryMask) SameSize(o *BinaryMask) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Clone returns a deep copy of the mask.
func (m *BinaryMask) Clone() *BinaryMask {
	c := &BinaryMask{Width: m.Width, Height: m.Height, Pix: make([]bool, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Empty reports whether the mask has no foreground pixels.
func (m *BinaryMask) Empty() bool {
	for _, v := range m.Pix {
		if v {
			return false
		}
	}
	return true
}

// ToGray renders the mask as an 8-bit image with foreground at 255.
func (m *BinaryMask) ToGray() *image.Gray {
	g := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		if v {
			g.Pix[i] = 255
		}
	}
	return g
}

// CountForeground returns the number of foreground pixels in m.
func CountForeground(m *BinaryMask) int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// IntersectMasks returns the per-pixel logical AND of a and b.
//
// The masks must have identical dimensions; otherwise ErrDimensionMismatch
// is returned.
func IntersectMasks(a, b *BinaryMask) (*BinaryMask, error) {
	if !a.SameSize(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	out := NewBinaryMask(a.Width, a.Height)
	for i := range a.Pix {
		out.Pix[i] = a.Pix[i] && b.Pix[i]
	}
	return out, nil
}

// CountIntersection counts pixels that are foreground in both masks without
// allocating the intersection.
func CountIntersection(a, b *BinaryMask) (int, error) {
	if !a.SameSize(b) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	n := 0
	for i := range a.Pix {
		if a.Pix[i] && b.Pix[i] {
			n++
		}
	}
	return n, nil
}

// RectMask returns a width × height mask with r (clipped to the grid) set to
// foreground. r follows image.Rectangle conventions: Min inclusive, Max exclusive.
func RectMask(width, height int, r image.Rectangle) *BinaryMask {
	m := NewBinaryMask(width, height)
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*width+x] = true
		}
	}
	return m
}

package redact

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/convolution"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/cyst-tools-mcp/internal/analysis"
	"github.com/ironsheep/cyst-tools-mcp/internal/geometry"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// Method selects how lesion pixels are replaced.
type Method string

const (
	Interpolation Method = "interpolation"
	Blur          Method = "blur"
	ColorFill     Method = "color_fill"
)

// Padding is the default margin, in pixels, added around each lesion's
// bounding box to form the interpolation window.
const Padding = 10

// ParseMethod resolves a method name. Matching ignores case and surrounding
// space; an empty name selects Interpolation.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Interpolation, nil
	case Interpolation, Blur, ColorFill:
		return m, nil
	}
	return "", analysis.NewUnsupportedMethodError("redact", s)
}

// Options configures RedactLesion. The zero value interpolates with the
// default padding; ColorFill with a zero FillColor paints white.
type Options struct {
	Method    Method
	FillColor *imaging.RGBColor
	Padding   int
}

func (o Options) padding() int {
	if o.Padding > 0 {
		return o.Padding
	}
	return Padding
}

func (o Options) fill() color.NRGBA {
	if o.FillColor == nil {
		return imaging.White.NRGBA()
	}
	return o.FillColor.NRGBA()
}

// RedactLesion removes the lesion from img and returns a new image of the
// same size. The input is never modified.
//
// Lesion contours are processed one at a time in discovery order, each
// reading the result of the previous one, so overlapping windows overwrite
// earlier replacements. ColorFill paints the whole lesion mask once.
//
// Errors: unknown method → KindUnsupportedMethod; mask and image sizes
// differ → KindInvalidMask; lesion without contours → KindNoLesionFound.
func RedactLesion(img image.Image, lesion *imaging.BinaryMask, opts Options) (*image.NRGBA, error) {
	const op = "redact"

	method, err := ParseMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	if img == nil || lesion == nil {
		return nil, analysis.NewInvalidMaskError(op, "missing image or lesion mask", nil)
	}
	b := img.Bounds()
	if b.Dx() != lesion.Width || b.Dy() != lesion.Height {
		return nil, analysis.NewInvalidMaskError(op,
			fmt.Sprintf("mask is %dx%d, image is %dx%d", lesion.Width, lesion.Height, b.Dx(), b.Dy()),
			imaging.ErrDimensionMismatch)
	}

	contours := geometry.ExtractOuterContours(lesion)
	if len(contours) == 0 {
		return nil, analysis.NewNoLesionFoundError(op)
	}

	result := imaging.CloneNRGBA(img)
	if method == ColorFill {
		fillMask(result, lesion, opts.fill())
		return result, nil
	}

	for _, c := range contours {
		region := geometry.FillContour(c, lesion.Width, lesion.Height)
		box := geometry.ContourBoundingBox(c)
		switch method {
		case Interpolation:
			interpolate(result, region, box, opts.padding())
		case Blur:
			blurRegion(result, region, box)
		}
	}
	return result, nil
}

func fillMask(dst *image.NRGBA, m *imaging.BinaryMask, c color.NRGBA) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
}

// BlurKernelSize derives the odd Gaussian kernel size for a lesion bounding
// box: min(w,h)/10 + 1, bumped to the next odd number.
func BlurKernelSize(w, h int) int {
	k := min(w, h)/10 + 1
	if k%2 == 0 {
		k++
	}
	return k
}

// Fixed taps for the short kernels, as used when no sigma is given.
var smallGaussianTaps = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// blurSigma is the standard deviation derived from an odd kernel size k:
// 0.3*((k-1)/2 - 1) + 0.8.
func blurSigma(k int) float64 {
	return 0.3*(float64(k-1)*0.5-1) + 0.8
}

// gaussianKernel returns the normalized horizontal 1-D Gaussian of odd
// length k with sigma blurSigma(k). Lengths up to 7 use fixed taps.
func gaussianKernel(k int) convolution.Matrix {
	kernel := convolution.NewKernel(k, 1)
	if taps, ok := smallGaussianTaps[k]; ok {
		copy(kernel.Matrix, taps)
		return kernel.Normalized()
	}
	sigma := blurSigma(k)
	for i := range kernel.Matrix {
		x := float64(i - (k-1)/2)
		kernel.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	return kernel.Normalized()
}

// gaussianBlur applies the separable k x k Gaussian to the color channels of
// img. Edges extend the border pixels; alpha is kept.
func gaussianBlur(img image.Image, k int) *image.RGBA {
	row := gaussianKernel(k)
	opts := &convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}
	out := convolution.Convolve(img, row, opts)
	return convolution.Convolve(out, row.Transposed(), opts)
}

// blurRegion blurs the whole image and copies the blurred pixels inside
// region into dst.
func blurRegion(dst *image.NRGBA, region *imaging.BinaryMask, box geometry.BoundingBox) {
	k := BlurKernelSize(box.Width, box.Height)
	blurred := gaussianBlur(dst, k)
	bb := blurred.Bounds()
	for y := 0; y < region.Height; y++ {
		for x := 0; x < region.Width; x++ {
			if region.Pix[y*region.Width+x] {
				dst.Set(x, y, blurred.At(bb.Min.X+x, bb.Min.Y+y))
			}
		}
	}
}

// interpolate replaces the pixels of region inside the padded bounding-box
// window with values linearly interpolated from the surrounding known
// pixels.
//
// The known pixels adjacent to the region are triangulated (Delaunay) and
// each region pixel takes the barycentric blend of its triangle's corners.
// Pixels no triangle covers take the mean of every known window pixel. A
// window without known pixels is left unchanged.
func interpolate(dst *image.NRGBA, region *imaging.BinaryMask, box geometry.BoundingBox, padding int) {
	win := image.Rect(box.X-padding, box.Y-padding, box.X+box.Width+padding, box.Y+box.Height+padding).
		Intersect(image.Rect(0, 0, region.Width, region.Height))
	w, h := win.Dx(), win.Dy()
	if w == 0 || h == 0 {
		return
	}

	hole := func(x, y int) bool {
		return region.Pix[(win.Min.Y+y)*region.Width+win.Min.X+x]
	}

	var known [3][]float64
	tri := newTriangulation(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if hole(x, y) {
				continue
			}
			px := dst.NRGBAAt(win.Min.X+x, win.Min.Y+y)
			known[0] = append(known[0], float64(px.R))
			known[1] = append(known[1], float64(px.G))
			known[2] = append(known[2], float64(px.B))
			if touchesHole(x, y, w, h, hole) {
				tri.insert(x, y)
			}
		}
	}
	if len(known[0]) == 0 {
		return
	}

	var mean [3]uint8
	for ch := range known {
		mean[ch] = uint8(stat.Mean(known[ch], nil))
	}

	// Triangle corners are known pixels, which are never rewritten.
	sample := func(v vertex) color.NRGBA {
		return dst.NRGBAAt(win.Min.X+int(v.x), win.Min.Y+int(v.y))
	}

	done := make([]bool, w*h)
	out := make([]color.NRGBA, w*h)
	for _, t := range tri.triangles() {
		a, b, c := t[0], t[1], t[2]
		area := orient(a, b, c)
		if area <= 0 {
			continue
		}
		ca, cb, cc := sample(a), sample(b), sample(c)
		x0, y0, x1, y1 := bounds(t)
		for y := max(y0, 0); y <= min(y1, h-1); y++ {
			for x := max(x0, 0); x <= min(x1, w-1); x++ {
				i := y*w + x
				if done[i] || !hole(x, y) {
					continue
				}
				p := vertex{int64(x), int64(y)}
				wa := orient(b, c, p)
				wb := orient(c, a, p)
				wc := orient(a, b, p)
				if wa < 0 || wb < 0 || wc < 0 {
					continue
				}
				blend := func(va, vb, vc uint8) uint8 {
					return uint8((wa*int64(va) + wb*int64(vb) + wc*int64(vc)) / area)
				}
				out[i] = color.NRGBA{
					R: blend(ca.R, cb.R, cc.R),
					G: blend(ca.G, cb.G, cc.G),
					B: blend(ca.B, cb.B, cc.B),
				}
				done[i] = true
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !hole(x, y) {
				continue
			}
			gx, gy := win.Min.X+x, win.Min.Y+y
			c := out[y*w+x]
			if !done[y*w+x] {
				c = color.NRGBA{R: mean[0], G: mean[1], B: mean[2]}
			}
			c.A = dst.NRGBAAt(gx, gy).A
			dst.SetNRGBA(gx, gy, c)
		}
	}
}

// touchesHole reports whether any 8-neighbor of (x, y) inside the window is
// a hole pixel.
func touchesHole(x, y, w, h int, hole func(x, y int) bool) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if hole(nx, ny) {
				return true
			}
		}
	}
	return false
}

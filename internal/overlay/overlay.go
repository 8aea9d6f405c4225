package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/cyst-tools-mcp/internal/analysis"
	"github.com/ironsheep/cyst-tools-mcp/internal/geometry"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// Palette maps each severity level to its outline and label color.
var Palette = map[analysis.SeverityLevel]imaging.RGBColor{
	analysis.SeverityNone:     imaging.MustParseHexColor("#00FF00"),
	analysis.SeverityMild:     imaging.MustParseHexColor("#FFFF00"),
	analysis.SeverityModerate: imaging.MustParseHexColor("#FFA500"),
	analysis.SeveritySevere:   imaging.MustParseHexColor("#FF0000"),
	analysis.SeverityCritical: imaging.MustParseHexColor("#800080"),
}

const (
	labelOffsetX = -20 // from the contour centroid
	unknownFDI   = "?"
)

// DefaultLineWidth is the outline stroke width in pixels.
const DefaultLineWidth = 2

// Options configures RenderOverlay.
type Options struct {
	LineWidth int
	// Legend appends a severity color key to the right of the image.
	Legend bool
}

// Annotation records what was drawn for one tooth.
type Annotation struct {
	analysis.ToothDescriptor

	OverlapPercentage float64                `json:"overlap_percentage"`
	Severity          analysis.SeverityLevel `json:"severity"`
	Color             string                 `json:"color"`
	Label             string                 `json:"label,omitempty"`
	LabelPosition     *geometry.Point        `json:"label_position,omitempty"`
}

// Result is an annotated copy of the base image.
type Result struct {
	Image        *image.NRGBA `json:"-"`
	Teeth        []Annotation `json:"teeth"`
	SkippedMasks int          `json:"skipped_masks"`
}

// RenderOverlay outlines every tooth on a copy of base, colored by the
// severity of its lesion overlap, and labels it with its FDI code and
// overlap percentage.
//
// Teeth are drawn in file-name order, so later outlines and labels paint
// over earlier ones. Tooth masks that fail to load or differ in size from
// the lesion mask are skipped, as in analysis.ScoreRootOverlap.
func RenderOverlay(loader analysis.MaskLoader, teeth []analysis.ToothDescriptor, lesion *imaging.BinaryMask, base image.Image, opts Options) (*Result, error) {
	const op = "render_overlay"
	if lesion == nil || base == nil {
		return nil, analysis.NewInvalidMaskError(op, "missing base image or lesion mask", nil)
	}
	if len(teeth) == 0 {
		return nil, analysis.NewNoTeethFoundError(op, "no tooth masks supplied")
	}
	b := base.Bounds()
	if b.Dx() != lesion.Width || b.Dy() != lesion.Height {
		return nil, analysis.NewInvalidMaskError(op,
			fmt.Sprintf("mask is %dx%d, image is %dx%d", lesion.Width, lesion.Height, b.Dx(), b.Dy()),
			imaging.ErrDimensionMismatch)
	}

	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}

	ordered := make([]analysis.ToothDescriptor, len(teeth))
	copy(ordered, teeth)
	analysis.SortDescriptors(ordered)

	canvas := imaging.CloneNRGBA(base)
	res := &Result{Teeth: make([]Annotation, 0, len(ordered))}

	for _, desc := range ordered {
		tooth, err := loader.LoadMask(desc.Path)
		if err != nil {
			res.SkippedMasks++
			continue
		}
		o, err := analysis.MeasureOverlap(tooth, lesion)
		if err != nil {
			res.SkippedMasks++
			continue
		}

		c := Palette[o.Severity]
		ann := Annotation{
			ToothDescriptor:   desc,
			OverlapPercentage: math.Round(o.Percentage*100) / 100,
			Severity:          o.Severity,
			Color:             c.Hex(),
		}

		contours := geometry.ExtractOuterContours(tooth)
		if i := geometry.LargestContour(contours); i >= 0 {
			largest := contours[i]
			imaging.DrawPolyline(canvas, largest.ImagePoints(), true, c.NRGBA(), lineWidth)

			if geometry.ContourArea(largest) > 0 {
				ctr := geometry.ContourCentroid(largest)
				pos := geometry.Point{X: int(ctr.X) + labelOffsetX, Y: int(ctr.Y)}
				ann.Label = Label(desc.FDI, o.Percentage)
				ann.LabelPosition = &pos
				imaging.DrawLabel(canvas, pos.X, pos.Y, ann.Label, c.NRGBA())
			}
		}
		res.Teeth = append(res.Teeth, ann)
	}

	res.Image = canvas
	if opts.Legend {
		res.Image = withLegend(canvas)
	}
	return res, nil
}

// Label formats the text drawn next to a tooth, e.g. "FDI:36 12.5%".
func Label(fdi string, percentage float64) string {
	if fdi == "" || fdi == analysis.Unknown {
		fdi = unknownFDI
	}
	return fmt.Sprintf("FDI:%s %.1f%%", fdi, percentage)
}

const (
	legendPadding = 10
	legendSwatch  = 12
	legendRow     = 20
	labelHeight   = 13 // basicfont.Face7x13
)

// withLegend returns img extended on the right by a panel listing the
// severity colors and their percentage ranges.
func withLegend(img *image.NRGBA) *image.NRGBA {
	title := "Severity"
	width := imaging.LabelWidth(title)
	for _, s := range analysis.Severities {
		width = max(width, legendSwatch+6+imaging.LabelWidth(legendText(s)))
	}
	panelWidth := width + 2*legendPadding
	panelHeight := 2*legendPadding + labelHeight + len(analysis.Severities)*legendRow

	out := imaging.ExtendRight(img, panelWidth, panelHeight, color.Black)
	x := img.Bounds().Dx() + legendPadding
	y := legendPadding + labelHeight

	imaging.DrawLabel(out, x, y, title, color.White)
	for _, s := range analysis.Severities {
		y += legendRow
		c := Palette[s].NRGBA()
		imaging.FillRect(out, image.Rect(x, y-legendSwatch+1, x+legendSwatch, y+1), c)
		imaging.DrawLabel(out, x+legendSwatch+6, y, legendText(s), color.White)
	}
	return out
}

func legendText(s analysis.SeverityLevel) string {
	return fmt.Sprintf("%s (%s)", s, s.Range())
}

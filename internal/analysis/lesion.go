package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/cyst-tools-mcp/internal/geometry"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// MMPerPixel is the fixed pixel-to-millimeter heuristic. Area, length and
// diameter are all scaled by this same linear factor; area is not scaled by
// its square. Downstream consumers depend on the exact numbers.
const MMPerPixel = 0.1

// LesionRecord holds the measurements of one lesion contour.
type LesionRecord struct {
	ID                   int                  `json:"id"`
	AreaPx               float64              `json:"area_px"`
	AreaMM2              float64              `json:"area_mm2"`
	PerimeterPx          float64              `json:"perimeter_px"`
	PerimeterMM          float64              `json:"perimeter_mm"`
	Centroid             geometry.Centroid    `json:"centroid"`
	EquivalentDiameterPx float64              `json:"equivalent_diameter_px"`
	EquivalentDiameterMM float64              `json:"equivalent_diameter_mm"`
	BoundingBox          geometry.BoundingBox `json:"bounding_box"`
}

// LesionMetricsResult aggregates every lesion contour of one mask.
type LesionMetricsResult struct {
	TotalCysts   int            `json:"total_cysts"`
	TotalAreaPx  float64        `json:"total_area_px"`
	TotalAreaMM2 float64        `json:"total_area_mm2"`
	Cysts        []LesionRecord `json:"cysts"`
}

// LesionOptions tunes AnalyzeLesionVolume. The zero value uses MMPerPixel.
type LesionOptions struct {
	MMPerPixel float64
}

func (o LesionOptions) scale() float64 {
	if o.MMPerPixel > 0 {
		return o.MMPerPixel
	}
	return MMPerPixel
}

// AnalyzeLesionVolume measures every outer contour of a lesion mask.
//
// Contours are numbered from 1 in discovery order. A mask without contours
// fails with KindNoLesionFound and no totals.
func AnalyzeLesionVolume(mask *imaging.BinaryMask, opts LesionOptions) (*LesionMetricsResult, error) {
	const op = "analyze_lesion"
	if mask == nil {
		return nil, NewInvalidMaskError(op, "nil mask", nil)
	}

	contours := geometry.ExtractOuterContours(mask)
	if len(contours) == 0 {
		return nil, NewNoLesionFoundError(op)
	}

	scale := opts.scale()
	records := make([]LesionRecord, len(contours))
	areas := make([]float64, len(contours))

	for i, c := range contours {
		area := geometry.ContourArea(c)
		perimeter := geometry.ContourPerimeter(c)
		diameter := geometry.EquivalentDiameter(area)
		areas[i] = area

		records[i] = LesionRecord{
			ID:                   i + 1,
			AreaPx:               area,
			AreaMM2:              area * scale,
			PerimeterPx:          perimeter,
			PerimeterMM:          perimeter * scale,
			Centroid:             geometry.ContourCentroid(c),
			EquivalentDiameterPx: diameter,
			EquivalentDiameterMM: diameter * scale,
			BoundingBox:          geometry.ContourBoundingBox(c),
		}
	}

	total := floats.Sum(areas)
	return &LesionMetricsResult{
		TotalCysts:   len(records),
		TotalAreaPx:  total,
		TotalAreaMM2: total * scale,
		Cysts:        records,
	}, nil
}

// AnalyzeLesionFile loads the mask at path and analyzes it. Load failures
// are reported as KindInvalidMask.
func AnalyzeLesionFile(loader MaskLoader, path string, opts LesionOptions) (*LesionMetricsResult, error) {
	mask, err := loader.LoadMask(path)
	if err != nil {
		return nil, NewInvalidMaskError("analyze_lesion", "failed to load lesion mask", err)
	}
	return AnalyzeLesionVolume(mask, opts)
}

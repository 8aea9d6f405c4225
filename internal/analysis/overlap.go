package analysis

import (
	"image"
	"math"
	"runtime"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/cyst-tools-mcp/internal/geometry"
	"github.com/ironsheep/cyst-tools-mcp/internal/imaging"
)

// RootFraction is the share of the tooth silhouette's bounding-box height,
// measured up from the bottom edge, treated as the root region.
const RootFraction = 0.6

// ToothRecord is the overlap analysis of one tooth mask.
type ToothRecord struct {
	ToothDescriptor

	TotalAreaPx           int           `json:"total_area_px"`
	OverlapAreaPx         int           `json:"overlap_area_px"`
	OverlapPercentage     float64       `json:"overlap_percentage"`
	RootLengthPx          int           `json:"root_length_px"`
	RootOverlapPercentage float64       `json:"root_overlap_percentage"`
	RootOverlapLengthPx   int           `json:"root_overlap_length_px"`
	Severity              SeverityLevel `json:"severity"`
	IsAffected            bool          `json:"is_affected"`
}

// RootCystAnalysisResult aggregates the tooth records for one lesion mask.
type RootCystAnalysisResult struct {
	TotalTeeth               int           `json:"total_teeth"`
	AffectedTeeth            int           `json:"affected_teeth"`
	AverageOverlapPercentage float64       `json:"average_overlap_percentage"`
	TotalOverlapAreaPx       int           `json:"total_overlap_area_px"`
	SkippedMasks             int           `json:"skipped_masks"`
	Teeth                    []ToothRecord `json:"teeth"`
}

// OverlapOptions tunes root-overlap scoring. The zero value uses
// RootFraction and one worker per CPU.
type OverlapOptions struct {
	RootFraction float64
	Workers      int
}

func (o OverlapOptions) rootFraction() float64 {
	if o.RootFraction > 0 && o.RootFraction <= 1 {
		return o.RootFraction
	}
	return RootFraction
}

func (o OverlapOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// ToothOverlap is the total-overlap part of a tooth score, shared with the
// overlay renderer.
type ToothOverlap struct {
	TotalAreaPx   int
	OverlapAreaPx int
	Percentage    float64 // unrounded
	Severity      SeverityLevel
}

// MeasureOverlap intersects a tooth mask with the lesion mask and classifies
// the result. Severity is based on the total overlap percentage.
func MeasureOverlap(tooth, lesion *imaging.BinaryMask) (ToothOverlap, error) {
	overlap, err := imaging.IntersectMasks(tooth, lesion)
	if err != nil {
		return ToothOverlap{}, err
	}
	o := ToothOverlap{
		TotalAreaPx:   imaging.CountForeground(tooth),
		OverlapAreaPx: imaging.CountForeground(overlap),
	}
	o.Percentage = percentage(o.OverlapAreaPx, o.TotalAreaPx)
	o.Severity = Classify(o.Percentage)
	return o, nil
}

// RootRegion approximates the root of a tooth as the bottom fraction of the
// bounding box of its largest outer contour, spanning the full box width.
// It returns the rectangle, the box height, and false for an empty mask.
func RootRegion(tooth *imaging.BinaryMask, fraction float64) (image.Rectangle, int, bool) {
	contours := geometry.ExtractOuterContours(tooth)
	i := geometry.LargestContour(contours)
	if i < 0 {
		return image.Rectangle{}, 0, false
	}
	box := geometry.ContourBoundingBox(contours[i])
	rootHeight := int(math.Round(fraction * float64(box.Height)))
	rootStart := box.Y + box.Height - rootHeight
	return image.Rect(box.X, rootStart, box.X+box.Width, box.Y+box.Height), box.Height, true
}

// ScoreTooth computes the full record for one tooth against the lesion.
// The masks must share dimensions.
func ScoreTooth(desc ToothDescriptor, tooth, lesion *imaging.BinaryMask, opts OverlapOptions) (ToothRecord, error) {
	o, err := MeasureOverlap(tooth, lesion)
	if err != nil {
		return ToothRecord{}, err
	}

	rec := ToothRecord{
		ToothDescriptor:   desc,
		TotalAreaPx:       o.TotalAreaPx,
		OverlapAreaPx:     o.OverlapAreaPx,
		OverlapPercentage: round2(o.Percentage),
		Severity:          o.Severity,
		IsAffected:        o.OverlapAreaPx > 0,
	}

	if rect, height, ok := RootRegion(tooth, opts.rootFraction()); ok {
		rootMask := imaging.RectMask(tooth.Width, tooth.Height, rect)
		rootOverlap, err := imaging.CountIntersection(rootMask, lesion)
		if err != nil {
			return ToothRecord{}, err
		}
		rec.RootLengthPx = height
		rec.RootOverlapLengthPx = rootOverlap
		rec.RootOverlapPercentage = round2(percentage(rootOverlap, imaging.CountForeground(rootMask)))
	}
	return rec, nil
}

// ScoreRootOverlap scores every tooth mask against the lesion mask.
//
// Teeth are processed in file-name order. Scoring runs in parallel across
// teeth; the result does not depend on scheduling.
//
// Lenient skip policy: a tooth mask that fails to load, or whose dimensions
// differ from the lesion mask, is skipped. It is not counted in TotalTeeth,
// does not fail the call, and is tallied in SkippedMasks.
//
// Errors: nil lesion mask → KindInvalidMask; no descriptors → KindNoTeethFound.
func ScoreRootOverlap(loader MaskLoader, teeth []ToothDescriptor, lesion *imaging.BinaryMask, opts OverlapOptions) (*RootCystAnalysisResult, error) {
	const op = "score_root_overlap"
	if lesion == nil {
		return nil, NewInvalidMaskError(op, "nil lesion mask", nil)
	}
	if len(teeth) == 0 {
		return nil, NewNoTeethFoundError(op, "no tooth masks supplied")
	}

	ordered := make([]ToothDescriptor, len(teeth))
	copy(ordered, teeth)
	SortDescriptors(ordered)

	type slot struct {
		rec ToothRecord
		ok  bool
	}
	slots := make([]slot, len(ordered))

	jobs := make(chan int)
	done := make(chan struct{})
	workers := min(opts.workers(), len(ordered))

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				tooth, err := loader.LoadMask(ordered[i].Path)
				if err != nil {
					continue
				}
				rec, err := ScoreTooth(ordered[i], tooth, lesion, opts)
				if err != nil {
					continue
				}
				slots[i] = slot{rec: rec, ok: true}
			}
			done <- struct{}{}
		}()
	}
	for i := range ordered {
		jobs <- i
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}

	result := &RootCystAnalysisResult{Teeth: make([]ToothRecord, 0, len(ordered))}
	percentages := make([]float64, 0, len(ordered))
	for _, s := range slots {
		if !s.ok {
			result.SkippedMasks++
			continue
		}
		result.Teeth = append(result.Teeth, s.rec)
		percentages = append(percentages, s.rec.OverlapPercentage)
		if s.rec.IsAffected {
			result.AffectedTeeth++
			result.TotalOverlapAreaPx += s.rec.OverlapAreaPx
		}
	}
	result.TotalTeeth = len(result.Teeth)
	if len(percentages) > 0 {
		result.AverageOverlapPercentage = round2(stat.Mean(percentages, nil))
	}
	return result, nil
}

// ScoreRootOverlapDir lists tooth_*.png masks in dir, loads the lesion mask
// at lesionPath and scores them.
func ScoreRootOverlapDir(loader MaskLoader, dir, lesionPath string, opts OverlapOptions) (*RootCystAnalysisResult, error) {
	const op = "score_root_overlap"
	lesion, err := loader.LoadMask(lesionPath)
	if err != nil {
		return nil, NewInvalidMaskError(op, "failed to load lesion mask", err)
	}
	teeth, err := ListToothMasks(dir)
	if err != nil {
		return nil, NewNoTeethFoundError(op, err.Error())
	}
	if len(teeth) == 0 {
		return nil, NewNoTeethFoundError(op, "no tooth_*.png masks in "+dir)
	}
	return ScoreRootOverlap(loader, teeth, lesion, opts)
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

var severityDescriptions = map[SeverityLevel]string{
	SeverityNone:     "No involvement",
	SeverityMild:     "Mild involvement",
	SeverityModerate: "Moderate involvement",
	SeveritySevere:   "Severe involvement",
	SeverityCritical: "Critical involvement",
}

// WriteReport renders a root-overlap result as a plain-text report: summary,
// per-tooth details ordered by overlap percentage (highest first), the
// severity legend and recommendations.
func WriteReport(w io.Writer, res *RootCystAnalysisResult) error {
	if res == nil {
		return fmt.Errorf("failed to write report: nil result")
	}

	var b strings.Builder
	section := func(title string) {
		b.WriteString(title + "\n")
		b.WriteString(strings.Repeat("-", len(title)) + "\n")
	}

	b.WriteString("ROOT CYST INVOLVEMENT REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	section("SUMMARY")
	fmt.Fprintf(&b, "Total teeth: %d\n", res.TotalTeeth)
	fmt.Fprintf(&b, "Affected teeth: %d\n", res.AffectedTeeth)
	fmt.Fprintf(&b, "Average overlap: %.2f%%\n", res.AverageOverlapPercentage)
	fmt.Fprintf(&b, "Total overlap area: %d px\n", res.TotalOverlapAreaPx)
	if res.SkippedMasks > 0 {
		fmt.Fprintf(&b, "Skipped masks: %d\n", res.SkippedMasks)
	}
	b.WriteString("\n")

	section("PER-TOOTH DETAILS")
	teeth := make([]ToothRecord, len(res.Teeth))
	copy(teeth, res.Teeth)
	sort.SliceStable(teeth, func(i, j int) bool {
		return teeth[i].OverlapPercentage > teeth[j].OverlapPercentage
	})
	for _, t := range teeth {
		status := "not affected"
		if t.IsAffected {
			status = "affected"
		}
		fmt.Fprintf(&b, "Tooth FDI %s:\n", t.FDI)
		fmt.Fprintf(&b, "  Overlap: %.2f%%\n", t.OverlapPercentage)
		fmt.Fprintf(&b, "  Root overlap: %.2f%%\n", t.RootOverlapPercentage)
		fmt.Fprintf(&b, "  Tooth area: %d px\n", t.TotalAreaPx)
		fmt.Fprintf(&b, "  Overlap area: %d px\n", t.OverlapAreaPx)
		fmt.Fprintf(&b, "  Root length: %d px\n", t.RootLengthPx)
		fmt.Fprintf(&b, "  Severity: %s\n", t.Severity)
		fmt.Fprintf(&b, "  Status: %s\n\n", status)
	}

	section("SEVERITY SCALE")
	for _, s := range Severities {
		fmt.Fprintf(&b, "%s - %s\n", s.Range(), severityDescriptions[s])
	}
	b.WriteString("\n")

	section("RECOMMENDATIONS")
	var urgent []ToothRecord
	for _, t := range res.Teeth {
		if t.Severity >= SeveritySevere {
			urgent = append(urgent, t)
		}
	}
	if len(urgent) > 0 {
		b.WriteString("CRITICAL CASES:\n")
		for _, t := range urgent {
			fmt.Fprintf(&b, "  - Tooth FDI %s: %.2f%% overlap\n", t.FDI, t.OverlapPercentage)
		}
		b.WriteString("  Immediate dental consultation is recommended.\n\n")
	}
	if res.AffectedTeeth > 0 {
		b.WriteString("GENERAL:\n")
		fmt.Fprintf(&b, "  - %d of %d teeth affected\n", res.AffectedTeeth, res.TotalTeeth)
		b.WriteString("  - Detailed examination of the affected teeth is required\n")
		b.WriteString("  - Radiographic follow-up is recommended\n")
	} else {
		b.WriteString("No involvement detected. A routine check-up is recommended.\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

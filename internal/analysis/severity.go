package analysis

import (
	"encoding/json"
	"fmt"
)

// SeverityLevel is the ordered lesion-tooth overlap classification.
type SeverityLevel int

const (
	SeverityNone SeverityLevel = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityCritical
)

// Severity thresholds on the total overlap percentage.
const (
	ModerateThreshold = 10.0
	SevereThreshold   = 30.0
	CriticalThreshold = 50.0
)

var severityNames = [...]string{"none", "mild", "moderate", "severe", "critical"}

// Severities lists every level in ascending order.
var Severities = []SeverityLevel{SeverityNone, SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical}

// Classify maps a total overlap percentage to a severity level:
// 0 → None, (0,10) → Mild, [10,30) → Moderate, [30,50) → Severe, [50,∞) → Critical.
func Classify(overlapPercentage float64) SeverityLevel {
	switch {
	case overlapPercentage <= 0:
		return SeverityNone
	case overlapPercentage < ModerateThreshold:
		return SeverityMild
	case overlapPercentage < SevereThreshold:
		return SeverityModerate
	case overlapPercentage < CriticalThreshold:
		return SeveritySevere
	default:
		return SeverityCritical
	}
}

func (s SeverityLevel) String() string {
	if s < SeverityNone || s > SeverityCritical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// Range describes the percentage interval of a level for legends and reports.
func (s SeverityLevel) Range() string {
	switch s {
	case SeverityNone:
		return "0%"
	case SeverityMild:
		return "0-10%"
	case SeverityModerate:
		return "10-30%"
	case SeveritySevere:
		return "30-50%"
	case SeverityCritical:
		return "50%+"
	}
	return ""
}

// ParseSeverity is the inverse of String.
func ParseSeverity(s string) (SeverityLevel, error) {
	for i, name := range severityNames {
		if name == s {
			return SeverityLevel(i), nil
		}
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", s)
}

func (s SeverityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SeverityLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

package analysis

// Severity classifies a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding categories.
const (
	CategoryReliability = "reliability"
	CategoryDuration    = "duration"
	CategoryAutonomy    = "autonomy"
	CategoryHygiene     = "hygiene"
	CategoryTrend       = "trend"
)

// Finding is one flagged deviation from a target threshold.
type Finding struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Detail   string   `json:"detail,omitempty"`
}

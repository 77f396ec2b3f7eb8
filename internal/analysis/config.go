// Package analysis implements the read-only analysis agent: it aggregates
// run history from the Context Hub, compares metrics against configured
// targets, and writes deterministic markdown reports.
package analysis

// Config holds the agent's thresholds, loaded from the parameter store's
// "observer" and "targets" sections. Every field has a safe default and
// unknown parameter fields are ignored for forward compatibility.
type Config struct {
	// Window sizing
	AnalysisWindowSize int
	TrendThreshold     float64

	// Target thresholds
	TargetMedianCycleTime        float64
	TargetBuildSuccessRate       float64
	TargetManualInterventionRate float64
	TargetMaxLintErrors          float64
	TargetMaxTypeErrors          float64

	// Report settings
	ReportPrefix      string
	IncludeRunDetails bool
	MaxFlaggedRuns    int
}

// DefaultConfig returns the out-of-the-box thresholds.
func DefaultConfig() Config {
	return Config{
		AnalysisWindowSize:           10,
		TrendThreshold:               0.1,
		TargetMedianCycleTime:        30.0,
		TargetBuildSuccessRate:       0.9,
		TargetManualInterventionRate: 0.1,
		TargetMaxLintErrors:          5,
		TargetMaxTypeErrors:          0,
		ReportPrefix:                 "analysis",
		IncludeRunDetails:            true,
		MaxFlaggedRuns:               5,
	}
}

// ConfigFromParameters builds a Config from a parameter store document.
// A nil document yields the defaults.
func ConfigFromParameters(params map[string]any) Config {
	cfg := DefaultConfig()
	if params == nil {
		return cfg
	}

	if observer, ok := params["observer"].(map[string]any); ok {
		cfg.AnalysisWindowSize = intFrom(observer, "analysis_window_size", cfg.AnalysisWindowSize)
		cfg.TrendThreshold = floatFrom(observer, "trend_threshold", cfg.TrendThreshold)
	}
	if targets, ok := params["targets"].(map[string]any); ok {
		cfg.TargetMedianCycleTime = floatFrom(targets, "median_cycle_time_minutes", cfg.TargetMedianCycleTime)
		cfg.TargetBuildSuccessRate = floatFrom(targets, "build_success_rate", cfg.TargetBuildSuccessRate)
		cfg.TargetManualInterventionRate = floatFrom(targets, "manual_intervention_rate", cfg.TargetManualInterventionRate)
		cfg.TargetMaxLintErrors = floatFrom(targets, "max_lint_errors_per_run", cfg.TargetMaxLintErrors)
		cfg.TargetMaxTypeErrors = floatFrom(targets, "max_type_errors_per_run", cfg.TargetMaxTypeErrors)
	}
	return cfg
}

func floatFrom(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func intFrom(m map[string]any, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

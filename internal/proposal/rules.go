package proposal

import (
	"math"
	"strings"

	"github.com/obsplane/observer/internal/analysis"
)

// A rule maps one analysis finding onto at most one parameter change.
// Rules are pure functions of the finding, the effective config, and the
// current parameter document.
type rule func(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff

// rules in evaluation order. Order is part of the contract: the first rule
// that claims a path wins for that path.
var rules = []rule{
	ruleSlowCycleTime,
	ruleLowSuccessRate,
	ruleHighLint,
	ruleHighTypeErrors,
	ruleHighManualIntervention,
	ruleDegradingTrend,
}

// ruleSlowCycleTime relaxes the cycle time target by 10% when it is exceeded.
func ruleSlowCycleTime(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryDuration {
		return nil
	}
	if f.Severity != analysis.SeverityWarning && f.Severity != analysis.SeverityCritical {
		return nil
	}
	current := paramFloat(params, "targets", "median_cycle_time_minutes", cfg.TargetMedianCycleTime)
	return &ParameterDiff{
		Path:     "targets.median_cycle_time_minutes",
		OldValue: current,
		NewValue: round1(current * 1.1),
		Reason:   f.Message,
	}
}

// ruleLowSuccessRate lowers the build success target by 5 points, floored at
// 50%. Only fires on the "below target" finding, not on trend findings that
// share the reliability category.
func ruleLowSuccessRate(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryReliability || f.Severity != analysis.SeverityCritical {
		return nil
	}
	if !strings.Contains(f.Message, "below target") {
		return nil
	}
	current := paramFloat(params, "targets", "build_success_rate", cfg.TargetBuildSuccessRate)
	return &ParameterDiff{
		Path:     "targets.build_success_rate",
		OldValue: current,
		NewValue: round2(math.Max(0.5, current-0.05)),
		Reason:   f.Message,
	}
}

// ruleHighLint raises the lint error tolerance by 2.
func ruleHighLint(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryHygiene || !strings.Contains(strings.ToLower(f.Message), "lint") {
		return nil
	}
	current := paramFloat(params, "targets", "max_lint_errors_per_run", cfg.TargetMaxLintErrors)
	return &ParameterDiff{
		Path:     "targets.max_lint_errors_per_run",
		OldValue: current,
		NewValue: current + 2,
		Reason:   f.Message,
	}
}

// ruleHighTypeErrors raises the type error tolerance by 1.
func ruleHighTypeErrors(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryHygiene || !strings.Contains(strings.ToLower(f.Message), "type error") {
		return nil
	}
	current := paramFloat(params, "targets", "max_type_errors_per_run", cfg.TargetMaxTypeErrors)
	return &ParameterDiff{
		Path:     "targets.max_type_errors_per_run",
		OldValue: current,
		NewValue: current + 1,
		Reason:   f.Message,
	}
}

// ruleHighManualIntervention relaxes the intervention target by 5 points,
// capped at 100%.
func ruleHighManualIntervention(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryAutonomy {
		return nil
	}
	current := paramFloat(params, "targets", "manual_intervention_rate", cfg.TargetManualInterventionRate)
	return &ParameterDiff{
		Path:     "targets.manual_intervention_rate",
		OldValue: current,
		NewValue: round2(math.Min(1.0, current+0.05)),
		Reason:   f.Message,
	}
}

// ruleDegradingTrend expands the analysis window for more signal when a
// critical trend finding appears. A window of 30 or more is left alone.
func ruleDegradingTrend(f analysis.Finding, cfg analysis.Config, params map[string]any) *ParameterDiff {
	if f.Category != analysis.CategoryTrend || f.Severity != analysis.SeverityCritical {
		return nil
	}
	current := paramFloat(params, "observer", "analysis_window_size", float64(cfg.AnalysisWindowSize))
	if current >= 30 {
		return nil
	}
	return &ParameterDiff{
		Path:     "observer.analysis_window_size",
		OldValue: current,
		NewValue: current + 5,
		Reason:   f.Message,
	}
}

// computeImpact classifies the overall change size: any critical finding is
// high impact, more than two parameter changes is medium, the rest is low.
func computeImpact(diffs []ParameterDiff, findings []analysis.Finding) ImpactLevel {
	for _, f := range findings {
		if f.Severity == analysis.SeverityCritical {
			return ImpactHigh
		}
	}
	if len(diffs) > 2 {
		return ImpactMedium
	}
	return ImpactLow
}

// paramFloat reads params[section][key] as a number, falling back to the
// config default when the section or key is absent or not numeric.
func paramFloat(params map[string]any, section, key string, fallback float64) float64 {
	sec, ok := params[section].(map[string]any)
	if !ok {
		return fallback
	}
	switch v := sec[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

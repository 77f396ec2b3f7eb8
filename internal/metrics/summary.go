// Package metrics aggregates run records into summary statistics and trend
// classifications. Everything here is derived from objective counters; the
// functions are pure and side-effect free.
package metrics

import (
	"math"
	"sort"

	"github.com/obsplane/observer/internal/model"
)

// Trend labels relative to the previous window.
const (
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDegrading        = "degrading"
	TrendInsufficientData = "insufficient_data"
)

// Summary holds aggregated metrics across a window of runs.
type Summary struct {
	// Sample info
	RunCount       int    `json:"run_count"`
	DateRangeStart string `json:"date_range_start"`
	DateRangeEnd   string `json:"date_range_end"`

	// Duration (minutes), computed over runs with duration > 0
	DurationMean   float64 `json:"duration_mean"`
	DurationMedian float64 `json:"duration_median"`
	DurationMin    float64 `json:"duration_min"`
	DurationMax    float64 `json:"duration_max"`
	DurationStddev float64 `json:"duration_stddev"`

	// Reliability
	BuildSuccessRate float64 `json:"build_success_rate"`

	// Test health
	TotalTestsPassed int     `json:"total_tests_passed"`
	TotalTestsFailed int     `json:"total_tests_failed"`
	TestPassRate     float64 `json:"test_pass_rate"`

	// Code hygiene
	AvgLintErrors   float64 `json:"avg_lint_errors"`
	AvgTypeErrors   float64 `json:"avg_type_errors"`
	TotalLintErrors int     `json:"total_lint_errors"`
	TotalTypeErrors int     `json:"total_type_errors"`

	// Scale
	AvgDiffSize    float64 `json:"avg_diff_size"`
	TotalDiffLines int     `json:"total_diff_lines"`

	// Human involvement
	ManualInterventionRate float64 `json:"manual_intervention_rate"`

	// Trends vs the previous window
	DurationTrend    string `json:"duration_trend"`
	ReliabilityTrend string `json:"reliability_trend"`
	HygieneTrend     string `json:"hygiene_trend"`
}

// Compute aggregates a window of run records. An empty window yields a
// zero-valued summary, never a division error.
func Compute(runs []model.RunRecord) Summary {
	var s Summary
	if len(runs) == 0 {
		return s
	}
	s.RunCount = len(runs)

	timestamps := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.Timestamp != "" {
			timestamps = append(timestamps, r.Timestamp)
		}
	}
	sort.Strings(timestamps)
	if len(timestamps) > 0 {
		s.DateRangeStart = timestamps[0]
		s.DateRangeEnd = timestamps[len(timestamps)-1]
	}

	var durations []float64
	for _, r := range runs {
		if r.DurationMinutes > 0 {
			durations = append(durations, r.DurationMinutes)
		}
	}
	if len(durations) > 0 {
		s.DurationMean = round2(mean(durations))
		s.DurationMedian = round2(median(durations))
		s.DurationMin = round2(minOf(durations))
		s.DurationMax = round2(maxOf(durations))
		if len(durations) >= 2 {
			s.DurationStddev = round2(sampleStddev(durations))
		}
	}

	successful := 0
	manual := 0
	for _, r := range runs {
		if r.BuildSuccess {
			successful++
		}
		if r.ManualIntervention {
			manual++
		}
		s.TotalTestsPassed += r.TestsPassed
		s.TotalTestsFailed += r.TestsFailed
		s.TotalLintErrors += r.LintErrors
		s.TotalTypeErrors += r.TypeErrors
		s.TotalDiffLines += r.DiffSizeLines
	}

	n := float64(len(runs))
	s.BuildSuccessRate = round4(float64(successful) / n)
	if totalTests := s.TotalTestsPassed + s.TotalTestsFailed; totalTests > 0 {
		s.TestPassRate = round4(float64(s.TotalTestsPassed) / float64(totalTests))
	}
	s.AvgLintErrors = round2(float64(s.TotalLintErrors) / n)
	s.AvgTypeErrors = round2(float64(s.TotalTypeErrors) / n)
	s.AvgDiffSize = round2(float64(s.TotalDiffLines) / n)
	s.ManualInterventionRate = round4(float64(manual) / n)

	return s
}

// ComputeTrends annotates current with trend labels relative to the previous
// window. threshold is the minimum change to count as improving/degrading.
//
// An empty previous window marks every dimension insufficient_data. A
// dimension whose previous baseline is zero is skipped (label left empty),
// except hygiene: zero errors in both windows is stable.
func ComputeTrends(current Summary, previous Summary, threshold float64) Summary {
	if previous.RunCount == 0 {
		current.DurationTrend = TrendInsufficientData
		current.ReliabilityTrend = TrendInsufficientData
		current.HygieneTrend = TrendInsufficientData
		return current
	}

	// Duration: lower is better, relative delta
	if previous.DurationMean > 0 {
		delta := (current.DurationMean - previous.DurationMean) / previous.DurationMean
		switch {
		case delta < -threshold:
			current.DurationTrend = TrendImproving
		case delta > threshold:
			current.DurationTrend = TrendDegrading
		default:
			current.DurationTrend = TrendStable
		}
	}

	// Reliability: higher is better, absolute delta
	if previous.BuildSuccessRate > 0 {
		delta := current.BuildSuccessRate - previous.BuildSuccessRate
		switch {
		case delta > threshold:
			current.ReliabilityTrend = TrendImproving
		case delta < -threshold:
			current.ReliabilityTrend = TrendDegrading
		default:
			current.ReliabilityTrend = TrendStable
		}
	}

	// Hygiene: fewer lint errors is better, relative delta
	if previous.AvgLintErrors > 0 {
		delta := (current.AvgLintErrors - previous.AvgLintErrors) / previous.AvgLintErrors
		switch {
		case delta < -threshold:
			current.HygieneTrend = TrendImproving
		case delta > threshold:
			current.HygieneTrend = TrendDegrading
		default:
			current.HygieneTrend = TrendStable
		}
	} else if current.AvgLintErrors == 0 {
		current.HygieneTrend = TrendStable
	}

	return current
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func sampleStddev(vals []float64) float64 {
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

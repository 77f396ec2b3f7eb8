package analysis

import (
	"fmt"
	"strings"

	"github.com/obsplane/observer/internal/metrics"
	"github.com/obsplane/observer/internal/model"
)

// renderReport produces the deterministic markdown analysis report. The same
// inputs always render the same document (modulo the generation timestamp).
func (a *Agent) renderReport(runs []model.RunRecord, m metrics.Summary, findings []Finding) string {
	now := a.now().UTC().Format("2006-01-02 15:04 UTC")
	var b strings.Builder

	fmt.Fprintf(&b, "# Observer Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", now)
	fmt.Fprintf(&b, "**Runs analyzed:** %d\n", m.RunCount)
	fmt.Fprintf(&b, "**Date range:** %s to %s\n", m.DateRangeStart, m.DateRangeEnd)
	fmt.Fprintf(&b, "**Findings:** %d\n\n", len(findings))

	b.WriteString("## Findings\n\n")
	if len(findings) > 0 {
		writeFindingGroup(&b, "Critical", filterFindings(findings, SeverityCritical))
		writeFindingGroup(&b, "Warning", filterFindings(findings, SeverityWarning))
		writeFindingGroup(&b, "Info", filterFindings(findings, SeverityInfo))
	} else {
		b.WriteString("No findings — all metrics within targets.\n\n")
	}

	cfg := a.cfg
	b.WriteString("## Metrics Summary\n\n")
	b.WriteString("| Metric | Value | Target | Status |\n")
	b.WriteString("|--------|-------|--------|--------|\n")
	writeMetricRow(&b, "Build success rate",
		percent(m.BuildSuccessRate), percent(cfg.TargetBuildSuccessRate),
		m.BuildSuccessRate >= cfg.TargetBuildSuccessRate)
	writeMetricRow(&b, "Median cycle time",
		fmt.Sprintf("%.1fm", m.DurationMedian), fmt.Sprintf("%.0fm", cfg.TargetMedianCycleTime),
		m.DurationMedian == 0 || m.DurationMedian <= cfg.TargetMedianCycleTime)
	writeMetricRow(&b, "Manual intervention",
		percent(m.ManualInterventionRate), percent(cfg.TargetManualInterventionRate),
		m.ManualInterventionRate <= cfg.TargetManualInterventionRate)
	writeMetricRow(&b, "Avg lint errors",
		fmt.Sprintf("%.1f", m.AvgLintErrors), fmt.Sprintf("%g", cfg.TargetMaxLintErrors),
		m.AvgLintErrors <= cfg.TargetMaxLintErrors)
	writeMetricRow(&b, "Avg type errors",
		fmt.Sprintf("%.1f", m.AvgTypeErrors), fmt.Sprintf("%g", cfg.TargetMaxTypeErrors),
		m.AvgTypeErrors <= cfg.TargetMaxTypeErrors)
	b.WriteString("\n")

	b.WriteString("## Trends\n\n")
	b.WriteString("| Dimension | Trend |\n")
	b.WriteString("|-----------|-------|\n")
	fmt.Fprintf(&b, "| Duration | %s |\n", trendBadge(m.DurationTrend))
	fmt.Fprintf(&b, "| Reliability | %s |\n", trendBadge(m.ReliabilityTrend))
	fmt.Fprintf(&b, "| Hygiene | %s |\n\n", trendBadge(m.HygieneTrend))

	b.WriteString("## Duration Distribution\n\n")
	fmt.Fprintf(&b, "- Mean: %.1fm\n", m.DurationMean)
	fmt.Fprintf(&b, "- Median: %.1fm\n", m.DurationMedian)
	fmt.Fprintf(&b, "- Min: %.1fm\n", m.DurationMin)
	fmt.Fprintf(&b, "- Max: %.1fm\n", m.DurationMax)
	fmt.Fprintf(&b, "- Stddev: %.1fm\n\n", m.DurationStddev)

	b.WriteString("## Test Health\n\n")
	fmt.Fprintf(&b, "- Total passed: %d\n", m.TotalTestsPassed)
	fmt.Fprintf(&b, "- Total failed: %d\n", m.TotalTestsFailed)
	fmt.Fprintf(&b, "- Pass rate: %s\n\n", percent(m.TestPassRate))

	if cfg.IncludeRunDetails {
		b.WriteString("## Run Details\n\n")
		b.WriteString("| Run ID | Type | Build | Tests | Lint | Duration |\n")
		b.WriteString("|--------|------|-------|-------|------|----------|\n")
		for _, r := range runs {
			status := "pass"
			if !r.BuildSuccess {
				status = "FAIL"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d/%d | %d | %.0fm |\n",
				r.RunID, r.InputType, status,
				r.TestsPassed, r.TestsPassed+r.TestsFailed,
				r.LintErrors, r.DurationMinutes)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	b.WriteString("*Generated by Observer Analysis Agent*\n")
	return b.String()
}

func (a *Agent) emptyReport() string {
	now := a.now().UTC().Format("2006-01-02 15:04 UTC")
	return fmt.Sprintf("# Observer Analysis Report\n\n**Generated:** %s\n\n"+
		"No runs found in the Context Hub. Record runs with `observer record`.\n", now)
}

func filterFindings(findings []Finding, severity Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

func writeFindingGroup(b *strings.Builder, label string, group []Finding) {
	if len(group) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", label)
	for _, f := range group {
		fmt.Fprintf(b, "- **[%s]** %s\n", f.Category, f.Message)
		if f.Detail != "" {
			for _, line := range strings.Split(f.Detail, "\n") {
				fmt.Fprintf(b, "  %s\n", line)
			}
		}
	}
	b.WriteString("\n")
}

func writeMetricRow(b *strings.Builder, name, value, target string, meetsTarget bool) {
	status := "ok"
	if !meetsTarget {
		status = "MISS"
	}
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n", name, value, target, status)
}

func trendBadge(trend string) string {
	switch trend {
	case metrics.TrendImproving:
		return "improving"
	case metrics.TrendStable:
		return "stable"
	case metrics.TrendDegrading:
		return "DEGRADING"
	case metrics.TrendInsufficientData:
		return "insufficient data"
	case "":
		return "—"
	default:
		return trend
	}
}

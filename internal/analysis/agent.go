package analysis

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/metrics"
	"github.com/obsplane/observer/internal/model"
)

// Result is the output of one analysis cycle.
type Result struct {
	ReportFilename  string
	ReportContent   string
	FindingsCount   int
	RunsAnalyzed    int
	DurationSeconds float64
	Success         bool
	Err             string
	Findings        []Finding
	Metrics         metrics.Summary
}

// Summary returns a one-line human description of the result.
func (r Result) Summary() string {
	if !r.Success {
		return fmt.Sprintf("Analysis failed: %s", r.Err)
	}
	return fmt.Sprintf("Analyzed %d runs, %d findings, report: %s",
		r.RunsAnalyzed, r.FindingsCount, r.ReportFilename)
}

// Agent runs read-only analysis cycles over the Context Hub. It never
// propagates errors to the caller: failures are captured in the Result and
// logged to the monitor.
type Agent struct {
	hub     *hub.Hub
	cfg     Config
	monitor *Monitor
	now     func() time.Time
}

func NewAgent(h *hub.Hub, cfg Config) *Agent {
	return &Agent{
		hub:     h,
		cfg:     cfg,
		monitor: NewMonitor(h.MetricsDir),
		now:     time.Now,
	}
}

// Run executes one analysis cycle: load a 2x window of recent runs, compute
// metrics and trends, flag threshold violations, render a report, persist
// it, and log the cycle to the monitor.
func (a *Agent) Run() Result {
	start := time.Now()
	var result Result

	result = a.cycle()

	result.DurationSeconds = math.Round(time.Since(start).Seconds()*1000) / 1000
	a.monitor.LogRun(AgentRunLog{
		AgentName:       "analysis_agent",
		Timestamp:       a.now().UTC().Format(time.RFC3339),
		DurationSeconds: result.DurationSeconds,
		RunsAnalyzed:    result.RunsAnalyzed,
		FindingsCount:   result.FindingsCount,
		Success:         result.Success,
		Error:           result.Err,
		ReportFilename:  result.ReportFilename,
		WindowSize:      a.cfg.AnalysisWindowSize,
	})
	return result
}

func (a *Agent) cycle() Result {
	var result Result

	window := a.cfg.AnalysisWindowSize
	runs, err := a.hub.ListRuns(window*2, true)
	if err != nil {
		result.Err = err.Error()
		log.Printf("analysis failed: %v", err)
		return result
	}

	if len(runs) == 0 {
		result.Success = true
		result.ReportContent = a.emptyReport()
		filename, err := a.writeReport(result.ReportContent)
		if err != nil {
			result.Success = false
			result.Err = err.Error()
			return result
		}
		result.ReportFilename = filename
		return result
	}

	currentRuns := runs
	var previousRuns []model.RunRecord
	if len(runs) > window {
		currentRuns = runs[:window]
		previousRuns = runs[window:]
	}

	current := metrics.Compute(currentRuns)
	previous := metrics.Compute(previousRuns)
	current = metrics.ComputeTrends(current, previous, a.cfg.TrendThreshold)

	findings := a.analyze(currentRuns, current)
	report := a.renderReport(currentRuns, current, findings)

	filename, err := a.writeReport(report)
	if err != nil {
		result.Err = err.Error()
		log.Printf("analysis failed: %v", err)
		return result
	}

	result.ReportFilename = filename
	result.ReportContent = report
	result.FindingsCount = len(findings)
	result.RunsAnalyzed = len(currentRuns)
	result.Findings = findings
	result.Metrics = current
	result.Success = true

	log.Printf("analysis complete: %d runs, %d findings, report=%s",
		len(currentRuns), len(findings), filename)
	return result
}

// analyze evaluates the fixed ordered set of threshold comparisons and trend
// checks. Order matters: reports and proposal rules see findings in this
// sequence.
func (a *Agent) analyze(runs []model.RunRecord, m metrics.Summary) []Finding {
	var findings []Finding
	cfg := a.cfg

	if m.BuildSuccessRate < cfg.TargetBuildSuccessRate {
		findings = append(findings, Finding{
			Severity: SeverityCritical,
			Category: CategoryReliability,
			Message: fmt.Sprintf("Build success rate %s is below target %s",
				percent(m.BuildSuccessRate), percent(cfg.TargetBuildSuccessRate)),
			Detail: a.failedRunsDetail(runs),
		})
	} else if m.BuildSuccessRate == 1.0 {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Category: CategoryReliability,
			Message:  "All builds succeeded in this window",
		})
	}

	if m.DurationMedian > 0 && m.DurationMedian > cfg.TargetMedianCycleTime {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryDuration,
			Message: fmt.Sprintf("Median cycle time %.1fm exceeds target %.0fm",
				m.DurationMedian, cfg.TargetMedianCycleTime),
		})
	}

	if m.ManualInterventionRate > cfg.TargetManualInterventionRate {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryAutonomy,
			Message: fmt.Sprintf("Manual intervention rate %s exceeds target %s",
				percent(m.ManualInterventionRate), percent(cfg.TargetManualInterventionRate)),
			Detail: a.interventionDetail(runs),
		})
	}

	if m.AvgLintErrors > cfg.TargetMaxLintErrors {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryHygiene,
			Message: fmt.Sprintf("Average lint errors %.1f exceeds target %g",
				m.AvgLintErrors, cfg.TargetMaxLintErrors),
		})
	}

	if m.AvgTypeErrors > cfg.TargetMaxTypeErrors {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryHygiene,
			Message: fmt.Sprintf("Average type errors %.1f exceeds target %g",
				m.AvgTypeErrors, cfg.TargetMaxTypeErrors),
		})
	}

	if m.DurationTrend == metrics.TrendDegrading {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryTrend,
			Message:  "Cycle time is trending upward (degrading)",
		})
	}
	if m.ReliabilityTrend == metrics.TrendDegrading {
		findings = append(findings, Finding{
			Severity: SeverityCritical,
			Category: CategoryTrend,
			Message:  "Build reliability is trending downward (degrading)",
		})
	}
	if m.HygieneTrend == metrics.TrendDegrading {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Category: CategoryTrend,
			Message:  "Code hygiene is trending downward (degrading)",
		})
	}

	return findings
}

func (a *Agent) failedRunsDetail(runs []model.RunRecord) string {
	var failed []model.RunRecord
	for _, r := range runs {
		if !r.BuildSuccess {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return ""
	}
	lines := []string{fmt.Sprintf("Failed runs (%d):", len(failed))}
	shown := failed
	if len(shown) > a.cfg.MaxFlaggedRuns {
		shown = shown[:a.cfg.MaxFlaggedRuns]
	}
	for _, r := range shown {
		ref := r.InputRef
		if ref == "" {
			ref = "no ref"
		}
		lines = append(lines, fmt.Sprintf("  - %s (%s: %s)", r.RunID, r.InputType, ref))
	}
	if len(failed) > a.cfg.MaxFlaggedRuns {
		lines = append(lines, fmt.Sprintf("  ... and %d more", len(failed)-a.cfg.MaxFlaggedRuns))
	}
	return strings.Join(lines, "\n")
}

func (a *Agent) interventionDetail(runs []model.RunRecord) string {
	var manual []model.RunRecord
	for _, r := range runs {
		if r.ManualIntervention {
			manual = append(manual, r)
		}
	}
	if len(manual) == 0 {
		return ""
	}
	lines := []string{fmt.Sprintf("Manual interventions (%d):", len(manual))}
	shown := manual
	if len(shown) > a.cfg.MaxFlaggedRuns {
		shown = shown[:a.cfg.MaxFlaggedRuns]
	}
	for _, r := range shown {
		reason := r.ManualInterventionReason
		if reason == "" {
			reason = "no reason given"
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", r.RunID, reason))
	}
	return strings.Join(lines, "\n")
}

func (a *Agent) writeReport(content string) (string, error) {
	filename := fmt.Sprintf("%s-%s", a.cfg.ReportPrefix, a.now().UTC().Format("20060102-150405"))
	if _, err := a.hub.WriteAnalysis(filename, content); err != nil {
		return "", err
	}
	log.Printf("report written: %s.md", filename)
	return filename + ".md", nil
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Package readiness implements the graduation assessment that decides when
// the observer has accumulated enough operational data to gate automatic
// parameter application. It is strictly read-only.
package readiness

import (
	"fmt"
	"strings"
	"time"

	"github.com/obsplane/observer/internal/analysis"
	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/metrics"
	"github.com/obsplane/observer/internal/model"
	"github.com/obsplane/observer/internal/proposal"
)

// Graduation criteria. Tuned from operation, not derived.
const (
	minTotalRuns            = 20
	minRealRuns             = 15
	minTotalProposals       = 10
	minResolvedProposals    = 8
	minApprovedProposals    = 5
	minLowImpactApproved    = 3
	minLowImpactApproveRate = 0.8
	minBuildSuccessRate     = 0.9
	maxInterventionRate     = 0.15
	minAnalysisReports      = 5
	maxPendingProposals     = 0
	minDaysSinceFirst       = 14
	minRunsForTrend         = 6
)

// Check is one graduation criterion with its observed value.
type Check struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
	Op     string  `json:"op"`
	Detail string  `json:"detail"`
	Note   string  `json:"note,omitempty"`
}

// Report is the full assessment.
type Report struct {
	Ready     bool    `json:"ready"`
	Score     string  `json:"score"`
	CheckedAt string  `json:"checked_at"`
	Checks    []Check `json:"checks"`
}

// Checker runs the graduation assessment against a hub.
type Checker struct {
	hub *hub.Hub
	now func() time.Time
}

func NewChecker(h *hub.Hub) *Checker {
	return &Checker{hub: h, now: time.Now}
}

// Assess runs every criterion and returns the report.
func (c *Checker) Assess() (*Report, error) {
	runs, err := c.hub.ListRuns(0, true)
	if err != nil {
		return nil, err
	}
	proposals, err := proposal.NewEngine(c.hub, analysisDefaults()).ListAll()
	if err != nil {
		return nil, err
	}
	analyses, err := c.hub.ListAnalyses()
	if err != nil {
		return nil, err
	}

	var checks []Check

	// Run volume. Seed records carry "seed" in the run id and do not count
	// as real operational data.
	realRuns := 0
	for _, r := range runs {
		if !strings.Contains(r.RunID, "seed") {
			realRuns++
		}
	}
	checks = append(checks,
		gte("Total runs recorded", float64(len(runs)), minTotalRuns,
			fmt.Sprintf("%d runs", len(runs)), ""),
		gte("Real (non-seed) runs", float64(realRuns), minRealRuns,
			fmt.Sprintf("%d real runs", realRuns), ""),
	)

	// Proposal volume.
	var resolved, approved, pending []proposal.Proposal
	for _, p := range proposals {
		switch p.Status {
		case proposal.StatusApproved:
			approved = append(approved, p)
			resolved = append(resolved, p)
		case proposal.StatusRejected:
			resolved = append(resolved, p)
		case proposal.StatusPending:
			pending = append(pending, p)
		}
	}
	checks = append(checks,
		gte("Total proposals generated", float64(len(proposals)), minTotalProposals,
			fmt.Sprintf("%d proposals", len(proposals)), ""),
		gte("Resolved proposals (approved/rejected)", float64(len(resolved)), minResolvedProposals,
			fmt.Sprintf("%d resolved", len(resolved)), ""),
		gte("Approved proposals", float64(len(approved)), minApprovedProposals,
			fmt.Sprintf("%d approved", len(approved)), ""),
	)

	// Approval pattern clarity for low-impact proposals.
	lowApproved := 0
	for _, p := range approved {
		if p.ImpactLevel == proposal.ImpactLow {
			lowApproved++
		}
	}
	checks = append(checks, gte("Low-impact proposals approved", float64(lowApproved),
		minLowImpactApproved, fmt.Sprintf("%d low-impact approved", lowApproved), ""))

	lowResolved := 0
	for _, p := range resolved {
		if p.ImpactLevel == proposal.ImpactLow {
			lowResolved++
		}
	}
	if lowResolved > 0 {
		rate := float64(lowApproved) / float64(lowResolved)
		checks = append(checks, gte("Low-impact approval rate", rate, minLowImpactApproveRate,
			fmt.Sprintf("%.0f%% approval rate (%d low-impact resolved)", rate*100, lowResolved),
			"High approval rate for low-impact changes marks safe auto-apply candidates"))
	} else {
		checks = append(checks, gte("Low-impact approval rate", 0, minLowImpactApproveRate,
			"No low-impact proposals resolved yet", ""))
	}

	// System stability.
	if len(runs) > 0 {
		m := metrics.Compute(runs)
		checks = append(checks,
			gte("Build success rate", m.BuildSuccessRate, minBuildSuccessRate,
				fmt.Sprintf("%.1f%%", m.BuildSuccessRate*100), ""),
			lte("Manual intervention rate", m.ManualInterventionRate, maxInterventionRate,
				fmt.Sprintf("%.1f%%", m.ManualInterventionRate*100), ""),
		)
		checks = append(checks, c.trendChecks(runs)...)
	} else {
		checks = append(checks,
			gte("Build success rate", 0, minBuildSuccessRate, "No runs", ""),
			lte("Manual intervention rate", 1, maxInterventionRate, "No runs", ""),
		)
	}

	// Analysis coverage and open blockers.
	checks = append(checks,
		gte("Analysis reports generated", float64(len(analyses)), minAnalysisReports,
			fmt.Sprintf("%d reports", len(analyses)), ""),
		lte("No pending proposals (all resolved)", float64(len(pending)), maxPendingProposals,
			fmt.Sprintf("%d pending", len(pending)), ""),
	)

	// Operating time since the first proposal.
	checks = append(checks, c.ageCheck(proposals))

	passed := 0
	for _, ch := range checks {
		if ch.Passed {
			passed++
		}
	}
	return &Report{
		Ready:     passed == len(checks),
		Score:     fmt.Sprintf("%d/%d", passed, len(checks)),
		CheckedAt: c.now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}, nil
}

// trendChecks splits the newest-first run list in half and compares the
// recent half against the older half. Fewer than minRunsForTrend runs fails
// both trend criteria.
func (c *Checker) trendChecks(runs []model.RunRecord) []Check {
	if len(runs) < minRunsForTrend {
		insufficient := fmt.Sprintf("Not enough runs for trend analysis (need >=%d)", minRunsForTrend)
		return []Check{
			gte("Duration trend not degrading", 0, 1, insufficient, ""),
			gte("Reliability trend not degrading", 0, 1, insufficient, ""),
		}
	}

	mid := len(runs) / 2
	recent := metrics.Compute(runs[:mid])
	older := metrics.Compute(runs[mid:])
	recent = metrics.ComputeTrends(recent, older, analysisDefaults().TrendThreshold)

	durationOK := recent.DurationTrend != metrics.TrendDegrading
	reliabilityOK := recent.ReliabilityTrend != metrics.TrendDegrading
	return []Check{
		gte("Duration trend not degrading", boolVal(durationOK), 1,
			fmt.Sprintf("Trend: %s", recent.DurationTrend), ""),
		gte("Reliability trend not degrading", boolVal(reliabilityOK), 1,
			fmt.Sprintf("Trend: %s", recent.ReliabilityTrend), ""),
	}
}

func boolVal(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func analysisDefaults() analysis.Config { return analysis.DefaultConfig() }

func (c *Checker) ageCheck(proposals []proposal.Proposal) Check {
	name := fmt.Sprintf("Days since first proposal (min %d)", minDaysSinceFirst)
	var first time.Time
	for _, p := range proposals {
		t, err := time.Parse(time.RFC3339, p.CreatedAt)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
	}
	if first.IsZero() {
		return gte(name, 0, minDaysSinceFirst, "No proposals yet", "")
	}
	days := c.now().UTC().Sub(first).Hours() / 24
	return gte(name, float64(int(days)), minDaysSinceFirst,
		fmt.Sprintf("%d days", int(days)), "")
}

func gte(name string, actual, target float64, detail, note string) Check {
	return Check{Name: name, Passed: actual >= target, Actual: actual,
		Target: target, Op: ">=", Detail: detail, Note: note}
}

func lte(name string, actual, target float64, detail, note string) Check {
	return Check{Name: name, Passed: actual <= target, Actual: actual,
		Target: target, Op: "<=", Detail: detail, Note: note}
}

// RenderText formats the report for terminal output.
func RenderText(r *Report) string {
	var b strings.Builder
	rule := strings.Repeat("=", 55)
	b.WriteString(rule + "\n")
	b.WriteString("  Graduation Readiness Assessment\n")
	b.WriteString(rule + "\n\n")

	for _, ch := range r.Checks {
		icon := "PASS"
		if !ch.Passed {
			icon = "FAIL"
		}
		fmt.Fprintf(&b, "  [%s]  %s\n", icon, ch.Name)
		fmt.Fprintf(&b, "         %s\n", ch.Detail)
		if ch.Note != "" {
			fmt.Fprintf(&b, "         -> %s\n", ch.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&b, "  Score: %s criteria met\n\n", r.Score)

	if r.Ready {
		b.WriteString("  READY FOR AUTO-APPLY\n\n")
		b.WriteString("  All graduation criteria met. There is enough data to\n")
		b.WriteString("  calibrate confidence thresholds for auto-apply.\n")
	} else {
		var remaining []Check
		for _, ch := range r.Checks {
			if !ch.Passed {
				remaining = append(remaining, ch)
			}
		}
		fmt.Fprintf(&b, "  NOT YET: %d criteria remaining\n\n", len(remaining))
		b.WriteString("  What's needed:\n")
		for _, ch := range remaining {
			fmt.Fprintf(&b, "    - %s (%s, need %s%g)\n", ch.Name, ch.Detail, ch.Op, ch.Target)
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

package analysis

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// AgentRunLog is one structured entry describing a single agent execution.
type AgentRunLog struct {
	AgentName       string  `json:"agent_name"`
	Timestamp       string  `json:"timestamp"`
	DurationSeconds float64 `json:"duration_seconds"`
	RunsAnalyzed    int     `json:"runs_analyzed"`
	FindingsCount   int     `json:"findings_count"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
	ReportFilename  string  `json:"report_filename"`
	WindowSize      int     `json:"window_size"`
}

// Monitor appends agent run entries to an append-only JSONL log under the
// hub's metrics directory. It is safe to call from any context: logging
// failures are reported to the process log, never returned.
type Monitor struct {
	mu      sync.Mutex
	logPath string
}

// NewMonitor returns a monitor writing to metricsDir/agent_runs.jsonl.
func NewMonitor(metricsDir string) *Monitor {
	return &Monitor{logPath: filepath.Join(metricsDir, "agent_runs.jsonl")}
}

// LogRun appends one entry. Never fails; a write error is logged and dropped.
func (m *Monitor) LogRun(entry AgentRunLog) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.append(entry); err != nil {
		log.Printf("failed to log agent run: %v", err)
	}
}

func (m *Monitor) append(entry AgentRunLog) error {
	if err := os.MkdirAll(filepath.Dir(m.logPath), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}

	f, err := os.OpenFile(m.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open agent log: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal agent log entry: %w", err)
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write agent log entry: %w", err)
	}
	return f.Sync()
}

// RecentRuns returns up to limit logged entries, newest first. Malformed
// lines are skipped.
func (m *Monitor) RecentRuns(limit int) []AgentRunLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.Open(m.logPath)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var entries []AgentRunLog
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry AgentRunLog
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// SuccessRate returns the success fraction across all logged runs, or -1
// when nothing has been logged.
func (m *Monitor) SuccessRate() float64 {
	runs := m.RecentRuns(0)
	if len(runs) == 0 {
		return -1
	}
	successes := 0
	for _, r := range runs {
		if r.Success {
			successes++
		}
	}
	return math.Round(float64(successes)/float64(len(runs))*10000) / 10000
}

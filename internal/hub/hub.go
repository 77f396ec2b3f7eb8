// Package hub implements the Context Hub: the directory-based persistence
// root for run records, analysis reports, parameter configs, proposals, and
// verdicts.
//
// Design principles:
//   - Append-only run records: one JSON file per run, never modified
//   - No database: plain files, trivially portable and git-diffable
//   - Forward-compatible: unknown fields in stored JSON never break reads
//
// The hub assumes a single writer per directory. The exists-check-then-write
// sequence in WriteRun has a race window under concurrent writers; the atomic
// rename prevents a half-written file from being observed but not a
// last-writer-wins clobber. This is a hard deployment constraint, not a bug
// to paper over with locking.
package hub

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/obsplane/observer/internal/jsonio"
	"github.com/obsplane/observer/internal/model"
)

// Hub is the persistence root. Directory layout:
//
//	<base>/
//	  runs/        immutable run records (one JSON per run)
//	  metrics/     metric snapshots and the agent run log
//	  analysis/    analysis reports (markdown)
//	  proposals/   parameter change proposals
//	  parameters/  versioned parameter configs
//	  verdicts/    per-artifact verdict documents
type Hub struct {
	BasePath      string
	RunsDir       string
	MetricsDir    string
	AnalysisDir   string
	ProposalsDir  string
	ParametersDir string
	VerdictsDir   string
}

// Open creates the hub directory structure if needed and returns a Hub.
func Open(basePath string) (*Hub, error) {
	h := &Hub{
		BasePath:      basePath,
		RunsDir:       filepath.Join(basePath, "runs"),
		MetricsDir:    filepath.Join(basePath, "metrics"),
		AnalysisDir:   filepath.Join(basePath, "analysis"),
		ProposalsDir:  filepath.Join(basePath, "proposals"),
		ParametersDir: filepath.Join(basePath, "parameters"),
		VerdictsDir:   filepath.Join(basePath, "verdicts"),
	}
	for _, d := range []string{h.RunsDir, h.MetricsDir, h.AnalysisDir, h.ProposalsDir, h.ParametersDir, h.VerdictsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// --- Run records (immutable) ---

func (h *Hub) runPath(runID string) string {
	return filepath.Join(h.RunsDir, runID+".json")
}

// WriteRun validates and persists an immutable run record. It returns a
// *ValidationError for contract violations and ErrRecordExists when the run
// ID is already taken. This is the immutability enforcement point.
func (h *Hub) WriteRun(r model.RunRecord) (string, error) {
	if issues := model.Validate(r); len(issues) > 0 {
		return "", &ValidationError{RunID: r.RunID, Issues: issues}
	}

	path := h.runPath(r.RunID)
	if _, err := os.Stat(path); err == nil {
		return "", ErrRecordExists
	}

	content, err := model.MarshalRecord(r)
	if err != nil {
		return "", err
	}
	if err := jsonio.AtomicWriteRaw(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// ReadRun returns the record for runID, or (nil, nil) if it does not exist.
func (h *Hub) ReadRun(runID string) (*model.RunRecord, error) {
	data, err := os.ReadFile(h.runPath(runID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r, err := model.UnmarshalRecord(data)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns records sorted by filename. Run IDs are constructed to be
// lexicographically time-ordered, so filename sort equals chronological
// order. Corrupted files are logged and skipped; a damaged record must not
// block access to the rest of the store. limit <= 0 means no limit.
func (h *Hub) ListRuns(limit int, newestFirst bool) ([]model.RunRecord, error) {
	files, err := h.sortedJSONFiles(h.RunsDir, newestFirst)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	records := make([]model.RunRecord, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping unreadable record %s: %v", path, err)
			continue
		}
		r, err := model.UnmarshalRecord(data)
		if err != nil {
			log.Printf("skipping corrupted record %s: %v", path, err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// RunCount returns the number of stored run records.
func (h *Hub) RunCount() int {
	files, err := filepath.Glob(filepath.Join(h.RunsDir, "*.json"))
	if err != nil {
		return 0
	}
	return len(files)
}

// RunExists reports whether a record with the given run ID is stored.
func (h *Hub) RunExists(runID string) bool {
	_, err := os.Stat(h.runPath(runID))
	return err == nil
}

// --- Analysis reports (write-once markdown) ---

// WriteAnalysis writes a markdown analysis report. The .md extension is
// appended when missing.
func (h *Hub) WriteAnalysis(filename, content string) (string, error) {
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}
	path := filepath.Join(h.AnalysisDir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadAnalysis returns a report's content, or ("", nil) if not found.
func (h *Hub) ReadAnalysis(filename string) (string, error) {
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}
	data, err := os.ReadFile(filepath.Join(h.AnalysisDir, filename))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListAnalyses returns all report filenames, newest first.
func (h *Hub) ListAnalyses() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(h.AnalysisDir, "*.md"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// --- Parameter configs (versioned, immutable per version) ---

// WriteParameters persists a parameter config under the given version.
func (h *Hub) WriteParameters(version string, config map[string]any) (string, error) {
	path := filepath.Join(h.ParametersDir, version+".json")
	if err := jsonio.AtomicWrite(path, config); err != nil {
		return "", err
	}
	return path, nil
}

// ReadParameters returns a specific config version, or (nil, nil) if absent.
func (h *Hub) ReadParameters(version string) (map[string]any, error) {
	return readJSONMap(filepath.Join(h.ParametersDir, version+".json"))
}

// LatestParameters returns the config with the lexicographically highest
// version filename, or (nil, nil) when the store is empty. Callers must use
// a monotonically orderable version scheme; latest is not derived from file
// modification time.
func (h *Hub) LatestParameters() (map[string]any, error) {
	versions, err := h.ParameterVersions()
	if err != nil || len(versions) == 0 {
		return nil, err
	}
	return h.ReadParameters(versions[len(versions)-1])
}

// ParameterVersions returns all stored version strings in ascending order.
func (h *Hub) ParameterVersions() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(h.ParametersDir, "*.json"))
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(files))
	for _, f := range files {
		versions = append(versions, strings.TrimSuffix(filepath.Base(f), ".json"))
	}
	sort.Strings(versions)
	return versions, nil
}

// --- Proposals (id-keyed, mutable in place on status transition) ---

// WriteProposal persists a proposal document, overwriting any existing one
// with the same ID. Unlike run records, proposals transition status in place.
func (h *Hub) WriteProposal(proposalID string, content map[string]any) (string, error) {
	path := filepath.Join(h.ProposalsDir, proposalID+".json")
	if err := jsonio.AtomicWrite(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// ReadProposal returns a proposal document, or (nil, nil) if absent.
func (h *Hub) ReadProposal(proposalID string) (map[string]any, error) {
	return readJSONMap(filepath.Join(h.ProposalsDir, proposalID+".json"))
}

// ListProposals returns all proposal IDs, newest first.
func (h *Hub) ListProposals() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(h.ProposalsDir, "*.json"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(f), ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// --- internals ---

func (h *Hub) sortedJSONFiles(dir string, newestFirst bool) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	if newestFirst {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	return files, nil
}

func readJSONMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

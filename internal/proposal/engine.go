package proposal

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/obsplane/observer/internal/analysis"
	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/model"
)

// Engine generates, approves, and rejects parameter change proposals.
// It reads analysis findings and the current parameter config, never run
// records, and enforces a single pending proposal at a time.
type Engine struct {
	hub *hub.Hub
	cfg analysis.Config
	now func() time.Time
}

func NewEngine(h *hub.Hub, cfg analysis.Config) *Engine {
	return &Engine{hub: h, cfg: cfg, now: time.Now}
}

// Generate builds a proposal from analysis findings. Returns (nil, nil) when
// no rule matches, and ErrPendingProposalExists when a proposal is already
// awaiting resolution.
func (e *Engine) Generate(findings []analysis.Finding, sourceReport string) (*Proposal, error) {
	pending, err := e.PendingProposals()
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrPendingProposalExists, pending[0].ProposalID)
	}

	params, err := e.hub.LatestParameters()
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	currentVersion, err := e.currentVersion(params)
	if err != nil {
		return nil, err
	}

	var diffs []ParameterDiff
	seenPaths := map[string]bool{}
	for _, f := range findings {
		for _, r := range rules {
			diff := r(f, e.cfg, params)
			if diff != nil && !seenPaths[diff.Path] {
				diffs = append(diffs, *diff)
				seenPaths[diff.Path] = true
			}
		}
	}

	if len(diffs) == 0 {
		log.Printf("no proposal rules matched, nothing to propose")
		return nil, nil
	}

	impact := computeImpact(diffs, findings)
	p := Proposal{
		ProposalID:      model.GenerateProposalID(),
		CreatedAt:       e.now().UTC().Format(time.RFC3339),
		Status:          StatusPending,
		FindingsSummary: findingMessages(findings),
		SourceReport:    sourceReport,
		ParameterDiffs:  diffs,
		ImpactLevel:     impact,
		Rationale:       buildRationale(diffs, findings),
		VersionFrom:     currentVersion,
		VersionTo:       BumpVersion(currentVersion, impact),
	}

	if err := e.writeProposal(p); err != nil {
		return nil, err
	}
	log.Printf("proposal generated: %s (%d changes, %s impact)",
		p.ProposalID, len(diffs), impact)
	return &p, nil
}

// Approve resolves a pending proposal, applies its diffs to the latest
// parameter config, and persists the bumped parameter version before
// flipping the proposal status.
func (e *Engine) Approve(proposalID, approvedBy string) (*Proposal, error) {
	p, err := e.load(proposalID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(p.Status, StatusApproved); err != nil {
		return nil, fmt.Errorf("%w: %s is %q", ErrProposalNotPending, proposalID, p.Status)
	}

	params, err := e.hub.LatestParameters()
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	newParams := applyDiffs(params, p.ParameterDiffs)
	newParams["version"] = p.VersionTo
	newParams["created"] = e.now().UTC().Format("2006-01-02")
	newParams["description"] = fmt.Sprintf("Applied proposal %s", proposalID)
	newParams["applied_from_proposal"] = proposalID

	if _, err := e.hub.WriteParameters(p.VersionTo, newParams); err != nil {
		return nil, err
	}

	p.Status = StatusApproved
	p.ResolvedBy = approvedBy
	p.ResolvedAt = e.now().UTC().Format(time.RFC3339)
	if err := e.writeProposal(*p); err != nil {
		return nil, err
	}

	log.Printf("proposal %s approved by %s, parameters now %s",
		proposalID, approvedBy, p.VersionTo)
	return p, nil
}

// Reject resolves a pending proposal without touching parameters.
func (e *Engine) Reject(proposalID, reason, rejectedBy string) (*Proposal, error) {
	p, err := e.load(proposalID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(p.Status, StatusRejected); err != nil {
		return nil, fmt.Errorf("%w: %s is %q", ErrProposalNotPending, proposalID, p.Status)
	}

	p.Status = StatusRejected
	p.ResolvedBy = rejectedBy
	p.ResolvedAt = e.now().UTC().Format(time.RFC3339)
	p.RejectionReason = reason
	if err := e.writeProposal(*p); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "(no reason)"
	}
	log.Printf("proposal %s rejected by %s: %s", proposalID, rejectedBy, reason)
	return p, nil
}

// PendingProposals returns all proposals still awaiting resolution.
func (e *Engine) PendingProposals() ([]Proposal, error) {
	all, err := e.ListAll()
	if err != nil {
		return nil, err
	}
	var pending []Proposal
	for _, p := range all {
		if p.IsPending() {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

// ListAll returns every stored proposal regardless of status. Unreadable
// proposal files are logged and skipped.
func (e *Engine) ListAll() ([]Proposal, error) {
	ids, err := e.hub.ListProposals()
	if err != nil {
		return nil, err
	}
	var out []Proposal
	for _, id := range ids {
		p, err := e.load(id)
		if err != nil {
			log.Printf("skipping unreadable proposal %s: %v", id, err)
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Load returns one proposal by id.
func (e *Engine) Load(proposalID string) (*Proposal, error) {
	return e.load(proposalID)
}

func (e *Engine) load(proposalID string) (*Proposal, error) {
	doc, err := e.hub.ReadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProposalFound, proposalID)
	}
	p, err := FromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (e *Engine) writeProposal(p Proposal) error {
	doc, err := p.ToDocument()
	if err != nil {
		return err
	}
	_, err = e.hub.WriteProposal(p.ProposalID, doc)
	return err
}

// currentVersion reads the version of the latest parameter config, falling
// back to the newest parameter filename, then to "v0.1.0" for a fresh hub.
func (e *Engine) currentVersion(params map[string]any) (string, error) {
	if v, ok := params["version"].(string); ok && v != "" {
		return v, nil
	}
	versions, err := e.hub.ParameterVersions()
	if err != nil {
		return "", err
	}
	if len(versions) > 0 {
		return versions[len(versions)-1], nil
	}
	return "v0.1.0", nil
}

// applyDiffs returns a deep copy of params with each diff's new value set at
// its dot-path, creating intermediate maps as needed. Inputs are never
// mutated.
func applyDiffs(params map[string]any, diffs []ParameterDiff) map[string]any {
	result := deepCopyMap(params)
	for _, d := range diffs {
		parts := strings.Split(d.Path, ".")
		target := result
		for _, part := range parts[:len(parts)-1] {
			next, ok := target[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				target[part] = next
			}
			target = next
		}
		target[parts[len(parts)-1]] = d.NewValue
	}
	return result
}

func deepCopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(m)
		} else {
			out[k] = v
		}
	}
	return out
}

func findingMessages(findings []analysis.Finding) []string {
	msgs := make([]string, 0, len(findings))
	for _, f := range findings {
		msgs = append(msgs, f.Message)
	}
	return msgs
}

func buildRationale(diffs []ParameterDiff, findings []analysis.Finding) string {
	lines := []string{fmt.Sprintf("Based on %d analysis finding(s):", len(findings))}
	for _, d := range diffs {
		lines = append(lines, fmt.Sprintf("  - %s: %v -> %v (%s)",
			d.Path, d.OldValue, d.NewValue, d.Reason))
	}
	return strings.Join(lines, "\n")
}

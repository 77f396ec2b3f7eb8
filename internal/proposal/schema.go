// Package proposal implements the rule-based engine that converts analysis
// findings into parameter change proposals. All rules are deterministic and
// small enough to read in one screen; operator trust depends on that.
package proposal

import (
	"encoding/json"
	"fmt"
)

// Status of a proposal. Transitions are one-way: pending → approved or
// pending → rejected, nothing else.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var validStatusTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved: true,
		StatusRejected: true,
	},
}

// ValidateTransition reports whether from → to is a legal status change.
func ValidateTransition(from, to Status) error {
	if !validStatusTransitions[from][to] {
		return fmt.Errorf("invalid proposal transition: %q → %q", from, to)
	}
	return nil
}

// ImpactLevel classifies how large a proposed change is.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// ParameterDiff is one proposed change to a dot-path in the parameter
// config. Diffs are never altered after generation.
type ParameterDiff struct {
	Path     string `json:"path"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
	Reason   string `json:"reason"`
}

// Proposal is a single unit of parameter-change recommendation awaiting
// human approval.
type Proposal struct {
	ProposalID      string          `json:"proposal_id"`
	CreatedAt       string          `json:"created_at"`
	Status          Status          `json:"status"`
	FindingsSummary []string        `json:"findings_summary"`
	SourceReport    string          `json:"source_report"`
	ParameterDiffs  []ParameterDiff `json:"parameter_diffs"`
	ImpactLevel     ImpactLevel     `json:"impact_level"`
	Rationale       string          `json:"rationale"`
	VersionFrom     string          `json:"version_from"`
	VersionTo       string          `json:"version_to"`
	ResolvedBy      string          `json:"resolved_by"`
	ResolvedAt      string          `json:"resolved_at"`
	RejectionReason string          `json:"rejection_reason"`
}

// IsPending reports whether the proposal still awaits resolution.
func (p Proposal) IsPending() bool { return p.Status == StatusPending }

// ToDocument converts the proposal to the generic map form the hub stores.
func (p Proposal) ToDocument() (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal proposal: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("proposal to document: %w", err)
	}
	return doc, nil
}

// FromDocument parses a stored proposal document. Unknown fields are dropped.
func FromDocument(doc map[string]any) (Proposal, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Proposal{}, fmt.Errorf("marshal proposal document: %w", err)
	}
	var p Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Proposal{}, fmt.Errorf("parse proposal document: %w", err)
	}
	return p, nil
}

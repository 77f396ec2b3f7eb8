package proposal

import "errors"

// Workflow state violations. All are recoverable by resolving the referenced
// proposal or correcting the id.
var (
	// ErrPendingProposalExists means a new proposal was attempted while one
	// is still awaiting resolution.
	ErrPendingProposalExists = errors.New("a proposal is already pending; approve or reject it first")

	// ErrNoProposalFound means the referenced proposal id does not exist.
	ErrNoProposalFound = errors.New("proposal not found")

	// ErrProposalNotPending means an approve/reject targeted an already
	// resolved proposal.
	ErrProposalNotPending = errors.New("proposal is not pending")
)

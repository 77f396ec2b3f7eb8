package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateRunID returns a time-sortable run ID of the form
// YYYY-MM-DD-<ulid>. Filename sort equals chronological order: the date
// prefix orders across days and the ULID orders within one.
func GenerateRunID() string {
	now := time.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return now.Format("2006-01-02") + "-" + strings.ToLower(id.String())
}

// GenerateProposalID returns a proposal ID with a timestamp prefix and a
// short random suffix, e.g. prop-20260204-091500-3f2a91bc.
func GenerateProposalID() string {
	now := time.Now().UTC()
	return "prop-" + now.Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

// CurrentTimestamp returns the current UTC time in RFC 3339 format, the
// canonical timestamp representation for all hub documents.
func CurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// LaunchCandidateStatus tracks the alternate-signal discovery path
// (spec.md §4.7).
type LaunchCandidateStatus string

const (
	CandidateNew      LaunchCandidateStatus = "new"
	CandidateAccepted LaunchCandidateStatus = "accepted"
	CandidateRejected LaunchCandidateStatus = "rejected"
	CandidateExpired  LaunchCandidateStatus = "expired"
)

// LaunchCandidate is an externally-fed launch signal, idempotent by
// (Mint, Source). Consumed by the Candidate Consumer and folded into the
// opportunity engine via the same matching rules as a CreateEvent.
type LaunchCandidate struct {
	ID        uuid.UUID             `json:"id"`
	Mint      string                `json:"mint"`
	Source    string                `json:"source"`
	Status    LaunchCandidateStatus `json:"status"`
	Reason    string                `json:"reason,omitempty"`
	ExpiresAt time.Time             `json:"expires_at"`
	CreatedAt time.Time             `json:"created_at"`
}

// IsExpired reports whether the candidate has aged past its window.
func (c *LaunchCandidate) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

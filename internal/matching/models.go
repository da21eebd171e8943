// internal/matching/models.go

package matching

import (
	"time"

	"github.com/google/uuid"
)

// MatchingStatus is the lifecycle state of a matching request.
type MatchingStatus string

const (
	StatusPending  MatchingStatus = "Pending"
	StatusAccepted MatchingStatus = "Accepted"
	StatusDeclined MatchingStatus = "Declined"
)

// Valid reports whether s is a known lifecycle state.
func (s MatchingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// MatchingRequest is a member's request to be paired with a sponsor. The
// compatibility score is frozen at creation time; later profile edits never
// change it.
type MatchingRequest struct {
	ID         uuid.UUID      `json:"matching_request_id" db:"matching_request_id"`
	MemberID   uuid.UUID      `json:"member_id" db:"member_id"`
	SponsorID  *uuid.UUID     `json:"sponsor_id,omitempty" db:"sponsor_id"`
	Status     MatchingStatus `json:"status" db:"status"`
	MatchScore *float64       `json:"match_score,omitempty" db:"match_score"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// RequestSummary is a request joined with the counterparty's display fields
// for list endpoints.
type RequestSummary struct {
	MatchingRequest
	CounterpartyName   string  `json:"counterparty_name" db:"counterparty_name"`
	CounterpartyAvatar *string `json:"counterparty_avatar,omitempty" db:"counterparty_avatar"`
}

// CompatibilityFactors is the per-dimension breakdown behind a score. Each
// factor is the weighted contribution, so the factors sum to the total.
type CompatibilityFactors struct {
	Interests    float64 `json:"interests"`
	Experience   float64 `json:"experience"`
	Availability float64 `json:"availability"`
	Languages    float64 `json:"languages"`
	Location     float64 `json:"location"`
	Age          float64 `json:"age"`
}

// RankedSponsor is one entry of a recommendation listing.
type RankedSponsor struct {
	SponsorID uuid.UUID             `json:"sponsor_id"`
	Score     float64               `json:"score"`
	Factors   *CompatibilityFactors `json:"factors,omitempty"`
}

// CreateRequestDTO is the body of a request-creation call. SponsorID is
// optional; when absent the engine assigns the top-ranked candidate.
type CreateRequestDTO struct {
	SponsorID *uuid.UUID `json:"sponsor_id,omitempty"`
}

// RespondDTO is the body of a sponsor's response to a pending request.
type RespondDTO struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

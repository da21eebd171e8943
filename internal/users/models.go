// internal/users/models.go

package users

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a user's platform role.
type Role string

const (
	RoleMember  Role = "member"
	RoleSponsor Role = "sponsor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleSponsor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalizes a role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Location is the structured location stored on a user profile.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      *string `json:"city,omitempty"`
	Country   *string `json:"country,omitempty"`
}

// Locality returns the locality string used for proximity scoring.
func (l *Location) Locality() string {
	if l == nil || l.City == nil {
		return ""
	}
	return strings.TrimSpace(*l.City)
}

// MatchProfile is the read-only projection of a user's attributes used for
// compatibility scoring. It carries no behavior beyond convenience accessors.
type MatchProfile struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	DOB           time.Time       `json:"dob" db:"dob"`
	RawLocation   json.RawMessage `json:"-" db:"location"`
	Location      *Location       `json:"location,omitempty"`
	Interests     []string        `json:"interests" db:"-"`
	Experience    []string        `json:"experience" db:"-"`
	AvailableDays []string        `json:"available_days" db:"-"`
	Languages     []string        `json:"languages" db:"-"`
}

// Complete reports whether every optional matching field has been filled in.
// Members must complete their profile before requesting a sponsor.
func (p *MatchProfile) Complete() bool {
	return p.Location != nil &&
		len(p.Interests) > 0 &&
		len(p.Experience) > 0 &&
		len(p.AvailableDays) > 0 &&
		len(p.Languages) > 0
}

// internal/users/repository.go
// Read-only lookups supplied to the matching engine and the dispatcher.
// User registration and profile CRUD live in the upstream user service;
// this package only projects what the core needs.

package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
)

// Directory exposes profile and role lookups.
type Directory interface {
	GetMatchProfile(ctx context.Context, userID uuid.UUID) (*MatchProfile, error)
	GetRole(ctx context.Context, userID uuid.UUID) (Role, error)
	GetSponsorProfiles(ctx context.Context) ([]*MatchProfile, error)
}

type postgresDirectory struct {
	db *sqlx.DB
}

// NewPostgresDirectory creates a Directory backed by the users table.
func NewPostgresDirectory(db *sqlx.DB) Directory {
	return &postgresDirectory{db: db}
}

func (d *postgresDirectory) GetMatchProfile(ctx context.Context, userID uuid.UUID) (*MatchProfile, error) {
	query := `
        SELECT id, dob, location, interests, experience, available_days, languages
        FROM users WHERE id = $1
    `

	p, err := scanMatchProfile(d.db.QueryRowxContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch match profile: %w", err)
	}
	return p, nil
}

func (d *postgresDirectory) GetRole(ctx context.Context, userID uuid.UUID) (Role, error) {
	var role string
	query := `SELECT role FROM users WHERE id = $1`

	err := d.db.GetContext(ctx, &role, query, userID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	if err != nil {
		return "", fmt.Errorf("fetch role: %w", err)
	}

	r, ok := ParseRole(role)
	if !ok {
		return "", fmt.Errorf("unknown role %q for user %s", role, userID)
	}
	return r, nil
}

func (d *postgresDirectory) GetSponsorProfiles(ctx context.Context) ([]*MatchProfile, error) {
	query := `
        SELECT id, dob, location, interests, experience, available_days, languages
        FROM users WHERE role = 'sponsor'
    `

	rows, err := d.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch sponsors: %w", err)
	}
	defer rows.Close()

	var sponsors []*MatchProfile
	for rows.Next() {
		p, err := scanMatchProfile(rows)
		if err != nil {
			continue
		}
		sponsors = append(sponsors, p)
	}

	return sponsors, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchProfile(row rowScanner) (*MatchProfile, error) {
	var p MatchProfile
	var location []byte
	var dob sql.NullTime

	err := row.Scan(
		&p.ID, &dob, &location,
		pq.Array(&p.Interests), pq.Array(&p.Experience),
		pq.Array(&p.AvailableDays), pq.Array(&p.Languages),
	)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		p.DOB = dob.Time
	}

	if len(location) > 0 {
		var loc Location
		if err := json.Unmarshal(location, &loc); err == nil {
			p.Location = &loc
			p.RawLocation = json.RawMessage(location)
		}
	}

	return &p, nil
}

// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
)

// Repository persists matching requests. Conditional mutations only touch
// rows still Pending, so concurrent state transitions settle first-wins at
// the storage layer.
type Repository interface {
	Create(ctx context.Context, req *MatchingRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*MatchingRequest, error)
	HasPendingForMember(ctx context.Context, memberID uuid.UUID) (bool, error)
	PendingSponsorIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error)
	SetStatusIfPending(ctx context.Context, id uuid.UUID, status MatchingStatus) (bool, error)
	DeleteIfPending(ctx context.Context, id uuid.UUID) (bool, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]*RequestSummary, error)
	ListForSponsor(ctx context.Context, sponsorID uuid.UUID) ([]*RequestSummary, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, req *MatchingRequest) error {
	query := `
		INSERT INTO matching_requests (member_id, sponsor_id, status, match_score)
		VALUES ($1, $2, $3, $4)
		RETURNING matching_request_id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.MemberID, req.SponsorID, req.Status, req.MatchScore,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create matching request: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*MatchingRequest, error) {
	var req MatchingRequest
	query := `
		SELECT matching_request_id, member_id, sponsor_id, status, match_score, created_at
		FROM matching_requests
		WHERE matching_request_id = $1`

	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: matching request %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get matching request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) HasPendingForMember(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matching_requests
			WHERE member_id = $1 AND status = $2
		)`

	if err := r.db.GetContext(ctx, &exists, query, memberID, StatusPending); err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) PendingSponsorIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `
		SELECT sponsor_id FROM matching_requests
		WHERE member_id = $1 AND status = $2 AND sponsor_id IS NOT NULL`

	if err := r.db.SelectContext(ctx, &ids, query, memberID, StatusPending); err != nil {
		return nil, fmt.Errorf("failed to list pending sponsors: %w", err)
	}
	return ids, nil
}

// SetStatusIfPending transitions a request out of Pending. Returns false
// when the row was already settled, which the caller surfaces as a
// conflict.
func (r *postgresRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, status MatchingStatus) (bool, error) {
	query := `
		UPDATE matching_requests
		SET status = $1
		WHERE matching_request_id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, status, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update matching request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update matching request: %w", err)
	}
	return rows == 1, nil
}

func (r *postgresRepository) DeleteIfPending(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		DELETE FROM matching_requests
		WHERE matching_request_id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete matching request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete matching request: %w", err)
	}
	return rows == 1, nil
}

func (r *postgresRepository) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*RequestSummary, error) {
	summaries := []*RequestSummary{}
	query := `
		SELECT mr.matching_request_id, mr.member_id, mr.sponsor_id, mr.status,
		       mr.match_score, mr.created_at,
		       COALESCE(u.username, '') AS counterparty_name,
		       u.avatar_url AS counterparty_avatar
		FROM matching_requests mr
		LEFT JOIN users u ON u.id = mr.sponsor_id
		WHERE mr.member_id = $1
		ORDER BY mr.created_at DESC`

	if err := r.db.SelectContext(ctx, &summaries, query, memberID); err != nil {
		return nil, fmt.Errorf("failed to list matching requests: %w", err)
	}
	return summaries, nil
}

func (r *postgresRepository) ListForSponsor(ctx context.Context, sponsorID uuid.UUID) ([]*RequestSummary, error) {
	summaries := []*RequestSummary{}
	query := `
		SELECT mr.matching_request_id, mr.member_id, mr.sponsor_id, mr.status,
		       mr.match_score, mr.created_at,
		       COALESCE(u.username, '') AS counterparty_name,
		       u.avatar_url AS counterparty_avatar
		FROM matching_requests mr
		JOIN users u ON u.id = mr.member_id
		WHERE mr.sponsor_id = $1
		ORDER BY mr.created_at DESC`

	if err := r.db.SelectContext(ctx, &summaries, query, sponsorID); err != nil {
		return nil, fmt.Errorf("failed to list matching requests: %w", err)
	}
	return summaries, nil
}

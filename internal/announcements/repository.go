// internal/announcements/repository.go

package announcements

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
	"github.com/solacelink/solace-backend/internal/users"
)

// Repository persists announcement records. Records are append-only.
type Repository interface {
	Create(ctx context.Context, a *Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Announcement, error)
	ListForRecipient(ctx context.Context, userID uuid.UUID, role users.Role, limit, offset int) ([]*Announcement, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, a *Announcement) error {
	query := `
		INSERT INTO announcements (
			announcement_type, announcement_target, announcement_target_id,
			recipient_role, recipient_id, extra_data, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING announcement_id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.Kind, a.Target, a.TargetID, a.RecipientRole, a.RecipientID,
		a.Payload, a.Message,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	var a Announcement
	query := `
		SELECT announcement_id, announcement_type, announcement_target,
		       announcement_target_id, recipient_role, recipient_id,
		       extra_data, message, created_at
		FROM announcements
		WHERE announcement_id = $1`

	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: announcement %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

// ListForRecipient returns announcements visible to the given user, newest
// first: directed to them, addressed to their role, or global. Room-scoped
// records are unaddressed too but belong to their room's live subscribers,
// never to the poll feed.
func (r *postgresRepository) ListForRecipient(ctx context.Context, userID uuid.UUID, role users.Role, limit, offset int) ([]*Announcement, error) {
	announcements := []*Announcement{}
	query := `
		SELECT announcement_id, announcement_type, announcement_target,
		       announcement_target_id, recipient_role, recipient_id,
		       extra_data, message, created_at
		FROM announcements
		WHERE recipient_id = $1
		   OR recipient_role = $2
		   OR (recipient_id IS NULL AND recipient_role IS NULL
		       AND (announcement_target IS NULL
		            OR announcement_target NOT IN ('group_chat', 'group_meeting')))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	if err := r.db.SelectContext(ctx, &announcements, query, userID, role, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

// internal/announcements/dispatcher.go

package announcements

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
	"github.com/solacelink/solace-backend/internal/users"
)

// ConnectionPusher is the live-delivery surface the dispatcher fans out
// through. Push methods never block and report how many connections the
// payload was handed to.
type ConnectionPusher interface {
	PushToUser(userID uuid.UUID, payload []byte) int
	PushToRoom(room string, payload []byte) int
	PushToAll(payload []byte) int
	ConnectedUsers() []uuid.UUID
}

// RoleLookup resolves a user's current role at dispatch time.
type RoleLookup interface {
	GetRole(ctx context.Context, userID uuid.UUID) (users.Role, error)
}

// Dispatcher persists announcements and attempts immediate delivery to the
// resolved audience. Persistence is authoritative; a publish succeeds even
// when zero live deliveries happen.
type Dispatcher struct {
	repo      Repository
	pusher    ConnectionPusher
	roles     RoleLookup
	minMsgLen int
}

func NewDispatcher(repo Repository, pusher ConnectionPusher, roles RoleLookup, minMsgLen int) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		pusher:    pusher,
		roles:     roles,
		minMsgLen: minMsgLen,
	}
}

// Publish validates, persists, and fans out an announcement. The returned
// record carries the storage-assigned identity and timestamp. Delivery
// failures are logged and never surfaced to the caller.
func (d *Dispatcher) Publish(ctx context.Context, a *Announcement) (*Announcement, error) {
	if !a.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown announcement type %q", apperrors.ErrValidation, a.Kind)
	}
	if a.Target != nil && !a.Target.Valid() {
		return nil, fmt.Errorf("%w: unknown announcement target %q", apperrors.ErrValidation, *a.Target)
	}
	if len(a.Message) < d.minMsgLen {
		return nil, fmt.Errorf("%w: message must be at least %d characters", apperrors.ErrValidation, d.minMsgLen)
	}

	audience, err := a.ResolveAudience()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := d.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	publishedTotal.WithLabelValues(string(a.Kind)).Inc()

	delivered := d.dispatch(ctx, a, audience)
	log.Printf("Announcement %s (%s) published, delivered to %d connection(s)", a.ID, a.Kind, delivered)

	return a, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, a *Announcement, audience Audience) int {
	payload, err := json.Marshal(Envelope{
		Type:           a.Kind,
		AnnouncementID: a.ID,
		Target:         a.Target,
		TargetID:       a.TargetID,
		Payload:        a.Payload,
		Message:        a.Message,
		Timestamp:      a.CreatedAt,
	})
	if err != nil {
		log.Printf("Failed to encode announcement %s for delivery: %v", a.ID, err)
		return 0
	}

	var delivered int
	switch audience {
	case AudienceUser:
		delivered = d.pusher.PushToUser(*a.RecipientID, payload)
	case AudienceRole:
		delivered = d.pushToRole(ctx, *a.RecipientRole, payload)
	case AudienceRoom:
		delivered = d.pusher.PushToRoom(RoomID(*a.Target, *a.TargetID), payload)
	case AudienceAll:
		delivered = d.pusher.PushToAll(payload)
	}
	deliveriesTotal.WithLabelValues(audienceLabel(audience)).Add(float64(delivered))
	return delivered
}

// pushToRole resolves roles against the directory at dispatch time rather
// than trusting any role captured at connect time. A role revoked since the
// socket was opened drops the user from the audience.
func (d *Dispatcher) pushToRole(ctx context.Context, role users.Role, payload []byte) int {
	connected := d.pusher.ConnectedUsers()
	var delivered int
	for _, userID := range connected {
		lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		current, err := d.roles.GetRole(lookupCtx, userID)
		cancel()
		if err != nil {
			log.Printf("Failed to resolve role for connected user %s: %v", userID, err)
			continue
		}
		if current == role {
			delivered += d.pusher.PushToUser(userID, payload)
		}
	}
	return delivered
}

func audienceLabel(a Audience) string {
	switch a {
	case AudienceUser:
		return "user"
	case AudienceRole:
		return "role"
	case AudienceRoom:
		return "room"
	default:
		return "all"
	}
}

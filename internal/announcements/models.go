// internal/announcements/models.go

package announcements

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/users"
)

// Kind is the closed enumeration of platform event types an announcement
// can describe.
type Kind string

const (
	KindGeneral                    Kind = "general"
	KindNewSponsorApplication      Kind = "new_sponsor_application"
	KindSponsorApplicationApproved Kind = "sponsor_application_approved"
	KindSponsorApplicationRejected Kind = "sponsor_application_rejected"
	KindSupportGroupSuggestion     Kind = "support_group_suggestion"
	KindSupportGroupApproved       Kind = "support_group_approved"
	KindSupportGroupRejected       Kind = "support_group_rejected"
	KindMeetingScheduled           Kind = "meeting_scheduled"
	KindMeetingReminder            Kind = "meeting_reminder"
	KindMeetingStarted             Kind = "meeting_started"
	KindMeetingEnded               Kind = "meeting_ended"
	KindGroupChatInvitation        Kind = "group_chat_invitation"
	KindPrivateChatInvitation      Kind = "private_chat_invitation"
	KindNewPost                    Kind = "new_post"
	KindNewComment                 Kind = "new_comment"
	KindPostLike                   Kind = "post_like"
	KindCommentReply               Kind = "comment_reply"
	KindNewResource                Kind = "new_resource"
	KindMatchingRequestSubmitted   Kind = "matching_request_submitted"
	KindMatchingRequestAccepted    Kind = "matching_request_accepted"
	KindMatchingRequestDeclined    Kind = "matching_request_declined"
	KindAdminAction                Kind = "admin_action"
)

var knownKinds = map[Kind]bool{
	KindGeneral: true, KindNewSponsorApplication: true,
	KindSponsorApplicationApproved: true, KindSponsorApplicationRejected: true,
	KindSupportGroupSuggestion: true, KindSupportGroupApproved: true,
	KindSupportGroupRejected: true, KindMeetingScheduled: true,
	KindMeetingReminder: true, KindMeetingStarted: true, KindMeetingEnded: true,
	KindGroupChatInvitation: true, KindPrivateChatInvitation: true,
	KindNewPost: true, KindNewComment: true, KindPostLike: true,
	KindCommentReply: true, KindNewResource: true,
	KindMatchingRequestSubmitted: true, KindMatchingRequestAccepted: true,
	KindMatchingRequestDeclined: true, KindAdminAction: true,
}

// Valid reports whether k is a known announcement kind.
func (k Kind) Valid() bool { return knownKinds[k] }

// Target names the entity kind an announcement is about.
type Target string

const (
	TargetUser               Target = "user"
	TargetSponsorApplication Target = "sponsor_application"
	TargetSupportGroup       Target = "support_group"
	TargetGroupMeeting       Target = "group_meeting"
	TargetGroupChat          Target = "group_chat"
	TargetChat               Target = "chat"
	TargetPost               Target = "post"
	TargetComment            Target = "comment"
	TargetResource           Target = "resource"
	TargetMatchingRequest    Target = "matching_request"
)

var knownTargets = map[Target]bool{
	TargetUser: true, TargetSponsorApplication: true, TargetSupportGroup: true,
	TargetGroupMeeting: true, TargetGroupChat: true, TargetChat: true,
	TargetPost: true, TargetComment: true, TargetResource: true,
	TargetMatchingRequest: true,
}

// Valid reports whether t is a known target kind.
func (t Target) Valid() bool { return knownTargets[t] }

// roomScoped reports whether a target entity maps to a delivery room.
func roomScoped(t Target) bool {
	return t == TargetGroupChat || t == TargetGroupMeeting
}

// RoomID builds the room identifier for a room-scoped target.
func RoomID(t Target, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", t, id)
}

// RoomScoped reports whether the announcement addresses a delivery room.
// Room-scoped records never appear in per-user poll feeds; their audience
// is the room's live subscribers only.
func (a *Announcement) RoomScoped() bool {
	return a.Target != nil && roomScoped(*a.Target)
}

// Announcement is a persisted, typed notification of a platform event.
// Immutable once created; delivery state is never stored on the record.
type Announcement struct {
	ID            uuid.UUID       `json:"announcement_id" db:"announcement_id"`
	Kind          Kind            `json:"announcement_type" db:"announcement_type"`
	Target        *Target         `json:"announcement_target,omitempty" db:"announcement_target"`
	TargetID      *uuid.UUID      `json:"announcement_target_id,omitempty" db:"announcement_target_id"`
	RecipientRole *users.Role     `json:"recipient_role,omitempty" db:"recipient_role"`
	RecipientID   *uuid.UUID      `json:"recipient_id,omitempty" db:"recipient_id"`
	Payload       json.RawMessage `json:"extra_data,omitempty" db:"extra_data"`
	Message       string          `json:"message" db:"message"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Audience describes the resolved delivery scope of an announcement.
type Audience int

const (
	AudienceUser Audience = iota // directed to one recipient identity
	AudienceRole                 // every connected user holding the role
	AudienceRoom                 // every connection subscribed to the target's room
	AudienceAll                  // every connection (global kinds)
)

// ResolveAudience classifies the announcement's addressing mode. An
// announcement is addressed to exactly one of recipient identity or
// recipient role; global kinds and room-scoped targets address neither.
func (a *Announcement) ResolveAudience() (Audience, error) {
	hasUser := a.RecipientID != nil
	hasRole := a.RecipientRole != nil

	switch {
	case hasUser && hasRole:
		return 0, fmt.Errorf("announcement addresses both a recipient and a role")
	case hasUser:
		return AudienceUser, nil
	case hasRole:
		return AudienceRole, nil
	case a.Kind == KindGeneral:
		return AudienceAll, nil
	case a.Target != nil && a.TargetID != nil && roomScoped(*a.Target):
		return AudienceRoom, nil
	default:
		return 0, fmt.Errorf("announcement of kind %q addresses no recipient", a.Kind)
	}
}

// Envelope is the wire shape pushed over live connections. The kind and
// payload are carried verbatim.
type Envelope struct {
	Type           Kind            `json:"type"`
	AnnouncementID uuid.UUID       `json:"announcement_id"`
	Target         *Target         `json:"target,omitempty"`
	TargetID       *uuid.UUID      `json:"target_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Message        string          `json:"message"`
	Timestamp      time.Time       `json:"timestamp"`
}

// PublishRequest is the DTO accepted from the event-source collaborators.
type PublishRequest struct {
	Kind          string          `json:"announcement_type" validate:"required"`
	Target        *string         `json:"announcement_target,omitempty"`
	TargetID      *uuid.UUID      `json:"announcement_target_id,omitempty"`
	RecipientRole *string         `json:"recipient_role,omitempty"`
	RecipientID   *uuid.UUID      `json:"recipient_id,omitempty"`
	Payload       json.RawMessage `json:"extra_data,omitempty"`
	Message       string          `json:"message" validate:"required"`
}

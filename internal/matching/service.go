// internal/matching/service.go

package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/announcements"
	"github.com/solacelink/solace-backend/internal/common/apperrors"
	"github.com/solacelink/solace-backend/internal/users"
)

// Announcer publishes lifecycle announcements. Publishing is best effort
// from the service's point of view; a failed publish never fails the
// request mutation that triggered it.
type Announcer interface {
	Publish(ctx context.Context, a *announcements.Announcement) (*announcements.Announcement, error)
}

type Service interface {
	RecommendSponsors(ctx context.Context, memberID uuid.UUID) ([]RankedSponsor, error)
	CreateRequest(ctx context.Context, memberID uuid.UUID, sponsorID *uuid.UUID) (*MatchingRequest, error)
	Respond(ctx context.Context, requestID, sponsorID uuid.UUID, accept bool) (*MatchingRequest, error)
	Withdraw(ctx context.Context, requestID, memberID uuid.UUID) error
	ListRequests(ctx context.Context, userID uuid.UUID, role users.Role) ([]*RequestSummary, error)
	GetRequest(ctx context.Context, requestID, callerID uuid.UUID) (*MatchingRequest, error)
}

type service struct {
	repo      Repository
	directory users.Directory
	engine    *Engine
	announcer Announcer

	// memberLocks serializes request creation per member so the single
	// pending request invariant holds under concurrent submissions.
	memberLocks sync.Map
}

func NewService(repo Repository, directory users.Directory, engine *Engine, announcer Announcer) Service {
	return &service{
		repo:      repo,
		directory: directory,
		engine:    engine,
		announcer: announcer,
	}
}

func (s *service) RecommendSponsors(ctx context.Context, memberID uuid.UUID) ([]RankedSponsor, error) {
	member, err := s.completeProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	exclude, err := s.pendingSponsorSet(ctx, memberID)
	if err != nil {
		return nil, err
	}

	pool, err := s.directory.GetSponsorProfiles(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Rank(member, pool, exclude), nil
}

func (s *service) CreateRequest(ctx context.Context, memberID uuid.UUID, sponsorID *uuid.UUID) (*MatchingRequest, error) {
	member, err := s.completeProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(memberID)
	lock.Lock()
	defer lock.Unlock()

	pending, err := s.repo.HasPendingForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a pending matching request already exists", apperrors.ErrConflict)
	}

	var (
		chosen *uuid.UUID
		score  float64
	)
	if sponsorID != nil {
		chosen, score, err = s.validateSponsor(ctx, member, *sponsorID)
	} else {
		chosen, score, err = s.autoMatch(ctx, member)
	}
	if err != nil {
		return nil, err
	}

	req := &MatchingRequest{
		MemberID:   memberID,
		SponsorID:  chosen,
		Status:     StatusPending,
		MatchScore: &score,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	requestsTotal.WithLabelValues("created").Inc()
	matchScores.Observe(score)

	s.announceTransition(ctx, req, announcements.KindMatchingRequestSubmitted, chosen)
	return req, nil
}

func (s *service) Respond(ctx context.Context, requestID, sponsorID uuid.UUID, accept bool) (*MatchingRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.SponsorID == nil || *req.SponsorID != sponsorID {
		return nil, fmt.Errorf("%w: request is not addressed to this sponsor", apperrors.ErrForbidden)
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: request already %s", apperrors.ErrConflict, req.Status)
	}

	status := StatusDeclined
	kind := announcements.KindMatchingRequestDeclined
	if accept {
		status = StatusAccepted
		kind = announcements.KindMatchingRequestAccepted
	}

	// The conditional update settles concurrent responses first-wins.
	settled, err := s.repo.SetStatusIfPending(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, fmt.Errorf("%w: request already settled", apperrors.ErrConflict)
	}
	req.Status = status
	requestsTotal.WithLabelValues(labelFor(status)).Inc()

	s.announceTransition(ctx, req, kind, &req.MemberID)
	return req, nil
}

func (s *service) Withdraw(ctx context.Context, requestID, memberID uuid.UUID) error {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.MemberID != memberID {
		return fmt.Errorf("%w: request belongs to another member", apperrors.ErrForbidden)
	}
	if req.Status != StatusPending {
		return fmt.Errorf("%w: only pending requests can be withdrawn", apperrors.ErrConflict)
	}

	deleted, err := s.repo.DeleteIfPending(ctx, requestID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: request already settled", apperrors.ErrConflict)
	}
	requestsTotal.WithLabelValues("withdrawn").Inc()
	return nil
}

func (s *service) ListRequests(ctx context.Context, userID uuid.UUID, role users.Role) ([]*RequestSummary, error) {
	if role == users.RoleSponsor {
		return s.repo.ListForSponsor(ctx, userID)
	}
	return s.repo.ListForMember(ctx, userID)
}

// GetRequest returns a single request, visible only to its two parties.
func (s *service) GetRequest(ctx context.Context, requestID, callerID uuid.UUID) (*MatchingRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.MemberID != callerID && (req.SponsorID == nil || *req.SponsorID != callerID) {
		return nil, fmt.Errorf("%w: not a party to this request", apperrors.ErrForbidden)
	}
	return req, nil
}

// completeProfile loads the member's match profile and rejects matching
// operations until the profile carries every matching dimension.
func (s *service) completeProfile(ctx context.Context, memberID uuid.UUID) (*users.MatchProfile, error) {
	member, err := s.directory.GetMatchProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if !member.Complete() {
		return nil, fmt.Errorf("%w: complete your profile before requesting a match", apperrors.ErrValidation)
	}
	return member, nil
}

func (s *service) validateSponsor(ctx context.Context, member *users.MatchProfile, sponsorID uuid.UUID) (*uuid.UUID, float64, error) {
	if sponsorID == member.ID {
		return nil, 0, fmt.Errorf("%w: cannot request yourself as sponsor", apperrors.ErrValidation)
	}
	role, err := s.directory.GetRole(ctx, sponsorID)
	if err != nil {
		return nil, 0, err
	}
	if role != users.RoleSponsor {
		return nil, 0, fmt.Errorf("%w: requested user is not a sponsor", apperrors.ErrValidation)
	}

	sponsor, err := s.directory.GetMatchProfile(ctx, sponsorID)
	if err != nil {
		return nil, 0, err
	}
	score, _ := s.engine.Score(member, sponsor)
	return &sponsorID, score, nil
}

// autoMatch picks the top-ranked available sponsor for the member.
func (s *service) autoMatch(ctx context.Context, member *users.MatchProfile) (*uuid.UUID, float64, error) {
	exclude, err := s.pendingSponsorSet(ctx, member.ID)
	if err != nil {
		return nil, 0, err
	}
	pool, err := s.directory.GetSponsorProfiles(ctx)
	if err != nil {
		return nil, 0, err
	}

	ranked := s.engine.Rank(member, pool, exclude)
	if len(ranked) == 0 {
		return nil, 0, fmt.Errorf("%w: no sponsors available", apperrors.ErrNotFound)
	}
	top := ranked[0]
	return &top.SponsorID, top.Score, nil
}

func (s *service) pendingSponsorSet(ctx context.Context, memberID uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := s.repo.PendingSponsorIDs(ctx, memberID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *service) announceTransition(ctx context.Context, req *MatchingRequest, kind announcements.Kind, recipient *uuid.UUID) {
	if s.announcer == nil || recipient == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"matching_request_id": req.ID,
		"member_id":           req.MemberID,
		"status":              req.Status,
	})
	if err != nil {
		log.Printf("Failed to encode matching announcement payload: %v", err)
		return
	}

	target := announcements.TargetMatchingRequest
	requestID := req.ID
	_, err = s.announcer.Publish(ctx, &announcements.Announcement{
		Kind:        kind,
		Target:      &target,
		TargetID:    &requestID,
		RecipientID: recipient,
		Payload:     payload,
		Message:     messageFor(kind),
	})
	if err != nil {
		log.Printf("Failed to publish %s announcement for request %s: %v", kind, req.ID, err)
	}
}

func messageFor(kind announcements.Kind) string {
	switch kind {
	case announcements.KindMatchingRequestSubmitted:
		return "You have received a new matching request"
	case announcements.KindMatchingRequestAccepted:
		return "Your matching request was accepted"
	case announcements.KindMatchingRequestDeclined:
		return "Your matching request was declined"
	default:
		return "Matching request updated"
	}
}

func labelFor(status MatchingStatus) string {
	switch status {
	case StatusAccepted:
		return "accepted"
	case StatusDeclined:
		return "declined"
	default:
		return "pending"
	}
}

func (s *service) lockFor(memberID uuid.UUID) *sync.Mutex {
	lock, _ := s.memberLocks.LoadOrStore(memberID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

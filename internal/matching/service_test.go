// internal/matching/service_test.go

package matching

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solacelink/solace-backend/internal/announcements"
	"github.com/solacelink/solace-backend/internal/common/apperrors"
	"github.com/solacelink/solace-backend/internal/users"
)

// fakeRepository is an in-memory Repository with the same first-wins
// semantics as the conditional SQL updates.
type fakeRepository struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*MatchingRequest
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{requests: make(map[uuid.UUID]*MatchingRequest)}
}

func (r *fakeRepository) Create(ctx context.Context, req *MatchingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.New()
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*MatchingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRepository) HasPendingForMember(ctx context.Context, memberID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.MemberID == memberID && req.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) PendingSponsorIDs(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, req := range r.requests {
		if req.MemberID == memberID && req.Status == StatusPending && req.SponsorID != nil {
			ids = append(ids, *req.SponsorID)
		}
	}
	return ids, nil
}

func (r *fakeRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, status MatchingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	req.Status = status
	return true, nil
}

func (r *fakeRepository) DeleteIfPending(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	delete(r.requests, id)
	return true, nil
}

func (r *fakeRepository) ListForMember(ctx context.Context, memberID uuid.UUID) ([]*RequestSummary, error) {
	return nil, nil
}

func (r *fakeRepository) ListForSponsor(ctx context.Context, sponsorID uuid.UUID) ([]*RequestSummary, error) {
	return nil, nil
}

type fakeDirectory struct {
	profiles map[uuid.UUID]*users.MatchProfile
	roles    map[uuid.UUID]users.Role
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profiles: make(map[uuid.UUID]*users.MatchProfile),
		roles:    make(map[uuid.UUID]users.Role),
	}
}

func (d *fakeDirectory) addUser(role users.Role, complete bool) uuid.UUID {
	p := profile(nil)
	if complete {
		p.Location = &users.Location{City: strPtr("Lagos")}
		p.Interests = []string{"anxiety"}
		p.Experience = []string{"loss"}
		p.AvailableDays = []string{"Mon"}
		p.Languages = []string{"en"}
	}
	d.profiles[p.ID] = p
	d.roles[p.ID] = role
	return p.ID
}

func (d *fakeDirectory) GetMatchProfile(ctx context.Context, userID uuid.UUID) (*users.MatchProfile, error) {
	p, ok := d.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (d *fakeDirectory) GetRole(ctx context.Context, userID uuid.UUID) (users.Role, error) {
	role, ok := d.roles[userID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return role, nil
}

func (d *fakeDirectory) GetSponsorProfiles(ctx context.Context) ([]*users.MatchProfile, error) {
	var pool []*users.MatchProfile
	for id, p := range d.profiles {
		if d.roles[id] == users.RoleSponsor {
			pool = append(pool, p)
		}
	}
	return pool, nil
}

type fakeAnnouncer struct {
	mu        sync.Mutex
	published []*announcements.Announcement
}

func (a *fakeAnnouncer) Publish(ctx context.Context, ann *announcements.Announcement) (*announcements.Announcement, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ann.ID = uuid.New()
	a.published = append(a.published, ann)
	return ann, nil
}

func (a *fakeAnnouncer) byKind(kind announcements.Kind) []*announcements.Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*announcements.Announcement
	for _, ann := range a.published {
		if ann.Kind == kind {
			out = append(out, ann)
		}
	}
	return out
}

func newTestService() (Service, *fakeRepository, *fakeDirectory, *fakeAnnouncer) {
	repo := newFakeRepository()
	dir := newFakeDirectory()
	announcer := &fakeAnnouncer{}
	svc := NewService(repo, dir, testEngine(), announcer)
	return svc, repo, dir, announcer
}

func TestCreateRequestDirected(t *testing.T) {
	svc, _, dir, announcer := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, req.Status)
	require.NotNil(t, req.SponsorID)
	assert.Equal(t, sponsor, *req.SponsorID)
	require.NotNil(t, req.MatchScore)
	assert.Greater(t, *req.MatchScore, 0.0)

	submitted := announcer.byKind(announcements.KindMatchingRequestSubmitted)
	require.Len(t, submitted, 1)
	require.NotNil(t, submitted[0].RecipientID)
	assert.Equal(t, sponsor, *submitted[0].RecipientID)
}

func TestCreateRequestAutoMatchPicksTopCandidate(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)

	// A sponsor sharing the member's attributes outranks a stranger.
	strong := dir.addUser(users.RoleSponsor, true)
	weak := dir.addUser(users.RoleSponsor, false)
	dir.profiles[weak].Interests = []string{"something-else"}

	req, err := svc.CreateRequest(context.Background(), member, nil)
	require.NoError(t, err)
	require.NotNil(t, req.SponsorID)
	assert.Equal(t, strong, *req.SponsorID)
}

func TestCreateRequestIncompleteProfile(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, false)

	_, err := svc.CreateRequest(context.Background(), member, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRequestRejectsNonSponsor(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	other := dir.addUser(users.RoleMember, true)

	_, err := svc.CreateRequest(context.Background(), member, &other)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRequestSecondPendingConflicts(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	_, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), member, &sponsor)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateRequestConcurrent(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRequest(context.Background(), member, &sponsor)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		switch {
		case err == nil:
			created++
		case apperrors.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestRespondAccept(t *testing.T) {
	svc, _, dir, announcer := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	updated, err := svc.Respond(context.Background(), req.ID, sponsor, true)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)

	accepted := announcer.byKind(announcements.KindMatchingRequestAccepted)
	require.Len(t, accepted, 1)
	require.NotNil(t, accepted[0].RecipientID)
	assert.Equal(t, member, *accepted[0].RecipientID)
}

func TestRespondWrongSponsorForbidden(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)
	stranger := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), req.ID, stranger, true)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRespondUnknownRequest(t *testing.T) {
	svc, _, dir, _ := newTestService()
	sponsor := dir.addUser(users.RoleSponsor, true)

	_, err := svc.Respond(context.Background(), uuid.New(), sponsor, true)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRespondTerminalIsConflict(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), req.ID, sponsor, false)
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), req.ID, sponsor, true)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDeclineThenRecreate(t *testing.T) {
	svc, _, dir, announcer := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	updated, err := svc.Respond(context.Background(), req.ID, sponsor, false)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, updated.Status)

	declined := announcer.byKind(announcements.KindMatchingRequestDeclined)
	require.Len(t, declined, 1)
	require.NotNil(t, declined[0].RecipientID)
	assert.Equal(t, member, *declined[0].RecipientID)

	// No permanent exclusion: the member may request the same sponsor again.
	again, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}

func TestWithdraw(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	require.NoError(t, svc.Withdraw(context.Background(), req.ID, member))

	_, err = svc.GetRequest(context.Background(), req.ID, member)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestWithdrawRules(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	sponsor := dir.addUser(users.RoleSponsor, true)
	stranger := dir.addUser(users.RoleMember, true)

	req, err := svc.CreateRequest(context.Background(), member, &sponsor)
	require.NoError(t, err)

	err = svc.Withdraw(context.Background(), req.ID, stranger)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.Respond(context.Background(), req.ID, sponsor, true)
	require.NoError(t, err)

	err = svc.Withdraw(context.Background(), req.ID, member)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRecommendSponsorsExcludesPendingPair(t *testing.T) {
	svc, _, dir, _ := newTestService()
	member := dir.addUser(users.RoleMember, true)
	pending := dir.addUser(users.RoleSponsor, true)
	free := dir.addUser(users.RoleSponsor, true)

	_, err := svc.CreateRequest(context.Background(), member, &pending)
	require.NoError(t, err)

	ranked, err := svc.RecommendSponsors(context.Background(), member)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, free, ranked[0].SponsorID)
}

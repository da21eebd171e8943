// internal/matching/recommendations_test.go

package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solacelink/solace-backend/internal/users"
)

func TestRankOrdersByScoreDescending(t *testing.T) {
	e := testEngine()

	member := profile(func(p *users.MatchProfile) {
		p.Interests = []string{"anxiety", "grief"}
		p.Languages = []string{"en"}
	})
	strong := profile(func(p *users.MatchProfile) {
		p.Interests = []string{"anxiety", "grief"}
		p.Languages = []string{"en"}
	})
	weak := profile(func(p *users.MatchProfile) {
		p.Interests = []string{"addiction"}
		p.Languages = []string{"fr"}
	})

	ranked := e.Rank(member, []*users.MatchProfile{weak, strong}, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, strong.ID, ranked[0].SponsorID)
	assert.Equal(t, weak.ID, ranked[1].SponsorID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRankBreaksTiesByIdentity(t *testing.T) {
	e := testEngine()

	member := profile(nil)
	a := profile(nil)
	b := profile(nil)

	ranked := e.Rank(member, []*users.MatchProfile{a, b}, nil)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Less(t, ranked[0].SponsorID.String(), ranked[1].SponsorID.String())

	// Same pool in the opposite order produces the same listing.
	again := e.Rank(member, []*users.MatchProfile{b, a}, nil)
	assert.Equal(t, ranked[0].SponsorID, again[0].SponsorID)
	assert.Equal(t, ranked[1].SponsorID, again[1].SponsorID)
}

func TestRankExcludesSelfAndExcluded(t *testing.T) {
	e := testEngine()

	member := profile(nil)
	excluded := profile(nil)
	kept := profile(nil)

	pool := []*users.MatchProfile{member, excluded, kept}
	ranked := e.Rank(member, pool, map[uuid.UUID]bool{excluded.ID: true})

	require.Len(t, ranked, 1)
	assert.Equal(t, kept.ID, ranked[0].SponsorID)
}

func TestRankEmptyPool(t *testing.T) {
	e := testEngine()

	ranked := e.Rank(profile(nil), nil, nil)
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

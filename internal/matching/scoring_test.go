// internal/matching/scoring_test.go

package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solacelink/solace-backend/internal/users"
)

func testEngine() *Engine {
	return NewEngine(ScoringConfig{
		MaxAgeGapYears:   30,
		LocationMismatch: 0.3,
	})
}

func profile(fn func(p *users.MatchProfile)) *users.MatchProfile {
	p := &users.MatchProfile{ID: uuid.New()}
	if fn != nil {
		fn(p)
	}
	return p
}

func TestScoreWeightsSumToOne(t *testing.T) {
	e := testEngine()

	var sum float64
	for _, f := range e.factors {
		sum += f.weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestScorePartialOverlap(t *testing.T) {
	e := testEngine()
	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)

	member := profile(func(p *users.MatchProfile) {
		p.DOB = dob
		p.Interests = []string{"anxiety"}
		p.Languages = []string{"en"}
		p.AvailableDays = []string{"Mon", "Wed"}
	})
	sponsor := profile(func(p *users.MatchProfile) {
		p.DOB = dob
		p.Interests = []string{"anxiety", "grief"}
		p.Languages = []string{"en", "es"}
		p.AvailableDays = []string{"Mon"}
	})

	score, factors := e.Score(member, sponsor)
	require.NotNil(t, factors)

	// interests 1/2, experience both empty, availability 1/2,
	// languages 1/2, location neutral, age identical.
	assert.InDelta(t, 65.0, score, 0.01)
	assert.InDelta(t, 12.5, factors.Interests, 0.01)
	assert.InDelta(t, 20.0, factors.Experience, 0.01)
	assert.InDelta(t, 7.5, factors.Availability, 0.01)
	assert.InDelta(t, 7.5, factors.Languages, 0.01)
	assert.InDelta(t, 7.5, factors.Location, 0.01)
	assert.InDelta(t, 10.0, factors.Age, 0.01)
}

func TestScorePartialOverlapBeatsNoOverlap(t *testing.T) {
	e := testEngine()
	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)

	member := profile(func(p *users.MatchProfile) {
		p.DOB = dob
		p.Interests = []string{"anxiety"}
		p.Languages = []string{"en"}
		p.AvailableDays = []string{"Mon", "Wed"}
	})
	overlapping := profile(func(p *users.MatchProfile) {
		p.DOB = dob
		p.Interests = []string{"anxiety", "grief"}
		p.Languages = []string{"en", "es"}
		p.AvailableDays = []string{"Mon"}
	})
	stranger := profile(func(p *users.MatchProfile) {
		p.DOB = dob
		p.Interests = []string{"addiction"}
		p.Languages = []string{"fr"}
		p.AvailableDays = []string{"Sun"}
	})

	withOverlap, _ := e.Score(member, overlapping)
	withoutOverlap, _ := e.Score(member, stranger)

	assert.Greater(t, withOverlap, withoutOverlap)
	assert.InDelta(t, 37.5, withoutOverlap, 0.01)
}

func TestScoreSymmetric(t *testing.T) {
	e := testEngine()

	a := profile(func(p *users.MatchProfile) {
		p.DOB = time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)
		p.Interests = []string{"grief", "loss"}
		p.Languages = []string{"en"}
		p.Location = &users.Location{City: strPtr("Lagos")}
	})
	b := profile(func(p *users.MatchProfile) {
		p.DOB = time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
		p.Interests = []string{"grief"}
		p.Languages = []string{"en", "yo"}
		p.Location = &users.Location{City: strPtr("Abuja")}
	})

	ab, _ := e.Score(a, b)
	ba, _ := e.Score(b, a)
	assert.Equal(t, ab, ba)
}

func TestScoreSparseProfiles(t *testing.T) {
	e := testEngine()

	score, _ := e.Score(profile(nil), profile(nil))
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestScoreLocationRules(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		a, b *users.Location
		want float64
	}{
		{"same locality case-insensitive", &users.Location{City: strPtr("Lagos")}, &users.Location{City: strPtr("LAGOS")}, 1.0},
		{"different localities", &users.Location{City: strPtr("Lagos")}, &users.Location{City: strPtr("Abuja")}, 0.3},
		{"one missing", &users.Location{City: strPtr("Lagos")}, nil, 0.5},
		{"both missing", nil, nil, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := profile(func(p *users.MatchProfile) { p.Location = tt.a })
			b := profile(func(p *users.MatchProfile) { p.Location = tt.b })
			assert.InDelta(t, tt.want, e.scoreLocation(a, b), 1e-9)
		})
	}
}

func TestScoreAgeFloor(t *testing.T) {
	e := testEngine()

	young := profile(func(p *users.MatchProfile) {
		p.DOB = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	})
	old := profile(func(p *users.MatchProfile) {
		p.DOB = time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	// A 70 year gap is far past the decay horizon; the floor holds.
	assert.InDelta(t, 0.2, e.scoreAge(young, old), 1e-9)
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, jaccard(nil, nil), 1e-9)
	assert.InDelta(t, 0.5, jaccard([]string{"a"}, []string{"a", "b"}), 1e-9)
	assert.InDelta(t, 0.0, jaccard([]string{"a"}, []string{"b"}), 1e-9)
	assert.InDelta(t, 1.0, jaccard([]string{"A", "b"}, []string{"a", "B"}), 1e-9)
	assert.InDelta(t, 0.0, jaccard([]string{"a"}, nil), 1e-9)
}

func strPtr(s string) *string { return &s }

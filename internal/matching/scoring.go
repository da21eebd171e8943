// internal/matching/scoring.go

package matching

import (
	"math"
	"strings"
	"time"

	"github.com/solacelink/solace-backend/internal/users"
)

// ScoringConfig carries the tunable knobs of the compatibility policy.
type ScoringConfig struct {
	// MaxAgeGapYears is the age difference at which the age factor
	// bottoms out.
	MaxAgeGapYears int
	// LocationMismatch is the location sub-score when both users state a
	// locality and the localities differ.
	LocationMismatch float64
}

// ageFloor keeps large age gaps from zeroing the age factor outright.
const ageFloor = 0.2

// neutral is the sub-score for dimensions where one side gave no signal.
const neutral = 0.5

// Engine computes compatibility scores between a member and a sponsor.
// Scoring is pure: the same two profiles always produce the same score,
// and the score is symmetric in its arguments.
type Engine struct {
	cfg     ScoringConfig
	factors []factor
}

type factor struct {
	weight float64
	score  func(e *Engine, a, b *users.MatchProfile) float64
	assign func(f *CompatibilityFactors, weighted float64)
}

// NewEngine builds an engine over the weighted factor table. Weights are
// policy data and sum to 1.0, so totals land in [0, 100].
func NewEngine(cfg ScoringConfig) *Engine {
	e := &Engine{cfg: cfg}
	e.factors = []factor{
		{0.25, (*Engine).scoreInterests, func(f *CompatibilityFactors, v float64) { f.Interests = v }},
		{0.20, (*Engine).scoreExperience, func(f *CompatibilityFactors, v float64) { f.Experience = v }},
		{0.15, (*Engine).scoreAvailability, func(f *CompatibilityFactors, v float64) { f.Availability = v }},
		{0.15, (*Engine).scoreLanguages, func(f *CompatibilityFactors, v float64) { f.Languages = v }},
		{0.15, (*Engine).scoreLocation, func(f *CompatibilityFactors, v float64) { f.Location = v }},
		{0.10, (*Engine).scoreAge, func(f *CompatibilityFactors, v float64) { f.Age = v }},
	}
	return e
}

// Score returns the compatibility of two profiles in [0, 100] together
// with the per-factor breakdown.
func (e *Engine) Score(a, b *users.MatchProfile) (float64, *CompatibilityFactors) {
	var total float64
	breakdown := &CompatibilityFactors{}
	for _, f := range e.factors {
		weighted := f.weight * f.score(e, a, b) * 100
		f.assign(breakdown, round2(weighted))
		total += weighted
	}
	return round2(total), breakdown
}

func (e *Engine) scoreInterests(a, b *users.MatchProfile) float64 {
	return jaccard(a.Interests, b.Interests)
}

func (e *Engine) scoreExperience(a, b *users.MatchProfile) float64 {
	return jaccard(a.Experience, b.Experience)
}

func (e *Engine) scoreAvailability(a, b *users.MatchProfile) float64 {
	return jaccard(a.AvailableDays, b.AvailableDays)
}

// scoreLanguages treats a missing language list as no signal rather than
// incompatibility.
func (e *Engine) scoreLanguages(a, b *users.MatchProfile) float64 {
	if len(a.Languages) == 0 || len(b.Languages) == 0 {
		return neutral
	}
	return jaccard(a.Languages, b.Languages)
}

func (e *Engine) scoreLocation(a, b *users.MatchProfile) float64 {
	la, lb := a.Location, b.Location
	if la == nil || lb == nil || la.Locality() == "" || lb.Locality() == "" {
		return neutral
	}
	if strings.EqualFold(la.Locality(), lb.Locality()) {
		return 1.0
	}
	return e.cfg.LocationMismatch
}

func (e *Engine) scoreAge(a, b *users.MatchProfile) float64 {
	if a.DOB.IsZero() || b.DOB.IsZero() {
		return neutral
	}
	gap := a.DOB.Sub(b.DOB)
	if gap < 0 {
		gap = -gap
	}
	maxGap := time.Duration(e.cfg.MaxAgeGapYears) * 365 * 24 * time.Hour
	if maxGap <= 0 {
		return neutral
	}
	score := 1.0 - float64(gap)/float64(maxGap)
	return math.Max(ageFloor, score)
}

// jaccard is intersection over union of two string sets, case-insensitive.
// Two empty sets are treated as a perfect match: neither side asked for
// anything the other lacks.
func jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	var intersection int
	for item := range setA {
		if setB[item] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(strings.ToLower(item))
		if trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

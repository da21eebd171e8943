// internal/matching/recommendations.go

package matching

import (
	"sort"

	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/users"
)

// Rank scores the member against every sponsor in the pool and returns
// the candidates ordered best first. Ties break on ascending sponsor id
// so the ordering is total and stable across calls. The member themself
// and anyone in exclude are skipped; an empty pool yields an empty slice.
func (e *Engine) Rank(member *users.MatchProfile, pool []*users.MatchProfile, exclude map[uuid.UUID]bool) []RankedSponsor {
	ranked := make([]RankedSponsor, 0, len(pool))
	for _, sponsor := range pool {
		if sponsor.ID == member.ID || exclude[sponsor.ID] {
			continue
		}
		score, factors := e.Score(member, sponsor)
		ranked = append(ranked, RankedSponsor{
			SponsorID: sponsor.ID,
			Score:     score,
			Factors:   factors,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].SponsorID.String() < ranked[j].SponsorID.String()
	})
	return ranked
}

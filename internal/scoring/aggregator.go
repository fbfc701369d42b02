package scoring

import (
	"sort"

	"creator-crm/internal/domain"
)

// DefaultRankLimit caps ranking views when the caller does not ask for a
// specific size.
const DefaultRankLimit = 6

// DerivePayments builds the transient payment view over a creator's
// campaigns: one entry per campaign that carries a non-nil amount.
func DerivePayments(campaigns []domain.Campaign) []domain.DerivedPayment {
	var payments []domain.DerivedPayment
	for _, c := range campaigns {
		if c.Amount == nil {
			continue
		}
		payments = append(payments, domain.DerivedPayment{
			Amount: *c.Amount,
			Status: c.PaymentStatus,
		})
	}
	return payments
}

// Rank scores every creator against its campaigns and returns the top
// `limit` annotated records. The whole population is sorted before
// truncation: score descending, ties broken by engagement rate descending,
// equal keys keeping their input order so repeated calls on identical input
// produce identical rankings.
func Rank(creators []domain.Creator, campaigns []domain.Campaign, limit int) []domain.RankedCreator {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	byCreator := make(map[string][]domain.Campaign, len(creators))
	for _, c := range campaigns {
		byCreator[c.CreatorID] = append(byCreator[c.CreatorID], c)
	}

	ranked := make([]domain.RankedCreator, 0, len(creators))
	for _, creator := range creators {
		own := byCreator[creator.ID]
		payments := DerivePayments(own)
		result := Score(creator, own, payments)

		completed := 0
		for _, c := range own {
			if IsCompleted(c) {
				completed++
			}
		}
		var earned float64
		for _, p := range payments {
			if IsSettled(p.Status) {
				earned += p.Amount
			}
		}

		ranked = append(ranked, domain.RankedCreator{
			Creator:            creator,
			PerformanceScore:   result.Score,
			IsManualScore:      result.IsManual,
			TotalCampaigns:     len(own),
			CompletedCampaigns: completed,
			TotalEarned:        earned,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].PerformanceScore != ranked[j].PerformanceScore {
			return ranked[i].PerformanceScore > ranked[j].PerformanceScore
		}
		return nonNegative(ranked[i].EngagementRate) > nonNegative(ranked[j].EngagementRate)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

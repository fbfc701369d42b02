package scoring

import (
	"math"
	"strings"

	"creator-crm/internal/domain"
)

// Score weights. The four components sum to at most MaxScore.
const (
	MaxScore = 10.0

	engagementWeight = 3.0
	completionWeight = 3.0
	paymentWeight    = 2.0
	volumeWeight     = 2.0

	// An engagement rate of 5% earns the full engagement component.
	engagementSaturation = 5.0
	// Volume ratios saturate at 10k average likes and 100 average comments.
	likesSaturation    = 10000.0
	commentsSaturation = 100.0
)

// Score computes a creator's performance score on a 0-10 scale. A non-nil
// manual override short-circuits the calculation entirely; otherwise the
// score is the sum of four clamped components: engagement rate (0-3),
// campaign completion (0-3), payment completion (0-2) and raw engagement
// volume (0-2). Missing or malformed numeric inputs coerce to 0 per field,
// never to an error.
func Score(creator domain.Creator, campaigns []domain.Campaign, payments []domain.DerivedPayment) domain.ScoreResult {
	if creator.ManualPerformanceScore != nil {
		return domain.ScoreResult{
			Score:    clamp(round1(*creator.ManualPerformanceScore), 0, MaxScore),
			IsManual: true,
		}
	}

	engagement := clamp(engagementRate(creator)/engagementSaturation*engagementWeight, 0, engagementWeight)

	var completion float64
	if len(campaigns) > 0 {
		completed := 0
		for _, c := range campaigns {
			if IsCompleted(c) {
				completed++
			}
		}
		completion = clamp(float64(completed)/float64(len(campaigns))*completionWeight, 0, completionWeight)
	}

	// The denominator prefers the derived payments list and falls back to
	// the campaign count when no payments could be derived. A creator whose
	// campaigns carry no monetary fields therefore scores 0 here rather
	// than dividing by zero.
	var payment float64
	denom := len(payments)
	if denom == 0 {
		denom = len(campaigns)
	}
	if denom > 0 {
		paid := 0
		for _, p := range payments {
			if IsSettled(p.Status) {
				paid++
			}
		}
		payment = clamp(float64(paid)/float64(denom)*paymentWeight, 0, paymentWeight)
	}

	likes := nonNegative(creator.AvgLikes)
	comments := nonNegative(creator.AvgComments)
	likesRatio := math.Min(1, likes/likesSaturation)
	commentsRatio := math.Min(1, comments/commentsSaturation)
	volume := clamp((likesRatio+commentsRatio)/2*volumeWeight, 0, volumeWeight)

	return domain.ScoreResult{
		Score:    clamp(round1(engagement+completion+payment+volume), 0, MaxScore),
		IsManual: false,
	}
}

// IsCompleted reports whether a campaign counts toward the completion
// component: an explicit completed status, or a payment status that already
// indicates money moved.
func IsCompleted(c domain.Campaign) bool {
	return strings.EqualFold(strings.TrimSpace(c.Status), "completed") || IsSettled(c.PaymentStatus)
}

// IsSettled reports whether a payment status indicates funds were paid.
// Negated forms ("Unpaid", "not paid") are rejected before the positive
// match, which still admits variants like "Paid" and "partially paid".
func IsSettled(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	if strings.Contains(s, "unpaid") || strings.Contains(s, "not paid") {
		return false
	}
	return strings.Contains(s, "paid")
}

func engagementRate(c domain.Creator) float64 {
	return nonNegative(c.EngagementRate)
}

func nonNegative(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return 0
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

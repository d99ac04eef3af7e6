package pattern

import (
	"github.com/Veraticus/abuse-forge/internal/model"
	"github.com/Veraticus/abuse-forge/internal/random"
)

// Interval is a closed range of abuse confidence values.
type Interval struct {
	Lo float64
	Hi float64
}

// Contains reports whether v lies within the interval.
func (i Interval) Contains(v float64) bool {
	return v >= i.Lo && v <= i.Hi
}

// Confidence intervals shared by every fraud archetype. They narrow toward 0.5 as the
// tier moves from easy to hard.
var tierConfidence = map[model.DifficultyTier]Interval{
	model.TierEasy:   {Lo: 0.85, Hi: 0.98},
	model.TierMedium: {Lo: 0.65, Hi: 0.80},
	model.TierHard:   {Lo: 0.45, Hi: 0.65},
}

// suspiciousConfidence is the ambiguous band genuine-but-risky shoppers land in.
var suspiciousConfidence = Interval{Lo: 0.35, Hi: 0.65}

// ConfidenceInterval returns the abuse confidence range records of the archetype and
// tier are drawn from.
func ConfidenceInterval(abuse model.AbuseType, tier model.DifficultyTier) Interval {
	switch {
	case abuse == model.AbuseLegitimate:
		return Interval{}
	case abuse == model.AbuseSuspiciousButLegitimate:
		return suspiciousConfidence
	default:
		return tierConfidence[fraudTier(tier)]
	}
}

// fraudTier maps anything outside easy/medium/hard to medium.
func fraudTier(tier model.DifficultyTier) model.DifficultyTier {
	switch tier {
	case model.TierEasy, model.TierMedium, model.TierHard:
		return tier
	}
	return model.TierMedium
}

func drawConfidence(src *random.Source, iv Interval) float64 {
	return round2(src.Uniform(iv.Lo, iv.Hi))
}

// TierSummary describes how one archetype behaves at one tier.
type TierSummary struct {
	Archetype  model.AbuseType
	Tier       model.DifficultyTier
	Confidence Interval
	Summary    string
}

// TierSummaries lists every archetype and tier combination in composition order.
func TierSummaries() []TierSummary {
	out := []TierSummary{
		{
			Archetype: model.AbuseLegitimate,
			Tier:      model.TierNA,
			Summary:   "established low-risk shopper, one country, clean verification",
		},
		{
			Archetype:  model.AbuseSuspiciousButLegitimate,
			Tier:       model.TierNA,
			Confidence: suspiciousConfidence,
			Summary:    "genuine user tripping heuristics: " + joinProfiles(),
		},
	}
	for _, tier := range model.Tiers {
		out = append(out, TierSummary{model.AbuseFakeAccount, tier, tierConfidence[tier], fakeAccountTiers[tier].summary})
	}
	for _, tier := range model.Tiers {
		out = append(out, TierSummary{model.AbuseAccountTakeover, tier, tierConfidence[tier], takeoverTiers[tier].summary})
	}
	for _, tier := range model.Tiers {
		out = append(out, TierSummary{model.AbusePaymentFraud, tier, tierConfidence[tier], paymentFraudTiers[tier].summary})
	}
	return out
}

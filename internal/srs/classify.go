package srs

import "github.com/sabucaps/brazilian/internal/entity"

// Classify maps an interval to its mastery tier.
func Classify(interval int) entity.MasteryTier {
	switch {
	case interval >= entity.MasteredIntervalDays:
		return entity.TierMastered
	case interval < entity.NeedsReviewIntervalDays:
		return entity.TierNeedsReview
	default:
		return entity.TierLearning
	}
}

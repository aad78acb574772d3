package srs

import (
	"math"
	"time"

	"github.com/sabucaps/brazilian/internal/entity"
)

const day = 24 * time.Hour

// Ease adjustments per outcome.
const (
	easyEaseBonus     = 0.15
	mediumEasePenalty = 0.05
	hardEasePenalty   = 0.2
	mediumGrowth      = 1.2
)

// Schedule computes the entry that follows prior after a review at now.
//
// Easy grows the interval by the already updated ease, so ease increases
// compound. Stored schedules depend on this order.
func Schedule(prior entity.ProgressEntry, outcome entity.ReviewOutcome, now time.Time) (entity.ProgressEntry, error) {
	var (
		ease     float64
		interval int
	)

	switch outcome {
	case entity.OutcomeEasy:
		ease = math.Min(entity.MaxEase, prior.Ease+easyEaseBonus)
		interval = grow(prior.Interval, ease)
	case entity.OutcomeMedium:
		ease = math.Max(entity.MinEase, prior.Ease-mediumEasePenalty)
		interval = grow(prior.Interval, mediumGrowth)
	case entity.OutcomeHard:
		ease = math.Max(entity.MinEase, prior.Ease-hardEasePenalty)
		interval = 1
	default:
		return entity.ProgressEntry{}, entity.ErrInvalidOutcome
	}

	reviewed := now
	next := now.Add(time.Duration(interval) * day)
	return entity.ProgressEntry{
		Ease:         ease,
		Interval:     interval,
		ReviewCount:  prior.ReviewCount + 1,
		LastReviewed: &reviewed,
		NextReview:   &next,
	}, nil
}

func grow(interval int, factor float64) int {
	if interval == 0 {
		return 1
	}
	next := math.Ceil(float64(interval) * factor)
	if next >= entity.MaxIntervalDays {
		return entity.MaxIntervalDays
	}
	return int(next)
}

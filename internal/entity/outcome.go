package entity

import "strings"

// ReviewOutcome is the learner's self-assessment after seeing a word.
type ReviewOutcome string

const (
	OutcomeEasy   ReviewOutcome = "easy"
	OutcomeMedium ReviewOutcome = "medium"
	OutcomeHard   ReviewOutcome = "hard"
)

// Valid reports whether the outcome is one the scheduler understands.
func (o ReviewOutcome) Valid() bool {
	switch o {
	case OutcomeEasy, OutcomeMedium, OutcomeHard:
		return true
	default:
		return false
	}
}

// ParseReviewOutcome converts raw input into a ReviewOutcome.
func ParseReviewOutcome(raw string) (ReviewOutcome, error) {
	outcome := ReviewOutcome(strings.ToLower(strings.TrimSpace(raw)))
	if !outcome.Valid() {
		return "", ErrInvalidOutcome
	}
	return outcome, nil
}

// MasteryTier is the coarse classification derived from a review interval.
type MasteryTier string

const (
	TierNeedsReview MasteryTier = "needs_review"
	TierLearning    MasteryTier = "learning"
	TierMastered    MasteryTier = "mastered"

	// TierNew marks a word the user has never reviewed. Classify never
	// returns it; it only shows up when reporting on a catalog.
	TierNew MasteryTier = "new"
)

package srs

import (
	"math"

	"github.com/sabucaps/brazilian/internal/entity"
)

// Normalize returns the progress for wordID, filling defaults for anything
// missing. The keyed map wins; the history log is consulted only for records
// written before the map existed. It never fails.
func Normalize(record *entity.UserProgressRecord, wordID string) entity.ProgressEntry {
	if record == nil {
		return entity.DefaultProgressEntry()
	}
	if stored, ok := record.Entries[wordID]; ok {
		return FromStored(stored)
	}
	// last write wins when a legacy log carries duplicates
	for i := len(record.History) - 1; i >= 0; i-- {
		if record.History[i].WordID == wordID {
			return FromStored(record.History[i].Progress)
		}
	}
	return entity.DefaultProgressEntry()
}

// FromStored converts a stored entry into canonical form. Out-of-range values
// are pulled back into bounds rather than rejected.
func FromStored(stored entity.StoredProgress) entity.ProgressEntry {
	entry := entity.DefaultProgressEntry()

	if stored.Ease != nil {
		entry.Ease = sanitizeEase(*stored.Ease)
	}
	if stored.Interval != nil && *stored.Interval > 0 {
		entry.Interval = min(*stored.Interval, entity.MaxIntervalDays)
	}
	if stored.ReviewCount != nil && *stored.ReviewCount > 0 {
		entry.ReviewCount = *stored.ReviewCount
	}
	if stored.LastReviewed != nil && !stored.LastReviewed.IsZero() {
		t := *stored.LastReviewed
		entry.LastReviewed = &t
	}
	if stored.NextReview != nil && !stored.NextReview.IsZero() {
		t := *stored.NextReview
		entry.NextReview = &t
	}
	return entry
}

func sanitizeEase(ease float64) float64 {
	if math.IsNaN(ease) || math.IsInf(ease, 0) || ease <= 0 {
		return entity.DefaultEase
	}
	return math.Min(entity.MaxEase, math.Max(entity.MinEase, ease))
}

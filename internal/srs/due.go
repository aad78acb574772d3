package srs

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/sabucaps/brazilian/internal/entity"
)

// Merge pairs each catalog item with the user's normalized progress on it,
// keeping catalog order.
func Merge(catalog []entity.VocabularyItem, record *entity.UserProgressRecord) []entity.VocabularyProgress {
	return lo.Map(catalog, func(item entity.VocabularyItem, _ int) entity.VocabularyProgress {
		return entity.VocabularyProgress{
			VocabularyItem: item,
			Progress:       Normalize(record, item.ID),
		}
	})
}

// DueItems returns the catalog items due at now, in catalog order.
func DueItems(catalog []entity.VocabularyItem, record *entity.UserProgressRecord, now time.Time) []entity.VocabularyProgress {
	return lo.Filter(Merge(catalog, record), func(item entity.VocabularyProgress, _ int) bool {
		return item.Progress.IsDue(now)
	})
}

// CompareNextReview orders next-review times with absent values first.
func CompareNextReview(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

// SortByNextReview orders items by next review, never-scheduled first. Ties
// keep their incoming order.
func SortByNextReview(items []entity.VocabularyProgress) {
	slices.SortStableFunc(items, func(a, b entity.VocabularyProgress) int {
		return CompareNextReview(a.Progress.NextReview, b.Progress.NextReview)
	})
}

// Tiers reports the tier of each word as the record's membership sets
// describe it. Words in neither set are new until first reviewed, then
// learning.
type Tiers struct {
	mastered    map[string]struct{}
	needsReview map[string]struct{}
}

// TiersOf indexes record's membership sets. A nil record has none.
func TiersOf(record *entity.UserProgressRecord) Tiers {
	if record == nil {
		return Tiers{}
	}
	return Tiers{
		mastered:    idSet(record.Mastered),
		needsReview: idSet(record.NeedsReview),
	}
}

func idSet(ids []string) map[string]struct{} {
	return lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })
}

// Of returns the tier of wordID given its normalized progress.
func (t Tiers) Of(wordID string, progress entity.ProgressEntry) entity.MasteryTier {
	if _, ok := t.mastered[wordID]; ok {
		return entity.TierMastered
	}
	if _, ok := t.needsReview[wordID]; ok {
		return entity.TierNeedsReview
	}
	if progress.ReviewCount == 0 {
		return entity.TierNew
	}
	return entity.TierLearning
}

// Summarize counts catalog items by tier and how many are due at now.
func Summarize(catalog []entity.VocabularyItem, record *entity.UserProgressRecord, now time.Time) entity.ProgressSummary {
	tiers := TiersOf(record)
	summary := entity.ProgressSummary{Total: len(catalog)}
	for _, item := range catalog {
		progress := Normalize(record, item.ID)
		if progress.IsDue(now) {
			summary.Due++
		}
		switch tiers.Of(item.ID, progress) {
		case entity.TierMastered:
			summary.Mastered++
		case entity.TierNeedsReview:
			summary.NeedsReview++
		case entity.TierNew:
			summary.New++
		default:
			summary.Learning++
		}
	}
	return summary
}

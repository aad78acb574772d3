package srs

import (
	"time"

	"github.com/samber/lo"

	"github.com/sabucaps/brazilian/internal/entity"
)

// Apply returns a copy of record with entry written for wordID: the keyed map
// is overwritten, the history tuple is replaced in place (or appended) and the
// word is moved into the membership set its interval calls for. Other words
// are left as they were. The input record is not modified.
func Apply(record *entity.UserProgressRecord, wordID string, entry entity.ProgressEntry, now time.Time) *entity.UserProgressRecord {
	out := cloneOrNew(record)

	out.Entries[wordID] = entry.Stored()
	out.History = upsertHistory(out.History, wordID, entry.Stored())

	out.Mastered = lo.Without(out.Mastered, wordID)
	out.NeedsReview = lo.Without(out.NeedsReview, wordID)
	switch Classify(entry.Interval) {
	case entity.TierMastered:
		out.Mastered = append(out.Mastered, wordID)
	case entity.TierNeedsReview:
		out.NeedsReview = append(out.NeedsReview, wordID)
	}

	out.UpdatedAt = now
	return out
}

// Purge returns a copy of record with every trace of wordID removed, and
// whether anything was removed at all.
func Purge(record *entity.UserProgressRecord, wordID string, now time.Time) (*entity.UserProgressRecord, bool) {
	out := cloneOrNew(record)

	_, inMap := out.Entries[wordID]
	delete(out.Entries, wordID)

	history := lo.Filter(out.History, func(item entity.ProgressLogEntry, _ int) bool {
		return item.WordID != wordID
	})
	mastered := lo.Without(out.Mastered, wordID)
	needsReview := lo.Without(out.NeedsReview, wordID)

	changed := inMap ||
		len(history) != len(out.History) ||
		len(mastered) != len(out.Mastered) ||
		len(needsReview) != len(out.NeedsReview)
	if !changed {
		return out, false
	}

	out.History = history
	out.Mastered = mastered
	out.NeedsReview = needsReview
	out.UpdatedAt = now
	return out, true
}

// upsertHistory keeps the first tuple for wordID at its position and drops
// any later duplicates a legacy writer may have left behind.
func upsertHistory(history []entity.ProgressLogEntry, wordID string, stored entity.StoredProgress) []entity.ProgressLogEntry {
	out := make([]entity.ProgressLogEntry, 0, len(history)+1)
	replaced := false
	for _, item := range history {
		if item.WordID != wordID {
			out = append(out, item)
			continue
		}
		if replaced {
			continue
		}
		out = append(out, entity.ProgressLogEntry{WordID: wordID, Progress: stored})
		replaced = true
	}
	if !replaced {
		out = append(out, entity.ProgressLogEntry{WordID: wordID, Progress: stored.Clone()})
	}
	return out
}

func cloneOrNew(record *entity.UserProgressRecord) *entity.UserProgressRecord {
	if record == nil {
		return entity.NewUserProgressRecord("")
	}
	out := record.Clone()
	if out.Entries == nil {
		out.Entries = map[string]entity.StoredProgress{}
	}
	return out
}

package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/srs"
	progressv1 "github.com/sabucaps/brazilian/pkg/api/progress/v1"
)

// TierOf is the tier of a progress entry on its own. Stored membership sets
// follow the same thresholds, so both agree for every written entry.
func TierOf(progress entity.ProgressEntry) entity.MasteryTier {
	if progress.ReviewCount == 0 {
		return entity.TierNew
	}
	return srs.Classify(progress.Interval)
}

func ToAPIProgress(in entity.ProgressEntry) *progressv1.Progress {
	return &progressv1.Progress{
		Ease:         in.Ease,
		Interval:     clampInt32(in.Interval),
		ReviewCount:  clampInt32(in.ReviewCount),
		LastReviewed: utc(in.LastReviewed),
		NextReview:   utc(in.NextReview),
	}
}

func ToAPIVocabularyProgress(in entity.VocabularyProgress, now time.Time) *progressv1.VocabularyProgress {
	return &progressv1.VocabularyProgress{
		Id:          in.ID,
		Term:        in.Term,
		Translation: in.Translation,
		Group:       in.Group,
		Examples:    in.Examples,
		Media:       in.Media,
		Progress:    ToAPIProgress(in.Progress),
		Tier:        string(TierOf(in.Progress)),
		Due:         in.Progress.IsDue(now),
	}
}

func ToAPIVocabularyProgressList(items []entity.VocabularyProgress, now time.Time) []*progressv1.VocabularyProgress {
	return lo.Map(items, func(item entity.VocabularyProgress, _ int) *progressv1.VocabularyProgress {
		return ToAPIVocabularyProgress(item, now)
	})
}

func ToAPISummary(in *entity.ProgressSummary) *progressv1.ProgressSummary {
	return &progressv1.ProgressSummary{
		Total:       clampInt32(in.Total),
		New:         clampInt32(in.New),
		Learning:    clampInt32(in.Learning),
		NeedsReview: clampInt32(in.NeedsReview),
		Mastered:    clampInt32(in.Mastered),
		Due:         clampInt32(in.Due),
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// interval and counters are bounded far below int32 by the codec.
func clampInt32(v int) int32 {
	const maxInt32 = 1<<31 - 1
	if v > maxInt32 {
		return maxInt32
	}
	if v < 0 {
		return 0
	}
	return int32(v)
}

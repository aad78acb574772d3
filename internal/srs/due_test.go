package srs

import (
	"testing"
	"time"

	"github.com/samber/lo"

	"github.com/sabucaps/brazilian/internal/entity"
)

func testCatalog() []entity.VocabularyItem {
	return []entity.VocabularyItem{
		{ID: "w1", Term: "casa", Translation: "house"},
		{ID: "w2", Term: "gato", Translation: "cat"},
		{ID: "w3", Term: "livro", Translation: "book"},
		{ID: "w4", Term: "água", Translation: "water"},
	}
}

func TestDueItemsIncludesUnseenWords(t *testing.T) {
	for _, now := range []time.Time{time.Unix(0, 0).UTC(), reviewedAt, reviewedAt.AddDate(50, 0, 0)} {
		due := DueItems(testCatalog(), nil, now)
		if len(due) != 4 {
			t.Fatalf("at %v expected every unseen word due, got %d", now, len(due))
		}
	}
}

func TestDueItemsRespectsNextReview(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec = Apply(rec, "w1", entity.ProgressEntry{Ease: 2.5, Interval: 1, ReviewCount: 1, NextReview: ptr(reviewedAt.Add(-time.Hour))}, reviewedAt)
	rec = Apply(rec, "w2", entity.ProgressEntry{Ease: 2.5, Interval: 3, ReviewCount: 1, NextReview: ptr(reviewedAt.Add(time.Hour))}, reviewedAt)
	rec = Apply(rec, "w3", entity.ProgressEntry{Ease: 2.5, Interval: 3, ReviewCount: 1, NextReview: ptr(reviewedAt)}, reviewedAt)

	due := DueItems(testCatalog(), rec, reviewedAt)
	ids := lo.Map(due, func(item entity.VocabularyProgress, _ int) string { return item.ID })
	if want := []string{"w1", "w3", "w4"}; !lo.Every(ids, want) || len(ids) != len(want) || ids[0] != "w1" {
		t.Fatalf("due ids = %v, want %v in catalog order", ids, want)
	}
}

func TestSortByNextReview(t *testing.T) {
	early := reviewedAt.Add(-2 * time.Hour)
	late := reviewedAt.Add(2 * time.Hour)
	items := []entity.VocabularyProgress{
		{VocabularyItem: entity.VocabularyItem{ID: "late"}, Progress: entity.ProgressEntry{NextReview: &late}},
		{VocabularyItem: entity.VocabularyItem{ID: "new1"}},
		{VocabularyItem: entity.VocabularyItem{ID: "early"}, Progress: entity.ProgressEntry{NextReview: &early}},
		{VocabularyItem: entity.VocabularyItem{ID: "new2"}},
	}
	SortByNextReview(items)
	got := lo.Map(items, func(item entity.VocabularyProgress, _ int) string { return item.ID })
	want := []string{"new1", "new2", "early", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSummarizeCountsTiers(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec = Apply(rec, "w1", entity.ProgressEntry{Ease: 2.5, Interval: 30, ReviewCount: 6, NextReview: ptr(reviewedAt.AddDate(0, 0, 30))}, reviewedAt)
	rec = Apply(rec, "w2", entity.ProgressEntry{Ease: 2.5, Interval: 1, ReviewCount: 1, NextReview: ptr(reviewedAt)}, reviewedAt)
	rec = Apply(rec, "w3", entity.ProgressEntry{Ease: 2.5, Interval: 10, ReviewCount: 3, NextReview: ptr(reviewedAt.AddDate(0, 0, 10))}, reviewedAt)

	got := Summarize(testCatalog(), rec, reviewedAt)
	want := entity.ProgressSummary{Total: 4, New: 1, Learning: 1, NeedsReview: 1, Mastered: 1, Due: 2}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}
}

func TestTiersOfFollowsMembershipSets(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec.Mastered = []string{"w1", "w1"}
	rec.NeedsReview = []string{"w2"}
	tiers := TiersOf(rec)

	cases := []struct {
		id       string
		progress entity.ProgressEntry
		want     entity.MasteryTier
	}{
		{id: "w1", progress: entity.ProgressEntry{Interval: 30, ReviewCount: 4}, want: entity.TierMastered},
		{id: "w2", progress: entity.ProgressEntry{Interval: 1, ReviewCount: 1}, want: entity.TierNeedsReview},
		{id: "w3", progress: entity.ProgressEntry{Interval: 9, ReviewCount: 2}, want: entity.TierLearning},
		{id: "w4", progress: entity.DefaultProgressEntry(), want: entity.TierNew},
	}
	for _, c := range cases {
		if got := tiers.Of(c.id, c.progress); got != c.want {
			t.Errorf("%s: tier = %s, want %s", c.id, got, c.want)
		}
	}

	if got := TiersOf(nil).Of("w1", entity.DefaultProgressEntry()); got != entity.TierNew {
		t.Errorf("nil record: tier = %s, want new", got)
	}
}

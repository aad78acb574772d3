package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/samber/lo"

	"github.com/sabucaps/brazilian/internal/entity"
)

func TestApplyWritesMapHistoryAndSets(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec.NeedsReview = []string{"w1"}
	rec.Entries["w1"] = entity.StoredProgress{Interval: ptr(10), Ease: ptr(2.5)}
	rec.History = []entity.ProgressLogEntry{
		{WordID: "w0", Progress: entity.StoredProgress{Interval: ptr(1)}},
		{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(10)}},
	}

	entry, err := Schedule(Normalize(rec, "w1"), entity.OutcomeEasy, reviewedAt)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	out := Apply(rec, "w1", entry, reviewedAt)

	if got := *out.Entries["w1"].Interval; got != 27 {
		t.Fatalf("map interval = %d, want 27", got)
	}
	if len(out.History) != 2 || out.History[1].WordID != "w1" || *out.History[1].Progress.Interval != 27 {
		t.Fatalf("history not upserted in place: %+v", out.History)
	}
	if !lo.Contains(out.Mastered, "w1") || lo.Contains(out.NeedsReview, "w1") {
		t.Fatalf("membership wrong: mastered=%v needsReview=%v", out.Mastered, out.NeedsReview)
	}
	if !out.UpdatedAt.Equal(reviewedAt) {
		t.Fatalf("updatedAt = %v", out.UpdatedAt)
	}

	// input untouched
	if *rec.Entries["w1"].Interval != 10 || !lo.Contains(rec.NeedsReview, "w1") || len(rec.Mastered) != 0 {
		t.Fatalf("Apply mutated its input: %+v", rec)
	}
}

func TestApplyAppendsNewWordAndDropsLegacyDuplicates(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec.History = []entity.ProgressLogEntry{
		{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(1)}},
		{WordID: "w2", Progress: entity.StoredProgress{Interval: ptr(1)}},
		{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(3)}},
	}
	rec.Mastered = []string{"w1", "w1"}

	out := Apply(rec, "w1", entity.ProgressEntry{Ease: 2.5, Interval: 8, ReviewCount: 3}, reviewedAt)
	if len(out.History) != 2 || out.History[0].WordID != "w1" || out.History[1].WordID != "w2" {
		t.Fatalf("unexpected history order: %+v", out.History)
	}
	if lo.Contains(out.Mastered, "w1") || lo.Contains(out.NeedsReview, "w1") {
		t.Fatalf("learning word should be in neither set: mastered=%v needsReview=%v", out.Mastered, out.NeedsReview)
	}

	out = Apply(out, "w3", entity.ProgressEntry{Ease: 2.5, Interval: 1, ReviewCount: 1}, reviewedAt)
	if last := out.History[len(out.History)-1]; last.WordID != "w3" {
		t.Fatalf("new word should be appended, got %+v", last)
	}
	if !lo.Contains(out.NeedsReview, "w3") {
		t.Fatalf("w3 should need review: %v", out.NeedsReview)
	}
}

func TestApplyMembershipInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"a", "b", "c", "d", "e"}
	outcomes := []entity.ReviewOutcome{entity.OutcomeEasy, entity.OutcomeMedium, entity.OutcomeHard}
	rec := entity.NewUserProgressRecord("u1")
	now := reviewedAt

	for i := 0; i < 500; i++ {
		word := words[rng.Intn(len(words))]
		entry, err := Schedule(Normalize(rec, word), outcomes[rng.Intn(len(outcomes))], now)
		if err != nil {
			t.Fatalf("Schedule: %v", err)
		}
		rec = Apply(rec, word, entry, now)
		now = now.Add(time.Hour)

		inMastered := lo.Count(rec.Mastered, word)
		inNeeds := lo.Count(rec.NeedsReview, word)
		switch Classify(entry.Interval) {
		case entity.TierMastered:
			if inMastered != 1 || inNeeds != 0 {
				t.Fatalf("step %d: %s interval %d mastered=%d needs=%d", i, word, entry.Interval, inMastered, inNeeds)
			}
		case entity.TierNeedsReview:
			if inMastered != 0 || inNeeds != 1 {
				t.Fatalf("step %d: %s interval %d mastered=%d needs=%d", i, word, entry.Interval, inMastered, inNeeds)
			}
		default:
			if inMastered != 0 || inNeeds != 0 {
				t.Fatalf("step %d: %s interval %d mastered=%d needs=%d", i, word, entry.Interval, inMastered, inNeeds)
			}
		}
		if both := lo.Intersect(rec.Mastered, rec.NeedsReview); len(both) != 0 {
			t.Fatalf("step %d: sets overlap on %v", i, both)
		}
		if len(rec.History) != len(rec.Entries) {
			t.Fatalf("step %d: history has %d tuples for %d entries", i, len(rec.History), len(rec.Entries))
		}
	}
}

func TestPurgeRemovesEveryReference(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec = Apply(rec, "w1", entity.ProgressEntry{Ease: 2.5, Interval: 30, ReviewCount: 5}, reviewedAt)
	rec = Apply(rec, "w2", entity.ProgressEntry{Ease: 2.5, Interval: 1, ReviewCount: 1}, reviewedAt)
	rec.NeedsReview = append(rec.NeedsReview, "w1")

	out, changed := Purge(rec, "w1", reviewedAt)
	if !changed {
		t.Fatal("expected purge to report a change")
	}
	if _, ok := out.Entries["w1"]; ok {
		t.Fatal("w1 still in keyed map")
	}
	if lo.ContainsBy(out.History, func(item entity.ProgressLogEntry) bool { return item.WordID == "w1" }) {
		t.Fatal("w1 still in history")
	}
	if lo.Contains(out.Mastered, "w1") || lo.Contains(out.NeedsReview, "w1") {
		t.Fatal("w1 still in a membership set")
	}
	if !lo.Contains(out.NeedsReview, "w2") {
		t.Fatal("w2 should be untouched")
	}
	if got := Normalize(out, "w1"); got.ReviewCount != 0 || got.NextReview != nil {
		t.Fatalf("purged word should read as new, got %+v", got)
	}

	if _, changed := Purge(out, "w1", reviewedAt); changed {
		t.Fatal("second purge should be a no-op")
	}
}

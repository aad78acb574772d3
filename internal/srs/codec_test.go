package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sabucaps/brazilian/internal/entity"
)

func TestNormalizeDefaults(t *testing.T) {
	want := entity.DefaultProgressEntry()
	if diff := cmp.Diff(want, Normalize(nil, "w1")); diff != "" {
		t.Fatalf("nil record (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, Normalize(entity.NewUserProgressRecord("u1"), "w1")); diff != "" {
		t.Fatalf("empty record (-want +got):\n%s", diff)
	}
}

func TestNormalizePrefersMapOverHistory(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec.Entries["w1"] = entity.StoredProgress{Interval: ptr(9)}
	rec.History = []entity.ProgressLogEntry{{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(2)}}}

	got := Normalize(rec, "w1")
	if got.Interval != 9 {
		t.Fatalf("interval = %d, want value from keyed map", got.Interval)
	}
	if got.Ease != entity.DefaultEase {
		t.Fatalf("missing ease should default, got %v", got.Ease)
	}
}

func TestNormalizeFallsBackToLastHistoryTuple(t *testing.T) {
	rec := entity.NewUserProgressRecord("u1")
	rec.History = []entity.ProgressLogEntry{
		{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(2)}},
		{WordID: "w2", Progress: entity.StoredProgress{Interval: ptr(5)}},
		{WordID: "w1", Progress: entity.StoredProgress{Interval: ptr(4)}},
	}
	if got := Normalize(rec, "w1").Interval; got != 4 {
		t.Fatalf("interval = %d, want 4", got)
	}
}

func TestFromStoredRepairsBadValues(t *testing.T) {
	var zero time.Time
	cases := []struct {
		name   string
		stored entity.StoredProgress
		want   entity.ProgressEntry
	}{
		{
			name:   "nan ease",
			stored: entity.StoredProgress{Ease: ptr(math.NaN())},
			want:   entity.DefaultProgressEntry(),
		},
		{
			name:   "negative fields",
			stored: entity.StoredProgress{Ease: ptr(-1.0), Interval: ptr(-3), ReviewCount: ptr(-2)},
			want:   entity.DefaultProgressEntry(),
		},
		{
			name:   "ease above ceiling",
			stored: entity.StoredProgress{Ease: ptr(7.0)},
			want:   entity.ProgressEntry{Ease: entity.MaxEase},
		},
		{
			name:   "ease below floor",
			stored: entity.StoredProgress{Ease: ptr(0.5)},
			want:   entity.ProgressEntry{Ease: entity.MinEase},
		},
		{
			name:   "zero timestamps",
			stored: entity.StoredProgress{LastReviewed: &zero, NextReview: &zero},
			want:   entity.DefaultProgressEntry(),
		},
		{
			name:   "huge interval",
			stored: entity.StoredProgress{Interval: ptr(1 << 40)},
			want:   entity.ProgressEntry{Ease: entity.DefaultEase, Interval: entity.MaxIntervalDays},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, FromStored(tc.stored)); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	next := reviewedAt.Add(72 * time.Hour)
	inputs := []entity.StoredProgress{
		{},
		{Ease: ptr(9.0), Interval: ptr(-1)},
		{Ease: ptr(2.2), Interval: ptr(3), ReviewCount: ptr(2), LastReviewed: &reviewedAt, NextReview: &next},
	}
	for i, stored := range inputs {
		rec := entity.NewUserProgressRecord("u1")
		rec.Entries["w1"] = stored

		first := Normalize(rec, "w1")
		rec.Entries["w1"] = first.Stored()
		second := Normalize(rec, "w1")

		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("input %d not idempotent (-first +second):\n%s", i, diff)
		}
	}
}

package entity

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseReviewOutcome(t *testing.T) {
	cases := []struct {
		in      string
		want    ReviewOutcome
		wantErr bool
	}{
		{in: "easy", want: OutcomeEasy},
		{in: " Medium ", want: OutcomeMedium},
		{in: "HARD", want: OutcomeHard},
		{in: "", wantErr: true},
		{in: "again", wantErr: true},
	}
	for _, c := range cases {
		got, err := ParseReviewOutcome(c.in)
		if c.wantErr {
			if err != ErrInvalidOutcome {
				t.Fatalf("%q: expected ErrInvalidOutcome, got %v", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("%q: got %q want %q", c.in, got, c.want)
		}
	}
}

func TestProgressLogEntryDecodesBothShapes(t *testing.T) {
	nested := `{"wordId":"w1","progress":{"ease":2.2,"interval":4,"reviewCount":3}}`
	flat := `{"wordId":"w2","ease":1.9,"interval":2}`

	var a, b ProgressLogEntry
	if err := json.Unmarshal([]byte(nested), &a); err != nil {
		t.Fatalf("decode nested: %v", err)
	}
	if err := json.Unmarshal([]byte(flat), &b); err != nil {
		t.Fatalf("decode flat: %v", err)
	}

	if a.WordID != "w1" || a.Progress.Ease == nil || *a.Progress.Ease != 2.2 || *a.Progress.Interval != 4 || *a.Progress.ReviewCount != 3 {
		t.Fatalf("nested entry decoded wrong: %+v", a)
	}
	if b.WordID != "w2" || b.Progress.Ease == nil || *b.Progress.Ease != 1.9 || *b.Progress.Interval != 2 {
		t.Fatalf("flat entry decoded wrong: %+v", b)
	}
	if b.Progress.ReviewCount != nil {
		t.Fatalf("expected missing reviewCount to stay nil, got %v", *b.Progress.ReviewCount)
	}
}

func TestRecordCloneIsIndependent(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entry := ProgressEntry{Ease: 2.5, Interval: 3, ReviewCount: 1, NextReview: &now}
	rec := NewUserProgressRecord("u1")
	rec.Entries["w1"] = entry.Stored()
	rec.History = []ProgressLogEntry{{WordID: "w1", Progress: entry.Stored()}}
	rec.NeedsReview = []string{"w1"}

	clone := rec.Clone()
	*clone.Entries["w1"].Interval = 99
	*clone.History[0].Progress.NextReview = now.Add(time.Hour)
	clone.NeedsReview[0] = "other"

	if *rec.Entries["w1"].Interval != 3 {
		t.Fatalf("original entry mutated through clone")
	}
	if !rec.History[0].Progress.NextReview.Equal(now) {
		t.Fatalf("original history timestamp mutated through clone")
	}
	if rec.NeedsReview[0] != "w1" {
		t.Fatalf("original needs-review set mutated through clone")
	}
}

func TestProgressEntryIsDue(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if !DefaultProgressEntry().IsDue(now) {
		t.Fatal("entry without next review should be due")
	}
	if !(ProgressEntry{NextReview: &now}).IsDue(now) {
		t.Fatal("entry due exactly now should be due")
	}
	if !(ProgressEntry{NextReview: &past}).IsDue(now) {
		t.Fatal("overdue entry should be due")
	}
	if (ProgressEntry{NextReview: &future}).IsDue(now) {
		t.Fatal("future entry should not be due")
	}
}

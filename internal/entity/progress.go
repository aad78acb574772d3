package entity

import (
	"encoding/json"
	"time"
)

// Scheduling bounds and mastery thresholds.
const (
	DefaultEase = 2.5
	MinEase     = 1.3
	MaxEase     = 3.0

	// MaxIntervalDays keeps next-review arithmetic inside time.Duration range.
	MaxIntervalDays = 36500

	MasteredIntervalDays    = 21
	NeedsReviewIntervalDays = 7
)

// ProgressEntry is the canonical scheduling state for one (user, word) pair.
type ProgressEntry struct {
	Ease         float64    `json:"ease"`
	Interval     int        `json:"interval"`
	ReviewCount  int        `json:"reviewCount"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
}

// DefaultProgressEntry is the state of a word the user has never reviewed.
func DefaultProgressEntry() ProgressEntry {
	return ProgressEntry{Ease: DefaultEase}
}

// IsDue reports whether the entry should be reviewed at now. A missing
// next-review timestamp is always due.
func (e ProgressEntry) IsDue(now time.Time) bool {
	return e.NextReview == nil || !e.NextReview.After(now)
}

// Stored converts the entry into its persisted form with every field present.
func (e ProgressEntry) Stored() StoredProgress {
	ease := e.Ease
	interval := e.Interval
	count := e.ReviewCount
	return StoredProgress{
		Ease:         &ease,
		Interval:     &interval,
		ReviewCount:  &count,
		LastReviewed: copyTime(e.LastReviewed),
		NextReview:   copyTime(e.NextReview),
	}
}

// StoredProgress is a progress entry as found in storage. Older writers left
// fields out, so every field is optional.
type StoredProgress struct {
	Ease         *float64   `json:"ease,omitempty"`
	Interval     *int       `json:"interval,omitempty"`
	ReviewCount  *int       `json:"reviewCount,omitempty"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
}

// Clone returns a deep copy.
func (s StoredProgress) Clone() StoredProgress {
	out := StoredProgress{
		LastReviewed: copyTime(s.LastReviewed),
		NextReview:   copyTime(s.NextReview),
	}
	if s.Ease != nil {
		v := *s.Ease
		out.Ease = &v
	}
	if s.Interval != nil {
		v := *s.Interval
		out.Interval = &v
	}
	if s.ReviewCount != nil {
		v := *s.ReviewCount
		out.ReviewCount = &v
	}
	return out
}

// ProgressLogEntry is one tuple of the per-user history log.
type ProgressLogEntry struct {
	WordID   string         `json:"wordId"`
	Progress StoredProgress `json:"progress"`
}

// UnmarshalJSON accepts both the nested {"wordId", "progress": {...}} shape
// and the flat shape where progress fields sit next to wordId.
func (e *ProgressLogEntry) UnmarshalJSON(data []byte) error {
	var nested struct {
		WordID   string          `json:"wordId"`
		Progress *StoredProgress `json:"progress"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	e.WordID = nested.WordID
	if nested.Progress != nil {
		e.Progress = *nested.Progress
		return nil
	}
	e.Progress = StoredProgress{}
	return json.Unmarshal(data, &e.Progress)
}

// UserProgressRecord is the per-user document the engine reads and writes as
// a unit. Version increases by one on every committed write.
type UserProgressRecord struct {
	UserID      string                    `json:"userId"`
	Version     int64                     `json:"version"`
	Entries     map[string]StoredProgress `json:"entries,omitempty"`
	History     []ProgressLogEntry        `json:"history,omitempty"`
	Mastered    []string                  `json:"mastered,omitempty"`
	NeedsReview []string                  `json:"needsReview,omitempty"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// NewUserProgressRecord returns an empty, never persisted record.
func NewUserProgressRecord(userID string) *UserProgressRecord {
	return &UserProgressRecord{
		UserID:  userID,
		Entries: map[string]StoredProgress{},
	}
}

// Clone returns a deep copy so that callers can mutate without touching a
// record another goroutine may still hold.
func (r *UserProgressRecord) Clone() *UserProgressRecord {
	if r == nil {
		return nil
	}
	out := &UserProgressRecord{
		UserID:    r.UserID,
		Version:   r.Version,
		Entries:   make(map[string]StoredProgress, len(r.Entries)),
		UpdatedAt: r.UpdatedAt,
	}
	for id, stored := range r.Entries {
		out.Entries[id] = stored.Clone()
	}
	if r.History != nil {
		out.History = make([]ProgressLogEntry, len(r.History))
		for i, item := range r.History {
			out.History[i] = ProgressLogEntry{WordID: item.WordID, Progress: item.Progress.Clone()}
		}
	}
	if r.Mastered != nil {
		out.Mastered = append([]string{}, r.Mastered...)
	}
	if r.NeedsReview != nil {
		out.NeedsReview = append([]string{}, r.NeedsReview...)
	}
	return out
}

// ProgressSummary counts catalog items per mastery tier for one user.
type ProgressSummary struct {
	Total       int `json:"total"`
	New         int `json:"new"`
	Learning    int `json:"learning"`
	NeedsReview int `json:"needsReview"`
	Mastered    int `json:"mastered"`
	Due         int `json:"due"`
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

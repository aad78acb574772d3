package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sabucaps/brazilian/internal/entity"
	"github.com/sabucaps/brazilian/internal/repository"
	"github.com/sabucaps/brazilian/internal/srs"
)

const tracerName = "github.com/sabucaps/brazilian/internal/usecase"

// ProgressUsecase is the review engine as seen by the request layer.
type ProgressUsecase interface {
	GetProgressList(ctx context.Context, query *repository.ListProgressQuery) ([]entity.VocabularyProgress, int64, error)
	ReviewWord(ctx context.Context, userID, wordID string, outcome entity.ReviewOutcome) (*entity.VocabularyProgress, error)
	GetDueList(ctx context.Context, query *repository.DueListQuery) ([]entity.VocabularyProgress, error)
	GetSummary(ctx context.Context, userID string, now time.Time) (*entity.ProgressSummary, error)
	// PurgeWord removes a catalog item and every user's progress on it. It
	// returns how many users had progress removed.
	PurgeWord(ctx context.Context, wordID string) (int, error)
}

// RetryPolicy bounds the optimistic load-compute-persist loop.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is used when a zero policy is supplied.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 8, Backoff: 5 * time.Millisecond}

// NewProgressUsecase wires the repositories with default behaviour.
func NewProgressUsecase(vocab repository.VocabularyRepository, progress repository.ProgressRepository, logger logrus.FieldLogger, policy RetryPolicy) ProgressUsecase {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.Backoff < 0 {
		policy.Backoff = 0
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &progressUsecase{
		vocab:    vocab,
		progress: progress,
		logger:   logger,
		policy:   policy,
		tracer:   otel.Tracer(tracerName),
		clock:    time.Now,
	}
}

type progressUsecase struct {
	vocab    repository.VocabularyRepository
	progress repository.ProgressRepository
	logger   logrus.FieldLogger
	policy   RetryPolicy
	tracer   trace.Tracer
	clock    func() time.Time
}

func (u *progressUsecase) GetProgressList(ctx context.Context, query *repository.ListProgressQuery) ([]entity.VocabularyProgress, int64, error) {
	if query == nil {
		return nil, 0, entity.ErrInvalidUserID
	}
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return nil, 0, entity.ErrInvalidUserID
	}
	ctx, span := u.tracer.Start(ctx, "ProgressUsecase.GetProgressList", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	view, err := compileListView(&query.FilterOrder, progressOrderSchema)
	if err != nil {
		return nil, 0, recordErr(span, err)
	}

	record, err := u.progress.Load(ctx, userID)
	if err != nil {
		return nil, 0, recordErr(span, err)
	}
	catalog, err := u.vocab.ListAll(ctx)
	if err != nil {
		return nil, 0, recordErr(span, err)
	}

	now := query.Now
	if now.IsZero() {
		now = u.clock()
	}
	items, err := view.apply(srs.Merge(catalog, record), srs.TiersOf(record), now)
	if err != nil {
		return nil, 0, recordErr(span, err)
	}

	total := int64(len(items))
	items = paginate(items, query.Pagination)
	span.SetAttributes(attribute.Int64("progress.total", total))
	return items, total, nil
}

func (u *progressUsecase) ReviewWord(ctx context.Context, userID, wordID string, outcome entity.ReviewOutcome) (*entity.VocabularyProgress, error) {
	userID = strings.TrimSpace(userID)
	wordID = strings.TrimSpace(wordID)
	switch {
	case userID == "":
		return nil, entity.ErrInvalidUserID
	case wordID == "":
		return nil, entity.ErrInvalidWordID
	case !outcome.Valid():
		return nil, entity.ErrInvalidOutcome
	}

	ctx, span := u.tracer.Start(ctx, "ProgressUsecase.ReviewWord", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("word.id", wordID),
		attribute.String("review.outcome", string(outcome)),
	))
	defer span.End()

	item, err := u.vocab.GetByID(ctx, wordID)
	if err != nil {
		return nil, recordErr(span, err)
	}

	var entry entity.ProgressEntry
	err = u.updateRecord(ctx, userID, u.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"word_id": wordID,
		"outcome": outcome,
	}), func(record *entity.UserProgressRecord, now time.Time) (*entity.UserProgressRecord, error) {
		next, err := srs.Schedule(srs.Normalize(record, wordID), outcome, now)
		if err != nil {
			return nil, err
		}
		entry = next
		return srs.Apply(record, wordID, next, now), nil
	})
	if err != nil {
		return nil, recordErr(span, err)
	}

	// A purge can sweep this user between the lookup above and the commit.
	// Undo the write then, so a deleted item never keeps progress around.
	if _, err := u.vocab.GetByID(ctx, wordID); errors.Is(err, entity.ErrVocabularyNotFound) {
		if _, perr := u.purgeUser(ctx, userID, wordID); perr != nil {
			return nil, recordErr(span, perr)
		}
		return nil, recordErr(span, err)
	}

	span.SetAttributes(attribute.Int("progress.interval", entry.Interval))
	return &entity.VocabularyProgress{VocabularyItem: *item, Progress: entry}, nil
}

func (u *progressUsecase) GetDueList(ctx context.Context, query *repository.DueListQuery) ([]entity.VocabularyProgress, error) {
	if query == nil {
		return nil, entity.ErrInvalidUserID
	}
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return nil, entity.ErrInvalidUserID
	}
	ctx, span := u.tracer.Start(ctx, "ProgressUsecase.GetDueList", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	view, err := compileListView(&query.FilterOrder, dueOrderSchema)
	if err != nil {
		return nil, recordErr(span, err)
	}

	record, err := u.progress.Load(ctx, userID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	catalog, err := u.vocab.ListAll(ctx)
	if err != nil {
		return nil, recordErr(span, err)
	}

	now := query.Now
	if now.IsZero() {
		now = u.clock()
	}
	items, err := view.apply(srs.DueItems(catalog, record, now), srs.TiersOf(record), now)
	if err != nil {
		return nil, recordErr(span, err)
	}
	span.SetAttributes(attribute.Int("progress.due", len(items)))
	return items, nil
}

func (u *progressUsecase) GetSummary(ctx context.Context, userID string, now time.Time) (*entity.ProgressSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, entity.ErrInvalidUserID
	}
	ctx, span := u.tracer.Start(ctx, "ProgressUsecase.GetSummary", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	record, err := u.progress.Load(ctx, userID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	catalog, err := u.vocab.ListAll(ctx)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if now.IsZero() {
		now = u.clock()
	}
	summary := srs.Summarize(catalog, record, now)
	return &summary, nil
}

func (u *progressUsecase) PurgeWord(ctx context.Context, wordID string) (int, error) {
	wordID = strings.TrimSpace(wordID)
	if wordID == "" {
		return 0, entity.ErrInvalidWordID
	}
	ctx, span := u.tracer.Start(ctx, "ProgressUsecase.PurgeWord", trace.WithAttributes(attribute.String("word.id", wordID)))
	defer span.End()

	if _, err := u.vocab.GetByID(ctx, wordID); err != nil {
		return 0, recordErr(span, err)
	}
	affected := map[string]struct{}{}
	if err := u.sweep(ctx, wordID, affected); err != nil {
		return len(affected), recordErr(span, err)
	}

	// progress goes first so a failure here never leaves records pointing
	// at a missing catalog item
	if err := u.vocab.Delete(ctx, wordID); err != nil {
		return len(affected), recordErr(span, err)
	}
	// Reviews that looked the item up before the delete may have committed
	// after the first sweep reached their user.
	if err := u.sweep(ctx, wordID, affected); err != nil {
		return len(affected), recordErr(span, err)
	}
	u.logger.WithFields(logrus.Fields{"word_id": wordID, "users": len(affected)}).Info("purged vocabulary item")
	return len(affected), nil
}

// sweep removes wordID from every user's record, collecting the users whose
// record changed.
func (u *progressUsecase) sweep(ctx context.Context, wordID string, affected map[string]struct{}) error {
	users, err := u.progress.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		touched, err := u.purgeUser(ctx, user.ID, wordID)
		if err != nil {
			return fmt.Errorf("purge %s for user %s: %w", wordID, user.ID, err)
		}
		if touched {
			affected[user.ID] = struct{}{}
		}
	}
	return nil
}

func (u *progressUsecase) purgeUser(ctx context.Context, userID, wordID string) (bool, error) {
	touched := false
	logger := u.logger.WithFields(logrus.Fields{"user_id": userID, "word_id": wordID})
	err := u.updateRecord(ctx, userID, logger, func(record *entity.UserProgressRecord, now time.Time) (*entity.UserProgressRecord, error) {
		next, changed := srs.Purge(record, wordID, now)
		touched = changed
		if !changed {
			return nil, nil
		}
		return next, nil
	})
	return touched, err
}

// mutateFunc derives the next record from a freshly loaded one. Returning a
// nil record means there is nothing to write.
type mutateFunc func(record *entity.UserProgressRecord, now time.Time) (*entity.UserProgressRecord, error)

// updateRecord runs load, mutate and save for one user until the save
// commits, the mutation fails, or the retry budget is spent. Each attempt
// starts from a fresh load so that a result computed against a stale record
// is never written.
func (u *progressUsecase) updateRecord(ctx context.Context, userID string, logger logrus.FieldLogger, mutate mutateFunc) error {
	var lastErr error
	for attempt := 1; attempt <= u.policy.MaxAttempts; attempt++ {
		record, err := u.progress.Load(ctx, userID)
		if err != nil {
			return err
		}

		next, err := mutate(record, u.clock())
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		next.UserID = userID
		next.Version = record.Version

		if _, err = u.progress.Save(ctx, next); err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrConcurrentUpdate) {
			return err
		}

		lastErr = err
		logger.WithField("attempt", attempt).WithError(err).Debug("progress record changed underneath, retrying")
		if err := u.wait(ctx, attempt); err != nil {
			return err
		}
	}

	logger.WithField("attempts", u.policy.MaxAttempts).Warn("gave up updating progress record")
	return fmt.Errorf("update progress for user %s after %d attempts: %w", userID, u.policy.MaxAttempts, lastErr)
}

func (u *progressUsecase) wait(ctx context.Context, attempt int) error {
	if u.policy.Backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(u.policy.Backoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

package repository

import (
	"context"
	"time"

	"github.com/sabucaps/brazilian/internal/entity"
)

// ListProgressQuery holds parameters for listing a user's merged progress.
type ListProgressQuery struct {
	Pagination
	FilterOrder

	UserID string
	Now    time.Time
}

// DueListQuery holds parameters for listing the items due for a user.
type DueListQuery struct {
	FilterOrder

	UserID string
	Now    time.Time
}

// ProgressRepository persists one UserProgressRecord per user.
//
// Save is a compare-and-swap on UserProgressRecord.Version: it commits only
// when the stored version equals the record's, increments the version on the
// record it was given and returns it. A stale version yields a
// *entity.ConflictError and leaves storage untouched.
type ProgressRepository interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)

	// Load returns the user's record. Unknown users yield entity.ErrUserNotFound;
	// a known user with no progress yields an empty record at version 0.
	Load(ctx context.Context, userID string) (*entity.UserProgressRecord, error)
	Save(ctx context.Context, record *entity.UserProgressRecord) (*entity.UserProgressRecord, error)
}

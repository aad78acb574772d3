package entity

import (
	"errors"
	"fmt"
)

// Domain errors for the progress engine and its collaborators.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidUserID      = errors.New("invalid user ID")
	ErrInvalidUserName    = errors.New("invalid user name")
	ErrVocabularyNotFound = errors.New("vocabulary item not found")
	ErrDuplicateWord      = errors.New("vocabulary item already exists")
	ErrInvalidWordID      = errors.New("invalid word ID")
	ErrInvalidWordText    = errors.New("invalid word text")
	ErrInvalidOutcome     = errors.New("invalid review outcome")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrConcurrentUpdate   = errors.New("concurrent update conflict")
	ErrStoreUnavailable   = errors.New("progress store unavailable")
)

// ConflictError reports a compare-and-swap miss on a user's progress record.
type ConflictError struct {
	UserID   string
	Expected int64
	Current  int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("progress record %q: expected version %d, found %d", e.UserID, e.Expected, e.Current)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConcurrentUpdate
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/sabucaps/brazilian/internal/entity"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return true
	}
	// go-sqlite3 error types only exist in cgo builds
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// storeErr marks a failure at the storage boundary as transient. Context
// errors and domain errors pass through untouched.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		entity.ErrUserNotFound,
		entity.ErrUserAlreadyExists,
		entity.ErrVocabularyNotFound,
		entity.ErrDuplicateWord,
		entity.ErrConcurrentUpdate,
		entity.ErrStoreUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

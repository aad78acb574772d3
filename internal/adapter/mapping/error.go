package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/sabucaps/brazilian/internal/entity"
)

// ToConnectError translates domain errors into connect status codes. Errors
// that already carry a connect code are returned as is.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(CodeOf(err), err)
}

// CodeOf reports the connect code a domain error maps to.
func CodeOf(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, entity.ErrUserNotFound), errors.Is(err, entity.ErrVocabularyNotFound):
		return connect.CodeNotFound
	case errors.Is(err, entity.ErrInvalidOutcome),
		errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidUserName),
		errors.Is(err, entity.ErrInvalidWordID),
		errors.Is(err, entity.ErrInvalidWordText),
		errors.Is(err, entity.ErrInvalidFilter):
		return connect.CodeInvalidArgument
	case errors.Is(err, entity.ErrUserAlreadyExists), errors.Is(err, entity.ErrDuplicateWord):
		return connect.CodeAlreadyExists
	case errors.Is(err, entity.ErrConcurrentUpdate):
		return connect.CodeAborted
	case errors.Is(err, entity.ErrStoreUnavailable):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

package handlers

import (
	"errors"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// businessCode maps a service error onto its response code. Unrecognized
// errors fall through to the generic internal code.
func businessCode(err error) int {
	switch {
	case errors.Is(err, xerr.ErrFileNameRequired):
		return xerr.CodeFileNameRequired
	case errors.Is(err, xerr.ErrObjectKeyRequired):
		return xerr.CodeObjectKeyRequired
	case errors.Is(err, xerr.ErrFileStatusInvalid):
		return xerr.CodeFileStatusInvalid
	case errors.Is(err, xerr.ErrReservationExpired):
		return xerr.CodeReservationExpired
	case errors.Is(err, xerr.ErrFolderNameRequired), errors.Is(err, xerr.ErrFolderNameTooLong):
		return xerr.CodeFolderNameInvalid
	case errors.Is(err, xerr.ErrInvalidParams):
		return xerr.CodeInvalidParams

	case errors.Is(err, xerr.ErrTokenInvalid):
		return xerr.CodeTokenInvalid
	case errors.Is(err, xerr.ErrInvalidCredentials):
		return xerr.CodeInvalidCredentials
	case errors.Is(err, xerr.ErrUnauthorized):
		return xerr.CodeUnauthorized

	case errors.Is(err, xerr.ErrForbidden):
		return xerr.CodeForbidden

	case errors.Is(err, xerr.ErrUserNotFound):
		return xerr.CodeUserNotFound
	case errors.Is(err, xerr.ErrFileNotFound):
		return xerr.CodeFileNotFound
	case errors.Is(err, xerr.ErrFolderNotFound):
		return xerr.CodeFolderNotFound
	case errors.Is(err, xerr.ErrFileNotInTrash):
		return xerr.CodeFileNotInTrash

	case errors.Is(err, xerr.ErrUserAlreadyExists):
		return xerr.CodeUserAlreadyExists
	case errors.Is(err, xerr.ErrEmailAlreadyExists):
		return xerr.CodeEmailAlreadyExists
	case errors.Is(err, xerr.ErrQuotaExceeded):
		return xerr.CodeQuotaExceeded
	case errors.Is(err, xerr.ErrFolderNotEmpty):
		return xerr.CodeFolderNotEmpty

	case errors.Is(err, xerr.ErrStorageError):
		return xerr.CodeStorageError
	case errors.Is(err, xerr.ErrMQError):
		return xerr.CodeMQError
	default:
		return xerr.CodeInternalServerError
	}
}

// respondError renders a service error. The HTTP status is the business
// code's leading family (40902 -> 409).
func respondError(c *gin.Context, err error) {
	code := businessCode(err)
	xerr.Error(c, code/100, code, err.Error())
}

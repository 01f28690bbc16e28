package xerr

import "errors"

var (
	// generic
	ErrInternalServer = errors.New("internal server error")

	// client request errors
	ErrInvalidParams      = errors.New("invalid request parameters")
	ErrFileNameRequired   = errors.New("file name is required")
	ErrObjectKeyRequired  = errors.New("object key is required")
	ErrFileStatusInvalid  = errors.New("file state does not allow this operation")
	ErrReservationExpired = errors.New("upload reservation has expired")
	ErrFolderNameRequired = errors.New("folder name is required")
	ErrFolderNameTooLong  = errors.New("folder name exceeds the maximum length")

	// authentication
	ErrUnauthorized       = errors.New("user not authorized")
	ErrTokenInvalid       = errors.New("token invalid or expired")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUserAlreadyExists  = errors.New("username already taken")
	ErrEmailAlreadyExists = errors.New("email already registered")

	// permissions
	ErrForbidden = errors.New("access denied")

	// not found
	ErrUserNotFound   = errors.New("user not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileNotInTrash = errors.New("file is not in the trash")

	// business conflicts
	ErrQuotaExceeded  = errors.New("storage quota exceeded")
	ErrFolderNotEmpty = errors.New("folder is not empty")

	// infrastructure
	ErrDatabaseError = errors.New("database operation failed")
	ErrStorageError  = errors.New("object storage operation failed")
	ErrMQError       = errors.New("message queue operation failed")
)

package xerr

// Business codes carried in every JSON response.
const (
	CodeSuccess = 20000

	// --- client request errors (400xx) ---
	CodeInvalidParams      = 40000
	CodeValidationFailed   = 40001
	CodeFileNameRequired   = 40002
	CodeObjectKeyRequired  = 40003
	CodeFileStatusInvalid  = 40004
	CodeFolderNameInvalid  = 40005
	CodeReservationExpired = 40006

	// --- authentication errors (401xx) ---
	CodeUnauthorized       = 40100
	CodeTokenInvalid       = 40101
	CodeInvalidCredentials = 40102

	// --- permission errors (403xx) ---
	CodeForbidden = 40300

	// --- not found errors (404xx) ---
	CodeNotFound       = 40400
	CodeUserNotFound   = 40401
	CodeFileNotFound   = 40402
	CodeFolderNotFound = 40403
	CodeFileNotInTrash = 40404

	// --- business conflicts (409xx) ---
	CodeUserAlreadyExists  = 40900
	CodeEmailAlreadyExists = 40901
	CodeQuotaExceeded      = 40902
	CodeFolderNotEmpty     = 40903

	// --- server side errors (500xx) ---
	CodeInternalServerError = 50000
	CodeDatabaseError       = 50001
	CodeStorageError        = 50002
	CodeMQError             = 50003
)

package xerr

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// CodeError carries a business code alongside the wrapped error so the
// handler layer can map service failures onto the response envelope.
type CodeError struct {
	Code int
	Err  error
}

func (e *CodeError) Error() string {
	return e.Err.Error()
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

func NewCodeError(code int, err error) *CodeError {
	return &CodeError{Code: code, Err: err}
}

// CodeOf extracts the business code from err, falling back to the generic
// internal error code.
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeInternalServerError
}

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func JSONResponse(c *gin.Context, httpStatus int, code int, message string, data any) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Success(c *gin.Context, httpStatus int, message string, data any) {
	JSONResponse(c, httpStatus, CodeSuccess, message, data)
}

func Error(c *gin.Context, httpStatus int, code int, message string) {
	JSONResponse(c, httpStatus, code, message, nil)
}

// AbortWithError ends the request early, skipping remaining handlers.
func AbortWithError(c *gin.Context, httpStatus int, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort()
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gymhub/internal/logger"

	"github.com/gin-gonic/gin"
)

// Error carries the HTTP status a failure maps to.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Upstream(msg string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Message: msg, Err: err}
}

func GatewayTimeout(err error) *Error {
	return &Error{Status: http.StatusGatewayTimeout, Message: "Gateway timeout", Err: err}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Something went wrong", Err: err}
}

// Fail translates err into the error envelope. Handlers map domain errors to
// *Error first; anything else becomes a 504 on deadline or a generic 500.
func Fail(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, context.DeadlineExceeded):
		apiErr = GatewayTimeout(err)
	default:
		apiErr = Internal(err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", apiErr.Status,
			"error", err,
		)
	}

	Abort(c, apiErr.Status, apiErr.Message)
}

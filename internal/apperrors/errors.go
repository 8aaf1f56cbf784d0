// Package apperrors defines the domain error taxonomy and its single mapping
// to HTTP status codes. Services return *Error values; handlers hand any
// error to Respond, which is the only place a status code is chosen.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Kind classifies a domain error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
)

// statusByKind is the one mapping table from error kind to transport status.
var statusByKind = map[Kind]int{
	KindInternal:   http.StatusInternalServerError,
	KindNotFound:   http.StatusNotFound,
	KindValidation: http.StatusBadRequest,
	KindConflict:   http.StatusConflict,
	KindForbidden:  http.StatusForbidden,
}

// Error is a kinded domain error. Message is safe to return to clients;
// Err carries the underlying cause for logging only.
type Error struct {
	Kind    Kind
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

// NotFound builds a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a forbidden error.
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is logged server-side and
// never leaks to the client.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind of err. Anything that is not an *Error counts as
// internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to its transport status code.
func HTTPStatus(err error) int {
	return statusByKind[KindOf(err)]
}

// Respond translates err at the HTTP boundary. Internal errors are logged and
// reported to Sentry with a generic body; domain errors return their message.
func Respond(c *gin.Context, err error) {
	status := HTTPStatus(err)

	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		c.JSON(status, gin.H{"error": appErr.Message})
		return
	}

	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Errorf("internal error: %v", err)
	sentry.CaptureException(err)

	c.JSON(status, gin.H{"error": "internal server error"})
}

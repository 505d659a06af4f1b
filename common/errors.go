package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"nutritrack-api/logger"

	"github.com/sirupsen/logrus"
)

// ErrorKind tags an AppError with its place in the error taxonomy. Every kind
// maps to exactly one HTTP status code through statusCode, so translation to
// a response never inspects message strings.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"         // 401: missing/invalid/expired token, failed refresh
	KindForbidden   ErrorKind = "forbidden"    // 403: authenticated but wrong role or not owner
	KindValidation  ErrorKind = "validation"   // 400: malformed input or illegal state transition
	KindConflict    ErrorKind = "conflict"     // 409: duplicate unique resource
	KindNotFound    ErrorKind = "not_found"    // 404
	KindRateLimited ErrorKind = "rate_limited" // 429: carries retry guidance
	KindInternal    ErrorKind = "internal"     // 500
)

func statusCode(kind ErrorKind) int {
	switch kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    statusCode(kind),
		Message: message,
		Err:     err,
	}
}

func NewAuthError(message string, err error) *AppError {
	return newError(KindAuth, message, err)
}

func NewForbiddenError(message string) *AppError {
	return newError(KindForbidden, message, nil)
}

func NewValidationError(message string, details ...string) *AppError {
	e := newError(KindValidation, message, nil)
	e.Details = details
	return e
}

func NewConflictError(message string) *AppError {
	return newError(KindConflict, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return newError(KindNotFound, message, nil)
}

func NewRateLimitError(message string) *AppError {
	return newError(KindRateLimited, message, nil)
}

func NewInternalError(message string, err error) *AppError {
	return newError(KindInternal, message, err)
}

// AsAppError converts any error into an AppError. Errors that are already
// part of the taxonomy pass through unchanged; everything else becomes an
// internal error so storage and crypto failures never leak raw messages.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("An unexpected error occurred", err)
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"error_kind":     e.Kind,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}

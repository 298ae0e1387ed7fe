package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// SelfReference is returned when a user targets themselves, e.g. opening a
// conversation with their own account. Callers treat it as a silent no-op.
func SelfReference(message string) *AppError {
	return &AppError{
		Code:    "SELF_REFERENCE",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// ConversationSetup covers any failure while establishing a conversation,
// including failed compensation. The underlying cause goes into Err for the
// logs; the message stays generic so the UI can just offer a retry.
func ConversationSetup(err error) *AppError {
	return &AppError{
		Code:    "CONVERSATION_SETUP_FAILED",
		Message: "Could not start the conversation, please try again",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func ForbiddenTransition(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN_TRANSITION",
		Message: message,
		Status:  http.StatusForbidden,
	}
}

// VerificationFailed means a write was accepted but the read-back did not
// confirm it. The record is in an unknown state; the user should refresh.
func VerificationFailed(resource string) *AppError {
	return &AppError{
		Code:    "PERSISTENCE_VERIFICATION_FAILED",
		Message: fmt.Sprintf("Could not confirm the %s update, please refresh", resource),
		Status:  http.StatusConflict,
	}
}

func TooManyRequests(message string, waitTime interface{}) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Package apperr carries the failure taxonomy shared by the auth guard,
// the workflow engine and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindConflict     Kind = "conflict"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence_failure"
)

// Reasons used by callers that need to tell two failures of the same kind apart.
const (
	ReasonMissingToken   = "MissingToken"
	ReasonInvalidToken   = "InvalidToken"
	ReasonTokenExpired   = "TokenExpired"
	ReasonUserNotFound   = "UserNotFound"
	ReasonUserInactive   = "UserInactive"
	ReasonProjectNotOpen = "ProjectNotOpen"
	ReasonWrongReviewee  = "WrongReviewee"
)

type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Reason != "" {
		msg = e.Reason + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WithReason(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Unauthorized(reason, message string) *Error {
	return WithReason(KindUnauthorized, reason, message)
}

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func NotFound(message string) *Error { return New(KindNotFound, message) }

func InvalidState(reason, message string) *Error {
	return WithReason(KindInvalidState, reason, message)
}

func Conflict(message string) *Error { return New(KindConflict, message) }

func Validation(message string) *Error { return New(KindValidation, message) }

// Persistence wraps a store error. An error that already carries a kind is returned as is.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindPersistence, Message: "persistence failure", Err: err}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err. Untyped errors count as persistence failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindPersistence
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func ReasonOf(err error) string {
	if e, ok := As(err); ok {
		return e.Reason
	}
	return ""
}

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindConflict:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Package apperr carries a machine-readable category alongside a user-facing
// message so the HTTP layer can choose a status without parsing error text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown         Kind = ""
	KindConfig          Kind = "config"
	KindUpstream        Kind = "upstream"
	KindValidation      Kind = "validation"
	KindIntegrity       Kind = "integrity"
	KindNotFound        Kind = "not_found"
	KindAIModelNotFound Kind = "ai_model_not_found"
	KindAIUnauthorized  Kind = "ai_unauthorized"
	KindAIQuota         Kind = "ai_quota"
	KindAIFailed        Kind = "ai_failed"
)

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

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the category of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing message, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

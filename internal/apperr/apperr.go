// Package apperr classifies failures of social actions so transports can map them to responses.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
	KindSelfAction
	KindUpstream
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	case KindSelfAction:
		return "self_action"
	case KindUpstream:
		return "upstream"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Fields carries per-field messages for validation errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Field is shorthand for a validation error on a single field.
func Field(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func SelfAction(message string) *Error {
	return &Error{Kind: KindSelfAction, Message: message}
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

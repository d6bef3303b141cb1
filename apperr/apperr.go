// Package apperr holds the error kinds returned by services and mapped to
// HTTP statuses by the controllers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error     { return newErr(KindNotFound, format, args...) }
func Conflict(format string, args ...any) *Error     { return newErr(KindConflict, format, args...) }
func Forbidden(format string, args ...any) *Error    { return newErr(KindForbidden, format, args...) }
func Unauthorized(format string, args ...any) *Error { return newErr(KindUnauthorized, format, args...) }
func Invalid(format string, args ...any) *Error      { return newErr(KindInvalid, format, args...) }

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// Package apperr classifies store errors into a small set of kinds that the
// HTTP layer maps onto status codes. Stores declare their sentinel errors with
// New so callers can compare with errors.Is and still ask for the kind.
package apperr

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind is the category of an error.
type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	Duplicate
	Invalid
	Transient
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Duplicate:
		return "duplicate"
	case Invalid:
		return "invalid"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is a sentinel with a kind attached.
type Error struct {
	kind Kind
	msg  string
}

// New returns a sentinel error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Kind returns the error's kind.
func (e *Error) Kind() Kind { return e.kind }

// KindOf walks the chain of err and reports the kind of the first error
// that has one. Driver "no documents"
// maps to NotFound, duplicate key errors to Duplicate, and timeouts or
// network failures to Transient.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var ke interface{ Kind() Kind }
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound
	case mongo.IsDuplicateKeyError(err):
		return Duplicate
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return Transient
	}
	return Internal
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

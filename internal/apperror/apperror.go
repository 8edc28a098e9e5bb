// Package apperror defines the error kinds shared by repositories, services
// and the HTTP layer. Callers test kinds with errors.Is against the sentinel
// values; the HTTP error handler maps them to status codes.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindStoreUnavailable
	KindReferentialIntegrity
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindStoreUnavailable:
		return "store unavailable"
	case KindReferentialIntegrity:
		return "referential integrity violation"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown error"
	}
}

var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrStoreUnavailable     = &Error{Kind: KindStoreUnavailable}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
)

// Error carries a kind, the failing operation and an optional cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of Op and Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Unavailable(op string, err error) error {
	return &Error{Kind: KindStoreUnavailable, Op: op, Err: err}
}

func Integrity(op, format string, args ...any) error {
	return &Error{Kind: KindReferentialIntegrity, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message is the text shown to API clients. Causes of store failures are
// not exposed.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal Server Error"
	}
	if e.Kind == KindStoreUnavailable {
		return "storage is unavailable, try again later"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

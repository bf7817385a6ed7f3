package errprocess

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classify an error for transport mapping
type Kind int

const (
	// KindInternal store unavailable or unexpected failure
	KindInternal Kind = iota
	// KindValidation missing or empty required field
	KindValidation
	// KindNotFound referenced conversation, listing or member absent
	KindNotFound
	// KindForbidden identity is not a participant
	KindForbidden
	// KindAuthentication missing or invalid credential
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Error carry a kind plus the client facing message
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation create a validation error
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound create a not found error
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Forbidden create a forbidden error
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// Authentication create an authentication error
func Authentication(msg string, err error) error {
	return &Error{Kind: KindAuthentication, Msg: msg, Err: err}
}

// Internal wrap a persistence or infrastructure failure
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf return the kind of err, KindInternal for untyped errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsNotFound check err kind
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsForbidden check err kind
func IsForbidden(err error) bool { return err != nil && KindOf(err) == KindForbidden }

// IsValidation check err kind
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// IsAuthentication check err kind
func IsAuthentication(err error) bool { return err != nil && KindOf(err) == KindAuthentication }

// StatusCode map err to an HTTP status
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindAuthentication:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// PublicMessage message safe to hand to clients; internal causes are hidden
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindInternal {
			return "internal server error"
		}
		return e.Msg
	}
	return "internal server error"
}

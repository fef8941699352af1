// Package apperr defines the error vocabulary shared by every layer of the API
// and the single place where errors are turned into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// Error is an operational failure: something the request boundary knows how to
// render. Err keeps the underlying cause for logs and errors.Is/As. Messages of
// server errors are only shown to clients when Public is set.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Public  bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message so a wrapped copy of a
// sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Authorization(msg string) *Error  { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func RateLimited(msg string) *Error    { return &Error{Kind: KindRateLimited, Message: msg} }

// Internal wraps an unexpected failure. The message is logged, never shown.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// ServerError is an internal failure whose message is safe to show.
func ServerError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err, Public: true}
}

// Wrap attaches a cause to a copy of a sentinel error.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: err, Public: sentinel.Public}
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// From classifies any error into the taxonomy. Unknown errors are internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromStatus(fiberErr.Code, fiberErr.Message)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Validation(describeValidation(verrs))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "No document found with that ID", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "Duplicate field value. Please use another value", Err: err}
	}

	return Internal("unexpected error", err)
}

func fromStatus(code int, msg string) *Error {
	switch {
	case code == fiber.StatusNotFound:
		return NotFound(msg)
	case code == fiber.StatusUnauthorized:
		return Authentication(msg)
	case code == fiber.StatusForbidden:
		return Authorization(msg)
	case code == fiber.StatusConflict:
		return Conflict(msg)
	case code == fiber.StatusTooManyRequests:
		return RateLimited(msg)
	case code >= 400 && code < 500:
		return Validation(msg)
	default:
		return Internal(msg, nil)
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "eqfield":
			msgs = append(msgs, fe.Field()+" must match "+fe.Param())
		case "min", "gte":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "max", "lte":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param())
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of: "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return "Invalid input data. " + strings.Join(msgs, ". ")
}

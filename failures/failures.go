// Package failures defines the error kinds surfaced to API callers and maps
// them onto HTTP status codes.
package failures

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error kinds. Concrete errors are marked with one of these so callers can
// test them with errors.Is regardless of wrapping.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrDecode          = errors.New("decode failed")
	ErrEncode          = errors.New("encode failed")
)

// Unauthenticated reports a request without any credential.
func Unauthenticated(msg string) error {
	return errors.Mark(errors.New(msg), ErrUnauthenticated)
}

// Forbidden reports a request whose credential did not match.
func Forbidden(msg string) error {
	return errors.Mark(errors.New(msg), ErrForbidden)
}

// Validation reports a bad parameter or request body.
func Validation(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

// Validationf is Validation with formatting.
func Validationf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// NotFound reports a missing file, object or namespace.
func NotFound(msg string) error {
	return errors.Mark(errors.New(msg), ErrNotFound)
}

// Decode wraps an error raised while reading image bytes.
func Decode(err error) error {
	return errors.Mark(errors.Wrap(err, "could not decode image"), ErrDecode)
}

// Encode wraps an error raised while producing the output image.
func Encode(err error) error {
	return errors.Mark(errors.Wrap(err, "could not encode image"), ErrEncode)
}

// IsPublic reports whether err belongs to one of the caller-facing kinds.
func IsPublic(err error) bool {
	return StatusCode(err) != http.StatusInternalServerError
}

// StatusCode maps an error onto the HTTP status returned to the caller.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDecode), errors.Is(err, ErrEncode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to the caller. Internal errors are masked.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if !IsPublic(err) {
		return "Internal server error."
	}
	return err.Error()
}

// Package apperr defines the error taxonomy shared by services and maps it
// onto HTTP responses at the edge.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error kinds. Services wrap them so handlers can classify with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// ErrBodyTooLarge is returned by body readers once a request exceeds its
// size limit. Decoders must pass it through untouched.
var ErrBodyTooLarge = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")

// Error is a classified error whose message is safe to show to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...interface{}) error {
	return newf(ErrBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newf(ErrUnauthorized, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// HTTP converts err into an *echo.HTTPError. Unclassified errors become a
// generic 500 whose cause is kept as the internal error, so the request
// logger records it while the client only sees "internal error".
func HTTP(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	code := Status(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	}
	msg := http.StatusText(code)
	var ae *Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
	}
	return echo.NewHTTPError(code, msg)
}

// ErrorHandler writes every error as {"message": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := HTTP(err).(*echo.HTTPError)
	if !ok {
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	msg := he.Message
	if s, ok := msg.(string); ok {
		msg = map[string]string{"message": s}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, msg)
}

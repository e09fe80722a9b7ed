package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	h(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Logger(logger)
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogger_RecordsInternalCause(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-123")

	cause := errors.New("connection reset")
	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(cause)
	}

	_ = Logger(logger)(handler)(c)

	out := buf.String()
	if !strings.Contains(out, "connection reset") {
		t.Errorf("expected internal cause in log line, got %s", out)
	}
	if !strings.Contains(out, `"status":500`) || !strings.Contains(out, `"request_id":"req-123"`) {
		t.Errorf("expected status and request id in log line, got %s", out)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/patients/:id")
	c.Set("request_id", "rid-42")

	handler := func(c echo.Context) error {
		panic("nil patient")
	}

	err := Recovery(zerolog.New(&logs))(handler)(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError || httpErr.Message != "internal error" {
		t.Errorf("expected 500 internal error, got %d %v", httpErr.Code, httpErr.Message)
	}
	if httpErr.Internal == nil || !strings.Contains(httpErr.Internal.Error(), "nil patient") {
		t.Errorf("expected the panic value kept as the internal error, got %v", httpErr.Internal)
	}
	for _, want := range []string{`"request_id":"rid-42"`, `"route":"/api/patients/:id"`, `"panic":"nil patient"`, `"stack"`} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected %s in log line %s", want, logs.String())
		}
	}
}

func TestRecovery_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := func(c echo.Context) error {
		_ = c.String(http.StatusOK, "partial")
		panic("after write")
	}

	if err := Recovery(zerolog.Nop())(handler)(c); err != nil {
		t.Errorf("expected no error once the response is committed, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected the written status to stand, got %d", rec.Code)
	}
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler to propagate, got %v", r)
		}
	}()
	_ = Recovery(zerolog.Nop())(func(echo.Context) error { panic(http.ErrAbortHandler) })(c)
}

func TestRecovery_PassesThrough(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Recovery(logger)
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

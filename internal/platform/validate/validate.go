// Package validate checks request payloads with struct tags and reports
// failures as bad-request errors.
package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/crudclinic/clinic/internal/platform/apperr"
)

const (
	DateLayout = "2006-01-02"
	// Times arrive as HH:MM or HH:MM:SS.
	ShortTimeLayout = "15:04"
	TimeLayout      = "15:04:05"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			return IsDate(fl.Field().String())
		})
		_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
			return IsClockTime(fl.Field().String())
		})
	})
	return v
}

// IsDate reports whether s is a calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsClockTime reports whether s is HH:MM or HH:MM:SS.
func IsClockTime(s string) bool {
	if _, err := time.Parse(TimeLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(ShortTimeLayout, s)
	return err == nil
}

// Struct validates s and returns a bad-request error naming every failing
// field, or nil.
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.BadRequest("invalid request: %v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return apperr.BadRequest("%s", strings.Join(msgs, "; "))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "gt", "gte":
		return field + " must be a positive number"
	case "date":
		return field + " must be a date (YYYY-MM-DD)"
	case "clocktime":
		return field + " must be a time (HH:MM or HH:MM:SS)"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	}
	return field + " is invalid"
}

// PathID parses the :id route parameter as a positive integer.
func PathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid id")
	}
	return id, nil
}

// Bind decodes the request body into dst, reporting decode failures as bad
// requests. An oversized body keeps its 413.
func Bind(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		if errors.Is(err, apperr.ErrBodyTooLarge) {
			return apperr.ErrBodyTooLarge
		}
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

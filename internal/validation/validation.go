// Package validation checks request payloads against their struct tags and
// reports failures per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// Result is the outcome of a validation run. Fields maps JSON field names to
// a human-readable reason and is empty when Valid is true.
type Result struct {
	Valid  bool
	Fields map[string]string
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return true
			}
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Check validates v, which must be a struct or a pointer to one.
func Check(v any) Result {
	err := instance().Struct(v)
	if err == nil {
		return Result{Valid: true, Fields: map[string]string{}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Result{Fields: map[string]string{"_": err.Error()}}
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = describe(fe)
	}
	return Result{Fields: fields}
}

// Err converts a failed Result into a validation DomainError, or nil.
func (r Result) Err(message string) error {
	if r.Valid {
		return nil
	}
	details := make(map[string]any, len(r.Fields))
	for field, reason := range r.Fields {
		details[field] = reason
	}
	return apperrors.NewValidationError(message, details)
}

// Struct validates v and returns a DomainError describing every failing field.
func Struct(v any, message string) error {
	return Check(v).Err(message)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

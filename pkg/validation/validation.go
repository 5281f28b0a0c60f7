// Package validation checks request payloads against their struct tags and
// reports every violation rather than stopping at the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns one message per failing field, each prefixed
// with prefix (for example "[2]").
func Struct(prefix string, v any) []string {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s: %v", strings.TrimSuffix(prefix, "."), err)}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, prefix+fieldPath(fe)+": "+describe(fe))
	}
	return out
}

// Slice validates every element of items and concatenates the violations.
func Slice[T any](items []T) []string {
	var out []string
	for i := range items {
		out = append(out, Struct(fmt.Sprintf("[%d].", i), items[i])...)
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}

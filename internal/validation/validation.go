// Package validation configures struct validation shared by the services and
// the offline catalog loader.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bandsetlist/internal/setlist"
)

// New returns a validator that reports JSON field names and understands the
// songduration, genre, eventtype and durationlabel tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("songduration", func(fl validator.FieldLevel) bool {
		_, err := setlist.ParseSeconds(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return setlist.IsGenre(fl.Field().String())
	}))
	must(v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return setlist.IsEventType(fl.Field().String())
	}))
	must(v.RegisterValidation("durationlabel", func(fl validator.FieldLevel) bool {
		_, ok := setlist.TargetMinutes(fl.Field().String())
		return ok
	}))
	return v
}

// Struct validates target and flattens the result into one readable error.
func Struct(v *validator.Validate, target interface{}) error {
	err := v.Struct(target)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("could not validate input: %w", err)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "songduration":
		return fmt.Sprintf("%s %q must be in minutes:seconds format", field, fe.Value())
	case "genre":
		return fmt.Sprintf("%s %q is not a known genre", field, fe.Value())
	case "eventtype":
		return fmt.Sprintf("%s %q is not a known event type", field, fe.Value())
	case "durationlabel":
		return fmt.Sprintf("%s %q is not a known duration", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

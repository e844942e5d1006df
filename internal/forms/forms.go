// Package forms validates submitted HTML forms. Parsing never touches the
// database; checks that need stored state belong to the caller.
package forms

import (
	"errors"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MSG_REQUIRED = "This field is required."
	MSG_NUMBER   = "Please enter a number."
	MSG_POSITIVE = "Please enter a number greater than zero."
	MSG_TOO_LONG = "This field is too long."
	MSG_INVALID  = "This value is not valid."
)

// FieldErrors maps form field names to a message for the user.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// AsFieldErrors extracts FieldErrors from err, if any.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func check(input any) FieldErrors {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MSG_REQUIRED
	case "number":
		return MSG_NUMBER
	case "max":
		return MSG_TOO_LONG
	default:
		return MSG_INVALID
	}
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}

func checkbox(values url.Values, key string) bool {
	switch strings.ToLower(value(values, key)) {
	case "y", "yes", "on", "true", "1":
		return true
	default:
		return false
	}
}

// atoi converts a string that already passed the number rule. Values that
// do not fit an int are reported as not being numbers.
func atoi(errs FieldErrors, field, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		errs[field] = MSG_NUMBER
		return 0
	}
	return n
}

func result[T any](parsed T, errs FieldErrors) (T, error) {
	if len(errs) > 0 {
		var zero T
		return zero, errs
	}
	return parsed, nil
}

package util

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/SeakMengs/EventHub/pkg/eventcert"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ApiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const unknownField = "Unknown"

// %[1]v is the field name, %[2]v the tag parameter
var tagMessages = map[string]string{
	"required":    "%[1]v is required",
	"email":       "Invalid email",
	"numeric":     "%[1]v must be numeric",
	"uuid":        "%[1]v must be a valid id",
	"min":         "%[1]v must be at least %[2]v characters",
	"max":         "%[1]v must be at most %[2]v characters",
	"gt":          "%[1]v must be greater than %[2]v",
	"gte":         "%[1]v must be greater than or equal to %[2]v",
	"lte":         "%[1]v must be less than or equal to %[2]v",
	"oneof":       "%[1]v must be one of [%[2]v]",
	"hexcolor":    "%[1]v must be a hex color such as #000000",
	"eqfield":     "%[1]v must be equal to %[2]v",
	"cmin":        "%[1]v must be at least %[2]v non-whitespace characters",
	"cmax":        "%[1]v must be at most %[2]v non-whitespace characters",
	"strNotEmpty": "%[1]v must not be empty or contain only whitespace characters",
}

func msgForTag(fe validator.FieldError, field string) string {
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		return fe.Error()
	}
	switch {
	case strings.Contains(format, "%[2]v"):
		return fmt.Sprintf(format, field, fe.Param())
	case strings.Contains(format, "%[1]v"):
		return fmt.Sprintf(format, field)
	}
	return format
}

/*
GenerateErrorMessages turns err into the errors list of the response envelope.

Validator errors produce one entry per failed field, a domain ValidationError produces its own
field and message, anything else a single entry.

Optional parameters:
  - map[string]string renames validator fields, e.g. {"Name": "name"}
  - string is the field reported for errors that do not carry one
*/
func GenerateErrorMessages(err error, optionalParams ...any) []ApiError {
	var (
		rename    map[string]string
		fieldName = unknownField
	)
	for _, param := range optionalParams {
		switch v := param.(type) {
		case map[string]string:
			rename = v
		case string:
			fieldName = v
		}
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]ApiError, len(ve))
		for i, fe := range ve {
			field := fe.Field()
			if renamed, ok := rename[field]; ok {
				field = renamed
			}
			out[i] = ApiError{Field: field, Message: msgForTag(fe, field)}
		}
		return out
	}

	var vErr *eventcert.ValidationError
	if errors.As(err, &vErr) {
		return []ApiError{{Field: vErr.Field, Message: vErr.Message}}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, eventcert.ErrNotFound) {
		return []ApiError{{Field: fieldName, Message: "Record not found"}}
	}

	return []ApiError{{Field: fieldName, Message: err.Error()}}
}

// GenerateErrorMessagesAsString returns the first message GenerateErrorMessages would produce.
func GenerateErrorMessagesAsString(err error, rename map[string]string) string {
	if errs := GenerateErrorMessages(err, rename); len(errs) > 0 {
		return errs[0].Message
	}
	return err.Error()
}

// Usage: `binding:"strNotEmpty"`
func StrNotEmpty(fl validator.FieldLevel) bool {
	field := fl.Field()
	return field.Kind() == reflect.String && strings.TrimSpace(field.String()) != ""
}

// trimmedLength compares the rune count of a trimmed string field against the tag parameter.
func trimmedLength(fl validator.FieldLevel, ok func(length, limit int) bool) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return ok(utf8.RuneCountInString(strings.TrimSpace(field.String())), limit)
}

// Usage: `binding:"cmin=3"`
func CustomMin(fl validator.FieldLevel) bool {
	return trimmedLength(fl, func(length, limit int) bool { return length >= limit })
}

// Usage: `binding:"cmax=100"`
func CustomMax(fl validator.FieldLevel) bool {
	return trimmedLength(fl, func(length, limit int) bool { return length <= limit })
}

// RegisterCustomValidations adds strNotEmpty, cmin and cmax. Field errors are reported under
// their json name when the struct declares one.
func RegisterCustomValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"strNotEmpty": StrNotEmpty,
		"cmin":        CustomMin,
		"cmax":        CustomMax,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps an API field name to its validation messages
type FieldErrors map[string][]string

// Add appends a message for field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Any reports whether any field has an error
func (f FieldErrors) Any() bool {
	return len(f) > 0
}

var registerOnce sync.Once

// RegisterValidators configures gin's validator to report json field
// names and adds the custom rules used by the models.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return IsClock(fl.Field().String())
		})
	})
}

// IsClock reports whether s is a 24 hour HH:MM time
func IsClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}

// TranslateBindError turns an error from ShouldBind into field errors.
// The boolean is false when err does not describe a specific field.
func TranslateBindError(err error) (FieldErrors, bool) {
	fields := FieldErrors{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fieldPath(fe.Namespace())
			fields.Add(field, validationMessage(field, fe))
		}
		return fields, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields.Add(typeErr.Field, fmt.Sprintf("The %s field must be of type %s.", typeErr.Field, typeErr.Type.String()))
		return fields, true
	}

	return fields, false
}

// fieldPath drops the root struct name from a validator namespace,
// e.g. "Billing.line_items[0].description" -> "line_items[0].description".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid. Allowed values: %s.", field, strings.ReplaceAll(fe.Param(), "'", ""))
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "len":
		return fmt.Sprintf("The %s field must be %s characters.", field, fe.Param())
	case "clock":
		return fmt.Sprintf("The %s field must match the format H:i.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

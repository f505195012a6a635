package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BindError turns a failed ShouldBindJSON into a 400 with a readable message.
// Validation failures list every offending field; malformed JSON reports the
// decoder error.
func BindError(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &Error{Status: http.StatusBadRequest, Message: strings.Join(msgs, "; "), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if isString(fe) {
			return field + " must be at least " + fe.Param() + " characters"
		}
		return field + " must be at least " + fe.Param()
	case "max":
		if isString(fe) {
			return field + " must be at most " + fe.Param() + " characters"
		}
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "datetime":
		return field + " must match the format " + fe.Param()
	case "len":
		return field + " must be " + fe.Param() + " characters long"
	default:
		return field + " is invalid"
	}
}

func isString(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}

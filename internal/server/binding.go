package server

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// fieldErrors maps a form field name to its messages, in the order found.
type fieldErrors map[string][]string

func (e fieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// resolveFieldErrors turns validator failures into per-field messages keyed
// by form field name. Errors that are not validation failures are returned.
func resolveFieldErrors(err error, names map[string]string) (fieldErrors, error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	errs := fieldErrors{}
	for _, verr := range verrs {
		name, ok := names[verr.StructField()]
		if !ok {
			name = verr.Field()
		}
		errs.add(name, fieldMessage(verr))
	}
	return errs, nil
}

func fieldMessage(verr validator.FieldError) string {
	switch verr.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "textmax":
		value := normalizeText(fmt.Sprint(verr.Value()))
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", verr.Param(), utf8.RuneCountInString(value))
	case "pubdate":
		return "Enter a valid date/time."
	default:
		return "Enter a valid value."
	}
}

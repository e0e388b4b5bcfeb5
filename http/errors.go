package http

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sagarc03/sharelink"
)

func badRequest(message string) error {
	return &sharelink.RequestError{Kind: sharelink.ErrInvalidRequest, Message: message}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator failures into a bad request naming the
// missing fields first, then the invalid ones.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return badRequest("invalid request parameters")
	}

	var missing, invalid []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return badRequest("missing parameters: " + strings.Join(missing, ", "))
	}

	sort.Strings(invalid)
	return badRequest("invalid request parameters: " + strings.Join(invalid, ", "))
}

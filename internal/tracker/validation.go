package tracker

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"price-tracker/internal/apperrors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report json names so messages read "userId is required"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// AddRequest is the payload of an add or force add
type AddRequest struct {
	UserID string `json:"userId" validate:"required"`
	URL    string `json:"url" validate:"required,url"`
}

// Validate checks the request and returns an input validation error naming the first bad field
func (r AddRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return apperrors.InputValidation(validationMessage(validationErrs[0]), err)
	}
	return apperrors.InputValidation("invalid request", err)
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "url":
		return e.Field() + " must be a valid URL"
	default:
		return e.Field() + " is invalid"
	}
}

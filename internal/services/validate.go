package services

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"farmdirect/internal/apperr"
	"farmdirect/internal/validation"
)

// invalidInput turns the first validator failure into a validation error.
func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("invalid_input", err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	code := "invalid_" + strings.ToLower(field)
	switch fe.Tag() {
	case "required":
		return apperr.Validation("missing_fields", fmt.Sprintf("%s is required", field))
	case "min":
		return apperr.Validation(code, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return apperr.Validation(code, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case validation.TagMobile:
		return apperr.Validation("invalid_phone", "Please enter a valid 10-digit mobile number")
	case "email":
		return apperr.Validation("invalid_email", "Please enter a valid email address")
	case validation.TagContactPhone:
		return apperr.Validation("invalid_phone", "Please enter a valid phone number")
	}
	return apperr.Validation(code, fmt.Sprintf("%s is invalid", field))
}

func hasTag(verrs validator.ValidationErrors, tag string) bool {
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   *validator.Validate
	emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("loose_email", validateLooseEmail)
}

// ValidationError represents validation error details
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidateStruct validates a struct and returns every failed field.
func ValidateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: getErrorMessage(fe),
		})
	}
	return out
}

// ValidateEmail applies the minimal something@something.tld pattern.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func validateLooseEmail(fl validator.FieldLevel) bool {
	return ValidateEmail(fl.Field().String())
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long"
	case "loose_email", "email":
		return "Invalid email address"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"breadit/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("votetype", func(fl validator.FieldLevel) bool {
		return models.VoteType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("id", func(fl validator.FieldLevel) bool {
		return models.IsID(fl.Field().String())
	})
	_ = v.RegisterValidation("richtext", func(fl validator.FieldLevel) bool {
		doc, ok := fl.Field().Interface().(models.RichText)
		return ok && doc.Present()
	})
	return v
}

// checkInput validates s and converts failures to ErrInvalidInput.
func checkInput(op string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Op: op, Kind: ErrInvalidInput, Err: err}
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describe(fe))
	}
	return newError(op, ErrInvalidInput, strings.Join(details, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s may contain only letters and digits", field)
	case "votetype":
		return fmt.Sprintf("%s must be UP or DOWN", field)
	case "id":
		return fmt.Sprintf("%s is not a valid identifier", field)
	case "richtext":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be an email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func requireViewer(op, viewerID string) error {
	if strings.TrimSpace(viewerID) == "" {
		return newError(op, ErrUnauthenticated, "sign in required")
	}
	return nil
}

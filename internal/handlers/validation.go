package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/portfolio-site/portfolio-api/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var result []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			result = append(result, ValidationError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return result
}

// ParseFormErrors converts validator errors on a contact form into
// per-field messages. The first failure of each field wins.
func ParseFormErrors(err error) models.FormErrors {
	var formErrors models.FormErrors

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return formErrors
	}

	for _, fieldError := range validationErrors {
		field, ok := models.ParseContactField(fieldError.Field())
		if !ok {
			continue
		}
		formErrors.Set(field, getErrorMessage(fieldError))
	}

	return formErrors
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "url":
		return "Invalid URL format"
	default:
		return fe.Field() + " is invalid"
	}
}

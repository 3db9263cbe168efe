package handlers

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormErrors(t *testing.T) {
	req := models.ContactFormRequest{ContactForm: models.ContactForm{Email: "nope"}}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	formErrors := ParseFormErrors(err)
	assert.Equal(t, []models.ContactField{models.FieldName, models.FieldEmail, models.FieldMessage}, formErrors.Fields())

	msg, _ := formErrors.Get(models.FieldEmail)
	assert.Equal(t, "Invalid email format", msg)
	msg, _ = formErrors.Get(models.FieldMessage)
	assert.Equal(t, "Message is required", msg)
}

func TestParseFormErrors_ValidForm(t *testing.T) {
	req := models.ContactFormRequest{ContactForm: models.ContactForm{
		Name: "Ada", Email: "ada@example.dev", Message: "Hi",
	}}
	assert.NoError(t, binding.Validator.ValidateStruct(&req))
}

func TestParseFormErrors_NotValidationError(t *testing.T) {
	assert.True(t, ParseFormErrors(errors.New("unexpected EOF")).IsEmpty())
}

func TestParseValidationErrors(t *testing.T) {
	req := models.SaveProjectRequest{Title: "T", GithubURL: "nope"}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	result := ParseValidationErrors(err)
	assert.Contains(t, result, ValidationError{Field: "Description", Message: "Description is required"})
	assert.Contains(t, result, ValidationError{Field: "GithubURL", Message: "Invalid URL format"})
}

package models_test

import (
	"encoding/json"
	"testing"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactForm_JSONRoundTrip(t *testing.T) {
	form := models.ContactForm{
		Name:    "Ada Lovelace",
		Email:   "ada@example.dev",
		Message: "Line one\nLine two, with \"quotes\" and ünïcode",
	}

	data, err := json.Marshal(form)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada Lovelace","email":"ada@example.dev","message":"Line one\nLine two, with \"quotes\" and ünïcode"}`, string(data))

	var decoded models.ContactForm
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, form, decoded)
}

func TestParseContactField(t *testing.T) {
	tests := []struct {
		input    string
		expected models.ContactField
		ok       bool
	}{
		{input: "name", expected: models.FieldName, ok: true},
		{input: "Email", expected: models.FieldEmail, ok: true},
		{input: " MESSAGE ", expected: models.FieldMessage, ok: true},
		{input: "phone", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			field, ok := models.ParseContactField(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, field)
		})
	}
}

func TestFormErrors(t *testing.T) {
	var errs models.FormErrors
	assert.True(t, errs.IsEmpty())
	assert.Empty(t, errs.Fields())

	assert.True(t, errs.Set(models.FieldMessage, "Message is required"))
	assert.True(t, errs.Set(models.FieldName, "Name is required"))

	// First failure wins
	assert.False(t, errs.Set(models.FieldName, "Name is too long"))
	assert.False(t, errs.Set(models.ContactField("phone"), "nope"))

	msg, ok := errs.Get(models.FieldName)
	assert.True(t, ok)
	assert.Equal(t, "Name is required", msg)

	_, ok = errs.Get(models.FieldEmail)
	assert.False(t, ok)

	assert.False(t, errs.IsEmpty())
	assert.Equal(t, []models.ContactField{models.FieldName, models.FieldMessage}, errs.Fields())
}

func TestFormErrors_JSONOmitsValidFields(t *testing.T) {
	var errs models.FormErrors
	errs.Set(models.FieldEmail, "Invalid email format")

	data, err := json.Marshal(errs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"Invalid email format"}`, string(data))

	data, err = json.Marshal(models.FormErrors{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestNewFormState(t *testing.T) {
	state := models.NewFormState()

	assert.Equal(t, models.FormState{}, state)
	assert.NoError(t, state.Validate())

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSubmitting":false,"isSubmitted":false,"hasError":false}`, string(data))
}

func TestFormState_Validate(t *testing.T) {
	msg := "boom"

	tests := []struct {
		name    string
		state   models.FormState
		wantErr bool
	}{
		{name: "initial", state: models.FormState{}},
		{name: "submitting", state: models.FormState{IsSubmitting: true}},
		{name: "submitted", state: models.FormState{IsSubmitted: true}},
		{name: "failed", state: models.FormState{HasError: true, ErrorMessage: &msg}},
		{name: "submitting and submitted", state: models.FormState{IsSubmitting: true, IsSubmitted: true}, wantErr: true},
		{name: "error without message", state: models.FormState{HasError: true}, wantErr: true},
		{name: "message without error", state: models.FormState{ErrorMessage: &msg}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidFormState)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormState_SuccessfulSubmission(t *testing.T) {
	state := models.NewFormState()

	require.NoError(t, state.BeginSubmit())
	assert.Equal(t, models.FormState{IsSubmitting: true}, state)
	assert.ErrorIs(t, state.BeginSubmit(), models.ErrSubmissionInFlight)

	require.NoError(t, state.CompleteSubmit())
	assert.Equal(t, models.FormState{IsSubmitted: true}, state)
	assert.NoError(t, state.Validate())

	assert.ErrorIs(t, state.CompleteSubmit(), models.ErrNoSubmissionInFlight)
}

func TestFormState_FailedSubmission(t *testing.T) {
	state := models.NewFormState()
	require.NoError(t, state.BeginSubmit())

	require.NoError(t, state.FailSubmit("Network error"))
	assert.False(t, state.IsSubmitting)
	assert.True(t, state.HasError)
	require.NotNil(t, state.ErrorMessage)
	assert.Equal(t, "Network error", *state.ErrorMessage)
	assert.NoError(t, state.Validate())

	assert.ErrorIs(t, state.FailSubmit("again"), models.ErrNoSubmissionInFlight)

	// Retrying clears the previous error
	require.NoError(t, state.BeginSubmit())
	assert.Equal(t, models.FormState{IsSubmitting: true}, state)

	require.NoError(t, state.FailSubmit("   "))
	assert.Equal(t, models.DefaultSubmissionError, *state.ErrorMessage)
}

func TestFormState_Reset(t *testing.T) {
	state := models.NewFormState()
	require.NoError(t, state.BeginSubmit())
	require.NoError(t, state.CompleteSubmit())

	state.Reset()
	assert.Equal(t, models.NewFormState(), state)
}

func TestFormState_TransitionsKeepInvariants(t *testing.T) {
	state := models.NewFormState()
	steps := []func() error{
		state.BeginSubmit,
		func() error { return state.FailSubmit("x") },
		state.BeginSubmit,
		state.CompleteSubmit,
		state.BeginSubmit,
		state.BeginSubmit, // rejected
		state.CompleteSubmit,
	}

	for i, step := range steps {
		_ = step() //nolint:errcheck // rejected transitions must leave a valid state too
		assert.NoError(t, state.Validate(), "step %d", i)
		assert.False(t, state.IsSubmitting && state.IsSubmitted, "step %d", i)
	}
}

package models

import (
	"errors"
	"strings"
	"time"
)

// ContactForm represents a contact form submission
type ContactForm struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// ContactFormRequest is the body of POST /api/v1/contact.
// RecaptchaToken is only checked when a captcha secret is configured.
type ContactFormRequest struct {
	ContactForm
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// ContactField names one field of ContactForm
type ContactField string

const (
	FieldName    ContactField = "name"
	FieldEmail   ContactField = "email"
	FieldMessage ContactField = "message"
)

// ContactFields lists the form fields in display order
var ContactFields = []ContactField{FieldName, FieldEmail, FieldMessage}

// ParseContactField maps a JSON or struct field name to a ContactField
func ParseContactField(name string) (ContactField, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "name":
		return FieldName, true
	case "email":
		return FieldEmail, true
	case "message":
		return FieldMessage, true
	}
	return "", false
}

// FormErrors holds at most one human-readable error per contact form field.
// A nil field means that field is currently valid.
type FormErrors struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Message *string `json:"message,omitempty"`
}

func (e *FormErrors) slot(field ContactField) **string {
	switch field {
	case FieldName:
		return &e.Name
	case FieldEmail:
		return &e.Email
	case FieldMessage:
		return &e.Message
	}
	return nil
}

// Set records msg for field unless the field already has an error.
// Returns false when the field is unknown or already set.
func (e *FormErrors) Set(field ContactField, msg string) bool {
	p := e.slot(field)
	if p == nil || *p != nil {
		return false
	}
	*p = &msg
	return true
}

// Get returns the error recorded for field, if any
func (e FormErrors) Get(field ContactField) (string, bool) {
	p := e.slot(field)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// IsEmpty reports whether no field has an error
func (e FormErrors) IsEmpty() bool {
	return e.Name == nil && e.Email == nil && e.Message == nil
}

// Fields returns the fields that currently have errors, in display order
func (e FormErrors) Fields() []ContactField {
	var fields []ContactField
	for _, f := range ContactFields {
		if _, ok := e.Get(f); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// DefaultSubmissionError is used when a submission fails without a message
const DefaultSubmissionError = "Failed to send message. Please try again later."

var (
	ErrSubmissionInFlight   = errors.New("submission already in progress")
	ErrNoSubmissionInFlight = errors.New("no submission in progress")
	ErrInvalidFormState     = errors.New("invalid form state")
)

// FormState describes the progress and outcome of a contact form submission.
//
// IsSubmitting and IsSubmitted are never both true, and HasError is true
// exactly when ErrorMessage is set. Use the transition methods to keep it so.
type FormState struct {
	IsSubmitting bool    `json:"isSubmitting"`
	IsSubmitted  bool    `json:"isSubmitted"`
	HasError     bool    `json:"hasError"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
}

// NewFormState returns the initial state of a freshly displayed form
func NewFormState() FormState {
	return FormState{}
}

// Validate checks the state invariants
func (s FormState) Validate() error {
	if s.IsSubmitting && s.IsSubmitted {
		return errors.Join(ErrInvalidFormState, errors.New("submitting and submitted at the same time"))
	}
	if s.HasError && s.ErrorMessage == nil {
		return errors.Join(ErrInvalidFormState, errors.New("error flag set without a message"))
	}
	if !s.HasError && s.ErrorMessage != nil {
		return errors.Join(ErrInvalidFormState, errors.New("error message set without the error flag"))
	}
	return nil
}

// BeginSubmit marks a submission as outstanding. Previous outcomes are cleared.
func (s *FormState) BeginSubmit() error {
	if s.IsSubmitting {
		return ErrSubmissionInFlight
	}
	*s = FormState{IsSubmitting: true}
	return nil
}

// CompleteSubmit marks the outstanding submission as successful
func (s *FormState) CompleteSubmit() error {
	if !s.IsSubmitting {
		return ErrNoSubmissionInFlight
	}
	*s = FormState{IsSubmitted: true}
	return nil
}

// FailSubmit marks the outstanding submission as failed with msg
func (s *FormState) FailSubmit(msg string) error {
	if !s.IsSubmitting {
		return ErrNoSubmissionInFlight
	}
	if strings.TrimSpace(msg) == "" {
		msg = DefaultSubmissionError
	}
	*s = FormState{HasError: true, ErrorMessage: &msg}
	return nil
}

// Reset returns the state to its initial value
func (s *FormState) Reset() {
	*s = NewFormState()
}

// ContactResponse is returned by the contact endpoint
type ContactResponse struct {
	Success bool        `json:"success"`
	ID      string      `json:"id,omitempty"`
	State   FormState   `json:"state"`
	Errors  *FormErrors `json:"errors,omitempty"`
}

// ContactMessage is a stored contact form submission
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactMessagesResponse lists stored contact messages for the admin API
type ContactMessagesResponse struct {
	Messages []*ContactMessage `json:"messages"`
	Total    int               `json:"total"`
}

// SubmissionMeta carries request details recorded alongside a submission
type SubmissionMeta struct {
	ClientIP  string
	UserAgent string
}

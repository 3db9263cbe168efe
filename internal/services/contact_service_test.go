package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/internal/services"
	"github.com/portfolio-site/portfolio-api/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func contactRequest() *models.ContactFormRequest {
	return &models.ContactFormRequest{
		ContactForm: models.ContactForm{
			Name:    "Ada Lovelace",
			Email:   "ada@example.dev",
			Message: "I'd like to talk about a project.",
		},
		RecaptchaToken: "token",
	}
}

var testMeta = models.SubmissionMeta{ClientIP: "203.0.113.7", UserAgent: "test-agent"}

func TestContactService_SubmitContactForm(t *testing.T) {
	store := new(MockContactMessageStore)
	captcha := new(MockCaptchaVerifier)
	notifier := new(MockEventNotifier)
	ownerMailer := new(MockOwnerMailer)
	service := services.NewContactService(store, captcha, notifier, ownerMailer)
	ctx := context.Background()

	captcha.On("Verify", ctx, "token", "203.0.113.7").Return(nil).Once()
	store.On("Create", ctx, mock.MatchedBy(func(m *models.ContactMessage) bool {
		return m.ID != "" && m.Name == "Ada Lovelace" && m.Email == "ada@example.dev" &&
			m.ClientIP == "203.0.113.7" && m.UserAgent == "test-agent"
	})).Return(nil).Once()
	notifier.On("SendAsync", services.ContactCreatedEvent, mock.Anything).Return().Once()

	mailed := make(chan mailer.ContactNotification, 1)
	ownerMailer.On("Enabled").Return(true)
	ownerMailer.On("NotifyContact", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { mailed <- args.Get(1).(mailer.ContactNotification) }).
		Return(nil).Once()

	resp, err := service.SubmitContactForm(ctx, contactRequest(), testMeta)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
	assert.Nil(t, resp.Errors)
	assert.Equal(t, models.FormState{IsSubmitted: true}, resp.State)
	assert.NoError(t, resp.State.Validate())

	select {
	case n := <-mailed:
		assert.Equal(t, resp.ID, n.ID)
		assert.Equal(t, "ada@example.dev", n.Email)
	case <-time.After(time.Second):
		t.Fatal("owner notification was not sent")
	}

	store.AssertExpectations(t)
	captcha.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestContactService_SubmitContactForm_CaptchaError(t *testing.T) {
	store := new(MockContactMessageStore)
	captcha := new(MockCaptchaVerifier)
	service := services.NewContactService(store, captcha, nil, nil)
	ctx := context.Background()

	captcha.On("Verify", ctx, "token", "203.0.113.7").Return(errors.New("rejected")).Once()

	resp, err := service.SubmitContactForm(ctx, contactRequest(), testMeta)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.False(t, resp.Success)
	assert.Empty(t, resp.ID)
	assert.True(t, resp.State.HasError)
	assert.False(t, resp.State.IsSubmitting)
	require.NotNil(t, resp.State.ErrorMessage)
	assert.Equal(t, services.CaptchaFailedMessage, *resp.State.ErrorMessage)

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContactService_SubmitContactForm_CreateError(t *testing.T) {
	store := new(MockContactMessageStore)
	notifier := new(MockEventNotifier)
	service := services.NewContactService(store, nil, notifier, nil)
	ctx := context.Background()

	store.On("Create", ctx, mock.Anything).Return(errors.New("database unavailable"))

	resp, err := service.SubmitContactForm(ctx, contactRequest(), testMeta)
	require.Error(t, err)
	require.NotNil(t, resp)

	assert.False(t, resp.Success)
	assert.True(t, resp.State.HasError)
	assert.False(t, resp.State.IsSubmitted)
	require.NotNil(t, resp.State.ErrorMessage)
	assert.Equal(t, models.DefaultSubmissionError, *resp.State.ErrorMessage)
	assert.NoError(t, resp.State.Validate())

	notifier.AssertNotCalled(t, "SendAsync", mock.Anything, mock.Anything)
}

func TestContactService_SubmitContactForm_MailerDisabled(t *testing.T) {
	store := new(MockContactMessageStore)
	ownerMailer := new(MockOwnerMailer)
	service := services.NewContactService(store, nil, nil, ownerMailer)
	ctx := context.Background()

	store.On("Create", ctx, mock.Anything).Return(nil).Once()
	ownerMailer.On("Enabled").Return(false)

	resp, err := service.SubmitContactForm(ctx, contactRequest(), testMeta)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	ownerMailer.AssertNotCalled(t, "NotifyContact", mock.Anything, mock.Anything)
}

func TestContactService_ListMessages(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{name: "default", limit: 0, expectedLimit: services.DefaultMessagesLimit},
		{name: "custom", limit: 10, expectedLimit: 10},
		{name: "clamped", limit: 10000, expectedLimit: services.MaxMessagesLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockContactMessageStore)
			service := services.NewContactService(store, nil, nil, nil)
			ctx := context.Background()

			messages := []*models.ContactMessage{{ID: "m1"}}
			store.On("List", ctx, tt.expectedLimit).Return(messages, 7, nil).Once()

			resp, err := service.ListMessages(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, 7, resp.Total)
			assert.Equal(t, messages, resp.Messages)
			store.AssertExpectations(t)
		})
	}
}

func TestContactService_ListMessages_Error(t *testing.T) {
	store := new(MockContactMessageStore)
	service := services.NewContactService(store, nil, nil, nil)
	ctx := context.Background()

	store.On("List", ctx, services.DefaultMessagesLimit).Return(nil, 0, errors.New("boom")).Once()

	resp, err := service.ListMessages(ctx, 0)
	assert.Error(t, err)
	assert.Nil(t, resp)
}

package services_test

import (
	"context"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock implementation of ProjectRepositoryInterface
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) GetAll(ctx context.Context, forceRefresh bool) ([]*models.Project, error) {
	args := m.Called(ctx, forceRefresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project, position *int) error {
	return m.Called(ctx, project, position).Error(0)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *models.Project, position *int) (bool, error) {
	args := m.Called(ctx, project, position)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProjectRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	return m.Called(ctx, id, imageURL).Error(0)
}

func (m *MockProjectRepository) IsReady() bool {
	return m.Called().Bool(0)
}

// MockContactMessageStore is a mock implementation of ContactMessageStore
type MockContactMessageStore struct {
	mock.Mock
}

func (m *MockContactMessageStore) Create(ctx context.Context, msg *models.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockContactMessageStore) List(ctx context.Context, limit int) ([]*models.ContactMessage, int, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.ContactMessage), args.Int(1), args.Error(2)
}

// MockCaptchaVerifier is a mock implementation of CaptchaVerifier
type MockCaptchaVerifier struct {
	mock.Mock
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	return m.Called(ctx, token, remoteIP).Error(0)
}

// MockEventNotifier records webhook events
type MockEventNotifier struct {
	mock.Mock
}

func (m *MockEventNotifier) SendAsync(event string, payload any) {
	m.Called(event, payload)
}

// MockOwnerMailer is a mock implementation of OwnerMailer
type MockOwnerMailer struct {
	mock.Mock
}

func (m *MockOwnerMailer) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockOwnerMailer) NotifyContact(ctx context.Context, n mailer.ContactNotification) error {
	return m.Called(ctx, n).Error(0)
}

// MockImageStorage is a mock implementation of ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) UploadImage(ctx context.Context, imageData, key, contentType string) (string, error) {
	args := m.Called(ctx, imageData, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) DeleteImage(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockImageStorage) KeyFromURL(imageURL string) (string, bool) {
	args := m.Called(imageURL)
	return args.String(0), args.Bool(1)
}

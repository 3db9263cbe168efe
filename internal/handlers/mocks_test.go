package handlers

import (
	"context"

	"github.com/portfolio-site/portfolio-api/internal/models"
	"github.com/portfolio-site/portfolio-api/pkg/jwt"
	"github.com/stretchr/testify/mock"
)

type mockContactService struct {
	mock.Mock
}

func (m *mockContactService) SubmitContactForm(ctx context.Context, req *models.ContactFormRequest, meta models.SubmissionMeta) (*models.ContactResponse, error) {
	args := m.Called(ctx, req, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactResponse), args.Error(1)
}

func (m *mockContactService) ListMessages(ctx context.Context, limit int) (*models.ContactMessagesResponse, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessagesResponse), args.Error(1)
}

type mockProjectService struct {
	mock.Mock
}

func (m *mockProjectService) GetAll(ctx context.Context, forceRefresh bool) (*models.ProjectsResponse, error) {
	args := m.Called(ctx, forceRefresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectsResponse), args.Error(1)
}

func (m *mockProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectService) Create(ctx context.Context, req *models.SaveProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *mockProjectService) Save(ctx context.Context, id string, req *models.SaveProjectRequest) (*models.Project, bool, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Project), args.Bool(1), args.Error(2)
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProjectService) UploadImage(ctx context.Context, id string, req *models.UploadProjectImageRequest) (string, error) {
	args := m.Called(ctx, id, req)
	return args.String(0), args.Error(1)
}

type mockAdminAuthService struct {
	mock.Mock
}

func (m *mockAdminAuthService) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *mockAdminAuthService) Login(ctx context.Context, password string) (*models.AdminSession, string, error) {
	args := m.Called(ctx, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.AdminSession), args.String(1), args.Error(2)
}

func (m *mockAdminAuthService) Logout(ctx context.Context, token string) {
	m.Called(ctx, token)
}

func (m *mockAdminAuthService) GetSessionTTL() int {
	return m.Called().Int(0)
}

func (m *mockAdminAuthService) GetCookieDomain() string {
	return m.Called().String(0)
}

func (m *mockAdminAuthService) GetCookieSecure() bool {
	return m.Called().Bool(0)
}

func (m *mockAdminAuthService) GetTokenManager() *jwt.TokenManager {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*jwt.TokenManager)
}

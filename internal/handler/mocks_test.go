package handler_test

import (
	"context"

	"dataroom-server/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, actorID string, input model.NewDocument) (*model.Document, error) {
	args := m.Called(ctx, actorID, input)
	if document, ok := args.Get(0).(*model.Document); ok {
		return document, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, actorID, id string) (*model.Document, error) {
	args := m.Called(ctx, actorID, id)
	if document, ok := args.Get(0).(*model.Document); ok {
		return document, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, actorID string, filter model.DocumentFilter) ([]model.Document, error) {
	args := m.Called(ctx, actorID, filter)
	if documents, ok := args.Get(0).([]model.Document); ok {
		return documents, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) ListSharedDocuments(ctx context.Context, actorID string) ([]model.Document, error) {
	args := m.Called(ctx, actorID)
	if documents, ok := args.Get(0).([]model.Document); ok {
		return documents, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) UpdateDocument(ctx context.Context, actorID, id string, patch model.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, actorID, id, patch)
	if document, ok := args.Get(0).(*model.Document); ok {
		return document, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) UploadVersion(ctx context.Context, actorID, id string, file model.FileUpload) (*model.DocumentVersion, error) {
	args := m.Called(ctx, actorID, id, file)
	if version, ok := args.Get(0).(*model.DocumentVersion); ok {
		return version, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) ListVersions(ctx context.Context, actorID, id string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, actorID, id)
	if versions, ok := args.Get(0).([]model.DocumentVersion); ok {
		return versions, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, actorID, id string) (*model.DownloadResult, error) {
	args := m.Called(ctx, actorID, id)
	if result, ok := args.Get(0).(*model.DownloadResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) CreateFolder(ctx context.Context, actorID string, input model.NewFolder) (*model.Folder, error) {
	args := m.Called(ctx, actorID, input)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) GetFolder(ctx context.Context, actorID, id string) (*model.Folder, error) {
	args := m.Called(ctx, actorID, id)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) ListFolders(ctx context.Context, actorID string, parentID *string) ([]model.Folder, error) {
	args := m.Called(ctx, actorID, parentID)
	folders, _ := args.Get(0).([]model.Folder)
	return folders, args.Error(1)
}

func (m *MockFolderService) ListSharedFolders(ctx context.Context, actorID string) ([]model.Folder, error) {
	args := m.Called(ctx, actorID)
	folders, _ := args.Get(0).([]model.Folder)
	return folders, args.Error(1)
}

func (m *MockFolderService) UpdateFolder(ctx context.Context, actorID, id string, patch model.FolderPatch) (*model.Folder, error) {
	args := m.Called(ctx, actorID, id, patch)
	folder, _ := args.Get(0).(*model.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderService) DeleteFolder(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type MockSharingService struct {
	mock.Mock
}

func (m *MockSharingService) CheckAccess(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string, operation model.Operation) (bool, error) {
	args := m.Called(ctx, actorID, resourceType, resourceID, operation)
	return args.Bool(0), args.Error(1)
}

func (m *MockSharingService) CreateShare(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID, userID string, capabilities model.Capabilities) (*model.Share, error) {
	args := m.Called(ctx, actorID, resourceType, resourceID, userID, capabilities)
	if share, ok := args.Get(0).(*model.Share); ok {
		return share, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSharingService) UpdateShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string, patch model.CapabilitiesPatch) (*model.Share, error) {
	args := m.Called(ctx, actorID, resourceType, shareID, patch)
	if share, ok := args.Get(0).(*model.Share); ok {
		return share, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSharingService) RemoveShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string) error {
	return m.Called(ctx, actorID, resourceType, shareID).Error(0)
}

func (m *MockSharingService) ListShares(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string) ([]model.Share, error) {
	args := m.Called(ctx, actorID, resourceType, resourceID)
	if shares, ok := args.Get(0).([]model.Share); ok {
		return shares, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, username, fullName, password, userAgent, ipAddress string) (*model.User, *model.TokensPair, error) {
	args := m.Called(ctx, email, username, fullName, password, userAgent, ipAddress)
	user, _ := args.Get(0).(*model.User)
	tokens, _ := args.Get(1).(*model.TokensPair)
	return user, tokens, args.Error(2)
}

func (m *MockUserService) GetUser(ctx context.Context, actorID, id string, isAdmin bool) (*model.User, error) {
	args := m.Called(ctx, actorID, id, isAdmin)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actorID string, patch model.UserPatch) (*model.User, error) {
	args := m.Called(ctx, actorID, patch)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, isAdmin bool, cursor string, limit int) ([]*model.User, string, error) {
	args := m.Called(ctx, isAdmin, cursor, limit)
	users, _ := args.Get(0).([]*model.User)
	return users, args.String(1), args.Error(2)
}

func (m *MockUserService) SetActive(ctx context.Context, isAdmin bool, id string, active bool) (*model.User, error) {
	args := m.Called(ctx, isAdmin, id, active)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, login, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	args := m.Called(ctx, login, password, userAgent, ipAddress)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthenticationService) LoginWithGoogle(ctx context.Context, idToken, userAgent, ipAddress string) (*model.TokensPair, error) {
	args := m.Called(ctx, idToken, userAgent, ipAddress)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, userAgent, ipAddress, accessToken, refreshToken)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshTokenID string) error {
	return m.Called(ctx, refreshTokenID).Error(0)
}

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessRefreshTokens(userID string) (*model.TokensPair, *model.RefreshToken, error) {
	args := m.Called(userID)
	tokens, _ := args.Get(0).(*model.TokensPair)
	refresh, _ := args.Get(1).(*model.RefreshToken)
	return tokens, refresh, args.Error(2)
}

func (m *MockJWTService) ValidateJWT(tokenString string) (*model.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*model.Claims)
	return claims, args.Error(1)
}

type MockIntegrationService struct {
	mock.Mock
}

func (m *MockIntegrationService) AuthorizationURL(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockIntegrationService) HandleCallback(ctx context.Context, state, code string) (*model.ExternalIntegration, error) {
	args := m.Called(ctx, state, code)
	integration, _ := args.Get(0).(*model.ExternalIntegration)
	return integration, args.Error(1)
}

func (m *MockIntegrationService) Status(ctx context.Context, userID string) (*model.IntegrationStatus, error) {
	args := m.Called(ctx, userID)
	status, _ := args.Get(0).(*model.IntegrationStatus)
	return status, args.Error(1)
}

func (m *MockIntegrationService) Disconnect(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockIntegrationService) ListFiles(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error) {
	args := m.Called(ctx, userID, folderRef, pageToken)
	page, _ := args.Get(0).(*model.RemotePage)
	return page, args.Error(1)
}

func (m *MockIntegrationService) SearchFiles(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error) {
	args := m.Called(ctx, userID, query, pageToken)
	page, _ := args.Get(0).(*model.RemotePage)
	return page, args.Error(1)
}

func (m *MockIntegrationService) GetFile(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error) {
	args := m.Called(ctx, userID, itemRef)
	item, _ := args.Get(0).(*model.RemoteItem)
	return item, args.Error(1)
}

func (m *MockIntegrationService) StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error) {
	args := m.Called(ctx, userID)
	quota, _ := args.Get(0).(*model.StorageQuota)
	return quota, args.Error(1)
}

func (m *MockIntegrationService) Import(ctx context.Context, userID string, request model.ImportRequest) (*model.ImportReport, error) {
	args := m.Called(ctx, userID, request)
	report, _ := args.Get(0).(*model.ImportReport)
	return report, args.Error(1)
}

// healthStub : проверка зависимости с заранее заданным результатом
type healthStub struct {
	err error
}

func (s healthStub) HealthCheck(context.Context) error { return s.err }

package service_test

import (
	"context"

	"dataroom-server/internal/model"

	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	args := m.Called(ctx, cursor, limit)
	if users, ok := args.Get(0).([]*model.User); ok {
		return users, args.String(1), args.Error(2)
	}
	return nil, "", args.Error(2)
}

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessRefreshTokens(userID string) (*model.TokensPair, *model.RefreshToken, error) {
	args := m.Called(userID)

	var tokens *model.TokensPair
	if t := args.Get(0); t != nil {
		tokens = t.(*model.TokensPair)
	}

	var refresh *model.RefreshToken
	if r := args.Get(1); r != nil {
		refresh = r.(*model.RefreshToken)
	}

	return tokens, refresh, args.Error(2)
}

func (m *MockJWTService) ValidateJWT(tokenString string) (*model.Claims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*model.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockJWTRepo struct {
	mock.Mock
}

func (m *MockJWTRepo) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockJWTRepo) FindByID(ctx context.Context, id string) (*model.RefreshToken, error) {
	args := m.Called(ctx, id)
	if token, ok := args.Get(0).(*model.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJWTRepo) MarkRefreshTokenUsedByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) VerifyIDToken(ctx context.Context, idToken string) (*model.ExternalIdentity, error) {
	args := m.Called(ctx, idToken)
	if identity, ok := args.Get(0).(*model.ExternalIdentity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRemoteDrive struct {
	mock.Mock
}

func (m *MockRemoteDrive) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockRemoteDrive) Exchange(ctx context.Context, code string) (*model.ProviderToken, *model.RemoteAccount, error) {
	args := m.Called(ctx, code)

	var token *model.ProviderToken
	if t := args.Get(0); t != nil {
		token = t.(*model.ProviderToken)
	}

	var account *model.RemoteAccount
	if a := args.Get(1); a != nil {
		account = a.(*model.RemoteAccount)
	}

	return token, account, args.Error(2)
}

func (m *MockRemoteDrive) ListRemote(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error) {
	args := m.Called(ctx, userID, folderRef, pageToken)
	if page, ok := args.Get(0).(*model.RemotePage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteDrive) SearchRemote(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error) {
	args := m.Called(ctx, userID, query, pageToken)
	if page, ok := args.Get(0).(*model.RemotePage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteDrive) GetRemoteItem(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error) {
	args := m.Called(ctx, userID, itemRef)
	if item, ok := args.Get(0).(*model.RemoteItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteDrive) FetchRemoteContent(ctx context.Context, userID string, item model.RemoteItem) (*model.RemoteContent, error) {
	args := m.Called(ctx, userID, item)
	if content, ok := args.Get(0).(*model.RemoteContent); ok {
		return content, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemoteDrive) StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error) {
	args := m.Called(ctx, userID)
	if quota, ok := args.Get(0).(*model.StorageQuota); ok {
		return quota, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStateSigner struct {
	mock.Mock
}

func (m *MockStateSigner) SignState(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockStateSigner) ParseState(state string) (string, error) {
	args := m.Called(state)
	return args.String(0), args.Error(1)
}

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/security"
	"dataroom-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== HELPERS =====

func newTestAuthService(verifier *MockIdentityVerifier) (*service.AuthenticationService, *MockUserRepository, *MockJWTService, *MockJWTRepo) {
	mockUserRepo := new(MockUserRepository)
	mockJWTService := new(MockJWTService)
	mockJWTRepo := new(MockJWTRepo)

	var identityVerifier ports.IdentityVerifier
	if verifier != nil {
		identityVerifier = verifier
	}

	svc := service.NewAuthenticationService(
		mockJWTRepo,
		mockJWTService,
		mockUserRepo,
		identityVerifier,
	)

	return svc, mockUserRepo, mockJWTService, mockJWTRepo
}

func activeUser(t *testing.T, id, password string) *model.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	return &model.User{ID: id, Email: id + "@example.com", Username: id, HashedPassword: &hash, IsActive: true}
}

// ===== LOGIN =====

func TestLogin_UserNotFound(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService(nil)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").
		Return(nil, apperror.NotFound("нет такого"))

	_, err := svc.Login(ctx, "test@example.com", "pass", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "неверный логин или пароль")
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService(nil)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").
		Return(activeUser(t, "u1", "GoodPass1!"), nil)

	_, err := svc.Login(ctx, "test@example.com", "badpass", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_GoogleOnlyUserHasNoPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService(nil)
	ctx := context.Background()

	mockUserRepo.On("FindByUsername", ctx, "googler").
		Return(&model.User{ID: "u1", IsActive: true, AuthProvider: model.AuthProviderGoogle}, nil)

	_, err := svc.Login(ctx, "googler", "", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestAuthService(nil)
	ctx := context.Background()

	user := activeUser(t, "u1", "GoodPass1!")
	user.IsActive = false
	mockUserRepo.On("FindByUsername", ctx, "u1").Return(user, nil)

	_, err := svc.Login(ctx, "u1", "GoodPass1!", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Contains(t, err.Error(), "деактивирован")
}

func TestLogin_GenerateTokensError(t *testing.T) {
	svc, mockUserRepo, mockJWTService, _ := newTestAuthService(nil)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").
		Return(activeUser(t, "u1", "GoodPass1!"), nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").
		Return(nil, nil, errors.New("token error"))

	_, err := svc.Login(ctx, "test@example.com", "GoodPass1!", "agent", "127.0.0.1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка генерации токенов")
	mockUserRepo.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
}

func TestLogin_SaveRefreshTokenError(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	refresh := &model.RefreshToken{ID: "r1", UserID: "u1", TokenHash: "ref", ExpireAt: time.Now().Add(24 * time.Hour)}

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").
		Return(activeUser(t, "u1", "GoodPass1!"), nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").Return(tokens, refresh, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, refresh).
		Return(apperror.Unavailable("[Test] хранилище", errors.New("db error")))

	_, err := svc.Login(ctx, "test@example.com", "GoodPass1!", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	mockJWTRepo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	refresh := &model.RefreshToken{ID: "r1", UserID: "u1", TokenHash: "ref", ExpireAt: time.Now().Add(24 * time.Hour)}

	mockUserRepo.On("FindByEmail", ctx, "test@example.com").
		Return(activeUser(t, "u1", "GoodPass1!"), nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").Return(tokens, refresh, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, refresh).Return(nil)

	result, err := svc.Login(ctx, " test@example.com ", "GoodPass1!", "agent", "127.0.0.1")

	assert.NoError(t, err)
	assert.Equal(t, tokens, result)
	assert.Equal(t, "agent", refresh.UserAgent)
	assert.Equal(t, "127.0.0.1", refresh.IpAddress)

	mockUserRepo.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockJWTRepo.AssertExpectations(t)
}

// ===== GOOGLE =====

func TestLoginWithGoogle_NotConfigured(t *testing.T) {
	svc, _, _, _ := newTestAuthService(nil)

	_, err := svc.LoginWithGoogle(context.Background(), "id-token", "agent", "127.0.0.1")

	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}

func TestLoginWithGoogle_RejectedTokens(t *testing.T) {
	tests := []struct {
		name     string
		identity *model.ExternalIdentity
		err      error
	}{
		{"invalid token", nil, errors.New("bad signature")},
		{"email not verified", &model.ExternalIdentity{Subject: "g1", Email: "a@example.com"}, nil},
		{"no email", &model.ExternalIdentity{Subject: "g1", EmailVerified: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockIdentityVerifier)
			svc, _, _, _ := newTestAuthService(verifier)
			verifier.On("VerifyIDToken", mock.Anything, "id-token").Return(tt.identity, tt.err)

			_, err := svc.LoginWithGoogle(context.Background(), "id-token", "agent", "127.0.0.1")

			assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		})
	}
}

func TestLoginWithGoogle_ExistingGoogleUser(t *testing.T) {
	verifier := new(MockIdentityVerifier)
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(verifier)
	ctx := context.Background()

	identity := &model.ExternalIdentity{Subject: "g1", Email: "a@example.com", EmailVerified: true}
	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	refresh := &model.RefreshToken{ID: "r1"}

	verifier.On("VerifyIDToken", ctx, "id-token").Return(identity, nil)
	mockUserRepo.On("FindByGoogleID", ctx, "g1").Return(&model.User{ID: "u1", IsActive: true}, nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").Return(tokens, refresh, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, refresh).Return(nil)

	result, err := svc.LoginWithGoogle(ctx, "id-token", "agent", "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, tokens, result)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_LinksAccountByEmail(t *testing.T) {
	verifier := new(MockIdentityVerifier)
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(verifier)
	ctx := context.Background()

	identity := &model.ExternalIdentity{Subject: "g1", Email: "a@example.com", EmailVerified: true, Name: "Anna"}
	existing := activeUser(t, "u1", "GoodPass1!")

	verifier.On("VerifyIDToken", ctx, "id-token").Return(identity, nil)
	mockUserRepo.On("FindByGoogleID", ctx, "g1").Return(nil, apperror.NotFound("нет"))
	mockUserRepo.On("FindByEmail", ctx, "a@example.com").Return(existing, nil)
	mockUserRepo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == "u1" && u.GoogleID != nil && *u.GoogleID == "g1"
	})).Return(nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").
		Return(&model.TokensPair{AccessToken: "acc"}, &model.RefreshToken{ID: "r1"}, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, mock.Anything).Return(nil)

	_, err := svc.LoginWithGoogle(ctx, "id-token", "agent", "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "Anna", existing.FullName)
	mockUserRepo.AssertExpectations(t)
}

func TestLoginWithGoogle_CreatesUserAndRetriesUsername(t *testing.T) {
	verifier := new(MockIdentityVerifier)
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(verifier)
	ctx := context.Background()

	identity := &model.ExternalIdentity{Subject: "g1", Email: "jo+test@example.com", EmailVerified: true}
	var created *model.User

	verifier.On("VerifyIDToken", ctx, "id-token").Return(identity, nil)
	mockUserRepo.On("FindByGoogleID", ctx, "g1").Return(nil, apperror.NotFound("нет"))
	mockUserRepo.On("FindByEmail", ctx, "jo+test@example.com").Return(nil, apperror.NotFound("нет"))
	mockUserRepo.On("Create", ctx, mock.Anything).Return(apperror.Conflict("username занят")).Once()
	mockUserRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil).Once()
	mockJWTService.On("GenerateAccessRefreshTokens", mock.Anything).
		Return(&model.TokensPair{AccessToken: "acc"}, &model.RefreshToken{ID: "r1"}, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, mock.Anything).Return(nil)

	_, err := svc.LoginWithGoogle(ctx, "id-token", "agent", "127.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, model.AuthProviderGoogle, created.AuthProvider)
	assert.Nil(t, created.HashedPassword)
	assert.Regexp(t, `^jotest-[0-9a-f]{8}$`, created.Username)
	mockUserRepo.AssertExpectations(t)
}

// ===== REFRESH =====

func refreshClaims() *model.Claims {
	return &model.Claims{UserID: "u1", RefreshTokenID: "r1"}
}

func TestRefreshToken_ValidateJWTError(t *testing.T) {
	svc, _, mockJWTService, _ := newTestAuthService(nil)

	mockJWTService.On("ValidateJWT", "badtoken").Return(nil, errors.New("invalid"))

	tokens, err := svc.RefreshToken(context.Background(), "agent", "127.0.0.1", "badtoken", "refresh")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockJWTService.AssertExpectations(t)
}

func TestRefreshToken_RefreshTokenNotFound(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(nil, apperror.NotFound("нет"))

	tokens, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockJWTRepo.AssertExpectations(t)
}

func TestRefreshToken_StorageError(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(nil, errors.New("connection refused"))

	_, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не удалось найти рефреш токен")
}

func TestRefreshToken_UsedToken(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(&model.RefreshToken{Used: true}, nil)

	tokens, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRefreshToken_ExpiredToken(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	rt := &model.RefreshToken{ExpireAt: time.Now().Add(-time.Hour)}
	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(rt, nil)

	tokens, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRefreshToken_UserAgentMismatch(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	rt := &model.RefreshToken{ExpireAt: time.Now().Add(time.Hour), UserAgent: "old-agent"}
	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(rt, nil)
	mockJWTRepo.On("MarkRefreshTokenUsedByID", ctx, "r1").Return(nil)

	tokens, err := svc.RefreshToken(ctx, "new-agent", "127.0.0.1", "token", "refresh")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockJWTRepo.AssertExpectations(t)
}

func TestRefreshToken_InvalidHash(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	rt := &model.RefreshToken{
		ExpireAt:  time.Now().Add(time.Hour),
		UserAgent: "agent",
		IpAddress: "127.0.0.1",
		TokenHash: "$2a$10$invalidhashstring...........", // некорректный bcrypt
	}
	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(rt, nil)

	tokens, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "wrongpass")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockJWTRepo.AssertNotCalled(t, "MarkRefreshTokenUsedByID", mock.Anything, mock.Anything)
}

func TestRefreshToken_ConcurrentReuse(t *testing.T) {
	svc, _, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	hash, err := security.HashPassword("refresh123")
	require.NoError(t, err)
	rt := &model.RefreshToken{ExpireAt: time.Now().Add(time.Hour), UserAgent: "agent", IpAddress: "127.0.0.1", TokenHash: hash}

	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(rt, nil)
	mockJWTRepo.On("MarkRefreshTokenUsedByID", ctx, "r1").Return(apperror.Conflict("уже использован"))

	_, err = svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh123")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	mockJWTService.AssertNotCalled(t, "GenerateAccessRefreshTokens", mock.Anything)
}

func TestRefreshToken_Success(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	hash, err := security.HashPassword("refresh123")
	require.NoError(t, err)
	rt := &model.RefreshToken{
		ExpireAt:  time.Now().Add(time.Hour),
		UserAgent: "agent",
		IpAddress: "10.0.0.1",
		TokenHash: hash,
	}

	tokensPair := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	newRefresh := &model.RefreshToken{}

	mockJWTService.On("ValidateJWT", "token").Return(refreshClaims(), nil)
	mockJWTRepo.On("FindByID", ctx, "r1").Return(rt, nil)
	mockJWTRepo.On("MarkRefreshTokenUsedByID", ctx, "r1").Return(nil)
	mockUserRepo.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", IsActive: true}, nil)
	mockJWTService.On("GenerateAccessRefreshTokens", "u1").Return(tokensPair, newRefresh, nil)
	mockJWTRepo.On("SaveRefreshToken", ctx, newRefresh).Return(nil)

	// смена ip только логируется
	result, err := svc.RefreshToken(ctx, "agent", "127.0.0.1", "token", "refresh123")

	assert.NoError(t, err)
	assert.Equal(t, tokensPair, result)
	assert.Equal(t, "agent", newRefresh.UserAgent)
	assert.Equal(t, "127.0.0.1", newRefresh.IpAddress)
	mockJWTRepo.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	svc, _, _, mockJWTRepo := newTestAuthService(nil)
	ctx := context.Background()

	mockJWTRepo.On("MarkRefreshTokenUsedByID", ctx, "r1").Return(nil).Once()
	mockJWTRepo.On("MarkRefreshTokenUsedByID", ctx, "r2").Return(apperror.NotFound("нет"))

	assert.NoError(t, svc.Logout(ctx, "r1"))
	assert.ErrorIs(t, svc.Logout(ctx, "r2"), apperror.ErrNotFound)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/security"
	"dataroom-server/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernameCleaner = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type AuthenticationService struct {
	jwtRepoInterface    ports.JWTRepositoryInterface
	jwtServiceInterface ports.JWTServiceInterface
	userRepository      ports.UserRepository
	identityVerifier    ports.IdentityVerifier
}

func NewAuthenticationService(
	repo ports.JWTRepositoryInterface,
	service ports.JWTServiceInterface,
	userInterface ports.UserRepository,
	verifier ports.IdentityVerifier,
) *AuthenticationService {
	return &AuthenticationService{
		jwtRepoInterface:    repo,
		jwtServiceInterface: service,
		userRepository:      userInterface,
		identityVerifier:    verifier,
	}
}

// Login : вход по email или username
func (s *AuthenticationService) Login(ctx context.Context, login, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	user, err := s.findByLogin(ctx, login)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized("неверный логин или пароль")
	}
	if err != nil {
		return nil, err
	}

	if !security.CheckPassword(password, user.HashedPassword) {
		return nil, apperror.Unauthorized("неверный логин или пароль")
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("пользователь деактивирован")
	}

	return s.issueTokens(ctx, user.ID, userAgent, ipAddress)
}

func (s *AuthenticationService) findByLogin(ctx context.Context, login string) (*model.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.userRepository.FindByEmail(ctx, login)
	}
	return s.userRepository.FindByUsername(ctx, login)
}

// LoginWithGoogle : находит пользователя по google_id, иначе привязывает аккаунт с тем же email
// или создаёт новый без пароля
func (s *AuthenticationService) LoginWithGoogle(ctx context.Context, idToken, userAgent, ipAddress string) (*model.TokensPair, error) {
	if s.identityVerifier == nil {
		return nil, apperror.Unavailable("[AuthService] вход через Google не настроен", errors.New("нет client_id"))
	}

	identity, err := s.identityVerifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("[AuthService] %v", err)
		return nil, apperror.Unauthorized("невалидный Google токен")
	}
	if identity.Email == "" || !identity.EmailVerified {
		return nil, apperror.Unauthorized("email Google аккаунта не подтверждён")
	}

	user, err := s.googleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("пользователь деактивирован")
	}

	return s.issueTokens(ctx, user.ID, userAgent, ipAddress)
}

func (s *AuthenticationService) googleUser(ctx context.Context, identity *model.ExternalIdentity) (*model.User, error) {
	user, err := s.userRepository.FindByGoogleID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user, err = s.userRepository.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		user.GoogleID = &identity.Subject
		if user.FullName == "" {
			user.FullName = identity.Name
		}
		if err := s.userRepository.Update(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("[AuthService] Google аккаунт привязан к пользователю %s", user.ID)
		return user, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	subject := identity.Subject
	user = &model.User{
		ID:           uuid.NewString(),
		Email:        identity.Email,
		Username:     usernameFromEmail(identity.Email),
		FullName:     identity.Name,
		IsActive:     true,
		AuthProvider: model.AuthProviderGoogle,
		GoogleID:     &subject,
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		user.Username = fmt.Sprintf("%s-%s", user.Username, uuid.NewString()[:8])
		err = s.userRepository.Create(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[AuthService] создан пользователь %s через Google", user.ID)
	return user, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := usernameCleaner.ReplaceAllString(local, "")
	if len(name) < 3 {
		name = "user-" + name
	}
	if len(name) > 40 {
		name = name[:40]
	}
	return name
}

func (s *AuthenticationService) issueTokens(ctx context.Context, userID, userAgent, ipAddress string) (*model.TokensPair, error) {
	tokens, refreshToken, err := s.jwtServiceInterface.GenerateAccessRefreshTokens(userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации токенов: %w", err)
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IpAddress = ipAddress

	if err := s.jwtRepoInterface.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return tokens, nil
}

// RefreshToken обновляет refresh-токен
// Выполняет следующие требования к операции refresh:
//  1. Операцию refresh можно выполнить только той парой токенов, которая была выдана вместе.
//  2. Запрещает операцию обновления токенов при изменении User-Agent.
//     При этом, после неудачной попытки выполнения операции, деавторизует пользователя,
//     который попытался выполнить обновление токенов.
//  3. Смена IP адреса только логируется, операция не запрещается.
//
// Параметры:
//   - ctx: контекст выполнения (для отмены и таймаутов)
//   - userAgent: информацию о бразуере
//   - ipAddress: ip адрес устройства, с которого был выполнен вход
//   - accessToken: текущий access-токен
//   - refreshToken: текущий refresh-токен
//
// Возвращает:
//   - model.TokensPair
//   - ошибку, если не удалось обновить токен.
func (s *AuthenticationService) RefreshToken(ctx context.Context, userAgent string, ipAddress string, accessToken string, refreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtServiceInterface.ValidateJWT(accessToken)
	if err != nil {
		log.Printf("[AuthService] не удалось провалидировать токен: %v", err)
		return nil, apperror.Unauthorized("невалидный токен")
	}

	refreshTokenID := claims.RefreshTokenID
	userID := claims.UserID

	storedRefreshToken, err := s.jwtRepoInterface.FindByID(ctx, refreshTokenID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized("невалидный токен")
	}
	if err != nil {
		return nil, util.LogError("не удалось найти рефреш токен", err)
	}
	if storedRefreshToken.Used {
		log.Printf("refresh token %s уже был использован", refreshTokenID)
		return nil, apperror.Unauthorized("невалидный токен")
	}

	if time.Now().UTC().After(storedRefreshToken.ExpireAt) {
		log.Printf("refresh token %s просрочен", refreshTokenID)
		return nil, apperror.Unauthorized("невалидный токен")
	}

	if storedRefreshToken.UserAgent != userAgent {
		if err := s.jwtRepoInterface.MarkRefreshTokenUsedByID(ctx, refreshTokenID); err != nil {
			log.Printf("не удалось пометить токен использованным: %v", err)
		}
		log.Printf("refresh token %s: попытка обновления с другого User-Agent", refreshTokenID)
		return nil, apperror.Unauthorized("невалидный токен")
	}

	if storedRefreshToken.IpAddress != ipAddress {
		log.Printf("[AuthService] пользователь %s обновляет токены с нового ip %s (был %s)", userID, ipAddress, storedRefreshToken.IpAddress)
	}

	err = bcrypt.CompareHashAndPassword([]byte(storedRefreshToken.TokenHash), []byte(refreshToken))
	if err != nil {
		log.Printf("[AuthService] refresh token %s не совпал: %v", refreshTokenID, err)
		return nil, apperror.Unauthorized("невалидный токен")
	}

	if err := s.jwtRepoInterface.MarkRefreshTokenUsedByID(ctx, refreshTokenID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Unauthorized("невалидный токен")
		}
		return nil, util.LogError("не удалось использовать токен", err)
	}

	user, err := s.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("пользователь деактивирован")
	}

	return s.issueTokens(ctx, userID, userAgent, ipAddress)
}

// Logout "деактивирует" сессию: refresh-токен помечается использованным
func (s *AuthenticationService) Logout(ctx context.Context, refreshTokenID string) error {
	err := s.jwtRepoInterface.MarkRefreshTokenUsedByID(ctx, refreshTokenID)
	if err != nil {
		return fmt.Errorf("не удалось использовать токен: %w", err)
	}
	return nil
}

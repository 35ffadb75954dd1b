package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const (
	defaultUsersPage = 50
	maxUsersPage     = 100
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type UserService struct {
	userRepository ports.UserRepository
	jwtService     ports.JWTServiceInterface
	jwtRepository  ports.JWTRepositoryInterface
}

func NewUserService(
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	jwtRepository ports.JWTRepositoryInterface,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		jwtService:     jwtService,
		jwtRepository:  jwtRepository,
	}
}

func emailRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(3, 254), is.EmailFormat}
}

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(3, 50),
		validation.Match(usernamePattern).Error("только латинские буквы, цифры и _.-"),
	}
}

// Register : открытая регистрация локального аккаунта, сразу выдаёт пару токенов
func (s *UserService) Register(ctx context.Context, email, username, fullName, password, userAgent, ipAddress string) (*model.User, *model.TokensPair, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	err := validation.Errors{
		"email":     validation.Validate(email, emailRules()...),
		"username":  validation.Validate(username, usernameRules()...),
		"full_name": validation.Validate(fullName, validation.Length(0, 255)),
	}.Filter()
	if err != nil {
		return nil, nil, invalid(err)
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, apperror.Validation("%v", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		Username:       username,
		FullName:       fullName,
		HashedPassword: &hash,
		IsActive:       true,
		AuthProvider:   model.AuthProviderLocal,
	}
	if err := s.userRepository.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, refreshToken, err := s.jwtService.GenerateAccessRefreshTokens(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("[UserService] ошибка генерации токенов: %w", err)
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IpAddress = ipAddress
	if err := s.jwtRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, nil, err
	}

	log.Printf("[UserService] зарегистрирован пользователь %s (%s)", user.ID, user.Username)
	return user, tokens, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 || (upperCount+lowerCount) < 2 {
		return fmt.Errorf("пароль должен содержать минимум 2 буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, actorID, id string, isAdmin bool) (*model.User, error) {
	if !isAdmin && actorID != id {
		return nil, apperror.Forbidden("доступ к чужому профилю запрещён")
	}
	return s.userRepository.FindByID(ctx, id)
}

// UpdateUser : пользователь меняет только свой профиль; активность меняет администратор
func (s *UserService) UpdateUser(ctx context.Context, actorID string, patch model.UserPatch) (*model.User, error) {
	if patch.IsActive != nil {
		return nil, apperror.Forbidden("активность пользователя меняет администратор")
	}

	user, err := s.userRepository.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	errs := validation.Errors{}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		errs["email"] = validation.Validate(email, emailRules()...)
		user.Email = email
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		errs["username"] = validation.Validate(username, usernameRules()...)
		user.Username = username
	}
	if patch.FullName != nil {
		errs["full_name"] = validation.Validate(*patch.FullName, validation.Length(0, 255))
		user.FullName = *patch.FullName
	}
	if err := errs.Filter(); err != nil {
		return nil, invalid(err)
	}

	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, apperror.Validation("%v", err)
		}
		hash, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
		}
		user.HashedPassword = &hash
	}

	if err := s.userRepository.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, isAdmin bool, cursor string, limit int) ([]*model.User, string, error) {
	if !isAdmin {
		return nil, "", apperror.Forbidden("список пользователей доступен только администратору")
	}

	switch {
	case limit <= 0:
		limit = defaultUsersPage
	case limit > maxUsersPage:
		limit = maxUsersPage
	}
	return s.userRepository.List(ctx, cursor, limit)
}

// SetActive : деактивация вместо удаления
func (s *UserService) SetActive(ctx context.Context, isAdmin bool, id string, active bool) (*model.User, error) {
	if !isAdmin {
		return nil, apperror.Forbidden("менять активность может только администратор")
	}

	user, err := s.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active

	if err := s.userRepository.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] пользователь %s: is_active=%t", id, active)
	return user, nil
}

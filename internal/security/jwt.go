package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	issuer        = "dataroom-server"
	stateAudience = "oauth-state"
	stateTTL      = 10 * time.Minute
)

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

func (service *JWTService) GenerateAccessRefreshTokens(userID string) (*model.TokensPair, *model.RefreshToken, error) {
	refreshToken, refreshTokenStr, err := GenerateRefreshToken()
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка генерации рефреш токена", err)
	}

	refreshToken.UserID = userID
	timeDuration, err := time.ParseDuration(service.RefreshTokenTTL)
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка парсинга", err)
	}
	refreshToken.ExpireAt = time.Now().Add(timeDuration)

	timeDuration, err = time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка парсинга", err)
	}
	claims := model.Claims{
		UserID:         userID,
		RefreshTokenID: refreshToken.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(timeDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка подписи токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenStr,
	}, refreshToken, nil
}

func GenerateRefreshToken() (*model.RefreshToken, string, error) {
	jwtTokenBytes := make([]byte, 32)
	_, err := rand.Read(jwtTokenBytes)
	if err != nil {
		return nil, "", util.LogError("ошибка генерации", err)
	}
	refreshTokenStr := base64.StdEncoding.EncodeToString(jwtTokenBytes)

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(refreshTokenStr), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", util.LogError("ошибка хэширования", err)
	}

	// refreshTokenStr отдается клиенту
	// hashedToken сохраняется в БД
	return &model.RefreshToken{
		ID:        uuid.New().String(),
		TokenHash: string(hashedToken),
		Used:      false,
	}, refreshTokenStr, nil
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*model.Claims, error) {
	var claims = &model.Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, service.keyFunc)
	if err != nil || jwtToken.Valid == false {
		return nil, util.LogError("невалидный токен", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("невалидный токен: нет user_id")
	}

	return claims, nil
}

// SignState : state для OAuth-редиректа, привязанный к пользователю и живущий 10 минут
func (service *JWTService) SignState(userID string) (string, error) {
	nonce, err := util.GenerateRandomToken(16)
	if err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{stateAudience},
		ID:        nonce,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
	}

	state, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("[JWTService] ошибка подписи state", err)
	}
	return state, nil
}

func (service *JWTService) ParseState(state string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(state, claims, service.keyFunc, jwt.WithAudience(stateAudience))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("невалидный state: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("невалидный state: нет пользователя")
	}

	return claims.Subject, nil
}

func (service *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
	}
	return []byte(service.SecretKey), nil
}

func JWTMiddleware(jwtRepository ports.JWTRepositoryInterface, jwtService ports.JWTServiceInterface, adminToken string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtRepository, jwtService, adminToken, next))
	}
}

func handleAuthentication(jwtRepository ports.JWTRepositoryInterface, jwtService ports.JWTServiceInterface, adminToken string, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		if adminToken != "" && token == adminToken {
			adminClaims := &model.Claims{
				UserID:  "admin",
				IsAdmin: true,
			}
			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, adminClaims))
			next.ServeHTTP(writer, req)
			return
		}

		claims, err := jwtService.ValidateJWT(token)
		if err != nil {
			log.Printf("невалидный токен: %v", err)
			util.HandleError(writer, "невалидный токен", http.StatusUnauthorized)
			return
		}

		refreshToken, err := jwtRepository.FindByID(request.Context(), claims.RefreshTokenID)
		if err != nil {
			log.Printf("рефреш токен не найден: %v", err)
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		if refreshToken.Used {
			log.Printf("рефреш токен был использован")
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

func GetClaimsFromContext(ctx context.Context) (*model.Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*model.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

// WithClaims : кладёт claims в контекст (используется в тестах обработчиков)
func WithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

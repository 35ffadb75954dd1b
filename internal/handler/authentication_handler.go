package handler

import (
	"net/http"
	"strings"

	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	ports.JWTServiceInterface
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	jwtServiceInterface ports.JWTServiceInterface,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		jwtServiceInterface}
}

func tokensResponse(tokens *model.TokensPair) requestresponse.TokensResponse {
	resp := requestresponse.TokensResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken
	resp.Response.TokenType = "bearer"
	return resp
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары токенов по email или username и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса" example({"login": "user1", "password": "StrongPass123!"})
// @Success 200 {object} requestresponse.TokensResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 403 {object} requestresponse.ErrorResponse "Пользователь заблокирован"
// @Failure 422 {object} requestresponse.ErrorResponse "Пустые поля"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Login, req.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse(tokens))
}

// LoginWithGoogle godoc
// @Summary Вход через Google
// @Description Проверяет ID-токен Google Sign-In, создаёт или привязывает аккаунт и выдаёт пару токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.GoogleLoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 401 {object} requestresponse.ErrorResponse "ID-токен не прошёл проверку"
// @Failure 403 {object} requestresponse.ErrorResponse "Пользователь заблокирован"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse "Google недоступен или вход не настроен"
// @Router /api/auth/google [post]
func (h *AuthenticationHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.GoogleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.LoginWithGoogle(r.Context(), req.IDToken, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse(tokens))
}

// GetCurrentUser godoc
// @Summary Получение ID текущего пользователя
// @Description Возвращает ID пользователя, который авторизован в системе
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.UserID = claims.UserID
	resp.Response.IsAdmin = claims.IsAdmin
	writeJSON(w, http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Обновляет пару токенов (access и refresh) по действующему access и refresh токену
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.TokensResponse "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован или невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		sendErrorResponse(w, http.StatusUnauthorized, "пустой или неверный заголовок Authorization")
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokensPair, err := h.AuthenticationService.RefreshToken(r.Context(), r.UserAgent(), r.RemoteAddr, accessToken, req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse(tokensPair))
}

// Logout godoc
// @Summary Завершение авторизованной сессии
// @Description Инвалидирует refresh-токен сессии, к которой относится access-токен из URL.
// @Tags Authentication
// @Produce json
// @Param token path string true "Access-токен пользователя (JWT)"
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/{token} [delete]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := chi.URLParam(r, "token")
	if accessToken == "" {
		sendErrorResponse(w, http.StatusBadRequest, "токен не указан")
		return
	}

	claims, err := h.JWTServiceInterface.ValidateJWT(accessToken)
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "невалидный токен")
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), claims.RefreshTokenID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.LogoutResponse{
		Response: []requestresponse.LogoutItem{
			{RefreshTokenID: claims.RefreshTokenID, Deleted: true},
		},
	})
}

package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"
	"dataroom-server/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-chi/chi/v5"
)

const (
	defaultUsersLimit = 50
	maxUsersLimit     = 100
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Создает пользователя с email, username и паролем и сразу выдаёт пару токенов.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Email или username заняты"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, tokens, err := h.UserService.Register(r.Context(), req.Email, req.Username, req.FullName, req.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.RegisterResponse{Data: user, Tokens: tokens})
}

// GetMe godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID, claims.UserID, claims.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.UserResponse{Data: user})
}

// UpdateMe godoc
// @Summary Обновление профиля текущего пользователя
// @Description Меняются только переданные поля: email, username, full_name, password.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdateUserRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/users/me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), claims.UserID, req.Patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.UserResponse{Data: user})
}

// GetUser godoc
// @Summary Получение информации о пользователе
// @Description Возвращает данные пользователя. Доступен самому пользователю и администратору.
// @Tags Users
// @Produce json
// @Param id path string true "ID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), claims.UserID, chi.URLParam(r, "id"), claims.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.UserResponse{Data: user})
}

// SetActive godoc
// @Summary Блокировка и разблокировка пользователя
// @Description Доступно только администратору.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "ID пользователя"
// @Param body body requestresponse.SetActiveRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен администратора"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/users/{id}/active [put]
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.SetActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.UserService.SetActive(r.Context(), claims.IsAdmin, chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.UserResponse{Data: user})
}

// ListUsers godoc
// @Summary Получение списка пользователей
// @Description Возвращает список пользователей с постраничной навигацией (cursor-based). Доступно только администратору.
// @Tags Users
// @Produce json
// @Param cursor query string false "Курсор для пагинации"
// @Param limit query int false "Количество пользователей в списке" default(50) minimum(1) maximum(100)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListUsersResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/users [get]
// @Security ApiKeyAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limit := defaultUsersLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxUsersLimit)
		}
	}

	users, nextCursor, err := h.UserService.ListUsers(r.Context(), claims.IsAdmin, cursor, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.ListUsersResponse{}
	resp.Data.Users = users
	resp.Data.NextCursor = nextCursor
	writeJSON(w, http.StatusOK, resp)
}

// decodeJSON обрабатывает декодирование JSON и проверку тела запроса, при ошибке сам пишет ответ
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return err
	}

	if validatable, ok := target.(validation.Validatable); ok {
		if err := validatable.Validate(); err != nil {
			sendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return err
		}
	}
	return nil
}

// currentClaims : claims из контекста, при их отсутствии отвечает 401
func currentClaims(w http.ResponseWriter, r *http.Request) (*model.Claims, bool) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return claims, true
}

// writeServiceError : статус берётся из типа ошибки домена, подробности 5xx остаются в логе
func writeServiceError(w http.ResponseWriter, err error) {
	status := apperror.StatusCode(err)
	switch status {
	case http.StatusServiceUnavailable:
		log.Printf("[Handler] хранилище недоступно: %v", err)
		sendErrorResponse(w, status, "сервис временно недоступен, повторите запрос позже")
	case http.StatusInternalServerError:
		log.Printf("[Handler] внутренняя ошибка: %v", err)
		sendErrorResponse(w, status, "внутренняя ошибка сервера")
	default:
		sendErrorResponse(w, status, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Println("ошибка кодирования ответа:", err)
	}
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

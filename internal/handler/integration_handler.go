package handler

import (
	"net/http"

	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
)

type IntegrationHandler struct {
	ports.IntegrationService
}

func NewIntegrationHandler(integrationService ports.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService}
}

// AuthorizationURL godoc
// @Summary Ссылка для подключения Google Drive
// @Description Ссылка содержит подписанный state, привязанный к текущему пользователю
// @Tags Integrations
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AuthorizationURLResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/auth-url [get]
func (h *IntegrationHandler) AuthorizationURL(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	url, err := h.IntegrationService.AuthorizationURL(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.AuthorizationURLResponse{}
	resp.Data.URL = url
	writeJSON(w, http.StatusOK, resp)
}

// Callback godoc
// @Summary OAuth callback Google
// @Description Google перенаправляет сюда пользователя с code и state. Пользователь определяется по state.
// @Tags Integrations
// @Produce json
// @Param state query string true "state из ссылки авторизации"
// @Param code query string true "код авторизации"
// @Success 200 {object} requestresponse.IntegrationResponse
// @Failure 422 {object} requestresponse.ErrorResponse "Неверный state, пустой код или отказ пользователя"
// @Failure 503 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/callback [get]
func (h *IntegrationHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if reason := query.Get("error"); reason != "" {
		sendErrorResponse(w, http.StatusUnprocessableEntity, "авторизация Google отклонена: "+reason)
		return
	}

	integration, err := h.IntegrationService.HandleCallback(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.IntegrationResponse{Data: integration})
}

// Status godoc
// @Summary Состояние подключения Google Drive
// @Tags Integrations
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.IntegrationStatusResponse
// @Router /api/integrations/google/status [get]
func (h *IntegrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	status, err := h.IntegrationService.Status(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.IntegrationStatusResponse{Data: status})
}

// Disconnect godoc
// @Summary Отключение Google Drive
// @Tags Integrations
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Drive не подключён"
// @Router /api/integrations/google [delete]
func (h *IntegrationHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if err := h.IntegrationService.Disconnect(r.Context(), claims.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "Google Drive отключён"})
}

// ListFiles godoc
// @Summary Файлы в папке Google Drive
// @Tags Integrations
// @Produce json
// @Param folder_id query string false "Папка Drive (по умолчанию корень)"
// @Param page_token query string false "Токен следующей страницы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RemotePageResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Drive не подключён"
// @Failure 503 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/files [get]
func (h *IntegrationHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, err := h.IntegrationService.ListFiles(r.Context(), claims.UserID, query.Get("folder_id"), query.Get("page_token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.RemotePageResponse{Data: page})
}

// SearchFiles godoc
// @Summary Поиск файлов в Google Drive по имени
// @Tags Integrations
// @Produce json
// @Param q query string true "Подстрока имени"
// @Param page_token query string false "Токен следующей страницы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RemotePageResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/search [get]
func (h *IntegrationHandler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, err := h.IntegrationService.SearchFiles(r.Context(), claims.UserID, query.Get("q"), query.Get("page_token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.RemotePageResponse{Data: page})
}

// GetFile godoc
// @Summary Метаданные файла Google Drive
// @Tags Integrations
// @Produce json
// @Param file_id path string true "ID файла в Drive"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RemoteItemResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/files/{file_id} [get]
func (h *IntegrationHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	item, err := h.IntegrationService.GetFile(r.Context(), claims.UserID, chi.URLParam(r, "file_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.RemoteItemResponse{Data: item})
}

// StorageQuota godoc
// @Summary Квота Google Drive
// @Tags Integrations
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.StorageQuotaResponse
// @Router /api/integrations/google/quota [get]
func (h *IntegrationHandler) StorageQuota(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	quota, err := h.IntegrationService.StorageQuota(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.StorageQuotaResponse{Data: quota})
}

// Import godoc
// @Summary Импорт файлов и папок из Google Drive
// @Description Ошибка по отдельному элементу не прерывает импорт и попадает в skipped
// @Tags Integrations
// @Accept json
// @Produce json
// @Param body body requestresponse.ImportRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ImportResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Папка назначения не найдена"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/integrations/google/import [post]
func (h *IntegrationHandler) Import(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	report, err := h.IntegrationService.Import(r.Context(), claims.UserID, req.Request())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.ImportResponse{Data: report})
}

package handler

import (
	"net/http"

	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
)

// ShareHandler : шаринг ресурсов одного типа; монтируется под /api/docs/{id} и /api/folders/{id}
type ShareHandler struct {
	ports.SharingService
	resourceType model.ResourceType
}

func NewShareHandler(sharingService ports.SharingService, resourceType model.ResourceType) *ShareHandler {
	return &ShareHandler{sharingService, resourceType}
}

// CreateShare godoc
// @Summary Выдача доступа пользователю
// @Description Документ шарит только владелец. Папку шарит владелец или получатель с can_share, не шире своих прав.
// @Tags Sharing
// @Accept json
// @Produce json
// @Param id path string true "ID документа или папки"
// @Param body body requestresponse.CreateShareRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.ShareResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Доступ уже выдан"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/shares [post]
// @Router /api/folders/{id}/shares [post]
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	share, err := h.SharingService.CreateShare(r.Context(), claims.UserID, h.resourceType, chi.URLParam(r, "id"), req.UserID, req.Capabilities())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.ShareResponse{Data: share})
}

// ListShares godoc
// @Summary Кому выдан доступ
// @Description Доступно только владельцу ресурса
// @Tags Sharing
// @Produce json
// @Param id path string true "ID документа или папки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListSharesResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/shares [get]
// @Router /api/folders/{id}/shares [get]
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	shares, err := h.SharingService.ListShares(r.Context(), claims.UserID, h.resourceType, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.ListSharesResponse{Count: len(shares)}
	resp.Data.Shares = shares
	writeJSON(w, http.StatusOK, resp)
}

// UpdateShare godoc
// @Summary Изменение флагов доступа
// @Description Доступно только владельцу ресурса; отсутствующие флаги не меняются
// @Tags Sharing
// @Accept json
// @Produce json
// @Param id path string true "ID документа или папки"
// @Param share_id path string true "ID записи о доступе"
// @Param body body requestresponse.UpdateShareRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ShareResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/shares/{share_id} [patch]
// @Router /api/folders/{id}/shares/{share_id} [patch]
func (h *ShareHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	share, err := h.SharingService.UpdateShare(r.Context(), claims.UserID, h.resourceType, chi.URLParam(r, "share_id"), req.Patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.ShareResponse{Data: share})
}

// RemoveShare godoc
// @Summary Отзыв доступа
// @Tags Sharing
// @Produce json
// @Param id path string true "ID документа или папки"
// @Param share_id path string true "ID записи о доступе"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/shares/{share_id} [delete]
// @Router /api/folders/{id}/shares/{share_id} [delete]
func (h *ShareHandler) RemoveShare(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if err := h.SharingService.RemoveShare(r.Context(), claims.UserID, h.resourceType, chi.URLParam(r, "share_id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "доступ отозван"})
}

// CheckAccess godoc
// @Summary Проверка права на операцию
// @Description Ответ allowed=false не является ошибкой; 404 для отсутствующего или удалённого ресурса
// @Tags Sharing
// @Produce json
// @Param resource_type path string true "document или folder"
// @Param id path string true "ID ресурса"
// @Param operation query string false "read, edit, delete или share" default(read)
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AccessResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/access/{resource_type}/{id} [get]
func CheckAccess(sharingService ports.SharingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := currentClaims(w, r)
		if !ok {
			return
		}

		resourceType, err := model.ParseResourceType(chi.URLParam(r, "resource_type"))
		if err != nil {
			sendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		operationStr := r.URL.Query().Get("operation")
		if operationStr == "" {
			operationStr = string(model.OperationRead)
		}
		operation, err := model.ParseOperation(operationStr)
		if err != nil {
			sendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		resourceID := chi.URLParam(r, "id")
		allowed, err := sharingService.CheckAccess(r.Context(), claims.UserID, resourceType, resourceID, operation)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := requestresponse.AccessResponse{}
		resp.Data.ResourceType = resourceType
		resp.Data.ResourceID = resourceID
		resp.Data.Operation = operation
		resp.Data.Allowed = allowed
		writeJSON(w, http.StatusOK, resp)
	}
}

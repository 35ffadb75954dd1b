package handler

import (
	"net/http"

	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
)

type FolderHandler struct {
	ports.FolderService
}

func NewFolderHandler(folderService ports.FolderService) *FolderHandler {
	return &FolderHandler{folderService}
}

// CreateFolder godoc
// @Summary Создание папки
// @Description В чужой папке требуется право edit
// @Tags Folders
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateFolderRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.FolderResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Родительская папка не найдена"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/folders [post]
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.CreateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	folder, err := h.FolderService.CreateFolder(r.Context(), claims.UserID, req.Folder())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.FolderResponse{Data: folder})
}

// ListFolders godoc
// @Summary Свои папки
// @Description Без parent_id возвращаются папки верхнего уровня
// @Tags Folders
// @Produce json
// @Param parent_id query string false "Родительская папка"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListFoldersResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/folders [get]
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var parentID *string
	if value := r.URL.Query().Get("parent_id"); value != "" {
		parentID = &value
	}

	folders, err := h.FolderService.ListFolders(r.Context(), claims.UserID, parentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeFolders(w, folders)
}

// ListSharedFolders godoc
// @Summary Папки, расшаренные текущему пользователю
// @Tags Folders
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListFoldersResponse
// @Router /api/folders/shared [get]
func (h *FolderHandler) ListSharedFolders(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	folders, err := h.FolderService.ListSharedFolders(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeFolders(w, folders)
}

func writeFolders(w http.ResponseWriter, folders []model.Folder) {
	resp := requestresponse.ListFoldersResponse{Count: len(folders)}
	resp.Data.Folders = folders
	writeJSON(w, http.StatusOK, resp)
}

// GetFolder godoc
// @Summary Папка по ID
// @Tags Folders
// @Produce json
// @Param id path string true "ID папки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FolderResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id} [get]
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	folder, err := h.FolderService.GetFolder(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.FolderResponse{Data: folder})
}

// UpdateFolder godoc
// @Summary Изменение папки
// @Description Переименование, описание, перенос (parent_id, "" = в корень). Циклы запрещены.
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path string true "ID папки"
// @Param body body requestresponse.UpdateFolderRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FolderResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse "Цикл в дереве папок"
// @Router /api/folders/{id} [patch]
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	folder, err := h.FolderService.UpdateFolder(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.FolderResponse{Data: folder})
}

// DeleteFolder godoc
// @Summary Удаление папки
// @Description Мягкое удаление без каскада на вложенные папки и документы
// @Tags Folders
// @Produce json
// @Param id path string true "ID папки"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if err := h.FolderService.DeleteFolder(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "папка удалена"})
}

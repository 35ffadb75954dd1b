package handler

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
)

// multipartOverhead : запас на поля формы сверх размера файла
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	ports.DocumentService
	maxUploadBytes int64
	presignTTL     time.Duration
}

func NewDocumentHandler(documentService ports.DocumentService, maxUploadBytes int64, presignTTL time.Duration) *DocumentHandler {
	return &DocumentHandler{documentService, maxUploadBytes, presignTTL}
}

// readUpload : файл из поля file multipart-формы. Ответ при ошибке уже записан.
func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (model.FileUpload, bool) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendErrorResponse(w, http.StatusRequestEntityTooLarge, "файл слишком большой")
			return model.FileUpload{}, false
		}
		sendErrorResponse(w, http.StatusBadRequest, "неверный формат запроса")
		return model.FileUpload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "файл не найден в запросе")
		return model.FileUpload{}, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "ошибка чтения файла")
		return model.FileUpload{}, false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	return model.FileUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     content,
	}, true
}

// CreateDocument godoc
// @Summary Загрузка нового документа
// @Description Загружает файл и его мета-данные (multipart/form-data). Создаётся версия 1.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл документа"
// @Param name formData string false "Имя документа (по умолчанию имя файла)"
// @Param description formData string false "Описание"
// @Param folder_id formData string false "Папка"
// @Param is_public formData string false "true, чтобы документ был доступен всем на чтение"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} requestresponse.ErrorResponse "Нет права edit на папке"
// @Failure 413 {object} requestresponse.ErrorResponse "Файл слишком большой"
// @Failure 422 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /api/docs [post]
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	input := model.NewDocument{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		File:        upload,
	}
	if folderID := r.FormValue("folder_id"); folderID != "" {
		input.FolderID = &folderID
	}
	if publicStr := r.FormValue("is_public"); publicStr != "" {
		isPublic, err := strconv.ParseBool(publicStr)
		if err != nil {
			sendErrorResponse(w, http.StatusBadRequest, "неверный формат is_public (должно быть true/false)")
			return
		}
		input.IsPublic = isPublic
	}

	document, err := h.DocumentService.CreateDocument(r.Context(), claims.UserID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.DocumentResponse{Data: document})
}

// ListDocuments godoc
// @Summary Документы текущего пользователя
// @Description Свои неудалённые документы, опционально в папке и с поиском по имени
// @Tags Documents
// @Produce json
// @Param folder_id query string false "Папка"
// @Param search query string false "Подстрока имени"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/docs [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	filter := model.DocumentFilter{Search: r.URL.Query().Get("search")}
	if folderID := r.URL.Query().Get("folder_id"); folderID != "" {
		filter.FolderID = &folderID
	}

	documents, err := h.DocumentService.ListDocuments(r.Context(), claims.UserID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeDocuments(w, r, documents)
}

// ListSharedDocuments godoc
// @Summary Документы, расшаренные текущему пользователю
// @Tags Documents
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/docs/shared [get]
func (h *DocumentHandler) ListSharedDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	documents, err := h.DocumentService.ListSharedDocuments(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeDocuments(w, r, documents)
}

func writeDocuments(w http.ResponseWriter, r *http.Request, documents []model.Document) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.ListDocumentsResponse{Count: len(documents)}
	resp.Data.Docs = documents
	writeJSON(w, http.StatusOK, resp)
}

// GetDocument godoc
// @Summary Метаданные документа
// @Description Мягко удалённый документ возвращается с is_deleted=true
// @Tags Documents
// @Produce json
// @Param id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	h.getDocument(w, r, claims.UserID)
}

// GetPublicDocument godoc
// @Summary Метаданные публичного документа
// @Tags Public
// @Produce json
// @Param id path string true "ID документа"
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Документ не публичный"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /public/docs/{id} [get]
func (h *DocumentHandler) GetPublicDocument(w http.ResponseWriter, r *http.Request) {
	h.getDocument(w, r, "")
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request, actorID string) {
	document, err := h.DocumentService.GetDocument(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, requestresponse.DocumentResponse{Data: document})
}

// UpdateDocument godoc
// @Summary Изменение документа
// @Description Переименование, описание, перенос (folder_id, "" = в корень), публичность (только владелец)
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "ID документа"
// @Param body body requestresponse.UpdateDocumentRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id} [patch]
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	document, err := h.DocumentService.UpdateDocument(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.DocumentResponse{Data: document})
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Description Мягкое удаление; файлы всех версий удаляются из хранилища
// @Tags Documents
// @Produce json
// @Param id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	if err := h.DocumentService.DeleteDocument(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requestresponse.SuccessResponse{Message: "документ удалён"})
}

// UploadVersion godoc
// @Summary Загрузка новой версии
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "ID документа"
// @Param file formData file true "Файл новой версии"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.VersionResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 413 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/versions [post]
func (h *DocumentHandler) UploadVersion(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	version, err := h.DocumentService.UploadVersion(r.Context(), claims.UserID, chi.URLParam(r, "id"), upload)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, requestresponse.VersionResponse{Data: version})
}

// ListVersions godoc
// @Summary История версий документа
// @Tags Documents
// @Produce json
// @Param id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListVersionsResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/versions [get]
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	versions, err := h.DocumentService.ListVersions(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := requestresponse.ListVersionsResponse{Count: len(versions)}
	resp.Data.Versions = versions
	writeJSON(w, http.StatusOK, resp)
}

// Download godoc
// @Summary Скачивание текущей версии
// @Description Для S3 возвращается pre-signed ссылка, для локального хранилища сам файл
// @Tags Documents
// @Produce json,octet-stream
// @Param id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DownloadResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	h.download(w, r, claims.UserID)
}

// DownloadPublic godoc
// @Summary Скачивание публичного документа
// @Tags Public
// @Produce json,octet-stream
// @Param id path string true "ID документа"
// @Success 200 {object} requestresponse.DownloadResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /public/docs/{id}/download [get]
func (h *DocumentHandler) DownloadPublic(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "")
}

func (h *DocumentHandler) download(w http.ResponseWriter, r *http.Request, actorID string) {
	result, err := h.DocumentService.Download(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.URL != "" {
		resp := requestresponse.DownloadResponse{}
		resp.Data.URL = result.URL
		if h.presignTTL > 0 {
			resp.Data.ExpiresIn = h.presignTTL.String()
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	contentType := result.Document.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Document.Name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		log.Printf("[DocumentHandler] ошибка отправки файла %s: %v", result.Document.ID, err)
	}
}

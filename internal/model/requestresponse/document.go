package requestresponse

import (
	"dataroom-server/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UpdateDocumentRequest : частичное обновление документа.
// folder_id = "" переносит документ в корень.
type UpdateDocumentRequest struct {
	Name        *string `json:"name,omitempty" example:"Договор.pdf"`
	Description *string `json:"description,omitempty" example:"Подписанная версия"`
	FolderID    *string `json:"folder_id,omitempty" example:"7d3f2a10-9c1e-4b8a-a0b2-1c5e2f3d4a5b"`
	IsPublic    *bool   `json:"is_public,omitempty" example:"false"`
}

func (r UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

func (r UpdateDocumentRequest) Patch() model.DocumentPatch {
	patch := model.DocumentPatch{
		Name:        r.Name,
		Description: r.Description,
		IsPublic:    r.IsPublic,
	}
	if r.FolderID != nil {
		if *r.FolderID == "" {
			patch.ClearFolder = true
		} else {
			patch.FolderID = r.FolderID
		}
	}
	return patch
}

// DocumentResponse : один документ
type DocumentResponse struct {
	Data *model.Document `json:"data"`
}

// ListDocumentsResponse : ответ API со списком документов
type ListDocumentsResponse struct {
	Data struct {
		Docs []model.Document `json:"docs"`
	} `json:"data"`
	Count int `json:"count" example:"10"`
}

// VersionResponse : загруженная версия
type VersionResponse struct {
	Data *model.DocumentVersion `json:"data"`
}

// ListVersionsResponse : история версий документа
type ListVersionsResponse struct {
	Data struct {
		Versions []model.DocumentVersion `json:"versions"`
	} `json:"data"`
	Count int `json:"count" example:"3"`
}

// DownloadResponse : pre-signed ссылка на файл
type DownloadResponse struct {
	Data struct {
		URL       string `json:"url" example:"https://s3.example.com/dataroom/documents/..."`
		ExpiresIn string `json:"expires_in,omitempty" example:"15m0s"`
	} `json:"data"`
}

// SuccessResponse : стандартный ответ успешного выполнения операции
type SuccessResponse struct {
	Message string `json:"message" example:"Операция выполнена успешно"`
}

package requestresponse

import (
	"dataroom-server/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxImportItems = 100

type AuthorizationURLResponse struct {
	Data struct {
		URL string `json:"url" example:"https://accounts.google.com/o/oauth2/auth?..."`
	} `json:"data"`
}

type IntegrationResponse struct {
	Data *model.ExternalIntegration `json:"data"`
}

type IntegrationStatusResponse struct {
	Data *model.IntegrationStatus `json:"data"`
}

type RemotePageResponse struct {
	Data *model.RemotePage `json:"data"`
}

type RemoteItemResponse struct {
	Data *model.RemoteItem `json:"data"`
}

type StorageQuotaResponse struct {
	Data *model.StorageQuota `json:"data"`
}

// ImportRequest : max_depth = 0 означает значение из конфигурации
type ImportRequest struct {
	FileIDs        []string `json:"file_ids" example:"1AbCdEfGh,1XyZ"`
	IncludeFolders bool     `json:"include_folders" example:"true"`
	ParentFolderID *string  `json:"parent_folder_id,omitempty" example:"7d3f2a10-9c1e-4b8a-a0b2-1c5e2f3d4a5b"`
	MaxDepth       int      `json:"max_depth" example:"3"`
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FileIDs, validation.Required, validation.Length(1, maxImportItems), validation.Each(validation.Required)),
		validation.Field(&r.ParentFolderID, validation.NilOrNotEmpty),
		validation.Field(&r.MaxDepth, validation.Min(0)),
	)
}

func (r ImportRequest) Request() model.ImportRequest {
	return model.ImportRequest{
		FileIDs:        r.FileIDs,
		IncludeFolders: r.IncludeFolders,
		ParentFolderID: r.ParentFolderID,
		MaxDepth:       r.MaxDepth,
	}
}

type ImportResponse struct {
	Data *model.ImportReport `json:"data"`
}

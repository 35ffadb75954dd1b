package requestresponse

import (
	"dataroom-server/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateFolderRequest : parent_id не задан, значит папка в корне
type CreateFolderRequest struct {
	Name        string  `json:"name" example:"Сделка"`
	Description string  `json:"description" example:"Материалы для due diligence"`
	ParentID    *string `json:"parent_id,omitempty" example:"7d3f2a10-9c1e-4b8a-a0b2-1c5e2f3d4a5b"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.ParentID, validation.NilOrNotEmpty),
	)
}

func (r CreateFolderRequest) Folder() model.NewFolder {
	return model.NewFolder{Name: r.Name, Description: r.Description, ParentID: r.ParentID}
}

// UpdateFolderRequest : parent_id = "" переносит папку в корень
type UpdateFolderRequest struct {
	Name        *string `json:"name,omitempty" example:"Сделка 2024"`
	Description *string `json:"description,omitempty" example:"Закрыто"`
	ParentID    *string `json:"parent_id,omitempty" example:""`
}

func (r UpdateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

func (r UpdateFolderRequest) Patch() model.FolderPatch {
	patch := model.FolderPatch{Name: r.Name, Description: r.Description}
	if r.ParentID != nil {
		if *r.ParentID == "" {
			patch.ClearParent = true
		} else {
			patch.ParentID = r.ParentID
		}
	}
	return patch
}

type FolderResponse struct {
	Data *model.Folder `json:"data"`
}

type ListFoldersResponse struct {
	Data struct {
		Folders []model.Folder `json:"folders"`
	} `json:"data"`
	Count int `json:"count" example:"2"`
}

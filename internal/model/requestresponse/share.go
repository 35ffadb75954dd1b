package requestresponse

import (
	"dataroom-server/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateShareRequest : получатель и флаги прав; без флагов доступ только на чтение
type CreateShareRequest struct {
	UserID    string `json:"user_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	CanEdit   bool   `json:"can_edit" example:"true"`
	CanDelete bool   `json:"can_delete" example:"false"`
	CanShare  bool   `json:"can_share" example:"false"`
}

func (r CreateShareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
	)
}

func (r CreateShareRequest) Capabilities() model.Capabilities {
	return model.Capabilities{CanEdit: r.CanEdit, CanDelete: r.CanDelete, CanShare: r.CanShare}
}

// UpdateShareRequest : отсутствующие флаги не меняются
type UpdateShareRequest struct {
	CanEdit   *bool `json:"can_edit,omitempty" example:"true"`
	CanDelete *bool `json:"can_delete,omitempty"`
	CanShare  *bool `json:"can_share,omitempty"`
}

func (r UpdateShareRequest) Patch() model.CapabilitiesPatch {
	return model.CapabilitiesPatch{CanEdit: r.CanEdit, CanDelete: r.CanDelete, CanShare: r.CanShare}
}

type ShareResponse struct {
	Data *model.Share `json:"data"`
}

type ListSharesResponse struct {
	Data struct {
		Shares []model.Share `json:"shares"`
	} `json:"data"`
	Count int `json:"count" example:"1"`
}

// AccessResponse : результат проверки права на операцию
type AccessResponse struct {
	Data struct {
		ResourceType model.ResourceType `json:"resource_type" example:"document"`
		ResourceID   string             `json:"resource_id" example:"7d3f2a10-9c1e-4b8a-a0b2-1c5e2f3d4a5b"`
		Operation    model.Operation    `json:"operation" example:"edit"`
		Allowed      bool               `json:"allowed" example:"true"`
	} `json:"data"`
}

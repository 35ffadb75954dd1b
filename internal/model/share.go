package model

import (
	"fmt"
	"time"
)

type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceFolder   ResourceType = "folder"
)

func ParseResourceType(value string) (ResourceType, error) {
	switch ResourceType(value) {
	case ResourceDocument, ResourceFolder:
		return ResourceType(value), nil
	}
	return "", fmt.Errorf("неизвестный тип ресурса: %q", value)
}

type Operation string

const (
	OperationRead   Operation = "read"
	OperationEdit   Operation = "edit"
	OperationDelete Operation = "delete"
	OperationShare  Operation = "share"
)

func ParseOperation(value string) (Operation, error) {
	switch Operation(value) {
	case OperationRead, OperationEdit, OperationDelete, OperationShare:
		return Operation(value), nil
	}
	return "", fmt.Errorf("неизвестная операция: %q", value)
}

// Capabilities : флаги прав получателя. CanShare имеет смысл только для папок.
type Capabilities struct {
	CanEdit   bool `db:"can_edit" json:"can_edit"`
	CanDelete bool `db:"can_delete" json:"can_delete"`
	CanShare  bool `db:"can_share" json:"can_share"`
}

type CapabilitiesPatch struct {
	CanEdit   *bool
	CanDelete *bool
	CanShare  *bool
}

func (p CapabilitiesPatch) IsEmpty() bool {
	return p.CanEdit == nil && p.CanDelete == nil && p.CanShare == nil
}

// Apply : применяет только заданные поля
func (p CapabilitiesPatch) Apply(c Capabilities) Capabilities {
	if p.CanEdit != nil {
		c.CanEdit = *p.CanEdit
	}
	if p.CanDelete != nil {
		c.CanDelete = *p.CanDelete
	}
	if p.CanShare != nil {
		c.CanShare = *p.CanShare
	}
	return c
}

// Share : запись о шаринге документа или папки. Для документов CanShare всегда false.
type Share struct {
	ID           string       `db:"id" json:"id"`
	ResourceType ResourceType `db:"resource_type" json:"resource_type"`
	ResourceID   string       `db:"resource_id" json:"resource_id"`
	UserID       string       `db:"user_id" json:"user_id"`
	Capabilities
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package access

import (
	"context"
	"fmt"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
)

// Resource : то, о чём спрашивают движок. IsPublic учитывается только для документов.
type Resource struct {
	Type     model.ResourceType
	ID       string
	OwnerID  string
	IsPublic bool
}

func DocumentResource(document *model.Document) Resource {
	return Resource{
		Type:     model.ResourceDocument,
		ID:       document.ID,
		OwnerID:  document.OwnerID,
		IsPublic: document.IsPublic,
	}
}

func FolderResource(folder *model.Folder) Resource {
	return Resource{
		Type:    model.ResourceFolder,
		ID:      folder.ID,
		OwnerID: folder.OwnerID,
	}
}

// Engine : решает, может ли пользователь выполнить операцию над ресурсом.
// Состояния не хранит. Права не наследуются по дереву папок.
type Engine struct {
	shares ports.ShareRepository
}

func NewEngine(shares ports.ShareRepository) *Engine {
	return &Engine{shares: shares}
}

// CanPerform : отказ выражается через false, ошибка означает сбой хранилища
func (e *Engine) CanPerform(ctx context.Context, actorID string, resource Resource, operation model.Operation) (bool, error) {
	if actorID != "" && actorID == resource.OwnerID {
		return true, nil
	}

	switch resource.Type {
	case model.ResourceDocument:
		if operation == model.OperationShare {
			return false, nil
		}
		if operation == model.OperationRead && resource.IsPublic {
			return true, nil
		}
	case model.ResourceFolder:
	default:
		return false, nil
	}

	if actorID == "" {
		return false, nil
	}

	share, err := e.shares.FindShare(ctx, resource.Type, resource.ID, actorID)
	if err != nil {
		return false, apperror.Unavailable(fmt.Sprintf("[AccessEngine] ошибка поиска шаринга %s %s", resource.Type, resource.ID), err)
	}
	if share == nil {
		return false, nil
	}

	switch operation {
	case model.OperationRead:
		return true, nil
	case model.OperationEdit:
		return share.CanEdit, nil
	case model.OperationDelete:
		return share.CanDelete, nil
	case model.OperationShare:
		return resource.Type == model.ResourceFolder && share.CanShare, nil
	}

	return false, nil
}

// CanMove : перенос требует edit и на переносимом ресурсе, и на папке назначения
func (e *Engine) CanMove(ctx context.Context, actorID string, resource, destination Resource) (bool, error) {
	allowed, err := e.CanPerform(ctx, actorID, resource, model.OperationEdit)
	if err != nil || !allowed {
		return false, err
	}
	return e.CanPerform(ctx, actorID, destination, model.OperationEdit)
}

// CanCreateUnder : создание дочернего ресурса требует edit на родителе
func (e *Engine) CanCreateUnder(ctx context.Context, actorID string, parent Resource) (bool, error) {
	return e.CanPerform(ctx, actorID, parent, model.OperationEdit)
}

package service

import (
	"context"
	"log"

	"dataroom-server/internal/access"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"
)

// resources : загрузка ресурсов с проверкой мягкого удаления и прав
type resources struct {
	documents ports.DocumentRepository
	folders   ports.FolderRepository
	engine    *access.Engine
}

func (r resources) document(ctx context.Context, id string) (*model.Document, error) {
	document, err := r.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if document.IsDeleted {
		return nil, apperror.NotFound("документ %s не найден", id)
	}
	return document, nil
}

func (r resources) folder(ctx context.Context, id string) (*model.Folder, error) {
	folder, err := r.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.IsDeleted {
		return nil, apperror.NotFound("папка %s не найдена", id)
	}
	return folder, nil
}

func (r resources) resource(ctx context.Context, resourceType model.ResourceType, id string) (access.Resource, error) {
	switch resourceType {
	case model.ResourceDocument:
		document, err := r.document(ctx, id)
		if err != nil {
			return access.Resource{}, err
		}
		return access.DocumentResource(document), nil
	case model.ResourceFolder:
		folder, err := r.folder(ctx, id)
		if err != nil {
			return access.Resource{}, err
		}
		return access.FolderResource(folder), nil
	}
	return access.Resource{}, apperror.Validation("неизвестный тип ресурса: %q", resourceType)
}

// authorize : отказ движка превращается в Forbidden
func (r resources) authorize(ctx context.Context, actorID string, resource access.Resource, operation model.Operation) error {
	allowed, err := r.engine.CanPerform(ctx, actorID, resource, operation)
	if err != nil {
		return err
	}
	if !allowed {
		log.Printf("[Access] %s: %s %s %s запрещено", actorID, operation, resource.Type, resource.ID)
		return apperror.Forbidden("нет права %s на %s %s", operation, resource.Type, resource.ID)
	}
	return nil
}

// authorizeCreateUnder : создание внутри папки требует edit на ней
func (r resources) authorizeCreateUnder(ctx context.Context, actorID string, parent *model.Folder) error {
	allowed, err := r.engine.CanCreateUnder(ctx, actorID, access.FolderResource(parent))
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("нет права создавать в папке %s", parent.ID)
	}
	return nil
}

func (r resources) authorizeMove(ctx context.Context, actorID string, resource access.Resource, destination *model.Folder) error {
	allowed, err := r.engine.CanMove(ctx, actorID, resource, access.FolderResource(destination))
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.Forbidden("нет права перенести %s %s в папку %s", resource.Type, resource.ID, destination.ID)
	}
	return nil
}

// invalid : ошибки ozzo-validation отдаются клиенту как 422
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return apperror.Validation("%v", err)
}

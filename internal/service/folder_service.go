package service

import (
	"context"
	"log"
	"strings"

	"dataroom-server/internal/access"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"

	"github.com/google/uuid"
)

type FolderService struct {
	resources
	shares ports.ShareRepository
	locker ports.Locker
}

func NewFolderService(
	documents ports.DocumentRepository,
	folders ports.FolderRepository,
	shares ports.ShareRepository,
	engine *access.Engine,
	locker ports.Locker,
) *FolderService {
	return &FolderService{
		resources: resources{documents: documents, folders: folders, engine: engine},
		shares:    shares,
		locker:    locker,
	}
}

// folderTreeLockKey : переносы в дереве одного владельца сериализуются, чтобы не собрать цикл
func folderTreeLockKey(ownerID string) string { return "folder-tree:" + ownerID }

func (s *FolderService) CreateFolder(ctx context.Context, actorID string, input model.NewFolder) (*model.Folder, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("имя папки обязательно")
	}

	if input.ParentID != nil {
		parent, err := s.folder(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if err := s.authorizeCreateUnder(ctx, actorID, parent); err != nil {
			return nil, err
		}
	}

	folder := &model.Folder{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		OwnerID:     actorID,
		ParentID:    input.ParentID,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	log.Printf("[FolderService] папка %s (%s) создана пользователем %s", folder.ID, folder.Name, actorID)
	return folder, nil
}

func (s *FolderService) GetFolder(ctx context.Context, actorID, id string) (*model.Folder, error) {
	folder, err := s.folder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, access.FolderResource(folder), model.OperationRead); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) ListFolders(ctx context.Context, actorID string, parentID *string) ([]model.Folder, error) {
	return s.folders.ListByOwner(ctx, actorID, parentID)
}

func (s *FolderService) ListSharedFolders(ctx context.Context, actorID string) ([]model.Folder, error) {
	ids, err := s.shares.ListResourceIDsForUser(ctx, model.ResourceFolder, actorID)
	if err != nil {
		return nil, err
	}
	return s.folders.ListByIDs(ctx, ids)
}

// UpdateFolder : перенос проверяет права на обе папки и отсутствие цикла
func (s *FolderService) UpdateFolder(ctx context.Context, actorID, id string, patch model.FolderPatch) (*model.Folder, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperror.Validation("имя папки не может быть пустым")
	}

	folder, err := s.folder(ctx, id)
	if err != nil {
		return nil, err
	}
	resource := access.FolderResource(folder)
	if err := s.authorize(ctx, actorID, resource, model.OperationEdit); err != nil {
		return nil, err
	}

	moving := patch.ParentID != nil && !patch.ClearParent
	if moving {
		if *patch.ParentID == id {
			return nil, apperror.Validation("папка не может быть вложена сама в себя")
		}
		destination, err := s.folder(ctx, *patch.ParentID)
		if err != nil {
			return nil, err
		}
		if err := s.authorizeMove(ctx, actorID, resource, destination); err != nil {
			return nil, err
		}
	}

	var updated *model.Folder
	err = s.locker.WithLock(ctx, folderTreeLockKey(folder.OwnerID), func(ctx context.Context) error {
		current, err := s.folder(ctx, id)
		if err != nil {
			return err
		}

		if moving {
			if err := s.checkNoCycle(ctx, id, *patch.ParentID); err != nil {
				return err
			}
			current.ParentID = patch.ParentID
		} else if patch.ClearParent {
			current.ParentID = nil
		}
		if patch.Name != nil {
			current.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			current.Description = *patch.Description
		}

		if err := s.folders.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkNoCycle : поднимается от новой родительской папки к корню; глубина линейна
func (s *FolderService) checkNoCycle(ctx context.Context, id, parentID string) error {
	visited := map[string]struct{}{}
	current := &parentID

	for current != nil {
		if *current == id {
			return apperror.Validation("перенос папки %s создаёт цикл", id)
		}
		if _, seen := visited[*current]; seen {
			return apperror.Validation("в дереве папок уже есть цикл на %s", *current)
		}
		visited[*current] = struct{}{}

		ancestor, err := s.folders.GetByID(ctx, *current)
		if err != nil {
			return err
		}
		current = ancestor.ParentID
	}
	return nil
}

// DeleteFolder : мягкое удаление без каскада на вложенные папки и документы
func (s *FolderService) DeleteFolder(ctx context.Context, actorID, id string) error {
	folder, err := s.folder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, access.FolderResource(folder), model.OperationDelete); err != nil {
		return err
	}

	if err := s.folders.SoftDelete(ctx, id); err != nil {
		return err
	}

	log.Printf("[FolderService] папка %s удалена пользователем %s", id, actorID)
	return nil
}

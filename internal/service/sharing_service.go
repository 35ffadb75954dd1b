package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"dataroom-server/internal/access"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"

	"github.com/google/uuid"
)

type SharingService struct {
	resources
	shares ports.ShareRepository
	users  ports.UserRepository
	locker ports.Locker
}

func NewSharingService(
	documents ports.DocumentRepository,
	folders ports.FolderRepository,
	shares ports.ShareRepository,
	users ports.UserRepository,
	engine *access.Engine,
	locker ports.Locker,
) *SharingService {
	return &SharingService{
		resources: resources{documents: documents, folders: folders, engine: engine},
		shares:    shares,
		users:     users,
		locker:    locker,
	}
}

func shareLockKey(resourceType model.ResourceType, resourceID, userID string) string {
	return fmt.Sprintf("share:%s:%s:%s", resourceType, resourceID, userID)
}

func (s *SharingService) CheckAccess(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string, operation model.Operation) (bool, error) {
	resource, err := s.resource(ctx, resourceType, resourceID)
	if err != nil {
		return false, err
	}
	return s.engine.CanPerform(ctx, actorID, resource, operation)
}

// CreateShare : не владелец с can_share не может выдать больше прав, чем имеет сам
func (s *SharingService) CreateShare(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID, userID string, capabilities model.Capabilities) (*model.Share, error) {
	resource, err := s.resource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, resource, model.OperationShare); err != nil {
		return nil, err
	}

	if userID == resource.OwnerID {
		return nil, apperror.Validation("нельзя расшарить ресурс его владельцу")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Validation("пользователь %s не существует", userID)
		}
		return nil, err
	}

	if resourceType == model.ResourceDocument {
		capabilities.CanShare = false
	}
	if actorID != resource.OwnerID {
		if err := s.checkGrantable(ctx, actorID, resource, capabilities); err != nil {
			return nil, err
		}
	}

	share := &model.Share{
		ID:           uuid.NewString(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserID:       userID,
		Capabilities: capabilities,
	}

	err = s.locker.WithLock(ctx, shareLockKey(resourceType, resourceID, userID), func(ctx context.Context) error {
		existing, err := s.shares.FindShare(ctx, resourceType, resourceID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("%s %s уже расшарен пользователю %s", resourceType, resourceID, userID)
		}
		return s.shares.Create(ctx, share)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[SharingService] %s %s расшарен пользователю %s (%s)", resourceType, resourceID, userID, actorID)
	return share, nil
}

func (s *SharingService) checkGrantable(ctx context.Context, actorID string, resource access.Resource, capabilities model.Capabilities) error {
	own, err := s.shares.FindShare(ctx, resource.Type, resource.ID, actorID)
	if err != nil {
		return apperror.Unavailable("[SharingService] ошибка поиска шаринга", err)
	}
	if own == nil {
		return apperror.Forbidden("нет права share на %s %s", resource.Type, resource.ID)
	}
	if (capabilities.CanEdit && !own.CanEdit) ||
		(capabilities.CanDelete && !own.CanDelete) ||
		(capabilities.CanShare && !own.CanShare) {
		return apperror.Forbidden("нельзя выдать права шире собственных")
	}
	return nil
}

// ownedShare : шаринг и его ресурс; управлять шарингами может только владелец ресурса
func (s *SharingService) ownedShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string) (*model.Share, error) {
	share, err := s.shares.GetByID(ctx, resourceType, shareID)
	if err != nil {
		return nil, err
	}
	resource, err := s.resource(ctx, resourceType, share.ResourceID)
	if err != nil {
		return nil, err
	}
	if actorID != resource.OwnerID {
		return nil, apperror.Forbidden("управлять шарингами %s %s может только владелец", resource.Type, resource.ID)
	}
	return share, nil
}

func (s *SharingService) UpdateShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string, patch model.CapabilitiesPatch) (*model.Share, error) {
	share, err := s.ownedShare(ctx, actorID, resourceType, shareID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return share, nil
	}

	share.Capabilities = patch.Apply(share.Capabilities)
	if resourceType == model.ResourceDocument {
		share.CanShare = false
	}

	if err := s.shares.Update(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (s *SharingService) RemoveShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string) error {
	share, err := s.ownedShare(ctx, actorID, resourceType, shareID)
	if err != nil {
		return err
	}
	if err := s.shares.Delete(ctx, resourceType, shareID); err != nil {
		return err
	}

	log.Printf("[SharingService] шаринг %s %s пользователю %s удалён", resourceType, share.ResourceID, share.UserID)
	return nil
}

func (s *SharingService) ListShares(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string) ([]model.Share, error) {
	resource, err := s.resource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if actorID != resource.OwnerID {
		return nil, apperror.Forbidden("список шарингов %s %s доступен только владельцу", resourceType, resourceID)
	}
	return s.shares.ListByResource(ctx, resourceType, resourceID)
}

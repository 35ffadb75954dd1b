package kv

import (
	"context"
	"errors"
	"sort"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

func shareKey(resourceType model.ResourceType, id string) string {
	return "share:" + string(resourceType) + ":" + id
}

// shareIndexKey : уникальность пары (ресурс, пользователь)
func shareIndexKey(resourceType model.ResourceType, resourceID, userID string) string {
	return "share:index:" + string(resourceType) + ":" + resourceID + ":" + userID
}

func resourceSharesKey(resourceType model.ResourceType, resourceID string) string {
	return "shares:resource:" + string(resourceType) + ":" + resourceID
}

func userSharesKey(resourceType model.ResourceType, userID string) string {
	return "shares:user:" + string(resourceType) + ":" + userID
}

func checkResourceType(resourceType model.ResourceType) error {
	if _, err := model.ParseResourceType(string(resourceType)); err != nil {
		return apperror.Validation("%v", err)
	}
	return nil
}

type ShareRepository struct {
	store
}

func NewShareRepository(rdb *config.RedisClient) *ShareRepository {
	return &ShareRepository{newStore(rdb)}
}

func (r *ShareRepository) FindShare(ctx context.Context, resourceType model.ResourceType, resourceID, userID string) (*model.Share, error) {
	if err := checkResourceType(resourceType); err != nil {
		return nil, err
	}

	id, err := r.client.Get(ctx, shareIndexKey(resourceType, resourceID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("[ShareRepo] ошибка поиска шаринга", err)
	}

	share, err := r.GetByID(ctx, resourceType, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, nil
	}
	return share, err
}

func (r *ShareRepository) GetByID(ctx context.Context, resourceType model.ResourceType, id string) (*model.Share, error) {
	if err := checkResourceType(resourceType); err != nil {
		return nil, err
	}

	var share model.Share
	if err := r.getJSON(ctx, shareKey(resourceType, id), &share, "[ShareRepo] шаринг "+id); err != nil {
		return nil, err
	}
	return &share, nil
}

// Create : повторный шаринг того же ресурса тому же пользователю даёт Conflict
func (r *ShareRepository) Create(ctx context.Context, share *model.Share) error {
	if err := checkResourceType(share.ResourceType); err != nil {
		return err
	}
	if share.ResourceType == model.ResourceDocument {
		share.CanShare = false
	}

	now := time.Now().UTC()
	share.CreatedAt, share.UpdatedAt = now, now

	data, err := marshal(share, "[ShareRepo] шаринг")
	if err != nil {
		return err
	}

	indexKey := shareIndexKey(share.ResourceType, share.ResourceID, share.UserID)
	reserved, err := r.client.SetNX(ctx, indexKey, share.ID, 0).Result()
	if err != nil {
		return unavailable("[ShareRepo] ошибка резервирования шаринга", err)
	}
	if !reserved {
		return apperror.Conflict("[ShareRepo] ресурс %s уже расшарен пользователю %s", share.ResourceID, share.UserID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, shareKey(share.ResourceType, share.ID), data, 0)
		pipe.SAdd(ctx, resourceSharesKey(share.ResourceType, share.ResourceID), share.ID)
		pipe.SAdd(ctx, userSharesKey(share.ResourceType, share.UserID), share.ResourceID)
		return nil
	})
	if err != nil {
		r.client.Del(context.WithoutCancel(ctx), indexKey)
		return unavailable("[ShareRepo] ошибка вставки шаринга", err)
	}
	return nil
}

// Update : меняются только флаги прав
func (r *ShareRepository) Update(ctx context.Context, share *model.Share) error {
	current, err := r.GetByID(ctx, share.ResourceType, share.ID)
	if err != nil {
		return err
	}

	current.Capabilities = share.Capabilities
	if current.ResourceType == model.ResourceDocument {
		current.CanShare = false
	}
	current.UpdatedAt = time.Now().UTC()

	data, err := marshal(current, "[ShareRepo] шаринг")
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, shareKey(current.ResourceType, current.ID), data, 0).Err(); err != nil {
		return unavailable("[ShareRepo] не удалось обновить шаринг", err)
	}

	*share = *current
	return nil
}

func (r *ShareRepository) Delete(ctx context.Context, resourceType model.ResourceType, id string) error {
	share, err := r.GetByID(ctx, resourceType, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, shareKey(resourceType, id))
		pipe.Del(ctx, shareIndexKey(resourceType, share.ResourceID, share.UserID))
		pipe.SRem(ctx, resourceSharesKey(resourceType, share.ResourceID), id)
		pipe.SRem(ctx, userSharesKey(resourceType, share.UserID), share.ResourceID)
		return nil
	})
	if err != nil {
		return unavailable("[ShareRepo] ошибка удаления шаринга", err)
	}
	return nil
}

func (r *ShareRepository) ListByResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]model.Share, error) {
	if err := checkResourceType(resourceType); err != nil {
		return nil, err
	}

	ids, err := r.client.SMembers(ctx, resourceSharesKey(resourceType, resourceID)).Result()
	if err != nil {
		return nil, unavailable("[ShareRepo] ошибка получения списка шарингов", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, shareKey(resourceType, id))
	}

	shares, err := mgetJSON[model.Share](ctx, r.store, keys, "[ShareRepo] шаринги")
	if err != nil {
		return nil, err
	}
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].CreatedAt.Before(shares[j].CreatedAt)
		}
		return shares[i].ID < shares[j].ID
	})
	return shares, nil
}

func (r *ShareRepository) ListResourceIDsForUser(ctx context.Context, resourceType model.ResourceType, userID string) ([]string, error) {
	if err := checkResourceType(resourceType); err != nil {
		return nil, err
	}

	ids, err := r.client.SMembers(ctx, userSharesKey(resourceType, userID)).Result()
	if err != nil {
		return nil, unavailable("[ShareRepo] ошибка получения ресурсов пользователя", err)
	}
	return ids, nil
}

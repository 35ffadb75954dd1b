package kv

import (
	"context"
	"sort"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

func folderKey(id string) string { return "folder:" + id }

func ownerFoldersKey(ownerID string) string { return "folders:owner:" + ownerID }

type FolderRepository struct {
	store
}

func NewFolderRepository(rdb *config.RedisClient) *FolderRepository {
	return &FolderRepository{newStore(rdb)}
}

func (r *FolderRepository) Create(ctx context.Context, folder *model.Folder) error {
	now := time.Now().UTC()
	folder.CreatedAt, folder.UpdatedAt = now, now

	data, err := marshal(folder, "[FolderRepo] папка")
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, folderKey(folder.ID), data, 0)
		pipe.SAdd(ctx, ownerFoldersKey(folder.OwnerID), folder.ID)
		return nil
	})
	if err != nil {
		return unavailable("[FolderRepo] ошибка вставки папки", err)
	}
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	var folder model.Folder
	if err := r.getJSON(ctx, folderKey(id), &folder, "[FolderRepo] папка "+id); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	ids, err := r.client.SMembers(ctx, ownerFoldersKey(ownerID)).Result()
	if err != nil {
		return nil, unavailable("[FolderRepo] ошибка получения списка папок", err)
	}

	all, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	folders := make([]model.Folder, 0, len(all))
	for _, folder := range all {
		if sameParent(folder.ParentID, parentID) {
			folders = append(folders, folder)
		}
	}
	return folders, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *FolderRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Folder, error) {
	return r.load(ctx, ids)
}

// load : неудалённые папки, отсортированные по имени
func (r *FolderRepository) load(ctx context.Context, ids []string) ([]model.Folder, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, folderKey(id))
	}

	records, err := mgetJSON[model.Folder](ctx, r.store, keys, "[FolderRepo] папки")
	if err != nil {
		return nil, err
	}

	folders := make([]model.Folder, 0, len(records))
	for _, folder := range records {
		if !folder.IsDeleted {
			folders = append(folders, folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].ID < folders[j].ID
	})
	return folders, nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *model.Folder) error {
	current, err := r.GetByID(ctx, folder.ID)
	if err != nil {
		return err
	}

	folder.OwnerID = current.OwnerID
	folder.CreatedAt = current.CreatedAt
	folder.UpdatedAt = time.Now().UTC()
	return r.save(ctx, folder)
}

func (r *FolderRepository) SoftDelete(ctx context.Context, id string) error {
	folder, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	folder.IsDeleted = true
	folder.UpdatedAt = time.Now().UTC()
	return r.save(ctx, folder)
}

func (r *FolderRepository) save(ctx context.Context, folder *model.Folder) error {
	data, err := marshal(folder, "[FolderRepo] папка")
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, folderKey(folder.ID), data, 0).Err(); err != nil {
		return unavailable("[FolderRepo] не удалось сохранить папку", err)
	}
	return nil
}

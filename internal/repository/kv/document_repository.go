package kv

import (
	"context"
	"sort"
	"strings"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

func documentKey(id string) string { return "document:" + id }

func ownerDocumentsKey(ownerID string) string { return "documents:owner:" + ownerID }

type DocumentRepository struct {
	store
}

func NewDocumentRepository(rdb *config.RedisClient) *DocumentRepository {
	return &DocumentRepository{newStore(rdb)}
}

func (r *DocumentRepository) Create(ctx context.Context, document *model.Document) error {
	now := time.Now().UTC()
	document.CreatedAt, document.UpdatedAt = now, now

	data, err := marshal(document, "[DocumentRepo] документ")
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, documentKey(document.ID), data, 0)
		pipe.SAdd(ctx, ownerDocumentsKey(document.OwnerID), document.ID)
		return nil
	})
	if err != nil {
		return unavailable("[DocumentRepo] ошибка вставки документа", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var document model.Document
	if err := r.getJSON(ctx, documentKey(id), &document, "[DocumentRepo] документ "+id); err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string, filter model.DocumentFilter) ([]model.Document, error) {
	ids, err := r.client.SMembers(ctx, ownerDocumentsKey(ownerID)).Result()
	if err != nil {
		return nil, unavailable("[DocumentRepo] не удалось получить список документов", err)
	}

	all, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(filter.Search)
	documents := make([]model.Document, 0, len(all))
	for _, document := range all {
		if filter.FolderID != nil && !sameParent(document.FolderID, filter.FolderID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(document.Name), search) {
			continue
		}
		documents = append(documents, document)
	}
	return documents, nil
}

func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	return r.load(ctx, ids)
}

// load : неудалённые документы, новые первыми
func (r *DocumentRepository) load(ctx context.Context, ids []string) ([]model.Document, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, documentKey(id))
	}

	records, err := mgetJSON[model.Document](ctx, r.store, keys, "[DocumentRepo] документы")
	if err != nil {
		return nil, err
	}

	documents := make([]model.Document, 0, len(records))
	for _, document := range records {
		if !document.IsDeleted {
			documents = append(documents, document)
		}
	}
	sort.Slice(documents, func(i, j int) bool {
		if !documents[i].CreatedAt.Equal(documents[j].CreatedAt) {
			return documents[i].CreatedAt.After(documents[j].CreatedAt)
		}
		return documents[i].ID < documents[j].ID
	})
	return documents, nil
}

func (r *DocumentRepository) Update(ctx context.Context, document *model.Document) error {
	current, err := r.GetByID(ctx, document.ID)
	if err != nil {
		return err
	}

	document.OwnerID = current.OwnerID
	document.CreatedAt = current.CreatedAt
	document.UpdatedAt = time.Now().UTC()
	return r.save(ctx, document)
}

// SoftDelete помечает документ удалённым
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	document, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	document.IsDeleted = true
	document.UpdatedAt = time.Now().UTC()
	return r.save(ctx, document)
}

// Delete стирает документ вместе с записью в индексе владельца
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	document, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, documentKey(id))
		pipe.SRem(ctx, ownerDocumentsKey(document.OwnerID), id)
		return nil
	})
	if err != nil {
		return unavailable("[DocumentRepo] ошибка удаления документа", err)
	}
	return nil
}

func (r *DocumentRepository) save(ctx context.Context, document *model.Document) error {
	data, err := marshal(document, "[DocumentRepo] документ")
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, documentKey(document.ID), data, 0).Err(); err != nil {
		return unavailable("[DocumentRepo] не удалось сохранить документ", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/model"
	"dataroom-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// CacheRepository : cache-aside метаданных документов поверх Postgres
type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetDocument(ctx context.Context, document *model.Document) error {
	data, err := json.Marshal(document)
	if err != nil {
		return util.LogError("[CacheRepo] ошибка сериализации документа", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(document.ID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("[CacheRepo] неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	val, err := r.client.Client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("[CacheRepo] ошибка получения документа из Redis", err)
	}

	var document model.Document
	if err := json.Unmarshal([]byte(val), &document); err != nil {
		return nil, util.LogError("[CacheRepo] ошибка десериализации документа из кэша", err)
	}
	return &document, nil
}

func (r *CacheRepository) DeleteDocument(ctx context.Context, id string) error {
	if err := r.client.Client.Del(ctx, r.key(id)).Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка удаления документа из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(id string) string {
	return fmt.Sprintf("cache:document:%s", id)
}

// NoopCache : используется, когда метаданные и так живут в Redis
type NoopCache struct{}

func (NoopCache) SetDocument(context.Context, *model.Document) error           { return nil }
func (NoopCache) GetDocument(context.Context, string) (*model.Document, error) { return nil, nil }
func (NoopCache) DeleteDocument(context.Context, string) error                 { return nil }

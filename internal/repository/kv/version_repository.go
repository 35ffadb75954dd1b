package kv

import (
	"context"
	"strconv"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

func versionKey(id string) string { return "version:" + id }

// documentVersionsKey : sorted set, score равен номеру версии
func documentVersionsKey(documentID string) string { return "versions:" + documentID }

type VersionRepository struct {
	store
}

func NewVersionRepository(rdb *config.RedisClient) *VersionRepository {
	return &VersionRepository{newStore(rdb)}
}

// appendScript : проверка номера и запись версии одной операцией
const appendScript = `
if #redis.call("ZRANGEBYSCORE", KEYS[1], ARGV[1], ARGV[1]) > 0 then
	return 0
end
redis.call("SET", KEYS[2], ARGV[3])
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[2])
return 1
`

var appendVersion = redis.NewScript(appendScript)

// Append : номер версии уникален в пределах документа
func (r *VersionRepository) Append(ctx context.Context, version *model.DocumentVersion) error {
	version.CreatedAt = time.Now().UTC()

	data, err := marshal(version, "[VersionRepo] версия")
	if err != nil {
		return err
	}

	added, err := appendVersion.Run(ctx, r.client,
		[]string{documentVersionsKey(version.DocumentID), versionKey(version.ID)},
		scoreString(version.VersionNumber), version.ID, data,
	).Int()
	if err != nil {
		return unavailable("[VersionRepo] ошибка вставки версии", err)
	}
	if added == 0 {
		return apperror.Conflict("[VersionRepo] версия %d документа %s уже существует", version.VersionNumber, version.DocumentID)
	}
	return nil
}

func scoreString(n int) string {
	return strconv.Itoa(n)
}

func (r *VersionRepository) LatestVersionNumber(ctx context.Context, documentID string) (int, error) {
	latest, err := r.client.ZRevRangeWithScores(ctx, documentVersionsKey(documentID), 0, 0).Result()
	if err != nil {
		return 0, unavailable("[VersionRepo] ошибка получения номера версии", err)
	}
	if len(latest) == 0 {
		return 0, nil
	}
	return int(latest[0].Score), nil
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	ids, err := r.client.ZRevRange(ctx, documentVersionsKey(documentID), 0, -1).Result()
	if err != nil {
		return nil, unavailable("[VersionRepo] ошибка получения версий", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, versionKey(id))
	}
	return mgetJSON[model.DocumentVersion](ctx, r.store, keys, "[VersionRepo] версии")
}

// Delete : компенсация неудачной загрузки версии
func (r *VersionRepository) Delete(ctx context.Context, documentID, versionID string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, documentVersionsKey(documentID), versionID)
		pipe.Del(ctx, versionKey(versionID))
		return nil
	})
	if err != nil {
		return unavailable("[VersionRepo] ошибка удаления версии", err)
	}
	if removed.Val() == 0 {
		return apperror.NotFound("[VersionRepo] версия %s: не найдено", versionID)
	}
	return nil
}

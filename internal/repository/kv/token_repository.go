package kv

import (
	"context"
	"errors"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

func refreshTokenKey(id string) string { return "refresh_token:" + id }

type refreshTokenRecord struct {
	model.RefreshToken
	TokenHash string `json:"token_hash"`
}

// JWTRepository : refresh-токены живут в Redis до истечения срока
type JWTRepository struct {
	store
}

func NewJWTRepository(rdb *config.RedisClient) *JWTRepository {
	return &JWTRepository{newStore(rdb)}
}

func (r *JWTRepository) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	token.CreatedAt = time.Now().UTC()

	data, err := marshal(refreshTokenRecord{RefreshToken: *token, TokenHash: token.TokenHash}, "[JWTRepo] рефреш токен")
	if err != nil {
		return err
	}

	ttl := time.Until(token.ExpireAt)
	if ttl <= 0 {
		return apperror.Validation("[JWTRepo] рефреш токен уже истёк")
	}

	if err := r.client.Set(ctx, refreshTokenKey(token.ID), data, ttl).Err(); err != nil {
		return unavailable("[JWTRepo] ошибка вставки рефреш токена", err)
	}
	return nil
}

func (r *JWTRepository) FindByID(ctx context.Context, id string) (*model.RefreshToken, error) {
	var record refreshTokenRecord
	if err := r.getJSON(ctx, refreshTokenKey(id), &record, "[JWTRepo] рефреш токен"); err != nil {
		return nil, err
	}

	token := record.RefreshToken
	token.TokenHash = record.TokenHash
	return &token, nil
}

// MarkRefreshTokenUsedByID : WATCH/MULTI, чтобы два одновременных refresh не прошли оба
func (r *JWTRepository) MarkRefreshTokenUsedByID(ctx context.Context, id string) error {
	key := refreshTokenKey(id)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		var record refreshTokenRecord
		if err := readJSON(ctx, tx, key, &record, "[JWTRepo] рефреш токен"); err != nil {
			return err
		}
		if record.Used {
			return apperror.NotFound("[JWTRepo] рефреш токен: не найдено")
		}

		record.Used = true
		data, err := marshal(record, "[JWTRepo] рефреш токен")
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return apperror.Conflict("[JWTRepo] рефреш токен изменён параллельно")
	}
	return apperror.Unavailable("[JWTRepo] не удалось обновить рефреш токен", err)
}

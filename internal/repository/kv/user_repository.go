package kv

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/redis/go-redis/v9"
)

const usersIndexKey = "users:all"

func userKey(id string) string { return "user:" + id }

func userEmailKey(email string) string { return "user:email:" + strings.ToLower(email) }

func userUsernameKey(username string) string { return "user:username:" + strings.ToLower(username) }

func userGoogleKey(googleID string) string { return "user:google:" + googleID }

// userRecord : в model.User пароль и google_id скрыты от JSON, а в Redis их нужно хранить
type userRecord struct {
	model.User
	HashedPassword *string `json:"hashed_password"`
	GoogleID       *string `json:"google_id"`
}

func newUserRecord(user *model.User) userRecord {
	return userRecord{User: *user, HashedPassword: user.HashedPassword, GoogleID: user.GoogleID}
}

func (r userRecord) toModel() *model.User {
	user := r.User
	user.HashedPassword = r.HashedPassword
	user.GoogleID = r.GoogleID
	return &user
}

type UserRepository struct {
	store
}

func NewUserRepository(rdb *config.RedisClient) *UserRepository {
	return &UserRepository{newStore(rdb)}
}

// Create : email и username резервируются через SETNX, при конфликте резерв снимается
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	reserved, err := r.reserveIndexes(ctx, user.ID, indexKeys(user))
	if err != nil {
		return err
	}

	data, err := marshal(newUserRecord(user), "[UserRepo] пользователь")
	if err != nil {
		r.client.Del(ctx, reserved...)
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(user.ID), data, 0)
		pipe.ZAdd(ctx, usersIndexKey, redis.Z{Score: float64(now.UnixMicro()), Member: user.ID})
		return nil
	})
	if err != nil {
		r.client.Del(ctx, reserved...)
		return unavailable("[UserRepo] ошибка вставки пользователя", err)
	}
	return nil
}

func indexKeys(user *model.User) []string {
	keys := []string{userEmailKey(user.Email), userUsernameKey(user.Username)}
	if user.GoogleID != nil && *user.GoogleID != "" {
		keys = append(keys, userGoogleKey(*user.GoogleID))
	}
	return keys
}

func (r *UserRepository) reserveIndexes(ctx context.Context, id string, keys []string) ([]string, error) {
	reserved := make([]string, 0, len(keys))
	for _, key := range keys {
		ok, err := r.client.SetNX(ctx, key, id, 0).Result()
		if err != nil {
			r.client.Del(ctx, reserved...)
			return nil, unavailable("[UserRepo] ошибка резервирования индекса", err)
		}
		if !ok {
			if len(reserved) > 0 {
				r.client.Del(ctx, reserved...)
			}
			return nil, apperror.Conflict("[UserRepo] пользователь: запись уже существует")
		}
		reserved = append(reserved, key)
	}
	return reserved, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var record userRecord
	if err := r.getJSON(ctx, userKey(id), &record, "[UserRepo] пользователь"); err != nil {
		return nil, err
	}
	return record.toModel(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findByIndex(ctx, userEmailKey(email))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findByIndex(ctx, userUsernameKey(username))
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findByIndex(ctx, userGoogleKey(googleID))
}

func (r *UserRepository) findByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	id, err := r.client.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NotFound("[UserRepo] пользователь: не найдено")
	}
	if err != nil {
		return nil, unavailable("[UserRepo] пользователь", err)
	}
	return r.FindByID(ctx, id)
}

// Update : при смене email/username/google_id переносит индексы
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	current, err := r.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}

	oldKeys := indexKeys(current)
	newKeys := indexKeys(user)

	added := difference(newKeys, oldKeys)
	reserved, err := r.reserveIndexes(ctx, user.ID, added)
	if err != nil {
		return err
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	data, err := marshal(newUserRecord(user), "[UserRepo] пользователь")
	if err != nil {
		r.client.Del(ctx, reserved...)
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(user.ID), data, 0)
		if removed := difference(oldKeys, newKeys); len(removed) > 0 {
			pipe.Del(ctx, removed...)
		}
		return nil
	})
	if err != nil {
		if len(reserved) > 0 {
			r.client.Del(ctx, reserved...)
		}
		return unavailable("[UserRepo] не удалось обновить пользователя", err)
	}
	return nil
}

func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, item := range b {
		set[item] = struct{}{}
	}
	result := make([]string, 0)
	for _, item := range a {
		if _, ok := set[item]; !ok {
			result = append(result, item)
		}
	}
	return result
}

// List : курсор это score (UnixMicro создания) последнего пользователя страницы
func (r *UserRepository) List(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	from := "-inf"
	if cursor != "" {
		if _, err := strconv.ParseInt(cursor, 10, 64); err != nil {
			return nil, "", apperror.Validation("[UserRepo] неверный курсор: %v", err)
		}
		from = "(" + cursor
	}

	entries, err := r.client.ZRangeByScoreWithScores(ctx, usersIndexKey, &redis.ZRangeBy{
		Min:   from,
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, "", unavailable("[UserRepo] ошибка получения списка пользователей", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, userKey(entry.Member.(string)))
	}

	records, err := mgetJSON[userRecord](ctx, r.store, keys, "[UserRepo] пользователи")
	if err != nil {
		return nil, "", err
	}

	users := make([]*model.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.toModel())
	}

	var nextCursor string
	if limit > 0 && len(entries) == limit {
		nextCursor = strconv.FormatInt(int64(entries[len(entries)-1].Score), 10)
	}
	return users, nextCursor, nil
}

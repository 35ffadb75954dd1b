package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// store : общие помощники для репозиториев поверх Redis. Записи хранятся как JSON,
// вторичные индексы хранятся как отдельные ключи и множества.
type store struct {
	client *redis.Client
}

func newStore(rdb *config.RedisClient) store {
	return store{client: rdb.Client}
}

func (s store) getJSON(ctx context.Context, key string, dest any, what string) error {
	return readJSON(ctx, s.client, key, dest, what)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readJSON(ctx context.Context, c getter, key string, dest any, what string) error {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return apperror.NotFound("%s: не найдено", what)
	}
	if err != nil {
		return unavailable(what, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return unavailable(what, err)
	}
	return nil
}

func (s store) exists(ctx context.Context, key, what string) error {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return unavailable(what, err)
	}
	if n == 0 {
		return apperror.NotFound("%s: не найдено", what)
	}
	return nil
}

// mgetJSON : загружает записи по ключам, пропуская отсутствующие
func mgetJSON[T any](ctx context.Context, s store, keys []string, what string) ([]T, error) {
	result := make([]T, 0, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable(what, err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, unavailable(what, err)
		}
		result = append(result, item)
	}
	return result, nil
}

func marshal(value any, what string) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, util.LogError(what+": ошибка сериализации", err)
	}
	return data, nil
}

func unavailable(what string, err error) error {
	log.Printf("[KV] %s: %v", what, err)
	return apperror.Unavailable(what, err)
}

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// extendScript : продление TTL, пока ключ принадлежит владельцу токена
const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// Locker : распределённая блокировка SET NX PX с освобождением только своим токеном
type Locker struct {
	client  *redis.Client
	ttl     time.Duration
	retry   time.Duration
	release *redis.Script
	extend  *redis.Script
}

const defaultLockTTL = 30 * time.Second

func NewLocker(rdb *config.RedisClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{
		client:  rdb.Client,
		ttl:     ttl,
		retry:   20 * time.Millisecond,
		release: redis.NewScript(releaseScript),
		extend:  redis.NewScript(extendScript),
	}
}

func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := "lock:" + key

	token, err := util.GenerateRandomToken(32)
	if err != nil {
		return apperror.Unavailable("[Locker] ошибка генерации токена блокировки", err)
	}

	for {
		acquired, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return unavailable("[Locker] не удалось взять блокировку "+key, err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return apperror.Unavailable(fmt.Sprintf("[Locker] блокировка %s не получена", key), ctx.Err())
		case <-time.After(l.retry):
		}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(ctx, key, lockKey, token, stop)
	}()

	defer func() {
		close(stop)
		wg.Wait()

		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.release.Run(releaseCtx, l.client, []string{lockKey}, token).Err(); err != nil {
			log.Printf("[Locker] ошибка освобождения блокировки %s: %v", key, err)
		}
	}()

	return fn(ctx)
}

// keepAlive : продлевает блокировку каждые ttl/3, пока работает критическая секция
func (l *Locker) keepAlive(ctx context.Context, key, lockKey, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		extendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		extended, err := l.extend.Run(extendCtx, l.client, []string{lockKey}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			log.Printf("[Locker] ошибка продления блокировки %s: %v", key, err)
			continue
		}
		if extended == 0 {
			log.Printf("[Locker] блокировка %s потеряна до завершения секции", key)
			return
		}
	}
}

// HealthCheck : пинг Redis
func (l *Locker) HealthCheck(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

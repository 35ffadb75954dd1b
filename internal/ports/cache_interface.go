package ports

import (
	"context"

	"dataroom-server/internal/model"
)

// CacheRepository : Redis слой, промах возвращает (nil, nil)
type CacheRepository interface {
	SetDocument(ctx context.Context, document *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Locker : точка сериализации по ключу. fn получает контекст, в котором
// реляционный бэкенд держит открытую транзакцию.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// HealthChecker : проверка доступности зависимости (БД, Redis, S3)
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

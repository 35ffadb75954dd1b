package ports

import (
	"context"
	"time"
)

// Storage : хранилище содержимого файлов
type Storage interface {
	Save(ctx context.Context, key string, content []byte, contentType string) error
	Open(ctx context.Context, key string) ([]byte, error)
	// DeleteBytes : true, если объект удалён или уже отсутствовал
	DeleteBytes(ctx context.Context, key string) (bool, error)
}

// PresignedStorage : хранилище, умеющее выдавать временные ссылки (S3)
type PresignedStorage interface {
	Storage
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
}

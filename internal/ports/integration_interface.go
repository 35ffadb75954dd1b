package ports

import (
	"context"

	"dataroom-server/internal/model"
)

type IntegrationRepository interface {
	Upsert(ctx context.Context, integration *model.ExternalIntegration) error
	Get(ctx context.Context, userID, provider string) (*model.ExternalIntegration, error)
	Delete(ctx context.Context, userID, provider string) error
}

// RemoteDrive : внешнее облачное хранилище. Токены пользователя клиент
// берёт из IntegrationRepository и сам сохраняет обновлённые.
type RemoteDrive interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.ProviderToken, *model.RemoteAccount, error)
	ListRemote(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error)
	SearchRemote(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error)
	GetRemoteItem(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error)
	FetchRemoteContent(ctx context.Context, userID string, item model.RemoteItem) (*model.RemoteContent, error)
	StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error)
}

type IntegrationService interface {
	AuthorizationURL(ctx context.Context, userID string) (string, error)
	HandleCallback(ctx context.Context, state, code string) (*model.ExternalIntegration, error)
	Status(ctx context.Context, userID string) (*model.IntegrationStatus, error)
	Disconnect(ctx context.Context, userID string) error
	ListFiles(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error)
	SearchFiles(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error)
	GetFile(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error)
	StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error)
	Import(ctx context.Context, userID string, request model.ImportRequest) (*model.ImportReport, error)
}

// StateSigner : подписанный параметр state для OAuth-редиректа
type StateSigner interface {
	SignState(userID string) (string, error)
	ParseState(state string) (string, error)
}

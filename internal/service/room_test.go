package service_test

import (
	"context"
	"testing"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/access"
	"dataroom-server/internal/model"
	"dataroom-server/internal/repository"
	"dataroom-server/internal/repository/kv"
	"dataroom-server/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const maxTestUpload = 1024

var testDocumentSettings = service.DocumentSettings{MaxUploadBytes: maxTestUpload, StorageTimeout: time.Second}

// room : сервисы поверх Redis-репозиториев (miniredis) и файлов в памяти
type room struct {
	documents *service.DocumentService
	folders   *service.FolderService
	sharing   *service.SharingService
	storage   *service.LocalStorage
	users     *kv.UserRepository
	versions  *kv.VersionRepository
	locker    *kv.Locker
	cache     *repository.CacheRepository

	documentRepo *kv.DocumentRepository
	folderRepo   *kv.FolderRepository
	shareRepo    *kv.ShareRepository
	engine       *access.Engine
	integrations *kv.IntegrationRepository
}

func newRoom(t *testing.T) *room {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	rdb := &config.RedisClient{Client: client}

	documents := kv.NewDocumentRepository(rdb)
	folders := kv.NewFolderRepository(rdb)
	versions := kv.NewVersionRepository(rdb)
	shares := kv.NewShareRepository(rdb)
	users := kv.NewUserRepository(rdb)
	locker := kv.NewLocker(rdb, 5*time.Second)
	engine := access.NewEngine(shares)

	storage, err := service.NewLocalStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	cache := repository.NewCacheRepository(rdb, time.Minute)

	return &room{
		documents: service.NewDocumentService(
			documents, folders, versions, shares, engine, locker, storage, cache, testDocumentSettings,
		),
		folders:  service.NewFolderService(documents, folders, shares, engine, locker),
		sharing:  service.NewSharingService(documents, folders, shares, users, engine, locker),
		storage:  storage,
		users:    users,
		versions: versions,
		locker:   locker,
		cache:    cache,

		documentRepo: documents,
		folderRepo:   folders,
		shareRepo:    shares,
		engine:       engine,
		integrations: kv.NewIntegrationRepository(rdb),
	}
}

func (r *room) user(t *testing.T, name string) string {
	t.Helper()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        name + "@example.com",
		Username:     name,
		IsActive:     true,
		AuthProvider: model.AuthProviderLocal,
	}
	require.NoError(t, r.users.Create(context.Background(), user))
	return user.ID
}

func (r *room) document(t *testing.T, ownerID, name string, folderID *string) *model.Document {
	t.Helper()
	document, err := r.documents.CreateDocument(context.Background(), ownerID, model.NewDocument{
		Name:     name,
		FolderID: folderID,
		File:     model.FileUpload{Filename: name + ".txt", ContentType: "text/plain", Content: []byte("v1 " + name)},
	})
	require.NoError(t, err)
	return document
}

func (r *room) folder(t *testing.T, ownerID, name string, parentID *string) *model.Folder {
	t.Helper()
	folder, err := r.folders.CreateFolder(context.Background(), ownerID, model.NewFolder{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return folder
}

func (r *room) share(t *testing.T, actorID string, resourceType model.ResourceType, resourceID, userID string, capabilities model.Capabilities) {
	t.Helper()
	_, err := r.sharing.CreateShare(context.Background(), actorID, resourceType, resourceID, userID, capabilities)
	require.NoError(t, err)
}

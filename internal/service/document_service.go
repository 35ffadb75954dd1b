package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"dataroom-server/internal/access"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"

	"github.com/google/uuid"
)

// DocumentSettings : лимиты и тайм-ауты работы с файлами
type DocumentSettings struct {
	MaxUploadBytes int64
	PresignTTL     time.Duration
	StorageTimeout time.Duration
}

type DocumentService struct {
	resources
	versions ports.VersionRepository
	shares   ports.ShareRepository
	locker   ports.Locker
	storage  ports.Storage
	cache    ports.CacheRepository
	settings DocumentSettings
}

func NewDocumentService(
	documents ports.DocumentRepository,
	folders ports.FolderRepository,
	versions ports.VersionRepository,
	shares ports.ShareRepository,
	engine *access.Engine,
	locker ports.Locker,
	storage ports.Storage,
	cache ports.CacheRepository,
	settings DocumentSettings,
) *DocumentService {
	return &DocumentService{
		resources: resources{documents: documents, folders: folders, engine: engine},
		versions:  versions,
		shares:    shares,
		locker:    locker,
		storage:   storage,
		cache:     cache,
		settings:  settings,
	}
}

func documentLockKey(id string) string { return "document:" + id }

// storageKey : documents/<документ>/<версия>/<имя файла>
func storageKey(documentID, versionID, filename string) string {
	return fmt.Sprintf("documents/%s/%s/%s", documentID, versionID, sanitizeFilename(filename))
}

func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func (s *DocumentService) checkUpload(file model.FileUpload) error {
	if s.settings.MaxUploadBytes > 0 && int64(len(file.Content)) > s.settings.MaxUploadBytes {
		return apperror.Validation("файл больше допустимых %d байт", s.settings.MaxUploadBytes)
	}
	return nil
}

func (s *DocumentService) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.StorageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.StorageTimeout)
}

func (s *DocumentService) saveBytes(ctx context.Context, key string, file model.FileUpload) error {
	storageCtx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.storage.Save(storageCtx, key, file.Content, file.ContentType); err != nil {
		return apperror.Unavailable("[DocumentService] не удалось сохранить файл", err)
	}
	return nil
}

// dropBytes : удаление файла без влияния на результат операции
func (s *DocumentService) dropBytes(ctx context.Context, keys ...string) {
	storageCtx, cancel := s.storageContext(context.WithoutCancel(ctx))
	defer cancel()

	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, err := s.storage.DeleteBytes(storageCtx, key); err != nil {
			log.Printf("[DocumentService] не удалось удалить файл %s: %v", key, err)
		}
	}
}

// CreateDocument : сохраняет файл, затем документ и версию 1 под блокировкой документа
func (s *DocumentService) CreateDocument(ctx context.Context, actorID string, input model.NewDocument) (*model.Document, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(input.File.Filename)
	}
	if name == "" {
		return nil, apperror.Validation("имя документа обязательно")
	}
	if err := s.checkUpload(input.File); err != nil {
		return nil, err
	}

	if input.FolderID != nil {
		folder, err := s.folder(ctx, *input.FolderID)
		if err != nil {
			return nil, err
		}
		if err := s.authorizeCreateUnder(ctx, actorID, folder); err != nil {
			return nil, err
		}
	}

	document := &model.Document{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		OwnerID:     actorID,
		FolderID:    input.FolderID,
		FileType:    input.File.ContentType,
		FileSize:    int64(len(input.File.Content)),
		IsPublic:    input.IsPublic,
	}
	version := &model.DocumentVersion{
		ID:            uuid.NewString(),
		DocumentID:    document.ID,
		VersionNumber: 1,
		FileSize:      document.FileSize,
		CreatedBy:     actorID,
	}
	version.FilePath = storageKey(document.ID, version.ID, input.File.Filename)
	document.FilePath = version.FilePath

	if err := s.saveBytes(ctx, version.FilePath, input.File); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, documentLockKey(document.ID), func(ctx context.Context) error {
		if err := s.documents.Create(ctx, document); err != nil {
			return err
		}
		if err := s.versions.Append(ctx, version); err != nil {
			if rollbackErr := s.documents.Delete(context.WithoutCancel(ctx), document.ID); rollbackErr != nil {
				log.Printf("[DocumentService] не удалось откатить документ %s: %v", document.ID, rollbackErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.dropBytes(ctx, version.FilePath)
		return nil, err
	}

	log.Printf("[DocumentService] документ %s (%s) создан пользователем %s", document.ID, document.Name, actorID)
	return document, nil
}

// GetDocument : метаданные берутся из кэша, права проверяются всегда.
// Кэш заполняется только чтением под блокировкой документа, поэтому запись,
// сделанная до удаления или новой версии, будет сброшена их invalidate.
func (s *DocumentService) GetDocument(ctx context.Context, actorID, id string) (*model.Document, error) {
	document, err := s.cache.GetDocument(ctx, id)
	if err != nil {
		log.Printf("[DocumentService] ошибка кэша: %v", err)
	}
	if document != nil && document.IsDeleted {
		s.invalidate(ctx, id)
		return nil, apperror.NotFound("документ %s не найден", id)
	}

	if document == nil {
		err = s.locker.WithLock(ctx, documentLockKey(id), func(ctx context.Context) error {
			loaded, err := s.document(ctx, id)
			if err != nil {
				return err
			}
			document = loaded
			if err := s.cache.SetDocument(ctx, loaded); err != nil {
				log.Printf("[DocumentService] ошибка кэширования документа: %v", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.authorize(ctx, actorID, access.DocumentResource(document), model.OperationRead); err != nil {
		return nil, err
	}
	return document, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, actorID string, filter model.DocumentFilter) ([]model.Document, error) {
	return s.documents.ListByOwner(ctx, actorID, filter)
}

// ListSharedDocuments : документы, расшаренные пользователю; удалённые пропускаются
func (s *DocumentService) ListSharedDocuments(ctx context.Context, actorID string) ([]model.Document, error) {
	ids, err := s.shares.ListResourceIDsForUser(ctx, model.ResourceDocument, actorID)
	if err != nil {
		return nil, err
	}
	return s.documents.ListByIDs(ctx, ids)
}

// UpdateDocument : публичность меняет только владелец, перенос требует edit на папке назначения
func (s *DocumentService) UpdateDocument(ctx context.Context, actorID, id string, patch model.DocumentPatch) (*model.Document, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperror.Validation("имя документа не может быть пустым")
	}

	document, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	resource := access.DocumentResource(document)
	if err := s.authorize(ctx, actorID, resource, model.OperationEdit); err != nil {
		return nil, err
	}

	if patch.IsPublic != nil && actorID != document.OwnerID {
		return nil, apperror.Forbidden("публичность документа меняет только владелец")
	}
	if patch.FolderID != nil && !patch.ClearFolder {
		destination, err := s.folder(ctx, *patch.FolderID)
		if err != nil {
			return nil, err
		}
		if err := s.authorizeMove(ctx, actorID, resource, destination); err != nil {
			return nil, err
		}
	}

	var updated *model.Document
	err = s.locker.WithLock(ctx, documentLockKey(id), func(ctx context.Context) error {
		current, err := s.document(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			current.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			current.Description = *patch.Description
		}
		if patch.ClearFolder {
			current.FolderID = nil
		} else if patch.FolderID != nil {
			current.FolderID = patch.FolderID
		}
		if patch.IsPublic != nil {
			current.IsPublic = *patch.IsPublic
		}

		if err := s.documents.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// UploadVersion : номер версии выдаётся под блокировкой документа, файл документа указывает на последнюю версию
func (s *DocumentService) UploadVersion(ctx context.Context, actorID, id string, file model.FileUpload) (*model.DocumentVersion, error) {
	if err := s.checkUpload(file); err != nil {
		return nil, err
	}

	document, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, access.DocumentResource(document), model.OperationEdit); err != nil {
		return nil, err
	}

	version := &model.DocumentVersion{
		ID:         uuid.NewString(),
		DocumentID: id,
		FileSize:   int64(len(file.Content)),
		CreatedBy:  actorID,
	}
	version.FilePath = storageKey(id, version.ID, file.Filename)

	if err := s.saveBytes(ctx, version.FilePath, file); err != nil {
		return nil, err
	}

	err = s.locker.WithLock(ctx, documentLockKey(id), func(ctx context.Context) error {
		current, err := s.document(ctx, id)
		if err != nil {
			return err
		}

		latest, err := s.versions.LatestVersionNumber(ctx, id)
		if err != nil {
			return err
		}
		version.VersionNumber = latest + 1

		if err := s.versions.Append(ctx, version); err != nil {
			return err
		}

		current.FilePath = version.FilePath
		current.FileSize = version.FileSize
		if file.ContentType != "" {
			current.FileType = file.ContentType
		}
		if err := s.documents.Update(ctx, current); err != nil {
			if delErr := s.versions.Delete(context.WithoutCancel(ctx), id, version.ID); delErr != nil {
				log.Printf("[DocumentService] не удалось откатить версию %s: %v", version.ID, delErr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.dropBytes(ctx, version.FilePath)
		return nil, err
	}

	s.invalidate(ctx, id)
	log.Printf("[DocumentService] версия %d документа %s загружена", version.VersionNumber, id)
	return version, nil
}

func (s *DocumentService) ListVersions(ctx context.Context, actorID, id string) ([]model.DocumentVersion, error) {
	document, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, access.DocumentResource(document), model.OperationRead); err != nil {
		return nil, err
	}
	return s.versions.ListByDocument(ctx, id)
}

// Download : pre-signed ссылка, если хранилище умеет, иначе содержимое
func (s *DocumentService) Download(ctx context.Context, actorID, id string) (*model.DownloadResult, error) {
	document, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, access.DocumentResource(document), model.OperationRead); err != nil {
		return nil, err
	}
	if document.FilePath == "" {
		return nil, apperror.NotFound("у документа %s нет файла", id)
	}

	storageCtx, cancel := s.storageContext(ctx)
	defer cancel()

	if presigned, ok := s.storage.(ports.PresignedStorage); ok {
		url, err := presigned.GeneratePresignedGetURL(storageCtx, document.FilePath, s.settings.PresignTTL)
		if err != nil {
			return nil, apperror.Unavailable("[DocumentService] не удалось сгенерировать ссылку", err)
		}
		return &model.DownloadResult{Document: document, URL: url}, nil
	}

	content, err := s.storage.Open(storageCtx, document.FilePath)
	if err != nil {
		return nil, apperror.Unavailable("[DocumentService] не удалось прочитать файл", err)
	}
	return &model.DownloadResult{Document: document, Content: content}, nil
}

// DeleteDocument : мягкое удаление записи, файлы всех версий удаляются без гарантий
func (s *DocumentService) DeleteDocument(ctx context.Context, actorID, id string) error {
	document, err := s.document(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, access.DocumentResource(document), model.OperationDelete); err != nil {
		return err
	}

	var versions []model.DocumentVersion
	err = s.locker.WithLock(ctx, documentLockKey(id), func(ctx context.Context) error {
		if err := s.documents.SoftDelete(ctx, id); err != nil {
			return err
		}
		list, err := s.versions.ListByDocument(ctx, id)
		versions = list
		return err
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)

	keys := []string{document.FilePath}
	for _, version := range versions {
		if version.FilePath != document.FilePath {
			keys = append(keys, version.FilePath)
		}
	}
	s.dropBytes(ctx, keys...)

	log.Printf("[DocumentService] документ %s удалён пользователем %s", id, actorID)
	return nil
}

func (s *DocumentService) invalidate(ctx context.Context, id string) {
	if err := s.cache.DeleteDocument(ctx, id); err != nil {
		log.Printf("[DocumentService] не удалось сбросить кэш документа %s: %v", id, err)
	}
}

package ports

import (
	"context"

	"dataroom-server/internal/model"
)

// DocumentRepository : GetByID возвращает и мягко удалённые документы
type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	ListByOwner(ctx context.Context, ownerID string, filter model.DocumentFilter) ([]model.Document, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Document, error)
	Update(ctx context.Context, document *model.Document) error
	SoftDelete(ctx context.Context, id string) error
	// Delete : физическое удаление, только для отката незавершённого создания
	Delete(ctx context.Context, id string) error
}

type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	GetByID(ctx context.Context, id string) (*model.Folder, error)
	ListByOwner(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Folder, error)
	Update(ctx context.Context, folder *model.Folder) error
	SoftDelete(ctx context.Context, id string) error
}

type VersionRepository interface {
	Append(ctx context.Context, version *model.DocumentVersion) error
	LatestVersionNumber(ctx context.Context, documentID string) (int, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error)
	Delete(ctx context.Context, documentID, versionID string) error
}

// ShareRepository : FindShare возвращает (nil, nil), если шаринга нет
type ShareRepository interface {
	FindShare(ctx context.Context, resourceType model.ResourceType, resourceID, userID string) (*model.Share, error)
	GetByID(ctx context.Context, resourceType model.ResourceType, id string) (*model.Share, error)
	Create(ctx context.Context, share *model.Share) error
	Update(ctx context.Context, share *model.Share) error
	Delete(ctx context.Context, resourceType model.ResourceType, id string) error
	ListByResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]model.Share, error)
	ListResourceIDsForUser(ctx context.Context, resourceType model.ResourceType, userID string) ([]string, error)
}

type DocumentService interface {
	CreateDocument(ctx context.Context, actorID string, input model.NewDocument) (*model.Document, error)
	GetDocument(ctx context.Context, actorID, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, actorID string, filter model.DocumentFilter) ([]model.Document, error)
	ListSharedDocuments(ctx context.Context, actorID string) ([]model.Document, error)
	UpdateDocument(ctx context.Context, actorID, id string, patch model.DocumentPatch) (*model.Document, error)
	UploadVersion(ctx context.Context, actorID, id string, file model.FileUpload) (*model.DocumentVersion, error)
	ListVersions(ctx context.Context, actorID, id string) ([]model.DocumentVersion, error)
	Download(ctx context.Context, actorID, id string) (*model.DownloadResult, error)
	DeleteDocument(ctx context.Context, actorID, id string) error
}

type FolderService interface {
	CreateFolder(ctx context.Context, actorID string, input model.NewFolder) (*model.Folder, error)
	GetFolder(ctx context.Context, actorID, id string) (*model.Folder, error)
	ListFolders(ctx context.Context, actorID string, parentID *string) ([]model.Folder, error)
	ListSharedFolders(ctx context.Context, actorID string) ([]model.Folder, error)
	UpdateFolder(ctx context.Context, actorID, id string, patch model.FolderPatch) (*model.Folder, error)
	DeleteFolder(ctx context.Context, actorID, id string) error
}

type SharingService interface {
	CheckAccess(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string, operation model.Operation) (bool, error)
	CreateShare(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID, userID string, capabilities model.Capabilities) (*model.Share, error)
	UpdateShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string, patch model.CapabilitiesPatch) (*model.Share, error)
	RemoveShare(ctx context.Context, actorID string, resourceType model.ResourceType, shareID string) error
	ListShares(ctx context.Context, actorID string, resourceType model.ResourceType, resourceID string) ([]model.Share, error)
}

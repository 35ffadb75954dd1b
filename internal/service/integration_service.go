package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"

	"github.com/google/uuid"
)

const DefaultImportDepth = 5

type IntegrationService struct {
	integrations ports.IntegrationRepository
	drive        ports.RemoteDrive
	states       ports.StateSigner
	documents    ports.DocumentService
	folders      ports.FolderService
	maxDepth     int
}

func NewIntegrationService(
	integrations ports.IntegrationRepository,
	drive ports.RemoteDrive,
	states ports.StateSigner,
	documents ports.DocumentService,
	folders ports.FolderService,
	maxDepth int,
) *IntegrationService {
	if maxDepth <= 0 {
		maxDepth = DefaultImportDepth
	}
	return &IntegrationService{
		integrations: integrations,
		drive:        drive,
		states:       states,
		documents:    documents,
		folders:      folders,
		maxDepth:     maxDepth,
	}
}

// AuthorizationURL : state подписан и привязан к пользователю
func (s *IntegrationService) AuthorizationURL(ctx context.Context, userID string) (string, error) {
	state, err := s.states.SignState(userID)
	if err != nil {
		return "", fmt.Errorf("[IntegrationService] не удалось подписать state: %w", err)
	}
	return s.drive.AuthCodeURL(state), nil
}

func (s *IntegrationService) HandleCallback(ctx context.Context, state, code string) (*model.ExternalIntegration, error) {
	if code == "" {
		return nil, apperror.Validation("нет кода авторизации")
	}
	userID, err := s.states.ParseState(state)
	if err != nil {
		log.Printf("[IntegrationService] невалидный state: %v", err)
		return nil, apperror.Validation("невалидный state")
	}

	token, account, err := s.drive.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	integration := &model.ExternalIntegration{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     model.ProviderGoogleDrive,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	}
	if account != nil {
		integration.ProviderUserID = account.ProviderUserID
		integration.ProviderEmail = account.Email
	}

	if err := s.integrations.Upsert(ctx, integration); err != nil {
		return nil, err
	}

	log.Printf("[IntegrationService] Google Drive подключён пользователем %s", userID)
	return integration, nil
}

func (s *IntegrationService) Status(ctx context.Context, userID string) (*model.IntegrationStatus, error) {
	integration, err := s.integrations.Get(ctx, userID, model.ProviderGoogleDrive)
	if errors.Is(err, apperror.ErrNotFound) {
		return &model.IntegrationStatus{Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.IntegrationStatus{
		Connected:     true,
		ProviderEmail: integration.ProviderEmail,
		TokenExpiry:   integration.TokenExpiry,
	}, nil
}

func (s *IntegrationService) Disconnect(ctx context.Context, userID string) error {
	return s.integrations.Delete(ctx, userID, model.ProviderGoogleDrive)
}

func (s *IntegrationService) ListFiles(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error) {
	return s.drive.ListRemote(ctx, userID, folderRef, pageToken)
}

func (s *IntegrationService) SearchFiles(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error) {
	if query == "" {
		return nil, apperror.Validation("пустой поисковый запрос")
	}
	return s.drive.SearchRemote(ctx, userID, query, pageToken)
}

func (s *IntegrationService) GetFile(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error) {
	return s.drive.GetRemoteItem(ctx, userID, itemRef)
}

func (s *IntegrationService) StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error) {
	return s.drive.StorageQuota(ctx, userID)
}

// importJob : состояние одного импорта
type importJob struct {
	userID         string
	includeFolders bool
	maxDepth       int
	report         *model.ImportReport
}

// Import : файлы и папки создаются через сервисы документов и папок, поэтому действуют
// обычные проверки прав. Ошибка одного элемента не останавливает импорт соседних.
func (s *IntegrationService) Import(ctx context.Context, userID string, request model.ImportRequest) (*model.ImportReport, error) {
	if len(request.FileIDs) == 0 {
		return nil, apperror.Validation("не выбраны файлы для импорта")
	}

	if request.ParentFolderID != nil {
		if _, err := s.folders.GetFolder(ctx, userID, *request.ParentFolderID); err != nil {
			return nil, err
		}
	}

	maxDepth := s.maxDepth
	if request.MaxDepth > 0 && request.MaxDepth < maxDepth {
		maxDepth = request.MaxDepth
	}

	job := &importJob{
		userID:         userID,
		includeFolders: request.IncludeFolders,
		maxDepth:       maxDepth,
		report: &model.ImportReport{
			Documents: make([]model.Document, 0),
			Folders:   make([]model.Folder, 0),
			Skipped:   make([]model.SkippedItem, 0),
		},
	}

	for _, id := range request.FileIDs {
		if err := ctx.Err(); err != nil {
			return job.report, apperror.Unavailable("[IntegrationService] импорт прерван", err)
		}

		item, err := s.drive.GetRemoteItem(ctx, userID, id)
		if err != nil {
			job.report.Skip(model.RemoteItem{ID: id}, skipReason(id, err))
			continue
		}
		s.importItem(ctx, job, *item, request.ParentFolderID, 0)
	}

	log.Printf("[IntegrationService] импорт пользователя %s: документов %d, папок %d, пропущено %d",
		userID, len(job.report.Documents), len(job.report.Folders), len(job.report.Skipped))
	return job.report, nil
}

func (s *IntegrationService) importItem(ctx context.Context, job *importJob, item model.RemoteItem, parentID *string, depth int) {
	if !item.IsFolder {
		s.importFile(ctx, job, item, parentID)
		return
	}

	if !job.includeFolders {
		job.report.Skip(item, "папки не импортируются без include_folders")
		return
	}
	if depth >= job.maxDepth {
		job.report.Skip(item, fmt.Sprintf("превышена глубина вложенности %d", job.maxDepth))
		return
	}

	folder, err := s.folders.CreateFolder(ctx, job.userID, model.NewFolder{
		Name:        item.Name,
		Description: "Импортировано из Google Drive",
		ParentID:    parentID,
	})
	if err != nil {
		job.report.Skip(item, skipReason(item.ID, err))
		return
	}
	job.report.Folders = append(job.report.Folders, *folder)

	pageToken := ""
	for {
		page, err := s.drive.ListRemote(ctx, job.userID, item.ID, pageToken)
		if err != nil {
			job.report.Skip(item, "не удалось получить содержимое папки: "+skipReason(item.ID, err))
			return
		}

		for _, child := range page.Items {
			if ctx.Err() != nil {
				job.report.Skip(child, "импорт прерван")
				continue
			}
			s.importItem(ctx, job, child, &folder.ID, depth+1)
		}

		if page.NextPageToken == "" {
			return
		}
		pageToken = page.NextPageToken
	}
}

func (s *IntegrationService) importFile(ctx context.Context, job *importJob, item model.RemoteItem, parentID *string) {
	content, err := s.drive.FetchRemoteContent(ctx, job.userID, item)
	if err != nil {
		job.report.Skip(item, skipReason(item.ID, err))
		return
	}

	document, err := s.documents.CreateDocument(ctx, job.userID, model.NewDocument{
		Name:        content.Name,
		Description: "Импортировано из Google Drive",
		FolderID:    parentID,
		File: model.FileUpload{
			Filename:    content.Name,
			ContentType: content.MimeType,
			Content:     content.Data,
		},
	})
	if err != nil {
		job.report.Skip(item, skipReason(item.ID, err))
		return
	}
	job.report.Documents = append(job.report.Documents, *document)
}

// skipReason : причина пропуска для отчёта. Сбои хранилища и транспорта
// только логируются, клиент видит общий текст.
func skipReason(itemID string, err error) string {
	if errors.Is(err, apperror.ErrUnavailable) || apperror.StatusCode(err) >= http.StatusInternalServerError {
		log.Printf("[IntegrationService] элемент %s пропущен: %v", itemID, err)
		return "временная ошибка, повторите импорт позже"
	}
	return err.Error()
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const documentColumns = `id, name, description, owner_id, folder_id, file_path, file_type, file_size,
	is_public, is_deleted, created_at, updated_at`

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новый документ
func (r *DocumentRepository) Create(ctx context.Context, document *model.Document) error {
	query := `
		INSERT INTO documents (id, name, description, owner_id, folder_id, file_path, file_type, file_size, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		document.ID,
		document.Name,
		document.Description,
		document.OwnerID,
		document.FolderID,
		document.FilePath,
		document.FileType,
		document.FileSize,
		document.IsPublic,
	).Scan(&document.CreatedAt, &document.UpdatedAt)

	return translate(err, "[DocumentRepo] ошибка вставки документа")
}

// GetByID : возвращает документ, в том числе мягко удалённый
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var document model.Document
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &document, query, id); err != nil {
		return nil, translate(err, "[DocumentRepo] документ "+id)
	}
	return &document, nil
}

// ListByOwner : неудалённые документы владельца с фильтром по папке и имени
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string, filter model.DocumentFilter) ([]model.Document, error) {
	conditions := []string{"owner_id = $1", "is_deleted = FALSE"}
	args := []interface{}{ownerID}

	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conditions = append(conditions, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id ASC`

	documents := make([]model.Document, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &documents, query, args...); err != nil {
		return nil, translate(err, "[DocumentRepo] не удалось получить список документов")
	}
	return documents, nil
}

func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Document, error) {
	documents := make([]model.Document, 0, len(ids))
	if len(ids) == 0 {
		return documents, nil
	}

	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE id = ANY($1) AND is_deleted = FALSE
		ORDER BY created_at DESC, id ASC`

	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &documents, query, pq.Array(ids)); err != nil {
		return nil, translate(err, "[DocumentRepo] не удалось получить документы по списку")
	}
	return documents, nil
}

func (r *DocumentRepository) Update(ctx context.Context, document *model.Document) error {
	query := `
		UPDATE documents
		SET name = $2, description = $3, folder_id = $4, file_path = $5, file_type = $6,
		    file_size = $7, is_public = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		document.ID,
		document.Name,
		document.Description,
		document.FolderID,
		document.FilePath,
		document.FileType,
		document.FileSize,
		document.IsPublic,
	).Scan(&document.UpdatedAt)

	return translate(err, "[DocumentRepo] документ "+document.ID)
}

// SoftDelete помечает документ удалённым
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE documents SET is_deleted = TRUE, updated_at = now() WHERE id = $1`

	result, err := executor(ctx, r.Database).ExecContext(ctx, query, id)
	if err != nil {
		return translate(err, "[DocumentRepo] ошибка удаления документа")
	}
	return expectAffected(result, "[DocumentRepo] документ "+id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`
	result, err := executor(ctx, r.Database).ExecContext(ctx, query, id)
	if err != nil {
		return translate(err, "[DocumentRepo] ошибка удаления документа")
	}
	return expectAffected(result, "[DocumentRepo] документ "+id)
}

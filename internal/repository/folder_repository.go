package repository

import (
	"context"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const folderColumns = `id, name, description, owner_id, parent_id, is_deleted, created_at, updated_at`

type FolderRepository struct {
	*config.Database
}

func NewFolderRepository(database *config.Database) *FolderRepository {
	return &FolderRepository{database}
}

func (r *FolderRepository) Create(ctx context.Context, folder *model.Folder) error {
	query := `
		INSERT INTO folders (id, name, description, owner_id, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		folder.ID, folder.Name, folder.Description, folder.OwnerID, folder.ParentID,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)

	return translate(err, "[FolderRepo] ошибка вставки папки")
}

// GetByID : возвращает папку, в том числе мягко удалённую
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`

	var folder model.Folder
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &folder, query, id); err != nil {
		return nil, translate(err, "[FolderRepo] папка "+id)
	}
	return &folder, nil
}

// ListByOwner : неудалённые папки владельца; parentID == nil означает корневые
func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND is_deleted = FALSE AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name ASC, id ASC`

	folders := make([]model.Folder, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &folders, query, ownerID, parentID); err != nil {
		return nil, translate(err, "[FolderRepo] ошибка получения списка папок")
	}
	return folders, nil
}

func (r *FolderRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Folder, error) {
	folders := make([]model.Folder, 0, len(ids))
	if len(ids) == 0 {
		return folders, nil
	}

	query := `SELECT ` + folderColumns + ` FROM folders
		WHERE id = ANY($1) AND is_deleted = FALSE
		ORDER BY name ASC, id ASC`

	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &folders, query, pq.Array(ids)); err != nil {
		return nil, translate(err, "[FolderRepo] ошибка получения папок по списку")
	}
	return folders, nil
}

func (r *FolderRepository) Update(ctx context.Context, folder *model.Folder) error {
	query := `
		UPDATE folders SET name = $2, description = $3, parent_id = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		folder.ID, folder.Name, folder.Description, folder.ParentID,
	).Scan(&folder.UpdatedAt)

	return translate(err, "[FolderRepo] папка "+folder.ID)
}

// SoftDelete : помечает папку удалённой, дочерние папки и документы не трогает
func (r *FolderRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE folders SET is_deleted = TRUE, updated_at = now() WHERE id = $1`

	result, err := executor(ctx, r.Database).ExecContext(ctx, query, id)
	if err != nil {
		return translate(err, "[FolderRepo] ошибка удаления папки")
	}
	return expectAffected(result, "[FolderRepo] папка "+id)
}

package repository

import (
	"context"
	"fmt"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type shareTable struct {
	table    string
	column   string
	canShare string
}

// document_shares не имеет колонки can_share: документы шарит только владелец
var shareTables = map[model.ResourceType]shareTable{
	model.ResourceDocument: {table: "document_shares", column: "document_id", canShare: "FALSE"},
	model.ResourceFolder:   {table: "folder_shares", column: "folder_id", canShare: "can_share"},
}

func (t shareTable) selectColumns(resourceType model.ResourceType) string {
	return fmt.Sprintf(`id, '%s' AS resource_type, %s AS resource_id, user_id, can_edit, can_delete,
		%s AS can_share, created_at, updated_at`, resourceType, t.column, t.canShare)
}

type ShareRepository struct {
	*config.Database
}

func NewShareRepository(database *config.Database) *ShareRepository {
	return &ShareRepository{database}
}

func lookupShareTable(resourceType model.ResourceType) (shareTable, error) {
	table, ok := shareTables[resourceType]
	if !ok {
		return shareTable{}, apperror.Validation("неизвестный тип ресурса: %q", resourceType)
	}
	return table, nil
}

// FindShare : (nil, nil), если шаринга нет
func (r *ShareRepository) FindShare(ctx context.Context, resourceType model.ResourceType, resourceID, userID string) (*model.Share, error) {
	t, err := lookupShareTable(resourceType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND user_id = $2`,
		t.selectColumns(resourceType), t.table, t.column)

	var shares []model.Share
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &shares, query, resourceID, userID); err != nil {
		return nil, translate(err, "[ShareRepo] ошибка поиска шаринга")
	}
	if len(shares) == 0 {
		return nil, nil
	}
	return &shares[0], nil
}

func (r *ShareRepository) GetByID(ctx context.Context, resourceType model.ResourceType, id string) (*model.Share, error) {
	t, err := lookupShareTable(resourceType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.selectColumns(resourceType), t.table)

	var share model.Share
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &share, query, id); err != nil {
		return nil, translate(err, "[ShareRepo] шаринг "+id)
	}
	return &share, nil
}

// Create : повторный шаринг того же ресурса тому же пользователю даёт Conflict
func (r *ShareRepository) Create(ctx context.Context, share *model.Share) error {
	var (
		query string
		args  []interface{}
	)

	switch share.ResourceType {
	case model.ResourceDocument:
		query = `INSERT INTO document_shares (id, document_id, user_id, can_edit, can_delete)
			VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
		args = []interface{}{share.ID, share.ResourceID, share.UserID, share.CanEdit, share.CanDelete}
	case model.ResourceFolder:
		query = `INSERT INTO folder_shares (id, folder_id, user_id, can_edit, can_delete, can_share)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
		args = []interface{}{share.ID, share.ResourceID, share.UserID, share.CanEdit, share.CanDelete, share.CanShare}
	default:
		return apperror.Validation("неизвестный тип ресурса: %q", share.ResourceType)
	}

	err := executor(ctx, r.Database).QueryRowxContext(ctx, query, args...).Scan(&share.CreatedAt, &share.UpdatedAt)
	return translate(err, "[ShareRepo] шаринг")
}

func (r *ShareRepository) Update(ctx context.Context, share *model.Share) error {
	var (
		query string
		args  []interface{}
	)

	switch share.ResourceType {
	case model.ResourceDocument:
		query = `UPDATE document_shares SET can_edit = $2, can_delete = $3, updated_at = now()
			WHERE id = $1 RETURNING updated_at`
		args = []interface{}{share.ID, share.CanEdit, share.CanDelete}
	case model.ResourceFolder:
		query = `UPDATE folder_shares SET can_edit = $2, can_delete = $3, can_share = $4, updated_at = now()
			WHERE id = $1 RETURNING updated_at`
		args = []interface{}{share.ID, share.CanEdit, share.CanDelete, share.CanShare}
	default:
		return apperror.Validation("неизвестный тип ресурса: %q", share.ResourceType)
	}

	err := executor(ctx, r.Database).QueryRowxContext(ctx, query, args...).Scan(&share.UpdatedAt)
	return translate(err, "[ShareRepo] шаринг "+share.ID)
}

func (r *ShareRepository) Delete(ctx context.Context, resourceType model.ResourceType, id string) error {
	t, err := lookupShareTable(resourceType)
	if err != nil {
		return err
	}

	result, err := executor(ctx, r.Database).ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table), id)
	if err != nil {
		return translate(err, "[ShareRepo] ошибка удаления шаринга")
	}
	return expectAffected(result, "[ShareRepo] шаринг "+id)
}

func (r *ShareRepository) ListByResource(ctx context.Context, resourceType model.ResourceType, resourceID string) ([]model.Share, error) {
	t, err := lookupShareTable(resourceType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created_at ASC, id ASC`,
		t.selectColumns(resourceType), t.table, t.column)

	shares := make([]model.Share, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &shares, query, resourceID); err != nil {
		return nil, translate(err, "[ShareRepo] ошибка получения списка шарингов")
	}
	return shares, nil
}

func (r *ShareRepository) ListResourceIDsForUser(ctx context.Context, resourceType model.ResourceType, userID string) ([]string, error) {
	t, err := lookupShareTable(resourceType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, t.column, t.table)

	ids := make([]string, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &ids, query, userID); err != nil {
		return nil, translate(err, "[ShareRepo] ошибка получения ресурсов пользователя")
	}
	return ids, nil
}

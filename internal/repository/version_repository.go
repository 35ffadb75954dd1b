package repository

import (
	"context"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type VersionRepository struct {
	*config.Database
}

func NewVersionRepository(database *config.Database) *VersionRepository {
	return &VersionRepository{database}
}

// Append : уникальность (document_id, version_number) держит ограничение таблицы
func (r *VersionRepository) Append(ctx context.Context, version *model.DocumentVersion) error {
	query := `
		INSERT INTO document_versions (id, document_id, version_number, file_path, file_size, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		version.ID, version.DocumentID, version.VersionNumber, version.FilePath, version.FileSize, version.CreatedBy,
	).Scan(&version.CreatedAt)

	return translate(err, "[VersionRepo] ошибка вставки версии")
}

// LatestVersionNumber : 0, если версий ещё нет
func (r *VersionRepository) LatestVersionNumber(ctx context.Context, documentID string) (int, error) {
	query := `SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id = $1`

	var latest int
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &latest, query, documentID); err != nil {
		return 0, translate(err, "[VersionRepo] ошибка получения номера версии")
	}
	return latest, nil
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	query := `SELECT id, document_id, version_number, file_path, file_size, created_by, created_at
		FROM document_versions WHERE document_id = $1 ORDER BY version_number DESC`

	versions := make([]model.DocumentVersion, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &versions, query, documentID); err != nil {
		return nil, translate(err, "[VersionRepo] ошибка получения версий")
	}
	return versions, nil
}

func (r *VersionRepository) Delete(ctx context.Context, documentID, versionID string) error {
	query := `DELETE FROM document_versions WHERE document_id = $1 AND id = $2`

	result, err := executor(ctx, r.Database).ExecContext(ctx, query, documentID, versionID)
	if err != nil {
		return translate(err, "[VersionRepo] ошибка удаления версии")
	}
	return expectAffected(result, "[VersionRepo] версия "+versionID)
}

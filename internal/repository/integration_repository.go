package repository

import (
	"context"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type IntegrationRepository struct {
	*config.Database
}

func NewIntegrationRepository(database *config.Database) *IntegrationRepository {
	return &IntegrationRepository{database}
}

// Upsert : одна интеграция на пару (user_id, provider)
func (r *IntegrationRepository) Upsert(ctx context.Context, integration *model.ExternalIntegration) error {
	query := `
		INSERT INTO external_integrations
			(id, user_id, provider, access_token, refresh_token, token_expiry, provider_user_id, provider_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN external_integrations.refresh_token
			                     ELSE EXCLUDED.refresh_token END,
			token_expiry = EXCLUDED.token_expiry,
			provider_user_id = CASE WHEN EXCLUDED.provider_user_id = '' THEN external_integrations.provider_user_id
			                        ELSE EXCLUDED.provider_user_id END,
			provider_email = CASE WHEN EXCLUDED.provider_email = '' THEN external_integrations.provider_email
			                      ELSE EXCLUDED.provider_email END,
			updated_at = now()
		RETURNING id, refresh_token, provider_user_id, provider_email, created_at, updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		integration.ID,
		integration.UserID,
		integration.Provider,
		integration.AccessToken,
		integration.RefreshToken,
		integration.TokenExpiry,
		integration.ProviderUserID,
		integration.ProviderEmail,
	).Scan(
		&integration.ID,
		&integration.RefreshToken,
		&integration.ProviderUserID,
		&integration.ProviderEmail,
		&integration.CreatedAt,
		&integration.UpdatedAt,
	)

	return translate(err, "[IntegrationRepo] ошибка сохранения интеграции")
}

func (r *IntegrationRepository) Get(ctx context.Context, userID, provider string) (*model.ExternalIntegration, error) {
	query := `SELECT id, user_id, provider, access_token, refresh_token, token_expiry, provider_user_id,
		provider_email, created_at, updated_at
		FROM external_integrations WHERE user_id = $1 AND provider = $2`

	var integration model.ExternalIntegration
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &integration, query, userID, provider); err != nil {
		return nil, translate(err, "[IntegrationRepo] интеграция "+provider)
	}
	return &integration, nil
}

func (r *IntegrationRepository) Delete(ctx context.Context, userID, provider string) error {
	query := `DELETE FROM external_integrations WHERE user_id = $1 AND provider = $2`

	result, err := executor(ctx, r.Database).ExecContext(ctx, query, userID, provider)
	if err != nil {
		return translate(err, "[IntegrationRepo] ошибка удаления интеграции")
	}
	return expectAffected(result, "[IntegrationRepo] интеграция "+provider)
}

package kv

import (
	"context"
	"errors"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
)

func integrationKey(userID, provider string) string {
	return "integration:" + userID + ":" + provider
}

// integrationRecord : токены в модели скрыты от JSON-ответов, но в хранилище нужны
type integrationRecord struct {
	model.ExternalIntegration
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (rec integrationRecord) integration() *model.ExternalIntegration {
	integration := rec.ExternalIntegration
	integration.AccessToken = rec.AccessToken
	integration.RefreshToken = rec.RefreshToken
	return &integration
}

type IntegrationRepository struct {
	store
}

func NewIntegrationRepository(rdb *config.RedisClient) *IntegrationRepository {
	return &IntegrationRepository{newStore(rdb)}
}

// Upsert : пустые refresh_token и данные аккаунта не затирают сохранённые
func (r *IntegrationRepository) Upsert(ctx context.Context, integration *model.ExternalIntegration) error {
	now := time.Now().UTC()

	current, err := r.Get(ctx, integration.UserID, integration.Provider)
	switch {
	case err == nil:
		integration.ID = current.ID
		integration.CreatedAt = current.CreatedAt
		if integration.RefreshToken == "" {
			integration.RefreshToken = current.RefreshToken
		}
		if integration.ProviderUserID == "" {
			integration.ProviderUserID = current.ProviderUserID
		}
		if integration.ProviderEmail == "" {
			integration.ProviderEmail = current.ProviderEmail
		}
	case errors.Is(err, apperror.ErrNotFound):
		integration.CreatedAt = now
	default:
		return err
	}
	integration.UpdatedAt = now

	data, err := marshal(integrationRecord{
		ExternalIntegration: *integration,
		AccessToken:         integration.AccessToken,
		RefreshToken:        integration.RefreshToken,
	}, "[IntegrationRepo] интеграция")
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, integrationKey(integration.UserID, integration.Provider), data, 0).Err(); err != nil {
		return unavailable("[IntegrationRepo] ошибка сохранения интеграции", err)
	}
	return nil
}

func (r *IntegrationRepository) Get(ctx context.Context, userID, provider string) (*model.ExternalIntegration, error) {
	var record integrationRecord
	if err := r.getJSON(ctx, integrationKey(userID, provider), &record, "[IntegrationRepo] интеграция "+provider); err != nil {
		return nil, err
	}
	return record.integration(), nil
}

func (r *IntegrationRepository) Delete(ctx context.Context, userID, provider string) error {
	key := integrationKey(userID, provider)
	if err := r.exists(ctx, key, "[IntegrationRepo] интеграция "+provider); err != nil {
		return err
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return unavailable("[IntegrationRepo] ошибка удаления интеграции", err)
	}
	return nil
}

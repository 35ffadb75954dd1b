package repository

import (
	"context"

	"dataroom-server/config"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// SaveRefreshToken сохраняет refresh-токен в базе данных
// Возвращает ошибку, если операция не удалась
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, expire_at, used, user_agent, ip_address)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := executor(ctx, r.Database).ExecContext(ctx, query,
		refreshToken.ID,
		refreshToken.UserID,
		refreshToken.TokenHash,
		refreshToken.ExpireAt,
		refreshToken.Used,
		refreshToken.UserAgent,
		refreshToken.IpAddress,
	)

	return translate(err, "[JWTRepo] ошибка вставки рефреш токена")
}

// MarkRefreshTokenUsedByID изменяет поле used, делая его равным true
// Возвращает NotFound, если активного токена с таким id нет
func (r *JWTRepository) MarkRefreshTokenUsedByID(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`

	result, err := executor(ctx, r.Database).ExecContext(ctx, query, id)
	if err != nil {
		return translate(err, "[JWTRepo] не удалось обновить рефреш токен")
	}

	return expectAffected(result, "[JWTRepo] рефреш токен")
}

// FindByID ищет refresh-токен в базе данных
func (r *JWTRepository) FindByID(ctx context.Context, id string) (*model.RefreshToken, error) {
	query := `SELECT id, user_id, token_hash, expire_at, used, user_agent, ip_address, created_at
		FROM refresh_tokens WHERE id = $1`

	refreshToken := &model.RefreshToken{}
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), refreshToken, query, id); err != nil {
		return nil, translate(err, "[JWTRepo] рефреш токен")
	}

	return refreshToken, nil
}

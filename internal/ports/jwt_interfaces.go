package ports

import (
	"context"

	"dataroom-server/internal/model"
)

type JWTRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*model.RefreshToken, error)
	MarkRefreshTokenUsedByID(ctx context.Context, id string) error
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(userID string) (*model.TokensPair, *model.RefreshToken, error)
	ValidateJWT(tokenString string) (*model.Claims, error)
}

package ports

import (
	"context"

	"dataroom-server/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, login, password, userAgent, ipAddress string) (*model.TokensPair, error)
	LoginWithGoogle(ctx context.Context, idToken, userAgent, ipAddress string) (*model.TokensPair, error)
	RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshTokenID string) error
}

// IdentityVerifier : проверка ID-токена внешнего провайдера
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*model.ExternalIdentity, error)
}

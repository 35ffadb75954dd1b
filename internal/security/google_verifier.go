package security

import (
	"context"
	"fmt"

	"dataroom-server/internal/model"
	"dataroom-server/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// GoogleIDTokenVerifier : проверяет ID-токен Google Sign-In по публичным ключам Google
type GoogleIDTokenVerifier struct {
	keyFunc  jwt.Keyfunc
	audience string
}

// NewGoogleIDTokenVerifier : ключи JWKS кэшируются и обновляются библиотекой
func NewGoogleIDTokenVerifier(ctx context.Context, clientID string) (*GoogleIDTokenVerifier, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{googleJWKSURL})
	if err != nil {
		return nil, util.LogError("[GoogleVerifier] ошибка загрузки JWKS", err)
	}
	return NewGoogleIDTokenVerifierWithKeyfunc(clientID, jwks.Keyfunc), nil
}

func NewGoogleIDTokenVerifierWithKeyfunc(clientID string, keyFunc jwt.Keyfunc) *GoogleIDTokenVerifier {
	return &GoogleIDTokenVerifier{keyFunc: keyFunc, audience: clientID}
}

func (v *GoogleIDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*model.ExternalIdentity, error) {
	claims := &googleClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("[GoogleVerifier] невалидный ID-токен: %w", err)
	}

	if _, ok := googleIssuers[claims.Issuer]; !ok {
		return nil, fmt.Errorf("[GoogleVerifier] неизвестный издатель %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("[GoogleVerifier] в токене нет sub")
	}

	return &model.ExternalIdentity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

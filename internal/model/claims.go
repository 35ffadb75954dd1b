package model

import "github.com/golang-jwt/jwt/v5"

// Claims : полезная нагрузка access-токена
type Claims struct {
	UserID         string `json:"user_id"`
	RefreshTokenID string `json:"refresh_token_id"`
	IsAdmin        bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// ExternalIdentity : проверенная личность внешнего провайдера (Google Sign-In)
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

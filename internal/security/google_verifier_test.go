package security_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"dataroom-server/internal/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signGoogleToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestGoogleIDTokenVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := security.NewGoogleIDTokenVerifierWithKeyfunc("client-id", func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})

	valid := jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            "client-id",
		"sub":            "google-123",
		"email":          "alice@gmail.com",
		"email_verified": true,
		"name":           "Alice",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}

	identity, err := verifier.VerifyIDToken(context.Background(), signGoogleToken(t, key, valid))
	require.NoError(t, err)
	assert.Equal(t, "google-123", identity.Subject)
	assert.Equal(t, "alice@gmail.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Alice", identity.Name)

	tests := []struct {
		name  string
		patch jwt.MapClaims
	}{
		{name: "чужая аудитория", patch: jwt.MapClaims{"aud": "other"}},
		{name: "чужой издатель", patch: jwt.MapClaims{"iss": "evil.example.com"}},
		{name: "истёк", patch: jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}},
		{name: "без sub", patch: jwt.MapClaims{"sub": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			for k, v := range valid {
				claims[k] = v
			}
			for k, v := range tt.patch {
				claims[k] = v
			}

			_, err := verifier.VerifyIDToken(context.Background(), signGoogleToken(t, key, claims))
			assert.Error(t, err)
		})
	}
}

package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/handler"
	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(auth *MockAuthenticationService, jwt *MockJWTService) http.Handler {
	h := handler.NewAuthenticationHandler(auth, jwt)
	r := chi.NewRouter()
	r.Post("/api/auth", h.Login)
	r.Post("/api/auth/google", h.LoginWithGoogle)
	r.Post("/api/auth/refresh", h.RefreshToken)
	r.Get("/api/auth/me", h.GetCurrentUser)
	r.Delete("/api/auth/{token}", h.Logout)
	return r
}

func TestAuthenticationHandler_Login(t *testing.T) {
	auth := new(MockAuthenticationService)
	auth.On("Login", mock.Anything, "anna", "secret", mock.Anything, mock.Anything).
		Return(&model.TokensPair{AccessToken: "access", RefreshToken: "refresh"}, nil)
	auth.On("Login", mock.Anything, "anna", "wrong", mock.Anything, mock.Anything).
		Return(nil, apperror.Unauthorized("неверный логин или пароль"))

	router := authRouter(auth, new(MockJWTService))

	rec := serveAs(router, "", jsonRequest(http.MethodPost, "/api/auth", `{"login":"anna","password":"secret"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.TokensResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "access", resp.Response.AccessToken)
	assert.Equal(t, "bearer", resp.Response.TokenType)

	rec = serveAs(router, "", jsonRequest(http.MethodPost, "/api/auth", `{"login":"anna","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "неверный логин или пароль", decodeError(t, rec).Text)

	rec = serveAs(router, "", jsonRequest(http.MethodPost, "/api/auth", `{"login":"anna"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAuthenticationHandler_LoginWithGoogle(t *testing.T) {
	auth := new(MockAuthenticationService)
	auth.On("LoginWithGoogle", mock.Anything, "id-token", mock.Anything, mock.Anything).
		Return(&model.TokensPair{AccessToken: "access", RefreshToken: "refresh"}, nil)

	rec := serveAs(authRouter(auth, new(MockJWTService)), "", jsonRequest(http.MethodPost, "/api/auth/google", `{"id_token":"id-token"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	auth.AssertExpectations(t)
}

func TestAuthenticationHandler_RefreshToken(t *testing.T) {
	auth := new(MockAuthenticationService)
	auth.On("RefreshToken", mock.Anything, mock.Anything, mock.Anything, "old-access", "old-refresh").
		Return(&model.TokensPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)

	router := authRouter(auth, new(MockJWTService))

	req := jsonRequest(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old-refresh"}`)
	rec := serveAs(router, "", req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = jsonRequest(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old-refresh"}`)
	req.Header.Set("Authorization", "Bearer old-access")
	rec = serveAs(router, "", req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp requestresponse.TokensResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "new-refresh", resp.Response.RefreshToken)
}

func TestAuthenticationHandler_GetCurrentUser(t *testing.T) {
	router := authRouter(new(MockAuthenticationService), new(MockJWTService))

	rec := serveAs(router, "u1", httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp requestresponse.CurrentUserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "u1", resp.Response.UserID)
	assert.False(t, resp.Response.IsAdmin)
}

func TestAuthenticationHandler_Logout(t *testing.T) {
	auth := new(MockAuthenticationService)
	jwt := new(MockJWTService)
	jwt.On("ValidateJWT", "good").Return(&model.Claims{UserID: "u1", RefreshTokenID: "rt1"}, nil)
	jwt.On("ValidateJWT", "bad").Return(nil, errors.New("token is expired"))
	auth.On("Logout", mock.Anything, "rt1").Return(nil)

	router := authRouter(auth, jwt)

	rec := serveAs(router, "", httptest.NewRequest(http.MethodDelete, "/api/auth/good", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.LogoutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Response, 1)
	assert.Equal(t, "rt1", resp.Response[0].RefreshTokenID)
	assert.True(t, resp.Response[0].Deleted)

	rec = serveAs(router, "", httptest.NewRequest(http.MethodDelete, "/api/auth/bad", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth.AssertNumberOfCalls(t, "Logout", 1)
}

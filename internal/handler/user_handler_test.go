package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dataroom-server/internal/apperror"
	"dataroom-server/internal/handler"
	"dataroom-server/internal/model"
	"dataroom-server/internal/model/requestresponse"
	"dataroom-server/internal/security"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userRouter(users *MockUserService) http.Handler {
	h := handler.NewUserHandler(users)
	r := chi.NewRouter()
	r.Post("/api/register", h.RegisterUser)
	r.Get("/api/users/me", h.GetMe)
	r.Patch("/api/users/me", h.UpdateMe)
	r.Get("/api/users", h.ListUsers)
	r.Get("/api/users/{id}", h.GetUser)
	r.Patch("/api/users/{id}/active", h.SetActive)
	return r
}

func TestUserHandler_RegisterUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		expected   int
	}{
		{"created", `{"email":"anna@example.com","username":"anna","full_name":"Анна","password":"secret"}`, nil, http.StatusCreated},
		{"bad json", `{"email":`, nil, http.StatusBadRequest},
		{"bad email", `{"email":"not-an-email","username":"anna","password":"secret"}`, nil, http.StatusUnprocessableEntity},
		{"short username", `{"email":"anna@example.com","username":"an","password":"secret"}`, nil, http.StatusUnprocessableEntity},
		{"taken", `{"email":"anna@example.com","username":"anna","password":"secret"}`, apperror.Conflict("email уже занят"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserService)
			if tt.serviceErr != nil {
				users.On("Register", mock.Anything, "anna@example.com", "anna", "", "secret", mock.Anything, mock.Anything).
					Return(nil, nil, tt.serviceErr)
			} else {
				users.On("Register", mock.Anything, "anna@example.com", "anna", "Анна", "secret", mock.Anything, mock.Anything).
					Return(&model.User{ID: "u1", Email: "anna@example.com", Username: "anna"}, &model.TokensPair{AccessToken: "a", RefreshToken: "r"}, nil).
					Maybe()
			}

			rec := serveAs(userRouter(users), "", jsonRequest(http.MethodPost, "/api/register", tt.body))

			assert.Equal(t, tt.expected, rec.Code)
			if tt.expected == http.StatusCreated {
				var resp requestresponse.RegisterResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "u1", resp.Data.ID)
				assert.Equal(t, "a", resp.Tokens.AccessToken)
				assert.NotContains(t, rec.Body.String(), "hashed_password")
			}
		})
	}
}

func TestUserHandler_UpdateMe(t *testing.T) {
	users := new(MockUserService)
	users.On("UpdateUser", mock.Anything, "u1", mock.MatchedBy(func(patch model.UserPatch) bool {
		return patch.FullName != nil && *patch.FullName == "Анна К." && patch.Email == nil && patch.Password == nil
	})).Return(&model.User{ID: "u1", FullName: "Анна К."}, nil)

	rec := serveAs(userRouter(users), "u1", jsonRequest(http.MethodPatch, "/api/users/me", `{"full_name":"Анна К."}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertExpectations(t)
}

func TestUserHandler_GetUser(t *testing.T) {
	users := new(MockUserService)
	users.On("GetUser", mock.Anything, "u1", "u2", false).Return(nil, apperror.Forbidden("нет доступа к профилю"))
	users.On("GetUser", mock.Anything, "u1", "u1", false).Return(&model.User{ID: "u1"}, nil)

	router := userRouter(users)

	rec := serveAs(router, "u1", httptest.NewRequest(http.MethodGet, "/api/users/u2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serveAs(router, "u1", httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(router, "", httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_AdminEndpoints(t *testing.T) {
	users := new(MockUserService)
	users.On("ListUsers", mock.Anything, true, "c1", 100).Return([]*model.User{{ID: "u1"}}, "c2", nil)
	users.On("SetActive", mock.Anything, true, "u2", false).Return(&model.User{ID: "u2", IsActive: false}, nil)

	router := userRouter(users)
	asAdmin := func(req *http.Request) *httptest.ResponseRecorder {
		req = req.WithContext(security.WithClaims(req.Context(), &model.Claims{UserID: "admin", IsAdmin: true}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := asAdmin(httptest.NewRequest(http.MethodGet, "/api/users?cursor=c1&limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.ListUsersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "c2", resp.Data.NextCursor)
	assert.Len(t, resp.Data.Users, 1)

	rec = asAdmin(jsonRequest(http.MethodPatch, "/api/users/u2/active", `{"is_active":false}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = asAdmin(jsonRequest(http.MethodPatch, "/api/users/u2/active", `{}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	users.AssertExpectations(t)
}

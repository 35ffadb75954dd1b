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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sharingRouter(sharing *MockSharingService) http.Handler {
	documentShares := handler.NewShareHandler(sharing, model.ResourceDocument)
	folderShares := handler.NewShareHandler(sharing, model.ResourceFolder)

	r := chi.NewRouter()
	r.Route("/api/docs/{id}/shares", func(r chi.Router) {
		r.Post("/", documentShares.CreateShare)
		r.Get("/", documentShares.ListShares)
		r.Patch("/{share_id}", documentShares.UpdateShare)
		r.Delete("/{share_id}", documentShares.RemoveShare)
	})
	r.Route("/api/folders/{id}/shares", func(r chi.Router) {
		r.Post("/", folderShares.CreateShare)
		r.Delete("/{share_id}", folderShares.RemoveShare)
	})
	r.Get("/api/access/{resource_type}/{id}", handler.CheckAccess(sharing))
	return r
}

func TestShareHandler_CreateShare(t *testing.T) {
	sharing := new(MockSharingService)
	router := sharingRouter(sharing)

	sharing.On("CreateShare", mock.Anything, "u1", model.ResourceFolder, "f1", "u2", model.Capabilities{CanEdit: true, CanShare: true}).
		Return(&model.Share{ID: "s1", UserID: "u2"}, nil)
	sharing.On("CreateShare", mock.Anything, "u1", model.ResourceDocument, "d1", "u2", model.Capabilities{}).
		Return(nil, apperror.Conflict("доступ для пользователя %s уже выдан", "u2"))

	rec := serveAs(router, "u1", jsonRequest(http.MethodPost, "/api/folders/f1/shares", `{"user_id":"u2","can_edit":true,"can_share":true}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp requestresponse.ShareResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "s1", resp.Data.ID)

	rec = serveAs(router, "u1", jsonRequest(http.MethodPost, "/api/docs/d1/shares", `{"user_id":"u2"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "доступ для пользователя u2 уже выдан", decodeError(t, rec).Text)

	rec = serveAs(router, "u1", jsonRequest(http.MethodPost, "/api/docs/d1/shares", `{"can_edit":true}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	sharing.AssertNumberOfCalls(t, "CreateShare", 2)
}

func TestShareHandler_UpdateAndRemove(t *testing.T) {
	sharing := new(MockSharingService)
	router := sharingRouter(sharing)

	sharing.On("UpdateShare", mock.Anything, "u1", model.ResourceDocument, "s1", mock.MatchedBy(func(patch model.CapabilitiesPatch) bool {
		return patch.CanEdit != nil && !*patch.CanEdit && patch.CanDelete == nil && patch.CanShare == nil
	})).Return(&model.Share{ID: "s1"}, nil)
	sharing.On("RemoveShare", mock.Anything, "u1", model.ResourceFolder, "s9").Return(apperror.Forbidden("отзывать доступ может только владелец"))

	rec := serveAs(router, "u1", jsonRequest(http.MethodPatch, "/api/docs/d1/shares/s1", `{"can_edit":false}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(router, "u1", httptest.NewRequest(http.MethodDelete, "/api/folders/f1/shares/s9", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	sharing.AssertExpectations(t)
}

func TestShareHandler_ListShares(t *testing.T) {
	sharing := new(MockSharingService)
	sharing.On("ListShares", mock.Anything, "u1", model.ResourceDocument, "d1").
		Return([]model.Share{{ID: "s1"}, {ID: "s2"}}, nil)

	rec := serveAs(sharingRouter(sharing), "u1", httptest.NewRequest(http.MethodGet, "/api/docs/d1/shares", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.ListSharesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
}

func TestCheckAccess(t *testing.T) {
	sharing := new(MockSharingService)
	router := sharingRouter(sharing)

	sharing.On("CheckAccess", mock.Anything, "u2", model.ResourceDocument, "d1", model.OperationRead).Return(true, nil)
	sharing.On("CheckAccess", mock.Anything, "u2", model.ResourceFolder, "f1", model.OperationDelete).Return(false, nil)
	sharing.On("CheckAccess", mock.Anything, "u2", model.ResourceDocument, "gone", model.OperationRead).Return(false, apperror.NotFound("документ gone не найден"))

	t.Run("default operation", func(t *testing.T) {
		rec := serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/access/document/d1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp requestresponse.AccessResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Data.Allowed)
		assert.Equal(t, model.OperationRead, resp.Data.Operation)
	})

	t.Run("denied is not an error", func(t *testing.T) {
		rec := serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/access/folder/f1?operation=delete", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp requestresponse.AccessResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Data.Allowed)
	})

	t.Run("deleted resource", func(t *testing.T) {
		rec := serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/access/document/gone", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad input", func(t *testing.T) {
		rec := serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/access/project/p1", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/access/document/d1?operation=admin", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := serveAs(router, "", httptest.NewRequest(http.MethodGet, "/api/access/document/d1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	sharing.AssertNumberOfCalls(t, "CheckAccess", 3)
}

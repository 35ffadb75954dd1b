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

func folderRouter(folders *MockFolderService) http.Handler {
	h := handler.NewFolderHandler(folders)
	r := chi.NewRouter()
	r.Post("/api/folders", h.CreateFolder)
	r.Get("/api/folders", h.ListFolders)
	r.Get("/api/folders/shared", h.ListSharedFolders)
	r.Get("/api/folders/{id}", h.GetFolder)
	r.Patch("/api/folders/{id}", h.UpdateFolder)
	r.Delete("/api/folders/{id}", h.DeleteFolder)
	return r
}

func TestFolderHandler_CreateFolder(t *testing.T) {
	folders := new(MockFolderService)
	folders.On("CreateFolder", mock.Anything, "u1", mock.MatchedBy(func(input model.NewFolder) bool {
		return input.Name == "Сделка" && input.ParentID != nil && *input.ParentID == "f0"
	})).Return(&model.Folder{ID: "f1", Name: "Сделка", OwnerID: "u1"}, nil)

	router := folderRouter(folders)

	rec := serveAs(router, "u1", jsonRequest(http.MethodPost, "/api/folders", `{"name":"Сделка","parent_id":"f0"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp requestresponse.FolderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "f1", resp.Data.ID)

	rec = serveAs(router, "u1", jsonRequest(http.MethodPost, "/api/folders", `{"description":"без имени"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	folders.AssertNumberOfCalls(t, "CreateFolder", 1)
}

func TestFolderHandler_ListFolders(t *testing.T) {
	folders := new(MockFolderService)
	folders.On("ListFolders", mock.Anything, "u1", (*string)(nil)).Return([]model.Folder{{ID: "f1"}}, nil)
	folders.On("ListFolders", mock.Anything, "u1", mock.MatchedBy(func(parentID *string) bool {
		return parentID != nil && *parentID == "f1"
	})).Return([]model.Folder{{ID: "f2"}, {ID: "f3"}}, nil)
	folders.On("ListSharedFolders", mock.Anything, "u2").Return([]model.Folder{}, nil)

	router := folderRouter(folders)

	rec := serveAs(router, "u1", httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp requestresponse.ListFoldersResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)

	rec = serveAs(router, "u1", httptest.NewRequest(http.MethodGet, "/api/folders?parent_id=f1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)

	rec = serveAs(router, "u2", httptest.NewRequest(http.MethodGet, "/api/folders/shared", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	folders.AssertExpectations(t)
}

func TestFolderHandler_UpdateFolder(t *testing.T) {
	folders := new(MockFolderService)
	folders.On("UpdateFolder", mock.Anything, "u1", "f2", model.FolderPatch{ClearParent: true}).
		Return(&model.Folder{ID: "f2"}, nil)
	folders.On("UpdateFolder", mock.Anything, "u1", "f1", mock.MatchedBy(func(patch model.FolderPatch) bool {
		return patch.ParentID != nil && *patch.ParentID == "f2"
	})).Return(nil, apperror.Validation("папку нельзя перенести в её же подпапку"))

	router := folderRouter(folders)

	rec := serveAs(router, "u1", jsonRequest(http.MethodPatch, "/api/folders/f2", `{"parent_id":""}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveAs(router, "u1", jsonRequest(http.MethodPatch, "/api/folders/f1", `{"parent_id":"f2"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "папку нельзя перенести в её же подпапку", decodeError(t, rec).Text)

	folders.AssertExpectations(t)
}

func TestFolderHandler_DeleteFolder(t *testing.T) {
	folders := new(MockFolderService)
	folders.On("DeleteFolder", mock.Anything, "u2", "f1").Return(apperror.Forbidden("нет права delete на папку f1"))

	rec := serveAs(folderRouter(folders), "u2", httptest.NewRequest(http.MethodDelete, "/api/folders/f1", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	folders.AssertExpectations(t)
}

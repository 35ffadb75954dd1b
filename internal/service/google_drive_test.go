package service_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	reportBytes = []byte("%PDF-1.7 report")
	reportSum   = md5.Sum(reportBytes)
)

// fakeDrive : минимальный Drive API v3 для одного пользователя
func fakeDrive(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, value any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(value))
	}

	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("q") != "'root' in parents and trashed = false" || query.Get("pageSize") != "50" {
			http.Error(w, `{"error":{"code":400,"message":"bad query"}}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"nextPageToken": "page-2",
			"files": []map[string]any{
				{"id": "folder-1", "name": "Сделка", "mimeType": "application/vnd.google-apps.folder"},
				{"id": "report", "name": "report.pdf", "mimeType": "application/pdf", "size": "15"},
			},
		})
	})

	mux.HandleFunc("GET /files/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "doc-1" || r.URL.Query().Get("mimeType") != "application/pdf" {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("%PDF exported"))
	})

	mux.HandleFunc("GET /files/{id}", func(w http.ResponseWriter, r *http.Request) {
		media := r.URL.Query().Get("alt") == "media"
		switch r.PathValue("id") {
		case "report":
			if media {
				_, _ = w.Write(reportBytes)
				return
			}
			writeJSON(w, map[string]any{
				"id":           "report",
				"name":         "report.pdf",
				"mimeType":     "application/pdf",
				"size":         "15",
				"md5Checksum":  hex.EncodeToString(reportSum[:]),
				"modifiedTime": "2024-01-02T03:04:05.000Z",
			})
		case "login-page":
			_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Sign in</body></html>"))
		default:
			http.Error(w, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
		}
	})

	mux.HandleFunc("GET /about", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"storageQuota": map[string]any{"limit": "1000", "usage": "400", "usageInDrive": "300"},
		})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			http.Error(w, `{"error":{"code":401,"message":"unauthorized"}}`, http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func newDriveClient(t *testing.T) (*service.GoogleDriveClient, string) {
	t.Helper()

	server := httptest.NewServer(fakeDrive(t))
	t.Cleanup(server.Close)

	r := newRoom(t)
	owner := r.user(t, "owner")
	expiry := time.Now().Add(time.Hour)
	require.NoError(t, r.integrations.Upsert(context.Background(), &model.ExternalIntegration{
		ID:           uuid.NewString(),
		UserID:       owner,
		Provider:     model.ProviderGoogleDrive,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenExpiry:  &expiry,
	}))

	client := service.NewGoogleDriveClient(&config.GoogleConfig{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RedirectURL:    "http://localhost/callback",
		RequestTimeout: "5s",
		PageSize:       50,
	}, r.integrations).WithTransport(server.Client(), server.URL+"/")

	return client, owner
}

func TestGoogleDrive_AuthCodeURL(t *testing.T) {
	client := service.NewGoogleDriveClient(&config.GoogleConfig{ClientID: "client-id", RequestTimeout: "5s"}, nil)

	url := client.AuthCodeURL("signed-state")

	assert.Contains(t, url, "state=signed-state")
	assert.Contains(t, url, "access_type=offline")
	assert.Contains(t, url, "client_id=client-id")
}

func TestGoogleDrive_ListRemote(t *testing.T) {
	client, owner := newDriveClient(t)

	page, err := client.ListRemote(context.Background(), owner, "", "")
	require.NoError(t, err)

	assert.Equal(t, "page-2", page.NextPageToken)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].IsFolder)
	assert.False(t, page.Items[1].IsFolder)
	assert.Equal(t, int64(15), page.Items[1].Size)
}

func TestGoogleDrive_GetAndFetch(t *testing.T) {
	client, owner := newDriveClient(t)
	ctx := context.Background()

	item, err := client.GetRemoteItem(ctx, owner, "report")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", item.Name)
	require.NotNil(t, item.ModifiedTime)
	assert.Equal(t, 2024, item.ModifiedTime.Year())

	content, err := client.FetchRemoteContent(ctx, owner, *item)
	require.NoError(t, err)
	assert.Equal(t, reportBytes, content.Data)
	assert.Equal(t, "application/pdf", content.MimeType)

	_, err = client.GetRemoteItem(ctx, owner, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGoogleDrive_FetchExportsGoogleDocs(t *testing.T) {
	client, owner := newDriveClient(t)

	content, err := client.FetchRemoteContent(context.Background(), owner, model.RemoteItem{
		ID:       "doc-1",
		Name:     "Term sheet",
		MimeType: "application/vnd.google-apps.document",
	})
	require.NoError(t, err)

	assert.Equal(t, "Term sheet.pdf", content.Name)
	assert.Equal(t, "application/pdf", content.MimeType)
	assert.Equal(t, []byte("%PDF exported"), content.Data)
}

func TestGoogleDrive_FetchRejectsBadContent(t *testing.T) {
	client, owner := newDriveClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item model.RemoteItem
	}{
		{"folder", model.RemoteItem{ID: "folder-1", Name: "Сделка", IsFolder: true}},
		{"html instead of file", model.RemoteItem{ID: "login-page", Name: "scan.pdf", MimeType: "application/pdf"}},
		{"checksum mismatch", model.RemoteItem{ID: "report", Name: "report.pdf", MimeType: "application/pdf", MD5Checksum: "00112233445566778899aabbccddeeff"}},
		{"unsupported export", model.RemoteItem{ID: "form-1", Name: "Опрос", MimeType: "application/vnd.google-apps.form"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchRemoteContent(ctx, owner, tt.item)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestGoogleDrive_NotConnected(t *testing.T) {
	client, _ := newDriveClient(t)

	_, err := client.ListRemote(context.Background(), "someone-else", "", "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGoogleDrive_StorageQuota(t *testing.T) {
	client, owner := newDriveClient(t)

	quota, err := client.StorageQuota(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, &model.StorageQuota{Limit: 1000, Usage: 400, UsageInDrive: 300}, quota)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `O\'Brien`, service.EscapeQuery("O'Brien"))
	assert.Equal(t, `a\\b`, service.EscapeQuery(`a\b`))
}

func TestVerifyContent(t *testing.T) {
	item := model.RemoteItem{Name: "a.txt", MimeType: "text/plain"}

	assert.ErrorIs(t, service.VerifyContent(item, &model.RemoteContent{}), apperror.ErrValidation)
	assert.NoError(t, service.VerifyContent(item, &model.RemoteContent{MimeType: "text/plain", Data: []byte("hello")}))

	page := &model.RemoteContent{MimeType: "text/html", Data: []byte("<html></html>")}
	assert.NoError(t, service.VerifyContent(model.RemoteItem{Name: "page.html", MimeType: "text/html"}, page))
}

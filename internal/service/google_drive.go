package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"
	"dataroom-server/internal/ports"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	googleAppsPrefix = "application/vnd.google-apps."
	driveFolderMime  = "application/vnd.google-apps.folder"

	driveFileFields googleapi.Field = "id,name,mimeType,size,md5Checksum,modifiedTime,webViewLink"
	driveListFields googleapi.Field = "nextPageToken,files(id,name,mimeType,size,md5Checksum,modifiedTime,webViewLink)"
)

// exportFormats : google-документы скачиваются только через экспорт
var exportFormats = map[string]struct {
	mime string
	ext  string
}{
	"application/vnd.google-apps.document":     {"application/pdf", ".pdf"},
	"application/vnd.google-apps.spreadsheet":  {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
	"application/vnd.google-apps.presentation": {"application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx"},
	"application/vnd.google-apps.drawing":      {"image/png", ".png"},
}

// GoogleDriveClient : ports.RemoteDrive поверх Drive API v3. Токены пользователя хранятся
// в IntegrationRepository, обновлённые токены сохраняются обратно.
type GoogleDriveClient struct {
	oauth        *oauth2.Config
	integrations ports.IntegrationRepository
	pageSize     int64
	timeout      time.Duration
	httpClient   *http.Client
	endpoint     string
}

func NewGoogleDriveClient(cfg *config.GoogleConfig, integrations ports.IntegrationRepository) *GoogleDriveClient {
	return &GoogleDriveClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		integrations: integrations,
		pageSize:     cfg.PageSize,
		timeout:      config.Duration(cfg.RequestTimeout),
	}
}

// WithTransport : свой HTTP-клиент и адрес API (httptest)
func (c *GoogleDriveClient) WithTransport(httpClient *http.Client, endpoint string) *GoogleDriveClient {
	c.httpClient = httpClient
	c.endpoint = endpoint
	return c
}

func (c *GoogleDriveClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *GoogleDriveClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange : обмен кода на токены и получение email аккаунта Google
func (c *GoogleDriveClient) Exchange(ctx context.Context, code string) (*model.ProviderToken, *model.RemoteAccount, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("[GoogleDrive] ошибка обмена кода: %v", err)
		return nil, nil, apperror.Validation("не удалось обменять код авторизации Google")
	}

	srv, err := c.newService(ctx, c.oauth.TokenSource(ctx, token))
	if err != nil {
		return nil, nil, err
	}

	about, err := srv.About.Get().Fields("user(emailAddress,permissionId)").Context(ctx).Do()
	if err != nil {
		return nil, nil, driveError("получение аккаунта", err)
	}

	account := &model.RemoteAccount{}
	if about.User != nil {
		account.ProviderUserID = about.User.PermissionId
		account.Email = about.User.EmailAddress
	}
	return toProviderToken(token), account, nil
}

func toProviderToken(token *oauth2.Token) *model.ProviderToken {
	result := &model.ProviderToken{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		result.Expiry = &expiry
	}
	return result
}

func (c *GoogleDriveClient) newService(ctx context.Context, source oauth2.TokenSource) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, source))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, apperror.Unavailable("[GoogleDrive] не удалось создать клиент Drive", err)
	}
	return srv, nil
}

// userService : клиент Drive с токенами пользователя
func (c *GoogleDriveClient) userService(ctx context.Context, userID string) (*drive.Service, error) {
	integration, err := c.integrations.Get(ctx, userID, model.ProviderGoogleDrive)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.NotFound("Google Drive не подключён")
	}
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  integration.AccessToken,
		RefreshToken: integration.RefreshToken,
		TokenType:    "Bearer",
	}
	if integration.TokenExpiry != nil {
		token.Expiry = *integration.TokenExpiry
	}

	source := &persistingTokenSource{
		base:         c.oauth.TokenSource(context.WithoutCancel(ctx), token),
		integrations: c.integrations,
		integration:  integration,
	}
	return c.newService(ctx, oauth2.ReuseTokenSource(token, source))
}

// persistingTokenSource : сохраняет обновлённый access-токен в хранилище интеграций
type persistingTokenSource struct {
	mu           sync.Mutex
	base         oauth2.TokenSource
	integrations ports.IntegrationRepository
	integration  *model.ExternalIntegration
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token.AccessToken == p.integration.AccessToken {
		return token, nil
	}

	refreshed := toProviderToken(token)
	p.integration.AccessToken = refreshed.AccessToken
	p.integration.TokenExpiry = refreshed.Expiry
	if refreshed.RefreshToken != "" {
		p.integration.RefreshToken = refreshed.RefreshToken
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.integrations.Upsert(ctx, p.integration); err != nil {
		log.Printf("[GoogleDrive] не удалось сохранить обновлённый токен: %v", err)
	}
	return token, nil
}

func driveError(what string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return apperror.NotFound("Google Drive: %s: не найдено", what)
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperror.Forbidden("Google Drive: %s: доступ запрещён", what)
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return apperror.Forbidden("Google Drive: токен отозван, подключите Drive заново")
	}
	return apperror.Unavailable("[GoogleDrive] "+what, err)
}

func toRemoteItem(file *drive.File) model.RemoteItem {
	item := model.RemoteItem{
		ID:          file.Id,
		Name:        file.Name,
		MimeType:    file.MimeType,
		Size:        file.Size,
		IsFolder:    file.MimeType == driveFolderMime,
		MD5Checksum: file.Md5Checksum,
		WebViewLink: file.WebViewLink,
	}
	if modified, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
		item.ModifiedTime = &modified
	}
	return item
}

func toRemotePage(list *drive.FileList) *model.RemotePage {
	page := &model.RemotePage{Items: make([]model.RemoteItem, 0, len(list.Files)), NextPageToken: list.NextPageToken}
	for _, file := range list.Files {
		page.Items = append(page.Items, toRemoteItem(file))
	}
	return page
}

// escapeQuery : экранирование строкового литерала в языке запросов Drive
func escapeQuery(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}

func (c *GoogleDriveClient) list(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	srv, err := c.userService(ctx, userID)
	if err != nil {
		return nil, err
	}

	call := srv.Files.List().Q(query).Fields(driveListFields).OrderBy("folder,name").Context(ctx)
	if c.pageSize > 0 {
		call = call.PageSize(c.pageSize)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	list, err := call.Do()
	if err != nil {
		return nil, driveError("список файлов", err)
	}
	return toRemotePage(list), nil
}

func (c *GoogleDriveClient) ListRemote(ctx context.Context, userID, folderRef, pageToken string) (*model.RemotePage, error) {
	if folderRef == "" {
		folderRef = "root"
	}
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderRef))
	return c.list(ctx, userID, query, pageToken)
}

func (c *GoogleDriveClient) SearchRemote(ctx context.Context, userID, query, pageToken string) (*model.RemotePage, error) {
	q := fmt.Sprintf("name contains '%s' and trashed = false", escapeQuery(query))
	return c.list(ctx, userID, q, pageToken)
}

func (c *GoogleDriveClient) GetRemoteItem(ctx context.Context, userID, itemRef string) (*model.RemoteItem, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	srv, err := c.userService(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := srv.Files.Get(itemRef).Fields(driveFileFields).Context(ctx).Do()
	if err != nil {
		return nil, driveError("файл "+itemRef, err)
	}
	item := toRemoteItem(file)
	return &item, nil
}

// FetchRemoteContent : google-документы экспортируются, остальные файлы скачиваются как есть
func (c *GoogleDriveClient) FetchRemoteContent(ctx context.Context, userID string, item model.RemoteItem) (*model.RemoteContent, error) {
	if item.IsFolder {
		return nil, apperror.Validation("%s: это папка, а не файл", item.Name)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	srv, err := c.userService(ctx, userID)
	if err != nil {
		return nil, err
	}

	content := &model.RemoteContent{Name: item.Name, MimeType: item.MimeType}
	var response *http.Response

	if strings.HasPrefix(item.MimeType, googleAppsPrefix) {
		format, ok := exportFormats[item.MimeType]
		if !ok {
			return nil, apperror.Validation("тип %s не поддерживает экспорт", item.MimeType)
		}
		content.MimeType = format.mime
		if !strings.HasSuffix(strings.ToLower(content.Name), format.ext) {
			content.Name += format.ext
		}
		response, err = srv.Files.Export(item.ID, format.mime).Context(ctx).Download()
	} else {
		response, err = srv.Files.Get(item.ID).Context(ctx).Download()
	}
	if err != nil {
		return nil, driveError("скачивание "+item.Name, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, apperror.Unavailable("[GoogleDrive] ошибка чтения "+item.Name, err)
	}
	content.Data = data

	if err := verifyContent(item, content); err != nil {
		return nil, err
	}
	return content, nil
}

// verifyContent : пустой ответ, HTML-страница ошибки вместо файла и несовпадение md5 отвергаются
func verifyContent(item model.RemoteItem, content *model.RemoteContent) error {
	if len(content.Data) == 0 {
		return apperror.Validation("файл %s пустой", item.Name)
	}
	if content.MimeType != "text/html" && looksLikeHTML(content.Data) {
		return apperror.Validation("вместо файла %s получена HTML-страница", item.Name)
	}
	if item.MD5Checksum != "" && !strings.HasPrefix(item.MimeType, googleAppsPrefix) {
		sum := md5.Sum(content.Data)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), item.MD5Checksum) {
			return apperror.Validation("контрольная сумма файла %s не совпала", item.Name)
		}
	}
	return nil
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func (c *GoogleDriveClient) StorageQuota(ctx context.Context, userID string) (*model.StorageQuota, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	srv, err := c.userService(ctx, userID)
	if err != nil {
		return nil, err
	}

	about, err := srv.About.Get().Fields("storageQuota").Context(ctx).Do()
	if err != nil {
		return nil, driveError("квота", err)
	}

	quota := &model.StorageQuota{}
	if about.StorageQuota != nil {
		quota.Limit = about.StorageQuota.Limit
		quota.Usage = about.StorageQuota.Usage
		quota.UsageInDrive = about.StorageQuota.UsageInDrive
	}
	return quota, nil
}

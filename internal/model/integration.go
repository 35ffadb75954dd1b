package model

import "time"

const ProviderGoogleDrive = "google_drive"

type ExternalIntegration struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Provider       string     `db:"provider" json:"provider"`
	AccessToken    string     `db:"access_token" json:"-"`
	RefreshToken   string     `db:"refresh_token" json:"-"`
	TokenExpiry    *time.Time `db:"token_expiry" json:"token_expiry,omitempty"`
	ProviderUserID string     `db:"provider_user_id" json:"provider_user_id"`
	ProviderEmail  string     `db:"provider_email" json:"provider_email"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// RemoteItem : файл или папка во внешнем хранилище
type RemoteItem struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MimeType     string     `json:"mime_type"`
	Size         int64      `json:"size"`
	IsFolder     bool       `json:"is_folder"`
	MD5Checksum  string     `json:"md5_checksum,omitempty"`
	ModifiedTime *time.Time `json:"modified_time,omitempty"`
	WebViewLink  string     `json:"web_view_link,omitempty"`
}

type RemotePage struct {
	Items         []RemoteItem `json:"items"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// RemoteContent : скачанное содержимое (для google-документов уже экспортированное)
type RemoteContent struct {
	Name     string
	MimeType string
	Data     []byte
}

type RemoteAccount struct {
	ProviderUserID string
	Email          string
}

type StorageQuota struct {
	Limit        int64 `json:"limit"`
	Usage        int64 `json:"usage"`
	UsageInDrive int64 `json:"usage_in_drive"`
}

// ProviderToken : OAuth-токен внешнего провайдера
type ProviderToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

type ImportRequest struct {
	FileIDs        []string
	IncludeFolders bool
	ParentFolderID *string
	MaxDepth       int
}

type SkippedItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	Documents []Document    `json:"documents"`
	Folders   []Folder      `json:"folders"`
	Skipped   []SkippedItem `json:"skipped"`
}

func (r *ImportReport) Skip(item RemoteItem, reason string) {
	r.Skipped = append(r.Skipped, SkippedItem{ID: item.ID, Name: item.Name, Reason: reason})
}

type IntegrationStatus struct {
	Connected     bool       `json:"connected"`
	ProviderEmail string     `json:"provider_email,omitempty"`
	TokenExpiry   *time.Time `json:"token_expiry,omitempty"`
}

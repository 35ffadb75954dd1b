package model

import "time"

type Document struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	FolderID    *string   `db:"folder_id" json:"folder_id,omitempty"`
	FilePath    string    `db:"file_path" json:"file_path"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentVersion : неизменяемая запись о загруженной версии файла
type DocumentVersion struct {
	ID            string    `db:"id" json:"id"`
	DocumentID    string    `db:"document_id" json:"document_id"`
	VersionNumber int       `db:"version_number" json:"version_number"`
	FilePath      string    `db:"file_path" json:"file_path"`
	FileSize      int64     `db:"file_size" json:"file_size"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DocumentPatch : частичное обновление; nil означает «не менять».
// ClearFolder переносит документ в корень.
type DocumentPatch struct {
	Name        *string
	Description *string
	FolderID    *string
	ClearFolder bool
	IsPublic    *bool
}

// FileUpload : содержимое загружаемого файла
type FileUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NewDocument : параметры создания документа
type NewDocument struct {
	Name        string
	Description string
	FolderID    *string
	IsPublic    bool
	File        FileUpload
}

type DocumentFilter struct {
	FolderID *string
	Search   string
}

// DownloadResult : либо pre-signed ссылка, либо содержимое файла
type DownloadResult struct {
	Document *Document
	URL      string
	Content  []byte
}

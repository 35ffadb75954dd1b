package model

import "time"

type Folder struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	ParentID    *string   `db:"parent_id" json:"parent_id,omitempty"`
	IsDeleted   bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type FolderPatch struct {
	Name        *string
	Description *string
	ParentID    *string
	ClearParent bool
}

type NewFolder struct {
	Name        string
	Description string
	ParentID    *string
}

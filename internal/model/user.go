package model

import "time"

const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Username       string    `db:"username" json:"username"`
	HashedPassword *string   `db:"hashed_password" json:"-"`
	FullName       string    `db:"full_name" json:"full_name"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsSuperuser    bool      `db:"is_superuser" json:"is_superuser"`
	AuthProvider   string    `db:"auth_provider" json:"auth_provider"`
	GoogleID       *string   `db:"google_id" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type UserPatch struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
	IsActive *bool
}

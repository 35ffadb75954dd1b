package config

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		username        TEXT NOT NULL UNIQUE,
		hashed_password TEXT,
		full_name       TEXT NOT NULL DEFAULT '',
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		is_superuser    BOOLEAN NOT NULL DEFAULT FALSE,
		auth_provider   TEXT NOT NULL DEFAULT 'local',
		google_id       TEXT UNIQUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL,
		expire_at  TIMESTAMPTZ NOT NULL,
		used       BOOLEAN NOT NULL DEFAULT FALSE,
		user_agent TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS folders (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id    UUID NOT NULL REFERENCES users(id),
		parent_id   UUID REFERENCES folders(id),
		is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders(owner_id, parent_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id    UUID NOT NULL REFERENCES users(id),
		folder_id   UUID REFERENCES folders(id),
		file_path   TEXT NOT NULL,
		file_type   TEXT NOT NULL DEFAULT 'application/octet-stream',
		file_size   BIGINT NOT NULL CHECK (file_size >= 0),
		is_public   BOOLEAN NOT NULL DEFAULT FALSE,
		is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id, folder_id)`,
	`CREATE TABLE IF NOT EXISTS document_versions (
		id             UUID PRIMARY KEY,
		document_id    UUID NOT NULL REFERENCES documents(id),
		version_number INT NOT NULL CHECK (version_number >= 1),
		file_path      TEXT NOT NULL,
		file_size      BIGINT NOT NULL CHECK (file_size >= 0),
		created_by     UUID NOT NULL REFERENCES users(id),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (document_id, version_number)
	)`,
	`CREATE TABLE IF NOT EXISTS document_shares (
		id          UUID PRIMARY KEY,
		document_id UUID NOT NULL REFERENCES documents(id),
		user_id     UUID NOT NULL REFERENCES users(id),
		can_edit    BOOLEAN NOT NULL DEFAULT FALSE,
		can_delete  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (document_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS folder_shares (
		id         UUID PRIMARY KEY,
		folder_id  UUID NOT NULL REFERENCES folders(id),
		user_id    UUID NOT NULL REFERENCES users(id),
		can_edit   BOOLEAN NOT NULL DEFAULT FALSE,
		can_delete BOOLEAN NOT NULL DEFAULT FALSE,
		can_share  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (folder_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS external_integrations (
		id               UUID PRIMARY KEY,
		user_id          UUID NOT NULL REFERENCES users(id),
		provider         TEXT NOT NULL,
		access_token     TEXT NOT NULL,
		refresh_token    TEXT NOT NULL DEFAULT '',
		token_expiry     TIMESTAMPTZ,
		provider_user_id TEXT NOT NULL DEFAULT '',
		provider_email   TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, provider)
	)`,
}

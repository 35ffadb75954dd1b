package repository

import (
	"context"
	"fmt"
	"time"

	"dataroom-server/config"
	"dataroom-server/internal/apperror"
	"dataroom-server/internal/model"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, username, hashed_password, full_name, is_active, is_superuser,
	auth_provider, google_id, created_at, updated_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// Create : сохраняет нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
	INSERT INTO users (id, email, username, hashed_password, full_name, is_active, is_superuser, auth_provider, google_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`

	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Username, user.HashedPassword, user.FullName,
		user.IsActive, user.IsSuperuser, user.AuthProvider, user.GoogleID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	return translate(err, "[UserRepo] ошибка вставки пользователя")
}

// FindByID : ищет пользователя по id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, "google_id", googleID)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	var user model.User
	if err := sqlx.GetContext(ctx, executor(ctx, r.Database), &user, query, value); err != nil {
		return nil, translate(err, "[UserRepo] пользователь")
	}
	return &user, nil
}

// Update : перезаписывает изменяемые поля пользователя
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, hashed_password = $4, full_name = $5,
		    is_active = $6, auth_provider = $7, google_id = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := executor(ctx, r.Database).QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Username, user.HashedPassword, user.FullName,
		user.IsActive, user.AuthProvider, user.GoogleID,
	).Scan(&user.UpdatedAt)

	return translate(err, "[UserRepo] не удалось обновить пользователя")
}

// List : вывод списка пользователей с cursor-based пагинацией
func (r *UserRepository) List(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM users
        WHERE created_at > $1
        ORDER BY created_at ASC, id ASC
        LIMIT $2
    `, userColumns)

	var cursorTime time.Time
	if cursor != "" {
		parsed, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", apperror.Validation("[UserRepo] неверный курсор: %v", err)
		}
		cursorTime = parsed
	}

	users := make([]*model.User, 0, limit)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.Database), &users, query, cursorTime, limit); err != nil {
		return nil, "", translate(err, "[UserRepo] ошибка получения списка пользователей")
	}

	var nextCursor string
	if len(users) == limit && limit > 0 {
		nextCursor = users[len(users)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return users, nextCursor, nil
}

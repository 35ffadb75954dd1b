package ports

import (
	"context"

	"dataroom-server/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
}

type UserService interface {
	Register(ctx context.Context, email, username, fullName, password, userAgent, ipAddress string) (*model.User, *model.TokensPair, error)
	GetUser(ctx context.Context, actorID, id string, isAdmin bool) (*model.User, error)
	UpdateUser(ctx context.Context, actorID string, patch model.UserPatch) (*model.User, error)
	ListUsers(ctx context.Context, isAdmin bool, cursor string, limit int) ([]*model.User, string, error)
	SetActive(ctx context.Context, isAdmin bool, id string, active bool) (*model.User, error)
}

package requestresponse

import (
	"dataroom-server/internal/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Username string `json:"username" example:"newuser123"`
	FullName string `json:"full_name" example:"Иван Петров"`
	Password string `json:"password" example:"P@ssw0rd!"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.FullName, validation.Length(0, 255)),
		validation.Field(&r.Password, validation.Required),
	)
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"for example: invalid login or password"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// UserResponse : успешный ответ с данными пользователя
type UserResponse struct {
	Data *model.User `json:"data"`
}

// RegisterResponse : созданный пользователь и его первая пара токенов
type RegisterResponse struct {
	Data   *model.User       `json:"data"`
	Tokens *model.TokensPair `json:"tokens"`
}

// UpdateUserRequest : частичное обновление профиля; отсутствующие поля не меняются
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" example:"new@example.com"`
	Username *string `json:"username,omitempty" example:"newlogin123"`
	FullName *string `json:"full_name,omitempty" example:"Иван Петров"`
	Password *string `json:"password,omitempty" example:"N3wP@ssw0rd"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(3, 50)),
		validation.Field(&r.FullName, validation.Length(0, 255)),
		validation.Field(&r.Password, validation.NilOrNotEmpty),
	)
}

func (r UpdateUserRequest) Patch() model.UserPatch {
	return model.UserPatch{
		Email:    r.Email,
		Username: r.Username,
		FullName: r.FullName,
		Password: r.Password,
	}
}

// SetActiveRequest : блокировка или разблокировка пользователя администратором
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" example:"false"`
}

func (r SetActiveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil),
	)
}

// ListUsersResponse : успешный ответ
type ListUsersResponse struct {
	Data struct {
		Users      []*model.User `json:"users"`
		NextCursor string        `json:"next_cursor,omitempty"`
	} `json:"data"`
}

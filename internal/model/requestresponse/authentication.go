package requestresponse

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoginRequest : тело запроса на аутентификацию (логин = email или username)
type LoginRequest struct {
	Login    string `json:"login" example:"user1"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Login, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// GoogleLoginRequest : ID-токен, полученный клиентом от Google Sign-In
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" example:"eyJhbGciOiJSUzI1NiIsImtpZCI6..."`
}

func (r GoogleLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDToken, validation.Required),
	)
}

// TokensResponse : пара токенов после входа или обновления
type TokensResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
		TokenType    string `json:"token_type" example:"bearer"`
	} `json:"response"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		UserID  string `json:"user_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		IsAdmin bool   `json:"is_admin" example:"false"`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

func (r RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// LogoutItem : элемент ответа на logout
type LogoutItem struct {
	RefreshTokenID string `json:"refresh_token_id" example:"1f0e6a5c-3f7b-4c55-9b76-5e2d3c1a0b9f"`
	Deleted        bool   `json:"deleted" example:"true"`
}

// LogoutResponse : ответ на завершение сессии
type LogoutResponse struct {
	Response []LogoutItem `json:"response"`
}

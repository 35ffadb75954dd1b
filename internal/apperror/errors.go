package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError : ошибка, которую обработчик может напрямую отобразить в HTTP-статус
type HTTPError interface {
	error
	StatusCode() int
}

var (
	ErrNotFound     = errors.New("не найдено")
	ErrForbidden    = errors.New("доступ запрещён")
	ErrConflict     = errors.New("уже существует")
	ErrValidation   = errors.New("некорректные данные")
	ErrUnavailable  = errors.New("сервис временно недоступен")
	ErrUnauthorized = errors.New("не авторизован")
)

type (
	// NotFoundError : ресурс отсутствует или мягко удалён
	NotFoundError struct {
		Message string
	}

	// ForbiddenError : движок прав отказал в операции
	ForbiddenError struct {
		Message string
	}

	// ConflictError : нарушение уникальности (повторный шаринг и т.п.)
	ConflictError struct {
		Message string
	}

	ValidationError struct {
		Message string
	}

	// UnavailableError : хранилище или внешний сервис не ответил
	UnavailableError struct {
		Message string
		Err     error
	}

	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *ConflictError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }
func (e *ConflictError) StatusCode() int     { return http.StatusConflict }
func (e *ValidationError) StatusCode() int   { return http.StatusUnprocessableEntity }
func (e *UnavailableError) StatusCode() int  { return http.StatusServiceUnavailable }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }
func (e *ConflictError) Is(target error) bool     { return target == ErrConflict }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnavailableError) Is(target error) bool  { return target == ErrUnavailable }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &UnauthorizedError{Message: fmt.Sprintf(format, args...)}
}

// Unavailable : оборачивает ошибку хранилища; уже типизированные ошибки домена возвращаются как есть
func Unavailable(message string, err error) error {
	if err == nil {
		return nil
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	return &UnavailableError{Message: message, Err: err}
}

// StatusCode : HTTP-статус для произвольной ошибки (500, если тип неизвестен)
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}

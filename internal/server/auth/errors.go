package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation входные данные не прошли проверку (HTTP 400)
	ErrValidation = errors.New("validation failed")

	// ErrConflict email уже зарегистрирован (HTTP 409)
	ErrConflict = errors.New("user already exists")

	// ErrAuthentication неверная пара email/пароль; неизвестный
	// пользователь и неверный пароль не различаются (HTTP 403)
	ErrAuthentication = errors.New("bad credentials")

	// ErrForbidden токен отсутствует, некорректен, истек или отозван (HTTP 403)
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest некорректный заголовок авторизации или неизвестный токен при logout (HTTP 400)
	ErrBadRequest = errors.New("bad request")
)

// ValidationError описывает, какое поле не прошло проверку
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap позволяет сравнивать через errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error()}
}

package models

import (
	"time"

	"github.com/iudanet/authkeeper/internal/permission"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time       `json:"created_at"` // время создания
	ID           string          `json:"id"`         // UUID пользователя
	Name         string          `json:"name"`       // отображаемое имя
	Email        string          `json:"email"`      // уникальный email, регистр сохраняется
	PasswordHash string          `json:"-"`          // bcrypt хеш пароля
	Role         permission.Role `json:"role"`       // роль пользователя
}

package middleware

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// UserKey ключ для хранения аутентифицированного пользователя в контексте
const UserKey contextKey = "user"

// WithUser возвращает контекст с пользователем
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser извлекает пользователя, пропущенного Gate
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

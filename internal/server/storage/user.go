package storage

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

// UserStorage defines interface for user persistence
type UserStorage interface {
	// CreateUser stores a new user together with the first token record
	// in one transaction. Either both rows are written or none.
	// Returns ErrUserAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User, record *models.TokenRecord) error

	// GetUserByEmail retrieves user by exact (case-sensitive) email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

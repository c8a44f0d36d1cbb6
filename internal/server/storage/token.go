package storage

import (
	"context"

	"github.com/iudanet/authkeeper/internal/models"
)

// TokenStorage defines interface for token record persistence.
// Records are never deleted, only flagged.
type TokenStorage interface {
	// IssueToken revokes every active record of record.UserID
	// (expired, revoked and refresh_revoked set to true) and inserts record,
	// atomically and serialized per user.
	IssueToken(ctx context.Context, record *models.TokenRecord) error

	// RotateToken consumes the refresh token of record consumedID
	// (compare-and-swap on refresh_revoked = false), revokes every active
	// record of the same user and inserts record, atomically.
	// Returns ErrTokenConsumed if the refresh token was already consumed.
	RotateToken(ctx context.Context, consumedID string, record *models.TokenRecord) error

	// GetTokenByAccess retrieves record by exact access token string
	// Returns ErrTokenNotFound if record doesn't exist
	GetTokenByAccess(ctx context.Context, accessToken string) (*models.TokenRecord, error)

	// GetActiveTokenByRefresh retrieves record by exact refresh token string
	// whose refresh token has not been consumed
	// Returns ErrTokenNotFound if no such record exists
	GetActiveTokenByRefresh(ctx context.Context, refreshToken string) (*models.TokenRecord, error)

	// RevokeToken marks the record expired and revoked, and its refresh token consumed
	// Returns ErrTokenNotFound if record doesn't exist
	RevokeToken(ctx context.Context, recordID string) error

	// ListUserTokens retrieves all records of a user ordered by creation time
	// Returns empty slice if no records found
	ListUserTokens(ctx context.Context, userID string) ([]*models.TokenRecord, error)
}

// Storage combines the credential store interfaces
type Storage interface {
	UserStorage
	TokenStorage

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

package storage

import (
	"context"
)

// AuthStorage defines interface for storing the client session.
// This is the lowest storage layer: it works with raw data (already sealed
// tokens) and doesn't perform any encryption/decryption itself.
type AuthStorage interface {
	// SaveAuth stores authentication data as-is (tokens should already be sealed)
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored authentication data as-is
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored authentication data (logout)
	// Returns ErrAuthNotFound if no auth data exists
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether a session exists whose access token
	// has not expired yet
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents the client session.
// In memory tokens are plaintext; in storage they are sealed with AES-GCM
// (base64). Email, Salt and ExpiresAt are always stored in clear so that the
// session key can be derived again from the password.
type AuthData struct {
	Email        string `json:"email"`
	Salt         string `json:"salt"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}

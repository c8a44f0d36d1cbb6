package auth

import (
	"context"

	"github.com/iudanet/authkeeper/internal/client/storage"
	pkgapi "github.com/iudanet/authkeeper/pkg/api"
)

// APIClient is the part of the server API the session service uses.
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)
	Authenticate(ctx context.Context, req pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// AuthStore stores the session with tokens sealed under a session key.
type AuthStore interface {
	// SaveAuth seals the tokens with key and saves the session
	SaveAuth(ctx context.Context, auth *storage.AuthData, key []byte) error

	// GetAuthDecryptData loads the session and opens the tokens with key
	GetAuthDecryptData(ctx context.Context, key []byte) (*storage.AuthData, error)

	// GetAuthEncryptData loads the session without opening the tokens
	// (enough to read email, salt and expiry)
	GetAuthEncryptData(ctx context.Context) (*storage.AuthData, error)

	// DeleteAuth removes the stored session
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether an unexpired session exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

package auth

import (
	"context"
	"fmt"

	"github.com/iudanet/authkeeper/internal/client/storage"
	"github.com/iudanet/authkeeper/internal/crypto"
)

// AuthService implements AuthStore and provides the encryption layer
// between the session service and storage. Tokens are sealed with
// AES-256-GCM; the email is bound as additional data so a session
// copied under another account fails to open.
type AuthService struct {
	storage storage.AuthStorage
}

// Compile-time check that AuthService implements AuthStore
var _ AuthStore = (*AuthService)(nil)

// NewAuthService creates a new AuthService with encryption layer
func NewAuthService(storage storage.AuthStorage) *AuthService {
	return &AuthService{
		storage: storage,
	}
}

// SaveAuth принимает открытые токены, шифрует их и передает в хранилище
func (s *AuthService) SaveAuth(ctx context.Context, auth *storage.AuthData, key []byte) error {
	if auth == nil {
		return fmt.Errorf("auth data is nil")
	}

	aad := []byte(auth.Email)

	access, err := crypto.SealString(auth.AccessToken, key, aad)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := crypto.SealString(auth.RefreshToken, key, aad)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	// копируем структуру, чтобы не менять входящую
	sealed := *auth
	sealed.AccessToken = access
	sealed.RefreshToken = refresh

	return s.storage.SaveAuth(ctx, &sealed)
}

// GetAuthDecryptData загружает сессию и расшифровывает токены
func (s *AuthService) GetAuthDecryptData(ctx context.Context, key []byte) (*storage.AuthData, error) {
	stored, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	aad := []byte(stored.Email)

	access, err := crypto.OpenString(stored.AccessToken, key, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refresh, err := crypto.OpenString(stored.RefreshToken, key, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	auth := *stored
	auth.AccessToken = access
	auth.RefreshToken = refresh
	return &auth, nil
}

// GetAuthEncryptData загружает сессию без расшифровки токенов
func (s *AuthService) GetAuthEncryptData(ctx context.Context) (*storage.AuthData, error) {
	return s.storage.GetAuth(ctx)
}

// DeleteAuth удаляет сессию
func (s *AuthService) DeleteAuth(ctx context.Context) error {
	return s.storage.DeleteAuth(ctx)
}

// IsAuthenticated проверяет срок действия сохраненного access токена
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.storage.IsAuthenticated(ctx)
}

// Package auth реализует жизненный цикл токенов: регистрацию, аутентификацию,
// обновление и выход.
//
// Manager не хранит состояния запроса и безопасен для конкурентного
// использования, если хранилище потокобезопасно. Атомарность отзыва и
// выпуска токенов обеспечивает хранилище (IssueToken, RotateToken).
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/validation"
)

// CredentialStore is the persistence the manager needs.
type CredentialStore interface {
	storage.UserStorage
	storage.TokenStorage
}

// Codec creates and verifies signed tokens.
type Codec interface {
	GenerateAccessToken(user *models.User) (string, error)
	GenerateRefreshToken(user *models.User) (string, error)
	ExtractSubject(token string) (string, error)
	IsValid(token string, user *models.User) bool
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// TokenPair пара выданных токенов
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput данные регистрации; пустая Role означает USER
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Manager orchestrates the token lifecycle.
type Manager struct {
	store  CredentialStore
	codec  Codec
	perms  *permission.Model
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewManager creates a Manager from its collaborators.
func NewManager(store CredentialStore, codec Codec, perms *permission.Model, hasher PasswordHasher, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		codec:  codec,
		perms:  perms,
		hasher: hasher,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user through the public surface. The ADMIN role can
// never be requested here.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	const op = "auth.Register"

	role, err := m.parseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if role == permission.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "role", Message: "ADMIN cannot be requested at registration"})
	}

	pair, err := m.create(ctx, in, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Provision creates a user with any known role. It is meant for bootstrap
// code, not for request handlers.
func (m *Manager) Provision(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	const op = "auth.Provision"

	role, err := m.parseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := m.create(ctx, in, role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

func (m *Manager) parseRole(name string) (permission.Role, error) {
	if name == "" {
		return permission.RoleUser, nil
	}
	role, err := m.perms.ParseRole(name)
	if err != nil {
		return "", invalid("role", err)
	}
	return role, nil
}

func (m *Manager) create(ctx context.Context, in RegisterInput, role permission.Role) (*TokenPair, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, invalid("name", err)
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, invalid("email", err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, invalid("password", err)
	}

	_, err := m.store.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrConflict
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    m.now().UTC(),
	}

	pair, err := m.newPair(user)
	if err != nil {
		return nil, err
	}

	if err := m.store.CreateUser(ctx, user, m.newRecord(user, pair, false)); err != nil {
		// параллельная регистрация с тем же email
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	m.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return pair, nil
}

// Authenticate verifies credentials, revokes every earlier token record of
// the user and issues a new pair.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	const op = "auth.Authenticate"

	user, err := m.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// выравниваем время ответа для неизвестного email
		_ = m.hasher.Verify(m.dummy(), password)
		return nil, fmt.Errorf("%s: %w", op, ErrAuthentication)
	}

	if err := m.hasher.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			m.logger.ErrorContext(ctx, "failed to verify password",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrAuthentication)
	}

	pair, err := m.newPair(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.store.IssueToken(ctx, m.newRecord(user, pair, false)); err != nil {
		return nil, fmt.Errorf("%s: issue token: %w", op, err)
	}

	m.logger.InfoContext(ctx, "user authenticated", slog.String("user_id", user.ID))
	return pair, nil
}

// Refresh exchanges a refresh token, presented as an Authorization header
// value, for a new access token. The refresh token is single-use: the new
// record keeps the same refresh string already marked consumed.
func (m *Manager) Refresh(ctx context.Context, authHeader string) (*TokenPair, error) {
	const op = "auth.Refresh"

	token, ok := BearerToken(authHeader)
	if !ok {
		return nil, fmt.Errorf("%s: missing bearer token: %w", op, ErrForbidden)
	}

	email, err := m.codec.ExtractSubject(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrForbidden)
	}

	record, err := m.store.GetActiveTokenByRefresh(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, fmt.Errorf("%s: refresh token not active: %w", op, ErrForbidden)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := m.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: subject unknown: %w", op, ErrForbidden)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.ID != record.UserID || !m.codec.IsValid(token, user) {
		return nil, fmt.Errorf("%s: refresh token invalid: %w", op, ErrForbidden)
	}

	access, err := m.codec.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pair := &TokenPair{AccessToken: access, RefreshToken: token}

	if err := m.store.RotateToken(ctx, record.ID, m.newRecord(user, pair, true)); err != nil {
		if errors.Is(err, storage.ErrTokenConsumed) {
			return nil, fmt.Errorf("%s: refresh token consumed concurrently: %w", op, ErrForbidden)
		}
		return nil, fmt.Errorf("%s: rotate token: %w", op, err)
	}

	m.logger.InfoContext(ctx, "access token refreshed",
		slog.String("user_id", user.ID),
		slog.String("consumed_record", record.ID),
	)
	return pair, nil
}

// Logout revokes the record of the access token presented in authHeader.
// Logging out an already revoked token succeeds.
func (m *Manager) Logout(ctx context.Context, authHeader string) error {
	const op = "auth.Logout"

	token, ok := BearerToken(authHeader)
	if !ok {
		return fmt.Errorf("%s: missing bearer token: %w", op, ErrBadRequest)
	}

	record, err := m.store.GetTokenByAccess(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return fmt.Errorf("%s: unknown token: %w", op, ErrBadRequest)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.store.RevokeToken(ctx, record.ID); err != nil {
		return fmt.Errorf("%s: revoke token: %w", op, err)
	}

	m.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", record.UserID),
		slog.String("record_id", record.ID),
	)
	return nil
}

func (m *Manager) newPair(user *models.User) (*TokenPair, error) {
	access, err := m.codec.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := m.codec.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) newRecord(user *models.User, pair *TokenPair, refreshConsumed bool) *models.TokenRecord {
	return &models.TokenRecord{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		TokenType:      models.TokenType,
		RefreshRevoked: refreshConsumed,
		CreatedAt:      m.now().UTC(),
	}
}

// dummy возвращает хеш, с которым сравнивается пароль неизвестного пользователя
func (m *Manager) dummy() string {
	m.dummyOnce.Do(func() {
		hash, err := m.hasher.Hash(uuid.NewString())
		if err == nil {
			m.dummyHash = hash
		}
	})
	return m.dummyHash
}

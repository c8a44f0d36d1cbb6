package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/authkeeper/internal/client/storage"
	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/validation"
	pkgapi "github.com/iudanet/authkeeper/pkg/api"
)

// ErrNotAuthenticated локальная сессия отсутствует
var ErrNotAuthenticated = errors.New("not authenticated")

// Service предоставляет функции авторизации и управляет локальной сессией
type Service struct {
	apiClient APIClient
	authStore AuthStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, authStore AuthStore, logger *slog.Logger) *Service {
	return &Service{
		apiClient: apiClient,
		authStore: authStore,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterParams данные регистрации
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Session открытая сессия: токены в памяти и ключ для повторного сохранения
type Session struct {
	Auth *storage.AuthData
	key  []byte
}

// Register регистрирует пользователя и сохраняет выданную пару токенов
func (s *Service) Register(ctx context.Context, p RegisterParams) (*Session, error) {
	// Проверяем заранее, чтобы не делать лишний запрос
	if err := validation.ValidateEmail(p.Email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(p.Password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		Role:     p.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return s.newSession(ctx, p.Email, p.Password, resp)
}

// Login выполняет аутентификацию и заменяет локальную сессию
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}

	resp, err := s.apiClient.Authenticate(ctx, pkgapi.AuthenticateRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return s.newSession(ctx, email, password, resp)
}

// Unlock открывает сохраненную сессию паролем
func (s *Service) Unlock(ctx context.Context, password string) (*Session, error) {
	sealed, err := s.authStore.GetAuthEncryptData(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	key, err := crypto.DeriveSessionKeyFromBase64Salt(password, sealed.Email, sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	auth, err := s.authStore.GetAuthDecryptData(ctx, key)
	if err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			return nil, fmt.Errorf("wrong password for saved session: %w", err)
		}
		return nil, err
	}

	return &Session{Auth: auth, key: key}, nil
}

// Refresh обменивает refresh token сессии на новую пару и сохраняет ее
func (s *Service) Refresh(ctx context.Context, sess *Session) error {
	resp, err := s.apiClient.Refresh(ctx, sess.Auth.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	sess.Auth.AccessToken = resp.AccessToken
	sess.Auth.RefreshToken = resp.RefreshToken
	sess.Auth.ExpiresAt = s.expiresAt(resp.ExpiresIn)

	if err := s.authStore.SaveAuth(ctx, sess.Auth, sess.key); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}
	return nil
}

// Expired сообщает, что access токен сессии истек по локальным часам
func (s *Service) Expired(sess *Session) bool {
	return s.now().Unix() >= sess.Auth.ExpiresAt
}

// Logout отзывает access токен на сервере (best effort) и удаляет
// локальную сессию. sess может быть nil, если пароль неизвестен.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if sess != nil {
		if err := s.apiClient.Logout(ctx, sess.Auth.AccessToken); err != nil {
			// Не прерываем процесс, если сервер недоступен
			s.logger.Warn("failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.authStore.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// Status возвращает сессию без расшифровки токенов
func (s *Service) Status(ctx context.Context) (*storage.AuthData, bool, error) {
	sealed, err := s.authStore.GetAuthEncryptData(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	ok, err := s.authStore.IsAuthenticated(ctx)
	if err != nil {
		return nil, false, err
	}
	return sealed, ok, nil
}

// newSession сохраняет пару под новым ключом со свежей солью
func (s *Service) newSession(ctx context.Context, email, password string, resp *pkgapi.TokenResponse) (*Session, error) {
	salt, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := crypto.DeriveSessionKeyFromBase64Salt(password, email, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}

	auth := &storage.AuthData{
		Email:        email,
		Salt:         salt,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.expiresAt(resp.ExpiresIn),
	}

	if err := s.authStore.SaveAuth(ctx, auth, key); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return &Session{Auth: auth, key: key}, nil
}

func (s *Service) expiresAt(expiresIn int64) int64 {
	return s.now().Unix() + expiresIn
}

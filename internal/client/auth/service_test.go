package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/authkeeper/internal/client/storage"
	pkgapi "github.com/iudanet/authkeeper/pkg/api"
)

// mockAPIClient is a mock implementation of APIClient for testing
type mockAPIClient struct {
	registerFunc     func(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)
	authenticateFunc func(ctx context.Context, req pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error)
	refreshFunc      func(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	logoutFunc       func(ctx context.Context, accessToken string) error
}

func (m *mockAPIClient) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockAPIClient) Authenticate(ctx context.Context, req pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error) {
	return m.authenticateFunc(ctx, req)
}

func (m *mockAPIClient) Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAPIClient) Logout(ctx context.Context, accessToken string) error {
	return m.logoutFunc(ctx, accessToken)
}

var fixedNow = time.Unix(1_700_000_000, 0)

func setupService(api *mockAPIClient) (*Service, *mockAuthStorage) {
	raw := newMockAuthStorage()
	raw.now = func() time.Time { return fixedNow }

	svc := NewService(api, NewAuthService(raw), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return fixedNow }
	return svc, raw
}

func tokens(access, refresh string) *pkgapi.TokenResponse {
	return &pkgapi.TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "BEARER", ExpiresIn: 900}
}

func TestService_RegisterAndUnlock(t *testing.T) {
	ctx := context.Background()
	var got pkgapi.RegisterRequest
	svc, raw := setupService(&mockAPIClient{
		registerFunc: func(_ context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error) {
			got = req
			return tokens("access-1", "refresh-1"), nil
		},
	})

	sess, err := svc.Register(ctx, RegisterParams{Name: "A", Email: "a@x.com", Password: "password1", Role: "MANAGER"})
	require.NoError(t, err)
	assert.Equal(t, pkgapi.RegisterRequest{Name: "A", Email: "a@x.com", Password: "password1", Role: "MANAGER"}, got)
	assert.Equal(t, fixedNow.Unix()+900, sess.Auth.ExpiresAt)

	// на диске токены зашифрованы
	assert.NotEqual(t, "access-1", raw.auth.AccessToken)
	assert.NotEmpty(t, raw.auth.Salt)

	unlocked, err := svc.Unlock(ctx, "password1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", unlocked.Auth.AccessToken)
	assert.Equal(t, "refresh-1", unlocked.Auth.RefreshToken)

	_, err = svc.Unlock(ctx, "password2")
	assert.ErrorContains(t, err, "wrong password")
}

func TestService_Register_ValidatesLocally(t *testing.T) {
	svc, _ := setupService(&mockAPIClient{
		registerFunc: func(context.Context, pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error) {
			t.Fatal("server must not be called")
			return nil, nil
		},
	})

	_, err := svc.Register(context.Background(), RegisterParams{Email: "not-an-email", Password: "password1"})
	assert.ErrorContains(t, err, "invalid email")

	_, err = svc.Register(context.Background(), RegisterParams{Email: "a@x.com", Password: "short"})
	assert.ErrorContains(t, err, "invalid password")
}

func TestService_Login_Failure(t *testing.T) {
	svc, raw := setupService(&mockAPIClient{
		authenticateFunc: func(context.Context, pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error) {
			return nil, errors.New("server error (403): access denied")
		},
	})

	_, err := svc.Login(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorContains(t, err, "login failed")
	assert.Nil(t, raw.auth, "сессия не должна сохраняться")
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	var sentRefresh string
	svc, _ := setupService(&mockAPIClient{
		authenticateFunc: func(context.Context, pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error) {
			return tokens("access-1", "refresh-1"), nil
		},
		refreshFunc: func(_ context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
			sentRefresh = refreshToken
			return tokens("access-2", "refresh-1"), nil
		},
	})

	_, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	sess, err := svc.Unlock(ctx, "password1")
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(ctx, sess))
	assert.Equal(t, "refresh-1", sentRefresh)

	// новая пара сохранена под тем же паролем
	again, err := svc.Unlock(ctx, "password1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", again.Auth.AccessToken)
}

func TestService_Expired(t *testing.T) {
	svc, _ := setupService(&mockAPIClient{})

	assert.False(t, svc.Expired(&Session{Auth: &storage.AuthData{ExpiresAt: fixedNow.Unix() + 1}}))
	assert.True(t, svc.Expired(&Session{Auth: &storage.AuthData{ExpiresAt: fixedNow.Unix()}}))
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	var loggedOut string
	svc, raw := setupService(&mockAPIClient{
		authenticateFunc: func(context.Context, pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error) {
			return tokens("access-1", "refresh-1"), nil
		},
		logoutFunc: func(_ context.Context, accessToken string) error {
			loggedOut = accessToken
			return errors.New("connection refused")
		},
	})

	sess, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	// ошибка сервера не мешает удалить локальную сессию
	require.NoError(t, svc.Logout(ctx, sess))
	assert.Equal(t, "access-1", loggedOut)
	assert.Nil(t, raw.auth)

	// повторный выход без сессии
	require.NoError(t, svc.Logout(ctx, nil))

	_, err = svc.Unlock(ctx, "password1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(&mockAPIClient{
		authenticateFunc: func(context.Context, pkgapi.AuthenticateRequest) (*pkgapi.TokenResponse, error) {
			return tokens("access-1", "refresh-1"), nil
		},
	})

	auth, ok, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, auth)

	_, err = svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	auth, ok, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", auth.Email)
}

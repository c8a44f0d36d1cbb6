package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/jwt"
	"github.com/iudanet/authkeeper/internal/server/metrics"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/internal/server/storage/sqlite"
	"github.com/iudanet/authkeeper/pkg/api"
)

const basePath = "/api/v1"

type testServer struct {
	handler http.Handler
	manager *auth.Manager
	store   *sqlite.Storage
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	codec, err := jwt.NewService([]byte("router-test-secret-with-32-bytes-min"), "authkeeper-test", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	model := permission.DefaultModel()
	policy, err := permission.NewPolicy(model, permission.DefaultRules(basePath))
	require.NoError(t, err)

	m := metrics.New()
	manager := auth.NewManager(store, codec, model, crypto.NewBcryptHasher(bcrypt.MinCost), logger)

	h := New(Options{
		Logger:    logger,
		Metrics:   m,
		Gate:      middleware.NewGate(store, codec, policy, logger, m),
		Auth:      handlers.NewAuthHandler(logger, manager, m, codec.AccessTokenTTL()),
		Health:    handlers.NewHealthHandler(logger, store),
		Resources: handlers.NewResourceHandler(logger, model),
		BasePath:  basePath,
	})

	return &testServer{handler: h, manager: manager, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) api.TokenResponse {
	t.Helper()

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (s *testServer) provision(t *testing.T, email string, role permission.Role) string {
	t.Helper()

	pair, err := s.manager.Provision(context.Background(), auth.RegisterInput{
		Name:     string(role),
		Email:    email,
		Password: "password1",
		Role:     string(role),
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRouter_RegisterScenario(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	tokens := decodeTokens(t, w)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, "BEARER", tokens.TokenType)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	// повторная регистрация
	w = s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_RegisterRejectsAdminRole(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "root", Email: "root@x.com", Password: "password1", Role: "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, basePath+"/auth/authenticate", "", api.AuthenticateRequest{
		Email: "root@x.com", Password: "password1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code, "пользователь не должен быть создан")
}

func TestRouter_WrongPasswordCreatesNoRecord(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	w := s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	decodeTokens(t, w)

	user, err := s.store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	before, err := s.store.ListUserTokens(ctx, user.ID)
	require.NoError(t, err)

	w = s.do(t, http.MethodPost, basePath+"/auth/authenticate", "", api.AuthenticateRequest{
		Email: "a@x.com", Password: "wrong",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	after, err := s.store.ListUserTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRouter_PermissionScenario(t *testing.T) {
	s := setupServer(t)

	adminToken := s.provision(t, "admin@x.com", permission.RoleAdmin)
	userToken := s.provision(t, "user@x.com", permission.RoleUser)

	w := s.do(t, http.MethodGet, basePath+"/admin", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg api.MessageResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&msg))
	assert.Equal(t, "GET - admin", msg.Message)

	w = s.do(t, http.MethodGet, basePath+"/admin", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, basePath+"/admin", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden","message":"access denied"}`, w.Body.String())
}

func TestRouter_RefreshIsSingleUse(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	first := decodeTokens(t, w)

	w = s.do(t, http.MethodPost, basePath+"/auth/refresh-token", first.RefreshToken, nil)
	second := decodeTokens(t, w)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	// старый access токен отозван, новый работает
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, basePath+"/playground", first.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, basePath+"/playground", second.AccessToken, nil).Code)

	w = s.do(t, http.MethodPost, basePath+"/auth/refresh-token", first.RefreshToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_LogoutScenario(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodPost, basePath+"/auth/register", "", api.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	tokens := decodeTokens(t, w)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, basePath+"/users/me", tokens.AccessToken, nil).Code)

	// пустой токен
	req := httptest.NewRequest(http.MethodPost, basePath+"/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w = s.do(t, http.MethodPost, basePath+"/auth/logout", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, basePath+"/users/me", tokens.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, basePath+"/auth/refresh-token", tokens.RefreshToken, nil).Code)
}

func TestRouter_Me(t *testing.T) {
	s := setupServer(t)
	token := s.provision(t, "manager@x.com", permission.RoleManager)

	w := s.do(t, http.MethodGet, basePath+"/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&me))
	assert.Equal(t, "manager@x.com", me.Email)
	assert.Equal(t, "MANAGER", me.Role)
	assert.ElementsMatch(t, []string{"MANAGER_CREATE", "MANAGER_DELETE", "MANAGER_READ", "MANAGER_UPDATE"}, me.Permissions)
}

func TestRouter_UnknownPathPassesGateFirst(t *testing.T) {
	s := setupServer(t)
	token := s.provision(t, "user@x.com", permission.RoleUser)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, basePath+"/nowhere", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, basePath+"/nowhere", token, nil).Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := setupServer(t)

	w := s.do(t, http.MethodGet, basePath+"/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "authkeeper_gate_decisions_total"))
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/metrics"
	"github.com/iudanet/authkeeper/pkg/api"
)

// Lifecycle определяет операции жизненного цикла токенов
type Lifecycle interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.TokenPair, error)
	Authenticate(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, authHeader string) (*auth.TokenPair, error)
	Logout(ctx context.Context, authHeader string) error
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger    *slog.Logger
	lifecycle Lifecycle
	metrics   *metrics.Metrics
	accessTTL time.Duration
}

// NewAuthHandler создает новый handler для авторизации; metrics может быть nil
func NewAuthHandler(logger *slog.Logger, lifecycle Lifecycle, m *metrics.Metrics, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		lifecycle: lifecycle,
		metrics:   m,
		accessTTL: accessTTL,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя с выдачей пары токенов
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.observe("register", metrics.ResultFailure)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.lifecycle.Register(ctx, auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(ctx, w, "register", err)
		return
	}

	h.observe("register", metrics.ResultSuccess)
	h.sendPair(w, pair)
}

// Authenticate обрабатывает POST /api/v1/auth/authenticate
// Проверка email и пароля, предыдущие токены пользователя отзываются
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AuthenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode authenticate request", slog.Any("error", err))
		h.observe("authenticate", metrics.ResultFailure)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.lifecycle.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(ctx, w, "authenticate", err)
		return
	}

	h.observe("authenticate", metrics.ResultSuccess)
	h.sendPair(w, pair)
}

// RefreshToken обрабатывает POST /api/v1/auth/refresh-token
// Refresh token передается в заголовке Authorization: Bearer <token>
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pair, err := h.lifecycle.Refresh(ctx, r.Header.Get("Authorization"))
	if err != nil {
		h.fail(ctx, w, "refresh", err)
		return
	}

	h.observe("refresh", metrics.ResultSuccess)
	h.sendPair(w, pair)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает запись access токена из заголовка Authorization
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.lifecycle.Logout(ctx, r.Header.Get("Authorization")); err != nil {
		h.fail(ctx, w, "logout", err)
		return
	}

	h.observe("logout", metrics.ResultSuccess)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, message := statusFromError(err)

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "auth operation failed", slog.String("operation", op), slog.Any("error", err))
		h.observe(op, metrics.ResultError)
	} else {
		h.logger.WarnContext(ctx, "auth operation rejected", slog.String("operation", op), slog.Any("error", err))
		h.observe(op, metrics.ResultFailure)
	}

	sendError(h.logger, w, message, status)
}

func (h *AuthHandler) sendPair(w http.ResponseWriter, pair *auth.TokenPair) {
	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    models.TokenType,
		ExpiresIn:    int64(h.accessTTL.Seconds()),
	}, http.StatusOK)
}

func (h *AuthHandler) observe(op, result string) {
	if h.metrics != nil {
		h.metrics.ObserveAuth(op, result)
	}
}

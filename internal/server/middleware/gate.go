package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/metrics"
	"github.com/iudanet/authkeeper/pkg/api"
)

// CredentialReader is the read side of the credential store used per request.
type CredentialReader interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetTokenByAccess(ctx context.Context, accessToken string) (*models.TokenRecord, error)
}

// TokenVerifier parses and checks signed access tokens.
type TokenVerifier interface {
	ExtractSubject(token string) (string, error)
	IsValid(token string, user *models.User) bool
}

// Gate проверяет bearer токен и права роли перед передачей запроса дальше.
// Любой отказ отдается одинаковым ответом 403.
type Gate struct {
	store   CredentialReader
	codec   TokenVerifier
	policy  *permission.Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGate создает Gate; metrics может быть nil
func NewGate(store CredentialReader, codec TokenVerifier, policy *permission.Policy, logger *slog.Logger, m *metrics.Metrics) *Gate {
	return &Gate{
		store:   store,
		codec:   codec,
		policy:  policy,
		logger:  logger,
		metrics: m,
	}
}

// Middleware возвращает обертку для http.Handler
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rule := g.policy.Match(r.Method, r.URL.Path)
		if rule.Public {
			g.observe(metrics.DecisionPublic)
			next.ServeHTTP(w, r)
			return
		}

		user, reason := g.authenticate(ctx, r.Header.Get("Authorization"))
		if user == nil {
			g.deny(w, r, reason)
			return
		}

		if !g.policy.Authorize(rule, user.Role) {
			g.deny(w, r, "insufficient role or permission",
				slog.String("user_id", user.ID),
				slog.String("role", string(user.Role)),
				slog.String("rule", rule.Pattern))
			return
		}

		g.observe(metrics.DecisionAllowed)
		g.logger.DebugContext(ctx, "request authorized",
			slog.String("user_id", user.ID),
			slog.String("path", r.URL.Path))

		next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
	})
}

// authenticate возвращает пользователя или причину отказа
func (g *Gate) authenticate(ctx context.Context, header string) (*models.User, string) {
	token, ok := auth.BearerToken(header)
	if !ok {
		return nil, "missing or malformed bearer token"
	}

	email, err := g.codec.ExtractSubject(token)
	if err != nil {
		return nil, "malformed token"
	}

	// Запись должна существовать и быть активной: logout и повторный
	// вход отзывают токен до истечения срока подписи
	record, err := g.store.GetTokenByAccess(ctx, token)
	if err != nil {
		return nil, "unknown token"
	}
	if !record.Active() {
		return nil, "token revoked or expired"
	}

	user, err := g.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "unknown subject"
	}
	if user.ID != record.UserID {
		return nil, "token owner mismatch"
	}

	if !g.codec.IsValid(token, user) {
		return nil, "token signature or expiry invalid"
	}

	return user, ""
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, reason string, attrs ...any) {
	g.observe(metrics.DecisionDenied)

	args := append([]any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
	}, attrs...)
	g.logger.WarnContext(r.Context(), "access denied", args...)

	WriteForbidden(w)
}

func (g *Gate) observe(decision string) {
	if g.metrics != nil {
		g.metrics.ObserveGate(decision)
	}
}

// WriteForbidden пишет единый ответ 403 без деталей причины
func WriteForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(http.StatusForbidden),
		Message: "access denied",
	})
}

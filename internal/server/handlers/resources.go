package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/pkg/api"
)

// ResourceHandler обслуживает защищенные ресурсы. Доступ к ним
// уже проверен Gate, здесь только формируется ответ.
type ResourceHandler struct {
	logger *slog.Logger
	perms  *permission.Model
}

// NewResourceHandler создает handler защищенных ресурсов
func NewResourceHandler(logger *slog.Logger, perms *permission.Model) *ResourceHandler {
	return &ResourceHandler{
		logger: logger,
		perms:  perms,
	}
}

// Resource возвращает handler демонстрационного ресурса name,
// отвечающий "<METHOD> - <name>"
func (h *ResourceHandler) Resource(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendJSON(h.logger, w, api.MessageResponse{Message: r.Method + " - " + name}, http.StatusOK)
	}
}

// Me обрабатывает GET /api/v1/users/me
func (h *ResourceHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		// маршрут зарегистрирован без Gate
		middleware.WriteForbidden(w)
		return
	}

	granted := h.perms.Permissions(user.Role)
	perms := make([]string, 0, len(granted))
	for _, p := range granted {
		perms = append(perms, string(p))
	}

	sendJSON(h.logger, w, api.UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        string(user.Role),
		Permissions: perms,
	}, http.StatusOK)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/pkg/api"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// decodeJSON читает тело запроса в dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// statusFromError сопоставляет ошибку менеджера с HTTP статусом и
// сообщением для клиента. Детали 403 и 500 наружу не отдаются.
func statusFromError(err error) (int, string) {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, auth.ErrConflict):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, auth.ErrAuthentication),
		errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, auth.ErrBadRequest):
		return http.StatusBadRequest, "invalid or unknown bearer token"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Package router собирает HTTP обработчики сервера в один http.Handler.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/metrics"
	"github.com/iudanet/authkeeper/internal/server/middleware"
)

// Options параметры сборки роутера
type Options struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gate      *middleware.Gate
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Resources *handlers.ResourceHandler
	BasePath  string // например "/api/v1"
}

// demoResources ресурсы, доступ к которым описан таблицей правил
var demoResources = []string{"playground", "management", "admin"}

var resourceMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// New собирает роутер. Все маршруты под BasePath проходят через Gate,
// включая неизвестные пути; /metrics обслуживается вне Gate.
func New(opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний)
	root.Use(
		chimw.RequestID,
		middleware.Recovery(opts.Logger),
		middleware.Logging(opts.Logger, "/metrics"),
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
		root.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	api := func(r chi.Router) {
		r.Use(opts.Gate.Middleware)
		registerRoutes(r, opts)
	}

	// base_path "/" после нормализации пустой, chi.Route его не принимает
	if opts.BasePath == "" {
		root.Group(api)
	} else {
		root.Route(opts.BasePath, api)
	}

	return root
}

// registerRoutes единая точка регистрации REST эндпоинтов
func registerRoutes(r chi.Router, opts Options) {
	// auth
	r.Post("/auth/register", opts.Auth.Register)
	r.Post("/auth/authenticate", opts.Auth.Authenticate)
	r.Post("/auth/refresh-token", opts.Auth.RefreshToken)
	r.Post("/auth/logout", opts.Auth.Logout)

	r.Get("/health", opts.Health.Health)
	r.Get("/users/me", opts.Resources.Me)

	for _, name := range demoResources {
		h := opts.Resources.Resource(name)
		for _, m := range resourceMethods {
			r.Method(m, "/"+name, h)
		}
	}
}

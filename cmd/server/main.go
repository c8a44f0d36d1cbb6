package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iudanet/authkeeper/internal/config"
	"github.com/iudanet/authkeeper/internal/crypto"
	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/auth"
	"github.com/iudanet/authkeeper/internal/server/handlers"
	"github.com/iudanet/authkeeper/internal/server/jwt"
	"github.com/iudanet/authkeeper/internal/server/metrics"
	"github.com/iudanet/authkeeper/internal/server/middleware"
	"github.com/iudanet/authkeeper/internal/server/router"
	"github.com/iudanet/authkeeper/internal/server/storage"
	"github.com/iudanet/authkeeper/internal/server/storage/postgres"
	"github.com/iudanet/authkeeper/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// Parse flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting authkeeper server", slog.String("env", cfg.Env), slog.String("version", Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Warn("failed to close storage", slog.Any("error", cerr))
		}
	}()

	codec, err := jwt.NewService([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	model := permission.DefaultModel()

	rules := cfg.Access.Rules
	if len(rules) == 0 {
		rules = permission.DefaultRules(cfg.HTTP.BasePath)
	}
	policy, err := permission.NewPolicy(model, rules)
	if err != nil {
		return fmt.Errorf("invalid access rules: %w", err)
	}

	m := metrics.New()
	manager := auth.NewManager(store, codec, model, crypto.NewBcryptHasher(cfg.Auth.BcryptCost), log)

	if err := bootstrap(ctx, manager, cfg.Bootstrap, log); err != nil {
		return err
	}

	handler := router.New(router.Options{
		Logger:    log,
		Metrics:   m,
		Gate:      middleware.NewGate(store, codec, policy, log, m),
		Auth:      handlers.NewAuthHandler(log, manager, m, codec.AccessTokenTTL()),
		Health:    handlers.NewHealthHandler(log, store),
		Resources: handlers.NewResourceHandler(log, model),
		BasePath:  cfg.HTTP.BasePath,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", srv.Addr), slog.String("base_path", cfg.HTTP.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serveErrCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown incomplete: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return s, nil
	default:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	}
}

// bootstrap создает начального пользователя; существующий email пропускается
func bootstrap(ctx context.Context, manager *auth.Manager, cfg config.BootstrapConfig, log *slog.Logger) error {
	if cfg.Email == "" {
		return nil
	}

	_, err := manager.Provision(ctx, auth.RegisterInput{
		Name:     cfg.Name,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     cfg.Role,
	})
	switch {
	case err == nil:
		log.Info("bootstrap user created", slog.String("email", cfg.Email), slog.String("role", cfg.Role))
	case errors.Is(err, auth.ErrConflict):
		log.Debug("bootstrap user already exists", slog.String("email", cfg.Email))
	default:
		return fmt.Errorf("failed to create bootstrap user: %w", err)
	}
	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func printVersion() {
	fmt.Printf("AuthKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

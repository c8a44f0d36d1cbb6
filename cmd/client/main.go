package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/authkeeper/internal/client/api"
	"github.com/iudanet/authkeeper/internal/client/auth"
	"github.com/iudanet/authkeeper/internal/client/cli"
	"github.com/iudanet/authkeeper/internal/client/iocli"
	"github.com/iudanet/authkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080/api/v1", "Server API URL")
	dbPath := flag.String("db", "authkeeper-client.db", "Path to local database")
	password := flag.String("password", "", "Account password (not recommended, use "+cli.PasswordEnv+" or --password-file)")
	passwordFile := flag.String("password-file", "", "Path to file containing account password")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(*serverURL)
	service := auth.NewService(apiClient, auth.NewAuthService(boltStorage), logger)

	c := cli.New(stdio, service, apiClient, cli.Passwords{
		FromFile: *passwordFile,
		FromArgs: *password,
	})

	runErr := c.Run(ctx, flag.Args())

	if err := boltStorage.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("AuthKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

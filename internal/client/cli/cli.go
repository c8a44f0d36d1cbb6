package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/authkeeper/internal/client/auth"
	"github.com/iudanet/authkeeper/internal/client/iocli"
	pkgapi "github.com/iudanet/authkeeper/pkg/api"
)

// PasswordEnv переменная окружения с паролем учетной записи
const PasswordEnv = "AUTHKEEPER_PASSWORD"

// Passwords неинтерактивные источники пароля
type Passwords struct {
	FromFile string
	FromArgs string
}

// ResourceClient запросы к защищенным ресурсам сервера
type ResourceClient interface {
	Me(ctx context.Context, accessToken string) (*pkgapi.UserResponse, error)
	Call(ctx context.Context, method, path, accessToken string) ([]byte, error)
}

type Cli struct {
	io        iocli.IO
	service   *auth.Service
	resources ResourceClient
	passwords Passwords
}

func New(io iocli.IO, service *auth.Service, resources ResourceClient, passwords Passwords) *Cli {
	return &Cli{
		io:        io,
		service:   service,
		resources: resources,
		passwords: passwords,
	}
}

// presetPassword возвращает пароль из неинтерактивных источников с приоритетом:
// 1. Переменная окружения AUTHKEEPER_PASSWORD
// 2. Файл --password-file
// 3. Параметр --password
// ok=false, если ни один источник не задан.
func (c *Cli) presetPassword() (password string, ok bool, err error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, true, nil
	}

	if c.passwords.FromFile != "" {
		content, err := os.ReadFile(c.passwords.FromFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", false, fmt.Errorf("password file is empty")
		}
		return password, true, nil
	}

	if c.passwords.FromArgs != "" {
		return c.passwords.FromArgs, true, nil
	}

	return "", false, nil
}

// getPassword берет пароль из неинтерактивных источников, иначе спрашивает
func (c *Cli) getPassword(prompt string) (string, error) {
	password, ok, err := c.presetPassword()
	if err != nil || ok {
		return password, err
	}

	password, err = c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// readInput читает непустую строку
func (c *Cli) readInput(prompt string) (string, error) {
	value, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (c *Cli) PrintUsage() {
	c.io.Println("AuthKeeper Client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  authkeeper [OPTIONS] COMMAND [ARGS]")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  --version              Show version information")
	c.io.Println("  --server URL           Server API URL (default: http://localhost:8080/api/v1)")
	c.io.Println("  --db PATH              Path to local database (default: authkeeper-client.db)")
	c.io.Println("  --password PASSWORD    Account password (not recommended, use env var or file)")
	c.io.Println("  --password-file PATH   Path to file containing account password")
	c.io.Println()
	c.io.Println("Password Priority (highest to lowest):")
	c.io.Println("  1. " + PasswordEnv + " environment variable")
	c.io.Println("  2. --password-file (file path)")
	c.io.Println("  3. --password (command line)")
	c.io.Println("  4. Interactive prompt (fallback)")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  register [ROLE]        Register new user (ROLE: USER or MANAGER)")
	c.io.Println("  login                  Authenticate and save session")
	c.io.Println("  refresh                Exchange refresh token for a new pair")
	c.io.Println("  logout                 Revoke session on server and delete it locally")
	c.io.Println("  status                 Show local session status")
	c.io.Println("  whoami                 Show current user and permissions")
	c.io.Println("  call METHOD PATH       Call a protected resource")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  authkeeper register MANAGER")
	c.io.Println("  authkeeper login")
	c.io.Println("  authkeeper call GET /management")
	c.io.Println()
	c.io.Println("  # Using password file (for automation)")
	c.io.Println("  authkeeper --password-file ~/.authkeeper-password whoami")
	c.io.Println("  authkeeper --server https://example.com/api/v1 login")
}

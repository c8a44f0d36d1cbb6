package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/permission"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const userColumns = `id, name, email, password_hash, role, created_at`

// CreateUser creates a new user and its first token record in one transaction
func (s *Storage) CreateUser(ctx context.Context, user *models.User, record *models.TokenRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (` + userColumns + `)
			VALUES (?, ?, ?, ?, ?, ?)
		`

		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Name,
			user.Email,
			user.PasswordHash,
			string(user.Role),
			user.CreatedAt.UnixNano(),
		)
		if err != nil {
			// Проверяем на duplicate email
			if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
				return storage.ErrUserAlreadyExists
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		if record == nil {
			return nil
		}
		return insertToken(ctx, tx, record)
	})
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, query, userID))
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var (
		role      string
		createdAt int64
	)

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = permission.Role(role)
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const tokenColumns = `id, user_id, access_token, refresh_token, token_type, expired, revoked, refresh_revoked, created_at`

// IssueToken revokes all active records of the user and inserts record
func (s *Storage) IssueToken(ctx context.Context, record *models.TokenRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := revokeUserTokens(ctx, tx, record.UserID); err != nil {
			return err
		}
		return insertToken(ctx, tx, record)
	})
}

// RotateToken consumes the refresh token of consumedID, revokes the user's
// active records and inserts record
func (s *Storage) RotateToken(ctx context.Context, consumedID string, record *models.TokenRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE tokens SET refresh_revoked = 1
			WHERE id = ? AND user_id = ? AND refresh_revoked = 0
		`

		result, err := tx.ExecContext(ctx, query, consumedID, record.UserID)
		if err != nil {
			return fmt.Errorf("failed to consume refresh token: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return storage.ErrTokenConsumed
		}

		if err := revokeUserTokens(ctx, tx, record.UserID); err != nil {
			return err
		}
		return insertToken(ctx, tx, record)
	})
}

// GetTokenByAccess retrieves record by access token
func (s *Storage) GetTokenByAccess(ctx context.Context, accessToken string) (*models.TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE access_token = ?`
	return scanToken(s.db.QueryRowContext(ctx, query, accessToken))
}

// GetActiveTokenByRefresh retrieves record with unconsumed refresh token
func (s *Storage) GetActiveTokenByRefresh(ctx context.Context, refreshToken string) (*models.TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE refresh_token = ? AND refresh_revoked = 0`
	return scanToken(s.db.QueryRowContext(ctx, query, refreshToken))
}

// RevokeToken marks a single record expired and revoked
func (s *Storage) RevokeToken(ctx context.Context, recordID string) error {
	query := `UPDATE tokens SET expired = 1, revoked = 1, refresh_revoked = 1 WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, recordID)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return storage.ErrTokenNotFound
	}
	return nil
}

// ListUserTokens retrieves all records of a user
func (s *Storage) ListUserTokens(ctx context.Context, userID string) ([]*models.TokenRecord, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	records := make([]*models.TokenRecord, 0)
	for rows.Next() {
		record, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}
	return records, nil
}

func revokeUserTokens(ctx context.Context, tx *sql.Tx, userID string) error {
	query := `
		UPDATE tokens SET expired = 1, revoked = 1, refresh_revoked = 1
		WHERE user_id = ? AND (revoked = 0 OR refresh_revoked = 0)
	`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

func insertToken(ctx context.Context, tx *sql.Tx, record *models.TokenRecord) error {
	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.AccessToken,
		record.RefreshToken,
		record.TokenType,
		record.Expired,
		record.Revoked,
		record.RefreshRevoked,
		record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*models.TokenRecord, error) {
	record := &models.TokenRecord{}
	var createdAt int64

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.AccessToken,
		&record.RefreshToken,
		&record.TokenType,
		&record.Expired,
		&record.Revoked,
		&record.RefreshRevoked,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}

	record.CreatedAt = time.Unix(0, createdAt).UTC()
	return record, nil
}

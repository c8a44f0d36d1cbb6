package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iudanet/authkeeper/internal/models"
	"github.com/iudanet/authkeeper/internal/server/storage"
)

const tokenColumns = `id, user_id, access_token, refresh_token, token_type, expired, revoked, refresh_revoked, created_at`

// IssueToken отзывает действующие записи пользователя и сохраняет новую.
func (s *Storage) IssueToken(ctx context.Context, record *models.TokenRecord) error {
	const op = "storage.postgres.IssueToken"

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, record.UserID); err != nil {
			return err
		}
		if err := revokeUserTokens(ctx, tx, record.UserID); err != nil {
			return err
		}
		return insertToken(ctx, tx, record)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RotateToken потребляет refresh token записи consumedID, отзывает
// действующие записи пользователя и сохраняет новую.
func (s *Storage) RotateToken(ctx context.Context, consumedID string, record *models.TokenRecord) error {
	const op = "storage.postgres.RotateToken"

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, record.UserID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE tokens SET refresh_revoked = TRUE
			WHERE id = $1 AND user_id = $2 AND NOT refresh_revoked
		`, consumedID, record.UserID)
		if err != nil {
			return fmt.Errorf("consume refresh token: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrTokenConsumed
		}

		if err := revokeUserTokens(ctx, tx, record.UserID); err != nil {
			return err
		}
		return insertToken(ctx, tx, record)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTokenByAccess находит запись по access token.
func (s *Storage) GetTokenByAccess(ctx context.Context, accessToken string) (*models.TokenRecord, error) {
	const op = "storage.postgres.GetTokenByAccess"

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE access_token = $1`

	record, err := scanToken(s.db.QueryRow(ctx, query, accessToken))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

// GetActiveTokenByRefresh находит запись с непотребленным refresh token.
func (s *Storage) GetActiveTokenByRefresh(ctx context.Context, refreshToken string) (*models.TokenRecord, error) {
	const op = "storage.postgres.GetActiveTokenByRefresh"

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE refresh_token = $1 AND NOT refresh_revoked`

	record, err := scanToken(s.db.QueryRow(ctx, query, refreshToken))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

// RevokeToken помечает запись просроченной и отозванной.
func (s *Storage) RevokeToken(ctx context.Context, recordID string) error {
	const op = "storage.postgres.RevokeToken"

	tag, err := s.db.Exec(ctx, `
		UPDATE tokens SET expired = TRUE, revoked = TRUE, refresh_revoked = TRUE
		WHERE id = $1
	`, recordID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTokenNotFound)
	}
	return nil
}

// ListUserTokens возвращает все записи пользователя в порядке выпуска.
func (s *Storage) ListUserTokens(ctx context.Context, userID string) ([]*models.TokenRecord, error) {
	const op = "storage.postgres.ListUserTokens"

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE user_id = $1 ORDER BY created_at, seq`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	records := make([]*models.TokenRecord, 0)
	for rows.Next() {
		record, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}

func revokeUserTokens(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE tokens SET expired = TRUE, revoked = TRUE, refresh_revoked = TRUE
		WHERE user_id = $1 AND (NOT revoked OR NOT refresh_revoked)
	`, userID)
	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

func insertToken(ctx context.Context, tx pgx.Tx, record *models.TokenRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tokens (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.ID,
		record.UserID,
		record.AccessToken,
		record.RefreshToken,
		record.TokenType,
		record.Expired,
		record.Revoked,
		record.RefreshRevoked,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func scanToken(row pgx.Row) (*models.TokenRecord, error) {
	var record models.TokenRecord

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.AccessToken,
		&record.RefreshToken,
		&record.TokenType,
		&record.Expired,
		&record.Revoked,
		&record.RefreshRevoked,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

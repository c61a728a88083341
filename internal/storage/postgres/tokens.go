package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizserver/internal/models"
	"quizserver/internal/storage"

	"github.com/jackc/pgx/v5"
)

// ReplaceRefreshToken removes every refresh token owned by userID and inserts
// the new one in a single transaction. Together with the UNIQUE (user_id)
// constraint this keeps at most one live token per user even under concurrent
// logins.
func (r *PostgresRepo) ReplaceRefreshToken(ctx context.Context, userID int64, token string, createdAt, expiresAt time.Time) error {
	const op = "storage.postgres.ReplaceRefreshToken"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("%s: failed to delete prior tokens: %w", op, err)
	}

	query := `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4);
	`

	if _, err := tx.Exec(ctx, query, token, userID, createdAt, expiresAt); err != nil {
		return fmt.Errorf("%s: failed to save token: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) RefreshTokenByToken(ctx context.Context, token string) (models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByToken"

	query := `
		SELECT token, user_id, created_at, expires_at
		FROM refresh_tokens
		WHERE token = $1;
	`

	var rt models.RefreshToken

	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.Token,
		&rt.UserID,
		&rt.CreatedAt,
		&rt.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, storage.ErrRefreshTokenNotFound
		}

		return models.RefreshToken{}, fmt.Errorf("%s: %w", op, err)
	}

	return rt, nil
}

func (r *PostgresRepo) DeleteRefreshTokenByToken(ctx context.Context, token string) error {
	const op = "storage.postgres.DeleteRefreshTokenByToken"

	query := `DELETE FROM refresh_tokens WHERE token = $1;`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

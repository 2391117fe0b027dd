package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"gardenbook/api/internal/models"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// InsertAndTrim appends a token entry and evicts the oldest entries beyond
// keep, in one transaction. Two concurrent logins may interleave, but each
// commit leaves the user at or below the cap.
func (r *RefreshTokenRepository) InsertAndTrim(ctx context.Context, token models.RefreshToken, keep int) error {
	const insertQuery = `
		INSERT INTO user_refresh_tokens (id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, NOW(), $4)
	`
	const trimQuery = `
		DELETE FROM user_refresh_tokens
		WHERE user_id = $1 AND id IN (
			SELECT id FROM user_refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			OFFSET $2
		)
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertQuery, token.ID, token.UserID, token.TokenHash, token.ExpiresAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, trimQuery, token.UserID, keep); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Exists reports whether a live (unexpired) entry with this hash is stored
// for the user.
func (r *RefreshTokenRepository) Exists(ctx context.Context, userID string, tokenHash []byte) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM user_refresh_tokens
			WHERE user_id = $1 AND token_hash = $2 AND expires_at > NOW()
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, userID string, tokenHash []byte) error {
	const query = `DELETE FROM user_refresh_tokens WHERE user_id = $1 AND token_hash = $2`
	cmd, err := r.pool.Exec(ctx, query, userID, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_refresh_tokens WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM user_refresh_tokens WHERE expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

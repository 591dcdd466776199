package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshTokensTable holds issued refresh tokens for rotation and revocation.
const RefreshTokensTable = "refresh_tokens"

// ErrRefreshTokenNotFound indicates the token was never stored or was already
// rotated away.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRecord is one stored refresh token.
type RefreshTokenRecord struct {
	Token     string    `db:"token"`
	UserID    uuid.UUID `db:"user_id"`
	SchoolID  uuid.UUID `db:"school_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// RefreshTokenStore persists refresh tokens so they can be rotated on use and
// revoked in bulk per user.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenStore returns a store instance.
func NewRefreshTokenStore(ctx context.Context, pool *pgxpool.Pool) (*RefreshTokenStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &RefreshTokenStore{pool: pool}, nil
}

// Save stores a freshly issued refresh token.
func (s *RefreshTokenStore) Save(ctx context.Context, rec RefreshTokenRecord) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (token, user_id, school_id, expires_at)
        VALUES ($1, $2, $3, $4)
    `, RefreshTokensTable), rec.Token, rec.UserID, rec.SchoolID, rec.ExpiresAt)
	return err
}

// Consume atomically deletes the token and returns its record. A token can be
// consumed at most once, which is what makes rotation safe under races.
func (s *RefreshTokenStore) Consume(ctx context.Context, token string) (RefreshTokenRecord, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        DELETE FROM %s WHERE token = $1
        RETURNING token, user_id, school_id, expires_at, created_at
    `, RefreshTokensTable), token)

	var rec RefreshTokenRecord
	if err := row.Scan(&rec.Token, &rec.UserID, &rec.SchoolID, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshTokenRecord{}, ErrRefreshTokenNotFound
		}
		return RefreshTokenRecord{}, err
	}
	return rec, nil
}

// RevokeForUser deletes every stored token for a user, ending all sessions.
func (s *RefreshTokenStore) RevokeForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", RefreshTokensTable), userID)
	return err
}

// PurgeExpired removes tokens past their expiry and returns how many went away.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE expires_at < now()", RefreshTokensTable))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/persistence"
)

// Repository defines the persistence operations required by the auth service.
type Repository interface {
	CreateUser(ctx context.Context, rec persistence.UserRecord) (persistence.UserRecord, error)
	UserByEmail(ctx context.Context, email string) (persistence.UserRecord, error)
	User(ctx context.Context, id uuid.UUID) (persistence.UserRecord, error)
	SaveRefreshToken(ctx context.Context, rec persistence.RefreshTokenRecord) error
	ConsumeRefreshToken(ctx context.Context, token string) (persistence.RefreshTokenRecord, error)
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	users  *persistence.UserStore
	tokens *persistence.RefreshTokenStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(users *persistence.UserStore, tokens *persistence.RefreshTokenStore) Repository {
	if users == nil {
		panic("user store is required")
	}
	if tokens == nil {
		panic("refresh token store is required")
	}
	return &postgresRepository{users: users, tokens: tokens}
}

func (r *postgresRepository) CreateUser(ctx context.Context, rec persistence.UserRecord) (persistence.UserRecord, error) {
	return r.users.Create(ctx, rec)
}

func (r *postgresRepository) UserByEmail(ctx context.Context, email string) (persistence.UserRecord, error) {
	return r.users.GetByEmail(ctx, email)
}

func (r *postgresRepository) User(ctx context.Context, id uuid.UUID) (persistence.UserRecord, error) {
	return r.users.Get(ctx, id)
}

func (r *postgresRepository) SaveRefreshToken(ctx context.Context, rec persistence.RefreshTokenRecord) error {
	return r.tokens.Save(ctx, rec)
}

func (r *postgresRepository) ConsumeRefreshToken(ctx context.Context, token string) (persistence.RefreshTokenRecord, error) {
	return r.tokens.Consume(ctx, token)
}

func (r *postgresRepository) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	return r.tokens.RevokeForUser(ctx, userID)
}
